package genres

import (
	"context"
	"net/http"

	"github.com/hbomb79/Marquee/internal/api/apierr"
	"github.com/labstack/echo/v4"
)

type (
	Service interface {
		Genres(ctx context.Context) ([]string, error)
	}

	Controller struct {
		service Service
	}
)

func New(service Service) *Controller {
	return &Controller{service: service}
}

func (controller *Controller) SetRoutes(eg *echo.Group) {
	eg.GET("/", controller.list)
}

func (controller *Controller) list(ec echo.Context) error {
	genres, err := controller.service.Genres(ec.Request().Context())
	if err != nil {
		return apierr.FromCatalogError(err)
	}

	return ec.JSON(http.StatusOK, genres)
}
