package movies

import (
	"context"
	"net/http"
	"strconv"

	"github.com/hbomb79/Marquee/internal/api/apierr"
	"github.com/hbomb79/Marquee/internal/api/util"
	"github.com/hbomb79/Marquee/internal/movie"
	"github.com/labstack/echo/v4"
	"github.com/oapi-codegen/runtime"
)

type (
	Service interface {
		Search(ctx context.Context, filter movie.Filter) (*movie.SearchResult, error)
		Popular(ctx context.Context, limit int) (*movie.PopularResult, error)
		Get(ctx context.Context, id int) (*movie.Movie, error)
		DefaultLimit() int
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
	eg.GET("/search/", controller.search)
	eg.GET("/popular/", controller.popular)
	eg.GET("/:id/", controller.get)
}

// list returns the catalog, filtered and sorted according to
// the query parameters. Free-text search uses the 'q' parameter.
func (controller *Controller) list(ec echo.Context) error {
	filter, err := bindFilter(ec, "q")
	if err != nil {
		return err
	}

	return controller.respondWithSearch(ec, filter)
}

// search is equivalent to list, however the free-text search
// may be provided as either 'query' or 'q'.
func (controller *Controller) search(ec echo.Context) error {
	filter, err := bindFilter(ec, "query", "q")
	if err != nil {
		return err
	}

	return controller.respondWithSearch(ec, filter)
}

func (controller *Controller) popular(ec echo.Context) error {
	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", ec.QueryParams(), &limit); err != nil {
		return apierr.InvalidParameter("limit", err)
	}

	result, err := controller.service.Popular(ec.Request().Context(), util.NotNilOrDefault(limit, controller.service.DefaultLimit()))
	if err != nil {
		return apierr.FromCatalogError(err)
	}

	return ec.JSON(http.StatusOK, popularResponse{
		Movies: util.ApplyConversion(result.Movies, movieToDto),
		Total:  result.Total,
		Limit:  result.Limit,
	})
}

func (controller *Controller) get(ec echo.Context) error {
	id, err := strconv.Atoi(ec.Param("id"))
	if err != nil {
		return apierr.APIError{Status: http.StatusBadRequest, Code: "INVALID_MOVIE_ID", Message: "Invalid movie ID"}
	}

	m, err := controller.service.Get(ec.Request().Context(), id)
	if err != nil {
		return apierr.FromCatalogError(err)
	}

	return ec.JSON(http.StatusOK, movieToDto(m))
}

func (controller *Controller) respondWithSearch(ec echo.Context, filter movie.Filter) error {
	result, err := controller.service.Search(ec.Request().Context(), filter)
	if err != nil {
		return apierr.FromCatalogError(err)
	}

	return ec.JSON(http.StatusOK, searchResponse{
		Movies:  util.ApplyConversion(result.Movies, movieToDto),
		Total:   result.Total,
		Filters: filterToDto(result.Filter),
	})
}

// bindFilter constructs a movie filter from the query parameters of the
// request. The free-text search is taken from the first non-empty parameter
// in textParams.
func bindFilter(ec echo.Context, textParams ...string) (movie.Filter, error) {
	params := ec.QueryParams()
	filter := movie.Filter{}

	for _, name := range textParams {
		var text *string
		if err := runtime.BindQueryParameter("form", true, false, name, params, &text); err != nil {
			return filter, apierr.InvalidParameter(name, err)
		}
		if text != nil && *text != "" {
			filter.Query = *text
			break
		}
	}

	var genre, year, sortBy, sortOrder *string
	for name, dest := range map[string]**string{"genre": &genre, "year": &year, "sortBy": &sortBy, "sortOrder": &sortOrder} {
		if err := runtime.BindQueryParameter("form", true, false, name, params, dest); err != nil {
			return filter, apierr.InvalidParameter(name, err)
		}
	}

	if err := runtime.BindQueryParameter("form", true, false, "minRating", params, &filter.MinRating); err != nil {
		return filter, apierr.InvalidParameter("minRating", err)
	}

	filter.Genre = util.NotNilOrDefault(genre, "")
	filter.Year = util.NotNilOrDefault(year, "")
	filter.SortBy = movie.SortField(util.NotNilOrDefault(sortBy, ""))
	filter.SortOrder = movie.SortOrder(util.NotNilOrDefault(sortOrder, ""))

	return filter, nil
}
