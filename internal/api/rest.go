package api

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/hbomb79/Marquee/internal/api/apierr"
	"github.com/hbomb79/Marquee/internal/api/controllers/genres"
	"github.com/hbomb79/Marquee/internal/api/controllers/movies"
	"github.com/hbomb79/Marquee/internal/metrics"
	"github.com/hbomb79/Marquee/pkg/logger"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
)

var log = logger.Get("API")

const BasePath = "/api/marquee/v1"

type (
	RestConfig struct {
		HostAddr       string        `yaml:"host_address" env:"API_HOST_ADDR" env-default:"0.0.0.0:8080"`
		RequestTimeout time.Duration `yaml:"request_timeout" env:"API_REQUEST_TIMEOUT" env-default:"10s"`
	}

	controller interface {
		SetRoutes(*echo.Group)
	}

	// CatalogService represents a union of all the controller service requirements
	CatalogService interface {
		movies.Service
		genres.Service
		Ping(ctx context.Context) error
	}

	// The RestGateway is a thin-wrapper around the Echo HTTP router. It's sole responsbility
	// is to create the routes Marquee exposes and to apply the request validation,
	// metrics and error handling middleware.
	RestGateway struct {
		config           *RestConfig
		ec               *echo.Echo
		catalog          CatalogService
		moviesController controller
		genresController controller
	}

	healthDto struct {
		Status string `json:"status"`
	}
)

// NewRestGateway constructs the Echo router and populates it with all the
// routes defined by the various controllers.
func NewRestGateway(config *RestConfig, catalog CatalogService) (*RestGateway, error) {
	spec, err := LoadSpec()
	if err != nil {
		return nil, err
	}

	ec := echo.New()
	ec.OnAddRouteHandler = func(host string, route echo.Route, handler echo.HandlerFunc, middleware []echo.MiddlewareFunc) {
		log.Emit(logger.DEBUG, "Registered new route %s %s\n", route.Method, route.Path)
	}
	ec.HidePort = true
	ec.HideBanner = true
	ec.HTTPErrorHandler = apierr.GetHTTPErrorHandler(ec.DefaultHTTPErrorHandler)

	gateway := &RestGateway{
		config:           config,
		ec:               ec,
		catalog:          catalog,
		moviesController: movies.New(catalog),
		genresController: genres.New(catalog),
	}

	ec.Pre(middleware.AddTrailingSlash())
	ec.Use(middleware.RequestIDWithConfig(middleware.RequestIDConfig{Generator: uuid.NewString}))
	ec.Use(middleware.Logger())
	ec.Use(middleware.Recover())
	ec.Use(metrics.Middleware())
	if config.RequestTimeout > 0 {
		ec.Use(middleware.ContextTimeoutWithConfig(middleware.ContextTimeoutConfig{Timeout: config.RequestTimeout}))
	}

	ec.GET("/metrics/", metrics.Handler())

	api := ec.Group(BasePath, newRequestValidator(spec))
	api.GET("/health/", gateway.health)

	moviesGroup := api.Group("/movies")
	gateway.moviesController.SetRoutes(moviesGroup)

	genresGroup := api.Group("/genres")
	gateway.genresController.SetRoutes(genresGroup)

	return gateway, nil
}

func (gateway *RestGateway) Run(parentCtx context.Context) error {
	ctx, ctxCancel := context.WithCancelCause(parentCtx)
	defer ctxCancel(nil)

	// Start echo router
	done := make(chan struct{})
	go func() {
		defer close(done)
		log.Emit(logger.NEW, "Listening on %s\n", gateway.config.HostAddr)
		if err := gateway.ec.Start(gateway.config.HostAddr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			ctxCancel(err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := gateway.ec.Shutdown(shutdownCtx); err != nil {
		log.Warnf("Failed to gracefully shutdown HTTP server: %v\n", err)
		_ = gateway.ec.Close()
	}
	<-done

	// Return cancellation cause if any, otherwise nil as parent context
	// cancellation is not an error case we should report.
	if cause := context.Cause(ctx); cause != ctx.Err() {
		return cause
	}

	return nil
}

// ServeHTTP allows the gateway to be used directly as a http.Handler.
func (gateway *RestGateway) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	gateway.ec.ServeHTTP(w, r)
}

func (gateway *RestGateway) health(ec echo.Context) error {
	if err := gateway.catalog.Ping(ec.Request().Context()); err != nil {
		return apierr.FromCatalogError(err)
	}

	return ec.JSON(http.StatusOK, healthDto{Status: "ok"})
}
