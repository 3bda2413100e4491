// Package metrics holds the Prometheus collectors Marquee exposes on /metrics.
//
// Catalog metrics:
//   - marquee_catalog_query_duration_seconds: time spent answering a catalog operation (histogram)
//     Labels: operation
//   - marquee_catalog_query_errors_total: failed catalog operations (counter)
//     Labels: operation, error_type
//   - marquee_catalog_results: number of movies returned per operation (histogram)
//     Labels: operation
//
// HTTP metrics:
//   - marquee_http_requests_total: handled requests (counter)
//     Labels: route, method, status
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	CatalogQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_catalog_query_duration_seconds",
			Help:    "Duration of catalog operations in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"operation"},
	)

	CatalogQueryErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_catalog_query_errors_total",
			Help: "Total number of failed catalog operations",
		},
		[]string{"operation", "error_type"},
	)

	CatalogResults = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_catalog_results",
			Help:    "Number of movies returned by catalog operations",
			Buckets: []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"operation"},
	)

	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_http_requests_total",
			Help: "Total number of HTTP requests handled",
		},
		[]string{"route", "method", "status"},
	)
)

// RecordCatalogQuery records the outcome of a single catalog operation. An
// empty errorType marks the operation as successful, in which case the
// result count is observed.
func RecordCatalogQuery(operation string, duration time.Duration, results int, errorType string) {
	CatalogQueryDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if errorType != "" {
		CatalogQueryErrors.WithLabelValues(operation, errorType).Inc()
		return
	}

	CatalogResults.WithLabelValues(operation).Observe(float64(results))
}

// Middleware counts every request passing through the echo instance,
// labelled by the registered route path (not the raw URL) to keep
// label cardinality bounded.
func Middleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ec echo.Context) error {
			err := next(ec)

			status := ec.Response().Status
			if err != nil {
				status = http.StatusInternalServerError

				var httpErr *echo.HTTPError
				var coded interface{ StatusCode() int }
				if errors.As(err, &httpErr) {
					status = httpErr.Code
				} else if errors.As(err, &coded) {
					status = coded.StatusCode()
				}
			}

			route := ec.Path()
			if route == "" {
				route = "unmatched"
			}

			HTTPRequestsTotal.WithLabelValues(route, ec.Request().Method, strconv.Itoa(status)).Inc()
			return err
		}
	}
}

// Handler exposes the default registry in the Prometheus text format.
func Handler() echo.HandlerFunc {
	return echo.WrapHandler(promhttp.Handler())
}
