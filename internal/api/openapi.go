package api

import (
	_ "embed"
	"fmt"
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/hbomb79/Marquee/internal/api/apierr"
	"github.com/labstack/echo/v4"
	middleware "github.com/oapi-codegen/echo-middleware"
)

//go:embed openapi.yaml
var openapiDocument []byte

// LoadSpec parses and validates the embedded OpenAPI document.
func LoadSpec() (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	spec, err := loader.LoadFromData(openapiDocument)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI spec: %w", err)
	}

	if err := spec.Validate(loader.Context); err != nil {
		return nil, fmt.Errorf("OpenAPI spec is invalid: %w", err)
	}

	// Clear out the servers array in the spec, this skips validating
	// that server names match. We don't know how this thing will be run.
	spec.Servers = nil

	return spec, nil
}

// newRequestValidator rejects requests which do not conform to the
// OpenAPI spec (unknown enum values, non-integer IDs, etc) before they
// reach the controllers.
func newRequestValidator(spec *openapi3.T) echo.MiddlewareFunc {
	return middleware.OapiRequestValidatorWithOptions(spec, &middleware.Options{
		ErrorHandler: func(_ echo.Context, err *echo.HTTPError) error {
			apiErr := apierr.APIError{
				Status:  err.Code,
				Code:    "INVALID_REQUEST",
				Message: fmt.Sprint(err.Message),
			}
			if err.Code == http.StatusNotFound {
				apiErr.Code = "NOT_FOUND"
			}

			return apiErr
		},
	})
}
