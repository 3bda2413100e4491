package apierr

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/hbomb79/Marquee/internal/movie"
	"github.com/hbomb79/Marquee/pkg/logger"
	"github.com/labstack/echo/v4"
)

type APIError struct {
	// Human readable error display message
	Message string `json:"message"`

	// A machine readable and stable identifier for the error case being represented
	Code string `json:"code"`

	// Used to alter the HTTP response status in accordance with the error
	Status int `json:"-"`

	// Additional message for internal logging only. Will not be included in the message
	// sent to the user.
	InternalMessage string `json:"-"`
}

// Error satisifies the Go error interface and simply exposes the
// message contained by this APIError.
func (err APIError) Error() string {
	return fmt.Sprintf("api error: %s", err.Message)
}

// StatusCode is the HTTP status this error will be rendered with.
func (err APIError) StatusCode() int {
	if err.Status == 0 {
		return http.StatusInternalServerError
	}

	return err.Status
}

func InvalidParameter(name string, err error) APIError {
	return APIError{
		Status:          http.StatusBadRequest,
		Code:            "INVALID_PARAMETER",
		Message:         fmt.Sprintf("query parameter %q is invalid", name),
		InternalMessage: err.Error(),
	}
}

// FromCatalogError translates an error returned by the catalog
// in to the APIError the caller should see.
func FromCatalogError(err error) APIError {
	switch {
	case errors.Is(err, movie.ErrInvalidFilter):
		return APIError{Status: http.StatusBadRequest, Code: "INVALID_FILTER", Message: err.Error()}
	case errors.Is(err, movie.ErrInvalidLimit):
		return APIError{Status: http.StatusBadRequest, Code: "INVALID_LIMIT", Message: err.Error()}
	case errors.Is(err, movie.ErrMovieNotFound):
		return APIError{Status: http.StatusNotFound, Code: "MOVIE_NOT_FOUND", Message: "Movie not found"}
	case errors.Is(err, movie.ErrStorageUnavailable):
		return APIError{
			Status:          http.StatusServiceUnavailable,
			Code:            "STORAGE_UNAVAILABLE",
			Message:         "The movie catalog is currently unavailable",
			InternalMessage: err.Error(),
		}
	default:
		return APIError{Status: http.StatusInternalServerError, Code: "INTERNAL_ERROR", InternalMessage: err.Error()}
	}
}

// GetHTTPErrorHandler returns an echo HTTP error handler
// which understands how to interpret APIError. If an error is
// provided which is not recognized, it will be passed off to the
// fallback HTTP handler provided.
func GetHTTPErrorHandler(fallbackHandler echo.HTTPErrorHandler) echo.HTTPErrorHandler {
	log := logger.Get("API")
	return func(err error, ctx echo.Context) {
		var apiErr APIError
		if ok := errors.As(err, &apiErr); ok {
			apiErr.Status = apiErr.StatusCode()
			if len(apiErr.Message) == 0 {
				apiErr.Message = http.StatusText(apiErr.Status)
			}
			if len(apiErr.Code) == 0 {
				apiErr.Code = http.StatusText(apiErr.Status)
			}
			if len(apiErr.InternalMessage) > 0 {
				log.Errorf("Request failure, internal error: %s\n", apiErr.InternalMessage)
			}

			if err := ctx.JSON(apiErr.Status, apiErr); err == nil {
				return
			}
		}

		log.Warnf(
			"%s request to %s caused error response, however the response does not satisfy the APIError interface. Falling back to default HTTP error handling\n",
			ctx.Request().Method, ctx.Request().RequestURI,
		)
		fallbackHandler(err, ctx)
	}
}
