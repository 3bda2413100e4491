package movie

import "errors"

var (
	// ErrStorageUnavailable wraps any failure originating from the
	// catalog store. An empty result is never reported with this error.
	ErrStorageUnavailable = errors.New("catalog storage unavailable")

	ErrInvalidFilter = errors.New("invalid filter")
	ErrInvalidLimit  = errors.New("invalid limit")
	ErrMovieNotFound = errors.New("movie does not exist")
)
