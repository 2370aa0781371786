package credentials

import (
	"errors"
	"net/http"
)

var (
	// ErrMissingCredential indicates neither an explicit nor a saved credential is available.
	ErrMissingCredential = errors.New("no analysis credential available; provide an API key")

	ErrNotFound   = errors.New("no saved credential")
	ErrAnonymous  = errors.New("saved credentials require an authenticated user")
	ErrEmptyValue = errors.New("credential must not be empty")
)

// MapHTTPStatus maps credential errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrMissingCredential):
		return http.StatusPreconditionRequired
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrAnonymous):
		return http.StatusUnauthorized
	case errors.Is(err, ErrEmptyValue):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
