package cases

import (
	"errors"
	"net/http"
)

var (
	ErrNotFound      = errors.New("case record not found")
	ErrDuplicate     = errors.New("case record already exists")
	ErrInvalidRecord = errors.New("invalid case record")
	ErrAnonymous     = errors.New("case records require an authenticated user")
)

// MapHTTPStatus maps case errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrDuplicate):
		return http.StatusConflict
	case errors.Is(err, ErrInvalidRecord):
		return http.StatusBadRequest
	case errors.Is(err, ErrAnonymous):
		return http.StatusUnauthorized
	default:
		return http.StatusInternalServerError
	}
}
