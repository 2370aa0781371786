package normalize

import (
	"errors"
	"net/http"
)

var (
	ErrUnsupportedFormat = errors.New("unsupported document format")
	ErrSizeLimitExceeded = errors.New("document exceeds the maximum upload size")
	ErrReadFailed        = errors.New("document could not be read")
)

// MapHTTPStatus maps normalization errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrUnsupportedFormat):
		return http.StatusUnsupportedMediaType
	case errors.Is(err, ErrSizeLimitExceeded):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, ErrReadFailed):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
