package analysis

import (
	"errors"
	"net/http"
)

var (
	ErrAIInvocation      = errors.New("analysis service call failed")
	ErrMalformedResponse = errors.New("analysis service returned a malformed response")
)

// MapHTTPStatus maps analysis errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	if errors.Is(err, ErrAIInvocation) || errors.Is(err, ErrMalformedResponse) {
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
