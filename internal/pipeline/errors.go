package pipeline

import (
	"errors"
	"net/http"

	"github.com/JaimeStill/legal-lab/internal/analysis"
	"github.com/JaimeStill/legal-lab/internal/credentials"
	"github.com/JaimeStill/legal-lab/internal/normalize"
)

// ErrBusy is returned when an analysis is already in flight on the orchestrator.
var ErrBusy = errors.New("an analysis is already in progress")

// errRetired marks an orchestrator that a Registry has evicted.
var errRetired = errors.New("orchestrator retired")

// FallbackMessage is surfaced when a failure carries no usable message.
const FallbackMessage = "The analysis could not be completed. Please try again."

// Kind classifies a pipeline failure for callers.
type Kind string

const (
	KindUnsupportedFormat   Kind = "unsupported_format"
	KindSizeLimitExceeded   Kind = "size_limit_exceeded"
	KindNormalizationFailed Kind = "normalization_failed"
	KindMissingCredential   Kind = "missing_credential"
	KindAIInvocation        Kind = "ai_invocation"
	KindMalformedResponse   Kind = "malformed_response"
	KindBusy                Kind = "busy"
	KindInternal            Kind = "internal"
)

// KindOf returns the failure kind of err.
func KindOf(err error) Kind {
	switch {
	case errors.Is(err, normalize.ErrUnsupportedFormat):
		return KindUnsupportedFormat
	case errors.Is(err, normalize.ErrSizeLimitExceeded):
		return KindSizeLimitExceeded
	case errors.Is(err, normalize.ErrReadFailed):
		return KindNormalizationFailed
	case errors.Is(err, credentials.ErrMissingCredential):
		return KindMissingCredential
	case errors.Is(err, analysis.ErrMalformedResponse):
		return KindMalformedResponse
	case errors.Is(err, analysis.ErrAIInvocation):
		return KindAIInvocation
	case errors.Is(err, ErrBusy):
		return KindBusy
	default:
		return KindInternal
	}
}

// MapHTTPStatus maps pipeline errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	switch KindOf(err) {
	case KindBusy:
		return http.StatusConflict
	case KindUnsupportedFormat, KindSizeLimitExceeded, KindNormalizationFailed:
		return normalize.MapHTTPStatus(err)
	case KindMissingCredential:
		return credentials.MapHTTPStatus(err)
	case KindAIInvocation, KindMalformedResponse:
		return analysis.MapHTTPStatus(err)
	default:
		return http.StatusInternalServerError
	}
}
