package journaling

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/helsedok/dokjournal/internal/convert"
	"github.com/helsedok/dokjournal/internal/upstream"
)

// Domain errors for journaling operations.
var (
	// ErrNotFinalized indicates the archive system accepted the submission
	// but did not reach the required terminal state. The archive record
	// exists; the operation must still be reported as failed.
	ErrNotFinalized = errors.New("archive submission accepted but not permanently filed")

	// ErrUnmappedContentType indicates a content type that should have been
	// eliminated by normalization reached request assembly. Always a bug.
	ErrUnmappedContentType = errors.New("unmapped content type survived normalization")

	// ErrUnknownTypeReference indicates an unrecognized TypeReference
	// implementation. Always a bug.
	ErrUnknownTypeReference = errors.New("unknown type reference")

	// ErrMissingCorrelationID indicates the inbound request lacked the
	// required correlation header.
	ErrMissingCorrelationID = errors.New("X-Correlation-ID header is required")
)

// Violation describes one violated precondition of a journaling request.
type Violation struct {
	Field  string `json:"field"`
	Reason string `json:"reason"`
}

// ValidationError reports every violated precondition of a request at once,
// so the caller receives the complete list in one response.
type ValidationError struct {
	Violations []Violation
}

func (e *ValidationError) Error() string {
	reasons := make([]string, len(e.Violations))
	for i, v := range e.Violations {
		reasons[i] = fmt.Sprintf("%s: %s", v.Field, v.Reason)
	}
	return "invalid journaling request: " + strings.Join(reasons, "; ")
}

// MapHTTPStatus maps journaling errors to HTTP status codes.
func MapHTTPStatus(err error) int {
	var validation *ValidationError
	var conversion *convert.ConversionError

	switch {
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.Is(err, ErrMissingCorrelationID):
		return http.StatusBadRequest
	case errors.As(err, &conversion):
		return http.StatusUnprocessableEntity
	case errors.Is(err, ErrNotFinalized):
		return http.StatusBadGateway
	case errors.Is(err, upstream.ErrPermanent):
		return http.StatusBadGateway
	case errors.Is(err, upstream.ErrTransient):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
