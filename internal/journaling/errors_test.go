package journaling_test

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/helsedok/dokjournal/internal/convert"
	"github.com/helsedok/dokjournal/internal/journaling"
	"github.com/helsedok/dokjournal/internal/upstream"
)

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{
			"validation error",
			&journaling.ValidationError{Violations: []journaling.Violation{{Field: "documents", Reason: "empty"}}},
			http.StatusBadRequest,
		},
		{"missing correlation id", journaling.ErrMissingCorrelationID, http.StatusBadRequest},
		{
			"conversion error",
			convert.NewConversionError("image/png", errors.New("broken image")),
			http.StatusUnprocessableEntity,
		},
		{
			"wrapped conversion error",
			fmt.Errorf("normalize: %w", convert.NewConversionError("image/jpeg", errors.New("bad"))),
			http.StatusUnprocessableEntity,
		},
		{"not finalized", journaling.ErrNotFinalized, http.StatusBadGateway},
		{
			"wrapped not finalized",
			fmt.Errorf("%w: archive abc is in state PROVISIONALLY_FILED", journaling.ErrNotFinalized),
			http.StatusBadGateway,
		},
		{"permanent upstream failure", upstream.ErrPermanent, http.StatusBadGateway},
		{"transient upstream failure", upstream.ErrTransient, http.StatusGatewayTimeout},
		{"unknown error", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := journaling.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus(%v) = %d, want %d", tt.err, got, tt.want)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := &journaling.ValidationError{Violations: []journaling.Violation{
		{Field: "documents", Reason: "must include at least one document"},
		{Field: "subject_id", Reason: "must contain digits only"},
	}}

	want := "invalid journaling request: documents: must include at least one document; subject_id: must contain digits only"
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
