package journaling

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/helsedok/dokjournal/internal/documents"
	"github.com/helsedok/dokjournal/pkg/handlers"
)

// Journaler processes one journaling submission to completion.
type Journaler interface {
	Journal(ctx context.Context, sub CaseSubmission, correlationID string) (string, error)
}

// Response is the successful journaling response body.
type Response struct {
	JournalPostID string `json:"journal_post_id"`
}

// Handler provides the HTTP endpoint for journaling requests.
type Handler struct {
	svc    Journaler
	logger *slog.Logger
}

// NewHandler creates a journaling handler.
func NewHandler(svc Journaler, logger *slog.Logger) *Handler {
	return &Handler{
		svc:    svc,
		logger: logger.With("handler", "journaling"),
	}
}

// Journal handles POST /v1/journalforing. The correlation id header is
// required and propagated to every downstream call.
func (h *Handler) Journal(w http.ResponseWriter, r *http.Request) {
	correlationID := r.Header.Get(documents.CorrelationHeader)
	if correlationID == "" {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, ErrMissingCorrelationID)
		return
	}

	var sub CaseSubmission
	if err := json.NewDecoder(r.Body).Decode(&sub); err != nil {
		handlers.RespondError(w, h.logger, http.StatusBadRequest, err)
		return
	}

	journalPostID, err := h.svc.Journal(r.Context(), sub, correlationID)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	handlers.RespondJSON(w, http.StatusCreated, Response{JournalPostID: journalPostID})
}
