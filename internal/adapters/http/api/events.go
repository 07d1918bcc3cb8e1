package api

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/okian/parley/internal/domain/schedule"
)

// StateDependencies defines the interface for event state projection.
type StateDependencies interface {
	State(ctx context.Context, eventID string) (schedule.State, error)
}

// EventsHandler serves event level views.
type EventsHandler struct {
	deps StateDependencies
}

// NewEventsHandler creates a new events handler.
func NewEventsHandler(deps StateDependencies) *EventsHandler {
	return &EventsHandler{deps: deps}
}

// HandleGetState handles GET /events/{eventID}/state requests.
func (h *EventsHandler) HandleGetState(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_state"
	eventID := strings.TrimSpace(chi.URLParam(r, "eventID"))
	if eventID == "" {
		writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
		return
	}
	st, err := h.deps.State(r.Context(), eventID)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, st)
}
