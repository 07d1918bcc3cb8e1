package api

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/parley/internal/domain/model"
)

// CaseDependencies defines the interface for case range operations.
type CaseDependencies interface {
	CaseRange(ctx context.Context, caseID string) (model.ScoreRange, error)
	InvalidateCase(ctx context.Context, caseID string) bool
}

// CasesHandler serves case score ranges.
type CasesHandler struct {
	deps CaseDependencies
}

// NewCasesHandler creates a new cases handler.
func NewCasesHandler(deps CaseDependencies) *CasesHandler {
	return &CasesHandler{deps: deps}
}

// HandleGetRange handles GET /cases/{caseID}/range requests.
func (h *CasesHandler) HandleGetRange(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_case_range"
	rng, err := h.deps.CaseRange(r.Context(), chi.URLParam(r, "caseID"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rng)
}

type invalidateResponse struct {
	Case   string `json:"case"`
	Cached bool   `json:"cached"`
}

// HandleInvalidateRange handles DELETE /cases/{caseID}/range requests. It
// succeeds whether or not a range was cached.
func (h *CasesHandler) HandleInvalidateRange(w http.ResponseWriter, r *http.Request) {
	caseID := chi.URLParam(r, "caseID")
	writeJSON(w, http.StatusOK, invalidateResponse{
		Case:   caseID,
		Cached: h.deps.InvalidateCase(r.Context(), caseID),
	})
}
