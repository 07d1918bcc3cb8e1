package api

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/parley/internal/domain/types"
)

const defaultLeaderboardLimit = 1000

// LeaderboardDependencies defines the interface for leaderboard operations
type LeaderboardDependencies interface {
	Leaderboard(ctx context.Context, eventID string) ([]types.Standing, error)
}

// LeaderboardHandler handles leaderboard requests
type LeaderboardHandler struct {
	deps     LeaderboardDependencies
	maxLimit int
}

// NewLeaderboardHandler creates a new leaderboard handler
func NewLeaderboardHandler(deps LeaderboardDependencies, maxLimit int) *LeaderboardHandler {
	return &LeaderboardHandler{
		deps:     deps,
		maxLimit: maxLimit,
	}
}

// HandleGetLeaderboard handles GET /events/{eventID}/leaderboard?limit=N requests.
// Without limit every standing is returned.
func (h *LeaderboardHandler) HandleGetLeaderboard(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_leaderboard"
	n := h.maxLimit
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		v, err := strconv.Atoi(limitStr)
		if err != nil || v < 1 {
			writeError(w, http.StatusBadRequest, "bad_request", NewKind(op, ErrBadRequest))
			return
		}
		if v > h.maxLimit {
			writeError(w, http.StatusBadRequest, "limit_exceeded", NewKind(op, ErrBadRequest))
			return
		}
		n = v
	}
	rows, err := h.deps.Leaderboard(r.Context(), chi.URLParam(r, "eventID"))
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	if len(rows) > n {
		rows = rows[:n]
	}
	writeJSON(w, http.StatusOK, rows)
}
