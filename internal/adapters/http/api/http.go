// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/okian/parley/internal/adapters/repository"
	service "github.com/okian/parley/internal/app"
	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/report"
	"github.com/okian/parley/internal/domain/schedule"
	"github.com/okian/parley/internal/domain/scorerange"
	"github.com/okian/parley/internal/domain/types"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	State(ctx context.Context, eventID string) (schedule.State, error)
	Report(ctx context.Context, eventID string, round int) (*report.Report, error)
	Leaderboard(ctx context.Context, eventID string) ([]types.Standing, error)
	CaseRange(ctx context.Context, caseID string) (model.ScoreRange, error)
	InvalidateCase(ctx context.Context, caseID string) bool
}

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler      *HealthHandler
	statsHandler       *StatsHandler
	eventsHandler      *EventsHandler
	reportHandler      *ReportHandler
	leaderboardHandler *LeaderboardHandler
	casesHandler       *CasesHandler
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, statsProvider StatsProvider) *Server {
	return &Server{
		healthHandler:      NewHealthHandler(),
		statsHandler:       NewStatsHandler(statsProvider),
		eventsHandler:      NewEventsHandler(deps),
		reportHandler:      NewReportHandler(deps),
		leaderboardHandler: NewLeaderboardHandler(deps, defaultLeaderboardLimit),
		casesHandler:       NewCasesHandler(deps),
	}
}

// Register attaches all HTTP routes to r.
func (s *Server) Register(r chi.Router) {
	r.Get("/healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	r.Get("/stats", MetricsMiddleware(s.statsHandler.HandleStats, "stats"))

	r.Route("/events/{eventID}", func(r chi.Router) {
		r.Get("/state", MetricsMiddleware(s.eventsHandler.HandleGetState, "state"))
		r.Get("/leaderboard", MetricsMiddleware(s.leaderboardHandler.HandleGetLeaderboard, "leaderboard"))
		r.Get("/rounds/{round}/report", MetricsMiddleware(s.reportHandler.HandleGetReport, "report"))
		r.Get("/rounds/{round}/report.xlsx", MetricsMiddleware(s.reportHandler.HandleGetWorkbook, "report_xlsx"))
	})

	r.Get("/cases/{caseID}/range", MetricsMiddleware(s.casesHandler.HandleGetRange, "case_range"))
	r.Delete("/cases/{caseID}/range", MetricsMiddleware(s.casesHandler.HandleInvalidateRange, "case_range"))
}

// Router returns a chi router with every route registered.
func (s *Server) Router() chi.Router {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})
	s.Register(r)
	return r
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}

// writeServiceError translates upstream errors to their HTTP status.
func writeServiceError(w http.ResponseWriter, op string, err error) {
	switch {
	case errors.Is(err, ErrBadRequest):
		writeError(w, http.StatusBadRequest, "bad_request", Wrap(op, err))
	case errors.Is(err, repository.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", Wrap(op, err))
	case errors.Is(err, report.ErrUnknownRound):
		writeError(w, http.StatusNotFound, "unknown_round", Wrap(op, err))
	case errors.Is(err, service.ErrRoundNotVisible):
		writeError(w, http.StatusConflict, "round_not_visible", Wrap(op, err))
	case errors.Is(err, scorerange.ErrNotScorable):
		writeError(w, http.StatusUnprocessableEntity, "not_scorable", Wrap(op, err))
	case errors.Is(err, scorerange.ErrCaseConfig):
		writeError(w, http.StatusUnprocessableEntity, "case_config", Wrap(op, err))
	case errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusGatewayTimeout, "store_timeout", Wrap(op, err))
	case errors.Is(err, service.ErrNotStarted):
		writeError(w, http.StatusServiceUnavailable, "unavailable", Wrap(op, err))
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", Wrap(op, err))
	}
}
