package api

import (
	"bytes"
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/okian/parley/internal/adapters/export"
	"github.com/okian/parley/internal/domain/report"
)

// ReportDependencies defines the interface for round reports.
type ReportDependencies interface {
	Report(ctx context.Context, eventID string, round int) (*report.Report, error)
}

// ReportHandler serves round reports as JSON or as a workbook.
type ReportHandler struct {
	deps ReportDependencies
}

// NewReportHandler creates a new report handler.
func NewReportHandler(deps ReportDependencies) *ReportHandler {
	return &ReportHandler{deps: deps}
}

// HandleGetReport handles GET /events/{eventID}/rounds/{round}/report requests.
func (h *ReportHandler) HandleGetReport(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report"
	rep, err := h.load(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	writeJSON(w, http.StatusOK, rep)
}

// HandleGetWorkbook handles GET /events/{eventID}/rounds/{round}/report.xlsx requests.
func (h *ReportHandler) HandleGetWorkbook(w http.ResponseWriter, r *http.Request) {
	const op = "api.get_report_xlsx"
	rep, err := h.load(r)
	if err != nil {
		writeServiceError(w, op, err)
		return
	}
	var buf bytes.Buffer
	if err := export.WriteXLSX(&buf, rep); err != nil {
		writeError(w, http.StatusInternalServerError, "export_failed", Wrap(op, err))
		return
	}
	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf(`attachment; filename="%s-round-%d.xlsx"`, rep.EventID, rep.Round))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

func (h *ReportHandler) load(r *http.Request) (*report.Report, error) {
	round, err := strconv.Atoi(chi.URLParam(r, "round"))
	if err != nil || round < 1 {
		return nil, fmt.Errorf("%w: round must be a positive integer", ErrBadRequest)
	}
	return h.deps.Report(r.Context(), chi.URLParam(r, "eventID"), round)
}
