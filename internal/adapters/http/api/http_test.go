package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/parley/internal/adapters/export"
	"github.com/okian/parley/internal/adapters/http/api"
	"github.com/okian/parley/internal/adapters/repository"
	service "github.com/okian/parley/internal/app"
	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/report"
	"github.com/okian/parley/internal/domain/schedule"
	"github.com/okian/parley/internal/domain/scorerange"
	"github.com/okian/parley/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// mockDependencies answers for event "ev-1" with one visible round and one
// hidden round; case "c1" has a range and "c2" has no formulas.
type mockDependencies struct {
	invalidated []string
	fail        error
}

func (m *mockDependencies) State(_ context.Context, eventID string) (schedule.State, error) {
	if m.fail != nil {
		return schedule.State{}, m.fail
	}
	if eventID != "ev-1" {
		return schedule.State{}, fmt.Errorf("event %s: %w", eventID, repository.ErrNotFound)
	}
	return schedule.State{CurrentRoundIndex: 2, RoundsStarted: true, Status: schedule.Upcoming, Countdown: "1h 0m 0s"}, nil
}

func (m *mockDependencies) Report(_ context.Context, eventID string, round int) (*report.Report, error) {
	if m.fail != nil {
		return nil, m.fail
	}
	if eventID != "ev-1" {
		return nil, fmt.Errorf("event %s: %w", eventID, repository.ErrNotFound)
	}
	switch round {
	case 1:
		return &report.Report{
			ID: "rep-1", EventID: "ev-1", Round: 1, RoundID: "r1", Finished: true,
			ByTeam: []report.ResultSummary{{Team: "t1", Name: "Alpha", Rank: 1, Class: ranking.Full, Total: types.Some(0.5)}},
		}, nil
	case 2:
		return nil, fmt.Errorf("report: %w", service.ErrRoundNotVisible)
	default:
		return nil, fmt.Errorf("report: %w", report.ErrUnknownRound)
	}
}

func (m *mockDependencies) Leaderboard(_ context.Context, eventID string) ([]types.Standing, error) {
	if eventID != "ev-1" {
		return nil, repository.ErrNotFound
	}
	return []types.Standing{
		{Rank: 1, TeamID: "t1", Name: "Alpha", Total: 2, Rounds: 2},
		{Rank: 2, TeamID: "t2", Name: "Beta", Total: -2, Rounds: 2},
	}, nil
}

func (m *mockDependencies) CaseRange(_ context.Context, caseID string) (model.ScoreRange, error) {
	switch caseID {
	case "c1":
		return model.ScoreRange{MaxA: 100, MaxB: 100, Assignments: 101}, nil
	case "c2":
		return model.ScoreRange{}, fmt.Errorf("case range: %w", scorerange.ErrNotScorable)
	case "c3":
		return model.ScoreRange{}, fmt.Errorf("case range: %w", scorerange.ErrDomainTooLarge)
	}
	return model.ScoreRange{}, repository.ErrNotFound
}

func (m *mockDependencies) InvalidateCase(_ context.Context, caseID string) bool {
	m.invalidated = append(m.invalidated, caseID)
	return caseID == "c1"
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

func serve(h http.Handler, method, path string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, http.NoBody)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func errorCode(w *httptest.ResponseRecorder) string {
	var body struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	}
	So(json.Unmarshal(w.Body.Bytes(), &body), ShouldBeNil)
	So(body.Message, ShouldNotBeEmpty)
	return body.Code
}

func TestServer_Routes(t *testing.T) {
	Convey("Given an API server over mock dependencies", t, func() {
		deps := &mockDependencies{}
		stats := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
		router := api.NewServer(deps, stats).Router()

		Convey("Then health serves the metrics exposition", func() {
			w := serve(router, http.MethodGet, "/healthz")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, "parley_scoring_reports_built_total")
		})

		Convey("Then stats are encoded as JSON", func() {
			w := serve(router, http.MethodGet, "/stats")
			So(w.Code, ShouldEqual, http.StatusOK)
			var got map[string]any
			So(json.Unmarshal(w.Body.Bytes(), &got), ShouldBeNil)
			So(got["started"], ShouldBeTrue)
		})

		Convey("Then unknown paths get a JSON 404", func() {
			w := serve(router, http.MethodGet, "/unknown")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "not_found")
		})

		Convey("Then wrong methods are rejected", func() {
			w := serve(router, http.MethodPost, "/events/ev-1/state")
			So(w.Code, ShouldEqual, http.StatusMethodNotAllowed)
		})
	})
}

func TestEventsHandler(t *testing.T) {
	Convey("Given the state endpoint", t, func() {
		deps := &mockDependencies{}
		router := api.NewServer(deps, &mockStatsProvider{}).Router()

		Convey("When the event exists", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/state")

			Convey("Then the projection is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var st map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &st), ShouldBeNil)
				So(st["currentRoundIndex"], ShouldEqual, 2)
				So(st["status"], ShouldEqual, "upcoming")
			})
		})

		Convey("When the event is unknown", func() {
			w := serve(router, http.MethodGet, "/events/nope/state")
			So(w.Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When the store times out", func() {
			deps.fail = fmt.Errorf("state: %w", context.DeadlineExceeded)
			w := serve(router, http.MethodGet, "/events/ev-1/state")
			So(w.Code, ShouldEqual, http.StatusGatewayTimeout)
			So(errorCode(w), ShouldEqual, "store_timeout")
		})

		Convey("When the service is not running", func() {
			deps.fail = service.ErrNotStarted
			w := serve(router, http.MethodGet, "/events/ev-1/state")
			So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
		})
	})
}

func TestReportHandler(t *testing.T) {
	Convey("Given the report endpoints", t, func() {
		router := api.NewServer(&mockDependencies{}, &mockStatsProvider{}).Router()

		Convey("When a visible round is requested", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/rounds/1/report")

			Convey("Then the report is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var rep map[string]any
				So(json.Unmarshal(w.Body.Bytes(), &rep), ShouldBeNil)
				So(rep["id"], ShouldEqual, "rep-1")
				byTeam, ok := rep["byTeam"].([]any)
				So(ok, ShouldBeTrue)
				So(len(byTeam), ShouldEqual, 1)
			})
		})

		Convey("When the round parameter is not a positive number", func() {
			for _, path := range []string{"/events/ev-1/rounds/x/report", "/events/ev-1/rounds/0/report"} {
				w := serve(router, http.MethodGet, path)
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				So(errorCode(w), ShouldEqual, "bad_request")
			}
		})

		Convey("When the round is not visible yet", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/rounds/2/report")
			So(w.Code, ShouldEqual, http.StatusConflict)
			So(errorCode(w), ShouldEqual, "round_not_visible")
		})

		Convey("When the round does not exist", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/rounds/9/report")
			So(w.Code, ShouldEqual, http.StatusNotFound)
			So(errorCode(w), ShouldEqual, "unknown_round")
		})

		Convey("When the workbook is requested", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/rounds/1/report.xlsx")

			Convey("Then a readable workbook is attached", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldEqual, export.ContentType)
				So(w.Header().Get("Content-Disposition"), ShouldContainSubstring, "ev-1-round-1.xlsx")

				f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
				So(err, ShouldBeNil)
				defer func() { _ = f.Close() }()
				rows, err := f.GetRows(export.RankingSheet)
				So(err, ShouldBeNil)
				So(rows[1][1], ShouldEqual, "t1")
			})
		})

		Convey("When the workbook round is hidden", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/rounds/2/report.xlsx")
			So(w.Code, ShouldEqual, http.StatusConflict)
		})
	})
}

func TestLeaderboardHandler(t *testing.T) {
	Convey("Given the leaderboard endpoint", t, func() {
		router := api.NewServer(&mockDependencies{}, &mockStatsProvider{}).Router()

		Convey("When no limit is given", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/leaderboard")
			var rows []types.Standing
			So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
			So(len(rows), ShouldEqual, 2)
			So(rows[0].TeamID, ShouldEqual, "t1")
		})

		Convey("When a limit is given", func() {
			w := serve(router, http.MethodGet, "/events/ev-1/leaderboard?limit=1")
			var rows []types.Standing
			So(json.Unmarshal(w.Body.Bytes(), &rows), ShouldBeNil)
			So(len(rows), ShouldEqual, 1)
		})

		Convey("When the limit is invalid", func() {
			So(serve(router, http.MethodGet, "/events/ev-1/leaderboard?limit=0").Code, ShouldEqual, http.StatusBadRequest)
			w := serve(router, http.MethodGet, "/events/ev-1/leaderboard?limit=100000")
			So(w.Code, ShouldEqual, http.StatusBadRequest)
			So(errorCode(w), ShouldEqual, "limit_exceeded")
		})

		Convey("When the event is unknown", func() {
			So(serve(router, http.MethodGet, "/events/nope/leaderboard").Code, ShouldEqual, http.StatusNotFound)
		})
	})
}

func TestCasesHandler(t *testing.T) {
	Convey("Given the case range endpoints", t, func() {
		deps := &mockDependencies{}
		router := api.NewServer(deps, &mockStatsProvider{}).Router()

		Convey("When a scorable case is requested", func() {
			w := serve(router, http.MethodGet, "/cases/c1/range")
			So(w.Code, ShouldEqual, http.StatusOK)
			var rng model.ScoreRange
			So(json.Unmarshal(w.Body.Bytes(), &rng), ShouldBeNil)
			So(rng.MaxA, ShouldEqual, 100)
			So(rng.Assignments, ShouldEqual, 101)
		})

		Convey("When the case cannot be ranged", func() {
			w := serve(router, http.MethodGet, "/cases/c2/range")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errorCode(w), ShouldEqual, "not_scorable")

			w = serve(router, http.MethodGet, "/cases/c3/range")
			So(w.Code, ShouldEqual, http.StatusUnprocessableEntity)
			So(errorCode(w), ShouldEqual, "case_config")
		})

		Convey("When the case is unknown", func() {
			So(serve(router, http.MethodGet, "/cases/zz/range").Code, ShouldEqual, http.StatusNotFound)
		})

		Convey("When a range is invalidated", func() {
			w := serve(router, http.MethodDelete, "/cases/c1/range")
			So(w.Code, ShouldEqual, http.StatusOK)
			So(w.Body.String(), ShouldContainSubstring, `"cached":true`)
			So(deps.invalidated, ShouldResemble, []string{"c1"})
		})
	})
}

func TestErrorWrapping(t *testing.T) {
	Convey("Given an operation error", t, func() {
		err := api.Wrap("api.op", repository.ErrNotFound)

		Convey("Then it names the operation and keeps the cause", func() {
			So(err.Error(), ShouldStartWith, "api.op: ")
			So(errors.Is(err, repository.ErrNotFound), ShouldBeTrue)
			So(api.Wrap("api.op", nil), ShouldBeNil)
			So(errors.Is(api.NewKind("api.op", api.ErrBadRequest), api.ErrBadRequest), ShouldBeTrue)
		})
	})
}
