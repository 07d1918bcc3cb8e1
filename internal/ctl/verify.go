package ctl

import (
	"context"
	"errors"
	"fmt"

	service "github.com/okian/parley/internal/app"
	"github.com/okian/parley/internal/domain/outcome"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/report"
	"github.com/okian/parley/internal/domain/types"
)

// RoundCheck is the verification outcome of one round report.
type RoundCheck struct {
	Round    int      `json:"round"`
	Visible  bool     `json:"visible"`
	Teams    int      `json:"teams"`
	Problems []string `json:"problems,omitempty"`
}

// Check lists every ordering rule the report breaks.
func Check(rep *report.Report) []string {
	var problems []string
	full := 0
	for i, s := range rep.ByTeam {
		if s.Rank != i+1 {
			problems = append(problems, fmt.Sprintf("team %s has rank %d at position %d", s.Team, s.Rank, i+1))
		}
		if i > 0 {
			prev := rep.ByTeam[i-1]
			if s.Class < prev.Class {
				problems = append(problems, fmt.Sprintf("team %s (%s) ranked after %s (%s)", s.Team, s.Class, prev.Team, prev.Class))
			}
			if s.Class == ranking.Full && prev.Class == ranking.Full && s.Total.Value > prev.Total.Value {
				problems = append(problems, fmt.Sprintf("team %s total %.3f above %s", s.Team, s.Total.Value, prev.Team))
			}
		}
		if (s.Class == ranking.Full) != s.Total.Valid {
			problems = append(problems, fmt.Sprintf("team %s class %s with total present=%t", s.Team, s.Class, s.Total.Valid))
		}
		if s.Class == ranking.Full {
			full++
		}
		if v, ok := s.Substantive.Value(); ok && (v < 0 || v > rep.Scale) {
			problems = append(problems, fmt.Sprintf("team %s score %.3f outside [0, %g]", s.Team, v, rep.Scale))
		}
		if s.Substantive.State == outcome.Disqualified && (s.SubZ.Valid || s.Total.Valid) {
			problems = append(problems, fmt.Sprintf("disqualified team %s carries a number", s.Team))
		}
	}

	want := min(ranking.ExtremeSize(len(rep.ByTeam)), full)
	if len(rep.Best) != want || len(rep.Worst) != want {
		problems = append(problems, fmt.Sprintf("best/worst hold %d/%d teams, want %d", len(rep.Best), len(rep.Worst), want))
	}
	for _, set := range [][]types.TeamRank{rep.Best, rep.Worst} {
		for _, tr := range set {
			if tr.Rank < 1 || tr.Rank > full {
				problems = append(problems, fmt.Sprintf("extreme team %s has rank %d outside the %d fully scored", tr.Team, tr.Rank, full))
			}
		}
	}
	return problems
}

// Verify checks every visible round of an event.
func (b *LocalBackend) Verify(ctx context.Context, eventID string) ([]RoundCheck, error) {
	event, err := b.store.FetchEvent(ctx, eventID)
	if err != nil {
		return nil, err
	}
	checks := make([]RoundCheck, 0, len(event.Rounds))
	for i := range event.Rounds {
		c := RoundCheck{Round: i + 1}
		rep, err := b.svc.Report(ctx, eventID, i+1)
		switch {
		case errors.Is(err, service.ErrRoundNotVisible):
		case err != nil:
			return nil, fmt.Errorf("round %d: %w", i+1, err)
		default:
			c.Visible = true
			c.Teams = len(rep.ByTeam)
			c.Problems = Check(rep)
		}
		checks = append(checks, c)
	}
	return checks, nil
}
