// Package report assembles a round report from already fetched records:
// outcomes and relational scores are normalized, teams are ranked and survey
// results are aggregated.
package report

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/parley/internal/domain/distribution"
	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/outcome"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/schedule"
	"github.com/okian/parley/internal/domain/scorerange"
	"github.com/okian/parley/internal/domain/survey"
	"github.com/okian/parley/internal/domain/types"
)

// Report is the derived view of one round. It is rebuilt on every read.
type Report struct {
	ID          string            `json:"id"`
	EventID     string            `json:"eventId"`
	Round       int               `json:"round"`
	RoundID     string            `json:"roundId"`
	CaseID      string            `json:"caseId"`
	Range       *model.ScoreRange `json:"range,omitempty"`
	CaseError   string            `json:"caseError,omitempty"`
	Scale       float64           `json:"scale"`
	Finished    bool              `json:"finished"`
	GeneratedAt time.Time         `json:"generatedAt"`

	ByTeam []ResultSummary  `json:"byTeam"`
	Best   []types.TeamRank `json:"best"`
	Worst  []types.TeamRank `json:"worst"`
	Cohort survey.Cohort    `json:"relationalCohort"`

	distribution.Distribution
}

// Input is everything one round report is derived from.
type Input struct {
	Event      *model.Event
	RoundIndex int
	Case       *model.Case
	Range      *model.ScoreRange
	// RangeErr is the calculator's answer when no range could be established.
	RangeErr error
	// Results may span the whole event; only the round's records are used.
	Results []model.AgreementResult
	Surveys []model.SurveyResponse
	Now     time.Time
}

// Option applies a configuration option to the Builder.
type Option func(*Builder)

// WithPolicy sets the ranking policy. Scorable is derived per report.
func WithPolicy(p ranking.Policy) Option {
	return func(b *Builder) { b.policy = p }
}

// WithScale sets the upper bound of normalized substantive scores.
func WithScale(scale float64) Option {
	return func(b *Builder) {
		if scale > 0 {
			b.scale = scale
		}
	}
}

// WithNormalizer replaces the outcome normalizer.
func WithNormalizer(n *outcome.Normalizer) Option {
	return func(b *Builder) {
		if n != nil {
			b.normalizer = n
		}
	}
}

// Builder derives round reports.
type Builder struct {
	normalizer *outcome.Normalizer
	policy     ranking.Policy
	scale      float64
}

// NewBuilder creates a report builder with configuration options.
func NewBuilder(opts ...Option) *Builder {
	b := &Builder{
		normalizer: outcome.NewNormalizer(nil),
		policy:     ranking.DefaultPolicy(),
		scale:      100,
	}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Policy returns the ranking policy in use.
func (b *Builder) Policy() ranking.Policy { return b.policy }

// member is one human team's seat in the round.
type member struct {
	team     string
	side     model.Side
	opponent string
}

// Build derives the report of in.RoundIndex.
func (b *Builder) Build(in Input) (*Report, error) {
	if in.Event == nil {
		return nil, fmt.Errorf("%w: no event", ErrUnknownRound)
	}
	round, ok := in.Event.Round(in.RoundIndex)
	if !ok {
		return nil, fmt.Errorf("%w: event %s has no round %d", ErrUnknownRound, in.Event.ID, in.RoundIndex)
	}

	finished := schedule.Classify(round, in.Now) == schedule.Finished
	rep := &Report{
		ID:          uuid.NewString(),
		EventID:     in.Event.ID,
		Round:       in.RoundIndex,
		RoundID:     round.ID,
		CaseID:      round.CaseID,
		Scale:       b.scale,
		Finished:    finished,
		GeneratedAt: in.Now,
	}

	policy := b.policy
	policy.Scorable = in.Case.Scorable() && in.RangeErr == nil && in.Range != nil
	if policy.Scorable {
		rng := *in.Range
		rep.Range = &rng
	}
	if in.RangeErr != nil && !errors.Is(in.RangeErr, scorerange.ErrNotScorable) {
		rep.CaseError = in.RangeErr.Error()
	}

	members := b.members(in.Event, round)
	results := latestResults(in.Results, round.ID)
	surveys := roundSurveys(in.Surveys, round.ID)

	outcomes := make(map[string]outcome.Outcome, len(members))
	parts := make([]survey.Participant, 0, len(members))
	for _, m := range members {
		o := b.normalizer.Normalize(outcome.Input{
			Result:        results[m.team],
			Side:          m.side,
			Case:          in.Case,
			Range:         rep.Range,
			RoundFinished: finished,
			Scale:         b.scale,
		})
		outcomes[m.team] = o
		parts = append(parts, survey.Participant{
			TeamID:   m.team,
			Opponent: m.opponent,
			Pending:  o.State == outcome.Pending,
			AIRound:  round.IsAIRound() || model.IsAITeam(m.opponent, policy.AIPrefix),
		})
	}
	relational, cohort := survey.Normalize(parts, surveys)
	rep.Cohort = cohort

	entries := make([]ranking.Entry, len(members))
	sides := make(map[string]model.Side, len(members))
	teams := make([]string, len(members))
	for i, m := range members {
		entries[i] = ranking.Entry{TeamID: m.team, Outcome: outcomes[m.team], Relational: relational[m.team]}
		sides[m.team] = m.side
		teams[i] = m.team
	}
	placement := ranking.Rank(entries, policy)

	rep.ByTeam = make([]ResultSummary, len(placement.Entries))
	for i, r := range placement.Entries {
		own := survey.Classify(surveys[r.TeamID])
		rep.ByTeam[i] = ResultSummary{
			Team:        r.TeamID,
			Name:        in.Event.DisplayName(r.TeamID),
			Side:        sides[r.TeamID],
			Rank:        r.Rank,
			Class:       r.Class,
			Substantive: r.Outcome,
			Relational:  r.Relational,
			SubZ:        r.SubZ,
			Total:       r.Total,
			HasSvi:      own != survey.Absent,
			SurveyState: own,
		}
	}
	rep.Best = withNames(placement.Best, in.Event)
	rep.Worst = withNames(placement.Worst, in.Event)
	rep.Distribution = distribution.Aggregate(teams, surveys, in.Event)
	return rep, nil
}

// members lists the round's human teams. Without match pairings every roster
// team plays side A with no known opponent.
func (b *Builder) members(event *model.Event, round model.Round) []member {
	var out []member
	seen := map[string]bool{}
	add := func(team, opponent string, side model.Side) {
		if team == "" || seen[team] || model.IsAITeam(team, b.policy.AIPrefix) {
			return
		}
		seen[team] = true
		out = append(out, member{team: team, side: side, opponent: opponent})
	}

	for _, m := range round.Matches {
		add(m.TeamA, m.TeamB, model.SideA)
		add(m.TeamB, m.TeamA, model.SideB)
	}
	if len(round.Matches) == 0 {
		side := model.SideA
		if round.IsAIRound() && model.Side(round.AISide) == model.SideA {
			side = model.SideB
		}
		for _, t := range event.Teams {
			add(t.ID, "", side)
		}
	}
	return out
}

// latestResults keeps the most recently updated record per team.
func latestResults(all []model.AgreementResult, roundID string) map[string]*model.AgreementResult {
	out := map[string]*model.AgreementResult{}
	for i := range all {
		r := &all[i]
		if r.RoundID != roundID {
			continue
		}
		if cur, ok := out[r.TeamID]; !ok || r.UpdatedAt.After(cur.UpdatedAt) {
			out[r.TeamID] = r
		}
	}
	return out
}

func roundSurveys(all []model.SurveyResponse, roundID string) map[string]*model.SurveyResponse {
	out := map[string]*model.SurveyResponse{}
	for i := range all {
		s := &all[i]
		if s.RoundID != roundID {
			continue
		}
		if cur, ok := out[s.TeamID]; !ok || s.SubmittedAt.After(cur.SubmittedAt) {
			out[s.TeamID] = s
		}
	}
	return out
}

func withNames(in []types.TeamRank, event *model.Event) []types.TeamRank {
	out := make([]types.TeamRank, len(in))
	for i, tr := range in {
		tr.Name = event.DisplayName(tr.Team)
		out[i] = tr
	}
	return out
}
