// Package ranking orders a round's teams into placement classes and picks the
// best and worst performers.
package ranking

import (
	"sort"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/outcome"
	"github.com/okian/parley/internal/domain/survey"
	"github.com/okian/parley/internal/domain/types"
)

// Class is a placement tier. Lower classes are always ranked first.
type Class int

// Placement classes in rank order.
const (
	Full Class = iota
	SubstantiveOnly
	Pending
	Invalid
	Disqualified
)

func (c Class) String() string {
	switch c {
	case Full:
		return "full"
	case SubstantiveOnly:
		return "substantive_only"
	case Pending:
		return "pending"
	case Invalid:
		return "invalid"
	case Disqualified:
		return "disqualified"
	default:
		return "unknown"
	}
}

// MarshalText renders the class name in JSON.
func (c Class) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Policy weighs the substantive and relational terms of the total.
type Policy struct {
	SubWeight float64
	RelWeight float64
	// AIPrefix marks AI teams, which are never ranked.
	AIPrefix string
	// Scorable is false when the case cannot be scored; the substantive term
	// is then dropped for the whole cohort.
	Scorable bool
}

// DefaultPolicy weighs both terms equally.
func DefaultPolicy() Policy {
	return Policy{SubWeight: 1, RelWeight: 1, AIPrefix: "AI-", Scorable: true}
}

// Entry is one team's normalized results.
type Entry struct {
	TeamID     string
	Outcome    outcome.Outcome
	Relational survey.Relational
}

// Ranked is an Entry with its placement.
type Ranked struct {
	Entry
	Rank  int
	Class Class
	SubZ  types.Score
	Total types.Score
}

// Placement is the ordered result of ranking one round.
type Placement struct {
	Entries []Ranked
	Best    []types.TeamRank
	Worst   []types.TeamRank
	// Substantive is the cohort the substantive z-scores were measured against.
	Substantive survey.Cohort
}

// Rank places every human team. Ties within a class break on team ID.
func Rank(entries []Entry, policy Policy) Placement {
	humans := make([]Entry, 0, len(entries))
	for _, e := range entries {
		if !model.IsAITeam(e.TeamID, policy.AIPrefix) {
			humans = append(humans, e)
		}
	}

	var scores []float64
	if policy.Scorable {
		for _, e := range humans {
			if v, ok := e.Outcome.Value(); ok {
				scores = append(scores, v)
			}
		}
	}
	subCohort := survey.Stats(scores)

	ranked := make([]Ranked, len(humans))
	for i, e := range humans {
		ranked[i] = place(e, policy, subCohort)
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Class != b.Class {
			return a.Class < b.Class
		}
		ka, kb := sortKey(a), sortKey(b)
		if ka.Valid != kb.Valid {
			return ka.Valid
		}
		if ka.Valid && ka.Value != kb.Value {
			return ka.Value > kb.Value
		}
		return a.TeamID < b.TeamID
	})

	full := 0
	for i := range ranked {
		ranked[i].Rank = i + 1
		if ranked[i].Class == Full {
			full++
		}
	}

	k := min(ExtremeSize(len(ranked)), full)
	p := Placement{Entries: ranked, Substantive: subCohort}
	for i := 0; i < k; i++ {
		best := ranked[i]
		worst := ranked[full-1-i]
		p.Best = append(p.Best, types.TeamRank{Team: best.TeamID, Rank: best.Rank})
		p.Worst = append(p.Worst, types.TeamRank{Team: worst.TeamID, Rank: worst.Rank})
	}
	return p
}

func place(e Entry, policy Policy, subCohort survey.Cohort) Ranked {
	r := Ranked{Entry: e}

	switch e.Outcome.State {
	case outcome.Pending:
		r.Class = Pending
		return r
	case outcome.Disqualified:
		r.Class = Disqualified
		return r
	case outcome.Invalid:
		r.Class = Invalid
		return r
	case outcome.NotScorable:
		if policy.Scorable {
			r.Class = Invalid
			return r
		}
	}

	if v, ok := e.Outcome.Value(); ok && policy.Scorable {
		r.SubZ = types.Some(survey.ZScore(v, subCohort))
	}

	if relZ, ok := e.Relational.Value(); ok {
		switch {
		case !policy.Scorable:
			r.Total = types.Some(policy.RelWeight * relZ)
		case r.SubZ.Valid:
			r.Total = types.Some(policy.SubWeight*r.SubZ.Value + policy.RelWeight*relZ)
		}
	}

	if r.Total.Valid {
		r.Class = Full
	} else {
		r.Class = SubstantiveOnly
	}
	return r
}

func sortKey(r Ranked) types.Score {
	if r.Class == Full {
		return r.Total
	}
	return r.SubZ
}

// ExtremeSize returns how many teams the best and worst sets hold for a
// cohort of n ranked teams.
func ExtremeSize(n int) int {
	switch {
	case n >= 6:
		return 3
	case n >= 4:
		return 2
	case n >= 1:
		return 1
	default:
		return 0
	}
}
