package survey

import (
	"math"

	"github.com/okian/parley/internal/domain/model"
)

// RelationalState tags what a Relational holds.
type RelationalState int

// Relational states. Only Partial and Scored carry a number.
const (
	RelationalPending RelationalState = iota
	NoEnemySvi
	NoSurvey
	RelationalPartial
	RelationalScored
)

func (s RelationalState) String() string {
	switch s {
	case RelationalPending:
		return "pending"
	case NoEnemySvi:
		return "no_enemy_svi"
	case NoSurvey:
		return "no_survey"
	case RelationalPartial:
		return "partial"
	case RelationalScored:
		return "scored"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s RelationalState) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Relational is one team's cohort-relative relational score.
type Relational struct {
	State RelationalState
	// Raw is the survey mean the z-score was derived from.
	Raw float64
	// Own is the completeness of the team's own survey.
	Own Completeness
	z   float64
}

// Value returns the z-score. ok is false when the score is withheld.
func (r Relational) Value() (z float64, ok bool) {
	if r.State != RelationalScored && r.State != RelationalPartial {
		return 0, false
	}
	return r.z, true
}

// NewRelational builds a relational result. z is kept only for states that
// carry a score.
func NewRelational(state RelationalState, raw, z float64) Relational {
	r := Relational{State: state, Raw: raw, Own: Complete}
	switch state {
	case RelationalScored:
		r.z = z
	case RelationalPartial:
		r.Own = Partial
		r.z = z
	case NoSurvey:
		r.Own = Absent
	}
	return r
}

// Flagged reports a score computed from an incomplete own survey.
func (r Relational) Flagged() bool { return r.State == RelationalPartial }

// Participant describes one team's position in the round.
type Participant struct {
	TeamID   string
	Opponent string
	// Pending is true while the team's agreement is unresolved.
	Pending bool
	// AIRound waives the opponent survey requirement.
	AIRound bool
}

// Cohort holds the statistics relational scores are measured against.
type Cohort struct {
	Mean float64 `json:"mean"`
	SD   float64 `json:"sd"`
	N    int     `json:"n"`
}

// Normalize scores every participant against the cohort of teams whose own
// survey is complete. surveys is keyed by team ID.
func Normalize(parts []Participant, surveys map[string]*model.SurveyResponse) (map[string]Relational, Cohort) {
	out := make(map[string]Relational, len(parts))
	var complete []float64

	for _, p := range parts {
		own := surveys[p.TeamID]
		r := Relational{Own: Classify(own)}
		switch {
		case p.Pending:
			r.State = RelationalPending
		case r.Own == Absent:
			r.State = NoSurvey
		default:
			ownMean, _ := Mean(own)
			raw := ownMean
			if !p.AIRound {
				oppMean, ok := Mean(surveys[p.Opponent])
				if p.Opponent == "" || !ok {
					r.State = NoEnemySvi
					break
				}
				raw = (ownMean + oppMean) / 2
			}
			r.Raw = raw
			if r.Own == Complete {
				r.State = RelationalScored
				complete = append(complete, raw)
			} else {
				r.State = RelationalPartial
			}
		}
		out[p.TeamID] = r
	}

	cohort := Stats(complete)
	for id, r := range out {
		if r.State == RelationalScored || r.State == RelationalPartial {
			r.z = ZScore(r.Raw, cohort)
			out[id] = r
		}
	}
	return out, cohort
}

// ZScore measures v against the cohort; a flat or empty cohort yields 0.
func ZScore(v float64, c Cohort) float64 {
	if c.N == 0 || c.SD == 0 {
		return 0
	}
	return (v - c.Mean) / c.SD
}

// Stats returns the population mean and standard deviation of values.
func Stats(values []float64) Cohort {
	if len(values) == 0 {
		return Cohort{}
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	mean := sum / float64(len(values))
	ss := 0.0
	for _, v := range values {
		ss += (v - mean) * (v - mean)
	}
	return Cohort{Mean: mean, SD: math.Sqrt(ss / float64(len(values))), N: len(values)}
}
