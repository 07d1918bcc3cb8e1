// Package outcome turns one team's agreement into a substantive score scaled
// against the achievable range of its side.
package outcome

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/okian/parley/internal/domain/formula"
	"github.com/okian/parley/internal/domain/model"
)

const defaultScale = 100

// State tags what an Outcome holds.
type State int

// Outcome states. Only Scored carries a number.
const (
	Pending State = iota
	Disqualified
	Scored
	NotScorable
	Invalid
)

func (s State) String() string {
	switch s {
	case Pending:
		return "pending"
	case Disqualified:
		return "disqualified"
	case Scored:
		return "scored"
	case NotScorable:
		return "not_scorable"
	case Invalid:
		return "invalid"
	default:
		return "unknown"
	}
}

// MarshalText renders the state name in JSON.
func (s State) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Outcome is the substantive result of one team in one round.
type Outcome struct {
	State State
	// Raw is the unscaled formula value; meaningful only when Scored.
	Raw float64
	// Err explains an Invalid outcome.
	Err   error
	score float64
}

// Value returns the scaled score. ok is false for every state but Scored, so
// a disqualified team can never be mistaken for a zero score.
func (o Outcome) Value() (score float64, ok bool) {
	if o.State != Scored {
		return 0, false
	}
	return o.score, true
}

// NewScored builds a Scored outcome from an already scaled score.
func NewScored(score, raw float64) Outcome {
	return Outcome{State: Scored, Raw: raw, score: score}
}

// Input is everything needed to score one team.
type Input struct {
	Result        *model.AgreementResult
	Side          model.Side
	Case          *model.Case
	Range         *model.ScoreRange
	RoundFinished bool
	Scale         float64
}

// Normalizer scores agreements with a formula evaluator.
type Normalizer struct {
	eval formula.Evaluator
}

// NewNormalizer creates a normalizer. A nil evaluator selects the expr-backed one.
func NewNormalizer(eval formula.Evaluator) *Normalizer {
	if eval == nil {
		eval = formula.NewEvaluator()
	}
	return &Normalizer{eval: eval}
}

// Normalize classifies and scores one team's agreement.
func (n *Normalizer) Normalize(in Input) Outcome {
	r := in.Result
	if r == nil || (!r.Final && !in.RoundFinished) {
		return Outcome{State: Pending}
	}
	if !r.MadeDeal {
		return Outcome{State: Disqualified}
	}
	if !in.Case.Scorable() || in.Range == nil {
		return Outcome{State: NotScorable}
	}

	params, err := Params(in.Case, r.Values)
	if err != nil {
		return Outcome{State: Invalid, Err: err}
	}
	raw, err := n.eval.Evaluate(in.Case.Formula(in.Side), params)
	if err != nil {
		return Outcome{State: Invalid, Err: fmt.Errorf("side %s: %w", in.Side, err)}
	}

	scale := in.Scale
	if scale <= 0 {
		scale = defaultScale
	}
	lo, hi := in.Range.Bounds(in.Side)
	return NewScored(Scale(raw, lo, hi, scale), raw)
}

// Scale maps raw from [lo, hi] onto [0, scale]. Values outside the range are
// clamped; a degenerate range puts everyone at the midpoint.
func Scale(raw, lo, hi, scale float64) float64 {
	if hi-lo <= 0 {
		return scale / 2
	}
	v := (raw - lo) / (hi - lo) * scale
	return math.Max(0, math.Min(scale, v))
}

// Params binds an agreement's stored values to the case's declared parameters.
// Numbers stored as text are parsed; integer parameters are passed as int.
func Params(cs *model.Case, values map[string]any) (map[string]any, error) {
	out := make(map[string]any, len(cs.Params))
	for _, p := range cs.Params {
		v, ok := values[p.Name]
		if !ok || v == nil {
			return nil, fmt.Errorf("%w: %q", ErrMissingValue, p.Name)
		}

		if p.Kind == model.ParamEnum {
			s, ok := v.(string)
			if !ok {
				s = fmt.Sprint(v)
			}
			out[p.Name] = s
			continue
		}

		f, ok := formula.ToFloat(v)
		if !ok {
			s, isText := v.(string)
			if !isText {
				return nil, fmt.Errorf("%w: %q has type %T", ErrBadValue, p.Name, v)
			}
			parsed, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %q is %q", ErrBadValue, p.Name, s)
			}
			f = parsed
		}
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %q is not finite", ErrBadValue, p.Name)
		}
		if p.Kind == model.ParamInt && f == math.Trunc(f) {
			out[p.Name] = int(f)
			continue
		}
		out[p.Name] = f
	}
	return out, nil
}
