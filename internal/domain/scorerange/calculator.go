// Package scorerange establishes the achievable score interval of each side of
// a case by searching every assignment of its parameter domain.
package scorerange

import (
	"fmt"
	"math"

	"github.com/okian/parley/internal/domain/formula"
	"github.com/okian/parley/internal/domain/model"
)

// Default calculator configuration constants.
const (
	defaultMaxAssignments = 250000
	defaultSamples        = 21
	stepTolerance         = 1e-9
)

// Integers beyond 2^53 are not exact in float64.
const maxExactInt = 1 << 53

// Calculator computes score ranges by exhaustive search.
type Calculator struct {
	eval           formula.Evaluator
	maxAssignments int
	samples        int
}

// NewCalculator creates a calculator with configuration options.
func NewCalculator(opts ...Option) *Calculator {
	c := &Calculator{
		eval:           formula.NewEvaluator(),
		maxAssignments: defaultMaxAssignments,
		samples:        defaultSamples,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// extreme tracks one side's best or worst value and the joint total at the
// assignment that produced it. The first assignment in enumeration order wins ties.
type extreme struct {
	value float64
	joint float64
	set   bool
}

func (x *extreme) offer(v, joint float64, better func(a, b float64) bool) {
	if !x.set || better(v, x.value) {
		x.value, x.joint, x.set = v, joint, true
	}
}

func less(a, b float64) bool    { return a < b }
func greater(a, b float64) bool { return a > b }

// Compute returns the range of both sides over the case's parameter domain.
func (c *Calculator) Compute(cs *model.Case) (model.ScoreRange, error) {
	if !cs.Scorable() {
		return model.ScoreRange{}, ErrNotScorable
	}

	domains, err := c.Domains(cs.Params)
	if err != nil {
		return model.ScoreRange{}, err
	}

	total := 1
	for i, d := range domains {
		if total > c.maxAssignments/len(d) {
			return model.ScoreRange{}, fmt.Errorf("%w: more than %d assignments at parameter %q",
				ErrDomainTooLarge, c.maxAssignments, cs.Params[i].Name)
		}
		total *= len(d)
	}

	var minA, maxA, minB, maxB extreme
	minJoint, maxJoint := math.Inf(1), math.Inf(-1)

	env := make(map[string]any, len(cs.Params))
	idx := make([]int, len(domains))
	for n := 0; n < total; n++ {
		for i, p := range cs.Params {
			env[p.Name] = domains[i][idx[i]]
		}

		a, err := c.eval.Evaluate(cs.FormulaA, env)
		if err != nil {
			return model.ScoreRange{}, fmt.Errorf("%w: side a at %v: %w", ErrFormulaRange, env, err)
		}
		b, err := c.eval.Evaluate(cs.FormulaB, env)
		if err != nil {
			return model.ScoreRange{}, fmt.Errorf("%w: side b at %v: %w", ErrFormulaRange, env, err)
		}

		joint := a + b
		minA.offer(a, joint, less)
		maxA.offer(a, joint, greater)
		minB.offer(b, joint, less)
		maxB.offer(b, joint, greater)
		minJoint = math.Min(minJoint, joint)
		maxJoint = math.Max(maxJoint, joint)

		// odometer: last parameter varies fastest
		for i := len(idx) - 1; i >= 0; i-- {
			idx[i]++
			if idx[i] < len(domains[i]) {
				break
			}
			idx[i] = 0
		}
	}

	return model.ScoreRange{
		MinA: minA.value, MaxA: maxA.value,
		MinSumA: minA.joint, MaxSumA: maxA.joint,
		MinB: minB.value, MaxB: maxB.value,
		MinSumB: minB.joint, MaxSumB: maxB.joint,
		MinJoint: minJoint, MaxJoint: maxJoint,
		Assignments: total,
	}, nil
}

// Domains discretizes each parameter into the values the search will assign.
// Integer parameters yield int values, enums yield strings, the rest float64.
func (c *Calculator) Domains(params []model.Parameter) ([][]any, error) {
	out := make([][]any, len(params))
	seen := make(map[string]struct{}, len(params))
	for i, p := range params {
		if p.Name == "" {
			return nil, fmt.Errorf("%w: parameter %d has no name", ErrInvalidDomain, i)
		}
		if _, dup := seen[p.Name]; dup {
			return nil, fmt.Errorf("%w: duplicate parameter %q", ErrInvalidDomain, p.Name)
		}
		seen[p.Name] = struct{}{}

		d, err := c.domain(p)
		if err != nil {
			return nil, err
		}
		if len(d) == 0 {
			return nil, fmt.Errorf("%w: parameter %q has an empty domain", ErrInvalidDomain, p.Name)
		}
		out[i] = d
	}
	return out, nil
}

func (c *Calculator) domain(p model.Parameter) ([]any, error) {
	switch p.Kind {
	case model.ParamInt:
		return c.intDomain(p)
	case model.ParamFloat:
		return c.floatDomain(p)
	case model.ParamList:
		d := make([]any, 0, len(p.Values))
		for _, v := range p.Values {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				return nil, fmt.Errorf("%w: parameter %q lists a non-finite value", ErrInvalidDomain, p.Name)
			}
			d = append(d, v)
		}
		return d, nil
	case model.ParamEnum:
		d := make([]any, 0, len(p.Options))
		for _, o := range p.Options {
			d = append(d, o)
		}
		return d, nil
	default:
		return nil, fmt.Errorf("%w: parameter %q has unknown kind %q", ErrInvalidDomain, p.Name, p.Kind)
	}
}

func (c *Calculator) intDomain(p model.Parameter) ([]any, error) {
	step := p.Step
	if step == 0 {
		step = 1
	}
	if err := c.checkBounds(p, step); err != nil {
		return nil, err
	}
	if p.Min != math.Trunc(p.Min) || p.Max != math.Trunc(p.Max) || step != math.Trunc(step) {
		return nil, fmt.Errorf("%w: int parameter %q has fractional bounds or step", ErrInvalidDomain, p.Name)
	}

	count, tail, err := c.steps(p, step)
	if err != nil {
		return nil, err
	}
	if math.Abs(p.Min) > maxExactInt || math.Abs(p.Max) > maxExactInt || step > maxExactInt {
		return nil, fmt.Errorf("%w: int parameter %q has bounds or step beyond ±%d", ErrInvalidDomain, p.Name, maxExactInt)
	}

	lo, st := int(p.Min), int(step)
	d := make([]any, 0, count+1)
	for i := 0; i < count; i++ {
		d = append(d, lo+i*st)
	}
	if tail {
		d = append(d, int(p.Max))
	}
	return d, nil
}

func (c *Calculator) floatDomain(p model.Parameter) ([]any, error) {
	if p.Step == 0 {
		if err := c.checkBounds(p, 1); err != nil {
			return nil, err
		}
		if p.Min == p.Max {
			return []any{p.Min}, nil
		}
		d := make([]any, c.samples)
		width := p.Max - p.Min
		for i := range d {
			d[i] = p.Min + width*float64(i)/float64(c.samples-1)
		}
		// pin the endpoint against rounding drift
		d[c.samples-1] = p.Max
		return d, nil
	}

	if err := c.checkBounds(p, p.Step); err != nil {
		return nil, err
	}
	count, tail, err := c.steps(p, p.Step)
	if err != nil {
		return nil, err
	}
	d := make([]any, 0, count+1)
	for i := 0; i < count; i++ {
		d = append(d, p.Min+float64(i)*p.Step)
	}
	if tail {
		d = append(d, p.Max)
	}
	return d, nil
}

// steps counts the grid points Min, Min+step, ... not above Max. tail is set
// when Max falls between two points and has to be added on its own. The
// count is bounded in float64 so a huge span never reaches an int conversion.
func (c *Calculator) steps(p model.Parameter, step float64) (count int, tail bool, err error) {
	span := math.Floor((p.Max-p.Min)/step + stepTolerance)
	if math.IsInf(span, 0) || math.IsNaN(span) || span+1 > float64(c.maxAssignments) {
		return 0, false, fmt.Errorf("%w: parameter %q alone exceeds %d values", ErrDomainTooLarge, p.Name, c.maxAssignments)
	}
	count = int(span) + 1
	last := p.Min + span*step
	tail = p.Max-last > stepTolerance*step
	if tail && count+1 > c.maxAssignments {
		return 0, false, fmt.Errorf("%w: parameter %q alone exceeds %d values", ErrDomainTooLarge, p.Name, c.maxAssignments)
	}
	return count, tail, nil
}

func (c *Calculator) checkBounds(p model.Parameter, step float64) error {
	switch {
	case math.IsNaN(p.Min) || math.IsNaN(p.Max) || math.IsInf(p.Min, 0) || math.IsInf(p.Max, 0):
		return fmt.Errorf("%w: parameter %q has non-finite bounds", ErrInvalidDomain, p.Name)
	case p.Min > p.Max:
		return fmt.Errorf("%w: parameter %q has min %v above max %v", ErrInvalidDomain, p.Name, p.Min, p.Max)
	case step <= 0:
		return fmt.Errorf("%w: parameter %q has non-positive step %v", ErrInvalidDomain, p.Name, step)
	}
	return nil
}
