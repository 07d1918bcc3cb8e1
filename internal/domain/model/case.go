package model

// ParamKind is the type of a case parameter's domain.
type ParamKind string

// Parameter kinds.
const (
	ParamInt   ParamKind = "int"   // Min..Max by Step (default 1)
	ParamFloat ParamKind = "float" // Min..Max by Step, or sampled when Step is 0
	ParamList  ParamKind = "list"  // explicit numeric Values
	ParamEnum  ParamKind = "enum"  // explicit string Options
)

// Parameter is one negotiable term of a case.
type Parameter struct {
	Name    string    `json:"name" bson:"name"`
	Kind    ParamKind `json:"kind" bson:"kind"`
	Min     float64   `json:"min,omitempty" bson:"min,omitempty"`
	Max     float64   `json:"max,omitempty" bson:"max,omitempty"`
	Step    float64   `json:"step,omitempty" bson:"step,omitempty"`
	Values  []float64 `json:"values,omitempty" bson:"values,omitempty"`
	Options []string  `json:"options,omitempty" bson:"options,omitempty"`
}

// Case defines the negotiable terms and how each side scores a deal.
type Case struct {
	ID       string      `json:"id" bson:"_id"`
	Name     string      `json:"name" bson:"name"`
	FormulaA string      `json:"formulaA" bson:"formulaA"`
	FormulaB string      `json:"formulaB" bson:"formulaB"`
	Params   []Parameter `json:"params" bson:"params"`
}

// Scorable reports whether both sides have a scoring formula.
func (c *Case) Scorable() bool {
	return c != nil && c.FormulaA != "" && c.FormulaB != ""
}

// Formula returns the scoring formula for side.
func (c *Case) Formula(side Side) string {
	if side == SideB {
		return c.FormulaB
	}
	return c.FormulaA
}

// ScoreRange is the achievable substantive score interval of each side.
type ScoreRange struct {
	MinA    float64 `json:"minA"`
	MaxA    float64 `json:"maxA"`
	MinSumA float64 `json:"minSumA"`
	MaxSumA float64 `json:"maxSumA"`
	MinB    float64 `json:"minB"`
	MaxB    float64 `json:"maxB"`
	MinSumB float64 `json:"minSumB"`
	MaxSumB float64 `json:"maxSumB"`

	// MinJoint and MaxJoint bound A+B over the whole domain.
	MinJoint float64 `json:"minJoint"`
	MaxJoint float64 `json:"maxJoint"`

	// Assignments is the number of parameter assignments evaluated.
	Assignments int `json:"assignments"`
}

const zeroSumTolerance = 1e-9

// Bounds returns the [min, max] interval for side.
func (r ScoreRange) Bounds(side Side) (lo, hi float64) {
	if side == SideB {
		return r.MinB, r.MaxB
	}
	return r.MinA, r.MaxA
}

// ZeroSum reports whether every deal splits the same total value.
func (r ScoreRange) ZeroSum() bool {
	return r.MaxJoint-r.MinJoint <= zeroSumTolerance
}
