// Package survey validates Subjective Value Inventory responses and turns
// them into cohort-relative relational scores.
package survey

// Category is an SVI subscale.
type Category string

// SVI subscales, in report order.
const (
	Instrumental Category = "instrumental"
	Self         Category = "self"
	Process      Category = "process"
	Relationship Category = "relationship"
)

// Rating scale bounds.
const (
	MinRating = 1
	MaxRating = 7
)

// Field is one canonical SVI item.
type Field struct {
	Key      string
	Category Category
	// Reverse items are scored as 8 - v so that higher is always better.
	Reverse bool
}

// Fields is the canonical item list shared by validation, scoring and
// reporting. Keys outside this list are never counted.
var Fields = []Field{
	{Key: "outcomeSatisfaction", Category: Instrumental},
	{Key: "outcomeBalance", Category: Instrumental},
	{Key: "outcomeLoss", Category: Instrumental, Reverse: true},
	{Key: "outcomeLegitimacy", Category: Instrumental},

	{Key: "lostFace", Category: Self, Reverse: true},
	{Key: "competence", Category: Self},
	{Key: "principles", Category: Self},
	{Key: "selfImage", Category: Self},

	{Key: "listened", Category: Process},
	{Key: "fairness", Category: Process},
	{Key: "ease", Category: Process},
	{Key: "consideration", Category: Process},

	{Key: "impression", Category: Relationship},
	{Key: "relationshipSatisfaction", Category: Relationship},
	{Key: "trust", Category: Relationship},
	{Key: "futureFoundation", Category: Relationship},
}

// Categories returns the subscales in report order.
func Categories() []Category {
	return []Category{Instrumental, Self, Process, Relationship}
}

// Keys returns the canonical field keys in order.
func Keys() []string {
	keys := make([]string, len(Fields))
	for i, f := range Fields {
		keys[i] = f.Key
	}
	return keys
}
