package survey

import (
	"strconv"
	"strings"

	"github.com/okian/parley/internal/domain/model"
)

// Completeness classifies a response against the canonical fields.
type Completeness int

// Completeness levels.
const (
	Absent Completeness = iota
	Partial
	Complete
)

func (c Completeness) String() string {
	switch c {
	case Complete:
		return "complete"
	case Partial:
		return "partial"
	default:
		return "absent"
	}
}

// MarshalText renders the level name in JSON.
func (c Completeness) MarshalText() ([]byte, error) { return []byte(c.String()), nil }

// Rating returns the submitted value of f. A value counts only if it is
// non-empty after trimming and an integer on the 1..7 scale.
func Rating(resp *model.SurveyResponse, f Field) (int, bool) {
	if resp == nil {
		return 0, false
	}
	raw, ok := resp.Ratings[f.Key]
	if !ok {
		return 0, false
	}
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < MinRating || v > MaxRating {
		return 0, false
	}
	return v, true
}

// Score returns the rating of f with reverse scoring applied.
func Score(resp *model.SurveyResponse, f Field) (int, bool) {
	v, ok := Rating(resp, f)
	if !ok {
		return 0, false
	}
	if f.Reverse {
		return MinRating + MaxRating - v, true
	}
	return v, true
}

// Classify reports whether every canonical field is present, some are, or none.
func Classify(resp *model.SurveyResponse) Completeness {
	present := 0
	for _, f := range Fields {
		if _, ok := Rating(resp, f); ok {
			present++
		}
	}
	switch present {
	case 0:
		return Absent
	case len(Fields):
		return Complete
	default:
		return Partial
	}
}

// Missing lists the canonical keys without a usable rating.
func Missing(resp *model.SurveyResponse) []string {
	var out []string
	for _, f := range Fields {
		if _, ok := Rating(resp, f); !ok {
			out = append(out, f.Key)
		}
	}
	return out
}

// Mean averages the scored ratings present in resp.
func Mean(resp *model.SurveyResponse) (float64, bool) {
	return mean(resp, func(Field) bool { return true })
}

// CategoryMean averages the scored ratings of one subscale.
func CategoryMean(resp *model.SurveyResponse, c Category) (float64, bool) {
	return mean(resp, func(f Field) bool { return f.Category == c })
}

func mean(resp *model.SurveyResponse, keep func(Field) bool) (float64, bool) {
	sum, n := 0, 0
	for _, f := range Fields {
		if !keep(f) {
			continue
		}
		if v, ok := Score(resp, f); ok {
			sum += v
			n++
		}
	}
	if n == 0 {
		return 0, false
	}
	return float64(sum) / float64(n), true
}
