// Package distribution builds per-category histograms of survey results for
// cohort-wide charts.
package distribution

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/survey"
)

// Overall is the category holding each team's mean over every SVI item.
const Overall = "overall"

// Roster resolves team IDs to display names.
type Roster interface {
	DisplayName(teamID string) string
}

// Distribution is the histogram set of one round.
type Distribution struct {
	Categories []string                       `json:"categories"`
	Counts     map[string]map[string]int      `json:"distribution"`
	Users      map[string]map[string][]string `json:"distributionUsers"`
	Average    map[string]float64             `json:"average"`
}

// Categories lists the SVI subscales followed by Overall.
func Categories() []string {
	subscales := survey.Categories()
	out := make([]string, 0, len(subscales)+1)
	for _, c := range subscales {
		out = append(out, string(c))
	}
	return append(out, Overall)
}

// Aggregate buckets each team's own-survey category means. Teams without a
// usable rating in a category are left out of that category.
func Aggregate(teams []string, surveys map[string]*model.SurveyResponse, roster Roster) Distribution {
	cats := Categories()
	d := Distribution{
		Categories: cats,
		Counts:     make(map[string]map[string]int, len(cats)),
		Users:      make(map[string]map[string][]string, len(cats)),
		Average:    make(map[string]float64, len(cats)),
	}

	for _, cat := range cats {
		counts := map[string]int{}
		users := map[string][]string{}
		sum, n := decimal.Zero, 0

		for _, team := range teams {
			v, ok := categoryMean(surveys[team], cat)
			if !ok {
				continue
			}
			exact := decimal.NewFromFloat(v)
			key := exact.Round(1).StringFixed(1)
			counts[key]++
			users[key] = append(users[key], displayName(roster, team))
			sum = sum.Add(exact)
			n++
		}

		for key := range users {
			sort.Strings(users[key])
		}
		d.Counts[cat] = counts
		d.Users[cat] = users
		if n > 0 {
			d.Average[cat] = Round1(sum.Div(decimal.NewFromInt(int64(n))).InexactFloat64())
		}
	}
	return d
}

// Round1 rounds half away from zero to one decimal place.
func Round1(v float64) float64 {
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func categoryMean(resp *model.SurveyResponse, cat string) (float64, bool) {
	if cat == Overall {
		return survey.Mean(resp)
	}
	return survey.CategoryMean(resp, survey.Category(cat))
}

func displayName(roster Roster, team string) string {
	if roster == nil {
		return team
	}
	if name := roster.DisplayName(team); name != "" {
		return name
	}
	return team
}
