package survey_test

import (
	"math"
	"strconv"
	"testing"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/survey"
	. "github.com/smartystreets/goconvey/convey"
)

// uniform builds a complete response whose scored mean is v: reverse items
// are submitted as 8-v.
func uniform(team string, v int) *model.SurveyResponse {
	r := &model.SurveyResponse{TeamID: team, Ratings: map[string]string{}}
	for _, f := range survey.Fields {
		raw := v
		if f.Reverse {
			raw = 8 - v
		}
		r.Ratings[f.Key] = strconv.Itoa(raw)
	}
	return r
}

func TestFields(t *testing.T) {
	Convey("Given the canonical SVI fields", t, func() {
		Convey("Then there are sixteen unique keys, four per subscale", func() {
			So(len(survey.Fields), ShouldEqual, 16)
			seen := map[string]bool{}
			per := map[survey.Category]int{}
			for _, f := range survey.Fields {
				So(seen[f.Key], ShouldBeFalse)
				seen[f.Key] = true
				per[f.Category]++
			}
			for _, c := range survey.Categories() {
				So(per[c], ShouldEqual, 4)
			}
			So(survey.Keys()[0], ShouldEqual, survey.Fields[0].Key)
		})
	})
}

func TestClassify(t *testing.T) {
	Convey("Given survey responses", t, func() {
		Convey("When every field is a rating", func() {
			So(survey.Classify(uniform("t1", 5)), ShouldEqual, survey.Complete)
		})

		Convey("When exactly one field is missing", func() {
			for _, f := range survey.Fields {
				r := uniform("t1", 5)
				delete(r.Ratings, f.Key)
				So(survey.Classify(r), ShouldEqual, survey.Partial)
				So(survey.Missing(r), ShouldResemble, []string{f.Key})
			}
		})

		Convey("When one field is blank after trimming", func() {
			r := uniform("t1", 5)
			r.Ratings["trust"] = "   "

			Convey("Then it does not count", func() {
				So(survey.Classify(r), ShouldEqual, survey.Partial)
			})
		})

		Convey("When a field is outside the scale or not a number", func() {
			r := uniform("t1", 5)
			r.Ratings["trust"] = "9"
			r.Ratings["ease"] = "high"

			Convey("Then neither counts", func() {
				So(survey.Classify(r), ShouldEqual, survey.Partial)
				So(len(survey.Missing(r)), ShouldEqual, 2)
			})
		})

		Convey("When a field is renamed and an extra key is added", func() {
			r := uniform("t1", 5)
			r.Ratings["Trust"] = r.Ratings["trust"]
			delete(r.Ratings, "trust")
			r.Ratings["comments"] = "7"

			Convey("Then the response is not complete", func() {
				So(survey.Classify(r), ShouldEqual, survey.Partial)
			})
		})

		Convey("When there is no response or nothing usable", func() {
			So(survey.Classify(nil), ShouldEqual, survey.Absent)
			So(survey.Classify(&model.SurveyResponse{Ratings: map[string]string{"comments": "7"}}), ShouldEqual, survey.Absent)
		})

		Convey("When item scores are averaged", func() {
			r := uniform("t1", 6)
			m, ok := survey.Mean(r)
			im, iok := survey.CategoryMean(r, survey.Instrumental)

			Convey("Then reverse items count as 8-v", func() {
				So(ok, ShouldBeTrue)
				So(m, ShouldEqual, 6)
				So(iok, ShouldBeTrue)
				So(im, ShouldEqual, 6)
			})
		})
	})
}

func TestNormalize(t *testing.T) {
	Convey("Given a human cohort", t, func() {
		partial := uniform("G", 6)
		delete(partial.Ratings, "trust")
		surveys := map[string]*model.SurveyResponse{
			"A": uniform("A", 6), "B": uniform("B", 2),
			"E": uniform("E", 7), "F": uniform("F", 3),
			"G": partial, "H": uniform("H", 4),
			"C": uniform("C", 5),
		}
		parts := []survey.Participant{
			{TeamID: "A", Opponent: "B"}, {TeamID: "B", Opponent: "A"},
			{TeamID: "E", Opponent: "F"}, {TeamID: "F", Opponent: "E"},
			{TeamID: "G", Opponent: "H"}, {TeamID: "H", Opponent: "G"},
			{TeamID: "C", Opponent: "D"}, {TeamID: "D", Opponent: "C"},
			{TeamID: "P", Opponent: "Q", Pending: true},
		}
		rel, cohort := survey.Normalize(parts, surveys)

		Convey("Then the raw value averages own and opponent survey means", func() {
			So(rel["A"].Raw, ShouldEqual, 4)
			So(rel["E"].Raw, ShouldEqual, 5)
			So(rel["G"].Raw, ShouldEqual, 5)
		})

		Convey("Then cohort statistics use complete own surveys only", func() {
			So(cohort.N, ShouldEqual, 5)
			So(cohort.Mean, ShouldAlmostEqual, 4.6, 1e-9)
			So(cohort.SD, ShouldAlmostEqual, math.Sqrt(0.24), 1e-9)
		})

		Convey("Then complete teams are scored against the cohort", func() {
			z, ok := rel["E"].Value()
			So(ok, ShouldBeTrue)
			So(rel["E"].State, ShouldEqual, survey.RelationalScored)
			So(z, ShouldAlmostEqual, 0.4/math.Sqrt(0.24), 1e-9)
		})

		Convey("Then an incomplete own survey is computed and flagged", func() {
			So(rel["G"].State, ShouldEqual, survey.RelationalPartial)
			So(rel["G"].Flagged(), ShouldBeTrue)
			_, ok := rel["G"].Value()
			So(ok, ShouldBeTrue)
		})

		Convey("Then a missing opponent survey withholds the score", func() {
			So(rel["C"].State, ShouldEqual, survey.NoEnemySvi)
			_, ok := rel["C"].Value()
			So(ok, ShouldBeFalse)
		})

		Convey("Then a missing own survey is distinct from a missing opponent survey", func() {
			So(rel["D"].State, ShouldEqual, survey.NoSurvey)
			So(rel["D"].Own, ShouldEqual, survey.Absent)
		})

		Convey("Then pending teams stay pending", func() {
			So(rel["P"].State, ShouldEqual, survey.RelationalPending)
		})
	})

	Convey("Given a round against the AI", t, func() {
		surveys := map[string]*model.SurveyResponse{"A": uniform("A", 6), "B": uniform("B", 4)}
		parts := []survey.Participant{
			{TeamID: "A", Opponent: "AI-1", AIRound: true},
			{TeamID: "B", Opponent: "AI-2", AIRound: true},
		}
		rel, cohort := survey.Normalize(parts, surveys)

		Convey("Then the opponent requirement is waived", func() {
			So(rel["A"].State, ShouldEqual, survey.RelationalScored)
			So(rel["A"].Raw, ShouldEqual, 6)
			So(cohort.Mean, ShouldEqual, 5)
			z, _ := rel["A"].Value()
			So(z, ShouldEqual, 1)
		})
	})

	Convey("Given a flat cohort", t, func() {
		surveys := map[string]*model.SurveyResponse{"A": uniform("A", 5), "B": uniform("B", 5)}
		rel, _ := survey.Normalize([]survey.Participant{
			{TeamID: "A", Opponent: "B"}, {TeamID: "B", Opponent: "A"},
		}, surveys)

		Convey("Then every z-score is zero", func() {
			z, ok := rel["A"].Value()
			So(ok, ShouldBeTrue)
			So(z, ShouldEqual, 0)
		})
	})
}
