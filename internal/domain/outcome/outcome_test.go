package outcome_test

import (
	"errors"
	"testing"

	"github.com/okian/parley/internal/domain/model"
	"github.com/okian/parley/internal/domain/outcome"
	. "github.com/smartystreets/goconvey/convey"
)

func priceCase() *model.Case {
	return &model.Case{
		ID:       "case-price",
		FormulaA: "price",
		FormulaB: "100 - price",
		Params:   []model.Parameter{{Name: "price", Kind: model.ParamInt, Min: 20, Max: 80}},
	}
}

func deal(price any) *model.AgreementResult {
	return &model.AgreementResult{TeamID: "t1", Values: map[string]any{"price": price}, MadeDeal: true, Final: true}
}

func TestNormalize(t *testing.T) {
	Convey("Given a normalizer and a case range", t, func() {
		n := outcome.NewNormalizer(nil)
		cs := priceCase()
		rng := &model.ScoreRange{MinA: 20, MaxA: 80, MinB: 20, MaxB: 80}
		in := outcome.Input{Side: model.SideA, Case: cs, Range: rng, Scale: 100}

		Convey("When the team has no record", func() {
			o := n.Normalize(in)

			Convey("Then it is pending", func() {
				So(o.State, ShouldEqual, outcome.Pending)
				_, ok := o.Value()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When the record is not final and the round is running", func() {
			r := deal(50)
			r.Final = false
			in.Result = r
			o := n.Normalize(in)

			Convey("Then it is pending", func() {
				So(o.State, ShouldEqual, outcome.Pending)
			})

			Convey("And the round then finishes", func() {
				in.RoundFinished = true

				Convey("Then the standing record is scored", func() {
					So(n.Normalize(in).State, ShouldEqual, outcome.Scored)
				})
			})
		})

		Convey("When the team walked away", func() {
			r := deal(50)
			r.MadeDeal = false
			in.Result = r
			o := n.Normalize(in)

			Convey("Then it is disqualified and carries no number", func() {
				So(o.State, ShouldEqual, outcome.Disqualified)
				v, ok := o.Value()
				So(ok, ShouldBeFalse)
				So(v, ShouldEqual, 0)
			})
		})

		Convey("When the deal sits inside the range", func() {
			in.Result = deal(65)
			a := n.Normalize(in)
			in.Side = model.SideB
			b := n.Normalize(in)

			Convey("Then each side is min-max scaled against its own bounds", func() {
				va, ok := a.Value()
				So(ok, ShouldBeTrue)
				So(va, ShouldEqual, 75)
				So(a.Raw, ShouldEqual, 65)
				vb, _ := b.Value()
				So(vb, ShouldEqual, 25)
			})
		})

		Convey("When the deal is at the worst end", func() {
			in.Result = deal(20)
			v, ok := n.Normalize(in).Value()

			Convey("Then zero is a legal score", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 0)
			})
		})

		Convey("When the stored value is text", func() {
			in.Result = deal(" 35 ")
			v, ok := n.Normalize(in).Value()

			Convey("Then it is parsed", func() {
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 25)
			})
		})

		Convey("When the deal is outside the declared range", func() {
			in.Result = deal(95)
			v, _ := n.Normalize(in).Value()

			Convey("Then it is clamped", func() {
				So(v, ShouldEqual, 100)
			})
		})

		Convey("When the value is missing", func() {
			in.Result = &model.AgreementResult{MadeDeal: true, Final: true, Values: map[string]any{}}
			o := n.Normalize(in)

			Convey("Then only this team is invalid", func() {
				So(o.State, ShouldEqual, outcome.Invalid)
				So(errors.Is(o.Err, outcome.ErrMissingValue), ShouldBeTrue)
			})
		})

		Convey("When the value cannot be read as a number", func() {
			in.Result = deal("cheap")
			o := n.Normalize(in)

			Convey("Then the team is invalid", func() {
				So(o.State, ShouldEqual, outcome.Invalid)
				So(errors.Is(o.Err, outcome.ErrBadValue), ShouldBeTrue)
			})
		})

		Convey("When the case has no formulas", func() {
			in.Case = &model.Case{ID: "c"}
			in.Result = deal(50)

			Convey("Then the team is not scorable", func() {
				So(n.Normalize(in).State, ShouldEqual, outcome.NotScorable)
			})
		})

		Convey("When no range is available", func() {
			in.Range = nil
			in.Result = deal(50)

			Convey("Then the team is not scorable", func() {
				So(n.Normalize(in).State, ShouldEqual, outcome.NotScorable)
			})
		})

		Convey("When the range is degenerate", func() {
			in.Range = &model.ScoreRange{MinA: 50, MaxA: 50}
			in.Result = deal(50)
			v, _ := n.Normalize(in).Value()

			Convey("Then the score is the midpoint", func() {
				So(v, ShouldEqual, 50)
			})
		})
	})
}

func TestParams(t *testing.T) {
	Convey("Given a case mixing parameter kinds", t, func() {
		cs := &model.Case{Params: []model.Parameter{
			{Name: "units", Kind: model.ParamInt},
			{Name: "rate", Kind: model.ParamFloat},
			{Name: "vendor", Kind: model.ParamEnum},
		}}

		Convey("When values come from a JSON document", func() {
			p, err := outcome.Params(cs, map[string]any{"units": 4.0, "rate": "0.5", "vendor": "acme", "note": "ignored"})

			Convey("Then each is bound with its kind's Go type", func() {
				So(err, ShouldBeNil)
				So(p, ShouldResemble, map[string]any{"units": 4, "rate": 0.5, "vendor": "acme"})
			})
		})
	})
}
