package model_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/parley/internal/domain/model"
	"github.com/smartystreets/goconvey/convey"
)

func TestRound(t *testing.T) {
	convey.Convey("Given a round with two matches", t, func() {
		start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		round := model.Round{
			StartTime: start,
			EndTime:   start.Add(time.Hour),
			AISide:    model.NoAI,
			Matches: []model.Match{
				{TeamA: "t1", TeamB: "t2"},
				{TeamA: "t3", TeamB: "AI-1"},
			},
		}

		convey.Convey("Then sides and opponents resolve from the matches", func() {
			side, opp, ok := round.SideOf("t2")
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(side, convey.ShouldEqual, model.SideB)
			convey.So(opp, convey.ShouldEqual, "t1")

			_, _, ok = round.SideOf("t9")
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then the view time falls back to the start", func() {
			convey.So(round.EffectiveViewTime(), convey.ShouldEqual, start)
			round.ViewTime = start.Add(-10 * time.Minute)
			convey.So(round.EffectiveViewTime(), convey.ShouldEqual, start.Add(-10*time.Minute))
		})

		convey.Convey("Then the AI marker decides whether it is an AI round", func() {
			convey.So(round.IsAIRound(), convey.ShouldBeFalse)
			round.AISide = ""
			convey.So(round.IsAIRound(), convey.ShouldBeFalse)
			round.AISide = "b"
			convey.So(round.IsAIRound(), convey.ShouldBeTrue)
		})

		convey.Convey("Then AI teams are recognised by prefix", func() {
			convey.So(model.IsAITeam("AI-1", "AI-"), convey.ShouldBeTrue)
			convey.So(model.IsAITeam("t1", "AI-"), convey.ShouldBeFalse)
			convey.So(model.IsAITeam("AI-1", ""), convey.ShouldBeFalse)
			convey.So(model.Team{ID: "AI-7"}.IsAI("AI-"), convey.ShouldBeTrue)
		})
	})
}

func TestEvent(t *testing.T) {
	convey.Convey("Given an event with contiguous rounds", t, func() {
		start := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
		event := model.Event{
			Rounds: []model.Round{
				{StartTime: start, EndTime: start.Add(time.Hour)},
				{StartTime: start.Add(time.Hour), EndTime: start.Add(2 * time.Hour)},
			},
			Teams: []model.Team{{ID: "t1", Name: "Otters"}, {ID: "t2"}},
		}

		convey.Convey("Then it validates", func() {
			convey.So(event.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then rounds are addressed 1-based", func() {
			r, ok := event.Round(2)
			convey.So(ok, convey.ShouldBeTrue)
			convey.So(r.StartTime, convey.ShouldEqual, start.Add(time.Hour))
			_, ok = event.Round(0)
			convey.So(ok, convey.ShouldBeFalse)
			_, ok = event.Round(3)
			convey.So(ok, convey.ShouldBeFalse)
		})

		convey.Convey("Then display names fall back to ids", func() {
			convey.So(event.DisplayName("t1"), convey.ShouldEqual, "Otters")
			convey.So(event.DisplayName("t2"), convey.ShouldEqual, "t2")
			convey.So(event.DisplayName("ghost"), convey.ShouldEqual, "ghost")
		})

		convey.Convey("When the rounds overlap", func() {
			event.Rounds[1].StartTime = start.Add(30 * time.Minute)

			convey.Convey("Then validation reports it", func() {
				convey.So(errors.Is(event.Validate(), model.ErrOverlappingRounds), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a round ends before it starts", func() {
			event.Rounds[0].EndTime = start

			convey.Convey("Then validation reports the window", func() {
				convey.So(errors.Is(event.Validate(), model.ErrInvalidRoundWindow), convey.ShouldBeTrue)
			})
		})
	})
}

func TestCase(t *testing.T) {
	convey.Convey("Given cases with and without formulas", t, func() {
		scorable := &model.Case{FormulaA: "price", FormulaB: "100 - price"}
		partial := &model.Case{FormulaA: "price"}
		var missing *model.Case

		convey.Convey("Then only cases with both formulas are scorable", func() {
			convey.So(scorable.Scorable(), convey.ShouldBeTrue)
			convey.So(partial.Scorable(), convey.ShouldBeFalse)
			convey.So(missing.Scorable(), convey.ShouldBeFalse)
			convey.So(scorable.Formula(model.SideB), convey.ShouldEqual, "100 - price")
		})

		convey.Convey("Then a flat joint range is zero-sum", func() {
			r := model.ScoreRange{MinA: 0, MaxA: 100, MinB: 0, MaxB: 100, MinJoint: 100, MaxJoint: 100}
			convey.So(r.ZeroSum(), convey.ShouldBeTrue)
			lo, hi := r.Bounds(model.SideB)
			convey.So(lo, convey.ShouldEqual, 0)
			convey.So(hi, convey.ShouldEqual, 100)
			r.MaxJoint = 120
			convey.So(r.ZeroSum(), convey.ShouldBeFalse)
		})

		convey.Convey("Then sides are opposite of each other", func() {
			convey.So(model.SideA.Opposite(), convey.ShouldEqual, model.SideB)
			convey.So(model.SideB.Opposite(), convey.ShouldEqual, model.SideA)
		})
	})
}
