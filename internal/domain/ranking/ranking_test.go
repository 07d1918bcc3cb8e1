package ranking_test

import (
	"fmt"
	"testing"

	"github.com/okian/parley/internal/domain/outcome"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/survey"
	. "github.com/smartystreets/goconvey/convey"
)

func full(team string, score, relZ float64) ranking.Entry {
	return ranking.Entry{
		TeamID:     team,
		Outcome:    outcome.NewScored(score, score),
		Relational: survey.NewRelational(survey.RelationalScored, 0, relZ),
	}
}

func withState(team string, st outcome.State) ranking.Entry {
	return ranking.Entry{TeamID: team, Outcome: outcome.Outcome{State: st}}
}

func ids(p ranking.Placement) []string {
	out := make([]string, len(p.Entries))
	for i, e := range p.Entries {
		out[i] = e.TeamID
	}
	return out
}

func TestExtremeSize(t *testing.T) {
	Convey("Given cohorts of every size", t, func() {
		Convey("Then best and worst sizes step down with the cohort", func() {
			for n, want := range map[int]int{0: 0, 1: 1, 3: 1, 4: 2, 5: 2, 6: 3, 10: 3, 40: 3} {
				So(ranking.ExtremeSize(n), ShouldEqual, want)
			}
		})

		Convey("Then fully scored cohorts get sets of that size", func() {
			for n, want := range map[int]int{3: 1, 5: 2, 6: 3, 10: 3} {
				entries := make([]ranking.Entry, n)
				for i := range entries {
					entries[i] = full(fmt.Sprintf("t%02d", i), float64(i*10), 0)
				}
				p := ranking.Rank(entries, ranking.DefaultPolicy())
				So(len(p.Best), ShouldEqual, want)
				So(len(p.Worst), ShouldEqual, want)
			}
		})
	})
}

func TestRank(t *testing.T) {
	Convey("Given a mixed cohort", t, func() {
		entries := []ranking.Entry{
			withState("dq2", outcome.Disqualified),
			full("low", 10, -1),
			withState("pend", outcome.Pending),
			full("high", 90, 1),
			{TeamID: "solo", Outcome: outcome.NewScored(70, 70),
				Relational: survey.NewRelational(survey.NoEnemySvi, 0, 0)},
			withState("bad", outcome.Invalid),
			full("mid", 50, 0),
			withState("dq1", outcome.Disqualified),
			full("AI-bot", 100, 3),
		}
		p := ranking.Rank(entries, ranking.DefaultPolicy())

		Convey("Then classes appear in placement order", func() {
			So(ids(p), ShouldResemble, []string{"high", "mid", "low", "solo", "pend", "bad", "dq1", "dq2"})
			So(p.Entries[3].Class, ShouldEqual, ranking.SubstantiveOnly)
			So(p.Entries[7].Class, ShouldEqual, ranking.Disqualified)
		})

		Convey("Then ranks are 1-based positions", func() {
			for i, e := range p.Entries {
				So(e.Rank, ShouldEqual, i+1)
			}
		})

		Convey("Then AI teams are never ranked", func() {
			So(ids(p), ShouldNotContain, "AI-bot")
		})

		Convey("Then best and worst come from fully scored teams only", func() {
			So(len(p.Best), ShouldEqual, 3)
			So(p.Best[0].Team, ShouldEqual, "high")
			So(p.Worst[0].Team, ShouldEqual, "low")
			So(p.Worst[2].Team, ShouldEqual, "high")
		})

		Convey("Then the substantive term is a z-score among scored teams", func() {
			So(p.Substantive.N, ShouldEqual, 4)
			So(p.Entries[3].SubZ.Valid, ShouldBeTrue)
			So(p.Entries[3].Total.Valid, ShouldBeFalse)
			So(p.Entries[4].SubZ.Valid, ShouldBeFalse)
		})
	})

	Convey("Given ties", t, func() {
		p := ranking.Rank([]ranking.Entry{
			full("b", 50, 0), full("a", 50, 0), full("c", 50, 0),
			withState("z", outcome.Disqualified), withState("y", outcome.Disqualified),
		}, ranking.DefaultPolicy())

		Convey("Then team ID breaks them within a class", func() {
			So(ids(p), ShouldResemble, []string{"a", "b", "c", "y", "z"})
		})
	})

	Convey("Given fewer fully scored teams than the set size", t, func() {
		entries := []ranking.Entry{full("a", 80, 0), full("b", 20, 0)}
		for i := 0; i < 6; i++ {
			entries = append(entries, withState(fmt.Sprintf("p%d", i), outcome.Pending))
		}
		p := ranking.Rank(entries, ranking.DefaultPolicy())

		Convey("Then the sets are capped", func() {
			So(len(p.Best), ShouldEqual, 2)
			So(p.Best[0].Team, ShouldEqual, "a")
			So(p.Worst[0].Team, ShouldEqual, "b")
		})
	})

	Convey("Given a policy that favours the deal", t, func() {
		entries := []ranking.Entry{full("dealer", 100, -1), full("friend", 0, 1)}
		even := ranking.Rank(entries, ranking.DefaultPolicy())
		policy := ranking.DefaultPolicy()
		policy.SubWeight = 3
		heavy := ranking.Rank(entries, policy)

		Convey("Then weights change the order", func() {
			So(even.Entries[0].Total.Value, ShouldEqual, 0)
			So(ids(even), ShouldResemble, []string{"dealer", "friend"})
			So(heavy.Entries[0].TeamID, ShouldEqual, "dealer")
			So(heavy.Entries[0].Total.Value, ShouldEqual, 2)
		})
	})

	Convey("Given a case that cannot be scored", t, func() {
		policy := ranking.DefaultPolicy()
		policy.Scorable = false
		entries := []ranking.Entry{
			{TeamID: "a", Outcome: outcome.Outcome{State: outcome.NotScorable},
				Relational: survey.NewRelational(survey.RelationalScored, 0, -0.5)},
			{TeamID: "b", Outcome: outcome.Outcome{State: outcome.NotScorable},
				Relational: survey.NewRelational(survey.RelationalPartial, 0, 0.5)},
			{TeamID: "c", Outcome: outcome.Outcome{State: outcome.NotScorable},
				Relational: survey.NewRelational(survey.NoEnemySvi, 0, 0)},
		}
		p := ranking.Rank(entries, policy)

		Convey("Then totals are relational only", func() {
			So(ids(p), ShouldResemble, []string{"b", "a", "c"})
			So(p.Entries[0].Total.Value, ShouldEqual, 0.5)
			So(p.Entries[0].SubZ.Valid, ShouldBeFalse)
			So(p.Entries[2].Class, ShouldEqual, ranking.SubstantiveOnly)
		})
	})
}
