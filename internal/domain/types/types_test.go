package types_test

import (
	"encoding/json"
	"testing"

	types "github.com/okian/parley/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func TestScore(t *testing.T) {
	Convey("Given a Score", t, func() {
		Convey("When it is withheld", func() {
			var s types.Score
			b, err := json.Marshal(s)

			Convey("Then it encodes as null", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "null")
				_, ok := s.Get()
				So(ok, ShouldBeFalse)
			})
		})

		Convey("When it holds zero", func() {
			b, err := json.Marshal(types.Some(0))

			Convey("Then zero is emitted, not null", func() {
				So(err, ShouldBeNil)
				So(string(b), ShouldEqual, "0")
			})
		})

		Convey("When decoding inside a struct", func() {
			var v struct {
				A types.Score `json:"a"`
				B types.Score `json:"b"`
			}
			err := json.Unmarshal([]byte(`{"a":1.5,"b":null}`), &v)

			Convey("Then presence is preserved", func() {
				So(err, ShouldBeNil)
				So(v.A, ShouldResemble, types.Some(1.5))
				So(v.B.Valid, ShouldBeFalse)
			})
		})
	})
}

func TestSortStandings(t *testing.T) {
	Convey("Given unordered leaderboard rows", t, func() {
		rows := []types.Standing{
			{TeamID: "t3", Total: 1.5},
			{TeamID: "t1", Total: -0.5},
			{TeamID: "t2", Total: 1.5},
		}
		types.SortStandings(rows)

		Convey("Then totals descend and ties break on team ID", func() {
			So(rows[0].TeamID, ShouldEqual, "t2")
			So(rows[1].TeamID, ShouldEqual, "t3")
			So(rows[2].TeamID, ShouldEqual, "t1")
			So(rows[0].Rank, ShouldEqual, 1)
			So(rows[2].Rank, ShouldEqual, 3)
		})
	})
}
