package export_test

import (
	"bytes"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/okian/parley/internal/adapters/export"
	"github.com/okian/parley/internal/domain/distribution"
	"github.com/okian/parley/internal/domain/outcome"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/report"
	"github.com/okian/parley/internal/domain/survey"
	"github.com/okian/parley/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

func sampleReport() *report.Report {
	return &report.Report{
		EventID: "ev-1", Round: 1,
		ByTeam: []report.ResultSummary{
			{
				Team: "t1", Name: "Alpha", Rank: 1, Class: ranking.Full,
				Substantive: outcome.NewScored(75, 65),
				Relational:  survey.NewRelational(survey.RelationalScored, 5, 0.5),
				SubZ:        types.Some(1), Total: types.Some(1.5), SurveyState: survey.Complete,
			},
			{Team: "t2", Name: "Beta", Rank: 2, Class: ranking.Disqualified,
				Substantive: outcome.Outcome{State: outcome.Disqualified}},
		},
		Distribution: distribution.Distribution{
			Categories: []string{"trust", "overall"},
			Counts:     map[string]map[string]int{"overall": {"5.5": 1, "10.0": 1, "4.0": 2}},
			Users:      map[string]map[string][]string{"overall": {"5.5": {"Alpha"}, "4.0": {"Beta", "Gamma"}}},
			Average:    map[string]float64{"overall": 5.4},
		},
	}
}

func TestWriteXLSX(t *testing.T) {
	Convey("Given a round report", t, func() {
		var buf bytes.Buffer
		err := export.WriteXLSX(&buf, sampleReport())
		So(err, ShouldBeNil)

		f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
		So(err, ShouldBeNil)
		defer func() { _ = f.Close() }()

		Convey("Then the workbook has a ranking and a distribution sheet", func() {
			So(f.GetSheetList(), ShouldResemble, []string{export.RankingSheet, export.DistributionSheet})
		})

		Convey("Then the ranking lists teams with withheld scores left blank", func() {
			rows, err := f.GetRows(export.RankingSheet)
			So(err, ShouldBeNil)
			So(rows[0][0], ShouldEqual, "Rank")
			So(rows[1][1], ShouldEqual, "t1")
			So(rows[1][6], ShouldEqual, "75")
			So(rows[2][4], ShouldEqual, "disqualified")
			So(rows[2][6], ShouldBeBlank)
			So(rows[2][10], ShouldBeBlank)
		})

		Convey("Then distribution values are in numeric order with names", func() {
			rows, err := f.GetRows(export.DistributionSheet)
			So(err, ShouldBeNil)
			So(rows[1], ShouldResemble, []string{"overall", "4.0", "2", "Beta, Gamma"})
			So(rows[2][1], ShouldEqual, "5.5")
			So(rows[3][1], ShouldEqual, "10.0")
			So(rows[4], ShouldResemble, []string{"overall", "average", "5.4"})
		})
	})
}
