// Package export renders round reports as spreadsheets for instructors.
package export

import (
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/parley/internal/domain/report"
	"github.com/okian/parley/internal/domain/types"
)

// Sheet names of the report workbook.
const (
	RankingSheet      = "Ranking"
	DistributionSheet = "Distribution"
)

// ContentType is the MIME type of the workbook.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var rankingHeader = []any{
	"Rank", "Team", "Name", "Side", "Class", "Outcome", "Sub score",
	"Sub z", "Relational", "Rel z", "Total z", "Survey",
}

// WriteXLSX writes rep as a workbook with a ranking and a distribution sheet.
func WriteXLSX(w io.Writer, rep *report.Report) error {
	f, err := Workbook(rep)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Workbook builds the report workbook. The caller closes it.
func Workbook(rep *report.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetSheetName(f.GetSheetName(f.GetActiveSheetIndex()), RankingSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rename sheet: %w", err)
	}
	if _, err := f.NewSheet(DistributionSheet); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("add sheet: %w", err)
	}

	if err := writeRanking(f, rep); err != nil {
		_ = f.Close()
		return nil, err
	}
	if err := writeDistribution(f, rep); err != nil {
		_ = f.Close()
		return nil, err
	}
	return f, nil
}

func writeRanking(f *excelize.File, rep *report.Report) error {
	rows := [][]any{rankingHeader}
	for _, s := range rep.ByTeam {
		var sub, rel types.Score
		if v, ok := s.Substantive.Value(); ok {
			sub = types.Some(v)
		}
		if z, ok := s.Relational.Value(); ok {
			rel = types.Some(z)
		}
		rows = append(rows, []any{
			s.Rank, s.Team, s.Name, string(s.Side), s.Class.String(), s.Substantive.State.String(),
			cell(sub), cell(s.SubZ), s.Relational.State.String(), cell(rel),
			cell(s.Total), s.SurveyState.String(),
		})
	}
	if rep.CaseError != "" {
		rows = append(rows, []any{}, []any{"Case error", rep.CaseError})
	}
	return setRows(f, RankingSheet, rows)
}

func writeDistribution(f *excelize.File, rep *report.Report) error {
	rows := [][]any{{"Category", "Value", "Count", "Teams"}}
	for _, cat := range rep.Categories {
		counts := rep.Counts[cat]
		values := make([]string, 0, len(counts))
		for v := range counts {
			values = append(values, v)
		}
		sort.Slice(values, func(i, j int) bool {
			a, _ := strconv.ParseFloat(values[i], 64)
			b, _ := strconv.ParseFloat(values[j], 64)
			return a < b
		})
		for _, v := range values {
			rows = append(rows, []any{cat, v, counts[v], strings.Join(rep.Users[cat][v], ", ")})
		}
		if avg, ok := rep.Average[cat]; ok {
			rows = append(rows, []any{cat, "average", avg})
		}
	}
	return setRows(f, DistributionSheet, rows)
}

func setRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		axis, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		r := row
		if err := f.SetSheetRow(sheet, axis, &r); err != nil {
			return fmt.Errorf("sheet %s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}

// cell renders a withheld score as an empty cell.
func cell(s types.Score) any {
	if v, ok := s.Get(); ok {
		return v
	}
	return ""
}
