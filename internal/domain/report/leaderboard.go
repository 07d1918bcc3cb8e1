package report

import (
	"github.com/okian/parley/internal/domain/distribution"
	"github.com/okian/parley/internal/domain/ranking"
	"github.com/okian/parley/internal/domain/types"
)

// Leaderboard sums each team's total z-score over the given round reports.
// Only fully scored placements count; unfinished rounds are skipped.
func Leaderboard(reports []*Report, roster distribution.Roster) []types.Standing {
	byTeam := map[string]*types.Standing{}
	for _, rep := range reports {
		if rep == nil || !rep.Finished {
			continue
		}
		for _, s := range rep.ByTeam {
			total, ok := s.Total.Get()
			if s.Class != ranking.Full || !ok {
				continue
			}
			row, exists := byTeam[s.Team]
			if !exists {
				row = &types.Standing{TeamID: s.Team, Name: s.Team}
				if roster != nil {
					if name := roster.DisplayName(s.Team); name != "" {
						row.Name = name
					}
				}
				byTeam[s.Team] = row
			}
			row.Total += total
			row.Rounds++
		}
	}

	rows := make([]types.Standing, 0, len(byTeam))
	for _, row := range byTeam {
		rows = append(rows, *row)
	}
	types.SortStandings(rows)
	return rows
}
