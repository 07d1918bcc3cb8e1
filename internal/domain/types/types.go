// Package types contains common types used across the application
package types

import (
	"encoding/json"
	"sort"
)

// Score is a number that may be withheld. The zero value is withheld and
// encodes as JSON null.
type Score struct {
	Value float64
	Valid bool
}

// Some wraps a present score.
func Some(v float64) Score { return Score{Value: v, Valid: true} }

// Get returns the value and whether it is present.
func (s Score) Get() (float64, bool) { return s.Value, s.Valid }

// MarshalJSON emits the number or null.
func (s Score) MarshalJSON() ([]byte, error) {
	if !s.Valid {
		return []byte("null"), nil
	}
	return json.Marshal(s.Value)
}

// UnmarshalJSON accepts a number or null.
func (s *Score) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*s = Score{}
		return nil
	}
	if err := json.Unmarshal(b, &s.Value); err != nil {
		return err
	}
	s.Valid = true
	return nil
}

// TeamRank names a team and its position, as listed in best/worst sets.
type TeamRank struct {
	Team string `json:"team"`
	Name string `json:"name,omitempty"`
	Rank int    `json:"rank"`
}

// Standing is one row of an event leaderboard.
type Standing struct {
	Rank   int     `json:"rank"`
	TeamID string  `json:"team"`
	Name   string  `json:"name"`
	Total  float64 `json:"total"`
	Rounds int     `json:"rounds"`
}

// SortStandings orders rows by total descending then team ID, and assigns
// 1-based ranks.
func SortStandings(rows []Standing) {
	sort.SliceStable(rows, func(i, j int) bool {
		if rows[i].Total != rows[j].Total {
			return rows[i].Total > rows[j].Total
		}
		return rows[i].TeamID < rows[j].TeamID
	})
	for i := range rows {
		rows[i].Rank = i + 1
	}
}
