// Package model contains domain models passed between layers.
//
// Models mirror the documents kept by the platform's document store; the
// scoring engine only reads them.
package model

import (
	"fmt"
	"strings"
	"time"
)

// NoAI marks a round played without an AI counterpart.
const NoAI = "n"

// Side identifies which role a team plays in a match.
type Side string

// Sides of a negotiation.
const (
	SideA Side = "a"
	SideB Side = "b"
)

// Opposite returns the other side.
func (s Side) Opposite() Side {
	if s == SideA {
		return SideB
	}
	return SideA
}

// Event is one exercise: an ordered list of rounds played by a roster of teams.
type Event struct {
	ID         string    `json:"id" bson:"_id"`
	Name       string    `json:"name" bson:"name"`
	Instructor string    `json:"instructor" bson:"instructor"`
	StartTime  time.Time `json:"startTime" bson:"startTime"`
	Rounds     []Round   `json:"rounds" bson:"rounds"`
	Teams      []Team    `json:"teams" bson:"teams"`
}

// Round is one timed negotiation over a single case.
type Round struct {
	ID        string    `json:"id" bson:"id"`
	EventID   string    `json:"eventId" bson:"eventId"`
	Index     int       `json:"index" bson:"index"`
	StartTime time.Time `json:"startTime" bson:"startTime"`
	EndTime   time.Time `json:"endTime" bson:"endTime"`
	// ViewTime opens the round's view before StartTime; zero means StartTime.
	ViewTime time.Time `json:"viewTime" bson:"viewTime"`
	CaseID   string    `json:"caseId" bson:"caseId"`
	AISide   string    `json:"aiSide" bson:"aiSide"`
	Matches  []Match   `json:"matches" bson:"matches"`
}

// Match pairs the two teams negotiating against each other in a round.
type Match struct {
	TeamA string `json:"teamA" bson:"teamA"`
	TeamB string `json:"teamB" bson:"teamB"`
}

// Team is a participant group.
type Team struct {
	ID      string   `json:"id" bson:"id"`
	Name    string   `json:"name" bson:"name"`
	Members []string `json:"members" bson:"members"`
}

// IsAI reports whether the team stands for the platform's AI counterpart.
func (t Team) IsAI(prefix string) bool {
	return IsAITeam(t.ID, prefix)
}

// IsAITeam reports whether teamID carries the AI prefix.
func IsAITeam(teamID, prefix string) bool {
	return prefix != "" && strings.HasPrefix(teamID, prefix)
}

// IsAIRound reports whether an AI plays one of the sides.
func (r Round) IsAIRound() bool {
	return r.AISide != "" && r.AISide != NoAI
}

// EffectiveViewTime returns the instant the round becomes viewable.
func (r Round) EffectiveViewTime() time.Time {
	if r.ViewTime.IsZero() {
		return r.StartTime
	}
	return r.ViewTime
}

// SideOf returns the side and opponent of teamID in this round.
func (r Round) SideOf(teamID string) (side Side, opponent string, ok bool) {
	for _, m := range r.Matches {
		switch teamID {
		case m.TeamA:
			return SideA, m.TeamB, true
		case m.TeamB:
			return SideB, m.TeamA, true
		}
	}
	return "", "", false
}

// Round returns the round with the 1-based index.
func (e *Event) Round(index int) (Round, bool) {
	if index < 1 || index > len(e.Rounds) {
		return Round{}, false
	}
	return e.Rounds[index-1], true
}

// Team returns the roster entry for id.
func (e *Event) Team(id string) (Team, bool) {
	for _, t := range e.Teams {
		if t.ID == id {
			return t, true
		}
	}
	return Team{}, false
}

// DisplayName resolves a team id to its roster name, falling back to the id.
func (e *Event) DisplayName(teamID string) string {
	if t, ok := e.Team(teamID); ok && t.Name != "" {
		return t.Name
	}
	return teamID
}

// Validate checks that rounds have sane windows and do not overlap.
// Projection never depends on it.
func (e *Event) Validate() error {
	for i, r := range e.Rounds {
		if !r.EndTime.After(r.StartTime) {
			return fmt.Errorf("%w: round %d ends at or before its start", ErrInvalidRoundWindow, i+1)
		}
		if !r.ViewTime.IsZero() && r.ViewTime.After(r.StartTime) {
			return fmt.Errorf("%w: round %d view time after start", ErrInvalidRoundWindow, i+1)
		}
		if i > 0 && r.StartTime.Before(e.Rounds[i-1].EndTime) {
			return fmt.Errorf("%w: round %d starts before round %d ends", ErrOverlappingRounds, i+1, i)
		}
	}
	return nil
}
