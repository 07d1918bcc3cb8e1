package schedule

import (
	"time"

	"github.com/okian/parley/internal/domain/model"
)

// State is the projection of an event's rounds at one instant.
type State struct {
	// CurrentRoundIndex is the 1-based index of the first round that has not
	// ended, or 0 when none remains (or the event has no rounds).
	CurrentRoundIndex int `json:"currentRoundIndex"`
	// RoundsStarted is true once any round has started.
	RoundsStarted bool `json:"roundsStarted"`
	// ViewTime is when the current round becomes reachable; zero unless the
	// current round has not started yet.
	ViewTime time.Time `json:"viewTime"`
	// Finished is true once every round has ended. Never true without rounds.
	Finished bool `json:"finished"`
	// TimeLeft runs to the current round's start if it is upcoming, else to its end.
	TimeLeft time.Duration `json:"timeLeft"`
	// Status of the current round; Finished when the event is finished.
	Status Status `json:"status"`
	// Countdown is the human-readable form of TimeLeft.
	Countdown string `json:"countdown"`
}

// Project derives the event state from its ordered rounds at now.
func Project(rounds []model.Round, now time.Time) State {
	var st State
	if len(rounds) == 0 {
		// An event without rounds is neither running nor finished.
		st.Status = Upcoming
		return st
	}

	for _, r := range rounds {
		if !now.Before(r.StartTime) {
			st.RoundsStarted = true
			break
		}
	}

	for i, r := range rounds {
		if !r.EndTime.After(now) {
			continue
		}
		st.CurrentRoundIndex = i + 1
		st.Status = Classify(r, now)
		st.Countdown = Countdown(r, now)
		if now.Before(r.StartTime) {
			st.ViewTime = r.EffectiveViewTime()
			st.TimeLeft = r.StartTime.Sub(now)
		} else {
			st.TimeLeft = r.EndTime.Sub(now)
		}
		return st
	}

	st.Finished = true
	st.Status = Finished
	st.Countdown = "Finished"
	return st
}

// RoundVisible reports whether the 1-based round may be queried at now:
// its view time has been reached or it has already finished.
func RoundVisible(event *model.Event, index int, now time.Time) bool {
	r, ok := event.Round(index)
	if !ok {
		return false
	}
	return Accessible(r, now) || Classify(r, now) == Finished
}

// RoundFinished reports whether the 1-based round has ended at now.
func RoundFinished(event *model.Event, index int, now time.Time) bool {
	r, ok := event.Round(index)
	return ok && Classify(r, now) == Finished
}
