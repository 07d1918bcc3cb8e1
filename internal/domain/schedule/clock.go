// Package schedule derives round and event state from wall-clock time.
//
// Nothing here is stored: every value is recomputed from the round bounds
// and the instant passed in, so the result can never go stale.
package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/okian/parley/internal/domain/model"
)

// Status classifies a round relative to an instant.
type Status int

// Round statuses. Exactly one holds for any instant.
const (
	Upcoming Status = iota
	Ongoing
	Finished
)

func (s Status) String() string {
	switch s {
	case Upcoming:
		return "upcoming"
	case Ongoing:
		return "ongoing"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// MarshalText renders the status name in JSON.
func (s Status) MarshalText() ([]byte, error) { return []byte(s.String()), nil }

// Classify returns the status of round at now.
// finished iff now > end; ongoing iff start <= now <= end; upcoming otherwise.
func Classify(round model.Round, now time.Time) Status {
	switch {
	case now.After(round.EndTime):
		return Finished
	case !now.Before(round.StartTime):
		return Ongoing
	default:
		return Upcoming
	}
}

// Accessible reports whether the round may be viewed at now. It only looks at
// the view time, so instructors can open a round before it starts.
func Accessible(round model.Round, now time.Time) bool {
	return !now.Before(round.EffectiveViewTime())
}

// Countdown renders the relative time to the next boundary of round.
func Countdown(round model.Round, now time.Time) string {
	switch Classify(round, now) {
	case Upcoming:
		return "Starts in " + FormatDuration(round.StartTime.Sub(now))
	case Ongoing:
		return "Ends in " + FormatDuration(round.EndTime.Sub(now))
	default:
		return "Finished"
	}
}

// FormatDuration renders d truncated to whole minutes as "1d 2h 15m",
// omitting zero units. Anything under a minute renders as "0m".
func FormatDuration(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	total := int64(d / time.Minute)
	days := total / (24 * 60)
	hours := (total / 60) % 24
	minutes := total % 60

	parts := make([]string, 0, 3)
	if days > 0 {
		parts = append(parts, strconv.FormatInt(days, 10)+"d")
	}
	if hours > 0 {
		parts = append(parts, strconv.FormatInt(hours, 10)+"h")
	}
	if minutes > 0 || len(parts) == 0 {
		parts = append(parts, strconv.FormatInt(minutes, 10)+"m")
	}
	return strings.Join(parts, " ")
}
