package window

import (
	"time"

	"github.com/goto/pulse/internal/lib/interval"
)

const (
	minutesPerDay = 24 * 60

	// schedules firing less often than daily get extra time before the
	// most recent window is considered closed
	graceMinutes = 120
)

var epoch = time.Unix(0, 0).UTC()

// Spec describes a recurring window grid anchored at the Unix epoch. Window
// boundaries land every IntervalMinutes, shifted by PhaseOffsetMinutes.
type Spec struct {
	IntervalMinutes    int
	PhaseOffsetMinutes int
}

func (s Spec) normalized() (int, int) {
	every := s.IntervalMinutes
	if every < 1 {
		every = 1
	}
	offset := ((s.PhaseOffsetMinutes % every) + every) % every
	return every, offset
}

// Grace returns the settling delay applied before the latest window closes.
func (s Spec) Grace() time.Duration {
	every, _ := s.normalized()
	if every > minutesPerDay {
		return graceMinutes * time.Minute
	}
	return 0
}

// Calculate returns the most recently closed window at now. Membership in the
// returned interval is half-open: Start < t <= End.
func (s Spec) Calculate(now time.Time) interval.Interval {
	every, offset := s.normalized()

	adjusted := now.UTC().Truncate(time.Minute).Add(-s.Grace())
	if adjusted.Before(epoch) {
		adjusted = epoch
	}

	elapsed := int(adjusted.Sub(epoch) / time.Minute)
	rem := ((elapsed-offset)%every + every) % every
	due := elapsed - rem
	if due < 0 {
		due = 0
	}

	end := epoch.Add(time.Duration(due) * time.Minute)
	start := end.Add(-time.Duration(every) * time.Minute)
	if start.Before(epoch) {
		start = epoch
	}
	return interval.NewInterval(start, end)
}

// IsDue reports whether the minute-aligned now lands exactly on a window
// boundary, shifted by the same grace Calculate applies. The two always agree:
// IsDue(t) holds iff Calculate(t).End() equals the aligned t minus grace.
func (s Spec) IsDue(now time.Time) bool {
	if s.IntervalMinutes <= 0 {
		return false
	}
	every, offset := s.normalized()

	aligned := now.UTC().Truncate(time.Minute)
	if aligned.Before(epoch) {
		return false
	}

	adjusted := int(aligned.Sub(epoch)/time.Minute) - offset
	if every > minutesPerDay {
		adjusted -= graceMinutes
	}
	if adjusted < 0 {
		return false
	}
	return adjusted%every == 0
}
