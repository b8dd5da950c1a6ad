package cron

import (
	"time"

	"github.com/robfig/cron/v3"

	"github.com/goto/pulse/internal/errors"
)

const (
	EntityCron = "cron"

	// schedules firing less often than this are never searched further back
	maxLookBehind = 2 * 366 * 24 * time.Hour
)

// ScheduleSpec wraps a parsed cron schedule with backward iteration support.
type ScheduleSpec struct {
	spec cron.Schedule
}

func ParseCronSchedule(expr string) (*ScheduleSpec, error) {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow | cron.Descriptor)
	spec, err := parser.Parse(expr)
	if err != nil {
		return nil, errors.InvalidArgument(EntityCron, "unable to parse cron expression "+expr)
	}
	return &ScheduleSpec{spec: spec}, nil
}

// Next returns the first activation time strictly after t.
func (s *ScheduleSpec) Next(t time.Time) time.Time {
	return s.spec.Next(t)
}

// Prev returns the last activation time strictly before t.
func (s *ScheduleSpec) Prev(t time.Time) time.Time {
	for lookBehind := time.Hour; lookBehind <= maxLookBehind; lookBehind *= 2 {
		var prev time.Time
		for ref := s.spec.Next(t.Add(-lookBehind)); ref.Before(t); ref = s.spec.Next(ref) {
			prev = ref
		}
		if !prev.IsZero() {
			return prev
		}
	}
	return time.Time{}
}

// Interval reports the gap between the two activations following ref.
func (s *ScheduleSpec) Interval(ref time.Time) time.Duration {
	first := s.spec.Next(ref)
	second := s.spec.Next(first)
	return second.Sub(first)
}

func (s *ScheduleSpec) IsSubDaily() bool {
	return s.Interval(time.Now()) < 24*time.Hour
}
