package monitor

import "time"

// ScheduleDescriptor is the normalized view of one registry schedule entry,
// before the sync precedence rules turn it into a Monitor.
type ScheduleDescriptor struct {
	ID     string
	Paused bool

	// declared recurrence, either or both may be empty
	IntervalsMinutes []int
	CronExpressions  []string

	WorkflowType string
	TaskQueue    string

	RecentActionTimes   []time.Time
	UpcomingActionTimes []time.Time
}

// ActionTimes returns all known activation times, recent before upcoming.
func (d *ScheduleDescriptor) ActionTimes() []time.Time {
	times := make([]time.Time, 0, len(d.RecentActionTimes)+len(d.UpcomingActionTimes))
	times = append(times, d.RecentActionTimes...)
	times = append(times, d.UpcomingActionTimes...)
	return times
}
