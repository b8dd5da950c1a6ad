package interval

import (
	"time"
)

type Interval struct {
	start time.Time
	end   time.Time
}

func (i Interval) Start() time.Time {
	return i.start
}

func (i Interval) End() time.Time {
	return i.end
}

// Contains reports half-open membership: start < t <= end.
func (i Interval) Contains(t time.Time) bool {
	return t.After(i.start) && !t.After(i.end)
}

func (i Interval) Equal(other Interval) bool {
	return i.start.Equal(other.start) && i.end.Equal(other.end)
}

func NewInterval(start, end time.Time) Interval {
	return Interval{
		start: start,
		end:   end,
	}
}
