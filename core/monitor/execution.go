package monitor

import (
	"regexp"
	"time"

	"github.com/goto/pulse/internal/errors"
)

// execution ids embed the intended start time of the run
var scheduledTimePattern = regexp.MustCompile(`\d{4}-\d{2}-\d{2}T\d{2}:\d{2}:\d{2}`)

const (
	scheduledTimeLayout = "2006-01-02T15:04:05"

	// the execution history source stamps ids in a clock 8 hours behind
	// the comparison clock
	scheduledTimeShift = 8 * time.Hour
)

type ExecutionStatus int

const (
	StatusRunning        ExecutionStatus = 1
	StatusCompleted      ExecutionStatus = 2
	StatusFailed         ExecutionStatus = 3
	StatusCancelled      ExecutionStatus = 4
	StatusTerminated     ExecutionStatus = 5
	StatusContinuedAsNew ExecutionStatus = 6
	StatusTimedOut       ExecutionStatus = 7
)

const StatusNameRunning = "RUNNING"

// HasFailed reports whether the status belongs to the failure family of
// terminal states.
func (s ExecutionStatus) HasFailed() bool {
	switch s {
	case StatusFailed, StatusCancelled, StatusTerminated, StatusTimedOut:
		return true
	default:
		return false
	}
}

func (s ExecutionStatus) HasCompleted() bool {
	return s == StatusCompleted
}

// Execution is one observed run of a monitored workflow.
type Execution struct {
	ID          string
	TaskQueue   string
	Status      ExecutionStatus
	StatusName  string
	ScheduledAt time.Time
}

// NewExecution decodes the scheduled time from the execution id. Ids without
// a parseable timestamp cannot produce an execution.
func NewExecution(id, taskQueue string, status int, statusName string) (*Execution, error) {
	scheduledAt, err := ScheduledTimeFromID(id)
	if err != nil {
		return nil, err
	}
	return &Execution{
		ID:          id,
		TaskQueue:   taskQueue,
		Status:      ExecutionStatus(status),
		StatusName:  statusName,
		ScheduledAt: scheduledAt,
	}, nil
}

func (e *Execution) IsRunning() bool {
	return e.StatusName == StatusNameRunning
}

// ScheduledTimeFromID extracts the embedded start timestamp from an execution
// id and shifts it onto the comparison clock.
func ScheduledTimeFromID(id string) (time.Time, error) {
	match := scheduledTimePattern.FindString(id)
	if match == "" {
		return time.Time{}, errors.InvalidArgument(EntityExecution, "no schedule timestamp in execution id "+id)
	}
	scheduledAt, err := time.Parse(scheduledTimeLayout, match)
	if err != nil {
		return time.Time{}, errors.InvalidArgument(EntityExecution, "malformed schedule timestamp in execution id "+id)
	}
	return scheduledAt.Add(scheduledTimeShift), nil
}
