package monitor

import (
	"github.com/goto/pulse/internal/errors"
	"github.com/goto/pulse/internal/lib/window"
)

const (
	EntityMonitor   = "monitor"
	EntityExecution = "execution"
	EntityService   = "service"

	// kind recorded on auto-created status board rows
	ServiceKindWorkflow = "Workflow"
)

// Monitor is one recurring schedule under watch. The monitor list is rebuilt
// wholesale every sync cycle and never partially updated.
type Monitor struct {
	WorkflowType string
	ServiceID    string
	ScheduleID   string

	IntervalMinutes    int
	PhaseOffsetMinutes int

	Paused    bool
	TaskQueue string
}

// NewMonitor builds a monitor for the given workflow type. ServiceID and
// ScheduleID default to the workflow type when not set explicitly.
func NewMonitor(workflowType string, intervalMinutes int) (*Monitor, error) {
	if workflowType == "" {
		return nil, errors.InvalidArgument(EntityMonitor, "workflow type is empty")
	}
	if intervalMinutes < 1 {
		intervalMinutes = 1
	}
	return &Monitor{
		WorkflowType:    workflowType,
		ServiceID:       workflowType,
		ScheduleID:      workflowType,
		IntervalMinutes: intervalMinutes,
	}, nil
}

func (m *Monitor) Window() window.Spec {
	return window.Spec{
		IntervalMinutes:    m.IntervalMinutes,
		PhaseOffsetMinutes: m.PhaseOffsetMinutes,
	}
}
