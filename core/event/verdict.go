package event

import (
	"encoding/json"
	"time"

	"github.com/goto/pulse/core/monitor"
)

// VerdictReported is published after a verdict has been computed for a
// monitor, regardless of whether delivery to the status board succeeded.
type VerdictReported struct {
	Event

	Monitor   *monitor.Monitor
	Verdict   monitor.Verdict
	WindowEnd time.Time
}

func NewVerdictReported(m *monitor.Monitor, verdict monitor.Verdict, windowEnd time.Time) (*VerdictReported, error) {
	baseEvent, err := NewBaseEvent()
	if err != nil {
		return nil, err
	}
	return &VerdictReported{
		Event:     baseEvent,
		Monitor:   m,
		Verdict:   verdict,
		WindowEnd: windowEnd,
	}, nil
}

type verdictPayload struct {
	EventID    string    `json:"event_id"`
	OccurredAt time.Time `json:"occurred_at"`

	ServiceID    string `json:"service_id"`
	WorkflowType string `json:"workflow_type"`
	ScheduleID   string `json:"schedule_id"`

	StatusCode        int       `json:"status_code"`
	Message           string    `json:"message"`
	SourceExecutionID string    `json:"source_execution_id,omitempty"`
	WindowEnd         time.Time `json:"window_end"`
}

func (v VerdictReported) Bytes() ([]byte, error) {
	return json.Marshal(verdictPayload{
		EventID:           v.ID.String(),
		OccurredAt:        v.OccurredAt,
		ServiceID:         v.Monitor.ServiceID,
		WorkflowType:      v.Monitor.WorkflowType,
		ScheduleID:        v.Monitor.ScheduleID,
		StatusCode:        int(v.Verdict.StatusCode),
		Message:           v.Verdict.Message,
		SourceExecutionID: v.Verdict.SourceExecutionID,
		WindowEnd:         v.WindowEnd,
	})
}
