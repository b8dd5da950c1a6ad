package event_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/goto/pulse/core/event"
	"github.com/goto/pulse/core/monitor"
)

func TestVerdictReported(t *testing.T) {
	t.Run("serializes the verdict with the monitor identity", func(t *testing.T) {
		m, err := monitor.NewMonitor("order-sync", 15)
		assert.NoError(t, err)
		m.ScheduleID = "sched-order-sync"

		windowEnd, _ := time.Parse(time.RFC3339, "2024-01-01T00:00:00Z")
		verdictEvent, err := event.NewVerdictReported(m, monitor.Verdict{
			StatusCode:        monitor.HealthOK,
			Message:           monitor.MessageCompleted,
			SourceExecutionID: "order-sync-2023-12-31T16:00:00-abc",
		}, windowEnd)
		assert.NoError(t, err)

		raw, err := verdictEvent.Bytes()
		assert.NoError(t, err)

		var payload map[string]any
		assert.NoError(t, json.Unmarshal(raw, &payload))
		assert.Equal(t, "order-sync", payload["service_id"])
		assert.Equal(t, "sched-order-sync", payload["schedule_id"])
		assert.Equal(t, float64(0), payload["status_code"])
		assert.Equal(t, "Execution completed", payload["message"])
		assert.Equal(t, "order-sync-2023-12-31T16:00:00-abc", payload["source_execution_id"])
		assert.NotEmpty(t, payload["event_id"])
	})
}
