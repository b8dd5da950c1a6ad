package monitor_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/goto/pulse/core/monitor"
)

func TestScheduledTimeFromID(t *testing.T) {
	t.Run("decodes the embedded timestamp and shifts it by eight hours", func(t *testing.T) {
		scheduledAt, err := monitor.ScheduledTimeFromID("order-sync-2024-01-01T00:00:00Z-a1b2")
		assert.NoError(t, err)

		expected, _ := time.Parse(time.RFC3339, "2024-01-01T08:00:00Z")
		assert.True(t, scheduledAt.Equal(expected))
	})
	t.Run("returns invalid argument when no timestamp is embedded", func(t *testing.T) {
		_, err := monitor.ScheduledTimeFromID("order-sync-a1b2")
		assert.Error(t, err)
		assert.ErrorContains(t, err, "no schedule timestamp")
	})
}

func TestNewExecution(t *testing.T) {
	t.Run("builds an execution with the decoded schedule time", func(t *testing.T) {
		execution, err := monitor.NewExecution("report-2024-05-10T11:30:00-x", "dwh-queue", 2, "COMPLETED")
		assert.NoError(t, err)
		assert.Equal(t, "report-2024-05-10T11:30:00-x", execution.ID)
		assert.Equal(t, monitor.StatusCompleted, execution.Status)
		assert.False(t, execution.IsRunning())

		expected, _ := time.Parse(time.RFC3339, "2024-05-10T19:30:00Z")
		assert.True(t, execution.ScheduledAt.Equal(expected))
	})
	t.Run("rejects ids without a parseable timestamp", func(t *testing.T) {
		execution, err := monitor.NewExecution("report-x", "dwh-queue", 1, "RUNNING")
		assert.Error(t, err)
		assert.Nil(t, execution)
	})
}

func TestExecutionStatus(t *testing.T) {
	t.Run("maps the failure family", func(t *testing.T) {
		for _, status := range []monitor.ExecutionStatus{
			monitor.StatusFailed,
			monitor.StatusCancelled,
			monitor.StatusTerminated,
			monitor.StatusTimedOut,
		} {
			assert.True(t, status.HasFailed())
			assert.False(t, status.HasCompleted())
		}
	})
	t.Run("maps completion", func(t *testing.T) {
		assert.True(t, monitor.StatusCompleted.HasCompleted())
		assert.False(t, monitor.StatusCompleted.HasFailed())
	})
	t.Run("leaves other terminal states unmapped", func(t *testing.T) {
		assert.False(t, monitor.StatusContinuedAsNew.HasFailed())
		assert.False(t, monitor.StatusContinuedAsNew.HasCompleted())
		assert.False(t, monitor.StatusRunning.HasFailed())
	})
}

func TestNewMonitor(t *testing.T) {
	t.Run("defaults service and schedule ids to the workflow type", func(t *testing.T) {
		m, err := monitor.NewMonitor("order-sync", 30)
		assert.NoError(t, err)
		assert.Equal(t, "order-sync", m.ServiceID)
		assert.Equal(t, "order-sync", m.ScheduleID)
		assert.Equal(t, 30, m.IntervalMinutes)
	})
	t.Run("clamps the interval to one minute", func(t *testing.T) {
		m, err := monitor.NewMonitor("order-sync", 0)
		assert.NoError(t, err)
		assert.Equal(t, 1, m.IntervalMinutes)
	})
	t.Run("rejects an empty workflow type", func(t *testing.T) {
		m, err := monitor.NewMonitor("", 15)
		assert.Error(t, err)
		assert.Nil(t, m)
	})
}
