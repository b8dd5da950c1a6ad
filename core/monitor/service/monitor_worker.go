package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/goto/salt/log"
	"github.com/kushsharma/parallel"

	"github.com/goto/pulse/core/monitor"
	"github.com/goto/pulse/internal/telemetry"
)

const (
	concurrentTicketPerSec = 10
	concurrentLimit        = 20
)

type MonitorSyncer interface {
	Sync(ctx context.Context, now time.Time) []*monitor.Monitor
}

type StatusReporter interface {
	Report(ctx context.Context, now time.Time, m *monitor.Monitor) (monitor.ReportOutcome, error)
}

// MonitorWorker drives the monitoring loop: sync the monitor list, pick the
// monitors whose window just closed, and report them in parallel.
type MonitorWorker struct {
	logger   log.Logger
	syncer   MonitorSyncer
	reporter StatusReporter

	// replaced wholesale between cycles, read-only within one
	monitors []*monitor.Monitor
}

func NewMonitorWorker(logger log.Logger, syncer MonitorSyncer, reporter StatusReporter) *MonitorWorker {
	return &MonitorWorker{
		logger:   logger,
		syncer:   syncer,
		reporter: reporter,
	}
}

func (w *MonitorWorker) ScheduleMonitoring(ctx context.Context, tickInterval time.Duration) {
	ticker := time.NewTicker(tickInterval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				signature := uuid.New().String()
				w.runCycle(ctx, signature)
			}
		}
	}()
}

func (w *MonitorWorker) runCycle(ctx context.Context, signature string) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("monitor cycle %s panicked: %v", signature, r)
			telemetry.LogPanic(monitor.EntityMonitor, "monitor cycle panic")
		}
	}()

	telemetry.NewCounter(monitor.MetricMonitorCycle, nil).Inc()

	if synced := w.syncer.Sync(ctx, time.Now().UTC()); len(synced) > 0 {
		w.monitors = synced
	}
	telemetry.NewGauge(monitor.MetricMonitorSyncedMonitors, nil).Set(float64(len(w.monitors)))

	// one clock for every eligibility and window decision in this cycle
	now := time.Now().UTC()

	var due []*monitor.Monitor
	for _, m := range w.monitors {
		if m.Window().IsDue(now) {
			due = append(due, m)
		}
	}
	if len(due) == 0 {
		w.logger.Debug("monitor cycle %s: no monitors due at %s", signature, now)
		return
	}

	runner := parallel.NewRunner(parallel.WithTicket(concurrentTicketPerSec), parallel.WithLimit(concurrentLimit))
	for _, m := range due {
		runner.Add(func(current *monitor.Monitor) func() (interface{}, error) {
			return func() (interface{}, error) {
				return w.reportOne(ctx, now, current), nil
			}
		}(m))
	}

	outcomeCounts := map[monitor.ReportOutcome]int{}
	for _, result := range runner.Run() {
		if result.Err != nil {
			outcomeCounts[monitor.OutcomeFailed]++
			continue
		}
		outcomeCounts[result.Val.(monitor.ReportOutcome)]++
	}
	for outcome, count := range outcomeCounts {
		telemetry.NewCounter(monitor.MetricMonitorReportOutcome, map[string]string{
			"outcome": outcome.String(),
		}).Add(float64(count))
	}
	w.logger.Info("monitor cycle %s completed: %d due, outcomes %v", signature, len(due), outcomeCounts)
}

// reportOne isolates one monitor's pipeline so a failure or panic never
// affects its siblings.
func (w *MonitorWorker) reportOne(ctx context.Context, now time.Time, m *monitor.Monitor) (outcome monitor.ReportOutcome) {
	defer func() {
		if r := recover(); r != nil {
			w.logger.Error("reporting panicked for workflow %s: %v", m.WorkflowType, r)
			telemetry.LogPanic(monitor.EntityMonitor, fmt.Sprintf("report panic for %s", m.WorkflowType))
			outcome = monitor.OutcomeFailed
		}
	}()

	outcome, err := w.reporter.Report(ctx, now, m)
	if err != nil {
		w.logger.Error("failed reporting status for workflow %s (service %s): %s", m.WorkflowType, m.ServiceID, err)
	}
	return outcome
}
