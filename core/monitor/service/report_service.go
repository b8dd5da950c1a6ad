package service

import (
	"context"
	"fmt"
	"time"

	"github.com/goto/salt/log"

	"github.com/goto/pulse/core/event"
	"github.com/goto/pulse/core/event/moderator"
	"github.com/goto/pulse/core/monitor"
	"github.com/goto/pulse/internal/lib/interval"
)

type ExecutionReader interface {
	SearchExecutions(ctx context.Context, query string) ([]*monitor.Execution, error)
}

type VerdictNotifier interface {
	Send(ctx context.Context, serviceID string, verdict monitor.Verdict) error
}

type executionQuery struct {
	label string
	query string
}

// ReportService evaluates one monitor against the execution history and
// posts the resulting verdict to the status board.
type ReportService struct {
	logger       log.Logger
	executions   ExecutionReader
	notifier     VerdictNotifier // nil when no report endpoint is configured
	eventHandler moderator.Handler
}

func NewReportService(logger log.Logger, executions ExecutionReader, notifier VerdictNotifier, eventHandler moderator.Handler) *ReportService {
	return &ReportService{
		logger:       logger,
		executions:   executions,
		notifier:     notifier,
		eventHandler: eventHandler,
	}
}

func (r *ReportService) Report(ctx context.Context, now time.Time, m *monitor.Monitor) (monitor.ReportOutcome, error) {
	if r.notifier == nil {
		r.logger.Warn("report endpoint not configured; skipping status for %s", m.ServiceID)
		return monitor.OutcomeSkippedNoEndpoint, nil
	}

	spec := m.Window()
	win := spec.Calculate(now)
	if grace := spec.Grace(); grace > 0 && now.Before(win.End().Add(grace)) {
		r.logger.Debug("skipping workflow %s (schedule %s) monitoring until %s", m.WorkflowType, m.ScheduleID, win.End().Add(grace))
		return monitor.OutcomePendingGrace, nil
	}

	executions := r.fetchExecutionsInWindow(ctx, m, win)
	if len(executions) == 0 && m.Paused {
		r.logger.Debug("skipping paused workflow %s with no executions in window ending %s", m.WorkflowType, win.End())
		return monitor.OutcomeSkippedPaused, nil
	}

	verdict := r.resolveVerdict(ctx, m, win, executions)
	r.publishVerdict(m, verdict, win.End())

	r.logger.Info("posting status for workflow %s (service %s, schedule %s): code=%d message=%q source_run=%s",
		m.WorkflowType, m.ServiceID, m.ScheduleID, verdict.StatusCode, verdict.Message, verdict.SourceExecutionID)
	if err := r.notifier.Send(ctx, m.ServiceID, verdict); err != nil {
		return monitor.OutcomeFailed, err
	}
	return monitor.OutcomeDone, nil
}

// resolveVerdict inspects the latest execution in the window. A RUNNING
// execution reaches back one window for the run that was due there, and only
// an execution landing exactly on the previous boundary substitutes it.
func (r *ReportService) resolveVerdict(ctx context.Context, m *monitor.Monitor, win interval.Interval, executions []*monitor.Execution) monitor.Verdict {
	verdict := monitor.DelayedVerdict()
	if len(executions) == 0 {
		r.logger.Warn("no executions found for workflow %s in window ending %s; reporting delayed", m.WorkflowType, win.End())
		return verdict
	}

	latest := latestExecution(executions)
	if latest.IsRunning() {
		verdict.Message = monitor.MessageInProgress

		every := time.Duration(m.IntervalMinutes) * time.Minute
		previousWindow := interval.NewInterval(win.Start().Add(-every), win.Start())
		if prior := executionAtBoundary(r.fetchExecutionsInWindow(ctx, m, previousWindow), previousWindow.End()); prior != nil {
			r.logger.Debug("using previous execution %s for workflow %s due to current RUNNING state", prior.ID, m.WorkflowType)
			latest = prior
		}
		verdict.SourceExecutionID = latest.ID
	}

	if !latest.IsRunning() {
		switch {
		case latest.Status.HasFailed():
			verdict.StatusCode = monitor.HealthFailed
			verdict.Message = monitor.MessageFailed
		case latest.Status.HasCompleted():
			verdict.StatusCode = monitor.HealthOK
			verdict.Message = monitor.MessageCompleted
		}
		verdict.SourceExecutionID = latest.ID
	}
	return verdict
}

// fetchExecutionsInWindow merges up to three visibility queries, keeping the
// first occurrence of each execution id. A failing query contributes zero
// results.
func (r *ReportService) fetchExecutionsInWindow(ctx context.Context, m *monitor.Monitor, win interval.Interval) []*monitor.Execution {
	queries := []executionQuery{
		{label: "schedule_id", query: fmt.Sprintf(`WorkflowId STARTS_WITH %q`, m.ScheduleID)},
	}
	if m.WorkflowType != m.ScheduleID {
		queries = append(queries, executionQuery{label: "workflow_type", query: fmt.Sprintf(`WorkflowType=%q`, m.WorkflowType)})
	}
	if m.TaskQueue != "" {
		queries = append(queries, executionQuery{label: "task_queue", query: fmt.Sprintf(`TaskQueue=%q`, m.TaskQueue)})
	}

	collected := map[string]bool{}
	var merged []*monitor.Execution
	for _, q := range queries {
		executions, err := r.executions.SearchExecutions(ctx, q.query)
		if err != nil {
			r.logger.Error("failed to list executions using %s filter (%s): %s", q.label, q.query, err)
			continue
		}
		for _, execution := range executions {
			if !win.Contains(execution.ScheduledAt) {
				continue
			}
			if collected[execution.ID] {
				continue
			}
			collected[execution.ID] = true
			merged = append(merged, execution)
		}
	}
	return merged
}

func (r *ReportService) publishVerdict(m *monitor.Monitor, verdict monitor.Verdict, windowEnd time.Time) {
	verdictEvent, err := event.NewVerdictReported(m, verdict, windowEnd)
	if err != nil {
		r.logger.Error("failed to build verdict event for %s: %s", m.ServiceID, err)
		return
	}
	r.eventHandler.HandleEvent(verdictEvent)
}

func latestExecution(executions []*monitor.Execution) *monitor.Execution {
	latest := executions[0]
	for _, execution := range executions[1:] {
		if execution.ScheduledAt.After(latest.ScheduledAt) {
			latest = execution
		}
	}
	return latest
}

func executionAtBoundary(executions []*monitor.Execution, boundary time.Time) *monitor.Execution {
	for _, execution := range executions {
		if execution.ScheduledAt.Equal(boundary) {
			return execution
		}
	}
	return nil
}
