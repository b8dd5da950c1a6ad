package registry

import (
	"context"
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/goto/salt/log"

	"github.com/goto/pulse/core/monitor"
)

const pageLimit = 100

// Registry reads schedule definitions and execution history from the
// workflow registry over HTTP.
type Registry struct {
	l      log.Logger
	client Client
	auth   RegistryAuth
}

func NewRegistry(l log.Logger, client Client, auth RegistryAuth) *Registry {
	return &Registry{
		l:      l,
		client: client,
		auth:   auth,
	}
}

func (r *Registry) fetchSchedules(ctx context.Context, offset int) (*SchedulePage, error) {
	params := url.Values{}
	params.Add("limit", strconv.Itoa(pageLimit))
	params.Add("offset", strconv.Itoa(offset))
	req := registryRequest{
		path:   schedulesURL,
		method: http.MethodGet,
		query:  params.Encode(),
	}

	resp, err := r.client.Invoke(ctx, req, r.auth)
	if err != nil {
		return nil, err
	}

	var page SchedulePage
	if err := json.Unmarshal(resp, &page); err != nil {
		return nil, err
	}
	return &page, nil
}

// ListSchedules pages through all schedule descriptors.
func (r *Registry) ListSchedules(ctx context.Context) ([]ScheduleEntry, error) {
	spanCtx, span := startChildSpan(ctx, "ListSchedules")
	defer span.End()

	var all []ScheduleEntry
	for {
		page, err := r.fetchSchedules(spanCtx, len(all))
		if err != nil {
			return nil, err
		}
		all = append(all, page.Schedules...)
		if len(all) < page.TotalEntries && len(page.Schedules) > 0 {
			continue
		}
		break
	}
	return all, nil
}

// ListExecutions returns the execution records matching one visibility
// filter expression.
func (r *Registry) ListExecutions(ctx context.Context, query string) ([]ExecutionEntry, error) {
	spanCtx, span := startChildSpan(ctx, "ListExecutions")
	defer span.End()

	params := url.Values{}
	params.Add("query", query)
	req := registryRequest{
		path:   workflowsURL,
		method: http.MethodGet,
		query:  params.Encode(),
	}

	resp, err := r.client.Invoke(spanCtx, req, r.auth)
	if err != nil {
		return nil, err
	}

	var executions ExecutionsResponse
	if err := json.Unmarshal(resp, &executions); err != nil {
		return nil, err
	}
	return executions.Executions, nil
}

// ListScheduleDescriptors returns all schedules in the normalized form the
// sync rules work on.
func (r *Registry) ListScheduleDescriptors(ctx context.Context) ([]*monitor.ScheduleDescriptor, error) {
	entries, err := r.ListSchedules(ctx)
	if err != nil {
		return nil, err
	}

	descriptors := make([]*monitor.ScheduleDescriptor, 0, len(entries))
	for _, entry := range entries {
		descriptors = append(descriptors, r.toDescriptor(entry))
	}
	return descriptors, nil
}

func (r *Registry) toDescriptor(entry ScheduleEntry) *monitor.ScheduleDescriptor {
	descriptor := &monitor.ScheduleDescriptor{
		ID:              entry.ID,
		Paused:          entry.Paused,
		CronExpressions: entry.Spec.CronExpressions,
		WorkflowType:    entry.Action.WorkflowType,
		TaskQueue:       entry.Action.TaskQueue,
	}
	for _, in := range entry.Spec.Intervals {
		descriptor.IntervalsMinutes = append(descriptor.IntervalsMinutes, in.EveryMinutes)
	}
	for _, action := range entry.Info.RecentActions {
		if t, ok := r.parseActionTime(entry.ID, action.ScheduleTime); ok {
			descriptor.RecentActionTimes = append(descriptor.RecentActionTimes, t)
		}
	}
	for _, raw := range entry.Info.FutureActionTimes {
		if t, ok := r.parseActionTime(entry.ID, raw); ok {
			descriptor.UpcomingActionTimes = append(descriptor.UpcomingActionTimes, t)
		}
	}
	return descriptor
}

func (r *Registry) parseActionTime(scheduleID, raw string) (time.Time, bool) {
	t, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		r.l.Debug("skipping unparsable action time %s on schedule %s", raw, scheduleID)
		return time.Time{}, false
	}
	return t.UTC(), true
}

// SearchExecutions runs one visibility query and decodes the results,
// silently dropping records whose id carries no schedule timestamp.
func (r *Registry) SearchExecutions(ctx context.Context, query string) ([]*monitor.Execution, error) {
	entries, err := r.ListExecutions(ctx, query)
	if err != nil {
		return nil, err
	}

	executions := make([]*monitor.Execution, 0, len(entries))
	for _, entry := range entries {
		execution, err := monitor.NewExecution(entry.ID, entry.TaskQueue, entry.Status, entry.StatusName)
		if err != nil {
			r.l.Debug("skipping execution %s with unparsable id", entry.ID)
			continue
		}
		executions = append(executions, execution)
	}
	return executions, nil
}
