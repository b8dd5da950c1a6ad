package service

import (
	"context"
	"sort"
	"time"

	"github.com/goto/salt/log"

	"github.com/goto/pulse/core/monitor"
	"github.com/goto/pulse/internal/errors"
	"github.com/goto/pulse/internal/lib/cron"
)

const (
	defaultIntervalMinutes = 15

	// upcoming action times all older than this mean the schedule has
	// effectively stopped firing
	pausedStaleness = 5 * time.Minute
)

var epoch = time.Unix(0, 0).UTC()

type ScheduleReader interface {
	ListScheduleDescriptors(ctx context.Context) ([]*monitor.ScheduleDescriptor, error)
}

type ServiceRepository interface {
	Exists(ctx context.Context, serviceID string) (bool, error)
	Create(ctx context.Context, serviceID, label, serviceType string) error
}

// SyncService rebuilds the monitor list from the registry and makes sure
// every monitored service has a status board row.
type SyncService struct {
	logger      log.Logger
	schedules   ScheduleReader
	serviceRepo ServiceRepository
}

func NewSyncService(logger log.Logger, schedules ScheduleReader, serviceRepo ServiceRepository) *SyncService {
	return &SyncService{
		logger:      logger,
		schedules:   schedules,
		serviceRepo: serviceRepo,
	}
}

// Sync returns the fresh monitor list. A registry failure yields an empty
// list so the caller can keep monitoring with the previous one.
func (s *SyncService) Sync(ctx context.Context, now time.Time) []*monitor.Monitor {
	descriptors, err := s.schedules.ListScheduleDescriptors(ctx)
	if err != nil {
		s.logger.Warn("failed to list schedules: %s", err)
		return nil
	}

	var monitors []*monitor.Monitor
	for _, descriptor := range descriptors {
		m, err := s.buildMonitor(descriptor, now)
		if err != nil {
			s.logger.Debug("skipping schedule %s: %s", descriptor.ID, err)
			continue
		}
		s.ensureService(ctx, m.ServiceID)
		monitors = append(monitors, m)
	}

	if len(monitors) > 0 {
		s.logger.Info("synchronized %d workflow monitors", len(monitors))
	}
	return monitors
}

func (s *SyncService) buildMonitor(descriptor *monitor.ScheduleDescriptor, now time.Time) (*monitor.Monitor, error) {
	workflowType := descriptor.WorkflowType
	if workflowType == "" {
		workflowType = descriptor.ID
	}
	if workflowType == "" {
		return nil, errors.InvalidArgument(monitor.EntityMonitor, "schedule carries no workflow type or id")
	}

	intervalMinutes, known := smallestDeclaredInterval(descriptor.IntervalsMinutes)
	if !known {
		intervalMinutes, known = intervalFromCrons(descriptor.CronExpressions, now)
	}
	if !known {
		intervalMinutes, known = intervalFromActionTimes(descriptor.ActionTimes())
	}
	if !known {
		intervalMinutes = defaultIntervalMinutes
	}

	m, err := monitor.NewMonitor(workflowType, intervalMinutes)
	if err != nil {
		return nil, err
	}
	if descriptor.ID != "" {
		m.ScheduleID = descriptor.ID
	}
	m.TaskQueue = descriptor.TaskQueue

	// the default interval is not anchored to anything, so it keeps a
	// zero offset
	if known {
		if first, ok := firstActionTime(descriptor); ok {
			elapsed := int(first.UTC().Sub(epoch) / time.Minute)
			m.PhaseOffsetMinutes = ((elapsed % intervalMinutes) + intervalMinutes) % intervalMinutes
		}
	}

	m.Paused = descriptor.Paused || allUpcomingStale(descriptor, now)
	return m, nil
}

func (s *SyncService) ensureService(ctx context.Context, serviceID string) {
	if s.serviceRepo == nil {
		return
	}

	exists, err := s.serviceRepo.Exists(ctx, serviceID)
	if err != nil {
		s.logger.Error("failed to check service %s: %s", serviceID, err)
		return
	}
	if exists {
		return
	}

	err = s.serviceRepo.Create(ctx, serviceID, serviceID, monitor.ServiceKindWorkflow)
	if err != nil {
		if errors.IsErrorType(err, errors.ErrAlreadyExists) {
			return
		}
		s.logger.Error("failed to create service %s: %s", serviceID, err)
		return
	}
	s.logger.Info("auto-created workflow service %s", serviceID)
}

func smallestDeclaredInterval(intervals []int) (int, bool) {
	best := 0
	for _, minutes := range intervals {
		if minutes <= 0 {
			continue
		}
		if best == 0 || minutes < best {
			best = minutes
		}
	}
	return best, best > 0
}

func intervalFromCrons(expressions []string, now time.Time) (int, bool) {
	best := 0
	for _, expression := range expressions {
		schedule, err := cron.ParseCronSchedule(expression)
		if err != nil {
			continue
		}
		minutes := int(schedule.Interval(now) / time.Minute)
		if minutes < 1 {
			continue
		}
		if best == 0 || minutes < best {
			best = minutes
		}
	}
	return best, best > 0
}

// intervalFromActionTimes infers the recurrence from the smallest positive
// gap between known activation times.
func intervalFromActionTimes(actionTimes []time.Time) (int, bool) {
	if len(actionTimes) < 2 {
		return 0, false
	}

	sorted := make([]time.Time, len(actionTimes))
	copy(sorted, actionTimes)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Before(sorted[j]) })

	best := 0
	for i := 1; i < len(sorted); i++ {
		minutes := int(sorted[i].Sub(sorted[i-1]) / time.Minute)
		if minutes <= 0 {
			continue
		}
		if best == 0 || minutes < best {
			best = minutes
		}
	}
	return best, best > 0
}

func firstActionTime(descriptor *monitor.ScheduleDescriptor) (time.Time, bool) {
	actionTimes := descriptor.ActionTimes()
	if len(actionTimes) == 0 {
		return time.Time{}, false
	}

	first := actionTimes[0]
	for _, t := range actionTimes[1:] {
		if t.Before(first) {
			first = t
		}
	}
	return first, true
}

func allUpcomingStale(descriptor *monitor.ScheduleDescriptor, now time.Time) bool {
	if len(descriptor.UpcomingActionTimes) == 0 {
		return false
	}

	cutoff := now.Add(-pausedStaleness)
	for _, t := range descriptor.UpcomingActionTimes {
		if !t.Before(cutoff) {
			return false
		}
	}
	return true
}
