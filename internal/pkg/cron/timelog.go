package cron

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
)

// TimeLogJobs holds the background jobs that watch open work sessions.
type TimeLogJobs struct {
	timeLogRepo  timelog.TimeLogRepository
	notifService notification.Service
	sseHub       *sse.Hub
	policy       timelog.SessionPolicy
	now          func() time.Time
}

func NewTimeLogJobs(
	timeLogRepo timelog.TimeLogRepository,
	notifService notification.Service,
	sseHub *sse.Hub,
	policy timelog.SessionPolicy,
) *TimeLogJobs {
	return &TimeLogJobs{
		timeLogRepo:  timeLogRepo,
		notifService: notifService,
		sseHub:       sseHub,
		policy:       policy,
		now:          time.Now,
	}
}

// SweepGracePeriods advances open sessions through the grace period state
// machine. Sessions past their expected clock-out move to grace_period;
// sessions past the grace window get closed as auto_terminated with the
// clock-out pinned at the grace deadline, not at sweep time.
func (j *TimeLogJobs) SweepGracePeriods(ctx context.Context) error {
	now := j.now()

	if err := j.flagGracePeriods(ctx, now); err != nil {
		return err
	}
	return j.terminateExpired(ctx, now)
}

func (j *TimeLogJobs) flagGracePeriods(ctx context.Context, now time.Time) error {
	open, err := j.timeLogRepo.ListOpenByStatus(ctx, timelog.StatusNormal)
	if err != nil {
		return fmt.Errorf("failed to list open sessions: %w", err)
	}

	for _, log := range open {
		if log.ClockIn == nil {
			continue
		}
		policy := j.policyFor(log)
		if !now.After(policy.ExpectedClockOut(*log.ClockIn)) {
			continue
		}

		flipped, err := j.timeLogRepo.MarkGracePeriod(ctx, log.ID)
		if err != nil {
			slog.Error("Failed to flag grace period", "time_log_id", log.ID, "error", err)
			continue
		}
		if !flipped {
			// Closed or flipped by a concurrent writer, nothing to do.
			continue
		}

		slog.Info("Session entered grace period",
			"time_log_id", log.ID,
			"employee_id", log.EmployeeID,
			"expected_clock_out", policy.ExpectedClockOut(*log.ClockIn))

		j.publish(log, sse.EventTimeLogGracePeriod)
		j.notify(ctx, log, notification.TypeTimeLogGracePeriod,
			"Working hours exceeded",
			"Your session exceeded the expected working hours and entered the grace period. Clock out or it will be closed automatically.")
	}

	return nil
}

func (j *TimeLogJobs) terminateExpired(ctx context.Context, now time.Time) error {
	open, err := j.timeLogRepo.ListOpenByStatus(ctx, timelog.StatusGracePeriod)
	if err != nil {
		return fmt.Errorf("failed to list grace period sessions: %w", err)
	}

	for _, log := range open {
		if log.ClockIn == nil {
			continue
		}
		policy := j.policyFor(log)
		deadline := policy.GracePeriodEnd(*log.ClockIn)
		if !now.After(deadline) {
			continue
		}

		// The session is closed at the grace deadline even when the sweep
		// runs late, so the recorded duration never depends on sweep timing.
		duration := timelog.MinutesBetween(*log.ClockIn, deadline)
		closed, err := j.timeLogRepo.CloseSession(ctx, log.ID, deadline, duration, timelog.StatusAutoTerminated)
		if err != nil {
			slog.Error("Failed to auto-terminate session", "time_log_id", log.ID, "error", err)
			continue
		}
		if !closed {
			// The employee clocked out between the list and the update.
			continue
		}

		slog.Info("Session auto-terminated",
			"time_log_id", log.ID,
			"employee_id", log.EmployeeID,
			"clock_out", deadline,
			"duration_minutes", duration)

		j.publish(log, sse.EventTimeLogAutoTerminated)
		j.notify(ctx, log, notification.TypeTimeLogAutoTerminated,
			"Session automatically closed",
			"You did not clock out before the grace period ended, so your session was closed automatically. Submit a regularization request if the recorded times are wrong.")
	}

	return nil
}

func (j *TimeLogJobs) policyFor(log timelog.TimeLog) timelog.SessionPolicy {
	if log.ExpectedWorkingHours != nil {
		return j.policy.WithWorkingHours(*log.ExpectedWorkingHours)
	}
	return j.policy
}

func (j *TimeLogJobs) publish(log timelog.TimeLog, event string) {
	if j.sseHub == nil {
		return
	}
	j.sseHub.Publish(log.EmployeeID, sse.Event{
		UserID: log.EmployeeID,
		Event:  event,
		Data:   map[string]interface{}{"time_log_id": log.ID},
	})
}

func (j *TimeLogJobs) notify(ctx context.Context, log timelog.TimeLog, notifType notification.NotificationType, title, message string) {
	if j.notifService == nil {
		return
	}
	err := j.notifService.QueueNotification(ctx, notification.CreateNotificationRequest{
		OrganizationID: log.OrganizationID,
		RecipientID:    log.EmployeeID,
		Type:           notifType,
		Title:          title,
		Message:        message,
		Data:           map[string]interface{}{"time_log_id": log.ID},
	})
	if err != nil {
		slog.Warn("Failed to queue time log notification", "time_log_id", log.ID, "error", err)
	}
}
