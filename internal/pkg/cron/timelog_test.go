package cron

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
)

type fakeTimeLogRepo struct {
	timelog.TimeLogRepository

	logs map[string]*timelog.TimeLog

	// When set, MarkGracePeriod and CloseSession report a lost race.
	loseRaces bool
}

func newFakeTimeLogRepo() *fakeTimeLogRepo {
	return &fakeTimeLogRepo{logs: make(map[string]*timelog.TimeLog)}
}

func (f *fakeTimeLogRepo) add(log timelog.TimeLog) *timelog.TimeLog {
	stored := log
	f.logs[log.ID] = &stored
	return &stored
}

func (f *fakeTimeLogRepo) ListOpenByStatus(ctx context.Context, status timelog.Status) ([]timelog.TimeLog, error) {
	var out []timelog.TimeLog
	for _, log := range f.logs {
		if log.ClockOut == nil && log.Status == status {
			out = append(out, *log)
		}
	}
	return out, nil
}

func (f *fakeTimeLogRepo) MarkGracePeriod(ctx context.Context, id string) (bool, error) {
	if f.loseRaces {
		return false, nil
	}
	log, ok := f.logs[id]
	if !ok || log.ClockOut != nil || log.Status != timelog.StatusNormal {
		return false, nil
	}
	log.Status = timelog.StatusGracePeriod
	return true, nil
}

func (f *fakeTimeLogRepo) CloseSession(ctx context.Context, id string, clockOut time.Time, durationMinutes int, status timelog.Status) (bool, error) {
	if f.loseRaces {
		return false, nil
	}
	log, ok := f.logs[id]
	if !ok || log.ClockOut != nil {
		return false, nil
	}
	log.ClockOut = &clockOut
	log.DurationMinutes = &durationMinutes
	log.Status = status
	return true, nil
}

type fakeNotifService struct {
	mu     sync.Mutex
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifService) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.queued = append(f.queued, req)
	return nil
}

func (f *fakeNotifService) GetNotifications(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]notification.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifService) MarkAsRead(ctx context.Context, userID string, notificationID string) error {
	return nil
}

func (f *fakeNotifService) Stop() {}

func openSession(id string, clockIn time.Time, status timelog.Status) timelog.TimeLog {
	return timelog.TimeLog{
		ID:             id,
		EmployeeID:     "emp-" + id,
		OrganizationID: "org-1",
		ClockIn:        &clockIn,
		Status:         status,
	}
}

func newTestJobs(repo *fakeTimeLogRepo, notif *fakeNotifService, now time.Time) *TimeLogJobs {
	jobs := NewTimeLogJobs(repo, notif, sse.NewHub(), timelog.DefaultSessionPolicy())
	jobs.now = func() time.Time { return now }
	return jobs
}

func TestSweepFlagsSessionsPastExpectedClockOut(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := clockIn.Add(9*time.Hour + time.Minute)

	repo := newFakeTimeLogRepo()
	repo.add(openSession("due", clockIn, timelog.StatusNormal))
	repo.add(openSession("fresh", now.Add(-time.Hour), timelog.StatusNormal))
	notif := &fakeNotifService{}

	jobs := newTestJobs(repo, notif, now)
	require.NoError(t, jobs.SweepGracePeriods(context.Background()))

	assert.Equal(t, timelog.StatusGracePeriod, repo.logs["due"].Status)
	assert.Equal(t, timelog.StatusNormal, repo.logs["fresh"].Status)

	require.Len(t, notif.queued, 1)
	assert.Equal(t, notification.TypeTimeLogGracePeriod, notif.queued[0].Type)
	assert.Equal(t, "emp-due", notif.queued[0].RecipientID)
}

func TestSweepLeavesSessionAtExactExpectedClockOut(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := clockIn.Add(9 * time.Hour)

	repo := newFakeTimeLogRepo()
	repo.add(openSession("boundary", clockIn, timelog.StatusNormal))

	jobs := newTestJobs(repo, &fakeNotifService{}, now)
	require.NoError(t, jobs.SweepGracePeriods(context.Background()))

	assert.Equal(t, timelog.StatusNormal, repo.logs["boundary"].Status)
}

func TestSweepTerminatesAtGraceDeadline(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	deadline := clockIn.Add(10 * time.Hour)
	// The sweep runs well after the deadline; the recorded clock-out must
	// still be the deadline itself.
	now := deadline.Add(47 * time.Minute)

	repo := newFakeTimeLogRepo()
	repo.add(openSession("expired", clockIn, timelog.StatusGracePeriod))
	notif := &fakeNotifService{}

	jobs := newTestJobs(repo, notif, now)
	require.NoError(t, jobs.SweepGracePeriods(context.Background()))

	log := repo.logs["expired"]
	assert.Equal(t, timelog.StatusAutoTerminated, log.Status)
	require.NotNil(t, log.ClockOut)
	assert.True(t, log.ClockOut.Equal(deadline))
	require.NotNil(t, log.DurationMinutes)
	assert.Equal(t, 600, *log.DurationMinutes)

	require.Len(t, notif.queued, 1)
	assert.Equal(t, notification.TypeTimeLogAutoTerminated, notif.queued[0].Type)
}

func TestSweepHonorsPerSessionWorkingHours(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	hours := 4.0
	now := clockIn.Add(4*time.Hour + time.Minute)

	short := openSession("short", clockIn, timelog.StatusNormal)
	short.ExpectedWorkingHours = &hours

	repo := newFakeTimeLogRepo()
	repo.add(short)
	repo.add(openSession("default", clockIn, timelog.StatusNormal))

	jobs := newTestJobs(repo, &fakeNotifService{}, now)
	require.NoError(t, jobs.SweepGracePeriods(context.Background()))

	assert.Equal(t, timelog.StatusGracePeriod, repo.logs["short"].Status)
	assert.Equal(t, timelog.StatusNormal, repo.logs["default"].Status)
}

func TestSweepSkipsNotificationOnLostRace(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := clockIn.Add(11 * time.Hour)

	repo := newFakeTimeLogRepo()
	repo.add(openSession("racing-normal", clockIn, timelog.StatusNormal))
	repo.add(openSession("racing-grace", clockIn, timelog.StatusGracePeriod))
	repo.loseRaces = true
	notif := &fakeNotifService{}

	jobs := newTestJobs(repo, notif, now)
	require.NoError(t, jobs.SweepGracePeriods(context.Background()))

	assert.Empty(t, notif.queued)
}

func TestSweepIsIdempotent(t *testing.T) {
	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	now := clockIn.Add(11 * time.Hour)

	repo := newFakeTimeLogRepo()
	repo.add(openSession("expired", clockIn, timelog.StatusGracePeriod))
	notif := &fakeNotifService{}

	jobs := newTestJobs(repo, notif, now)
	require.NoError(t, jobs.SweepGracePeriods(context.Background()))
	require.NoError(t, jobs.SweepGracePeriods(context.Background()))

	assert.Len(t, notif.queued, 1)
}
