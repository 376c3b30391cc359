package regularization

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/approval"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/employee"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/regularization"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
)

const (
	testOrgID      = "org-1"
	testEmployeeID = "emp-1"
	testManagerID  = "mgr-1"
)

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type fakeRegRepo struct {
	requests map[string]*regularization.Request
	nextID   int
}

func newFakeRegRepo() *fakeRegRepo {
	return &fakeRegRepo{requests: make(map[string]*regularization.Request)}
}

func (f *fakeRegRepo) Create(ctx context.Context, req regularization.Request) (regularization.Request, error) {
	f.nextID++
	req.ID = fmt.Sprintf("req-%d", f.nextID)
	req.CreatedAt = time.Now()
	stored := req
	f.requests[req.ID] = &stored
	return req, nil
}

func (f *fakeRegRepo) GetByID(ctx context.Context, id string, organizationID string) (regularization.Request, error) {
	req, ok := f.requests[id]
	if !ok || req.OrganizationID != organizationID {
		return regularization.Request{}, regularization.ErrRequestNotFound
	}
	return *req, nil
}

func (f *fakeRegRepo) Decide(ctx context.Context, id string, status regularization.Status, approverID string, notes *string, decidedAt time.Time) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != regularization.StatusPending {
		return false, nil
	}
	req.Status = status
	req.ApprovedBy = &approverID
	req.ApprovedAt = &decidedAt
	req.ApproverNotes = notes
	return true, nil
}

func (f *fakeRegRepo) SetClarification(ctx context.Context, id string, status timelog.ClarificationStatus, response *string) error {
	req, ok := f.requests[id]
	if !ok {
		return regularization.ErrRequestNotFound
	}
	req.ClarificationStatus = status
	req.ClarificationResponse = response
	return nil
}

func (f *fakeRegRepo) List(ctx context.Context, filter regularization.Filter, organizationID string) ([]regularization.Request, int64, error) {
	var out []regularization.Request
	for _, req := range f.requests {
		if req.OrganizationID != organizationID {
			continue
		}
		if filter.EmployeeID != nil && req.EmployeeID != *filter.EmployeeID {
			continue
		}
		out = append(out, *req)
	}
	return out, int64(len(out)), nil
}

type fakeTimeLogRepo struct {
	timelog.TimeLogRepository

	logs   map[string]*timelog.TimeLog
	nextID int
}

func newFakeTimeLogRepo() *fakeTimeLogRepo {
	return &fakeTimeLogRepo{logs: make(map[string]*timelog.TimeLog)}
}

func (f *fakeTimeLogRepo) add(log timelog.TimeLog) *timelog.TimeLog {
	stored := log
	f.logs[log.ID] = &stored
	return &stored
}

func (f *fakeTimeLogRepo) GetByID(ctx context.Context, id string, organizationID string) (timelog.TimeLog, error) {
	log, ok := f.logs[id]
	if !ok || log.OrganizationID != organizationID {
		return timelog.TimeLog{}, timelog.ErrTimeLogNotFound
	}
	return *log, nil
}

func (f *fakeTimeLogRepo) Create(ctx context.Context, log timelog.TimeLog) (timelog.TimeLog, error) {
	f.nextID++
	log.ID = fmt.Sprintf("log-%d", f.nextID)
	stored := log
	f.logs[log.ID] = &stored
	return log, nil
}

func (f *fakeTimeLogRepo) CloseSession(ctx context.Context, id string, clockOut time.Time, durationMinutes int, status timelog.Status) (bool, error) {
	log, ok := f.logs[id]
	if !ok || log.ClockOut != nil {
		return false, nil
	}
	log.ClockOut = &clockOut
	log.DurationMinutes = &durationMinutes
	log.Status = status
	return true, nil
}

func (f *fakeTimeLogRepo) ApplyCorrection(ctx context.Context, id string, clockIn, clockOut time.Time, durationMinutes int, approvedBy string, approvedAt time.Time) error {
	log, ok := f.logs[id]
	if !ok {
		return timelog.ErrTimeLogNotFound
	}
	log.ClockIn = &clockIn
	log.ClockOut = &clockOut
	log.DurationMinutes = &durationMinutes
	log.Status = timelog.StatusNormal
	log.IsApproved = true
	log.ApprovedBy = &approvedBy
	log.ApprovedAt = &approvedAt
	return nil
}

func (f *fakeTimeLogRepo) SetClarification(ctx context.Context, id string, status timelog.ClarificationStatus, response *string) error {
	log, ok := f.logs[id]
	if !ok {
		return timelog.ErrTimeLogNotFound
	}
	log.ClarificationStatus = status
	log.ClarificationResponse = response
	return nil
}

// fakeEmployeeRepo treats mgr-1 and own-1 as approvers for everyone in org-1.
type fakeEmployeeRepo struct{}

func (fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return employee.Employee{ID: id, OrganizationID: testOrgID}, nil
}

func (fakeEmployeeRepo) IsApproverFor(ctx context.Context, approverID, employeeID string) (bool, error) {
	return approverID == testManagerID || approverID == "own-1", nil
}

func (fakeEmployeeRepo) GetManagersByOrganizationID(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	return []employee.Employee{{ID: testManagerID, OrganizationID: organizationID}}, nil
}

func (fakeEmployeeRepo) HasProjects(ctx context.Context, employeeID string) (bool, error) {
	return false, nil
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

func authContext(t *testing.T, employeeID, role string) context.Context {
	t.Helper()

	tokenAuth := jwtauth.New("HS256", []byte("test-secret"), nil)
	token, _, err := tokenAuth.Encode(map[string]interface{}{
		"employee_id":     employeeID,
		"organization_id": testOrgID,
		"role":            role,
		"type":            "access",
	})
	require.NoError(t, err)

	return jwtauth.NewContext(context.Background(), token, nil)
}

type testEnv struct {
	svc      *RegularizationServiceImpl
	regRepo  *fakeRegRepo
	timeRepo *fakeTimeLogRepo
	notif    *fakeNotifService
}

func newTestEnv() *testEnv {
	regRepo := newFakeRegRepo()
	timeRepo := newFakeTimeLogRepo()
	notif := &fakeNotifService{}
	tx := fakeTxManager{}
	engine := approval.NewEngine(tx, fakeEmployeeRepo{})
	svc := NewRegularizationService(tx, engine, regRepo, timeRepo, fakeEmployeeRepo{}, notif, sse.NewHub())
	return &testEnv{svc: svc, regRepo: regRepo, timeRepo: timeRepo, notif: notif}
}

func submitCorrection(t *testing.T, env *testEnv, timeLogID *string) regularization.Response {
	t.Helper()

	resp, err := env.svc.Submit(authContext(t, testEmployeeID, "staff"), regularization.SubmitRequest{
		TimeLogID:         timeLogID,
		Date:              "2026-03-02",
		RequestedClockIn:  "2026-03-02T09:00:00Z",
		RequestedClockOut: "2026-03-02T17:30:00Z",
		Reason:            "Forgot to clock out before leaving",
	})
	require.NoError(t, err)
	return resp
}

func TestSubmitRejectsInvertedRange(t *testing.T) {
	env := newTestEnv()

	_, err := env.svc.Submit(authContext(t, testEmployeeID, "staff"), regularization.SubmitRequest{
		Date:              "2026-03-02",
		RequestedClockIn:  "2026-03-02T17:00:00Z",
		RequestedClockOut: "2026-03-02T09:00:00Z",
		Reason:            "typo",
	})
	assert.ErrorIs(t, err, regularization.ErrInvalidRange)
}

func TestSubmitSnapshotsOriginalTimes(t *testing.T) {
	env := newTestEnv()

	clockIn := time.Date(2026, 3, 2, 9, 12, 0, 0, time.UTC)
	clockOut := time.Date(2026, 3, 2, 19, 0, 0, 0, time.UTC)
	env.timeRepo.add(timelog.TimeLog{
		ID:             "log-a",
		EmployeeID:     testEmployeeID,
		OrganizationID: testOrgID,
		ClockIn:        &clockIn,
		ClockOut:       &clockOut,
		Status:         timelog.StatusAutoTerminated,
	})

	logID := "log-a"
	resp := submitCorrection(t, env, &logID)

	require.NotNil(t, resp.OriginalClockIn)
	assert.Equal(t, clockIn.Format(time.RFC3339), *resp.OriginalClockIn)
	require.NotNil(t, resp.OriginalClockOut)
	assert.Equal(t, clockOut.Format(time.RFC3339), *resp.OriginalClockOut)
	assert.Equal(t, string(regularization.StatusPending), resp.Status)

	// Approvers get notified, minus the submitter.
	require.Len(t, env.notif.queued, 1)
	assert.Equal(t, testManagerID, env.notif.queued[0].RecipientID)
}

func TestSubmitRejectsForeignTimeLog(t *testing.T) {
	env := newTestEnv()

	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	env.timeRepo.add(timelog.TimeLog{
		ID:             "log-b",
		EmployeeID:     "emp-2",
		OrganizationID: testOrgID,
		ClockIn:        &clockIn,
	})

	logID := "log-b"
	_, err := env.svc.Submit(authContext(t, testEmployeeID, "staff"), regularization.SubmitRequest{
		TimeLogID:         &logID,
		Date:              "2026-03-02",
		RequestedClockIn:  "2026-03-02T09:00:00Z",
		RequestedClockOut: "2026-03-02T17:00:00Z",
		Reason:            "wrong owner",
	})
	assert.ErrorIs(t, err, timelog.ErrUnauthorized)
}

func TestApproveAppliesCorrectionToTimeLog(t *testing.T) {
	env := newTestEnv()

	clockIn := time.Date(2026, 3, 2, 9, 12, 0, 0, time.UTC)
	clockOut := time.Date(2026, 3, 2, 19, 12, 0, 0, time.UTC)
	env.timeRepo.add(timelog.TimeLog{
		ID:             "log-a",
		EmployeeID:     testEmployeeID,
		OrganizationID: testOrgID,
		ClockIn:        &clockIn,
		ClockOut:       &clockOut,
		Status:         timelog.StatusAutoTerminated,
	})

	logID := "log-a"
	created := submitCorrection(t, env, &logID)

	resp, err := env.svc.Approve(authContext(t, testManagerID, "manager"), regularization.DecideRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, string(regularization.StatusApproved), resp.Status)

	log := env.timeRepo.logs["log-a"]
	assert.Equal(t, timelog.StatusNormal, log.Status)
	assert.True(t, log.IsApproved)
	require.NotNil(t, log.ClockIn)
	assert.Equal(t, "2026-03-02T09:00:00Z", log.ClockIn.Format(time.RFC3339))
	require.NotNil(t, log.ClockOut)
	assert.Equal(t, "2026-03-02T17:30:00Z", log.ClockOut.Format(time.RFC3339))
	require.NotNil(t, log.DurationMinutes)
	assert.Equal(t, 510, *log.DurationMinutes)
}

func TestApproveAbsenceMaterializesTimeLog(t *testing.T) {
	env := newTestEnv()

	created := submitCorrection(t, env, nil)

	_, err := env.svc.Approve(authContext(t, testManagerID, "manager"), regularization.DecideRequest{ID: created.ID})
	require.NoError(t, err)

	require.Len(t, env.timeRepo.logs, 1)
	for _, log := range env.timeRepo.logs {
		assert.Equal(t, testEmployeeID, log.EmployeeID)
		assert.Equal(t, timelog.StatusNormal, log.Status)
		require.NotNil(t, log.ClockOut)
		require.NotNil(t, log.DurationMinutes)
		assert.Equal(t, 510, *log.DurationMinutes)

		// The materialized log carries the same approval stamp as a
		// corrected existing log.
		assert.True(t, log.IsApproved)
		require.NotNil(t, log.ApprovedBy)
		assert.Equal(t, testManagerID, *log.ApprovedBy)
		require.NotNil(t, log.ApprovedAt)
	}
}

func TestRejectRequiresNotes(t *testing.T) {
	env := newTestEnv()
	created := submitCorrection(t, env, nil)

	_, err := env.svc.Reject(authContext(t, testManagerID, "manager"), regularization.DecideRequest{ID: created.ID})
	assert.ErrorIs(t, err, approval.ErrReasonRequired)

	resp, err := env.svc.Reject(authContext(t, testManagerID, "manager"), regularization.DecideRequest{
		ID:    created.ID,
		Notes: "Does not match the badge records",
	})
	require.NoError(t, err)
	assert.Equal(t, string(regularization.StatusRejected), resp.Status)
	require.NotNil(t, resp.ApproverNotes)
	assert.Equal(t, "Does not match the badge records", *resp.ApproverNotes)
}

func TestDecideRequiresApproverRole(t *testing.T) {
	env := newTestEnv()
	created := submitCorrection(t, env, nil)

	_, err := env.svc.Approve(authContext(t, "emp-2", "staff"), regularization.DecideRequest{ID: created.ID})
	assert.ErrorIs(t, err, approval.ErrApproverRoleRequired)
}

func TestSecondDecisionFails(t *testing.T) {
	env := newTestEnv()
	created := submitCorrection(t, env, nil)

	_, err := env.svc.Approve(authContext(t, testManagerID, "manager"), regularization.DecideRequest{ID: created.ID})
	require.NoError(t, err)

	_, err = env.svc.Reject(authContext(t, testManagerID, "manager"), regularization.DecideRequest{
		ID:    created.ID,
		Notes: "changed my mind",
	})
	assert.ErrorIs(t, err, regularization.ErrNotPending)
}

func TestClarificationRoundTrip(t *testing.T) {
	env := newTestEnv()

	clockIn := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	env.timeRepo.add(timelog.TimeLog{
		ID:             "log-a",
		EmployeeID:     testEmployeeID,
		OrganizationID: testOrgID,
		ClockIn:        &clockIn,
		Status:         timelog.StatusAutoTerminated,
	})

	logID := "log-a"
	created := submitCorrection(t, env, &logID)

	// Answering before anyone asked is rejected.
	err := env.svc.SubmitClarification(authContext(t, testEmployeeID, "staff"), regularization.ClarificationResponseRequest{
		ID:       created.ID,
		Response: "I was in the server room",
	})
	assert.ErrorIs(t, err, regularization.ErrNoClarification)

	// Staff cannot ask for clarification.
	err = env.svc.RequestClarification(authContext(t, "emp-2", "staff"), regularization.ClarificationRequest{ID: created.ID})
	assert.ErrorIs(t, err, approval.ErrApproverRoleRequired)

	err = env.svc.RequestClarification(authContext(t, testManagerID, "manager"), regularization.ClarificationRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, timelog.ClarificationNeeded, env.regRepo.requests[created.ID].ClarificationStatus)
	assert.Equal(t, timelog.ClarificationNeeded, env.timeRepo.logs["log-a"].ClarificationStatus)

	err = env.svc.SubmitClarification(authContext(t, testEmployeeID, "staff"), regularization.ClarificationResponseRequest{
		ID:       created.ID,
		Response: "I was in the server room",
	})
	require.NoError(t, err)

	req := env.regRepo.requests[created.ID]
	assert.Equal(t, timelog.ClarificationSubmitted, req.ClarificationStatus)
	require.NotNil(t, req.ClarificationResponse)
	assert.Equal(t, "I was in the server room", *req.ClarificationResponse)
	assert.Equal(t, timelog.ClarificationSubmitted, env.timeRepo.logs["log-a"].ClarificationStatus)
}

func TestGetMyRequestsScopesToCaller(t *testing.T) {
	env := newTestEnv()
	submitCorrection(t, env, nil)

	// Another employee's request in the same organization.
	_, err := env.svc.Submit(authContext(t, "emp-2", "staff"), regularization.SubmitRequest{
		Date:              "2026-03-03",
		RequestedClockIn:  "2026-03-03T09:00:00Z",
		RequestedClockOut: "2026-03-03T17:00:00Z",
		Reason:            "Missed clock-in",
	})
	require.NoError(t, err)

	mine, err := env.svc.GetMyRequests(authContext(t, testEmployeeID, "staff"), regularization.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), mine.TotalCount)

	all, err := env.svc.ListRequests(authContext(t, testManagerID, "manager"), regularization.Filter{})
	require.NoError(t, err)
	assert.Equal(t, int64(2), all.TotalCount)
}
