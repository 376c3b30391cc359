package leave

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/approval"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/employee"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/leave"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
)

const (
	testOrgID      = "org-1"
	testEmployeeID = "emp-1"
	testManagerID  = "mgr-1"
)

type fakeRequestRepo struct {
	requests map[string]*leave.Request
	nextID   int
}

func newFakeRequestRepo() *fakeRequestRepo {
	return &fakeRequestRepo{requests: make(map[string]*leave.Request)}
}

func (f *fakeRequestRepo) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	f.nextID++
	req.ID = fmt.Sprintf("lr-%d", f.nextID)
	req.CreatedAt = time.Now()
	stored := req
	f.requests[req.ID] = &stored
	return req, nil
}

func (f *fakeRequestRepo) GetByID(ctx context.Context, id string, organizationID string) (leave.Request, error) {
	req, ok := f.requests[id]
	if !ok || req.OrganizationID != organizationID {
		return leave.Request{}, leave.ErrLeaveRequestNotFound
	}
	return *req, nil
}

func (f *fakeRequestRepo) Decide(ctx context.Context, id string, status leave.RequestStatus, approverID string, reason *string, decidedAt time.Time) (bool, error) {
	req, ok := f.requests[id]
	if !ok || req.Status != leave.RequestStatusPending {
		return false, nil
	}
	req.Status = status
	req.ApprovedBy = &approverID
	req.ApprovedAt = &decidedAt
	req.RejectionReason = reason
	return true, nil
}

func (f *fakeRequestRepo) List(ctx context.Context, filter leave.RequestFilter, organizationID string) ([]leave.Request, int64, error) {
	var out []leave.Request
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

type fakeTypeRepo struct{}

func (fakeTypeRepo) GetByID(ctx context.Context, id string, organizationID string) (leave.LeaveType, error) {
	if id != "lt-annual" {
		return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
	}
	return leave.LeaveType{ID: id, OrganizationID: organizationID, Name: "Annual Leave", IsActive: true}, nil
}

type fakeEmployeeRepo struct{}

func (fakeEmployeeRepo) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	return employee.Employee{ID: id, OrganizationID: testOrgID}, nil
}

func (fakeEmployeeRepo) IsApproverFor(ctx context.Context, approverID, employeeID string) (bool, error) {
	return approverID == testManagerID, nil
}

func (fakeEmployeeRepo) GetManagersByOrganizationID(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	return []employee.Employee{{ID: testManagerID, OrganizationID: organizationID}}, nil
}

func (fakeEmployeeRepo) HasProjects(ctx context.Context, employeeID string) (bool, error) {
	return false, nil
}

type fakeNotifService struct {
	queued []notification.CreateNotificationRequest
}

func (f *fakeNotifService) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
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

type leaveTestEnv struct {
	svc      *LeaveServiceImpl
	requests *fakeRequestRepo
	balances *fakeBalanceRepo
	notif    *fakeNotifService
}

func newLeaveTestEnv(remainingDays float64) *leaveTestEnv {
	requests := newFakeRequestRepo()
	balances := newFakeBalanceRepo()
	balances.seed(testEmployeeID, "lt-annual", 2026, remainingDays, 0)
	notif := &fakeNotifService{}
	tx := fakeTxManager{}
	svc := NewLeaveService(
		approval.NewEngine(tx, fakeEmployeeRepo{}),
		NewLedger(tx, balances),
		requests, balances, fakeTypeRepo{}, fakeEmployeeRepo{}, notif, sse.NewHub(),
	)
	return &leaveTestEnv{svc: svc, requests: requests, balances: balances, notif: notif}
}

// Monday March 2 through Sunday March 8 2026 spans five weekdays.
func submitWeekRequest(t *testing.T, env *leaveTestEnv) leave.RequestResponse {
	t.Helper()

	resp, err := env.svc.CreateRequest(authContext(t, testEmployeeID, "staff"), leave.CreateRequestRequest{
		LeaveTypeID: "lt-annual",
		StartDate:   "2026-03-02",
		EndDate:     "2026-03-08",
		Reason:      "Family trip",
	})
	require.NoError(t, err)
	return resp
}

func TestWorkingDaysSkipsWeekends(t *testing.T) {
	tests := []struct {
		name  string
		start string
		end   string
		want  int64
	}{
		{"full week including weekend", "2026-03-02", "2026-03-08", 5},
		{"single weekday", "2026-03-04", "2026-03-04", 1},
		{"single saturday", "2026-03-07", "2026-03-07", 0},
		{"two full weeks", "2026-03-02", "2026-03-15", 10},
		{"weekend spanning", "2026-03-06", "2026-03-09", 2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, err := time.Parse("2006-01-02", tt.start)
			require.NoError(t, err)
			end, err := time.Parse("2006-01-02", tt.end)
			require.NoError(t, err)

			got := WorkingDays(start, end)
			assert.True(t, got.Equal(decimal.NewFromInt(tt.want)), "got %s", got)
		})
	}
}

func TestCreateRequestComputesWorkingDays(t *testing.T) {
	env := newLeaveTestEnv(12)

	resp := submitWeekRequest(t, env)
	assert.Equal(t, "5", resp.WorkingDays)
	assert.Equal(t, string(leave.RequestStatusPending), resp.Status)

	// Submission alone never touches the balance.
	bal := env.balances.get(testEmployeeID, "lt-annual", 2026)
	assert.True(t, bal.RemainingDays.Equal(decimal.NewFromInt(12)))

	require.Len(t, env.notif.queued, 1)
	assert.Equal(t, testManagerID, env.notif.queued[0].RecipientID)
}

func TestCreateRequestRejectsInvertedDates(t *testing.T) {
	env := newLeaveTestEnv(12)

	_, err := env.svc.CreateRequest(authContext(t, testEmployeeID, "staff"), leave.CreateRequestRequest{
		LeaveTypeID: "lt-annual",
		StartDate:   "2026-03-08",
		EndDate:     "2026-03-02",
		Reason:      "oops",
	})
	assert.ErrorIs(t, err, leave.ErrInvalidDateRange)
}

func TestCreateRequestRejectsUnknownType(t *testing.T) {
	env := newLeaveTestEnv(12)

	_, err := env.svc.CreateRequest(authContext(t, testEmployeeID, "staff"), leave.CreateRequestRequest{
		LeaveTypeID: "lt-ghost",
		StartDate:   "2026-03-02",
		EndDate:     "2026-03-03",
		Reason:      "unknown type",
	})
	assert.ErrorIs(t, err, leave.ErrLeaveTypeNotFound)
}

func TestCreateRequestChecksBalanceUpFront(t *testing.T) {
	env := newLeaveTestEnv(3)

	_, err := env.svc.CreateRequest(authContext(t, testEmployeeID, "staff"), leave.CreateRequestRequest{
		LeaveTypeID: "lt-annual",
		StartDate:   "2026-03-02",
		EndDate:     "2026-03-08",
		Reason:      "five days against a three day balance",
	})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
	assert.Empty(t, env.requests.requests)
}

func TestApproveDeductsBalance(t *testing.T) {
	env := newLeaveTestEnv(12)
	created := submitWeekRequest(t, env)

	resp, err := env.svc.ApproveRequest(authContext(t, testManagerID, "manager"), leave.DecideRequest{ID: created.ID})
	require.NoError(t, err)
	assert.Equal(t, string(leave.RequestStatusApproved), resp.Status)

	bal := env.balances.get(testEmployeeID, "lt-annual", 2026)
	assert.True(t, bal.RemainingDays.Equal(decimal.NewFromInt(7)), "remaining = %s", bal.RemainingDays)
	assert.True(t, bal.UsedDays.Equal(decimal.NewFromInt(5)))
}

func TestApproveFailsWhenBalanceDrained(t *testing.T) {
	env := newLeaveTestEnv(12)
	created := submitWeekRequest(t, env)

	// The balance shrank between submission and approval.
	env.balances.seed(testEmployeeID, "lt-annual", 2026, 2, 10)

	_, err := env.svc.ApproveRequest(authContext(t, testManagerID, "manager"), leave.DecideRequest{ID: created.ID})
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
}

func TestRejectLeavesBalanceUntouched(t *testing.T) {
	env := newLeaveTestEnv(12)
	created := submitWeekRequest(t, env)

	resp, err := env.svc.RejectRequest(authContext(t, testManagerID, "manager"), leave.DecideRequest{
		ID:     created.ID,
		Reason: "Team is at capacity that week",
	})
	require.NoError(t, err)
	assert.Equal(t, string(leave.RequestStatusRejected), resp.Status)
	require.NotNil(t, resp.RejectionReason)

	bal := env.balances.get(testEmployeeID, "lt-annual", 2026)
	assert.True(t, bal.RemainingDays.Equal(decimal.NewFromInt(12)))
}

func TestRejectRequiresReason(t *testing.T) {
	env := newLeaveTestEnv(12)
	created := submitWeekRequest(t, env)

	_, err := env.svc.RejectRequest(authContext(t, testManagerID, "manager"), leave.DecideRequest{ID: created.ID})
	assert.ErrorIs(t, err, approval.ErrReasonRequired)
}

func TestDecideRequiresApproverRole(t *testing.T) {
	env := newLeaveTestEnv(12)
	created := submitWeekRequest(t, env)

	_, err := env.svc.ApproveRequest(authContext(t, "emp-2", "staff"), leave.DecideRequest{ID: created.ID})
	assert.ErrorIs(t, err, approval.ErrApproverRoleRequired)
}

func TestSecondDecisionFails(t *testing.T) {
	env := newLeaveTestEnv(12)
	created := submitWeekRequest(t, env)

	_, err := env.svc.ApproveRequest(authContext(t, testManagerID, "manager"), leave.DecideRequest{ID: created.ID})
	require.NoError(t, err)

	_, err = env.svc.ApproveRequest(authContext(t, testManagerID, "manager"), leave.DecideRequest{ID: created.ID})
	assert.ErrorIs(t, err, leave.ErrLeaveAlreadyProcessed)

	// The balance was deducted exactly once.
	bal := env.balances.get(testEmployeeID, "lt-annual", 2026)
	assert.True(t, bal.RemainingDays.Equal(decimal.NewFromInt(7)))
}

func TestGetMyBalances(t *testing.T) {
	env := newLeaveTestEnv(12)

	balances, err := env.svc.GetMyBalances(authContext(t, testEmployeeID, "staff"))
	require.NoError(t, err)
	require.Len(t, balances, 1)
	assert.Equal(t, "lt-annual", balances[0].LeaveTypeID)
	assert.Equal(t, "12", balances[0].RemainingDays)
}
