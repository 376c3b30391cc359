package leave

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/shopspring/decimal"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/approval"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/employee"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/leave"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/user"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/validator"
)

type LeaveServiceImpl struct {
	engine *approval.Engine
	ledger leave.Ledger
	leave.RequestRepository
	balanceRepo  leave.BalanceRepository
	typeRepo     leave.TypeRepository
	employeeRepo employee.EmployeeRepository
	notifService notification.Service
	sseHub       *sse.Hub
	now          func() time.Time
}

func NewLeaveService(
	engine *approval.Engine,
	ledger leave.Ledger,
	requestRepo leave.RequestRepository,
	balanceRepo leave.BalanceRepository,
	typeRepo leave.TypeRepository,
	employeeRepo employee.EmployeeRepository,
	notifService notification.Service,
	sseHub *sse.Hub,
) *LeaveServiceImpl {
	return &LeaveServiceImpl{
		engine:            engine,
		ledger:            ledger,
		RequestRepository: requestRepo,
		balanceRepo:       balanceRepo,
		typeRepo:          typeRepo,
		employeeRepo:      employeeRepo,
		notifService:      notifService,
		sseHub:            sseHub,
		now:               time.Now,
	}
}

func claimsFromContext(ctx context.Context) (employeeID, organizationID string, role user.Role, err error) {
	_, claims, err := jwtauth.FromContext(ctx)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to extract claims from context: %w", err)
	}

	employeeID, ok := claims["employee_id"].(string)
	if !ok || employeeID == "" {
		return "", "", "", fmt.Errorf("employee_id claim is missing or invalid")
	}

	organizationID, ok = claims["organization_id"].(string)
	if !ok || organizationID == "" {
		return "", "", "", fmt.Errorf("organization_id claim is missing or invalid")
	}

	roleStr, _ := claims["role"].(string)
	return employeeID, organizationID, user.Role(roleStr), nil
}

// WorkingDays counts the weekdays between start and end, inclusive.
func WorkingDays(start, end time.Time) decimal.Decimal {
	days := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		switch d.Weekday() {
		case time.Saturday, time.Sunday:
		default:
			days++
		}
	}
	return decimal.NewFromInt(int64(days))
}

// CreateRequest implements leave.Service.
func (s *LeaveServiceImpl) CreateRequest(ctx context.Context, req leave.CreateRequestRequest) (leave.RequestResponse, error) {
	if err := req.Validate(); err != nil {
		return leave.RequestResponse{}, err
	}

	startDate, _ := validator.IsValidDate(req.StartDate)
	endDate, _ := validator.IsValidDate(req.EndDate)
	if startDate.After(endDate) {
		return leave.RequestResponse{}, leave.ErrInvalidDateRange
	}

	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	if _, err := s.typeRepo.GetByID(ctx, req.LeaveTypeID, organizationID); err != nil {
		return leave.RequestResponse{}, err
	}

	workingDays := WorkingDays(startDate, endDate)

	// Early balance check so the employee learns about a shortfall at
	// submission. The authoritative check re-runs at approval under lock.
	bal, err := s.balanceRepo.GetForUpdate(ctx, employeeID, req.LeaveTypeID, startDate.Year())
	if err != nil {
		return leave.RequestResponse{}, err
	}
	if workingDays.GreaterThan(bal.RemainingDays) {
		return leave.RequestResponse{}, leave.ErrInsufficientBalance
	}

	created, err := s.RequestRepository.Create(ctx, leave.Request{
		EmployeeID:     employeeID,
		OrganizationID: organizationID,
		LeaveTypeID:    req.LeaveTypeID,
		StartDate:      startDate,
		EndDate:        endDate,
		WorkingDays:    workingDays,
		Reason:         req.Reason,
		Status:         leave.RequestStatusPending,
	})
	if err != nil {
		return leave.RequestResponse{}, err
	}

	slog.Info("Leave request submitted",
		"request_id", created.ID, "employee_id", employeeID,
		"working_days", workingDays.String())

	s.notifyApprovers(ctx, created)

	return toRequestResponse(created), nil
}

// ApproveRequest implements leave.Service.
func (s *LeaveServiceImpl) ApproveRequest(ctx context.Context, req leave.DecideRequest) (leave.RequestResponse, error) {
	return s.decide(ctx, req, approval.ActionApprove)
}

// RejectRequest implements leave.Service.
func (s *LeaveServiceImpl) RejectRequest(ctx context.Context, req leave.DecideRequest) (leave.RequestResponse, error) {
	return s.decide(ctx, req, approval.ActionReject)
}

func (s *LeaveServiceImpl) decide(ctx context.Context, req leave.DecideRequest, action approval.Action) (leave.RequestResponse, error) {
	approverID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	pending, err := s.RequestRepository.GetByID(ctx, req.ID, organizationID)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	target := &decisionTarget{
		svc:            s,
		requestID:      req.ID,
		organizationID: organizationID,
		owner:          pending.EmployeeID,
	}

	decision := approval.Decision{
		Action:     action,
		ApproverID: approverID,
		Notes:      req.Reason,
		DecidedAt:  s.now().UTC(),
	}

	if err := s.engine.Decide(ctx, target, decision); err != nil {
		return leave.RequestResponse{}, err
	}

	decided, err := s.RequestRepository.GetByID(ctx, req.ID, organizationID)
	if err != nil {
		return leave.RequestResponse{}, err
	}

	slog.Info("Leave request decided",
		"request_id", req.ID, "action", action, "approver_id", approverID)

	s.notifyEmployee(ctx, decided, action)

	return toRequestResponse(decided), nil
}

// decisionTarget adapts a leave request to the approval engine. An approval
// deducts the balance inside the same transaction as the status change.
type decisionTarget struct {
	svc            *LeaveServiceImpl
	requestID      string
	organizationID string
	owner          string

	locked leave.Request
}

func (t *decisionTarget) OwnerEmployeeID() string {
	return t.owner
}

func (t *decisionTarget) Guard(ctx context.Context) error {
	req, err := t.svc.RequestRepository.GetByID(ctx, t.requestID, t.organizationID)
	if err != nil {
		return err
	}
	if req.Status != leave.RequestStatusPending {
		return leave.ErrLeaveAlreadyProcessed
	}
	t.locked = req
	return nil
}

func (t *decisionTarget) Apply(ctx context.Context, d approval.Decision) error {
	status := leave.RequestStatusRejected
	if d.Action == approval.ActionApprove {
		status = leave.RequestStatusApproved
	}

	var reason *string
	if d.Notes != "" {
		reason = &d.Notes
	}

	ok, err := t.svc.RequestRepository.Decide(ctx, t.requestID, status, d.ApproverID, reason, d.DecidedAt)
	if err != nil {
		return err
	}
	if !ok {
		return leave.ErrLeaveAlreadyProcessed
	}

	if d.Action != approval.ActionApprove {
		return nil
	}

	req := t.locked
	_, err = t.svc.ledger.ApplyAdjustment(ctx,
		req.EmployeeID, req.LeaveTypeID, req.StartDate.Year(),
		req.WorkingDays, true)
	return err
}

// ListRequests implements leave.Service.
func (s *LeaveServiceImpl) ListRequests(ctx context.Context, filter leave.RequestFilter) (leave.ListRequestResponse, error) {
	_, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.ListRequestResponse{}, err
	}

	requests, total, err := s.RequestRepository.List(ctx, filter, organizationID)
	if err != nil {
		return leave.ListRequestResponse{}, err
	}

	return toListResponse(requests, total, filter), nil
}

// GetMyRequests implements leave.Service.
func (s *LeaveServiceImpl) GetMyRequests(ctx context.Context, filter leave.RequestFilter) (leave.ListRequestResponse, error) {
	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return leave.ListRequestResponse{}, err
	}

	filter.EmployeeID = &employeeID

	requests, total, err := s.RequestRepository.List(ctx, filter, organizationID)
	if err != nil {
		return leave.ListRequestResponse{}, err
	}

	return toListResponse(requests, total, filter), nil
}

// GetMyBalances implements leave.Service.
func (s *LeaveServiceImpl) GetMyBalances(ctx context.Context) ([]leave.BalanceResponse, error) {
	employeeID, _, _, err := claimsFromContext(ctx)
	if err != nil {
		return nil, err
	}

	balances, err := s.balanceRepo.ListByEmployee(ctx, employeeID)
	if err != nil {
		return nil, err
	}

	responses := make([]leave.BalanceResponse, 0, len(balances))
	for _, bal := range balances {
		responses = append(responses, leave.BalanceResponse{
			LeaveTypeID:      bal.LeaveTypeID,
			LeaveTypeName:    bal.LeaveTypeName,
			Year:             bal.Year,
			RemainingDays:    bal.RemainingDays.String(),
			UsedDays:         bal.UsedDays.String(),
			CarryforwardDays: bal.CarryforwardDays.String(),
		})
	}

	return responses, nil
}

func (s *LeaveServiceImpl) notifyApprovers(ctx context.Context, req leave.Request) {
	if s.notifService == nil {
		return
	}

	managers, err := s.employeeRepo.GetManagersByOrganizationID(ctx, req.OrganizationID)
	if err != nil {
		slog.Warn("Failed to look up approvers for notification", "request_id", req.ID, "error", err)
		return
	}

	for _, manager := range managers {
		if manager.ID == req.EmployeeID {
			continue
		}
		s.notify(ctx, req.OrganizationID, manager.ID, &req.EmployeeID,
			notification.TypeLeaveRequestSubmitted,
			"New leave request",
			"An employee submitted a leave request for review.",
			map[string]interface{}{"request_id": req.ID})
	}
}

func (s *LeaveServiceImpl) notifyEmployee(ctx context.Context, req leave.Request, action approval.Action) {
	notifType := notification.TypeLeaveRequestRejected
	title := "Leave request rejected"
	message := "Your leave request was rejected."
	if action == approval.ActionApprove {
		notifType = notification.TypeLeaveRequestApproved
		title = "Leave request approved"
		message = "Your leave request was approved and the days were deducted from your balance."
	}

	s.notify(ctx, req.OrganizationID, req.EmployeeID, req.ApprovedBy,
		notifType, title, message,
		map[string]interface{}{"request_id": req.ID})

	if s.sseHub != nil {
		s.sseHub.Publish(req.EmployeeID, sse.Event{
			UserID: req.EmployeeID,
			Event:  sse.EventLeaveRequestUpdated,
			Data:   map[string]interface{}{"request_id": req.ID, "status": string(req.Status)},
		})
	}
}

func (s *LeaveServiceImpl) notify(ctx context.Context, organizationID, recipientID string, senderID *string, notifType notification.NotificationType, title, message string, data map[string]interface{}) {
	if s.notifService == nil {
		return
	}
	err := s.notifService.QueueNotification(ctx, notification.CreateNotificationRequest{
		OrganizationID: organizationID,
		RecipientID:    recipientID,
		SenderID:       senderID,
		Type:           notifType,
		Title:          title,
		Message:        message,
		Data:           data,
	})
	if err != nil {
		slog.Warn("Failed to queue leave notification", "recipient_id", recipientID, "error", err)
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func toRequestResponse(req leave.Request) leave.RequestResponse {
	return leave.RequestResponse{
		ID:              req.ID,
		EmployeeID:      req.EmployeeID,
		EmployeeName:    req.EmployeeName,
		LeaveTypeID:     req.LeaveTypeID,
		LeaveTypeName:   req.LeaveTypeName,
		StartDate:       req.StartDate.Format("2006-01-02"),
		EndDate:         req.EndDate.Format("2006-01-02"),
		WorkingDays:     req.WorkingDays.String(),
		Reason:          req.Reason,
		Status:          string(req.Status),
		ApprovedBy:      req.ApprovedBy,
		ApprovedAt:      timePtrToString(req.ApprovedAt),
		RejectionReason: req.RejectionReason,
		CreatedAt:       req.CreatedAt.Format(time.RFC3339),
	}
}

func toListResponse(requests []leave.Request, total int64, filter leave.RequestFilter) leave.ListRequestResponse {
	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}

	responses := make([]leave.RequestResponse, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, toRequestResponse(req))
	}

	return leave.ListRequestResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		Requests:   responses,
	}
}
