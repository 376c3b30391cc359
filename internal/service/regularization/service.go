package regularization

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/approval"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/employee"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/regularization"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/user"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/validator"
)

type RegularizationServiceImpl struct {
	tx     database.TxManager
	engine *approval.Engine
	regularization.Repository
	timeLogRepo  timelog.TimeLogRepository
	employeeRepo employee.EmployeeRepository
	notifService notification.Service
	sseHub       *sse.Hub
	now          func() time.Time
}

func NewRegularizationService(
	tx database.TxManager,
	engine *approval.Engine,
	repo regularization.Repository,
	timeLogRepo timelog.TimeLogRepository,
	employeeRepo employee.EmployeeRepository,
	notifService notification.Service,
	sseHub *sse.Hub,
) *RegularizationServiceImpl {
	return &RegularizationServiceImpl{
		tx:           tx,
		engine:       engine,
		Repository:   repo,
		timeLogRepo:  timeLogRepo,
		employeeRepo: employeeRepo,
		notifService: notifService,
		sseHub:       sseHub,
		now:          time.Now,
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

// Submit implements regularization.Service.
func (s *RegularizationServiceImpl) Submit(ctx context.Context, req regularization.SubmitRequest) (regularization.Response, error) {
	if err := req.Validate(); err != nil {
		return regularization.Response{}, err
	}

	requestedIn, _ := validator.IsValidDateTime(req.RequestedClockIn)
	requestedOut, _ := validator.IsValidDateTime(req.RequestedClockOut)
	if !requestedIn.Before(requestedOut) {
		return regularization.Response{}, regularization.ErrInvalidRange
	}

	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return regularization.Response{}, err
	}

	date, _ := validator.IsValidDate(req.Date)

	newReq := regularization.Request{
		EmployeeID:          employeeID,
		OrganizationID:      organizationID,
		TimeLogID:           req.TimeLogID,
		Date:                date,
		RequestedClockIn:    requestedIn.UTC(),
		RequestedClockOut:   requestedOut.UTC(),
		Reason:              req.Reason,
		Status:              regularization.StatusPending,
		ClarificationStatus: timelog.ClarificationNone,
	}

	// Corrections to an existing log snapshot its current times so
	// approvers see the before/after side by side.
	if req.TimeLogID != nil {
		log, err := s.timeLogRepo.GetByID(ctx, *req.TimeLogID, organizationID)
		if err != nil {
			return regularization.Response{}, err
		}
		if log.EmployeeID != employeeID {
			return regularization.Response{}, timelog.ErrUnauthorized
		}
		newReq.OriginalClockIn = log.ClockIn
		newReq.OriginalClockOut = log.ClockOut
	}

	created, err := s.Repository.Create(ctx, newReq)
	if err != nil {
		return regularization.Response{}, err
	}

	slog.Info("Regularization request submitted",
		"request_id", created.ID, "employee_id", employeeID, "date", req.Date)

	s.notifyApprovers(ctx, created)

	return toResponse(created), nil
}

// Approve implements regularization.Service.
func (s *RegularizationServiceImpl) Approve(ctx context.Context, req regularization.DecideRequest) (regularization.Response, error) {
	return s.decide(ctx, req, approval.ActionApprove)
}

// Reject implements regularization.Service.
func (s *RegularizationServiceImpl) Reject(ctx context.Context, req regularization.DecideRequest) (regularization.Response, error) {
	return s.decide(ctx, req, approval.ActionReject)
}

func (s *RegularizationServiceImpl) decide(ctx context.Context, req regularization.DecideRequest, action approval.Action) (regularization.Response, error) {
	approverID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return regularization.Response{}, err
	}

	pending, err := s.Repository.GetByID(ctx, req.ID, organizationID)
	if err != nil {
		return regularization.Response{}, err
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
		Notes:      req.Notes,
		DecidedAt:  s.now().UTC(),
	}

	if err := s.engine.Decide(ctx, target, decision); err != nil {
		return regularization.Response{}, err
	}

	decided, err := s.Repository.GetByID(ctx, req.ID, organizationID)
	if err != nil {
		return regularization.Response{}, err
	}

	slog.Info("Regularization request decided",
		"request_id", req.ID, "action", action, "approver_id", approverID)

	s.notifyEmployee(ctx, decided, action)

	return toResponse(decided), nil
}

// decisionTarget adapts a regularization request to the approval engine.
// Guard and Apply run inside the engine's transaction.
type decisionTarget struct {
	svc            *RegularizationServiceImpl
	requestID      string
	organizationID string
	owner          string

	locked regularization.Request
}

func (t *decisionTarget) OwnerEmployeeID() string {
	return t.owner
}

func (t *decisionTarget) Guard(ctx context.Context) error {
	// Locked re-read; the snapshot used to build the target may be stale.
	req, err := t.svc.Repository.GetByID(ctx, t.requestID, t.organizationID)
	if err != nil {
		return err
	}
	if req.Status.Terminal() {
		return regularization.ErrNotPending
	}
	t.locked = req
	return nil
}

func (t *decisionTarget) Apply(ctx context.Context, d approval.Decision) error {
	status := regularization.StatusRejected
	if d.Action == approval.ActionApprove {
		status = regularization.StatusApproved
	}

	var notes *string
	if d.Notes != "" {
		notes = &d.Notes
	}

	ok, err := t.svc.Repository.Decide(ctx, t.requestID, status, d.ApproverID, notes, d.DecidedAt)
	if err != nil {
		return err
	}
	if !ok {
		return regularization.ErrNotPending
	}

	if d.Action != approval.ActionApprove {
		return nil
	}

	req := t.locked
	duration := timelog.MinutesBetween(req.RequestedClockIn, req.RequestedClockOut)

	if req.TimeLogID != nil {
		return t.svc.timeLogRepo.ApplyCorrection(ctx, *req.TimeLogID,
			req.RequestedClockIn, req.RequestedClockOut, duration,
			d.ApproverID, d.DecidedAt)
	}

	// Absence correction: the day had no log, so approval materializes one.
	// The correction stamp runs afterwards so the new log carries the same
	// approval audit fields as a corrected existing log.
	clockIn := req.RequestedClockIn
	created, err := t.svc.timeLogRepo.Create(ctx, timelog.TimeLog{
		EmployeeID:          req.EmployeeID,
		OrganizationID:      req.OrganizationID,
		Date:                req.Date,
		ClockIn:             &clockIn,
		Status:              timelog.StatusNormal,
		ClarificationStatus: timelog.ClarificationNone,
	})
	if err != nil {
		return err
	}

	return t.svc.timeLogRepo.ApplyCorrection(ctx, created.ID,
		req.RequestedClockIn, req.RequestedClockOut, duration,
		d.ApproverID, d.DecidedAt)
}

// RequestClarification implements regularization.Service.
func (s *RegularizationServiceImpl) RequestClarification(ctx context.Context, req regularization.ClarificationRequest) error {
	approverID, organizationID, role, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}
	if !role.CanApprove() {
		return approval.ErrApproverRoleRequired
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := s.Repository.GetByID(ctx, req.ID, organizationID)
		if err != nil {
			return err
		}
		if pending.Status.Terminal() {
			return regularization.ErrNotPending
		}

		if err := s.Repository.SetClarification(ctx, req.ID, timelog.ClarificationNeeded, nil); err != nil {
			return err
		}

		// The linked time log mirrors the clarification state so the
		// employee sees the ask on their log as well.
		if pending.TimeLogID != nil {
			if err := s.timeLogRepo.SetClarification(ctx, *pending.TimeLogID, timelog.ClarificationNeeded, nil); err != nil {
				return err
			}
		}

		s.notify(ctx, pending.OrganizationID, pending.EmployeeID, &approverID,
			notification.TypeClarificationRequested,
			"Clarification requested",
			"An approver asked for more detail on your regularization request.",
			map[string]interface{}{"request_id": pending.ID})

		return nil
	})
}

// SubmitClarification implements regularization.Service.
func (s *RegularizationServiceImpl) SubmitClarification(ctx context.Context, req regularization.ClarificationResponseRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}

	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return err
	}

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		pending, err := s.Repository.GetByID(ctx, req.ID, organizationID)
		if err != nil {
			return err
		}
		if pending.EmployeeID != employeeID {
			return timelog.ErrUnauthorized
		}
		if pending.ClarificationStatus != timelog.ClarificationNeeded {
			return regularization.ErrNoClarification
		}

		response := req.Response
		if err := s.Repository.SetClarification(ctx, req.ID, timelog.ClarificationSubmitted, &response); err != nil {
			return err
		}

		if pending.TimeLogID != nil {
			if err := s.timeLogRepo.SetClarification(ctx, *pending.TimeLogID, timelog.ClarificationSubmitted, &response); err != nil {
				return err
			}
		}

		return nil
	})
}

// ListRequests implements regularization.Service.
func (s *RegularizationServiceImpl) ListRequests(ctx context.Context, filter regularization.Filter) (regularization.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return regularization.ListResponse{}, err
	}

	_, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return regularization.ListResponse{}, err
	}

	requests, total, err := s.Repository.List(ctx, filter, organizationID)
	if err != nil {
		return regularization.ListResponse{}, err
	}

	return toListResponse(requests, total, filter), nil
}

// GetMyRequests implements regularization.Service.
func (s *RegularizationServiceImpl) GetMyRequests(ctx context.Context, filter regularization.Filter) (regularization.ListResponse, error) {
	if err := filter.Validate(); err != nil {
		return regularization.ListResponse{}, err
	}

	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return regularization.ListResponse{}, err
	}

	filter.EmployeeID = &employeeID

	requests, total, err := s.Repository.List(ctx, filter, organizationID)
	if err != nil {
		return regularization.ListResponse{}, err
	}

	return toListResponse(requests, total, filter), nil
}

func (s *RegularizationServiceImpl) notifyApprovers(ctx context.Context, req regularization.Request) {
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
			notification.TypeRegularizationSubmitted,
			"New regularization request",
			"An employee submitted a time log correction for review.",
			map[string]interface{}{"request_id": req.ID})
	}
}

func (s *RegularizationServiceImpl) notifyEmployee(ctx context.Context, req regularization.Request, action approval.Action) {
	notifType := notification.TypeRegularizationRejected
	title := "Regularization request rejected"
	message := "Your time log correction was rejected."
	if action == approval.ActionApprove {
		notifType = notification.TypeRegularizationApproved
		title = "Regularization request approved"
		message = "Your time log correction was approved and applied."
	}

	s.notify(ctx, req.OrganizationID, req.EmployeeID, req.ApprovedBy,
		notifType, title, message,
		map[string]interface{}{"request_id": req.ID})

	if s.sseHub != nil {
		s.sseHub.Publish(req.EmployeeID, sse.Event{
			UserID: req.EmployeeID,
			Event:  sse.EventRegularizationUpdated,
			Data:   map[string]interface{}{"request_id": req.ID, "status": string(req.Status)},
		})
	}
}

func (s *RegularizationServiceImpl) notify(ctx context.Context, organizationID, recipientID string, senderID *string, notifType notification.NotificationType, title, message string, data map[string]interface{}) {
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
		slog.Warn("Failed to queue regularization notification", "recipient_id", recipientID, "error", err)
	}
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func toResponse(req regularization.Request) regularization.Response {
	return regularization.Response{
		ID:                    req.ID,
		EmployeeID:            req.EmployeeID,
		EmployeeName:          req.EmployeeName,
		TimeLogID:             req.TimeLogID,
		Date:                  req.Date.Format("2006-01-02"),
		OriginalClockIn:       timePtrToString(req.OriginalClockIn),
		OriginalClockOut:      timePtrToString(req.OriginalClockOut),
		RequestedClockIn:      req.RequestedClockIn.Format(time.RFC3339),
		RequestedClockOut:     req.RequestedClockOut.Format(time.RFC3339),
		Reason:                req.Reason,
		Status:                string(req.Status),
		ApproverNotes:         req.ApproverNotes,
		ApprovedBy:            req.ApprovedBy,
		ApprovedAt:            timePtrToString(req.ApprovedAt),
		ClarificationStatus:   string(req.ClarificationStatus),
		ClarificationResponse: req.ClarificationResponse,
		CreatedAt:             req.CreatedAt.Format(time.RFC3339),
	}
}

func toListResponse(requests []regularization.Request, total int64, filter regularization.Filter) regularization.ListResponse {
	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}

	responses := make([]regularization.Response, 0, len(requests))
	for _, req := range requests {
		responses = append(responses, toResponse(req))
	}

	return regularization.ListResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: int((total + int64(limit) - 1) / int64(limit)),
		Requests:   responses,
	}
}
