package clock

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-chi/jwtauth/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/user"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/cache"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
)

type ClockServiceImpl struct {
	tx database.TxManager
	timelog.TimeLogRepository
	projectsCache *cache.ProjectsCache
	sseHub        *sse.Hub
	policy        timelog.SessionPolicy
	now           func() time.Time
}

func NewClockService(
	tx database.TxManager,
	timeLogRepo timelog.TimeLogRepository,
	projectsCache *cache.ProjectsCache,
	sseHub *sse.Hub,
	policy timelog.SessionPolicy,
) *ClockServiceImpl {
	return &ClockServiceImpl{
		tx:                tx,
		TimeLogRepository: timeLogRepo,
		projectsCache:     projectsCache,
		sseHub:            sseHub,
		policy:            policy,
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

// ClockIn implements timelog.ClockService.
func (s *ClockServiceImpl) ClockIn(ctx context.Context, req timelog.ClockInRequest) (timelog.TimeLogResponse, error) {
	if err := req.Validate(); err != nil {
		return timelog.TimeLogResponse{}, err
	}

	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	nowUTC := s.now().UTC()

	projectData := req.ProjectAllocations
	if len(projectData) > 0 && s.projectsCache != nil {
		hasProjects, err := s.projectsCache.HasProjects(ctx, employeeID)
		if err != nil {
			return timelog.TimeLogResponse{}, fmt.Errorf("failed to check project assignments: %w", err)
		}
		if !hasProjects {
			// Allocations from an employee with no assignments are noise.
			slog.Debug("Dropping project allocations for employee without projects",
				"employee_id", employeeID)
			projectData = nil
		}
	}

	var created timelog.TimeLog
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		// The locked read makes concurrent clock-ins for the same employee
		// serialize here, so at most one open session can exist.
		open, err := s.TimeLogRepository.GetOpenSession(ctx, employeeID)
		if err != nil {
			return fmt.Errorf("failed to check for open session: %w", err)
		}
		if open != nil {
			return timelog.ErrAlreadyClockedIn
		}

		clockIn := nowUTC
		created, err = s.TimeLogRepository.Create(ctx, timelog.TimeLog{
			EmployeeID:           employeeID,
			OrganizationID:       organizationID,
			Date:                 time.Date(nowUTC.Year(), nowUTC.Month(), nowUTC.Day(), 0, 0, 0, 0, time.UTC),
			ClockIn:              &clockIn,
			Status:               timelog.StatusNormal,
			ExpectedWorkingHours: req.ExpectedWorkingHours,
			Notes:                req.Notes,
			ProjectTimeData:      projectData,
			ClarificationStatus:  timelog.ClarificationNone,
		})
		return err
	})
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	slog.Info("Employee clocked in",
		"employee_id", employeeID, "time_log_id", created.ID, "clock_in", nowUTC)

	s.publish(created, sse.EventTimeLogUpdated)

	return s.toResponse(created), nil
}

// ClockOut implements timelog.ClockService.
func (s *ClockServiceImpl) ClockOut(ctx context.Context, req timelog.ClockOutRequest) (timelog.TimeLogResponse, error) {
	if err := req.Validate(); err != nil {
		return timelog.TimeLogResponse{}, err
	}

	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	log, err := s.TimeLogRepository.GetByID(ctx, req.TimeLogID, organizationID)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}
	if log.EmployeeID != employeeID {
		return timelog.TimeLogResponse{}, timelog.ErrUnauthorized
	}
	if log.ClockOut != nil {
		return timelog.TimeLogResponse{}, timelog.ErrAlreadyClosed
	}

	nowUTC := s.now().UTC()

	// Duration comes from the client-observed elapsed time so a paused
	// timer on the client is respected; the clock-out instant is ours.
	duration := timelog.DurationMinutes(req.ElapsedSeconds)

	status := timelog.StatusNormal
	switch {
	case log.Status == timelog.StatusGracePeriod:
		status = timelog.StatusGracePeriod
	case req.WasInGracePeriod:
		// The client watched the session cross into the grace window
		// before the sweep did.
		status = timelog.StatusGracePeriod
	case log.ClockIn != nil && s.policyFor(log).WithinGracePeriod(*log.ClockIn, nowUTC):
		status = timelog.StatusGracePeriod
	}

	closed, err := s.TimeLogRepository.CloseSession(ctx, log.ID, nowUTC, duration, status)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}
	if !closed {
		// The sweep terminated the session first.
		return timelog.TimeLogResponse{}, timelog.ErrAlreadyClosed
	}

	log.ClockOut = &nowUTC
	log.DurationMinutes = &duration
	log.Status = status

	slog.Info("Employee clocked out",
		"employee_id", employeeID, "time_log_id", log.ID,
		"duration_minutes", duration, "status", status)

	s.publish(log, sse.EventTimeLogUpdated)

	return s.toResponse(log), nil
}

// GetMyTimeLogs implements timelog.ClockService.
func (s *ClockServiceImpl) GetMyTimeLogs(ctx context.Context, filter timelog.TimeLogFilter) (timelog.ListTimeLogResponse, error) {
	if err := filter.Validate(); err != nil {
		return timelog.ListTimeLogResponse{}, err
	}

	employeeID, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return timelog.ListTimeLogResponse{}, err
	}

	logs, total, err := s.TimeLogRepository.ListByEmployee(ctx, employeeID, filter, organizationID)
	if err != nil {
		return timelog.ListTimeLogResponse{}, err
	}

	return s.toListResponse(logs, total, filter), nil
}

// ListTimeLogs implements timelog.ClockService.
func (s *ClockServiceImpl) ListTimeLogs(ctx context.Context, filter timelog.TimeLogFilter) (timelog.ListTimeLogResponse, error) {
	if err := filter.Validate(); err != nil {
		return timelog.ListTimeLogResponse{}, err
	}

	_, organizationID, _, err := claimsFromContext(ctx)
	if err != nil {
		return timelog.ListTimeLogResponse{}, err
	}

	logs, total, err := s.TimeLogRepository.List(ctx, filter, organizationID)
	if err != nil {
		return timelog.ListTimeLogResponse{}, err
	}

	return s.toListResponse(logs, total, filter), nil
}

// GetTimeLog implements timelog.ClockService.
func (s *ClockServiceImpl) GetTimeLog(ctx context.Context, id string) (timelog.TimeLogResponse, error) {
	employeeID, organizationID, role, err := claimsFromContext(ctx)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	log, err := s.TimeLogRepository.GetByID(ctx, id, organizationID)
	if err != nil {
		return timelog.TimeLogResponse{}, err
	}

	if log.EmployeeID != employeeID && !role.CanApprove() {
		return timelog.TimeLogResponse{}, timelog.ErrUnauthorized
	}

	return s.toResponse(log), nil
}

func (s *ClockServiceImpl) policyFor(log timelog.TimeLog) timelog.SessionPolicy {
	if log.ExpectedWorkingHours != nil {
		return s.policy.WithWorkingHours(*log.ExpectedWorkingHours)
	}
	return s.policy
}

func (s *ClockServiceImpl) publish(log timelog.TimeLog, event string) {
	if s.sseHub == nil {
		return
	}
	s.sseHub.Publish(log.EmployeeID, sse.Event{
		UserID: log.EmployeeID,
		Event:  event,
		Data:   map[string]interface{}{"time_log_id": log.ID, "status": string(log.Status)},
	})
}

func timePtrToString(t *time.Time) *string {
	if t == nil {
		return nil
	}
	formatted := t.Format(time.RFC3339)
	return &formatted
}

func (s *ClockServiceImpl) toResponse(log timelog.TimeLog) timelog.TimeLogResponse {
	resp := timelog.TimeLogResponse{
		ID:                    log.ID,
		EmployeeID:            log.EmployeeID,
		EmployeeName:          log.EmployeeName,
		Date:                  log.Date.Format("2006-01-02"),
		ClockInTime:           timePtrToString(log.ClockIn),
		ClockOutTime:          timePtrToString(log.ClockOut),
		DurationMinutes:       log.DurationMinutes,
		Status:                string(log.Status),
		Notes:                 log.Notes,
		ProjectTimeData:       log.ProjectTimeData,
		IsSubmitted:           log.IsSubmitted,
		IsApproved:            log.IsApproved,
		ApprovedBy:            log.ApprovedBy,
		ApprovedAt:            timePtrToString(log.ApprovedAt),
		RejectionReason:       log.RejectionReason,
		ClarificationStatus:   string(log.ClarificationStatus),
		ClarificationResponse: log.ClarificationResponse,
		CreatedAt:             log.CreatedAt.Format(time.RFC3339),
		UpdatedAt:             log.UpdatedAt.Format(time.RFC3339),
	}

	// Open sessions expose their deadlines so clients can render the
	// countdown without re-deriving policy.
	if log.ClockIn != nil && log.ClockOut == nil {
		policy := s.policyFor(log)
		expected := policy.ExpectedClockOut(*log.ClockIn)
		graceEnd := policy.GracePeriodEnd(*log.ClockIn)
		resp.ExpectedClockOutTime = timePtrToString(&expected)
		resp.GracePeriodEndTime = timePtrToString(&graceEnd)
	}

	return resp
}

func (s *ClockServiceImpl) toListResponse(logs []timelog.TimeLog, total int64, filter timelog.TimeLogFilter) timelog.ListTimeLogResponse {
	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	totalPages := int((total + int64(limit) - 1) / int64(limit))

	responses := make([]timelog.TimeLogResponse, 0, len(logs))
	for _, log := range logs {
		responses = append(responses, s.toResponse(log))
	}

	return timelog.ListTimeLogResponse{
		TotalCount: total,
		Page:       page,
		Limit:      limit,
		TotalPages: totalPages,
		TimeLogs:   responses,
	}
}
