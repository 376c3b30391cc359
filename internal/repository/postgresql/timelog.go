package postgresql

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
)

type timeLogRepository struct {
	db *database.DB
}

func NewTimeLogRepository(db *database.DB) timelog.TimeLogRepository {
	return &timeLogRepository{db: db}
}

const timeLogColumns = `
	id, employee_id, organization_id, date,
	clock_in, clock_out, duration_minutes, status,
	expected_working_hours, notes, project_time_data,
	is_submitted, is_approved, approved_by, approved_at, rejection_reason,
	clarification_status, clarification_response,
	created_at, updated_at`

func scanTimeLog(row pgx.Row) (timelog.TimeLog, error) {
	var log timelog.TimeLog
	err := row.Scan(
		&log.ID, &log.EmployeeID, &log.OrganizationID, &log.Date,
		&log.ClockIn, &log.ClockOut, &log.DurationMinutes, &log.Status,
		&log.ExpectedWorkingHours, &log.Notes, &log.ProjectTimeData,
		&log.IsSubmitted, &log.IsApproved, &log.ApprovedBy, &log.ApprovedAt, &log.RejectionReason,
		&log.ClarificationStatus, &log.ClarificationResponse,
		&log.CreatedAt, &log.UpdatedAt,
	)
	return log, err
}

// Create implements timelog.TimeLogRepository.
func (r *timeLogRepository) Create(ctx context.Context, newLog timelog.TimeLog) (timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO time_logs (
			employee_id, organization_id, date,
			clock_in, status, expected_working_hours, notes, project_time_data,
			clarification_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		newLog.EmployeeID,
		newLog.OrganizationID,
		newLog.Date,
		newLog.ClockIn,
		newLog.Status,
		newLog.ExpectedWorkingHours,
		newLog.Notes,
		newLog.ProjectTimeData,
		newLog.ClarificationStatus,
	).Scan(&newLog.ID, &newLog.CreatedAt, &newLog.UpdatedAt)

	if err != nil {
		return timelog.TimeLog{}, fmt.Errorf("failed to create time log: %w", err)
	}

	return newLog, nil
}

// GetByID implements timelog.TimeLogRepository.
func (r *timeLogRepository) GetByID(ctx context.Context, id string, organizationID string) (timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT
			t.id, t.employee_id, t.organization_id, t.date,
			t.clock_in, t.clock_out, t.duration_minutes, t.status,
			t.expected_working_hours, t.notes, t.project_time_data,
			t.is_submitted, t.is_approved, t.approved_by, t.approved_at, t.rejection_reason,
			t.clarification_status, t.clarification_response,
			t.created_at, t.updated_at,
			e.full_name AS employee_name
		FROM time_logs t
		LEFT JOIN employees e ON e.id = t.employee_id
		WHERE t.id = $1 AND t.organization_id = $2
	`

	var log timelog.TimeLog
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&log.ID, &log.EmployeeID, &log.OrganizationID, &log.Date,
		&log.ClockIn, &log.ClockOut, &log.DurationMinutes, &log.Status,
		&log.ExpectedWorkingHours, &log.Notes, &log.ProjectTimeData,
		&log.IsSubmitted, &log.IsApproved, &log.ApprovedBy, &log.ApprovedAt, &log.RejectionReason,
		&log.ClarificationStatus, &log.ClarificationResponse,
		&log.CreatedAt, &log.UpdatedAt,
		&log.EmployeeName,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return timelog.TimeLog{}, timelog.ErrTimeLogNotFound
		}
		return timelog.TimeLog{}, fmt.Errorf("failed to get time log by ID: %w", err)
	}

	return log, nil
}

// GetOpenSession implements timelog.TimeLogRepository.
func (r *timeLogRepository) GetOpenSession(ctx context.Context, employeeID string) (*timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	// FOR UPDATE only bites inside a transaction; concurrent clock-ins for
	// the same employee serialize on the open row.
	lock := ""
	if InTx(ctx) {
		lock = " FOR UPDATE"
	}

	query := `
		SELECT` + timeLogColumns + `
		FROM time_logs
		WHERE employee_id = $1
		  AND clock_out IS NULL
		ORDER BY clock_in DESC
		LIMIT 1` + lock

	log, err := scanTimeLog(q.QueryRow(ctx, query, employeeID))
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil // no open session
		}
		return nil, fmt.Errorf("failed to get open session: %w", err)
	}

	return &log, nil
}

// ListOpenByStatus implements timelog.TimeLogRepository.
func (r *timeLogRepository) ListOpenByStatus(ctx context.Context, status timelog.Status) ([]timelog.TimeLog, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT` + timeLogColumns + `
		FROM time_logs
		WHERE clock_out IS NULL
		  AND status = $1
		ORDER BY clock_in ASC
	`

	rows, err := q.Query(ctx, query, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list open sessions: %w", err)
	}
	defer rows.Close()

	var logs []timelog.TimeLog
	for rows.Next() {
		log, err := scanTimeLog(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan time log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, nil
}

// MarkGracePeriod implements timelog.TimeLogRepository.
func (r *timeLogRepository) MarkGracePeriod(ctx context.Context, id string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_logs
		SET status = $1, updated_at = NOW()
		WHERE id = $2
		  AND clock_out IS NULL
		  AND status = $3
	`

	tag, err := q.Exec(ctx, query, timelog.StatusGracePeriod, id, timelog.StatusNormal)
	if err != nil {
		return false, fmt.Errorf("failed to mark grace period: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// CloseSession implements timelog.TimeLogRepository.
func (r *timeLogRepository) CloseSession(ctx context.Context, id string, clockOut time.Time, durationMinutes int, status timelog.Status) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_logs
		SET clock_out = $1, duration_minutes = $2, status = $3, updated_at = NOW()
		WHERE id = $4
		  AND clock_out IS NULL
	`

	tag, err := q.Exec(ctx, query, clockOut, durationMinutes, status, id)
	if err != nil {
		return false, fmt.Errorf("failed to close session: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// ApplyCorrection implements timelog.TimeLogRepository.
func (r *timeLogRepository) ApplyCorrection(ctx context.Context, id string, clockIn, clockOut time.Time, durationMinutes int, approvedBy string, approvedAt time.Time) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_logs
		SET clock_in = $1, clock_out = $2, duration_minutes = $3,
		    status = $4, is_approved = TRUE, approved_by = $5, approved_at = $6,
		    updated_at = NOW()
		WHERE id = $7
	`

	tag, err := q.Exec(ctx, query, clockIn, clockOut, durationMinutes, timelog.StatusNormal, approvedBy, approvedAt, id)
	if err != nil {
		return fmt.Errorf("failed to apply correction: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timelog.ErrTimeLogNotFound
	}

	return nil
}

// SetClarification implements timelog.TimeLogRepository.
func (r *timeLogRepository) SetClarification(ctx context.Context, id string, status timelog.ClarificationStatus, response *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE time_logs
		SET clarification_status = $1, clarification_response = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := q.Exec(ctx, query, status, response, id)
	if err != nil {
		return fmt.Errorf("failed to set clarification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return timelog.ErrTimeLogNotFound
	}

	return nil
}

// List implements timelog.TimeLogRepository.
func (r *timeLogRepository) List(ctx context.Context, filter timelog.TimeLogFilter, organizationID string) ([]timelog.TimeLog, int64, error) {
	baseWhere := "t.organization_id = $1"
	args := []interface{}{organizationID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND t.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.EmployeeName != nil && *filter.EmployeeName != "" {
		baseWhere += fmt.Sprintf(" AND e.full_name ILIKE $%d", argIdx)
		args = append(args, "%"+*filter.EmployeeName+"%")
		argIdx++
	}

	return r.list(ctx, filter, baseWhere, args, argIdx)
}

// ListByEmployee implements timelog.TimeLogRepository.
func (r *timeLogRepository) ListByEmployee(ctx context.Context, employeeID string, filter timelog.TimeLogFilter, organizationID string) ([]timelog.TimeLog, int64, error) {
	baseWhere := "t.employee_id = $1 AND t.organization_id = $2"
	args := []interface{}{employeeID, organizationID}

	return r.list(ctx, filter, baseWhere, args, 3)
}

func (r *timeLogRepository) list(ctx context.Context, filter timelog.TimeLogFilter, baseWhere string, args []interface{}, argIdx int) ([]timelog.TimeLog, int64, error) {
	q := GetQuerier(ctx, r.db)

	if filter.Date != nil && *filter.Date != "" {
		baseWhere += fmt.Sprintf(" AND t.date = $%d", argIdx)
		args = append(args, *filter.Date)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND t.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND t.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := `
		SELECT COUNT(*)
		FROM time_logs t
		LEFT JOIN employees e ON e.id = t.employee_id
		WHERE ` + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count time logs: %w", err)
	}

	orderByField := "t.date"
	switch filter.SortBy {
	case "employee_name":
		orderByField = "e.full_name"
	case "clock_in_time":
		orderByField = "t.clock_in"
	case "clock_out_time":
		orderByField = "t.clock_out"
	case "status":
		orderByField = "t.status"
	}
	sortOrder := "DESC"
	if strings.ToLower(filter.SortOrder) == "asc" {
		sortOrder = "ASC"
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			t.id, t.employee_id, t.organization_id, t.date,
			t.clock_in, t.clock_out, t.duration_minutes, t.status,
			t.expected_working_hours, t.notes, t.project_time_data,
			t.is_submitted, t.is_approved, t.approved_by, t.approved_at, t.rejection_reason,
			t.clarification_status, t.clarification_response,
			t.created_at, t.updated_at,
			e.full_name AS employee_name
		FROM time_logs t
		LEFT JOIN employees e ON e.id = t.employee_id
		WHERE %s
		ORDER BY %s %s
		LIMIT $%d OFFSET $%d
	`, baseWhere, orderByField, sortOrder, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	offset := (page - 1) * limit
	args = append(args, limit, offset)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query time logs: %w", err)
	}
	defer rows.Close()

	var logs []timelog.TimeLog
	for rows.Next() {
		var log timelog.TimeLog
		err := rows.Scan(
			&log.ID, &log.EmployeeID, &log.OrganizationID, &log.Date,
			&log.ClockIn, &log.ClockOut, &log.DurationMinutes, &log.Status,
			&log.ExpectedWorkingHours, &log.Notes, &log.ProjectTimeData,
			&log.IsSubmitted, &log.IsApproved, &log.ApprovedBy, &log.ApprovedAt, &log.RejectionReason,
			&log.ClarificationStatus, &log.ClarificationResponse,
			&log.CreatedAt, &log.UpdatedAt,
			&log.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan time log: %w", err)
		}
		logs = append(logs, log)
	}

	return logs, total, nil
}
