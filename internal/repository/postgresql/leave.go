package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/leave"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
)

type leaveBalanceRepository struct {
	db *database.DB
}

func NewLeaveBalanceRepository(db *database.DB) leave.BalanceRepository {
	return &leaveBalanceRepository{db: db}
}

// GetForUpdate implements leave.BalanceRepository.
func (r *leaveBalanceRepository) GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	lock := ""
	if InTx(ctx) {
		lock = " FOR UPDATE"
	}

	query := `
		SELECT id, employee_id, leave_type_id, year,
		       remaining_days, used_days, carryforward_days,
		       created_at, updated_at
		FROM leave_balances
		WHERE employee_id = $1
		  AND leave_type_id = $2
		  AND year = $3` + lock

	var bal leave.Balance
	err := q.QueryRow(ctx, query, employeeID, leaveTypeID, year).Scan(
		&bal.ID, &bal.EmployeeID, &bal.LeaveTypeID, &bal.Year,
		&bal.RemainingDays, &bal.UsedDays, &bal.CarryforwardDays,
		&bal.CreatedAt, &bal.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Balance{}, leave.ErrBalanceNotFound
		}
		return leave.Balance{}, fmt.Errorf("failed to get leave balance: %w", err)
	}

	return bal, nil
}

// UpdateBalance implements leave.BalanceRepository.
func (r *leaveBalanceRepository) UpdateBalance(ctx context.Context, id string, remaining, used decimal.Decimal) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_balances
		SET remaining_days = $1, used_days = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := q.Exec(ctx, query, remaining, used, id)
	if err != nil {
		return fmt.Errorf("failed to update leave balance: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return leave.ErrBalanceNotFound
	}

	return nil
}

// ListByEmployee implements leave.BalanceRepository.
func (r *leaveBalanceRepository) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT b.id, b.employee_id, b.leave_type_id, b.year,
		       b.remaining_days, b.used_days, b.carryforward_days,
		       b.created_at, b.updated_at,
		       lt.name AS leave_type_name
		FROM leave_balances b
		LEFT JOIN leave_types lt ON lt.id = b.leave_type_id
		WHERE b.employee_id = $1
		ORDER BY b.year DESC, lt.name ASC
	`

	rows, err := q.Query(ctx, query, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list leave balances: %w", err)
	}
	defer rows.Close()

	var balances []leave.Balance
	for rows.Next() {
		var bal leave.Balance
		err := rows.Scan(
			&bal.ID, &bal.EmployeeID, &bal.LeaveTypeID, &bal.Year,
			&bal.RemainingDays, &bal.UsedDays, &bal.CarryforwardDays,
			&bal.CreatedAt, &bal.UpdatedAt,
			&bal.LeaveTypeName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan leave balance: %w", err)
		}
		balances = append(balances, bal)
	}

	return balances, nil
}

type leaveRequestRepository struct {
	db *database.DB
}

func NewLeaveRequestRepository(db *database.DB) leave.RequestRepository {
	return &leaveRequestRepository{db: db}
}

// Create implements leave.RequestRepository.
func (r *leaveRequestRepository) Create(ctx context.Context, req leave.Request) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO leave_requests (
			employee_id, organization_id, leave_type_id,
			start_date, end_date, working_days, reason, status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.EmployeeID,
		req.OrganizationID,
		req.LeaveTypeID,
		req.StartDate,
		req.EndDate,
		req.WorkingDays,
		req.Reason,
		req.Status,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return leave.Request{}, fmt.Errorf("failed to create leave request: %w", err)
	}

	return req, nil
}

// GetByID implements leave.RequestRepository.
func (r *leaveRequestRepository) GetByID(ctx context.Context, id string, organizationID string) (leave.Request, error) {
	q := GetQuerier(ctx, r.db)

	lock := ""
	if InTx(ctx) {
		lock = " FOR UPDATE OF lr"
	}

	query := `
		SELECT
			lr.id, lr.employee_id, lr.organization_id, lr.leave_type_id,
			lr.start_date, lr.end_date, lr.working_days, lr.reason,
			lr.status, lr.approved_by, lr.approved_at, lr.rejection_reason,
			lr.created_at, lr.updated_at,
			lt.name AS leave_type_name,
			e.full_name AS employee_name
		FROM leave_requests lr
		LEFT JOIN leave_types lt ON lt.id = lr.leave_type_id
		LEFT JOIN employees e ON e.id = lr.employee_id
		WHERE lr.id = $1 AND lr.organization_id = $2` + lock

	var req leave.Request
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&req.ID, &req.EmployeeID, &req.OrganizationID, &req.LeaveTypeID,
		&req.StartDate, &req.EndDate, &req.WorkingDays, &req.Reason,
		&req.Status, &req.ApprovedBy, &req.ApprovedAt, &req.RejectionReason,
		&req.CreatedAt, &req.UpdatedAt,
		&req.LeaveTypeName,
		&req.EmployeeName,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.Request{}, leave.ErrLeaveRequestNotFound
		}
		return leave.Request{}, fmt.Errorf("failed to get leave request by ID: %w", err)
	}

	return req, nil
}

// Decide implements leave.RequestRepository.
func (r *leaveRequestRepository) Decide(ctx context.Context, id string, status leave.RequestStatus, approverID string, reason *string, decidedAt time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE leave_requests
		SET status = $1, approved_by = $2, approved_at = $3, rejection_reason = $4,
		    updated_at = NOW()
		WHERE id = $5
		  AND status = $6
	`

	tag, err := q.Exec(ctx, query, status, approverID, decidedAt, reason, id, leave.RequestStatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to decide leave request: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// List implements leave.RequestRepository.
func (r *leaveRequestRepository) List(ctx context.Context, filter leave.RequestFilter, organizationID string) ([]leave.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "lr.organization_id = $1"
	args := []interface{}{organizationID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND lr.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND lr.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM leave_requests lr WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count leave requests: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			lr.id, lr.employee_id, lr.organization_id, lr.leave_type_id,
			lr.start_date, lr.end_date, lr.working_days, lr.reason,
			lr.status, lr.approved_by, lr.approved_at, lr.rejection_reason,
			lr.created_at, lr.updated_at,
			lt.name AS leave_type_name,
			e.full_name AS employee_name
		FROM leave_requests lr
		LEFT JOIN leave_types lt ON lt.id = lr.leave_type_id
		LEFT JOIN employees e ON e.id = lr.employee_id
		WHERE %s
		ORDER BY lr.created_at DESC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)

	limit := filter.Limit
	if limit == 0 {
		limit = 20
	}
	page := filter.Page
	if page == 0 {
		page = 1
	}
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query leave requests: %w", err)
	}
	defer rows.Close()

	var requests []leave.Request
	for rows.Next() {
		var req leave.Request
		err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.OrganizationID, &req.LeaveTypeID,
			&req.StartDate, &req.EndDate, &req.WorkingDays, &req.Reason,
			&req.Status, &req.ApprovedBy, &req.ApprovedAt, &req.RejectionReason,
			&req.CreatedAt, &req.UpdatedAt,
			&req.LeaveTypeName,
			&req.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan leave request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, nil
}

type leaveTypeRepository struct {
	db *database.DB
}

func NewLeaveTypeRepository(db *database.DB) leave.TypeRepository {
	return &leaveTypeRepository{db: db}
}

// GetByID implements leave.TypeRepository.
func (r *leaveTypeRepository) GetByID(ctx context.Context, id string, organizationID string) (leave.LeaveType, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, name, code, is_active, created_at, updated_at
		FROM leave_types
		WHERE id = $1 AND organization_id = $2
	`

	var lt leave.LeaveType
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&lt.ID, &lt.OrganizationID, &lt.Name, &lt.Code, &lt.IsActive,
		&lt.CreatedAt, &lt.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return leave.LeaveType{}, leave.ErrLeaveTypeNotFound
		}
		return leave.LeaveType{}, fmt.Errorf("failed to get leave type by ID: %w", err)
	}

	return lt, nil
}
