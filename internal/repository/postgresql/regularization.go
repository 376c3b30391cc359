package postgresql

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/regularization"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
)

type regularizationRepository struct {
	db *database.DB
}

func NewRegularizationRepository(db *database.DB) regularization.Repository {
	return &regularizationRepository{db: db}
}

// Create implements regularization.Repository.
func (r *regularizationRepository) Create(ctx context.Context, req regularization.Request) (regularization.Request, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO regularization_requests (
			employee_id, organization_id, time_log_id, date,
			original_clock_in, original_clock_out,
			requested_clock_in, requested_clock_out,
			reason, status, clarification_status
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11
		) RETURNING id, created_at, updated_at
	`

	err := q.QueryRow(ctx, query,
		req.EmployeeID,
		req.OrganizationID,
		req.TimeLogID,
		req.Date,
		req.OriginalClockIn,
		req.OriginalClockOut,
		req.RequestedClockIn,
		req.RequestedClockOut,
		req.Reason,
		req.Status,
		req.ClarificationStatus,
	).Scan(&req.ID, &req.CreatedAt, &req.UpdatedAt)

	if err != nil {
		return regularization.Request{}, fmt.Errorf("failed to create regularization request: %w", err)
	}

	return req, nil
}

// GetByID implements regularization.Repository.
func (r *regularizationRepository) GetByID(ctx context.Context, id string, organizationID string) (regularization.Request, error) {
	q := GetQuerier(ctx, r.db)

	// The row lock keeps two approvers from reading pending at the same
	// time inside a decision transaction.
	lock := ""
	if InTx(ctx) {
		lock = " FOR UPDATE OF r"
	}

	query := `
		SELECT
			r.id, r.employee_id, r.organization_id, r.time_log_id, r.date,
			r.original_clock_in, r.original_clock_out,
			r.requested_clock_in, r.requested_clock_out,
			r.reason, r.status, r.approver_notes, r.approved_by, r.approved_at,
			r.clarification_status, r.clarification_response,
			r.created_at, r.updated_at,
			e.full_name AS employee_name
		FROM regularization_requests r
		LEFT JOIN employees e ON e.id = r.employee_id
		WHERE r.id = $1 AND r.organization_id = $2` + lock

	var req regularization.Request
	err := q.QueryRow(ctx, query, id, organizationID).Scan(
		&req.ID, &req.EmployeeID, &req.OrganizationID, &req.TimeLogID, &req.Date,
		&req.OriginalClockIn, &req.OriginalClockOut,
		&req.RequestedClockIn, &req.RequestedClockOut,
		&req.Reason, &req.Status, &req.ApproverNotes, &req.ApprovedBy, &req.ApprovedAt,
		&req.ClarificationStatus, &req.ClarificationResponse,
		&req.CreatedAt, &req.UpdatedAt,
		&req.EmployeeName,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return regularization.Request{}, regularization.ErrRequestNotFound
		}
		return regularization.Request{}, fmt.Errorf("failed to get regularization request by ID: %w", err)
	}

	return req, nil
}

// Decide implements regularization.Repository.
func (r *regularizationRepository) Decide(ctx context.Context, id string, status regularization.Status, approverID string, notes *string, decidedAt time.Time) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE regularization_requests
		SET status = $1, approver_notes = $2, approved_by = $3, approved_at = $4,
		    updated_at = NOW()
		WHERE id = $5
		  AND status = $6
	`

	tag, err := q.Exec(ctx, query, status, notes, approverID, decidedAt, id, regularization.StatusPending)
	if err != nil {
		return false, fmt.Errorf("failed to decide regularization request: %w", err)
	}

	return tag.RowsAffected() > 0, nil
}

// SetClarification implements regularization.Repository.
func (r *regularizationRepository) SetClarification(ctx context.Context, id string, status timelog.ClarificationStatus, response *string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE regularization_requests
		SET clarification_status = $1, clarification_response = $2, updated_at = NOW()
		WHERE id = $3
	`

	tag, err := q.Exec(ctx, query, status, response, id)
	if err != nil {
		return fmt.Errorf("failed to set clarification: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return regularization.ErrRequestNotFound
	}

	return nil
}

// List implements regularization.Repository.
func (r *regularizationRepository) List(ctx context.Context, filter regularization.Filter, organizationID string) ([]regularization.Request, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "r.organization_id = $1"
	args := []interface{}{organizationID}
	argIdx := 2

	if filter.EmployeeID != nil && *filter.EmployeeID != "" {
		baseWhere += fmt.Sprintf(" AND r.employee_id = $%d", argIdx)
		args = append(args, *filter.EmployeeID)
		argIdx++
	}
	if filter.Status != nil && *filter.Status != "" {
		baseWhere += fmt.Sprintf(" AND r.status = $%d", argIdx)
		args = append(args, *filter.Status)
		argIdx++
	}
	if filter.StartDate != nil && *filter.StartDate != "" {
		baseWhere += fmt.Sprintf(" AND r.date >= $%d", argIdx)
		args = append(args, *filter.StartDate)
		argIdx++
	}
	if filter.EndDate != nil && *filter.EndDate != "" {
		baseWhere += fmt.Sprintf(" AND r.date <= $%d", argIdx)
		args = append(args, *filter.EndDate)
		argIdx++
	}

	countQuery := "SELECT COUNT(*) FROM regularization_requests r WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count regularization requests: %w", err)
	}

	selectQuery := fmt.Sprintf(`
		SELECT
			r.id, r.employee_id, r.organization_id, r.time_log_id, r.date,
			r.original_clock_in, r.original_clock_out,
			r.requested_clock_in, r.requested_clock_out,
			r.reason, r.status, r.approver_notes, r.approved_by, r.approved_at,
			r.clarification_status, r.clarification_response,
			r.created_at, r.updated_at,
			e.full_name AS employee_name
		FROM regularization_requests r
		LEFT JOIN employees e ON e.id = r.employee_id
		WHERE %s
		ORDER BY r.created_at DESC
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
		return nil, 0, fmt.Errorf("failed to query regularization requests: %w", err)
	}
	defer rows.Close()

	var requests []regularization.Request
	for rows.Next() {
		var req regularization.Request
		err := rows.Scan(
			&req.ID, &req.EmployeeID, &req.OrganizationID, &req.TimeLogID, &req.Date,
			&req.OriginalClockIn, &req.OriginalClockOut,
			&req.RequestedClockIn, &req.RequestedClockOut,
			&req.Reason, &req.Status, &req.ApproverNotes, &req.ApprovedBy, &req.ApprovedAt,
			&req.ClarificationStatus, &req.ClarificationResponse,
			&req.CreatedAt, &req.UpdatedAt,
			&req.EmployeeName,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan regularization request: %w", err)
		}
		requests = append(requests, req)
	}

	return requests, total, nil
}
