package postgresql

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/employee"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/user"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
)

type employeeRepository struct {
	db *database.DB
}

func NewEmployeeRepository(db *database.DB) employee.EmployeeRepository {
	return &employeeRepository{db: db}
}

// GetByID implements employee.EmployeeRepository.
func (r *employeeRepository) GetByID(ctx context.Context, id string) (employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, user_id, full_name, role, is_active,
		       created_at, updated_at
		FROM employees
		WHERE id = $1
	`

	var emp employee.Employee
	err := q.QueryRow(ctx, query, id).Scan(
		&emp.ID, &emp.OrganizationID, &emp.UserID, &emp.FullName, &emp.Role, &emp.IsActive,
		&emp.CreatedAt, &emp.UpdatedAt,
	)

	if err != nil {
		if err == pgx.ErrNoRows {
			return employee.Employee{}, employee.ErrEmployeeNotFound
		}
		return employee.Employee{}, fmt.Errorf("failed to get employee by ID: %w", err)
	}

	return emp, nil
}

// IsApproverFor implements employee.EmployeeRepository.
func (r *employeeRepository) IsApproverFor(ctx context.Context, approverID, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM employees approver
			JOIN employees subject ON subject.organization_id = approver.organization_id
			WHERE approver.id = $1
			  AND subject.id = $2
			  AND approver.is_active
			  AND approver.role IN ($3, $4)
		)
	`

	var isApprover bool
	err := q.QueryRow(ctx, query, approverID, employeeID, user.RoleOwner, user.RoleManager).Scan(&isApprover)
	if err != nil {
		return false, fmt.Errorf("failed to check approver role: %w", err)
	}

	return isApprover, nil
}

// GetManagersByOrganizationID implements employee.EmployeeRepository.
func (r *employeeRepository) GetManagersByOrganizationID(ctx context.Context, organizationID string) ([]employee.Employee, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT id, organization_id, user_id, full_name, role, is_active,
		       created_at, updated_at
		FROM employees
		WHERE organization_id = $1
		  AND is_active
		  AND role IN ($2, $3)
	`

	rows, err := q.Query(ctx, query, organizationID, user.RoleOwner, user.RoleManager)
	if err != nil {
		return nil, fmt.Errorf("failed to list managers: %w", err)
	}
	defer rows.Close()

	var managers []employee.Employee
	for rows.Next() {
		var emp employee.Employee
		err := rows.Scan(
			&emp.ID, &emp.OrganizationID, &emp.UserID, &emp.FullName, &emp.Role, &emp.IsActive,
			&emp.CreatedAt, &emp.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan employee: %w", err)
		}
		managers = append(managers, emp)
	}

	return managers, nil
}

// HasProjects implements employee.EmployeeRepository.
func (r *employeeRepository) HasProjects(ctx context.Context, employeeID string) (bool, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		SELECT EXISTS (
			SELECT 1
			FROM project_assignments
			WHERE employee_id = $1
		)
	`

	var hasProjects bool
	err := q.QueryRow(ctx, query, employeeID).Scan(&hasProjects)
	if err != nil {
		return false, fmt.Errorf("failed to check project assignments: %w", err)
	}

	return hasProjects, nil
}
