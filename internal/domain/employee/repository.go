package employee

import (
	"context"
)

// EmployeeRepository defines the read-only employee lookups the core needs:
// identity, organization membership and role for approval authorization.
type EmployeeRepository interface {
	GetByID(ctx context.Context, id string) (Employee, error)

	// IsApproverFor reports whether approverID holds a manager or owner
	// role in the same organization as employeeID.
	IsApproverFor(ctx context.Context, approverID, employeeID string) (bool, error)

	// GetManagersByOrganizationID returns the organization's approvers,
	// used for notification fan-out.
	GetManagersByOrganizationID(ctx context.Context, organizationID string) ([]Employee, error)

	// HasProjects reports whether the employee is assigned to any project.
	// Backs the project allocation cache.
	HasProjects(ctx context.Context, employeeID string) (bool, error)
}
