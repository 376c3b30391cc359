package timelog

import (
	"context"
	"time"
)

// TimeLogRepository defines data access methods for time logs.
// Organization-scoped methods include organizationID to prevent
// cross-organization data access.
type TimeLogRepository interface {
	// Create inserts a new time log
	Create(ctx context.Context, log TimeLog) (TimeLog, error)

	// GetByID retrieves a time log by ID with organization isolation
	GetByID(ctx context.Context, id string, organizationID string) (TimeLog, error)

	// GetOpenSession returns the employee's open session (clock_out IS NULL),
	// or nil when the employee has none. When called inside a transaction the
	// row is locked so concurrent clock-ins serialize on it.
	GetOpenSession(ctx context.Context, employeeID string) (*TimeLog, error)

	// ListOpenByStatus returns every open session currently in the given
	// status, across all organizations. Used by the grace period sweep.
	ListOpenByStatus(ctx context.Context, status Status) ([]TimeLog, error)

	// MarkGracePeriod flips a still-open normal session to grace_period.
	// Returns false when the session was already closed or already flipped.
	MarkGracePeriod(ctx context.Context, id string) (bool, error)

	// CloseSession sets clock-out, duration and final status, guarded by
	// clock_out IS NULL. Returns false when another writer closed it first.
	CloseSession(ctx context.Context, id string, clockOut time.Time, durationMinutes int, status Status) (bool, error)

	// ApplyCorrection overwrites the session times from an approved
	// regularization and normalizes the status.
	ApplyCorrection(ctx context.Context, id string, clockIn, clockOut time.Time, durationMinutes int, approvedBy string, approvedAt time.Time) error

	// SetClarification updates the clarification sub-state.
	SetClarification(ctx context.Context, id string, status ClarificationStatus, response *string) error

	// List retrieves time logs for an organization with filters and pagination
	List(ctx context.Context, filter TimeLogFilter, organizationID string) ([]TimeLog, int64, error)

	// ListByEmployee retrieves time logs for a single employee
	ListByEmployee(ctx context.Context, employeeID string, filter TimeLogFilter, organizationID string) ([]TimeLog, int64, error)
}
