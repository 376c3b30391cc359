package regularization

import (
	"context"
	"time"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
)

// Repository defines data access methods for regularization requests.
type Repository interface {
	// Create inserts a new pending request
	Create(ctx context.Context, req Request) (Request, error)

	// GetByID retrieves a request by ID with organization isolation.
	// When called inside a transaction the row is locked so two concurrent
	// approvals serialize on it.
	GetByID(ctx context.Context, id string, organizationID string) (Request, error)

	// Decide writes the terminal status together with the approver identity.
	// Guarded by status = 'pending'; returns false when the request already
	// left pending.
	Decide(ctx context.Context, id string, status Status, approverID string, notes *string, decidedAt time.Time) (bool, error)

	// SetClarification updates the clarification sub-state on the request.
	SetClarification(ctx context.Context, id string, status timelog.ClarificationStatus, response *string) error

	// List retrieves requests for an organization with filters and pagination
	List(ctx context.Context, filter Filter, organizationID string) ([]Request, int64, error)
}

// Service defines the regularization workflow.
type Service interface {
	// Submit creates a pending correction request for the authenticated employee.
	Submit(ctx context.Context, req SubmitRequest) (Response, error)

	// Approve applies the requested times to the underlying time log and
	// closes the request. Notes are optional.
	Approve(ctx context.Context, req DecideRequest) (Response, error)

	// Reject closes the request without touching the time log. Notes are
	// mandatory.
	Reject(ctx context.Context, req DecideRequest) (Response, error)

	// RequestClarification asks the employee for more detail before a decision.
	RequestClarification(ctx context.Context, req ClarificationRequest) error

	// SubmitClarification records the employee's answer.
	SubmitClarification(ctx context.Context, req ClarificationResponseRequest) error

	// ListRequests retrieves requests across the organization (manager/owner)
	ListRequests(ctx context.Context, filter Filter) (ListResponse, error)

	// GetMyRequests retrieves the authenticated employee's requests
	GetMyRequests(ctx context.Context, filter Filter) (ListResponse, error)
}
