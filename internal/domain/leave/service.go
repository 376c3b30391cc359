package leave

import (
	"context"
)

// Service defines the leave request workflow and balance reads.
type Service interface {
	// CreateRequest submits a pending leave request for the authenticated
	// employee. Fails with ErrInsufficientBalance when the requested
	// working days exceed the remaining balance.
	CreateRequest(ctx context.Context, req CreateRequestRequest) (RequestResponse, error)

	// ApproveRequest deducts the balance and closes the request atomically.
	ApproveRequest(ctx context.Context, req DecideRequest) (RequestResponse, error)

	// RejectRequest closes the request without touching the balance.
	// Reason is mandatory.
	RejectRequest(ctx context.Context, req DecideRequest) (RequestResponse, error)

	// ListRequests retrieves requests across the organization (manager/owner)
	ListRequests(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)

	// GetMyRequests retrieves the authenticated employee's requests
	GetMyRequests(ctx context.Context, filter RequestFilter) (ListRequestResponse, error)

	// GetMyBalances retrieves the authenticated employee's balances
	GetMyBalances(ctx context.Context) ([]BalanceResponse, error)
}
