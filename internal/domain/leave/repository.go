package leave

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// BalanceRepository defines data access for the leave balance ledger.
type BalanceRepository interface {
	// GetForUpdate reads the balance row for employee x leave type x year.
	// Inside a transaction the row is locked (FOR UPDATE) so adjustments
	// for the same key serialize.
	GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (Balance, error)

	// UpdateBalance writes the new remaining/used figures.
	UpdateBalance(ctx context.Context, id string, remaining, used decimal.Decimal) error

	// ListByEmployee returns all balances for an employee
	ListByEmployee(ctx context.Context, employeeID string) ([]Balance, error)
}

// RequestRepository defines data access for leave requests.
type RequestRepository interface {
	Create(ctx context.Context, req Request) (Request, error)

	// GetByID retrieves a request with organization isolation; locks the
	// row when called inside a transaction.
	GetByID(ctx context.Context, id string, organizationID string) (Request, error)

	// Decide writes the terminal status, guarded by status = 'pending'.
	// Returns false when the request already left pending.
	Decide(ctx context.Context, id string, status RequestStatus, approverID string, reason *string, decidedAt time.Time) (bool, error)

	List(ctx context.Context, filter RequestFilter, organizationID string) ([]Request, int64, error)
}

// TypeRepository defines data access for leave types.
type TypeRepository interface {
	GetByID(ctx context.Context, id string, organizationID string) (LeaveType, error)
}

// Adjustment is the ledger's view of a committed balance change.
type Adjustment struct {
	EmployeeID    string
	LeaveTypeID   string
	Year          int
	RemainingDays decimal.Decimal
	UsedDays      decimal.Decimal
}

// Ledger adjusts leave balances. The only path that mutates Balance rows.
type Ledger interface {
	// Adjust applies a deduction (isDeduction=true) or a return of days.
	// Fails with ErrInsufficientBalance before any write when a deduction
	// would drive the remaining days negative.
	Adjust(ctx context.Context, employeeID, leaveTypeID string, year int, deltaDays decimal.Decimal, isDeduction bool) (Adjustment, error)

	// ApplyAdjustment is Adjust without opening a transaction; the caller
	// must already run inside one. Used by approval commits so the ledger
	// change rolls back together with the rest of the decision.
	ApplyAdjustment(ctx context.Context, employeeID, leaveTypeID string, year int, deltaDays decimal.Decimal, isDeduction bool) (Adjustment, error)
}
