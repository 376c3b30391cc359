package leave

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/leave"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
)

// LedgerImpl is the only writer of leave balance rows. Every change goes
// through a locked read-modify-write so concurrent adjustments for the same
// employee and leave type serialize.
type LedgerImpl struct {
	tx       database.TxManager
	balances leave.BalanceRepository
}

func NewLedger(tx database.TxManager, balances leave.BalanceRepository) *LedgerImpl {
	return &LedgerImpl{tx: tx, balances: balances}
}

// Adjust implements leave.Ledger.
func (l *LedgerImpl) Adjust(ctx context.Context, employeeID, leaveTypeID string, year int, deltaDays decimal.Decimal, isDeduction bool) (leave.Adjustment, error) {
	var adj leave.Adjustment
	err := l.tx.WithinTx(ctx, func(ctx context.Context) error {
		var err error
		adj, err = l.ApplyAdjustment(ctx, employeeID, leaveTypeID, year, deltaDays, isDeduction)
		return err
	})
	return adj, err
}

// ApplyAdjustment implements leave.Ledger. The caller must already run
// inside a transaction; the balance check and the write commit together.
func (l *LedgerImpl) ApplyAdjustment(ctx context.Context, employeeID, leaveTypeID string, year int, deltaDays decimal.Decimal, isDeduction bool) (leave.Adjustment, error) {
	if !deltaDays.IsPositive() {
		return leave.Adjustment{}, leave.ErrInvalidAdjustment
	}
	if year == 0 {
		year = time.Now().UTC().Year()
	}

	bal, err := l.balances.GetForUpdate(ctx, employeeID, leaveTypeID, year)
	if err != nil {
		return leave.Adjustment{}, err
	}

	var remaining, used decimal.Decimal
	if isDeduction {
		// The check happens before any write, so an insufficient balance
		// leaves the ledger untouched.
		if deltaDays.GreaterThan(bal.RemainingDays) {
			return leave.Adjustment{}, leave.ErrInsufficientBalance
		}
		remaining = bal.RemainingDays.Sub(deltaDays)
		used = bal.UsedDays.Add(deltaDays)
	} else {
		remaining = bal.RemainingDays.Add(deltaDays)
		used = bal.UsedDays.Sub(deltaDays)
		if used.IsNegative() {
			used = decimal.Zero
		}
	}

	if err := l.balances.UpdateBalance(ctx, bal.ID, remaining, used); err != nil {
		return leave.Adjustment{}, err
	}

	slog.Info("Leave balance adjusted",
		"employee_id", employeeID, "leave_type_id", leaveTypeID, "year", year,
		"delta_days", deltaDays.String(), "deduction", isDeduction,
		"remaining_days", remaining.String())

	return leave.Adjustment{
		EmployeeID:    employeeID,
		LeaveTypeID:   leaveTypeID,
		Year:          year,
		RemainingDays: remaining,
		UsedDays:      used,
	}, nil
}
