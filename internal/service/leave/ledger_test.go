package leave

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/leave"
)

type fakeTxManager struct{}

func (fakeTxManager) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type balanceKey struct {
	employeeID  string
	leaveTypeID string
	year        int
}

type fakeBalanceRepo struct {
	balances map[balanceKey]*leave.Balance
}

func newFakeBalanceRepo() *fakeBalanceRepo {
	return &fakeBalanceRepo{balances: make(map[balanceKey]*leave.Balance)}
}

func (f *fakeBalanceRepo) seed(employeeID, leaveTypeID string, year int, remaining, used float64) {
	key := balanceKey{employeeID, leaveTypeID, year}
	f.balances[key] = &leave.Balance{
		ID:            employeeID + "/" + leaveTypeID,
		EmployeeID:    employeeID,
		LeaveTypeID:   leaveTypeID,
		Year:          year,
		RemainingDays: decimal.NewFromFloat(remaining),
		UsedDays:      decimal.NewFromFloat(used),
	}
}

func (f *fakeBalanceRepo) GetForUpdate(ctx context.Context, employeeID, leaveTypeID string, year int) (leave.Balance, error) {
	bal, ok := f.balances[balanceKey{employeeID, leaveTypeID, year}]
	if !ok {
		return leave.Balance{}, leave.ErrBalanceNotFound
	}
	return *bal, nil
}

func (f *fakeBalanceRepo) UpdateBalance(ctx context.Context, id string, remaining, used decimal.Decimal) error {
	for _, bal := range f.balances {
		if bal.ID == id {
			bal.RemainingDays = remaining
			bal.UsedDays = used
			return nil
		}
	}
	return leave.ErrBalanceNotFound
}

func (f *fakeBalanceRepo) ListByEmployee(ctx context.Context, employeeID string) ([]leave.Balance, error) {
	var out []leave.Balance
	for _, bal := range f.balances {
		if bal.EmployeeID == employeeID {
			out = append(out, *bal)
		}
	}
	return out, nil
}

func (f *fakeBalanceRepo) get(employeeID, leaveTypeID string, year int) *leave.Balance {
	return f.balances[balanceKey{employeeID, leaveTypeID, year}]
}

func TestLedgerDeduction(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.seed("emp-1", "lt-annual", 2026, 12, 3)
	ledger := NewLedger(fakeTxManager{}, repo)

	adj, err := ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.NewFromInt(5), true)
	require.NoError(t, err)

	assert.True(t, adj.RemainingDays.Equal(decimal.NewFromInt(7)), "remaining = %s", adj.RemainingDays)
	assert.True(t, adj.UsedDays.Equal(decimal.NewFromInt(8)), "used = %s", adj.UsedDays)

	bal := repo.get("emp-1", "lt-annual", 2026)
	assert.True(t, bal.RemainingDays.Equal(decimal.NewFromInt(7)))
}

func TestLedgerDeductionCanDrainToZero(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.seed("emp-1", "lt-annual", 2026, 5, 0)
	ledger := NewLedger(fakeTxManager{}, repo)

	adj, err := ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.NewFromInt(5), true)
	require.NoError(t, err)
	assert.True(t, adj.RemainingDays.IsZero())
}

func TestLedgerInsufficientBalanceLeavesLedgerUntouched(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.seed("emp-1", "lt-annual", 2026, 3, 2)
	ledger := NewLedger(fakeTxManager{}, repo)

	_, err := ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.NewFromInt(4), true)
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)

	bal := repo.get("emp-1", "lt-annual", 2026)
	assert.True(t, bal.RemainingDays.Equal(decimal.NewFromInt(3)))
	assert.True(t, bal.UsedDays.Equal(decimal.NewFromInt(2)))
}

func TestLedgerRejectsNonPositiveDelta(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.seed("emp-1", "lt-annual", 2026, 3, 0)
	ledger := NewLedger(fakeTxManager{}, repo)

	_, err := ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.Zero, true)
	assert.ErrorIs(t, err, leave.ErrInvalidAdjustment)

	_, err = ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.NewFromInt(-2), false)
	assert.ErrorIs(t, err, leave.ErrInvalidAdjustment)
}

func TestLedgerReturnFloorsUsedAtZero(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.seed("emp-1", "lt-annual", 2026, 10, 1)
	ledger := NewLedger(fakeTxManager{}, repo)

	adj, err := ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.NewFromInt(3), false)
	require.NoError(t, err)

	assert.True(t, adj.RemainingDays.Equal(decimal.NewFromInt(13)))
	assert.True(t, adj.UsedDays.IsZero())
}

func TestLedgerHandlesHalfDays(t *testing.T) {
	repo := newFakeBalanceRepo()
	repo.seed("emp-1", "lt-annual", 2026, 2, 0)
	ledger := NewLedger(fakeTxManager{}, repo)

	adj, err := ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.NewFromFloat(0.5), true)
	require.NoError(t, err)
	assert.True(t, adj.RemainingDays.Equal(decimal.NewFromFloat(1.5)))

	// 1.5 remaining, a 2 day deduction must fail.
	_, err = ledger.Adjust(context.Background(), "emp-1", "lt-annual", 2026, decimal.NewFromInt(2), true)
	assert.ErrorIs(t, err, leave.ErrInsufficientBalance)
}
