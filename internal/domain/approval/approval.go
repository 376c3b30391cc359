package approval

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
)

// Action is what an approver can do to a pending entity.
type Action string

const (
	ActionApprove Action = "approve"
	ActionReject  Action = "reject"
)

// Decision carries the approver's verdict. Notes are mandatory for
// rejections and optional for approvals.
type Decision struct {
	Action     Action
	ApproverID string
	Notes      string
	DecidedAt  time.Time
}

// Target is any pending entity an approver can decide on: a regularization
// request, a leave request. Guard and Apply run inside one transaction so a
// decision and its cascading mutations commit together or not at all.
type Target interface {
	// OwnerEmployeeID is the employee whose record is being decided.
	OwnerEmployeeID() string

	// Guard re-reads the target and fails when it is no longer decidable.
	Guard(ctx context.Context) error

	// Apply writes the terminal status, the approver identity, and every
	// cascading mutation (time log fields, ledger adjustment).
	Apply(ctx context.Context, d Decision) error
}

// RoleChecker answers whether a caller holds an approver role for the
// employee's organization.
type RoleChecker interface {
	IsApproverFor(ctx context.Context, approverID, employeeID string) (bool, error)
}

// Engine is the shared approve/reject commit path.
type Engine struct {
	tx    database.TxManager
	roles RoleChecker
}

func NewEngine(tx database.TxManager, roles RoleChecker) *Engine {
	return &Engine{tx: tx, roles: roles}
}

// Decide authorizes the approver, then commits the decision atomically.
// A failing Guard or Apply rolls everything back.
func (e *Engine) Decide(ctx context.Context, target Target, d Decision) error {
	if d.Action == ActionReject && strings.TrimSpace(d.Notes) == "" {
		return ErrReasonRequired
	}

	ok, err := e.roles.IsApproverFor(ctx, d.ApproverID, target.OwnerEmployeeID())
	if err != nil {
		return fmt.Errorf("failed to check approver role: %w", err)
	}
	if !ok {
		return ErrApproverRoleRequired
	}

	if d.DecidedAt.IsZero() {
		d.DecidedAt = time.Now().UTC()
	}

	return e.tx.WithinTx(ctx, func(ctx context.Context) error {
		if err := target.Guard(ctx); err != nil {
			return err
		}
		return target.Apply(ctx, d)
	})
}
