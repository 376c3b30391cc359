package leave

import (
	"time"

	"github.com/shopspring/decimal"
)

// LeaveType entity
type LeaveType struct {
	ID             string
	OrganizationID string
	Name           string
	Code           *string
	IsActive       bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Balance is the per-employee, per-leave-type, per-year day ledger.
// RemainingDays never goes negative; the ledger rejects any adjustment
// that would make it so.
type Balance struct {
	ID          string
	EmployeeID  string
	LeaveTypeID string
	Year        int

	RemainingDays    decimal.Decimal
	UsedDays         decimal.Decimal
	CarryforwardDays decimal.Decimal

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	LeaveTypeName *string
}

type RequestStatus string

const (
	RequestStatusPending  RequestStatus = "pending"
	RequestStatusApproved RequestStatus = "approved"
	RequestStatusRejected RequestStatus = "rejected"
)

// Request entity
type Request struct {
	ID             string
	EmployeeID     string
	OrganizationID string
	LeaveTypeID    string

	StartDate time.Time
	EndDate   time.Time

	WorkingDays decimal.Decimal
	Reason      string

	Status          RequestStatus
	ApprovedBy      *string
	ApprovedAt      *time.Time
	RejectionReason *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	LeaveTypeName *string
	EmployeeName  *string
}
