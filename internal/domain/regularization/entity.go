package regularization

import (
	"time"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
)

// Status of a regularization request. Terminal once approved or rejected.
type Status string

const (
	StatusPending  Status = "pending"
	StatusApproved Status = "approved"
	StatusRejected Status = "rejected"
)

// Terminal reports whether the request can no longer be acted on.
func (s Status) Terminal() bool {
	return s == StatusApproved || s == StatusRejected
}

// Request is an employee-submitted correction to a time log.
type Request struct {
	ID             string
	EmployeeID     string
	OrganizationID string

	// TimeLogID is nil when the request targets a day with no existing
	// log (an absence correction).
	TimeLogID *string

	Date time.Time

	// Snapshot of the log's times at submission.
	OriginalClockIn  *time.Time
	OriginalClockOut *time.Time

	RequestedClockIn  time.Time
	RequestedClockOut time.Time

	Reason string

	Status        Status
	ApproverNotes *string
	ApprovedBy    *string
	ApprovedAt    *time.Time

	ClarificationStatus   timelog.ClarificationStatus
	ClarificationResponse *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}
