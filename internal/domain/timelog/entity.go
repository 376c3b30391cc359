package timelog

import (
	"time"
)

// Status tracks how a work session is progressing or how it ended.
type Status string

const (
	// StatusNormal is an open session within expected working hours,
	// or a session that was closed manually before the grace window.
	StatusNormal Status = "normal"
	// StatusGracePeriod means the expected clock-out has passed but the
	// session is still open (or was closed during the grace window).
	StatusGracePeriod Status = "grace_period"
	// StatusAutoTerminated means the sweep closed the session at the
	// grace deadline because the employee never clocked out.
	StatusAutoTerminated Status = "auto_terminated"
	// StatusAbsent marks a day with no session at all.
	StatusAbsent Status = "absent"
)

// Open reports whether a log in this status still has a running session.
func (s Status) Open() bool {
	return s == StatusNormal || s == StatusGracePeriod
}

// ClarificationStatus tracks the approver/employee clarification round-trip
// on a submitted time log.
type ClarificationStatus string

const (
	ClarificationNone      ClarificationStatus = "none"
	ClarificationNeeded    ClarificationStatus = "needed"
	ClarificationSubmitted ClarificationStatus = "submitted"
)

type TimeLog struct {
	ID             string
	EmployeeID     string
	OrganizationID string
	Date           time.Time

	ClockIn         *time.Time
	ClockOut        *time.Time
	DurationMinutes *int

	Status Status

	// ExpectedWorkingHours overrides the organization default for this
	// session; nil means the configured default applies.
	ExpectedWorkingHours *float64

	Notes *string

	// ProjectTimeData is an opaque allocation of the session's minutes
	// across projects. The engine stores and returns it untouched.
	ProjectTimeData map[string]interface{}

	IsSubmitted           bool
	IsApproved            bool
	ApprovedBy            *string
	ApprovedAt            *time.Time
	RejectionReason       *string
	ClarificationStatus   ClarificationStatus
	ClarificationResponse *string

	CreatedAt time.Time
	UpdatedAt time.Time

	// DTO
	EmployeeName *string
}
