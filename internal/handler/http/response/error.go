package response

import (
	"errors"
	"net/http"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/approval"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/employee"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/leave"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/regularization"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/timelog"
	"github.com/chronos-hq/timetrack-backend-go/internal/domain/user"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/validator"
)

// HandleError maps domain errors to HTTP responses
func HandleError(w http.ResponseWriter, err error) {
	// Check if it's a validation error
	var validationErrs validator.ValidationErrors
	if errors.As(err, &validationErrs) {
		ValidationError(w, validationErrs.ToMap())
		return
	}

	switch {
	// Time log domain errors
	case errors.Is(err, timelog.ErrAlreadyClockedIn):
		Conflict(w, "An open work session already exists")
	case errors.Is(err, timelog.ErrAlreadyClosed):
		Conflict(w, "Work session is already closed")
	case errors.Is(err, timelog.ErrTimeLogNotFound):
		NotFound(w, "Time log not found")
	case errors.Is(err, timelog.ErrUnauthorized):
		Forbidden(w, "Not allowed to access this time log")

	// Regularization domain errors
	case errors.Is(err, regularization.ErrRequestNotFound):
		NotFound(w, "Regularization request not found")
	case errors.Is(err, regularization.ErrInvalidRange):
		BadRequest(w, "Requested clock-in must be before requested clock-out", nil)
	case errors.Is(err, regularization.ErrNotPending):
		Conflict(w, "Regularization request already processed")
	case errors.Is(err, regularization.ErrNoClarification):
		BadRequest(w, "No clarification was requested", nil)

	// Leave domain errors
	case errors.Is(err, leave.ErrBalanceNotFound):
		NotFound(w, "Leave balance not found")
	case errors.Is(err, leave.ErrInsufficientBalance):
		BadRequest(w, "Insufficient leave balance", nil)
	case errors.Is(err, leave.ErrInvalidAdjustment):
		BadRequest(w, "Adjustment must be a positive number of days", nil)
	case errors.Is(err, leave.ErrLeaveRequestNotFound):
		NotFound(w, "Leave request not found")
	case errors.Is(err, leave.ErrLeaveAlreadyProcessed):
		Conflict(w, "Leave request already processed")
	case errors.Is(err, leave.ErrInvalidDateRange):
		BadRequest(w, "Start date must not be after end date", nil)
	case errors.Is(err, leave.ErrLeaveTypeNotFound):
		NotFound(w, "Leave type not found")

	// Approval errors
	case errors.Is(err, approval.ErrReasonRequired):
		BadRequest(w, "A reason is required to reject", nil)
	case errors.Is(err, approval.ErrApproverRoleRequired):
		Forbidden(w, "Approver role required")

	// Employee / role errors
	case errors.Is(err, employee.ErrEmployeeNotFound):
		NotFound(w, "Employee not found")
	case errors.Is(err, user.ErrManagerAccessRequired):
		Forbidden(w, "Manager access required")
	case errors.Is(err, user.ErrOwnerAccessRequired):
		Forbidden(w, "Owner access required")

	// Default
	default:
		InternalServerError(w, "An unexpected error occurred")
	}
}
