package leave

import "errors"

var (
	ErrBalanceNotFound       = errors.New("leave balance not found")
	ErrInsufficientBalance   = errors.New("insufficient leave balance")
	ErrInvalidAdjustment     = errors.New("adjustment must be a positive number of days")
	ErrLeaveRequestNotFound  = errors.New("leave request not found")
	ErrLeaveAlreadyProcessed = errors.New("leave request has already been approved or rejected")
	ErrInvalidDateRange      = errors.New("start date must not be after end date")
	ErrLeaveTypeNotFound     = errors.New("leave type not found")
)
