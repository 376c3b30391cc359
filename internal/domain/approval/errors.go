package approval

import "errors"

var (
	ErrReasonRequired       = errors.New("a reason is required when rejecting")
	ErrApproverRoleRequired = errors.New("approver role required for this action")
)
