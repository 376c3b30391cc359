package regularization

import "errors"

// Regularization domain errors
var (
	ErrRequestNotFound = errors.New("regularization request not found")
	ErrInvalidRange    = errors.New("requested clock-in must be before requested clock-out")
	ErrNotPending      = errors.New("regularization request has already been approved or rejected")
	ErrNoClarification = errors.New("no clarification was requested")
)
