package notification

import (
	"time"
)

// NotificationType represents the type of notification
type NotificationType string

const (
	TypeTimeLogAutoTerminated   NotificationType = "timelog_auto_terminated"
	TypeTimeLogGracePeriod      NotificationType = "timelog_grace_period"
	TypeRegularizationSubmitted NotificationType = "regularization_submitted"
	TypeRegularizationApproved  NotificationType = "regularization_approved"
	TypeRegularizationRejected  NotificationType = "regularization_rejected"
	TypeClarificationRequested  NotificationType = "clarification_requested"
	TypeLeaveRequestSubmitted   NotificationType = "leave_request_submitted"
	TypeLeaveRequestApproved    NotificationType = "leave_request_approved"
	TypeLeaveRequestRejected    NotificationType = "leave_request_rejected"
)

// Notification represents a notification entity
type Notification struct {
	ID             string
	OrganizationID string
	RecipientID    string
	SenderID       *string
	Type           NotificationType
	Title          string
	Message        string
	Data           map[string]interface{}
	IsRead         bool
	ReadAt         *time.Time
	CreatedAt      time.Time
}

// CreateNotificationRequest is the payload queued by producers.
type CreateNotificationRequest struct {
	OrganizationID string
	RecipientID    string
	SenderID       *string
	Type           NotificationType
	Title          string
	Message        string
	Data           map[string]interface{}
}
