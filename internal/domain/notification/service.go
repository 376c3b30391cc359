package notification

import (
	"context"
)

// Service queues notifications for async delivery. Producers treat it as
// fire-and-forget: a failed queue or insert never fails the business action.
type Service interface {
	QueueNotification(ctx context.Context, req CreateNotificationRequest) error

	GetNotifications(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]Notification, int64, error)
	MarkAsRead(ctx context.Context, userID string, notificationID string) error

	// Lifecycle
	Stop()
}

// Repository persists notifications.
type Repository interface {
	CreateBatch(ctx context.Context, notifications []*Notification) error
	ListByRecipient(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]Notification, int64, error)
	MarkAsRead(ctx context.Context, userID string, notificationID string) error
}
