package postgresql

import (
	"context"
	"fmt"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/database"
)

type notificationRepository struct {
	db *database.DB
}

func NewNotificationRepository(db *database.DB) notification.Repository {
	return &notificationRepository{db: db}
}

// CreateBatch implements notification.Repository.
func (r *notificationRepository) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	if len(notifications) == 0 {
		return nil
	}

	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO notifications (
			id, organization_id, recipient_id, sender_id, type, title, message, data, created_at
		) VALUES (
			$1, $2, $3, $4, $5, $6, $7, $8, $9
		)
	`

	for _, n := range notifications {
		_, err := q.Exec(ctx, query,
			n.ID,
			n.OrganizationID,
			n.RecipientID,
			n.SenderID,
			n.Type,
			n.Title,
			n.Message,
			n.Data,
			n.CreatedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to create notification: %w", err)
		}
	}

	return nil
}

// ListByRecipient implements notification.Repository.
func (r *notificationRepository) ListByRecipient(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]notification.Notification, int64, error) {
	q := GetQuerier(ctx, r.db)

	baseWhere := "recipient_id = $1"
	args := []interface{}{userID}
	argIdx := 2

	if unreadOnly {
		baseWhere += " AND NOT is_read"
	}

	countQuery := "SELECT COUNT(*) FROM notifications WHERE " + baseWhere
	var total int64
	if err := q.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count notifications: %w", err)
	}

	if limit == 0 {
		limit = 20
	}
	if page == 0 {
		page = 1
	}

	selectQuery := fmt.Sprintf(`
		SELECT id, organization_id, recipient_id, sender_id, type, title, message, data,
		       is_read, read_at, created_at
		FROM notifications
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, baseWhere, argIdx, argIdx+1)
	args = append(args, limit, (page-1)*limit)

	rows, err := q.Query(ctx, selectQuery, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to query notifications: %w", err)
	}
	defer rows.Close()

	var notifications []notification.Notification
	for rows.Next() {
		var n notification.Notification
		err := rows.Scan(
			&n.ID, &n.OrganizationID, &n.RecipientID, &n.SenderID, &n.Type, &n.Title, &n.Message, &n.Data,
			&n.IsRead, &n.ReadAt, &n.CreatedAt,
		)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan notification: %w", err)
		}
		notifications = append(notifications, n)
	}

	return notifications, total, nil
}

// MarkAsRead implements notification.Repository.
func (r *notificationRepository) MarkAsRead(ctx context.Context, userID string, notificationID string) error {
	q := GetQuerier(ctx, r.db)

	query := `
		UPDATE notifications
		SET is_read = TRUE, read_at = NOW()
		WHERE id = $1
		  AND recipient_id = $2
		  AND NOT is_read
	`

	if _, err := q.Exec(ctx, query, notificationID, userID); err != nil {
		return fmt.Errorf("failed to mark notification as read: %w", err)
	}

	return nil
}
