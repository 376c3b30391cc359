package notification

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
)

// Config holds notification service configuration
type Config struct {
	BatchSize     int           // default: 100
	FlushInterval time.Duration // default: 5 seconds
	WorkerCount   int           // default: 2
	QueueSize     int           // default: 1000
}

type service struct {
	repo   notification.Repository
	hub    *sse.Hub
	config Config

	queue  chan notification.CreateNotificationRequest
	wg     sync.WaitGroup
	stopCh chan struct{}
}

// NewNotificationService creates a new notification service with background workers
func NewNotificationService(repo notification.Repository, hub *sse.Hub, cfg Config) notification.Service {
	if cfg.BatchSize == 0 {
		cfg.BatchSize = 100
	}
	if cfg.FlushInterval == 0 {
		cfg.FlushInterval = 5 * time.Second
	}
	if cfg.WorkerCount == 0 {
		cfg.WorkerCount = 2
	}
	if cfg.QueueSize == 0 {
		cfg.QueueSize = 1000
	}

	s := &service{
		repo:   repo,
		hub:    hub,
		config: cfg,
		queue:  make(chan notification.CreateNotificationRequest, cfg.QueueSize),
		stopCh: make(chan struct{}),
	}

	for i := 0; i < cfg.WorkerCount; i++ {
		s.wg.Add(1)
		go s.worker(i)
	}

	slog.Info("Notification service started",
		"workers", cfg.WorkerCount, "batch_size", cfg.BatchSize, "flush_interval", cfg.FlushInterval)

	return s
}

// worker drains the queue into batched inserts.
func (s *service) worker(id int) {
	defer s.wg.Done()

	batch := make([]notification.CreateNotificationRequest, 0, s.config.BatchSize)
	ticker := time.NewTicker(s.config.FlushInterval)
	defer ticker.Stop()

	flush := func() {
		if len(batch) == 0 {
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		notifications := make([]*notification.Notification, len(batch))
		for i, req := range batch {
			notifications[i] = &notification.Notification{
				ID:             uuid.New().String(),
				OrganizationID: req.OrganizationID,
				RecipientID:    req.RecipientID,
				SenderID:       req.SenderID,
				Type:           req.Type,
				Title:          req.Title,
				Message:        req.Message,
				Data:           req.Data,
				IsRead:         false,
				CreatedAt:      time.Now(),
			}
		}

		if err := s.repo.CreateBatch(ctx, notifications); err != nil {
			slog.Error("Failed to batch insert notifications", "worker", id, "error", err)
		} else {
			for _, n := range notifications {
				s.hub.Publish(n.RecipientID, sse.Event{
					UserID: n.RecipientID,
					Event:  sse.EventNotification,
					Data:   toResponse(n),
				})
			}
		}

		batch = batch[:0]
	}

	for {
		select {
		case req := <-s.queue:
			batch = append(batch, req)
			if len(batch) >= s.config.BatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-s.stopCh:
			flush()
			return
		}
	}
}

// QueueNotification queues a notification for async processing
func (s *service) QueueNotification(ctx context.Context, req notification.CreateNotificationRequest) error {
	select {
	case s.queue <- req:
		return nil
	default:
		// Queue full; drop rather than block the business action.
		slog.Warn("Notification queue full, dropping notification",
			"recipient_id", req.RecipientID, "type", req.Type)
		return nil
	}
}

// GetNotifications implements notification.Service.
func (s *service) GetNotifications(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]notification.Notification, int64, error) {
	return s.repo.ListByRecipient(ctx, userID, page, limit, unreadOnly)
}

// MarkAsRead implements notification.Service.
func (s *service) MarkAsRead(ctx context.Context, userID string, notificationID string) error {
	return s.repo.MarkAsRead(ctx, userID, notificationID)
}

// Stop flushes pending batches and stops the workers.
func (s *service) Stop() {
	close(s.stopCh)
	s.wg.Wait()
	slog.Info("Notification service stopped")
}

func toResponse(n *notification.Notification) map[string]interface{} {
	return map[string]interface{}{
		"id":         n.ID,
		"type":       string(n.Type),
		"title":      n.Title,
		"message":    n.Message,
		"data":       n.Data,
		"is_read":    n.IsRead,
		"created_at": n.CreatedAt.Format(time.RFC3339),
	}
}
