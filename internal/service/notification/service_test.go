package notification

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chronos-hq/timetrack-backend-go/internal/domain/notification"
	"github.com/chronos-hq/timetrack-backend-go/internal/pkg/sse"
)

type fakeNotifRepo struct {
	mu       sync.Mutex
	inserted []*notification.Notification
}

func (f *fakeNotifRepo) CreateBatch(ctx context.Context, notifications []*notification.Notification) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inserted = append(f.inserted, notifications...)
	return nil
}

func (f *fakeNotifRepo) ListByRecipient(ctx context.Context, userID string, page, limit int, unreadOnly bool) ([]notification.Notification, int64, error) {
	return nil, 0, nil
}

func (f *fakeNotifRepo) MarkAsRead(ctx context.Context, userID string, notificationID string) error {
	return nil
}

func (f *fakeNotifRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.inserted)
}

func testRequest(recipientID string) notification.CreateNotificationRequest {
	return notification.CreateNotificationRequest{
		OrganizationID: "org-1",
		RecipientID:    recipientID,
		Type:           notification.TypeTimeLogGracePeriod,
		Title:          "Working hours exceeded",
		Message:        "Your session entered the grace period.",
	}
}

func TestStopFlushesQueuedNotifications(t *testing.T) {
	repo := &fakeNotifRepo{}
	hub := sse.NewHub()
	svc := NewNotificationService(repo, hub, Config{FlushInterval: time.Hour})

	ch, cleanup := hub.Subscribe("emp-1")
	defer cleanup()

	require.NoError(t, svc.QueueNotification(context.Background(), testRequest("emp-1")))
	require.NoError(t, svc.QueueNotification(context.Background(), testRequest("emp-1")))

	svc.Stop()

	assert.Equal(t, 2, repo.count())
	for _, n := range repo.inserted {
		assert.NotEmpty(t, n.ID)
		assert.Equal(t, "emp-1", n.RecipientID)
	}
	assert.Len(t, ch, 2)
}

func TestQueueNotificationDropsWhenFull(t *testing.T) {
	repo := &fakeNotifRepo{}
	svc := NewNotificationService(repo, sse.NewHub(), Config{QueueSize: 1, FlushInterval: time.Hour})
	defer svc.Stop()

	// A cancelled context must not change the fire-and-forget contract:
	// the queue either takes the request or drops it, never an error.
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	for i := 0; i < 20; i++ {
		assert.NoError(t, svc.QueueNotification(ctx, testRequest("emp-1")))
	}
}
