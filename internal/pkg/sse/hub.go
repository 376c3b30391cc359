package sse

import (
	"sync"
)

// Event is a single server-sent event addressed to one user.
type Event struct {
	UserID string
	Event  string
	Data   interface{}
}

// eventBufferSize bounds each subscriber channel. A slow consumer loses
// events instead of blocking the publisher.
const eventBufferSize = 10

// Hub fans events out to the active stream connections of each user. A user
// can hold several connections at once (multiple tabs, multiple devices).
type Hub struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan Event]struct{}
}

func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[string]map[chan Event]struct{}),
	}
}

// Subscribe registers a connection for the user. The returned cleanup
// unregisters the channel and closes it; callers must defer it.
func (h *Hub) Subscribe(userID string) (chan Event, func()) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan Event, eventBufferSize)

	if h.subscribers[userID] == nil {
		h.subscribers[userID] = make(map[chan Event]struct{})
	}
	h.subscribers[userID][ch] = struct{}{}

	cleanup := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		delete(h.subscribers[userID], ch)
		close(ch)
		if len(h.subscribers[userID]) == 0 {
			delete(h.subscribers, userID)
		}
	}

	return ch, cleanup
}

// Publish delivers the event to every connection the user currently holds.
// Delivery is best effort; a full buffer drops the event.
func (h *Hub) Publish(userID string, event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers[userID] {
		select {
		case ch <- event:
		default:
		}
	}
}

// PublishToMany delivers the event to each listed user, stamping the copy
// with the recipient's ID.
func (h *Hub) PublishToMany(userIDs []string, event Event) {
	for _, userID := range userIDs {
		copied := event
		copied.UserID = userID
		h.Publish(userID, copied)
	}
}

// SubscriberCount reports the user's active connections.
func (h *Hub) SubscriberCount(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers[userID])
}

// TotalSubscribers reports active connections across all users.
func (h *Hub) TotalSubscribers() int {
	h.mu.RLock()
	defer h.mu.RUnlock()

	total := 0
	for _, subs := range h.subscribers {
		total += len(subs)
	}
	return total
}
