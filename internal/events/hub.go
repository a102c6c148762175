package events

import (
	"sync"

	"github.com/sirupsen/logrus"
)

// Event names emitted by the pipeline.
const (
	EventNewMention = "new_mention"
	EventAlert      = "alert"
)

// Publisher is the fire-and-forget event emission port. Implementations
// must never block the pipeline.
type Publisher interface {
	Publish(event string, payload interface{})
}

// Event pairs an event name with its payload for delivery to subscribers.
type Event struct {
	Name    string      `json:"event"`
	Payload interface{} `json:"payload"`
}

// Hub is an in-process Publisher that fans events out to subscriber
// channels. Slow subscribers drop events rather than stall the pipeline.
type Hub struct {
	mu          sync.RWMutex
	subscribers map[chan Event]struct{}
}

// Ensure Hub implements Publisher
var _ Publisher = (*Hub)(nil)

// NewHub creates a new event hub.
func NewHub() *Hub {
	return &Hub{
		subscribers: make(map[chan Event]struct{}),
	}
}

// Subscribe registers a new subscriber channel. The caller must drain it
// and call the returned cancel function when done.
func (h *Hub) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	h.mu.Lock()
	h.subscribers[ch] = struct{}{}
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		if _, ok := h.subscribers[ch]; ok {
			delete(h.subscribers, ch)
			close(ch)
		}
		h.mu.Unlock()
	}

	return ch, cancel
}

// Publish delivers the event to every subscriber without blocking.
func (h *Hub) Publish(event string, payload interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for ch := range h.subscribers {
		select {
		case ch <- Event{Name: event, Payload: payload}:
		default:
			logrus.Warnf("Dropping %s event for slow subscriber", event)
		}
	}
}

// SubscriberCount returns the number of attached subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}
