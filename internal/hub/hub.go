// Package hub fans out the "clipboard-update" signal to subscribers.
//
// A signal carries no payload: it only tells the subscriber that the history
// changed and should be re-read. Delivery is at-least-once after the latest
// change. Each subscription buffers one pending signal, so a burst of changes
// may arrive as a single signal, and a slow subscriber never blocks Notify.
package hub

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Subscription receives change signals until it is unsubscribed.
type Subscription struct {
	id      string
	name    string
	ch      chan struct{}
	created time.Time
}

// ID returns the unique subscription ID.
func (s *Subscription) ID() string { return s.id }

// C returns the signal channel. It is never closed.
func (s *Subscription) C() <-chan struct{} { return s.ch }

// SubscriberInfo describes a current subscription for status reporting.
type SubscriberInfo struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	ConnectedAt time.Time `json:"connected_at"`
}

// Hub routes change signals to all current subscribers.
type Hub struct {
	mu   sync.RWMutex
	subs map[string]*Subscription
}

// New returns an empty Hub.
func New() *Hub {
	return &Hub{subs: make(map[string]*Subscription)}
}

// Subscribe registers a new subscriber. name is only used in logs and status.
func (h *Hub) Subscribe(name string) *Subscription {
	s := &Subscription{
		id:      uuid.NewString(),
		name:    name,
		ch:      make(chan struct{}, 1),
		created: time.Now(),
	}

	h.mu.Lock()
	h.subs[s.id] = s
	total := len(h.subs)
	h.mu.Unlock()

	slog.Info("subscriber registered", "id", s.id, "name", name, "total", total)
	return s
}

// Unsubscribe removes s. Unknown or already removed subscriptions are ignored.
func (h *Hub) Unsubscribe(s *Subscription) {
	h.mu.Lock()
	_, ok := h.subs[s.id]
	delete(h.subs, s.id)
	total := len(h.subs)
	h.mu.Unlock()

	if ok {
		slog.Info("subscriber unregistered", "id", s.id, "name", s.name, "total", total)
	}
}

// Notify signals every subscriber without blocking.
func (h *Hub) Notify() {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, s := range h.subs {
		select {
		case s.ch <- struct{}{}:
		default:
			// A signal is already pending; it covers this change too.
		}
	}
}

// Subscribers returns a snapshot of current subscriptions, oldest first.
func (h *Hub) Subscribers() []SubscriberInfo {
	h.mu.RLock()
	out := make([]SubscriberInfo, 0, len(h.subs))
	for _, s := range h.subs {
		out = append(out, SubscriberInfo{ID: s.id, Name: s.name, ConnectedAt: s.created})
	}
	h.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ConnectedAt.Before(out[j].ConnectedAt) })
	return out
}
