// Package history holds the bounded, insertion-ordered clipboard history.
//
// The store is safe for concurrent use. Its lock is held only while an entry
// is appended (and the oldest evicted) or while a snapshot is copied, never
// across clipboard calls or notifications.
package history

import (
	"sync"
	"time"
)

const (
	// DefaultCapacity is the number of entries kept before the oldest is evicted.
	DefaultCapacity = 100

	// TimestampLayout formats entry timestamps: local time, second resolution.
	TimestampLayout = "2006-01-02 15:04:05"

	// MaxEntrySize is the largest clipboard text, in bytes, that is recorded.
	MaxEntrySize = 4 << 20
)

// Entry is one recorded clipboard value with its capture time.
type Entry struct {
	Content   string `json:"content"`
	Timestamp string `json:"timestamp"`
}

// NewEntry stamps content with t formatted by TimestampLayout in t's location.
func NewEntry(content string, t time.Time) Entry {
	return Entry{Content: content, Timestamp: t.Format(TimestampLayout)}
}

// Store is a capacity-capped sequence of entries, oldest first.
type Store struct {
	mu       sync.Mutex
	entries  []Entry
	capacity int
}

// New returns an empty store. A capacity <= 0 selects DefaultCapacity.
func New(capacity int) *Store {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Store{
		entries:  make([]Entry, 0, capacity),
		capacity: capacity,
	}
}

// Append adds e at the end, evicting the oldest entry if the store would
// exceed its capacity.
func (s *Store) Append(e Entry) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.entries) == s.capacity {
		// Shift in place so the backing array never grows past capacity.
		copy(s.entries, s.entries[1:])
		s.entries[len(s.entries)-1] = e
		return
	}
	s.entries = append(s.entries, e)
}

// Snapshot returns a copy of the current entries, oldest first.
func (s *Store) Snapshot() []Entry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}

// Len returns the number of stored entries.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

// Cap returns the maximum number of entries.
func (s *Store) Cap() int { return s.capacity }
