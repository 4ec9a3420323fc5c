// Package message defines the cliplog request and response payloads.
//
// The same types travel over gRPC (JSON codec), the HTTP gateway and the
// newline-delimited event stream, so every field carries a JSON tag.
package message

import (
	"time"

	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/hub"
	"go.klb.dev/cliplog/internal/poller"
)

// EventClipboardUpdate is the only event type. It has no payload; receivers
// re-fetch the history.
const EventClipboardUpdate = "clipboard-update"

// HistoryRequest asks for the full history.
type HistoryRequest struct{}

// HistoryResponse carries the history, oldest first.
type HistoryResponse struct {
	Entries []history.Entry `json:"entries"`
}

// CopyRequest asks the daemon to put Content on the clipboard.
type CopyRequest struct {
	Content string `json:"content"`
}

// CopyResponse is empty on success.
type CopyResponse struct{}

// WatchRequest opens a stream of Events.
type WatchRequest struct {
	// Name identifies the subscriber in status output.
	Name string `json:"name,omitempty"`
}

// Event is one change signal.
type Event struct {
	Type string    `json:"type"`
	At   time.Time `json:"at"`
}

// NewUpdateEvent returns a clipboard-update event stamped with at.
func NewUpdateEvent(at time.Time) *Event {
	return &Event{Type: EventClipboardUpdate, At: at}
}

// StatusRequest asks for daemon status.
type StatusRequest struct{}

// StatusResponse describes the running daemon.
type StatusResponse struct {
	Version     string               `json:"version"`
	Backend     string               `json:"backend"`
	Size        int                  `json:"size"`
	Capacity    int                  `json:"capacity"`
	Interval    string               `json:"interval"`
	Poller      poller.Stats         `json:"poller"`
	Subscribers []hub.SubscriberInfo `json:"subscribers"`
	StartedAt   time.Time            `json:"started_at"`
}
