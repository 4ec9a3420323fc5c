// Package access is what front ends call: read the history, or put a value
// back on the clipboard.
package access

import (
	"fmt"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/history"
)

// ClipboardAccessError reports that the platform clipboard could not be
// written. Err carries the platform's message.
type ClipboardAccessError struct {
	Err error
}

func (e *ClipboardAccessError) Error() string {
	return fmt.Sprintf("clipboard access: %v", e.Err)
}

func (e *ClipboardAccessError) Unwrap() error { return e.Err }

// Facade exposes the history store and the clipboard to front ends.
type Facade struct {
	store   *history.Store
	backend clip.Backend
}

// New returns a Facade over store and backend.
func New(store *history.Store, backend clip.Backend) *Facade {
	return &Facade{store: store, backend: backend}
}

// Read returns the full history, oldest first.
func (f *Facade) Read() []history.Entry {
	return f.store.Snapshot()
}

// Write puts content on the clipboard. It does not touch the history: the
// poller records the value on its next tick unless it equals the last
// recorded one.
func (f *Facade) Write(content string) error {
	if err := f.backend.WriteText(content); err != nil {
		return &ClipboardAccessError{Err: err}
	}
	return nil
}
