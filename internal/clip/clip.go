// Package clip adapts the system clipboard to the small text-only surface the
// poller and the copy path need. Backends:
//
//	native  — golang.design/x/clipboard (Cocoa, Win32, X11 via cgo)
//	exec    — github.com/atotto/clipboard (pbcopy, clip.exe, xclip/xsel/wl-clipboard)
//	memory  — in-process clipboard for headless hosts and tests
//
// "auto" tries them in that order.
package clip

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
)

// Backend is the interface every clipboard implementation satisfies.
type Backend interface {
	// Name returns a human-readable name for the backend.
	Name() string

	// ReadText returns the current clipboard text. An empty string with a nil
	// error means the clipboard is empty or holds no text.
	ReadText() (string, error)

	// WriteText replaces the clipboard contents with text. The returned error
	// carries the platform's message.
	WriteText(text string) error

	// Close releases any resources held by the backend.
	Close()
}

// Kind selects a backend implementation.
type Kind string

const (
	KindAuto   Kind = "auto"
	KindNative Kind = "native"
	KindExec   Kind = "exec"
	KindMemory Kind = "memory"
)

// ErrWriteRejected is returned by the native backend when the platform
// refuses a write. The underlying library does not expose the cause.
var ErrWriteRejected = errors.New("clipboard write rejected by the platform")

// ParseKind converts a config string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch k := Kind(strings.ToLower(strings.TrimSpace(s))); k {
	case "":
		return KindAuto, nil
	case KindAuto, KindNative, KindExec, KindMemory:
		return k, nil
	default:
		return "", fmt.Errorf("unknown clipboard backend %q (want auto|native|exec|memory)", s)
	}
}

// New returns the backend for kind. With KindAuto a backend that fails to
// initialise is skipped with a warning; the in-memory backend is the last
// resort so a headless host still runs.
func New(kind Kind) (Backend, error) {
	switch kind {
	case KindNative:
		return newNative()
	case KindExec:
		return newExec()
	case KindMemory:
		return NewMemory(), nil
	case KindAuto, "":
	default:
		return nil, fmt.Errorf("unknown clipboard backend %q", kind)
	}

	b, err := newNative()
	if err == nil {
		return b, nil
	}
	slog.Warn("native clipboard unavailable, trying external tools", "err", err)

	b, err = newExec()
	if err == nil {
		return b, nil
	}
	slog.Warn("clipboard unavailable, running headless", "err", err)
	return NewMemory(), nil
}
