package poller

import (
	"context"
	"log/slog"

	"go.klb.dev/cliplog/internal/history"
)

const previewLen = 120

// logEntry logs a history event at INFO (content length, timestamp) and at
// DEBUG with a text preview of up to 120 characters.
func logEntry(event string, e history.Entry) {
	slog.Info(event, "timestamp", e.Timestamp, "bytes", len(e.Content))

	if !slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		return
	}
	preview := []rune(e.Content)
	if len(preview) > previewLen {
		preview = append(preview[:previewLen], '…')
	}
	slog.Debug("clipboard entry", "preview", string(preview))
}
