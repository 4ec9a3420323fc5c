package clip

import (
	"fmt"

	"golang.design/x/clipboard"
)

type nativeBackend struct{}

// clipboard.Init is called here rather than in init() so that CLI commands
// that never construct a Backend don't touch the display server.
func newNative() (Backend, error) {
	if err := clipboard.Init(); err != nil {
		return nil, fmt.Errorf("clipboard init: %w", err)
	}
	return &nativeBackend{}, nil
}

func (b *nativeBackend) Name() string { return "native (golang.design/x/clipboard)" }

func (b *nativeBackend) ReadText() (string, error) {
	return string(clipboard.Read(clipboard.FmtText)), nil
}

func (b *nativeBackend) WriteText(text string) error {
	// A nil change channel is how the library reports a failed write.
	if clipboard.Write(clipboard.FmtText, []byte(text)) == nil {
		return ErrWriteRejected
	}
	return nil
}

func (b *nativeBackend) Close() {}
