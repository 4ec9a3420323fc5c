//go:build !windows

package daemon

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/gateway"
	"go.klb.dev/cliplog/internal/grpcservice"
	"go.klb.dev/cliplog/internal/history"
	"go.klb.dev/cliplog/internal/ipc"
	"go.klb.dev/cliplog/internal/message"
)

type running struct {
	path    string
	mem     *clip.Memory
	cancel  context.CancelFunc
	stopped chan struct{}
	err     error
}

func start(t *testing.T) *running {
	t.Helper()

	dir, err := os.MkdirTemp("", "cld")
	require.NoError(t, err)
	t.Cleanup(func() { _ = os.RemoveAll(dir) })
	path := filepath.Join(dir, "d.sock")

	mem := clip.NewMemory()
	ctx, cancel := context.WithCancel(context.Background())
	r := &running{path: path, mem: mem, cancel: cancel, stopped: make(chan struct{})}
	go func() {
		defer close(r.stopped)
		r.err = Run(ctx, Config{
			Socket:     path,
			Interval:   5 * time.Millisecond,
			Version:    "test",
			NewBackend: func(clip.Kind) (clip.Backend, error) { return mem, nil },
		})
	}()
	t.Cleanup(r.stop)
	require.Eventually(t, func() bool { return ipc.IsRunning(path) }, 5*time.Second, 10*time.Millisecond)
	return r
}

func (r *running) stop() {
	r.cancel()
	select {
	case <-r.stopped:
	case <-time.After(10 * time.Second):
	}
}

func TestDaemonGRPCRoundTrip(t *testing.T) {
	d := start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c, err := grpcservice.Dial(d.path)
	require.NoError(t, err)
	defer c.Close()

	st, err := c.Health(ctx)
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, st)

	events := make(chan *message.Event, 8)
	watchCtx, stopWatch := context.WithCancel(ctx)
	defer stopWatch()
	go func() {
		_ = c.Watch(watchCtx, "test", func(ev *message.Event) error {
			events <- ev
			return nil
		})
	}()
	require.Eventually(t, func() bool {
		s, err := c.Status(ctx)
		return err == nil && len(s.Subscribers) == 1
	}, 5*time.Second, 10*time.Millisecond)

	require.NoError(t, c.Copy(ctx, "hello"))

	select {
	case ev := <-events:
		assert.Equal(t, message.EventClipboardUpdate, ev.Type)
	case <-time.After(5 * time.Second):
		t.Fatal("no clipboard-update event")
	}

	entries, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "hello", entries[0].Content)
}

func TestDaemonHTTPGateway(t *testing.T) {
	d := start(t)
	require.NoError(t, d.mem.WriteText("from the system"))

	c := gateway.Dial(d.path)
	defer c.Close()
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	require.Eventually(t, func() bool {
		entries, err := c.History(ctx)
		return err == nil && len(entries) == 1 && entries[0].Content == "from the system"
	}, 5*time.Second, 10*time.Millisecond)
}

func TestDaemonServesLargeHistory(t *testing.T) {
	d := start(t)
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Second)
	defer cancel()

	c, err := grpcservice.Dial(d.path)
	require.NoError(t, err)
	defer c.Close()

	for i := range 5 {
		require.NoError(t, d.mem.WriteText(strings.Repeat(string(rune('a'+i)), 1<<20)))
		require.Eventually(t, func() bool {
			s, err := c.Status(ctx)
			return err == nil && s.Size == i+1
		}, 5*time.Second, 10*time.Millisecond)
	}

	entries, err := c.History(ctx)
	require.NoError(t, err)
	require.Len(t, entries, 5)
	for i, e := range entries {
		assert.Equal(t, strings.Repeat(string(rune('a'+i)), 1<<20), e.Content)
	}

	big := strings.Repeat("z", history.MaxEntrySize+1)
	require.NoError(t, c.Copy(ctx, big))
	require.Eventually(t, func() bool {
		s, err := c.Status(ctx)
		return err == nil && s.Poller.Oversize == 1
	}, 5*time.Second, 10*time.Millisecond)
	text, err := d.mem.ReadText()
	require.NoError(t, err)
	assert.Len(t, text, history.MaxEntrySize+1)

	st, err := c.Status(ctx)
	require.NoError(t, err)
	assert.Equal(t, 5, st.Size, "oversize text reaches the clipboard but not the history")
}

func TestDaemonShutdownEndsOpenWatchers(t *testing.T) {
	d := start(t)
	ctx := context.Background()

	gc, err := grpcservice.Dial(d.path)
	require.NoError(t, err)
	defer gc.Close()
	hc := gateway.Dial(d.path)
	defer hc.Close()

	noop := func(*message.Event) error { return nil }
	done := make(chan error, 2)
	go func() { done <- gc.Watch(ctx, "grpc", noop) }()
	go func() { done <- hc.Watch(ctx, "http", noop) }()

	require.Eventually(t, func() bool {
		s, err := gc.Status(ctx)
		return err == nil && len(s.Subscribers) == 2
	}, 5*time.Second, 10*time.Millisecond)

	began := time.Now()
	d.cancel()
	select {
	case <-d.stopped:
		require.NoError(t, d.err)
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
	assert.Less(t, time.Since(began), shutdownTimeout, "open watchers must not hold up shutdown")

	for range 2 {
		select {
		case <-done:
		case <-time.After(5 * time.Second):
			t.Fatal("watcher did not return")
		}
	}
}

func TestDaemonShutdownRemovesSocket(t *testing.T) {
	d := start(t)
	d.cancel()

	select {
	case <-d.stopped:
		require.NoError(t, d.err)
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
	_, err := os.Stat(d.path)
	assert.True(t, os.IsNotExist(err))
}

func TestDaemonRejectsUnknownBackend(t *testing.T) {
	err := Run(context.Background(), Config{Backend: clip.Kind("bogus")})
	require.Error(t, err)
}
