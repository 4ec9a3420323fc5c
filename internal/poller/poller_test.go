package poller

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go.klb.dev/cliplog/internal/history"
)

// scriptedBackend returns queued reads in order, then repeats the last one.
type scriptedBackend struct {
	mu    sync.Mutex
	reads []read
}

type read struct {
	text string
	err  error
}

func (b *scriptedBackend) Name() string { return "scripted" }

func (b *scriptedBackend) ReadText() (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	r := b.reads[0]
	if len(b.reads) > 1 {
		b.reads = b.reads[1:]
	}
	return r.text, r.err
}

func (b *scriptedBackend) WriteText(string) error { return nil }
func (b *scriptedBackend) Close()                 {}

func script(reads ...read) *scriptedBackend { return &scriptedBackend{reads: reads} }

type countingNotifier struct{ n atomic.Int32 }

func (c *countingNotifier) Notify() { c.n.Add(1) }

var fixed = time.Date(2025, time.June, 1, 12, 30, 45, 0, time.Local)

func newPoller(b *scriptedBackend, opts ...Option) (*Poller, *history.Store, *countingNotifier) {
	store := history.New(0)
	n := &countingNotifier{}
	opts = append([]Option{WithClock(func() time.Time { return fixed })}, opts...)
	return New(b, store, n, opts...), store, n
}

func TestTickRecordsNewText(t *testing.T) {
	p, store, n := newPoller(script(read{text: "hello"}))

	require.True(t, p.Tick())

	assert.Equal(t, []history.Entry{{Content: "hello", Timestamp: "2025-06-01 12:30:45"}}, store.Snapshot())
	assert.EqualValues(t, 1, n.n.Load())
}

func TestTickDedupsConsecutiveReads(t *testing.T) {
	p, store, n := newPoller(script(read{text: "same"}, read{text: "same"}))

	assert.True(t, p.Tick())
	assert.False(t, p.Tick())

	assert.Equal(t, 1, store.Len())
	assert.EqualValues(t, 1, n.n.Load())
}

func TestTickSuppressesEmptyText(t *testing.T) {
	p, store, n := newPoller(script(read{text: ""}, read{text: "a"}, read{text: ""}, read{text: "a"}))

	assert.False(t, p.Tick())
	assert.True(t, p.Tick())
	assert.False(t, p.Tick(), "empty text is never recorded")
	assert.False(t, p.Tick(), "an empty read does not reset the last seen value")

	assert.Equal(t, 1, store.Len())
	assert.EqualValues(t, 1, n.n.Load())
}

func TestTickSwallowsReadErrors(t *testing.T) {
	p, store, n := newPoller(script(
		read{err: errors.New("clipboard busy")},
		read{text: "after"},
	))

	assert.False(t, p.Tick())
	assert.True(t, p.Tick())

	assert.Equal(t, 1, store.Len())
	assert.EqualValues(t, 1, n.n.Load())
	assert.Equal(t, Stats{Ticks: 2, Entries: 1, ReadFailures: 1}, p.Stats())
}

func TestTickRecordsRepeatAfterChange(t *testing.T) {
	p, store, _ := newPoller(script(read{text: "a"}, read{text: "b"}, read{text: "a"}))

	p.Tick()
	p.Tick()
	p.Tick()

	snap := store.Snapshot()
	require.Len(t, snap, 3)
	assert.Equal(t, []string{"a", "b", "a"}, []string{snap[0].Content, snap[1].Content, snap[2].Content})
}

func TestWithIntervalIgnoresNonPositive(t *testing.T) {
	p, _, _ := newPoller(script(read{}), WithInterval(0))
	assert.Equal(t, DefaultInterval, p.Interval())

	p, _, _ = newPoller(script(read{}), WithInterval(10*time.Millisecond))
	assert.Equal(t, 10*time.Millisecond, p.Interval())
}

func TestRunStopsOnCancel(t *testing.T) {
	p, store, _ := newPoller(script(read{text: "x"}), WithInterval(time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()

	require.Eventually(t, func() bool { return store.Len() == 1 }, time.Second, time.Millisecond)
	require.Eventually(t, func() bool { return p.Stats().Ticks > 3 }, time.Second, time.Millisecond)
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
	assert.Equal(t, 1, store.Len(), "repeated reads of the same text record one entry")
}

func TestTickSkipsOversizeText(t *testing.T) {
	big := strings.Repeat("x", history.MaxEntrySize+1)
	p, store, n := newPoller(script(read{text: "a"}, read{text: big}, read{text: big}, read{text: "b"}))

	assert.True(t, p.Tick())
	assert.False(t, p.Tick())
	assert.False(t, p.Tick())
	assert.True(t, p.Tick())

	snap := store.Snapshot()
	require.Len(t, snap, 2)
	assert.Equal(t, "a", snap[0].Content)
	assert.Equal(t, "b", snap[1].Content)
	assert.Equal(t, int32(2), n.n.Load())
	assert.Equal(t, uint64(1), p.Stats().Oversize, "one warning per distinct oversize value")
}

func TestTickRecordsTextAtSizeLimit(t *testing.T) {
	limit := strings.Repeat("y", history.MaxEntrySize)
	p, store, _ := newPoller(script(read{text: limit}))

	require.True(t, p.Tick())
	assert.Len(t, store.Snapshot()[0].Content, history.MaxEntrySize)
}

func TestLogEntry(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	logEntry("recorded", history.Entry{Content: strings.Repeat("z", 200), Timestamp: "2025-06-01 12:30:45"})

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"bytes":200`)
	assert.Contains(t, lines[0], `"timestamp":"2025-06-01 12:30:45"`)
	assert.Contains(t, lines[1], `"preview":"`+strings.Repeat("z", 120)+`…"`)
}
