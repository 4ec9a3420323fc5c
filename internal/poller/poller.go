// Package poller implements the loop that samples the system clipboard and
// records each new distinct text value in the history.
package poller

import (
	"context"
	"log/slog"
	"sync/atomic"
	"time"

	"go.klb.dev/cliplog/internal/clip"
	"go.klb.dev/cliplog/internal/history"
)

// DefaultInterval is the pause between two clipboard probes.
const DefaultInterval = 500 * time.Millisecond

// Notifier is told that the history changed. It must not block.
type Notifier interface {
	Notify()
}

// Option configures a Poller.
type Option func(*Poller)

// WithInterval sets the pause between ticks. Non-positive values are ignored.
func WithInterval(d time.Duration) Option {
	return func(p *Poller) {
		if d > 0 {
			p.interval = d
		}
	}
}

// WithClock replaces time.Now for entry timestamps.
func WithClock(now func() time.Time) Option {
	return func(p *Poller) {
		if now != nil {
			p.now = now
		}
	}
}

// Stats are cumulative counters since the poller was created.
type Stats struct {
	Ticks        uint64 `json:"ticks"`
	Entries      uint64 `json:"entries"`
	ReadFailures uint64 `json:"read_failures"`
	Oversize     uint64 `json:"oversize"`
}

// Poller is the single writer of a history.Store. Run it in one goroutine
// only; lastSeen is not guarded.
type Poller struct {
	backend  clip.Backend
	store    *history.Store
	notifier Notifier
	interval time.Duration
	now      func() time.Time

	lastSeen     string
	lastOversize string

	ticks        atomic.Uint64
	entries      atomic.Uint64
	readFailures atomic.Uint64
	oversize     atomic.Uint64
}

// New returns a poller that is not yet running.
func New(backend clip.Backend, store *history.Store, notifier Notifier, opts ...Option) *Poller {
	p := &Poller{
		backend:  backend,
		store:    store,
		notifier: notifier,
		interval: DefaultInterval,
		now:      time.Now,
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Interval returns the configured pause between ticks.
func (p *Poller) Interval() time.Duration { return p.interval }

// Stats returns a snapshot of the poller's counters.
func (p *Poller) Stats() Stats {
	return Stats{
		Ticks:        p.ticks.Load(),
		Entries:      p.entries.Load(),
		ReadFailures: p.readFailures.Load(),
		Oversize:     p.oversize.Load(),
	}
}

// Run ticks, then sleeps the interval, until ctx is done. It returns ctx.Err().
func (p *Poller) Run(ctx context.Context) error {
	slog.Info("clipboard poller started", "backend", p.backend.Name(), "interval", p.interval)

	t := time.NewTimer(0)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			slog.Info("clipboard poller stopped")
			return ctx.Err()
		case <-t.C:
			p.Tick()
			t.Reset(p.interval)
		}
	}
}

// Tick probes the clipboard once and reports whether an entry was recorded.
// Read failures, empty text and text equal to the last recorded value are
// dropped silently. Text longer than history.MaxEntrySize is dropped with one
// warning per distinct value.
func (p *Poller) Tick() bool {
	p.ticks.Add(1)

	text, err := p.backend.ReadText()
	if err != nil {
		p.readFailures.Add(1)
		slog.Debug("clipboard read failed", "err", err)
		return false
	}
	if text == "" || text == p.lastSeen {
		return false
	}
	if len(text) > history.MaxEntrySize {
		if text != p.lastOversize {
			p.lastOversize = text
			p.oversize.Add(1)
			slog.Warn("clipboard text too large to record", "bytes", len(text), "max", history.MaxEntrySize)
		}
		return false
	}

	e := history.NewEntry(text, p.now())
	p.store.Append(e)
	p.lastSeen = text
	p.lastOversize = ""
	p.entries.Add(1)

	logEntry("clipboard entry recorded", e)
	p.notifier.Notify()
	return true
}
