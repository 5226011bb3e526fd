// Package sync keeps the diagram and its text representation aligned
// without feedback loops.
//
// Diagram edits schedule a debounced export: rapid edits collapse into
// one text regeneration on the trailing edge. Before the exported text
// is pushed into the editor, the guard is armed; the text-change event
// that export triggers is then recognized as our own and not imported
// back. The guard clears itself after a bounded timeout, so a lost
// event cannot suppress real text edits forever.
package sync

import (
	"context"
	"sync"
	"time"

	"github.com/schemadraw/schemadraw/pkg/observability"
)

// Defaults for the sync loop.
const (
	// DefaultDebounce is the trailing-edge delay before an export fires.
	DefaultDebounce = 300 * time.Millisecond

	// DefaultGuardTimeout bounds how long a pending export suppresses
	// incoming text changes.
	DefaultGuardTimeout = 2 * time.Second
)

// Debouncer coalesces diagram edits into one deferred export. Safe for
// concurrent use.
type Debouncer struct {
	mu        sync.Mutex
	diagramID string
	delay     time.Duration
	flush     func(ctx context.Context) error
	timer     *time.Timer
	stopped   bool
}

// NewDebouncer creates a debouncer that calls flush once per burst of
// Schedule calls. A non-positive delay falls back to DefaultDebounce.
func NewDebouncer(diagramID string, delay time.Duration, flush func(ctx context.Context) error) *Debouncer {
	if delay <= 0 {
		delay = DefaultDebounce
	}
	return &Debouncer{diagramID: diagramID, delay: delay, flush: flush}
}

// Schedule arms (or re-arms) the export timer. Each call pushes the
// trailing edge out by the full delay.
func (d *Debouncer) Schedule(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	observability.Sync().OnExportScheduled(ctx, d.diagramID, d.delay)
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(ctx)
	})
}

// Flush runs a pending export immediately and cancels the timer. It is
// a no-op when nothing is scheduled.
func (d *Debouncer) Flush(ctx context.Context) {
	d.mu.Lock()
	if d.timer == nil || !d.timer.Stop() {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()
	d.fire(ctx)
}

// Stop cancels any pending export and rejects future schedules.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

func (d *Debouncer) fire(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	start := time.Now()
	err := d.flush(ctx)
	observability.Sync().OnExportFlushed(ctx, d.diagramID, time.Since(start), err)
}

// Guard suppresses the import echo of our own export. Arm it right
// before pushing exported text into the editor; the next Suppress call
// within the timeout consumes the armed state.
type Guard struct {
	mu      sync.Mutex
	timeout time.Duration
	armedAt time.Time
	armed   bool
}

// NewGuard creates a guard. A non-positive timeout falls back to
// DefaultGuardTimeout.
func NewGuard(timeout time.Duration) *Guard {
	if timeout <= 0 {
		timeout = DefaultGuardTimeout
	}
	return &Guard{timeout: timeout}
}

// Arm marks the next text change as self-inflicted.
func (g *Guard) Arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.armed = true
	g.armedAt = time.Now()
}

// Suppress reports whether an incoming text change should be dropped.
// An armed guard is consumed by the call; a guard armed longer ago than
// the timeout has expired and suppresses nothing.
func (g *Guard) Suppress(ctx context.Context, diagramID string) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.armed {
		return false
	}
	g.armed = false
	if time.Since(g.armedAt) > g.timeout {
		return false
	}
	observability.Sync().OnCycleSuppressed(ctx, diagramID)
	return true
}
