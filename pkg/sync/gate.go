package sync

import (
	"sync"
	"time"
)

// Transient event tiers. Pointer-chasing updates (hover, ghost drag)
// tolerate more loss than geometry updates, so they get the tighter
// budget.
const (
	// GeometryRate is the per-second budget for transient geometry
	// updates (drag and resize previews).
	GeometryRate = 60

	// PointerRate is the per-second budget for pointer broadcast
	// updates.
	PointerRate = 30
)

// Gate throttles a stream of transient updates to a fixed rate. Events
// over budget are dropped, not queued: a newer geometry update always
// supersedes a dropped one. Safe for concurrent use.
type Gate struct {
	mu       sync.Mutex
	interval time.Duration
	last     time.Time
}

// NewGate creates a gate admitting at most perSecond events per second.
func NewGate(perSecond int) *Gate {
	if perSecond <= 0 {
		perSecond = 1
	}
	return &Gate{interval: time.Second / time.Duration(perSecond)}
}

// Allow reports whether the event fits the budget, consuming a slot if
// it does.
func (g *Gate) Allow() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := time.Now()
	if now.Sub(g.last) < g.interval {
		return false
	}
	g.last = now
	return true
}
