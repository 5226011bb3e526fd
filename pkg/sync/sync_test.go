package sync

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerCoalesces(t *testing.T) {
	var flushes atomic.Int32
	d := NewDebouncer("d1", 20*time.Millisecond, func(ctx context.Context) error {
		flushes.Add(1)
		return nil
	})
	defer d.Stop()

	ctx := context.Background()
	for i := 0; i < 5; i++ {
		d.Schedule(ctx)
		time.Sleep(2 * time.Millisecond)
	}

	time.Sleep(150 * time.Millisecond)
	if got := flushes.Load(); got != 1 {
		t.Errorf("flushes = %d, want 1 (burst must coalesce)", got)
	}
}

func TestDebouncerFlushRunsImmediately(t *testing.T) {
	var flushes atomic.Int32
	d := NewDebouncer("d1", time.Hour, func(ctx context.Context) error {
		flushes.Add(1)
		return nil
	})
	defer d.Stop()

	ctx := context.Background()
	d.Schedule(ctx)
	d.Flush(ctx)
	if got := flushes.Load(); got != 1 {
		t.Fatalf("flushes = %d, want 1", got)
	}

	// Nothing pending anymore: a second flush is a no-op.
	d.Flush(ctx)
	if got := flushes.Load(); got != 1 {
		t.Errorf("flushes after duplicate Flush = %d, want 1", got)
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	var flushes atomic.Int32
	d := NewDebouncer("d1", 20*time.Millisecond, func(ctx context.Context) error {
		flushes.Add(1)
		return nil
	})

	ctx := context.Background()
	d.Schedule(ctx)
	d.Stop()
	d.Schedule(ctx) // ignored after Stop

	time.Sleep(100 * time.Millisecond)
	if got := flushes.Load(); got != 0 {
		t.Errorf("flushes = %d, want 0 after Stop", got)
	}
}

func TestDebouncerHonorsCanceledContext(t *testing.T) {
	var flushes atomic.Int32
	d := NewDebouncer("d1", 10*time.Millisecond, func(ctx context.Context) error {
		flushes.Add(1)
		return nil
	})
	defer d.Stop()

	ctx, cancel := context.WithCancel(context.Background())
	d.Schedule(ctx)
	cancel()

	time.Sleep(100 * time.Millisecond)
	if got := flushes.Load(); got != 0 {
		t.Errorf("flushes = %d, want 0 for canceled context", got)
	}
}

func TestGuardConsumesOneEcho(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(time.Second)

	if g.Suppress(ctx, "d1") {
		t.Error("unarmed guard must not suppress")
	}

	g.Arm()
	if !g.Suppress(ctx, "d1") {
		t.Error("armed guard must suppress the first change")
	}
	if g.Suppress(ctx, "d1") {
		t.Error("guard must be consumed by one suppression")
	}
}

func TestGuardExpires(t *testing.T) {
	ctx := context.Background()
	g := NewGuard(10 * time.Millisecond)

	g.Arm()
	time.Sleep(50 * time.Millisecond)
	if g.Suppress(ctx, "d1") {
		t.Error("expired guard must not suppress")
	}
}

func TestGateThrottles(t *testing.T) {
	g := NewGate(10) // one slot per 100ms

	if !g.Allow() {
		t.Fatal("first event must pass")
	}
	if g.Allow() {
		t.Error("second immediate event must be dropped")
	}

	time.Sleep(150 * time.Millisecond)
	if !g.Allow() {
		t.Error("event after the interval must pass")
	}
}
