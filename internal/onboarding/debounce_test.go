package onboarding

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestDebouncerNewestWins(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(20 * time.Millisecond)

	var first, second atomic.Int32
	d.Trigger(func() { first.Add(1) })
	d.Trigger(func() { second.Add(1) })

	time.Sleep(80 * time.Millisecond)

	if first.Load() != 0 {
		t.Fatalf("superseded trigger must not fire")
	}
	if second.Load() != 1 {
		t.Fatalf("expected newest trigger to fire once, got %d", second.Load())
	}
}

func TestDebouncerStopCancelsPending(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(20 * time.Millisecond)

	var fired atomic.Int32
	d.Trigger(func() { fired.Add(1) })
	d.Stop()

	time.Sleep(60 * time.Millisecond)

	if fired.Load() != 0 {
		t.Fatalf("stopped debouncer must not fire pending callback")
	}

	d.Trigger(func() { fired.Add(1) })
	time.Sleep(60 * time.Millisecond)
	if fired.Load() != 0 {
		t.Fatalf("stopped debouncer must reject new triggers")
	}
}

func TestDebouncerZeroDelayFiresImmediately(t *testing.T) {
	t.Parallel()

	d := NewDebouncer(0)

	done := make(chan struct{})
	d.Trigger(func() { close(done) })

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatalf("zero-delay trigger never fired")
	}
}
