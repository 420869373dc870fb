// Package debounce provides a single-slot, cancellable debounce timer.
//
// A Debouncer owns at most one pending timer. Each call to Trigger stops
// the pending timer (if any) and schedules the new callback, so only the
// most recent call within the delay window runs. Cancel drops the pending
// callback without scheduling another; Close does the same and makes every
// later Trigger a no-op.
//
// Timers come from a Clock so tests can run pending callbacks on demand
// with ManualClock instead of sleeping.
package debounce

import (
	"sync"
	"time"
)

// Timer is the handle returned by Clock.AfterFunc.
type Timer interface {
	Stop() bool
}

// Clock schedules callbacks.
type Clock interface {
	AfterFunc(d time.Duration, f func()) Timer
}

type realClock struct{}

func (realClock) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

// RealClock returns a Clock backed by time.AfterFunc.
func RealClock() Clock { return realClock{} }

// Debouncer delays a callback until Trigger has not been called for the
// configured delay. It is safe for concurrent use.
type Debouncer struct {
	mu     sync.Mutex
	clock  Clock
	delay  time.Duration
	timer  Timer
	gen    uint64
	closed bool
}

// New creates a Debouncer. A nil clock means the real clock.
func New(clock Clock, delay time.Duration) *Debouncer {
	if clock == nil {
		clock = RealClock()
	}
	return &Debouncer{clock: clock, delay: delay}
}

// Trigger replaces any pending callback with f. It returns false when the
// debouncer is closed and f was not scheduled.
func (d *Debouncer) Trigger(f func()) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.closed {
		return false
	}
	d.stopLocked()

	d.gen++
	gen := d.gen
	d.timer = d.clock.AfterFunc(d.delay, func() {
		// A timer that fired while Trigger or Cancel was stopping it must
		// not run: only the latest generation is live.
		d.mu.Lock()
		live := !d.closed && gen == d.gen
		if live {
			d.timer = nil
		}
		d.mu.Unlock()
		if live {
			f()
		}
	})
	return true
}

// Cancel drops the pending callback, if any. It reports whether one was
// pending.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.stopLocked()
}

// Pending reports whether a callback is scheduled and has not yet run.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Close cancels the pending callback and disables the debouncer.
func (d *Debouncer) Close() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopLocked()
	d.closed = true
}

func (d *Debouncer) stopLocked() bool {
	if d.timer == nil {
		return false
	}
	d.timer.Stop()
	d.timer = nil
	d.gen++
	return true
}
