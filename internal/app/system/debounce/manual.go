package debounce

import (
	"sync"
	"time"
)

// ManualClock is a Clock whose timers only fire when RunPending is called.
// Tests use it to flush a debounce window deterministically.
type ManualClock struct {
	mu      sync.Mutex
	pending []*manualTimer
}

type manualTimer struct {
	clock   *ManualClock
	delay   time.Duration
	f       func()
	stopped bool
}

// NewManualClock returns an empty ManualClock.
func NewManualClock() *ManualClock { return &ManualClock{} }

// AfterFunc records f; it runs on the next RunPending unless stopped.
func (c *ManualClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &manualTimer{clock: c, delay: d, f: f}
	c.pending = append(c.pending, t)
	return t
}

func (t *manualTimer) Stop() bool {
	t.clock.mu.Lock()
	defer t.clock.mu.Unlock()
	if t.stopped {
		return false
	}
	t.stopped = true
	return true
}

// Len returns the number of scheduled timers that have not been stopped.
func (c *ManualClock) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := 0
	for _, t := range c.pending {
		if !t.stopped {
			n++
		}
	}
	return n
}

// RunPending fires every timer scheduled before the call, in scheduling
// order, on the calling goroutine. Timers scheduled by those callbacks
// wait for the next RunPending. It returns how many callbacks ran.
func (c *ManualClock) RunPending() int {
	c.mu.Lock()
	batch := c.pending
	c.pending = nil
	var due []func()
	for _, t := range batch {
		if !t.stopped {
			t.stopped = true
			due = append(due, t.f)
		}
	}
	c.mu.Unlock()

	for _, f := range due {
		f()
	}
	return len(due)
}
