// Package schedule coalesces bursts of calls into a single delayed execution.
package schedule

import (
	"sync"
	"time"
)

// DefaultDelay is the quiet period used by the editor between keystrokes.
const DefaultDelay = 250 * time.Millisecond

// Debouncer owns one timer handle. Every Trigger replaces the handle, so only
// the most recent request can ever fire. fn takes no arguments and reads
// whatever state is current when the quiet period elapses.
type Debouncer struct {
	delay time.Duration
	fn    func()

	mu      sync.Mutex
	timer   *time.Timer
	gen     uint64
	stopped bool
}

// NewDebouncer wraps fn. A non-positive delay falls back to DefaultDelay.
func NewDebouncer(delay time.Duration, fn func()) *Debouncer {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer{delay: delay, fn: fn}
}

// Delay returns the configured quiet period.
func (d *Debouncer) Delay() time.Duration {
	return d.delay
}

// Trigger restarts the quiet period, silently superseding any pending firing.
func (d *Debouncer) Trigger() {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}

	d.invalidateLocked()
	gen := d.gen
	d.timer = time.AfterFunc(d.delay, func() {
		d.fire(gen)
	})
}

// Pending reports whether a firing is scheduled.
func (d *Debouncer) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}

// Cancel drops the pending firing, if any, and reports whether one existed.
func (d *Debouncer) Cancel() bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	pending := d.timer != nil
	d.invalidateLocked()
	return pending
}

// Flush runs fn immediately on the caller's goroutine if a firing was
// pending. It reports whether fn ran.
func (d *Debouncer) Flush() bool {
	if !d.Cancel() {
		return false
	}
	d.fn()
	return true
}

// Stop cancels any pending firing and makes further Triggers no-ops.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.invalidateLocked()
	d.stopped = true
}

// invalidateLocked stops the current timer and bumps the generation so a
// callback that already left the timer but has not taken the lock yet sees
// it has been superseded.
func (d *Debouncer) invalidateLocked() {
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
	d.gen++
}

func (d *Debouncer) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	d.timer = nil
	d.mu.Unlock()

	d.fn()
}
