package watcher

import (
	"sync"
	"time"
)

// DefaultDebounceDuration coalesces the event bursts that editors and bulk
// writes produce into a single reload.
const DefaultDebounceDuration = 250 * time.Millisecond

// Debouncer delays a callback until triggers stop arriving for its duration.
// Each Trigger restarts the clock and replaces the pending callback.
type Debouncer struct {
	mu       sync.Mutex
	duration time.Duration
	timer    *time.Timer
}

// NewDebouncer creates a debouncer. A non-positive duration falls back to
// DefaultDebounceDuration.
func NewDebouncer(d time.Duration) *Debouncer {
	if d <= 0 {
		d = DefaultDebounceDuration
	}
	return &Debouncer{duration: d}
}

// Trigger schedules fn to run after the debounce duration, cancelling any
// previously scheduled callback.
func (b *Debouncer) Trigger(fn func()) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
	}
	b.timer = time.AfterFunc(b.duration, fn)
}

// Cancel drops any pending callback.
func (b *Debouncer) Cancel() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.timer != nil {
		b.timer.Stop()
		b.timer = nil
	}
}

// Duration returns the configured debounce duration.
func (b *Debouncer) Duration() time.Duration {
	return b.duration
}
