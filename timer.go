package msglog

import (
	"fmt"
	"sync"
	"time"
)

// Clock is the time source for timestamps and elapsed-time fragments.
type Clock interface {
	Now() time.Time
}

// ClockFunc adapts a function to Clock.
type ClockFunc func() time.Time

func (f ClockFunc) Now() time.Time { return f() }

// SystemClock reads the wall clock.
var SystemClock Clock = ClockFunc(time.Now)

// Timer measures time since it was started and since it was last read.
type Timer struct {
	clock Clock
	mu    sync.Mutex
	start time.Time
	last  time.Time
}

// NewTimer starts a timer on clock (SystemClock when nil).
func NewTimer(clock Clock) *Timer {
	if clock == nil {
		clock = SystemClock
	}
	now := clock.Now()
	return &Timer{clock: clock, start: now, last: now}
}

// Elapsed returns the time since start and since the previous Elapsed call.
func (t *Timer) Elapsed() (total, interval time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.clock.Now()
	total = now.Sub(t.start)
	interval = now.Sub(t.last)
	t.last = now
	return total, interval
}

// Reset restarts the timer.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.start = t.clock.Now()
	t.last = t.start
}

// formatElapsed renders "<total>ms (<interval>ms)".
func formatElapsed(total, interval time.Duration) string {
	return fmt.Sprintf("%dms (%dms)", total.Milliseconds(), interval.Milliseconds())
}
