package debounce

import (
	"sync"
	"time"
)

// CancellableDelay holds at most one deferred callback. Arm replaces any
// previously armed callback that has not fired yet, which is exactly the
// debounce-with-reset contract: a superseded timer is cancelled, never left to
// fire on its own.
type CancellableDelay struct {
	mu    sync.Mutex
	clock Clock
	timer Timer
	gen   uint64
}

func NewCancellableDelay(clock Clock) *CancellableDelay {
	if clock == nil {
		clock = SystemClock()
	}
	return &CancellableDelay{clock: clock}
}

// Arm schedules fn to run after d, cancelling any pending callback first.
func (c *CancellableDelay) Arm(d time.Duration, fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer != nil {
		c.timer.Stop()
		c.timer = nil
	}

	c.gen++
	gen := c.gen
	c.timer = c.clock.AfterFunc(d, func() {
		// A stale timer that lost the Stop race must stay silent.
		c.mu.Lock()
		if gen != c.gen {
			c.mu.Unlock()
			return
		}
		c.timer = nil
		c.mu.Unlock()
		fn()
	})
}

// Cancel stops the pending callback. It reports whether one was pending.
func (c *CancellableDelay) Cancel() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.timer == nil {
		return false
	}
	c.timer.Stop()
	c.timer = nil
	c.gen++
	return true
}

// Armed reports whether a callback is currently pending.
func (c *CancellableDelay) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.timer != nil
}
