// Package clock supplies the time source for settlement.
//
// All ledger time is whole unix seconds as int64. A Clock must never return a
// value smaller than one it returned before.
package clock

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock returns the current time in unix seconds.
type Clock interface {
	Now() int64
}

// System reads the wall clock and clamps it so it never steps backward
// within the process, even if the host clock is adjusted.
//
// Thread-safety: System is safe for concurrent use (atomic operations).
type System struct {
	last atomic.Int64
	now  func() time.Time
}

// NewSystem creates a System clock backed by time.Now.
func NewSystem() *System {
	return &System{now: time.Now}
}

// Now returns max(wall clock, previous result).
func (c *System) Now() int64 {
	wall := c.now().Unix()
	for {
		prev := c.last.Load()
		if wall <= prev {
			return prev
		}
		if c.last.CompareAndSwap(prev, wall) {
			return wall
		}
	}
}

// Manual is a clock that only moves when told to. Used by tests and the
// scenario harness.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type Manual struct {
	mu  sync.Mutex
	now int64
}

// NewManual creates a manual clock at start.
func NewManual(start int64) *Manual {
	return &Manual{now: start}
}

// Now returns the current manual time.
func (c *Manual) Now() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set moves the clock to t. Moving backward is allowed so tests can
// exercise timestamp validation.
func (c *Manual) Set(t int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// Advance moves the clock forward by d seconds and returns the new time.
func (c *Manual) Advance(d int64) int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now += d
	return c.now
}

// Fixed is a Clock that always returns the same instant.
type Fixed int64

// Now returns the fixed instant.
func (f Fixed) Now() int64 { return int64(f) }
