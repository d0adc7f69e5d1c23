package testutil

import (
	"sync"
	"time"
)

// StepClock is a manual clock measuring time since the start of a run.
//
// Unlike wall time it only moves when Advance is called, so traces built
// against it are reproducible. Reset allows reuse across scenarios.
//
// Thread-safety: All methods are safe for concurrent use via internal mutex.
type StepClock struct {
	mu  sync.Mutex
	now time.Duration
}

// NewStepClock creates a clock at zero.
func NewStepClock() *StepClock {
	return &StepClock{}
}

// Advance moves the clock forward by d and returns the new time.
// Negative durations are ignored so time never goes backwards.
func (c *StepClock) Advance(d time.Duration) time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	if d > 0 {
		c.now += d
	}
	return c.now
}

// Now returns the current time without advancing.
func (c *StepClock) Now() time.Duration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset moves the clock back to zero.
func (c *StepClock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = 0
}
