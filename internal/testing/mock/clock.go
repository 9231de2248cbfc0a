package mock

import (
	"sync"
	"time"
)

// MockClock is a manually driven time source. Pass its Now method to the
// WithClock options of the connection and the access controller to expire
// sessions and permission snapshots without sleeping.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

// NewMockClock returns a clock frozen at t, or at the current time when t
// is zero.
func NewMockClock(t time.Time) *MockClock {
	if t.IsZero() {
		t = time.Now()
	}
	return &MockClock{now: t}
}

// Now returns the frozen time.
func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Advance moves the clock forward by d.
func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

// Set jumps to t.
func (c *MockClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
