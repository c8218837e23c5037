package testfixtures

import (
	"sync"
	"time"
)

// Clock is a manually advanced time source. Services take their clock as a
// func() time.Time, so tests hand them NowFunc and step time explicitly when
// exercising check-in timestamps or reservation windows.
type Clock struct {
	mu      sync.Mutex
	current time.Time
}

// NewClock returns a clock starting at the supplied instant. A zero start
// falls back to the shared ReferenceTime so fixtures and clock agree.
func NewClock(start time.Time) *Clock {
	if start.IsZero() {
		start = ReferenceTime()
	}
	return &Clock{current: start}
}

// Now returns the instant the clock currently reports.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// NowFunc adapts the clock to the func() time.Time shape the services expect.
// A nil clock degrades to the real time.Now.
func (c *Clock) NowFunc() func() time.Time {
	if c == nil {
		return time.Now
	}
	return c.Now
}

// Set pins the clock to the provided time.
func (c *Clock) Set(t time.Time) {
	c.mu.Lock()
	c.current = t
	c.mu.Unlock()
}

// Advance moves the clock forward by d and returns the new instant.
func (c *Clock) Advance(d time.Duration) time.Time {
	c.mu.Lock()
	c.current = c.current.Add(d)
	updated := c.current
	c.mu.Unlock()
	return updated
}

// Current is an alias for Now used in assertions where no progression is
// implied.
func (c *Clock) Current() time.Time {
	return c.Now()
}
