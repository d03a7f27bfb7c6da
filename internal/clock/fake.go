package clock

import "time"

// FakeClock is a manually advanced Clock for exercising due dates,
// overdue sweeps and reminder windows in tests.
type FakeClock struct {
	now time.Time
}

// NewFakeClock pins the clock at t, normalized to UTC like the system
// clock.
func NewFakeClock(t time.Time) *FakeClock {
	return &FakeClock{now: t.UTC()}
}

func (c *FakeClock) Now() time.Time {
	return c.now
}

// Advance moves the clock forward, e.g. past an installment due date or
// a reminder resend window.
func (c *FakeClock) Advance(d time.Duration) {
	c.now = c.now.Add(d)
}
