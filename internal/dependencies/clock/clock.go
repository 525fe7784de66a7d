package clock

import "time"

// Clock provides the current time. Expiry checks for sessions and pending
// authorizations go through it so tests can move time deterministically.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the system clock, in UTC
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current UTC time
func (c *RealClock) Now() time.Time {
	return time.Now().UTC()
}

// Expired reports whether expiresAt is at or before the clock's current time
func Expired(c Clock, expiresAt time.Time) bool {
	return !c.Now().Before(expiresAt)
}
