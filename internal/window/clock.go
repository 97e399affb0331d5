package window

import "time"

// Clock supplies the current time. The real implementation reads the
// system clock; tests inject a fixed one.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the system time.
type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now()
}

// FixedClock implements Clock for tests that pin "now".
type FixedClock struct {
	At time.Time
}

func (c FixedClock) Now() time.Time {
	return c.At
}
