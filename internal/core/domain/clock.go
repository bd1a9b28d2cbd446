package domain

import "time"

// Clock provides an abstraction for time operations so the billing engine
// can be driven with a deterministic "now" in tests and cron replays.
type Clock interface {
	Now() time.Time
}

// RealClock is the production implementation of Clock
type RealClock struct{}

func (RealClock) Now() time.Time {
	return time.Now().UTC()
}

// FixedClock is used for testing with deterministic time
type FixedClock struct {
	FixedTime time.Time
}

func (f FixedClock) Now() time.Time {
	return f.FixedTime
}

// Today truncates the clock's current time to a UTC calendar date
func Today(c Clock) time.Time {
	return DateOf(c.Now())
}

// DateOf truncates t to midnight UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
