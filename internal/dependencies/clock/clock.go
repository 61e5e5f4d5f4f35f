package clock

import "time"

// Clock provides time operations that can be mocked for testing
type Clock interface {
	Now() time.Time

	// NowUnix returns the current time as float unix seconds, the
	// representation used for notification timestamps and poll watermarks
	NowUnix() float64
}

// RealClock implements Clock using the system clock
type RealClock struct{}

// New creates a new RealClock
func New() *RealClock {
	return &RealClock{}
}

// Now returns the current time
func (c *RealClock) Now() time.Time {
	return time.Now()
}

// NowUnix returns the current time as float unix seconds
func (c *RealClock) NowUnix() float64 {
	return ToUnix(time.Now())
}

// ToUnix converts a time to float unix seconds
func ToUnix(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
