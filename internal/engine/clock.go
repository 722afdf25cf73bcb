package engine

import "time"

// Clock supplies wall time to sessions. Elapsed time is measured as the
// difference of two readings, so a time.Time carrying a monotonic reading
// keeps the timer immune to wall clock jumps.
type Clock interface {
	Now() time.Time
}

// SystemClock reads time.Now.
type SystemClock struct{}

// Now returns the current time.
func (SystemClock) Now() time.Time { return time.Now() }
