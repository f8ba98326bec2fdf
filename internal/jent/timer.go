package jent

import "time"

// processStart is captured once at package init. time.Since compares the
// monotonic reading carried by both time.Time values, never the wall
// clock, so nowNS is immune to NTP adjustment or system clock changes -
// the monotonicity Qualify checks for and every component after it
// depends on.
var processStart = time.Now()

// nowNS returns nanoseconds elapsed since package initialization, read
// from the monotonic clock.
func nowNS() uint64 {
	return uint64(time.Since(processStart))
}
