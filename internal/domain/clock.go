package domain

import "github.com/jonboulle/clockwork"

// clock is the package time source. The query service reads it to time
// upstream fetches; tests freeze it via SetClock.
var clock = clockwork.NewRealClock()

// Clock returns the current time source.
func Clock() clockwork.Clock {
	return clock
}

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
