package domain

import (
	"time"

	"github.com/jonboulle/clockwork"
)

// clock is a package-level time source so tests can freeze time via SetClock.
// Disaster classification compares declaration dates against "now", so tests
// inject a fake clock for deterministic day counts.
var clock = clockwork.NewRealClock()

// SetClock swaps the time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}

// Now returns the current time from the injected clock. Timestamps written
// to output rows and the incremental index go through here so frozen-clock
// tests see stable values.
func Now() time.Time {
	return clock.Now()
}
