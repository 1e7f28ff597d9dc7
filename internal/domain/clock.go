package domain

import "github.com/jonboulle/clockwork"

// clock stamps run provenance: the history attribute and report completion time.
// Tests freeze it via SetClock so written containers are reproducible.
var clock = clockwork.NewRealClock()

// SetClock swaps the provenance time source. Pass nil to reset to real time.
func SetClock(c clockwork.Clock) {
	if c == nil {
		clock = clockwork.NewRealClock()
		return
	}
	clock = c
}
