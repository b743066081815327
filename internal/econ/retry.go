package econ

import (
	"time"
)

// delayTableBackoff implements retry.Backoff over a fixed delay table, so
// the deadlock/outer retry loops match the exact millisecond schedules
// spec §4.9 specifies ([0,50,100,200] inner, [0,1000,3000] outer) rather
// than an exponential curve.
type delayTableBackoff struct {
	delays []time.Duration
	i      int
}

func newDelayTableBackoff(delaysMs []int) *delayTableBackoff {
	delays := make([]time.Duration, len(delaysMs))
	for i, ms := range delaysMs {
		delays[i] = time.Duration(ms) * time.Millisecond
	}
	return &delayTableBackoff{delays: delays}
}

// Next satisfies github.com/sethvargo/go-retry's Backoff interface.
func (b *delayTableBackoff) Next() (time.Duration, bool) {
	if b.i >= len(b.delays) {
		return 0, false
	}
	d := b.delays[b.i]
	b.i++
	return d, true
}
