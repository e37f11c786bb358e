// Package idgen provides the monotonic counters the ocean world uses for
// food and powerup ids: ids are strictly increasing and never reused,
// grounded on the original food.go package-level counter but made an
// explicit per-world type so two worlds never share counter state.
package idgen

import "sync/atomic"

// Counter hands out strictly increasing uint64 ids starting at 1.
type Counter struct {
	next uint64
}

// Next returns the next id in the sequence.
func (c *Counter) Next() uint64 {
	return atomic.AddUint64(&c.next, 1)
}
