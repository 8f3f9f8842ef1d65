package circuit

import "sync/atomic"

// Clock counts clock edges. The engine stamps every tick with Clock.Next().
//
// Thread-safety: Clock is safe for concurrent use (atomic operations),
// although the engine only advances it while holding its own lock.
type Clock struct {
	ticks atomic.Int64
}

// NewClock creates a clock at tick 0.
func NewClock() *Clock {
	return &Clock{}
}

// NewClockAt creates a clock starting at a given tick count.
func NewClockAt(start int64) *Clock {
	c := &Clock{}
	c.ticks.Store(start)
	return c
}

// Next advances the clock and returns the new tick number. The first call
// on a fresh clock returns 1.
func (c *Clock) Next() int64 {
	return c.ticks.Add(1)
}

// Current returns the number of ticks so far without advancing.
func (c *Clock) Current() int64 {
	return c.ticks.Load()
}

// Reset rewinds the clock to 0.
func (c *Clock) Reset() {
	c.ticks.Store(0)
}
