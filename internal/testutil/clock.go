package testutil

import (
	"sync"
	"time"
)

// ManualTicker is a wall-clock pacing source that only fires when told to.
//
// Drivers that pace ticks with a time.Ticker accept anything with C and
// Stop; ManualTicker lets tests step such a driver one period at a time
// without sleeping.
//
// Thread-safety: All methods are safe for concurrent use.
type ManualTicker struct {
	mu      sync.Mutex
	c       chan time.Time
	now     time.Time
	period  time.Duration
	stopped bool
	fired   int
}

// NewManualTicker creates a ticker whose first Fire reports start+period.
func NewManualTicker(start time.Time, period time.Duration) *ManualTicker {
	return &ManualTicker{
		c:      make(chan time.Time, 1),
		now:    start,
		period: period,
	}
}

// C returns the channel the driver waits on.
func (m *ManualTicker) C() <-chan time.Time {
	return m.c
}

// Fire advances the fake clock by one period and delivers it. Fire blocks
// until the driver has drained the previous delivery. It is a no-op after
// Stop.
func (m *ManualTicker) Fire() {
	m.mu.Lock()
	if m.stopped {
		m.mu.Unlock()
		return
	}
	m.now = m.now.Add(m.period)
	now := m.now
	m.fired++
	m.mu.Unlock()

	m.c <- now
}

// Stop marks the ticker stopped. Further Fire calls do nothing.
func (m *ManualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

// Stopped reports whether Stop has been called.
func (m *ManualTicker) Stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

// Fired returns how many periods have been delivered.
func (m *ManualTicker) Fired() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.fired
}
