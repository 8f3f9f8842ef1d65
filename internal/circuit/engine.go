package circuit

import (
	"io"
	"log/slog"
	"sync"
)

// Engine is the clock driver. It owns every register of the circuit and
// advances them together, once per Tick.
//
// Thread-safety model:
//   - All methods are safe from any goroutine.
//   - Each method is one critical section; a Tick is never observed half-done.
//   - Inputs set between two ticks are sampled by the second one.
//
// INVARIANTS:
//   - state changes only inside Tick or Reset
//   - outputs == Encode(state) whenever the lock is released
//   - chain.Stage2 is the sensor vector sampled one tick before chain.Stage1
type Engine struct {
	mu sync.Mutex

	// Inputs, driven by the caller between ticks.
	sensors   SensorVector
	resetLine bool // false = reset active

	// Registers.
	chain Synchronizer
	state State

	// Derived.
	flags   Flags
	outputs ActuatorVector

	clock  *Clock
	logger *slog.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the logger used for transition and reset diagnostics.
// Engines log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithClock sets the tick counter. Useful when a driver wants to share or
// pre-seed the count.
func WithClock(c *Clock) Option {
	return func(e *Engine) {
		if c != nil {
			e.clock = c
		}
	}
}

// New creates an engine in Idle with all registers zero and the reset line
// deasserted.
func New(opts ...Option) *Engine {
	e := &Engine{
		resetLine: true,
		state:     Idle,
		outputs:   Encode(Idle),
		clock:     NewClock(),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetSensor drives a single sensor line. Index 0 is S1, index 5 is S6.
// An out-of-range index returns *InvalidIndexError and changes nothing.
func (e *Engine) SetSensor(index int, value bool) error {
	if index < 0 || index >= Width {
		return &InvalidIndexError{Index: index}
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sensors[index] = value
	return nil
}

// SetSensors drives all six sensor lines at once.
func (e *Engine) SetSensors(v SensorVector) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.sensors = v
}

// SetReset drives the active-low reset line. false requests a reset on the
// next tick; true lets the circuit run.
func (e *Engine) SetReset(value bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resetLine = value
}

// Tick executes one clock cycle and returns the tick number.
func (e *Engine) Tick() int64 {
	e.mu.Lock()
	defer e.mu.Unlock()

	tick := e.clock.Next()
	prev := e.state

	if !e.resetLine {
		e.chain.Clear()
		e.flags = Flags{}
		e.state = Idle
		e.outputs = Encode(e.state)
		e.logger.Debug("reset line active", "tick", tick, "from", prev)
		return tick
	}

	synced := e.chain.Advance(e.sensors)
	e.flags = Classify(synced)
	e.state = NextState(e.flags)
	e.outputs = Encode(e.state)

	if e.state != prev {
		e.logger.Debug("state transition",
			"tick", tick,
			"from", prev,
			"to", e.state,
			"sensors", e.sensors.Bits(),
			"synced", synced.Bits(),
		)
	}
	return tick
}

// Reset reinitializes the circuit regardless of the reset line: Idle state,
// zero synchronizer, zero sensors, zero outputs and a zero tick count.
// The reset line itself is left as the caller drove it.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.sensors = SensorVector{}
	e.chain.Clear()
	e.flags = Flags{}
	e.state = Idle
	e.outputs = Encode(Idle)
	e.clock.Reset()
	e.logger.Debug("engine reset")
}

// CurrentState returns the state register.
func (e *Engine) CurrentState() State {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state
}

// ActuatorOutputs returns the actuator lines for the current state.
func (e *Engine) ActuatorOutputs() ActuatorVector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.outputs
}

// Sensors returns the sensor vector that the next tick will sample.
func (e *Engine) Sensors() SensorVector {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.sensors
}

// ResetLine returns the level of the reset line.
func (e *Engine) ResetLine() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.resetLine
}

// Ticks returns the number of ticks since construction or the last Reset.
func (e *Engine) Ticks() int64 {
	return e.clock.Current()
}

// Snapshot is a consistent copy of every input and register.
type Snapshot struct {
	Tick      int64          `json:"tick"`
	Sensors   SensorVector   `json:"sensors"`
	ResetLine bool           `json:"reset_line"`
	Stage1    SensorVector   `json:"stage1"`
	Stage2    SensorVector   `json:"stage2"`
	Flags     Flags          `json:"flags"`
	State     State          `json:"state"`
	Outputs   ActuatorVector `json:"outputs"`
}

// Snapshot returns all engine state taken under a single lock.
func (e *Engine) Snapshot() Snapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return Snapshot{
		Tick:      e.clock.Current(),
		Sensors:   e.sensors,
		ResetLine: e.resetLine,
		Stage1:    e.chain.Stage1,
		Stage2:    e.chain.Stage2,
		Flags:     e.flags,
		State:     e.state,
		Outputs:   e.outputs,
	}
}
