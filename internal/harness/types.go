package harness

import (
	"github.com/roach88/dehydra/internal/circuit"
	"github.com/roach88/dehydra/internal/ir"
	"github.com/roach88/dehydra/internal/waveform"
)

// Trace event types.
const (
	EventTick  = "tick"
	EventReset = "reset"
)

// TraceEvent is one observation of the engine during a run: the frame
// after a tick, or after an explicit Reset.
type TraceEvent struct {
	Type string `json:"type"` // "tick" or "reset"
	Step int    `json:"step"`
	waveform.Frame
}

// Map returns the event in canonical map form.
func (e TraceEvent) Map() map[string]any {
	m := e.Frame.Map()
	m["type"] = e.Type
	m["step"] = e.Step
	return m
}

// Result is the outcome of a scenario execution.
type Result struct {
	// Pass indicates overall test success.
	// True if every expect clause and assertion holds.
	Pass bool `json:"pass"`

	// RunID identifies this execution in logs and JSON output.
	RunID string `json:"run_id"`

	// Trace contains every observed frame in order.
	Trace []TraceEvent `json:"trace"`

	// Errors contains validation error messages.
	// Empty if Pass is true.
	Errors []string `json:"errors,omitempty"`

	// Final is the engine snapshot after the last step.
	Final circuit.Snapshot `json:"final"`
}

// NewResult creates a new passing result.
// Used as the starting point for test execution.
func NewResult(runID string) *Result {
	return &Result{
		Pass:   true,
		RunID:  runID,
		Trace:  []TraceEvent{},
		Errors: []string{},
	}
}

// AddError adds a validation error and marks the result as failed.
func (r *Result) AddError(err string) {
	r.Errors = append(r.Errors, err)
	r.Pass = false
}

// AddEvent appends a frame to the trace.
func (r *Result) AddEvent(typ string, step int, f waveform.Frame) {
	r.Trace = append(r.Trace, TraceEvent{Type: typ, Step: step, Frame: f})
}

// Frames returns the frames of the trace, for rendering.
func (r *Result) Frames() []waveform.Frame {
	frames := make([]waveform.Frame, len(r.Trace))
	for i, e := range r.Trace {
		frames[i] = e.Frame
	}
	return frames
}

// Digest returns the chained digest of every traced frame. Two runs with
// equal digests observed identical registers on every event.
func (r *Result) Digest() (string, error) {
	maps := make([]map[string]any, len(r.Trace))
	for i, e := range r.Trace {
		maps[i] = e.Map()
	}
	return ir.TraceDigest(maps)
}
