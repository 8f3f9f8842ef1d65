package harness

import (
	"fmt"
	"io"
	"log/slog"
	"maps"
	"slices"

	"github.com/roach88/dehydra/internal/circuit"
	"github.com/roach88/dehydra/internal/runid"
	"github.com/roach88/dehydra/internal/testutil"
	"github.com/roach88/dehydra/internal/waveform"
)

// Option configures a scenario run.
type Option func(*Harness)

// WithLogger sets the logger for run progress. Runs log nothing by default.
func WithLogger(l *slog.Logger) Option {
	return func(h *Harness) {
		if l != nil {
			h.logger = l
		}
	}
}

// WithRunIDGenerator overrides where run IDs come from when the scenario
// does not pin one.
func WithRunIDGenerator(g runid.Generator) Option {
	return func(h *Harness) {
		if g != nil {
			h.runIDs = g
		}
	}
}

// Harness is the test execution engine.
// It runs one scenario against one engine with a deterministic run ID.
type Harness struct {
	engine *circuit.Engine
	runIDs runid.Generator
	logger *slog.Logger
}

// Run executes a test scenario and returns the result.
//
// Each run drives a fresh circuit.Engine: steps set the real inputs, ticks
// clock the real registers, and every expectation is checked against what
// the engine actually reports.
//
// Execution flow:
// 1. Create a fresh engine (Idle, reset line deasserted)
// 2. Apply each step's inputs and ticks, tracing every frame
// 3. Check each step's expect clause
// 4. Evaluate assertions against the trace and final snapshot
//
// A returned error means the scenario could not be executed; failed
// expectations are reported through Result.Pass and Result.Errors.
func Run(scenario *Scenario, opts ...Option) (*Result, error) {
	if scenario == nil {
		return nil, fmt.Errorf("scenario is nil")
	}

	h := &Harness{
		runIDs: testutil.NewFixedRunIDGenerator(scenario.RunID),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)), // Suppress logs in tests
	}
	for _, opt := range opts {
		opt(h)
	}
	if scenario.RunID != "" {
		h.runIDs = testutil.NewFixedRunIDGenerator(scenario.RunID)
	}

	h.engine = circuit.New(circuit.WithLogger(h.logger))

	result := NewResult(h.runIDs.Generate())
	h.logger = h.logger.With("run_id", result.RunID, "scenario", scenario.Name)

	for i, step := range scenario.Steps {
		if err := h.executeStep(i, step, result); err != nil {
			return nil, fmt.Errorf("step %d: %w", i, err)
		}
	}

	result.Final = h.engine.Snapshot()

	for _, errMsg := range EvaluateAssertions(result, scenario.Assertions) {
		result.AddError(errMsg)
	}

	h.logger.Debug("scenario completed",
		"pass", result.Pass,
		"ticks", result.Final.Tick,
		"errors", len(result.Errors),
	)
	return result, nil
}

// executeStep applies one step: reset, sensors, set, reset_line, ticks,
// then the expect check.
func (h *Harness) executeStep(i int, step Step, result *Result) error {
	if step.Reset {
		h.engine.Reset()
		result.AddEvent(EventReset, i, waveform.FromSnapshot(h.engine.Snapshot()))
	}

	if step.Sensors != nil {
		v, err := sensorVector(step.Sensors)
		if err != nil {
			return fmt.Errorf("sensors: %w", err)
		}
		h.engine.SetSensors(v)
	}

	// Sorted so a run is reproducible whatever the map order.
	for _, name := range slices.Sorted(maps.Keys(step.Set)) {
		value := step.Set[name]
		idx, err := sensorIndex(name)
		if err != nil {
			return err
		}
		if err := h.engine.SetSensor(idx, value); err != nil {
			return err
		}
	}

	if step.ResetLine != nil {
		h.engine.SetReset(*step.ResetLine)
	}

	for n := 0; n < step.Ticks; n++ {
		h.engine.Tick()
		result.AddEvent(EventTick, i, waveform.FromSnapshot(h.engine.Snapshot()))
	}

	if step.Expect != nil {
		for _, msg := range h.checkExpect(i, step.Expect) {
			result.AddError(msg)
		}
	}

	h.logger.Debug("step completed",
		"step", i,
		"ticks", step.Ticks,
		"state", h.engine.CurrentState(),
	)
	return nil
}

func (h *Harness) checkExpect(i int, exp *ExpectClause) []string {
	var errs []string

	want, err := circuit.ParseState(exp.State)
	if err != nil {
		return []string{fmt.Sprintf("step %d: %v", i, err)}
	}
	got := h.engine.CurrentState()
	if got != want {
		errs = append(errs, fmt.Sprintf("step %d: expected state %s, got %s", i, want, got))
	}

	if exp.Outputs != nil {
		wantOut, err := actuatorVector(exp.Outputs)
		if err != nil {
			return append(errs, fmt.Sprintf("step %d: outputs: %v", i, err))
		}
		if gotOut := h.engine.ActuatorOutputs(); gotOut != wantOut {
			errs = append(errs, fmt.Sprintf("step %d: expected outputs %s, got %s", i, wantOut, gotOut))
		}
	}

	if len(errs) == 0 {
		h.logger.Debug("step validated", "step", i, "state", got)
	}
	return errs
}
