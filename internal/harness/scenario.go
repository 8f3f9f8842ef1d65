package harness

import (
	"bytes"
	"fmt"
	"maps"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/roach88/dehydra/internal/circuit"
)

// Scenario defines a classifier test scenario.
// Scenarios drive the engine through a sequence of input steps and assert
// on the resulting trace and final state.
type Scenario struct {
	// Name uniquely identifies this scenario. It also names the golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Steps are applied in order to a fresh engine.
	Steps []Step `yaml:"steps"`

	// Assertions validate the final trace and state.
	// Supported types: final_state, state_reached, state_order, state_count
	Assertions []Assertion `yaml:"assertions"`

	// RunID is an optional fixed run ID for deterministic tests.
	// If empty, defaults to "test-run-default".
	RunID string `yaml:"run_id,omitempty"`
}

// Step drives the engine inputs and then clocks it.
type Step struct {
	// Reset calls Engine.Reset before anything else in the step.
	Reset bool `yaml:"reset,omitempty"`

	// Sensors replaces the whole sensor vector, S1..S6, as 0/1 values.
	Sensors []int `yaml:"sensors,omitempty"`

	// Set drives individual sensor lines by name ("S1".."S6").
	Set map[string]bool `yaml:"set,omitempty"`

	// ResetLine drives the active-low reset line. Nil leaves it as is.
	ResetLine *bool `yaml:"reset_line,omitempty"`

	// Ticks is the number of clock ticks to run after the inputs are set.
	Ticks int `yaml:"ticks,omitempty"`

	// Expect is checked after the last tick of the step.
	// If nil, no validation is performed.
	Expect *ExpectClause `yaml:"expect,omitempty"`
}

// ExpectClause specifies the expected engine outputs after a step.
type ExpectClause struct {
	// State is the expected state name (e.g. "LightDehydration").
	State string `yaml:"state"`

	// Outputs are the expected actuator lines A1..A6 as 0/1 values.
	// If nil, only the state is validated.
	Outputs []int `yaml:"outputs,omitempty"`
}

// Assertion validates the trace or final state.
type Assertion struct {
	// Type specifies the assertion type:
	// - "final_state": state (and outputs) after the last step
	// - "state_reached": state appears on some tick
	// - "state_order": states first appear in the given order
	// - "state_count": number of transitions into state
	Type string `yaml:"type"`

	// State is the state name (final_state, state_reached, state_count).
	State string `yaml:"state,omitempty"`

	// States is the expected order (state_order).
	States []string `yaml:"states,omitempty"`

	// Outputs are the expected final actuator lines (final_state, optional).
	Outputs []int `yaml:"outputs,omitempty"`

	// Count is the expected number of entries (state_count).
	Count int `yaml:"count,omitempty"`
}

// Assertion type constants.
const (
	AssertFinalState   = "final_state"
	AssertStateReached = "state_reached"
	AssertStateOrder   = "state_order"
	AssertStateCount   = "state_count"
)

// LoadScenario reads and parses a scenario YAML file.
// Returns an error if the file doesn't exist, is malformed,
// contains unknown fields (typos), or is missing required fields.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ParseScenario(filepath.Base(path), data)
}

// ParseScenario parses scenario YAML. source names the data in errors.
func ParseScenario(source string, data []byte) (*Scenario, error) {
	// Strict field validation catches typos like "assertion:" vs "assertions:"
	var scenario Scenario
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&scenario); err != nil {
		return nil, fmt.Errorf("%s: failed to parse YAML: %w", source, err)
	}

	if err := validateScenario(&scenario); err != nil {
		return nil, fmt.Errorf("%s: invalid scenario: %w", source, err)
	}

	return &scenario, nil
}

// validateScenario checks that required fields are present and valid.
func validateScenario(s *Scenario) error {
	if s.Name == "" {
		return fmt.Errorf("name is required")
	}

	if s.Description == "" {
		return fmt.Errorf("description is required")
	}

	if len(s.Steps) == 0 {
		return fmt.Errorf("steps list is required and must be non-empty")
	}

	if len(s.Assertions) == 0 {
		return fmt.Errorf("assertions list is required and must be non-empty")
	}

	for i, step := range s.Steps {
		if err := validateStep(i, &step); err != nil {
			return err
		}
	}

	for i, assertion := range s.Assertions {
		if err := validateAssertion(i, &assertion); err != nil {
			return err
		}
	}

	return nil
}

func validateStep(index int, s *Step) error {
	if s.Ticks < 0 {
		return fmt.Errorf("steps[%d]: ticks must be non-negative", index)
	}
	if s.Sensors != nil {
		if _, err := sensorVector(s.Sensors); err != nil {
			return fmt.Errorf("steps[%d].sensors: %w", index, err)
		}
	}
	seen := make(map[int]string, len(s.Set))
	for _, name := range slices.Sorted(maps.Keys(s.Set)) {
		idx, err := sensorIndex(name)
		if err != nil {
			return fmt.Errorf("steps[%d].set: %w", index, err)
		}
		if prev, ok := seen[idx]; ok {
			return fmt.Errorf("steps[%d].set: %q and %q both name S%d", index, prev, name, idx+1)
		}
		seen[idx] = name
	}
	if s.Expect != nil {
		if _, err := circuit.ParseState(s.Expect.State); err != nil {
			return fmt.Errorf("steps[%d].expect: %w", index, err)
		}
		if s.Expect.Outputs != nil {
			if _, err := actuatorVector(s.Expect.Outputs); err != nil {
				return fmt.Errorf("steps[%d].expect.outputs: %w", index, err)
			}
		}
	}
	return nil
}

// validateAssertion validates a single assertion based on its type.
func validateAssertion(index int, a *Assertion) error {
	if a.Type == "" {
		return fmt.Errorf("assertions[%d]: type is required", index)
	}

	needState := func() error {
		if a.State == "" {
			return fmt.Errorf("assertions[%d]: state is required for %s", index, a.Type)
		}
		if _, err := circuit.ParseState(a.State); err != nil {
			return fmt.Errorf("assertions[%d]: %w", index, err)
		}
		return nil
	}

	switch a.Type {
	case AssertFinalState:
		if err := needState(); err != nil {
			return err
		}
		if a.Outputs != nil {
			if _, err := actuatorVector(a.Outputs); err != nil {
				return fmt.Errorf("assertions[%d].outputs: %w", index, err)
			}
		}
	case AssertStateReached:
		return needState()
	case AssertStateOrder:
		if len(a.States) == 0 {
			return fmt.Errorf("assertions[%d]: states list is required for state_order", index)
		}
		for _, name := range a.States {
			if _, err := circuit.ParseState(name); err != nil {
				return fmt.Errorf("assertions[%d]: %w", index, err)
			}
		}
	case AssertStateCount:
		if err := needState(); err != nil {
			return err
		}
		if a.Count < 0 {
			return fmt.Errorf("assertions[%d]: count must be non-negative for state_count", index)
		}
	default:
		return fmt.Errorf("assertions[%d]: unknown assertion type %q", index, a.Type)
	}

	return nil
}

// sensorIndex maps "S1".."S6" to 0..5, ignoring case.
func sensorIndex(name string) (int, error) {
	n := strings.ToUpper(name)
	if len(n) != 2 || n[0] != 'S' || n[1] < '1' || n[1] > '6' {
		return 0, fmt.Errorf("unknown sensor %q (want S1..S6)", name)
	}
	return int(n[1] - '1'), nil
}

func sensorVector(bits []int) (circuit.SensorVector, error) {
	var v circuit.SensorVector
	if err := fillBits(v[:], bits); err != nil {
		return v, err
	}
	return v, nil
}

func actuatorVector(bits []int) (circuit.ActuatorVector, error) {
	var v circuit.ActuatorVector
	if err := fillBits(v[:], bits); err != nil {
		return v, err
	}
	return v, nil
}

func fillBits(dst []bool, bits []int) error {
	if len(bits) != len(dst) {
		return fmt.Errorf("want %d values, got %d", len(dst), len(bits))
	}
	for i, b := range bits {
		switch b {
		case 0:
		case 1:
			dst[i] = true
		default:
			return fmt.Errorf("value %d at position %d is not 0 or 1", b, i+1)
		}
	}
	return nil
}
