package harness

import (
	"fmt"
	"strings"

	"github.com/roach88/dehydra/internal/circuit"
)

// AssertionError is returned when an assertion fails.
// It includes detailed context to help debug the failure.
type AssertionError struct {
	Type     string       // Assertion type for categorization
	Expected string       // Human-readable expected outcome
	Actual   string       // Human-readable actual outcome
	Trace    []TraceEvent // Full trace for debugging context
}

// Error implements the error interface.
func (e *AssertionError) Error() string {
	var buf strings.Builder

	fmt.Fprintf(&buf, "Assertion failed: %s\n", e.Type)
	fmt.Fprintf(&buf, "  Expected: %s\n", e.Expected)
	fmt.Fprintf(&buf, "  Actual: %s\n", e.Actual)

	fmt.Fprintf(&buf, "\nFull trace:\n")
	for _, event := range e.Trace {
		if event.Type == EventReset {
			fmt.Fprintf(&buf, "  [step %d] reset\n", event.Step)
			continue
		}
		fmt.Fprintf(&buf, "  [tick %d] sensors=%s stage2=%s -> %s %s\n",
			event.Tick, event.Sensors, event.Stage2, event.State, event.Outputs)
	}

	return buf.String()
}

// EvaluateAssertions runs every assertion and returns one message per
// failure. Assertions are independent; a failure does not stop the rest.
func EvaluateAssertions(result *Result, assertions []Assertion) []string {
	var errs []string
	for i, a := range assertions {
		if err := evaluate(result, a); err != nil {
			errs = append(errs, fmt.Sprintf("assertion %d: %v", i, err))
		}
	}
	return errs
}

func evaluate(result *Result, a Assertion) error {
	switch a.Type {
	case AssertFinalState:
		return assertFinalState(result, a)
	case AssertStateReached:
		return assertStateReached(result.Trace, a)
	case AssertStateOrder:
		return assertStateOrder(result.Trace, a)
	case AssertStateCount:
		return assertStateCount(result.Trace, a)
	default:
		return fmt.Errorf("unknown assertion type %q", a.Type)
	}
}

// assertFinalState checks the state (and outputs, when given) after the
// last step.
func assertFinalState(result *Result, a Assertion) error {
	want, err := circuit.ParseState(a.State)
	if err != nil {
		return err
	}

	if result.Final.State != want {
		return &AssertionError{
			Type:     AssertFinalState,
			Expected: fmt.Sprintf("state %s", want),
			Actual:   fmt.Sprintf("state %s", result.Final.State),
			Trace:    result.Trace,
		}
	}

	if a.Outputs != nil {
		wantOut, err := actuatorVector(a.Outputs)
		if err != nil {
			return err
		}
		if result.Final.Outputs != wantOut {
			return &AssertionError{
				Type:     AssertFinalState,
				Expected: fmt.Sprintf("outputs %s", wantOut),
				Actual:   fmt.Sprintf("outputs %s", result.Final.Outputs),
				Trace:    result.Trace,
			}
		}
	}
	return nil
}

// assertStateReached checks that some tick left the engine in the state.
func assertStateReached(trace []TraceEvent, a Assertion) error {
	want, err := circuit.ParseState(a.State)
	if err != nil {
		return err
	}
	for _, event := range trace {
		if event.Type == EventTick && event.State == want {
			return nil
		}
	}
	return &AssertionError{
		Type:     AssertStateReached,
		Expected: fmt.Sprintf("state %s on some tick", want),
		Actual:   "never reached",
		Trace:    trace,
	}
}

// assertStateOrder checks that the tick states contain the listed states
// as an ordered subsequence. Other states may occur in between, and a state
// may be listed again after the engine has left it.
func assertStateOrder(trace []TraceEvent, a Assertion) error {
	want := make([]circuit.State, len(a.States))
	for i, name := range a.States {
		s, err := circuit.ParseState(name)
		if err != nil {
			return err
		}
		want[i] = s
	}

	seen := make(map[circuit.State]bool)
	matched := 0
	lastPos := 0 // tick position of the last match, 1-indexed
	pos := 0
	for _, event := range trace {
		if event.Type != EventTick {
			continue
		}
		pos++
		seen[event.State] = true
		if matched < len(want) && event.State == want[matched] {
			matched++
			lastPos = pos
		}
	}
	if matched == len(want) {
		return nil
	}

	missing := want[matched]
	if !seen[missing] {
		return &AssertionError{
			Type:     AssertStateOrder,
			Expected: fmt.Sprintf("all states reached: %v", a.States),
			Actual:   fmt.Sprintf("missing state: %s", missing),
			Trace:    trace,
		}
	}
	actual := fmt.Sprintf("%s not reached", missing)
	if matched > 0 {
		actual = fmt.Sprintf("%s not reached after %s (pos %d)", missing, want[matched-1], lastPos)
	}
	return &AssertionError{
		Type:     AssertStateOrder,
		Expected: fmt.Sprintf("states in order: %v", a.States),
		Actual:   actual,
		Trace:    trace,
	}
}

// assertStateCount checks how many times the engine transitioned into the
// state. The power-on Idle is not a transition; leaving Idle and coming
// back is.
func assertStateCount(trace []TraceEvent, a Assertion) error {
	want, err := circuit.ParseState(a.State)
	if err != nil {
		return err
	}

	count := 0
	prev := circuit.Idle
	for _, event := range trace {
		if event.State == want && prev != want && event.Type == EventTick {
			count++
		}
		prev = event.State
	}

	if count != a.Count {
		return &AssertionError{
			Type:     AssertStateCount,
			Expected: fmt.Sprintf("%d transitions into %s", a.Count, want),
			Actual:   fmt.Sprintf("%d transitions", count),
			Trace:    trace,
		}
	}
	return nil
}
