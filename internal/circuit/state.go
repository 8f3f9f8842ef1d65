package circuit

import (
	"fmt"
	"strings"
)

// State is the value of the state register. The numeric values are the
// two-bit codes of the reference design.
type State int

const (
	Idle              State = 0 // 00
	LightDehydration  State = 1 // 01
	SevereDehydration State = 2 // 10
	ActivityAlert     State = 3 // 11
)

// States lists every state in code order.
var States = []State{Idle, LightDehydration, SevereDehydration, ActivityAlert}

var stateNames = map[State]string{
	Idle:              "Idle",
	LightDehydration:  "LightDehydration",
	SevereDehydration: "SevereDehydration",
	ActivityAlert:     "ActivityAlert",
}

// hardwareNames are the state identifiers of the HDL design and the desktop
// simulator. ParseState accepts them as aliases.
var hardwareNames = map[string]State{
	"IDLE":           Idle,
	"LIGHT_DEHY":     LightDehydration,
	"SEVERE_DEHY":    SevereDehydration,
	"ACTIVITY_ALERT": ActivityAlert,
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Code returns the two-bit state code as an int.
func (s State) Code() int {
	return int(s)
}

// Valid reports whether s is one of the four defined states.
func (s State) Valid() bool {
	_, ok := stateNames[s]
	return ok
}

// MarshalText implements encoding.TextMarshaler so states serialize by name.
// Out-of-range states are an error rather than "State(n)".
func (s State) MarshalText() ([]byte, error) {
	if !s.Valid() {
		return nil, fmt.Errorf("invalid state %d", int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *State) UnmarshalText(b []byte) error {
	parsed, err := ParseState(string(b))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// ParseState parses a state name. Canonical names match case-insensitively;
// the hardware names (IDLE, LIGHT_DEHY, ...) are also accepted, in any case.
// Surrounding whitespace is not stripped.
func ParseState(name string) (State, error) {
	if s, ok := hardwareNames[strings.ToUpper(name)]; ok {
		return s, nil
	}
	for s, canonical := range stateNames {
		if strings.EqualFold(canonical, name) {
			return s, nil
		}
	}
	return Idle, fmt.Errorf("unknown state %q", name)
}

// NextState resolves the hazard flags to a state. First match wins:
// P1, then P2, then P3, then Idle.
func NextState(f Flags) State {
	switch {
	case f.P1:
		return SevereDehydration
	case f.P2:
		return ActivityAlert
	case f.P3:
		return LightDehydration
	default:
		return Idle
	}
}
