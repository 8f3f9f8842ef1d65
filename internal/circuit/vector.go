package circuit

import (
	"fmt"
	"strings"
)

// Width is the number of sensor lines and actuator lines.
const Width = 6

// Sensor line indices. S1 is index 0, S6 is index 5.
const (
	S1 = iota
	S2
	S3
	S4
	S5
	S6
)

// SensorVector is the six-line sensor input, S1..S6 at indices 0..5.
// It is also the shape of both synchronizer stages.
type SensorVector [Width]bool

// ActuatorVector is the six-line actuator output, A1..A6 at indices 0..5.
type ActuatorVector [Width]bool

// Count returns the number of asserted lines in v[from:to].
func (v SensorVector) Count(from, to int) int {
	n := 0
	for i := from; i < to; i++ {
		if v[i] {
			n++
		}
	}
	return n
}

// Bits renders the vector as "S1S2S3S4S5S6", e.g. "110000".
func (v SensorVector) Bits() string {
	return bits(v[:])
}

func (v SensorVector) String() string {
	return v.Bits()
}

// Bits renders the vector as "A1A2A3A4A5A6", e.g. "101100".
func (v ActuatorVector) Bits() string {
	return bits(v[:])
}

func (v ActuatorVector) String() string {
	return v.Bits()
}

// ParseSensorVector parses a six-line vector written either as a bit string
// ("110000") or as a comma separated list ("1,1,0,0,0,0").
func ParseSensorVector(s string) (SensorVector, error) {
	var v SensorVector
	bs, err := parseBits(s)
	if err != nil {
		return v, err
	}
	copy(v[:], bs)
	return v, nil
}

func parseBits(s string) ([]bool, error) {
	s = strings.TrimSpace(s)
	s = strings.NewReplacer(",", "", " ", "").Replace(s)
	if len(s) != Width {
		return nil, fmt.Errorf("vector %q: want %d bits, got %d", s, Width, len(s))
	}
	out := make([]bool, Width)
	for i, c := range s {
		switch c {
		case '0':
		case '1':
			out[i] = true
		default:
			return nil, fmt.Errorf("vector %q: invalid bit %q at position %d", s, c, i)
		}
	}
	return out, nil
}

func bits(v []bool) string {
	var b strings.Builder
	b.Grow(len(v))
	for _, on := range v {
		if on {
			b.WriteByte('1')
		} else {
			b.WriteByte('0')
		}
	}
	return b.String()
}
