package circuit

import (
	"encoding/json"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// allVectors enumerates the 64 possible six-line vectors, S1 as the MSB.
func allVectors() []SensorVector {
	vs := make([]SensorVector, 0, 1<<Width)
	for n := 0; n < 1<<Width; n++ {
		var v SensorVector
		for i := 0; i < Width; i++ {
			v[i] = n&(1<<(Width-1-i)) != 0
		}
		vs = append(vs, v)
	}
	return vs
}

func TestSynchronizer_Advance(t *testing.T) {
	var s Synchronizer
	a := SensorVector{true}
	b := SensorVector{false, true}

	assert.Equal(t, SensorVector{}, s.Advance(a))
	assert.Equal(t, a, s.Stage1)

	assert.Equal(t, a, s.Advance(b), "Stage2 takes the old Stage1")
	assert.Equal(t, b, s.Stage1)

	s.Clear()
	assert.Equal(t, Synchronizer{}, s)
}

func TestClassify(t *testing.T) {
	tests := []struct {
		in   string
		want Flags
	}{
		{"000000", Flags{}},
		{"100000", Flags{}},
		{"000010", Flags{}},
		{"100010", Flags{P1: true, P3: true}},
		{"000110", Flags{P1: true, P3: true}},
		{"000001", Flags{P2: true}},
		{"110000", Flags{P3: true}},
		{"001010", Flags{P1: true, P3: true}},
		{"100011", Flags{P1: true, P2: true, P3: true}},
		{"111101", Flags{P2: true, P3: true}},
		{"000011", Flags{P2: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(vec(t, tt.in)))
		})
	}
}

func TestClassify_P3IgnoresS6(t *testing.T) {
	assert.False(t, Classify(vec(t, "100001")).P3)
}

func TestNextState_Priority(t *testing.T) {
	tests := []struct {
		flags Flags
		want  State
	}{
		{Flags{}, Idle},
		{Flags{P3: true}, LightDehydration},
		{Flags{P2: true}, ActivityAlert},
		{Flags{P2: true, P3: true}, ActivityAlert},
		{Flags{P1: true}, SevereDehydration},
		{Flags{P1: true, P2: true}, SevereDehydration},
		{Flags{P1: true, P3: true}, SevereDehydration},
		{Flags{P1: true, P2: true, P3: true}, SevereDehydration},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprintf("%+v", tt.flags), func(t *testing.T) {
			assert.Equal(t, tt.want, NextState(tt.flags))
		})
	}
}

func TestNextState_AllVectors(t *testing.T) {
	counts := map[State]int{}
	for _, v := range allVectors() {
		f := Classify(v)
		got := NextState(f)
		counts[got]++

		switch {
		case v[S5] && v.Count(S1, S5) > 0:
			assert.Equal(t, SevereDehydration, got, v.Bits())
		case v[S6]:
			assert.Equal(t, ActivityAlert, got, v.Bits())
		case v.Count(S1, S6) >= 2:
			assert.Equal(t, LightDehydration, got, v.Bits())
		default:
			assert.Equal(t, Idle, got, v.Bits())
		}
	}

	// 15 S1..S4 patterns with S5 set, times two for S6.
	assert.Equal(t, 30, counts[SevereDehydration])
	// S6 set, minus the severe ones.
	assert.Equal(t, 32-15, counts[ActivityAlert])
	assert.Equal(t, 64, counts[Idle]+counts[LightDehydration]+counts[SevereDehydration]+counts[ActivityAlert])
}

func TestEncode(t *testing.T) {
	tests := []struct {
		state State
		want  string
	}{
		{Idle, "000000"},
		{LightDehydration, "101100"},
		{SevereDehydration, "111111"},
		{ActivityAlert, "101110"},
		{State(7), "000000"},
		{State(-1), "000000"},
	}
	for _, tt := range tests {
		t.Run(tt.state.String(), func(t *testing.T) {
			got := Encode(tt.state)
			assert.Equal(t, tt.want, got.Bits())
		})
	}
}

func TestEncode_ActuatorIndexMapping(t *testing.T) {
	light := Encode(LightDehydration)
	assert.True(t, light[0], "A1")
	assert.False(t, light[1], "A2")
	assert.True(t, light[2], "A3")
	assert.True(t, light[3], "A4")
	assert.False(t, light[4], "A5")
	assert.False(t, light[5], "A6")

	activity := Encode(ActivityAlert)
	assert.Equal(t, "101110", activity.Bits())
}

func TestEncode_InvalidState(t *testing.T) {
	assert.Equal(t, ActuatorVector{}, Encode(State(4)))
	assert.Equal(t, ActuatorVector{}, Encode(State(-1)))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "Idle", Idle.String())
	assert.Equal(t, "LightDehydration", LightDehydration.String())
	assert.Equal(t, "SevereDehydration", SevereDehydration.String())
	assert.Equal(t, "ActivityAlert", ActivityAlert.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestState_Codes(t *testing.T) {
	for i, s := range States {
		assert.Equal(t, i, s.Code())
		assert.True(t, s.Valid())
	}
	assert.False(t, State(4).Valid())
}

func TestParseState(t *testing.T) {
	tests := []struct {
		in   string
		want State
	}{
		{"Idle", Idle},
		{"idle", Idle},
		{"IDLE", Idle},
		{"LightDehydration", LightDehydration},
		{"LIGHT_DEHY", LightDehydration},
		{"severedehydration", SevereDehydration},
		{"SEVERE_DEHY", SevereDehydration},
		{"activity_alert", ActivityAlert},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseState(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"Panic", " ActivityAlert ", "Light Dehydration", ""} {
		_, err := ParseState(bad)
		assert.Error(t, err, "%q", bad)
	}
}

func TestState_MarshalInvalid(t *testing.T) {
	_, err := State(7).MarshalText()
	assert.Error(t, err)

	_, err = json.Marshal(Snapshot{State: State(-1)})
	assert.Error(t, err)
}

func TestState_TextRoundTrip(t *testing.T) {
	for _, s := range States {
		b, err := s.MarshalText()
		require.NoError(t, err)

		var got State
		require.NoError(t, got.UnmarshalText(b))
		assert.Equal(t, s, got)
	}
}
