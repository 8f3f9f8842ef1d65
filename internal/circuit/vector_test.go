package circuit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseSensorVector(t *testing.T) {
	tests := []struct {
		in   string
		want SensorVector
	}{
		{"000000", SensorVector{}},
		{"110000", SensorVector{true, true}},
		{"1,0,0,0,1,0", SensorVector{S1: true, S5: true}},
		{" 0, 0, 0, 0, 0, 1 ", SensorVector{S6: true}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseSensorVector(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseSensorVector_Errors(t *testing.T) {
	for _, in := range []string{"", "10000", "1000000", "10200x", "1,1,0"} {
		t.Run(in, func(t *testing.T) {
			_, err := ParseSensorVector(in)
			assert.Error(t, err)
		})
	}
}

func TestVector_Bits(t *testing.T) {
	v := SensorVector{S1: true, S5: true}
	assert.Equal(t, "100010", v.Bits())
	assert.Equal(t, "100010", v.String())

	a := ActuatorVector{true, false, true, true, true}
	assert.Equal(t, "101110", a.String())
}

func TestSensorVector_Count(t *testing.T) {
	v := SensorVector{true, true, false, false, true, true}
	assert.Equal(t, 3, v.Count(S1, S5+1))
	assert.Equal(t, 4, v.Count(0, Width))
	assert.Equal(t, 0, v.Count(S3, S4+1))
}
