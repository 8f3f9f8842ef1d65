package circuit

// outputTable is the Moore output ROM, index 0 = A1 ... index 5 = A6.
var outputTable = map[State]ActuatorVector{
	Idle:              {false, false, false, false, false, false}, // 000000
	LightDehydration:  {true, false, true, true, false, false},    // 101100
	SevereDehydration: {true, true, true, true, true, true},       // 111111
	ActivityAlert:     {true, false, true, true, true, false},     // 101110
}

// Encode returns the actuator pattern for a state. Unknown states map to
// all-off.
func Encode(s State) ActuatorVector {
	if !s.Valid() {
		return ActuatorVector{}
	}
	return outputTable[s]
}
