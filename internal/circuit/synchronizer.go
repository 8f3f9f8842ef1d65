package circuit

// Synchronizer is the two-register input chain in front of the decision
// logic. Stage2 lags the sampled input by one extra clock edge.
type Synchronizer struct {
	Stage1 SensorVector
	Stage2 SensorVector
}

// Advance clocks both registers and returns the new Stage2.
//
// Stage1 is read before it is overwritten; swapping the two assignments
// would collapse the chain into a single register.
func (s *Synchronizer) Advance(raw SensorVector) SensorVector {
	s.Stage2 = s.Stage1
	s.Stage1 = raw
	return s.Stage2
}

// Clear zeroes both stages.
func (s *Synchronizer) Clear() {
	s.Stage1 = SensorVector{}
	s.Stage2 = SensorVector{}
}
