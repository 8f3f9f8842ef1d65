package circuit

// Flags holds the three hazard conditions evaluated from the synchronized
// vector. More than one may be set at once.
type Flags struct {
	P1 bool `json:"p1"` // S5 with any of S1..S4
	P2 bool `json:"p2"` // S6
	P3 bool `json:"p3"` // two or more of S1..S5
}

// Classify evaluates the hazard conditions from a synchronized vector.
// It must only ever be given Stage2, never raw sensor input.
func Classify(synced SensorVector) Flags {
	anyOfS1toS4 := synced[S1] || synced[S2] || synced[S3] || synced[S4]
	return Flags{
		P1: synced[S5] && anyOfS1toS4,
		P2: synced[S6],
		P3: synced.Count(S1, S5+1) >= 2,
	}
}
