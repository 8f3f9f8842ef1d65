package testutil

// FixedRunIDGenerator returns the same run ID every time.
//
// Unlike runid.FixedGenerator, which returns IDs in sequence, this
// generator never runs out, so a test can start any number of runs and
// still get byte-identical output.
//
// Thread-safety: FixedRunIDGenerator is stateless and safe for concurrent use.
type FixedRunIDGenerator struct {
	id string
}

// NewFixedRunIDGenerator creates a fixed generator. An empty id becomes
// "test-run-default".
func NewFixedRunIDGenerator(id string) *FixedRunIDGenerator {
	if id == "" {
		id = "test-run-default"
	}
	return &FixedRunIDGenerator{id: id}
}

// Generate returns the fixed run ID.
//
// Implements runid.Generator.
func (g *FixedRunIDGenerator) Generate() string {
	return g.id
}
