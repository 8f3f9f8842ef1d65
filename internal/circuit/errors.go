package circuit

import (
	"errors"
	"fmt"
)

// ErrInvalidIndex is the sentinel matched by every InvalidIndexError.
var ErrInvalidIndex = errors.New("invalid sensor index")

// InvalidIndexError is returned by SetSensor for an index outside 0..5.
//
// It is a caller contract violation, not an engine fault: the engine's
// registers are untouched when it is returned.
type InvalidIndexError struct {
	// Index is the rejected sensor index.
	Index int
}

// Error implements the error interface.
func (e *InvalidIndexError) Error() string {
	return fmt.Sprintf("%s: %d (want 0..%d)", ErrInvalidIndex, e.Index, Width-1)
}

// Is lets errors.Is(err, ErrInvalidIndex) match.
func (e *InvalidIndexError) Is(target error) bool {
	return target == ErrInvalidIndex
}

// IsInvalidIndex returns true if err is, or wraps, an InvalidIndexError.
func IsInvalidIndex(err error) bool {
	var ie *InvalidIndexError
	return errors.As(err, &ie)
}
