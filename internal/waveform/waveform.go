// Package waveform records per-tick frames of a running engine and renders
// them as a text timing diagram.
//
// History is kept in memory only and is bounded: once the recorder holds
// MaxHistory frames, the oldest frame is dropped for every new one.
package waveform

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/roach88/dehydra/internal/circuit"
)

// DefaultMaxHistory is the default number of frames a Recorder keeps.
const DefaultMaxHistory = 1000

// Frame is the observable state of the circuit after one tick.
type Frame struct {
	Tick      int64                  `json:"tick"`
	Sensors   circuit.SensorVector   `json:"sensors"`
	ResetLine bool                   `json:"reset_line"`
	Stage2    circuit.SensorVector   `json:"stage2"`
	State     circuit.State          `json:"state"`
	Outputs   circuit.ActuatorVector `json:"outputs"`
}

// FromSnapshot builds a frame from an engine snapshot.
func FromSnapshot(s circuit.Snapshot) Frame {
	return Frame{
		Tick:      s.Tick,
		Sensors:   s.Sensors,
		ResetLine: s.ResetLine,
		Stage2:    s.Stage2,
		State:     s.State,
		Outputs:   s.Outputs,
	}
}

// Map returns the frame in canonical map form (see ir.MarshalCanonical).
// Vectors are rendered as bit strings, the state by name.
func (f Frame) Map() map[string]any {
	return map[string]any{
		"tick":       f.Tick,
		"sensors":    f.Sensors.Bits(),
		"reset_line": f.ResetLine,
		"stage2":     f.Stage2.Bits(),
		"state":      f.State.String(),
		"outputs":    f.Outputs.Bits(),
	}
}

// Recorder keeps a bounded history of frames.
//
// Thread-safety: Recorder is safe for concurrent use via internal mutex.
type Recorder struct {
	mu     sync.Mutex
	frames []Frame
	max    int
}

// NewRecorder creates a recorder that keeps at most max frames. A max of
// zero or less selects DefaultMaxHistory.
func NewRecorder(max int) *Recorder {
	if max <= 0 {
		max = DefaultMaxHistory
	}
	return &Recorder{max: max}
}

// Record appends a frame built from the snapshot, dropping the oldest frame
// when the history is full.
func (r *Recorder) Record(s circuit.Snapshot) Frame {
	f := FromSnapshot(s)

	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = append(r.frames, f)
	if len(r.frames) > r.max {
		r.frames = append(r.frames[:0:0], r.frames[len(r.frames)-r.max:]...)
	}
	return f
}

// Frames returns a copy of the recorded frames, oldest first.
func (r *Recorder) Frames() []Frame {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]Frame, len(r.frames))
	copy(out, r.frames)
	return out
}

// Len returns the number of frames held.
func (r *Recorder) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.frames)
}

// Clear drops all frames.
func (r *Recorder) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.frames = nil
}

const (
	high = '#'
	low  = '.'
)

// Render writes a timing diagram, one column per frame:
//
//	tick  12345
//	S1    ..###
//	...
//	RST   .....
//	A1    ...##
//	...
//	STATE 00011
//
// RST is high while the reset line is active (driven low). The STATE row
// shows the two-bit state code.
func Render(w io.Writer, frames []Frame) error {
	if len(frames) == 0 {
		_, err := fmt.Fprintln(w, "(no frames)")
		return err
	}

	var b strings.Builder
	row := func(label string, bit func(Frame) byte) {
		fmt.Fprintf(&b, "%-6s", label)
		for _, f := range frames {
			b.WriteByte(bit(f))
		}
		b.WriteByte('\n')
	}
	level := func(on bool) byte {
		if on {
			return high
		}
		return low
	}

	row("tick", func(f Frame) byte { return byte('0' + f.Tick%10) })
	for i := 0; i < circuit.Width; i++ {
		row(fmt.Sprintf("S%d", i+1), func(f Frame) byte { return level(f.Sensors[i]) })
	}
	row("RST", func(f Frame) byte { return level(!f.ResetLine) })
	for i := 0; i < circuit.Width; i++ {
		row(fmt.Sprintf("A%d", i+1), func(f Frame) byte { return level(f.Outputs[i]) })
	}
	row("STATE", func(f Frame) byte { return byte('0' + f.State.Code()) })

	b.WriteString("\nstates:")
	for _, s := range circuit.States {
		fmt.Fprintf(&b, " %d=%s", s.Code(), s)
	}
	b.WriteByte('\n')

	_, err := io.WriteString(w, b.String())
	return err
}
