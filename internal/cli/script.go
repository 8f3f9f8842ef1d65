package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/dehydra/internal/circuit"
	"github.com/roach88/dehydra/internal/waveform"
)

// Ticker paces a free-running clock. *time.Ticker satisfies it through
// NewWallTicker; tests use testutil.ManualTicker.
type Ticker interface {
	C() <-chan time.Time
	Stop()
}

type wallTicker struct {
	t *time.Ticker
}

// NewWallTicker wraps time.NewTicker.
func NewWallTicker(period time.Duration) Ticker {
	return wallTicker{t: time.NewTicker(period)}
}

func (w wallTicker) C() <-chan time.Time { return w.t.C }
func (w wallTicker) Stop() { w.t.Stop() }

// ScriptError reports the script line a driver command failed on.
type ScriptError struct {
	Line int
	Text string
	Err  error
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("line %d: %q: %v", e.Line, e.Text, e.Err)
}

func (e *ScriptError) Unwrap() error {
	return e.Err
}

// Driver executes driver-script commands against one engine.
//
// Commands, one per line:
//
//	set <index|S1..S6> <0|1>   drive one sensor line (index 0..5)
//	sensors <bits>             drive all six lines, e.g. 110000
//	reset-line <0|1>           drive the active-low reset line
//	tick [n]                   run n clock ticks (default 1)
//	reset                      reinitialize the engine
//	state                      print state and outputs
//	wave                       print the recorded waveform
//
// Blank lines and lines starting with '#' are ignored.
type Driver struct {
	engine   *circuit.Engine
	recorder *waveform.Recorder
	out      io.Writer
	logger   *slog.Logger
	ticker   Ticker
}

// NewDriver creates a driver. A nil ticker runs ticks back to back.
func NewDriver(eng *circuit.Engine, rec *waveform.Recorder, out io.Writer, logger *slog.Logger, ticker Ticker) *Driver {
	return &Driver{
		engine:   eng,
		recorder: rec,
		out:      out,
		logger:   logger,
		ticker:   ticker,
	}
}

// Run executes every line of r. It stops at the first failing line or when
// ctx is cancelled.
func (d *Driver) Run(ctx context.Context, r io.Reader) error {
	scanner := bufio.NewScanner(r)
	line := 0
	for scanner.Scan() {
		line++
		text := strings.TrimSpace(scanner.Text())
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		if err := d.Exec(ctx, text); err != nil {
			return &ScriptError{Line: line, Text: text, Err: err}
		}
	}
	return scanner.Err()
}

// Exec executes one command.
func (d *Driver) Exec(ctx context.Context, text string) error {
	fields := strings.Fields(text)
	if len(fields) == 0 {
		return nil
	}
	cmd, args := fields[0], fields[1:]

	switch cmd {
	case "set":
		if len(args) != 2 {
			return fmt.Errorf("usage: set <index> <0|1>")
		}
		idx, err := parseIndex(args[0])
		if err != nil {
			return err
		}
		v, err := parseLevel(args[1])
		if err != nil {
			return err
		}
		return d.engine.SetSensor(idx, v)

	case "sensors":
		if len(args) != 1 {
			return fmt.Errorf("usage: sensors <bits>")
		}
		v, err := circuit.ParseSensorVector(args[0])
		if err != nil {
			return err
		}
		d.engine.SetSensors(v)
		return nil

	case "reset-line":
		if len(args) != 1 {
			return fmt.Errorf("usage: reset-line <0|1>")
		}
		v, err := parseLevel(args[0])
		if err != nil {
			return err
		}
		d.engine.SetReset(v)
		return nil

	case "tick":
		n := 1
		if len(args) > 1 {
			return fmt.Errorf("usage: tick [n]")
		}
		if len(args) == 1 {
			parsed, err := strconv.Atoi(args[0])
			if err != nil || parsed < 0 {
				return fmt.Errorf("invalid tick count %q", args[0])
			}
			n = parsed
		}
		return d.Ticks(ctx, n)

	case "reset":
		d.engine.Reset()
		d.recorder.Clear()
		fmt.Fprintln(d.out, "reset")
		return nil

	case "state":
		snap := d.engine.Snapshot()
		fmt.Fprintf(d.out, "state=%s outputs=%s tick=%d\n", snap.State, snap.Outputs, snap.Tick)
		return nil

	case "wave":
		return waveform.Render(d.out, d.recorder.Frames())

	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}

// Ticks runs n clock ticks, waiting for the ticker before each one when
// the driver is paced.
func (d *Driver) Ticks(ctx context.Context, n int) error {
	for i := 0; i < n; i++ {
		if d.ticker != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-d.ticker.C():
			}
		} else if err := ctx.Err(); err != nil {
			return err
		}

		d.engine.Tick()
		f := d.recorder.Record(d.engine.Snapshot())
		fmt.Fprintf(d.out, "tick %d: sensors=%s state=%s outputs=%s\n", f.Tick, f.Sensors, f.State, f.Outputs)
		d.logger.Debug("tick", "tick", f.Tick, "state", f.State)
	}
	return nil
}

// parseIndex accepts a 0-based index or a sensor name S1..S6. Numeric
// indices are passed to the engine unchecked so that it reports invalid
// ones.
func parseIndex(s string) (int, error) {
	if len(s) == 2 && (s[0] == 'S' || s[0] == 's') && s[1] >= '1' && s[1] <= '6' {
		return int(s[1] - '1'), nil
	}
	idx, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("invalid sensor index %q", s)
	}
	return idx, nil
}

func parseLevel(s string) (bool, error) {
	switch s {
	case "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, fmt.Errorf("invalid level %q (want 0 or 1)", s)
	}
}
