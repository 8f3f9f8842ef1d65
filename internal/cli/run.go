package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/roach88/dehydra/internal/circuit"
	"github.com/roach88/dehydra/internal/runid"
	"github.com/roach88/dehydra/internal/waveform"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions
	Script  string        // script file; "-" or empty reads stdin
	Period  time.Duration // wall-clock period per tick; 0 runs unpaced
	Ticks   int           // free-running ticks after the script
	History int           // waveform frames kept

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, defaults to UUIDv7Generator.
	RunIDGenerator runid.Generator

	// NewTicker allows overriding the pacing source (for testing).
	// If nil, defaults to NewWallTicker.
	NewTicker func(time.Duration) Ticker
}

// RunSummary is the JSON payload of the run command.
type RunSummary struct {
	RunID   string           `json:"run_id"`
	Ticks   int64            `json:"ticks"`
	State   circuit.State    `json:"state"`
	Outputs string           `json:"outputs"`
	Frames  []map[string]any `json:"frames"`
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Drive the engine from a command script",
		Long: `Drive a single engine from a line-oriented command script.

Commands:
  set <index|S1..S6> <0|1>   drive one sensor line (index 0..5)
  sensors <bits>             drive all six lines, e.g. 110000
  reset-line <0|1>           drive the active-low reset line
  tick [n]                   run n clock ticks (default 1)
  reset                      reinitialize the engine
  state                      print state and outputs
  wave                       print the recorded waveform

With --period every tick waits for a wall-clock timer. With --ticks the
clock keeps running for that many ticks after the script ends.
Ctrl-C stops the run.

Examples:
  echo "sensors 110000
  tick 2
  state" | dehydra run
  dehydra run --script demo.txt --period 500ms --ticks 20`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDriver(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.Script, "script", "", "script file (default stdin)")
	cmd.Flags().DurationVar(&opts.Period, "period", 0, "wall-clock period per tick (e.g. 500ms)")
	cmd.Flags().IntVar(&opts.Ticks, "ticks", 0, "free-running ticks after the script")
	cmd.Flags().IntVar(&opts.History, "history", waveform.DefaultMaxHistory, "waveform frames to keep")

	return cmd
}

func runDriver(opts *RunOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	if opts.Ticks < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "ticks must be non-negative", nil)
	}

	gen := opts.RunIDGenerator
	if gen == nil {
		gen = runid.UUIDv7Generator{}
	}
	runID := gen.Generate()
	formatter.RunID = runID

	logger := newLogger(opts.RootOptions, formatter.GetErrWriter()).With("run_id", runID)

	// Open the script before starting anything
	var script io.Reader = cmd.InOrStdin()
	if opts.Script != "" && opts.Script != "-" {
		f, err := os.Open(opts.Script)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeNotFound, fmt.Sprintf("script not found: %s", opts.Script), err)
		}
		defer f.Close()
		script = f
	}

	// Setup signal handling for graceful shutdown
	// Use command's context if available (for testing), otherwise create one
	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, cancel := context.WithCancel(parentCtx)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	defer signal.Stop(sigChan) // Prevent signal handler leak

	go func() {
		select {
		case sig := <-sigChan:
			logger.Info("received signal, shutting down", "signal", sig)
			cancel()
		case <-ctx.Done():
			// Parent context cancelled (e.g., from test)
		}
	}()

	var ticker Ticker
	if opts.Period > 0 {
		newTicker := opts.NewTicker
		if newTicker == nil {
			newTicker = NewWallTicker
		}
		ticker = newTicker(opts.Period)
		defer ticker.Stop()
	}

	eng := circuit.New(circuit.WithLogger(logger))
	rec := waveform.NewRecorder(opts.History)

	// JSON output is a single envelope at the end; keep the stream off stdout.
	out := cmd.OutOrStdout()
	if opts.Format == "json" {
		out = io.Discard
	}
	driver := NewDriver(eng, rec, out, logger, ticker)

	logger.Info("run started", "period", opts.Period, "ticks", opts.Ticks)

	err := driver.Run(ctx, script)
	if err == nil && opts.Ticks > 0 {
		err = driver.Ticks(ctx, opts.Ticks)
	}

	interrupted := errors.Is(err, context.Canceled)
	if err != nil && !interrupted {
		code := ErrCodeScript
		if circuit.IsInvalidIndex(err) {
			code = ErrCodeInvalidIndex
		}
		return formatter.Fail(ExitCommandError, code, err.Error(), err)
	}

	snap := eng.Snapshot()
	logger.Info("run stopped", "ticks", snap.Tick, "state", snap.State, "interrupted", interrupted)

	if opts.Format == "json" {
		frames := rec.Frames()
		maps := make([]map[string]any, len(frames))
		for i, f := range frames {
			maps[i] = f.Map()
		}
		return formatter.Success(RunSummary{
			RunID:   runID,
			Ticks:   snap.Tick,
			State:   snap.State,
			Outputs: snap.Outputs.Bits(),
			Frames:  maps,
		})
	}
	return nil
}
