package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/dehydra/internal/circuit"
	"github.com/roach88/dehydra/internal/harness"
	"github.com/roach88/dehydra/internal/waveform"
)

// TraceOptions holds flags for the trace command.
type TraceOptions struct {
	*RootOptions
	History int // frames to show, newest last
}

// TraceResult holds the complete trace output.
type TraceResult struct {
	Scenario string           `json:"scenario"`
	RunID    string           `json:"run_id"`
	Pass     bool             `json:"pass"`
	Digest   string           `json:"digest"`
	Frames   []map[string]any `json:"frames"`
	Stats    TraceStats       `json:"stats"`
}

// TraceStats holds summary statistics for the trace.
type TraceStats struct {
	TotalEvents int `json:"total_events"`
	Ticks       int `json:"ticks"`
	Resets      int `json:"resets"`
	Transitions int `json:"transitions"`
}

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TraceOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "trace <scenario>",
		Short: "Render the waveform of a scenario run",
		Long: `Run one scenario and render what the engine did on every tick.

The argument is a scenario file or the name of a built-in scenario.

The output includes:
- Waveform: one column per frame for S1..S6, the reset line, A1..A6 and
  the state code
- Digest: chained hash of every frame, equal across identical runs
- Stats: summary statistics for the run

Examples:
  dehydra trace ./scenarios/reset.yaml
  dehydra trace console_demo --history 20
  dehydra trace severe_s5_s1 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.History, "history", waveform.DefaultMaxHistory, "number of frames to show")

	return cmd
}

func runTrace(opts *TraceOptions, target string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	scenario, err := loadScenarioArg(target)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeLoadFailed, err.Error(), err)
	}

	result, err := harness.Run(scenario, harness.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "scenario execution failed", err)
	}

	digest, err := result.Digest()
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "failed to digest trace", err)
	}

	// Keep only the newest frames, as the waveform panel does.
	frames := lastFrames(result.Frames(), opts.History)

	out := TraceResult{
		Scenario: scenario.Name,
		RunID:    result.RunID,
		Pass:     result.Pass,
		Digest:   digest,
		Frames:   make([]map[string]any, len(frames)),
		Stats:    traceStats(result),
	}
	for i, f := range frames {
		out.Frames[i] = f.Map()
	}

	if opts.Format == "json" {
		formatter.RunID = result.RunID
		return formatter.Success(out)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Scenario: %s\n", out.Scenario)
	fmt.Fprintf(w, "Run: %s\n\n", out.RunID)
	if err := waveform.Render(w, frames); err != nil {
		return err
	}
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Events: %d (ticks %d, resets %d), transitions: %d\n",
		out.Stats.TotalEvents, out.Stats.Ticks, out.Stats.Resets, out.Stats.Transitions)
	fmt.Fprintf(w, "Digest: %s\n", out.Digest)
	if !result.Pass {
		for _, e := range result.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return NewExitError(ExitFailure, "scenario failed")
	}
	return nil
}

// loadScenarioArg loads a scenario file, falling back to a built-in of
// that name when no such file exists.
func loadScenarioArg(target string) (*harness.Scenario, error) {
	if _, err := os.Stat(target); err == nil {
		return harness.LoadScenario(target)
	}
	s, err := harness.BuiltinScenario(target)
	if err != nil {
		return nil, fmt.Errorf("no scenario file or built-in named %q", target)
	}
	return s, nil
}

func lastFrames(frames []waveform.Frame, n int) []waveform.Frame {
	if n <= 0 || len(frames) <= n {
		return frames
	}
	return frames[len(frames)-n:]
}

// traceStats counts events and state changes. The engine starts in Idle,
// so a first tick into another state is a transition.
func traceStats(result *harness.Result) TraceStats {
	stats := TraceStats{TotalEvents: len(result.Trace)}
	prev := circuit.Idle
	for _, e := range result.Trace {
		switch e.Type {
		case harness.EventTick:
			stats.Ticks++
		case harness.EventReset:
			stats.Resets++
		}
		if e.State != prev {
			stats.Transitions++
		}
		prev = e.State
	}
	return stats
}
