package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/roach88/dehydra/internal/circuit"
)

// StepOptions holds flags for the step command.
type StepOptions struct {
	*RootOptions
	Ticks int
}

// StepResult is the engine state after a step.
type StepResult struct {
	Inputs  string        `json:"inputs"`
	Ticks   int64         `json:"ticks"`
	State   circuit.State `json:"state"`
	Code    int           `json:"code"`
	Outputs string        `json:"outputs"`
	Flags   circuit.Flags `json:"flags"`
}

// NewStepCommand creates the step command.
func NewStepCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &StepOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "step <sensors>",
		Short: "Apply one sensor vector to a fresh engine",
		Long: `Apply a sensor vector to a freshly reset engine, clock it, and print
the resulting state and actuator outputs.

The vector lists S1..S6 either as a bit string or comma separated.
Two ticks are needed for an input to pass the synchronizer.

Examples:
  dehydra step 110000
  dehydra step 1,0,0,0,1,0
  dehydra step 000001 --ticks 5 --format json`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runStep(opts, args[0], cmd)
		},
	}

	cmd.Flags().IntVar(&opts.Ticks, "ticks", 2, "number of clock ticks to run")

	return cmd
}

func runStep(opts *StepOptions, bits string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	v, err := circuit.ParseSensorVector(bits)
	if err != nil {
		return formatter.Fail(ExitCommandError, ErrCodeInvalidVector, err.Error(), err)
	}
	if opts.Ticks < 0 {
		return formatter.Fail(ExitCommandError, ErrCodeGeneric, "ticks must be non-negative", nil)
	}

	eng := circuit.New(circuit.WithLogger(newLogger(opts.RootOptions, cmd.ErrOrStderr())))
	eng.Reset()
	eng.SetSensors(v)
	for i := 0; i < opts.Ticks; i++ {
		eng.Tick()
	}

	snap := eng.Snapshot()
	result := StepResult{
		Inputs:  snap.Sensors.Bits(),
		Ticks:   snap.Tick,
		State:   snap.State,
		Code:    snap.State.Code(),
		Outputs: snap.Outputs.Bits(),
		Flags:   snap.Flags,
	}

	if opts.Format == "json" {
		return formatter.Success(result)
	}

	w := cmd.OutOrStdout()
	fmt.Fprintf(w, "Inputs:  S1..S6 = %s\n", result.Inputs)
	fmt.Fprintf(w, "Ticks:   %d\n", result.Ticks)
	fmt.Fprintf(w, "State:   %s (%02b)\n", result.State, result.Code)
	fmt.Fprintf(w, "Outputs: A1..A6 = %s\n", result.Outputs)
	formatter.VerboseLog("Flags: P1=%t P2=%t P3=%t", result.Flags.P1, result.Flags.P2, result.Flags.P3)
	return nil
}
