package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/roach88/dehydra/internal/circuit"
)

// TableOptions holds flags for the table command.
type TableOptions struct {
	*RootOptions
	State string // only rows resolving to this state
}

// TableRow is the decision for one synchronized sensor vector.
type TableRow struct {
	Sensors string        `json:"sensors"`
	Flags   circuit.Flags `json:"flags"`
	State   circuit.State `json:"state"`
	Outputs string        `json:"outputs"`
}

// NewTableCommand creates the table command.
func NewTableCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TableOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "table",
		Short: "Print the decision table for all 64 sensor vectors",
		Long: `Print the hazard flags, next state and actuator outputs for every
possible synchronized sensor vector.

The state is a function of the synchronized vector alone; the previous
state never enters the decision.

Examples:
  dehydra table
  dehydra table --state SevereDehydration
  dehydra table --format json`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTable(opts, cmd)
		},
	}

	cmd.Flags().StringVar(&opts.State, "state", "", "only show vectors resolving to this state")

	return cmd
}

// DecisionTable evaluates every synchronized vector, S1 most significant.
func DecisionTable() []TableRow {
	rows := make([]TableRow, 0, 1<<circuit.Width)
	for n := 0; n < 1<<circuit.Width; n++ {
		var v circuit.SensorVector
		for i := 0; i < circuit.Width; i++ {
			v[i] = n&(1<<(circuit.Width-1-i)) != 0
		}
		flags := circuit.Classify(v)
		state := circuit.NextState(flags)
		rows = append(rows, TableRow{
			Sensors: v.Bits(),
			Flags:   flags,
			State:   state,
			Outputs: circuit.Encode(state).Bits(),
		})
	}
	return rows
}

func runTable(opts *TableOptions, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	rows := DecisionTable()
	if opts.State != "" {
		want, err := circuit.ParseState(opts.State)
		if err != nil {
			return formatter.Fail(ExitCommandError, ErrCodeGeneric, err.Error(), err)
		}
		filtered := rows[:0]
		for _, r := range rows {
			if r.State == want {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if opts.Format == "json" {
		return formatter.Success(rows)
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "S1..S6\tP1\tP2\tP3\tSTATE\tA1..A6")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%s\t%s\n",
			r.Sensors, b2i(r.Flags.P1), b2i(r.Flags.P2), b2i(r.Flags.P3), r.State, r.Outputs)
	}
	return tw.Flush()
}

func b2i(b bool) int {
	if b {
		return 1
	}
	return 0
}
