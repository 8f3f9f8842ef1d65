package cli

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/dehydra/internal/harness"
	"github.com/roach88/dehydra/internal/runid"
)

// TestOptions holds flags for the test command.
type TestOptions struct {
	*RootOptions
	Update bool   // regenerate golden files
	Filter string // scenario filter (glob pattern)

	// RunIDGenerator allows overriding the run ID generator (for testing).
	// If nil, scenarios use their pinned or default run ID.
	RunIDGenerator runid.Generator
}

// ScenarioResult holds the result of a single scenario execution.
type ScenarioResult struct {
	Name   string   `json:"name"`
	Pass   bool     `json:"pass"`
	Digest string   `json:"digest,omitempty"`
	Errors []string `json:"errors,omitempty"`
}

// TestResult holds the overall test result.
type TestResult struct {
	Scenarios []ScenarioResult `json:"scenarios"`
	Passed    int              `json:"passed"`
	Failed    int              `json:"failed"`
	Total     int              `json:"total"`
}

// NewTestCommand creates the test command.
func NewTestCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &TestOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "test [scenarios-dir]",
		Short: "Run classifier scenarios",
		Long: `Run scenario files against the engine, validating step expectations,
assertions, and golden traces.

Without a directory the built-in scenarios run: the five simulator test
cases and the console demo vectors. With a directory every *.yaml file
in it runs, and its trace is compared with golden/<name>.golden when
that file exists.

Exit codes:
  0 - All scenarios passed
  1 - One or more scenarios failed
  2 - Command error (invalid paths, etc.)

Examples:
  dehydra test
  dehydra test ./scenarios
  dehydra test ./scenarios --filter "reset*"
  dehydra test ./scenarios --update
  dehydra test --format json`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			}
			return runTests(opts, dir, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.Update, "update", false, "regenerate golden files")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter scenarios by glob pattern")

	return cmd
}

// scenarioSource is one scenario to run: parsed, or the error that
// prevented parsing. golden is empty for built-ins.
type scenarioSource struct {
	label    string
	scenario *harness.Scenario
	loadErr  error
	golden   string
}

func runTests(opts *TestOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts.RootOptions, cmd)

	sources, err := collectScenarios(opts, scenariosDir)
	if err != nil {
		code, message := ErrCodeGeneric, err.Error()
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code, message = loadErr.Code, loadErr.Message
		}
		return formatter.Fail(ExitCommandError, code, message, err)
	}

	if len(sources) == 0 && !formatter.isJSON() {
		fmt.Fprintln(formatter.Writer, "No scenarios found.")
		return nil
	}

	logger := newLogger(opts.RootOptions, cmd.ErrOrStderr())

	result := TestResult{
		Scenarios: make([]ScenarioResult, 0, len(sources)),
		Total:     len(sources),
	}

	for _, src := range sources {
		scenResult := runScenario(src, opts, logger)
		result.Scenarios = append(result.Scenarios, scenResult)

		if scenResult.Pass {
			result.Passed++
		} else {
			result.Failed++
		}

		if !formatter.isJSON() {
			printScenarioResult(formatter.Writer, scenResult, opts.Update && src.golden != "")
		}
	}

	return reportTests(formatter, result)
}

// collectScenarios loads the built-in scenarios when dir is empty, else
// every scenario file under dir.
func collectScenarios(opts *TestOptions, dir string) ([]scenarioSource, error) {
	if dir == "" {
		if opts.Update {
			return nil, fmt.Errorf("--update needs a scenarios directory")
		}
		scenarios, err := harness.Builtin()
		if err != nil {
			return nil, err
		}
		sources := make([]scenarioSource, 0, len(scenarios))
		for _, s := range scenarios {
			if opts.Filter != "" {
				matched, err := filepath.Match(opts.Filter, s.Name)
				if err != nil {
					return nil, fmt.Errorf("invalid filter pattern: %w", err)
				}
				if !matched {
					continue
				}
			}
			sources = append(sources, scenarioSource{label: s.Name, scenario: s})
		}
		return sources, nil
	}

	files, err := findScenarioFiles(dir, opts.Filter)
	if err != nil {
		return nil, err
	}

	sources := make([]scenarioSource, 0, len(files))
	for _, file := range files {
		s, err := harness.LoadScenario(file)
		src := scenarioSource{label: filepath.Base(file), scenario: s, loadErr: err, golden: goldenFilePath(file)}
		if s != nil {
			src.label = s.Name
		}
		sources = append(sources, src)
	}
	return sources, nil
}

// runScenario executes a single scenario and returns the result.
func runScenario(src scenarioSource, opts *TestOptions, logger *slog.Logger) ScenarioResult {
	if src.loadErr != nil {
		return ScenarioResult{
			Name:   src.label,
			Errors: []string{fmt.Sprintf("failed to load scenario: %v", src.loadErr)},
		}
	}

	runOpts := []harness.Option{harness.WithLogger(logger)}
	if opts.RunIDGenerator != nil {
		runOpts = append(runOpts, harness.WithRunIDGenerator(opts.RunIDGenerator))
	}

	result, err := harness.Run(src.scenario, runOpts...)
	if err != nil {
		return ScenarioResult{
			Name:   src.label,
			Errors: []string{fmt.Sprintf("execution failed: %v", err)},
		}
	}

	scenResult := ScenarioResult{
		Name:   src.label,
		Pass:   result.Pass,
		Errors: result.Errors,
	}
	if digest, err := result.Digest(); err == nil {
		scenResult.Digest = digest
	}

	if src.golden == "" {
		return scenResult
	}

	current, err := harness.GoldenBytes(src.scenario.Name, result)
	if err != nil {
		scenResult.Pass = false
		scenResult.Errors = append(scenResult.Errors, fmt.Sprintf("failed to marshal trace: %v", err))
		return scenResult
	}

	if opts.Update {
		if err := writeGolden(src.golden, current); err != nil {
			scenResult.Pass = false
			scenResult.Errors = append(scenResult.Errors, fmt.Sprintf("failed to update golden file: %v", err))
		}
		return scenResult
	}

	goldenData, err := os.ReadFile(src.golden)
	if os.IsNotExist(err) {
		// No golden file - use assertion-based validation only
		return scenResult
	}
	if err != nil {
		scenResult.Pass = false
		scenResult.Errors = append(scenResult.Errors, fmt.Sprintf("golden comparison failed: %v", err))
		return scenResult
	}

	if !bytes.Equal(goldenData, current) {
		scenResult.Pass = false
		scenResult.Errors = append(scenResult.Errors, "trace does not match golden file (run with --update to regenerate)")
	}
	return scenResult
}

// writeGolden writes the current trace as the golden file.
func writeGolden(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create golden directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write golden file: %w", err)
	}
	return nil
}

func printScenarioResult(w io.Writer, r ScenarioResult, updated bool) {
	if !r.Pass {
		fmt.Fprintf(w, "✗ %s\n", r.Name)
		for _, e := range r.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
		return
	}
	if updated {
		fmt.Fprintf(w, "✓ %s (golden updated)\n", r.Name)
		return
	}
	fmt.Fprintf(w, "✓ %s\n", r.Name)
}

// reportTests writes the summary and returns an ExitFailure error when any
// scenario failed.
func reportTests(f *OutputFormatter, result TestResult) error {
	var failed error
	if result.Failed > 0 {
		failed = NewExitError(ExitFailure, fmt.Sprintf("%d scenario(s) failed", result.Failed))
	}

	if f.isJSON() {
		resp := CLIResponse{Status: "ok", Data: result}
		if failed != nil {
			resp.Status = "error"
			resp.Error = &CLIError{Code: ErrCodeTestsFailed, Message: failed.Error()}
		}
		if err := f.encode(resp); err != nil {
			return err
		}
		return failed
	}

	fmt.Fprintf(f.Writer, "\nTest Summary: %d passed, %d failed, %d total\n", result.Passed, result.Failed, result.Total)
	if failed == nil {
		fmt.Fprintln(f.Writer, "✓ All scenarios passed")
	}
	return failed
}
