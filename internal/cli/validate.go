package cli

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/roach88/dehydra/internal/harness"
)

// FileValidation is the schema check of one scenario file.
type FileValidation struct {
	File   string   `json:"file"`
	Valid  bool     `json:"valid"`
	Errors []string `json:"errors,omitempty"`
}

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid bool             `json:"valid"`
	Files []FileValidation `json:"files"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <scenarios-dir>",
		Short: "Validate scenario files without running them",
		Long: `Validate scenario files against the scenario schema without running them.

Reports every violation in every file: unknown fields, malformed sensor
vectors, unknown state names, and assertions missing required fields.
Faster than test for development feedback.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true, // Don't print usage on errors
		SilenceErrors: true, // Don't print errors - we handle our own error output
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, scenariosDir string, cmd *cobra.Command) error {
	formatter := newFormatter(opts, cmd)

	files, err := findScenarioFiles(scenariosDir, "")
	if err != nil {
		code, message := ErrCodeGeneric, err.Error()
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			code, message = loadErr.Code, loadErr.Message
		}
		return formatter.Fail(ExitCommandError, code, message, err)
	}
	if len(files) == 0 {
		return formatter.Fail(ExitCommandError, ErrCodeNoFiles, fmt.Sprintf("no scenario files found in %s", scenariosDir), nil)
	}

	formatter.VerboseLog("Found %d scenario file(s) in %s", len(files), scenariosDir)

	result := ValidationResult{Valid: true, Files: make([]FileValidation, 0, len(files))}
	for _, file := range files {
		formatter.VerboseLog("Validating: %s", file)
		fv := FileValidation{File: file, Valid: true}

		if err := harness.ValidateScenarioFile(file); err != nil {
			fv.Valid = false
			var schemaErr *harness.SchemaError
			if errors.As(err, &schemaErr) {
				fv.Errors = schemaErr.Issues
			} else {
				fv.Errors = []string{err.Error()}
			}
			result.Valid = false
		}
		result.Files = append(result.Files, fv)
	}

	if !result.Valid {
		return outputValidationErrors(formatter, result)
	}
	return outputValidateSuccess(formatter, result)
}

// outputValidationErrors outputs per-file schema violations.
func outputValidationErrors(formatter *OutputFormatter, result ValidationResult) error {
	invalid := 0
	for _, f := range result.Files {
		if !f.Valid {
			invalid++
		}
	}
	message := fmt.Sprintf("%d of %d scenario file(s) invalid", invalid, len(result.Files))

	if formatter.Format == "json" {
		if err := formatter.Error(ErrCodeSchema, message, result.Files); err != nil {
			return err
		}
		return NewExitError(ExitFailure, message)
	}

	w := formatter.Writer
	for _, f := range result.Files {
		if f.Valid {
			fmt.Fprintf(w, "✓ %s\n", filepath.Base(f.File))
			continue
		}
		fmt.Fprintf(w, "✗ %s\n", filepath.Base(f.File))
		for _, e := range f.Errors {
			fmt.Fprintf(w, "  %s\n", e)
		}
	}
	fmt.Fprintf(w, "\nError [%s]: %s\n", ErrCodeSchema, message)
	return NewExitError(ExitFailure, message)
}

// outputValidateSuccess outputs a successful validation result.
func outputValidateSuccess(formatter *OutputFormatter, result ValidationResult) error {
	if formatter.Format == "json" {
		return formatter.Success(result)
	}
	return formatter.Success(fmt.Sprintf("✓ All %d scenario file(s) valid", len(result.Files)))
}
