package harness

import (
	_ "embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/errors"
	"gopkg.in/yaml.v3"
)

//go:embed scenario.cue
var scenarioSchema string

// SchemaError reports every place a scenario file disagrees with the
// scenario schema.
type SchemaError struct {
	Source string
	Issues []string
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("%s: schema violation: %s", e.Source, strings.Join(e.Issues, "; "))
}

// ValidateScenarioFile checks a scenario file against the CUE schema.
func ValidateScenarioFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read scenario file: %w", err)
	}
	return ValidateScenarioBytes(filepath.Base(path), data)
}

// ValidateScenarioBytes checks scenario YAML against the CUE schema.
//
// Unlike ParseScenario, it reports all violations at once rather than the
// first, and it is closed: unknown fields anywhere in the document fail.
// source names the data in errors.
func ValidateScenarioBytes(source string, data []byte) error {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return fmt.Errorf("%s: failed to parse YAML: %w", source, err)
	}
	if doc == nil {
		return &SchemaError{Source: source, Issues: []string{"empty document"}}
	}

	// A cue.Context is not safe for concurrent use, so each call builds
	// its own.
	ctx := cuecontext.New()
	schema := ctx.CompileString(scenarioSchema, cue.Filename("scenario.cue"))
	if err := schema.Err(); err != nil {
		return fmt.Errorf("scenario schema: %w", err)
	}

	v := ctx.Encode(doc)
	if err := v.Err(); err != nil {
		return formatCUEError(source, err)
	}

	def := schema.LookupPath(cue.ParsePath("#Scenario"))
	if err := def.Unify(v).Validate(cue.Concrete(true)); err != nil {
		return formatCUEError(source, err)
	}

	// Rules the schema cannot express, such as two set keys naming the
	// same sensor, come from the loader's own checks.
	var scenario Scenario
	if err := yaml.Unmarshal(data, &scenario); err != nil {
		return fmt.Errorf("%s: failed to parse YAML: %w", source, err)
	}
	if err := validateScenario(&scenario); err != nil {
		return &SchemaError{Source: source, Issues: []string{err.Error()}}
	}
	return nil
}

// formatCUEError flattens a CUE error list into a SchemaError.
func formatCUEError(source string, err error) error {
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return &SchemaError{Source: source, Issues: []string{err.Error()}}
	}

	issues := make([]string, 0, len(errs))
	seen := make(map[string]bool)
	for _, e := range errs {
		msg := e.Error()
		if path := strings.Join(e.Path(), "."); path != "" && !strings.HasPrefix(msg, path) {
			msg = path + ": " + msg
		}
		if !seen[msg] {
			seen[msg] = true
			issues = append(issues, msg)
		}
	}
	return &SchemaError{Source: source, Issues: issues}
}
