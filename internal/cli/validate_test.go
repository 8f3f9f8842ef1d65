package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unknownStateScenario = `name: bad
description: "Asserts a state that does not exist"
steps:
  - ticks: 1
assertions:
  - type: final_state
    state: Panic
`

func TestValidateCommand_Valid(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"light.yaml": lightScenario,
		"wrong.yml":  wrongScenario, // fails at run time, not schema time
	})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ All 2 scenario file(s) valid")
}

func TestValidateCommand_Invalid(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"light.yaml": lightScenario,
		"bad.yaml":   unknownStateScenario,
	})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ light.yaml\n")
	assert.Contains(t, out, "✗ bad.yaml\n")
	assert.Contains(t, out, "Error ["+ErrCodeSchema+"]: 1 of 2 scenario file(s) invalid")
}

func TestValidateCommand_InvalidJSON(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"bad.yaml": unknownStateScenario})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string `json:"status"`
		Error  struct {
			Code    string           `json:"code"`
			Details []FileValidation `json:"details"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	assert.Equal(t, ErrCodeSchema, resp.Error.Code)
	require.Len(t, resp.Error.Details, 1)
	assert.False(t, resp.Error.Details[0].Valid)
	assert.NotEmpty(t, resp.Error.Details[0].Errors)
}

func TestValidateCommand_ValidJSON(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"light.yaml": lightScenario})

	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "json"}), dir)
	require.NoError(t, err)

	var resp struct {
		Status string           `json:"status"`
		Data   ValidationResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "ok", resp.Status)
	assert.True(t, resp.Data.Valid)
	require.Len(t, resp.Data.Files, 1)
	assert.True(t, resp.Data.Files[0].Valid)
}

func TestValidateCommand_NoFiles(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNoFiles+"]")
}

func TestValidateCommand_MissingDirectory(t *testing.T) {
	out, err := execute(t, NewValidateCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}
