package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const lightScenario = `name: light
description: "S1 and S2 classify as light dehydration"
steps:
  - sensors: [1, 1, 0, 0, 0, 0]
    ticks: 2
    expect:
      state: LightDehydration
assertions:
  - type: final_state
    state: LightDehydration
    outputs: [1, 0, 1, 1, 0, 0]
`

const wrongScenario = `name: wrong
description: "Expects the wrong state on purpose"
steps:
  - sensors: [0, 0, 0, 0, 0, 1]
    ticks: 2
assertions:
  - type: final_state
    state: Idle
`

func writeScenarioDir(t *testing.T, files map[string]string) string {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(content), 0644))
	}
	return dir
}

func TestTestCommand_Builtins(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)
	assert.Contains(t, out, "✓ idle_all_off\n")
	assert.Contains(t, out, "✓ console_demo\n")
	assert.Contains(t, out, "Test Summary: 8 passed, 0 failed, 8 total")
	assert.Contains(t, out, "✓ All scenarios passed")
}

func TestTestCommand_BuiltinFilter(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "--filter", "idle_*")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ idle_all_off\n")
	assert.Contains(t, out, "✓ idle_s1_only\n")
	assert.NotContains(t, out, "priority")
	assert.Contains(t, out, "2 total")
}

func TestTestCommand_UpdateNeedsDirectory(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "--update")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "--update needs a scenarios directory")
}

func TestTestCommand_MissingDirectory(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), "/nonexistent/scenarios")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
	assert.Contains(t, out, "Error ["+ErrCodeNotFound+"]")
}

func TestTestCommand_EmptyDirectory(t *testing.T) {
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), t.TempDir())
	require.NoError(t, err)
	assert.Contains(t, out, "No scenarios found.")
}

func TestTestCommand_GoldenUpdateThenCompare(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"light.yaml": lightScenario})
	golden := filepath.Join(dir, "golden", "light.golden")

	// No golden yet: assertions alone decide.
	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ light\n")
	assert.NoFileExists(t, golden)

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--update")
	require.NoError(t, err)
	assert.Contains(t, out, "✓ light (golden updated)")
	require.FileExists(t, golden)

	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ light\n")

	// Tamper with the snapshot.
	require.NoError(t, os.WriteFile(golden, []byte(`{"tampered":true}`), 0644))
	out, err = execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ light")
	assert.Contains(t, out, "trace does not match golden file")
}

func TestTestCommand_GoldenDirNotScanned(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"light.yaml": lightScenario})
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "golden"), 0755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "golden", "stray.yaml"), []byte("not: a scenario"), 0644))

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.NoError(t, err)
	assert.Contains(t, out, "1 total")
}

func TestTestCommand_FailingScenario(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"light.yaml": lightScenario,
		"wrong.yaml": wrongScenario,
	})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✓ light\n")
	assert.Contains(t, out, "✗ wrong")
	assert.Contains(t, out, "Test Summary: 1 passed, 1 failed, 2 total")
}

func TestTestCommand_LoadFailure(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{"broken.yaml": "name: [unclosed"})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))
	assert.Contains(t, out, "✗ broken.yaml")
	assert.Contains(t, out, "failed to load scenario")
}

func TestTestCommand_DirectoryFilter(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"light.yaml": lightScenario,
		"wrong.yaml": wrongScenario,
	})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "text"}), dir, "--filter", "li*")
	require.NoError(t, err)
	assert.Contains(t, out, "1 passed, 0 failed, 1 total")
}

func TestTestCommand_JSON(t *testing.T) {
	dir := writeScenarioDir(t, map[string]string{
		"light.yaml": lightScenario,
		"wrong.yaml": wrongScenario,
	})

	out, err := execute(t, NewTestCommand(&RootOptions{Format: "json"}), dir)
	require.Error(t, err)
	assert.Equal(t, ExitFailure, GetExitCode(err))

	var resp struct {
		Status string     `json:"status"`
		Data   TestResult `json:"data"`
		Error  *CLIError  `json:"error"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.Equal(t, "error", resp.Status)
	require.NotNil(t, resp.Error)
	assert.Equal(t, ErrCodeTestsFailed, resp.Error.Code)
	assert.Equal(t, 2, resp.Data.Total)
	assert.Equal(t, 1, resp.Data.Passed)

	require.Len(t, resp.Data.Scenarios, 2)
	assert.Equal(t, "light", resp.Data.Scenarios[0].Name)
	assert.True(t, resp.Data.Scenarios[0].Pass)
	assert.Len(t, resp.Data.Scenarios[0].Digest, 64)
	assert.False(t, resp.Data.Scenarios[1].Pass)
	assert.NotEmpty(t, resp.Data.Scenarios[1].Errors)
}
