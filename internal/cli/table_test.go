package cli

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/dehydra/internal/circuit"
)

func TestDecisionTable(t *testing.T) {
	rows := DecisionTable()
	require.Len(t, rows, 64)

	assert.Equal(t, "000000", rows[0].Sensors)
	assert.Equal(t, "100000", rows[32].Sensors, "S1 is the most significant bit")
	assert.Equal(t, "111111", rows[63].Sensors)

	counts := map[circuit.State]int{}
	for _, r := range rows {
		counts[r.State]++
		assert.Equal(t, circuit.Encode(r.State).Bits(), r.Outputs, r.Sensors)
	}
	assert.Equal(t, 6, counts[circuit.Idle])
	assert.Equal(t, 11, counts[circuit.LightDehydration])
	assert.Equal(t, 30, counts[circuit.SevereDehydration])
	assert.Equal(t, 17, counts[circuit.ActivityAlert])
}

func TestTableCommand_Text(t *testing.T) {
	out, err := execute(t, NewTableCommand(&RootOptions{Format: "text"}))
	require.NoError(t, err)

	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	require.Len(t, lines, 65)
	assert.Equal(t, []string{"S1..S6", "P1", "P2", "P3", "STATE", "A1..A6"}, strings.Fields(lines[0]))
	assert.Equal(t, []string{"100010", "1", "0", "1", "SevereDehydration", "111111"}, strings.Fields(lines[1+0b100010]))
}

func TestTableCommand_StateFilter(t *testing.T) {
	out, err := execute(t, NewTableCommand(&RootOptions{Format: "json"}), "--state", "IDLE")
	require.NoError(t, err)

	var resp struct {
		Data []TableRow `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 6)
	for _, r := range resp.Data {
		assert.Equal(t, circuit.Idle, r.State)
		assert.Equal(t, "000000", r.Outputs)
	}
}

func TestTableCommand_BadState(t *testing.T) {
	_, err := execute(t, NewTableCommand(&RootOptions{Format: "text"}), "--state", "Panic")
	require.Error(t, err)
	assert.Equal(t, ExitCommandError, GetExitCode(err))
}
