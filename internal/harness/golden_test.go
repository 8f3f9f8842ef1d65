package harness

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden_Builtins(t *testing.T) {
	scenarios, err := Builtin()
	require.NoError(t, err)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			// Regenerate with: go test ./internal/harness -run TestRunWithGolden -update
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestGoldenBytes_Canonical(t *testing.T) {
	s, err := BuiltinScenario("idle_all_off")
	require.NoError(t, err)
	result, err := Run(s)
	require.NoError(t, err)

	got, err := GoldenBytes(s.Name, result)
	require.NoError(t, err)

	text := string(got)
	assert.True(t, strings.HasPrefix(text, `{"digest":"`), "keys are sorted")
	assert.Contains(t, text, `"run_id":"test-run-default"`)
	assert.Contains(t, text, `"scenario_name":"idle_all_off"`)
	assert.Contains(t, text, `{"outputs":"000000","reset_line":true,"sensors":"000000","stage2":"000000","state":"Idle","step":0,"tick":0,"type":"reset"}`)
	assert.NotContains(t, text, " ", "canonical JSON has no insignificant whitespace")
	assert.NotContains(t, text, "\n")
}

func TestGoldenBytes_SensitiveToBehaviour(t *testing.T) {
	base, err := BuiltinScenario("light_s1_s2")
	require.NoError(t, err)
	a, err := Run(base)
	require.NoError(t, err)

	changed, err := BuiltinScenario("light_s1_s2")
	require.NoError(t, err)
	changed.Steps[0].Sensors = []int{1, 0, 1, 0, 0, 0}
	b, err := Run(changed)
	require.NoError(t, err)

	ga, err := GoldenBytes("x", a)
	require.NoError(t, err)
	gb, err := GoldenBytes("x", b)
	require.NoError(t, err)
	assert.NotEqual(t, string(ga), string(gb))
}
