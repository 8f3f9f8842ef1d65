package harness

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"strings"
)

//go:embed scenarios/*.yaml
var builtinFS embed.FS

// builtinOrder lists the built-in scenarios in run order: the five
// simulator test cases first, then the multi-step scenarios.
var builtinOrder = []string{
	"idle_all_off",
	"idle_s1_only",
	"light_s1_s2",
	"activity_s6_only",
	"severe_s5_s1",
	"console_demo",
	"reset_line",
	"priority",
}

// Builtin returns the scenarios that ship with the binary.
func Builtin() ([]*Scenario, error) {
	scenarios := make([]*Scenario, 0, len(builtinOrder))
	for _, name := range builtinOrder {
		s, err := BuiltinScenario(name)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// BuiltinScenario returns one built-in scenario by name.
func BuiltinScenario(name string) (*Scenario, error) {
	data, err := BuiltinSource(name)
	if err != nil {
		return nil, err
	}
	return ParseScenario(name+".yaml", data)
}

// BuiltinSource returns the raw YAML of a built-in scenario.
func BuiltinSource(name string) ([]byte, error) {
	data, err := builtinFS.ReadFile(path.Join("scenarios", name+".yaml"))
	if err != nil {
		return nil, fmt.Errorf("unknown built-in scenario %q", name)
	}
	return data, nil
}

// BuiltinNames returns the names of every embedded scenario file.
func BuiltinNames() ([]string, error) {
	entries, err := fs.ReadDir(builtinFS, "scenarios")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	return names, nil
}
