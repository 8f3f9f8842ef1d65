// Package harness provides scenario testing for the hazard classifier.
//
// The harness loads scenario files, drives a real circuit.Engine through
// them tick by tick, and checks the observed states and actuator outputs
// against the scenario's expectations.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: light_dehydration
//	description: "S1 and S2 held for two ticks"
//	steps:
//	  - reset: true
//	    sensors: [1, 1, 0, 0, 0, 0]
//	    ticks: 2
//	    expect:
//	      state: LightDehydration
//	      outputs: [1, 0, 1, 1, 0, 0]
//	  - set: { S2: false }
//	    reset_line: true
//	    ticks: 2
//	assertions:
//	  - type: state_order
//	    states: [LightDehydration, Idle]
//	  - type: final_state
//	    state: Idle
//
// Within one step the actions apply in a fixed order: reset, sensors, set,
// reset_line, then the ticks. The expect clause is checked after the last
// tick of the step.
//
// # Assertion Types
//
// The following assertion types are supported:
//
//   - final_state: Verifies the state (and optionally outputs) after the last step
//   - state_reached: Verifies the state register held the state on some tick
//   - state_order: Verifies the tick states contain the listed states in order,
//     possibly with other states between them
//   - state_count: Verifies the number of transitions into a state
//
// # Deterministic Testing
//
// Every run starts from a fresh engine and a fixed run ID (scenario.run_id,
// or "test-run-default"), so identical scenarios produce byte-identical
// traces for golden snapshot comparison.
//
// # Usage
//
//	scenario, err := harness.LoadScenario("testdata/scenarios/light.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	result, err := harness.Run(scenario)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if !result.Pass {
//	    for _, e := range result.Errors {
//	        log.Println(e)
//	    }
//	}
package harness
