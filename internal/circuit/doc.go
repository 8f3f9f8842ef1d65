// Package circuit implements the clocked hazard-classification circuit.
//
// The circuit is a small synchronous design modeled register by register:
//
//	sensors ──► Stage1 ──► Stage2 ──► Classify ──► NextState ──► State ──► Encode ──► actuators
//	            (reg)      (reg)      (comb)       (comb)        (reg)     (comb)
//
// ARCHITECTURE:
//
// Single Clock Domain:
// Every register (both synchronizer stages and the state register) is
// updated by Engine.Tick and by nothing else. Between ticks the caller may
// only drive the inputs (SetSensor, SetSensors, SetReset).
//
// Tick Protocol:
//  1. Reset line low: clear the synchronizer, force Idle, re-encode, done.
//  2. Shift the synchronizer (Stage2 := Stage1, Stage1 := sensors).
//  3. Classify Stage2 and select the next state by strict priority.
//  4. Commit the state register.
//  5. Re-encode the actuator outputs from the committed state.
//
// CRITICAL PATTERNS:
//
// Registered Inputs Only:
// The classifier never sees raw sensor values. A value sampled at tick k
// reaches Stage2 at tick k+1, so a vector held from reset is reflected in
// the state after exactly two ticks.
//
// Strict Priority:
// P1 (severe) > P2 (activity) > P3 (light) > Idle. The classifier flags
// overlap freely; only NextState resolves them.
//
// Moore Outputs:
// Actuators are a function of the state register alone.
//
// Atomic Ticks:
// Engine serializes every operation behind one mutex, so concurrent readers
// never observe a half-applied tick.
package circuit
