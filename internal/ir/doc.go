// Package ir provides the canonical serialization used for trace snapshots
// and frame digests.
//
// ir imports nothing internal. Everything it serializes is plain Go data
// (strings, ints, bools, slices, string-keyed maps), so the circuit package
// stays free of serialization concerns.
//
// Key design constraints:
//   - NO floats and NO nulls in canonical output
//   - Object keys sorted by UTF-16 code units (RFC 8785)
//   - Strings NFC normalized at the serialization boundary
//   - Tick numbers only, never wall-clock timestamps
package ir
