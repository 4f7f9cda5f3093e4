// Package conv provides checked integer conversion and arithmetic.
//
// These functions perform bounds checking to prevent integer overflow/underflow
// when converting between signed/unsigned and different bit-width integer types,
// or when computing buffer capacities.
//
// Use cases:
//   - Validating headers read from mapped files (counts, offsets)
//   - Computing grown capacities without silently wrapping
//
// For conversions that are provably safe by domain constraints (e.g., loop
// indices, bounded counters), use direct type casts instead to avoid overhead.
package conv
