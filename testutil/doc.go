// Package testutil provides seeded data generators for tests and
// benchmarks.
//
// # Keys
//
//	rng := testutil.NewRNG(seed)
//	keys := rng.Int64s(n, 1000)          // uniform in [0, 1000)
//	skewed := rng.ZipfInt64s(n, 64, 1.5) // few hot keys, many duplicates
//
// # Strings
//
//	words := rng.Strings(n, 12) // random UTF-8, up to 12 runes each
package testutil
