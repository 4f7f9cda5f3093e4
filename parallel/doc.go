// Package parallel provides fork-join update, query, select and sort
// operators over the records of a flyweight.FlyWeight.
//
// Each operator splits a flyweight.Region recursively and runs the pieces on
// clones of the cursor. Mutating operators stop splitting once a region's
// byte span fits a cache line; queries split down to a batch size measured
// in records. The two thresholds are configured separately.
//
// Callers must not use the FlyWeight passed to an operator until it returns.
// Once started, an operator runs to completion; the context is only checked
// on entry.
package parallel
