//go:build !flystore_reckless

package mem

// DefaultCheckPolicy is the policy used when none is configured.
const DefaultCheckPolicy = Strict
