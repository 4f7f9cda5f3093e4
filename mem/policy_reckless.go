//go:build flystore_reckless

package mem

// DefaultCheckPolicy is the policy used when none is configured.
// Built with the flystore_reckless tag, range checks are off by default.
const DefaultCheckPolicy = Unchecked
