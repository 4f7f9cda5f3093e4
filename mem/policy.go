package mem

// CheckPolicy selects whether buffer accesses are range checked.
type CheckPolicy uint8

const (
	// Strict validates every access and panics with a *BoundsError.
	Strict CheckPolicy = iota
	// Unchecked skips logical range checks for speed.
	Unchecked
)

func (p CheckPolicy) String() string {
	switch p {
	case Strict:
		return "strict"
	case Unchecked:
		return "unchecked"
	default:
		return "unknown"
	}
}

// Checked reports whether the policy validates accesses.
func (p CheckPolicy) Checked() bool { return p == Strict }
