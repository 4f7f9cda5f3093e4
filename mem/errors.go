package mem

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is matched by every *BoundsError.
	ErrOutOfBounds = errors.New("mem: address out of bounds")
	// ErrReleased is returned when releasing a buffer twice and panics on
	// access to a released buffer under Strict.
	ErrReleased = errors.New("mem: buffer already released")
	// ErrStaleView is raised when a view outlives a resize of its owner.
	ErrStaleView = errors.New("mem: view invalidated by owner resize")
	// ErrReadOnly is raised by every mutation of a read-only adapter.
	ErrReadOnly = errors.New("mem: buffer is read-only")
	// ErrNotOwner is returned when resizing or releasing a borrowed view.
	ErrNotOwner = errors.New("mem: buffer does not own its memory")
	// ErrInvalidSize is returned for negative sizes.
	ErrInvalidSize = errors.New("mem: invalid size")
	// ErrCapacityOverflow is returned when growth exceeds the addressable range.
	ErrCapacityOverflow = errors.New("mem: capacity overflow")
	// ErrIO wraps failures of the file behind a mapped buffer.
	ErrIO = errors.New("mem: i/o failure")
	// ErrStringTooLong is returned when a string does not fit a u16 length prefix.
	ErrStringTooLong = errors.New("mem: string longer than 65535 bytes")
	// ErrMalformedString is returned when a length-prefixed string does not
	// decode to exactly its declared byte count.
	ErrMalformedString = errors.New("mem: malformed length-prefixed string")
)

// BoundsError describes an access outside [Start, End).
type BoundsError struct {
	Name      string
	Index     int64
	Width     int64
	Start     int64
	End       int64
	Underflow bool
}

func (e *BoundsError) Error() string {
	dir := "overflow"
	if e.Underflow {
		dir = "underflow"
	}
	name := e.Name
	if name == "" {
		name = "bytes"
	}
	return fmt.Sprintf("mem: %s: %s: access [%d, %d) outside [%d, %d)",
		name, dir, e.Index, e.Index+e.Width, e.Start, e.End)
}

// Unwrap returns ErrOutOfBounds.
func (e *BoundsError) Unwrap() error { return ErrOutOfBounds }

func ioError(op, name string, err error) error {
	return fmt.Errorf("%w: %s %s: %w", ErrIO, op, name, err)
}
