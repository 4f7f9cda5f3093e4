package region

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidHandle is returned for the null handle and for handles that
	// were freed or never allocated.
	ErrInvalidHandle = errors.New("region: invalid handle")
	// ErrRetainOverflow is returned when a retain count would exceed 255.
	ErrRetainOverflow = errors.New("region: retain count overflow")
	// ErrInvalidSize is returned for block sizes outside [0, MaxUint32].
	ErrInvalidSize = errors.New("region: invalid block size")
	// ErrTooManyHandles is returned when the index runs out of slots.
	ErrTooManyHandles = errors.New("region: handle space exhausted")
	// ErrCorrupt is returned by Attach when the stores are inconsistent.
	ErrCorrupt = errors.New("region: corrupt region")
)

// AccessError describes a rejected typed access. It wraps ErrInvalidHandle
// or mem.ErrOutOfBounds.
type AccessError struct {
	Handle Handle
	Offset int64
	Width  int64
	Size   int64
	Err    error
}

func (e *AccessError) Error() string {
	if errors.Is(e.Err, ErrInvalidHandle) {
		return fmt.Sprintf("region: handle %d: %v", e.Handle, e.Err)
	}
	return fmt.Sprintf("region: handle %d: access [%d, %d) outside block of %d bytes: %v",
		e.Handle, e.Offset, e.Offset+e.Width, e.Size, e.Err)
}

func (e *AccessError) Unwrap() error { return e.Err }
