package flyweight

import "errors"

var (
	// ErrInvalidWidth is returned for a non-positive record width.
	ErrInvalidWidth = errors.New("flyweight: record width must be positive")
	// ErrCorruptHeader is returned by Attach when the header does not
	// describe the underlying bytes.
	ErrCorruptHeader = errors.New("flyweight: corrupt header")
	// ErrNoSelection is raised by record access before Select.
	ErrNoSelection = errors.New("flyweight: no record selected")
	// ErrWidthMismatch is returned when copying between stores of different widths.
	ErrWidthMismatch = errors.New("flyweight: record width mismatch")
	// ErrIndexOutOfRange is raised for record indices outside [0, RecordCount).
	ErrIndexOutOfRange = errors.New("flyweight: record index out of range")
)
