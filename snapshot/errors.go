package snapshot

import "errors"

var (
	// ErrBadMagic is returned when a stream does not start with a snapshot frame.
	ErrBadMagic = errors.New("snapshot: bad magic")
	// ErrUnsupportedVersion is returned for frames written by a newer format.
	ErrUnsupportedVersion = errors.New("snapshot: unsupported version")
	// ErrUnknownCompression is returned for an unknown compression byte or name.
	ErrUnknownCompression = errors.New("snapshot: unknown compression")
	// ErrChecksumMismatch is returned when the restored bytes do not hash to
	// the recorded checksum.
	ErrChecksumMismatch = errors.New("snapshot: checksum mismatch")
	// ErrCorrupt is returned for truncated frames and inconsistent lengths.
	ErrCorrupt = errors.New("snapshot: corrupt frame")
	// ErrKindMismatch is returned when restoring a frame as the wrong kind.
	ErrKindMismatch = errors.New("snapshot: kind mismatch")
	// ErrDestinationTooSmall is returned when the restore target cannot hold
	// the data and cannot be resized.
	ErrDestinationTooSmall = errors.New("snapshot: destination too small")
)
