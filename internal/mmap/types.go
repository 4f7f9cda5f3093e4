package mmap

import "errors"

// AccessPattern is an madvise-style hint for a record buffer mapping.
type AccessPattern int

const (
	// AccessDefault leaves the kernel's read-ahead policy untouched.
	AccessDefault AccessPattern = iota
	// AccessSequential suits full scans such as Select or snapshot export.
	AccessSequential
	// AccessRandom suits handle lookups in a memory region.
	AccessRandom
	// AccessWillNeed prefetches the mapping.
	AccessWillNeed
	// AccessDontNeed lets the kernel drop the pages.
	AccessDontNeed
)

var (
	ErrClosed      = errors.New("mmap: mapping is closed")
	ErrInvalidSize = errors.New("mmap: invalid size")
)
