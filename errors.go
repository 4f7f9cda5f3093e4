package flystore

import (
	"errors"

	"github.com/hupe1980/flystore/internal/resource"
	"github.com/hupe1980/flystore/mem"
	"github.com/hupe1980/flystore/parallel"
	"github.com/hupe1980/flystore/region"
	"github.com/hupe1980/flystore/snapshot"
)

// ErrClosed is returned by a Store after Close.
var ErrClosed = errors.New("flystore: store closed")

// Errors re-exported for matching with errors.Is without importing every
// subpackage.
var (
	ErrOutOfBounds         = mem.ErrOutOfBounds
	ErrReleased            = mem.ErrReleased
	ErrReadOnly            = mem.ErrReadOnly
	ErrCapacityOverflow    = mem.ErrCapacityOverflow
	ErrIO                  = mem.ErrIO
	ErrInvalidHandle       = region.ErrInvalidHandle
	ErrRetainOverflow      = region.ErrRetainOverflow
	ErrOverlappingRegions  = parallel.ErrOverlappingRegions
	ErrChecksumMismatch    = snapshot.ErrChecksumMismatch
	ErrMemoryLimitExceeded = resource.ErrMemoryLimitExceeded
)
