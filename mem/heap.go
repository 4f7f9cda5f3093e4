package mem

import (
	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/metrics"
)

const kindHeap = "heap"

// HeapBytes is a Bytes backed by a cache-line aligned Go slice.
type HeapBytes struct {
	buffer
	metrics metrics.Collector
}

// NewHeap allocates a zeroed heap buffer of size bytes.
func NewHeap(size int64, opts ...Option) (*HeapBytes, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}
	n, err := conv.Int64ToInt(size)
	if err != nil {
		return nil, ErrCapacityOverflow
	}

	o := applyOptions(opts)
	h := &HeapBytes{metrics: o.metrics}
	h.init(o.name, allocAligned(n), o.policy)
	h.metrics.RecordAlloc(kindHeap, size)
	return h, nil
}

// WrapHeap adopts p without copying. Alignment is not guaranteed.
func WrapHeap(p []byte, opts ...Option) *HeapBytes {
	o := applyOptions(opts)
	h := &HeapBytes{metrics: o.metrics}
	h.init(o.name, p, o.policy)
	return h
}

// Resize reallocates the buffer, preserving [0, min(old, n)).
func (h *HeapBytes) Resize(n int64) error {
	if h.released {
		return ErrReleased
	}
	if n < 0 {
		return ErrInvalidSize
	}
	size, err := conv.Int64ToInt(n)
	if err != nil {
		return ErrCapacityOverflow
	}
	old := int64(len(h.data))
	next := allocAligned(size)
	copy(next, h.data)
	h.reset(next)
	h.metrics.RecordAlloc(kindHeap, n)
	h.metrics.RecordRelease(kindHeap, old)
	return nil
}

// Release drops the backing slice.
func (h *HeapBytes) Release() error {
	if h.released {
		return ErrReleased
	}
	h.metrics.RecordRelease(kindHeap, int64(len(h.data)))
	h.released = true
	h.data = nil
	h.pos = 0
	return nil
}

var _ Bytes = (*HeapBytes)(nil)
