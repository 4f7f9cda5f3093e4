package mem

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/internal/mmap"
	"github.com/hupe1980/flystore/metrics"
)

const kindNative = "native"

// NativeBytes is a Bytes backed by an anonymous mapping outside the Go heap.
// It must be released explicitly.
type NativeBytes struct {
	buffer
	mapping  *mmap.Mapping
	acquirer MemoryAcquirer
	access   AccessPattern
	logger   *slog.Logger
	metrics  metrics.Collector
}

// NewNative maps size bytes of zeroed, cache-line aligned native memory.
func NewNative(size int64, opts ...Option) (*NativeBytes, error) {
	if size < 0 {
		return nil, ErrInvalidSize
	}

	o := applyOptions(opts)
	nb := &NativeBytes{
		acquirer: o.acquirer,
		access:   o.access,
		logger:   o.logger,
		metrics:  o.metrics,
	}
	m, data, err := nb.allocate(size)
	if err != nil {
		return nil, err
	}
	nb.mapping = m
	nb.init(o.name, data, o.policy)
	return nb, nil
}

func (nb *NativeBytes) allocate(size int64) (*mmap.Mapping, []byte, error) {
	n, err := conv.Int64ToInt(size)
	if err != nil {
		return nil, nil, ErrCapacityOverflow
	}
	if nb.acquirer != nil {
		if err := nb.acquirer.AcquireMemory(size); err != nil {
			return nil, nil, fmt.Errorf("mem: reserve %d native bytes: %w", size, err)
		}
	}

	m, err := mmap.MapAnon(max(n, 1) + CacheLineSize - 1)
	if err != nil {
		if nb.acquirer != nil {
			nb.acquirer.ReleaseMemory(size)
		}
		return nil, nil, fmt.Errorf("mem: map %d native bytes: %w", size, err)
	}

	data := alignedSlice(m.Bytes(), n)
	if nb.access != AccessDefault {
		if err := mmap.Advise(data, nb.access); err != nil {
			nb.logger.Debug("madvise failed", "error", err)
		}
	}
	nb.metrics.RecordAlloc(kindNative, size)
	return m, data, nil
}

func (nb *NativeBytes) free(m *mmap.Mapping, size int64) error {
	err := m.Close()
	if nb.acquirer != nil {
		nb.acquirer.ReleaseMemory(size)
	}
	nb.metrics.RecordRelease(kindNative, size)
	return err
}

// Address returns the address of the first byte. It is a multiple of
// CacheLineSize and valid until the next Resize or Release.
func (nb *NativeBytes) Address() uintptr {
	if len(nb.data) == 0 {
		return 0
	}
	return uintptr(unsafe.Pointer(&nb.data[0])) //nolint:gosec // exposes the native address for diagnostics
}

// Resize maps a new region, copies the common prefix and unmaps the old one.
func (nb *NativeBytes) Resize(n int64) error {
	if nb.released {
		return ErrReleased
	}
	if n < 0 {
		return ErrInvalidSize
	}
	m, data, err := nb.allocate(n)
	if err != nil {
		return err
	}
	copy(data, nb.data)

	old, oldSize := nb.mapping, int64(len(nb.data))
	nb.mapping = m
	nb.reset(data)
	if err := nb.free(old, oldSize); err != nil {
		nb.logger.Warn("failed to unmap native buffer", "name", nb.name, "error", err)
	}
	return nil
}

// Release unmaps the memory and returns it to the budget.
func (nb *NativeBytes) Release() error {
	if nb.released {
		return ErrReleased
	}
	nb.released = true
	size := int64(len(nb.data))
	nb.data = nil
	nb.pos = 0
	return nb.free(nb.mapping, size)
}

var _ Bytes = (*NativeBytes)(nil)
