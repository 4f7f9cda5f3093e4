package region

import (
	"errors"
	"fmt"
	"math"

	"github.com/bits-and-blooms/bitset"

	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/mem"
	"github.com/hupe1980/flystore/metrics"
)

// Handle identifies a block by its index slot.
type Handle uint32

// Null is the reserved handle that never refers to a block.
const Null Handle = 0

const (
	dataHeaderWidth = 12 // u64 nextDataOffset | u32 nextIndexSlot
	indexWidth      = 13 // u64 dataOffset | u32 byteCount | u8 retainCount

	offDataOffset = 0
	offByteCount  = 8
	offRetain     = 12

	// MaxRetainCount is the largest retain count a block can reach.
	MaxRetainCount = math.MaxUint8

	kindRegion = "region"
)

// MemoryRegion allocates variable-width blocks addressed by Handle.
type MemoryRegion struct {
	data    mem.Bytes
	index   *flyweight.FlyWeight
	strict  bool
	metrics metrics.Collector
}

// New creates an empty region. Without WithData and WithIndex both stores
// are heap buffers that grow on demand.
func New(opts ...Option) (*MemoryRegion, error) {
	o := applyOptions(opts)

	data := o.data
	if data == nil {
		d, err := mem.NewResizableHeap(max(o.initialCapacity, dataHeaderWidth),
			mem.WithName("region.data"),
			mem.WithCheckPolicy(o.policy),
			mem.WithExpectedMaxSize(o.expectedMaxSize),
			mem.WithLogger(o.logger),
			mem.WithMetrics(o.metrics),
		)
		if err != nil {
			return nil, err
		}
		data = d
	}
	if data.Len() < dataHeaderWidth {
		if err := data.Resize(dataHeaderWidth); err != nil {
			return nil, fmt.Errorf("region: reserve data header: %w", err)
		}
	}

	indexBytes := o.index
	if indexBytes == nil {
		b, err := mem.NewHeap(8+indexWidth*64, mem.WithName("region.index"), mem.WithCheckPolicy(o.policy))
		if err != nil {
			return nil, err
		}
		indexBytes = b
	}
	index, err := flyweight.New(indexBytes, indexWidth)
	if err != nil {
		return nil, err
	}
	// Slot 0 stays zeroed and is never handed out.
	if _, err := index.AllocateNewRecords(1); err != nil {
		return nil, err
	}
	index.Select(0)
	index.WriteUint64(offDataOffset, 0)
	index.WriteUint32(offByteCount, 0)
	index.WriteUint8(offRetain, 0)

	r := &MemoryRegion{
		data:    data,
		index:   index,
		strict:  o.policy == mem.Strict,
		metrics: o.metrics,
	}
	r.writeHeader(dataHeaderWidth, 1)
	return r, nil
}

// Attach adopts stores previously populated by a MemoryRegion, such as
// mapped files re-opened after a restart.
func Attach(data, index mem.Bytes, opts ...Option) (*MemoryRegion, error) {
	o := applyOptions(opts)
	if data.Len() < dataHeaderWidth {
		return nil, fmt.Errorf("%w: data store of %d bytes", ErrCorrupt, data.Len())
	}
	fw, err := flyweight.Attach(index, indexWidth)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	r := &MemoryRegion{
		data:    data,
		index:   fw,
		strict:  o.policy == mem.Strict,
		metrics: o.metrics,
	}
	next, slots := r.nextDataOffset(), int64(r.nextIndexSlot())
	if next < dataHeaderWidth || next > data.Len() {
		return nil, fmt.Errorf("%w: next data offset %d outside [%d, %d]", ErrCorrupt, next, dataHeaderWidth, data.Len())
	}
	if slots < 1 || slots != fw.RecordCount() {
		return nil, fmt.Errorf("%w: header has %d slots, index has %d", ErrCorrupt, slots, fw.RecordCount())
	}
	return r, nil
}

func (r *MemoryRegion) nextDataOffset() int64 {
	return r.data.ReadInt64At(r.data.StartIndex())
}

func (r *MemoryRegion) nextIndexSlot() uint32 {
	return r.data.ReadUint32At(r.data.StartIndex() + 8)
}

func (r *MemoryRegion) writeHeader(nextData int64, nextSlot uint32) {
	start := r.data.StartIndex()
	r.data.WriteInt64At(start, nextData)
	r.data.WriteUint32At(start+8, nextSlot)
}

func (r *MemoryRegion) grow(end int64) error {
	if rb, ok := r.data.(*mem.ResizableBytes); ok {
		return rb.EnsureCapacity(r.data.StartIndex() + end)
	}
	have := r.data.Len()
	if end <= have {
		return nil
	}
	next, err := conv.NextCapacity(have, end)
	if err != nil {
		return fmt.Errorf("%w: %w", mem.ErrCapacityOverflow, err)
	}
	return r.data.Resize(next)
}

// Malloc allocates a block of n bytes with retain count 1. Zero-length
// blocks are allowed and still take an index slot.
func (r *MemoryRegion) Malloc(n int64) (Handle, error) {
	byteCount, err := conv.Int64ToUint32(n)
	if err != nil {
		return Null, fmt.Errorf("%w: %w", ErrInvalidSize, err)
	}
	slot := r.nextIndexSlot()
	if slot == math.MaxUint32 {
		return Null, ErrTooManyHandles
	}

	offset := r.nextDataOffset()
	end, err := conv.AddInt64(offset, n)
	if err != nil {
		return Null, fmt.Errorf("%w: %w", mem.ErrCapacityOverflow, err)
	}
	if err := r.grow(end); err != nil {
		return Null, fmt.Errorf("region: malloc %d bytes: %w", n, err)
	}
	i, err := r.index.AllocateNewRecords(1)
	if err != nil {
		return Null, fmt.Errorf("region: malloc %d bytes: %w", n, err)
	}
	if i != int64(slot) {
		return Null, fmt.Errorf("%w: index slot %d, header slot %d", ErrCorrupt, i, slot)
	}

	r.index.Select(i)
	r.index.WriteUint64(offDataOffset, uint64(offset))
	r.index.WriteUint32(offByteCount, byteCount)
	r.index.WriteUint8(offRetain, 1)
	r.writeHeader(end, slot+1)
	r.metrics.RecordAlloc(kindRegion, n)
	return Handle(slot), nil
}

// lookup selects h in the index and reports whether it is live.
func (r *MemoryRegion) lookup(h Handle) bool {
	if h == Null || !r.index.Select(int64(h)) {
		return false
	}
	return r.index.ReadUint64(offDataOffset) != 0
}

func (r *MemoryRegion) validate(h Handle) error {
	if !r.lookup(h) {
		return fmt.Errorf("%w: %d", ErrInvalidHandle, h)
	}
	return nil
}

// Retain increments the retain count of h.
func (r *MemoryRegion) Retain(h Handle) error {
	if err := r.validate(h); err != nil {
		return err
	}
	rc := r.index.ReadUint8(offRetain)
	if rc == MaxRetainCount {
		return fmt.Errorf("%w: handle %d", ErrRetainOverflow, h)
	}
	r.index.WriteUint8(offRetain, rc+1)
	return nil
}

// Free decrements the retain count of h. At zero the index slot is cleared
// and h becomes invalid; the block's bytes are not reclaimed.
func (r *MemoryRegion) Free(h Handle) error {
	if err := r.validate(h); err != nil {
		return err
	}
	rc := r.index.ReadUint8(offRetain)
	if rc > 1 {
		r.index.WriteUint8(offRetain, rc-1)
		return nil
	}
	size := int64(r.index.ReadUint32(offByteCount))
	r.index.WriteUint64(offDataOffset, 0)
	r.index.WriteUint32(offByteCount, 0)
	r.index.WriteUint8(offRetain, 0)
	r.metrics.RecordRelease(kindRegion, size)
	return nil
}

// RetainCount returns the current retain count of h.
func (r *MemoryRegion) RetainCount(h Handle) (int, error) {
	if err := r.validate(h); err != nil {
		return 0, err
	}
	return int(r.index.ReadUint8(offRetain)), nil
}

// Valid reports whether h refers to a live block.
func (r *MemoryRegion) Valid(h Handle) bool { return r.lookup(h) }

// Size returns the byte count of h.
func (r *MemoryRegion) Size(h Handle) (int64, error) {
	if err := r.validate(h); err != nil {
		return 0, err
	}
	return int64(r.index.ReadUint32(offByteCount)), nil
}

// AsBytes returns a view over the block of h. The view keeps the data
// store's addresses: the block starts at StartIndex() of the view. It is
// invalidated by the next Malloc that grows the data store.
func (r *MemoryRegion) AsBytes(h Handle) (mem.Bytes, error) {
	if err := r.validate(h); err != nil {
		return nil, err
	}
	start := r.data.StartIndex() + int64(r.index.ReadUint64(offDataOffset))
	n := int64(r.index.ReadUint32(offByteCount))
	return r.data.Narrow(start, start+n), nil
}

// Data returns the data store.
func (r *MemoryRegion) Data() mem.Bytes { return r.data }

// Handles returns the number of index slots handed out, including freed ones.
func (r *MemoryRegion) Handles() int64 { return int64(r.nextIndexSlot()) - 1 }

// Stats describes the allocation state of a region.
type Stats struct {
	LiveHandles      int64
	FreedHandles     int64
	BytesInUse       int64
	UnreclaimedBytes int64
	DataBytes        int64
	Capacity         int64
}

// Live returns the set of handles whose blocks have not been freed.
func (r *MemoryRegion) Live() *bitset.BitSet {
	slots := uint(r.nextIndexSlot())
	live := bitset.New(slots)
	for i := uint(1); i < slots; i++ {
		r.index.Select(int64(i))
		if r.index.ReadUint64(offDataOffset) != 0 {
			live.Set(i)
		}
	}
	return live
}

// Stats scans the index and summarizes it.
func (r *MemoryRegion) Stats() Stats {
	live := r.Live()
	s := Stats{
		LiveHandles:  int64(live.Count()),
		FreedHandles: r.Handles() - int64(live.Count()),
	}
	for i, ok := live.NextSet(0); ok; i, ok = live.NextSet(i + 1) {
		r.index.Select(int64(i))
		s.BytesInUse += int64(r.index.ReadUint32(offByteCount))
	}
	s.DataBytes = r.nextDataOffset() - dataHeaderWidth
	s.UnreclaimedBytes = s.DataBytes - s.BytesInUse
	s.Capacity = r.data.Len()
	return s
}

// Release releases both stores.
func (r *MemoryRegion) Release() error {
	return errors.Join(r.data.Release(), r.index.Release())
}

// address resolves a typed access. Under Strict it panics with
// *AccessError; otherwise it trusts h and off.
func (r *MemoryRegion) address(h Handle, off, width int64) int64 {
	if !r.strict {
		r.index.Select(int64(h))
		return r.data.StartIndex() + int64(r.index.ReadUint64(offDataOffset)) + off
	}
	if !r.lookup(h) {
		panic(&AccessError{Handle: h, Offset: off, Width: width, Err: ErrInvalidHandle})
	}
	size := int64(r.index.ReadUint32(offByteCount))
	if off < 0 || off+width > size {
		panic(&AccessError{Handle: h, Offset: off, Width: width, Size: size, Err: mem.ErrOutOfBounds})
	}
	return r.data.StartIndex() + int64(r.index.ReadUint64(offDataOffset)) + off
}
