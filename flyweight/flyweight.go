package flyweight

import (
	"fmt"
	"iter"

	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/mem"
)

// store is the state shared by a FlyWeight and its clones.
type store struct {
	bytes  mem.Bytes
	width  int64
	header HeaderLayout
}

// FlyWeight is a cursor over the records of a store.
type FlyWeight struct {
	s        *store
	base     int64 // address of record 0
	strict   bool
	selected int64
	offset   int64 // address of the selected record
	temp     []byte
}

// New initialises an empty record store at the start of b, growing b when
// it cannot hold the header and the requested initial capacity.
func New(b mem.Bytes, width int64, opts ...Option) (*FlyWeight, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	o := applyOptions(opts)

	need, err := byteSize(o.header.Width(), width, o.capacity)
	if err != nil {
		return nil, err
	}
	if b.Len() < need {
		if err := b.Resize(need); err != nil {
			return nil, fmt.Errorf("flyweight: reserve %d bytes: %w", need, err)
		}
	}

	fw := newCursor(&store{bytes: b, width: width, header: o.header})
	fw.writeCount(0)
	return fw, nil
}

// NewHeap creates a record store backed by a heap buffer with room for
// capacity records.
func NewHeap(width, capacity int64, opts ...Option) (*FlyWeight, error) {
	o := applyOptions(opts)
	size, err := byteSize(o.header.Width(), width, max(capacity, 0))
	if err != nil {
		return nil, err
	}
	b, err := mem.NewHeap(size)
	if err != nil {
		return nil, err
	}
	return New(b, width, opts...)
}

// Attach adopts a store previously written to b, such as a re-opened
// mapped file, and validates its header.
func Attach(b mem.Bytes, width int64, opts ...Option) (*FlyWeight, error) {
	if width <= 0 {
		return nil, ErrInvalidWidth
	}
	o := applyOptions(opts)
	h := o.header.Width()
	if b.Len() < h {
		return nil, fmt.Errorf("%w: %d bytes cannot hold a %s header", ErrCorruptHeader, b.Len(), o.header)
	}

	start := b.StartIndex()
	count := b.ReadInt64At(start)
	end, err := byteSize(h, width, count)
	if err != nil || count < 0 || end > b.Len() {
		return nil, fmt.Errorf("%w: %d records of %d bytes exceed %d bytes", ErrCorruptHeader, count, width, b.Len())
	}
	if o.header == DualHeader {
		if cached := b.ReadInt64At(start + 8); cached != end {
			return nil, fmt.Errorf("%w: cached end offset %d, want %d", ErrCorruptHeader, cached, end)
		}
	}
	return newCursor(&store{bytes: b, width: width, header: o.header}), nil
}

func newCursor(s *store) *FlyWeight {
	return &FlyWeight{
		s:        s,
		base:     s.bytes.StartIndex() + s.header.Width(),
		strict:   s.bytes.Policy() == mem.Strict,
		selected: -1,
		offset:   -1,
		temp:     make([]byte, s.width),
	}
}

func byteSize(header, width, records int64) (int64, error) {
	body, err := conv.MulInt64(width, records)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", mem.ErrCapacityOverflow, err)
	}
	total, err := conv.AddInt64(header, body)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", mem.ErrCapacityOverflow, err)
	}
	return total, nil
}

func (fw *FlyWeight) writeCount(count int64) {
	start := fw.s.bytes.StartIndex()
	fw.s.bytes.WriteInt64At(start, count)
	if fw.s.header == DualHeader {
		fw.s.bytes.WriteInt64At(start+8, fw.s.header.Width()+count*fw.s.width)
	}
}

// RecordCount returns the number of allocated records.
func (fw *FlyWeight) RecordCount() int64 {
	return fw.s.bytes.ReadInt64At(fw.s.bytes.StartIndex())
}

// MaxByteOffset returns the exclusive end of the last record relative to
// the start of the store.
func (fw *FlyWeight) MaxByteOffset() int64 {
	return fw.s.header.Width() + fw.RecordCount()*fw.s.width
}

// RecordWidth returns the width of every record in bytes.
func (fw *FlyWeight) RecordWidth() int64 { return fw.s.width }

// HeaderWidth returns the header size in bytes.
func (fw *FlyWeight) HeaderWidth() int64 { return fw.s.header.Width() }

// Header returns the header layout.
func (fw *FlyWeight) Header() HeaderLayout { return fw.s.header }

// Capacity returns the number of records the bytes can hold without growing.
func (fw *FlyWeight) Capacity() int64 {
	return (fw.s.bytes.Len() - fw.s.header.Width()) / fw.s.width
}

// Bytes returns the underlying buffer.
func (fw *FlyWeight) Bytes() mem.Bytes { return fw.s.bytes }

// Policy returns the bounds check policy of the underlying buffer.
func (fw *FlyWeight) Policy() mem.CheckPolicy { return fw.s.bytes.Policy() }

// RecordOffset returns the address of record i in Bytes().
func (fw *FlyWeight) RecordOffset(i int64) int64 {
	return fw.base + i*fw.s.width
}

// Select moves the cursor to record i. It returns false and leaves the
// cursor unmoved when i is out of range.
func (fw *FlyWeight) Select(i int64) bool {
	if i < 0 || i >= fw.RecordCount() {
		return false
	}
	fw.selected = i
	fw.offset = fw.base + i*fw.s.width
	return true
}

// SelectedIndex returns the selected record, or -1 before the first selection.
func (fw *FlyWeight) SelectedIndex() int64 { return fw.selected }

// HasNext reports whether Next would succeed.
func (fw *FlyWeight) HasNext() bool { return fw.selected+1 < fw.RecordCount() }

// Next selects the record after the current one.
func (fw *FlyWeight) Next() bool { return fw.Select(fw.selected + 1) }

// Reset clears the selection.
func (fw *FlyWeight) Reset() {
	fw.selected = -1
	fw.offset = -1
}

// Records selects each record in turn and yields its index.
func (fw *FlyWeight) Records() iter.Seq[int64] {
	return func(yield func(int64) bool) {
		n := fw.RecordCount()
		for i := int64(0); i < n; i++ {
			fw.Select(i)
			if !yield(i) {
				return
			}
		}
	}
}

// AllocateNewRecords appends n records and returns the index of the first.
// Records reused after ClearAll keep their old bytes. The backing bytes
// double in size when capacity runs out.
// The header is updated before the bytes grow; growth must therefore come
// from a single goroutine.
func (fw *FlyWeight) AllocateNewRecords(n int64) (int64, error) {
	if n < 0 {
		return 0, fmt.Errorf("flyweight: cannot allocate %d records", n)
	}
	first := fw.RecordCount()
	count, err := conv.AddInt64(first, n)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", mem.ErrCapacityOverflow, err)
	}
	need, err := byteSize(fw.s.header.Width(), fw.s.width, count)
	if err != nil {
		return 0, err
	}

	b := fw.s.bytes
	fw.writeCount(count)
	if have := b.Len(); need > have {
		next, err := conv.NextCapacity(have, need)
		if err == nil {
			err = b.Resize(next)
		}
		if err != nil {
			fw.writeCount(first)
			return 0, fmt.Errorf("flyweight: grow to %d records: %w", count, err)
		}
	}
	return first, nil
}

// ClearAll drops every record. Memory is not zeroed.
func (fw *FlyWeight) ClearAll() {
	fw.writeCount(0)
	fw.Reset()
}

// Clone returns a new cursor over the same storage with the same selection
// and its own swap buffer.
func (fw *FlyWeight) Clone() *FlyWeight {
	c := newCursor(fw.s)
	c.selected = fw.selected
	c.offset = fw.offset
	return c
}

// Shares reports whether fw and other are cursors over the same storage.
func (fw *FlyWeight) Shares(other *FlyWeight) bool { return fw.s == other.s }

// Region returns the work unit [from, toExc) over this store.
func (fw *FlyWeight) Region(from, toExc int64) Region {
	return Region{fw: fw, from: from, to: toExc}
}

// All returns the region covering every record.
func (fw *FlyWeight) All() Region { return fw.Region(0, fw.RecordCount()) }

// Release releases the underlying bytes. It fails with mem.ErrReleased
// when called twice, also through a clone.
func (fw *FlyWeight) Release() error {
	fw.Reset()
	return fw.s.bytes.Release()
}

func (fw *FlyWeight) checkIndex(i int64) {
	if fw.strict && (i < 0 || i >= fw.RecordCount()) {
		panic(fmt.Errorf("%w: %d not in [0, %d)", ErrIndexOutOfRange, i, fw.RecordCount()))
	}
}

// Swap exchanges records i and j through the cursor's temp buffer.
func (fw *FlyWeight) Swap(i, j int64) {
	fw.checkIndex(i)
	fw.checkIndex(j)
	if i == j {
		return
	}
	b, w := fw.s.bytes, fw.s.width
	oi, oj := fw.base+i*w, fw.base+j*w
	b.ReadBytesAt(oi, fw.temp)
	b.CopyTo(oj, b, oi, w)
	b.WriteBytesAt(oj, fw.temp)
}

// CopyRecord copies record src over record dst.
func (fw *FlyWeight) CopyRecord(src, dst int64) {
	fw.checkIndex(src)
	fw.checkIndex(dst)
	w := fw.s.width
	fw.s.bytes.CopyTo(fw.base+src*w, fw.s.bytes, fw.base+dst*w, w)
}

// CopySelectedRecordTo copies the selected record over dst's selected record.
func (fw *FlyWeight) CopySelectedRecordTo(dst *FlyWeight) error {
	if dst.s.width != fw.s.width {
		return fmt.Errorf("%w: %d != %d", ErrWidthMismatch, fw.s.width, dst.s.width)
	}
	if fw.selected < 0 || dst.selected < 0 {
		return ErrNoSelection
	}
	fw.s.bytes.CopyTo(fw.offset, dst.s.bytes, dst.offset, fw.s.width)
	return nil
}

// CopySelectedRecordFrom copies src's selected record over the selected record.
func (fw *FlyWeight) CopySelectedRecordFrom(src *FlyWeight) error {
	return src.CopySelectedRecordTo(fw)
}

// CopySelectedRecordToBytes copies the selected record into b at address at.
func (fw *FlyWeight) CopySelectedRecordToBytes(b mem.Bytes, at int64) error {
	if fw.selected < 0 {
		return ErrNoSelection
	}
	fw.s.bytes.CopyTo(fw.offset, b, at, fw.s.width)
	return nil
}

// CopySelectedRecordFromBytes overwrites the selected record with
// RecordWidth bytes of b starting at address at.
func (fw *FlyWeight) CopySelectedRecordFromBytes(b mem.Bytes, at int64) error {
	if fw.selected < 0 {
		return ErrNoSelection
	}
	b.CopyTo(at, fw.s.bytes, fw.offset, fw.s.width)
	return nil
}
