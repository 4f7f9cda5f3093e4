package mem

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/dustin/go-humanize"
	"golang.org/x/time/rate"

	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/metrics"
)

// ResizableBytes grows its delegate by doubling whenever a write would run
// past the end. The delegate must be an owner.
//
// A write that cannot grow the delegate panics with an error wrapping
// ErrCapacityOverflow or the delegate's Resize error. Use EnsureCapacity
// to grow ahead of time with an error return.
type ResizableBytes struct {
	Bytes
	expectedMaxSize int64
	logger          *slog.Logger
	metrics         metrics.Collector
	warn            rate.Sometimes
}

// NewResizable wraps delegate. WithExpectedMaxSize, WithLogger and
// WithMetrics are honoured; other options are ignored.
func NewResizable(delegate Bytes, opts ...Option) *ResizableBytes {
	o := applyOptions(opts)
	return &ResizableBytes{
		Bytes:           delegate,
		expectedMaxSize: o.expectedMaxSize,
		logger:          o.logger,
		metrics:         o.metrics,
		warn:            rate.Sometimes{First: 1, Interval: 10 * time.Second},
	}
}

// NewResizableHeap returns a heap buffer of the given initial size that
// grows on demand.
func NewResizableHeap(initial int64, opts ...Option) (*ResizableBytes, error) {
	h, err := NewHeap(initial, opts...)
	if err != nil {
		return nil, err
	}
	return NewResizable(h, opts...), nil
}

// Delegate returns the wrapped buffer.
func (r *ResizableBytes) Delegate() Bytes { return r.Bytes }

// EnsureCapacity grows the delegate so that address end-1 is writable.
func (r *ResizableBytes) EnsureCapacity(end int64) error {
	if end <= r.EndIndexExc() {
		return nil
	}
	old := r.Len()
	next, err := conv.NextCapacity(old, end-r.StartIndex())
	if err != nil {
		return fmt.Errorf("%w: grow %s to %d bytes: %w", ErrCapacityOverflow, r.Name(), end, err)
	}
	if err := r.Resize(next); err != nil {
		return fmt.Errorf("mem: grow %s from %d to %d bytes: %w", r.Name(), old, next, err)
	}

	exceeded := r.expectedMaxSize > 0 && next > r.expectedMaxSize
	if exceeded {
		r.warn.Do(func() {
			r.logger.Warn("buffer grew beyond expected max size",
				"name", r.Name(),
				"size", humanize.IBytes(uint64(next)),
				"expected", humanize.IBytes(uint64(r.expectedMaxSize)),
			)
		})
	}
	r.metrics.RecordGrowth(r.Name(), old, next, exceeded)
	return nil
}

// ensure grows the delegate to cover [i, i+width). Malformed ranges are left
// to the delegate's bounds check.
func (r *ResizableBytes) ensure(i, width int64) {
	if width < 0 {
		return
	}
	end, err := conv.AddInt64(max(i, 0), width)
	if err != nil {
		panic(fmt.Errorf("%w: %w", ErrCapacityOverflow, err))
	}
	if err := r.EnsureCapacity(end); err != nil {
		panic(err)
	}
}

func (r *ResizableBytes) Narrow(from, toExc int64) Bytes {
	return r.Bytes.Narrow(from, toExc)
}

func (r *ResizableBytes) SetPosition(p int64) {
	r.ensure(p, 0)
	r.Bytes.SetPosition(p)
}

func (r *ResizableBytes) Skip(n int64) { r.SetPosition(r.Position() + n) }

func (r *ResizableBytes) WriteBoolAt(i int64, v bool) {
	r.ensure(i, 1)
	r.Bytes.WriteBoolAt(i, v)
}

func (r *ResizableBytes) WriteInt8At(i int64, v int8) {
	r.ensure(i, 1)
	r.Bytes.WriteInt8At(i, v)
}

func (r *ResizableBytes) WriteUint8At(i int64, v uint8) {
	r.ensure(i, 1)
	r.Bytes.WriteUint8At(i, v)
}

func (r *ResizableBytes) WriteInt16At(i int64, v int16) {
	r.ensure(i, 2)
	r.Bytes.WriteInt16At(i, v)
}

func (r *ResizableBytes) WriteUint16At(i int64, v uint16) {
	r.ensure(i, 2)
	r.Bytes.WriteUint16At(i, v)
}

func (r *ResizableBytes) WriteCharAt(i int64, v rune) {
	r.ensure(i, 2)
	r.Bytes.WriteCharAt(i, v)
}

func (r *ResizableBytes) WriteInt32At(i int64, v int32) {
	r.ensure(i, 4)
	r.Bytes.WriteInt32At(i, v)
}

func (r *ResizableBytes) WriteUint32At(i int64, v uint32) {
	r.ensure(i, 4)
	r.Bytes.WriteUint32At(i, v)
}

func (r *ResizableBytes) WriteInt64At(i int64, v int64) {
	r.ensure(i, 8)
	r.Bytes.WriteInt64At(i, v)
}

func (r *ResizableBytes) WriteUint64At(i int64, v uint64) {
	r.ensure(i, 8)
	r.Bytes.WriteUint64At(i, v)
}

func (r *ResizableBytes) WriteFloat32At(i int64, v float32) {
	r.ensure(i, 4)
	r.Bytes.WriteFloat32At(i, v)
}

func (r *ResizableBytes) WriteFloat64At(i int64, v float64) {
	r.ensure(i, 8)
	r.Bytes.WriteFloat64At(i, v)
}

func (r *ResizableBytes) WriteBytesAt(i int64, p []byte) {
	r.ensure(i, int64(len(p)))
	r.Bytes.WriteBytesAt(i, p)
}

func (r *ResizableBytes) Fill(from, toExc int64, v byte) {
	r.ensure(from, toExc-from)
	r.Bytes.Fill(from, toExc, v)
}

func (r *ResizableBytes) WriteUTF8At(i int64, s string) (int64, error) {
	if len(s) > 0xFFFF {
		return 0, ErrStringTooLong
	}
	r.ensure(i, 2+int64(len(s)))
	return r.Bytes.WriteUTF8At(i, s)
}

func (r *ResizableBytes) WriteBool(v bool) {
	r.ensure(r.Position(), 1)
	r.Bytes.WriteBool(v)
}

func (r *ResizableBytes) WriteInt8(v int8) {
	r.ensure(r.Position(), 1)
	r.Bytes.WriteInt8(v)
}

func (r *ResizableBytes) WriteUint8(v uint8) {
	r.ensure(r.Position(), 1)
	r.Bytes.WriteUint8(v)
}

func (r *ResizableBytes) WriteInt16(v int16) {
	r.ensure(r.Position(), 2)
	r.Bytes.WriteInt16(v)
}

func (r *ResizableBytes) WriteUint16(v uint16) {
	r.ensure(r.Position(), 2)
	r.Bytes.WriteUint16(v)
}

func (r *ResizableBytes) WriteChar(v rune) {
	r.ensure(r.Position(), 2)
	r.Bytes.WriteChar(v)
}

func (r *ResizableBytes) WriteInt32(v int32) {
	r.ensure(r.Position(), 4)
	r.Bytes.WriteInt32(v)
}

func (r *ResizableBytes) WriteUint32(v uint32) {
	r.ensure(r.Position(), 4)
	r.Bytes.WriteUint32(v)
}

func (r *ResizableBytes) WriteInt64(v int64) {
	r.ensure(r.Position(), 8)
	r.Bytes.WriteInt64(v)
}

func (r *ResizableBytes) WriteUint64(v uint64) {
	r.ensure(r.Position(), 8)
	r.Bytes.WriteUint64(v)
}

func (r *ResizableBytes) WriteFloat32(v float32) {
	r.ensure(r.Position(), 4)
	r.Bytes.WriteFloat32(v)
}

func (r *ResizableBytes) WriteFloat64(v float64) {
	r.ensure(r.Position(), 8)
	r.Bytes.WriteFloat64(v)
}

func (r *ResizableBytes) WriteUTF8(s string) error {
	n, err := r.WriteUTF8At(r.Position(), s)
	if err != nil {
		return err
	}
	r.Bytes.SetPosition(r.Position() + n)
	return nil
}

var _ Bytes = (*ResizableBytes)(nil)
