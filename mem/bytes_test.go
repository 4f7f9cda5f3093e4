package mem

import (
	"errors"
	"math"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type backend struct {
	name string
	open func(t *testing.T, size int64, opts ...Option) Bytes
}

func backends() []backend {
	return []backend{
		{"heap", func(t *testing.T, size int64, opts ...Option) Bytes {
			b, err := NewHeap(size, opts...)
			require.NoError(t, err)
			return b
		}},
		{"native", func(t *testing.T, size int64, opts ...Option) Bytes {
			b, err := NewNative(size, opts...)
			require.NoError(t, err)
			t.Cleanup(func() {
				if !b.Released() {
					_ = b.Release()
				}
			})
			return b
		}},
		{"mapped", func(t *testing.T, size int64, opts ...Option) Bytes {
			b, err := OpenMapped(filepath.Join(t.TempDir(), "data.bin"), size, opts...)
			require.NoError(t, err)
			t.Cleanup(func() {
				if !b.Released() {
					_ = b.Release()
				}
			})
			return b
		}},
		{"resizable", func(t *testing.T, size int64, opts ...Option) Bytes {
			b, err := NewResizableHeap(size, opts...)
			require.NoError(t, err)
			return b
		}},
	}
}

func requireBoundsPanic(t *testing.T, underflow bool, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		r := recover()
		require.NotNil(t, r, "expected a bounds panic")
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)
		require.ErrorIs(t, err, ErrOutOfBounds)
		var be *BoundsError
		require.ErrorAs(t, err, &be)
		assert.Equal(t, underflow, be.Underflow)
	}()
	fn()
}

func TestRoundTrip(t *testing.T) {
	for _, bk := range backends() {
		t.Run(bk.name, func(t *testing.T) {
			b := bk.open(t, 128, WithCheckPolicy(Strict))

			for off := int64(0); off <= 8; off += 3 {
				b.WriteBoolAt(off, true)
				assert.True(t, b.ReadBoolAt(off))
				b.WriteInt8At(off, -7)
				assert.Equal(t, int8(-7), b.ReadInt8At(off))
				b.WriteUint8At(off, 250)
				assert.Equal(t, uint8(250), b.ReadUint8At(off))
				b.WriteInt16At(off, -12345)
				assert.Equal(t, int16(-12345), b.ReadInt16At(off))
				b.WriteUint16At(off, 65000)
				assert.Equal(t, uint16(65000), b.ReadUint16At(off))
				b.WriteCharAt(off, 'é')
				assert.Equal(t, 'é', b.ReadCharAt(off))
				b.WriteInt32At(off, math.MinInt32)
				assert.Equal(t, int32(math.MinInt32), b.ReadInt32At(off))
				b.WriteUint32At(off, math.MaxUint32)
				assert.Equal(t, uint32(math.MaxUint32), b.ReadUint32At(off))
				b.WriteInt64At(off, math.MinInt64)
				assert.Equal(t, int64(math.MinInt64), b.ReadInt64At(off))
				b.WriteUint64At(off, math.MaxUint64)
				assert.Equal(t, uint64(math.MaxUint64), b.ReadUint64At(off))
				b.WriteFloat32At(off, 3.25)
				assert.InDelta(t, 3.25, b.ReadFloat32At(off), 0)
				b.WriteFloat64At(off, -1e300)
				assert.InDelta(t, -1e300, b.ReadFloat64At(off), 0)
			}

			// Unsigned reads mask the signed representation.
			b.WriteInt8At(100, -1)
			assert.Equal(t, uint8(0xFF), b.ReadUint8At(100))
			b.WriteInt16At(100, -1)
			assert.Equal(t, uint16(0xFFFF), b.ReadUint16At(100))
			b.WriteInt32At(100, -1)
			assert.Equal(t, uint32(0xFFFFFFFF), b.ReadUint32At(100))
		})
	}
}

func TestLittleEndianLayout(t *testing.T) {
	b, err := NewHeap(8)
	require.NoError(t, err)

	b.WriteUint32At(0, 0x01020304)
	assert.Equal(t, []byte{0x04, 0x03, 0x02, 0x01}, b.Slice(0, 4))
}

func TestCursorMonotonicity(t *testing.T) {
	for _, bk := range backends() {
		t.Run(bk.name, func(t *testing.T) {
			b := bk.open(t, 64, WithCheckPolicy(Strict))
			b.SetPosition(3)

			b.WriteBool(true)
			b.WriteInt8(-2)
			b.WriteUint16(7)
			b.WriteChar('x')
			b.WriteInt32(-9)
			b.WriteUint32(9)
			b.WriteInt64(1 << 40)
			b.WriteFloat32(1.5)
			b.WriteFloat64(2.5)
			require.NoError(t, b.WriteUTF8("héllo"))
			assert.Equal(t, int64(3+1+1+2+2+4+4+8+4+8+2+6), b.Position())

			b.SetPosition(3)
			assert.True(t, b.ReadBool())
			assert.Equal(t, int8(-2), b.ReadInt8())
			assert.Equal(t, uint16(7), b.ReadUint16())
			assert.Equal(t, 'x', b.ReadChar())
			assert.Equal(t, int32(-9), b.ReadInt32())
			assert.Equal(t, uint32(9), b.ReadUint32())
			assert.Equal(t, int64(1<<40), b.ReadInt64())
			assert.InDelta(t, 1.5, b.ReadFloat32(), 0)
			assert.InDelta(t, 2.5, b.ReadFloat64(), 0)
			s, err := b.ReadUTF8()
			require.NoError(t, err)
			assert.Equal(t, "héllo", s)
			assert.Equal(t, int64(3+1+1+2+2+4+4+8+4+8+2+6), b.Position())
		})
	}
}

func TestStrictBounds(t *testing.T) {
	b, err := NewHeap(16, WithCheckPolicy(Strict), WithName("probe"))
	require.NoError(t, err)

	requireBoundsPanic(t, false, func() { b.ReadInt64At(9) })
	requireBoundsPanic(t, false, func() { b.WriteInt32At(13, 1) })
	requireBoundsPanic(t, true, func() { b.ReadUint8At(-1) })
	requireBoundsPanic(t, false, func() { b.SetPosition(17) })
	requireBoundsPanic(t, true, func() { b.Skip(-1) })

	// The last valid address of each width is accepted.
	assert.NotPanics(t, func() { b.WriteInt64At(8, 1) })
	assert.NotPanics(t, func() { b.SetPosition(16) })
}

func TestBoundsErrorMessage(t *testing.T) {
	err := &BoundsError{Name: "probe", Index: 9, Width: 8, Start: 0, End: 16}
	assert.Contains(t, err.Error(), "probe: overflow")
	assert.True(t, errors.Is(err, ErrOutOfBounds))
}

func TestUncheckedSkipsLogicalChecks(t *testing.T) {
	parent, err := NewHeap(32, WithCheckPolicy(Unchecked))
	require.NoError(t, err)
	parent.WriteInt32At(20, 77)

	// Without logical checks, Go's slice bounds still stop reads past the view.
	view := parent.Narrow(0, 16)
	assert.Equal(t, Unchecked, view.Policy())
	assert.Panics(t, func() { view.ReadInt32At(20) })

	assert.NotPanics(t, func() { parent.SetPosition(100) })
}

func TestUTF8(t *testing.T) {
	b, err := NewHeap(16, WithCheckPolicy(Strict))
	require.NoError(t, err)

	n, err := b.WriteUTF8At(0, "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
	assert.Equal(t, []byte{2, 0, 'h', 'i'}, b.Slice(0, 4))

	s, n, err := b.ReadUTF8At(0)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Equal(t, int64(4), n)

	t.Run("declared length past end", func(t *testing.T) {
		b.WriteUint16At(10, 100)
		_, _, err := b.ReadUTF8At(10)
		assert.ErrorIs(t, err, ErrMalformedString)
	})

	t.Run("invalid utf8", func(t *testing.T) {
		b.WriteUint16At(0, 2)
		b.WriteBytesAt(2, []byte{0xff, 0xfe})
		_, _, err := b.ReadUTF8At(0)
		assert.ErrorIs(t, err, ErrMalformedString)
	})

	t.Run("too long", func(t *testing.T) {
		big, err := NewHeap(70000)
		require.NoError(t, err)
		_, err = big.WriteUTF8At(0, string(make([]byte, 65536)))
		assert.ErrorIs(t, err, ErrStringTooLong)
	})
}

func TestBulk(t *testing.T) {
	src, err := NewHeap(16, WithCheckPolicy(Strict))
	require.NoError(t, err)
	dst, err := NewHeap(16, WithCheckPolicy(Strict))
	require.NoError(t, err)

	src.WriteBytesAt(2, []byte("abcdef"))
	src.CopyTo(2, dst, 8, 6)
	assert.Equal(t, []byte("abcdef"), dst.Slice(8, 14))

	p := make([]byte, 3)
	dst.ReadBytesAt(9, p)
	assert.Equal(t, []byte("bcd"), p)

	dst.Fill(0, 8, 0xAA)
	for i := int64(0); i < 8; i++ {
		assert.Equal(t, uint8(0xAA), dst.ReadUint8At(i))
	}

	// Overlapping copy within one buffer behaves like memmove.
	src.CopyTo(2, src, 4, 6)
	assert.Equal(t, []byte("ababcdef"), src.Slice(2, 10))

	requireBoundsPanic(t, false, func() { src.CopyTo(12, dst, 0, 8) })
}

func TestNarrowKeepsParentAddresses(t *testing.T) {
	for _, bk := range backends() {
		t.Run(bk.name, func(t *testing.T) {
			b := bk.open(t, 64, WithCheckPolicy(Strict))
			b.WriteInt64At(24, 99)

			v := b.Narrow(16, 40)
			assert.Equal(t, int64(16), v.StartIndex())
			assert.Equal(t, int64(40), v.EndIndexExc())
			assert.Equal(t, int64(24), v.Len())
			assert.Equal(t, int64(16), v.Position())
			assert.Equal(t, int64(99), v.ReadInt64At(24))

			v.WriteInt32At(36, 5)
			assert.Equal(t, int32(5), b.ReadInt32At(36))

			requireBoundsPanic(t, true, func() { v.ReadUint8At(15) })
			requireBoundsPanic(t, false, func() { v.ReadInt64At(33) })

			assert.ErrorIs(t, v.Resize(128), ErrNotOwner)
			assert.ErrorIs(t, v.Release(), ErrNotOwner)

			nested := v.Narrow(20, 32)
			assert.Equal(t, int64(99), nested.ReadInt64At(24))
			requireBoundsPanic(t, false, func() { nested.ReadInt64At(28) })
		})
	}
}

func TestResizePreservesPrefix(t *testing.T) {
	for _, bk := range backends() {
		t.Run(bk.name, func(t *testing.T) {
			b := bk.open(t, 32, WithCheckPolicy(Strict))
			for i := int64(0); i < 32; i++ {
				b.WriteUint8At(i, uint8(i))
			}

			require.NoError(t, b.Resize(100))
			assert.Equal(t, int64(100), b.Len())
			for i := int64(0); i < 32; i++ {
				assert.Equal(t, uint8(i), b.ReadUint8At(i))
			}
			assert.NotPanics(t, func() { b.WriteInt64At(92, 1) })

			require.NoError(t, b.Resize(8))
			assert.Equal(t, int64(8), b.Len())
			assert.Equal(t, uint8(7), b.ReadUint8At(7))
			requireBoundsPanic(t, false, func() { b.ReadUint8At(8) })
		})
	}
}

func TestStaleViewAfterResize(t *testing.T) {
	b, err := NewHeap(32, WithCheckPolicy(Strict))
	require.NoError(t, err)

	v := b.Narrow(0, 16)
	require.NoError(t, b.Resize(64))

	assert.PanicsWithValue(t, ErrStaleView, func() { v.ReadUint8At(0) })
}

func TestReleaseOnce(t *testing.T) {
	for _, bk := range backends() {
		t.Run(bk.name, func(t *testing.T) {
			b := bk.open(t, 16, WithCheckPolicy(Strict))
			v := b.Narrow(0, 8)

			require.NoError(t, b.Release())
			assert.True(t, b.Released())
			assert.True(t, v.Released())
			assert.ErrorIs(t, b.Release(), ErrReleased)
			assert.ErrorIs(t, b.Resize(32), ErrReleased)

			assert.PanicsWithValue(t, ErrReleased, func() { v.ReadUint8At(0) })
		})
	}
}

func TestInvalidSize(t *testing.T) {
	_, err := NewHeap(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
	_, err = NewNative(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)

	b, err := NewHeap(0)
	require.NoError(t, err)
	assert.Equal(t, int64(0), b.Len())
	assert.ErrorIs(t, b.Resize(-5), ErrInvalidSize)
}

func TestAlignment(t *testing.T) {
	assert.Equal(t, uintptr(64), AlignAddress(1))
	assert.Equal(t, uintptr(64), AlignAddress(64))
	assert.Equal(t, uintptr(128), AlignAddress(65))
	assert.Equal(t, uintptr(0), AlignAddress(0))

	for _, size := range []int64{1, 63, 64, 65, 1000} {
		h, err := NewHeap(size)
		require.NoError(t, err)
		assert.True(t, IsAligned(h.Slice(0, size)), "heap size %d", size)

		n, err := NewNative(size)
		require.NoError(t, err)
		assert.Zero(t, n.Address()%CacheLineSize, "native size %d", size)
		require.NoError(t, n.Release())
	}
}

func TestCheckPolicyString(t *testing.T) {
	assert.Equal(t, "strict", Strict.String())
	assert.Equal(t, "unchecked", Unchecked.String())
	assert.True(t, Strict.Checked())
	assert.False(t, Unchecked.Checked())
}
