package region

import (
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flystore/mem"
	"github.com/hupe1980/flystore/metrics"
	"github.com/hupe1980/flystore/testutil"
)

func newStrict(t *testing.T, opts ...Option) *MemoryRegion {
	t.Helper()
	r, err := New(append([]Option{WithCheckPolicy(mem.Strict), WithInitialCapacity(64)}, opts...)...)
	require.NoError(t, err)
	return r
}

func requireAccessPanic(t *testing.T, target error, fn func()) {
	t.Helper()
	defer func() {
		t.Helper()
		rec := recover()
		require.NotNil(t, rec, "expected an access panic")
		err, ok := rec.(error)
		require.True(t, ok)
		var ae *AccessError
		require.ErrorAs(t, err, &ae)
		require.ErrorIs(t, err, target)
	}()
	fn()
}

func TestMallocStringScenario(t *testing.T) {
	r := newStrict(t)

	h, err := r.Malloc(10)
	require.NoError(t, err)
	assert.NotEqual(t, Null, h)

	n, err := r.WriteUTF8At(h, 0, "hi")
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)

	view, err := r.AsBytes(h)
	require.NoError(t, err)
	assert.Equal(t, int64(10), view.Len())
	start := view.StartIndex()
	assert.Equal(t, []byte{2, 0, 'h', 'i'}, view.Slice(start, start+4))

	s, consumed, err := view.ReadUTF8At(start)
	require.NoError(t, err)
	assert.Equal(t, "hi", s)
	assert.Equal(t, int64(4), consumed)

	got, err := r.ReadUTF8At(h, 0)
	require.NoError(t, err)
	assert.Equal(t, "hi", got)

	// Writes through the view are visible through the handle.
	view.WriteInt32At(start+4, 77)
	assert.Equal(t, int32(77), r.ReadInt32At(h, 4))
}

func TestRefcounting(t *testing.T) {
	r := newStrict(t)

	h, err := r.Malloc(8)
	require.NoError(t, err)
	rc, err := r.RetainCount(h)
	require.NoError(t, err)
	assert.Equal(t, 1, rc)

	require.NoError(t, r.Retain(h))
	rc, _ = r.RetainCount(h)
	assert.Equal(t, 2, rc)

	require.NoError(t, r.Free(h))
	assert.True(t, r.Valid(h))
	require.NoError(t, r.Free(h))
	assert.False(t, r.Valid(h))

	_, err = r.RetainCount(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	assert.ErrorIs(t, r.Free(h), ErrInvalidHandle)
	assert.ErrorIs(t, r.Retain(h), ErrInvalidHandle)
	_, err = r.AsBytes(h)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	requireAccessPanic(t, ErrInvalidHandle, func() { r.ReadInt64At(h, 0) })

	once, err := r.Malloc(4)
	require.NoError(t, err)
	require.NoError(t, r.Free(once))
	_, err = r.Size(once)
	assert.ErrorIs(t, err, ErrInvalidHandle)
}

func TestRetainOverflow(t *testing.T) {
	r := newStrict(t)
	h, err := r.Malloc(1)
	require.NoError(t, err)

	for i := 1; i < MaxRetainCount; i++ {
		require.NoError(t, r.Retain(h))
	}
	rc, err := r.RetainCount(h)
	require.NoError(t, err)
	assert.Equal(t, MaxRetainCount, rc)
	assert.ErrorIs(t, r.Retain(h), ErrRetainOverflow)
}

func TestNullAndUnknownHandles(t *testing.T) {
	r := newStrict(t)
	_, err := r.Size(Null)
	assert.ErrorIs(t, err, ErrInvalidHandle)
	_, err = r.Size(Handle(42))
	assert.ErrorIs(t, err, ErrInvalidHandle)
	requireAccessPanic(t, ErrInvalidHandle, func() { r.WriteUint8At(Null, 0, 1) })
}

func TestTypedAccessBounds(t *testing.T) {
	r := newStrict(t)
	h, err := r.Malloc(8)
	require.NoError(t, err)

	r.WriteInt64At(h, 0, -5)
	assert.Equal(t, int64(-5), r.ReadInt64At(h, 0))
	r.WriteFloat32At(h, 4, 1.25)
	assert.InDelta(t, 1.25, r.ReadFloat32At(h, 4), 0)
	r.WriteUint16At(h, 0, 9)
	assert.Equal(t, uint16(9), r.ReadUint16At(h, 0))
	r.WriteCharAt(h, 2, 'q')
	assert.Equal(t, 'q', r.ReadCharAt(h, 2))
	r.WriteBoolAt(h, 7, true)
	assert.True(t, r.ReadBoolAt(h, 7))

	requireAccessPanic(t, mem.ErrOutOfBounds, func() { r.ReadInt64At(h, 1) })
	requireAccessPanic(t, mem.ErrOutOfBounds, func() { r.WriteInt8At(h, -1, 0) })
	requireAccessPanic(t, mem.ErrOutOfBounds, func() { r.WriteBytesAt(h, 4, make([]byte, 5)) })

	// A string whose declared length runs past the block is rejected.
	r.WriteUint16At(h, 0, 100)
	requireAccessPanic(t, mem.ErrOutOfBounds, func() { _, _ = r.ReadUTF8At(h, 0) })

	err = (&AccessError{Handle: h, Offset: 1, Width: 8, Size: 8, Err: mem.ErrOutOfBounds})
	assert.Contains(t, err.Error(), "outside block of 8 bytes")
}

func TestBlocksAreDisjoint(t *testing.T) {
	r := newStrict(t)

	var handles []Handle
	for i := 0; i < 100; i++ {
		h, err := r.Malloc(int64(i%7 + 8))
		require.NoError(t, err)
		r.WriteInt64At(h, 0, int64(i))
		handles = append(handles, h)
	}
	for i, h := range handles {
		assert.Equal(t, int64(i), r.ReadInt64At(h, 0))
		size, err := r.Size(h)
		require.NoError(t, err)
		assert.Equal(t, int64(i%7+8), size)
	}
	assert.Equal(t, int64(100), r.Handles())
}

func TestZeroLengthBlock(t *testing.T) {
	r := newStrict(t)
	h, err := r.Malloc(0)
	require.NoError(t, err)
	size, err := r.Size(h)
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	view, err := r.AsBytes(h)
	require.NoError(t, err)
	assert.Equal(t, int64(0), view.Len())

	next, err := r.Malloc(0)
	require.NoError(t, err)
	assert.NotEqual(t, h, next)

	_, err = r.Malloc(-1)
	assert.ErrorIs(t, err, ErrInvalidSize)
}

func TestStatsAndNoReclamation(t *testing.T) {
	collector := &metrics.BasicCollector{}
	r := newStrict(t, WithMetrics(collector))

	a, err := r.Malloc(10)
	require.NoError(t, err)
	b, err := r.Malloc(20)
	require.NoError(t, err)
	require.NoError(t, r.Free(a))

	c, err := r.Malloc(5)
	require.NoError(t, err)
	assert.Greater(t, c, b, "freed slots are not reused")

	stats := r.Stats()
	assert.Equal(t, int64(2), stats.LiveHandles)
	assert.Equal(t, int64(1), stats.FreedHandles)
	assert.Equal(t, int64(25), stats.BytesInUse)
	assert.Equal(t, int64(35), stats.DataBytes)
	assert.Equal(t, int64(10), stats.UnreclaimedBytes)
	assert.GreaterOrEqual(t, stats.Capacity, int64(12+35))

	live := r.Live()
	assert.False(t, live.Test(uint(a)))
	assert.True(t, live.Test(uint(b)))
	assert.True(t, live.Test(uint(c)))
	assert.False(t, live.Test(uint(Null)))

	basic := collector.Stats()
	assert.Equal(t, int64(10), basic.ReleaseBytes)
}

func TestGrowthInvalidatesNothingButViews(t *testing.T) {
	r := newStrict(t)
	h, err := r.Malloc(16)
	require.NoError(t, err)
	r.WriteInt64At(h, 8, 11)

	view, err := r.AsBytes(h)
	require.NoError(t, err)

	_, err = r.Malloc(4096)
	require.NoError(t, err)

	assert.Equal(t, int64(11), r.ReadInt64At(h, 8), "handles survive growth")
	assert.Panics(t, func() { view.ReadInt64At(view.StartIndex() + 8) })
}

func TestAttachMapped(t *testing.T) {
	dir := t.TempDir()
	data, err := mem.OpenMapped(filepath.Join(dir, "data.bin"), 64)
	require.NoError(t, err)
	index, err := mem.OpenMapped(filepath.Join(dir, "index.bin"), 64)
	require.NoError(t, err)

	r, err := New(WithData(data), WithIndex(index))
	require.NoError(t, err)
	strs := NewStrings(r)
	h, err := strs.Put("mapped")
	require.NoError(t, err)
	freed, err := strs.Put("gone")
	require.NoError(t, err)
	require.NoError(t, strs.Free(freed))
	require.NoError(t, r.Release())

	data, err = mem.OpenMapped(filepath.Join(dir, "data.bin"), 0)
	require.NoError(t, err)
	index, err = mem.OpenMapped(filepath.Join(dir, "index.bin"), 0)
	require.NoError(t, err)
	again, err := Attach(data, index)
	require.NoError(t, err)
	defer again.Release()

	got, err := NewStrings(again).Get(h)
	require.NoError(t, err)
	assert.Equal(t, "mapped", got)
	assert.False(t, again.Valid(freed))
	assert.Equal(t, int64(2), again.Handles())
}

func TestAttachRejectsCorruption(t *testing.T) {
	data, err := mem.NewHeap(64)
	require.NoError(t, err)
	index, err := mem.NewHeap(64)
	require.NoError(t, err)

	data.WriteInt64At(0, 1000)
	_, err = Attach(data, index)
	assert.ErrorIs(t, err, ErrCorrupt)

	data.WriteInt64At(0, 12)
	data.WriteUint32At(8, 3)
	index.WriteInt64At(0, 1)
	_, err = Attach(data, index)
	assert.ErrorIs(t, err, ErrCorrupt)
}

func TestStrings(t *testing.T) {
	strs := NewStrings(newStrict(t))

	h, err := strs.Put("héllo wörld")
	require.NoError(t, err)
	size, err := strs.Region().Size(h)
	require.NoError(t, err)
	assert.Equal(t, int64(2+len("héllo wörld")), size)

	got, err := strs.Get(h)
	require.NoError(t, err)
	assert.Equal(t, "héllo wörld", got)

	empty, err := strs.Put("")
	require.NoError(t, err)
	got, err = strs.Get(empty)
	require.NoError(t, err)
	assert.Equal(t, "", got)

	require.NoError(t, strs.Retain(h))
	require.NoError(t, strs.Free(h))
	_, err = strs.Get(h)
	require.NoError(t, err)
	require.NoError(t, strs.Free(h))
	_, err = strs.Get(h)
	assert.True(t, errors.Is(err, ErrInvalidHandle))

	_, err = strs.Put(strings.Repeat("x", 70000))
	assert.ErrorIs(t, err, mem.ErrStringTooLong)
}

func TestStringsRandomRoundTrip(t *testing.T) {
	strs := NewStrings(newStrict(t))
	words := testutil.NewRNG(42).Strings(500, 16)

	handles := make([]Handle, len(words))
	for i, w := range words {
		h, err := strs.Put(w)
		require.NoError(t, err)
		handles[i] = h
	}
	for i, h := range handles {
		got, err := strs.Get(h)
		require.NoError(t, err)
		require.Equal(t, words[i], got)
	}

	stats := strs.Region().Stats()
	assert.Equal(t, int64(len(words)), stats.LiveHandles)
	assert.Equal(t, stats.DataBytes, stats.BytesInUse)
}
