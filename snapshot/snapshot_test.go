package snapshot

import (
	"bytes"
	"context"
	"math/rand/v2"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/flystore/codec"
	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/internal/resource"
	"github.com/hupe1980/flystore/mem"
)

func newFlyWeight(t *testing.T, n int64, h flyweight.HeaderLayout) *flyweight.FlyWeight {
	t.Helper()
	fw, err := flyweight.NewHeap(16, n*2, flyweight.WithHeader(h))
	require.NoError(t, err)
	_, err = fw.AllocateNewRecords(n)
	require.NoError(t, err)
	for i := range fw.Records() {
		fw.WriteInt64(0, i%17)
		fw.WriteFloat64(8, float64(i)/4)
	}
	return fw
}

func TestFlyWeightRoundTrip(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		for _, h := range []flyweight.HeaderLayout{flyweight.SingleHeader, flyweight.DualHeader} {
			t.Run(c.String()+"/"+h.String(), func(t *testing.T) {
				src := newFlyWeight(t, 5000, h)

				var buf bytes.Buffer
				m, err := WriteFlyWeight(context.Background(), &buf, src, WithCompression(c))
				require.NoError(t, err)
				assert.Equal(t, KindFlyWeight, m.Kind)
				assert.Equal(t, int64(5000), m.RecordCount)
				assert.Equal(t, src.MaxByteOffset(), m.RawBytes)

				s, err := Read(context.Background(), &buf)
				require.NoError(t, err)
				assert.Equal(t, c, s.Compression)
				assert.Equal(t, m, s.Manifest)
				if c != CompressionNone {
					assert.Less(t, s.PayloadBytes, m.RawBytes)
				}

				dst, err := mem.NewHeap(0)
				require.NoError(t, err)
				fw, err := s.RestoreFlyWeight(dst)
				require.NoError(t, err)
				require.Equal(t, src.RecordCount(), fw.RecordCount())
				assert.Equal(t, h, fw.Header())
				for i := range fw.Records() {
					require.Equal(t, i%17, fw.ReadInt64(0))
					require.Equal(t, float64(i)/4, fw.ReadFloat64(8))
				}
			})
		}
	}
}

func TestBytesRoundTripFromView(t *testing.T) {
	b, err := mem.NewHeap(256, mem.WithName("blob"))
	require.NoError(t, err)
	for i := int64(0); i < 256; i++ {
		b.WriteUint8At(i, uint8(i))
	}
	view := b.Narrow(100, 164)

	var buf bytes.Buffer
	m, err := Write(context.Background(), &buf, view, WithCodec(codec.JSON{}))
	require.NoError(t, err)
	assert.Equal(t, KindBytes, m.Kind)
	assert.Equal(t, int64(64), m.RawBytes)

	s, err := Read(context.Background(), &buf)
	require.NoError(t, err)
	for i, v := range s.Data {
		require.Equal(t, byte(100+i), v)
	}

	_, err = s.RestoreFlyWeight(b)
	assert.ErrorIs(t, err, ErrKindMismatch)
}

func TestIncompressibleFallsBackToNone(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))
	raw := make([]byte, 4096)
	for i := range raw {
		raw[i] = byte(rng.Uint32())
	}

	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, mem.WrapHeap(raw), WithCompression(CompressionLZ4))
	require.NoError(t, err)

	s, err := Read(context.Background(), &buf)
	require.NoError(t, err)
	assert.Equal(t, CompressionNone, s.Compression)
	assert.Equal(t, raw, s.Data)
}

func TestEmptyBytes(t *testing.T) {
	var buf bytes.Buffer
	_, err := Write(context.Background(), &buf, mem.WrapHeap(nil))
	require.NoError(t, err)

	s, err := Read(context.Background(), &buf)
	require.NoError(t, err)
	assert.Empty(t, s.Data)
}

func TestChecksumMismatch(t *testing.T) {
	fw := newFlyWeight(t, 100, flyweight.SingleHeader)
	var buf bytes.Buffer
	_, err := WriteFlyWeight(context.Background(), &buf, fw, WithCompression(CompressionNone))
	require.NoError(t, err)

	frame := buf.Bytes()
	frame[len(frame)-1] ^= 0xFF

	_, err = Read(context.Background(), bytes.NewReader(frame))
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestCorruptFrames(t *testing.T) {
	fw := newFlyWeight(t, 100, flyweight.SingleHeader)
	var buf bytes.Buffer
	_, err := WriteFlyWeight(context.Background(), &buf, fw)
	require.NoError(t, err)
	frame := buf.Bytes()

	tests := []struct {
		name   string
		mutate func([]byte) []byte
		want   error
	}{
		{"magic", func(f []byte) []byte { f[0] = 'X'; return f }, ErrBadMagic},
		{"version", func(f []byte) []byte { f[4] = 9; return f }, ErrUnsupportedVersion},
		{"compression", func(f []byte) []byte { f[5] = 7; return f }, ErrUnknownCompression},
		{"truncated header", func(f []byte) []byte { return f[:5] }, ErrCorrupt},
		{"truncated payload", func(f []byte) []byte { return f[:len(f)-3] }, ErrCorrupt},
		{"garbage payload", func(f []byte) []byte { f[len(f)-5] ^= 0x5A; f[len(f)-6] ^= 0xA5; return f }, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := tt.mutate(bytes.Clone(frame))
			_, err := Read(context.Background(), bytes.NewReader(f))
			require.Error(t, err)
			if tt.want != nil {
				assert.ErrorIs(t, err, tt.want)
			}
		})
	}
}

func TestRestoreIntoViewTooSmall(t *testing.T) {
	fw := newFlyWeight(t, 10, flyweight.SingleHeader)
	var buf bytes.Buffer
	_, err := WriteFlyWeight(context.Background(), &buf, fw)
	require.NoError(t, err)
	s, err := Read(context.Background(), &buf)
	require.NoError(t, err)

	owner, err := mem.NewHeap(64)
	require.NoError(t, err)
	err = s.Restore(owner.Narrow(0, 32))
	assert.ErrorIs(t, err, ErrDestinationTooSmall)
	assert.ErrorIs(t, err, mem.ErrNotOwner)
}

func TestRestoreIntoMappedFile(t *testing.T) {
	fw := newFlyWeight(t, 1000, flyweight.DualHeader)
	var buf bytes.Buffer
	_, err := WriteFlyWeight(context.Background(), &buf, fw)
	require.NoError(t, err)
	s, err := Read(context.Background(), &buf)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "records.fly")
	mapped, err := mem.OpenMapped(path, 0)
	require.NoError(t, err)
	_, err = s.RestoreFlyWeight(mapped)
	require.NoError(t, err)
	require.NoError(t, mapped.Release())

	ro, err := mem.OpenMappedReadOnly(path)
	require.NoError(t, err)
	defer func() { _ = ro.Release() }()
	attached, err := flyweight.Attach(ro, 16, flyweight.WithHeader(flyweight.DualHeader))
	require.NoError(t, err)
	assert.Equal(t, int64(1000), attached.RecordCount())
}

func TestRateLimitedIO(t *testing.T) {
	rc := resource.NewController(resource.Config{IOLimitBytesPerSec: 1 << 30})
	fw := newFlyWeight(t, 100, flyweight.SingleHeader)

	var buf bytes.Buffer
	_, err := WriteFlyWeight(context.Background(), &buf, fw, WithResourceController(rc))
	require.NoError(t, err)
	_, err = Read(context.Background(), &buf, WithResourceController(rc))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = WriteFlyWeight(ctx, &buf, fw, WithResourceController(rc))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestParseCompression(t *testing.T) {
	for _, c := range []Compression{CompressionNone, CompressionLZ4, CompressionZstd} {
		got, err := ParseCompression(c.String())
		require.NoError(t, err)
		assert.Equal(t, c, got)
	}
	_, err := ParseCompression("brotli")
	assert.ErrorIs(t, err, ErrUnknownCompression)
}

func TestZstdOutputBoundedByRawLength(t *testing.T) {
	raw := make([]byte, 1<<20)
	payload, c, err := compress(raw, CompressionZstd)
	require.NoError(t, err)
	require.Equal(t, CompressionZstd, c)

	_, err = decompress(payload, CompressionZstd, 1024)
	assert.ErrorIs(t, err, ErrCorrupt)

	// The pooled decoder stays usable after rejecting a frame.
	out, err := decompress(payload, CompressionZstd, len(raw))
	require.NoError(t, err)
	assert.Equal(t, raw, out)
}

func TestManifestTooLarge(t *testing.T) {
	b, err := mem.NewHeap(8, mem.WithName(strings.Repeat("n", 70_000)))
	require.NoError(t, err)

	var buf bytes.Buffer
	_, err = Write(context.Background(), &buf, b)
	assert.ErrorIs(t, err, conv.ErrOverflow)
	assert.Zero(t, buf.Len())
}
