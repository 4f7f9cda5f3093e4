package snapshot

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/dustin/go-humanize"

	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/conv"
	"github.com/hupe1980/flystore/internal/resource"
	"github.com/hupe1980/flystore/mem"
)

const (
	magic   = "FLYS"
	version = 1

	prefixSize  = 8  // magic | version | compression | manifestLen
	lengthsSize = 24 // rawLen | checksum | payloadLen
)

// Kind names what a frame holds.
type Kind string

const (
	// KindBytes is a plain byte range.
	KindBytes Kind = "bytes"
	// KindFlyWeight is a flyweight store: header plus records.
	KindFlyWeight Kind = "flyweight"
)

// Manifest describes the frame contents.
type Manifest struct {
	Kind        Kind   `json:"kind"`
	Name        string `json:"name,omitempty"`
	RecordWidth int64  `json:"record_width,omitempty"`
	Header      string `json:"header,omitempty"`
	RecordCount int64  `json:"record_count,omitempty"`
	RawBytes    int64  `json:"raw_bytes"`
}

// Snapshot is a decoded frame.
type Snapshot struct {
	Manifest    Manifest
	Compression Compression
	Checksum    uint64
	// PayloadBytes is the stored size of the data.
	PayloadBytes int64
	Data         []byte
}

// Write exports the whole range of b.
func Write(ctx context.Context, w io.Writer, b mem.Bytes, opts ...Option) (Manifest, error) {
	m := Manifest{Kind: KindBytes, Name: b.Name(), RawBytes: b.Len()}
	return write(ctx, w, m, b.Slice(b.StartIndex(), b.EndIndexExc()), applyOptions(opts))
}

// WriteFlyWeight exports the header and live records of fw. Spare capacity
// is not written.
func WriteFlyWeight(ctx context.Context, w io.Writer, fw *flyweight.FlyWeight, opts ...Option) (Manifest, error) {
	b := fw.Bytes()
	n := fw.MaxByteOffset()
	m := Manifest{
		Kind:        KindFlyWeight,
		Name:        b.Name(),
		RecordWidth: fw.RecordWidth(),
		Header:      fw.Header().String(),
		RecordCount: fw.RecordCount(),
		RawBytes:    n,
	}
	return write(ctx, w, m, b.Slice(b.StartIndex(), b.StartIndex()+n), applyOptions(opts))
}

func write(ctx context.Context, w io.Writer, m Manifest, raw []byte, o options) (Manifest, error) {
	manifest, err := o.codec.Marshal(m)
	if err != nil {
		return m, fmt.Errorf("snapshot: encode manifest: %w", err)
	}
	manifestLen, err := conv.Int64ToUint16(int64(len(manifest)))
	if err != nil {
		return m, fmt.Errorf("snapshot: manifest too large: %w", err)
	}

	payload, c, err := compress(raw, o.compression)
	if err != nil {
		return m, err
	}

	frame := make([]byte, 0, prefixSize+len(manifest)+lengthsSize)
	frame = append(frame, magic...)
	frame = append(frame, version, byte(c))
	frame = binary.LittleEndian.AppendUint16(frame, manifestLen)
	frame = append(frame, manifest...)
	frame = binary.LittleEndian.AppendUint64(frame, uint64(len(raw)))
	frame = binary.LittleEndian.AppendUint64(frame, xxhash.Sum64(raw))
	frame = binary.LittleEndian.AppendUint64(frame, uint64(len(payload)))

	rw := resource.NewRateLimitedWriter(ctx, w, o.rc)
	if _, err := rw.Write(frame); err != nil {
		return m, fmt.Errorf("snapshot: write header: %w", err)
	}
	if _, err := rw.Write(payload); err != nil {
		return m, fmt.Errorf("snapshot: write payload: %w", err)
	}

	o.logger.Debug("snapshot written",
		"kind", m.Kind,
		"compression", c.String(),
		"raw", humanize.IBytes(uint64(len(raw))),
		"stored", humanize.IBytes(uint64(len(payload))),
	)
	return m, nil
}

// Read decodes one frame from r and verifies its checksum.
func Read(ctx context.Context, r io.Reader, opts ...Option) (*Snapshot, error) {
	o := applyOptions(opts)
	rr := resource.NewRateLimitedReader(ctx, r, o.rc)

	var prefix [prefixSize]byte
	if _, err := io.ReadFull(rr, prefix[:]); err != nil {
		return nil, truncated("prefix", err)
	}
	if string(prefix[:4]) != magic {
		return nil, ErrBadMagic
	}
	if prefix[4] != version {
		return nil, fmt.Errorf("%w: %d", ErrUnsupportedVersion, prefix[4])
	}
	s := &Snapshot{Compression: Compression(prefix[5])}

	manifest := make([]byte, binary.LittleEndian.Uint16(prefix[6:]))
	if _, err := io.ReadFull(rr, manifest); err != nil {
		return nil, truncated("manifest", err)
	}
	if err := o.codec.Unmarshal(manifest, &s.Manifest); err != nil {
		return nil, fmt.Errorf("%w: manifest: %w", ErrCorrupt, err)
	}

	var lengths [lengthsSize]byte
	if _, err := io.ReadFull(rr, lengths[:]); err != nil {
		return nil, truncated("lengths", err)
	}
	rawLen, err := conv.Uint64ToInt64(binary.LittleEndian.Uint64(lengths[0:]))
	if err != nil {
		return nil, fmt.Errorf("%w: raw length: %w", ErrCorrupt, err)
	}
	s.Checksum = binary.LittleEndian.Uint64(lengths[8:])
	s.PayloadBytes, err = conv.Uint64ToInt64(binary.LittleEndian.Uint64(lengths[16:]))
	if err != nil {
		return nil, fmt.Errorf("%w: payload length: %w", ErrCorrupt, err)
	}
	if rawLen != s.Manifest.RawBytes {
		return nil, fmt.Errorf("%w: manifest says %d bytes, frame %d", ErrCorrupt, s.Manifest.RawBytes, rawLen)
	}
	n, err := conv.Int64ToInt(rawLen)
	if err != nil {
		return nil, fmt.Errorf("%w: raw length: %w", ErrCorrupt, err)
	}

	// ReadAll grows with the data actually present, so a forged length
	// cannot force a huge allocation up front.
	payload, err := io.ReadAll(io.LimitReader(rr, s.PayloadBytes))
	if err != nil {
		return nil, fmt.Errorf("snapshot: read payload: %w", err)
	}
	if int64(len(payload)) != s.PayloadBytes {
		return nil, fmt.Errorf("%w: payload has %d of %d bytes", ErrCorrupt, len(payload), s.PayloadBytes)
	}

	if s.Data, err = decompress(payload, s.Compression, n); err != nil {
		return nil, err
	}
	if sum := xxhash.Sum64(s.Data); sum != s.Checksum {
		return nil, fmt.Errorf("%w: got %016x, want %016x", ErrChecksumMismatch, sum, s.Checksum)
	}
	return s, nil
}

func truncated(part string, err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return fmt.Errorf("%w: truncated %s", ErrCorrupt, part)
	}
	return fmt.Errorf("snapshot: read %s: %w", part, err)
}

// Restore copies the data to the start of dst, growing dst when it is an
// owner that is too small.
func (s *Snapshot) Restore(dst mem.Bytes) error {
	n := int64(len(s.Data))
	if dst.Len() < n {
		if err := dst.Resize(n); err != nil {
			return fmt.Errorf("%w: need %s, have %s: %w", ErrDestinationTooSmall,
				humanize.IBytes(uint64(n)), humanize.IBytes(uint64(dst.Len())), err)
		}
	}
	dst.WriteBytesAt(dst.StartIndex(), s.Data)
	return nil
}

// RestoreFlyWeight restores a flyweight frame into dst and attaches a
// FlyWeight to it.
func (s *Snapshot) RestoreFlyWeight(dst mem.Bytes) (*flyweight.FlyWeight, error) {
	if s.Manifest.Kind != KindFlyWeight {
		return nil, fmt.Errorf("%w: frame holds %q", ErrKindMismatch, s.Manifest.Kind)
	}
	header, err := flyweight.ParseHeaderLayout(s.Manifest.Header)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorrupt, err)
	}
	if err := s.Restore(dst); err != nil {
		return nil, err
	}
	fw, err := flyweight.Attach(dst, s.Manifest.RecordWidth, flyweight.WithHeader(header))
	if err != nil {
		return nil, err
	}
	if fw.RecordCount() != s.Manifest.RecordCount {
		return nil, fmt.Errorf("%w: %d records, manifest says %d", ErrCorrupt, fw.RecordCount(), s.Manifest.RecordCount)
	}
	return fw, nil
}
