package mem

import (
	"encoding/binary"
	"math"
	"unicode/utf8"

	"github.com/hupe1980/flystore/internal/conv"
)

// buffer implements Bytes over a slice whose first byte has address base.
// Owners embed it and override Resize and Release; views use it directly.
type buffer struct {
	name   string
	data   []byte
	base   int64
	pos    int64
	policy CheckPolicy

	// root is the owning buffer; views compare gen against it to detect
	// a resize of the owner.
	root     *buffer
	gen      uint64
	released bool
}

func (b *buffer) init(name string, data []byte, policy CheckPolicy) {
	b.name = name
	b.data = data
	b.base = 0
	b.pos = 0
	b.policy = policy
	b.root = b
}

// reset installs new backing memory after a resize of the owner.
func (b *buffer) reset(data []byte) {
	b.data = data
	b.gen++
	if end := int64(len(data)); b.pos > end {
		b.pos = end
	}
}

func (b *buffer) Name() string        { return b.name }
func (b *buffer) Policy() CheckPolicy { return b.policy }
func (b *buffer) StartIndex() int64   { return b.base }
func (b *buffer) EndIndexExc() int64  { return b.base + int64(len(b.data)) }
func (b *buffer) Len() int64          { return int64(len(b.data)) }
func (b *buffer) Position() int64     { return b.pos }
func (b *buffer) Released() bool      { return b.root.released }

func (b *buffer) checkLive() {
	if b.root.released {
		panic(ErrReleased)
	}
	if b.root != b && b.root.gen != b.gen {
		panic(ErrStaleView)
	}
}

func (b *buffer) check(i, width int64) {
	if b.policy != Strict {
		return
	}
	b.checkLive()
	end := b.base + int64(len(b.data))
	if i < b.base {
		panic(&BoundsError{Name: b.name, Index: i, Width: width, Start: b.base, End: end, Underflow: true})
	}
	if width < 0 || i+width > end || i+width < i {
		panic(&BoundsError{Name: b.name, Index: i, Width: width, Start: b.base, End: end})
	}
}

func (b *buffer) at(i, width int64) []byte {
	b.check(i, width)
	off := i - b.base
	return b.data[off : off+width]
}

func (b *buffer) SetPosition(p int64) {
	if b.policy == Strict && (p < b.base || p > b.base+int64(len(b.data))) {
		panic(&BoundsError{
			Name: b.name, Index: p, Start: b.base, End: b.base + int64(len(b.data)),
			Underflow: p < b.base,
		})
	}
	b.pos = p
}

func (b *buffer) Skip(n int64) { b.SetPosition(b.pos + n) }

func (b *buffer) Narrow(from, toExc int64) Bytes {
	if toExc < from {
		panic(&BoundsError{Name: b.name, Index: from, Width: toExc - from, Start: b.base, End: b.EndIndexExc()})
	}
	s := b.at(from, toExc-from)
	return &buffer{
		name:   b.name,
		data:   s[:len(s):len(s)],
		base:   from,
		pos:    from,
		policy: b.policy,
		root:   b.root,
		gen:    b.root.gen,
	}
}

func (b *buffer) Resize(int64) error { return ErrNotOwner }
func (b *buffer) Release() error     { return ErrNotOwner }

// Absolute reads.

func (b *buffer) ReadBoolAt(i int64) bool     { return b.at(i, 1)[0] != 0 }
func (b *buffer) ReadInt8At(i int64) int8     { return int8(b.at(i, 1)[0]) }
func (b *buffer) ReadUint8At(i int64) uint8   { return b.at(i, 1)[0] }
func (b *buffer) ReadInt16At(i int64) int16   { return int16(binary.LittleEndian.Uint16(b.at(i, 2))) }
func (b *buffer) ReadUint16At(i int64) uint16 { return binary.LittleEndian.Uint16(b.at(i, 2)) }
func (b *buffer) ReadCharAt(i int64) rune     { return rune(binary.LittleEndian.Uint16(b.at(i, 2))) }
func (b *buffer) ReadInt32At(i int64) int32   { return int32(binary.LittleEndian.Uint32(b.at(i, 4))) }
func (b *buffer) ReadUint32At(i int64) uint32 { return binary.LittleEndian.Uint32(b.at(i, 4)) }
func (b *buffer) ReadInt64At(i int64) int64   { return int64(binary.LittleEndian.Uint64(b.at(i, 8))) }
func (b *buffer) ReadUint64At(i int64) uint64 { return binary.LittleEndian.Uint64(b.at(i, 8)) }

func (b *buffer) ReadFloat32At(i int64) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b.at(i, 4)))
}

func (b *buffer) ReadFloat64At(i int64) float64 {
	return math.Float64frombits(binary.LittleEndian.Uint64(b.at(i, 8)))
}

// Absolute writes.

func (b *buffer) WriteBoolAt(i int64, v bool) {
	var x byte
	if v {
		x = 1
	}
	b.at(i, 1)[0] = x
}

func (b *buffer) WriteInt8At(i int64, v int8)   { b.at(i, 1)[0] = byte(v) }
func (b *buffer) WriteUint8At(i int64, v uint8) { b.at(i, 1)[0] = v }

func (b *buffer) WriteInt16At(i int64, v int16) {
	binary.LittleEndian.PutUint16(b.at(i, 2), uint16(v))
}

func (b *buffer) WriteUint16At(i int64, v uint16) {
	binary.LittleEndian.PutUint16(b.at(i, 2), v)
}

// WriteCharAt stores the low 16 bits of v.
func (b *buffer) WriteCharAt(i int64, v rune) {
	binary.LittleEndian.PutUint16(b.at(i, 2), uint16(v))
}

func (b *buffer) WriteInt32At(i int64, v int32) {
	binary.LittleEndian.PutUint32(b.at(i, 4), uint32(v))
}

func (b *buffer) WriteUint32At(i int64, v uint32) {
	binary.LittleEndian.PutUint32(b.at(i, 4), v)
}

func (b *buffer) WriteInt64At(i int64, v int64) {
	binary.LittleEndian.PutUint64(b.at(i, 8), uint64(v))
}

func (b *buffer) WriteUint64At(i int64, v uint64) {
	binary.LittleEndian.PutUint64(b.at(i, 8), v)
}

func (b *buffer) WriteFloat32At(i int64, v float32) {
	binary.LittleEndian.PutUint32(b.at(i, 4), math.Float32bits(v))
}

func (b *buffer) WriteFloat64At(i int64, v float64) {
	binary.LittleEndian.PutUint64(b.at(i, 8), math.Float64bits(v))
}

// Strings and bulk access.

func (b *buffer) ReadUTF8At(i int64) (string, int64, error) {
	n := int64(b.ReadUint16At(i))
	end := b.base + int64(len(b.data))
	if i+2+n > end {
		return "", 0, ErrMalformedString
	}
	off := i + 2 - b.base
	raw := b.data[off : off+n]
	if !utf8.Valid(raw) {
		return "", 0, ErrMalformedString
	}
	return string(raw), 2 + n, nil
}

func (b *buffer) WriteUTF8At(i int64, s string) (int64, error) {
	n := int64(len(s))
	length, err := conv.Int64ToUint16(n)
	if err != nil {
		return 0, ErrStringTooLong
	}
	dst := b.at(i, 2+n)
	binary.LittleEndian.PutUint16(dst, length)
	copy(dst[2:], s)
	return 2 + n, nil
}

func (b *buffer) ReadBytesAt(i int64, p []byte) {
	copy(p, b.at(i, int64(len(p))))
}

func (b *buffer) WriteBytesAt(i int64, p []byte) {
	copy(b.at(i, int64(len(p))), p)
}

func (b *buffer) CopyTo(srcIndex int64, dst Bytes, dstIndex, n int64) {
	dst.WriteBytesAt(dstIndex, b.at(srcIndex, n))
}

func (b *buffer) Slice(from, toExc int64) []byte {
	return b.at(from, toExc-from)
}

func (b *buffer) Fill(from, toExc int64, v byte) {
	s := b.at(from, toExc-from)
	for i := range s {
		s[i] = v
	}
}

// Cursor reads.

func (b *buffer) ReadBool() bool       { v := b.ReadBoolAt(b.pos); b.pos++; return v }
func (b *buffer) ReadInt8() int8       { v := b.ReadInt8At(b.pos); b.pos++; return v }
func (b *buffer) ReadUint8() uint8     { v := b.ReadUint8At(b.pos); b.pos++; return v }
func (b *buffer) ReadInt16() int16     { v := b.ReadInt16At(b.pos); b.pos += 2; return v }
func (b *buffer) ReadUint16() uint16   { v := b.ReadUint16At(b.pos); b.pos += 2; return v }
func (b *buffer) ReadChar() rune       { v := b.ReadCharAt(b.pos); b.pos += 2; return v }
func (b *buffer) ReadInt32() int32     { v := b.ReadInt32At(b.pos); b.pos += 4; return v }
func (b *buffer) ReadUint32() uint32   { v := b.ReadUint32At(b.pos); b.pos += 4; return v }
func (b *buffer) ReadInt64() int64     { v := b.ReadInt64At(b.pos); b.pos += 8; return v }
func (b *buffer) ReadUint64() uint64   { v := b.ReadUint64At(b.pos); b.pos += 8; return v }
func (b *buffer) ReadFloat32() float32 { v := b.ReadFloat32At(b.pos); b.pos += 4; return v }
func (b *buffer) ReadFloat64() float64 { v := b.ReadFloat64At(b.pos); b.pos += 8; return v }

func (b *buffer) ReadUTF8() (string, error) {
	s, n, err := b.ReadUTF8At(b.pos)
	if err != nil {
		return "", err
	}
	b.pos += n
	return s, nil
}

// Cursor writes.

func (b *buffer) WriteBool(v bool)       { b.WriteBoolAt(b.pos, v); b.pos++ }
func (b *buffer) WriteInt8(v int8)       { b.WriteInt8At(b.pos, v); b.pos++ }
func (b *buffer) WriteUint8(v uint8)     { b.WriteUint8At(b.pos, v); b.pos++ }
func (b *buffer) WriteInt16(v int16)     { b.WriteInt16At(b.pos, v); b.pos += 2 }
func (b *buffer) WriteUint16(v uint16)   { b.WriteUint16At(b.pos, v); b.pos += 2 }
func (b *buffer) WriteChar(v rune)       { b.WriteCharAt(b.pos, v); b.pos += 2 }
func (b *buffer) WriteInt32(v int32)     { b.WriteInt32At(b.pos, v); b.pos += 4 }
func (b *buffer) WriteUint32(v uint32)   { b.WriteUint32At(b.pos, v); b.pos += 4 }
func (b *buffer) WriteInt64(v int64)     { b.WriteInt64At(b.pos, v); b.pos += 8 }
func (b *buffer) WriteUint64(v uint64)   { b.WriteUint64At(b.pos, v); b.pos += 8 }
func (b *buffer) WriteFloat32(v float32) { b.WriteFloat32At(b.pos, v); b.pos += 4 }
func (b *buffer) WriteFloat64(v float64) { b.WriteFloat64At(b.pos, v); b.pos += 8 }

func (b *buffer) WriteUTF8(s string) error {
	n, err := b.WriteUTF8At(b.pos, s)
	if err != nil {
		return err
	}
	b.pos += n
	return nil
}

var _ Bytes = (*buffer)(nil)
