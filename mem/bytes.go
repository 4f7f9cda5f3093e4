package mem

// Reader is the absolute-address read side of a buffer.
type Reader interface {
	ReadBoolAt(i int64) bool
	ReadInt8At(i int64) int8
	ReadUint8At(i int64) uint8
	ReadInt16At(i int64) int16
	ReadUint16At(i int64) uint16
	ReadCharAt(i int64) rune
	ReadInt32At(i int64) int32
	ReadUint32At(i int64) uint32
	ReadInt64At(i int64) int64
	ReadUint64At(i int64) uint64
	ReadFloat32At(i int64) float32
	ReadFloat64At(i int64) float64

	// ReadUTF8At decodes a u16 length-prefixed string at i and returns it
	// with the number of bytes consumed.
	ReadUTF8At(i int64) (string, int64, error)
	// ReadBytesAt copies len(p) bytes starting at i into p.
	ReadBytesAt(i int64, p []byte)
	// CopyTo copies n bytes starting at srcIndex into dst at dstIndex.
	CopyTo(srcIndex int64, dst Bytes, dstIndex, n int64)
	// Slice returns the backing bytes of [from, toExc) without copying,
	// except on a read-only adapter, which returns a copy. The slice is
	// invalid after the owner is resized or released.
	Slice(from, toExc int64) []byte
}

// Writer is the absolute-address write side of a buffer.
type Writer interface {
	WriteBoolAt(i int64, v bool)
	WriteInt8At(i int64, v int8)
	WriteUint8At(i int64, v uint8)
	WriteInt16At(i int64, v int16)
	WriteUint16At(i int64, v uint16)
	WriteCharAt(i int64, v rune)
	WriteInt32At(i int64, v int32)
	WriteUint32At(i int64, v uint32)
	WriteInt64At(i int64, v int64)
	WriteUint64At(i int64, v uint64)
	WriteFloat32At(i int64, v float32)
	WriteFloat64At(i int64, v float64)

	// WriteUTF8At writes s with a u16 length prefix and returns the number
	// of bytes written.
	WriteUTF8At(i int64, s string) (int64, error)
	// WriteBytesAt copies p into the buffer starting at i.
	WriteBytesAt(i int64, p []byte)
	// Fill sets every byte of [from, toExc) to v.
	Fill(from, toExc int64, v byte)
}

// CursorReader reads at Position and advances it by the value width.
type CursorReader interface {
	ReadBool() bool
	ReadInt8() int8
	ReadUint8() uint8
	ReadInt16() int16
	ReadUint16() uint16
	ReadChar() rune
	ReadInt32() int32
	ReadUint32() uint32
	ReadInt64() int64
	ReadUint64() uint64
	ReadFloat32() float32
	ReadFloat64() float64
	ReadUTF8() (string, error)
}

// CursorWriter writes at Position and advances it by the value width.
type CursorWriter interface {
	WriteBool(v bool)
	WriteInt8(v int8)
	WriteUint8(v uint8)
	WriteInt16(v int16)
	WriteUint16(v uint16)
	WriteChar(v rune)
	WriteInt32(v int32)
	WriteUint32(v uint32)
	WriteInt64(v int64)
	WriteUint64(v uint64)
	WriteFloat32(v float32)
	WriteFloat64(v float64)
	WriteUTF8(s string) error
}

// Bytes is a byte-addressable buffer with a position cursor.
//
// A Bytes is not safe for concurrent use through a single cursor. Distinct
// views may be read and written concurrently over disjoint ranges.
type Bytes interface {
	Reader
	Writer
	CursorReader
	CursorWriter

	// Name returns the diagnostic name.
	Name() string
	// Policy returns the bounds check policy.
	Policy() CheckPolicy
	// StartIndex returns the first valid address.
	StartIndex() int64
	// EndIndexExc returns the first address past the end.
	EndIndexExc() int64
	// Len returns EndIndexExc() - StartIndex().
	Len() int64

	// Position returns the cursor address.
	Position() int64
	// SetPosition moves the cursor; it must stay within [StartIndex, EndIndexExc].
	SetPosition(p int64)
	// Skip moves the cursor by n bytes.
	Skip(n int64)

	// Narrow returns a borrowed view over [from, toExc) that keeps the
	// parent's addresses and has its own cursor, starting at from.
	Narrow(from, toExc int64) Bytes
	// Resize changes the length of an owner, preserving [0, min(old, new)).
	Resize(n int64) error
	// Release frees the memory of an owner. A second call returns ErrReleased.
	Release() error
	// Released reports whether the owner has been released.
	Released() bool
}
