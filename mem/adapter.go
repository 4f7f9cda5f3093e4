package mem

import "bytes"

// InputAdapter exposes a Bytes read-only. Every write panics with
// ErrReadOnly; Resize returns ErrReadOnly. Slice copies. Release returns ErrReadOnly
// unless the adapter owns its memory (see OpenMappedReadOnly).
type InputAdapter struct {
	Bytes
	owner Bytes
}

// ReadOnly returns a read-only adapter over b with its own cursor.
func ReadOnly(b Bytes) *InputAdapter {
	return &InputAdapter{Bytes: b.Narrow(b.StartIndex(), b.EndIndexExc())}
}

func (a *InputAdapter) Narrow(from, toExc int64) Bytes {
	return &InputAdapter{Bytes: a.Bytes.Narrow(from, toExc)}
}

// Slice returns a copy of [from, toExc) so callers cannot write through it.
func (a *InputAdapter) Slice(from, toExc int64) []byte {
	return bytes.Clone(a.Bytes.Slice(from, toExc))
}

func (a *InputAdapter) Resize(int64) error { return ErrReadOnly }

func (a *InputAdapter) Release() error {
	if a.owner == nil {
		return ErrReadOnly
	}
	return a.owner.Release()
}

func (a *InputAdapter) WriteBoolAt(int64, bool)       { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt8At(int64, int8)       { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint8At(int64, uint8)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt16At(int64, int16)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint16At(int64, uint16)   { panic(ErrReadOnly) }
func (a *InputAdapter) WriteCharAt(int64, rune)       { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt32At(int64, int32)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint32At(int64, uint32)   { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt64At(int64, int64)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint64At(int64, uint64)   { panic(ErrReadOnly) }
func (a *InputAdapter) WriteFloat32At(int64, float32) { panic(ErrReadOnly) }
func (a *InputAdapter) WriteFloat64At(int64, float64) { panic(ErrReadOnly) }
func (a *InputAdapter) WriteBytesAt(int64, []byte)    { panic(ErrReadOnly) }
func (a *InputAdapter) Fill(int64, int64, byte)       { panic(ErrReadOnly) }

func (a *InputAdapter) WriteUTF8At(int64, string) (int64, error) { panic(ErrReadOnly) }

func (a *InputAdapter) WriteBool(bool)       { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt8(int8)       { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint8(uint8)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt16(int16)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint16(uint16)   { panic(ErrReadOnly) }
func (a *InputAdapter) WriteChar(rune)       { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt32(int32)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint32(uint32)   { panic(ErrReadOnly) }
func (a *InputAdapter) WriteInt64(int64)     { panic(ErrReadOnly) }
func (a *InputAdapter) WriteUint64(uint64)   { panic(ErrReadOnly) }
func (a *InputAdapter) WriteFloat32(float32) { panic(ErrReadOnly) }
func (a *InputAdapter) WriteFloat64(float64) { panic(ErrReadOnly) }

func (a *InputAdapter) WriteUTF8(string) error { panic(ErrReadOnly) }

var _ Bytes = (*InputAdapter)(nil)
