package flyweight

import (
	"github.com/hupe1980/flystore/mem"
)

// at validates a record-relative access and returns its address.
func (fw *FlyWeight) at(off, width int64) int64 {
	if fw.strict {
		if fw.selected < 0 {
			panic(ErrNoSelection)
		}
		if off < 0 || off+width > fw.s.width {
			panic(&mem.BoundsError{
				Name: "record", Index: off, Width: width,
				Start: 0, End: fw.s.width, Underflow: off < 0,
			})
		}
	}
	return fw.offset + off
}

func (fw *FlyWeight) ReadBool(off int64) bool       { return fw.s.bytes.ReadBoolAt(fw.at(off, 1)) }
func (fw *FlyWeight) ReadInt8(off int64) int8       { return fw.s.bytes.ReadInt8At(fw.at(off, 1)) }
func (fw *FlyWeight) ReadUint8(off int64) uint8     { return fw.s.bytes.ReadUint8At(fw.at(off, 1)) }
func (fw *FlyWeight) ReadInt16(off int64) int16     { return fw.s.bytes.ReadInt16At(fw.at(off, 2)) }
func (fw *FlyWeight) ReadUint16(off int64) uint16   { return fw.s.bytes.ReadUint16At(fw.at(off, 2)) }
func (fw *FlyWeight) ReadChar(off int64) rune       { return fw.s.bytes.ReadCharAt(fw.at(off, 2)) }
func (fw *FlyWeight) ReadInt32(off int64) int32     { return fw.s.bytes.ReadInt32At(fw.at(off, 4)) }
func (fw *FlyWeight) ReadUint32(off int64) uint32   { return fw.s.bytes.ReadUint32At(fw.at(off, 4)) }
func (fw *FlyWeight) ReadInt64(off int64) int64     { return fw.s.bytes.ReadInt64At(fw.at(off, 8)) }
func (fw *FlyWeight) ReadUint64(off int64) uint64   { return fw.s.bytes.ReadUint64At(fw.at(off, 8)) }
func (fw *FlyWeight) ReadFloat32(off int64) float32 { return fw.s.bytes.ReadFloat32At(fw.at(off, 4)) }
func (fw *FlyWeight) ReadFloat64(off int64) float64 { return fw.s.bytes.ReadFloat64At(fw.at(off, 8)) }

func (fw *FlyWeight) WriteBool(off int64, v bool)       { fw.s.bytes.WriteBoolAt(fw.at(off, 1), v) }
func (fw *FlyWeight) WriteInt8(off int64, v int8)       { fw.s.bytes.WriteInt8At(fw.at(off, 1), v) }
func (fw *FlyWeight) WriteUint8(off int64, v uint8)     { fw.s.bytes.WriteUint8At(fw.at(off, 1), v) }
func (fw *FlyWeight) WriteInt16(off int64, v int16)     { fw.s.bytes.WriteInt16At(fw.at(off, 2), v) }
func (fw *FlyWeight) WriteUint16(off int64, v uint16)   { fw.s.bytes.WriteUint16At(fw.at(off, 2), v) }
func (fw *FlyWeight) WriteChar(off int64, v rune)       { fw.s.bytes.WriteCharAt(fw.at(off, 2), v) }
func (fw *FlyWeight) WriteInt32(off int64, v int32)     { fw.s.bytes.WriteInt32At(fw.at(off, 4), v) }
func (fw *FlyWeight) WriteUint32(off int64, v uint32)   { fw.s.bytes.WriteUint32At(fw.at(off, 4), v) }
func (fw *FlyWeight) WriteInt64(off int64, v int64)     { fw.s.bytes.WriteInt64At(fw.at(off, 8), v) }
func (fw *FlyWeight) WriteUint64(off int64, v uint64)   { fw.s.bytes.WriteUint64At(fw.at(off, 8), v) }
func (fw *FlyWeight) WriteFloat32(off int64, v float32) { fw.s.bytes.WriteFloat32At(fw.at(off, 4), v) }
func (fw *FlyWeight) WriteFloat64(off int64, v float64) { fw.s.bytes.WriteFloat64At(fw.at(off, 8), v) }

// ReadBytes copies len(p) bytes of the selected record starting at off.
func (fw *FlyWeight) ReadBytes(off int64, p []byte) {
	fw.s.bytes.ReadBytesAt(fw.at(off, int64(len(p))), p)
}

// WriteBytes copies p into the selected record starting at off.
func (fw *FlyWeight) WriteBytes(off int64, p []byte) {
	fw.s.bytes.WriteBytesAt(fw.at(off, int64(len(p))), p)
}

// ReadUTF8 decodes a length-prefixed string stored in the selected record.
func (fw *FlyWeight) ReadUTF8(off int64) (string, error) {
	s, n, err := fw.s.bytes.ReadUTF8At(fw.at(off, 2))
	if err != nil {
		return "", err
	}
	if fw.strict && off+n > fw.s.width {
		return "", mem.ErrMalformedString
	}
	return s, nil
}

// WriteUTF8 stores s with a u16 length prefix in the selected record.
func (fw *FlyWeight) WriteUTF8(off int64, s string) error {
	if len(s) > 0xFFFF {
		return mem.ErrStringTooLong
	}
	_, err := fw.s.bytes.WriteUTF8At(fw.at(off, 2+int64(len(s))), s)
	return err
}

// Random access by record index, leaving the cursor in place. These are
// meant for comparators and queries that look at two records at once.

func (fw *FlyWeight) ReadInt32At(i, off int64) int32 {
	return fw.s.bytes.ReadInt32At(fw.fieldAt(i, off, 4))
}

func (fw *FlyWeight) ReadInt64At(i, off int64) int64 {
	return fw.s.bytes.ReadInt64At(fw.fieldAt(i, off, 8))
}

func (fw *FlyWeight) ReadUint64At(i, off int64) uint64 {
	return fw.s.bytes.ReadUint64At(fw.fieldAt(i, off, 8))
}

func (fw *FlyWeight) ReadFloat64At(i, off int64) float64 {
	return fw.s.bytes.ReadFloat64At(fw.fieldAt(i, off, 8))
}

func (fw *FlyWeight) ReadUTF8At(i, off int64) (string, error) {
	s, _, err := fw.s.bytes.ReadUTF8At(fw.fieldAt(i, off, 2))
	return s, err
}

func (fw *FlyWeight) fieldAt(i, off, width int64) int64 {
	if fw.strict {
		fw.checkIndex(i)
		if off < 0 || off+width > fw.s.width {
			panic(&mem.BoundsError{
				Name: "record", Index: off, Width: width,
				Start: 0, End: fw.s.width, Underflow: off < 0,
			})
		}
	}
	return fw.base + i*fw.s.width + off
}
