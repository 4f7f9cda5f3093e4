package region

import "github.com/hupe1980/flystore/mem"

func (r *MemoryRegion) ReadBoolAt(h Handle, off int64) bool {
	return r.data.ReadBoolAt(r.address(h, off, 1))
}

func (r *MemoryRegion) ReadInt8At(h Handle, off int64) int8 {
	return r.data.ReadInt8At(r.address(h, off, 1))
}

func (r *MemoryRegion) ReadUint8At(h Handle, off int64) uint8 {
	return r.data.ReadUint8At(r.address(h, off, 1))
}

func (r *MemoryRegion) ReadInt16At(h Handle, off int64) int16 {
	return r.data.ReadInt16At(r.address(h, off, 2))
}

func (r *MemoryRegion) ReadUint16At(h Handle, off int64) uint16 {
	return r.data.ReadUint16At(r.address(h, off, 2))
}

func (r *MemoryRegion) ReadCharAt(h Handle, off int64) rune {
	return r.data.ReadCharAt(r.address(h, off, 2))
}

func (r *MemoryRegion) ReadInt32At(h Handle, off int64) int32 {
	return r.data.ReadInt32At(r.address(h, off, 4))
}

func (r *MemoryRegion) ReadUint32At(h Handle, off int64) uint32 {
	return r.data.ReadUint32At(r.address(h, off, 4))
}

func (r *MemoryRegion) ReadInt64At(h Handle, off int64) int64 {
	return r.data.ReadInt64At(r.address(h, off, 8))
}

func (r *MemoryRegion) ReadUint64At(h Handle, off int64) uint64 {
	return r.data.ReadUint64At(r.address(h, off, 8))
}

func (r *MemoryRegion) ReadFloat32At(h Handle, off int64) float32 {
	return r.data.ReadFloat32At(r.address(h, off, 4))
}

func (r *MemoryRegion) ReadFloat64At(h Handle, off int64) float64 {
	return r.data.ReadFloat64At(r.address(h, off, 8))
}

func (r *MemoryRegion) WriteBoolAt(h Handle, off int64, v bool) {
	r.data.WriteBoolAt(r.address(h, off, 1), v)
}

func (r *MemoryRegion) WriteInt8At(h Handle, off int64, v int8) {
	r.data.WriteInt8At(r.address(h, off, 1), v)
}

func (r *MemoryRegion) WriteUint8At(h Handle, off int64, v uint8) {
	r.data.WriteUint8At(r.address(h, off, 1), v)
}

func (r *MemoryRegion) WriteInt16At(h Handle, off int64, v int16) {
	r.data.WriteInt16At(r.address(h, off, 2), v)
}

func (r *MemoryRegion) WriteUint16At(h Handle, off int64, v uint16) {
	r.data.WriteUint16At(r.address(h, off, 2), v)
}

func (r *MemoryRegion) WriteCharAt(h Handle, off int64, v rune) {
	r.data.WriteCharAt(r.address(h, off, 2), v)
}

func (r *MemoryRegion) WriteInt32At(h Handle, off int64, v int32) {
	r.data.WriteInt32At(r.address(h, off, 4), v)
}

func (r *MemoryRegion) WriteUint32At(h Handle, off int64, v uint32) {
	r.data.WriteUint32At(r.address(h, off, 4), v)
}

func (r *MemoryRegion) WriteInt64At(h Handle, off int64, v int64) {
	r.data.WriteInt64At(r.address(h, off, 8), v)
}

func (r *MemoryRegion) WriteUint64At(h Handle, off int64, v uint64) {
	r.data.WriteUint64At(r.address(h, off, 8), v)
}

func (r *MemoryRegion) WriteFloat32At(h Handle, off int64, v float32) {
	r.data.WriteFloat32At(r.address(h, off, 4), v)
}

func (r *MemoryRegion) WriteFloat64At(h Handle, off int64, v float64) {
	r.data.WriteFloat64At(r.address(h, off, 8), v)
}

// ReadBytesAt copies len(p) bytes of block h starting at off into p.
func (r *MemoryRegion) ReadBytesAt(h Handle, off int64, p []byte) {
	r.data.ReadBytesAt(r.address(h, off, int64(len(p))), p)
}

// WriteBytesAt copies p into block h starting at off.
func (r *MemoryRegion) WriteBytesAt(h Handle, off int64, p []byte) {
	r.data.WriteBytesAt(r.address(h, off, int64(len(p))), p)
}

// ReadUTF8At decodes a length-prefixed string stored in block h at off.
// The string must lie within the block.
func (r *MemoryRegion) ReadUTF8At(h Handle, off int64) (string, error) {
	addr := r.address(h, off, 2)
	n := int64(r.data.ReadUint16At(addr))
	// The payload must fit the block too.
	addr = r.address(h, off, 2+n)
	s, _, err := r.data.ReadUTF8At(addr)
	return s, err
}

// WriteUTF8At stores s with a u16 length prefix in block h at off and
// returns the number of bytes written.
func (r *MemoryRegion) WriteUTF8At(h Handle, off int64, s string) (int64, error) {
	if len(s) > 0xFFFF {
		return 0, mem.ErrStringTooLong
	}
	return r.data.WriteUTF8At(r.address(h, off, 2+int64(len(s))), s)
}
