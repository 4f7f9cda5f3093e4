package mem

import "unsafe"

// CacheLineSize is the alignment of native and heap allocations.
const CacheLineSize = 64

// AlignAddress rounds addr up to the next multiple of CacheLineSize.
func AlignAddress(addr uintptr) uintptr {
	return (addr + CacheLineSize - 1) &^ (CacheLineSize - 1)
}

// alignedSlice returns a cache-line aligned window of size bytes into buf,
// which must hold at least size+CacheLineSize-1 bytes.
func alignedSlice(buf []byte, size int) []byte {
	if size == 0 {
		return buf[:0:0]
	}
	addr := uintptr(unsafe.Pointer(&buf[0])) //nolint:gosec // unsafe is required for memory alignment
	offset := int(AlignAddress(addr) - addr)
	return buf[offset : offset+size : offset+size]
}

// allocAligned allocates a zeroed, cache-line aligned heap slice.
func allocAligned(size int) []byte {
	if size <= 0 {
		return []byte{}
	}
	return alignedSlice(make([]byte, size+CacheLineSize-1), size)
}

// IsAligned reports whether the first byte of b sits on a cache line boundary.
func IsAligned(b []byte) bool {
	if len(b) == 0 {
		return true
	}
	addr := uintptr(unsafe.Pointer(&b[0])) //nolint:gosec // unsafe is required for memory alignment
	return addr%CacheLineSize == 0
}
