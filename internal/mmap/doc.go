// Package mmap provides memory mappings for off-heap and file-backed storage.
//
// # Overview
//
// Two kinds of mapping are supported:
//
//   - MapAnon creates a read-write anonymous mapping. It backs native
//     (off-heap) buffers, which live outside the Go garbage collector.
//   - Open maps an existing file read-only for zero-copy inspection.
//
// # Usage
//
//	m, err := mmap.MapAnon(1 << 20)
//	if err != nil { ... }
//	defer m.Close()
//
//	data := m.Bytes() // page-aligned, zero-filled
//	_ = m.Advise(mmap.AccessSequential)
//
// # Platform Support
//
//   - Unix (Linux, macOS, BSD): mmap(2) with madvise(2) for access hints
//   - Windows: VirtualAlloc / MapViewOfFile (advice is a no-op)
//
// # Thread Safety
//
// Close is idempotent and protected by an atomic flag. Callers must ensure no
// goroutine touches Bytes() after Close returns.
package mmap
