// Package region implements MemoryRegion, a variable-width block allocator
// with per-block retain counts, and Strings, a UTF-8 string pool on top of it.
//
// A MemoryRegion keeps two stores: a data area holding the blocks and an
// index of fixed-width records describing them.
//
//	data header:  u64 nextDataOffset | u32 nextIndexSlot
//	index record: u64 dataOffset | u32 byteCount | u8 retainCount
//
// A Handle is an index slot, not an address. Slot 0 is never allocated and
// serves as the null handle. A slot whose dataOffset is zero is invalid.
//
// Freed blocks are not reclaimed: their data stays in place and their index
// slot is not reused. Stats reports how many bytes are held this way.
//
// A MemoryRegion is not safe for concurrent use.
package region
