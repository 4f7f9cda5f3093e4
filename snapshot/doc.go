// Package snapshot exports a mem.Bytes or a flyweight store to a single
// compressed, checksummed frame and restores it.
//
// Frame layout, little-endian:
//
//	"FLYS" | u8 version | u8 compression | u16 manifestLen | manifest (JSON)
//	u64 rawLen | u64 xxhash64(raw) | u64 payloadLen | payload
//
// The payload is the raw byte range, compressed with zstd or LZ4 or stored
// as is. A codec that does not shrink the data is replaced by
// CompressionNone.
package snapshot
