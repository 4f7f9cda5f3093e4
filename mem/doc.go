// Package mem provides byte-addressable buffers over heap, native and
// memory-mapped storage behind a single read/write/cursor contract.
//
// # Addressing
//
// Every Bytes covers the address range [StartIndex, EndIndexExc). Owners
// (HeapBytes, NativeBytes, MappedBytes) start at zero. Views produced by
// Narrow keep the addresses of their parent, so an offset computed against
// the owner stays valid against any view that covers it. All multi-byte
// values are little-endian.
//
// # Bounds checking
//
// A buffer is created with a CheckPolicy. Under Strict every access is
// validated and a violation panics with a *BoundsError. Under Unchecked
// the logical range check is skipped and only Go's own slice checks apply.
// DefaultCheckPolicy is Strict unless the module is built with
//
//	go build -tags flystore_reckless
//
// # Ownership
//
// Owners are released exactly once; a second Release returns ErrReleased.
// Views borrow the owner's memory and become invalid once the owner is
// resized or released. Under Strict, access through a stale view panics.
//
//	b, err := mem.NewNative(4096, mem.WithName("scratch"))
//	if err != nil {
//		return err
//	}
//	defer b.Release()
//
//	b.WriteInt64At(0, 42)
//	v := b.ReadInt64At(0)
package mem
