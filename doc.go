// Package flystore is a low-level record storage engine.
//
// It layers three abstractions over raw memory:
//
//   - mem.Bytes: one byte-addressable contract over heap slices, off-heap
//     native memory and memory-mapped files, with a strict or unchecked
//     bounds policy and a resize protocol.
//   - flyweight.FlyWeight: an array of fixed-width records inside a Bytes,
//     read and written through a movable cursor.
//   - region.MemoryRegion: a block allocator with retain counts and stable
//     handles.
//
// The parallel package runs update, query and sort operators over record
// ranges on a bounded fork-join pool.
//
// # Quick Start
//
//	store := flystore.New(flystore.WithMaxWorkers(8))
//	defer store.Close()
//
//	fw, _ := store.NewFlyWeight("prices", 16, 1_000)
//	first, _ := fw.AllocateNewRecords(3)
//	for i := first; i < first+3; i++ {
//	    fw.Select(i)
//	    fw.WriteInt64(0, 100-i)
//	}
//	_ = store.Sort(ctx, fw, flyweight.CompareInt64(0))
//
// # Bounds Checking
//
// Every store created through a Store shares one mem.CheckPolicy. Strict
// (the default) panics with *mem.BoundsError on any access outside a
// buffer. Building with -tags flystore_reckless makes Unchecked the default.
//
// # Persistence
//
// Mapped buffers persist records in place. The snapshot package exports a
// buffer or record store to a compressed, checksummed frame:
//
//	f, _ := os.Create("prices.snap")
//	_, _ = store.Export(ctx, f, fw)
package flystore
