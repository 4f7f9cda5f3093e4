// Package flyweight interprets a mem.Bytes as a growable array of
// fixed-width records.
//
// # Layout
//
// A record store starts with a header followed by RecordCount records of
// RecordWidth bytes each:
//
//	SingleHeader: u64 recordCount
//	DualHeader:   u64 recordCount | u64 maxByteOffsetExclusive
//
// The record count lives in the bytes, so a store re-attached to a mapped
// file sees the records written before.
//
// # Cursors
//
// A FlyWeight is a cursor over one selected record. Reads and writes take an
// offset relative to that record. A FlyWeight must not be shared between
// goroutines; Clone returns an independent cursor over the same storage, and
// clones working on disjoint index ranges may run concurrently.
//
//	fw, _ := flyweight.NewHeap(16, 1024)
//	first, _ := fw.AllocateNewRecords(3)
//	fw.Select(first)
//	fw.WriteInt64(0, 42)
//	for i := range fw.Records() {
//		fmt.Println(i, fw.ReadInt64(0))
//	}
package flyweight
