// Package metrics defines the observability hooks of the storage engine and
// ships two collectors: an in-memory BasicCollector and a Prometheus adapter.
package metrics

import (
	"sync/atomic"
	"time"
)

// Collector receives storage events.
// Implement this interface to integrate with monitoring systems.
//
// Implementations must be safe for concurrent use: parallel operators report
// from worker goroutines.
type Collector interface {
	// RecordGrowth is called after a buffer grew from oldSize to newSize bytes.
	// exceededHint is true when newSize is above the configured expected maximum.
	RecordGrowth(name string, oldSize, newSize int64, exceededHint bool)

	// RecordAlloc is called when a backing store of the given kind
	// ("heap", "native", "mapped", "region") acquires bytes.
	RecordAlloc(kind string, bytes int64)

	// RecordRelease is called when a backing store returns bytes.
	RecordRelease(kind string, bytes int64)

	// RecordTask is called when a parallel operator completes.
	// leaves is the number of leaf partitions executed, forked the number of
	// partitions that ran on a separate goroutine.
	RecordTask(op string, leaves, forked int64, duration time.Duration, err error)
}

// Noop is a no-op implementation of Collector.
type Noop struct{}

func (Noop) RecordGrowth(string, int64, int64, bool)               {}
func (Noop) RecordAlloc(string, int64)                             {}
func (Noop) RecordRelease(string, int64)                           {}
func (Noop) RecordTask(string, int64, int64, time.Duration, error) {}

// OrNoop returns c, or Noop when c is nil.
func OrNoop(c Collector) Collector {
	if c == nil {
		return Noop{}
	}
	return c
}

// BasicCollector provides simple in-memory metrics collection.
// Useful for debugging and tests without external dependencies.
type BasicCollector struct {
	GrowthCount    atomic.Int64
	GrowthOverHint atomic.Int64
	GrowthBytes    atomic.Int64
	AllocCount     atomic.Int64
	AllocBytes     atomic.Int64
	ReleaseCount   atomic.Int64
	ReleaseBytes   atomic.Int64
	TaskCount      atomic.Int64
	TaskErrors     atomic.Int64
	TaskLeaves     atomic.Int64
	TaskForked     atomic.Int64
	TaskTotalNanos atomic.Int64
}

// RecordGrowth implements Collector.
func (b *BasicCollector) RecordGrowth(_ string, oldSize, newSize int64, exceededHint bool) {
	b.GrowthCount.Add(1)
	b.GrowthBytes.Add(newSize - oldSize)
	if exceededHint {
		b.GrowthOverHint.Add(1)
	}
}

// RecordAlloc implements Collector.
func (b *BasicCollector) RecordAlloc(_ string, bytes int64) {
	b.AllocCount.Add(1)
	b.AllocBytes.Add(bytes)
}

// RecordRelease implements Collector.
func (b *BasicCollector) RecordRelease(_ string, bytes int64) {
	b.ReleaseCount.Add(1)
	b.ReleaseBytes.Add(bytes)
}

// RecordTask implements Collector.
func (b *BasicCollector) RecordTask(_ string, leaves, forked int64, duration time.Duration, err error) {
	b.TaskCount.Add(1)
	b.TaskLeaves.Add(leaves)
	b.TaskForked.Add(forked)
	b.TaskTotalNanos.Add(duration.Nanoseconds())
	if err != nil {
		b.TaskErrors.Add(1)
	}
}

// Stats returns a snapshot of current metrics.
func (b *BasicCollector) Stats() BasicStats {
	return BasicStats{
		GrowthCount:    b.GrowthCount.Load(),
		GrowthOverHint: b.GrowthOverHint.Load(),
		GrowthBytes:    b.GrowthBytes.Load(),
		AllocCount:     b.AllocCount.Load(),
		AllocBytes:     b.AllocBytes.Load(),
		ReleaseCount:   b.ReleaseCount.Load(),
		ReleaseBytes:   b.ReleaseBytes.Load(),
		TaskCount:      b.TaskCount.Load(),
		TaskErrors:     b.TaskErrors.Load(),
		TaskLeaves:     b.TaskLeaves.Load(),
		TaskForked:     b.TaskForked.Load(),
		TaskAvgNanos:   b.avgTaskNanos(),
	}
}

func (b *BasicCollector) avgTaskNanos() int64 {
	count := b.TaskCount.Load()
	if count == 0 {
		return 0
	}
	return b.TaskTotalNanos.Load() / count
}

// BasicStats is a snapshot of BasicCollector state.
type BasicStats struct {
	GrowthCount    int64
	GrowthOverHint int64
	GrowthBytes    int64
	AllocCount     int64
	AllocBytes     int64
	ReleaseCount   int64
	ReleaseBytes   int64
	TaskCount      int64
	TaskErrors     int64
	TaskLeaves     int64
	TaskForked     int64
	TaskAvgNanos   int64
}
