package parallel

import (
	"github.com/hupe1980/flystore/mem"
	"github.com/hupe1980/flystore/metrics"
)

const (
	// DefaultBatchSize is the number of records a query leaf processes.
	DefaultBatchSize = 100_000
)

type options struct {
	cacheLine int64
	batchSize int64
	metrics   metrics.Collector
}

// Option configures an operator.
type Option func(*options)

// WithCacheLineSize sets the byte span at or below which update and sort
// stop forking. Defaults to mem.CacheLineSize.
func WithCacheLineSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.cacheLine = n
		}
	}
}

// WithBatchSize sets the number of records at or below which a query runs
// its leaf function. Defaults to DefaultBatchSize.
func WithBatchSize(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.batchSize = n
		}
	}
}

// WithMetrics sets the collector receiving one RecordTask per operator call.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.metrics = metrics.OrNoop(c)
	}
}

func applyOptions(opts []Option) options {
	o := options{
		cacheLine: mem.CacheLineSize,
		batchSize: DefaultBatchSize,
		metrics:   metrics.Noop{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
