package flystore

import (
	"log/slog"

	"github.com/hupe1980/flystore/mem"
	"github.com/hupe1980/flystore/parallel"
	"github.com/hupe1980/flystore/snapshot"
)

type options struct {
	policy           mem.CheckPolicy
	logger           *Logger
	metricsCollector MetricsCollector
	cacheLine        int64
	batchSize        int64
	memoryLimit      int64
	maxWorkers       int64
	ioLimit          int64
	expectedMaxSize  int64
	compression      snapshot.Compression
}

// Option configures a Store.
type Option func(*options)

// WithCheckPolicy sets the bounds policy of every buffer the store creates.
// Defaults to mem.DefaultCheckPolicy.
func WithCheckPolicy(p mem.CheckPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger configures structured logging.
// Pass nil to disable logging.
//
// Example with JSON logging:
//
//	store := flystore.New(flystore.WithLogger(flystore.NewJSONLogger(slog.LevelInfo)))
func WithLogger(logger *Logger) Option {
	return func(o *options) {
		if logger == nil {
			logger = NoopLogger()
		}
		o.logger = logger
	}
}

// WithLogLevel creates a text logger with the specified level and sets it.
// Convenience wrapper for WithLogger(NewTextLogger(level)).
func WithLogLevel(level slog.Level) Option {
	return func(o *options) {
		o.logger = NewTextLogger(level)
	}
}

// WithMetricsCollector configures a metrics collector.
// Pass nil to disable metrics collection.
//
// Example with BasicMetricsCollector:
//
//	collector := &flystore.BasicMetricsCollector{}
//	store := flystore.New(flystore.WithMetricsCollector(collector))
//	// ... use store ...
//	stats := collector.Stats()
//	fmt.Printf("growths: %d, over hint: %d\n", stats.GrowthCount, stats.GrowthOverHint)
func WithMetricsCollector(mc MetricsCollector) Option {
	return func(o *options) {
		if mc == nil {
			mc = NoopMetricsCollector{}
		}
		o.metricsCollector = mc
	}
}

// WithCacheLineSize sets the byte span below which update and sort stop
// forking.
func WithCacheLineSize(n int64) Option {
	return func(o *options) {
		o.cacheLine = n
	}
}

// WithBatchSize sets the number of records a query leaf processes.
func WithBatchSize(n int64) Option {
	return func(o *options) {
		o.batchSize = n
	}
}

// WithMemoryLimit caps the native memory the store may hold. Zero tracks
// usage without a limit.
func WithMemoryLimit(bytes int64) Option {
	return func(o *options) {
		o.memoryLimit = bytes
	}
}

// WithMaxWorkers bounds the goroutines parallel operators fork. Defaults to
// GOMAXPROCS.
func WithMaxWorkers(n int64) Option {
	return func(o *options) {
		o.maxWorkers = n
	}
}

// WithIOLimit paces snapshot export and import to bytes per second.
func WithIOLimit(bytesPerSec int64) Option {
	return func(o *options) {
		o.ioLimit = bytesPerSec
	}
}

// WithExpectedMaxSize sets the size above which growable buffers log a
// warning when they grow.
func WithExpectedMaxSize(n int64) Option {
	return func(o *options) {
		o.expectedMaxSize = n
	}
}

// WithSnapshotCompression selects the compression Export uses. Defaults to
// zstd.
func WithSnapshotCompression(c snapshot.Compression) Option {
	return func(o *options) {
		o.compression = c
	}
}

func applyOptions(optFns []Option) options {
	o := options{
		policy:           mem.DefaultCheckPolicy,
		logger:           NoopLogger(),
		metricsCollector: NoopMetricsCollector{},
		cacheLine:        mem.CacheLineSize,
		batchSize:        parallel.DefaultBatchSize,
		compression:      snapshot.CompressionZstd,
	}
	for _, fn := range optFns {
		if fn != nil {
			fn(&o)
		}
	}
	return o
}
