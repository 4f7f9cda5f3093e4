package region

import (
	"log/slog"

	"github.com/hupe1980/flystore/mem"
	"github.com/hupe1980/flystore/metrics"
)

type options struct {
	data            mem.Bytes
	index           mem.Bytes
	policy          mem.CheckPolicy
	initialCapacity int64
	expectedMaxSize int64
	logger          *slog.Logger
	metrics         metrics.Collector
}

// Option configures a MemoryRegion.
type Option func(*options)

// WithData sets the owner that stores blocks. It grows on demand.
func WithData(b mem.Bytes) Option {
	return func(o *options) {
		o.data = b
	}
}

// WithIndex sets the owner that stores the index records.
func WithIndex(b mem.Bytes) Option {
	return func(o *options) {
		o.index = b
	}
}

// WithCheckPolicy sets the policy of the default stores and of typed
// accessors. Injected stores keep their own policy for raw access.
func WithCheckPolicy(p mem.CheckPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithInitialCapacity sets the initial size of the default data store.
func WithInitialCapacity(n int64) Option {
	return func(o *options) {
		if n > 0 {
			o.initialCapacity = n
		}
	}
}

// WithExpectedMaxSize makes the default data store warn when it grows past n bytes.
func WithExpectedMaxSize(n int64) Option {
	return func(o *options) {
		o.expectedMaxSize = n
	}
}

// WithLogger sets the logger passed to the default data store.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the collector receiving block allocations and frees.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.metrics = metrics.OrNoop(c)
	}
}

// DefaultInitialCapacity is the initial size of the data store in bytes.
const DefaultInitialCapacity = 4096

func applyOptions(opts []Option) options {
	o := options{
		policy:          mem.DefaultCheckPolicy,
		initialCapacity: DefaultInitialCapacity,
		logger:          slog.New(slog.DiscardHandler),
		metrics:         metrics.Noop{},
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
