package mem

import (
	"log/slog"

	"github.com/hupe1980/flystore/internal/fs"
	"github.com/hupe1980/flystore/internal/mmap"
	"github.com/hupe1980/flystore/metrics"
)

// MemoryAcquirer reserves bytes against a budget.
// It is satisfied by the store's resource controller.
type MemoryAcquirer interface {
	AcquireMemory(bytes int64) error
	ReleaseMemory(bytes int64)
}

// AccessPattern hints how a native or mapped buffer will be accessed.
type AccessPattern = mmap.AccessPattern

const (
	AccessDefault    = mmap.AccessDefault
	AccessSequential = mmap.AccessSequential
	AccessRandom     = mmap.AccessRandom
	AccessWillNeed   = mmap.AccessWillNeed
	AccessDontNeed   = mmap.AccessDontNeed
)

type options struct {
	name            string
	policy          CheckPolicy
	logger          *slog.Logger
	metrics         metrics.Collector
	acquirer        MemoryAcquirer
	expectedMaxSize int64
	fs              fs.FileSystem
	access          AccessPattern
}

// Option configures a buffer.
type Option func(*options)

// WithName sets the diagnostic name reported in errors, logs and metrics.
func WithName(name string) Option {
	return func(o *options) {
		o.name = name
	}
}

// WithCheckPolicy overrides DefaultCheckPolicy.
func WithCheckPolicy(p CheckPolicy) Option {
	return func(o *options) {
		o.policy = p
	}
}

// WithLogger sets the logger used for growth warnings and release failures.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithMetrics sets the collector receiving allocation and growth events.
func WithMetrics(c metrics.Collector) Option {
	return func(o *options) {
		o.metrics = metrics.OrNoop(c)
	}
}

// WithMemoryAcquirer charges native allocations against a memory budget.
func WithMemoryAcquirer(a MemoryAcquirer) Option {
	return func(o *options) {
		o.acquirer = a
	}
}

// WithExpectedMaxSize sets the size above which a resizable buffer warns
// when it grows. Zero disables the warning.
func WithExpectedMaxSize(n int64) Option {
	return func(o *options) {
		o.expectedMaxSize = n
	}
}

// WithFileSystem sets the file system used to open mapped files.
func WithFileSystem(fsys fs.FileSystem) Option {
	return func(o *options) {
		if fsys != nil {
			o.fs = fsys
		}
	}
}

// WithAccessPattern applies an access hint to native and mapped buffers
// after every (re)mapping.
func WithAccessPattern(p AccessPattern) Option {
	return func(o *options) {
		o.access = p
	}
}

func applyOptions(opts []Option) options {
	o := options{
		policy:  DefaultCheckPolicy,
		logger:  slog.New(slog.DiscardHandler),
		metrics: metrics.Noop{},
		fs:      fs.Default,
	}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}
