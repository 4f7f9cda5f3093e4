package flystore

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/forkjoin"
	"github.com/hupe1980/flystore/internal/resource"
	"github.com/hupe1980/flystore/mem"
	"github.com/hupe1980/flystore/parallel"
	"github.com/hupe1980/flystore/region"
	"github.com/hupe1980/flystore/snapshot"
)

// Store creates buffers, record stores and regions that share one bounds
// policy, logger, metrics collector and resource budget, and runs parallel
// operators on its worker pool.
//
// The factory methods are safe for concurrent use. The objects they return
// follow their own package's concurrency rules.
type Store struct {
	opts options
	rc   *resource.Controller
	pool *forkjoin.Pool

	mu     sync.Mutex
	owned  []mem.Bytes
	closed bool
}

// New creates a Store.
func New(optFns ...Option) *Store {
	o := applyOptions(optFns)
	rc := resource.NewController(resource.Config{
		MemoryLimitBytes:   o.memoryLimit,
		MaxWorkers:         o.maxWorkers,
		IOLimitBytesPerSec: o.ioLimit,
	})
	return &Store{
		opts: o,
		rc:   rc,
		pool: forkjoin.New(rc),
	}
}

// Policy returns the bounds policy applied to every buffer.
func (s *Store) Policy() mem.CheckPolicy { return s.opts.policy }

// Logger returns the store logger.
func (s *Store) Logger() *Logger { return s.opts.logger }

// MemoryUsage returns the native bytes currently reserved.
func (s *Store) MemoryUsage() int64 { return s.rc.MemoryUsage() }

// MemoryLimit returns the native memory budget; 0 means unlimited.
func (s *Store) MemoryLimit() int64 { return s.rc.MemoryLimit() }

// MaxWorkers returns the number of goroutines operators may fork.
func (s *Store) MaxWorkers() int64 { return s.rc.MaxWorkers() }

func (s *Store) memOptions(name string) []mem.Option {
	return []mem.Option{
		mem.WithName(name),
		mem.WithCheckPolicy(s.opts.policy),
		mem.WithLogger(s.opts.logger.Logger),
		mem.WithMetrics(s.opts.metricsCollector),
		mem.WithMemoryAcquirer(s.rc),
		mem.WithExpectedMaxSize(s.opts.expectedMaxSize),
	}
}

func (s *Store) parallelOptions() []parallel.Option {
	return []parallel.Option{
		parallel.WithCacheLineSize(s.opts.cacheLine),
		parallel.WithBatchSize(s.opts.batchSize),
		parallel.WithMetrics(s.opts.metricsCollector),
	}
}

// track registers an owner for release on Close.
func (s *Store) track(b mem.Bytes) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.owned = append(s.owned, b)
	return nil
}

func (s *Store) checkOpen() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	return nil
}

func (s *Store) adopt(kind, name string, b mem.Bytes) error {
	s.opts.logger.LogAllocate(context.Background(), kind, name, b.Len(), nil)
	if err := s.track(b); err != nil {
		_ = b.Release()
		return err
	}
	return nil
}

// NewHeap allocates a heap buffer.
func (s *Store) NewHeap(name string, size int64) (*mem.HeapBytes, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	b, err := mem.NewHeap(size, s.memOptions(name)...)
	if err != nil {
		s.opts.logger.LogAllocate(context.Background(), "heap", name, size, err)
		return nil, err
	}
	if err := s.adopt("heap", name, b); err != nil {
		return nil, err
	}
	return b, nil
}

// NewNative allocates off-heap memory charged against the memory limit.
func (s *Store) NewNative(name string, size int64) (*mem.NativeBytes, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	b, err := mem.NewNative(size, s.memOptions(name)...)
	if err != nil {
		s.opts.logger.LogAllocate(context.Background(), "native", name, size, err)
		return nil, err
	}
	if err := s.adopt("native", name, b); err != nil {
		return nil, err
	}
	return b, nil
}

// NewResizable allocates a heap buffer that grows on overflowing writes.
func (s *Store) NewResizable(name string, initial int64) (*mem.ResizableBytes, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	b, err := mem.NewResizableHeap(initial, s.memOptions(name)...)
	if err != nil {
		s.opts.logger.LogAllocate(context.Background(), "resizable", name, initial, err)
		return nil, err
	}
	if err := s.adopt("resizable", name, b); err != nil {
		return nil, err
	}
	return b, nil
}

// OpenMapped maps the file at path read-write. A size of zero keeps the
// current file length.
func (s *Store) OpenMapped(path string, size int64) (*mem.MappedBytes, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	b, err := mem.OpenMapped(path, size, s.memOptions(path)...)
	if err != nil {
		s.opts.logger.LogAllocate(context.Background(), "mapped", path, size, err)
		return nil, err
	}
	if err := s.adopt("mapped", path, b); err != nil {
		return nil, err
	}
	return b, nil
}

// OpenMappedReadOnly maps the file at path read-only.
func (s *Store) OpenMappedReadOnly(path string) (*mem.InputAdapter, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	b, err := mem.OpenMappedReadOnly(path, s.memOptions(path)...)
	if err != nil {
		s.opts.logger.LogAllocate(context.Background(), "mapped-ro", path, 0, err)
		return nil, err
	}
	if err := s.adopt("mapped-ro", path, b); err != nil {
		return nil, err
	}
	return b, nil
}

// NewFlyWeight creates a record store of width-byte records in native
// memory with room for capacity records. It grows on AllocateNewRecords.
func (s *Store) NewFlyWeight(name string, width, capacity int64, opts ...flyweight.Option) (*flyweight.FlyWeight, error) {
	b, err := s.NewNative(name, 0)
	if err != nil {
		return nil, err
	}
	fw, err := flyweight.New(b, width, append(opts, flyweight.WithInitialCapacity(capacity))...)
	if err != nil {
		return nil, errors.Join(err, b.Release())
	}
	return fw, nil
}

// OpenFlyWeight maps a record file. An empty or missing file is
// initialized; otherwise its header is validated.
func (s *Store) OpenFlyWeight(path string, width int64, opts ...flyweight.Option) (*flyweight.FlyWeight, error) {
	b, err := s.OpenMapped(path, 0)
	if err != nil {
		return nil, err
	}
	var fw *flyweight.FlyWeight
	if b.Len() == 0 {
		fw, err = flyweight.New(b, width, opts...)
	} else {
		fw, err = flyweight.Attach(b, width, opts...)
	}
	if err != nil {
		return nil, errors.Join(err, b.Release())
	}
	return fw, nil
}

// NewMemoryRegion creates a block allocator whose data and index live in
// native memory.
func (s *Store) NewMemoryRegion(name string, opts ...region.Option) (*region.MemoryRegion, error) {
	data, err := s.NewNative(name+".data", region.DefaultInitialCapacity)
	if err != nil {
		return nil, err
	}
	index, err := s.NewNative(name+".index", 0)
	if err != nil {
		return nil, errors.Join(err, data.Release())
	}

	base := []region.Option{
		region.WithData(data),
		region.WithIndex(index),
		region.WithCheckPolicy(s.opts.policy),
		region.WithLogger(s.opts.logger.Logger),
		region.WithMetrics(s.opts.metricsCollector),
		region.WithExpectedMaxSize(s.opts.expectedMaxSize),
	}
	r, err := region.New(append(base, opts...)...)
	if err != nil {
		return nil, errors.Join(err, data.Release(), index.Release())
	}
	return r, nil
}

// Update runs fn over every record of fw on the store's pool.
func (s *Store) Update(ctx context.Context, fw *flyweight.FlyWeight, fn parallel.UpdateFunc) error {
	start := time.Now()
	err := parallel.Update(ctx, s.pool, fw, fn, s.parallelOptions()...)
	s.opts.logger.LogTask(ctx, "update", fw.RecordCount(), time.Since(start), err)
	return err
}

// Select returns the indices of the records of fw matching pred.
func (s *Store) Select(ctx context.Context, fw *flyweight.FlyWeight, pred parallel.Predicate) (*roaring.Bitmap, error) {
	start := time.Now()
	bm, err := parallel.Select(ctx, s.pool, fw, pred, s.parallelOptions()...)
	s.opts.logger.LogTask(ctx, "select", fw.RecordCount(), time.Since(start), err)
	return bm, err
}

// Sort sorts the records of fw in parallel.
func (s *Store) Sort(ctx context.Context, fw *flyweight.FlyWeight, cmp flyweight.Comparator) error {
	start := time.Now()
	err := parallel.Sort(ctx, s.pool, fw, cmp, s.parallelOptions()...)
	s.opts.logger.LogTask(ctx, "sort", fw.RecordCount(), time.Since(start), err)
	return err
}

// Query runs a parallel query over fw on the pool of s.
func Query[R any](ctx context.Context, s *Store, fw *flyweight.FlyWeight, q parallel.QueryFunc[R], m parallel.MergeFunc[R]) (R, bool, error) {
	start := time.Now()
	r, ok, err := parallel.Query(ctx, s.pool, fw, q, m, s.parallelOptions()...)
	s.opts.logger.LogTask(ctx, "query", fw.RecordCount(), time.Since(start), err)
	return r, ok, err
}

func (s *Store) snapshotOptions() []snapshot.Option {
	return []snapshot.Option{
		snapshot.WithCompression(s.opts.compression),
		snapshot.WithResourceController(s.rc),
		snapshot.WithLogger(s.opts.logger.Logger),
	}
}

// Export writes fw to w as a snapshot frame.
func (s *Store) Export(ctx context.Context, w io.Writer, fw *flyweight.FlyWeight) (snapshot.Manifest, error) {
	m, err := snapshot.WriteFlyWeight(ctx, w, fw, s.snapshotOptions()...)
	s.opts.logger.LogSnapshot(ctx, "export", m.RawBytes, err)
	return m, err
}

// Import reads a snapshot frame from r into a new native record store.
func (s *Store) Import(ctx context.Context, r io.Reader, name string) (*flyweight.FlyWeight, error) {
	snap, err := snapshot.Read(ctx, r, s.snapshotOptions()...)
	if err != nil {
		s.opts.logger.LogSnapshot(ctx, "import", 0, err)
		return nil, err
	}
	b, err := s.NewNative(name, int64(len(snap.Data)))
	if err != nil {
		return nil, err
	}
	fw, err := snap.RestoreFlyWeight(b)
	if err != nil {
		err = errors.Join(err, b.Release())
	}
	s.opts.logger.LogSnapshot(ctx, "import", snap.Manifest.RawBytes, err)
	return fw, err
}

// Restore reads a snapshot frame of any kind from r and copies its data to
// the start of dst, growing dst when it is a store-created owner.
func (s *Store) Restore(ctx context.Context, r io.Reader, dst mem.Bytes) (snapshot.Manifest, error) {
	snap, err := snapshot.Read(ctx, r, s.snapshotOptions()...)
	if err == nil {
		if snap.Manifest.Kind == snapshot.KindFlyWeight {
			_, err = snap.RestoreFlyWeight(dst)
		} else {
			err = snap.Restore(dst)
		}
	}
	var m snapshot.Manifest
	if snap != nil {
		m = snap.Manifest
	}
	s.opts.logger.LogSnapshot(ctx, "restore", m.RawBytes, err)
	return m, err
}

// Close releases every buffer the store created that is still live.
// Objects built on them must not be used afterwards.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return ErrClosed
	}
	s.closed = true
	owned := s.owned
	s.owned = nil
	s.mu.Unlock()

	var errs []error
	for _, b := range owned {
		if b.Released() {
			continue
		}
		err := b.Release()
		s.opts.logger.LogRelease(context.Background(), b.Name(), err)
		if err != nil {
			errs = append(errs, fmt.Errorf("flystore: release %s: %w", b.Name(), err))
		}
	}
	return errors.Join(errs...)
}
