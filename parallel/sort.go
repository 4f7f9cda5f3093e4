package parallel

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/forkjoin"
)

type sorter struct {
	pool      *forkjoin.Pool
	cmp       flyweight.Comparator
	cacheLine int64
	width     int64
	leaves    atomic.Int64
	st        forkjoin.Stats
}

// Sort sorts the records of fw with the same three-way quicksort as
// FlyWeight.Sort. Both partitions fork onto clones while their byte span
// exceeds the cache line; smaller ranges sort sequentially. The result is
// identical to the sequential sort.
func Sort(ctx context.Context, pool *forkjoin.Pool, fw *flyweight.FlyWeight, cmp flyweight.Comparator, opts ...Option) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := applyOptions(opts)
	s := &sorter{pool: pool, cmp: cmp, cacheLine: o.cacheLine, width: fw.RecordWidth()}

	start := time.Now()
	defer func() {
		o.metrics.RecordTask("sort", s.leaves.Load(), s.st.Forked.Load(), time.Since(start), err)
	}()
	return s.sort(ctx, fw, 0, fw.RecordCount())
}

func (s *sorter) sort(ctx context.Context, fw *flyweight.FlyWeight, from, to int64) error {
	if to-from < 2 {
		return nil
	}
	if (to-from)*s.width <= s.cacheLine {
		s.leaves.Add(1)
		fw.SortRange(s.cmp, from, to)
		return nil
	}

	pivot, right := fw.Partition(s.cmp, from, to)
	clone := fw.Clone()
	return s.pool.InvokeAll(ctx, &s.st,
		func(ctx context.Context) error { return s.sort(ctx, fw, from, pivot) },
		func(ctx context.Context) error { return s.sort(ctx, clone, right, to) },
	)
}
