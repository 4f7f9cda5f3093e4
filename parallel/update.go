package parallel

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync/atomic"
	"time"

	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/forkjoin"
	"github.com/hupe1980/flystore/mem"
)

// UpdateFunc processes records [from, to) of fw. It may instead, or in
// addition, return subregions of [from, to) to be processed the same way.
// Returned subregions must be disjoint.
type UpdateFunc func(fw *flyweight.FlyWeight, from, to int64) ([]flyweight.Region, error)

// LeafFunc processes records [from, to) of fw.
type LeafFunc func(fw *flyweight.FlyWeight, from, to int64) error

// Bisect returns an UpdateFunc that halves a range until it holds at most
// leafRecords records and then runs leaf on it. A non-positive leafRecords
// uses as many records as fit one cache line.
func Bisect(leafRecords int64, leaf LeafFunc) UpdateFunc {
	return func(fw *flyweight.FlyWeight, from, to int64) ([]flyweight.Region, error) {
		n := leafRecords
		if n <= 0 {
			n = max(mem.CacheLineSize/fw.RecordWidth(), 1)
		}
		if to-from <= n {
			return nil, leaf(fw, from, to)
		}
		l, r := fw.Region(from, to).Bisect()
		return []flyweight.Region{l, r}, nil
	}
}

type updater struct {
	pool      *forkjoin.Pool
	fn        UpdateFunc
	cacheLine int64
	strict    bool
	leaves    atomic.Int64
	st        forkjoin.Stats
}

// Update runs fn over every record of fw.
func Update(ctx context.Context, pool *forkjoin.Pool, fw *flyweight.FlyWeight, fn UpdateFunc, opts ...Option) error {
	return UpdateRegion(ctx, pool, fw.All(), fn, opts...)
}

// UpdateRegion runs fn over region r. Regions whose byte span fits a cache
// line, and everything they return, run on the calling goroutine. Larger
// regions fork the subregions fn returns onto clones of the cursor.
func UpdateRegion(ctx context.Context, pool *forkjoin.Pool, r flyweight.Region, fn UpdateFunc, opts ...Option) (err error) {
	if err := ctx.Err(); err != nil {
		return err
	}
	o := applyOptions(opts)
	u := &updater{
		pool:      pool,
		fn:        fn,
		cacheLine: o.cacheLine,
		strict:    r.FlyWeight().Policy() == mem.Strict,
	}

	start := time.Now()
	defer func() {
		o.metrics.RecordTask("update", u.leaves.Load(), u.st.Forked.Load(), time.Since(start), err)
	}()
	return u.run(ctx, r)
}

func (u *updater) run(ctx context.Context, r flyweight.Region) error {
	fw := r.FlyWeight()
	subs, err := u.fn(fw, r.From(), r.To())
	if err != nil {
		return err
	}
	if len(subs) == 0 {
		u.leaves.Add(1)
		return nil
	}
	if u.strict {
		if err := checkSubregions(r, subs); err != nil {
			return err
		}
	}

	if r.ByteSpan() <= u.cacheLine {
		for _, s := range subs {
			if err := u.run(ctx, s.On(fw)); err != nil {
				return err
			}
		}
		return nil
	}

	tasks := make([]forkjoin.Task, len(subs))
	for i, s := range subs {
		cursor := fw
		if i > 0 {
			// The first task runs on this goroutine and may keep the cursor.
			cursor = fw.Clone()
		}
		tasks[i] = func(ctx context.Context) error {
			return u.run(ctx, s.On(cursor))
		}
	}
	return u.pool.InvokeAll(ctx, &u.st, tasks...)
}

// checkSubregions verifies that subs lie within parent and are pairwise
// disjoint.
func checkSubregions(parent flyweight.Region, subs []flyweight.Region) error {
	sorted := slices.Clone(subs)
	slices.SortFunc(sorted, func(a, b flyweight.Region) int { return cmp.Compare(a.From(), b.From()) })

	var prev flyweight.Region
	for i, s := range sorted {
		if s.FlyWeight() != nil && !s.FlyWeight().Shares(parent.FlyWeight()) {
			return fmt.Errorf("%w: %s", ErrForeignRegion, s)
		}
		if s.Empty() {
			continue
		}
		if !parent.Contains(s) {
			return fmt.Errorf("%w: %s outside %s", ErrOverlappingRegions, s, parent)
		}
		if i > 0 && prev.Overlaps(s) {
			return fmt.Errorf("%w: %s and %s", ErrOverlappingRegions, prev, s)
		}
		prev = s
	}
	return nil
}
