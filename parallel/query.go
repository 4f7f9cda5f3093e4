package parallel

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/forkjoin"
)

// QueryFunc computes a partial result over records [from, to) of fw.
// Returning ok=false marks the partial result as absent.
type QueryFunc[R any] func(fw *flyweight.FlyWeight, from, to int64) (result R, ok bool, err error)

// MergeFunc combines two present partial results.
type MergeFunc[R any] func(a, b R) R

type querier[R any] struct {
	pool   *forkjoin.Pool
	query  QueryFunc[R]
	merge  MergeFunc[R]
	batch  int64
	leaves atomic.Int64
	st     forkjoin.Stats
}

type partial[R any] struct {
	v  R
	ok bool
}

// Query splits the records of fw at the midpoint until a range holds at
// most the batch size, runs q on every leaf and merges the results pairwise.
// Absent partial results are neutral. ok is false when no leaf produced a
// result.
func Query[R any](ctx context.Context, pool *forkjoin.Pool, fw *flyweight.FlyWeight, q QueryFunc[R], m MergeFunc[R], opts ...Option) (R, bool, error) {
	return QueryRegion(ctx, pool, fw.All(), q, m, opts...)
}

// QueryRegion is Query over region r.
func QueryRegion[R any](ctx context.Context, pool *forkjoin.Pool, r flyweight.Region, q QueryFunc[R], m MergeFunc[R], opts ...Option) (result R, ok bool, err error) {
	if err := ctx.Err(); err != nil {
		return result, false, err
	}
	o := applyOptions(opts)
	qr := &querier[R]{pool: pool, query: q, merge: m, batch: o.batchSize}

	start := time.Now()
	defer func() {
		o.metrics.RecordTask("query", qr.leaves.Load(), qr.st.Forked.Load(), time.Since(start), err)
	}()

	p, err := qr.run(ctx, r)
	return p.v, p.ok, err
}

func (qr *querier[R]) run(ctx context.Context, r flyweight.Region) (partial[R], error) {
	if r.Len() <= qr.batch {
		qr.leaves.Add(1)
		v, ok, err := qr.query(r.FlyWeight(), r.From(), r.To())
		return partial[R]{v: v, ok: ok}, err
	}

	left, right := r.Bisect()
	right = right.On(r.FlyWeight().Clone())
	var a, b partial[R]
	err := qr.pool.InvokeAll(ctx, &qr.st,
		func(ctx context.Context) (err error) {
			a, err = qr.run(ctx, left)
			return err
		},
		func(ctx context.Context) (err error) {
			b, err = qr.run(ctx, right)
			return err
		},
	)
	if err != nil {
		return partial[R]{}, err
	}
	switch {
	case !a.ok:
		return b, nil
	case !b.ok:
		return a, nil
	default:
		return partial[R]{v: qr.merge(a.v, b.v), ok: true}, nil
	}
}
