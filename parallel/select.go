package parallel

import (
	"context"
	"fmt"
	"math"

	"github.com/RoaringBitmap/roaring/v2"

	"github.com/hupe1980/flystore/flyweight"
	"github.com/hupe1980/flystore/internal/forkjoin"
)

// Predicate reports whether the selected record of fw matches.
type Predicate func(fw *flyweight.FlyWeight) bool

// Select returns the indices of the records matching pred.
func Select(ctx context.Context, pool *forkjoin.Pool, fw *flyweight.FlyWeight, pred Predicate, opts ...Option) (*roaring.Bitmap, error) {
	if n := fw.RecordCount(); n > math.MaxUint32 {
		return nil, fmt.Errorf("%w: %d", ErrTooManyRecords, n)
	}

	bm, ok, err := Query(ctx, pool, fw,
		func(fw *flyweight.FlyWeight, from, to int64) (*roaring.Bitmap, bool, error) {
			out := roaring.New()
			for i := from; i < to; i++ {
				fw.Select(i)
				if pred(fw) {
					out.Add(uint32(i))
				}
			}
			return out, !out.IsEmpty(), nil
		},
		func(a, b *roaring.Bitmap) *roaring.Bitmap {
			a.Or(b)
			return a
		},
		opts...,
	)
	if err != nil {
		return nil, err
	}
	if !ok {
		return roaring.New(), nil
	}
	return bm, nil
}
