package flyweight

import "fmt"

// Region is an immutable index range [From, To) over a FlyWeight, used as
// a unit of parallel work.
type Region struct {
	fw   *FlyWeight
	from int64
	to   int64
}

// FlyWeight returns the cursor the region was created from.
func (r Region) FlyWeight() *FlyWeight { return r.fw }

// From returns the first index.
func (r Region) From() int64 { return r.from }

// To returns the exclusive end index.
func (r Region) To() int64 { return r.to }

// Len returns the number of records.
func (r Region) Len() int64 { return max(r.to-r.from, 0) }

// Empty reports whether the region has no records.
func (r Region) Empty() bool { return r.to <= r.from }

// ByteSpan returns the number of record bytes the region covers.
func (r Region) ByteSpan() int64 { return r.Len() * r.fw.RecordWidth() }

// Contains reports whether o lies within r.
func (r Region) Contains(o Region) bool {
	return o.Empty() || (o.from >= r.from && o.to <= r.to)
}

// Overlaps reports whether r and o share at least one index.
func (r Region) Overlaps(o Region) bool {
	return !r.Empty() && !o.Empty() && r.from < o.to && o.from < r.to
}

// Bisect splits r at its midpoint.
func (r Region) Bisect() (Region, Region) {
	mid := r.from + r.Len()/2
	return r.With(r.from, mid), r.With(mid, r.to)
}

// With returns a region over the same FlyWeight.
func (r Region) With(from, to int64) Region {
	return Region{fw: r.fw, from: from, to: to}
}

// On returns the same range over another cursor.
func (r Region) On(fw *FlyWeight) Region {
	return Region{fw: fw, from: r.from, to: r.to}
}

func (r Region) String() string {
	return fmt.Sprintf("[%d, %d)", r.from, r.to)
}
