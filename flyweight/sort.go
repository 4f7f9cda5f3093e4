package flyweight

// Ordering is the result of comparing two records.
type Ordering int8

const (
	LT Ordering = -1
	EQ Ordering = 0
	GT Ordering = 1
)

// Comparator orders records i and j of fw. It may read through fw but
// must not depend on fw's selected record.
type Comparator func(fw *FlyWeight, i, j int64) Ordering

// CompareInt64 returns a Comparator ordering records by the int64 at off.
func CompareInt64(off int64) Comparator {
	return func(fw *FlyWeight, i, j int64) Ordering {
		a, b := fw.ReadInt64At(i, off), fw.ReadInt64At(j, off)
		switch {
		case a < b:
			return LT
		case a > b:
			return GT
		default:
			return EQ
		}
	}
}

// Reverse inverts a Comparator.
func Reverse(cmp Comparator) Comparator {
	return func(fw *FlyWeight, i, j int64) Ordering {
		return -cmp(fw, i, j)
	}
}

// Sort sorts all records in place with a three-way quicksort.
func (fw *FlyWeight) Sort(cmp Comparator) {
	fw.SortRange(cmp, 0, fw.RecordCount())
}

// SortRange sorts records [from, toExc) in place.
func (fw *FlyWeight) SortRange(cmp Comparator, from, toExc int64) {
	lo, hi := from, toExc-1
	for lo < hi {
		pivot, right := fw.partition(cmp, lo, hi)
		// Recurse into the smaller side to bound the stack depth.
		if pivot-lo < hi-right {
			fw.SortRange(cmp, lo, pivot)
			lo = right
		} else {
			fw.SortRange(cmp, right, hi+1)
			hi = pivot - 1
		}
	}
}

// Partition partitions [from, toExc) around its midpoint record. On return
// the pivot sits at index pivot, every record in [from, pivot) orders before
// or equal to it, and every record in [rightFrom, toExc) orders after or
// equal to it. Records in [pivot, rightFrom) compare EQ to the pivot.
// The range must hold at least two records.
func (fw *FlyWeight) Partition(cmp Comparator, from, toExc int64) (pivot, rightFrom int64) {
	return fw.partition(cmp, from, toExc-1)
}

// partition works on the inclusive range [lo, hi].
func (fw *FlyWeight) partition(cmp Comparator, lo, hi int64) (int64, int64) {
	fw.Swap(lo+(hi-lo)/2, hi)

	i, j := lo, hi-1
	for {
		for i < hi && cmp(fw, i, hi) == LT {
			i++
		}
		for j >= i && cmp(fw, j, hi) == GT {
			j--
		}
		if i >= j {
			break
		}
		fw.Swap(i, j)
		i++
		j--
	}
	if i != hi {
		fw.Swap(i, hi)
	}

	k := i + 1
	for k <= hi && cmp(fw, k, i) == EQ {
		k++
	}
	return i, k
}

// IsSorted reports whether records [0, RecordCount) are in cmp order.
func (fw *FlyWeight) IsSorted(cmp Comparator) bool {
	n := fw.RecordCount()
	for i := int64(1); i < n; i++ {
		if cmp(fw, i-1, i) == GT {
			return false
		}
	}
	return true
}
