package testutil

import (
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInt64s(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.Int64s(1000, 10)
	require.Len(t, v, 1000)
	for _, x := range v {
		assert.GreaterOrEqual(t, x, int64(0))
		assert.Less(t, x, int64(10))
	}
}

func TestReset(t *testing.T) {
	rng := NewRNG(4711)
	a := rng.Int64s(16, 1<<40)
	rng.Reset()
	b := rng.Int64s(16, 1<<40)

	assert.Equal(t, a, b)
	assert.Equal(t, int64(4711), rng.Seed())
}

func TestZipfInt64sIsSkewed(t *testing.T) {
	rng := NewRNG(4711)

	v := rng.ZipfInt64s(10_000, 64, 1.5)
	counts := make(map[int64]int)
	for _, x := range v {
		require.Less(t, x, int64(64))
		counts[x]++
	}
	// Key 0 is the most frequent under Zipf.
	assert.Greater(t, counts[0], counts[1])
	assert.Greater(t, counts[0], 10_000/64*5)
}

func TestStrings(t *testing.T) {
	rng := NewRNG(4711)

	for _, s := range rng.Strings(200, 8) {
		assert.True(t, utf8.ValidString(s))
		assert.LessOrEqual(t, utf8.RuneCountInString(s), 8)
	}
}

func TestShuffleAndSorted(t *testing.T) {
	rng := NewRNG(4711)
	v := []int64{5, 3, 4, 1, 2}
	rng.Shuffle(v)

	assert.Equal(t, []int64{1, 2, 3, 4, 5}, Sorted(v))
	assert.ElementsMatch(t, []int64{1, 2, 3, 4, 5}, v)
}
