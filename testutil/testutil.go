package testutil

import (
	"math"
	"math/rand"
	"slices"
	"sync"
)

// RNG struct encapsulates the random number generator and seed.
// It is thread-safe.
type RNG struct {
	rand *rand.Rand
	seed int64
	mu   sync.Mutex
}

// NewRNG creates a new RNG instance with the specified seed.
func NewRNG(seed int64) *RNG {
	return &RNG{
		rand: rand.New(rand.NewSource(seed)),
		seed: seed,
	}
}

// Reset resets the RNG to its initial seed.
func (r *RNG) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Seed(r.seed)
}

// Seed returns the initial seed.
func (r *RNG) Seed() int64 {
	return r.seed
}

// Intn returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Intn(n int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Intn(n)
}

// Int63n returns a non-negative pseudo-random number in [0,n).
func (r *RNG) Int63n(n int64) int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Int63n(n)
}

// Uint64 returns a pseudo-random uint64.
func (r *RNG) Uint64() uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.rand.Uint64()
}

// Int64s returns n keys drawn uniformly from [0, spread).
// Locks only once per call.
func (r *RNG) Int64s(n int, spread int64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	for i := range out {
		out[i] = r.rand.Int63n(spread)
	}
	return out
}

// Bytes returns n random bytes.
func (r *RNG) Bytes(n int) []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]byte, n)
	_, _ = r.rand.Read(out)
	return out
}

// Zipf returns a Zipfian-distributed value in [0, n).
// P(k) ∝ 1/k^s; s=1.5 puts most values on a few keys.
func (r *RNG) Zipf(n int, s float64) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.zipfLocked(n, s)
}

// zipfLocked is the internal implementation (caller must hold lock).
func (r *RNG) zipfLocked(n int, s float64) int {
	if n <= 1 {
		return 0
	}

	var hns float64
	for i := 1; i <= n; i++ {
		hns += 1.0 / math.Pow(float64(i), s)
	}

	u := r.rand.Float64() * hns
	var cumulative float64
	for k := 1; k <= n; k++ {
		cumulative += 1.0 / math.Pow(float64(k), s)
		if u <= cumulative {
			return k - 1
		}
	}
	return n - 1
}

// ZipfInt64s returns n keys in [0, distinct) with Zipfian skew. The result
// has long runs of equal keys, which exercises three-way partitioning.
func (r *RNG) ZipfInt64s(n, distinct int, s float64) []int64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]int64, n)
	for i := range out {
		out[i] = int64(r.zipfLocked(distinct, s))
	}
	return out
}

const alphabet = "abcdefghijklmnopqrstuvwxyzäöüßπλ€😀"

// Strings returns n random strings of up to maxRunes runes, including
// multi-byte runes and the empty string.
func (r *RNG) Strings(n, maxRunes int) []string {
	r.mu.Lock()
	defer r.mu.Unlock()

	runes := []rune(alphabet)
	out := make([]string, n)
	for i := range out {
		s := make([]rune, r.rand.Intn(maxRunes+1))
		for j := range s {
			s[j] = runes[r.rand.Intn(len(runes))]
		}
		out[i] = string(s)
	}
	return out
}

// Shuffle permutes values in place.
func (r *RNG) Shuffle(values []int64) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rand.Shuffle(len(values), func(i, j int) { values[i], values[j] = values[j], values[i] })
}

// Sorted returns a sorted copy of values.
func Sorted(values []int64) []int64 {
	out := slices.Clone(values)
	slices.Sort(out)
	return out
}
