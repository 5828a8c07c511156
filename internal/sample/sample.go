// Package sample provides an explicit, seedable random source and
// weighted categorical tables.  All generation randomness flows through
// a single Source so a snapshot is reproducible from its seed; there is
// no package-global random state.
package sample

import (
	"fmt"
	"math/rand"
	"time"

	"github.com/google/uuid"
)

// Source wraps a seeded math/rand generator.  It is not safe for
// concurrent use; the generator threads one Source through its stages
// sequentially.
type Source struct {
	seed int64
	rng  *rand.Rand
}

// NewSource returns a Source seeded with the given value.  A zero seed
// is replaced with a time-derived one for non-reproducible runs.
func NewSource(seed int64) *Source {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Source{seed: seed, rng: rand.New(rand.NewSource(seed))}
}

// Seed returns the effective seed.
func (s *Source) Seed() int64 { return s.seed }

// Read implements io.Reader over the seeded stream, which lets
// uuid.NewRandomFromReader mint reproducible UUIDs.
func (s *Source) Read(p []byte) (int, error) { return s.rng.Read(p) }

// UUID returns a random UUID string drawn from the seeded stream.
func (s *Source) UUID() string {
	id, err := uuid.NewRandomFromReader(s)
	if err != nil {
		// rand.Rand.Read never fails
		panic(fmt.Sprintf("sample: uuid from seeded source: %v", err))
	}
	return id.String()
}

// Intn returns a uniform int in [0, n).
func (s *Source) Intn(n int) int { return s.rng.Intn(n) }

// IntBetween returns a uniform int in [lo, hi] inclusive.
func (s *Source) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Float64 returns a uniform float in [0, 1).
func (s *Source) Float64() float64 { return s.rng.Float64() }

// FloatBetween returns a uniform float in [lo, hi).
func (s *Source) FloatBetween(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Bool returns true with probability p.
func (s *Source) Bool(p float64) bool { return s.rng.Float64() < p }

// DurationBetween returns a uniform duration in [lo, hi].
func (s *Source) DurationBetween(lo, hi time.Duration) time.Duration {
	if hi <= lo {
		return lo
	}
	return lo + time.Duration(s.rng.Int63n(int64(hi-lo)+1))
}

// Pick returns a uniformly chosen element of items.
func Pick[T any](s *Source, items []T) T {
	return items[s.rng.Intn(len(items))]
}

// Weighted pairs an item with its sampling weight.
type Weighted[T any] struct {
	Item   T
	Weight float64
}

// Table is a categorical distribution with fixed weights.
type Table[T any] struct {
	items      []T
	cumulative []float64
	total      float64
}

// NewTable builds a weighted-choice table.  Weights must be
// non-negative with a positive total.
func NewTable[T any](entries []Weighted[T]) (*Table[T], error) {
	if len(entries) == 0 {
		return nil, fmt.Errorf("sample: empty weighted table")
	}
	t := &Table[T]{
		items:      make([]T, 0, len(entries)),
		cumulative: make([]float64, 0, len(entries)),
	}
	for _, e := range entries {
		if e.Weight < 0 {
			return nil, fmt.Errorf("sample: negative weight %v", e.Weight)
		}
		t.total += e.Weight
		t.items = append(t.items, e.Item)
		t.cumulative = append(t.cumulative, t.total)
	}
	if t.total <= 0 {
		return nil, fmt.Errorf("sample: weighted table has zero total weight")
	}
	return t, nil
}

// MustTable is NewTable for static tables known to be valid.
func MustTable[T any](entries []Weighted[T]) *Table[T] {
	t, err := NewTable(entries)
	if err != nil {
		panic(err)
	}
	return t
}

// Pick draws one item according to the table weights.
func (t *Table[T]) Pick(s *Source) T {
	x := s.rng.Float64() * t.total
	for i, c := range t.cumulative {
		if x < c {
			return t.items[i]
		}
	}
	return t.items[len(t.items)-1]
}
