package sample_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/acmecorp/campaign-pulse/internal/sample"
)

func TestSource_DeterministicSequence(t *testing.T) {
	a := sample.NewSource(7)
	b := sample.NewSource(7)

	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Intn(1000), b.Intn(1000))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSource_SeedZeroIsTimeDerived(t *testing.T) {
	src := sample.NewSource(0)
	assert.NotZero(t, src.Seed())
}

func TestSource_UUIDDeterministic(t *testing.T) {
	a := sample.NewSource(42)
	b := sample.NewSource(42)

	for i := 0; i < 10; i++ {
		assert.Equal(t, a.UUID(), b.UUID())
	}
}

func TestSource_IntBetweenInclusive(t *testing.T) {
	src := sample.NewSource(1)
	seen := map[int]bool{}
	for i := 0; i < 1000; i++ {
		v := src.IntBetween(1, 3)
		require.GreaterOrEqual(t, v, 1)
		require.LessOrEqual(t, v, 3)
		seen[v] = true
	}
	assert.Len(t, seen, 3, "all values in the closed range should occur")
}

func TestSource_FloatBetween(t *testing.T) {
	src := sample.NewSource(1)
	for i := 0; i < 1000; i++ {
		v := src.FloatBetween(0.5, 15.0)
		require.GreaterOrEqual(t, v, 0.5)
		require.Less(t, v, 15.0)
	}
}

func TestNewTable_RejectsNegativeWeight(t *testing.T) {
	_, err := sample.NewTable([]sample.Weighted[string]{
		{Item: "a", Weight: 1},
		{Item: "b", Weight: -0.5},
	})
	assert.Error(t, err)
}

func TestNewTable_RejectsZeroTotal(t *testing.T) {
	_, err := sample.NewTable([]sample.Weighted[string]{
		{Item: "a", Weight: 0},
		{Item: "b", Weight: 0},
	})
	assert.Error(t, err)
}

func TestTable_PickRespectsWeights(t *testing.T) {
	table := sample.MustTable([]sample.Weighted[string]{
		{Item: "heavy", Weight: 9},
		{Item: "light", Weight: 1},
	})
	src := sample.NewSource(3)

	counts := map[string]int{}
	const n = 10000
	for i := 0; i < n; i++ {
		counts[table.Pick(src)]++
	}

	assert.Greater(t, counts["heavy"], counts["light"])
	assert.InDelta(t, 0.9, float64(counts["heavy"])/n, 0.05)
}

func TestTable_ZeroWeightNeverPicked(t *testing.T) {
	table := sample.MustTable([]sample.Weighted[string]{
		{Item: "always", Weight: 1},
		{Item: "never", Weight: 0},
	})
	src := sample.NewSource(5)

	for i := 0; i < 1000; i++ {
		assert.Equal(t, "always", table.Pick(src))
	}
}
