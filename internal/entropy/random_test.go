package entropy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSameSeedSameStream(t *testing.T) {
	a, b := New(42), New(42)
	for i := 0; i < 100; i++ {
		assert.Equal(t, a.Float(), b.Float())
	}
	assert.Equal(t, uint64(100), a.Draws())
}

func TestWeightedIndexProportions(t *testing.T) {
	r := New(7)
	counts := make([]int, 3)
	const n = 10000
	for i := 0; i < n; i++ {
		idx, ok := r.WeightedIndex([]float64{1, 1, 8})
		assert.True(t, ok)
		counts[idx]++
	}
	// 80% expected; 4 sigma is about 0.016.
	assert.InDelta(t, 0.8, float64(counts[2])/n, 0.02)
	assert.InDelta(t, 0.1, float64(counts[0])/n, 0.02)
}

func TestWeightedIndexAllZero(t *testing.T) {
	r := New(1)
	_, ok := r.WeightedIndex([]float64{0, 0, 0})
	assert.False(t, ok)
	_, ok = r.WeightedIndex(nil)
	assert.False(t, ok)
	assert.Equal(t, uint64(0), r.Draws())
}

func TestWeightedIndexSkipsZeroWeights(t *testing.T) {
	r := New(3)
	for i := 0; i < 200; i++ {
		idx, ok := r.WeightedIndex([]float64{0, 2, 0, -1})
		assert.True(t, ok)
		assert.Equal(t, 1, idx)
	}
}

func TestNewSeedNonZero(t *testing.T) {
	assert.NotZero(t, NewSeed())
}
