package world

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/talgya/hamlet/internal/entropy"
)

func TestWithinCounts(t *testing.T) {
	assert.Len(t, Within(0), 1)
	assert.Len(t, Within(1), 7)
	assert.Len(t, Within(2), 19)
}

func TestDistance(t *testing.T) {
	assert.Equal(t, 0, Distance(HexCoord{}, HexCoord{}))
	for _, n := range (HexCoord{Q: 2, R: -1}).Neighbors() {
		assert.Equal(t, 1, Distance(HexCoord{Q: 2, R: -1}, n))
	}
	assert.Equal(t, 3, Distance(HexCoord{Q: -1, R: -1}, HexCoord{Q: 2, R: -1}))
}

func TestGenerateIsDeterministic(t *testing.T) {
	cfg := DefaultGenConfig()
	cfg.Radius = 2

	a := Generate(cfg, entropy.New(42))
	b := Generate(cfg, entropy.New(42))
	assert.Equal(t, 19, a.PlotCount())

	pa, pb := a.Ordered(), b.Ordered()
	for i := range pa {
		assert.Equal(t, *pa[i], *pb[i])
	}
}

func TestGeneratedPlotsAreInRange(t *testing.T) {
	cfg := DefaultGenConfig()
	rng := entropy.New(9)
	l := Generate(cfg, rng)
	assert.Positive(t, rng.Draws(), "names come from the shared stream")

	names := map[string]bool{}
	for _, p := range l.Ordered() {
		assert.LessOrEqual(t, Distance(p.Coord, HexCoord{}), cfg.Radius)
		assert.GreaterOrEqual(t, p.Desirability, 0.0)
		assert.LessOrEqual(t, p.Desirability, 1.0)
		assert.GreaterOrEqual(t, p.ResidentialSlots, 1)
		assert.LessOrEqual(t, p.ResidentialSlots, cfg.ResidentialSlots)
		assert.GreaterOrEqual(t, p.BusinessSlots, 0)
		assert.LessOrEqual(t, p.BusinessSlots, cfg.BusinessSlots)
		assert.False(t, names[p.Name], "duplicate name %s", p.Name)
		names[p.Name] = true
	}
	assert.Len(t, l.Adjacent(HexCoord{}), 6)
}
