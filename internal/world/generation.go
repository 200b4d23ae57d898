// District generation using layered simplex noise.
// Noise drives desirability; desirability splits each plot's capacity
// between homes and shops.
package world

import (
	"math"

	opensimplex "github.com/ojrac/opensimplex-go"

	"github.com/talgya/hamlet/internal/entropy"
)

// GenConfig holds layout generation parameters.
type GenConfig struct {
	Name             string
	Radius           int // 0 = a single district
	ResidentialSlots int // max homes per district
	BusinessSlots    int // max shops per district
}

// DefaultGenConfig returns a small hamlet.
func DefaultGenConfig() GenConfig {
	return GenConfig{
		Name:             "Hamlet",
		Radius:           1,
		ResidentialSlots: 4,
		BusinessSlots:    2,
	}
}

// Generate lays out one plot per hex within the radius. Noise fields are
// keyed by rng's seed; names are drawn from rng itself.
func Generate(cfg GenConfig, rng *entropy.Rand) *Layout {
	desire := opensimplex.NewNormalized(rng.Seed())
	zoning := opensimplex.NewNormalized(rng.Seed() + 1)

	l := NewLayout(cfg.Name, cfg.Radius)
	coords := Within(cfg.Radius)
	names := generateNames(rng, len(coords))

	for i, coord := range coords {
		// Hex axial → cartesian: x = q + r*0.5, y = r * sqrt(3)/2
		x := float64(coord.Q) + float64(coord.R)*0.5
		y := float64(coord.R) * math.Sqrt(3.0) / 2.0

		d := octaveNoise(desire, x, y, 3, 0.35, 0.5)
		// The center is the oldest, most sought-after part of town.
		dist := float64(Distance(coord, HexCoord{}))
		d = clamp01(d*0.7 + (1-dist/float64(cfg.Radius+1))*0.3)

		commercial := octaveNoise(zoning, x, y, 2, 0.5, 0.5)
		biz := int(math.Round(commercial * float64(cfg.BusinessSlots)))
		res := cfg.ResidentialSlots - int(math.Round(commercial*float64(cfg.ResidentialSlots)*0.5))
		if res < 1 {
			res = 1
		}

		l.Set(&Plot{
			Coord:            coord,
			Name:             names[i],
			Desirability:     d,
			ResidentialSlots: res,
			BusinessSlots:    biz,
		})
	}

	return l
}

// generateNames produces procedural district names by combining syllables.
func generateNames(rng *entropy.Rand, count int) []string {
	prefixes := []string{
		"Iron", "Green", "Ash", "Stone", "Mill", "Cross", "Black",
		"Silver", "Red", "White", "High", "Low", "Old", "New",
		"Elm", "Oak", "Pine", "Copper", "River", "Church", "Market",
	}
	suffixes := []string{
		" Row", " End", " Lane", " Hill", " Green", " Side",
		" Court", " Square", " Gate", " Hollow", " Yard", " Walk",
	}

	used := make(map[string]bool)
	names := make([]string, 0, count)

	for len(names) < count {
		name := prefixes[rng.Intn(len(prefixes))] + suffixes[rng.Intn(len(suffixes))]
		if !used[name] {
			used[name] = true
			names = append(names, name)
		}
	}

	return names
}

func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}
