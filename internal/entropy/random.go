// Package entropy provides the simulation's single seeded random stream.
// Every stochastic decision draws from one Rand in a fixed order so that a
// seed fully determines a run.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
)

// Rand is a seeded pseudo-random stream. It is not safe for concurrent use.
type Rand struct {
	seed  int64
	rng   *mrand.Rand
	draws uint64
}

// New creates a stream from seed.
func New(seed int64) *Rand {
	return &Rand{seed: seed, rng: mrand.New(mrand.NewSource(seed))}
}

func (r *Rand) Seed() int64 { return r.seed }

// Draws returns how many values have been taken from the stream.
func (r *Rand) Draws() uint64 { return r.draws }

// Float returns a value in [0, 1).
func (r *Rand) Float() float64 {
	r.draws++
	return r.rng.Float64()
}

// Intn returns a value in [0, n). n must be positive.
func (r *Rand) Intn(n int) int {
	r.draws++
	return r.rng.Intn(n)
}

// Range returns a value in [lo, hi).
func (r *Rand) Range(lo, hi float64) float64 {
	return lo + r.Float()*(hi-lo)
}

// Norm returns a normally distributed value with the given mean and deviation.
func (r *Rand) Norm(mean, stddev float64) float64 {
	r.draws++
	return mean + r.rng.NormFloat64()*stddev
}

// Chance returns true with probability p.
func (r *Rand) Chance(p float64) bool {
	return r.Float() < p
}

// WeightedIndex picks an index with probability proportional to its weight
// using a cumulative draw. Negative weights count as zero. It returns false
// when no weight is positive.
func (r *Rand) WeightedIndex(weights []float64) (int, bool) {
	total := 0.0
	for _, w := range weights {
		if w > 0 {
			total += w
		}
	}
	if total <= 0 {
		return 0, false
	}

	target := r.Float() * total
	cum := 0.0
	last := 0
	for i, w := range weights {
		if w <= 0 {
			continue
		}
		cum += w
		last = i
		if target < cum {
			return i, true
		}
	}
	return last, true
}

// Shuffle permutes n elements in place via swap.
func (r *Rand) Shuffle(n int, swap func(i, j int)) {
	r.draws++
	r.rng.Shuffle(n, swap)
}

// NewSeed returns a seed from crypto/rand for runs configured without one.
func NewSeed() int64 {
	var buf [8]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return 1
	}
	seed := int64(binary.LittleEndian.Uint64(buf[:]) >> 1)
	if seed == 0 {
		seed = 1
	}
	return seed
}
