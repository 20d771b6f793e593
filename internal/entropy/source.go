// Package entropy provides seeded randomness for the simulation. Every
// world owns one Source; two Sources built from the same seed yield the
// same roll sequence and the same noise fields, which is what makes a
// whole run replayable from its seed. See design doc Section 9.
package entropy

import (
	"math/rand"

	opensimplex "github.com/ojrac/opensimplex-go"
)

// Source is a deterministic randomness source. Discrete rolls consume a
// seeded PRNG stream; smooth values come from simplex noise fields that
// are pure functions of (seed, day), so reading them never disturbs the
// roll sequence.
type Source struct {
	seed  int64
	rng   *rand.Rand
	trend opensimplex.Noise
	price opensimplex.Noise
}

// NewSource creates a Source from a world seed.
func NewSource(seed int64) *Source {
	return &Source{
		seed:  seed,
		rng:   rand.New(rand.NewSource(seed)),
		trend: opensimplex.NewNormalized(seed + 1),
		price: opensimplex.NewNormalized(seed + 2),
	}
}

// Seed returns the world seed the source was built from.
func (s *Source) Seed() int64 {
	return s.seed
}

// Float returns the next roll in [0, 1).
func (s *Source) Float() float64 {
	return s.rng.Float64()
}

// IntBetween returns a uniform integer in [lo, hi].
func (s *Source) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Pick returns a uniform index into a collection of length n.
func (s *Source) Pick(n int) int {
	if n <= 1 {
		return 0
	}
	return s.rng.Intn(n)
}

// TrendDrift returns a smooth value in [-1, 1] for the given day. The low
// frequency makes consecutive days correlate, so market trends wander
// instead of jumping.
func (s *Source) TrendDrift(day int) float64 {
	return centered(s.trend.Eval2(float64(day)*0.035, 0))
}

// Jitter returns a smooth value in [-1, 1] for a (day, channel) pair.
// Channels are well separated in noise space so per-resource price jitter
// stays independent.
func (s *Source) Jitter(day, channel int) float64 {
	return centered(s.price.Eval2(float64(day)*0.6, float64(channel)*13.7))
}

// centered maps a normalized sample in [0, 1] onto [-1, 1].
func centered(v float64) float64 {
	return v*2 - 1
}
