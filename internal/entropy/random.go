// Package entropy provides the simulation's randomness source. Every
// stochastic draw in the engine goes through a Source so a run is fully
// reproducible from its seed.
package entropy

import "math/rand"

// Source wraps a seeded PRNG. Not safe for concurrent use; the engine is
// single-threaded and owns exactly one Source.
type Source struct {
	rng *rand.Rand
}

// NewSource creates a Source seeded with the given value.
func NewSource(seed int64) *Source {
	return &Source{rng: rand.New(rand.NewSource(seed))}
}

// Float64 returns a random float64 in [0, 1).
func (s *Source) Float64() float64 {
	return s.rng.Float64()
}

// Uniform returns a random float64 in [lo, hi).
func (s *Source) Uniform(lo, hi float64) float64 {
	return lo + s.rng.Float64()*(hi-lo)
}

// Gauss returns a normally distributed float64 with the given mean and
// standard deviation.
func (s *Source) Gauss(mean, stddev float64) float64 {
	return mean + s.rng.NormFloat64()*stddev
}

// Intn returns a random int in [0, n). Panics if n <= 0.
func (s *Source) Intn(n int) int {
	return s.rng.Intn(n)
}

// IntBetween returns a random int in [lo, hi] inclusive.
func (s *Source) IntBetween(lo, hi int) int {
	if hi <= lo {
		return lo
	}
	return lo + s.rng.Intn(hi-lo+1)
}

// Pick returns a random element of choices. Panics on an empty slice.
func Pick[T any](s *Source, choices []T) T {
	return choices[s.rng.Intn(len(choices))]
}

// Sample returns n distinct elements of choices in random order.
// Panics if n exceeds len(choices).
func Sample[T any](s *Source, choices []T, n int) []T {
	idx := s.rng.Perm(len(choices))
	out := make([]T, n)
	for i := range out {
		out[i] = choices[idx[i]]
	}
	return out
}

// Chance returns true with probability p.
func (s *Source) Chance(p float64) bool {
	return s.rng.Float64() < p
}
