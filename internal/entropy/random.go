// Package entropy provides randomness sources for stochastic simulation events.
// Every probabilistic formula takes a Source so tests can replay exact sequences.
package entropy

import (
	"crypto/rand"
	"encoding/binary"
	mrand "math/rand"
	"sync"
)

// Source yields random draws for simulation formulas.
type Source interface {
	// Float returns a random float64 in [0, 1).
	Float() float64
	// Uniform returns a random float64 in [lo, hi).
	Uniform(lo, hi float64) float64
	// IntN returns a random int in [0, n).
	IntN(n int) int
}

// Seeded is a deterministic Source backed by math/rand.
// A given seed always replays the same sequence.
type Seeded struct {
	mu  sync.Mutex
	rng *mrand.Rand
}

// NewSeeded creates a deterministic source from a seed.
func NewSeeded(seed int64) *Seeded {
	return &Seeded{rng: mrand.New(mrand.NewSource(seed))}
}

func (s *Seeded) Float() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Float64()
}

func (s *Seeded) Uniform(lo, hi float64) float64 {
	return lo + s.Float()*(hi-lo)
}

func (s *Seeded) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.rng.Intn(n)
}

// Crypto is a non-deterministic Source backed by crypto/rand.
// Used when no seed is supplied and reproducibility is not needed.
type Crypto struct{}

func (Crypto) Float() float64 {
	return cryptoRandFloat()
}

func (c Crypto) Uniform(lo, hi float64) float64 {
	return lo + c.Float()*(hi-lo)
}

func (c Crypto) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(c.Float() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}

// cryptoRandFloat generates a random float64 using crypto/rand.
func cryptoRandFloat() float64 {
	var buf [8]byte
	_, err := rand.Read(buf[:])
	if err != nil {
		// This should never happen but return 0.5 as a safe default.
		return 0.5
	}
	// Use only 53 bits for a uniform float64 in [0, 1).
	n := binary.LittleEndian.Uint64(buf[:]) >> 11
	return float64(n) / float64(1<<53)
}

// Fixed replays a scripted sequence of floats, for deterministic tests.
// When the sequence is exhausted it repeats from the start.
type Fixed struct {
	mu   sync.Mutex
	vals []float64
	i    int
}

// NewFixed creates a scripted source. Panics on an empty sequence.
func NewFixed(vals ...float64) *Fixed {
	if len(vals) == 0 {
		panic("entropy: Fixed source needs at least one value")
	}
	return &Fixed{vals: vals}
}

func (f *Fixed) Float() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	v := f.vals[f.i%len(f.vals)]
	f.i++
	return v
}

func (f *Fixed) Uniform(lo, hi float64) float64 {
	return lo + f.Float()*(hi-lo)
}

func (f *Fixed) IntN(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(f.Float() * float64(n))
	if v >= n {
		v = n - 1
	}
	return v
}
