// Package rnd provides the random sources used by track generation,
// scoring and bots. Nothing in this module draws from a process wide
// generator; every consumer receives a Source.
package rnd

import (
	"crypto/sha256"
	"encoding/binary"
	"math/rand/v2"
)

// Source is the randomness needed by the engine. Implementations need not be
// safe for concurrent use; each race owns its sources.
type Source interface {
	// Float64 returns a value in [0.0, 1.0).
	Float64() float64
	// IntN returns a value in [0, n). n must be > 0.
	IntN(n int) int
}

// New returns a PCG backed source for the given seed.
func New(seed uint64) Source {
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Derive returns a source seeded from the SHA-256 of the given parts joined by ':'.
// The same parts always produce the same sequence.
func Derive(parts ...string) Source {
	h := sha256.New()
	for i, p := range parts {
		if i > 0 {
			h.Write([]byte{':'})
		}
		h.Write([]byte(p))
	}
	sum := h.Sum(nil)
	return rand.New(rand.NewPCG(
		binary.BigEndian.Uint64(sum[0:8]),
		binary.BigEndian.Uint64(sum[8:16])))
}

// Uniform returns a value in [lo, hi).
func Uniform(src Source, lo, hi float64) float64 {
	return lo + (hi-lo)*src.Float64()
}

// Choice returns a random element of items. items must not be empty.
func Choice[T any](src Source, items []T) T {
	return items[src.IntN(len(items))]
}

// Weighted returns an index into weights picked proportionally to its weight.
func Weighted(src Source, weights []float64) int {
	total := 0.0
	for _, w := range weights {
		total += w
	}
	r := src.Float64() * total
	for i, w := range weights {
		if r < w {
			return i
		}
		r -= w
	}
	return len(weights) - 1
}

// Fixed is a Source that replays the given values, mostly useful in tests.
// Float64 cycles through Floats; IntN returns Ints modulo n.
type Fixed struct {
	Floats []float64
	Ints   []int
	fi, ii int
}

func (f *Fixed) Float64() float64 {
	if len(f.Floats) == 0 {
		return 0
	}
	v := f.Floats[f.fi%len(f.Floats)]
	f.fi++
	return v
}

func (f *Fixed) IntN(n int) int {
	if len(f.Ints) == 0 {
		return 0
	}
	v := f.Ints[f.ii%len(f.Ints)]
	f.ii++
	return ((v % n) + n) % n
}
