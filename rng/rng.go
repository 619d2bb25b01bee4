// Package rng provides the splitmix-style generator used by the quantizer.
//
// A Mix64 is not safe for concurrent use. Give every goroutine its own
// generator; a fixed seed makes the whole pipeline reproducible.
package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math"
)

// golden ratio increment ((sqrt5-1)/2) * 2^64
const gamma = 0x9e3779b97f4a7c15

type Mix64 struct {
	state uint64
}

func New(seed uint64) *Mix64 {
	return &Mix64{state: seed}
}

// NewFromEntropy seeds a generator from the operating system.
func NewFromEntropy() *Mix64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return New(binary.LittleEndian.Uint64(b[:]))
}

// mix64variant13 from Steele et al. (2014)
func mix64(x uint64) uint64 {
	x = (x ^ (x >> 30)) * 0xbf58476d1ce4e5b9
	x = (x ^ (x >> 27)) * 0x94d049bb133111eb
	return x ^ (x >> 31)
}

// Uint64 returns a uniform value over the full uint64 range.
// Mix64 therefore satisfies math/rand/v2.Source.
func (g *Mix64) Uint64() uint64 {
	g.state += gamma
	return mix64(g.state)
}

// Bounded returns a uniform value on [0, n). Draws past the largest
// multiple of n are rejected so the result has no modulo bias.
func (g *Mix64) Bounded(n uint64) uint64 {
	if n == 0 {
		return 0
	}
	limit := math.MaxUint64 - math.MaxUint64%n
	for {
		v := g.Uint64()
		if v < limit {
			return v % n
		}
	}
}

// Intn is Bounded for int sized populations.
func (g *Mix64) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	return int(g.Bounded(uint64(n)))
}

// Float64 returns a uniform value on [0, 1).
func (g *Mix64) Float64() float64 {
	return float64(g.Uint64()>>11) * 0x1p-53
}

// Open returns a uniform value on the open interval (0, 1).
func (g *Mix64) Open() float64 {
	return (float64(g.Uint64()>>11) + 0.5) * 0x1p-53
}

// Weighted picks index i with probability numerators[i]/denominator.
// It returns len(numerators) when the numerators sum to less than the
// drawn value; callers must treat that as "no valid index".
func (g *Mix64) Weighted(numerators []float64, denominator float64) int {
	x := g.Float64() * denominator
	for i, w := range numerators {
		if w > x {
			return i
		}
		x -= w
	}
	return len(numerators)
}

// PDF draws a value on (0, 1) distributed according to pdf by rejection
// sampling. mode must be the location of the density's maximum.
func (g *Mix64) PDF(mode float64, pdf func(float64) float64) float64 {
	peak := pdf(mode)
	for {
		x := g.Open()
		y := g.Float64() * peak
		if y <= pdf(x) {
			return x
		}
	}
}
