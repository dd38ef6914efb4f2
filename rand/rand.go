// rand/rand.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	gomath "math"

	"github.com/MichaelTJones/pcg"
)

///////////////////////////////////////////////////////////////////////////
// Random numbers.

// Rand is a small deterministic generator; simulated GPS tracks and the
// sampling tests seed it so that runs are reproducible.
type Rand struct {
	r *pcg.PCG32
}

func New() Rand {
	return Rand{r: pcg.NewPCG32()}
}

// Make returns a generator seeded with s.
func Make(s int64) Rand {
	r := New()
	r.Seed(s)
	return r
}

func (r *Rand) Seed(s int64) {
	r.r.Seed(uint64(s), 0xda3e39cb94b95bdb)
}

func (r *Rand) Intn(n int) int {
	return int(r.r.Bounded(uint32(n)))
}

// Float32 returns a value in [0,1].
func (r *Rand) Float32() float32 {
	return float32(r.r.Random()) / (1<<32 - 1)
}

// Uniform returns a value uniformly distributed in [lo,hi].
func (r *Rand) Uniform(lo, hi float32) float32 {
	return lo + (hi-lo)*r.Float32()
}

// NormFloat32 returns a normally-distributed value with zero mean and
// unit standard deviation, via the Box-Muller transform.
func (r *Rand) NormFloat32() float32 {
	u0 := float64(r.Float32())
	for u0 == 0 {
		u0 = float64(r.Float32())
	}
	u1 := float64(r.Float32())
	return float32(gomath.Sqrt(-2*gomath.Log(u0)) * gomath.Cos(2*gomath.Pi*u1))
}

// SampleSlice uniformly randomly samples an element of a non-empty slice.
func SampleSlice[T any](r *Rand, slice []T) T {
	return slice[r.Intn(len(slice))]
}
