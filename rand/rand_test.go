// rand/rand_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package rand

import (
	"math"
	"testing"
)

func TestDeterministic(t *testing.T) {
	a, b := Make(42), Make(42)
	for i := 0; i < 100; i++ {
		if a.Float32() != b.Float32() {
			t.Fatalf("generators with the same seed diverged at %d", i)
		}
	}
}

func TestUniform(t *testing.T) {
	r := Make(1)
	for i := 0; i < 1000; i++ {
		if v := r.Uniform(-180, 180); v < -180 || v > 180 {
			t.Errorf("%f out of range", v)
		}
		if v := r.Intn(7); v < 0 || v >= 7 {
			t.Errorf("Intn %d out of range", v)
		}
	}
}

func TestNormFloat32(t *testing.T) {
	r := Make(7)
	const n = 20000
	var sum, sum2 float64
	for i := 0; i < n; i++ {
		v := float64(r.NormFloat32())
		sum += v
		sum2 += v * v
	}
	mean := sum / n
	stddev := math.Sqrt(sum2/n - mean*mean)
	if math.Abs(mean) > 0.05 {
		t.Errorf("mean %f too far from 0", mean)
	}
	if math.Abs(stddev-1) > 0.05 {
		t.Errorf("stddev %f too far from 1", stddev)
	}
}
