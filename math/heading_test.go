// math/heading_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"testing"
)

func TestIsHeadingBetween(t *testing.T) {
	tests := []struct {
		name     string
		h        float32
		h1       float32
		h2       float32
		expected bool
	}{
		// Simple cases without wraparound
		{"middle of range", 45, 0, 90, true},
		{"at start", 0, 0, 90, true},
		{"at end", 90, 0, 90, true},
		{"before range", 350, 0, 90, false},
		{"after range", 100, 0, 90, false},

		// Wraparound cases (h1 > h2)
		{"wraparound middle", 10, 350, 20, true},
		{"wraparound at 0", 0, 350, 20, true},
		{"wraparound at 360", 360, 350, 20, true},
		{"wraparound start", 350, 350, 20, true},
		{"wraparound end", 20, 350, 20, true},
		{"wraparound outside", 100, 350, 20, false},

		// RIGHT turn hold: inbound 360, outbound 180
		// Parallel sector: 180 to 290
		{"RIGHT hold parallel start", 180, 180, 290, true},
		{"RIGHT hold parallel middle", 235, 180, 290, true},
		{"RIGHT hold outside parallel", 300, 180, 290, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if result := IsHeadingBetween(tt.h, tt.h1, tt.h2); result != tt.expected {
				t.Errorf("IsHeadingBetween(%v, %v, %v) = %v, expected %v",
					tt.h, tt.h1, tt.h2, result, tt.expected)
			}
		})
	}
}

func TestNormalizeHeading(t *testing.T) {
	for _, test := range []struct{ h, expected float32 }{
		{0, 0}, {360, 0}, {-10, 350}, {370, 10}, {-370, 350}, {725, 5}, {359.5, 359.5},
	} {
		if n := NormalizeHeading(test.h); Abs(n-test.expected) > 1e-4 {
			t.Errorf("NormalizeHeading(%f) = %f, expected %f", test.h, n, test.expected)
		}
	}

	for _, test := range []struct{ a, expected float32 }{
		{0, 0}, {180, -180}, {-180, -180}, {190, -170}, {-190, 170}, {90, 90},
	} {
		if n := Normalize180(test.a); Abs(n-test.expected) > 1e-4 {
			t.Errorf("Normalize180(%f) = %f, expected %f", test.a, n, test.expected)
		}
	}
}

func TestHeadingSignedTurn(t *testing.T) {
	for _, test := range []struct{ cur, target, turn float32 }{
		{10, 20, 10}, {20, 10, -10}, {350, 10, 20}, {10, 350, -20}, {90, 270, 180},
	} {
		if turn := HeadingSignedTurn(test.cur, test.target); Abs(Abs(turn)-Abs(test.turn)) > 1e-3 ||
			(Abs(test.turn) != 180 && Abs(turn-test.turn) > 1e-3) {
			t.Errorf("HeadingSignedTurn(%f, %f) = %f, expected %f", test.cur, test.target, turn, test.turn)
		}
	}
}

func TestVectorHeading(t *testing.T) {
	for _, h := range []float32{0, 45, 90, 135, 180, 225, 270, 315, 359} {
		if r := VectorHeading(HeadingVector(h)); HeadingDifference(r, h) > 1e-3 {
			t.Errorf("round trip of %f gave %f", h, r)
		}
	}
	if c := CompassHeading(0.2); c != 360 {
		t.Errorf("CompassHeading(0.2) = %d, expected 360", c)
	}
}
