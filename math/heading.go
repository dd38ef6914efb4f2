// math/heading.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

///////////////////////////////////////////////////////////////////////////
// headings and directions

// Headings are in degrees, measured clockwise from north (+y). Plane
// coordinates have +x east and +y north, so the unit vector for heading h
// is (sin h, cos h).

// HeadingVector returns the unit vector pointing along the given heading.
func HeadingVector(hdg float32) [2]float32 {
	return SinCos(Radians(hdg))
}

// VectorHeading returns the heading of the vector v in [0,360).
func VectorHeading(v [2]float32) float32 {
	// Note that atan2() normally measures w.r.t. the +x axis and angles
	// are positive for counter-clockwise. We want to measure w.r.t. +y and
	// to have positive angles be clockwise. Happily, swapping the order of
	// values passed to atan2()--passing (x,y), gives what we want.
	return NormalizeHeading(Degrees(Atan2(v[0], v[1])))
}

// TrueCourse returns the bearing from p0 to p1 in (-180,180]. Coincident
// points give 0 rather than NaN.
func TrueCourse(p0, p1 [2]float32) float32 {
	dx, dy := p1[0]-p0[0], p1[1]-p0[1]
	if dx == 0 && dy == 0 {
		return 0
	}
	tc := Degrees(Atan2(dx, dy))
	if tc <= -180 {
		tc += 360
	}
	return tc
}

// Normalize180 reduces an angle to [-180,180).
func Normalize180(a float32) float32 {
	a = NormalizeHeading(a)
	if a >= 180 {
		a -= 360
	}
	return a
}

// AngleDiffU returns the unsigned minimal angular difference for the given
// (arbitrary) angle difference, in [0,180].
func AngleDiffU(diff float32) float32 {
	d := NormalizeHeading(diff)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float32, b float32) float32 {
	return AngleDiffU(a - b)
}

// Figure out which way is closest: first find the angle to rotate the
// target heading by so that it's aligned with 180 degrees. This lets us
// not worry about the complexities of the wrap around at 0/360..
// The result is positive for right turns.
func HeadingSignedTurn(cur, target float32) float32 {
	rot := NormalizeHeading(180 - target)
	return 180 - NormalizeHeading(cur+rot) // w.r.t. 180 target
}

// IsHeadingBetween returns true if h lies in the clockwise sweep from h1
// to h2, inclusive at both ends.
func IsHeadingBetween(h, h1, h2 float32) bool {
	h, h1, h2 = NormalizeHeading(h), NormalizeHeading(h1), NormalizeHeading(h2)
	if h1 <= h2 {
		return h >= h1 && h <= h2
	}
	return h >= h1 || h <= h2
}

// ShortCompass converts a heading expressed in degrees into an abbreviated
// string corresponding to the closest compass direction.
func ShortCompass(heading float32) string {
	h := NormalizeHeading(heading + 22.5) // now [0,45] is north, etc...
	idx := int(h / 45)
	return [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}[idx%8]
}

// Reduces it to [0,360).
func NormalizeHeading(h float32) float32 {
	if h < 0 {
		h = 360 - Mod(-h, 360)
	} else {
		h = Mod(h, 360)
	}
	if h >= 360 {
		// float32 rounding of 360-epsilon
		h = 0
	}
	return h
}

func OppositeHeading(h float32) float32 {
	return NormalizeHeading(h + 180)
}

// CompassHeading returns the heading rounded to a whole degree with 0
// reported as 360, as it is read on a chart.
func CompassHeading(h float32) int {
	hh := int(Round(NormalizeHeading(h)))
	if hh == 0 || hh == 360 {
		return 360
	}
	return hh
}
