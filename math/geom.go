// math/geom.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"
)

///////////////////////////////////////////////////////////////////////////
// Lines

// LineLineIntersect returns the intersection point of the two lines
// specified by the vertices (p1f, p2f) and (p3f, p4f).  An additional
// returned Boolean value indicates whether a valid intersection was found.
// (There's no intersection for parallel lines, and none may be found in
// cases with tricky numerics.)
func LineLineIntersect(p1f, p2f, p3f, p4f [2]float32) ([2]float32, bool) {
	// It's important to do this in float64, given differences of
	// similar-ish values...
	p1 := [2]float64{float64(p1f[0]), float64(p1f[1])}
	p2 := [2]float64{float64(p2f[0]), float64(p2f[1])}
	p3 := [2]float64{float64(p3f[0]), float64(p3f[1])}
	p4 := [2]float64{float64(p4f[0]), float64(p4f[1])}

	d12 := [2]float64{p1[0] - p2[0], p1[1] - p2[1]}
	d34 := [2]float64{p3[0] - p4[0], p3[1] - p4[1]}
	denom := d12[0]*d34[1] - d12[1]*d34[0]
	if gomath.Abs(denom) < 1e-7 {
		return [2]float32{}, false
	}
	numx := (p1[0]*p2[1]-p1[1]*p2[0])*(p3[0]-p4[0]) - (p1[0]-p2[0])*(p3[0]*p4[1]-p3[1]*p4[0])
	numy := (p1[0]*p2[1]-p1[1]*p2[0])*(p3[1]-p4[1]) - (p1[1]-p2[1])*(p3[0]*p4[1]-p3[1]*p4[0])

	return [2]float32{float32(numx / denom), float32(numy / denom)}, true
}

// RayLineIntersect intersects the ray starting at p with heading hdg with
// the infinite line through q with heading qhdg. It returns the
// intersection point and the signed distance along the ray to it.
func RayLineIntersect(p [2]float32, hdg float32, q [2]float32, qhdg float32) ([2]float32, float32, bool) {
	pi, ok := LineLineIntersect(p, Add2f(p, HeadingVector(hdg)), q, Add2f(q, HeadingVector(qhdg)))
	if !ok {
		return [2]float32{}, 0, false
	}
	return pi, Dot(Sub2f(pi, p), HeadingVector(hdg)), true
}

// SignedPointLineDistance returns the signed distance from the point p to
// the infinite line defined by (p0, p1), looking from p0 toward p1. Points
// to the right of the line have positive distances.
func SignedPointLineDistance(p, p0, p1 [2]float32) float32 {
	// https://en.wikipedia.org/wiki/Distance_from_a_point_to_a_line
	dx, dy := p1[0]-p0[0], p1[1]-p0[1]
	sq := dx*dx + dy*dy
	if sq == 0 {
		return float32(gomath.Inf(1))
	}
	return (dx*(p0[1]-p[1]) - dy*(p0[0]-p[0])) / Sqrt(sq)
}

// PointLineDistance returns the minimum distance from the point p to the infinite line defined by (p0, p1).
func PointLineDistance(p, p0, p1 [2]float32) float32 {
	return Abs(SignedPointLineDistance(p, p0, p1))
}

// Return minimum distance between line segment vw and point p
// https://stackoverflow.com/a/1501725
func PointSegmentDistance(p, v, w [2]float32) float32 {
	l := Sub2f(v, w)
	l2 := Dot(l, l)
	if l2 == 0 {
		return Length2f(Sub2f(p, v))
	}
	t := Clamp(Dot(Sub2f(p, v), Sub2f(w, v))/l2, 0, 1)
	proj := Add2f(v, Scale2f(Sub2f(w, v), t))
	return Distance2f(p, proj)
}

// ClosestPointOnLine returns the closest point on the (infinite) line to
// the given point p.
func ClosestPointOnLine(line [2][2]float32, p [2]float32) [2]float32 {
	x1, y1 := line[0][0], line[0][1]
	x2, y2 := line[1][0], line[1][1]

	t := (((p[0] - x1) * (x2 - x1)) + ((p[1] - y1) * (y2 - y1))) / ((x2-x1)*(x2-x1) + (y2-y1)*(y2-y1))

	return [2]float32{Lerp(t, x1, x2), Lerp(t, y1, y2)}
}

// AlongTrack returns the signed distance from p0 to the projection of p
// onto the line starting at p0 with the given heading.
func AlongTrack(p, p0 [2]float32, hdg float32) float32 {
	return Dot(Sub2f(p, p0), HeadingVector(hdg))
}

///////////////////////////////////////////////////////////////////////////
// Circles and arcs

// Arcs are described by their center, radius, the bearing from the center
// to the arc's starting point and a signed sweep in degrees, positive for
// clockwise travel.

// ArcPoint returns the point at the given bearing from the center.
func ArcPoint(center [2]float32, radius, bearing float32) [2]float32 {
	return Add2f(center, Scale2f(HeadingVector(bearing), radius))
}

// ArcTangentHeading returns the direction of travel at the point with the
// given bearing on a circle flown clockwise (cw) or counter-clockwise.
func ArcTangentHeading(bearing float32, cw bool) float32 {
	if cw {
		return NormalizeHeading(bearing + 90)
	}
	return NormalizeHeading(bearing - 90)
}

// ArcLength returns the length of an arc with the given radius and sweep
// (in degrees, either sign).
func ArcLength(radius, sweep float32) float32 {
	return radius * Radians(Abs(sweep))
}

// ArcOffset returns how far, in degrees, one must travel from the start
// bearing in the sweep's direction to reach the given bearing; the
// result is in [0,360).
func ArcOffset(start, sweep, bearing float32) float32 {
	if sweep >= 0 {
		return NormalizeHeading(bearing - start)
	}
	return NormalizeHeading(start - bearing)
}

// PointArcDistance returns the minimum distance from p to the arc.
func PointArcDistance(p, center [2]float32, radius, start, sweep float32) float32 {
	d := Distance2f(p, center)
	if d == 0 {
		return radius
	}
	if ArcOffset(start, sweep, VectorHeading(Sub2f(p, center))) <= Abs(sweep) {
		return Abs(d - radius)
	}
	p0 := ArcPoint(center, radius, start)
	p1 := ArcPoint(center, radius, start+sweep)
	return min(Distance2f(p, p0), Distance2f(p, p1))
}

// LineCircleIntersect intersects the line p + t*dir (dir must be unit
// length) with the circle. If the line misses the circle, ok is false;
// otherwise the two parametric distances are returned with t0 <= t1. A
// tangent line returns two equal values.
func LineCircleIntersect(p, dir, center [2]float32, radius float32) (t0, t1 float32, ok bool) {
	// |p + t dir - c|^2 = r^2  =>  t^2 + 2 b t + c = 0
	pc := Sub2f(p, center)
	b := Dot(pc, dir)
	c := Dot(pc, pc) - radius*radius
	disc := b*b - c
	if disc < 0 {
		if disc > -1e-6 {
			disc = 0
		} else {
			return 0, 0, false
		}
	}
	s := Sqrt(disc)
	return -b - s, -b + s, true
}

// LineCircleIntersectPoints returns the 0 or 2 points where the line
// through p0 and p1 meets the circle.
func LineCircleIntersectPoints(p0, p1, center [2]float32, radius float32) [][2]float32 {
	dir := Normalize2f(Sub2f(p1, p0))
	t0, t1, ok := LineCircleIntersect(p0, dir, center, radius)
	if !ok {
		return nil
	}
	return [][2]float32{Add2f(p0, Scale2f(dir, t0)), Add2f(p0, Scale2f(dir, t1))}
}

// CircleTangent returns the directed line leaving circle 0 and arriving
// tangentially on circle 1, where each circle is flown clockwise if the
// corresponding cw value is true. A radius of zero describes a point. It
// returns the two tangent points and the heading flown between them.
func CircleTangent(c0 [2]float32, r0 float32, cw0 bool, c1 [2]float32, r1 float32, cw1 bool) (p0, p1 [2]float32, hdg float32, ok bool) {
	// For a clockwise circle the center lies to the right of the direction
	// of travel, so we want a line whose signed right-hand distance to
	// each center is +r for clockwise and -r otherwise.
	s0 := r0
	if !cw0 {
		s0 = -r0
	}
	s1 := r1
	if !cw1 {
		s1 = -r1
	}

	delta := Sub2f(c1, c0)
	d := Length2f(delta)
	if d == 0 || Abs(s1-s0) > d {
		return [2]float32{}, [2]float32{}, 0, false
	}
	beta := VectorHeading(delta)
	hdg = NormalizeHeading(beta - Degrees(SafeASin((s1-s0)/d)))

	right := PerpRight(HeadingVector(hdg))
	p0 = Sub2f(c0, Scale2f(right, s0))
	p1 = Sub2f(c1, Scale2f(right, s1))
	return p0, p1, hdg, true
}

///////////////////////////////////////////////////////////////////////////
// Turns

// StandardTurnRate is the standard-rate turn in degrees per second.
const StandardTurnRate = 3

// StandardTurnRadius returns the radius in nm of a standard-rate turn at
// the given groundspeed (knots).
func StandardTurnRadius(gs float32) float32 {
	nmPerSecond := gs / 3600
	return nmPerSecond * 180 / gomath.Pi / StandardTurnRate
}
