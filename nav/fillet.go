// nav/fillet.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

// FilletArc is the standard-rate turn that joins the end of one step to
// the following one. Sweep is unsigned; Turn gives its direction.
type FilletArc struct {
	Center [2]float32
	Radius float32
	Start  float32 // bearing from the center to P0
	Sweep  float32
	Turn   av.TurnDirection
	P0, P1 [2]float32
}

func (f FilletArc) String() string {
	return fmt.Sprintf("fillet %s c(%.2f,%.2f) r%.2f %03.0f sweep %.0f", f.Turn, f.Center[0], f.Center[1],
		f.Radius, f.Start, f.Sweep)
}

func (f FilletArc) Shape() Shape {
	return MakeArc(f.Center, f.Radius, f.Start, f.Turn.Sign()*f.Sweep)
}

func (f FilletArc) Length() float32 {
	return math.ArcLength(f.Radius, f.Sweep)
}

func makeFillet(center [2]float32, radius float32, p0, p1 [2]float32, sign float32) FilletArc {
	start := math.VectorHeading(math.Sub2f(p0, center))
	end := math.VectorHeading(math.Sub2f(p1, center))
	f := FilletArc{
		Center: center,
		Radius: radius,
		Start:  start,
		Sweep:  math.ArcOffset(start, sign, end),
		Turn:   av.TurnDirectionFromSweep(sign),
		P0:     p0,
		P1:     p1,
	}
	if f.Sweep > 359.5 { // rounding of a zero sweep
		f.Sweep = 0
	}
	return f
}

// ComputeFillet returns the turn joining shape a to shape b, flown at
// the given radius. No fillet is needed (and false is returned) when the
// two are already tangent, when the turn between two lines is too small
// or too large, or when no tangent circle exists.
func ComputeFillet(a, b Shape, radius float32, tun *Tuning) (FilletArc, bool) {
	if radius <= 0 || a.Length() < tun.RuntThreshold || b.Length() < tun.RuntThreshold {
		return FilletArc{}, false
	}
	if math.Distance2f(a.P1, b.P0) < tun.RuntThreshold &&
		math.HeadingDifference(a.EndHeading(), b.StartHeading()) < tun.FilletMinTurn {
		// already tangent
		return FilletArc{}, false
	}

	var f FilletArc
	var ok bool
	switch {
	case a.Kind == ShapeLine && b.Kind == ShapeLine:
		f, ok = LineLineFillet(a, b, radius, tun.FilletMinTurn, tun.FilletMaxTurn)
	case a.Kind == ShapeLine && b.Kind == ShapeArc:
		f, ok = LineArcFillet(a, b, radius)
	case a.Kind == ShapeArc && b.Kind == ShapeLine:
		f, ok = ArcLineFillet(a, b, radius)
	default:
		// Arcs only follow arcs inside holds and procedure turns, where
		// they are constructed tangent.
		return FilletArc{}, false
	}

	if ok {
		assert(f.Turn != av.TurnClosest, "fillet %s has no turn direction", f)
		assert(math.IsFinite2f(f.Center) && math.IsFinite(f.Sweep), "non-finite fillet %s", f)
	}
	return f, ok
}

// Headings computed from endpoints are off by a few ulps, so the turn
// limits are compared with this much slack, in degrees.
const filletTurnSlack = 1e-3

// LineLineFillet joins two lines with a circle of the given radius that
// is tangent to both. The turn is from the heading of a to the heading
// of b; turns smaller than minTurn or larger than maxTurn degrees are not
// filleted.
func LineLineFillet(a, b Shape, radius, minTurn, maxTurn float32) (FilletArc, bool) {
	hin, hout := a.EndHeading(), b.StartHeading()
	delta := math.HeadingSignedTurn(hin, hout)
	if d := math.Abs(delta); d < minTurn-filletTurnSlack || d > maxTurn+filletTurnSlack {
		return FilletArc{}, false
	}

	elbow, ok := math.LineLineIntersect(a.P0, a.P1, b.P0, b.P1)
	if !ok {
		elbow = a.P1
	}

	vin, vout := math.HeadingVector(hin), math.HeadingVector(hout)
	sign := math.Sign(delta)
	lead := radius * math.Tan(math.Radians(math.Abs(delta)/2))
	p0 := math.Sub2f(elbow, math.Scale2f(vin, lead))
	p1 := math.Add2f(elbow, math.Scale2f(vout, lead))
	center := math.Add2f(p0, math.Scale2f(math.PerpRight(vin), sign*radius))

	f := makeFillet(center, radius, p0, p1, sign)
	f.Sweep = math.Abs(delta)
	return f, true
}

// filletCandidate is a circle of radius R tangent both to a line (at
// parametric distance t from the line's origin) and to an arc's circle
// (at point T).
type filletCandidate struct {
	sign   float32 // turn direction of the fillet
	t      float32
	center [2]float32
	onLine [2]float32
	onArc  [2]float32
}

// filletCandidates finds the up to four circles of radius r that are
// tangent to the line through p with heading hdg and to the arc. The
// fillet's center is offset from the line by r toward the side it turns
// to; it is |rho-r| from the arc's center when it turns the same way as
// the arc and rho+r when it turns the other way.
func filletCandidates(p [2]float32, hdg float32, arc Shape, r float32) []filletCandidate {
	u := math.HeadingVector(hdg)
	arcSign := float32(1)
	if arc.Sweep < 0 {
		arcSign = -1
	}

	var cands []filletCandidate
	for _, sign := range []float32{1, -1} {
		internal := sign == arcSign
		dist := arc.Radius + r
		if internal {
			dist = math.Abs(arc.Radius - r)
		}

		offset := math.Scale2f(math.PerpRight(u), sign*r)
		t0, t1, ok := math.LineCircleIntersect(math.Add2f(p, offset), u, arc.Center, dist)
		if !ok {
			continue
		}
		for _, t := range []float32{t0, t1} {
			onLine := math.Add2f(p, math.Scale2f(u, t))
			center := math.Add2f(onLine, offset)

			n := math.Normalize2f(math.Sub2f(center, arc.Center))
			if internal && r > arc.Radius {
				n = math.Scale2f(n, -1)
			}
			onArc := math.Add2f(arc.Center, math.Scale2f(n, arc.Radius))

			cands = append(cands, filletCandidate{
				sign:   sign,
				t:      t,
				center: center,
				onLine: onLine,
				onArc:  onArc,
			})
		}
	}
	return cands
}

// tangentDirectionsMatch checks that the fillet and the arc are traveled
// in the same direction at their point of tangency.
func tangentDirectionsMatch(c filletCandidate, arc Shape) bool {
	hf := math.ArcTangentHeading(math.VectorHeading(math.Sub2f(c.onArc, c.center)), c.sign > 0)
	ha := math.ArcTangentHeading(math.VectorHeading(math.Sub2f(c.onArc, arc.Center)), arc.Sweep >= 0)
	return math.HeadingDifference(hf, ha) < 1
}

type scoredFillet struct {
	f     FilletArc
	total float32
}

// bestFillet picks the shortest candidate, preferring ones that don't
// loop 180 degrees or more.
func bestFillet(cands []scoredFillet) (FilletArc, bool) {
	best, bestLoop := -1, -1
	for i, c := range cands {
		if c.f.Sweep < 180 {
			if best == -1 || c.total < cands[best].total {
				best = i
			}
		} else if bestLoop == -1 || c.total < cands[bestLoop].total {
			bestLoop = i
		}
	}
	if best != -1 {
		return cands[best].f, true
	} else if bestLoop != -1 {
		return cands[bestLoop].f, true
	}
	return FilletArc{}, false
}

const arcOffsetSlop = 0.5 // degrees

// LineArcFillet joins line a to arc b. The candidate with the least
// total distance flown, from the start of the line to the end of the
// arc, is returned.
func LineArcFillet(a, b Shape, radius float32) (FilletArc, bool) {
	hdg := a.StartHeading()
	var scored []scoredFillet
	for _, c := range filletCandidates(a.P0, hdg, b, radius) {
		if c.t < 0 || !tangentDirectionsMatch(c, b) {
			continue
		}
		off := math.ArcOffset(b.Start, b.Sweep, math.VectorHeading(math.Sub2f(c.onArc, b.Center)))
		if off > math.Abs(b.Sweep)+arcOffsetSlop && off < 360-arcOffsetSlop {
			continue // joins the circle past the end of the arc
		}
		if off >= 360-arcOffsetSlop {
			off = 0
		}

		f := makeFillet(c.center, radius, c.onLine, c.onArc, c.sign)
		remaining := math.ArcLength(b.Radius, max(0, math.Abs(b.Sweep)-off))
		scored = append(scored, scoredFillet{f: f, total: c.t + f.Length() + remaining})
	}
	return bestFillet(scored)
}

// ArcLineFillet joins arc a to line b. The candidate with the least
// total distance flown, from the start of the arc to the end of the
// line, is returned.
func ArcLineFillet(a, b Shape, radius float32) (FilletArc, bool) {
	hdg := b.StartHeading()
	length := b.Length()
	var scored []scoredFillet
	for _, c := range filletCandidates(b.P0, hdg, a, radius) {
		if !tangentDirectionsMatch(c, a) {
			continue
		}
		off := math.ArcOffset(a.Start, a.Sweep, math.VectorHeading(math.Sub2f(c.onArc, a.Center)))
		if off >= 360-arcOffsetSlop {
			off = 0
		} else if off > math.Abs(a.Sweep)+arcOffsetSlop {
			continue // leaves the circle past the end of the arc
		}
		if c.t < 0 || c.t > length {
			continue
		}

		f := makeFillet(c.center, radius, c.onArc, c.onLine, c.sign)
		flown := math.ArcLength(a.Radius, off)
		scored = append(scored, scoredFillet{f: f, total: flown + f.Length() + length - c.t})
	}
	return bestFillet(scored)
}
