// nav/shape.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

// Pose is a position in the approach plane (nm) along with a true
// heading and an altitude in feet.
type Pose struct {
	P        [2]float32
	Heading  float32
	Altitude float32
}

func (p Pose) String() string {
	return fmt.Sprintf("(%.2f,%.2f) %03.0f %.0fft", p.P[0], p.P[1], p.Heading, p.Altitude)
}

type ShapeKind int

const (
	ShapeLine ShapeKind = iota
	ShapeArc
)

// Shape is the geometry of a step or a fillet: either a directed line
// segment or a circular arc. Arcs are given by their center, radius, the
// compass bearing from the center to the starting point and a signed
// sweep in degrees that is positive for clockwise travel (a right turn).
type Shape struct {
	Kind   ShapeKind
	P0, P1 [2]float32

	Center [2]float32
	Radius float32
	Start  float32
	Sweep  float32
}

func MakeLine(p0, p1 [2]float32) Shape {
	return Shape{Kind: ShapeLine, P0: p0, P1: p1}
}

// MakePoint returns a zero-length line; unused steps are given one so
// that poses still chain through them.
func MakePoint(p [2]float32) Shape {
	return MakeLine(p, p)
}

func MakeArc(center [2]float32, radius, start, sweep float32) Shape {
	return Shape{
		Kind:   ShapeArc,
		P0:     math.ArcPoint(center, radius, start),
		P1:     math.ArcPoint(center, radius, start+sweep),
		Center: center,
		Radius: radius,
		Start:  math.NormalizeHeading(start),
		Sweep:  sweep,
	}
}

func (s Shape) String() string {
	if s.Kind == ShapeArc {
		return fmt.Sprintf("arc c(%.2f,%.2f) r%.2f %03.0f%+.0f", s.Center[0], s.Center[1], s.Radius, s.Start, s.Sweep)
	}
	return fmt.Sprintf("line (%.2f,%.2f)-(%.2f,%.2f)", s.P0[0], s.P0[1], s.P1[0], s.P1[1])
}

func (s Shape) Length() float32 {
	if s.Kind == ShapeArc {
		return math.ArcLength(s.Radius, s.Sweep)
	}
	return math.Distance2f(s.P0, s.P1)
}

func (s Shape) IsFinite() bool {
	ok := math.IsFinite2f(s.P0) && math.IsFinite2f(s.P1)
	if s.Kind == ShapeArc {
		ok = ok && math.IsFinite2f(s.Center) && math.IsFinite(s.Radius) && math.IsFinite(s.Start) &&
			math.IsFinite(s.Sweep)
	}
	return ok
}

// Turn returns the direction of an arc; lines don't turn.
func (s Shape) Turn() av.TurnDirection {
	if s.Kind == ShapeArc {
		return av.TurnDirectionFromSweep(s.Sweep)
	}
	return av.TurnClosest
}

func (s Shape) StartHeading() float32 {
	return s.HeadingAt(0)
}

func (s Shape) EndHeading() float32 {
	return s.HeadingAt(s.Length())
}

// HeadingAt returns the direction of travel at distance d along the
// shape. Zero-length lines report 0.
func (s Shape) HeadingAt(d float32) float32 {
	if s.Kind == ShapeArc {
		return math.ArcTangentHeading(s.bearingAt(d), s.Sweep >= 0)
	}
	if s.P0 == s.P1 {
		return 0
	}
	return math.VectorHeading(math.Sub2f(s.P1, s.P0))
}

func (s Shape) bearingAt(d float32) float32 {
	deg := math.Degrees(d / s.Radius)
	if s.Sweep < 0 {
		deg = -deg
	}
	return s.Start + deg
}

// PointAt returns the point at distance d along the shape; distances
// outside of [0, Length()] continue along the line or circle.
func (s Shape) PointAt(d float32) [2]float32 {
	if s.Kind == ShapeArc {
		return math.ArcPoint(s.Center, s.Radius, s.bearingAt(d))
	}
	l := s.Length()
	if l == 0 {
		return s.P0
	}
	return math.Lerp2f(d/l, s.P0, s.P1)
}

// Project returns the distance along the shape of the point closest to
// p and the signed cross-track distance, positive when p is to the right
// of the direction of travel. Points before the start of the shape give
// negative distances.
func (s Shape) Project(p [2]float32) (along, cross float32) {
	if s.Kind == ShapeArc {
		d := math.Distance2f(p, s.Center)
		off := math.ArcOffset(s.Start, s.Sweep, math.VectorHeading(math.Sub2f(p, s.Center)))
		// Past the end, split the remaining angle evenly between "beyond
		// the end" and "before the start".
		if sw := math.Abs(s.Sweep); off > sw+(360-sw)/2 {
			off -= 360
		}
		along = math.Radians(off) * s.Radius
		if s.Sweep >= 0 {
			cross = s.Radius - d
		} else {
			cross = d - s.Radius
		}
		return
	}

	l := s.Length()
	if l == 0 {
		return 0, 0
	}
	dir := math.Scale2f(math.Sub2f(s.P1, s.P0), 1/l)
	along = math.Dot(math.Sub2f(p, s.P0), dir)
	cross = math.SignedPointLineDistance(p, s.P0, s.P1)
	return
}

// Distance returns the distance from p to the closest point of the
// shape.
func (s Shape) Distance(p [2]float32) float32 {
	if s.Kind == ShapeArc {
		return math.PointArcDistance(p, s.Center, s.Radius, s.Start, s.Sweep)
	}
	return math.PointSegmentDistance(p, s.P0, s.P1)
}

///////////////////////////////////////////////////////////////////////////
// Path

// Path is a sequence of shapes, for example the route ahead including the
// fillets between steps, that can be measured as a whole.
type Path struct {
	Shapes []Shape
	Length float32

	starts []float32
}

func MakePath(shapes ...Shape) Path {
	p := Path{Shapes: shapes}
	for _, s := range shapes {
		p.starts = append(p.starts, p.Length)
		p.Length += s.Length()
	}
	return p
}

// PointAtDistance returns the point and heading at a given distance along
// the path. Distances beyond either end extend the first or last shape.
func (p *Path) PointAtDistance(d float32) ([2]float32, float32) {
	if len(p.Shapes) == 0 {
		return [2]float32{}, 0
	}
	for i, s := range p.Shapes {
		if d <= p.starts[i]+s.Length() || i == len(p.Shapes)-1 {
			local := d - p.starts[i]
			if s.Kind == ShapeArc && local > s.Length() {
				// Extend straight ahead rather than continuing around.
				h := s.EndHeading()
				return math.Add2f(s.P1, math.Scale2f(math.HeadingVector(h), local-s.Length())), h
			}
			return s.PointAt(local), s.HeadingAt(local)
		}
	}
	panic("unreachable")
}

// Project projects a point onto the path, returning the distance along
// the path, the signed cross-track offset (positive to the right) and the
// local path heading.
func (p *Path) Project(pt [2]float32) (dist, cross, heading float32) {
	best := float32(-1)
	for i, s := range p.Shapes {
		d := s.Distance(pt)
		if best < 0 || d < best {
			best = d
			along, c := s.Project(pt)
			along = math.Clamp(along, 0, s.Length())
			dist, cross, heading = p.starts[i]+along, c, s.HeadingAt(along)
		}
	}
	return
}

// Polyline returns a polyline approximation of the path for drawing. Arcs
// are sampled at approximately 2-degree intervals.
func (p *Path) Polyline() [][2]float32 {
	var pts [][2]float32
	for i, s := range p.Shapes {
		if i == 0 {
			pts = append(pts, s.P0)
		}
		if s.Kind == ShapeArc {
			n := max(1, int(math.Abs(s.Sweep)/2))
			for j := 1; j <= n; j++ {
				pts = append(pts, s.PointAt(s.Length()*float32(j)/float32(n)))
			}
		} else {
			pts = append(pts, s.P1)
		}
	}
	return pts
}
