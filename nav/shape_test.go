// nav/shape_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

func TestLineShape(t *testing.T) {
	l := MakeLine([2]float32{0, 0}, [2]float32{0, 10})
	if !near(l.Length(), 10, 1e-4) {
		t.Errorf("length %f", l.Length())
	}
	if h := l.StartHeading(); !near(h, 0, 1e-3) {
		t.Errorf("heading %f", h)
	}
	if p := l.PointAt(5); !near2(p, [2]float32{0, 5}, 1e-4) {
		t.Errorf("PointAt(5) = %v", p)
	}

	for _, test := range []struct {
		p            [2]float32
		along, cross float32
	}{
		{p: [2]float32{1, 5}, along: 5, cross: 1},
		{p: [2]float32{-2, 3}, along: 3, cross: -2},
		{p: [2]float32{0, -4}, along: -4, cross: 0},
		{p: [2]float32{0.5, 12}, along: 12, cross: 0.5},
	} {
		along, cross := l.Project(test.p)
		if !near(along, test.along, 1e-4) || !near(cross, test.cross, 1e-4) {
			t.Errorf("Project(%v) = %f, %f, expected %f, %f", test.p, along, cross, test.along, test.cross)
		}
	}

	pt := MakePoint([2]float32{3, 4})
	if pt.Length() != 0 || pt.StartHeading() != 0 {
		t.Errorf("point shape %s: length %f heading %f", pt, pt.Length(), pt.StartHeading())
	}
	if along, cross := pt.Project([2]float32{5, 5}); along != 0 || cross != 0 {
		t.Errorf("point shape projection %f %f", along, cross)
	}
}

func TestArcShape(t *testing.T) {
	// Clockwise quarter circle from due west of the center to due north.
	a := MakeArc([2]float32{0, 0}, 10, 270, 90)
	if !near2(a.P0, [2]float32{-10, 0}, 1e-3) || !near2(a.P1, [2]float32{0, 10}, 1e-3) {
		t.Errorf("arc endpoints %v %v", a.P0, a.P1)
	}
	if !near(a.Length(), 10*pi/2, 1e-3) {
		t.Errorf("arc length %f", a.Length())
	}
	if a.Turn() != av.TurnRight {
		t.Errorf("expected right turn, got %s", a.Turn())
	}
	if h := a.StartHeading(); !near(math.AngleDiffU(h), 0, 0.01) {
		t.Errorf("start heading %f", h)
	}
	if h := a.EndHeading(); !near(h, 90, 0.01) {
		t.Errorf("end heading %f", h)
	}

	for _, test := range []struct {
		p            [2]float32
		along, cross float32
	}{
		{p: [2]float32{-9, 0}, along: 0, cross: 1},
		{p: math.Scale2f(math.HeadingVector(315), 12), along: 10 * pi / 4, cross: -2},
		{p: [2]float32{0, 10}, along: 10 * pi / 2, cross: 0},
		// Past the end of the arc
		{p: math.Scale2f(math.HeadingVector(30), 10), along: 10 * pi / 2 * 4 / 3, cross: 0},
		// Before the start
		{p: math.Scale2f(math.HeadingVector(240), 10), along: -10 * pi / 6, cross: 0},
	} {
		along, cross := a.Project(test.p)
		if !near(along, test.along, 0.01) || !near(cross, test.cross, 0.01) {
			t.Errorf("Project(%v) = %f, %f, expected %f, %f", test.p, along, cross, test.along, test.cross)
		}
	}

	// The same quarter circle flown counterclockwise, from the north
	// back to the west.
	ccw := MakeArc([2]float32{0, 0}, 10, 0, -90)
	if ccw.Turn() != av.TurnLeft {
		t.Errorf("expected left turn, got %s", ccw.Turn())
	}
	if h := ccw.StartHeading(); !near(h, 270, 0.01) {
		t.Errorf("start heading %f", h)
	}
	if !near2(ccw.P1, [2]float32{-10, 0}, 1e-3) {
		t.Errorf("end point %v", ccw.P1)
	}
	if _, cross := ccw.Project([2]float32{0, 9}); !near(cross, -1, 1e-3) {
		t.Errorf("inside of a left turn should be to the left: %f", cross)
	}
	if p := ccw.PointAt(ccw.Length() / 2); !near2(p, math.Scale2f(math.HeadingVector(315), 10), 1e-3) {
		t.Errorf("midpoint %v", p)
	}
}

func TestPath(t *testing.T) {
	line := MakeLine([2]float32{0, 0}, [2]float32{0, 10})
	arc := MakeArc([2]float32{10, 10}, 10, 270, 90)
	p := MakePath(line, arc)

	if !near(p.Length, 10+10*pi/2, 1e-3) {
		t.Errorf("path length %f", p.Length)
	}
	if pt, h := p.PointAtDistance(5); !near2(pt, [2]float32{0, 5}, 1e-4) || !near(h, 0, 1e-3) {
		t.Errorf("PointAtDistance(5) = %v, %f", pt, h)
	}
	if pt, h := p.PointAtDistance(p.Length + 1); !near2(pt, [2]float32{11, 20}, 1e-2) || !near(h, 90, 0.01) {
		t.Errorf("past the end: %v, %f", pt, h)
	}
	if d, cross, h := p.Project([2]float32{1, 5}); !near(d, 5, 1e-3) || !near(cross, 1, 1e-3) || !near(h, 0, 1e-3) {
		t.Errorf("Project = %f %f %f", d, cross, h)
	}

	pts := p.Polyline()
	if len(pts) != 2+45 {
		t.Errorf("expected %d polyline points, got %d", 2+45, len(pts))
	}
	if !near2(pts[len(pts)-1], arc.P1, 1e-3) {
		t.Errorf("polyline ends at %v", pts[len(pts)-1])
	}
}
