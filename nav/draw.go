// nav/draw.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"github.com/cifpnav/cifpnav/math"
)

// DrawList is the route ahead as a flat list of primitives for a chart
// renderer. A line is stored as 4 values, x0 y0 x1 y1. An arc is stored
// as 6 values: a NaN marker followed by cx cy radius start sweep, where
// the angles are in degrees and a point at angle a is center +
// radius*(sin a, cos a); positive sweeps are clockwise in the plane.
//
// The primitives are ordered current step (including the turn onto the
// next one), upcoming steps, and the missed approach; each band is a
// [start, end) range of offsets into Data.
type DrawList struct {
	Data     []float32
	Current  [2]int
	Upcoming [2]int
	Missed   [2]int
}

func (d *DrawList) AddLine(p0, p1 [2]float32) {
	d.Data = append(d.Data, p0[0], p0[1], p1[0], p1[1])
}

func (d *DrawList) AddArc(center [2]float32, radius, start, sweep float32) {
	d.Data = append(d.Data, math.NaN(), center[0], center[1], radius, start, sweep)
}

func (d *DrawList) AddShape(s Shape) {
	if s.Kind == ShapeArc {
		if s.Sweep != 0 {
			d.AddArc(s.Center, s.Radius, s.Start, s.Sweep)
		}
	} else if s.Length() > 0 {
		d.AddLine(s.P0, s.P1)
	}
}

// Visit calls the given functions for each primitive in order, passing
// the offset of the primitive in Data.
func (d DrawList) Visit(line func(offset int, p0, p1 [2]float32),
	arc func(offset int, center [2]float32, radius, start, sweep float32)) {
	for i := 0; i < len(d.Data); {
		if math.IsNaN(d.Data[i]) {
			arc(i, [2]float32{d.Data[i+1], d.Data[i+2]}, d.Data[i+3], d.Data[i+4], d.Data[i+5])
			i += 6
		} else {
			line(i, [2]float32{d.Data[i], d.Data[i+1]}, [2]float32{d.Data[i+2], d.Data[i+3]})
			i += 4
		}
	}
}

// Transform returns the draw list with m applied, e.g. to go from nm in
// the approach plane to chart pixels. Arc angles are mapped so that the
// convention above holds in the transformed space.
func (d DrawList) Transform(m math.Matrix3) DrawList {
	out := DrawList{Data: make([]float32, 0, len(d.Data)), Current: d.Current, Upcoming: d.Upcoming,
		Missed: d.Missed}
	scale := m.LinearScale()
	mirrors := m.Mirrors()
	d.Visit(func(_ int, p0, p1 [2]float32) {
		out.AddLine(m.TransformPoint(p0), m.TransformPoint(p1))
	}, func(_ int, c [2]float32, r, start, sweep float32) {
		v := m.TransformVector(math.HeadingVector(start))
		if mirrors {
			sweep = -sweep
		}
		out.AddArc(m.TransformPoint(c), r*scale, math.VectorHeading(v), sweep)
	})
	return out
}

// buildDrawList draws the route from the current step on. Runt steps
// aren't drawn; an HM hold is drawn as its full racetrack.
func buildDrawList(r *Route, tc *TrackingContext, fillet FilletArc, haveFillet bool) DrawList {
	var d DrawList
	cur := tc.Current

	d.Current[0] = len(d.Data)
	if s := r.Steps[cur]; !s.Runt && !s.Behind {
		if haveFillet {
			along, _ := s.Shape.Project(fillet.P0)
			d.AddShape(trimShape(s.Shape, along))
			d.AddShape(fillet.Shape())
		} else {
			d.AddShape(s.Shape)
		}
	}
	d.Current[1] = len(d.Data)

	d.Upcoming[0] = len(d.Data)
	for i := cur + 1; i < r.MissedStart; i++ {
		if s := r.Steps[i]; !s.Runt {
			d.AddShape(s.Shape)
		}
	}
	d.Upcoming[1] = len(d.Data)

	d.Missed[0] = len(d.Data)
	ovals := make(map[*Leg]bool)
	drawOval := func(l *Leg) {
		if l.Kind == LegHM && !ovals[l] {
			ovals[l] = true
			for _, sh := range l.HoldOval(tc) {
				d.AddShape(sh)
			}
		}
	}
	drawOval(r.Steps[cur].Leg)
	for i := max(cur+1, r.MissedStart); i < len(r.Steps); i++ {
		s := r.Steps[i]
		drawOval(s.Leg)
		if s.Runt || (s.Leg.Kind == LegHM && s.Slot >= holdSlotFarTurn) {
			continue
		}
		d.AddShape(s.Shape)
	}
	d.Missed[1] = len(d.Data)

	return d
}

// trimShape returns the part of a line up to the given distance along
// it; arcs are returned as they are.
func trimShape(s Shape, along float32) Shape {
	if s.Kind != ShapeLine || along >= s.Length() {
		return s
	}
	along = max(along, 0)
	return MakeLine(s.P0, s.PointAt(along))
}
