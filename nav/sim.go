// nav/sim.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

// Simulator flies an aircraft along the route that a tracker is
// following: it steers toward a point a little way ahead on the path
// with turns limited to standard rate. It is used to exercise the
// tracker from the command line and in tests.
type Simulator struct {
	Position    [2]float32 // nm in the approach plane
	Heading     float32    // true
	Altitude    float32
	GroundSpeed float32
	Time        time.Time

	// Climb or descent rate toward the step's altitude, feet per minute.
	VerticalRate float32

	Projector av.Projector
	// Noise, if set, returns a position error in nm for each sample.
	Noise func() [2]float32
}

// Sample returns the GPS report for the aircraft's current state.
func (sim *Simulator) Sample() av.PositionSample {
	p := sim.Position
	if sim.Noise != nil {
		p = math.Add2f(p, sim.Noise())
	}
	return av.PositionSample{
		Time:        sim.Time,
		Position:    sim.Projector.Unproject(p),
		Altitude:    sim.Altitude,
		Track:       sim.Heading,
		GroundSpeed: sim.GroundSpeed,
	}
}

// Fly advances the aircraft by dt following the route from the given
// frame.
func (sim *Simulator) Fly(r *Route, f Frame, dt time.Duration) {
	secs := float32(dt.Seconds())
	path := pathAhead(r, f)

	if len(path.Shapes) > 0 {
		radius := math.StandardTurnRadius(sim.GroundSpeed)
		dist, _, _ := path.Project(sim.Position)
		target, _ := path.PointAtDistance(dist + max(radius/2, sim.GroundSpeed/3600*5))

		want := math.VectorHeading(math.Sub2f(target, sim.Position))
		turn := math.HeadingSignedTurn(sim.Heading, want)
		limit := float32(math.StandardTurnRate) * secs
		sim.Heading = math.NormalizeHeading(sim.Heading + math.Clamp(turn, -limit, limit))

		if f.Current >= 0 && f.Current < len(r.Steps) {
			alt := r.Steps[f.Current].End.Altitude
			rate := sim.VerticalRate
			if rate == 0 {
				rate = 1000
			}
			dz := math.Clamp(alt-sim.Altitude, -rate*secs/60, rate*secs/60)
			sim.Altitude += dz
		}
	}

	d := sim.GroundSpeed / 3600 * secs
	sim.Position = math.Add2f(sim.Position, math.Scale2f(math.HeadingVector(sim.Heading), d))
	sim.Time = sim.Time.Add(dt)
}

// pathAhead returns the current step, the turn onto the next one and a
// few steps after that.
func pathAhead(r *Route, f Frame) Path {
	if f.Current < 0 || f.Current >= len(r.Steps) {
		return Path{}
	}
	cur := r.Steps[f.Current]
	var shapes []Shape
	nextStart := -1

	if f.HaveFillet {
		along, _ := cur.Shape.Project(f.Fillet.P0)
		shapes = append(shapes, trimShape(cur.Shape, along), f.Fillet.Shape())
	} else if cur.Shape.Length() > 0 {
		shapes = append(shapes, cur.Shape)
	}

	next := f.Current + 1
	if cur.LoopTo >= 0 {
		next = cur.LoopTo
	}
	for i, n := next, 0; i < len(r.Steps) && n < 4; i++ {
		s := r.Steps[i]
		if s.Runt {
			continue
		}
		sh := s.Shape
		if nextStart == -1 {
			nextStart = i
			if f.HaveFillet && sh.Kind == ShapeLine {
				sh = MakeLine(f.Fillet.P1, sh.P1)
			}
		}
		shapes = append(shapes, sh)
		n++
		if s.LoopTo >= 0 {
			break
		}
	}
	return MakePath(shapes...)
}
