// nav/guidance.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/cifpnav/cifpnav/math"
)

type GuidanceMode int

const (
	GuidanceNone GuidanceMode = iota
	GuidanceCourse
	GuidanceCourseGlideslope
)

func (m GuidanceMode) String() string {
	return [...]string{"none", "course", "course+glideslope"}[m]
}

// Guidance is what a navigation display shows for the current step.
type Guidance struct {
	Mode GuidanceMode

	// Deviation is the cross-track error in nm, positive when the course
	// is to the right of the aircraft; Needle is the deviation scaled to
	// [-1,1] by FullScale.
	Deviation float32
	Needle    float32
	FullScale float32

	// Glideslope is the angular error in degrees, positive when the
	// aircraft is above the glide path.
	Glideslope       float32
	GlideslopeNeedle float32

	// Distance to the fix that ends the current leg.
	DistanceToFix float32
	HaveDistance  bool

	// Set when the final course is behind a vectored aircraft; there is
	// no guidance then.
	Behind bool

	Status string
}

const feetPerNM = 6076.12

func computeGuidance(r *Route, tc *TrackingContext, cur *Step, nt NextTurn, haveTurn bool) Guidance {
	tun := tc.Tuning
	if cur.Behind {
		return Guidance{Behind: true, Status: cur.Text()}
	}

	g := Guidance{Mode: GuidanceCourse, FullScale: tun.FullScaleEnroute}
	if cur.Index > r.FAFStep && r.FAFStep != -1 && cur.Index < r.MissedStart {
		g.FullScale = tun.FullScaleFinal
	}
	_, cross := cur.Progress(tc.Position)
	g.Deviation = -cross
	g.Needle = math.Clamp(g.Deviation/g.FullScale, -1, 1)

	g.DistanceToFix, g.HaveDistance = distanceToLegEnd(r, cur, tc.Position)

	if gs, ok := glideslopeDeviation(r, tc, cur); ok {
		g.Mode = GuidanceCourseGlideslope
		g.Glideslope = gs
		g.GlideslopeNeedle = math.Clamp(gs/tun.GlideslopeFullScale, -1, 1)
	}

	g.Status = statusLine(tc, cur, g, nt, haveTurn)
	return g
}

// distanceToLegEnd returns the distance along the remaining steps of the
// current leg.
func distanceToLegEnd(r *Route, cur *Step, p [2]float32) (float32, bool) {
	if _, _, ok := cur.Leg.EndFix(); !ok {
		return 0, false
	}
	d := cur.Remaining(p)
	for i := cur.Index + 1; i < len(r.Steps) && r.Steps[i].Leg == cur.Leg; i++ {
		d += r.Steps[i].Shape.Length()
	}
	return d, true
}

// glideslopeDeviation compares the aircraft's angle above the runway
// threshold with the published glide path angle. It is only computed for
// approaches with vertical guidance and only between the final approach
// fix leg and the missed approach.
func glideslopeDeviation(r *Route, tc *TrackingContext, cur *Step) (float32, bool) {
	gp := r.GlidePath
	if gp == nil || !r.Approach.Type.HasVerticalGuidance() || cur.Leg.Missed {
		return 0, false
	}
	if r.FAFStep == -1 || cur.Index < r.FAFStep || cur.Index >= r.MissedStart {
		return 0, false
	}

	d := math.Distance2f(tc.Position, gp.FixP)
	if d < 0.05 {
		return 0, false
	}
	height := tc.Altitude - r.Approach.Elevation - gp.TCH
	angle := math.Degrees(math.Atan(height / (d * feetPerNM)))
	dev := angle - gp.GPA
	if !math.IsFinite(dev) {
		return 0, false
	}
	return dev, true
}

// statusLine gives the turn to make when one is coming up shortly and
// otherwise the step along with the distance and time remaining.
func statusLine(tc *TrackingContext, cur *Step, g Guidance, nt NextTurn, haveTurn bool) string {
	l := cur.Leg
	if haveTurn {
		secs := nt.Distance / tc.GroundSpeed * 3600
		if secs <= tc.Tuning.TurnWarningSeconds {
			if nt.Distance <= 0 {
				return fmt.Sprintf("Turn %s %s", dirWord(nt), l.magCourse(nt.Course))
			}
			return fmt.Sprintf("Turn %s %s in %.0fs", dirWord(nt), l.magCourse(nt.Course), secs)
		}
		return fmt.Sprintf("%s, turn %c in %.1fnm %s", cur.Text(), nt.Dir.Letter(), nt.Distance,
			formatDuration(nt.Distance, tc.GroundSpeed))
	}
	if g.HaveDistance {
		return fmt.Sprintf("%s %.1fnm %s", cur.Text(), g.DistanceToFix, formatDuration(g.DistanceToFix, tc.GroundSpeed))
	}
	return cur.Text()
}

func dirWord(nt NextTurn) string {
	if nt.Dir.Sign() < 0 {
		return "left"
	}
	return "right"
}
