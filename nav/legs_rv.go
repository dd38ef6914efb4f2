// nav/legs_rv.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/cifpnav/cifpnav/math"
)

// Radar vector legs run from the aircraft along its track, or along the
// course the pilot has dialed in, to the final approach course. The line
// follows the aircraft until it is about to turn onto final, at which
// point it is frozen so that the turn can be flown against it.

type rvState struct {
	frozen bool
	shape  Shape
}

// NewRadarVectorLeg returns the synthetic leg of a "(rv)" transition.
func NewRadarVectorLeg(magvar float32) *Leg {
	return &Leg{Kind: LegRV, Raw: "RV", Params: make(map[string]string), MagVar: magvar}
}

// finalCourse returns the course through the final approach fix.
func (l *Leg) finalCourse() float32 {
	if l.faf.HasCourse {
		return l.faf.Course
	}
	if n := l.fafNext; n != nil && n.Fix != nil && n.FixP != l.faf.FixP {
		return math.VectorHeading(math.Sub2f(n.FixP, l.faf.FixP))
	}
	return l.faf.Course
}

func rvLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeRV, func(s *Step) string {
		if s.Behind {
			return "Vectors: final course is behind"
		}
		return fmt.Sprintf("Vectors %s intercept %s", s.Leg.magCourse(s.Shape.StartHeading()),
			s.Leg.magCourse(s.Leg.finalCourse()))
	})}
}

func computeRV(s *Step, tc *TrackingContext) {
	l := s.Leg
	if tc.rv.frozen {
		s.Shape = tc.rv.shape
		return
	}

	hdg := tc.Track
	if tc.HaveDialedCourse {
		hdg = tc.DialedCourse
	}
	s.Begin = Pose{P: tc.Position, Heading: hdg, Altitude: tc.Altitude}

	course := l.finalCourse()
	x, t, ok := math.RayLineIntersect(tc.Position, hdg, l.faf.FixP, course)
	if !ok || t < 0 {
		s.Behind = true
		s.Shape = MakePoint(tc.Position)
		return
	}
	s.Shape = MakeLine(tc.Position, x)

	if tc.Current == s.Index {
		delta := math.Abs(math.HeadingSignedTurn(hdg, course))
		lead := tc.TurnRadius * math.Tan(math.Radians(min(delta, tc.Tuning.FilletMaxTurn)/2))
		if t <= lead {
			NavLog(l.approachId(), tc.Time, NavLogState, "vectors frozen %.2fnm from final", t)
			tc.rv = rvState{frozen: true, shape: s.Shape}
		}
	}
}
