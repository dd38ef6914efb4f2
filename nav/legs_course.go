// nav/legs_course.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/cifpnav/cifpnav/math"
)

// Straight legs: to a fix, along a course until something happens, and
// the turn-direct of missed approaches.

///////////////////////////////////////////////////////////////////////////
// IF / TF

func fixLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeDirectToFix, fixStepText)}
}

func computeDirectToFix(s *Step, tc *TrackingContext) {
	s.Shape = MakeLine(s.Begin.P, s.Leg.FixP)
}

///////////////////////////////////////////////////////////////////////////
// CF

func initCFLeg(l *Leg, lc *legContext) error {
	return l.requireFix()
}

func cfLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeCF, fixStepText)}
}

// computeCF flies the published course into the fix, starting from the
// point on the course line abeam the begin pose. If that point is
// already past the fix, there's nothing left to fly.
func computeCF(s *Step, tc *TrackingContext) {
	l := s.Leg
	if !l.HasCourse {
		computeDirectToFix(s, tc)
		return
	}
	a := math.AlongTrack(s.Begin.P, l.FixP, l.Course)
	if a >= 0 {
		s.Shape = MakePoint(l.FixP)
	} else {
		start := math.Add2f(l.FixP, math.Scale2f(math.HeadingVector(l.Course), a))
		s.Shape = MakeLine(start, l.FixP)
	}
}

///////////////////////////////////////////////////////////////////////////
// CA

func initCALeg(l *Leg, lc *legContext) error {
	if err := l.requireCourse(); err != nil {
		return err
	}
	if !l.Altitude.IsSet() {
		return fmt.Errorf("a: %w", ErrMissingLegParameter)
	}
	return nil
}

func caLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeCA, func(s *Step) string {
		return fmt.Sprintf("CA %s to %.0fft", s.Leg.magCourse(s.Leg.Course), caTarget(s.Leg))
	})}
}

func caTarget(l *Leg) float32 {
	if l.Altitude.Range[0] != 0 {
		return l.Altitude.Range[0]
	}
	return l.Altitude.Range[1]
}

// computeCA estimates where the target altitude will be reached. Until
// the step is current the default climb gradient is assumed; after that
// the distance flown per foot gained so far is used, never going further
// than the initial estimate. The end is pushed out a bit so that the
// turn that follows isn't started early.
func computeCA(s *Step, tc *TrackingContext) {
	l := s.Leg
	tun := tc.Tuning
	target := caTarget(l)
	estimate := max(target-s.Begin.Altitude, 0) / tun.ClimbGradient
	d := estimate

	if tc.Current == s.Index {
		flown := math.AlongTrack(tc.Position, s.Begin.P, l.Course)
		gained := tc.Altitude - tc.StepStart.Altitude
		if gained > 50 && flown > 0.1 {
			ratio := flown / gained
			d = min(flown+max(target-tc.Altitude, 0)*ratio, estimate)
		}
	}

	d += tun.CAExtension
	s.Shape = MakeLine(s.Begin.P, math.Add2f(s.Begin.P, math.Scale2f(math.HeadingVector(l.Course), d)))
}

///////////////////////////////////////////////////////////////////////////
// CD

func initCDLeg(l *Leg, lc *legContext) error {
	if err := l.requireCourse(); err != nil {
		return err
	}
	if err := l.requireNavaid(); err != nil {
		return err
	}
	if l.DME <= 0 {
		return fmt.Errorf("dme: %w", ErrMissingLegParameter)
	}
	return nil
}

func cdLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeCD, func(s *Step) string {
		return fmt.Sprintf("CD %s to %.1f DME %s", s.Leg.magCourse(s.Leg.Course), s.Leg.DME, s.Leg.Navaid.Ident)
	})}
}

// computeCD flies the course until the first crossing of the DME circle
// ahead.
func computeCD(s *Step, tc *TrackingContext) {
	l := s.Leg
	dir := math.HeadingVector(l.Course)
	t := float32(0)
	if t0, t1, ok := math.LineCircleIntersect(s.Begin.P, dir, l.NavaidP, l.DME); ok {
		if t0 > 0 {
			t = t0
		} else if t1 > 0 {
			t = t1
		}
	}
	s.Shape = MakeLine(s.Begin.P, math.Add2f(s.Begin.P, math.Scale2f(dir, t)))
}

///////////////////////////////////////////////////////////////////////////
// CR

func initCRLeg(l *Leg, lc *legContext) error {
	if err := l.requireCourse(); err != nil {
		return err
	}
	if err := l.requireNavaid(); err != nil {
		return err
	}
	if !l.has("rad") {
		return fmt.Errorf("rad: %w", ErrMissingLegParameter)
	}
	return nil
}

func crLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeCR, func(s *Step) string {
		return fmt.Sprintf("CR %s to %s R-%03d", s.Leg.magCourse(s.Leg.Course), s.Leg.Navaid.Ident,
			math.CompassHeading(s.Leg.publishedRadial()))
	})}
}

func (l *Leg) publishedRadial() float32 {
	if v, ok, _ := l.floatParam("rad"); ok {
		return v
	}
	return 0
}

func computeCR(s *Step, tc *TrackingContext) {
	l := s.Leg
	end := s.Begin.P
	if p, t, ok := math.RayLineIntersect(s.Begin.P, l.Course, l.NavaidP, l.Radial); ok && t > 0 &&
		math.AlongTrack(p, l.NavaidP, l.Radial) >= 0 {
		end = p
	}
	s.Shape = MakeLine(s.Begin.P, end)
}

///////////////////////////////////////////////////////////////////////////
// CI

func initCILeg(l *Leg, lc *legContext) error {
	return l.requireCourse()
}

// linkCILeg finds the leg to intercept: the next one in the route.
func linkCILeg(l *Leg, legs []*Leg, idx int) error {
	if idx+1 >= len(legs) {
		return ErrNoInterceptLeg
	}
	next := legs[idx+1]
	switch next.Kind {
	case LegAF, LegRF:
	case LegCF, LegTF, LegIF, LegFC, LegCR, LegCD, LegCA:
		if next.Fix == nil && !next.HasCourse {
			return fmt.Errorf("%s: %w", next, ErrNoInterceptLeg)
		}
	default:
		if next.Fix == nil {
			return fmt.Errorf("%s: %w", next, ErrNoInterceptLeg)
		}
	}
	l.next = next
	return nil
}

func ciLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeCI, func(s *Step) string {
		return fmt.Sprintf("CI %s intercept %s", s.Leg.magCourse(s.Leg.Course), s.Leg.next)
	})}
}

// interceptTarget returns the circle (radius > 0) or line of the leg to
// be intercepted.
func (l *Leg) interceptTarget() (p [2]float32, hdg float32, radius float32) {
	switch l.Kind {
	case LegAF:
		return l.NavaidP, 0, l.arcRadius()
	case LegRF:
		return l.CenterP, 0, math.Distance2f(l.CenterP, l.FixP)
	}
	if l.HasCourse {
		if l.Fix != nil {
			return l.FixP, l.Course, 0
		}
		return l.NavaidP, l.Course, 0
	}
	return l.FixP, 0, 0
}

func computeCI(s *Step, tc *TrackingContext) {
	l := s.Leg
	dir := math.HeadingVector(l.Course)
	end := s.Begin.P

	p, hdg, r := l.next.interceptTarget()
	if r > 0 {
		if t0, t1, ok := math.LineCircleIntersect(s.Begin.P, dir, p, r); ok {
			if t0 > 0 {
				end = math.Add2f(s.Begin.P, math.Scale2f(dir, t0))
			} else if t1 > 0 {
				end = math.Add2f(s.Begin.P, math.Scale2f(dir, t1))
			}
		}
	} else if l.next.HasCourse {
		if x, t, ok := math.RayLineIntersect(s.Begin.P, l.Course, p, hdg); ok && t > 0 {
			end = x
		}
	} else {
		// No course to intercept; fly abeam the next fix.
		if a := math.AlongTrack(p, s.Begin.P, l.Course); a > 0 {
			end = math.Add2f(s.Begin.P, math.Scale2f(dir, a))
		}
	}
	s.Shape = MakeLine(s.Begin.P, end)
}

///////////////////////////////////////////////////////////////////////////
// FC

func initFCLeg(l *Leg, lc *legContext) error {
	if err := l.requireCourse(); err != nil {
		return err
	}
	if l.Distance <= 0 {
		return fmt.Errorf("nm: %w", ErrMissingLegParameter)
	}
	return nil
}

func fcLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeFC, func(s *Step) string {
		return fmt.Sprintf("FC %s %.1fnm", s.Leg.magCourse(s.Leg.Course), s.Leg.Distance)
	})}
}

// computeFC flies the course for the leg's distance, measured from its
// fix if it has one and otherwise from where the leg begins.
func computeFC(s *Step, tc *TrackingContext) {
	l := s.Leg
	origin := s.Begin.P
	if l.Fix != nil {
		origin = l.FixP
	}
	end := math.Add2f(origin, math.Scale2f(math.HeadingVector(l.Course), l.Distance))
	if math.AlongTrack(end, s.Begin.P, l.Course) <= 0 {
		s.Shape = MakePoint(s.Begin.P)
	} else {
		s.Shape = MakeLine(s.Begin.P, end)
	}
}

///////////////////////////////////////////////////////////////////////////
// TD

// Turn-direct legs are a standard-rate turn from the begin pose until
// the fix is straight ahead, followed by the line to it.
func tdLegSteps(l *Leg) []*Step {
	return []*Step{
		newStep(l, 0, computeTDTurn, func(s *Step) string {
			return fmt.Sprintf("Turn %c direct %s", s.Shape.Turn().Letter(), s.Leg.FixIdent())
		}),
		newStep(l, 1, computeDirectToFix, func(s *Step) string {
			return fmt.Sprintf("Direct %s %s%s", s.Leg.FixIdent(), s.Leg.magCourse(s.Shape.StartHeading()),
				s.Leg.altitudeSuffix())
		}),
	}
}

func computeTDTurn(s *Step, tc *TrackingContext) {
	l := s.Leg
	s.Shape = MakePoint(s.Begin.P)

	brg := math.VectorHeading(math.Sub2f(l.FixP, s.Begin.P))
	delta := math.HeadingSignedTurn(s.Begin.Heading, brg)
	sign := l.Turn.Sign()
	if sign == 0 {
		sign = math.Sign(delta)
	}
	if math.Abs(delta) < tc.Tuning.FilletMinTurn && math.Sign(delta) == sign {
		return // already headed there
	}

	r := tc.TurnRadius
	center := math.Add2f(s.Begin.P, math.Scale2f(math.PerpRight(math.HeadingVector(s.Begin.Heading)), sign*r))
	p0, _, _, ok := math.CircleTangent(center, r, sign > 0, l.FixP, 0, sign > 0)
	if !ok {
		// The fix is inside the turn circle; fly straight to it.
		return
	}
	start := math.VectorHeading(math.Sub2f(s.Begin.P, center))
	sweep := math.ArcOffset(start, sign, math.VectorHeading(math.Sub2f(p0, center)))
	s.Shape = MakeArc(center, r, start, sign*sweep)
}
