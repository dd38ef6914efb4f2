// nav/legs_pt.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/cifpnav/cifpnav/math"
)

// Procedure turns are flown as: to the fix, outbound on the reciprocal
// of the inbound course, a 45 degree turn away for a fixed time, a 180
// degree turn back, and the 45 degree leg back to intercept the inbound
// course. The inbound course (mc) is given and td is the direction of
// the initial 45 degree turn.

const (
	ptSlotToFix = iota
	ptSlotOutbound
	ptSlot45
	ptSlotTurn
	ptSlotIntercept
)

func initPILeg(l *Leg, lc *legContext) error {
	if err := l.requireFix(); err != nil {
		return err
	}
	if err := l.requireCourse(); err != nil {
		return err
	}
	if l.Turn.Sign() == 0 {
		return fmt.Errorf("td: %w", ErrMissingLegParameter)
	}
	return nil
}

// linkFAF finds the final approach fix following the leg, if there is
// one, along with the leg after it.
func linkFAF(l *Leg, legs []*Leg, idx int) error {
	for i := idx; i < len(legs); i++ {
		if legs[i].FAF {
			l.faf = legs[i]
			if i+1 < len(legs) {
				l.fafNext = legs[i+1]
			}
			return nil
		}
	}
	if l.Kind == LegRV {
		return ErrNoFAF
	}
	return nil
}

func piLegSteps(l *Leg) []*Step {
	ho := math.OppositeHeading(l.Course)
	h45 := math.NormalizeHeading(ho + l.Turn.Sign()*45)
	hin45 := math.NormalizeHeading(l.Course + l.Turn.Sign()*45)

	return []*Step{
		newStep(l, ptSlotToFix, computeDirectToFix, func(s *Step) string {
			return "PT " + s.Leg.FixIdent()
		}),
		newStep(l, ptSlotOutbound, computePTOutbound, func(s *Step) string {
			return fmt.Sprintf("PT %s outbound %s", s.Leg.FixIdent(), s.Leg.magCourse(ho))
		}),
		newStep(l, ptSlot45, computePT45, func(s *Step) string {
			return fmt.Sprintf("PT %c %s", s.Leg.Turn.Letter(), s.Leg.magCourse(h45))
		}),
		newStep(l, ptSlotTurn, computePTTurn, func(s *Step) string {
			return fmt.Sprintf("PT turn %c %s", s.Leg.Turn.Opposite().Letter(), s.Leg.magCourse(hin45))
		}),
		newStep(l, ptSlotIntercept, computePTIntercept, func(s *Step) string {
			return fmt.Sprintf("PT inbound %s intercept %s%s", s.Leg.magCourse(hin45), s.Leg.magCourse(s.Leg.Course),
				s.Leg.altitudeSuffix())
		}),
	}
}

// computePTOutbound flies outbound for a minute past the fix or past the
// final approach fix, whichever is farther, so that the turn is complete
// before the final approach fix.
func computePTOutbound(s *Step, tc *TrackingContext) {
	l := s.Leg
	ho := math.OppositeHeading(l.Course)
	length := tc.GroundSpeed / 60
	if l.faf != nil && l.faf != l && l.faf.Fix != nil {
		length += max(0, math.AlongTrack(l.faf.FixP, l.FixP, ho))
	}
	length = max(length, 1)
	if l.Distance > 1 {
		length = min(length, l.Distance)
	}
	s.Shape = MakeLine(l.FixP, math.Add2f(l.FixP, math.Scale2f(math.HeadingVector(ho), length)))
}

func computePT45(s *Step, tc *TrackingContext) {
	l := s.Leg
	h := math.NormalizeHeading(math.OppositeHeading(l.Course) + l.Turn.Sign()*45)
	length := tc.GroundSpeed / 60 * tc.Tuning.ProcedureTurnMinutes
	s.Shape = MakeLine(s.Begin.P, math.Add2f(s.Begin.P, math.Scale2f(math.HeadingVector(h), length)))
}

func computePTTurn(s *Step, tc *TrackingContext) {
	l := s.Leg
	sign := -l.Turn.Sign()
	h := math.NormalizeHeading(math.OppositeHeading(l.Course) + l.Turn.Sign()*45)
	r := tc.TurnRadius
	center := math.Add2f(s.Begin.P, math.Scale2f(math.PerpRight(math.HeadingVector(h)), sign*r))
	start := math.VectorHeading(math.Sub2f(s.Begin.P, center))
	s.Shape = MakeArc(center, r, start, sign*180)
}

func computePTIntercept(s *Step, tc *TrackingContext) {
	l := s.Leg
	h := math.NormalizeHeading(l.Course + l.Turn.Sign()*45)
	if x, t, ok := math.RayLineIntersect(s.Begin.P, h, l.FixP, l.Course); ok && t > 0 {
		s.Shape = MakeLine(s.Begin.P, x)
	} else {
		s.Shape = MakePoint(s.Begin.P)
	}
}
