// nav/legs_arc.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"

	"github.com/cifpnav/cifpnav/math"
)

///////////////////////////////////////////////////////////////////////////
// AF

func initAFLeg(l *Leg, lc *legContext) error {
	if err := l.requireNavaid(); err != nil {
		return err
	}
	if !l.has("beg") {
		return fmt.Errorf("beg: %w", ErrMissingLegParameter)
	}
	if !l.has("end") {
		if l.Fix == nil {
			return fmt.Errorf("end: %w", ErrMissingLegParameter)
		}
		l.EndRadial = math.VectorHeading(math.Sub2f(l.FixP, l.NavaidP))
	}
	if l.arcRadius() <= 0 {
		return fmt.Errorf("dme: %w", ErrMissingLegParameter)
	}
	return nil
}

// arcRadius returns the DME distance of the arc, taken from the end fix
// if it isn't given.
func (l *Leg) arcRadius() float32 {
	if l.DME > 0 {
		return l.DME
	} else if l.Fix != nil && l.Navaid != nil {
		return math.Distance2f(l.NavaidP, l.FixP)
	}
	return 0
}

// arcSweep returns the signed sweep from the begin to the end radial. An
// explicit turn direction is followed even if it's the long way around;
// otherwise the arc turns the short way.
func (l *Leg) arcSweep() float32 {
	if sign := l.Turn.Sign(); sign != 0 {
		return sign * math.ArcOffset(l.BeginRadial, sign, l.EndRadial)
	}
	return math.Normalize180(l.EndRadial - l.BeginRadial)
}

// ArcShape returns the static shape of a DME arc leg.
func (l *Leg) ArcShape() Shape {
	return MakeArc(l.NavaidP, l.arcRadius(), l.BeginRadial, l.arcSweep())
}

func afLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, func(s *Step, tc *TrackingContext) {
		s.Shape = s.Leg.ArcShape()
	}, func(s *Step) string {
		l := s.Leg
		txt := fmt.Sprintf("Arc %c %.1f DME %s", s.Shape.Turn().Letter(), s.Shape.Radius, l.Navaid.Ident)
		if l.Fix != nil {
			txt += " to " + l.Fix.Ident
		}
		return txt + l.altitudeSuffix()
	})}
}

///////////////////////////////////////////////////////////////////////////
// RF

func initRFLeg(l *Leg, lc *legContext) error {
	if err := l.requireFix(); err != nil {
		return err
	}
	if l.Center == nil {
		return fmt.Errorf("ctr: %w", ErrMissingLegParameter)
	}
	if l.Turn.Sign() == 0 {
		return fmt.Errorf("td: %w", ErrMissingLegParameter)
	}
	if math.Distance2f(l.CenterP, l.FixP) == 0 {
		return fmt.Errorf("ctr: %w", ErrInvalidLegParameter)
	}
	return nil
}

func rfLegSteps(l *Leg) []*Step {
	return []*Step{newStep(l, 0, computeRF, func(s *Step) string {
		return fmt.Sprintf("RF %s arc %c %.1fnm%s", s.Leg.FixIdent(), s.Leg.Turn.Letter(), s.Shape.Radius,
			s.Leg.altitudeSuffix())
	})}
}

// computeRF flies the circle around the center from where the leg begins
// to the fix in the published direction.
func computeRF(s *Step, tc *TrackingContext) {
	l := s.Leg
	r := math.Distance2f(l.CenterP, l.FixP)
	sign := l.Turn.Sign()
	start := math.VectorHeading(math.Sub2f(s.Begin.P, l.CenterP))
	if s.Begin.P == l.CenterP {
		start = math.VectorHeading(math.Sub2f(l.FixP, l.CenterP))
	}
	end := math.VectorHeading(math.Sub2f(l.FixP, l.CenterP))
	sweep := math.ArcOffset(start, sign, end)
	if sweep > 359.5 {
		sweep = 0
	}
	s.Shape = MakeArc(l.CenterP, r, start, sign*sweep)
}
