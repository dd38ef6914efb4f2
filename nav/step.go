// nav/step.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/math"
)

// Step is a single flyable line or arc of a leg. A leg's steps are
// created once but their poses and shapes are recomputed on each update,
// starting from the end pose of the step before.
type Step struct {
	Leg   *Leg
	Index int // in the route's flat step array
	Slot  int // within the leg

	Begin, End Pose
	Shape      Shape

	// Runt steps are too short to fly; they are never current.
	Runt bool
	// Set by radar vector steps whose intercept is behind the aircraft.
	Behind bool
	// The step to continue with after this one instead of the following
	// one; -1 if none. Only the terminal hold loops.
	LoopTo int

	// Set by compute for the text; e.g. the hold entry being flown.
	note string

	compute func(s *Step, tc *TrackingContext)
	text    func(s *Step) string
}

func newStep(l *Leg, slot int, compute func(*Step, *TrackingContext), text func(*Step) string) *Step {
	return &Step{Leg: l, Slot: slot, LoopTo: -1, compute: compute, text: text}
}

func (s *Step) String() string {
	return fmt.Sprintf("%d: %s/%d %s", s.Index, s.Leg.Kind, s.Slot, s.Shape)
}

// Text returns a one-line description of the maneuver.
func (s *Step) Text() string {
	if s.text == nil {
		return s.Leg.Kind.String()
	}
	return s.text(s)
}

// IsLastOfLeg reports whether the step finishes its leg.
func (s *Step) IsLastOfLeg() bool {
	return s.Slot == len(s.Leg.Steps())-1
}

// Compute updates the step's shape and end pose from its begin pose.
func (s *Step) Compute(tc *TrackingContext) {
	s.Behind = false
	s.compute(s, tc)
	s.finish(tc.Tuning)
}

func (s *Step) finish(tun *Tuning) {
	s.End.P = s.Shape.P1
	if s.Shape.Length() == 0 {
		s.End.Heading = s.Begin.Heading
	} else {
		s.End.Heading = s.Shape.EndHeading()
	}
	s.End.Altitude = s.Begin.Altitude
	if s.IsLastOfLeg() && s.Leg.Altitude.IsSet() {
		s.End.Altitude = s.Leg.Altitude.TargetAltitude(s.Begin.Altitude)
	}
	s.Runt = s.Shape.Length() < tun.RuntThreshold
}

// safeCompute computes the step, recovering from any failure by leaving
// the step as a runt at its begin point so that the rest of the route is
// still computed. Failures are logged once per interval for each step.
func (s *Step) safeCompute(tc *TrackingContext, lg *log.Logger) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s: %v", s, r)
		}
		if err != nil {
			s.Shape = MakePoint(s.Begin.P)
			s.finish(tc.Tuning)
			s.Runt = true
			lg.ErrorLimited(fmt.Sprintf("step-%p", s), tc.Tuning.StepErrorInterval, "step compute failed",
				"step", s.Index, "leg", s.Leg.Raw, "error", err)
		}
	}()

	s.Compute(tc)
	if !s.Shape.IsFinite() || !math.IsFinite(s.End.Heading) {
		err = fmt.Errorf("%s: non-finite geometry", s)
	}
	return
}

// Progress returns how far along the step the given point is and its
// signed cross-track offset, positive to the right of the step.
func (s *Step) Progress(p [2]float32) (along, cross float32) {
	return s.Shape.Project(p)
}

// Remaining returns the distance left to fly on the step from p.
func (s *Step) Remaining(p [2]float32) float32 {
	along, _ := s.Shape.Project(p)
	return max(0, s.Shape.Length()-along)
}

///////////////////////////////////////////////////////////////////////////
// Text helpers

func (l *Leg) magCourse(h float32) string {
	return fmt.Sprintf("%03d°", math.CompassHeading(av.TrueToMagnetic(h, l.MagVar)))
}

func (l *Leg) altitudeSuffix() string {
	if l.Altitude.IsSet() {
		return " " + l.Altitude.String()
	}
	return ""
}

func fixStepText(s *Step) string {
	l := s.Leg
	if s.Runt {
		return fmt.Sprintf("%s %s%s", l.Kind, l.FixIdent(), l.altitudeSuffix())
	}
	return fmt.Sprintf("%s %s %s%s", l.Kind, l.FixIdent(), l.magCourse(s.Shape.EndHeading()), l.altitudeSuffix())
}

// formatDuration formats the time to fly distance nm at gs knots as m:ss.
func formatDuration(nm, gs float32) string {
	if gs <= 0 {
		return "-:--"
	}
	d := time.Duration(float64(nm/gs) * float64(time.Hour)).Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
