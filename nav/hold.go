// nav/hold.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"strings"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

// Holds are flown as a fixed sequence of step slots. The entry is built
// by planHold as a chain of tangent lines and arcs that fills the entry
// slots and the far turn; unused entry slots are left empty. HM holds
// continue around the standard oval indefinitely.
const (
	holdSlotToFix = iota
	holdSlotEntry0
	holdSlotEntry1
	holdSlotEntry2
	holdSlotEntry3
	holdSlotEntry4
	holdSlotFarTurn
	holdSlotInbound
	holdSlotNearTurn
	holdSlotOutbound

	holdEntrySlots = holdSlotFarTurn - holdSlotEntry0
)

// Parallel entries need at least this much room between the outbound
// turn and the turn back to the inbound course; the extra 5% keeps the
// tangent between them from degenerating.
const parallelTurnSpacing = 2 / 0.95

func initHoldLeg(l *Leg, lc *legContext) error {
	if err := l.requireFix(); err != nil {
		return err
	}
	if err := l.requireCourse(); err != nil {
		return err
	}
	if l.Turn == av.TurnClosest {
		l.Turn = av.TurnRight
	}
	return nil
}

type holdState struct {
	plan    holdPlan
	planned bool

	override    av.HoldEntry
	hasOverride bool
	rechecked   bool

	// Set once an HM hold has gone around once; the far turn and the
	// inbound leg are then the standard ones rather than the entry's.
	looped bool
}

type holdPlan struct {
	Entry  av.HoldEntry
	Shapes [holdEntrySlots + 2]Shape // entry slots, far turn, inbound
}

// holdGeometry describes the standard racetrack: inbound course u into
// the fix F, with the turns on side.
type holdGeometry struct {
	F       [2]float32
	Inbound float32
	u       [2]float32
	side    [2]float32
	sign    float32
	R       float32
	Length  float32
}

func makeHoldGeometry(l *Leg, tc *TrackingContext, altitude float32) holdGeometry {
	g := holdGeometry{
		F:       l.FixP,
		Inbound: l.Course,
		u:       math.HeadingVector(l.Course),
		sign:    l.Turn.Sign(),
		R:       tc.TurnRadius,
	}
	g.side = math.Scale2f(math.PerpRight(g.u), g.sign)

	if l.Distance > 0 {
		g.Length = l.Distance
	} else {
		minutes := l.Minutes
		if minutes <= 0 {
			minutes = av.HoldLegMinutes(altitude)
		}
		g.Length = minutes * tc.GroundSpeed / 60
	}
	g.Length = max(g.Length, g.R)
	return g
}

func (g holdGeometry) at(across, back float32) [2]float32 {
	return math.Add2f(g.F, math.Add2f(math.Scale2f(g.side, across), math.Scale2f(g.u, -back)))
}

func (g holdGeometry) nearTurn() Shape {
	return MakeArc(g.at(g.R, 0), g.R, math.VectorHeading(math.Scale2f(g.side, -1)), g.sign*180)
}

func (g holdGeometry) outbound() Shape {
	return MakeLine(g.at(2*g.R, 0), g.at(2*g.R, g.Length))
}

func (g holdGeometry) farTurn() Shape {
	return MakeArc(g.at(g.R, g.Length), g.R, math.VectorHeading(g.side), g.sign*180)
}

func (g holdGeometry) inbound() Shape {
	return MakeLine(g.at(0, g.Length), g.F)
}

// Oval returns the four shapes of the standard racetrack starting at
// the fix.
func (g holdGeometry) Oval() []Shape {
	return []Shape{g.nearTurn(), g.outbound(), g.farTurn(), g.inbound()}
}

// arcBetween returns the arc around center that starts at p0 and turns
// in the direction of sign until it reaches the bearing of p1.
func arcBetween(center [2]float32, r float32, p0, p1 [2]float32, sign float32) Shape {
	start := math.VectorHeading(math.Sub2f(p0, center))
	sweep := math.ArcOffset(start, sign, math.VectorHeading(math.Sub2f(p1, center)))
	if sweep > 359.5 {
		sweep = 0
	}
	return MakeArc(center, r, start, sign*sweep)
}

// planHold lays out the entry into the hold for an aircraft crossing the
// fix with heading hin.
func planHold(g holdGeometry, entry av.HoldEntry, hin float32) holdPlan {
	p := holdPlan{Entry: entry}
	set := func(shapes ...Shape) {
		for i := range holdEntrySlots {
			if i < len(shapes) {
				p.Shapes[i] = shapes[i]
			} else {
				p.Shapes[i] = MakePoint(shapes[len(shapes)-1].P1)
			}
		}
	}

	switch entry {
	case av.HoldEntryDirect:
		// Cross the fix and turn onto a circle tangent to the incoming
		// course and to both sides of the racetrack; its center is
		// displaced along the inbound course so that the turn ends
		// tangent to the outbound leg.
		alpha := math.Normalize180(hin - g.Inbound)
		d1 := g.sign * g.R * math.Tan(math.Radians(alpha/2))
		if d1 >= 0 && math.Abs(alpha) < 150 {
			w := math.HeadingVector(hin)
			c := g.at(g.R, d1)
			t1 := math.Add2f(g.F, math.Scale2f(w, d1))
			t2 := g.at(2*g.R, d1)
			sweep := math.NormalizeHeading(g.sign * (g.Inbound + 180 - hin))
			turn := MakeArc(c, g.R, math.VectorHeading(math.Sub2f(t1, c)), g.sign*sweep)

			var out Shape
			if end := g.at(2*g.R, g.Length); d1 < g.Length {
				out = MakeLine(t2, end)
			} else {
				out = MakePoint(t2)
			}
			set(MakeLine(g.F, t1), turn, out)
			p.Shapes[holdEntrySlots] = g.farTurn()
		} else {
			// Approaching from the holding side: turn in the hold
			// direction after crossing the fix and join the far turn
			// directly.
			cf := g.at(g.R, g.Length)
			c := math.Add2f(g.F, math.Scale2f(math.PerpRight(math.HeadingVector(hin)), g.sign*g.R))
			p0, p1, _, ok := math.CircleTangent(c, g.R, g.sign > 0, cf, g.R, g.sign > 0)
			if !ok {
				return planHold(g, av.HoldEntryTeardrop, hin)
			}
			set(arcBetween(c, g.R, g.F, p0, g.sign), MakeLine(p0, p1))
			p.Shapes[holdEntrySlots] = arcBetween(cf, g.R, p1, g.at(0, g.Length), g.sign)
		}

	case av.HoldEntryTeardrop:
		// Outbound on the diagonal from the fix that is tangent to the far
		// turn, hi+180-2atan(R/L) toward the holding side.
		cf := g.at(g.R, g.Length)
		_, p1, _, ok := math.CircleTangent(g.F, 0, g.sign > 0, cf, g.R, g.sign > 0)
		if !ok {
			p1 = g.at(2*g.R, g.Length)
		}
		set(MakeLine(g.F, p1))
		p.Shapes[holdEntrySlots] = arcBetween(cf, g.R, p1, g.at(0, g.Length), g.sign)

	case av.HoldEntryParallel:
		// Outbound along the inbound course on the non-holding side,
		// turn back toward the holding side, and join the inbound course
		// with a turn in the hold direction short of the fix.
		m := min(g.R, max(0, g.Length-parallelTurnSpacing*g.R))
		length := max(g.Length, m+parallelTurnSpacing*g.R)
		a := g.at(0, length)
		c1 := g.at(g.R, length)
		c2 := g.at(g.R, m)
		p0, p1, _, ok := math.CircleTangent(c1, g.R, g.sign < 0, c2, g.R, g.sign > 0)
		if !ok {
			return planHold(g, av.HoldEntryTeardrop, hin)
		}
		set(MakeLine(g.F, a), arcBetween(c1, g.R, a, p0, -g.sign), MakeLine(p0, p1))
		p.Shapes[holdEntrySlots] = arcBetween(c2, g.R, p1, g.at(0, m), g.sign)
		p.Shapes[holdEntrySlots+1] = MakeLine(g.at(0, m), g.F)
		return p
	}

	p.Shapes[holdEntrySlots+1] = g.inbound()
	return p
}

func (tc *TrackingContext) hold(l *Leg) *holdState {
	if tc.holds == nil {
		tc.holds = make(map[*Leg]*holdState)
	}
	hs, ok := tc.holds[l]
	if !ok {
		hs = &holdState{}
		tc.holds[l] = hs
	}
	return hs
}

func holdLegSteps(l *Leg) []*Step {
	steps := []*Step{newStep(l, holdSlotToFix, computeDirectToFix, func(s *Step) string {
		return fmt.Sprintf("Hold %s %s %c%s", s.Leg.FixIdent(), s.Leg.magCourse(s.Leg.Course), s.Leg.Turn.Letter(),
			s.Leg.altitudeSuffix())
	})}
	for i := range holdEntrySlots {
		steps = append(steps, newStep(l, holdSlotEntry0+i, computeHoldEntry, holdEntryText))
	}
	steps = append(steps,
		newStep(l, holdSlotFarTurn, computeHoldPlanned, func(s *Step) string {
			return fmt.Sprintf("Hold %s turn %c", s.Leg.FixIdent(), s.Leg.Turn.Letter())
		}),
		newStep(l, holdSlotInbound, computeHoldPlanned, func(s *Step) string {
			return fmt.Sprintf("Hold %s inbound %s", s.Leg.FixIdent(), s.Leg.magCourse(s.Leg.Course))
		}))

	if l.Kind == LegHM {
		steps = append(steps,
			newStep(l, holdSlotNearTurn, computeHoldStandard, func(s *Step) string {
				return fmt.Sprintf("Hold %s turn %c", s.Leg.FixIdent(), s.Leg.Turn.Letter())
			}),
			newStep(l, holdSlotOutbound, computeHoldStandard, func(s *Step) string {
				return fmt.Sprintf("Hold %s outbound %s", s.Leg.FixIdent(),
					s.Leg.magCourse(math.OppositeHeading(s.Leg.Course)))
			}))
		steps[len(steps)-1].LoopTo = holdSlotFarTurn
	}
	return steps
}

func holdEntryText(s *Step) string {
	return fmt.Sprintf("Hold %s %s entry", s.Leg.FixIdent(), strings.ToLower(s.note))
}

// computeHoldEntry lays out the entry when the first entry slot is
// computed and then hands out the planned shapes. A parallel or teardrop
// entry is reconsidered once, a while after the entry began, if the
// aircraft is clearly flying the other one.
func computeHoldEntry(s *Step, tc *TrackingContext) {
	l := s.Leg
	hs := tc.hold(l)

	if s.Slot == holdSlotEntry0 {
		hin := s.Begin.Heading
		g := makeHoldGeometry(l, tc, s.Begin.Altitude)

		entry := av.ClassifyHoldEntry(hin, l.Course, l.Turn)
		if hs.hasOverride {
			entry = hs.override
		}
		hs.plan = planHold(g, entry, hin)
		hs.planned = true

		if tc.Current == s.Index && !hs.rechecked && entry != av.HoldEntryDirect &&
			tc.Elapsed.Seconds() >= float64(tc.Tuning.HoldEntryRecheckSeconds) {
			hs.rechecked = true
			alt := av.HoldEntryParallel
			if entry == av.HoldEntryParallel {
				alt = av.HoldEntryTeardrop
			}
			altPlan := planHold(g, alt, hin)
			dcur := hs.plan.Shapes[0].Distance(tc.Position)
			dalt := altPlan.Shapes[0].Distance(tc.Position)
			if dcur > tc.Tuning.HoldEntrySwitchRatio*dalt {
				NavLog(l.approachId(), tc.Time, NavLogHold, "%s: switching entry %s -> %s (%.2f vs %.2f)",
					l, entry, alt, dcur, dalt)
				hs.override, hs.hasOverride = alt, true
				hs.plan = altPlan
			}
		}
	}

	if !hs.planned {
		s.Shape = MakePoint(s.Begin.P)
		return
	}
	s.Shape = hs.plan.Shapes[s.Slot-holdSlotEntry0]
	s.note = hs.plan.Entry.String()
}

func computeHoldPlanned(s *Step, tc *TrackingContext) {
	l := s.Leg
	hs := tc.hold(l)
	g := makeHoldGeometry(l, tc, s.Begin.Altitude)
	switch {
	case hs.looped && s.Slot == holdSlotFarTurn:
		s.Shape = g.farTurn()
	case hs.looped && s.Slot == holdSlotInbound:
		s.Shape = g.inbound()
	case hs.planned:
		s.Shape = hs.plan.Shapes[s.Slot-holdSlotEntry0]
	case s.Slot == holdSlotFarTurn:
		s.Shape = g.farTurn()
	default:
		s.Shape = g.inbound()
	}
}

func computeHoldStandard(s *Step, tc *TrackingContext) {
	g := makeHoldGeometry(s.Leg, tc, s.Begin.Altitude)
	if s.Slot == holdSlotNearTurn {
		s.Shape = g.nearTurn()
	} else {
		s.Shape = g.outbound()
	}
}

// HoldOval returns the standard racetrack of a hold leg for drawing.
func (l *Leg) HoldOval(tc *TrackingContext) []Shape {
	return makeHoldGeometry(l, tc, tc.Altitude).Oval()
}

func (l *Leg) approachId() string {
	if l.Segment != nil && l.Segment.Approach != nil {
		return l.Segment.Approach.Id
	}
	return ""
}
