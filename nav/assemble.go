// nav/assemble.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"time"

	"github.com/cifpnav/cifpnav/log"
)

// Route is an approach assembled for a particular transition: the legs
// to fly in order and their steps. Routes are built from copies of the
// approach's legs so that assembling never modifies the approach.
type Route struct {
	Approach   *Approach
	Transition string
	Legs       []*Leg
	Steps      []*Step

	// Index of the first step of the missed approach and of the last step
	// that ends at the final approach fix.
	MissedStart int
	FAFStep     int

	// The leg that defines the glide path, if any.
	GlidePath *Leg
}

// DecisionRequest asks whether an optional procedure turn or hold in
// lieu should be flown. The answer is supplied to Assemble through the
// decisions map under Key.
type DecisionRequest struct {
	Key  string
	Leg  *Leg
	Text string
}

// DecisionKey identifies a leg of an approach for optional-leg
// decisions.
func DecisionKey(l *Leg) string {
	seg := ""
	if l.Segment != nil {
		seg = l.Segment.Id
	}
	return fmt.Sprintf("%s:%d", seg, l.Index)
}

// AssembleOptions carries what Assemble needs beyond the approach.
type AssembleOptions struct {
	// Decisions for optional legs; true to fly the leg.
	Decisions map[string]bool
	// The aircraft position in the approach's plane, used to decide
	// whether optional legs at the start of the route are needed.
	Position     [2]float32
	HavePosition bool

	Tuning *Tuning
	Logger *log.Logger
}

// Assemble splices the transition, the final segment from the point the
// transition joins it, and the missed approach into a route. If an
// optional leg needs a decision that hasn't been made, a DecisionRequest
// is returned and no route is. Failures are reported as *AssemblyError;
// nothing of a failed assembly is returned.
func Assemble(ap *Approach, transition string, opt AssembleOptions) (*Route, *DecisionRequest, error) {
	if opt.Tuning == nil {
		tun := DefaultTuning()
		opt.Tuning = &tun
	}
	fail := func(seg string, err error) (*Route, *DecisionRequest, error) {
		return nil, nil, &AssemblyError{Airport: ap.Airport, Approach: ap.Id, Segment: seg, Err: err}
	}

	tr, ok := ap.Transitions[transition]
	if !ok {
		return fail(transition, ErrUnknownTransition)
	}
	if tr.JoinLeg > len(ap.Final.Legs) {
		return fail(transition, fmt.Errorf("join leg %d: %w", tr.JoinLeg, ErrInvalidLegParameter))
	}

	var legs []*Leg
	for _, seg := range [][]*Leg{tr.Legs, ap.Final.Legs[tr.JoinLeg:], ap.Missed.Legs} {
		for _, l := range seg {
			legs = append(legs, l.clone())
		}
	}

	legs, req := resolveOptional(legs, opt)
	if req != nil {
		return nil, req, nil
	}
	legs = elideRunts(ap, legs, opt.Tuning, opt.Logger)

	for i, l := range legs {
		if err := l.Init2(legs, i); err != nil {
			return fail(l.Segment.Id, fmt.Errorf("%s: %w", l.Raw, err))
		}
	}

	r := &Route{
		Approach:    ap,
		Transition:  transition,
		Legs:        legs,
		MissedStart: -1,
		FAFStep:     -1,
	}
	for _, l := range legs {
		first := len(r.Steps)
		for _, s := range l.Steps() {
			s.Index = len(r.Steps)
			if s.LoopTo >= 0 {
				s.LoopTo += first
			}
			r.Steps = append(r.Steps, s)
		}
		if l.Missed && r.MissedStart == -1 {
			r.MissedStart = first
		}
		if l.FAF && !l.Missed {
			r.FAFStep = len(r.Steps) - 1
		}
		if l.GPA > 0 && !l.Missed {
			r.GlidePath = l
		}
	}
	if len(r.Steps) == 0 {
		return fail("", ErrEmptyRoute)
	}
	if r.MissedStart == -1 {
		r.MissedStart = len(r.Steps)
	}

	NavLog(ap.Id, time.Now(), NavLogAssembly, "%s via %s: %d legs, %d steps", ap, transition, len(legs), len(r.Steps))
	LogSteps(ap.Id, time.Now(), r.Steps)
	return r, nil, nil
}

// resolveOptional drops procedure turns and holds in lieu that aren't
// needed. The preceding point is the end fix of the last leg that has
// one or, for the first legs, the aircraft position.
func resolveOptional(legs []*Leg, opt AssembleOptions) ([]*Leg, *DecisionRequest) {
	prev, havePrev := opt.Position, opt.HavePosition
	var out []*Leg
	for _, l := range legs {
		keep := true
		switch l.Optional(prev, havePrev, opt.Tuning) {
		case Skipped:
			keep = false
		case NeedsDecision:
			key := DecisionKey(l)
			d, ok := opt.Decisions[key]
			if !ok {
				return nil, &DecisionRequest{
					Key:  key,
					Leg:  l,
					Text: fmt.Sprintf("Fly %s at %s?", optionalLegName(l), l.FixIdent()),
				}
			}
			keep = d
		}

		if keep {
			out = append(out, l)
			if _, p, ok := l.EndFix(); ok {
				prev, havePrev = p, true
			}
		} else {
			NavLog(l.approachId(), time.Now(), NavLogAssembly, "skipping optional %s", l)
		}
	}
	return out, nil
}

func optionalLegName(l *Leg) string {
	if l.Kind == LegPI {
		return "the procedure turn"
	}
	return "the hold in lieu"
}

// elideRunts removes legs that add nothing after the leg before them.
// Their altitude restrictions are merged into the preceding leg, as are
// the flags that mark the final approach fix and the missed approach
// point.
func elideRunts(ap *Approach, legs []*Leg, tun *Tuning, lg *log.Logger) []*Leg {
	var out []*Leg
	afterFAF := false
	for _, l := range legs {
		afterFAF = afterFAF || l.FAF
		l.afterFAF = afterFAF
		if len(out) == 0 || !l.IsRunt(out[len(out)-1], tun) {
			out = append(out, l)
			continue
		}

		prev := out[len(out)-1]
		mergeRuntLeg(prev, l, lg)
		NavLog(ap.Id, time.Now(), NavLogAssembly, "eliding runt %s after %s", l, prev)
	}
	return out
}

func mergeRuntLeg(prev, l *Leg, lg *log.Logger) {
	if alt, ok := prev.Altitude.Intersect(l.Altitude); ok {
		prev.Altitude = alt
	} else {
		lg.Warn("conflicting altitude restrictions", "leg", prev.Raw, "altitude", prev.Altitude,
			"runt", l.Raw, "runt_altitude", l.Altitude)
		prev.Altitude = l.Altitude
	}

	prev.FAF = prev.FAF || l.FAF
	prev.MAP = prev.MAP || l.MAP
	prev.IF = prev.IF || l.IF
	if l.GPA > 0 {
		prev.GPA, prev.TCH = l.GPA, l.TCH
	}
}

// RunwayLeg returns the leg that ends at the runway or the missed
// approach point.
func (r *Route) RunwayLeg() *Leg {
	for _, l := range r.Legs {
		if !l.Missed && (l.MAP || l.IsRunway()) {
			return l
		}
	}
	return nil
}
