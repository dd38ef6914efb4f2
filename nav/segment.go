// nav/segment.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"slices"
	"strings"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/math"
	"github.com/cifpnav/cifpnav/util"
)

const (
	SegmentFinal  = "final"
	SegmentMissed = "missed"

	// TransitionRadarVectors names the synthesized transition that
	// vectors the aircraft onto the final approach course.
	TransitionRadarVectors = "(rv)"
	// Synthesized transitions that start at a fix of the final segment
	// are named with the fix and this suffix.
	intermediateSuffix = " (if)"
)

// Approach is an instrument approach procedure at an airport: its
// transitions, the final segment and the missed approach. Approaches are
// only kept if they have both a final and a missed segment.
type Approach struct {
	Airport           string
	Id                string
	FullName          string
	Type              av.ApproachType
	Runway            string
	RefNavaid         *av.Waypoint
	MagneticVariation float32
	// Elevation of the runway threshold, or of the airport if the
	// threshold's isn't known.
	Elevation float32
	Projector av.LocalProjector

	Transitions map[string]*Segment
	Final       *Segment
	Missed      *Segment
}

// Segment is an ordered sequence of legs.
type Segment struct {
	Approach *Approach
	Id       string
	Legs     []*Leg

	// Fixes of the final segment that an intermediate-fix transition can
	// start from; PassedFAF is set once the final approach fix has been
	// seen while collecting them.
	IntermediateFixes []string
	PassedFAF         bool

	// For transitions, the index of the first leg of the final segment
	// that follows the transition.
	JoinLeg int
}

func (ap *Approach) String() string {
	return ap.Airport + " " + ap.FullName
}

// TransitionIds returns the approach's transitions in a stable order:
// published ones, then intermediate fixes, then radar vectors.
func (ap *Approach) TransitionIds() []string {
	ids := util.SortedMapKeys(ap.Transitions)
	rank := func(id string) int {
		if id == TransitionRadarVectors {
			return 2
		} else if strings.HasSuffix(id, intermediateSuffix) {
			return 1
		}
		return 0
	}
	slices.SortStableFunc(ids, func(a, b string) int { return rank(a) - rank(b) })
	return ids
}

// FAFIndex returns the index of the final segment's final approach fix
// leg, or -1.
func (seg *Segment) FAFIndex() int {
	return slices.IndexFunc(seg.Legs, func(l *Leg) bool { return l.FAF })
}

func (seg *Segment) String() string {
	if seg.Approach != nil {
		return seg.Approach.Id + " " + seg.Id
	}
	return seg.Id
}

///////////////////////////////////////////////////////////////////////////
// Parsing

// ParseApproaches builds the approaches at an airport from its procedure
// records. Records and approaches that can't be parsed are reported in
// the returned ErrorLogger and skipped; the others are still returned.
func ParseApproaches(airport string, records []av.ProcedureRecord, finder av.WaypointFinder,
	lg *log.Logger) ([]*Approach, *util.ErrorLogger) {
	var e util.ErrorLogger
	e.Push(airport)
	defer e.Pop()

	apwp, ok := finder.FindWaypoint(airport)
	if !ok {
		e.Error(&av.WaypointNotFoundError{Ident: airport})
		return nil, &e
	}
	lc := &legContext{
		finder:  av.ScopedFinder{Airport: airport, Base: finder},
		proj:    av.NewLocalProjector(apwp.Location),
		magvar:  apwp.MagneticVariation,
		airport: airport,
	}

	byId := make(map[string][]av.ProcedureRecord)
	for _, r := range records {
		if r.Airport == airport {
			byId[r.Approach] = append(byId[r.Approach], r)
		}
	}

	var approaches []*Approach
	for _, id := range util.SortedMapKeys(byId) {
		e.Push(id)
		if ap, err := parseApproach(id, byId[id], apwp, lc, &e); err != nil {
			e.Error(err)
			lg.Warn("discarding approach", "airport", airport, "approach", id, "error", err)
		} else {
			approaches = append(approaches, ap)
			NavLog(id, time.Now(), NavLogAssembly, "%s: %d transitions", ap, len(ap.Transitions))
		}
		e.Pop()
	}
	return approaches, &e
}

func parseApproach(id string, records []av.ProcedureRecord, apwp av.Waypoint, lc *legContext,
	e *util.ErrorLogger) (*Approach, error) {
	aid, err := av.ParseApproachId(id)
	if err != nil {
		return nil, err
	}

	ap := &Approach{
		Airport:           lc.airport,
		Id:                id,
		FullName:          aid.FullName(),
		Type:              aid.Type,
		Runway:            aid.RunwayIdent(),
		MagneticVariation: apwp.MagneticVariation,
		Elevation:         apwp.Elevation,
		Projector:         lc.proj.(av.LocalProjector),
		Transitions:       make(map[string]*Segment),
	}

	for _, r := range records {
		e.Push(r.Segment)
		seg, err := parseSegment(ap, r.Segment, r.Legs, lc)
		if err != nil {
			// Losing a transition leaves the rest of the approach usable;
			// losing the final or missed segment is caught below.
			e.Error(err)
		} else {
			switch r.Segment {
			case SegmentFinal:
				ap.Final = seg
			case SegmentMissed:
				ap.Missed = seg
			default:
				ap.Transitions[r.Segment] = seg
			}
		}
		e.Pop()
	}

	if ap.Final == nil {
		return nil, ErrNoFinalSegment
	} else if ap.Missed == nil {
		return nil, ErrNoMissedSegment
	}
	if err := ap.checkFinal(); err != nil {
		return nil, fmt.Errorf("%s: %w", SegmentFinal, err)
	}

	for _, seg := range ap.Transitions {
		seg.JoinLeg = ap.joinIndex(seg)
	}
	ap.addIntermediateTransitions()
	if faf := ap.Final.FAFIndex(); faf != -1 {
		rv := NewRadarVectorLeg(ap.MagneticVariation)
		ap.Transitions[TransitionRadarVectors] = &Segment{
			Approach: ap,
			Id:       TransitionRadarVectors,
			Legs:     []*Leg{rv},
			JoinLeg:  faf,
		}
		rv.Segment = ap.Transitions[TransitionRadarVectors]
	}
	return ap, nil
}

func parseSegment(ap *Approach, id string, legstr string, lc *legContext) (*Segment, error) {
	legs, err := ParseLegs(legstr)
	if err != nil {
		return nil, err
	}

	seg := &Segment{Approach: ap, Id: id, Legs: legs}
	for _, l := range legs {
		l.Segment = seg
		l.Missed = id == SegmentMissed
		fix, err := l.Init1(lc)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", l.Raw, err)
		}

		if id == SegmentFinal {
			if fix != "" && !seg.PassedFAF && !slices.Contains(seg.IntermediateFixes, fix) {
				seg.IntermediateFixes = append(seg.IntermediateFixes, fix)
			}
			if l.FAF {
				seg.PassedFAF = true
			}
		}
		if ap.RefNavaid == nil && id == SegmentFinal {
			if l.Navaid != nil {
				ap.RefNavaid = l.Navaid
			} else if l.Fix != nil && l.Fix.Type.IsNavaid() {
				ap.RefNavaid = l.Fix
			}
		}
	}
	return seg, nil
}

// checkFinal verifies that the final segment has a final approach fix
// followed by a runway or missed approach point leg, and takes the
// threshold elevation from the latter.
func (ap *Approach) checkFinal() error {
	faf := ap.Final.FAFIndex()
	if faf == -1 {
		return ErrNoFAF
	}
	rw := slices.IndexFunc(ap.Final.Legs[faf:], func(l *Leg) bool { return l.MAP || l.IsRunway() })
	if rw == -1 {
		return ErrNoRunwayLeg
	}
	if l := ap.Final.Legs[faf+rw]; l.Fix != nil && l.Fix.Elevation != 0 {
		ap.Elevation = l.Fix.Elevation
	}
	return nil
}

// joinIndex returns where a published transition meets the final
// segment: the final leg to the transition's last fix, which is then
// elided as a runt, or the start of the segment if there is none.
func (ap *Approach) joinIndex(seg *Segment) int {
	for i := len(seg.Legs) - 1; i >= 0; i-- {
		if fix := seg.Legs[i].FixIdent(); fix != "" {
			if idx := slices.IndexFunc(ap.Final.Legs, func(l *Leg) bool { return l.FixIdent() == fix }); idx != -1 {
				return idx
			}
			return 0
		}
	}
	return 0
}

// addIntermediateTransitions adds a transition for each fix of the final
// segment up to the final approach fix that doesn't already start a
// published one. Each is a single IF leg to the fix that then continues
// with the rest of the final segment.
func (ap *Approach) addIntermediateTransitions() {
	for _, fix := range ap.Final.IntermediateFixes {
		if _, ok := ap.Transitions[fix]; ok {
			continue
		}
		idx := slices.IndexFunc(ap.Final.Legs, func(l *Leg) bool { return l.FixIdent() == fix })
		if idx == -1 {
			continue
		}

		src := ap.Final.Legs[idx]
		l := src.clone()
		l.Kind = LegIF
		l.Raw = "IF,wp=" + fix
		l.Index = 0
		seg := &Segment{
			Approach: ap,
			Id:       fix + intermediateSuffix,
			Legs:     []*Leg{l},
			JoinLeg:  idx + 1,
		}
		l.Segment = seg
		ap.Transitions[seg.Id] = seg
	}
}

///////////////////////////////////////////////////////////////////////////
// Selection

// Choice is a selectable transition of an approach, with the location of
// where it starts for placing it on the chart.
type Choice struct {
	Label      string
	Approach   string
	Transition string
	Type       av.ApproachType
	Location   [2]float32
}

// Choices returns the transitions that can be selected, located using
// the given projection (e.g., to chart pixels).
func (ap *Approach) Choices(proj av.Projector) []Choice {
	var choices []Choice
	for _, id := range ap.TransitionIds() {
		seg := ap.Transitions[id]
		var loc math.Point2LL
		if id == TransitionRadarVectors {
			loc = ap.Final.Legs[seg.JoinLeg].Fix.Location
		} else if idx := slices.IndexFunc(seg.Legs, func(l *Leg) bool { return l.Fix != nil }); idx != -1 {
			loc = seg.Legs[idx].Fix.Location
		} else {
			continue
		}

		choices = append(choices, Choice{
			Label:      ap.FullName + " via " + id,
			Approach:   ap.Id,
			Transition: id,
			Type:       ap.Type,
			Location:   proj.Project(loc),
		})
	}
	return choices
}
