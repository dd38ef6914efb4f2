// nav/leg.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

// LegKind identifies the path terminator of a leg.
type LegKind int

const (
	LegIF LegKind = iota // initial fix
	LegTF                // track to fix
	LegCF                // course to fix
	LegCA                // course to altitude
	LegCD                // course to DME distance
	LegCI                // course to intercept the next leg
	LegCR                // course to radial
	LegFC                // course from fix for a distance
	LegAF                // DME arc
	LegRF                // constant radius arc
	LegPI                // procedure turn
	LegHF                // hold in lieu of procedure turn; one circuit
	LegHM                // hold until manually terminated
	LegRV                // radar vectors to final
	LegTD                // turn direct to fix
)

var legKindNames = [...]string{"IF", "TF", "CF", "CA", "CD", "CI", "CR", "FC", "AF", "RF", "PI", "HF", "HM", "RV", "TD"}

func (k LegKind) String() string {
	if int(k) < len(legKindNames) {
		return legKindNames[k]
	}
	return "??"
}

func ParseLegKind(s string) (LegKind, bool) {
	if s == "DF" {
		return LegTD, true
	}
	if idx := slices.Index(legKindNames[:], s); idx != -1 {
		return LegKind(idx), true
	}
	return 0, false
}

// Leg is a single path terminator of an approach segment. Legs are parsed
// from the leg micro-format: legs are separated by semicolons, the fields
// of a leg by commas, the first field is the path terminator and the
// remaining ones are either key=value parameters or bare flags, e.g.
//
//	CF,wp=LWM[330@10,mc=270,a=+2000,faf
//
// Once initialized a leg's static geometry (fix locations, courses,
// radii) doesn't change; the poses of its steps are recomputed on every
// update.
type Leg struct {
	Kind   LegKind
	Raw    string
	Params map[string]string

	// Position within the owning segment and the segment itself.
	Index   int
	Segment *Segment

	// Parsed parameters. Courses and radials are true.
	Course      float32
	HasCourse   bool
	Distance    float32 // nm
	Minutes     float32
	Turn        av.TurnDirection
	Altitude    av.AltitudeRestriction
	BeginRadial float32
	EndRadial   float32
	Radial      float32
	DME         float32
	GPA         float32 // glide path angle, degrees
	TCH         float32 // threshold crossing height, feet
	MagVar      float32 // used to show magnetic courses

	FAF, IAF, IF, MAP, FlyOver bool

	Fix    *av.Waypoint
	Navaid *av.Waypoint
	Center *av.Waypoint
	FixP, NavaidP, CenterP [2]float32

	// Set while assembling: true for legs of the missed approach segment.
	Missed bool
	// Set while eliding runts: the leg is at or after the final approach
	// fix.
	afterFAF bool

	// Links to sibling legs established by init2.
	next    *Leg
	faf     *Leg
	fafNext *Leg

	steps []*Step
}

var legFlags = []string{"faf", "iaf", "if", "map", "fo"}

var legKeys = []string{"wp", "nav", "ctr", "mc", "nm", "t", "td", "a", "beg", "end", "rad", "dme", "gpa", "tch"}

// ParseLegs splits a leg string into legs. Only the syntax is checked
// here; parameters are interpreted and waypoints are resolved by Init1.
func ParseLegs(s string) ([]*Leg, error) {
	var legs []*Leg
	for i, ls := range strings.Split(s, ";") {
		ls = strings.TrimSpace(ls)
		if ls == "" {
			return nil, fmt.Errorf("leg %d: %w", i, ErrEmptyLeg)
		}
		l, err := parseLeg(ls)
		if err != nil {
			return nil, fmt.Errorf("leg %d (%s): %w", i, ls, err)
		}
		l.Index = i
		legs = append(legs, l)
	}
	return legs, nil
}

func parseLeg(s string) (*Leg, error) {
	fields := strings.Split(s, ",")
	kind, ok := ParseLegKind(strings.TrimSpace(fields[0]))
	if !ok {
		return nil, fmt.Errorf("%q: %w", fields[0], ErrUnknownPathTerm)
	}

	l := &Leg{Kind: kind, Raw: s, Params: make(map[string]string)}
	for _, f := range fields[1:] {
		f = strings.TrimSpace(f)
		if k, v, ok := strings.Cut(f, "="); ok {
			if !slices.Contains(legKeys, k) {
				return nil, fmt.Errorf("%q: unknown key: %w", k, ErrInvalidLegParameter)
			}
			l.Params[k] = v
		} else if slices.Contains(legFlags, f) {
			l.Params[f] = ""
		} else {
			return nil, fmt.Errorf("%q: %w", f, ErrInvalidLegParameter)
		}
	}
	return l, nil
}

// Encoded returns the leg in the micro-format with the parameters in a
// canonical order.
func (l *Leg) Encoded() string {
	fields := []string{l.Kind.String()}
	for _, k := range legKeys {
		if v, ok := l.Params[k]; ok {
			fields = append(fields, k+"="+v)
		}
	}
	for _, f := range legFlags {
		if _, ok := l.Params[f]; ok {
			fields = append(fields, f)
		}
	}
	return strings.Join(fields, ",")
}

func (l *Leg) String() string {
	if l.Fix != nil {
		return l.Kind.String() + " " + l.Fix.Ident
	}
	return l.Kind.String()
}

// FixIdent returns the identifier of the leg's fix, if it has one.
func (l *Leg) FixIdent() string {
	if l.Fix != nil {
		return l.Fix.Ident
	}
	return ""
}

// Steps returns the leg's canonical steps, creating them the first time
// it is called.
func (l *Leg) Steps() []*Step {
	if l.steps == nil {
		l.steps = legHandlers[l.Kind].steps(l)
	}
	return l.steps
}

// clone returns a copy of the leg for a new assembly; the copy shares
// the immutable parsed parameters but has its own steps and links.
func (l *Leg) clone() *Leg {
	nl := *l
	nl.steps = nil
	nl.next, nl.faf, nl.fafNext = nil, nil, nil
	return &nl
}

///////////////////////////////////////////////////////////////////////////
// Parameters

// legContext provides what's needed to interpret a leg's parameters.
type legContext struct {
	finder  av.WaypointFinder
	proj    av.Projector
	magvar  float32
	airport string
}

func (l *Leg) has(key string) bool {
	_, ok := l.Params[key]
	return ok
}

func (l *Leg) floatParam(key string) (float32, bool, error) {
	v, ok := l.Params[key]
	if !ok {
		return 0, false, nil
	}
	f, err := strconv.ParseFloat(v, 32)
	if err != nil || !math.IsFinite(float32(f)) {
		return 0, true, fmt.Errorf("%s=%s: %w", key, v, ErrInvalidLegParameter)
	}
	return float32(f), true, nil
}

func (l *Leg) waypointParam(lc *legContext, key string) (*av.Waypoint, [2]float32, error) {
	spec, ok := l.Params[key]
	if !ok {
		return nil, [2]float32{}, nil
	}
	wp, err := av.ResolveWaypoint(lc.finder, spec, lc.magvar)
	if err != nil {
		return nil, [2]float32{}, err
	}
	return &wp, lc.proj.Project(wp.Location), nil
}

// variation returns the magnetic variation to use for courses and
// radials defined relative to the given waypoint.
func (lc *legContext) variation(wp *av.Waypoint) float32 {
	if wp != nil && wp.MagneticVariation != 0 {
		return wp.MagneticVariation
	}
	return lc.magvar
}

// parseCommon interprets the parameters shared by all leg kinds.
func (l *Leg) parseCommon(lc *legContext) error {
	var err error
	if l.Fix, l.FixP, err = l.waypointParam(lc, "wp"); err != nil {
		return err
	}
	if l.Navaid, l.NavaidP, err = l.waypointParam(lc, "nav"); err != nil {
		return err
	}
	if l.Center, l.CenterP, err = l.waypointParam(lc, "ctr"); err != nil {
		return err
	}

	if mc, ok, err := l.floatParam("mc"); err != nil {
		return err
	} else if ok {
		l.Course, l.HasCourse = av.MagneticToTrue(mc, lc.magvar), true
	}
	if l.Distance, _, err = l.floatParam("nm"); err != nil {
		return err
	} else if l.Distance < 0 {
		return fmt.Errorf("nm=%s: %w", l.Params["nm"], ErrInvalidLegParameter)
	}
	if l.Minutes, _, err = l.floatParam("t"); err != nil {
		return err
	}
	if l.Turn, err = av.ParseTurnDirection(l.Params["td"]); err != nil {
		return err
	}
	if a, ok := l.Params["a"]; ok {
		if l.Altitude, err = av.ParseAltitudeRestriction(a); err != nil {
			return err
		}
	}

	navvar := lc.variation(l.Navaid)
	for _, r := range []struct {
		key string
		v   *float32
	}{{"beg", &l.BeginRadial}, {"end", &l.EndRadial}, {"rad", &l.Radial}} {
		if f, ok, err := l.floatParam(r.key); err != nil {
			return err
		} else if ok {
			*r.v = av.MagneticToTrue(f, navvar)
		}
	}
	if l.DME, _, err = l.floatParam("dme"); err != nil {
		return err
	}
	if l.GPA, _, err = l.floatParam("gpa"); err != nil {
		return err
	}
	if l.TCH, _, err = l.floatParam("tch"); err != nil {
		return err
	}

	l.FAF, l.IAF, l.IF, l.MAP, l.FlyOver = l.has("faf"), l.has("iaf"), l.has("if"), l.has("map"), l.has("fo")
	return nil
}

func (l *Leg) requireFix() error {
	if l.Fix == nil {
		return fmt.Errorf("wp: %w", ErrMissingLegParameter)
	}
	return nil
}

func (l *Leg) requireNavaid() error {
	if l.Navaid == nil {
		return fmt.Errorf("nav: %w", ErrMissingLegParameter)
	}
	return nil
}

func (l *Leg) requireCourse() error {
	if !l.HasCourse {
		return fmt.Errorf("mc: %w", ErrMissingLegParameter)
	}
	return nil
}

// IsRunway reports whether the leg's fix is a runway threshold.
func (l *Leg) IsRunway() bool {
	return l.Fix != nil && (l.Fix.Type == av.WaypointRunway || strings.HasPrefix(l.Fix.Ident, "RW"))
}

// EndFix returns the fix a leg finishes at, if it finishes at one.
func (l *Leg) EndFix() (*av.Waypoint, [2]float32, bool) {
	switch l.Kind {
	case LegIF, LegTF, LegCF, LegAF, LegRF, LegHF, LegHM, LegTD:
		if l.Fix != nil {
			return l.Fix, l.FixP, true
		}
	}
	return nil, [2]float32{}, false
}

// inboundCourse returns the course flown into the fix of a hold or
// procedure turn once it is complete.
func (l *Leg) inboundCourse() float32 {
	return l.Course
}

// Init1 interprets the leg's parameters and resolves its waypoints. If
// the leg's fix could begin an intermediate-fix transition, its
// identifier is returned.
func (l *Leg) Init1(lc *legContext) (string, error) {
	l.MagVar = lc.magvar
	if err := l.parseCommon(lc); err != nil {
		return "", err
	}
	if h := legHandlers[l.Kind]; h.init1 != nil {
		if err := h.init1(l, lc); err != nil {
			return "", err
		}
	}
	if l.Fix != nil && l.Kind != LegRV && !l.IsRunway() {
		return l.Fix.Ident, nil
	}
	return "", nil
}

// Init2 establishes the leg's links to the other legs of an assembled
// route.
func (l *Leg) Init2(legs []*Leg, idx int) error {
	if h := legHandlers[l.Kind]; h.init2 != nil {
		return h.init2(l, legs, idx)
	}
	return nil
}

// Optional reports whether a procedure turn or hold in lieu must be
// flown given the location of the preceding point.
func (l *Leg) Optional(prev [2]float32, havePrev bool, tun *Tuning) Optionality {
	if h := legHandlers[l.Kind]; h.optional != nil {
		return h.optional(l, prev, havePrev, tun)
	}
	return Required
}

// IsRunt reports whether the leg adds nothing to the path when it
// follows prev.
func (l *Leg) IsRunt(prev *Leg, tun *Tuning) bool {
	if h := legHandlers[l.Kind]; h.isRunt != nil && prev != nil {
		return h.isRunt(l, prev, tun)
	}
	return false
}

///////////////////////////////////////////////////////////////////////////
// Dispatch

type legHandler struct {
	// init1 validates the parsed parameters for the leg kind.
	init1 func(l *Leg, lc *legContext) error
	// init2 links the leg to its siblings after assembly.
	init2    func(l *Leg, legs []*Leg, idx int) error
	optional func(l *Leg, prev [2]float32, havePrev bool, tun *Tuning) Optionality
	steps    func(l *Leg) []*Step
	isRunt   func(l *Leg, prev *Leg, tun *Tuning) bool
}

var legHandlers map[LegKind]legHandler

func init() {
	legHandlers = map[LegKind]legHandler{
		LegIF: {init1: initFixLeg, steps: fixLegSteps, isRunt: isRuntFixLeg},
		LegTF: {init1: initFixLeg, steps: fixLegSteps, isRunt: isRuntFixLeg},
		LegCF: {init1: initCFLeg, steps: cfLegSteps, isRunt: isRuntFixLeg},
		LegCA: {init1: initCALeg, steps: caLegSteps},
		LegCD: {init1: initCDLeg, steps: cdLegSteps},
		LegCI: {init1: initCILeg, init2: linkCILeg, steps: ciLegSteps},
		LegCR: {init1: initCRLeg, steps: crLegSteps},
		LegFC: {init1: initFCLeg, steps: fcLegSteps},
		LegAF: {init1: initAFLeg, steps: afLegSteps},
		LegRF: {init1: initRFLeg, steps: rfLegSteps},
		LegPI: {init1: initPILeg, init2: linkFAF, optional: optionalTurnLeg, steps: piLegSteps},
		LegHF: {init1: initHoldLeg, optional: optionalTurnLeg, steps: holdLegSteps},
		LegHM: {init1: initHoldLeg, steps: holdLegSteps},
		LegRV: {init2: linkFAF, steps: rvLegSteps},
		LegTD: {init1: initFixLeg, steps: tdLegSteps},
	}
}

func initFixLeg(l *Leg, lc *legContext) error {
	return l.requireFix()
}

///////////////////////////////////////////////////////////////////////////
// Optional legs

// Optionality is the result of asking whether a procedure turn or hold
// in lieu of one has to be flown.
type Optionality int

const (
	Required Optionality = iota
	Skipped
	NeedsDecision
)

func (o Optionality) String() string {
	return [...]string{"required", "skipped", "needs decision"}[o]
}

// optionalTurnLeg decides procedure turns and holds in lieu. If the
// preceding point is ahead of the fix along the inbound course, the turn
// is needed to reverse course; if it's behind, the aircraft is already
// lined up. Anything in between is the pilot's call.
func optionalTurnLeg(l *Leg, prev [2]float32, havePrev bool, tun *Tuning) Optionality {
	if !havePrev || math.Distance2f(prev, l.FixP) < tun.RuntThreshold {
		return NeedsDecision
	}
	angle := math.AngleDiffU(math.TrueCourse(l.FixP, prev) - l.inboundCourse())
	if angle < tun.OptionalRequiredAngle {
		return Required
	} else if angle > tun.OptionalSkippedAngle {
		return Skipped
	}
	return NeedsDecision
}

///////////////////////////////////////////////////////////////////////////
// Runt legs

// isRuntFixLeg identifies legs to a fix that the preceding leg already
// ends at, as well as a course to a fix that follows a hold or procedure
// turn on nearly the same course: to the same fix, or, from the final
// approach fix on, to one that isn't past it.
func isRuntFixLeg(l *Leg, prev *Leg, tun *Tuning) bool {
	if l.Fix == nil {
		return false
	}
	if _, p, ok := prev.EndFix(); ok && math.Distance2f(p, l.FixP) < tun.RuntThreshold {
		return true
	}

	switch prev.Kind {
	case LegPI, LegHF, LegHM:
		if prev.Fix == nil {
			return false
		}
		hdg := prev.inboundCourse()
		course := hdg
		if l.HasCourse {
			course = l.Course
		}
		if math.HeadingDifference(course, hdg) > tun.CFAfterHoldCourseTolerance {
			return false
		}
		if math.Distance2f(l.FixP, prev.FixP) < tun.RuntThreshold {
			return true
		}
		return l.afterFAF && math.AlongTrack(l.FixP, prev.FixP, hdg) <= tun.RuntThreshold
	}
	return false
}
