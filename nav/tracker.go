// nav/tracker.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"sync"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/math"
	"github.com/cifpnav/cifpnav/util"
)

// TrackingContext is everything the steps know about the aircraft when
// they are computed. It is rebuilt from each position sample; the hold
// and radar vector state persists for as long as a route is installed.
type TrackingContext struct {
	Time        time.Time
	Position    [2]float32 // nm in the approach's plane
	Track       float32    // true
	Altitude    float32
	GroundSpeed float32 // smoothed
	TurnRadius  float32

	// Index of the current step and how long ago and where it became
	// current.
	Current   int
	Elapsed   time.Duration
	StepStart Pose

	DialedCourse     float32 // true
	HaveDialedCourse bool

	Tuning *Tuning

	holds map[*Leg]*holdState
	rv    rvState
}

// NextTurn describes the next change of course ahead of the aircraft.
type NextTurn struct {
	Dir      av.TurnDirection
	Course   float32 // true course after the turn
	Distance float32 // nm to the start of the turn
}

// Frame is the result of a tracking update.
type Frame struct {
	Time    time.Time
	Current int // -1 if no step is current

	Fillet       FilletArc
	HaveFillet   bool
	NextTurn     NextTurn
	HaveNextTurn bool

	Guidance Guidance
	Draw     DrawList
}

// Tracker follows an aircraft through an installed route. All methods
// may be called concurrently; each update runs to completion before the
// next is started and never sees a partially-installed route.
type Tracker struct {
	mu sync.Mutex

	route     *Route
	current   int
	suspended bool

	tuning    Tuning
	tc        TrackingContext
	gs        *util.RingBuffer[float32]
	stepStart time.Time

	last     Frame
	haveLast bool
	lastTime time.Time

	lg *log.Logger
}

func NewTracker(tun Tuning, lg *log.Logger) *Tracker {
	return &Tracker{
		current: -1,
		tuning:  tun,
		gs:      util.NewRingBuffer[float32](max(1, tun.GroundSpeedSamples)),
		lg:      lg,
	}
}

// Install replaces the route being tracked; no step is current until the
// next update.
func (t *Tracker) Install(r *Route) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.route = r
	t.current = -1
	t.suspended = false
	t.haveLast = false
	t.tc = TrackingContext{Current: -1, Tuning: &t.tuning, DialedCourse: t.tc.DialedCourse,
		HaveDialedCourse: t.tc.HaveDialedCourse}
	t.lg.Info("route installed", "approach", r.Approach.Id, "transition", r.Transition, "steps", len(r.Steps))
}

// Discontinue removes the route.
func (t *Tracker) Discontinue() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.route = nil
	t.current = -1
	t.suspended = false
	t.haveLast = false
}

// Suspend causes updates to be dropped until Resume or Install is
// called; it is used while waiting for a decision about an optional leg.
func (t *Tracker) Suspend() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = true
}

func (t *Tracker) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.suspended = false
}

// SetDialedCourse sets the true course used by radar vector legs in
// place of the aircraft's track.
func (t *Tracker) SetDialedCourse(course float32, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tc.DialedCourse, t.tc.HaveDialedCourse = math.NormalizeHeading(course), ok
}

// Current returns the index of the current step or -1.
func (t *Tracker) Current() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.current
}

// Route returns the installed route, if any.
func (t *Tracker) Route() *Route {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.route
}

// Update advances the tracker with a new position sample. Samples with
// the same timestamp as the previous one return the previous frame.
func (t *Tracker) Update(sample av.PositionSample) (Frame, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.route == nil {
		return Frame{Current: -1}, ErrNoApproach
	} else if t.suspended {
		return Frame{Current: -1}, ErrSuspended
	}
	if t.haveLast && !sample.Time.After(t.lastTime) {
		return t.last, nil
	}

	t.updateContext(sample)
	steps := t.route.Steps

	if t.current == -1 {
		t.start()
	} else {
		t.computeFrom(t.current)
	}

	fillet, haveFillet := t.advance()
	tc := &t.tc
	tc.Current = t.current

	f := Frame{
		Time:       sample.Time,
		Current:    t.current,
		Fillet:     fillet,
		HaveFillet: haveFillet,
	}
	cur := steps[t.current]
	f.NextTurn, f.HaveNextTurn = nextTurn(cur, t.nextStep(t.current), tc.Position, fillet, haveFillet)
	f.Guidance = computeGuidance(t.route, tc, cur, f.NextTurn, f.HaveNextTurn)
	f.Draw = buildDrawList(t.route, tc, fillet, haveFillet)

	NavLog(t.route.Approach.Id, tc.Time, NavLogGuidance, "%d %s: dev %.2f dist %.2f %q", t.current,
		cur.Leg.Kind, f.Guidance.Deviation, f.Guidance.DistanceToFix, f.Guidance.Status)

	t.last, t.haveLast, t.lastTime = f, true, sample.Time
	return f, nil
}

func (t *Tracker) updateContext(sample av.PositionSample) {
	tc := &t.tc
	tun := &t.tuning

	t.gs.Add(max(sample.GroundSpeed, 0))
	var sum float32
	for i := range t.gs.Size() {
		sum += t.gs.Get(i)
	}
	gs := max(sum/float32(t.gs.Size()), tun.MinGroundSpeed)

	tc.Time = sample.Time
	tc.Position = t.route.Approach.Projector.Project(sample.Position)
	tc.Track = math.NormalizeHeading(sample.Track)
	tc.Altitude = sample.Altitude
	tc.GroundSpeed = gs
	tc.TurnRadius = math.StandardTurnRadius(gs)
	tc.Tuning = tun
	tc.Current = t.current
	if t.current != -1 {
		tc.Elapsed = sample.Time.Sub(t.stepStart)
	}
}

func (t *Tracker) aircraftPose() Pose {
	return Pose{P: t.tc.Position, Heading: t.tc.Track, Altitude: t.tc.Altitude}
}

// start chooses the first step to fly: the first one that isn't a runt,
// computed from the aircraft's position. Radar vector steps are always
// flyable.
func (t *Tracker) start() {
	steps := t.route.Steps
	steps[0].Begin = t.aircraftPose()
	t.computeFrom(0)

	first := len(steps) - 1
	for i, s := range steps {
		if !s.Runt || s.Leg.Kind == LegRV {
			first = i
			break
		}
	}
	t.makeCurrent(first)
	NavLog(t.route.Approach.Id, t.tc.Time, NavLogState, "starting at step %d: %s", first, steps[first].Text())
}

// computeFrom computes steps from i to the end, each starting where the
// one before ends. Step i keeps its begin pose.
func (t *Tracker) computeFrom(i int) {
	steps := t.route.Steps
	for j := i; j < len(steps); j++ {
		if j > i {
			steps[j].Begin = steps[j-1].End
		}
		steps[j].safeCompute(&t.tc, t.lg)
	}
}

func (t *Tracker) makeCurrent(i int) {
	t.current = i
	t.tc.Current = i
	t.tc.StepStart = t.aircraftPose()
	t.tc.Elapsed = 0
	t.stepStart = t.tc.Time
}

// nextStep returns the step that follows step i, skipping runts, or nil
// at the end of the route.
func (t *Tracker) nextStep(i int) *Step {
	steps := t.route.Steps
	if lt := steps[i].LoopTo; lt >= 0 {
		return steps[lt]
	}
	for j := i + 1; j < len(steps); j++ {
		if !steps[j].Runt {
			return steps[j]
		}
	}
	return nil
}

// advance moves to the following steps for as long as the aircraft has
// finished the current one. A step is finished once the aircraft is
// past the start of the turn onto the next step (or halfway along the
// step if there's no turn) and is closer to the next step, or once it
// has flown past the end. It returns the fillet from the current step
// to the next.
func (t *Tracker) advance() (FilletArc, bool) {
	steps := t.route.Steps
	tc := &t.tc
	tun := &t.tuning

	for range len(steps) + 1 {
		cur := steps[t.current]
		next := t.nextStep(t.current)
		if next == nil {
			return FilletArc{}, false
		}
		if next.Index == cur.LoopTo {
			// The loop step's begin pose is where the step before it
			// ends the first time around; going around again, it starts
			// where this one ends.
			next.Begin = cur.End
			next.safeCompute(tc, t.lg)
		}

		fillet, ok := ComputeFillet(cur.Shape, next.Shape, tc.TurnRadius, tun)
		if cur.Behind {
			return fillet, ok
		}

		L := cur.Shape.Length()
		along, _ := cur.Progress(tc.Position)
		threshold := L / 2
		if ok {
			threshold, _ = cur.Shape.Project(fillet.P0)
		}
		closer := next.Shape.Distance(tc.Position) < cur.Shape.Distance(tc.Position)

		if !cur.Runt && along < L && !(closer && along >= threshold) {
			return fillet, ok
		}

		if next.Index == cur.LoopTo {
			tc.hold(cur.Leg).looped = true
			NavLog(t.route.Approach.Id, tc.Time, NavLogHold, "%s: around again", cur.Leg)
		}
		// The new current step keeps the begin pose it was just computed
		// with.
		t.makeCurrent(next.Index)
		t.computeFrom(next.Index)
		NavLog(t.route.Approach.Id, tc.Time, NavLogState, "advance to %d: %s", next.Index, next.Text())
	}
	return FilletArc{}, false
}

// nextTurn returns the turn ahead of the aircraft: the current step if it
// is itself a turn, otherwise the fillet onto the next step or, if the
// next step is a turn that starts where this one ends, that.
func nextTurn(cur, next *Step, p [2]float32, fillet FilletArc, haveFillet bool) (NextTurn, bool) {
	along, _ := cur.Progress(p)
	if cur.Shape.Kind == ShapeArc && cur.Shape.Sweep != 0 {
		return NextTurn{Dir: cur.Shape.Turn(), Course: cur.Shape.EndHeading()}, true
	}
	if haveFillet {
		start, _ := cur.Shape.Project(fillet.P0)
		return NextTurn{
			Dir:      fillet.Turn,
			Course:   math.NormalizeHeading(fillet.Start + fillet.Turn.Sign()*(fillet.Sweep+90)),
			Distance: max(0, start-along),
		}, true
	}
	if next != nil && next.Shape.Kind == ShapeArc && next.Shape.Sweep != 0 {
		return NextTurn{
			Dir:      next.Shape.Turn(),
			Course:   next.Shape.EndHeading(),
			Distance: max(0, cur.Shape.Length()-along),
		}, true
	}
	return NextTurn{}, false
}
