// nav/tracker_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"errors"
	"testing"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

var testTime = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

func TestTrackerNoRoute(t *testing.T) {
	w := newTestWorld()
	tr := NewTracker(DefaultTuning(), nil)

	f, err := tr.Update(w.sample(testTime, [2]float32{0, -10}, 360, 3000, 120))
	if !errors.Is(err, ErrNoApproach) || f.Current != -1 {
		t.Errorf("expected ErrNoApproach, got %v %d", err, f.Current)
	}

	ap := w.testApproach(t, nil)
	tr.Install(mustAssemble(t, ap, "EAST", AssembleOptions{}))
	tr.Suspend()
	if _, err := tr.Update(w.sample(testTime, [2]float32{0, -10}, 360, 3000, 120)); !errors.Is(err, ErrSuspended) {
		t.Errorf("expected ErrSuspended, got %v", err)
	}
	tr.Resume()
	if _, err := tr.Update(w.sample(testTime, [2]float32{0, -10}, 360, 3000, 120)); err != nil {
		t.Errorf("update after resuming: %v", err)
	}

	tr.Discontinue()
	if tr.Route() != nil || tr.Current() != -1 {
		t.Errorf("route still installed after discontinuing")
	}
}

func TestTrackerDuplicateTimestamp(t *testing.T) {
	w := newTestWorld()
	ap := w.testApproach(t, nil)
	tr := NewTracker(DefaultTuning(), nil)
	tr.Install(mustAssemble(t, ap, "EAST", AssembleOptions{}))

	f0, err := tr.Update(w.sample(testTime, [2]float32{14, -14}, 315, 3000, 120))
	if err != nil {
		t.Fatal(err)
	}
	// A different position with the same time is ignored.
	f1, err := tr.Update(w.sample(testTime, [2]float32{0, -7}, 360, 2000, 120))
	if err != nil {
		t.Fatal(err)
	}
	if f1.Current != f0.Current || f1.Guidance.Status != f0.Guidance.Status ||
		f1.Guidance.Deviation != f0.Guidance.Deviation {
		t.Errorf("frames differ: %+v, %+v", f0.Guidance, f1.Guidance)
	}
}

func TestTrackerStartSkipsRunts(t *testing.T) {
	w := newTestWorld()
	ap := w.testApproach(t, nil)
	tr := NewTracker(DefaultTuning(), nil)
	r := mustAssemble(t, ap, "EAST", AssembleOptions{})
	tr.Install(r)

	// Starting at EASTF, the IF leg to it has nothing to fly.
	f, err := tr.Update(w.sample(testTime, [2]float32{10, -10}, 270, 3000, 120))
	if err != nil {
		t.Fatal(err)
	}
	if f.Current != 1 || r.Steps[f.Current].Leg.Kind != LegTF {
		t.Errorf("started at step %d: %s", f.Current, r.Steps[f.Current])
	}
	if f.Guidance.Mode != GuidanceCourse || !f.Guidance.HaveDistance || !near(f.Guidance.DistanceToFix, 10, 0.05) {
		t.Errorf("unexpected guidance %+v", f.Guidance)
	}
}

func TestRadarVectorsBehind(t *testing.T) {
	w := newTestWorld()
	ap := w.testApproach(t, nil)
	tr := NewTracker(DefaultTuning(), nil)
	tr.Install(mustAssemble(t, ap, TransitionRadarVectors, AssembleOptions{}))

	// Heading away from the final approach course.
	p := [2]float32{-5, -10}
	f, err := tr.Update(w.sample(testTime, p, 315, 3000, 120))
	if err != nil {
		t.Fatal(err)
	}
	if !f.Guidance.Behind || f.Guidance.Mode != GuidanceNone || f.Guidance.HaveDistance || f.Current != 0 {
		t.Errorf("expected no guidance with final behind, got %+v at %d", f.Guidance, f.Current)
	}
	if f.Draw.Current[1] != f.Draw.Current[0] {
		t.Errorf("current step drawn while the final is behind")
	}

	// Turning toward it.
	f, err = tr.Update(w.sample(testTime.Add(time.Second), p, 45, 3000, 120))
	if err != nil {
		t.Fatal(err)
	}
	if f.Guidance.Behind || f.Guidance.Mode != GuidanceCourse || f.Current != 0 {
		t.Errorf("expected course guidance, got %+v at %d", f.Guidance, f.Current)
	}
	if !near(f.Guidance.Deviation, 0, 0.01) {
		t.Errorf("deviation %f along the vector", f.Guidance.Deviation)
	}
	if !f.HaveNextTurn || f.NextTurn.Dir != av.TurnLeft {
		t.Errorf("expected a left turn onto final, got %+v", f.NextTurn)
	}

	// A dialed course takes precedence over the track.
	tr.SetDialedCourse(315, true)
	f, err = tr.Update(w.sample(testTime.Add(2*time.Second), p, 45, 3000, 120))
	if err != nil {
		t.Fatal(err)
	}
	if !f.Guidance.Behind {
		t.Errorf("dialed course ignored: %+v", f.Guidance)
	}
}

func TestSimulatedApproach(t *testing.T) {
	w := newTestWorld()
	ap := w.testApproach(t, nil)
	r := mustAssemble(t, ap, "EAST", AssembleOptions{})
	tr := NewTracker(DefaultTuning(), nil)
	tr.Install(r)

	sim := &Simulator{
		Position:    [2]float32{14, -14},
		Heading:     315,
		Altitude:    3000,
		GroundSpeed: 120,
		Time:        testTime,
		Projector:   w.proj,
	}

	loopTo := r.Steps[len(r.Steps)-1].LoopTo
	prev := -1
	sawGlideslope, sawMissed, looped := false, false, false
	for i := 0; i < 4000 && !looped; i++ {
		f, err := tr.Update(sim.Sample())
		if err != nil {
			t.Fatalf("%d: %v", i, err)
		}

		if f.Current < prev {
			if f.Current != loopTo {
				t.Fatalf("%d: went back from step %d to %d", i, prev, f.Current)
			}
			looped = true
		}
		if r.Steps[f.Current].Runt {
			t.Errorf("%d: runt step %s is current", i, r.Steps[f.Current])
		}
		if f.Current >= r.MissedStart {
			sawMissed = true
		}
		if f.Guidance.Mode == GuidanceCourseGlideslope {
			sawGlideslope = true
		}

		d := f.Draw
		if d.Current[0] != 0 || d.Current[1] != d.Upcoming[0] || d.Upcoming[1] != d.Missed[0] ||
			d.Missed[1] != len(d.Data) {
			t.Fatalf("%d: draw list bands out of order: %v %v %v %d", i, d.Current, d.Upcoming, d.Missed, len(d.Data))
		}
		if f.Current >= r.MissedStart && d.Upcoming[1] != d.Upcoming[0] {
			t.Errorf("%d: upcoming steps drawn during the missed approach", i)
		}

		prev = f.Current
		sim.Fly(r, f, time.Second)
	}

	if !sawMissed {
		t.Errorf("never reached the missed approach; ended at step %d %s at %v", prev, r.Steps[prev], sim.Position)
	}
	if !sawGlideslope {
		t.Errorf("no glideslope guidance on final")
	}
	if !looped {
		t.Errorf("didn't go around the hold")
	}
}

func TestCourseDeviationSide(t *testing.T) {
	w := newTestWorld()
	ap := w.testApproach(t, nil)
	r := mustAssemble(t, ap, "EAST", AssembleOptions{})
	tun := DefaultTuning()
	tc := testTrackingContext(&tun)

	// Westbound from EASTF to IFFIX, and a clockwise arc between the two
	// passing south of them.
	line := *r.Steps[1]
	line.Shape = MakeLine([2]float32{10, -10}, [2]float32{0, -10})
	arc := *r.Steps[1]
	arc.Shape = MakeArc([2]float32{5, -10}, 5, 90, 180)

	for _, test := range []struct {
		name string
		step *Step
		p    [2]float32
		dev  float32
	}{
		// Right of a westbound course is north; the course is then to
		// the left.
		{name: "line right", step: &line, p: [2]float32{8, -9}, dev: -1},
		{name: "line left", step: &line, p: [2]float32{8, -11}, dev: 1},
		{name: "arc inside", step: &arc, p: [2]float32{5, -14}, dev: -1},
		{name: "arc outside", step: &arc, p: [2]float32{5, -16}, dev: 1},
	} {
		tc.Position = test.p
		g := computeGuidance(r, tc, test.step, NextTurn{}, false)
		if !near(g.Deviation, test.dev, 1e-3) {
			t.Errorf("%s: deviation %f, expected %f", test.name, g.Deviation, test.dev)
		}
		if math.Sign(g.Needle) != math.Sign(test.dev) {
			t.Errorf("%s: needle %f on the wrong side", test.name, g.Needle)
		}
	}
}

func TestGlideslopeDeviation(t *testing.T) {
	w := newTestWorld()
	ap := w.testApproach(t, nil)
	r := mustAssemble(t, ap, "EAST", AssembleOptions{})
	tun := DefaultTuning()
	tc := testTrackingContext(&tun)

	final := r.Steps[3]
	if final.Leg.FixIdent() != "RW36" {
		t.Fatalf("unexpected step %s", final)
	}

	tc.Position = [2]float32{0, -3}
	onPath := ap.Elevation + r.GlidePath.TCH + math.Tan(math.Radians(3))*3*feetPerNM
	for _, test := range []struct {
		alt  float32
		sign float32
	}{
		{alt: onPath, sign: 0},
		{alt: onPath + 300, sign: 1},
		{alt: onPath - 300, sign: -1},
	} {
		tc.Altitude = test.alt
		dev, ok := glideslopeDeviation(r, tc, final)
		if !ok {
			t.Errorf("%f: no glideslope", test.alt)
			continue
		}
		if test.sign == 0 && !near(dev, 0, 0.01) || test.sign != 0 && math.Sign(dev) != test.sign {
			t.Errorf("%f: deviation %f", test.alt, dev)
		}
	}

	// Only from the final approach fix to the missed approach.
	for _, s := range []*Step{r.Steps[1], r.Steps[r.MissedStart]} {
		if _, ok := glideslopeDeviation(r, tc, s); ok {
			t.Errorf("unexpected glideslope on step %s", s)
		}
	}
}

func TestStatusLine(t *testing.T) {
	w := newTestWorld()
	ap := w.testApproach(t, nil)
	r := mustAssemble(t, ap, "EAST", AssembleOptions{})
	tun := DefaultTuning()
	tc := testTrackingContext(&tun)
	cur := r.Steps[1]

	right := func(d float32) NextTurn { return NextTurn{Dir: av.TurnRight, Course: 90, Distance: d} }
	for _, test := range []struct {
		nt       NextTurn
		haveTurn bool
		g        Guidance
		expect   string
	}{
		{nt: right(0.2), haveTurn: true, expect: "Turn right 090° in 6s"},
		{nt: right(0), haveTurn: true, expect: "Turn right 090°"},
		{nt: right(2), haveTurn: true, expect: cur.Text() + ", turn R in 2.0nm 1:00"},
		{g: Guidance{DistanceToFix: 3, HaveDistance: true}, expect: cur.Text() + " 3.0nm 1:30"},
		{expect: cur.Text()},
	} {
		if s := statusLine(tc, cur, test.g, test.nt, test.haveTurn); s != test.expect {
			t.Errorf("got %q, expected %q", s, test.expect)
		}
	}
}

func TestDrawListTransform(t *testing.T) {
	var d DrawList
	d.AddLine([2]float32{0, 0}, [2]float32{1, 2})
	d.AddArc([2]float32{1, 1}, 1, 30, 90)
	d.Current = [2]int{0, 10}

	same := d.Transform(math.Identity3x3())
	if len(same.Data) != len(d.Data) || same.Current != d.Current {
		t.Fatalf("identity transform changed the list: %v", same)
	}
	for i := range d.Data {
		if !math.IsNaN(d.Data[i]) && !near(same.Data[i], d.Data[i], 1e-3) {
			t.Errorf("identity transform changed %d: %f -> %f", i, d.Data[i], same.Data[i])
		}
	}

	// Scale to pixels with y down.
	m := math.Identity3x3().Translate(100, 100).Scale(2, -2)
	px := d.Transform(m)

	arcPoint := func(c [2]float32, r, a float32) [2]float32 {
		return math.Add2f(c, math.Scale2f(math.HeadingVector(a), r))
	}
	var lines, arcs int
	px.Visit(func(_ int, p0, p1 [2]float32) {
		lines++
		if !near2(p0, [2]float32{100, 100}, 1e-4) || !near2(p1, [2]float32{102, 96}, 1e-4) {
			t.Errorf("line %v %v", p0, p1)
		}
	}, func(_ int, c [2]float32, r, start, sweep float32) {
		arcs++
		if !near2(c, [2]float32{102, 98}, 1e-4) || !near(r, 2, 1e-4) || !near(sweep, -90, 1e-4) {
			t.Errorf("arc %v %f %f %f", c, r, start, sweep)
		}
		// The arc's ends map to the transformed ends of the original.
		for _, a := range []float32{0, 90} {
			want := m.TransformPoint(arcPoint([2]float32{1, 1}, 1, 30+a))
			if got := arcPoint(c, r, start-a); !near2(got, want, 1e-3) {
				t.Errorf("arc point at %f: %v, expected %v", a, got, want)
			}
		}
	})
	if lines != 1 || arcs != 1 {
		t.Errorf("visited %d lines and %d arcs", lines, arcs)
	}
}
