// nav/hold_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"testing"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

func TestHoldGeometry(t *testing.T) {
	w := newTestWorld()
	tun := DefaultTuning()
	tc := testTrackingContext(&tun)

	l := initLegs(t, w, "HM,wp=HOLD,mc=180,td=R")[0]
	g := makeHoldGeometry(l, tc, 3000)
	if !near(g.Length, 2, 0.001) {
		t.Errorf("one minute at 120 knots should be 2nm, got %f", g.Length)
	}

	// Right turns from a southbound inbound course put the racetrack to
	// the west of it.
	oval := g.Oval()
	if oval[0].Turn() != av.TurnRight || oval[2].Turn() != av.TurnRight {
		t.Errorf("expected right turns, got %s %s", oval[0].Turn(), oval[2].Turn())
	}
	if c := oval[0].Center; c[0] >= 0 {
		t.Errorf("near turn center %v isn't west of the fix", c)
	}
	if h := oval[1].StartHeading(); !near(math.AngleDiffU(h), 0, 0.01) {
		t.Errorf("outbound heading %f", h)
	}
	for i := range oval {
		next := oval[(i+1)%len(oval)]
		if !near2(oval[i].P1, next.P0, 0.01) {
			t.Errorf("oval shape %d ends at %v, next starts at %v", i, oval[i].P1, next.P0)
		}
		if d := math.HeadingDifference(oval[i].EndHeading(), next.StartHeading()); d > 0.5 {
			t.Errorf("oval shape %d isn't tangent to the next: %f", i, d)
		}
	}
	if !near2(oval[3].P1, l.FixP, 0.01) {
		t.Errorf("inbound leg ends at %v", oval[3].P1)
	}

	// Explicit distances override the time.
	l = initLegs(t, w, "HM,wp=HOLD,mc=180,td=L,nm=4")[0]
	if g := makeHoldGeometry(l, tc, 3000); g.Length != 4 {
		t.Errorf("expected 4nm legs, got %f", g.Length)
	}
	// Holds above 14,000' have 1.5 minute legs.
	l = initLegs(t, w, "HM,wp=HOLD,mc=180,td=L")[0]
	if g := makeHoldGeometry(l, tc, 15000); !near(g.Length, 3, 0.001) {
		t.Errorf("expected 3nm legs, got %f", g.Length)
	}
}

func TestDirectEntryAlongInbound(t *testing.T) {
	w := newTestWorld()
	tun := DefaultTuning()
	tc := testTrackingContext(&tun)

	for _, td := range []string{"R", "L"} {
		l := initLegs(t, w, "HM,wp=HOLD,mc=180,td="+td)[0]
		g := makeHoldGeometry(l, tc, 3000)
		p := planHold(g, av.HoldEntryDirect, 180)

		if p.Entry != av.HoldEntryDirect {
			t.Errorf("%s: entry %s", td, p.Entry)
		}
		if p.Shapes[0].Length() > 0.001 {
			t.Errorf("%s: expected no lead-in, got %s", td, p.Shapes[0])
		}
		turn := p.Shapes[1]
		if turn.Kind != ShapeArc || !near(math.Abs(turn.Sweep), 180, 0.01) {
			t.Errorf("%s: expected a 180 degree turn, got %s", td, turn)
		}
		if turn.Turn() != l.Turn {
			t.Errorf("%s: turn direction %s", td, turn.Turn())
		}
		if !near2(turn.P0, l.FixP, 0.01) {
			t.Errorf("%s: turn starts at %v", td, turn.P0)
		}
		// After the turn the aircraft is on the outbound leg.
		if h := turn.EndHeading(); !near(math.AngleDiffU(h), 0, 0.5) {
			t.Errorf("%s: heading after the turn %f", td, h)
		}
		if d := math.HeadingDifference(p.Shapes[2].StartHeading(), 0); d > 0.5 {
			t.Errorf("%s: outbound leg %s", td, p.Shapes[2])
		}
	}
}

func TestHoldEntryContinuity(t *testing.T) {
	w := newTestWorld()
	tun := DefaultTuning()
	tc := testTrackingContext(&tun)

	for _, td := range []string{"R", "L"} {
		l := initLegs(t, w, "HM,wp=HOLD,mc=180,td="+td)[0]
		g := makeHoldGeometry(l, tc, 3000)
		for _, entry := range []av.HoldEntry{av.HoldEntryDirect, av.HoldEntryTeardrop, av.HoldEntryParallel} {
			for dh := float32(-60); dh <= 60; dh += 10 {
				hin := math.NormalizeHeading(180 + dh)
				name := fmt.Sprintf("%s %s %.0f", td, entry, hin)
				p := planHold(g, entry, hin)

				if !near2(p.Shapes[0].P0, l.FixP, 0.02) {
					t.Errorf("%s: entry starts at %v", name, p.Shapes[0].P0)
				}
				for i := 0; i+1 < len(p.Shapes); i++ {
					if !p.Shapes[i].IsFinite() {
						t.Errorf("%s: shape %d isn't finite", name, i)
					}
					if !near2(p.Shapes[i].P1, p.Shapes[i+1].P0, 0.02) {
						t.Errorf("%s: shape %d ends at %v, %d starts at %v", name, i, p.Shapes[i].P1, i+1,
							p.Shapes[i+1].P0)
					}
				}
				if last := p.Shapes[len(p.Shapes)-1]; !near2(last.P1, l.FixP, 0.02) {
					t.Errorf("%s: entry finishes at %v, not at the fix", name, last.P1)
				}
				// The last shape is inbound to the fix.
				if last := p.Shapes[len(p.Shapes)-1]; last.Length() > 0.01 &&
					math.HeadingDifference(last.EndHeading(), 180) > 0.5 {
					t.Errorf("%s: final heading %f", name, last.EndHeading())
				}
			}
		}
	}
}

func TestHoldEntrySteps(t *testing.T) {
	w := newTestWorld()
	tun := DefaultTuning()
	tc := testTrackingContext(&tun)

	l := initLegs(t, w, "HM,wp=HOLD,mc=180,td=R")[0]
	steps := l.Steps()
	for i, s := range steps {
		s.Index = i
	}
	steps[holdSlotToFix].Begin = Pose{P: [2]float32{-0.5, -5}, Heading: 0, Altitude: 3000}
	for i, s := range steps {
		if i > 0 {
			s.Begin = steps[i-1].End
		}
		s.Compute(tc)
	}

	// Arriving northbound, nearly opposite the inbound course, gives a
	// parallel entry for right turns.
	hs := tc.hold(l)
	if !hs.planned || hs.plan.Entry != av.HoldEntryParallel {
		t.Fatalf("expected a planned parallel entry, got %+v", hs.plan.Entry)
	}
	for i := 1; i < len(steps); i++ {
		if !near2(steps[i-1].End.P, steps[i].Shape.P0, 0.02) {
			t.Errorf("step %d ends at %v, step %d starts at %v", i-1, steps[i-1].End.P, i, steps[i].Shape.P0)
		}
	}
	if txt := steps[holdSlotEntry0].Text(); txt != "Hold HOLD parallel entry" {
		t.Errorf("entry text %q", txt)
	}

	// Going around again, the far turn is the standard one.
	hs.looped = true
	steps[holdSlotFarTurn].Begin = steps[holdSlotOutbound].End
	steps[holdSlotFarTurn].Compute(tc)
	if far := makeHoldGeometry(l, tc, 3000).farTurn(); !near2(steps[holdSlotFarTurn].Shape.Center, far.Center, 0.001) {
		t.Errorf("far turn %s, expected %s", steps[holdSlotFarTurn].Shape, far)
	}
	// And so is the inbound leg, not the short one of the parallel entry.
	inbound := steps[holdSlotInbound]
	inbound.Begin = steps[holdSlotFarTurn].End
	inbound.Compute(tc)
	g := makeHoldGeometry(l, tc, 3000)
	if !near2(inbound.Shape.P0, steps[holdSlotFarTurn].Shape.P1, 0.02) || !near2(inbound.Shape.P1, l.FixP, 0.001) ||
		!near(inbound.Shape.Length(), g.Length, 0.02) {
		t.Errorf("inbound %s after far turn %s, expected length %f", inbound.Shape, steps[holdSlotFarTurn].Shape, g.Length)
	}
	if last := steps[len(steps)-1]; last.LoopTo != holdSlotFarTurn || !near2(last.End.P, steps[holdSlotFarTurn].Shape.P0, 0.02) {
		t.Errorf("outbound leg doesn't lead back into the far turn: %s", last)
	}
}

func TestHoldEntryRecheck(t *testing.T) {
	w := newTestWorld()
	tun := DefaultTuning()

	l := initLegs(t, w, "HM,wp=HOLD,mc=180,td=R")[0]
	steps := l.Steps()
	for i, s := range steps {
		s.Index = i
	}
	entry := steps[holdSlotEntry0]
	entry.Begin = Pose{P: l.FixP, Heading: 0, Altitude: 3000}

	tc := testTrackingContext(&tun)
	g := makeHoldGeometry(l, tc, 3000)
	teardrop := planHold(g, av.HoldEntryTeardrop, 0).Shapes[0]
	onTeardrop := teardrop.PointAt(teardrop.Length() / 2)

	// Too early: the planned parallel entry stands even though the
	// aircraft is flying the teardrop.
	tc.Current = entry.Index
	tc.Position = onTeardrop
	tc.Elapsed = 10 * time.Second
	entry.Compute(tc)
	if hs := tc.hold(l); hs.plan.Entry != av.HoldEntryParallel || hs.rechecked {
		t.Fatalf("entry changed before the recheck: %s", hs.plan.Entry)
	}

	tc.Elapsed = time.Duration(tun.HoldEntryRecheckSeconds+5) * time.Second
	entry.Compute(tc)
	hs := tc.hold(l)
	if hs.plan.Entry != av.HoldEntryTeardrop || !hs.rechecked || !hs.hasOverride {
		t.Fatalf("expected a switch to the teardrop entry, got %s", hs.plan.Entry)
	}
	if !near2(entry.Shape.P1, teardrop.P1, 0.01) {
		t.Errorf("entry step %s isn't the teardrop %s", entry.Shape, teardrop)
	}

	// The entry is only reconsidered once.
	parallel := planHold(g, av.HoldEntryParallel, 0).Shapes[0]
	tc.Position = parallel.PointAt(parallel.Length() / 2)
	tc.Elapsed += time.Minute
	entry.Compute(tc)
	if hs.plan.Entry != av.HoldEntryTeardrop {
		t.Errorf("entry switched back to %s", hs.plan.Entry)
	}
}
