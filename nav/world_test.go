// nav/world_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"testing"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/math"
)

// The test airport, KTST, has a single runway 36 at the origin of the
// approach plane. The final approach course runs north along x=0.
//
//	HOLD   (0,5)
//	RW36   (0,0)
//	FAFIX  (0,-5)
//	IFFIX  (0,-10)    EASTF (10,-10)
//	TSTV   (20,0)
var testCenter = math.Point2LL{-70.9165, 42.5842}

type testWorld struct {
	proj   av.LocalProjector
	finder av.MapFinder
}

func newTestWorld() *testWorld {
	w := &testWorld{proj: av.NewLocalProjector(testCenter), finder: make(av.MapFinder)}
	w.add("KTST", av.WaypointAirport, [2]float32{0, 0}, 100)
	w.add("KTST.RW36", av.WaypointRunway, [2]float32{0, 0}, 100)
	w.add("IFFIX", av.WaypointFix, [2]float32{0, -10}, 0)
	w.add("FAFIX", av.WaypointFix, [2]float32{0, -5}, 0)
	w.add("EASTF", av.WaypointFix, [2]float32{10, -10}, 0)
	w.add("HOLD", av.WaypointFix, [2]float32{0, 5}, 0)
	w.add("TSTV", av.WaypointVORDME, [2]float32{20, 0}, 0)
	return w
}

func (w *testWorld) add(ident string, typ av.WaypointType, p [2]float32, elev float32) {
	w.finder.Add(av.Waypoint{Ident: ident, Type: typ, Location: w.proj.Unproject(p), Elevation: elev})
}

func (w *testWorld) context() *legContext {
	return &legContext{
		finder:  av.ScopedFinder{Airport: "KTST", Base: w.finder},
		proj:    w.proj,
		airport: "KTST",
	}
}

const (
	testFinal  = "CF,wp=IFFIX,mc=360,a=+3000;CF,wp=FAFIX,mc=360,faf,a=+2000;CF,wp=RW36,mc=360,map,gpa=3.0,tch=50"
	testMissed = "CA,mc=360,a=+1000;TD,wp=HOLD,td=R;HM,wp=HOLD,mc=180,td=R"
)

// records returns the procedure records for I36 at KTST, with the
// segments given in extra added or replacing the standard ones.
func testRecords(approach string, extra map[string]string) []av.ProcedureRecord {
	segs := map[string]string{
		SegmentFinal:  testFinal,
		SegmentMissed: testMissed,
		"EAST":        "IF,wp=EASTF,iaf;TF,wp=IFFIX,a=+3000",
		"PTE":         "IF,wp=EASTF,iaf;PI,wp=IFFIX,mc=360,td=R",
	}
	for k, v := range extra {
		if v == "" {
			delete(segs, k)
		} else {
			segs[k] = v
		}
	}

	var recs []av.ProcedureRecord
	for _, seg := range []string{"EAST", "PTE", SegmentFinal, SegmentMissed} {
		if legs, ok := segs[seg]; ok {
			recs = append(recs, av.ProcedureRecord{Airport: "KTST", Approach: approach, Segment: seg, Legs: legs})
			delete(segs, seg)
		}
	}
	for seg, legs := range segs {
		recs = append(recs, av.ProcedureRecord{Airport: "KTST", Approach: approach, Segment: seg, Legs: legs})
	}
	return recs
}

// testApproach parses I36 with the given segment overrides and fails
// the test if it can't be.
func (w *testWorld) testApproach(t *testing.T, extra map[string]string) *Approach {
	t.Helper()
	aps, e := ParseApproaches("KTST", testRecords("I36", extra), w.finder, nil)
	if e.HaveErrors() {
		t.Fatalf("unexpected parse errors: %s", e.String())
	}
	if len(aps) != 1 {
		t.Fatalf("expected 1 approach, got %d", len(aps))
	}
	return aps[0]
}

func mustAssemble(t *testing.T, ap *Approach, transition string, opt AssembleOptions) *Route {
	t.Helper()
	r, req, err := Assemble(ap, transition, opt)
	if err != nil {
		t.Fatalf("%s: %v", transition, err)
	}
	if req != nil {
		t.Fatalf("%s: unexpected decision request %q", transition, req.Text)
	}
	return r
}

func testTrackingContext(tun *Tuning) *TrackingContext {
	return &TrackingContext{
		Current:     -1,
		GroundSpeed: 120,
		TurnRadius:  math.StandardTurnRadius(120),
		Altitude:    3000,
		Tuning:      tun,
	}
}

func (w *testWorld) sample(t time.Time, p [2]float32, track, alt, gs float32) av.PositionSample {
	return av.PositionSample{Time: t, Position: w.proj.Unproject(p), Track: track, Altitude: alt, GroundSpeed: gs}
}

func near(a, b, tol float32) bool {
	return math.Abs(a-b) <= tol
}

func near2(a, b [2]float32, tol float32) bool {
	return math.Distance2f(a, b) <= tol
}

const pi = 3.14159265
