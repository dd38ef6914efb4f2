// aviation/aviation_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/math"
)

func TestParseAltitudeRestriction(t *testing.T) {
	for _, test := range []struct {
		s      string
		r      [2]float32
		errors bool
	}{
		{s: "", r: [2]float32{0, 0}},
		{s: "+2000", r: [2]float32{2000, 0}},
		{s: "-3000", r: [2]float32{0, 3000}},
		{s: "2500", r: [2]float32{2500, 2500}},
		{s: "2000/3000", r: [2]float32{2000, 3000}},
		{s: "3000/2000", r: [2]float32{2000, 3000}},
		{s: "+abc", errors: true},
		{s: "2000/", errors: true},
		{s: "0", errors: true},
	} {
		ar, err := ParseAltitudeRestriction(test.s)
		if test.errors {
			if !errors.Is(err, ErrInvalidAltitude) {
				t.Errorf("%q: expected ErrInvalidAltitude, got %v", test.s, err)
			}
			continue
		}
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.s, err)
		} else if ar.Range != test.r {
			t.Errorf("%q: got %v, expected %v", test.s, ar.Range, test.r)
		} else if enc := ar.Encoded(); test.s != "3000/2000" && enc != test.s {
			t.Errorf("%q: encoded as %q", test.s, enc)
		}
	}
}

func TestAltitudeIntersect(t *testing.T) {
	mk := func(s string) AltitudeRestriction {
		ar, err := ParseAltitudeRestriction(s)
		if err != nil {
			t.Fatalf("%s: %v", s, err)
		}
		return ar
	}
	for _, test := range []struct {
		a, b   string
		expect string
		ok     bool
	}{
		{"+2000", "+2500", "+2500", true},
		{"+2000", "-3000", "2000/3000", true},
		{"2000", "+1800", "2000", true},
		{"", "-4000", "-4000", true},
		{"+3000", "-2000", "", false},
		{"2000", "2500", "", false},
	} {
		r, ok := mk(test.a).Intersect(mk(test.b))
		if ok != test.ok {
			t.Errorf("%s ∩ %s: got ok %v", test.a, test.b, ok)
			continue
		}
		if ok && r.Encoded() != test.expect {
			t.Errorf("%s ∩ %s: got %q, expected %q", test.a, test.b, r.Encoded(), test.expect)
		}
		if ok {
			// Anything the result allows must be allowed by both.
			for alt := float32(0); alt < 10000; alt += 50 {
				if r.Allows(alt) && !(mk(test.a).Allows(alt) && mk(test.b).Allows(alt)) {
					t.Errorf("%s ∩ %s = %s allows %.0f", test.a, test.b, r.Encoded(), alt)
				}
			}
		}
	}
}

func TestHoldEntryCompleteness(t *testing.T) {
	for _, turn := range []TurnDirection{TurnLeft, TurnRight} {
		inbound := float32(40)
		outbound := math.OppositeHeading(inbound)
		for theta := float32(-180); theta < 180; theta += 0.25 {
			hdg := math.NormalizeHeading(inbound + turn.Sign()*theta)
			e := ClassifyHoldEntry(hdg, inbound, turn)

			// Compare against the sector definitions measured from the
			// outbound course, away from the boundaries.
			var parallel, teardrop bool
			if turn == TurnRight {
				parallel = math.IsHeadingBetween(hdg, outbound, outbound+110)
				teardrop = math.IsHeadingBetween(hdg, outbound-70, outbound)
			} else {
				parallel = math.IsHeadingBetween(hdg, outbound-110, outbound)
				teardrop = math.IsHeadingBetween(hdg, outbound, outbound+70)
			}
			onBoundary := math.Abs(theta+70) < 0.5 || math.Abs(theta-110) < 0.5 || math.Abs(theta) > 179.5
			if onBoundary {
				continue
			}
			switch e {
			case HoldEntryParallel:
				if !parallel || teardrop {
					t.Errorf("%s turns theta %.2f: parallel outside its sector", turn, theta)
				}
			case HoldEntryTeardrop:
				if !teardrop || parallel {
					t.Errorf("%s turns theta %.2f: teardrop outside its sector", turn, theta)
				}
			case HoldEntryDirect:
				if parallel || teardrop {
					t.Errorf("%s turns theta %.2f: direct inside another sector", turn, theta)
				}
			}
		}
	}

	// Boundaries belong to the direct entry.
	for _, test := range []struct {
		theta float32
		e     HoldEntry
	}{
		{-70.01, HoldEntryParallel}, {-70, HoldEntryDirect}, {0, HoldEntryDirect},
		{110, HoldEntryDirect}, {110.01, HoldEntryTeardrop}, {-180, HoldEntryParallel},
		{179.9, HoldEntryTeardrop},
	} {
		if e := HoldEntryForAngle(test.theta); e != test.e {
			t.Errorf("theta %.2f: got %s, expected %s", test.theta, e, test.e)
		}
	}
}

func TestHoldLegMinutes(t *testing.T) {
	if HoldLegMinutes(3000) != 1 || HoldLegMinutes(14000) != 1 || HoldLegMinutes(15000) != 1.5 {
		t.Errorf("unexpected hold leg timing")
	}
}

func TestParseApproachId(t *testing.T) {
	for _, test := range []struct {
		id     string
		name   string
		rwy    string
		errors bool
	}{
		{id: "I16", name: "ILS RWY 16", rwy: "RW16"},
		{id: "R34-Y", name: "RNAV (GPS) Y RWY 34", rwy: "RW34"},
		{id: "R34Y", name: "RNAV (GPS) Y RWY 34", rwy: "RW34"},
		{id: "I04L", name: "ILS RWY 4L", rwy: "RW04L"},
		{id: "L09R", name: "LOC RWY 9R", rwy: "RW09R"},
		{id: "B33", name: "LOC/BC RWY 33", rwy: "RW33"},
		{id: "V-A", name: "VOR-A"},
		{id: "VDM-B", name: "VOR-B"},
		{id: "H22-Z", name: "RNAV (RNP) Z RWY 22", rwy: "RW22"},
		{id: "K16", errors: true},
		{id: "V", errors: true},
		{id: "I16XY", errors: true},
	} {
		a, err := ParseApproachId(test.id)
		if test.errors {
			if err == nil {
				t.Errorf("%s: expected an error", test.id)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: %v", test.id, err)
			continue
		}
		if a.FullName() != test.name {
			t.Errorf("%s: got name %q, expected %q", test.id, a.FullName(), test.name)
		}
		if a.RunwayIdent() != test.rwy {
			t.Errorf("%s: got runway %q, expected %q", test.id, a.RunwayIdent(), test.rwy)
		}
	}
}

func TestResolveWaypoint(t *testing.T) {
	f := MapFinder{}.Add(
		Waypoint{Ident: "LWM", Type: WaypointVORDME, Location: math.Point2LL{-71.123, 42.655}},
		Waypoint{Ident: "KBVY.RW16", Type: WaypointRunway, Location: math.Point2LL{-70.92, 42.59}, Elevation: 96},
		Waypoint{Ident: "RW16", Type: WaypointRunway, Location: math.Point2LL{-80, 30}},
	)

	wp, err := ResolveWaypoint(f, "LWM[090@10", 0)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}
	if d := math.NMDistance2LL(wp.Location, f["LWM"].Location); math.Abs(d-10) > 0.1 {
		t.Errorf("offset waypoint is %.2fnm away, expected 10", d)
	}
	if wp.Location.Longitude() <= f["LWM"].Location.Longitude() {
		t.Errorf("090 offset should be east of the navaid")
	}

	if _, err := ResolveWaypoint(f, "NOPE", 0); err == nil {
		t.Errorf("expected error for unknown waypoint")
	} else {
		var wnf *WaypointNotFoundError
		if !errors.As(err, &wnf) || wnf.Ident != "NOPE" {
			t.Errorf("expected WaypointNotFoundError, got %v", err)
		}
	}
	if _, err := ResolveWaypoint(f, "LWM[090", 0); !errors.Is(err, ErrInvalidWaypointOffset) {
		t.Errorf("expected ErrInvalidWaypointOffset, got %v", err)
	}

	sf := ScopedFinder{Airport: "KBVY", Base: f}
	if wp, ok := sf.FindWaypoint("RW16"); !ok || wp.Elevation != 96 || wp.Ident != "RW16" {
		t.Errorf("scoped finder returned %+v %v", wp, ok)
	}
	if _, ok := sf.FindWaypoint("LWM"); !ok {
		t.Errorf("scoped finder should fall back to the base finder")
	}
}

func TestCachingFinder(t *testing.T) {
	f := MapFinder{}.Add(Waypoint{Ident: "LWM"})
	cf, err := NewCachingFinder(f, 4)
	if err != nil {
		t.Fatal(err)
	}
	for range 3 {
		if _, ok := cf.FindWaypoint("LWM"); !ok {
			t.Errorf("LWM not found")
		}
		if _, ok := cf.FindWaypoint("XXX"); ok {
			t.Errorf("XXX found")
		}
	}
	if hits, misses := cf.Stats(); hits != 4 || misses != 2 {
		t.Errorf("got %d hits %d misses, expected 4 and 2", hits, misses)
	}
}

const testDataset = `
# Beverly
APT KBVY 42.5842,-70.9165 107 15.2
WPT LWM VORDME 42.6552,-71.1230 0 16
WPT KBVY.RW16 RWY 42.5928,-70.9218 96
PROC KBVY I16 final CF,wp=BERGR,mc=155,faf,a=+1700;CF,wp=RW16,mc=155,map,gpa=3.0,tch=52
PROC KBVY I16 missed CA,mc=155,a=+1000;TD,wp=LWM,td=R
WPT BAD FOO 1,2
PROC KBVY tooshort
`

func TestParseDataset(t *testing.T) {
	ds, e := ParseDataset(strings.NewReader(testDataset))
	if len(e.Errors()) != 2 {
		t.Errorf("got errors %v, expected 2", e.Errors())
	}
	if len(ds.Waypoints) != 3 || len(ds.Procedures) != 2 {
		t.Errorf("got %d waypoints %d records", len(ds.Waypoints), len(ds.Procedures))
	}
	if ap := ds.Waypoints["KBVY"]; ap.Type != WaypointAirport || ap.MagneticVariation != 15.2 {
		t.Errorf("unexpected airport %+v", ap)
	}

	var buf bytes.Buffer
	if err := WriteDataset(&buf, ds); err != nil {
		t.Fatal(err)
	}
	ds2, e2 := ParseDataset(&buf)
	if e2.HaveErrors() || len(ds2.Waypoints) != 3 || len(ds2.Procedures) != 2 {
		t.Errorf("rewritten dataset didn't parse back: %v", e2.Errors())
	}
}

func TestDatasetSource(t *testing.T) {
	ds, _ := ParseDataset(strings.NewReader(testDataset))

	var src ProcedureSource = ds
	ctx := context.Background()
	if aps, err := src.Airports(ctx); err != nil || len(aps) != 1 || aps[0] != "KBVY" {
		t.Errorf("got airports %v (%v), expected [KBVY]", aps, err)
	}
	recs, err := src.Records(ctx, "KBVY")
	if err != nil || len(recs) != 2 {
		t.Errorf("got %d records (%v), expected 2", len(recs), err)
	}
	if _, err := src.Records(ctx, "KXXX"); !errors.Is(err, ErrUnknownAirport) {
		t.Errorf("expected ErrUnknownAirport, got %v", err)
	}
}

func TestBundle(t *testing.T) {
	ds, _ := ParseDataset(strings.NewReader(testDataset))

	var buf bytes.Buffer
	if err := WriteBundle(&buf, ds); err != nil {
		t.Fatal(err)
	}
	ds2, err := ReadBundle(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if len(ds2.Procedures) != 2 || ds2.Procedures[1].Legs != ds.Procedures[1].Legs {
		t.Errorf("records didn't survive the bundle: %+v", ds2.Procedures)
	}
	if ds2.Waypoints["LWM"] != ds.Waypoints["LWM"] {
		t.Errorf("got %+v, expected %+v", ds2.Waypoints["LWM"], ds.Waypoints["LWM"])
	}

	if _, err := ReadBundle(strings.NewReader("not zstd")); err == nil {
		t.Errorf("expected error reading garbage")
	}
}

func TestProcedureDB(t *testing.T) {
	ctx := context.Background()
	db, err := OpenProcedureDB(":memory:", log.NewWriter(&bytes.Buffer{}, "error"))
	if err != nil {
		t.Fatal(err)
	}
	defer db.Close()

	ds, _ := ParseDataset(strings.NewReader(testDataset))
	if err := db.Import(ctx, ds); err != nil {
		t.Fatal(err)
	}
	// Importing again replaces rather than duplicates.
	if err := db.Import(ctx, ds); err != nil {
		t.Fatal(err)
	}

	ap, err := db.Airports(ctx)
	if err != nil || len(ap) != 1 || ap[0] != "KBVY" {
		t.Errorf("got airports %v %v", ap, err)
	}
	recs, err := db.Records(ctx, "KBVY")
	if err != nil || len(recs) != 2 || recs[0].Segment != "final" {
		t.Errorf("got records %+v %v", recs, err)
	}
	if _, err := db.Records(ctx, "KXXX"); !errors.Is(err, ErrUnknownAirport) {
		t.Errorf("expected ErrUnknownAirport, got %v", err)
	}

	wp, ok := db.FindWaypoint("LWM")
	if !ok || wp.Type != WaypointVORDME || math.Abs(wp.Location.Latitude()-42.6552) > 1e-4 {
		t.Errorf("got %+v %v", wp, ok)
	}
	if _, ok := db.FindWaypoint("NOPE"); ok {
		t.Errorf("found nonexistent waypoint")
	}

	exp, err := db.Export(ctx)
	if err != nil || len(exp.Waypoints) != 3 || len(exp.Procedures) != 2 {
		t.Errorf("export: %v", err)
	}
}
