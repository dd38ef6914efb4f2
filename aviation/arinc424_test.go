// aviation/arinc424_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bytes"
	"slices"
	"strings"
	"testing"

	"github.com/cifpnav/cifpnav/math"
)

// arincLine returns a blank record with the given strings placed at the
// given offsets: arincLine(0, "SUSAP", 6, "KTST", ...).
func arincLine(fields ...any) string {
	b := bytes.Repeat([]byte{' '}, ARINC424LineLength)
	for i := 0; i+1 < len(fields); i += 2 {
		copy(b[fields[i].(int):], fields[i+1].(string))
	}
	return string(b)
}

// approachLine returns an approach procedure record at KTST.
func approachLine(id string, routeType byte, transition, seq, fix, desc, turn, pt string, extra ...any) string {
	f := []any{0, "SUSAP KTSTK6F", 13, id, 19, string(routeType), 20, transition, 26, seq, 29, fix,
		38, "0", 39, desc, 43, turn, 47, pt}
	return arincLine(append(f, extra...)...)
}

const (
	testLat      = "N42350315"
	testLong     = "W070545940"
	testLatSouth = "N42250300"
	testLatFAF   = "N42300300"
	testLatNorth = "N42400300"
	testLongEast = "W070412440"
)

func testCIFP() string {
	lines := []string{
		"HDR01FAACIFP18      001P013203902410  06-OCT-202510:42:27  U.S.A. DOT FAA",
		arincLine(0, "SUSAP KTSTK6A", 21, "0", 32, testLat, 41, testLong, 51, "W0150", 56, "00107"),
		arincLine(0, "SUSAD ", 13, "LWM", 32, "N42393858", 41, "W071072330", 55, "N42393858", 64, "W071072330", 74, "W0160"),
		arincLine(0, "SUSAEA", 13, "EASTF", 32, testLatSouth, 41, testLongEast),
		arincLine(0, "SUSAP KTSTK6C", 13, "IFFIX", 32, testLatSouth, 41, testLong),
		arincLine(0, "SUSAP KTSTK6C", 13, "FAFIX", 32, testLatFAF, 41, testLong),
		arincLine(0, "SUSAP KTSTK6C", 13, "HOLD", 32, testLatNorth, 41, testLong),

		approachLine("R36", 'A', "EASTF", "010", "EASTF", "  EA", " ", "IF"),
		approachLine("R36", 'A', "EASTF", "020", "IFFIX", "    ", " ", "TF", 82, "+", 84, "03000"),
		approachLine("R36", 'A', "WESTF", "010", "WESTF", "  EA", " ", "IF"),
		approachLine("R36", 'A', "WESTF", "020", "WESTF", "    ", " ", "FM", 70, "0900"),
		approachLine("R36", 'R', "", "010", "IFFIX", "   B", " ", "IF", 82, "+", 84, "03000"),
		approachLine("R36", 'R', "", "020", "FAFIX", "   F", " ", "CF", 70, "3600", 74, "0050", 82, "+", 84, "02000"),
		approachLine("R36", 'R', "", "030", "RW36", "GY M", " ", "TF", 102, "-300"),
		approachLine("R36", 'R', "", "040", "", "    ", " ", "CA", 70, "3600", 84, "01000"),
		approachLine("R36", 'R', "", "050", "HOLD", "    ", " ", "DF"),
		approachLine("R36", 'R', "", "060", "HOLD", "   H", "R", "HM", 70, "1800", 74, "T010"),
		// A continuation record
		approachLine("R36", 'R', "", "060", "HOLD", "    ", " ", "HM")[:38] + "2" + strings.Repeat(" ", 93),

		approachLine("R18", 'R', "", "010", "HOLD", "   F", " ", "IF"),
		approachLine("R18", 'R', "", "020", "", "    ", " ", "FM", 70, "1800"),

		arincLine(0, "SUSAP KTSTK6G", 13, "RW36", 21, "0", 32, testLat, 41, testLong, 66, "00100", 75, "50"),
	}
	return strings.Join(lines, "\r\n") + "\r\n"
}

func TestParseARINC424(t *testing.T) {
	res, e := ParseARINC424(strings.NewReader(testCIFP()))
	if e.HaveErrors() {
		t.Fatalf("unexpected errors: %s", e)
	}
	ds := res.Dataset

	apt, ok := ds.Waypoints["KTST"]
	if !ok {
		t.Fatal("airport not found")
	}
	if apt.Type != WaypointAirport || apt.Elevation != 107 || apt.MagneticVariation != 15 {
		t.Errorf("airport: got %+v", apt)
	}
	wantLoc := math.Point2LL{-(70 + 54.0/60 + 59.40/3600), 42 + 35.0/60 + 3.15/3600}
	if math.Abs(apt.Location[0]-wantLoc[0]) > 1e-4 || math.Abs(apt.Location[1]-wantLoc[1]) > 1e-4 {
		t.Errorf("airport location: got %v, expected %v", apt.Location, wantLoc)
	}

	for _, w := range []struct {
		ident  string
		typ    WaypointType
		magvar float32
	}{
		{"LWM", WaypointVORDME, 16},
		{"EASTF", WaypointFix, 0},
		{"KTST.IFFIX", WaypointFix, 0},
		{"KTST.FAFIX", WaypointFix, 0},
		{"KTST.HOLD", WaypointFix, 0},
		{"KTST.RW36", WaypointRunway, 0},
	} {
		wp, ok := ds.FindWaypoint(w.ident)
		if !ok {
			t.Errorf("%s: not found", w.ident)
		} else if wp.Type != w.typ || wp.MagneticVariation != w.magvar {
			t.Errorf("%s: got %+v", w.ident, wp)
		}
	}
	if rwy := ds.Waypoints["KTST.RW36"]; rwy.Elevation != 100 {
		t.Errorf("runway elevation: got %f", rwy.Elevation)
	}

	want := []ProcedureRecord{
		{"KTST", "R36", "final", "IF,wp=IFFIX,a=+3000,if;CF,wp=FAFIX,mc=360,a=+2000,faf;TF,wp=RW36,gpa=3,tch=50,map,fo"},
		{"KTST", "R36", "missed", "CA,mc=360,a=+1000;TD,wp=HOLD;HM,wp=HOLD,mc=180,t=1,td=R"},
		{"KTST", "R36", "EASTF", "IF,wp=EASTF,iaf;TF,wp=IFFIX,a=+3000"},
	}
	if !slices.Equal(ds.Procedures, want) {
		t.Errorf("records:\ngot  %+v\nwant %+v", ds.Procedures, want)
	}

	if len(res.Skipped) != 2 {
		t.Fatalf("expected two skipped procedures, got %v", res.Skipped)
	}
	if !strings.Contains(res.Skipped[0], "R36 transition WESTF") || !strings.Contains(res.Skipped[1], "R18") {
		t.Errorf("skipped: got %v", res.Skipped)
	}
}

func TestParseARINC424Errors(t *testing.T) {
	input := strings.Join([]string{
		arincLine(0, "SUSAP KTSTK6A", 21, "0", 32, "X42350315", 41, testLong, 51, "W0150", 56, "00107"),
		"SUSAP KTSTK6C  SHORT",
		approachLine("I36", 'I', "", "010", "FAFIX", "   F", " ", "CF", 70, "3600"),
	}, "\n")

	res, e := ParseARINC424(strings.NewReader(input))
	errs := e.Errors()
	if len(errs) != 3 {
		t.Fatalf("expected 3 errors, got %v", errs)
	}
	for i, s := range []string{"line 1", "line 2", "KTST I36"} {
		if !strings.Contains(errs[i], s) {
			t.Errorf("error %d: %q doesn't mention %q", i, errs[i], s)
		}
	}
	if len(res.Dataset.Procedures) != 0 {
		t.Errorf("unexpected records %v", res.Dataset.Procedures)
	}
}

func TestARINC424Legs(t *testing.T) {
	line := func(s string) []byte {
		b := []byte(arincLine(0, s))
		return b
	}

	tests := []struct {
		name   string
		line   []byte
		magvar float32
		want   string
	}{
		{
			name: "KJFK ILS 04R missed approach hold at DPK",
			line: line("SUSAP KJFKK6FI04R  I      070DPK  K6D 0VE  L   HM                     2581T010    + 04000                           0 NS   300201709"),
			want: "HM,wp=DPK,mc=258.1,t=1,td=L,a=+4000",
		},
		{
			name: "KJFK ILS 04L missed approach hold at DUFFY",
			line: line("SUSAP KJFKK6FI04L  I      060DUFFYK6PC0EE  L   HM                     2420T010    + 03000                           0 NS   300131310"),
			want: "HM,wp=DUFFY,mc=242,t=1,td=L,a=+3000",
		},
		{
			name: "KJFK ILS 04R course to DPK",
			line: line("SUSAP KJFKK6FI04R  I      060DPK  K6D 0VY      CF DPK K6      0000000004100080D   + 04000                           0 NS   300191212"),
			want: "CF,wp=DPK,mc=41,a=+4000,fo",
		},
		{
			name:   "true course",
			line:   []byte(approachLine("R36", 'R', "", "010", "FAFIX", "    ", " ", "CF", 70, "090T")),
			magvar: 15,
			want:   "CF,wp=FAFIX,mc=105",
		},
		{
			name: "procedure turn",
			line: []byte(approachLine("V09", 'V', "", "020", "LWM", "   F", "L", "PI", 70, "3150", 74, "0100", 82, "+", 84, "02000")),
			want: "PI,wp=LWM,mc=90,td=R,a=+2000,faf",
		},
		{
			name: "DME arc",
			line: []byte(approachLine("V09", 'A', "ARC", "020", "ARCND", "    ", "R", "AF", 50, "LWM", 62, "0900",
				66, "0100", 70, "3600", 82, "B", 84, "04000", 89, "03000")),
			want: "AF,wp=ARCND,nav=LWM,td=R,a=3000/4000,beg=360,end=90,dme=10",
		},
		{
			name: "radius to fix",
			line: []byte(approachLine("H36", 'H', "", "020", "RFEND", "    ", "L", "RF", 106, "CNTR")),
			want: "RF,wp=RFEND,ctr=CNTR,td=L",
		},
		{
			name: "course to DME",
			line: []byte(approachLine("V09", 'V', "", "050", "", "    ", " ", "VD", 50, "LWM", 70, "0900", 74, "0120", 82, "-", 84, "FL180")),
			want: "CD,nav=LWM,mc=90,a=-18000,dme=12",
		},
		{
			name: "course to radial",
			line: []byte(approachLine("V09", 'V', "", "050", "", "    ", " ", "CR", 50, "LWM", 62, "2700", 70, "0900")),
			want: "CR,nav=LWM,mc=90,rad=270",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var c cifpConverter
			l, err := c.leg(parseSSA(tt.line), tt.magvar)
			if err != nil {
				t.Fatalf("unexpected error %v", err)
			}
			if l.String() != tt.want {
				t.Errorf("got %q, expected %q", l.String(), tt.want)
			}
		})
	}

	var c cifpConverter
	if _, err := c.leg(parseSSA([]byte(approachLine("V09", 'V', "", "050", "", "    ", " ", "VM", 70, "0900"))), 0); err == nil {
		t.Error("expected error for VM leg")
	}
	if _, err := c.leg(parseSSA([]byte(approachLine("V09", 'V', "", "050", "", "    ", " ", "CA", 70, "0900"))), 0); err == nil {
		t.Error("expected error for CA leg without an altitude")
	}
}

func TestAltitudeDescription(t *testing.T) {
	for _, tc := range []struct {
		desc       byte
		alt0, alt1 string
		want       string
	}{
		{' ', "03000", "", "3000"},
		{'@', "03000", "", "3000"},
		{'+', "03000", "", "+3000"},
		{'-', "FL190", "", "-19000"},
		{'B', "05000", "03000", "3000/5000"},
		{'G', "01900", "01893", "1900"},
		{'J', "02000", "01980", "+2000"},
		{'C', "02000", "01800", "+1800"},
		{'+', "", "", ""},
	} {
		var p fieldParser
		r := ssaRecord{altDescrip: tc.desc, alt0: []byte(tc.alt0 + strings.Repeat(" ", 5-len(tc.alt0))),
			alt1: []byte(tc.alt1 + strings.Repeat(" ", 5-len(tc.alt1)))}
		if got := p.altitudeRestriction(r); got != tc.want || p.err != nil {
			t.Errorf("%c %q/%q: got %q (err %v), expected %q", tc.desc, tc.alt0, tc.alt1, got, p.err, tc.want)
		}
		if tc.want != "" {
			if _, err := ParseAltitudeRestriction(tc.want); err != nil {
				t.Errorf("%q: %v", tc.want, err)
			}
		}
	}
}

func TestIsARINC424(t *testing.T) {
	if !IsARINC424([]byte("HDR01FAACIFP18      001P013203902410\r\n")) {
		t.Error("header not recognized")
	}
	if !IsARINC424([]byte(arincLine(0, "SUSAP KTSTK6A") + "\r\n")) {
		t.Error("record not recognized")
	}
	if IsARINC424([]byte("APT KTST 42.5842,-70.9165 100 0\n")) {
		t.Error("text format recognized as ARINC 424")
	}
}
