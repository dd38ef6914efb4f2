// aviation/arinc424.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/cifpnav/cifpnav/math"
	"github.com/cifpnav/cifpnav/util"
)

// ARINC424LineLength is the length of a record, not including the line
// ending.
const ARINC424LineLength = 132

var ErrUnsupportedLeg = errors.New("unsupported path terminator")

// IsARINC424 reports whether the first line of a file looks like it comes
// from an ARINC 424 file such as the FAA's CIFP.
func IsARINC424(line []byte) bool {
	line = bytes.TrimRight(line, "\r\n")
	return bytes.HasPrefix(line, []byte("HDR01")) ||
		(len(line) == ARINC424LineLength && (line[0] == 'S' || line[0] == 'T'))
}

func empty(s []byte) bool {
	return len(bytes.TrimSpace(s)) == 0
}

type ARINC424Result struct {
	Dataset *Dataset
	// Procedures, or parts of them, that were left out because they use
	// path terminators that can't be flown.
	Skipped []string
}

// fieldParser parses fixed-width numeric fields, remembering the first
// error so that a record can be parsed without checking each field.
type fieldParser struct {
	err error
}

func (p *fieldParser) fail(what string, s []byte) {
	if p.err == nil {
		p.err = fmt.Errorf("%s %q: %w", what, string(s), ErrInvalidRecord)
	}
}

func (p *fieldParser) int(s []byte) int {
	v, err := strconv.Atoi(strings.TrimSpace(string(s)))
	if err != nil {
		p.fail("number", s)
	}
	return v
}

// tenths parses a field given in tenths, e.g. "2581" for 258.1.
func (p *fieldParser) tenths(s []byte) float32 {
	return float32(p.int(s)) / 10
}

func (p *fieldParser) altitude(s []byte) int {
	if len(s) > 2 && string(s[:2]) == "FL" {
		return 100 * p.int(s[2:])
	}
	return p.int(s)
}

func (p *fieldParser) latLong(lat, long []byte) math.Point2LL {
	dms := func(d, m, s []byte) float32 {
		return float32(p.int(d)) + float32(p.int(m))/60 + float32(p.int(s))/100/3600
	}

	var pt math.Point2LL
	if len(lat) != 9 || len(long) != 10 {
		p.fail("location", append(slices.Clone(lat), long...))
		return pt
	}
	pt[1] = dms(lat[1:3], lat[3:5], lat[5:])
	pt[0] = dms(long[1:4], long[4:6], long[6:])
	switch lat[0] {
	case 'S':
		pt[1] = -pt[1]
	case 'N':
	default:
		p.fail("latitude", lat)
	}
	switch long[0] {
	case 'W':
		pt[0] = -pt[0]
	case 'E':
	default:
		p.fail("longitude", long)
	}
	return pt
}

// variation parses a magnetic variation such as "W0130" or "E0052";
// westerly variation is positive.
func (p *fieldParser) variation(s []byte) float32 {
	if empty(s) {
		return 0
	}
	v := p.tenths(s[1:])
	switch s[0] {
	case 'W':
		return v
	case 'E':
		return -v
	case 'T': // true north aligned
		return 0
	default:
		p.fail("variation", s)
		return 0
	}
}

// course parses a course field, which is either magnetic in tenths of a
// degree or true in degrees with a trailing T.
func (p *fieldParser) course(s []byte, magvar float32) float32 {
	if s[len(s)-1] == 'T' {
		return TrueToMagnetic(float32(p.int(s[:len(s)-1])), magvar)
	}
	return p.tenths(s)
}

// ssaRecord holds the fields of an airport procedure record (4.1.9) that
// are used to build approach legs.
type ssaRecord struct {
	icao                string
	id                  string
	routeType           byte
	transition          string
	sequence            string
	fix                 string
	continuation        byte
	waypointDescription []byte
	turnDirection       byte
	pathAndTermination  string
	recommendedNavaid   string
	theta               []byte
	rho                 []byte
	magneticCourse      []byte
	routeDistance       []byte
	altDescrip          byte
	alt0, alt1          []byte
	verticalAngle       []byte
	centerFix           string
}

func parseSSA(line []byte) ssaRecord {
	return ssaRecord{
		icao:                strings.TrimSpace(string(line[6:10])),
		id:                  strings.TrimSpace(string(line[13:19])),
		routeType:           line[19],
		transition:          strings.TrimSpace(string(line[20:25])),
		sequence:            string(line[26:29]),
		fix:                 strings.TrimSpace(string(line[29:34])),
		continuation:        line[38],
		waypointDescription: slices.Clone(line[39:43]),
		turnDirection:       line[43],
		pathAndTermination:  string(line[47:49]), // 5.21
		recommendedNavaid:   strings.TrimSpace(string(line[50:54])),
		theta:               slices.Clone(line[62:66]),
		rho:                 slices.Clone(line[66:70]),
		magneticCourse:      slices.Clone(line[70:74]),
		routeDistance:       slices.Clone(line[74:78]),
		altDescrip:          line[82], // 5.29
		alt0:                slices.Clone(line[84:89]),
		alt1:                slices.Clone(line[89:94]),
		verticalAngle:       slices.Clone(line[102:106]),
		centerFix:           strings.TrimSpace(string(line[106:111])),
	}
}

// ParseARINC424 converts the approach procedures in an ARINC 424 file,
// along with the airports, navaids and fixes they use, to a Dataset.
// Terminal waypoints and runways are scoped to their airport.
// Approaches with legs that can't be represented are skipped and listed
// in the result; malformed records are reported in the ErrorLogger.
func ParseARINC424(r io.Reader) (ARINC424Result, *util.ErrorLogger) {
	var e util.ErrorLogger
	c := cifpConverter{
		ds:         NewDataset(),
		runwayTCH:  make(map[string]int),
		procedures: make(map[string][]ssaRecord),
	}

	scanner := bufio.NewScanner(r)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := bytes.TrimRight(scanner.Bytes(), "\r\n")
		if len(line) == 0 || line[0] != 'S' { // header, or not a standard record
			continue
		}

		e.Push(fmt.Sprintf("line %d", lineno))
		if len(line) != ARINC424LineLength {
			e.ErrorString("unexpected record length %d", len(line))
		} else if err := c.record(line); err != nil {
			e.Error(err)
		}
		e.Pop()
	}
	if err := scanner.Err(); err != nil {
		e.Error(err)
	}

	// Runway records follow the approaches in the file, so the approaches
	// are converted once everything has been read.
	for _, key := range c.order {
		recs := c.procedures[key]
		e.Push(recs[0].icao + " " + recs[0].id)
		if err := c.approach(recs); err != nil {
			e.Error(err)
		}
		e.Pop()
	}

	return ARINC424Result{Dataset: c.ds, Skipped: c.skipped}, &e
}

type cifpConverter struct {
	ds        *Dataset
	runwayTCH map[string]int
	skipped   []string

	procedures map[string][]ssaRecord // airport/procedure id -> records
	order      []string
}

func (c *cifpConverter) addWaypoint(wp Waypoint) {
	if _, ok := c.ds.Waypoints[wp.Ident]; !ok {
		c.ds.Waypoints[wp.Ident] = wp
	}
}

func (c *cifpConverter) record(line []byte) error {
	var p fieldParser

	switch line[4] { // section code
	case 'D': // navaids 4.1.2, 4.1.3
		id := strings.TrimSpace(string(line[13:17]))
		if len(id) < 2 {
			break
		}
		switch line[5] {
		case ' ':
			wp := Waypoint{Ident: id, MagneticVariation: p.variation(line[74:79])}
			vor, dme := !empty(line[32:51]), !empty(line[55:74])
			switch {
			case vor && dme:
				wp.Type, wp.Location = WaypointVORDME, p.latLong(line[32:41], line[41:51])
			case vor:
				wp.Type, wp.Location = WaypointVOR, p.latLong(line[32:41], line[41:51])
			case dme:
				wp.Type, wp.Location = WaypointDME, p.latLong(line[55:64], line[64:74])
			default:
				return nil
			}
			if p.err == nil {
				c.addWaypoint(wp)
			}
		case 'B':
			wp := Waypoint{
				Ident:             id,
				Type:              WaypointNDB,
				Location:          p.latLong(line[32:41], line[41:51]),
				MagneticVariation: p.variation(line[74:79]),
			}
			if p.err == nil {
				c.addWaypoint(wp)
			}
		}

	case 'E':
		if line[5] == 'A' { // enroute waypoint 4.1.4
			wp := Waypoint{
				Ident:    strings.TrimSpace(string(line[13:18])),
				Type:     WaypointFix,
				Location: p.latLong(line[32:41], line[41:51]),
			}
			if p.err == nil {
				c.addWaypoint(wp)
			}
		}

	case 'P': // airports
		icao := strings.TrimSpace(string(line[6:10]))
		switch line[12] {
		case 'A': // primary airport record 4.1.7
			if line[21] != '0' && line[21] != '1' {
				break
			}
			wp := Waypoint{
				Ident:             icao,
				Type:              WaypointAirport,
				Location:          p.latLong(line[32:41], line[41:51]),
				MagneticVariation: p.variation(line[51:56]),
				Elevation:         float32(p.int(line[56:61])),
			}
			if p.err == nil {
				c.ds.Waypoints[icao] = wp
			}

		case 'C': // terminal waypoint 4.1.4
			id := strings.TrimSpace(string(line[13:18]))
			wp := Waypoint{
				Ident:    icao + "." + id,
				Type:     WaypointFix,
				Location: p.latLong(line[32:41], line[41:51]),
			}
			if p.err == nil {
				c.ds.Waypoints[wp.Ident] = wp
			}

		case 'N': // terminal NDB 4.1.3
			id := strings.TrimSpace(string(line[13:17]))
			wp := Waypoint{
				Ident:             icao + "." + id,
				Type:              WaypointNDB,
				Location:          p.latLong(line[32:41], line[41:51]),
				MagneticVariation: p.variation(line[74:79]),
			}
			if p.err == nil {
				c.ds.Waypoints[wp.Ident] = wp
			}

		case 'F': // approach procedures 4.1.9
			if line[38] != '0' && line[38] != '1' { // continuation records
				break
			}
			rec := parseSSA(line)
			key := rec.icao + "/" + rec.id
			if _, ok := c.procedures[key]; !ok {
				c.order = append(c.order, key)
			}
			c.procedures[key] = append(c.procedures[key], rec)

		case 'G': // runway 4.1.10
			if line[21] != '0' && line[21] != '1' {
				break
			}
			rwy := strings.TrimSpace(string(line[13:18]))
			wp := Waypoint{
				Ident:     icao + "." + rwy,
				Type:      WaypointRunway,
				Location:  p.latLong(line[32:41], line[41:51]),
				Elevation: float32(p.int(line[66:71])),
			}
			if !empty(line[75:77]) {
				c.runwayTCH[wp.Ident] = p.int(line[75:77])
			}
			if p.err == nil {
				c.ds.Waypoints[wp.Ident] = wp
			}
		}
	}

	return p.err
}

///////////////////////////////////////////////////////////////////////////
// Approaches

// cifpLeg is a leg in the procedure leg format under construction.
type cifpLeg struct {
	kind   string
	params map[string]string
}

// Keys and flags in the order they are written.
var (
	cifpLegKeys  = []string{"wp", "nav", "ctr", "mc", "nm", "t", "td", "a", "beg", "end", "rad", "dme", "gpa", "tch"}
	cifpLegFlags = []string{"faf", "iaf", "if", "map", "fo"}
)

func (l cifpLeg) set(key string, v any) {
	switch v := v.(type) {
	case float32:
		l.params[key] = strconv.FormatFloat(float64(v), 'f', -1, 32)
	case int:
		l.params[key] = strconv.Itoa(v)
	case string:
		l.params[key] = v
	}
}

func (l cifpLeg) flag(f string) {
	l.params[f] = ""
}

func (l cifpLeg) String() string {
	s := []string{l.kind}
	for _, k := range cifpLegKeys {
		if v, ok := l.params[k]; ok {
			s = append(s, k+"="+v)
		}
	}
	for _, f := range cifpLegFlags {
		if _, ok := l.params[f]; ok {
			s = append(s, f)
		}
	}
	return strings.Join(s, ",")
}

func (c *cifpConverter) approach(recs []ssaRecord) error {
	icao, id := recs[0].icao, recs[0].id
	apt, ok := c.ds.Waypoints[icao]
	if !ok {
		return fmt.Errorf("%s: %w", icao, ErrUnknownAirport)
	}

	type segment struct {
		name string
		recs []ssaRecord
	}
	var final, missed segment
	final.name, missed.name = "final", "missed"
	var transitions []*segment
	sawMAP := false
	for _, r := range recs {
		switch {
		case r.routeType == 'A':
			idx := slices.IndexFunc(transitions, func(s *segment) bool { return s.name == r.transition })
			if idx == -1 {
				transitions = append(transitions, &segment{name: r.transition})
				idx = len(transitions) - 1
			}
			transitions[idx].recs = append(transitions[idx].recs, r)
		case r.routeType == 'Z' || sawMAP:
			missed.recs = append(missed.recs, r)
		default:
			final.recs = append(final.recs, r)
			sawMAP = r.waypointDescription[3] == 'M'
		}
	}
	if len(final.recs) == 0 {
		return fmt.Errorf("no final approach records: %w", ErrInvalidRecord)
	}

	convert := func(s segment) (string, error) {
		var legs []string
		for i, r := range s.recs {
			l, err := c.leg(r, apt.MagneticVariation)
			if err != nil {
				return "", fmt.Errorf("%s %s: %w", s.name, r.sequence, err)
			}
			if s.name == "final" {
				c.addGlidePath(l, r, s.recs, i)
			}
			legs = append(legs, l.String())
		}
		return strings.Join(legs, ";"), nil
	}

	var out []ProcedureRecord
	for _, s := range []segment{final, missed} {
		if len(s.recs) == 0 {
			continue
		}
		legs, err := convert(s)
		if errors.Is(err, ErrUnsupportedLeg) {
			c.skipped = append(c.skipped, fmt.Sprintf("%s %s: %v", icao, id, err))
			return nil
		} else if err != nil {
			return err
		}
		out = append(out, ProcedureRecord{Airport: icao, Approach: id, Segment: s.name, Legs: legs})
	}
	for _, s := range transitions {
		legs, err := convert(*s)
		if errors.Is(err, ErrUnsupportedLeg) {
			c.skipped = append(c.skipped, fmt.Sprintf("%s %s transition %s: %v", icao, id, s.name, err))
			continue
		} else if err != nil {
			return err
		}
		out = append(out, ProcedureRecord{Airport: icao, Approach: id, Segment: s.name, Legs: legs})
	}

	c.ds.Procedures = append(c.ds.Procedures, out...)
	return nil
}

// addGlidePath puts the final segment's vertical path angle on the
// missed approach point along with the runway's threshold crossing
// height.
func (c *cifpConverter) addGlidePath(l cifpLeg, r ssaRecord, final []ssaRecord, idx int) {
	if r.waypointDescription[3] != 'M' && idx != len(final)-1 {
		return
	}
	for _, fr := range final {
		if empty(fr.verticalAngle) {
			continue
		}
		var p fieldParser
		gpa := math.Abs(float32(p.int(fr.verticalAngle))) / 100
		if p.err != nil || gpa == 0 {
			continue
		}
		l.set("gpa", gpa)
		if tch, ok := c.runwayTCH[r.icao+"."+r.fix]; ok && tch > 0 {
			l.set("tch", tch)
		}
		return
	}
}

func (c *cifpConverter) leg(r ssaRecord, magvar float32) (cifpLeg, error) {
	var p fieldParser
	l := cifpLeg{params: make(map[string]string)}

	course := func() {
		if !empty(r.magneticCourse) {
			l.set("mc", p.course(r.magneticCourse, magvar))
		} else {
			p.fail("course", r.magneticCourse)
		}
	}
	fix := func() {
		if r.fix == "" {
			p.fail("fix", nil)
		}
		l.set("wp", r.fix)
	}
	turn := func() {
		if r.turnDirection == 'L' || r.turnDirection == 'R' {
			l.set("td", string(r.turnDirection))
		}
	}
	distanceOrTime := func() {
		if empty(r.routeDistance) {
			return
		}
		if r.routeDistance[0] == 'T' {
			l.set("t", p.tenths(r.routeDistance[1:]))
		} else {
			l.set("nm", p.tenths(r.routeDistance))
		}
	}

	switch r.pathAndTermination {
	case "IF", "TF":
		l.kind = r.pathAndTermination
		fix()
	case "CF":
		l.kind = "CF"
		fix()
		course()
	case "DF":
		l.kind = "TD"
		fix()
		turn()
	case "CA", "VA":
		l.kind = "CA"
		course()
		if empty(r.alt0) {
			p.fail("altitude", r.alt0)
		}
		l.set("a", "+"+strconv.Itoa(p.altitude(r.alt0)))
	case "CD", "VD":
		l.kind = "CD"
		course()
		l.set("nav", r.recommendedNavaid)
		l.set("dme", p.tenths(r.routeDistance))
	case "CI", "VI":
		l.kind = "CI"
		course()
	case "CR", "VR":
		l.kind = "CR"
		course()
		l.set("nav", r.recommendedNavaid)
		l.set("rad", p.tenths(r.theta))
	case "FC":
		l.kind = "FC"
		fix()
		course()
		l.set("nm", p.tenths(r.routeDistance))
	case "AF":
		l.kind = "AF"
		fix()
		l.set("nav", r.recommendedNavaid)
		l.set("beg", p.tenths(r.magneticCourse))
		if !empty(r.theta) {
			l.set("end", p.tenths(r.theta))
		}
		l.set("dme", p.tenths(r.rho))
		turn()
	case "RF":
		l.kind = "RF"
		fix()
		l.set("ctr", r.centerFix)
		turn()
	case "PI":
		// The record gives the outbound course after the 45 degree turn
		// and the direction of the 180 degree turn back inbound.
		l.kind = "PI"
		fix()
		reversal, err := ParseTurnDirection(string(r.turnDirection))
		if err != nil || reversal == TurnClosest {
			p.fail("turn direction", []byte{r.turnDirection})
		}
		initial := reversal.Opposite()
		co := p.course(r.magneticCourse, magvar)
		l.set("mc", math.NormalizeHeading(co-initial.Sign()*45-180))
		l.set("td", string(initial.Letter()))
	case "HF", "HM", "HA":
		l.kind = util.Select(r.pathAndTermination == "HF", "HF", "HM")
		fix()
		course()
		turn()
		distanceOrTime()
	default:
		return l, fmt.Errorf("%s: %w", r.pathAndTermination, ErrUnsupportedLeg)
	}

	if r.pathAndTermination != "CA" && r.pathAndTermination != "VA" {
		if a := p.altitudeRestriction(r); a != "" {
			l.set("a", a)
		}
	}

	desc := r.waypointDescription
	switch desc[3] {
	case 'A', 'C', 'D':
		l.flag("iaf")
	case 'B', 'I':
		l.flag("if")
	case 'F':
		l.flag("faf")
	case 'M':
		l.flag("map")
	}
	if desc[1] == 'Y' || desc[1] == 'B' {
		l.flag("fo")
	}

	return l, p.err
}

// altitudeRestriction returns the record's altitude restriction in the
// procedure format (5.29).
func (p *fieldParser) altitudeRestriction(r ssaRecord) string {
	if empty(r.alt0) {
		return ""
	}
	a0 := strconv.Itoa(p.altitude(r.alt0))
	switch r.altDescrip {
	case '+', 'H', 'J', 'V':
		return "+" + a0
	case '-':
		return "-" + a0
	case 'B':
		if empty(r.alt1) {
			return "-" + a0
		}
		return strconv.Itoa(p.altitude(r.alt1)) + "/" + a0
	case 'C':
		if empty(r.alt1) {
			return ""
		}
		return "+" + strconv.Itoa(p.altitude(r.alt1))
	default: // ' ', '@', 'G', 'I', 'X'
		return a0
	}
}
