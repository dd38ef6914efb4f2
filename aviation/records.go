// aviation/records.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	"github.com/cifpnav/cifpnav/math"
	"github.com/cifpnav/cifpnav/util"
)

// ProcedureRecord is one row of the procedure database: a single segment
// of an approach (a transition, the final segment or the missed approach)
// along with its legs in the semicolon/comma-delimited leg format.
type ProcedureRecord struct {
	Airport  string `json:"airport" msgpack:"ap"`
	Approach string `json:"approach" msgpack:"id"`
	Segment  string `json:"segment" msgpack:"seg"`
	Legs     string `json:"legs" msgpack:"legs"`
}

// ProcedureSource provides procedure records and the waypoints they refer
// to.
type ProcedureSource interface {
	WaypointFinder
	Airports(ctx context.Context) ([]string, error)
	Records(ctx context.Context, airport string) ([]ProcedureRecord, error)
}

// Dataset is an in-memory collection of waypoints and procedure records.
// It is what the text importer produces, what bundles hold and what the
// sqlite database is loaded from.
type Dataset struct {
	Waypoints  map[string]Waypoint `msgpack:"waypoints"`
	Procedures []ProcedureRecord   `msgpack:"records"`
}

func NewDataset() *Dataset {
	return &Dataset{Waypoints: make(map[string]Waypoint)}
}

func (d *Dataset) FindWaypoint(ident string) (Waypoint, bool) {
	wp, ok := d.Waypoints[ident]
	return wp, ok
}

func (d *Dataset) Airports(ctx context.Context) ([]string, error) {
	ap := make(map[string]struct{})
	for _, r := range d.Procedures {
		ap[r.Airport] = struct{}{}
	}
	return util.SortedMapKeys(ap), nil
}

func (d *Dataset) AirportRecords(airport string) []ProcedureRecord {
	return util.FilterSlice(d.Procedures, func(r ProcedureRecord) bool { return r.Airport == airport })
}

func (d *Dataset) Records(ctx context.Context, airport string) ([]ProcedureRecord, error) {
	if _, ok := d.Waypoints[airport]; !ok {
		return nil, fmt.Errorf("%s: %w", airport, ErrUnknownAirport)
	}
	return d.AirportRecords(airport), nil
}

// Merge adds the contents of other, replacing waypoints with the same
// identifier and records for the same airport/approach/segment.
func (d *Dataset) Merge(other *Dataset) {
	for id, wp := range other.Waypoints {
		d.Waypoints[id] = wp
	}
	for _, r := range other.Procedures {
		if idx := slices.IndexFunc(d.Procedures, func(e ProcedureRecord) bool {
			return e.Airport == r.Airport && e.Approach == r.Approach && e.Segment == r.Segment
		}); idx != -1 {
			d.Procedures[idx] = r
		} else {
			d.Procedures = append(d.Procedures, r)
		}
	}
}

///////////////////////////////////////////////////////////////////////////
// Text format

// ParseDataset reads the line-oriented text format used for importing
// procedure data:
//
//	# comment
//	APT KBVY 42.5842,-70.9165 107 15.2
//	WPT LWM VORDME 42.6552,-71.1230 0 16.0
//	WPT KBVY.RW16 RWY 42.5928,-70.9218 96
//	PROC KBVY I16 final CF,wp=BERGR,mc=155,faf,a=+1700;CF,wp=RW16,mc=155,map,gpa=3.0,tch=52
//
// Waypoint lines give the identifier, type, location and optionally the
// elevation and magnetic variation. Malformed lines are reported in the
// returned ErrorLogger and skipped; they don't prevent the rest of the
// input from being read.
func ParseDataset(r io.Reader) (*Dataset, *util.ErrorLogger) {
	ds := NewDataset()
	var e util.ErrorLogger

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	lineno := 0
	for scanner.Scan() {
		lineno++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		e.Push(fmt.Sprintf("line %d", lineno))
		f := strings.Fields(line)
		switch f[0] {
		case "APT":
			if len(f) < 3 {
				e.ErrorString("expected APT ident lat,long [elevation] [variation]")
			} else if wp, err := parseWaypointFields(f[1], "APT", f[2:]); err != nil {
				e.Error(err)
			} else {
				ds.Waypoints[wp.Ident] = wp
			}

		case "WPT":
			if len(f) < 4 {
				e.ErrorString("expected WPT ident type lat,long [elevation] [variation]")
			} else if wp, err := parseWaypointFields(f[1], f[2], f[3:]); err != nil {
				e.Error(err)
			} else {
				ds.Waypoints[wp.Ident] = wp
			}

		case "PROC":
			if len(f) != 5 {
				e.ErrorString("expected PROC airport approach segment legs")
			} else {
				ds.Procedures = append(ds.Procedures, ProcedureRecord{
					Airport:  f[1],
					Approach: f[2],
					Segment:  f[3],
					Legs:     f[4],
				})
			}

		default:
			e.ErrorString("%s: unknown record type", f[0])
		}
		e.Pop()
	}
	if err := scanner.Err(); err != nil {
		e.Error(err)
	}

	return ds, &e
}

func parseWaypointFields(ident, typ string, f []string) (Waypoint, error) {
	wt, ok := ParseWaypointType(typ)
	if !ok {
		return Waypoint{}, fmt.Errorf("%s: unknown waypoint type %q: %w", ident, typ, ErrInvalidRecord)
	}
	loc, err := math.ParseLatLong(f[0])
	if err != nil {
		return Waypoint{}, fmt.Errorf("%s: %w", ident, err)
	}
	wp := Waypoint{Ident: ident, Type: wt, Location: loc}

	if len(f) > 1 {
		v, err := strconv.ParseFloat(f[1], 32)
		if err != nil {
			return Waypoint{}, fmt.Errorf("%s: elevation %q: %w", ident, f[1], ErrInvalidRecord)
		}
		wp.Elevation = float32(v)
	}
	if len(f) > 2 {
		v, err := strconv.ParseFloat(f[2], 32)
		if err != nil {
			return Waypoint{}, fmt.Errorf("%s: variation %q: %w", ident, f[2], ErrInvalidRecord)
		}
		wp.MagneticVariation = float32(v)
	}
	if len(f) > 3 {
		return Waypoint{}, fmt.Errorf("%s: unexpected trailing fields: %w", ident, ErrInvalidRecord)
	}
	return wp, nil
}

// WriteDataset writes the dataset in the format ParseDataset reads.
func WriteDataset(w io.Writer, ds *Dataset) error {
	bw := bufio.NewWriter(w)
	for _, id := range util.SortedMapKeys(ds.Waypoints) {
		wp := ds.Waypoints[id]
		loc := fmt.Sprintf("%.6f,%.6f", wp.Location.Latitude(), wp.Location.Longitude())
		if wp.Type == WaypointAirport {
			fmt.Fprintf(bw, "APT %s %s %.0f %.1f\n", wp.Ident, loc, wp.Elevation, wp.MagneticVariation)
		} else {
			fmt.Fprintf(bw, "WPT %s %s %s %.0f %.1f\n", wp.Ident, wp.Type, loc, wp.Elevation, wp.MagneticVariation)
		}
	}
	for _, r := range ds.Procedures {
		fmt.Fprintf(bw, "PROC %s %s %s %s\n", r.Airport, r.Approach, r.Segment, r.Legs)
	}
	return bw.Flush()
}
