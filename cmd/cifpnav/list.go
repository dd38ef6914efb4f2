// cmd/cifpnav/list.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cifpnav/cifpnav/nav"

	"github.com/goforj/godump"
	"github.com/iancoleman/orderedmap"
)

// ListApproaches prints the approaches and their transitions.
func ListApproaches(w io.Writer, airport string, aps []*nav.Approach) {
	fmt.Fprintf(w, "%s: %d approaches\n", airport, len(aps))
	for _, ap := range aps {
		fmt.Fprintf(w, "  %-6s %s (%s)\n", ap.Id, ap.FullName, ap.Type)
		for _, tr := range ap.TransitionIds() {
			fmt.Fprintf(w, "    %-14s %s\n", tr, legString(ap.Transitions[tr].Legs))
		}
		fmt.Fprintf(w, "    %-14s %s\n", nav.SegmentFinal, legString(ap.Final.Legs))
		fmt.Fprintf(w, "    %-14s %s\n", nav.SegmentMissed, legString(ap.Missed.Legs))
	}
}

func legString(legs []*nav.Leg) string {
	var s []string
	for _, l := range legs {
		s = append(s, l.String())
	}
	return strings.Join(s, " - ")
}

// ApproachesJSON returns the approaches with their fields in a fixed
// order so that the output is stable.
func ApproachesJSON(airport string, aps []*nav.Approach) ([]byte, error) {
	var list []*orderedmap.OrderedMap
	for _, ap := range aps {
		m := orderedmap.New()
		m.Set("airport", airport)
		m.Set("id", ap.Id)
		m.Set("name", ap.FullName)
		m.Set("type", ap.Type.String())
		m.Set("runway", ap.Runway)
		m.Set("elevation", ap.Elevation)

		trs := orderedmap.New()
		for _, tr := range ap.TransitionIds() {
			trs.Set(tr, rawLegs(ap.Transitions[tr].Legs))
		}
		m.Set("transitions", trs)
		m.Set("final", rawLegs(ap.Final.Legs))
		m.Set("missed", rawLegs(ap.Missed.Legs))
		list = append(list, m)
	}
	return json.MarshalIndent(list, "", "  ")
}

func rawLegs(legs []*nav.Leg) []string {
	var s []string
	for _, l := range legs {
		s = append(s, l.Raw)
	}
	return s
}

type legDump struct {
	Leg      string
	Kind     string
	Fix      string
	Course   string
	Altitude string
	Flags    []string
	Steps    int
}

// DumpRoute prints the legs of an assembled route.
func DumpRoute(r *nav.Route) {
	var legs []legDump
	for _, l := range r.Legs {
		d := legDump{
			Leg:      l.Raw,
			Kind:     l.Kind.String(),
			Fix:      l.FixIdent(),
			Altitude: l.Altitude.Encoded(),
			Steps:    len(l.Steps()),
		}
		if l.HasCourse {
			d.Course = fmt.Sprintf("%.0f true", l.Course)
		}
		for _, f := range []struct {
			set  bool
			name string
		}{{l.IAF, "IAF"}, {l.IF, "IF"}, {l.FAF, "FAF"}, {l.MAP, "MAP"}, {l.FlyOver, "fly-over"}, {l.Missed, "missed"}} {
			if f.set {
				d.Flags = append(d.Flags, f.name)
			}
		}
		legs = append(legs, d)
	}

	fmt.Printf("%s via %s: %d steps, missed approach at step %d\n", r.Approach, r.Transition, len(r.Steps),
		r.MissedStart)
	godump.Dump(legs)
}
