// cmd/cifpnav/simulate.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/math"
	"github.com/cifpnav/cifpnav/nav"
	"github.com/cifpnav/cifpnav/rand"
	"github.com/cifpnav/cifpnav/util"
)

type SimulateOptions struct {
	Approach   string
	Transition string

	// Answer to optional leg questions.
	FlyOptional bool

	// Where the aircraft starts, in nm relative to the start of the
	// transition.
	Offset      [2]float32
	Altitude    float32 // above the airport
	GroundSpeed float32

	// Standard deviation of the simulated GPS position error in nm.
	Noise float32
	Seed  int64

	Step     time.Duration
	Duration time.Duration
	// How often status lines are printed when nothing changes.
	ReportInterval time.Duration
}

// ParseSimulateTarget parses "APPROACH/TRANSITION".
func ParseSimulateTarget(s string) (approach, transition string, err error) {
	approach, transition, ok := strings.Cut(s, "/")
	if !ok || approach == "" || transition == "" {
		return "", "", fmt.Errorf("%q: expected APPROACH/TRANSITION", s)
	}
	return approach, transition, nil
}

// Simulate flies the approach with a simulated aircraft and prints the
// guidance as it goes. It stops once the aircraft has gone around the
// missed approach hold or the duration has passed.
func Simulate(w io.Writer, aps []*nav.Approach, opt SimulateOptions, tun nav.Tuning, lg *log.Logger) error {
	n := nav.NewNavigator(aps, tun, lg)

	var start [2]float32
	found := false
	for _, ap := range n.Approaches() {
		if ap.Id != opt.Approach {
			continue
		}
		for _, c := range ap.Choices(ap.Projector) {
			if c.Transition == opt.Transition {
				start, found = c.Location, true
			}
		}
	}
	if !found {
		return fmt.Errorf("%s/%s: %w", opt.Approach, opt.Transition, nav.ErrUnknownTransition)
	}

	req, err := n.Select(opt.Approach, opt.Transition)
	for err == nil && req != nil {
		fmt.Fprintf(w, "%s %s\n", req.Text, yesNo(opt.FlyOptional))
		req, err = n.Decide(opt.FlyOptional)
	}
	if err != nil {
		return err
	}

	r := n.Route()
	ap := r.Approach
	p := math.Add2f(start, opt.Offset)
	sim := &nav.Simulator{
		Position:    p,
		Heading:     math.VectorHeading(math.Sub2f(start, p)),
		Altitude:    ap.Elevation + opt.Altitude,
		GroundSpeed: opt.GroundSpeed,
		Time:        time.Date(2025, 1, 1, 12, 0, 0, 0, time.UTC),
		Projector:   ap.Projector,
	}
	if opt.Noise > 0 {
		rng := rand.Make(opt.Seed)
		sim.Noise = func() [2]float32 {
			return [2]float32{opt.Noise * rng.NormFloat32(), opt.Noise * rng.NormFloat32()}
		}
	}

	t0 := sim.Time
	lastStep, lastReport, lastStatus := -1, t0, ""
	for sim.Time.Sub(t0) < opt.Duration {
		f, err := n.Update(sim.Sample())
		if err != nil {
			return err
		}

		if f.Current < lastStep {
			fmt.Fprintf(w, "%s around the hold again\n", elapsed(sim.Time, t0))
			return nil
		}
		if f.Current != lastStep || (f.Guidance.Status != lastStatus && sim.Time.Sub(lastReport) >= opt.ReportInterval) {
			fmt.Fprintf(w, "%s %s %.0fft %s\n", elapsed(sim.Time, t0), guidanceString(f.Guidance), sim.Altitude,
				f.Guidance.Status)
			lastStep, lastReport, lastStatus = f.Current, sim.Time, f.Guidance.Status
		}

		sim.Fly(r, f, opt.Step)
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func elapsed(t, t0 time.Time) string {
	d := t.Sub(t0).Round(time.Second)
	return fmt.Sprintf("[%02d:%02d]", int(d.Minutes()), int(d.Seconds())%60)
}

// guidanceString draws the course deviation needle as a bar, e.g.
// "[    |  ]".
func guidanceString(g nav.Guidance) string {
	if g.Behind || g.Mode == nav.GuidanceNone {
		return "[   --   ]"
	}
	const width = 9
	pos := int(math.Round((g.Needle + 1) / 2 * (width - 1)))
	bar := []byte(strings.Repeat(" ", width))
	bar[width/2] = '.'
	bar[math.Clamp(pos, 0, width-1)] = '|'
	s := "[" + string(bar) + "]"
	if g.Mode == nav.GuidanceCourseGlideslope {
		s += fmt.Sprintf(" gs %+.2f", g.Glideslope)
	}
	return s
}

// Replay feeds recorded position reports, one JSON object per line, to a
// navigator flying the given approach and prints the guidance for each.
func Replay(w io.Writer, rd io.Reader, aps []*nav.Approach, approach, transition string, fly bool,
	tun nav.Tuning, lg *log.Logger) error {
	n := nav.NewNavigator(aps, tun, lg)

	scanner := bufio.NewScanner(rd)
	selected := false
	var t0 time.Time
	for lineno := 1; scanner.Scan(); lineno++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var s av.PositionSample
		if err := util.UnmarshalJSONBytes(line, &s); err != nil {
			return fmt.Errorf("line %d: %w", lineno, err)
		}

		if !selected {
			// Select once the first position is known so that optional
			// legs at the start of the route can be decided from it.
			if _, err := n.Update(s); !errors.Is(err, nav.ErrNoApproach) {
				return err
			}
			req, err := n.Select(approach, transition)
			for err == nil && req != nil {
				fmt.Fprintf(w, "%s %s\n", req.Text, yesNo(fly))
				req, err = n.Decide(fly)
			}
			if err != nil {
				return err
			}
			selected, t0 = true, s.Time
		}

		f, err := n.Update(s)
		if err != nil {
			return err
		}
		fmt.Fprintf(w, "%s %s %s %s\n", elapsed(s.Time, t0), s, guidanceString(f.Guidance), f.Guidance.Status)
	}
	return scanner.Err()
}
