// cmd/cifpnav/lint.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"maps"
	"runtime"

	"github.com/cifpnav/cifpnav/nav"
	"github.com/cifpnav/cifpnav/util"

	"golang.org/x/sync/errgroup"
)

// Lint parses every approach at the given airports (all of them if none
// are given) and assembles each transition with every combination of
// optional-leg decisions. Airports are checked concurrently; the errors
// are returned in airport order.
func Lint(ctx context.Context, s *Store, airports []string, tun *nav.Tuning) (*util.ErrorLogger, error) {
	if len(airports) == 0 {
		var err error
		if airports, err = s.Airports(ctx); err != nil {
			return nil, err
		}
	}

	errs := make([]*util.ErrorLogger, len(airports))
	eg, ctx := errgroup.WithContext(ctx)
	eg.SetLimit(runtime.NumCPU())
	for i, airport := range airports {
		eg.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			aps, e, err := s.LoadAirport(ctx, airport)
			if err != nil {
				e = &util.ErrorLogger{}
				e.Push(airport)
				e.Error(err)
				e.Pop()
			} else {
				e.Push(airport)
				for _, ap := range aps {
					lintApproach(ap, tun, e)
				}
				e.Pop()
			}
			errs[i] = e
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	for _, ae := range errs {
		e.Merge(ae)
	}
	return &e, nil
}

func lintApproach(ap *nav.Approach, tun *nav.Tuning, e *util.ErrorLogger) {
	e.Push(ap.Id)
	defer e.Pop()

	for _, tr := range ap.TransitionIds() {
		e.Push(tr)
		lintAssemble(ap, tr, make(map[string]bool), tun, e)
		e.Pop()
	}
}

// lintAssemble assembles the transition, trying both answers for each
// decision that is requested.
func lintAssemble(ap *nav.Approach, tr string, decisions map[string]bool, tun *nav.Tuning, e *util.ErrorLogger) {
	_, req, err := nav.Assemble(ap, tr, nav.AssembleOptions{Decisions: decisions, Tuning: tun})
	if err != nil {
		e.Error(err)
		return
	}
	if req == nil {
		return
	}
	for _, fly := range []bool{true, false} {
		d := maps.Clone(decisions)
		d[req.Key] = fly
		lintAssemble(ap, tr, d, tun, e)
	}
}
