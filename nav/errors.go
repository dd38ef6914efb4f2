// nav/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEmptyLeg            = errors.New("empty leg")
	ErrUnknownPathTerm     = errors.New("unknown path terminator")
	ErrInvalidLegParameter = errors.New("invalid leg parameter")
	ErrMissingLegParameter = errors.New("missing leg parameter")
	ErrNoFinalSegment      = errors.New("no final approach segment")
	ErrNoMissedSegment     = errors.New("no missed approach segment")
	ErrNoFAF               = errors.New("final segment has no final approach fix")
	ErrNoRunwayLeg         = errors.New("final segment has no runway or missed approach point leg")
	ErrNoInterceptLeg      = errors.New("no following leg to intercept")
	ErrUnknownTransition   = errors.New("unknown transition")
	ErrUnknownApproach     = errors.New("unknown approach")
	ErrNoApproach          = errors.New("no approach selected")
	ErrSuspended           = errors.New("waiting for a decision about an optional leg")
	ErrNoPendingDecision   = errors.New("no decision is pending")
	ErrEmptyRoute          = errors.New("assembled route has no flyable steps")
)

// AssemblyError is returned when an approach can't be turned into steps;
// it identifies where things went wrong so that the message can be shown
// to the pilot.
type AssemblyError struct {
	Airport  string
	Approach string
	Segment  string
	Err      error
}

func (e *AssemblyError) Error() string {
	var where []string
	for _, s := range []string{e.Airport, e.Approach, e.Segment} {
		if s != "" {
			where = append(where, s)
		}
	}
	return fmt.Sprintf("%s: %v", strings.Join(where, " / "), e.Err)
}

func (e *AssemblyError) Unwrap() error {
	return e.Err
}

// assert panics if the condition doesn't hold. It is used for internal
// invariants where continuing would mean showing wrong guidance.
func assert(b bool, msg string, args ...any) {
	if !b {
		panic(fmt.Sprintf("nav: "+msg, args...))
	}
}
