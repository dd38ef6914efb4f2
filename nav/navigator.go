// nav/navigator.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"slices"
	"strings"
	"sync"

	av "github.com/cifpnav/cifpnav/aviation"
	"github.com/cifpnav/cifpnav/log"
	"github.com/cifpnav/cifpnav/math"

	"github.com/brunoga/deep"
)

// Navigator is a navigation session at an airport: the approaches that
// can be selected, the one that is being flown and the latest guidance.
// A selection that needs decisions about optional legs is held pending,
// with tracking suspended, until the decisions are made; the route being
// flown is only ever replaced by a completely assembled one.
type Navigator struct {
	mu sync.Mutex

	approaches map[string]*Approach
	tracker    *Tracker
	tuning     Tuning
	lg         *log.Logger

	pending *selection

	lastPosition math.Point2LL
	havePosition bool
	last         Frame
	haveLast     bool
}

type selection struct {
	approach   *Approach
	transition string
	decisions  map[string]bool
	request    *DecisionRequest
}

func NewNavigator(approaches []*Approach, tun Tuning, lg *log.Logger) *Navigator {
	n := &Navigator{
		approaches: make(map[string]*Approach),
		tracker:    NewTracker(tun, lg),
		tuning:     tun,
		lg:         lg,
	}
	for _, ap := range approaches {
		n.approaches[ap.Id] = ap
	}
	return n
}

// Approaches returns the available approaches sorted by id.
func (n *Navigator) Approaches() []*Approach {
	n.mu.Lock()
	defer n.mu.Unlock()

	aps := make([]*Approach, 0, len(n.approaches))
	for _, ap := range n.approaches {
		aps = append(aps, ap)
	}
	slices.SortFunc(aps, func(a, b *Approach) int { return strings.Compare(a.Id, b.Id) })
	return aps
}

// Choices returns all of the approach and transition pairs that can be
// selected.
func (n *Navigator) Choices(proj av.Projector) []Choice {
	var choices []Choice
	for _, ap := range n.Approaches() {
		choices = append(choices, ap.Choices(proj)...)
	}
	return choices
}

// Select assembles the given approach and transition. If an optional leg
// needs a decision, the request is returned and tracking is suspended
// until Decide has been called for each of them. On error the current
// route is left as it was.
func (n *Navigator) Select(approach, transition string) (*DecisionRequest, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	ap, ok := n.approaches[approach]
	if !ok {
		return nil, &AssemblyError{Approach: approach, Err: ErrUnknownApproach}
	}
	n.pending = &selection{approach: ap, transition: transition, decisions: make(map[string]bool)}
	return n.assemble()
}

// Decide answers the pending decision request.
func (n *Navigator) Decide(fly bool) (*DecisionRequest, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending == nil || n.pending.request == nil {
		return nil, ErrNoPendingDecision
	}
	n.pending.decisions[n.pending.request.Key] = fly
	n.lg.Info("optional leg decision", "approach", n.pending.approach.Id, "leg", n.pending.request.Key, "fly", fly)
	return n.assemble()
}

func (n *Navigator) assemble() (*DecisionRequest, error) {
	sel := n.pending
	opt := AssembleOptions{
		Decisions: sel.decisions,
		Tuning:    &n.tuning,
		Logger:    n.lg,
	}
	if n.havePosition {
		opt.Position, opt.HavePosition = sel.approach.Projector.Project(n.lastPosition), true
	}

	r, req, err := Assemble(sel.approach, sel.transition, opt)
	if err != nil {
		n.pending = nil
		n.tracker.Resume()
		n.lg.Warn("assembly failed", "error", err)
		return nil, err
	} else if req != nil {
		sel.request = req
		n.tracker.Suspend()
		return req, nil
	}

	n.pending = nil
	n.haveLast = false
	n.tracker.Install(r)
	return nil, nil
}

// Discontinue stops navigating and abandons any pending selection.
func (n *Navigator) Discontinue() {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.pending = nil
	n.haveLast = false
	n.tracker.Discontinue()
}

// SetDialedCourse sets the magnetic course dialed in for radar vectors.
func (n *Navigator) SetDialedCourse(course float32, ok bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if r := n.tracker.Route(); r != nil {
		course = av.MagneticToTrue(course, r.Approach.MagneticVariation)
	}
	n.tracker.SetDialedCourse(course, ok)
}

// Update feeds a position sample to the tracker.
func (n *Navigator) Update(sample av.PositionSample) (Frame, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.lastPosition, n.havePosition = sample.Position, true
	f, err := n.tracker.Update(sample)
	if err == nil {
		n.last, n.haveLast = f, true
	}
	return f, err
}

// Pending returns the outstanding decision request, if any.
func (n *Navigator) Pending() *DecisionRequest {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.pending == nil {
		return nil
	}
	return n.pending.request
}

// Route returns the route being flown.
func (n *Navigator) Route() *Route {
	return n.tracker.Route()
}

// Snapshot returns a copy of the most recent frame that is safe to hand
// to another goroutine.
func (n *Navigator) Snapshot() (Frame, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if !n.haveLast {
		return Frame{Current: -1}, false
	}
	return deep.MustCopy(n.last), true
}
