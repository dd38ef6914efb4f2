// cmd/cifpnav/lint_test.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"strings"
	"testing"

	"github.com/cifpnav/cifpnav/nav"
)

func TestLint(t *testing.T) {
	tun := nav.DefaultTuning()

	s := newTestStore(t, testDataset)
	e, err := Lint(context.Background(), s, nil, &tun)
	if err != nil {
		t.Fatal(err)
	}
	if e.HaveErrors() {
		t.Errorf("unexpected lint errors: %s", e.String())
	}

	s = newTestStore(t, testDataset, badDataset)
	e, err = Lint(context.Background(), s, []string{"KTST"}, &tun)
	if err != nil {
		t.Fatal(err)
	}
	errs := e.Errors()
	if len(errs) == 0 {
		t.Fatalf("expected lint errors for R36")
	}
	for _, msg := range errs {
		if !strings.Contains(msg, "R36") {
			t.Errorf("%q: only R36 should have errors", msg)
		}
	}

	e, err = Lint(context.Background(), s, []string{"KXXX", "KTST"}, &tun)
	if err != nil {
		t.Fatal(err)
	}
	errs = e.Errors()
	if len(errs) < 2 || !strings.HasPrefix(errs[0], "KXXX") {
		t.Errorf("expected the unknown airport to be reported first, got %q", errs)
	}
}

func TestLintOptionalLegs(t *testing.T) {
	// The procedure turn may or may not be flown; both routes should be
	// assembled without errors.
	pt := testDataset + "PROC KTST I36 PTE IF,wp=EASTF,iaf;PI,wp=IFFIX,mc=360,td=R\n"
	s := newTestStore(t, pt)

	tun := nav.DefaultTuning()
	e, err := Lint(context.Background(), s, nil, &tun)
	if err != nil {
		t.Fatal(err)
	}
	if e.HaveErrors() {
		t.Errorf("unexpected lint errors: %s", e.String())
	}
}

func TestParseSimulateTarget(t *testing.T) {
	for _, tc := range []struct {
		s          string
		approach   string
		transition string
		ok         bool
	}{
		{s: "I36/EAST", approach: "I36", transition: "EAST", ok: true},
		{s: "R16/BERGR (if)", approach: "R16", transition: "BERGR (if)", ok: true},
		{s: "I36", ok: false},
		{s: "/EAST", ok: false},
		{s: "I36/", ok: false},
	} {
		ap, tr, err := ParseSimulateTarget(tc.s)
		if tc.ok {
			if err != nil {
				t.Errorf("%q: unexpected error %v", tc.s, err)
			} else if ap != tc.approach || tr != tc.transition {
				t.Errorf("%q: got %q %q, expected %q %q", tc.s, ap, tr, tc.approach, tc.transition)
			}
		} else if err == nil {
			t.Errorf("%q: expected an error", tc.s)
		}
	}
}
