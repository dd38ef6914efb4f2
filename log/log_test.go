// log/log_test.go
// Copyright(c) 2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"strings"
	"testing"
	"time"
)

func TestLimiter(t *testing.T) {
	lim := newLimiter()
	t0 := time.Unix(1000, 0)

	if _, ok := lim.allow("a", time.Minute, t0); !ok {
		t.Errorf("first report should be allowed")
	}
	for i := 1; i <= 3; i++ {
		if _, ok := lim.allow("a", time.Minute, t0.Add(time.Duration(i)*time.Second)); ok {
			t.Errorf("report %d within interval should be suppressed", i)
		}
	}
	if _, ok := lim.allow("b", time.Minute, t0); !ok {
		t.Errorf("other keys are independent")
	}
	n, ok := lim.allow("a", time.Minute, t0.Add(2*time.Minute))
	if !ok || n != 3 {
		t.Errorf("after interval: got %d %v, expected 3 true", n, ok)
	}
}

func TestErrorLimited(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWriter(&buf, "info")

	logged := 0
	for i := 0; i < 10; i++ {
		if lg.ErrorLimited("step 3", time.Hour, "NaN in step", "step", 3) {
			logged++
		}
	}
	if logged != 1 {
		t.Errorf("logged %d times, expected 1", logged)
	}
	if strings.Count(buf.String(), "NaN in step") != 1 {
		t.Errorf("unexpected log contents: %s", buf.String())
	}

	// nil loggers still work
	var nl *Logger
	nl.Debug("discarded")
	nl.Info("discarded")
}
