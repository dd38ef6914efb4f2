//go:build navlog

// nav/log_debug.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"fmt"
	"strings"
	"time"
)

// Navigation logging configuration
var (
	navlogEnabled    bool
	navlogCategories map[string]bool
	navlogApproach   string // filter to only log this approach (empty = log all)
)

// InitNavLog initializes the navigation logging system
func InitNavLog(enabled bool, categories string, approach string) {
	navlogEnabled = enabled
	navlogCategories = make(map[string]bool)
	navlogApproach = strings.TrimSpace(approach)

	if !enabled {
		return
	}

	if categories == "" || categories == "all" {
		for _, c := range []string{NavLogState, NavLogStep, NavLogFillet, NavLogHold, NavLogAssembly, NavLogGuidance} {
			navlogCategories[c] = true
		}
	} else {
		for _, cat := range strings.Split(categories, ",") {
			navlogCategories[strings.TrimSpace(cat)] = true
		}
	}
}

// NavLog logs a message with timestamp, approach, and category
func NavLog(approach string, t time.Time, category string, format string, args ...interface{}) {
	if !navlogEnabled || !navlogCategories[category] {
		return
	}
	if navlogApproach != "" && navlogApproach != approach {
		return
	}

	// Format: [HH:MM:SS] [approach] [category] message
	fmt.Printf("[%s] [%s] [%s] %s\n", t.Format("15:04:05"), approach, category, fmt.Sprintf(format, args...))
}

// NavLogEnabled returns whether navigation logging is enabled for a given category
func NavLogEnabled(category string) bool {
	return navlogEnabled && navlogCategories[category]
}

// LogSteps logs the assembled step list.
func LogSteps(approach string, t time.Time, steps []*Step) {
	if !NavLogEnabled(NavLogStep) {
		return
	}
	for _, s := range steps {
		NavLog(approach, t, NavLogStep, "%3d %-4s %s runt=%v", s.Index, s.Leg.Kind, s.Text(), s.Runt)
	}
}
