//go:build !navlog

// nav/log_release.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package nav

import (
	"time"
)

// InitNavLog is a no-op in release builds
func InitNavLog(enabled bool, categories string, approach string) {}

// NavLog is a no-op in release builds
func NavLog(approach string, t time.Time, category string, format string, args ...interface{}) {
}

// NavLogEnabled always returns false in release builds
func NavLogEnabled(category string) bool { return false }

// LogSteps is a no-op in release builds
func LogSteps(approach string, t time.Time, steps []*Step) {}
