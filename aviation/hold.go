// aviation/hold.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/cifpnav/cifpnav/math"
)

type HoldEntry int

const (
	HoldEntryDirect HoldEntry = iota
	HoldEntryParallel
	HoldEntryTeardrop
)

func (e HoldEntry) String() string {
	return []string{"Direct", "Parallel", "Teardrop"}[int(e)]
}

// HoldEntryAngle returns the angle between the aircraft's heading to the
// holding fix and the inbound course, mirrored for left-turn holds so
// that in both cases negative angles are on the holding side. The result
// is in [-180,180).
func HoldEntryAngle(headingToFix, inboundCourse float32, turn TurnDirection) float32 {
	theta := math.Normalize180(headingToFix - inboundCourse)
	if turn == TurnLeft {
		theta = -theta
		if theta == 180 {
			theta = -180
		}
	}
	return theta
}

// ClassifyHoldEntry returns the entry for an aircraft arriving at the
// fix with the given heading. The sectors are split 70 degrees from the
// outbound course on the holding side: parallel is the 110 degrees from
// the outbound course toward the holding side, teardrop the 70 degrees on
// the other side and direct the remaining 180.
func ClassifyHoldEntry(headingToFix, inboundCourse float32, turn TurnDirection) HoldEntry {
	return HoldEntryForAngle(HoldEntryAngle(headingToFix, inboundCourse, turn))
}

// HoldEntryForAngle classifies an angle returned by HoldEntryAngle.
func HoldEntryForAngle(theta float32) HoldEntry {
	if theta < -70 {
		return HoldEntryParallel
	} else if theta > 110 {
		return HoldEntryTeardrop
	}
	return HoldEntryDirect
}

// HoldLegMinutes returns the duration of the inbound leg of a timed hold
// at the given altitude.
func HoldLegMinutes(altitude float32) float32 {
	if altitude > 14000 {
		return 1.5
	}
	return 1
}
