// aviation/projection.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"github.com/cifpnav/cifpnav/math"
)

// Projector maps between latitude-longitude and a plane where distances
// are locally metric-consistent. All of the approach geometry is computed
// in the projected plane.
type Projector interface {
	Project(p math.Point2LL) [2]float32
	Unproject(p [2]float32) math.Point2LL
}

// LocalProjector is a flat-earth projection to nautical miles centered at
// a reference point, typically the airport. It is accurate enough over
// the extent of an approach procedure.
type LocalProjector struct {
	Center         math.Point2LL
	NMPerLongitude float32
}

func NewLocalProjector(center math.Point2LL) LocalProjector {
	return LocalProjector{
		Center:         center,
		NMPerLongitude: math.NMPerLongitudeAt(center.Latitude()),
	}
}

func (lp LocalProjector) Project(p math.Point2LL) [2]float32 {
	return math.Sub2f(math.LL2NM(p, lp.NMPerLongitude), math.LL2NM(lp.Center, lp.NMPerLongitude))
}

func (lp LocalProjector) Unproject(p [2]float32) math.Point2LL {
	return math.NM2LL(math.Add2f(p, math.LL2NM(lp.Center, lp.NMPerLongitude)), lp.NMPerLongitude)
}
