// aviation/errors.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidAltitude       = errors.New("invalid altitude restriction")
	ErrInvalidTurnDirection  = errors.New("invalid turn direction")
	ErrInvalidWaypointOffset = errors.New("invalid waypoint bearing/distance offset")
	ErrInvalidApproachId     = errors.New("invalid approach identifier")
	ErrInvalidRecord         = errors.New("invalid procedure record")
	ErrUnknownAirport        = errors.New("unknown airport")
	ErrBundleVersion         = errors.New("unsupported bundle version")
)

// WaypointNotFoundError is returned when a fix, navaid or runway referenced
// by a procedure can't be resolved.
type WaypointNotFoundError struct {
	Ident string
}

func (e *WaypointNotFoundError) Error() string {
	return fmt.Sprintf("%s: waypoint not found", e.Ident)
}
