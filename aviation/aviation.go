// aviation/aviation.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"time"

	"github.com/cifpnav/cifpnav/math"
)

// PositionSample is a single report from the GPS: where the aircraft is
// and how it is moving. Track is a true heading in degrees and
// GroundSpeed is in knots; Altitude is feet MSL.
type PositionSample struct {
	Time        time.Time     `json:"time" msgpack:"t"`
	Position    math.Point2LL `json:"position" msgpack:"p"`
	Altitude    float32       `json:"altitude" msgpack:"a"`
	Track       float32       `json:"track" msgpack:"k"`
	GroundSpeed float32       `json:"groundspeed" msgpack:"g"`
}

func (s PositionSample) String() string {
	return fmt.Sprintf("%s %s %.0fft %03.0f %.0fkt", s.Time.Format("15:04:05"), s.Position.DDString(),
		s.Altitude, s.Track, s.GroundSpeed)
}

// Magnetic variation follows the chart convention used throughout: a
// magnetic heading is the true heading plus the variation, so westerly
// variation is positive.

func MagneticToTrue(h, magvar float32) float32 {
	return math.NormalizeHeading(h - magvar)
}

func TrueToMagnetic(h, magvar float32) float32 {
	return math.NormalizeHeading(h + magvar)
}

///////////////////////////////////////////////////////////////////////////
// TurnDirection

type TurnDirection int

const (
	TurnClosest TurnDirection = iota // default
	TurnLeft
	TurnRight
)

func (t TurnDirection) String() string {
	switch t {
	case TurnClosest:
		return "closest"
	case TurnRight:
		return "right"
	case TurnLeft:
		return "left"
	default:
		return "???"
	}
}

// Letter returns the single-character form used on charts and in the
// status line; TurnClosest has none.
func (t TurnDirection) Letter() byte {
	switch t {
	case TurnLeft:
		return 'L'
	case TurnRight:
		return 'R'
	default:
		return 0
	}
}

// Sign returns 1 for right turns, -1 for left turns and 0 otherwise; it
// is the sign of a clockwise sweep.
func (t TurnDirection) Sign() float32 {
	switch t {
	case TurnLeft:
		return -1
	case TurnRight:
		return 1
	default:
		return 0
	}
}

func (t TurnDirection) Opposite() TurnDirection {
	switch t {
	case TurnLeft:
		return TurnRight
	case TurnRight:
		return TurnLeft
	default:
		return TurnClosest
	}
}

func ParseTurnDirection(s string) (TurnDirection, error) {
	switch s {
	case "L", "l", "left":
		return TurnLeft, nil
	case "R", "r", "right":
		return TurnRight, nil
	case "", "E", "closest":
		return TurnClosest, nil
	default:
		return TurnClosest, fmt.Errorf("%q: %w", s, ErrInvalidTurnDirection)
	}
}

// TurnDirectionFromSweep returns the turn direction for a signed sweep
// where positive is clockwise.
func TurnDirectionFromSweep(sweep float32) TurnDirection {
	if sweep < 0 {
		return TurnLeft
	} else if sweep > 0 {
		return TurnRight
	}
	return TurnClosest
}
