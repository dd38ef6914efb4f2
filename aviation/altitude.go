// aviation/altitude.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cifpnav/cifpnav/math"
)

type AltitudeRestriction struct {
	// We treat 0 as "unset", which works naturally for the bottom but
	// requires occasional care at the top.
	Range [2]float32
}

// ParseAltitudeRestriction parses the leg-string encoding: "+2000" is at
// or above, "-3000" at or below, "2000" at and "2000/3000" between. The
// empty string is no restriction.
func ParseAltitudeRestriction(s string) (AltitudeRestriction, error) {
	parse := func(v string) (float32, error) {
		alt, err := strconv.Atoi(v)
		if err != nil || alt <= 0 {
			return 0, fmt.Errorf("%q: %w", s, ErrInvalidAltitude)
		}
		return float32(alt), nil
	}

	switch {
	case s == "":
		return AltitudeRestriction{}, nil
	case strings.HasPrefix(s, "+"):
		alt, err := parse(s[1:])
		return AltitudeRestriction{Range: [2]float32{alt, 0}}, err
	case strings.HasPrefix(s, "-"):
		alt, err := parse(s[1:])
		return AltitudeRestriction{Range: [2]float32{0, alt}}, err
	default:
		if lo, hi, ok := strings.Cut(s, "/"); ok {
			a0, err := parse(lo)
			if err != nil {
				return AltitudeRestriction{}, err
			}
			a1, err := parse(hi)
			if err != nil {
				return AltitudeRestriction{}, err
			}
			if a0 > a1 {
				a0, a1 = a1, a0
			}
			return AltitudeRestriction{Range: [2]float32{a0, a1}}, nil
		}
		alt, err := parse(s)
		return AltitudeRestriction{Range: [2]float32{alt, alt}}, err
	}
}

func (a AltitudeRestriction) IsSet() bool {
	return a.Range[0] != 0 || a.Range[1] != 0
}

// Allows reports whether flying at the given altitude satisfies the
// restriction.
func (a AltitudeRestriction) Allows(alt float32) bool {
	return (a.Range[0] == 0 || alt >= a.Range[0]) && (a.Range[1] == 0 || alt <= a.Range[1])
}

func (a AltitudeRestriction) TargetAltitude(alt float32) float32 {
	if a.Range[1] != 0 {
		return math.Clamp(alt, a.Range[0], a.Range[1])
	} else {
		return max(alt, a.Range[0])
	}
}

// Intersect returns the restriction that satisfies both a and b. The
// returned Boolean is false if no altitude satisfies both.
func (a AltitudeRestriction) Intersect(b AltitudeRestriction) (AltitudeRestriction, bool) {
	r := AltitudeRestriction{Range: [2]float32{max(a.Range[0], b.Range[0]), 0}}
	switch {
	case a.Range[1] == 0:
		r.Range[1] = b.Range[1]
	case b.Range[1] == 0:
		r.Range[1] = a.Range[1]
	default:
		r.Range[1] = min(a.Range[1], b.Range[1])
	}
	if r.Range[1] != 0 && r.Range[0] > r.Range[1] {
		return AltitudeRestriction{}, false
	}
	return r, true
}

// Encoded returns the restriction in the leg-string encoding that
// ParseAltitudeRestriction accepts.
func (a AltitudeRestriction) Encoded() string {
	if a.Range[0] != 0 {
		if a.Range[0] == a.Range[1] {
			return fmt.Sprintf("%.0f", a.Range[0])
		} else if a.Range[1] != 0 {
			return fmt.Sprintf("%.0f/%.0f", a.Range[0], a.Range[1])
		} else {
			return fmt.Sprintf("+%.0f", a.Range[0])
		}
	} else if a.Range[1] != 0 {
		return fmt.Sprintf("-%.0f", a.Range[1])
	} else {
		return ""
	}
}

// String returns the restriction as it is shown in the status line, e.g.
// "2000A" for at or above 2000.
func (a AltitudeRestriction) String() string {
	if a.Range[0] != 0 {
		if a.Range[0] == a.Range[1] {
			return fmt.Sprintf("%.0f", a.Range[0])
		} else if a.Range[1] != 0 {
			return fmt.Sprintf("%.0fA %.0fB", a.Range[0], a.Range[1])
		} else {
			return fmt.Sprintf("%.0fA", a.Range[0])
		}
	} else if a.Range[1] != 0 {
		return fmt.Sprintf("%.0fB", a.Range[1])
	}
	return ""
}
