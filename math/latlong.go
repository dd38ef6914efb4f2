// math/latlong.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	gomath "math"
	"strconv"
	"strings"
)

const NMPerLatitude = 60

///////////////////////////////////////////////////////////////////////////
// Point2LL

const NauticalMilesToFeet = 6076.12
const FeetToNauticalMiles = 1 / NauticalMilesToFeet

// Point2LL represents a 2D point on the Earth in latitude-longitude.
// Important: 0 (x) is longitude, 1 (y) is latitude
type Point2LL [2]float32

func (p Point2LL) Longitude() float32 {
	return p[0]
}

func (p Point2LL) Latitude() float32 {
	return p[1]
}

// DDString returns the position in decimal degrees, e.g.:
// (39.860901, -75.274864)
func (p Point2LL) DDString() string {
	return fmt.Sprintf("(%f, %f)", p[1], p[0]) // latitude, longitude
}

// DMSString returns the position in degrees minutes, seconds, e.g.
// N039.51.39.243,W075.16.29.511
func (p Point2LL) DMSString() string {
	format := func(v float32) string {
		s := fmt.Sprintf("%03d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 60
		s += fmt.Sprintf(".%02d", int(v))
		v -= Floor(v)
		v *= 1000
		s += fmt.Sprintf(".%03d", int(v))
		return s
	}

	var s string
	if p[1] > 0 {
		s = "N"
	} else {
		s = "S"
	}
	s += format(Abs(p[1]))

	if p[0] > 0 {
		s += ",E"
	} else {
		s += ",W"
	}
	s += format(Abs(p[0]))

	return s
}

func (p Point2LL) String() string {
	return p.DMSString()
}

// ParseLatLong parses either a pair of decimal degrees "lat, long" or the
// dotted form "N40.37.58.400,W073.46.17.000".
func ParseLatLong(llstr string) (Point2LL, error) {
	lat, long, ok := strings.Cut(llstr, ",")
	if !ok {
		return Point2LL{}, fmt.Errorf("%s: invalid latlong string", llstr)
	}
	lat, long = strings.TrimSpace(lat), strings.TrimSpace(long)

	parse := func(s string, pos, neg byte) (float32, error) {
		if s == "" {
			return 0, fmt.Errorf("%s: invalid latlong string", llstr)
		}
		if s[0] != pos && s[0] != neg {
			v, err := strconv.ParseFloat(s, 32)
			return float32(v), err
		}

		sgn := float32(1)
		if s[0] == neg {
			sgn = -1
		}
		f := strings.Split(s[1:], ".")
		if len(f) != 4 {
			return 0, fmt.Errorf("%s: invalid latlong string", llstr)
		}
		var v [2]int
		for i := range v {
			var err error
			if v[i], err = strconv.Atoi(f[i]); err != nil {
				return 0, err
			}
		}
		// Seconds may have any number of decimal digits.
		secs, err := strconv.ParseFloat(f[2]+"."+f[3], 64)
		if err != nil {
			return 0, err
		}
		return sgn * (float32(v[0]) + float32(v[1])/60 + float32(secs/3600)), nil
	}

	var p Point2LL
	var err error
	if p[1], err = parse(lat, 'N', 'S'); err != nil {
		return Point2LL{}, err
	}
	if p[0], err = parse(long, 'E', 'W'); err != nil {
		return Point2LL{}, err
	}
	return p, nil
}

// NMDistance2ll returns the distance in nautical miles between two
// provided lat-long coordinates.
func NMDistance2LL(a Point2LL, b Point2LL) float32 {
	// https://www.movable-type.co.uk/scripts/latlong.html
	const R = 6371000 // metres
	rad := func(d float64) float64 { return float64(d) / 180 * gomath.Pi }
	lat1, lon1 := rad(float64(a[1])), rad(float64(a[0]))
	lat2, lon2 := rad(float64(b[1])), rad(float64(b[0]))
	dlat, dlon := lat2-lat1, lon2-lon1

	x := Sqr(gomath.Sin(dlat/2)) + gomath.Cos(lat1)*gomath.Cos(lat2)*Sqr(gomath.Sin(dlon/2))
	c := 2 * gomath.Atan2(gomath.Sqrt(x), gomath.Sqrt(1-x))
	dm := R * c // in metres

	return float32(dm * 0.000539957)
}

// NMPerLongitudeAt returns the length of a degree of longitude at the
// given latitude.
func NMPerLongitudeAt(lat float32) float32 {
	return NMPerLatitude * Cos(Radians(lat))
}

// NM2LL converts a point expressed in nautical mile coordinates to
// lat-long.
func NM2LL(p [2]float32, nmPerLongitude float32) Point2LL {
	return Point2LL{p[0] / nmPerLongitude, p[1] / NMPerLatitude}
}

// LL2NM converts a point expressed in latitude-longitude coordinates to
// nautical mile coordinates; this is useful for example for reasoning
// about distances, since both axes then have the same measure.
func LL2NM(p Point2LL, nmPerLongitude float32) [2]float32 {
	return [2]float32{p[0] * nmPerLongitude, p[1] * NMPerLatitude}
}

// Offset2LL returns the point at distance dist along the vector with heading hdg from
// the given point. It assumes a (locally) flat earth.
func Offset2LL(pll Point2LL, hdg float32, dist float32, nmPerLongitude float32) Point2LL {
	p := LL2NM(pll, nmPerLongitude)
	p = Add2f(p, Scale2f(HeadingVector(hdg), dist))
	return NM2LL(p, nmPerLongitude)
}
