// aviation/waypoint.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/cifpnav/cifpnav/math"

	lru "github.com/hashicorp/golang-lru/v2"
)

type WaypointType int

const (
	WaypointFix WaypointType = iota
	WaypointVOR
	WaypointVORDME
	WaypointNDB
	WaypointDME
	WaypointLocalizer
	WaypointAirport
	WaypointRunway
)

var waypointTypeNames = []string{"FIX", "VOR", "VORDME", "NDB", "DME", "LOC", "APT", "RWY"}

func (t WaypointType) String() string {
	if int(t) < len(waypointTypeNames) {
		return waypointTypeNames[t]
	}
	return "???"
}

func ParseWaypointType(s string) (WaypointType, bool) {
	for i, n := range waypointTypeNames {
		if strings.EqualFold(s, n) {
			return WaypointType(i), true
		}
	}
	return WaypointFix, false
}

// IsNavaid reports whether distances and radials may be measured from
// the waypoint.
func (t WaypointType) IsNavaid() bool {
	return t == WaypointVOR || t == WaypointVORDME || t == WaypointNDB || t == WaypointDME ||
		t == WaypointLocalizer
}

type Waypoint struct {
	Ident    string        `json:"ident" msgpack:"i"`
	Type     WaypointType  `json:"type" msgpack:"t"`
	Location math.Point2LL `json:"location" msgpack:"l"`
	// Feet MSL; runway thresholds and airports.
	Elevation float32 `json:"elevation,omitempty" msgpack:"e,omitempty"`
	// Station declination for navaids, local variation for airports.
	MagneticVariation float32 `json:"magnetic_variation,omitempty" msgpack:"m,omitempty"`
}

func (wp Waypoint) String() string {
	return fmt.Sprintf("%s (%s) %s", wp.Ident, wp.Type, wp.Location.DDString())
}

// WaypointFinder resolves identifiers referenced by procedures.
type WaypointFinder interface {
	FindWaypoint(ident string) (Waypoint, bool)
}

// MapFinder is a WaypointFinder backed by a map; it is mostly useful for
// tests and small data sets.
type MapFinder map[string]Waypoint

func (m MapFinder) FindWaypoint(ident string) (Waypoint, bool) {
	wp, ok := m[ident]
	return wp, ok
}

func (m MapFinder) Add(wps ...Waypoint) MapFinder {
	for _, wp := range wps {
		m[wp.Ident] = wp
	}
	return m
}

///////////////////////////////////////////////////////////////////////////
// CachingFinder

type cachedWaypoint struct {
	wp    Waypoint
	found bool
}

// CachingFinder remembers the results of lookups, including misses, from
// an underlying finder that may be expensive to query (e.g. the sqlite
// procedure database).
type CachingFinder struct {
	base  WaypointFinder
	cache *lru.Cache[string, cachedWaypoint]

	mu     sync.Mutex
	hits   int
	misses int
}

func NewCachingFinder(base WaypointFinder, size int) (*CachingFinder, error) {
	c, err := lru.New[string, cachedWaypoint](size)
	if err != nil {
		return nil, err
	}
	return &CachingFinder{base: base, cache: c}, nil
}

func (c *CachingFinder) FindWaypoint(ident string) (Waypoint, bool) {
	if e, ok := c.cache.Get(ident); ok {
		c.mu.Lock()
		c.hits++
		c.mu.Unlock()
		return e.wp, e.found
	}

	wp, found := c.base.FindWaypoint(ident)
	c.cache.Add(ident, cachedWaypoint{wp: wp, found: found})

	c.mu.Lock()
	c.misses++
	c.mu.Unlock()

	return wp, found
}

// Stats returns the number of cache hits and misses so far.
func (c *CachingFinder) Stats() (hits, misses int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}

///////////////////////////////////////////////////////////////////////////
// ScopedFinder

// ScopedFinder resolves identifiers in the context of an airport: runway
// thresholds and localizers are stored as "AIRPORT.IDENT" and are found
// first, before falling back to the global namespace.
type ScopedFinder struct {
	Airport string
	Base    WaypointFinder
}

func (s ScopedFinder) FindWaypoint(ident string) (Waypoint, bool) {
	if s.Airport != "" {
		if wp, ok := s.Base.FindWaypoint(s.Airport + "." + ident); ok {
			wp.Ident = ident
			return wp, true
		}
	}
	return s.Base.FindWaypoint(ident)
}

///////////////////////////////////////////////////////////////////////////

// ResolveWaypoint looks up the waypoint described by spec. In addition to
// plain identifiers, it handles the "ID[BRG@DIST" form, which describes
// the point at the given magnetic bearing and distance in nm from ID. The
// variation of the base waypoint is used for the bearing if it has one
// and magvar otherwise.
func ResolveWaypoint(f WaypointFinder, spec string, magvar float32) (Waypoint, error) {
	ident, offset, hasOffset := strings.Cut(spec, "[")

	wp, ok := f.FindWaypoint(ident)
	if !ok {
		return Waypoint{}, &WaypointNotFoundError{Ident: ident}
	}
	if !hasOffset {
		return wp, nil
	}

	brgStr, distStr, ok := strings.Cut(offset, "@")
	if !ok {
		return Waypoint{}, fmt.Errorf("%s: %w", spec, ErrInvalidWaypointOffset)
	}
	brg, err := strconv.ParseFloat(brgStr, 32)
	if err != nil {
		return Waypoint{}, fmt.Errorf("%s: bearing: %w", spec, ErrInvalidWaypointOffset)
	}
	dist, err := strconv.ParseFloat(distStr, 32)
	if err != nil || dist < 0 {
		return Waypoint{}, fmt.Errorf("%s: distance: %w", spec, ErrInvalidWaypointOffset)
	}

	if wp.MagneticVariation != 0 {
		magvar = wp.MagneticVariation
	}
	hdg := MagneticToTrue(float32(brg), magvar)
	nmPerLongitude := math.NMPerLongitudeAt(wp.Location.Latitude())

	return Waypoint{
		Ident:             spec,
		Type:              WaypointFix,
		Location:          math.Offset2LL(wp.Location, hdg, float32(dist), nmPerLongitude),
		MagneticVariation: wp.MagneticVariation,
	}, nil
}
