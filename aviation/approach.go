// aviation/approach.go
// Copyright(c) 2022-2025 vice contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package aviation

import (
	"fmt"
	"strings"
	"unicode"
)

type ApproachType int

const (
	UnknownApproach ApproachType = iota
	ILSApproach
	LocalizerApproach
	LocalizerBackCourseApproach
	VORApproach
	VORDMEApproach
	NDBApproach
	NDBDMEApproach
	RNAVApproach
	RNPApproach
	GPSApproach
	LDAApproach
	SDFApproach
	GLSApproach
)

var approachTypeNames = []string{"Unknown", "ILS", "LOC", "LOC/BC", "VOR", "VOR/DME", "NDB", "NDB/DME",
	"RNAV (GPS)", "RNAV (RNP)", "GPS", "LDA", "SDF", "GLS"}

func (at ApproachType) String() string {
	if int(at) < len(approachTypeNames) {
		return approachTypeNames[at]
	}
	return "Unknown"
}

func (at ApproachType) MarshalJSON() ([]byte, error) {
	if int(at) >= len(approachTypeNames) {
		return nil, fmt.Errorf("unhandled approach type %d in MarshalJSON()", int(at))
	}
	return []byte(`"` + approachTypeNames[at] + `"`), nil
}

func (at *ApproachType) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	for i, n := range approachTypeNames {
		if n == s {
			*at = ApproachType(i)
			return nil
		}
	}
	return fmt.Errorf("%s: unknown approach type", string(b))
}

// HasVerticalGuidance reports whether approaches of this type may publish
// a glide path that the navigator can follow. Whether a particular
// approach actually does depends on its runway leg.
func (at ApproachType) HasVerticalGuidance() bool {
	switch at {
	case ILSApproach, RNAVApproach, RNPApproach, GLSApproach, LDAApproach:
		return true
	default:
		return false
	}
}

// approachTypeCodes maps the first character of a procedure identifier
// to the approach type.
var approachTypeCodes = map[byte]ApproachType{
	'I': ILSApproach,
	'L': LocalizerApproach,
	'B': LocalizerBackCourseApproach,
	'V': VORApproach,
	'S': VORApproach,
	'D': VORDMEApproach,
	'N': NDBApproach,
	'Q': NDBDMEApproach,
	'R': RNAVApproach,
	'H': RNPApproach,
	'P': GPSApproach,
	'X': LDAApproach,
	'U': SDFApproach,
	'J': GLSApproach,
}

// ApproachId holds the parts of a procedure identifier such as "I16",
// "R34-Y" or "V-A".
type ApproachId struct {
	Id     string
	Type   ApproachType
	Runway string // empty for circling approaches
	Suffix string // e.g. "Y" or "A"
}

func ParseApproachId(id string) (ApproachId, error) {
	if id == "" {
		return ApproachId{}, ErrInvalidApproachId
	}
	at, ok := approachTypeCodes[id[0]]
	if !ok {
		return ApproachId{}, fmt.Errorf("%s: %w", id, ErrInvalidApproachId)
	}
	a := ApproachId{Id: id, Type: at}

	rest := id[1:]
	if body, suffix, ok := strings.Cut(rest, "-"); ok {
		rest, a.Suffix = body, suffix
	}

	// Runway number, possibly with a leading zero, then L/R/C.
	i := 0
	for i < len(rest) && unicode.IsDigit(rune(rest[i])) {
		i++
	}
	if i > 0 {
		a.Runway = strings.TrimPrefix(rest[:i], "0")
		rest = rest[i:]
		if len(rest) > 0 && strings.ContainsRune("LRC", rune(rest[0])) {
			a.Runway += rest[:1]
			rest = rest[1:]
		}
	}

	// Anything left is an alphabetical suffix; some sources run it on
	// without the hyphen, e.g. "R34Y".
	if rest != "" && a.Runway != "" {
		if a.Suffix != "" || len(rest) > 1 || !unicode.IsUpper(rune(rest[0])) {
			return ApproachId{}, fmt.Errorf("%s: %w", id, ErrInvalidApproachId)
		}
		a.Suffix = rest
	}
	// Circling identifiers may carry extra letters after the type code,
	// e.g. "VDM-A"; those are ignored.

	if a.Runway == "" && a.Suffix == "" {
		return ApproachId{}, fmt.Errorf("%s: neither runway nor circling suffix: %w", id, ErrInvalidApproachId)
	}
	return a, nil
}

// FullName returns the name as printed on the chart, e.g. "RNAV (GPS) Y
// RWY 34" or "VOR-A".
func (a ApproachId) FullName() string {
	if a.Runway == "" {
		return a.Type.String() + "-" + a.Suffix
	}
	var sb strings.Builder
	sb.WriteString(a.Type.String())
	if a.Suffix != "" {
		sb.WriteString(" " + a.Suffix)
	}
	sb.WriteString(" RWY " + a.Runway)
	return sb.String()
}

// RunwayIdent returns the identifier of the runway threshold waypoint,
// e.g. "RW16" or "RW04L".
func (a ApproachId) RunwayIdent() string {
	if a.Runway == "" {
		return ""
	}
	num := strings.TrimRight(a.Runway, "LRC")
	side := a.Runway[len(num):]
	if len(num) == 1 {
		num = "0" + num
	}
	return "RW" + num + side
}
