// Arc direction and format selection
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package arc

import "strings"

// Direction is the rotation sense of an arc seen from the positive
// out-of-plane axis.
type Direction int

const (
	Clockwise Direction = iota
	CounterClockwise
)

func (d Direction) String() string {
	if d == CounterClockwise {
		return "ccw"
	}
	return "cw"
}

// DirectionFromWords scans minor words for a direction. Counter-clockwise
// words win over clockwise ones; without either the arc is clockwise.
func DirectionFromWords(words []string) Direction {
	dir := Clockwise
	for _, w := range words {
		switch strings.ToUpper(strings.TrimSpace(w)) {
		case "CCLW", "CCW", "COUNTERCLOCKWISE", "LEFT":
			return CounterClockwise
		case "CLW", "CW", "CLOCKWISE", "RIGHT":
			dir = Clockwise
		}
	}
	return dir
}

// Format is the representation of an arc: center offsets or radius.
type Format int

const (
	CenterOffset Format = iota
	Radius
)

func (f Format) String() string {
	if f == Radius {
		return "radius"
	}
	return "ijk"
}

// FormatFromParams picks the representation from the numeric parameter
// count of a command. Four numerics are an end point plus radius; six or
// more carry a center offset. Short lists default to center offset.
func FormatFromParams(count int, hasR bool) Format {
	if hasR || count == 4 {
		return Radius
	}
	return CenterOffset
}

// RadiusIndex returns the position of the radius among count numerics.
func RadiusIndex(count int) int {
	if count >= 7 {
		return 6
	}
	return 3
}
