// Arc geometry helpers
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package arc

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Point is a position or vector in machine coordinates.
type Point struct {
	X, Y, Z float64
}

// Add returns p + q.
func (p Point) Add(q Point) Point { return Point{p.X + q.X, p.Y + q.Y, p.Z + q.Z} }

// Sub returns p - q.
func (p Point) Sub(q Point) Point { return Point{p.X - q.X, p.Y - q.Y, p.Z - q.Z} }

// Norm returns the euclidean length.
func (p Point) Norm() float64 { return math.Sqrt(p.X*p.X + p.Y*p.Y + p.Z*p.Z) }

func (p Point) String() string {
	return fmt.Sprintf("(%.4f, %.4f, %.4f)", p.X, p.Y, p.Z)
}

// Plane is the working plane, numbered like its G code.
type Plane int

const (
	PlaneXY Plane = 17
	PlaneZX Plane = 18
	PlaneYZ Plane = 19
)

// Valid reports whether p is one of the three working planes.
func (p Plane) Valid() bool { return p >= PlaneXY && p <= PlaneYZ }

func (p Plane) String() string {
	switch p {
	case PlaneXY:
		return "XY"
	case PlaneZX:
		return "ZX"
	case PlaneYZ:
		return "YZ"
	}
	return "Plane(" + strconv.Itoa(int(p)) + ")"
}

// ParsePlane accepts XY, ZX (or XZ), YZ and the numbers 17 to 19.
func ParsePlane(s string) (Plane, bool) {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "XY", "17", "G17":
		return PlaneXY, true
	case "ZX", "XZ", "18", "G18":
		return PlaneZX, true
	case "YZ", "19", "G19":
		return PlaneYZ, true
	}
	return 0, false
}

// Axes names the registers an arc in a plane writes.
type Axes struct {
	Primary [2]string
	Offsets [2]string
	Third   string
}

var planeAxes = map[Plane]Axes{
	PlaneXY: {Primary: [2]string{"X", "Y"}, Offsets: [2]string{"I", "J"}, Third: "Z"},
	PlaneZX: {Primary: [2]string{"X", "Z"}, Offsets: [2]string{"I", "K"}, Third: "Y"},
	PlaneYZ: {Primary: [2]string{"Y", "Z"}, Offsets: [2]string{"J", "K"}, Third: "X"},
}

// PlaneAxes returns the register mapping of p. Unknown planes map like XY.
func PlaneAxes(p Plane) Axes {
	if a, ok := planeAxes[p]; ok {
		return a
	}
	return planeAxes[PlaneXY]
}

// project splits pt into in-plane (u, v) and out-of-plane w.
func (p Plane) project(pt Point) (u, v, w float64) {
	switch p {
	case PlaneZX:
		return pt.X, pt.Z, pt.Y
	case PlaneYZ:
		return pt.Y, pt.Z, pt.X
	}
	return pt.X, pt.Y, pt.Z
}

func (p Plane) unproject(u, v, w float64) Point {
	switch p {
	case PlaneZX:
		return Point{X: u, Y: w, Z: v}
	case PlaneYZ:
		return Point{X: w, Y: u, Z: v}
	}
	return Point{X: u, Y: v, Z: w}
}

// Component returns the value of axis letter name in pt.
func Component(pt Point, name string) float64 {
	switch name {
	case "X", "I":
		return pt.X
	case "Y", "J":
		return pt.Y
	case "Z", "K":
		return pt.Z
	}
	return 0
}

// Chord returns the in-plane distance between a and b.
func Chord(a, b Point, plane Plane) float64 {
	u0, v0, _ := plane.project(a)
	u1, v1, _ := plane.project(b)
	return math.Hypot(u1-u0, v1-v0)
}

// CenterFromRadius returns the arc center for a chord from start to end
// and radius r. Of the two candidates the one along (-dy, dx) is used when
// |dy| > |dx|, else the one along (dy, -dx). The out-of-plane coordinate
// is taken from start.
func CenterFromRadius(start, end Point, r float64, plane Plane) Point {
	u0, v0, w0 := plane.project(start)
	u1, v1, _ := plane.project(end)
	dx, dy := u1-u0, v1-v0
	chord := math.Hypot(dx, dy)
	mu, mv := (u0+u1)/2, (v0+v1)/2
	if chord < Epsilon {
		return plane.unproject(mu, mv, w0)
	}

	half := chord / 2
	h := math.Sqrt(math.Max(0, r*r-half*half))
	var pu, pv float64
	if math.Abs(dy) > math.Abs(dx) {
		pu, pv = -dy/chord, dx/chord
	} else {
		pu, pv = dy/chord, -dx/chord
	}
	return plane.unproject(mu+h*pu, mv+h*pv, w0)
}

// SweepAngle returns the minor angle in degrees from start to end around
// center, in [-180, 180]. It is negative when the in-plane cross product
// of the radius vectors is negative.
func SweepAngle(center, start, end Point, plane Plane) float64 {
	cu, cv, _ := plane.project(center)
	su, sv, _ := plane.project(start)
	eu, ev, _ := plane.project(end)
	su, sv = su-cu, sv-cv
	eu, ev = eu-cu, ev-cv

	sl, el := math.Hypot(su, sv), math.Hypot(eu, ev)
	if sl == 0 || el == 0 {
		return 0
	}
	su, sv = su/sl, sv/sl
	eu, ev = eu/el, ev/el

	dot := math.Max(-1, math.Min(1, su*eu+sv*ev))
	angle := math.Acos(dot) * 180 / math.Pi
	if su*ev-sv*eu < 0 {
		angle = -angle
	}
	return angle
}

// directional maps the minor angle onto the commanded direction:
// clockwise sweeps lie in [-360, 0), counter-clockwise in (0, 360].
func directional(minor float64, dir Direction, full bool) float64 {
	if full {
		if dir == Clockwise {
			return -360
		}
		return 360
	}
	if dir == Clockwise && minor >= 0 {
		return minor - 360
	}
	if dir == CounterClockwise && minor <= 0 {
		return minor + 360
	}
	return minor
}

// Pitch returns the out-of-plane advance per full turn of a helix.
func Pitch(delta, sweep float64) float64 {
	if sweep == 0 {
		return 0
	}
	return delta * 360 / math.Abs(sweep)
}

// IJKToABC converts a tool axis vector into rotary angles in degrees,
// wrapped into [0, 360) and rounded to 3 decimals.
func IJKToABC(i, j, k float64) (a, b float64) {
	a = math.Atan2(j, k) * 180 / math.Pi
	b = math.Atan2(i, math.Hypot(j, k)) * 180 / math.Pi
	if a < 0 {
		a += 360
	}
	if b < 0 {
		b += 360
	}
	return round3(a), round3(b)
}

func round3(v float64) float64 {
	return math.Round(v*1000) / 1000
}
