// Arc resolution
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package arc resolves circular moves: it picks the output representation,
// derives the center and sweep, and rejects impossible geometry.
package arc

import (
	stderrors "errors"
	"fmt"
	"math"

	"aptpost/pkg/errors"
)

const (
	// Epsilon is the smallest radius, offset or chord taken as non-zero.
	Epsilon = 1e-4
	// ChordTolerance is the slack allowed when a chord meets the diameter.
	ChordTolerance = 0.001
)

// Reasons carried by geometry errors, also used as metric labels.
const (
	ReasonRadiusTooSmall   = "radius_too_small"
	ReasonFullCircleRadius = "full_circle_radius"
	ReasonChordTooLong     = "chord_too_long"
	ReasonZeroOffset       = "zero_offset"
	ReasonOffsetOutOfPlane = "offset_out_of_plane"
)

var (
	ErrRadiusTooSmall   = stderrors.New("radius too small")
	ErrFullCircleRadius = stderrors.New("full circle needs center offsets")
	ErrChordTooLong     = stderrors.New("chord longer than diameter")
	ErrZeroOffset       = stderrors.New("zero center offset")
	ErrOffsetOutOfPlane = stderrors.New("center offset outside the working plane")
)

// Request describes one circular move as commanded.
type Request struct {
	Start, End Point
	// Offset is the center relative to Start (I, J, K).
	Offset Point
	Radius float64

	Format    Format
	Direction Direction
	Plane     Plane
	// PreferRadius allows radius output for radius-sourced arcs.
	PreferRadius bool
}

// Arc is a resolved circular move.
type Arc struct {
	Start, End Point
	Plane      Plane
	Direction  Direction

	Source Format
	Output Format

	// Offset is Center - Start.
	Offset Point
	Center Point
	Radius float64
	// Sweep is signed in degrees: negative clockwise, ±360 for a full circle.
	Sweep      float64
	FullCircle bool

	// Helix is the out-of-plane travel; Pitch is Helix per full turn.
	Helix float64
	Pitch float64
}

// Validate checks the request geometry without resolving it.
func Validate(req Request) error {
	plane := req.plane()
	chord := Chord(req.Start, req.End, plane)

	if req.Format == Radius {
		r := math.Abs(req.Radius)
		switch {
		case r <= Epsilon:
			return geometryError(ErrRadiusTooSmall, ReasonRadiusTooSmall,
				"radius %.6f must exceed %g", req.Radius, Epsilon)
		case chord < Epsilon:
			return geometryError(ErrFullCircleRadius, ReasonFullCircleRadius,
				"start equals end in radius format, use center offsets")
		case chord > 2*r+ChordTolerance:
			return geometryError(ErrChordTooLong, ReasonChordTooLong,
				"chord %.4f exceeds diameter %.4f", chord, 2*r)
		}
		return nil
	}

	if req.Offset.Norm() <= Epsilon {
		return geometryError(ErrZeroOffset, ReasonZeroOffset,
			"center offset %s cannot define a circle", req.Offset)
	}
	ou, ov, _ := plane.project(req.Offset)
	if math.Hypot(ou, ov) <= Epsilon {
		return geometryError(ErrOffsetOutOfPlane, ReasonOffsetOutOfPlane,
			"center offset %s has no component in plane %s", req.Offset, plane)
	}
	return nil
}

// Resolve validates req and computes the arc. A rejected request returns
// an ARC_GEOMETRY error and no arc.
func Resolve(req Request) (Arc, error) {
	if err := Validate(req); err != nil {
		return Arc{}, err
	}
	plane := req.plane()

	a := Arc{
		Start:     req.Start,
		End:       req.End,
		Plane:     plane,
		Direction: req.Direction,
		Source:    req.Format,
	}

	_, _, w0 := plane.project(req.Start)
	if req.Format == Radius {
		a.Radius = math.Abs(req.Radius)
		a.Center = CenterFromRadius(req.Start, req.End, a.Radius, plane)
	} else {
		ou, ov, _ := plane.project(req.Offset)
		su, sv, _ := plane.project(req.Start)
		a.Center = plane.unproject(su+ou, sv+ov, w0)
		a.Radius = math.Hypot(ou, ov)
	}
	a.Offset = a.Center.Sub(req.Start)

	a.FullCircle = Chord(req.Start, req.End, plane) < Epsilon
	minor := SweepAngle(a.Center, req.Start, req.End, plane)
	a.Sweep = directional(minor, req.Direction, a.FullCircle)

	a.Output = CenterOffset
	if a.Source == Radius && req.PreferRadius && !a.FullCircle && math.Abs(a.Sweep) <= 180 {
		a.Output = Radius
	}

	_, _, w1 := plane.project(req.End)
	a.Helix = w1 - w0
	a.Pitch = Pitch(a.Helix, a.Sweep)
	return a, nil
}

func (req Request) plane() Plane {
	if req.Plane.Valid() {
		return req.Plane
	}
	return PlaneXY
}

func geometryError(sentinel error, reason, format string, args ...interface{}) *errors.PostError {
	e := errors.ArcGeometryError(reason, fmt.Sprintf(format, args...))
	e.Err = sentinel
	return e
}
