// CIRCLE and ARC handlers
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"math"

	"aptpost/pkg/apt"
	"aptpost/pkg/arc"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

// arcRequest builds the resolver request of a CIRCLE or ARC command.
//
// Numeric layout: end x, y, z, then either a center offset i, j, k or a
// single radius. An R or RADIUS minor word selects the radius explicitly:
//
//	CIRCLE/10,0,0,5,0,0,CLW
//	CIRCLE/10,0,0,5,CCLW
//	CIRCLE/X,10,Y,0,Z,0,R,5,CCLW
//
// Missing end coordinates stay at the current position and missing
// offsets are zero, so short lists are read as center offsets.
func arcRequest(s *session.Session, cmd apt.Command) (arc.Request, error) {
	n := cmd.NumberCount()
	hasR := cmd.HasMinor("R", "RADIUS")
	pos := s.Position()

	req := arc.Request{
		Start:        pos,
		End:          arc.Point{X: cmd.Number(0, pos.X), Y: cmd.Number(1, pos.Y), Z: cmd.Number(2, pos.Z)},
		Format:       arc.FormatFromParams(n, hasR),
		Direction:    arc.DirectionFromWords(cmd.Minors()),
		Plane:        s.Plane(),
		PreferRadius: s.Ctrl.CirclesThroughRadius,
	}

	if req.Format == arc.Radius {
		r := cmd.Number(arc.RadiusIndex(n), math.NaN())
		if hasR {
			r = cmd.NumberAfter("R", cmd.NumberAfter("RADIUS", r))
		}
		if math.IsNaN(r) {
			return req, errors.InvalidParameterError(cmd.Major(), "radius", "missing radius value")
		}
		req.Radius = r
		return req, nil
	}

	req.Offset = arc.Point{X: cmd.Number(3, 0), Y: cmd.Number(4, 0), Z: cmd.Number(5, 0)}
	return req, nil
}

// resolveArc parses and resolves cmd, recording the outcome in the run
// metrics. Rejected arcs leave the registers untouched.
func resolveArc(s *session.Session, cmd apt.Command) (arc.Arc, error) {
	req, err := arcRequest(s, cmd)
	if err != nil {
		return arc.Arc{}, err
	}
	a, err := arc.Resolve(req)
	if err != nil {
		s.Metrics.RecordArcRejected(errors.ReasonOf(err))
		if pe, ok := err.(*errors.PostError); ok {
			pe.SetCommand(cmd.Major()).SetLine(cmd.Line())
		}
		return arc.Arc{}, err
	}

	s.Metrics.RecordArc(a.Output.String(), a.Sweep)
	s.Vars.SetFloat(session.VarArcPitch, a.Pitch)
	if a.Helix != 0 {
		s.Log.Debug("helical arc: travel %.4f, pitch %.4f", a.Helix, a.Pitch)
	}
	return a, nil
}

func directionCode(s *session.Session, d arc.Direction) string {
	if d == arc.CounterClockwise {
		return s.Ctrl.Codes.CounterClockwise
	}
	return s.Ctrl.Codes.Clockwise
}

// cmdCircle writes one block: direction word, forced end point in the
// plane, forced offsets or R, the third axis when it moved, and the feed.
func cmdCircle(s *session.Session, cmd apt.Command) error {
	a, err := resolveArc(s, cmd)
	if err != nil {
		return err
	}
	axes := arc.PlaneAxes(a.Plane)
	code := directionCode(s, a.Direction)

	for _, name := range []string{"X", "Y", "Z"} {
		s.Regs.Set(name, arc.Component(a.End, name))
	}
	for _, name := range axes.Primary {
		s.Regs.Force(name)
	}
	s.Out.Show(axes.Primary[0], axes.Primary[1], axes.Third)

	if a.Output == arc.Radius {
		s.Regs.Set("R", a.Radius)
		s.Regs.Force("R")
		s.Out.Show("R")
	} else {
		for _, name := range axes.Offsets {
			s.Regs.Set(name, arc.Component(a.Offset, name))
			s.Regs.Force(name)
		}
		s.Out.Show(axes.Offsets[0], axes.Offsets[1])
	}
	s.Out.Show("F")

	s.State.Changed(stateMotion, code)
	s.Out.Write(code)
	_, err = s.Out.Flush()
	return err
}
