// Siemens Sinumerik handlers
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"fmt"
	"strconv"
	"strings"

	"aptpost/pkg/apt"
	"aptpost/pkg/arc"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

func siemens(set *Set) {
	set.RegisterFunc("SEQNO", cmdSeqno, "Block numbers on or off (ON|OFF)")
	set.RegisterFunc("CYCLE81", cycle("CYCLE81", 4, []float64{0, 0, 2, 0, 0}),
		"Drilling cycle (RTP, RFP, SDIS, DP[, DPR])")
	set.RegisterFunc("CYCLE83", cycle("CYCLE83", 4, []float64{0, 0, 2, 0, 0, 0, 0, 0, 0, 0, 1, 0}),
		"Deep hole drilling (RTP, RFP, SDIS, DP, DPR, FDEP, FDPR, DAM, DTB, DTS, FRF, VARI)")
	set.RegisterFunc("LOADTL", cmdSiemensLoadtl, "Tool change with offset D1 (tool[, rpm])")
	set.RegisterFunc("WPLANE", cmdWplane, "Working plane (ON|OFF, XYPLAN|ZXPLAN|YZPLAN or 17..19)")
}

var workPlanes = map[string]arc.Plane{
	"XYPLAN": arc.PlaneXY,
	"ZXPLAN": arc.PlaneZX,
	"YZPLAN": arc.PlaneYZ,
}

// cmdWplane selects the working plane. While the working plane is off
// the choice is only remembered; WPLANE/ON applies it. With CYCLE800
// enabled every active WPLANE swivels the plane to the current rotary
// angles.
func cmdWplane(s *session.Session, cmd apt.Command) error {
	enabled := s.Vars.Int(session.VarWPlane, 1) == 1
	plane := arc.Plane(s.Vars.Int(session.VarWorkPlane, int(s.Plane())))
	for _, w := range cmd.Minors() {
		switch w {
		case "ON":
			enabled = true
		case "OFF":
			enabled = false
		default:
			p, ok := workPlanes[w]
			if !ok {
				return errors.InvalidParameterError(cmd.Major(), "plane", "unknown word "+w)
			}
			plane = p
		}
	}
	if cmd.NumberCount() > 0 {
		p := arc.Plane(int(cmd.Number(0, 0)))
		if !p.Valid() {
			return errors.InvalidParameterError(cmd.Major(), "plane", "expected 17, 18 or 19")
		}
		plane = p
	}
	s.Vars.SetInt(session.VarWPlane, boolInt(enabled))
	s.Vars.SetInt(session.VarWorkPlane, int(plane))
	if !enabled {
		return nil
	}

	var parts []string
	if plane != s.Plane() {
		s.Vars.SetInt(session.VarPlane, int(plane))
		parts = append(parts, s.Ctrl.Codes.PlaneCode(int(plane)))
	}
	if s.Ctrl.Cycle800 {
		parts = append(parts, fmt.Sprintf("CYCLE800(%.1f,%.1f,%.1f,0,0,0,%.3f,%.3f,%.3f)",
			s.Ctrl.Program.RetractZ, 0.0, 2.0,
			s.Regs.Get("A"), s.Regs.Get("B"), s.Regs.Get("C")))
	}
	if len(parts) == 0 {
		return nil
	}
	return s.Out.Line(strings.Join(parts, " "))
}

func cmdSeqno(s *session.Session, cmd apt.Command) error {
	switch {
	case cmd.HasMinor("ON"):
		s.Out.SetNumbering(true)
	case cmd.HasMinor("OFF"):
		s.Out.SetNumbering(false)
	default:
		return errors.InvalidParameterError(cmd.Major(), "mode", "expected ON or OFF")
	}
	return nil
}

// cycle returns a fixed-cycle handler. Missing trailing parameters take
// their defaults; at least required must be given.
func cycle(name string, required int, defaults []float64) func(*session.Session, apt.Command) error {
	return func(s *session.Session, cmd apt.Command) error {
		n := cmd.NumberCount()
		if n < required {
			return errors.InvalidParameterError(cmd.Major(), "parameters",
				"expected at least "+strconv.Itoa(required)+" values")
		}
		if n > len(defaults) {
			return errors.InvalidParameterError(cmd.Major(), "parameters",
				"at most "+strconv.Itoa(len(defaults))+" values")
		}
		params := make([]string, len(defaults))
		for i, def := range defaults {
			params[i] = formatNumber(cmd.Number(i, def))
		}
		full, err := s.Cycles.Emit(s.Out, name, params)
		if err == nil && !full {
			s.Log.Debug("%s repeated with cached parameters", name)
		}
		return err
	}
}

func cmdSiemensLoadtl(s *session.Session, cmd apt.Command) error {
	n, skip, err := toolRequest(s, cmd)
	if err != nil || skip {
		return err
	}
	if err := beginToolChange(s, n); err != nil {
		return err
	}

	s.Out.Write("T"+strconv.Itoa(n), s.Ctrl.Codes.OffsetWord+"1", s.Ctrl.Codes.ToolChange)
	if rpm := cmd.Number(1, 0); rpm > 0 {
		s.Vars.SetFloat(session.VarSpindleRPM, rpm)
		s.Regs.Set("S", rpm)
		s.Out.Show("S")
	}
	_, err = s.Out.Flush()
	return err
}
