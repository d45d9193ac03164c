// USE1SET and FORCE handlers
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"fmt"
	"strings"

	"aptpost/pkg/apt"
	"aptpost/pkg/arc"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

// use1Registers lists the registers each USE1SET function controls.
var use1Registers = map[string][]string{
	"LINEAR":   {"X", "Y", "Z", "F"},
	"POSITION": {"X", "Y", "Z"},
	"CLW":      {"S"},
	"CCLW":     {"S"},
	"CYCLE":    {"X", "Y", "Z", "R", "F"},
}

var use1Aliases = map[string]string{
	"LINEAR": "LINEAR", "G1": "LINEAR", "G01": "LINEAR",
	"POSITION": "POSITION", "RAPID": "POSITION", "G0": "POSITION", "G00": "POSITION",
	"CLW": "CLW", "CW": "CLW", "M3": "CLW",
	"CCLW": "CCLW", "CCW": "CCLW", "M4": "CCLW",
	"CYCLE": "CYCLE", "DRILL": "CYCLE",
}

const (
	use1Modal    = "MODAL"
	use1NonModal = "NONMODAL"
)

func use1Key(function string) string { return "USE1_" + function }

// nonModal reports whether USE1SET switched function to output on every
// block.
func nonModal(s *session.Session, function string) bool {
	return s.Vars.String(use1Key(function), use1Modal) == use1NonModal
}

// cmdUse1set switches the modality of the registers behind motion,
// spindle and cycle functions:
//
//	USE1SET/LINEAR,POSITION      modal output (default)
//	USE1SET/OFF,LINEAR           every block repeats X, Y, Z and F
func cmdUse1set(s *session.Session, cmd apt.Command) error {
	mode := use1Modal
	var functions []string
	for _, w := range cmd.Minors() {
		switch w {
		case "ON", "MODAL":
			mode = use1Modal
		case "OFF", "NONMODAL":
			mode = use1NonModal
		default:
			if f, ok := use1Aliases[w]; ok {
				functions = append(functions, f)
			}
		}
	}
	if len(functions) == 0 {
		return errors.InvalidParameterError(cmd.Major(), "function", "expected LINEAR, POSITION, CLW, CCLW or CYCLE")
	}

	for _, f := range functions {
		s.Vars.SetString(use1Key(f), mode)
		for _, name := range use1Registers[f] {
			s.Regs.SetModal(name, mode == use1Modal)
		}
	}
	s.Log.Debug("%s set to %s", strings.Join(functions, ","), strings.ToLower(mode))
	return nil
}

// cmdForce fixes the direction a rotary axis takes when a tool axis
// vector is turned into angles:
//
//	FORCE/MINUS,BAXIS      B stays at or below 0
//	FORCE/PLUS,AAXIS,90    A stays at or above 90
//	FORCE/OFF
//
// Without an axis word the main rotary axis of the working plane is used.
func cmdForce(s *session.Session, cmd apt.Command) error {
	if cmd.HasMinor("OFF") {
		for _, axis := range []string{"A", "B", "C"} {
			s.Vars.Delete(forceDirKey(axis))
			s.Vars.Delete(forceLimitKey(axis))
		}
		s.Vars.Delete(session.VarForceWay)
		return nil
	}

	dir := 0
	axis := s.Vars.String(session.VarMainRotary, "B")
	for _, w := range cmd.Minors() {
		switch w {
		case "MINUS", "NEGATIVE":
			dir = -1
		case "PLUS", "POSITIVE":
			dir = 1
		case "A", "AAXIS":
			axis = "A"
		case "B", "BAXIS":
			axis = "B"
		case "C", "CAXIS":
			axis = "C"
		}
	}
	if dir == 0 {
		return errors.InvalidParameterError(cmd.Major(), "direction", "expected MINUS or PLUS")
	}

	limit := cmd.Number(0, 0)
	s.Vars.SetInt(forceDirKey(axis), dir)
	s.Vars.SetFloat(forceLimitKey(axis), limit)

	op := ">"
	if dir < 0 {
		op = "<"
	}
	way := fmt.Sprintf("MACHINE.%s.ABSOLUTE%s%s", axis, op, formatNumber(limit))
	s.Vars.SetString(session.VarForceWay, way)
	s.Log.Debug("rotary direction forced: %s", way)
	return nil
}

func forceDirKey(axis string) string   { return "FORCE_" + axis + "_DIR" }
func forceLimitKey(axis string) string { return "FORCE_" + axis + "_LIMIT" }

// forcedAngle moves v by whole turns until it satisfies the FORCE
// condition of axis.
func forcedAngle(s *session.Session, axis string, v float64) float64 {
	limit := s.Vars.Float(forceLimitKey(axis), 0)
	switch s.Vars.Int(forceDirKey(axis), 0) {
	case -1:
		for v > limit {
			v -= 360
		}
	case 1:
		for v < limit {
			v += 360
		}
	}
	return v
}

// toolAxisAngles converts the tool axis vector of a GOTO into A and B.
func toolAxisAngles(s *session.Session, cmd apt.Command) (a, b float64) {
	a, b = arc.IJKToABC(cmd.Number(3, 0), cmd.Number(4, 0), cmd.Number(5, 1))
	return forcedAngle(s, "A", a), forcedAngle(s, "B", b)
}
