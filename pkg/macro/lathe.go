// Fanuc lathe handlers
//
// Turning programs move in X (diameter) and Z only. Tools are indexed on
// a turret and the chuck and tailstock are switched with M codes.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"fmt"

	"aptpost/pkg/apt"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

func lathe(set *Set) {
	set.RegisterFunc("INIT", cmdLatheInit, "Start the program with the chuck clamped and the tailstock back")
	set.RegisterFunc("GOTO", cmdLatheGoto, "Linear move in X and Z (x, z or x, y, z)")
	set.Register("RAPID", Composite(cmdLatheRapid), "Make the next move rapid, or move rapid at once")
	set.RegisterFunc("TURRET", cmdTurret, "Index the turret (tool[, offset])")
	set.RegisterFunc("LOADTL", cmdTurret, "Alias of TURRET")
	set.RegisterFunc("CHUCK", cmdChuck, "Chuck (CLAMP|UNCLAMP|HIGH|LOW)")
	set.RegisterFunc("TAILSTK", cmdTailstock, "Tailstock (FORWARD|BACK|CLAMP|UNCLAMP)")
	set.RegisterFunc("GOHOME", cmdLatheHome, "Return to the reference point (G28 U0 W0)")
}

// switchState is one position of a chuck or tailstock.
type switchState struct {
	code    string
	comment string
}

var chuckStates = map[string]switchState{
	"CLAMP":   {"M10", "CHUCK CLAMP"},
	"UNCLAMP": {"M11", "CHUCK UNCLAMP"},
	"HIGH":    {"M70", "CHUCK HIGH PRESSURE"},
	"LOW":     {"M71", "CHUCK LOW PRESSURE"},
}

var chuckWords = map[string]string{
	"CLAMP": "CLAMP", "ON": "CLAMP", "CLOSE": "CLAMP",
	"UNCLAMP": "UNCLAMP", "OFF": "UNCLAMP", "OPEN": "UNCLAMP",
	"HIGH": "HIGH", "FORWARD": "HIGH", "HIGH_PRESSURE": "HIGH",
	"LOW": "LOW", "REVERSE": "LOW", "LOW_PRESSURE": "LOW",
}

var tailstockStates = map[string]switchState{
	"FORWARD": {"M20", "TAILSTOCK FORWARD"},
	"BACK":    {"M21", "TAILSTOCK BACK"},
	"CLAMP":   {"M72", "TAILSTOCK CLAMP"},
	"UNCLAMP": {"M73", "TAILSTOCK UNCLAMP"},
}

var tailstockWords = map[string]string{
	"FORWARD": "FORWARD", "ON": "FORWARD", "EXTEND": "FORWARD", "ADVANCE": "FORWARD",
	"BACK": "BACK", "OFF": "BACK", "RETRACT": "BACK", "RETURN": "BACK",
	"CLAMP": "CLAMP", "UNCLAMP": "UNCLAMP",
}

func cmdLatheInit(s *session.Session, cmd apt.Command) error {
	if s.Initialized() {
		return nil
	}
	if err := cmdInit(s, cmd); err != nil {
		return err
	}
	s.Vars.SetString(session.VarChuck, "CLAMP")
	s.Vars.SetString(session.VarTailstock, "BACK")
	return nil
}

// cmdLatheGoto takes GOTO/x,z; with three values the Y of the CL file is
// ignored.
func cmdLatheGoto(s *session.Session, cmd apt.Command) error {
	n := cmd.NumberCount()
	if n == 0 {
		return errors.InvalidParameterError(cmd.Major(), "coordinates", "expected x, z")
	}
	zIndex := 1
	if n >= 3 {
		zIndex = 2
	}
	code, rapid := motionCode(s)

	s.Regs.Set("X", cmd.Number(0, 0))
	s.Regs.Set("Z", cmd.Number(zIndex, s.Position().Z))
	s.Out.Show("X", "Z")
	if !rapid {
		s.Out.Show("F")
	}

	if !s.Out.Pending() {
		s.Out.Discard()
		return nil
	}
	if s.State.Changed(stateMotion, code) {
		s.Out.Write(code)
	}
	if _, err := s.Out.Flush(); err != nil {
		return err
	}
	rapidDone(s, rapid)
	return nil
}

func cmdLatheRapid(set *Set, s *session.Session, cmd apt.Command) error {
	s.Vars.SetString(session.VarMotion, session.MotionRapid)
	if cmd.NumberCount() == 0 {
		return nil
	}
	return set.Run(s, "GOTO", nil, cmd.Numbers()...)
}

// cmdTurret writes T followed by the two-digit turret station and
// offset, e.g. TURRET/3,2 gives T0302. The offset defaults to the tool.
func cmdTurret(s *session.Session, cmd apt.Command) error {
	n, skip, err := toolRequest(s, cmd)
	if err != nil || skip {
		return err
	}
	offset := int(cmd.Number(1, float64(n)))
	if err := beginToolChange(s, n); err != nil {
		return err
	}
	s.Vars.SetInt(session.VarOffset, offset)

	if err := s.Out.Line(fmt.Sprintf("%s%02d%02d", s.Ctrl.Codes.ToolChange, n, offset)); err != nil {
		return err
	}
	return s.Out.Comment(fmt.Sprintf("TURRET: T%d OFFSET: %d", n, offset))
}

// switchCommand sets a chuck or tailstock state from the minor words.
// Without a known word the stored state is written again.
func switchCommand(s *session.Session, cmd apt.Command, key, def string,
	words map[string]string, states map[string]switchState) error {
	state := s.Vars.String(key, def)
	for _, w := range cmd.Minors() {
		st, ok := words[w]
		if !ok {
			return errors.InvalidParameterError(cmd.Major(), "state", "unknown word "+w)
		}
		state = st
	}
	s.Vars.SetString(key, state)

	st := states[state]
	if err := s.Out.Line(st.code); err != nil {
		return err
	}
	return s.Out.Comment(st.comment)
}

func cmdChuck(s *session.Session, cmd apt.Command) error {
	return switchCommand(s, cmd, session.VarChuck, "CLAMP", chuckWords, chuckStates)
}

func cmdTailstock(s *session.Session, cmd apt.Command) error {
	return switchCommand(s, cmd, session.VarTailstock, "BACK", tailstockWords, tailstockStates)
}

// cmdLatheHome returns through the reference point with incremental U
// and W words, which needs no G91.
func cmdLatheHome(s *session.Session, cmd apt.Command) error {
	s.Out.Write("G28")
	axes := homeAxes(cmd)
	if len(axes) == 3 {
		axes = []string{"X", "Z"}
	}
	for _, a := range axes {
		switch a {
		case "X":
			s.Out.Write("U0")
		case "Z":
			s.Out.Write("W0")
		default:
			continue
		}
		s.Regs.Force(a)
	}
	s.State.Forget(stateMotion)
	_, err := s.Out.Flush()
	return err
}
