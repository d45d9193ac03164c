// Heidenhain plain language handlers
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"strconv"
	"strings"

	"aptpost/pkg/apt"
	"aptpost/pkg/arc"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

// Heidenhain plain language writes every block as a statement: the
// register model still decides which words appear, but the words are
// assembled here instead of by the block writer.
func heidenhain(set *Set) {
	set.RegisterFunc("GOTO", cmdHeidenhainGoto, "Straight line L, FMAX when rapid")
	set.RegisterFunc("CIRCLE", cmdHeidenhainCircle, "Circle CC + C, or CR for radius output")
	set.RegisterFunc("ARC", cmdHeidenhainCircle, "Alias of CIRCLE")
	set.RegisterFunc("LOADTL", cmdHeidenhainLoadtl, "TOOL CALL n axis S")
	set.RegisterFunc("SPINDL", cmdHeidenhainSpindl, "Spindle speed via TOOL CALL, direction M3/M4/M5")
	set.RegisterFunc("CUTCOM", cmdHeidenhainCutcom, "Radius compensation RL/RR/R0 on the next move")
	set.RegisterFunc("PLANE", cmdHeidenhainPlane, "Select the working plane, used by TOOL CALL")
	set.RegisterFunc("DELAY", cmdHeidenhainDelay, "Dwell with cycle 9")
	set.RegisterFunc("GOHOME", cmdHeidenhainHome, "Move to machine zero with M91")
}

// takeWords returns the dirty registers among names as words and marks
// them clean.
func takeWords(s *session.Session, names ...string) []string {
	var words []string
	for _, name := range names {
		if !s.Regs.IsDirty(name) {
			continue
		}
		words = append(words, s.Regs.Register(name).Word())
		s.Regs.Clean(name)
	}
	return words
}

// compWords returns RL, RR or R0 when the radius compensation changed
// since the last move.
func compWords(s *session.Session) []string {
	word := "R0"
	switch s.Vars.String(session.VarCutcom, "OFF") {
	case "LEFT":
		word = "RL"
	case "RIGHT":
		word = "RR"
	}
	if !s.State.Changed("cutcom", word) {
		return nil
	}
	return []string{word}
}

func cmdHeidenhainGoto(s *session.Session, cmd apt.Command) error {
	n := cmd.NumberCount()
	if n < 3 {
		return errors.InvalidParameterError(cmd.Major(), "coordinates", "expected x, y, z")
	}
	_, rapid := motionCode(s)

	s.Regs.Set("X", cmd.Number(0, 0))
	s.Regs.Set("Y", cmd.Number(1, 0))
	s.Regs.Set("Z", cmd.Number(2, 0))
	if n >= 6 {
		a, b := toolAxisAngles(s, cmd)
		s.Regs.Set("A", a)
		s.Regs.Set("B", b)
	}
	words := takeWords(s, "X", "Y", "Z", "A", "B")
	if len(words) == 0 {
		return nil
	}

	line := append([]string{s.Ctrl.Codes.Linear}, words...)
	line = append(line, compWords(s)...)
	if rapid {
		line = append(line, s.Ctrl.Codes.Rapid)
	} else {
		line = append(line, takeWords(s, "F")...)
	}
	if err := s.Out.Line(strings.Join(line, " ")); err != nil {
		return err
	}
	rapidDone(s, rapid)
	return nil
}

// cmdHeidenhainCircle writes the center as CC followed by C with the end
// point, or CR with the radius when radius output was chosen.
func cmdHeidenhainCircle(s *session.Session, cmd apt.Command) error {
	a, err := resolveArc(s, cmd)
	if err != nil {
		return err
	}
	axes := arc.PlaneAxes(a.Plane)

	head := "C"
	if a.Output == arc.Radius {
		head = "CR"
	} else {
		cc := []string{"CC"}
		for _, name := range axes.Primary {
			f := s.Regs.Register(name).Format()
			cc = append(cc, name+f.Format(arc.Component(a.Center, name)))
		}
		if err := s.Out.Line(strings.Join(cc, " ")); err != nil {
			return err
		}
	}

	for _, name := range []string{"X", "Y", "Z"} {
		s.Regs.Set(name, arc.Component(a.End, name))
	}
	for _, name := range axes.Primary {
		s.Regs.Force(name)
	}
	line := append([]string{head}, takeWords(s, axes.Primary[0], axes.Primary[1], axes.Third)...)
	if a.Output == arc.Radius {
		s.Regs.Set("R", a.Radius)
		line = append(line, "R"+s.Regs.Register("R").Format().Format(a.Radius))
		s.Regs.Clean("R")
	}
	line = append(line, directionCode(s, a.Direction))
	line = append(line, compWords(s)...)
	line = append(line, takeWords(s, "F")...)
	return s.Out.Line(strings.Join(line, " "))
}

// toolAxis is the spindle axis word of TOOL CALL for the active plane.
func toolAxis(s *session.Session) string {
	return arc.PlaneAxes(s.Plane()).Third
}

func speedWord(s *session.Session, rpm float64) string {
	s.Regs.Set("S", rpm)
	s.Regs.Clean("S")
	return s.Regs.Register("S").Word()
}

func cmdHeidenhainLoadtl(s *session.Session, cmd apt.Command) error {
	n, skip, err := toolRequest(s, cmd)
	if err != nil || skip {
		return err
	}
	if err := beginToolChange(s, n); err != nil {
		return err
	}

	words := []string{s.Ctrl.Codes.ToolChange, strconv.Itoa(n), toolAxis(s)}
	rpm := cmd.Number(1, s.Vars.Float(session.VarSpindleRPM, 0))
	if rpm > 0 {
		s.Vars.SetFloat(session.VarSpindleRPM, rpm)
		words = append(words, speedWord(s, rpm))
	}
	return s.Out.Line(strings.Join(words, " "))
}

// cmdHeidenhainSpindl changes the speed through a TOOL CALL without tool
// number, which is only valid once a tool is loaded.
func cmdHeidenhainSpindl(s *session.Session, cmd apt.Command) error {
	rpm, state := spindleRequest(s, cmd)
	if rpm > 0 {
		changed := s.Vars.Float(session.VarSpindleRPM, 0) != rpm
		s.Vars.SetFloat(session.VarSpindleRPM, rpm)
		if changed && s.Vars.Has(session.VarTool) {
			line := s.Ctrl.Codes.ToolChange + " " + toolAxis(s) + " " + speedWord(s, rpm)
			if err := s.Out.Line(line); err != nil {
				return err
			}
		}
	}
	if state == "" {
		if rpm > 0 {
			return nil
		}
		return errors.InvalidParameterError(cmd.Major(), "state", "expected RPM, CLW, CCLW, ORIENT, ON or OFF")
	}
	if state == spindleCW || state == spindleCCW {
		s.Vars.SetString(session.VarSpindleDir, state)
	}
	return s.Out.Line(spindleCode(s, state))
}

func cmdHeidenhainCutcom(s *session.Session, cmd apt.Command) error {
	switch {
	case cmd.HasMinor("OFF"):
		s.Vars.SetString(session.VarCutcom, "OFF")
	case cmd.HasMinor("LEFT"):
		s.Vars.SetString(session.VarCutcom, "LEFT")
	case cmd.HasMinor("RIGHT"):
		s.Vars.SetString(session.VarCutcom, "RIGHT")
	default:
		return errors.InvalidParameterError(cmd.Major(), "side", "expected LEFT, RIGHT or OFF")
	}
	return nil
}

func cmdHeidenhainPlane(s *session.Session, cmd apt.Command) error {
	p, ok := planeArg(cmd)
	if !ok {
		return errors.InvalidParameterError(cmd.Major(), "plane", "expected XY, ZX or YZ")
	}
	s.Vars.SetInt(session.VarPlane, int(p))
	return nil
}

func cmdHeidenhainDelay(s *session.Session, cmd apt.Command) error {
	sec, err := dwellSeconds(s, cmd)
	if err != nil {
		return err
	}
	c := s.Ctrl.Codes
	if err := s.Out.Line(c.Dwell); err != nil {
		return err
	}
	return s.Out.Line(c.DwellWord + " " + dwellFormat.Format(sec))
}

func cmdHeidenhainHome(s *session.Session, cmd apt.Command) error {
	for _, a := range homeAxes(cmd) {
		s.Regs.Set(a, 0)
		s.Regs.Force(a)
	}
	words := takeWords(s, homeAxes(cmd)...)
	line := append([]string{s.Ctrl.Codes.Linear}, words...)
	line = append(line, compWords(s)...)
	line = append(line, s.Ctrl.Codes.Rapid, "M91")
	return s.Out.Line(strings.Join(line, " "))
}
