// Generic ISO command handlers
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
	"aptpost/pkg/nc"
	"aptpost/pkg/session"
)

// state cache keys
const (
	stateMotion  = "motion"
	stateCoolant = "coolant"
)

// Base returns the handler set of the generic ISO dialect. Every dialect
// set starts from it.
func Base() *Set {
	set := NewSet("generic")

	set.RegisterFunc("INIT", cmdInit, "Start the program: header, part name and safety blocks")
	set.RegisterFunc("PARTNO", cmdPartno, "Set the part name")
	set.RegisterFunc("PPRINT", cmdPprint, "Write an operator comment")
	set.RegisterFunc("REMARK", cmdPprint, "Write an operator comment")
	set.RegisterFunc("INSERT", cmdInsert, "Copy text into the output verbatim")
	set.RegisterFunc("FROM", cmdFrom, "Set the start position without motion")
	set.RegisterFunc("GOTO", cmdGoto, "Linear move, optionally with a tool axis vector")
	set.Register("RAPID", Composite(cmdRapid), "Make the next move rapid, or move rapid at once")
	set.RegisterFunc("FEDRAT", cmdFedrat, "Set the modal feed rate")
	set.RegisterFunc("CIRCLE", cmdCircle, "Circular move with center offsets or radius")
	set.RegisterFunc("ARC", cmdCircle, "Alias of CIRCLE")
	set.RegisterFunc("PLANE", cmdPlane, "Select the working plane (XY, ZX, YZ)")
	set.RegisterFunc("USE1SET", cmdUse1set, "Modal or non-modal output ([OFF,]LINEAR|POSITION|CLW|CCLW|CYCLE)")
	set.RegisterFunc("FORCE", cmdForce, "Rotary axis direction (MINUS|PLUS[, AAXIS|BAXIS|CAXIS][, limit] or OFF)")

	registerMachine(set)

	set.Register("FINI", Composite(cmdFini), "End the program: retract, stop and footer")
	set.Register("END", Composite(cmdFini), "Alias of FINI")
	return set
}

func cmdInit(s *session.Session, cmd apt.Command) error {
	if s.Initialized() {
		return nil
	}
	s.MarkInitialized()

	s.Vars.SetInt(session.VarPlane, s.Ctrl.DefaultPlane)
	s.Vars.SetString(session.VarMotion, session.MotionLinear)
	s.Vars.SetInt(session.VarSubprogLevel, 0)
	s.Vars.SetInt(session.VarCycleCache, boolInt(s.Ctrl.CycleCache))
	s.Cycles.SetEnabled(s.Ctrl.CycleCache)
	for _, name := range []string{"X", "Y", "Z"} {
		s.Regs.Force(name)
	}

	for _, line := range s.Ctrl.Program.Header {
		if err := s.Out.Line(s.Expand(line)); err != nil {
			return err
		}
	}
	if part := s.Vars.String(session.VarPartName, ""); part != "" {
		if err := s.Out.Comment(part); err != nil {
			return err
		}
	}
	for _, line := range s.Ctrl.Program.Safety {
		if err := s.Out.Line(line); err != nil {
			return err
		}
	}
	s.Log.Debug("program started for %s", s.Ctrl.Name)
	return nil
}

// cmdPartno stores the part name. Before INIT the name ends up in the
// header; afterwards it is written as a comment.
func cmdPartno(s *session.Session, cmd apt.Command) error {
	name := strings.TrimSpace(cmd.Text())
	if name == "" {
		return errors.InvalidParameterError(cmd.Major(), "name", "empty part name")
	}
	s.Vars.SetString(session.VarPartName, name)
	if s.Initialized() {
		return s.Out.Comment(name)
	}
	return nil
}

func cmdPprint(s *session.Session, cmd apt.Command) error {
	text := strings.TrimSpace(cmd.Text())
	if text == "" {
		return nil
	}
	return s.Out.Comment(text)
}

func cmdInsert(s *session.Session, cmd apt.Command) error {
	return s.Out.Line(cmd.Text())
}

func cmdFrom(s *session.Session, cmd apt.Command) error {
	if cmd.NumberCount() < 3 {
		return errors.InvalidParameterError(cmd.Major(), "coordinates", "expected x, y, z")
	}
	for i, name := range []string{"X", "Y", "Z"} {
		s.Regs.Preset(name, cmd.Number(i, 0))
		s.Regs.Force(name)
	}
	return nil
}

// motionCode returns the motion word of the next straight move.
func motionCode(s *session.Session) (string, bool) {
	if s.Vars.String(session.VarMotion, session.MotionLinear) == session.MotionRapid {
		return s.Ctrl.Codes.Rapid, true
	}
	return s.Ctrl.Codes.Linear, false
}

// rapidDone clears a pending rapid request once a move was written.
func rapidDone(s *session.Session, rapid bool) {
	if rapid {
		s.Vars.SetString(session.VarMotion, session.MotionLinear)
	}
}

func cmdGoto(s *session.Session, cmd apt.Command) error {
	n := cmd.NumberCount()
	if n < 3 {
		return errors.InvalidParameterError(cmd.Major(), "coordinates", "expected x, y, z")
	}
	code, rapid := motionCode(s)

	s.Regs.Set("X", cmd.Number(0, 0))
	s.Regs.Set("Y", cmd.Number(1, 0))
	s.Regs.Set("Z", cmd.Number(2, 0))
	s.Out.Show("X", "Y", "Z")
	if n >= 6 {
		a, b := toolAxisAngles(s, cmd)
		s.Regs.Set("A", a)
		s.Regs.Set("B", b)
		s.Out.Show("A", "B")
	}
	function := "LINEAR"
	if rapid {
		function = "POSITION"
	} else {
		if nonModal(s, function) && s.Vars.Has(session.VarFeed) {
			s.Regs.Force("F")
		}
		s.Out.Show("F")
	}

	if !s.Out.Pending() {
		s.Out.Discard()
		return nil
	}
	if s.State.Changed(stateMotion, code) || nonModal(s, function) {
		s.Out.Write(code)
	}
	if _, err := s.Out.Flush(); err != nil {
		return err
	}
	rapidDone(s, rapid)
	return nil
}

// cmdRapid makes the next move rapid. With coordinates it moves at once;
// axes left out keep the current position.
func cmdRapid(set *Set, s *session.Session, cmd apt.Command) error {
	s.Vars.SetString(session.VarMotion, session.MotionRapid)
	n := cmd.NumberCount()
	if n == 0 {
		return nil
	}
	nums := cmd.Numbers()
	if n < 3 {
		pos := s.Position()
		nums = append(nums, []float64{pos.X, pos.Y, pos.Z}[n:]...)
	}
	return set.Run(s, "GOTO", nil, nums...)
}

// cmdFedrat accepts FEDRAT/250 and FEDRAT/MMPM,250.
func cmdFedrat(s *session.Session, cmd apt.Command) error {
	f := cmd.Number(0, 0)
	if f <= 0 {
		return errors.InvalidParameterError(cmd.Major(), "feed", "feed rate must be positive")
	}
	s.Regs.Set("F", f)
	s.Vars.SetFloat(session.VarFeed, f)
	return nil
}

// planeArg reads the plane from the first minor word or number.
func planeArg(cmd apt.Command) (arc.Plane, bool) {
	if m := cmd.Minors(); len(m) > 0 {
		return arc.ParsePlane(m[0])
	}
	if cmd.NumberCount() > 0 {
		return arc.ParsePlane(strconv.Itoa(int(cmd.Number(0, 0))))
	}
	return 0, false
}

func cmdPlane(s *session.Session, cmd apt.Command) error {
	p, ok := planeArg(cmd)
	if !ok {
		return errors.InvalidParameterError(cmd.Major(), "plane", "expected XY, ZX or YZ")
	}
	s.Vars.SetInt(session.VarPlane, int(p))
	return s.Out.Line(s.Ctrl.Codes.PlaneCode(int(p)))
}

// cmdFini retracts, stops spindle and coolant, then writes the program
// end and footer. It runs once per program.
func cmdFini(set *Set, s *session.Session, cmd apt.Command) error {
	if s.Vars.Has(session.VarFinished) {
		return nil
	}
	s.Vars.SetInt(session.VarFinished, 1)

	pos := s.Position()
	if err := set.Run(s, "RAPID", nil, pos.X, pos.Y, s.Ctrl.Program.RetractZ); err != nil {
		return err
	}
	if err := set.Run(s, "SPINDL", []string{"OFF"}); err != nil {
		return err
	}
	if err := set.Run(s, "COOLNT", []string{"OFF"}); err != nil {
		return err
	}
	if err := s.Out.Line(s.Ctrl.Codes.ProgramEnd); err != nil {
		return err
	}
	for _, line := range s.Ctrl.Program.Footer {
		if err := s.Out.Line(s.Expand(line)); err != nil {
			return err
		}
	}
	s.Log.Debug("program finished after %d blocks", s.Out.Lines())
	return nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// dwellFormat writes dwell times as 2.0 or 1.5.
var dwellFormat = nc.Format{Decimals: 3, Trailing: nc.TrailingOne}

// formatNumber renders a cycle parameter in its shortest form.
func formatNumber(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
