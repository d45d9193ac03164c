// Machine command handlers
//
// Spindle, coolant, tool change, compensation, dwell, homing and the
// text commands shared by all dialects.
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"fmt"
	"strconv"

	"aptpost/pkg/apt"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

// Spindle states stored under session.VarSpindleDir.
const (
	spindleCW     = "CLW"
	spindleCCW    = "CCLW"
	spindleOrient = "ORIENT"
	spindleOff    = "OFF"
)

func registerMachine(set *Set) {
	set.RegisterFunc("SPINDL", cmdSpindl, "Spindle speed and direction (RPM,n CLW|CCLW|ORIENT|OFF|ON)")
	set.RegisterFunc("COOLNT", cmdCoolnt, "Coolant (ON|FLOOD|MIST|THRU|OFF)")
	set.RegisterFunc("LOADTL", cmdLoadtl, "Tool change (tool[, rpm])")
	set.RegisterFunc("CUTCOM", cmdCutcom, "Cutter compensation (LEFT|RIGHT|OFF[, offset])")
	set.RegisterFunc("DELAY", cmdDelay, "Dwell in seconds, or REV,n revolutions")
	set.RegisterFunc("GOHOME", cmdGohome, "Return to machine home (X, Y, Z; all when none)")
	set.RegisterFunc("RTCP", cmdRTCP, "Tool center point control (ON|OFF)")
	set.RegisterFunc("CALLSUB", cmdCallsub, "Call subprogram n")
	set.RegisterFunc("ENDSUB", cmdEndsub, "End the current subprogram")
	set.RegisterFunc("TOOL_LIST", cmdToolList, "List the tools loaded so far")
}

// spindleRequest reads the speed and state of a SPINDL command. The state
// is empty when the command only changes the speed.
func spindleRequest(s *session.Session, cmd apt.Command) (float64, string) {
	rpm := cmd.NumberAfter("RPM", cmd.Number(0, -1))
	state := ""
	for _, w := range cmd.Minors() {
		switch w {
		case "CLW", "CW", "CLOCKWISE":
			state = spindleCW
		case "CCLW", "CCW", "COUNTERCLOCKWISE":
			state = spindleCCW
		case "ORIENT":
			state = spindleOrient
		case "OFF":
			state = spindleOff
		case "ON":
			if state == "" {
				state = s.Vars.String(session.VarSpindleDir, spindleCW)
			}
		}
	}
	if state == "" && rpm > 0 {
		state = s.Vars.String(session.VarSpindleDir, spindleCW)
	}
	return rpm, state
}

func spindleCode(s *session.Session, state string) string {
	switch state {
	case spindleCW:
		return s.Ctrl.Codes.SpindleCW
	case spindleCCW:
		return s.Ctrl.Codes.SpindleCCW
	case spindleOrient:
		return s.Ctrl.Codes.SpindleOrient
	}
	return s.Ctrl.Codes.SpindleOff
}

func cmdSpindl(s *session.Session, cmd apt.Command) error {
	rpm, state := spindleRequest(s, cmd)
	if rpm >= 0 {
		s.Vars.SetFloat(session.VarSpindleRPM, rpm)
	}
	if state == "" {
		return errors.InvalidParameterError(cmd.Major(), "state", "expected RPM, CLW, CCLW, ORIENT, ON or OFF")
	}

	s.Out.Write(spindleCode(s, state))
	if state == spindleCW || state == spindleCCW {
		s.Vars.SetString(session.VarSpindleDir, state)
		if rpm := s.Vars.Float(session.VarSpindleRPM, 0); rpm > 0 {
			s.Regs.Set("S", rpm)
			s.Regs.Force("S")
			s.Out.Show("S")
		}
	}
	_, err := s.Out.Flush()
	return err
}

func coolantCode(s *session.Session, cmd apt.Command) (string, error) {
	c := s.Ctrl.Codes
	switch {
	case cmd.HasMinor("OFF"):
		return c.CoolantOff, nil
	case cmd.HasMinor("MIST"):
		return c.CoolantMist, nil
	case cmd.HasMinor("THRU", "THROUGH"):
		if c.CoolantThru == "" {
			return "", errors.InvalidParameterError(cmd.Major(), "mode",
				"through-spindle coolant not available on "+s.Ctrl.Name)
		}
		return c.CoolantThru, nil
	}
	return c.CoolantFlood, nil
}

// cmdCoolnt writes the coolant code only when it changes.
func cmdCoolnt(s *session.Session, cmd apt.Command) error {
	code, err := coolantCode(s, cmd)
	if err != nil {
		return err
	}
	s.Vars.SetString(session.VarCoolant, code)
	if !s.State.Changed(stateCoolant, code) {
		return nil
	}
	return s.Out.Line(code)
}

func cmdLoadtl(s *session.Session, cmd apt.Command) error {
	n, skip, err := toolRequest(s, cmd)
	if err != nil || skip {
		return err
	}
	if err := beginToolChange(s, n); err != nil {
		return err
	}

	s.Out.Write("T"+strconv.Itoa(n), s.Ctrl.Codes.ToolChange)
	if rpm := cmd.Number(1, 0); rpm > 0 {
		s.Vars.SetFloat(session.VarSpindleRPM, rpm)
		s.Regs.Set("S", rpm)
		s.Out.Show("S")
	}
	if _, err := s.Out.Flush(); err != nil {
		return err
	}
	if w := s.Ctrl.Codes.ToolLengthWord; w != "" {
		return s.Out.Line("G43 " + w + strconv.Itoa(n))
	}
	return nil
}

// toolRequest reads the tool number of LOADTL. skip is set when the tool
// is already loaded and the dialect ignores such changes.
func toolRequest(s *session.Session, cmd apt.Command) (n int, skip bool, err error) {
	n = int(cmd.Number(0, -1))
	if n < 0 {
		return 0, false, errors.InvalidParameterError(cmd.Major(), "tool", "missing tool number")
	}
	if s.Ctrl.ToolChangeIgnoreSame && s.Vars.Has(session.VarTool) && s.Vars.Int(session.VarTool, -1) == n {
		s.Log.Debug("tool %d already loaded", n)
		return n, true, nil
	}
	return n, false, nil
}

// beginToolChange records tool n and writes the tool comment. Anything
// cached about the previous tool is dropped.
func beginToolChange(s *session.Session, n int) error {
	s.Vars.SetInt(session.VarTool, n)
	s.UseTool(n)
	s.Metrics.ToolChanges.Inc(nil)
	s.Cycles.Reset()
	s.State.Forget(stateMotion)

	if !s.Ctrl.ToolComment {
		return nil
	}
	if t, ok := s.Tools.Lookup(n); ok {
		return s.Out.Comment(t.Describe())
	}
	return nil
}

func cmdCutcom(s *session.Session, cmd apt.Command) error {
	c := s.Ctrl.Codes
	var code, side string
	switch {
	case cmd.HasMinor("OFF"):
		code, side = c.CutcomOff, "OFF"
	case cmd.HasMinor("LEFT"):
		code, side = c.CutcomLeft, "LEFT"
	case cmd.HasMinor("RIGHT"):
		code, side = c.CutcomRight, "RIGHT"
	default:
		return errors.InvalidParameterError(cmd.Major(), "side", "expected LEFT, RIGHT or OFF")
	}
	s.Vars.SetString(session.VarCutcom, side)

	s.Out.Write(code)
	if side != "OFF" && c.OffsetWord != "" {
		d := int(cmd.Number(0, float64(s.Vars.Int(session.VarTool, 1))))
		s.Out.Write(c.OffsetWord + strconv.Itoa(d))
	}
	_, err := s.Out.Flush()
	return err
}

// dwellSeconds converts DELAY/t and DELAY/REV,n into seconds.
func dwellSeconds(s *session.Session, cmd apt.Command) (float64, error) {
	v := cmd.Number(0, 0)
	if v <= 0 {
		return 0, errors.InvalidParameterError(cmd.Major(), "time", "dwell must be positive")
	}
	if !cmd.HasMinor("REV") {
		return v, nil
	}
	rpm := s.Vars.Float(session.VarSpindleRPM, 0)
	if rpm <= 0 {
		return 0, errors.InvalidParameterError(cmd.Major(), "REV", "spindle speed unknown")
	}
	return v * 60 / rpm, nil
}

func cmdDelay(s *session.Session, cmd apt.Command) error {
	sec, err := dwellSeconds(s, cmd)
	if err != nil {
		return err
	}
	c := s.Ctrl.Codes
	return s.Out.Line(c.Dwell + " " + c.DwellWord + dwellFormat.Format(sec))
}

// homeAxes returns the axes named by GOHOME, all three when none are.
func homeAxes(cmd apt.Command) []string {
	var axes []string
	for _, a := range []string{"X", "Y", "Z"} {
		if cmd.HasMinor(a) {
			axes = append(axes, a)
		}
	}
	if len(axes) == 0 {
		return []string{"X", "Y", "Z"}
	}
	return axes
}

func cmdGohome(s *session.Session, cmd apt.Command) error {
	code := "G53"
	if s.Ctrl.Codes.HomeMode == "g28" {
		code = "G28"
	}
	s.Out.Write(code)
	for _, a := range homeAxes(cmd) {
		s.Regs.Set(a, 0)
		s.Regs.Force(a)
		s.Out.Show(a)
	}
	_, err := s.Out.Flush()
	return err
}

func cmdRTCP(s *session.Session, cmd apt.Command) error {
	on := !cmd.HasMinor("OFF")
	code := s.Ctrl.Codes.RTCPOff
	if on {
		code = s.Ctrl.Codes.RTCPOn
	}
	s.Vars.SetInt(session.VarRTCP, boolInt(on))
	for _, a := range []string{"X", "Y", "Z"} {
		s.Regs.Force(a)
	}
	return s.Out.Line(code)
}

func cmdCallsub(s *session.Session, cmd apt.Command) error {
	n := int(cmd.Number(0, -1))
	if n < 0 {
		return errors.InvalidParameterError(cmd.Major(), "number", "missing subprogram number")
	}
	level := s.Vars.Int(session.VarSubprogLevel, 0) + 1
	s.Vars.SetInt(session.VarSubprogLevel, level)

	c := s.Ctrl.Codes
	return s.Out.Line(fmt.Sprintf("%s %s%d", c.SubprogCall, c.SubprogWord, n))
}

func cmdEndsub(s *session.Session, cmd apt.Command) error {
	level := s.Vars.Int(session.VarSubprogLevel, 0)
	if level > 0 {
		s.Vars.SetInt(session.VarSubprogLevel, level-1)
	}
	return s.Out.Line(s.Ctrl.Codes.SubprogEnd)
}

func cmdToolList(s *session.Session, cmd apt.Command) error {
	for _, n := range s.UsedTools() {
		text := "T" + strconv.Itoa(n)
		if t, ok := s.Tools.Lookup(n); ok {
			text = t.Describe()
		}
		if err := s.Out.Comment(text); err != nil {
			return err
		}
	}
	return nil
}
