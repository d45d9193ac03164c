// Dialect handler sets
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"fmt"
	"strings"

	"aptpost/pkg/apt"
	"aptpost/pkg/config"
	"aptpost/pkg/session"
)

// overlays register the handlers a dialect replaces or adds on top of
// Base.
var overlays = map[string]func(*Set){
	"generic":     func(*Set) {},
	"siemens":     siemens,
	"fanuc":       fanuc,
	"fanuc_lathe": func(set *Set) { fanuc(set); lathe(set) },
	"haas":        fanuc,
	"heidenhain":  heidenhain,
}

// ForDialect returns the handler set of a built-in dialect.
func ForDialect(name string) (*Set, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		name = "generic"
	}
	overlay, ok := overlays[name]
	if !ok {
		return nil, fmt.Errorf("macro: no handler set for dialect %q (known: %s)",
			name, strings.Join(config.Dialects(), ", "))
	}
	set := Base().Clone(name)
	overlay(set)
	return set, nil
}

// fanuc covers Fanuc and Haas. Both return home incrementally through the
// reference point.
func fanuc(set *Set) {
	set.RegisterFunc("GOHOME", cmdFanucHome, "Return to the reference point (G91 G28)")
}

func cmdFanucHome(s *session.Session, cmd apt.Command) error {
	s.Out.Write("G91", "G28")
	for _, a := range homeAxes(cmd) {
		s.Out.Write(a + "0")
	}
	if _, err := s.Out.Flush(); err != nil {
		return err
	}
	for _, a := range homeAxes(cmd) {
		s.Regs.Set(a, 0)
		s.Regs.Force(a)
	}
	s.State.Forget(stateMotion)
	return s.Out.Line("G90")
}
