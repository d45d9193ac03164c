// Per-program session state
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package session bundles the per-program state every handler works on:
// registers, block writer, global variables, controller settings and
// collaborators such as the tool library and run metrics.
package session

import (
	"fmt"
	"io"
	"strings"

	"aptpost/pkg/arc"
	"aptpost/pkg/config"
	"aptpost/pkg/log"
	"aptpost/pkg/metrics"
	"aptpost/pkg/nc"
	"aptpost/pkg/tools"
)

// Session is the state of one post-processing run. It is not safe for
// concurrent use; independent programs need their own sessions.
type Session struct {
	Ctrl    *config.Controller
	Regs    *nc.Registers
	Out     *nc.Writer
	Vars    *Vars
	State   *StateCache
	Cycles  *CycleCache
	Tools   *tools.Library
	Metrics *metrics.PostMetrics
	Log     *log.Logger

	initialized bool
	usedTools   []int
	warnings    int
}

// Option configures a Session.
type Option func(*Session)

// WithTools attaches a tool library.
func WithTools(lib *tools.Library) Option {
	return func(s *Session) { s.Tools = lib }
}

// WithMetrics attaches run metrics.
func WithMetrics(pm *metrics.PostMetrics) Option {
	return func(s *Session) { s.Metrics = pm }
}

// WithLogger replaces the session logger.
func WithLogger(l *log.Logger) Option {
	return func(s *Session) { s.Log = l }
}

// New creates a session writing blocks to out. A nil ctrl uses the
// built-in defaults.
func New(ctrl *config.Controller, out io.Writer, opts ...Option) *Session {
	if ctrl == nil {
		ctrl, _ = config.NewController(config.New())
	}
	regs := nc.NewRegisters(ctrl.Formats)
	s := &Session{
		Ctrl:   ctrl,
		Regs:   regs,
		Out:    nc.NewWriter(out, regs, ctrl.Output),
		Vars:   NewVars(),
		State:  NewStateCache(),
		Cycles: NewCycleCache(ctrl.CycleCache),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.Metrics == nil {
		s.Metrics = metrics.NewPostMetrics()
	}
	if s.Log == nil {
		s.Log = log.GetLogger("post")
	}
	return s
}

// Initialized reports whether INIT has run.
func (s *Session) Initialized() bool { return s.initialized }

// MarkInitialized records that INIT has run.
func (s *Session) MarkInitialized() { s.initialized = true }

// Plane returns the active working plane.
func (s *Session) Plane() arc.Plane {
	p := arc.Plane(s.Vars.Int(VarPlane, s.Ctrl.DefaultPlane))
	if !p.Valid() {
		return arc.PlaneXY
	}
	return p
}

// Position returns the last commanded X, Y, Z.
func (s *Session) Position() arc.Point {
	return arc.Point{X: s.Regs.Get("X"), Y: s.Regs.Get("Y"), Z: s.Regs.Get("Z")}
}

// UseTool records n in the order tools were first loaded.
func (s *Session) UseTool(n int) {
	for _, t := range s.usedTools {
		if t == n {
			return
		}
	}
	s.usedTools = append(s.usedTools, n)
}

// UsedTools returns tool numbers in load order.
func (s *Session) UsedTools() []int {
	return append([]int(nil), s.usedTools...)
}

// Warn logs a recoverable problem and leaves a comment in the output.
func (s *Session) Warn(format string, args ...interface{}) error {
	msg := fmt.Sprintf(format, args...)
	s.warnings++
	s.Metrics.Warnings.Inc(nil)
	s.Log.Warn("%s", msg)
	return s.Out.Comment("WARNING: " + msg)
}

// Warnings returns the number of Warn calls.
func (s *Session) Warnings() int { return s.warnings }

// Expand substitutes {part} in header and footer text.
func (s *Session) Expand(text string) string {
	return strings.ReplaceAll(text, "{part}", s.Vars.String(VarPartName, "PART"))
}
