// APT command dispatch
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package macro routes APT commands to per-command handlers and provides
// the handler sets of the supported controller dialects.
package macro

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"aptpost/pkg/apt"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

// Handler translates one APT command into output blocks.
type Handler interface {
	Handle(s *session.Session, cmd apt.Command) error
}

// HandlerFunc adapts a plain function to Handler.
type HandlerFunc func(s *session.Session, cmd apt.Command) error

// Handle calls f(s, cmd).
func (f HandlerFunc) Handle(s *session.Session, cmd apt.Command) error {
	return f(s, cmd)
}

// Composite is a handler built from other commands. When dispatched it
// receives the set it runs in, so dialect overrides of the commands it
// issues take effect.
type Composite func(set *Set, s *session.Session, cmd apt.Command) error

// Handle runs c against the generic handler set.
func (c Composite) Handle(s *session.Session, cmd apt.Command) error {
	return c(Base(), s, cmd)
}

// Set maps major words to handlers.
type Set struct {
	name string

	mu       sync.RWMutex
	handlers map[string]Handler
	help     map[string]string
	order    []string // sorted, for HELP style listings
}

// NewSet creates an empty handler set.
func NewSet(name string) *Set {
	return &Set{
		name:     name,
		handlers: make(map[string]Handler),
		help:     make(map[string]string),
	}
}

// Name returns the dialect name the set was built for.
func (set *Set) Name() string { return set.name }

// Register adds or replaces the handler of a major word.
func (set *Set) Register(name string, h Handler, help string) {
	set.mu.Lock()
	defer set.mu.Unlock()

	name = strings.ToUpper(name)
	if _, exists := set.handlers[name]; !exists {
		set.order = append(set.order, name)
		sort.Strings(set.order)
	}
	set.handlers[name] = h
	set.help[name] = help
}

// RegisterFunc is Register for plain functions.
func (set *Set) RegisterFunc(name string, fn func(*session.Session, apt.Command) error, help string) {
	set.Register(name, HandlerFunc(fn), help)
}

// Unregister removes a handler.
func (set *Set) Unregister(name string) {
	set.mu.Lock()
	defer set.mu.Unlock()

	name = strings.ToUpper(name)
	delete(set.handlers, name)
	delete(set.help, name)
	for i, n := range set.order {
		if n == name {
			set.order = append(set.order[:i], set.order[i+1:]...)
			break
		}
	}
}

// Lookup returns the handler of a major word.
func (set *Set) Lookup(name string) (Handler, bool) {
	set.mu.RLock()
	defer set.mu.RUnlock()
	h, ok := set.handlers[strings.ToUpper(name)]
	return h, ok
}

// Names returns the registered major words in sorted order.
func (set *Set) Names() []string {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return append([]string(nil), set.order...)
}

// Help returns the help text of a major word.
func (set *Set) Help(name string) string {
	set.mu.RLock()
	defer set.mu.RUnlock()
	return set.help[strings.ToUpper(name)]
}

// Usage lists every command with its help text.
func (set *Set) Usage() string {
	set.mu.RLock()
	defer set.mu.RUnlock()

	lines := make([]string, 0, len(set.order)+1)
	lines = append(lines, fmt.Sprintf("Commands (%s):", set.name))
	for _, name := range set.order {
		lines = append(lines, fmt.Sprintf("  %-10s: %s", name, set.help[name]))
	}
	return strings.Join(lines, "\n")
}

// Dispatch runs the handler registered for the major word of cmd.
func (set *Set) Dispatch(s *session.Session, cmd apt.Command) error {
	h, ok := set.Lookup(cmd.Major())
	if !ok {
		return errors.UnknownCommandError(cmd.Major()).SetLine(cmd.Line())
	}
	if c, ok := h.(Composite); ok {
		return c(set, s, cmd)
	}
	return h.Handle(s, cmd)
}

// Run dispatches a command built in code, for composite handlers.
func (set *Set) Run(s *session.Session, major string, minors []string, numbers ...float64) error {
	return set.Dispatch(s, apt.NewCommand(major, minors, numbers))
}

// Clone returns an independent copy that can be overridden without
// affecting set.
func (set *Set) Clone(name string) *Set {
	set.mu.RLock()
	defer set.mu.RUnlock()

	c := NewSet(name)
	for k, h := range set.handlers {
		c.handlers[k] = h
		c.help[k] = set.help[k]
	}
	c.order = append(c.order, set.order...)
	return c
}
