// Modal state and cycle caches
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package session

import (
	"math"
	"strings"

	"aptpost/pkg/nc"
)

// StateCache remembers the last value written per key so handlers can
// skip restating modal codes.
type StateCache struct {
	last map[string]interface{}
}

// NewStateCache creates an empty cache.
func NewStateCache() *StateCache {
	return &StateCache{last: make(map[string]interface{})}
}

// Changed records v under key and reports whether it differs from the
// previous value. Floats compare with a 1e-6 tolerance.
func (c *StateCache) Changed(key string, v interface{}) bool {
	old, ok := c.last[key]
	c.last[key] = v
	if !ok {
		return true
	}
	if a, isFloat := old.(float64); isFloat {
		if b, ok := v.(float64); ok {
			return math.Abs(a-b) > 1e-6
		}
	}
	return old != v
}

// Forget drops key so the next Changed reports true.
func (c *StateCache) Forget(key string) {
	delete(c.last, key)
}

// Reset drops every key.
func (c *StateCache) Reset() {
	c.last = make(map[string]interface{})
}

// CycleCache remembers the last parameter list of each fixed cycle.
// A repeated call with the same parameters only names the cycle.
type CycleCache struct {
	enabled bool
	last    map[string]string
}

// NewCycleCache creates a cache; when disabled every call writes the full
// definition.
func NewCycleCache(enabled bool) *CycleCache {
	return &CycleCache{enabled: enabled, last: make(map[string]string)}
}

// Enabled reports whether repeated definitions are shortened.
func (c *CycleCache) Enabled() bool { return c.enabled }

// SetEnabled switches the cache on or off.
func (c *CycleCache) SetEnabled(on bool) { c.enabled = on }

// Emit writes NAME(p1,p2,...) or, for an unchanged repeat, NAME. It
// reports whether the full definition was written.
func (c *CycleCache) Emit(w *nc.Writer, name string, params []string) (bool, error) {
	def := name + "(" + strings.Join(params, ",") + ")"
	if c.enabled && c.last[name] == def {
		return false, w.Line(name)
	}
	if err := w.Line(def); err != nil {
		return false, err
	}
	c.last[name] = def
	return true, nil
}

// Reset forgets all cycle definitions, e.g. after a tool change.
func (c *CycleCache) Reset() {
	c.last = make(map[string]string)
}
