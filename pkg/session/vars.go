// Program global variables
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package session

import "sort"

// Well-known global variables shared between handlers.
const (
	VarPlane        = "PLANE_CODE"
	VarMotion       = "MOTION"
	VarSpindleDir   = "SPINDLE_DIR"
	VarSpindleRPM   = "SPINDLE_RPM"
	VarCoolant      = "COOLANT"
	VarCutcom       = "CUTCOM"
	VarTool         = "TOOL"
	VarSubprogLevel = "SUBPROG_LEVEL"
	VarRTCP         = "RTCP"
	VarArcPitch     = "ARC_PITCH"
	VarPartName     = "PART_NAME"
	VarCycleCache   = "CYCLE_CACHE"
	VarFeed         = "FEED"
	VarFinished     = "FINISHED"
	VarMainRotary   = "WPLANE_MAIN_ROTARY_AXIS"
	VarForceWay     = "FORCE_WAY"
	VarWPlane       = "WPLANE_ENABLED"
	VarWorkPlane    = "WORK_PLANE"
	VarChuck        = "CHUCK_STATE"
	VarTailstock    = "TAILSTOCK_STATE"
	VarOffset       = "CURRENT_OFFSET"
)

// Motion modes stored under VarMotion.
const (
	MotionLinear = "LINEAR"
	MotionRapid  = "RAPID"
)

// Kind is the type of a stored variable.
type Kind int

const (
	KindFloat Kind = iota
	KindInt
	KindString
)

type variable struct {
	kind Kind
	f    float64
	i    int
	s    string
}

// Vars is the typed key/value store of one session. Last write wins.
type Vars struct {
	m map[string]variable
}

// NewVars creates an empty store.
func NewVars() *Vars {
	return &Vars{m: make(map[string]variable)}
}

func (v *Vars) SetFloat(key string, f float64) { v.m[key] = variable{kind: KindFloat, f: f} }
func (v *Vars) SetInt(key string, i int)       { v.m[key] = variable{kind: KindInt, i: i} }
func (v *Vars) SetString(key, s string)        { v.m[key] = variable{kind: KindString, s: s} }

// Float returns key as float64. Integers convert; strings and missing
// keys yield def.
func (v *Vars) Float(key string, def float64) float64 {
	switch x, ok := v.m[key]; {
	case !ok:
		return def
	case x.kind == KindFloat:
		return x.f
	case x.kind == KindInt:
		return float64(x.i)
	}
	return def
}

// Int returns key as int. Floats are truncated; strings and missing keys
// yield def.
func (v *Vars) Int(key string, def int) int {
	switch x, ok := v.m[key]; {
	case !ok:
		return def
	case x.kind == KindInt:
		return x.i
	case x.kind == KindFloat:
		return int(x.f)
	}
	return def
}

// String returns key as string; numeric or missing keys yield def.
func (v *Vars) String(key, def string) string {
	if x, ok := v.m[key]; ok && x.kind == KindString {
		return x.s
	}
	return def
}

// Kind returns the stored kind of key.
func (v *Vars) Kind(key string) (Kind, bool) {
	x, ok := v.m[key]
	return x.kind, ok
}

// Has reports whether key is set.
func (v *Vars) Has(key string) bool {
	_, ok := v.m[key]
	return ok
}

// Delete removes key.
func (v *Vars) Delete(key string) {
	delete(v.m, key)
}

// Keys returns all keys in sorted order.
func (v *Vars) Keys() []string {
	keys := make([]string, 0, len(v.m))
	for k := range v.m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
