// Modal register store
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package nc

import "strings"

// Tolerance is the smallest change that makes a register dirty.
const Tolerance = 1e-4

// Register is one named modal output value.
type Register struct {
	name   string
	format Format
	value  float64
	dirty  bool
	always bool
}

// Name returns the register letter.
func (r *Register) Name() string { return r.name }

// Value returns the current value.
func (r *Register) Value() float64 { return r.value }

// Dirty reports whether the register must appear in the next block.
func (r *Register) Dirty() bool { return r.dirty }

// Format returns the numeric policy of the register.
func (r *Register) Format() Format { return r.format }

// Word renders the register as a block word, e.g. X12.5.
func (r *Register) Word() string {
	return r.name + r.format.Format(r.value)
}

func (r *Register) set(v float64) {
	d := v - r.value
	if d < 0 {
		d = -d
	}
	if d >= Tolerance || r.always {
		r.dirty = true
	}
	r.value = v
}

// Modal reports whether the register is only written when it changes.
func (r *Register) Modal() bool { return !r.always }

// Registers is the modal register store of one session.
// It is not safe for concurrent use.
type Registers struct {
	regs    map[string]*Register
	formats map[string]Format
}

// NewRegisters creates a store using the given class formats. Missing
// classes fall back to DefaultFormats.
func NewRegisters(formats map[string]Format) *Registers {
	merged := DefaultFormats()
	for class, f := range formats {
		merged[class] = f
	}
	return &Registers{
		regs:    make(map[string]*Register),
		formats: merged,
	}
}

// Register returns the named register, creating it with value 0.
func (rs *Registers) Register(name string) *Register {
	name = strings.ToUpper(name)
	r, ok := rs.regs[name]
	if !ok {
		r = &Register{name: name, format: rs.formats[ClassOf(name)]}
		rs.regs[name] = r
	}
	return r
}

// SetFormat overrides the format of a single register.
func (rs *Registers) SetFormat(name string, f Format) {
	rs.Register(name).format = f
}

// Set assigns v; the register becomes dirty when v differs from the
// stored value by at least Tolerance.
func (rs *Registers) Set(name string, v float64) {
	rs.Register(name).set(v)
}

// Get returns the current value, 0 for registers never set.
func (rs *Registers) Get(name string) float64 {
	if r, ok := rs.regs[strings.ToUpper(name)]; ok {
		return r.value
	}
	return 0
}

// SetModal switches a register between modal output, the default, and
// output on every assignment.
func (rs *Registers) SetModal(name string, modal bool) {
	rs.Register(name).always = !modal
}

// Force marks the register dirty regardless of its value.
func (rs *Registers) Force(name string) {
	rs.Register(name).dirty = true
}

// IsDirty reports whether the register will be emitted when shown.
func (rs *Registers) IsDirty(name string) bool {
	if r, ok := rs.regs[strings.ToUpper(name)]; ok {
		return r.dirty
	}
	return false
}

// Clean clears the dirty flag.
func (rs *Registers) Clean(name string) {
	if r, ok := rs.regs[strings.ToUpper(name)]; ok {
		r.dirty = false
	}
}

// Preset stores v without marking the register dirty. Used for positions
// the machine already holds, such as FROM.
func (rs *Registers) Preset(name string, v float64) {
	r := rs.Register(name)
	r.value = v
	r.dirty = false
}
