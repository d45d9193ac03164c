// APT command value
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package apt holds the APT command value and a streaming reader for
// APT/CL source files.
package apt

import (
	"strconv"
	"strings"
)

type paramKind int

const (
	kindWord paramKind = iota
	kindNumber
	kindString
)

// param is one comma-separated item after the slash, in source order.
type param struct {
	kind paramKind
	word string
	num  float64
}

// Command is one APT statement. It is immutable; accessors that return
// slices return copies.
type Command struct {
	major   string
	minors  []string
	numbers []float64
	strs    []string
	params  []param
	line    int
	raw     string
}

// NewCommand builds a command from its parts. Minor words are upper-cased
// and taken to precede the numbers.
func NewCommand(major string, minors []string, numbers []float64) Command {
	var params []param
	for _, m := range minors {
		params = append(params, param{kind: kindWord, word: strings.ToUpper(m)})
	}
	for _, n := range numbers {
		params = append(params, param{kind: kindNumber, num: n})
	}
	return fromParams(strings.ToUpper(major), params, 0, "")
}

func fromParams(major string, params []param, line int, raw string) Command {
	c := Command{major: major, params: params, line: line, raw: raw}
	for _, p := range params {
		switch p.kind {
		case kindWord:
			c.minors = append(c.minors, p.word)
		case kindNumber:
			c.numbers = append(c.numbers, p.num)
		case kindString:
			c.strs = append(c.strs, p.word)
		}
	}
	return c
}

// Major returns the command keyword, e.g. GOTO.
func (c Command) Major() string { return c.major }

// Minors returns the minor words in order.
func (c Command) Minors() []string { return append([]string(nil), c.minors...) }

// HasMinor reports whether any of words is among the minor words.
func (c Command) HasMinor(words ...string) bool {
	for _, w := range words {
		if c.MinorIndex(w) >= 0 {
			return true
		}
	}
	return false
}

// MinorIndex returns the position of word among the minor words, or -1.
func (c Command) MinorIndex(word string) int {
	word = strings.ToUpper(word)
	for i, m := range c.minors {
		if m == word {
			return i
		}
	}
	return -1
}

// Number returns the i-th numeric parameter, or def when absent.
func (c Command) Number(i int, def float64) float64 {
	if i < 0 || i >= len(c.numbers) {
		return def
	}
	return c.numbers[i]
}

// NumberCount returns the number of numeric parameters.
func (c Command) NumberCount() int { return len(c.numbers) }

// Numbers returns the numeric parameters in order.
func (c Command) Numbers() []float64 { return append([]float64(nil), c.numbers...) }

// String returns the i-th quoted string parameter, or def when absent.
func (c Command) String(i int, def string) string {
	if i < 0 || i >= len(c.strs) {
		return def
	}
	return c.strs[i]
}

// Text joins all string parameters with a space.
func (c Command) Text() string { return strings.Join(c.strs, " ") }

// NumberAfter returns the numeric parameter directly following word, as
// in SPINDL/RPM,1200,CLW. It returns def when word is absent or is not
// followed by a number.
func (c Command) NumberAfter(word string, def float64) float64 {
	word = strings.ToUpper(word)
	for i, p := range c.params {
		if p.kind != kindWord || p.word != word {
			continue
		}
		if i+1 < len(c.params) && c.params[i+1].kind == kindNumber {
			return c.params[i+1].num
		}
		return def
	}
	return def
}

// Line returns the source line of the statement, 0 when built in code.
func (c Command) Line() int { return c.line }

// Raw returns the statement text as read.
func (c Command) Raw() string {
	if c.raw != "" {
		return c.raw
	}
	return c.format()
}

func (c Command) format() string {
	if len(c.params) == 0 {
		return c.major
	}
	parts := make([]string, len(c.params))
	for i, p := range c.params {
		switch p.kind {
		case kindNumber:
			parts[i] = strconv.FormatFloat(p.num, 'f', -1, 64)
		case kindString:
			parts[i] = "'" + p.word + "'"
		default:
			parts[i] = p.word
		}
	}
	return c.major + "/" + strings.Join(parts, ",")
}
