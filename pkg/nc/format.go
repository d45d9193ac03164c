// Numeric word formatting
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package nc holds the modal register store and the block writer that
// turns register changes into controller text.
package nc

import (
	"fmt"
	"strconv"
	"strings"
)

// TrailingZeros selects how zeros after the decimal point are written.
type TrailingZeros int

const (
	TrailingKeep  TrailingZeros = iota // 800.000
	TrailingStrip                      // 800.
	TrailingOne                        // 800.0
)

// SignMode selects whether positive values carry a sign.
type SignMode int

const (
	SignMinus SignMode = iota
	SignPlus
)

// Format is the numeric output policy of one register.
type Format struct {
	Decimals int
	Trailing TrailingZeros
	Sign     SignMode
	// Point keeps a decimal point on integer formats (S1200.).
	Point bool
}

// Format renders v according to the policy.
func (f Format) Format(v float64) string {
	decimals := f.Decimals
	if decimals < 0 {
		decimals = 0
	}
	s := strconv.FormatFloat(v, 'f', decimals, 64)

	neg := strings.HasPrefix(s, "-")
	if neg {
		s = s[1:]
	}
	if strings.Trim(s, "0.") == "" {
		neg = false
	}

	if decimals > 0 {
		switch f.Trailing {
		case TrailingStrip:
			s = strings.TrimRight(s, "0")
		case TrailingOne:
			s = strings.TrimRight(s, "0")
			if strings.HasSuffix(s, ".") {
				s += "0"
			}
		}
	} else if f.Point {
		s += "."
	}

	switch {
	case neg:
		return "-" + s
	case f.Sign == SignPlus:
		return "+" + s
	}
	return s
}

// ParseTrailing maps keep, strip and one to a TrailingZeros mode.
func ParseTrailing(s string) (TrailingZeros, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "keep", "yes":
		return TrailingKeep, nil
	case "strip", "no":
		return TrailingStrip, nil
	case "one":
		return TrailingOne, nil
	}
	return TrailingKeep, fmt.Errorf("unknown trailing zero mode %q", s)
}

// ParseSign maps minus and plus to a SignMode.
func ParseSign(s string) (SignMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "minus", "":
		return SignMinus, nil
	case "plus":
		return SignPlus, nil
	}
	return SignMinus, fmt.Errorf("unknown sign mode %q", s)
}

// Register classes share one Format each.
const (
	ClassCoordinate = "coordinate"
	ClassAngle      = "angle"
	ClassFeed       = "feed"
	ClassSpeed      = "speed"
	ClassInteger    = "integer"
)

// ClassOf returns the register class of a register letter.
func ClassOf(name string) string {
	switch strings.ToUpper(name) {
	case "X", "Y", "Z", "I", "J", "K", "R", "U", "V", "W":
		return ClassCoordinate
	case "A", "B", "C":
		return ClassAngle
	case "F":
		return ClassFeed
	case "S":
		return ClassSpeed
	}
	return ClassInteger
}

// DefaultFormats returns the class formats used when a dialect does not
// override them.
func DefaultFormats() map[string]Format {
	return map[string]Format{
		ClassCoordinate: {Decimals: 3},
		ClassAngle:      {Decimals: 3},
		ClassFeed:       {Decimals: 1},
		ClassSpeed:      {Decimals: 0},
		ClassInteger:    {Decimals: 0},
	}
}
