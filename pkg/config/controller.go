// Controller dialect settings
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package config

import (
	"embed"
	"fmt"
	"sort"
	"strings"

	"aptpost/pkg/nc"
)

//go:embed dialects/*.cfg
var dialectFS embed.FS

// Controller holds the typed settings of one controller dialect.
type Controller struct {
	Name string

	// CirclesThroughRadius allows R output for radius-sourced arcs up to
	// a half circle.
	CirclesThroughRadius bool
	// DefaultPlane is 17, 18 or 19.
	DefaultPlane int

	Formats map[string]nc.Format
	Output  nc.Options

	Codes   Codes
	Program Program

	ToolChangeIgnoreSame bool
	ToolComment          bool
	CycleCache           bool
	// Cycle800 makes WPLANE swivel the working plane with CYCLE800.
	Cycle800 bool
}

// Codes are the words a dialect uses for modal functions.
type Codes struct {
	Rapid            string
	Linear           string
	Clockwise        string
	CounterClockwise string
	Planes           [3]string
	Dwell            string
	DwellWord        string

	ToolChange     string
	ToolLengthWord string
	OffsetWord     string

	SpindleCW     string
	SpindleCCW    string
	SpindleOrient string
	SpindleOff    string

	CoolantFlood string
	CoolantMist  string
	CoolantThru  string
	CoolantOff   string

	CutcomLeft  string
	CutcomRight string
	CutcomOff   string

	RTCPOn  string
	RTCPOff string

	SubprogCall string
	SubprogWord string
	SubprogEnd  string

	HomeMode   string
	ProgramEnd string
}

// Program holds the fixed text around the generated blocks.
type Program struct {
	Header   []string
	Safety   []string
	Footer   []string
	RetractZ float64
}

// PlaneCode returns the word selecting plane 17, 18 or 19.
func (c Codes) PlaneCode(plane int) string {
	if plane < 17 || plane > 19 {
		return ""
	}
	return c.Planes[plane-17]
}

// Dialects lists the built-in dialect names.
func Dialects() []string {
	entries, err := dialectFS.ReadDir("dialects")
	if err != nil {
		return nil
	}
	var names []string
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".cfg"))
	}
	sort.Strings(names)
	return names
}

// LoadDialect parses the built-in configuration of a dialect.
func LoadDialect(name string) (*Config, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	data, err := dialectFS.ReadFile("dialects/" + name + ".cfg")
	if err != nil {
		return nil, NewConfigError("controller", "dialect",
			fmt.Sprintf("unknown dialect %q (known: %s)", name, strings.Join(Dialects(), ", ")))
	}
	return LoadString(string(data))
}

// LoadController builds the controller settings for dialect with user
// overrides on top. An empty dialect is taken from the user file, then
// defaults to generic. user may be nil.
func LoadController(dialect string, user *Config) (*Controller, error) {
	if dialect == "" && user != nil {
		if sec := user.GetSectionOptional("controller"); sec != nil {
			dialect, _ = sec.Get("dialect", "")
		}
	}
	if dialect == "" {
		dialect = "generic"
	}

	cfg, err := LoadDialect(dialect)
	if err != nil {
		return nil, err
	}
	if user != nil {
		cfg.Merge(user)
	}
	return NewController(cfg)
}

// NewController reads the typed settings out of cfg. Missing sections
// and options fall back to generic defaults.
func NewController(cfg *Config) (*Controller, error) {
	ctrl := &Controller{Formats: nc.DefaultFormats()}

	sec := cfg.GetSectionOptional("controller")
	if sec == nil {
		sec = newSection("controller", nil)
	}
	r := &reader{sec: sec}

	ctrl.Name = r.str("name", "generic")
	_ = r.str("dialect", "")
	ctrl.CirclesThroughRadius = r.boolean("circles_through_radius", false)
	ctrl.DefaultPlane = r.intRange("default_plane", 17, 19, 17)
	ctrl.ToolChangeIgnoreSame = r.boolean("toolchange_ignore_same", false)
	ctrl.ToolComment = r.boolean("tool_comment", true)
	ctrl.CycleCache = r.boolean("cycle_cache", true)
	ctrl.Cycle800 = r.boolean("use_cycle800", false)

	order := r.list("axis_order", ",", nc.DefaultOrder)
	for i := range order {
		order[i] = strings.ToUpper(order[i])
	}
	ctrl.Output = nc.Options{
		Order:          order,
		Separator:      r.raw("separator", " "),
		Numbering:      r.boolean("block_numbers", false),
		BlockStart:     r.intRange("block_start", 0, 1<<30, 1),
		BlockIncrement: r.intRange("block_increment", 1, 1000, 1),
		BlockWord:      r.raw("block_word", "N"),
		Comments:       nc.CommentParens,
		CommentUpper:   r.boolean("comment_uppercase", false),
		Transliterate:  r.boolean("comment_transliterate", false),
	}
	if r.choice("comment_style", []string{"parentheses", "semicolon"}, "parentheses") == "semicolon" {
		ctrl.Output.Comments = nc.CommentSemicolon
	}

	ctrl.Codes = Codes{
		Rapid:            r.str("rapid_code", "G0"),
		Linear:           r.str("linear_code", "G1"),
		Clockwise:        r.str("clockwise_code", "G2"),
		CounterClockwise: r.str("counterclockwise_code", "G3"),
		Planes: [3]string{
			r.str("plane_xy_code", "G17"),
			r.str("plane_zx_code", "G18"),
			r.str("plane_yz_code", "G19"),
		},
		Dwell:          r.str("dwell_code", "G4"),
		DwellWord:      r.str("dwell_word", "X"),
		ToolChange:     r.str("tool_change_code", "M6"),
		ToolLengthWord: r.str("tool_length_word", ""),
		OffsetWord:     r.str("offset_word", "D"),
		SpindleCW:      r.str("spindle_cw_code", "M3"),
		SpindleCCW:     r.str("spindle_ccw_code", "M4"),
		SpindleOrient:  r.str("spindle_orient_code", "M19"),
		SpindleOff:     r.str("spindle_off_code", "M5"),
		CoolantFlood:   r.str("coolant_flood_code", "M8"),
		CoolantMist:    r.str("coolant_mist_code", "M7"),
		CoolantThru:    r.str("coolant_thru", ""),
		CoolantOff:     r.str("coolant_off_code", "M9"),
		CutcomLeft:     r.str("cutcom_left_code", "G41"),
		CutcomRight:    r.str("cutcom_right_code", "G42"),
		CutcomOff:      r.str("cutcom_off_code", "G40"),
		RTCPOn:         r.str("rtcp_on", "G43.4"),
		RTCPOff:        r.str("rtcp_off", "G49"),
		SubprogCall:    r.str("subprog_call", "M98"),
		SubprogWord:    r.str("subprog_word", "P"),
		SubprogEnd:     r.str("subprog_end", "M99"),
		HomeMode:       r.choice("home_mode", []string{"g28", "g53"}, "g28"),
		ProgramEnd:     r.str("program_end", "M30"),
	}

	if prog := cfg.GetSectionOptional("program"); prog != nil {
		pr := &reader{sec: prog}
		ctrl.Program.Header = pr.list("header", "|", nil)
		ctrl.Program.Safety = pr.list("safety", "|", nil)
		ctrl.Program.Footer = pr.list("footer", "|", nil)
		ctrl.Program.RetractZ = pr.float("retract_z", 100)
		if pr.err != nil {
			return nil, pr.err
		}
	} else {
		ctrl.Program.RetractZ = 100
	}

	for _, fs := range cfg.GetPrefixSections("format ") {
		class := strings.TrimSpace(strings.TrimPrefix(fs.GetName(), "format "))
		f, err := readFormat(fs, ctrl.Formats[class])
		if err != nil {
			return nil, err
		}
		ctrl.Formats[class] = f
	}

	if r.err != nil {
		return nil, r.err
	}
	return ctrl, nil
}

func readFormat(sec *Section, base nc.Format) (nc.Format, error) {
	r := &reader{sec: sec}
	f := base
	f.Decimals = r.intRange("decimals", 0, 9, base.Decimals)
	f.Point = r.boolean("point", base.Point)

	if v := r.str("trailing_zeros", ""); v != "" {
		t, err := nc.ParseTrailing(v)
		if err != nil {
			return f, WrapError(sec.GetName(), "trailing_zeros", err)
		}
		f.Trailing = t
	}
	if v := r.str("sign", ""); v != "" {
		s, err := nc.ParseSign(v)
		if err != nil {
			return f, WrapError(sec.GetName(), "sign", err)
		}
		f.Sign = s
	}
	return f, r.err
}

// reader keeps the first error so option reads can be chained.
type reader struct {
	sec *Section
	err error
}

func (r *reader) keep(err error) {
	if r.err == nil && err != nil {
		r.err = err
	}
}

func (r *reader) str(option, fallback string) string {
	v, err := r.sec.Get(option, fallback)
	r.keep(err)
	return v
}

// raw returns the option without trimming quotes, so `separator: " "`
// can express a single space.
func (r *reader) raw(option, fallback string) string {
	v := r.str(option, fallback)
	if len(v) >= 2 && v[0] == '"' && v[len(v)-1] == '"' {
		return v[1 : len(v)-1]
	}
	return v
}

func (r *reader) boolean(option string, fallback bool) bool {
	v, err := r.sec.GetBool(option, fallback)
	r.keep(err)
	return v
}

func (r *reader) intRange(option string, minVal, maxVal, fallback int) int {
	v, err := r.sec.GetIntBounded(option, minVal, maxVal, fallback)
	r.keep(err)
	return v
}

func (r *reader) float(option string, fallback float64) float64 {
	v, err := r.sec.GetFloat(option, fallback)
	r.keep(err)
	return v
}

func (r *reader) choice(option string, choices []string, fallback string) string {
	v, err := r.sec.GetChoice(option, choices, fallback)
	r.keep(err)
	return v
}

func (r *reader) list(option, sep string, fallback []string) []string {
	v, err := r.sec.GetList(option, sep, fallback)
	r.keep(err)
	return v
}
