package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"aptpost/pkg/nc"
)

func TestLoadString(t *testing.T) {
	data := `
# machine shop defaults
[controller]
dialect: fanuc
circles_through_radius: yes
default_plane = 18

[format coordinate]
decimals: 4
`

	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	if !cfg.HasSection("controller") {
		t.Error("expected [controller] section to exist")
	}
	if cfg.HasSection("nonexistent") {
		t.Error("expected [nonexistent] section to not exist")
	}

	ctrl, err := cfg.GetSection("controller")
	if err != nil {
		t.Fatalf("GetSection(controller) failed: %v", err)
	}
	if ctrl.GetName() != "controller" {
		t.Errorf("expected name 'controller', got '%s'", ctrl.GetName())
	}

	d, err := ctrl.Get("dialect")
	if err != nil {
		t.Fatalf("Get(dialect) failed: %v", err)
	}
	if d != "fanuc" {
		t.Errorf("expected 'fanuc', got '%s'", d)
	}

	plane, err := ctrl.GetInt("default_plane")
	if err != nil {
		t.Fatalf("GetInt(default_plane) failed: %v", err)
	}
	if plane != 18 {
		t.Errorf("expected 18, got %d", plane)
	}

	radius, err := ctrl.GetBool("circles_through_radius")
	if err != nil {
		t.Fatalf("GetBool failed: %v", err)
	}
	if !radius {
		t.Error("expected circles_through_radius to be true")
	}

	names := cfg.GetSectionNames()
	if len(names) != 2 || names[0] != "controller" || names[1] != "format coordinate" {
		t.Errorf("unexpected section order %v", names)
	}
}

func TestSectionGet(t *testing.T) {
	data := `
[test]
string_val: hello
int_val: 42
float_val: 2.5
bool_yes: yes
bool_off: off
list_val: G17 G40 | G80 || M5
`
	cfg, err := LoadString(data)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	sec, _ := cfg.GetSection("test")

	tests := []struct {
		name string
		get  func() (interface{}, error)
		want interface{}
	}{
		{"string", func() (interface{}, error) { return sec.Get("string_val") }, "hello"},
		{"string fallback", func() (interface{}, error) { return sec.Get("missing", "dflt") }, "dflt"},
		{"int", func() (interface{}, error) { return sec.GetInt("int_val") }, 42},
		{"int fallback", func() (interface{}, error) { return sec.GetInt("missing", 7) }, 7},
		{"float", func() (interface{}, error) { return sec.GetFloat("float_val") }, 2.5},
		{"bool yes", func() (interface{}, error) { return sec.GetBool("bool_yes") }, true},
		{"bool off", func() (interface{}, error) { return sec.GetBool("bool_off") }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.get()
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}

	list, err := sec.GetList("list_val", "|")
	if err != nil {
		t.Fatalf("GetList failed: %v", err)
	}
	want := []string{"G17 G40", "G80", "M5"}
	if strings.Join(list, ",") != strings.Join(want, ",") {
		t.Errorf("GetList = %q, want %q", list, want)
	}

	if _, err := sec.GetInt("string_val"); err == nil {
		t.Error("expected error parsing 'hello' as integer")
	}
}

func TestAccessTracking(t *testing.T) {
	cfg, err := LoadString(`
[controller]
dialect: siemens
circels_through_radius: true
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	sec, _ := cfg.GetSection("controller")
	_, _ = sec.Get("dialect")

	unused := sec.GetUnusedOptions()
	if len(unused) != 1 || unused[0] != "circels_through_radius" {
		t.Errorf("expected misspelled option to be unused, got %v", unused)
	}

	err = cfg.CheckUnused()
	if err == nil {
		t.Fatal("expected CheckUnused to report the misspelled option")
	}
	if !strings.Contains(err.Error(), "circels_through_radius") {
		t.Errorf("error does not name the option: %v", err)
	}
}

func TestSectionTracking(t *testing.T) {
	cfg, err := LoadString(`
[controller]
dialect: haas

[extra]
key: value
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	sec, _ := cfg.GetSection("controller")
	_, _ = sec.Get("dialect")

	err = cfg.CheckUnused()
	if err == nil || !strings.Contains(err.Error(), "[extra]: unused section") {
		t.Errorf("expected unused [extra] section, got %v", err)
	}
}

func TestGetPrefixSections(t *testing.T) {
	cfg, err := LoadString(`
[format coordinate]
decimals: 3
[controller]
name: x
[format feed]
decimals: 1
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}
	secs := cfg.GetPrefixSections("format ")
	if len(secs) != 2 {
		t.Fatalf("expected 2 format sections, got %d", len(secs))
	}
	if secs[0].GetName() != "format coordinate" || secs[1].GetName() != "format feed" {
		t.Errorf("unexpected order: %s, %s", secs[0].GetName(), secs[1].GetName())
	}
}

func TestGetChoice(t *testing.T) {
	cfg, _ := LoadString(`
[controller]
comment_style: Semicolon
home_mode: g30
`)
	sec, _ := cfg.GetSection("controller")

	v, err := sec.GetChoice("comment_style", []string{"parentheses", "semicolon"})
	if err != nil {
		t.Fatalf("GetChoice failed: %v", err)
	}
	if v != "semicolon" {
		t.Errorf("expected canonical 'semicolon', got %q", v)
	}

	if _, err := sec.GetChoice("home_mode", []string{"g28", "g53"}); err == nil {
		t.Error("expected error for invalid choice")
	}
}

func TestBoundsChecking(t *testing.T) {
	cfg, _ := LoadString(`
[controller]
default_plane: 20
block_start: 10
`)
	sec, _ := cfg.GetSection("controller")

	if _, err := sec.GetIntBounded("default_plane", 17, 19); err == nil {
		t.Error("expected out of range error for plane 20")
	}
	v, err := sec.GetIntBounded("block_start", 0, 1000)
	if err != nil {
		t.Fatalf("GetIntBounded failed: %v", err)
	}
	if v != 10 {
		t.Errorf("expected 10, got %d", v)
	}
}

func TestMissingOptionError(t *testing.T) {
	cfg, _ := LoadString("[controller]\n")
	sec, _ := cfg.GetSection("controller")

	_, err := sec.Get("dialect")
	if err == nil {
		t.Fatal("expected error for missing option")
	}
	var cerr *ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected *ConfigError, got %T", err)
	}
	if cerr.Option != "dialect" || cerr.Section != "controller" {
		t.Errorf("unexpected error context: %+v", cerr)
	}

	if _, err := cfg.GetSection("program"); err == nil {
		t.Error("expected error for missing section")
	}
}

func TestMalformedLine(t *testing.T) {
	_, err := LoadString("[controller]\njust some words\n")
	if err == nil {
		t.Fatal("expected error for malformed line")
	}
	if !strings.Contains(err.Error(), "line 2") {
		t.Errorf("error should carry the line number: %v", err)
	}
}

func TestConfigMerge(t *testing.T) {
	base, _ := LoadString(`
[controller]
rapid_code: G0
linear_code: G1
`)
	user, _ := LoadString(`
[controller]
rapid_code: G00
[program]
header: %
`)
	base.Merge(user)

	sec, _ := base.GetSection("controller")
	if v, _ := sec.Get("rapid_code"); v != "G00" {
		t.Errorf("expected merged override G00, got %s", v)
	}
	if v, _ := sec.Get("linear_code"); v != "G1" {
		t.Errorf("expected base value G1 to survive, got %s", v)
	}
	if !base.HasSection("program") {
		t.Error("expected [program] to be merged in")
	}
}

func TestLoadWithInclude(t *testing.T) {
	dir := t.TempDir()
	main := filepath.Join(dir, "machine.cfg")
	inc := filepath.Join(dir, "formats.cfg")

	if err := os.WriteFile(inc, []byte("[format coordinate]\ndecimals: 2\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(main, []byte("[include formats.cfg]\n[controller]\ndialect: haas\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(main)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !cfg.HasSection("format coordinate") {
		t.Error("expected included section")
	}
}

func TestRecursiveInclude(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.cfg")
	b := filepath.Join(dir, "b.cfg")
	_ = os.WriteFile(a, []byte("[include b.cfg]\n"), 0o644)
	_ = os.WriteFile(b, []byte("[include a.cfg]\n"), 0o644)

	if _, err := Load(a); err == nil || !strings.Contains(err.Error(), "recursive include") {
		t.Errorf("expected recursive include error, got %v", err)
	}
}

func TestIncludeRejectedInString(t *testing.T) {
	if _, err := LoadString("[include other.cfg]\n"); err == nil {
		t.Error("expected include to be rejected without a directory")
	}
}

func TestDialects(t *testing.T) {
	names := Dialects()
	want := []string{"fanuc", "fanuc_lathe", "generic", "haas", "heidenhain", "siemens"}
	if strings.Join(names, ",") != strings.Join(want, ",") {
		t.Fatalf("Dialects() = %v, want %v", names, want)
	}
	for _, name := range names {
		t.Run(name, func(t *testing.T) {
			ctrl, err := LoadController(name, nil)
			if err != nil {
				t.Fatalf("LoadController(%s) failed: %v", name, err)
			}
			if ctrl.Name != name {
				t.Errorf("Name = %q, want %q", ctrl.Name, name)
			}
			if ctrl.Codes.ProgramEnd == "" {
				t.Error("program end code must not be empty")
			}
		})
	}
}

func TestLatheDialect(t *testing.T) {
	ctrl, err := LoadController("fanuc_lathe", nil)
	if err != nil {
		t.Fatalf("LoadController failed: %v", err)
	}
	if ctrl.DefaultPlane != 18 {
		t.Errorf("DefaultPlane = %d, want 18", ctrl.DefaultPlane)
	}
	if ctrl.Codes.DwellWord != "U" || ctrl.Codes.ToolChange != "T" {
		t.Errorf("unexpected lathe codes %q/%q", ctrl.Codes.DwellWord, ctrl.Codes.ToolChange)
	}
	if ctrl.Cycle800 {
		t.Error("CYCLE800 must be off outside Siemens")
	}
}

func TestUnknownDialect(t *testing.T) {
	_, err := LoadController("okuma", nil)
	if err == nil {
		t.Fatal("expected error for unknown dialect")
	}
	if !strings.Contains(err.Error(), "okuma") {
		t.Errorf("error should name the dialect: %v", err)
	}
}

func TestControllerDefaults(t *testing.T) {
	ctrl, err := NewController(New())
	if err != nil {
		t.Fatalf("NewController failed: %v", err)
	}
	if ctrl.Codes.Clockwise != "G2" || ctrl.Codes.CounterClockwise != "G3" {
		t.Errorf("unexpected arc codes %q/%q", ctrl.Codes.Clockwise, ctrl.Codes.CounterClockwise)
	}
	if ctrl.DefaultPlane != 17 {
		t.Errorf("DefaultPlane = %d, want 17", ctrl.DefaultPlane)
	}
	if ctrl.CirclesThroughRadius {
		t.Error("radius output must be off by default")
	}
	if ctrl.Program.RetractZ != 100 {
		t.Errorf("RetractZ = %v, want 100", ctrl.Program.RetractZ)
	}
	if ctrl.Output.Separator != " " || ctrl.Output.BlockWord != "N" {
		t.Errorf("unexpected output options %+v", ctrl.Output)
	}
	if got := ctrl.Codes.PlaneCode(18); got != "G18" {
		t.Errorf("PlaneCode(18) = %q", got)
	}
	if got := ctrl.Codes.PlaneCode(5); got != "" {
		t.Errorf("PlaneCode(5) = %q, want empty", got)
	}
}

func TestFanucController(t *testing.T) {
	ctrl, err := LoadController("fanuc", nil)
	if err != nil {
		t.Fatalf("LoadController failed: %v", err)
	}
	if !ctrl.CirclesThroughRadius {
		t.Error("fanuc prefers radius output")
	}
	if ctrl.Codes.Clockwise != "G02" || ctrl.Codes.Rapid != "G00" {
		t.Errorf("unexpected codes %+v", ctrl.Codes)
	}
	if ctrl.Codes.ToolLengthWord != "H" {
		t.Errorf("ToolLengthWord = %q, want H", ctrl.Codes.ToolLengthWord)
	}
	if len(ctrl.Program.Header) != 2 || ctrl.Program.Header[1] != "O0001" {
		t.Errorf("unexpected header %q", ctrl.Program.Header)
	}
	if got := ctrl.Formats[nc.ClassCoordinate].Format(800); got != "800." {
		t.Errorf("coordinate format = %q, want 800.", got)
	}
}

func TestHeidenhainController(t *testing.T) {
	ctrl, err := LoadController("heidenhain", nil)
	if err != nil {
		t.Fatalf("LoadController failed: %v", err)
	}
	if ctrl.Output.BlockWord != "" {
		t.Errorf("BlockWord = %q, want empty", ctrl.Output.BlockWord)
	}
	if ctrl.Output.BlockStart != 0 || !ctrl.Output.Numbering {
		t.Errorf("unexpected numbering %+v", ctrl.Output)
	}
	if got := ctrl.Formats[nc.ClassCoordinate].Format(12.5); got != "+12.500" {
		t.Errorf("coordinate format = %q, want +12.500", got)
	}
	if ctrl.Codes.SubprogWord != "" {
		t.Errorf("SubprogWord = %q, want empty", ctrl.Codes.SubprogWord)
	}
}

func TestSiemensController(t *testing.T) {
	ctrl, err := LoadController("siemens", nil)
	if err != nil {
		t.Fatalf("LoadController failed: %v", err)
	}
	if ctrl.Output.Comments != nc.CommentSemicolon {
		t.Error("siemens uses semicolon comments")
	}
	if ctrl.Output.BlockStart != 10 || ctrl.Output.BlockIncrement != 10 {
		t.Errorf("unexpected numbering %+v", ctrl.Output)
	}
	if ctrl.Codes.RTCPOn != "TRAORI" || ctrl.Codes.SubprogEnd != "M17" {
		t.Errorf("unexpected codes %+v", ctrl.Codes)
	}
	if !ctrl.ToolChangeIgnoreSame || !ctrl.CycleCache {
		t.Error("siemens enables tool change skipping and the cycle cache")
	}
}

func TestUserOverrides(t *testing.T) {
	user, err := LoadString(`
[controller]
dialect: haas
circles_through_radius: false
axis_order: z, x, y
separator: ""

[format coordinate]
decimals: 2
trailing_zeros: keep
`)
	if err != nil {
		t.Fatalf("LoadString failed: %v", err)
	}

	ctrl, err := LoadController("", user)
	if err != nil {
		t.Fatalf("LoadController failed: %v", err)
	}
	if ctrl.Name != "haas" {
		t.Errorf("dialect should come from the user file, got %q", ctrl.Name)
	}
	if ctrl.CirclesThroughRadius {
		t.Error("user override should disable radius output")
	}
	if strings.Join(ctrl.Output.Order, "") != "ZXY" {
		t.Errorf("Order = %v", ctrl.Output.Order)
	}
	if ctrl.Output.Separator != "" {
		t.Errorf("Separator = %q, want empty", ctrl.Output.Separator)
	}
	if got := ctrl.Formats[nc.ClassCoordinate].Format(1); got != "1.00" {
		t.Errorf("coordinate format = %q, want 1.00", got)
	}
}

func TestInvalidControllerValue(t *testing.T) {
	user, _ := LoadString(`
[controller]
default_plane: 21
`)
	if _, err := LoadController("generic", user); err == nil {
		t.Error("expected out of range plane to fail")
	}

	user, _ = LoadString(`
[format feed]
trailing_zeros: sometimes
`)
	if _, err := LoadController("generic", user); err == nil {
		t.Error("expected invalid trailing mode to fail")
	}
}
