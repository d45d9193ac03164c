// Cutting tool library
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

// Package tools loads the cutting tool library used for tool change
// comments and the tool list.
package tools

import (
	"bytes"
	"context"
	stderrors "errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	dataframe "github.com/rocketlaunchr/dataframe-go"
	"github.com/rocketlaunchr/dataframe-go/imports"

	"aptpost/pkg/errors"
)

// ErrEmptyLibrary is returned for a tool file without rows.
var ErrEmptyLibrary = stderrors.New("tool library is empty")

// Tool is one entry of the library.
type Tool struct {
	Number       int
	Name         string
	Diameter     float64
	Length       float64
	CornerRadius float64
	Comment      string
}

// Describe returns a short comment text such as "T5 FLAT END MILL D10".
func (t Tool) Describe() string {
	parts := []string{"T" + strconv.Itoa(t.Number)}
	if t.Name != "" {
		parts = append(parts, t.Name)
	}
	if t.Diameter > 0 {
		parts = append(parts, "D"+strconv.FormatFloat(t.Diameter, 'f', -1, 64))
	}
	if t.CornerRadius > 0 {
		parts = append(parts, "R"+strconv.FormatFloat(t.CornerRadius, 'f', -1, 64))
	}
	return strings.Join(parts, " ")
}

// Library maps tool numbers to tools.
type Library struct {
	tools map[int]Tool
}

// NewLibrary builds a library from tools; later duplicates win.
func NewLibrary(tools ...Tool) *Library {
	l := &Library{tools: make(map[int]Tool, len(tools))}
	for _, t := range tools {
		l.tools[t.Number] = t
	}
	return l
}

// Lookup returns the tool with number n.
func (l *Library) Lookup(n int) (Tool, bool) {
	if l == nil {
		return Tool{}, false
	}
	t, ok := l.tools[n]
	return t, ok
}

// Tools returns all tools sorted by number.
func (l *Library) Tools() []Tool {
	if l == nil {
		return nil
	}
	out := make([]Tool, 0, len(l.tools))
	for _, t := range l.tools {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Number < out[j].Number })
	return out
}

// Len returns the number of tools.
func (l *Library) Len() int {
	if l == nil {
		return 0
	}
	return len(l.tools)
}

// LoadCSV reads a tool table with a header row. The number column is
// required; name, diameter, length, corner_radius and comment are optional.
func LoadCSV(ctx context.Context, r io.Reader) (*Library, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrToolLibrary, "read tool library")
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, errors.Wrap(ErrEmptyLibrary, errors.ErrToolLibrary, "load tool library")
	}

	df, err := imports.LoadFromCSV(ctx, bytes.NewReader(data), imports.CSVLoadOptions{
		TrimLeadingSpace: true,
		InferDataTypes:   true,
	})
	if stderrors.Is(err, dataframe.ErrNoRows) || (err == nil && (df == nil || len(df.Series) == 0)) {
		return nil, errors.Wrap(ErrEmptyLibrary, errors.ErrToolLibrary, "load tool library")
	}
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrToolLibrary, "parse tool library")
	}

	cols := make(map[string]dataframe.Series, len(df.Series))
	for _, s := range df.Series {
		cols[strings.ToLower(strings.TrimSpace(s.Name()))] = s
	}
	number, ok := cols["number"]
	if !ok {
		return nil, errors.New(errors.ErrToolLibrary, "tool library has no 'number' column")
	}

	lib := NewLibrary()
	for row := 0; row < number.NRows(); row++ {
		n, ok := intValue(number, row)
		if !ok || n <= 0 {
			return nil, errors.New(errors.ErrToolLibrary,
				fmt.Sprintf("row %d: invalid tool number %v", row+1, number.Value(row))).
				SetContext("row", row+1)
		}
		if _, dup := lib.tools[n]; dup {
			return nil, errors.New(errors.ErrToolLibrary,
				fmt.Sprintf("row %d: duplicate tool number %d", row+1, n)).
				SetContext("row", row+1)
		}
		lib.tools[n] = Tool{
			Number:       n,
			Name:         stringValue(cols["name"], row),
			Diameter:     floatValue(cols["diameter"], row),
			Length:       floatValue(cols["length"], row),
			CornerRadius: floatValue(cols["corner_radius"], row),
			Comment:      stringValue(cols["comment"], row),
		}
	}
	return lib, nil
}

func intValue(s dataframe.Series, row int) (int, bool) {
	if s == nil || row >= s.NRows() {
		return 0, false
	}
	switch v := s.Value(row).(type) {
	case int64:
		return int(v), true
	case float64:
		if v != float64(int(v)) {
			return 0, false
		}
		return int(v), true
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(v))
		return n, err == nil
	}
	return 0, false
}

func floatValue(s dataframe.Series, row int) float64 {
	if s == nil || row >= s.NRows() {
		return 0
	}
	switch v := s.Value(row).(type) {
	case float64:
		return v
	case int64:
		return float64(v)
	case string:
		f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
		return f
	}
	return 0
}

func stringValue(s dataframe.Series, row int) string {
	if s == nil || row >= s.NRows() {
		return ""
	}
	v := s.Value(row)
	if v == nil {
		return ""
	}
	if str, ok := v.(string); ok {
		return strings.TrimSpace(str)
	}
	return fmt.Sprint(v)
}
