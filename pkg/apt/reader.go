// APT source reader
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package apt

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"

	"aptpost/pkg/errors"
)

// textMajors keep everything after the keyword as one string parameter.
var textMajors = map[string]bool{
	"PARTNO": true,
	"PPRINT": true,
	"INSERT": true,
	"REMARK": true,
}

const maxStatement = 1 << 20

// Reader reads APT statements from a stream. `$$` starts a comment and a
// trailing `$` continues a statement on the next line.
type Reader struct {
	scanner  *bufio.Scanner
	encoding string
	line     int
	err      error
}

// NewReader creates a Reader over r. The source encoding is detected
// from the start of the stream and decoded to UTF-8.
func NewReader(r io.Reader) *Reader {
	dec, name, err := decode(r)
	if err != nil {
		return &Reader{err: fmt.Errorf("apt: detect encoding: %w", err)}
	}
	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 0, 64*1024), maxStatement)
	return &Reader{scanner: sc, encoding: name}
}

// Encoding returns the detected source encoding.
func (r *Reader) Encoding() string { return r.encoding }

// Next returns the next statement. It returns io.EOF at the end of input.
// A statement that cannot be parsed yields an APT_PARSE error; the reader
// stays usable and the following call continues after it.
func (r *Reader) Next() (Command, error) {
	if r.err != nil {
		return Command{}, r.err
	}

	var stmt strings.Builder
	start := 0
	for r.scanner.Scan() {
		r.line++
		text := strings.TrimSpace(stripComment(r.scanner.Text()))
		if text == "" {
			continue
		}
		if start == 0 {
			start = r.line
		}
		if cont, ok := strings.CutSuffix(text, "$"); ok {
			stmt.WriteString(strings.TrimSpace(cont))
			continue
		}
		stmt.WriteString(text)
		return ParseLine(stmt.String(), start)
	}

	if err := r.scanner.Err(); err != nil {
		r.err = fmt.Errorf("apt: read line %d: %w", r.line+1, err)
		return Command{}, r.err
	}
	r.err = io.EOF
	if stmt.Len() > 0 {
		return ParseLine(stmt.String(), start)
	}
	return Command{}, io.EOF
}

// stripComment removes a `$$` comment that is not inside quotes.
func stripComment(s string) string {
	var quote rune
	for i, c := range s {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '$' && strings.HasPrefix(s[i:], "$$"):
			return s[:i]
		}
	}
	return s
}

// ParseLine parses one complete statement.
func ParseLine(text string, line int) (Command, error) {
	raw := strings.TrimSpace(text)
	if raw == "" {
		return Command{}, errors.APTParseError(line, text, "empty statement")
	}

	head, rest, hasSlash := strings.Cut(raw, "/")
	head = strings.TrimSpace(head)

	// PARTNO and friends also appear without a slash: PARTNO BRACKET 12
	if !hasSlash {
		if word, tail, ok := strings.Cut(head, " "); ok && textMajors[strings.ToUpper(word)] {
			head, rest, hasSlash = word, tail, true
		}
	}

	major := strings.ToUpper(head)
	if !isWord(major) {
		return Command{}, errors.APTParseError(line, raw, "invalid major word")
	}
	if !hasSlash {
		return fromParams(major, nil, line, raw), nil
	}

	if textMajors[major] {
		text := strings.TrimSpace(rest)
		return fromParams(major, []param{{kind: kindString, word: unquote(text)}}, line, raw), nil
	}

	items, err := splitParams(rest)
	if err != nil {
		return Command{}, errors.APTParseError(line, raw, err.Error())
	}
	params := make([]param, 0, len(items))
	for _, item := range items {
		p, err := parseParam(item)
		if err != nil {
			return Command{}, errors.APTParseError(line, raw, err.Error())
		}
		params = append(params, p)
	}
	return fromParams(major, params, line, raw), nil
}

// splitParams splits on commas outside quotes and parentheses.
func splitParams(s string) ([]string, error) {
	var items []string
	var cur strings.Builder
	var quote rune
	depth := 0
	for _, c := range s {
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case c == '\'' || c == '"':
			quote = c
		case c == '(':
			depth++
		case c == ')':
			if depth == 0 {
				return nil, fmt.Errorf("unbalanced ')'")
			}
			depth--
		case c == ',' && depth == 0:
			items = append(items, strings.TrimSpace(cur.String()))
			cur.Reset()
			continue
		}
		cur.WriteRune(c)
	}
	if quote != 0 {
		return nil, fmt.Errorf("unterminated string")
	}
	if depth != 0 {
		return nil, fmt.Errorf("unbalanced '('")
	}
	items = append(items, strings.TrimSpace(cur.String()))
	if len(items) == 1 && items[0] == "" {
		return nil, nil
	}
	for i, item := range items {
		if item == "" {
			return nil, fmt.Errorf("empty parameter %d", i+1)
		}
	}
	return items, nil
}

func parseParam(item string) (param, error) {
	if c := item[0]; c == '\'' || c == '"' {
		return param{kind: kindString, word: unquote(item)}, nil
	}
	if looksNumeric(item) {
		v, err := strconv.ParseFloat(item, 64)
		if err != nil {
			return param{}, fmt.Errorf("invalid number %q", item)
		}
		return param{kind: kindNumber, num: v}, nil
	}
	word := strings.ToUpper(item)
	if !isWord(strings.ReplaceAll(word, " ", "")) {
		return param{}, fmt.Errorf("invalid parameter %q", item)
	}
	return param{kind: kindWord, word: word}, nil
}

func looksNumeric(s string) bool {
	c := s[0]
	return c == '-' || c == '+' || c == '.' || (c >= '0' && c <= '9')
}

func unquote(s string) string {
	if len(s) >= 2 {
		if q := s[0]; (q == '\'' || q == '"') && s[len(s)-1] == q {
			return s[1 : len(s)-1]
		}
	}
	return s
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		switch {
		case c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '_', c == '.', c == '-':
		default:
			return false
		}
	}
	return true
}
