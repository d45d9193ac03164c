// NC block writer
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package nc

import (
	"io"
	"sort"
	"strconv"
	"strings"

	"aptpost/pkg/errors"
)

// DefaultOrder is the canonical register order inside a block.
var DefaultOrder = []string{"X", "Y", "Z", "I", "J", "K", "R", "A", "B", "C", "F", "S"}

// CommentStyle selects how comments are framed.
type CommentStyle int

const (
	CommentParens    CommentStyle = iota // (TEXT)
	CommentSemicolon                     // ; TEXT
)

// Options configures a Writer.
type Options struct {
	Order     []string
	Separator string

	Numbering      bool
	BlockStart     int
	BlockIncrement int
	BlockWord      string

	Comments      CommentStyle
	CommentUpper  bool
	Transliterate bool
}

// DefaultOptions returns single-space separated, unnumbered output with
// parenthesised comments.
func DefaultOptions() Options {
	return Options{
		Order:          DefaultOrder,
		Separator:      " ",
		BlockStart:     1,
		BlockIncrement: 1,
		BlockWord:      "N",
	}
}

// Writer collects literals and shown registers into one block and emits
// it on Flush. It is not safe for concurrent use.
type Writer struct {
	out  io.Writer
	regs *Registers
	opts Options
	rank map[string]int

	literals []string
	pending  []string
	shown    map[string]bool

	seq   int
	lines int
}

// NewWriter creates a block writer over out using regs as register store.
func NewWriter(out io.Writer, regs *Registers, opts Options) *Writer {
	if len(opts.Order) == 0 {
		opts.Order = DefaultOrder
	}
	if opts.Separator == "" {
		opts.Separator = " "
	}
	if opts.BlockIncrement == 0 {
		opts.BlockIncrement = 1
	}
	rank := make(map[string]int, len(opts.Order))
	for i, name := range opts.Order {
		rank[strings.ToUpper(name)] = i
	}
	return &Writer{
		out:   out,
		regs:  regs,
		opts:  opts,
		rank:  rank,
		shown: make(map[string]bool),
		seq:   opts.BlockStart,
	}
}

// Registers returns the store the writer reads from.
func (w *Writer) Registers() *Registers { return w.regs }

// Show adds registers to the pending block. A shown register that is not
// dirty at flush time is left out.
func (w *Writer) Show(names ...string) {
	for _, name := range names {
		name = strings.ToUpper(name)
		if w.shown[name] {
			continue
		}
		w.shown[name] = true
		w.pending = append(w.pending, name)
	}
}

// Write appends literal words ahead of the register words.
func (w *Writer) Write(words ...string) {
	for _, word := range words {
		if word = strings.TrimSpace(word); word != "" {
			w.literals = append(w.literals, word)
		}
	}
}

// Pending reports whether a Flush would emit a line.
func (w *Writer) Pending() bool {
	if len(w.literals) > 0 {
		return true
	}
	for _, name := range w.pending {
		if w.regs.IsDirty(name) {
			return true
		}
	}
	return false
}

// Discard drops the pending block without emitting it.
func (w *Writer) Discard() {
	w.literals = w.literals[:0]
	w.pending = w.pending[:0]
	for k := range w.shown {
		delete(w.shown, k)
	}
}

// Flush emits the pending block. It reports false when there was nothing
// to emit; no empty line is written in that case.
func (w *Writer) Flush() (bool, error) {
	defer w.Discard()

	words := make([]string, 0, len(w.literals)+len(w.pending))
	words = append(words, w.literals...)

	var emitted []*Register
	for _, name := range w.ordered() {
		r := w.regs.Register(name)
		if !r.Dirty() {
			continue
		}
		words = append(words, r.Word())
		emitted = append(emitted, r)
	}
	if len(words) == 0 {
		return false, nil
	}

	if err := w.emit(strings.Join(words, w.opts.Separator), true); err != nil {
		return false, err
	}
	for _, r := range emitted {
		r.dirty = false
	}
	return true, nil
}

// ordered returns pending registers in canonical order; names outside the
// order follow in show order.
func (w *Writer) ordered() []string {
	known := make([]string, 0, len(w.pending))
	var extra []string
	for _, name := range w.pending {
		if _, ok := w.rank[name]; ok {
			known = append(known, name)
		} else {
			extra = append(extra, name)
		}
	}
	sort.SliceStable(known, func(i, j int) bool {
		return w.rank[known[i]] < w.rank[known[j]]
	})
	return append(known, extra...)
}

// Line emits text as a numbered block, bypassing the register model.
func (w *Writer) Line(text string) error {
	if strings.TrimSpace(text) == "" {
		return nil
	}
	return w.emit(text, true)
}

// Raw emits text unnumbered, e.g. program start markers.
func (w *Writer) Raw(text string) error {
	return w.emit(text, false)
}

// Comment emits a stand-alone comment in the configured style.
func (w *Writer) Comment(text string) error {
	text = strings.TrimSpace(text)
	if w.opts.Transliterate {
		text = Transliterate(text)
	}
	if w.opts.CommentUpper {
		text = strings.ToUpper(text)
	}
	if w.opts.Comments == CommentSemicolon {
		return w.emit("; "+text, false)
	}
	text = strings.NewReplacer("(", "[", ")", "]").Replace(text)
	return w.emit("("+text+")", false)
}

// SetNumbering switches block numbers on or off.
func (w *Writer) SetNumbering(on bool) {
	w.opts.Numbering = on
}

// Numbering reports whether block numbers are written.
func (w *Writer) Numbering() bool { return w.opts.Numbering }

// Lines returns the number of lines emitted so far.
func (w *Writer) Lines() int { return w.lines }

func (w *Writer) emit(text string, numbered bool) error {
	if numbered && w.opts.Numbering {
		text = w.opts.BlockWord + strconv.Itoa(w.seq) + w.opts.Separator + text
		w.seq += w.opts.BlockIncrement
	}
	if _, err := io.WriteString(w.out, text+"\n"); err != nil {
		return errors.OutputError(err)
	}
	w.lines++
	return nil
}
