// Block writer tests
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package nc

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestWriter(opts Options) (*Writer, *Registers, *bytes.Buffer) {
	var buf bytes.Buffer
	rs := NewRegisters(nil)
	return NewWriter(&buf, rs, opts), rs, &buf
}

func lines(buf *bytes.Buffer) []string {
	text := strings.TrimRight(buf.String(), "\n")
	if text == "" {
		return nil
	}
	return strings.Split(text, "\n")
}

func TestFlushModality(t *testing.T) {
	w, rs, buf := newTestWriter(DefaultOptions())

	rs.Set("X", 10)
	w.Show("X")
	_, err := w.Flush()
	require.NoError(t, err)

	rs.Set("X", 20)
	w.Show("X")
	emitted, err := w.Flush()
	require.NoError(t, err)
	assert.True(t, emitted)

	w.Show("X")
	emitted, err = w.Flush()
	require.NoError(t, err)
	assert.False(t, emitted, "unchanged register must not be emitted again")

	assert.Equal(t, []string{"X10.000", "X20.000"}, lines(buf))
}

func TestFlushForce(t *testing.T) {
	w, rs, buf := newTestWriter(DefaultOptions())

	rs.Set("Z", 5)
	w.Show("Z")
	_, err := w.Flush()
	require.NoError(t, err)

	rs.Force("Z")
	w.Show("Z")
	_, err = w.Flush()
	require.NoError(t, err)

	assert.Equal(t, []string{"Z5.000", "Z5.000"}, lines(buf))
}

func TestFlushFeedScenario(t *testing.T) {
	w, rs, buf := newTestWriter(DefaultOptions())

	rs.Set("F", 100)
	w.Show("F")
	_, err := w.Flush()
	require.NoError(t, err)

	w.Show("F")
	_, err = w.Flush()
	require.NoError(t, err)

	assert.Equal(t, []string{"F100.0"}, lines(buf))
}

func TestFlushCanonicalOrder(t *testing.T) {
	w, rs, buf := newTestWriter(DefaultOptions())

	for _, name := range []string{"F", "J", "Y", "X", "I", "S"} {
		rs.Set(name, 1)
	}
	w.Write("G2")
	w.Show("F", "J", "Y", "X", "I", "S", "Y")
	_, err := w.Flush()
	require.NoError(t, err)

	assert.Equal(t, []string{"G2 X1.000 Y1.000 I1.000 J1.000 F1.0 S1"}, lines(buf))
}

func TestFlushCustomOrder(t *testing.T) {
	opts := DefaultOptions()
	opts.Order = []string{"Z", "X"}
	w, rs, buf := newTestWriter(opts)

	rs.Set("X", 1)
	rs.Set("Z", 2)
	rs.Set("T", 4)
	w.Show("T", "X", "Z")
	_, err := w.Flush()
	require.NoError(t, err)

	assert.Equal(t, []string{"Z2.000 X1.000 T4"}, lines(buf))
}

func TestFlushEmpty(t *testing.T) {
	w, rs, buf := newTestWriter(DefaultOptions())

	emitted, err := w.Flush()
	require.NoError(t, err)
	assert.False(t, emitted)

	rs.Set("X", 0)
	w.Show("X")
	emitted, err = w.Flush()
	require.NoError(t, err)
	assert.False(t, emitted)

	assert.Empty(t, buf.String(), "empty flush must not write a blank line")
}

func TestFlushClearsPending(t *testing.T) {
	w, rs, buf := newTestWriter(DefaultOptions())

	rs.Set("X", 1)
	rs.Set("Y", 2)
	w.Show("X")
	_, err := w.Flush()
	require.NoError(t, err)

	assert.True(t, rs.IsDirty("Y"), "registers not shown stay dirty")
	assert.False(t, rs.IsDirty("X"))
	assert.False(t, w.Pending())

	w.Write("M5")
	_, err = w.Flush()
	require.NoError(t, err)
	assert.Equal(t, []string{"X1.000", "M5"}, lines(buf))
}

func TestDiscard(t *testing.T) {
	w, rs, buf := newTestWriter(DefaultOptions())

	rs.Set("X", 1)
	w.Write("G1")
	w.Show("X")
	assert.True(t, w.Pending())

	w.Discard()
	assert.False(t, w.Pending())
	assert.True(t, rs.IsDirty("X"))
	assert.Empty(t, buf.String())
}

func TestBlockNumbering(t *testing.T) {
	opts := DefaultOptions()
	opts.Numbering = true
	opts.BlockStart = 10
	opts.BlockIncrement = 10
	w, rs, buf := newTestWriter(opts)

	require.NoError(t, w.Comment("setup"))
	rs.Set("X", 1)
	w.Show("X")
	_, err := w.Flush()
	require.NoError(t, err)
	_, err = w.Flush()
	require.NoError(t, err)
	require.NoError(t, w.Line("M30"))
	require.NoError(t, w.Raw("%"))

	w.SetNumbering(false)
	require.NoError(t, w.Line("M2"))

	assert.Equal(t, []string{"(setup)", "N10 X1.000", "N20 M30", "%", "M2"}, lines(buf))
	assert.Equal(t, 5, w.Lines())
}

func TestCommentStyles(t *testing.T) {
	opts := DefaultOptions()
	w, _, buf := newTestWriter(opts)
	require.NoError(t, w.Comment("tool (d10)"))
	assert.Equal(t, "(tool [d10])\n", buf.String())

	opts.Comments = CommentSemicolon
	opts.CommentUpper = true
	w, _, buf = newTestWriter(opts)
	require.NoError(t, w.Comment("finish pass"))
	assert.Equal(t, "; FINISH PASS\n", buf.String())
}

func TestCommentTransliterate(t *testing.T) {
	opts := DefaultOptions()
	opts.Transliterate = true
	opts.CommentUpper = true
	w, _, buf := newTestWriter(opts)

	require.NoError(t, w.Comment("Фреза концевая"))
	assert.Equal(t, "(FREZA KONTSEVAYA)\n", buf.String())
}

type failingWriter struct{}

var errSinkClosed = errors.New("sink closed")

func (failingWriter) Write(p []byte) (int, error) { return 0, errSinkClosed }

func TestFlushOutputError(t *testing.T) {
	rs := NewRegisters(nil)
	w := NewWriter(failingWriter{}, rs, DefaultOptions())

	rs.Set("X", 3)
	w.Show("X")
	_, err := w.Flush()
	require.Error(t, err)
	assert.ErrorIs(t, err, errSinkClosed)
	assert.True(t, rs.IsDirty("X"), "failed flush keeps the register dirty")
}
