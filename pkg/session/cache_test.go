package session

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptpost/pkg/nc"
)

func TestStateCacheChanged(t *testing.T) {
	c := NewStateCache()
	assert.True(t, c.Changed("coolant", "M8"))
	assert.False(t, c.Changed("coolant", "M8"))
	assert.True(t, c.Changed("coolant", "M9"))

	assert.True(t, c.Changed("rpm", 1200.0))
	assert.False(t, c.Changed("rpm", 1200.0000001))
	assert.True(t, c.Changed("rpm", 1200.01))

	c.Forget("coolant")
	assert.True(t, c.Changed("coolant", "M9"))

	c.Reset()
	assert.True(t, c.Changed("rpm", 1200.01))
}

func TestCycleCache(t *testing.T) {
	var buf bytes.Buffer
	w := nc.NewWriter(&buf, nc.NewRegisters(nil), nc.DefaultOptions())
	c := NewCycleCache(true)

	full, err := c.Emit(w, "CYCLE81", []string{"10", "0", "2", "-5"})
	require.NoError(t, err)
	assert.True(t, full)

	full, err = c.Emit(w, "CYCLE81", []string{"10", "0", "2", "-5"})
	require.NoError(t, err)
	assert.False(t, full)

	full, err = c.Emit(w, "CYCLE81", []string{"10", "0", "2", "-8"})
	require.NoError(t, err)
	assert.True(t, full)

	c.Reset()
	full, err = c.Emit(w, "CYCLE81", []string{"10", "0", "2", "-8"})
	require.NoError(t, err)
	assert.True(t, full)

	assert.Equal(t,
		"CYCLE81(10,0,2,-5)\nCYCLE81\nCYCLE81(10,0,2,-8)\nCYCLE81(10,0,2,-8)\n",
		buf.String())
}

func TestCycleCacheDisabled(t *testing.T) {
	var buf bytes.Buffer
	w := nc.NewWriter(&buf, nc.NewRegisters(nil), nc.DefaultOptions())
	c := NewCycleCache(false)
	assert.False(t, c.Enabled())

	for i := 0; i < 2; i++ {
		full, err := c.Emit(w, "CYCLE83", []string{"1"})
		require.NoError(t, err)
		assert.True(t, full)
	}
	assert.Equal(t, "CYCLE83(1)\nCYCLE83(1)\n", buf.String())
}

type brokenSink struct{}

func (brokenSink) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestCycleCacheWriteError(t *testing.T) {
	w := nc.NewWriter(brokenSink{}, nc.NewRegisters(nil), nc.DefaultOptions())
	c := NewCycleCache(true)

	_, err := c.Emit(w, "CYCLE81", []string{"1"})
	require.Error(t, err)

	c.SetEnabled(true)
	var buf bytes.Buffer
	w = nc.NewWriter(&buf, nc.NewRegisters(nil), nc.DefaultOptions())
	full, err := c.Emit(w, "CYCLE81", []string{"1"})
	require.NoError(t, err)
	assert.True(t, full, "a failed write must not be remembered")
}
