package apt

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewCommand(t *testing.T) {
	minors := []string{"ccw", "xyplan"}
	numbers := []float64{10, 0, 0, 5}
	c := NewCommand("circle", minors, numbers)

	minors[0] = "changed"
	numbers[0] = 99

	assert.Equal(t, "CIRCLE", c.Major())
	assert.Equal(t, []string{"CCW", "XYPLAN"}, c.Minors())
	assert.Equal(t, 10.0, c.Number(0, -1), "inputs are copied")
	assert.Equal(t, 4, c.NumberCount())
	assert.Equal(t, "CIRCLE/CCW,XYPLAN,10,0,0,5", c.Raw())
	assert.Equal(t, 0, c.Line())
}

func TestCommandAccessorsCopy(t *testing.T) {
	c := NewCommand("GOTO", nil, []float64{1, 2, 3})
	nums := c.Numbers()
	nums[0] = 42
	assert.Equal(t, 1.0, c.Number(0, 0))

	c = NewCommand("SPINDL", []string{"CLW"}, nil)
	m := c.Minors()
	m[0] = "OFF"
	assert.True(t, c.HasMinor("CLW"))
}

func TestNumberDefaults(t *testing.T) {
	c := NewCommand("GOTO", nil, []float64{1, 2})
	assert.Equal(t, 2.0, c.Number(1, 0))
	assert.Equal(t, 0.0, c.Number(2, 0))
	assert.Equal(t, 7.5, c.Number(-1, 7.5))
}

func TestMinorLookup(t *testing.T) {
	c := NewCommand("COOLNT", []string{"MIST", "ON"}, nil)
	assert.True(t, c.HasMinor("flood", "mist"))
	assert.False(t, c.HasMinor("THRU"))
	assert.Equal(t, 1, c.MinorIndex("on"))
	assert.Equal(t, -1, c.MinorIndex("OFF"))
}

func TestNumberAfter(t *testing.T) {
	c, err := ParseLine("SPINDL/RPM,1200,CLW,MAXRPM,8000", 3)
	require.NoError(t, err)

	assert.Equal(t, 1200.0, c.NumberAfter("rpm", 0))
	assert.Equal(t, 8000.0, c.NumberAfter("MAXRPM", 0))
	assert.Equal(t, -1.0, c.NumberAfter("CLW", -1), "CLW is followed by a word")
	assert.Equal(t, -1.0, c.NumberAfter("SFM", -1))
}

func TestStringParams(t *testing.T) {
	c, err := ParseLine("PPRINT/'ROUGH POCKET'", 1)
	require.NoError(t, err)
	assert.Equal(t, "ROUGH POCKET", c.String(0, ""))
	assert.Equal(t, "none", c.String(1, "none"))
	assert.Equal(t, "ROUGH POCKET", c.Text())
}
