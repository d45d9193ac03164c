package apt

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"aptpost/pkg/errors"
)

func readAll(t *testing.T, src string) ([]Command, []error) {
	t.Helper()
	r := NewReader(strings.NewReader(src))
	var cmds []Command
	var errs []error
	for {
		c, err := r.Next()
		if err == io.EOF {
			return cmds, errs
		}
		if err != nil {
			errs = append(errs, err)
			continue
		}
		cmds = append(cmds, c)
	}
}

func TestReaderBasic(t *testing.T) {
	src := `$$ generated by CAM
PARTNO BRACKET 12
LOADTL/5
SPINDL/RPM,1200,CLW
GOTO/10.5,-2,3   $$ approach
FINI
`
	cmds, errs := readAll(t, src)
	require.Empty(t, errs)
	require.Len(t, cmds, 5)

	assert.Equal(t, "PARTNO", cmds[0].Major())
	assert.Equal(t, "BRACKET 12", cmds[0].Text())
	assert.Equal(t, 2, cmds[0].Line())

	assert.Equal(t, "LOADTL", cmds[1].Major())
	assert.Equal(t, 5.0, cmds[1].Number(0, 0))

	assert.Equal(t, []string{"RPM", "CLW"}, cmds[2].Minors())
	assert.Equal(t, []float64{10.5, -2, 3}, cmds[3].Numbers())
	assert.Equal(t, "GOTO/10.5,-2,3", cmds[3].Raw())

	assert.Equal(t, "FINI", cmds[4].Major())
	assert.Equal(t, 0, cmds[4].NumberCount())
}

func TestReaderContinuation(t *testing.T) {
	src := "CIRCLE/10,0,0,$\n$$ comment inside\n   5,0,0,$\n  0,0,1\nEND\n"
	cmds, errs := readAll(t, src)
	require.Empty(t, errs)
	require.Len(t, cmds, 2)

	assert.Equal(t, []float64{10, 0, 0, 5, 0, 0, 0, 0, 1}, cmds[0].Numbers())
	assert.Equal(t, 1, cmds[0].Line(), "continued statements report their first line")
	assert.Equal(t, 5, cmds[1].Line())
}

func TestReaderContinuationAtEOF(t *testing.T) {
	cmds, errs := readAll(t, "GOTO/1,2,$\n3")
	require.Empty(t, errs)
	require.Len(t, cmds, 1)
	assert.Equal(t, 3, cmds[0].NumberCount())
}

func TestReaderRecoversFromBadLine(t *testing.T) {
	src := "GOTO/1,2,3\nGOTO/1,,3\nFEDRAT/250\n"
	cmds, errs := readAll(t, src)
	require.Len(t, errs, 1)
	require.Len(t, cmds, 2)

	assert.True(t, errors.Is(errs[0], errors.ErrAPTParse))
	assert.True(t, errors.Recoverable(errs[0]))
	assert.Contains(t, errs[0].Error(), "@2")
	assert.Equal(t, "FEDRAT", cmds[1].Major())
}

func TestParseLine(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		major   string
		minors  []string
		numbers []float64
		strs    []string
	}{
		{"bare", "fini", "FINI", nil, nil, nil},
		{"spaces", " GOTO / 1 , 2 , 3 ", "GOTO", nil, []float64{1, 2, 3}, nil},
		{"mixed", "COOLNT/flood", "COOLNT", []string{"FLOOD"}, nil, nil},
		{"exponent", "FEDRAT/2.5E+2", "FEDRAT", nil, []float64{250}, nil},
		{"quoted", `INSERT/"G54"`, "INSERT", nil, nil, []string{"G54"}},
		{"text keeps commas", "PPRINT/ROUGH, FINISH", "PPRINT", nil, nil, []string{"ROUGH, FINISH"}},
		{"quote in params", "CYCLE/'A,B',1", "CYCLE", nil, []float64{1}, []string{"A,B"}},
		{"dot number", "GOTO/.5,-.25,+1", "GOTO", nil, []float64{0.5, -0.25, 1}, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, err := ParseLine(tt.in, 1)
			require.NoError(t, err)
			assert.Equal(t, tt.major, c.Major())
			assert.Equal(t, tt.minors, c.Minors())
			assert.Equal(t, tt.numbers, c.Numbers())
			for i, s := range tt.strs {
				assert.Equal(t, s, c.String(i, ""))
			}
		})
	}
}

func TestParseLineErrors(t *testing.T) {
	for _, in := range []string{
		"",
		"/1,2",
		"GO TO/1",
		"GOTO/1,(2",
		"GOTO/1),2",
		"CYCLE/'open",
		"GOTO/1.2.3",
		"GOTO/a#b",
	} {
		_, err := ParseLine(in, 9)
		if err == nil {
			t.Errorf("ParseLine(%q) succeeded, want error", in)
			continue
		}
		if !errors.Is(err, errors.ErrAPTParse) {
			t.Errorf("ParseLine(%q) error code = %s", in, errors.CodeOf(err))
		}
	}
}

func TestStripComment(t *testing.T) {
	assert.Equal(t, "GOTO/1 ", stripComment("GOTO/1 $$ move"))
	assert.Equal(t, "PPRINT/'cost $$5'", stripComment("PPRINT/'cost $$5'"))
	assert.Equal(t, "GOTO/1,$", stripComment("GOTO/1,$"))
}
