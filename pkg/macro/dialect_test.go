// Dialect handler set tests
//
// Copyright (C) 2026  Go Migration Team
//
// This file may be distributed under the terms of the GNU GPLv3 license.

package macro

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/suite"

	"aptpost/pkg/arc"
	"aptpost/pkg/errors"
	"aptpost/pkg/session"
)

// DialectSuite runs small programs through each dialect set and compares
// the written blocks.
type DialectSuite struct {
	suite.Suite
	set *Set
	s   *session.Session
	buf *bytes.Buffer
}

func TestDialectSuite(t *testing.T) {
	suite.Run(t, new(DialectSuite))
}

func (ds *DialectSuite) use(dialect string) {
	set, err := ForDialect(dialect)
	ds.Require().NoError(err)
	ds.set = set
	ds.s, ds.buf = newSession(ds.T(), dialect)
}

func (ds *DialectSuite) run(stmts ...string) {
	run(ds.T(), ds.set, ds.s, stmts...)
}

func (ds *DialectSuite) take() []string {
	out := lines(ds.buf)
	ds.buf.Reset()
	return out
}

func (ds *DialectSuite) TestFanucProgram() {
	ds.use("fanuc")
	ds.run("INIT", "FEDRAT/300", "GOTO/0,0,0")
	ds.Equal([]string{"%", "O0001", "G17 G21 G40 G49 G80", "G01 X0. Y0. Z0. F300."}, ds.take())

	ds.run("CIRCLE/10,0,0,5,CCLW")
	ds.Equal([]string{"G03 X10. Y0. R5."}, ds.take())

	ds.run("GOHOME/Z")
	ds.Equal([]string{"G91 G28 Z0", "G90"}, ds.take())

	ds.run("GOTO/10,0,5")
	ds.Equal([]string{"G01 Z5."}, ds.take(), "the motion word is restated after homing")
}

func (ds *DialectSuite) TestFanucLargeSweep() {
	ds.use("fanuc")
	ds.run("GOTO/0,0,0")
	ds.take()

	ds.run("CIRCLE/8,0,0,5,CLW")
	ds.Equal([]string{"G02 X8. Y0. R5."}, ds.take())

	ds.run("GOTO/0,0,0", "CIRCLE/8,0,0,5,CCLW")
	ds.Equal([]string{"G01 X0.", "G03 X8. Y0. I4. J-3."}, ds.take())
}

func (ds *DialectSuite) TestFanucRejectsLongChord() {
	ds.use("fanuc")
	err := dispatch(ds.T(), ds.set, ds.s, "CIRCLE/10,0,0,4")
	ds.True(errors.Is(err, errors.ErrArcGeometry))
	ds.Contains(err.Error(), "CIRCLE@7")
	ds.Empty(ds.take())
}

func (ds *DialectSuite) TestHaasSharesFanucHome() {
	ds.use("haas")
	ds.run("INIT", "LOADTL/2", "GOHOME")
	ds.Equal([]string{
		"%", "O00001", "G17 G20 G40 G49 G80 G90",
		"T2 M6", "G43 H2",
		"G91 G28 X0 Y0 Z0", "G90",
	}, ds.take())
}

func (ds *DialectSuite) TestLatheProgram() {
	ds.use("fanuc_lathe")
	ds.run("INIT", "TURRET/1", "SPINDL/RPM,800,CLW", "FEDRAT/0.2", "RAPID/50,2", "GOTO/50,-30")
	ds.Equal([]string{
		"%", "O0001", "G18 G21 G40 G80",
		"T0101", "(TURRET: T1 OFFSET: 1)",
		"M03 S800",
		"G00 X50. Z2.",
		"G01 Z-30. F0.2",
	}, ds.take())
	ds.Equal(arc.PlaneZX, ds.s.Plane())

	ds.run("CHUCK/UNCLAMP", "TAILSTK/ON", "CHUCK", "GOHOME", "DELAY/1", "TURRET/3,12", "GOTO/40,0,-30")
	ds.Equal([]string{
		"M11", "(CHUCK UNCLAMP)",
		"M20", "(TAILSTOCK FORWARD)",
		"M11", "(CHUCK UNCLAMP)",
		"G28 U0 W0",
		"G04 U1.0",
		"T0312", "(TURRET: T3 OFFSET: 12)",
		"G01 X40. Z-30.",
	}, ds.take())

	err := dispatch(ds.T(), ds.set, ds.s, "CHUCK/SIDEWAYS")
	ds.True(errors.Is(err, errors.ErrInvalidParam))

	ds.run("FINI")
	ds.Equal([]string{"G00 Z100.", "M05", "M09", "M30", "%"}, ds.take())
}

func (ds *DialectSuite) TestSiemensCyclesAndNumbering() {
	ds.use("siemens")
	ds.run("INIT", "PARTNO/bracket 12", "LOADTL/3,1500", "LOADTL/3")
	ds.Equal([]string{"N10 G17 G40 G90 G94 G71", "; BRACKET 12", "N20 T3 D1 M6 S1500"}, ds.take())

	ds.run("CYCLE81/10,0,2,-5", "CYCLE81/10,0,2,-5")
	ds.Equal([]string{"N30 CYCLE81(10,0,2,-5,0)", "N40 CYCLE81"}, ds.take())

	ds.run("SEQNO/OFF", "CYCLE83/10,0,2,-20", "LOADTL/4", "CYCLE81/10,0,2,-5")
	ds.Equal([]string{
		"CYCLE83(10,0,2,-20,0,0,0,0,0,0,1,0)",
		"T4 D1 M6",
		"CYCLE81(10,0,2,-5,0)",
	}, ds.take(), "a tool change drops cached cycle definitions")
}

func (ds *DialectSuite) TestSiemensCycleParameters() {
	ds.use("siemens")
	for _, stmt := range []string{"CYCLE81/10,0,2", "CYCLE81/1,2,3,4,5,6"} {
		err := dispatch(ds.T(), ds.set, ds.s, stmt)
		ds.True(errors.Is(err, errors.ErrInvalidParam), stmt)
	}
	ds.Error(dispatch(ds.T(), ds.set, ds.s, "SEQNO/MAYBE"))
	ds.Empty(ds.take())
}

func (ds *DialectSuite) TestSiemensThroughCoolant() {
	ds.use("siemens")
	ds.run("SEQNO/OFF", "COOLNT/THRU", "COOLNT/OFF")
	ds.Equal([]string{"M88", "M9"}, ds.take())
}

func (ds *DialectSuite) TestSiemensWorkingPlane() {
	ds.use("siemens")
	ds.run("SEQNO/OFF", "WPLANE/ZXPLAN", "WPLANE/ZXPLAN", "WPLANE/OFF", "WPLANE/17")
	ds.Equal([]string{"G18"}, ds.take(), "a disabled working plane is only remembered")
	ds.Equal(arc.PlaneZX, ds.s.Plane())

	ds.run("WPLANE/ON")
	ds.Equal([]string{"G17"}, ds.take())

	ds.s.Ctrl.Cycle800 = true
	ds.s.Regs.Set("A", 30)
	ds.run("WPLANE/ON")
	ds.Equal([]string{"CYCLE800(100.0,0.0,2.0,0,0,0,30.000,0.000,0.000)"}, ds.take())

	for _, stmt := range []string{"WPLANE/UVPLAN", "WPLANE/20"} {
		err := dispatch(ds.T(), ds.set, ds.s, stmt)
		ds.True(errors.Is(err, errors.ErrInvalidParam), stmt)
	}
}

func (ds *DialectSuite) TestHeidenhainProgram() {
	ds.use("heidenhain")
	ds.run("PARTNO/BRACKET", "INIT")
	ds.Equal([]string{"0 BEGIN PGM BRACKET MM", "; BRACKET"}, ds.take())

	ds.run("LOADTL/5,2000", "SPINDL/CLW")
	ds.Equal([]string{"1 TOOL CALL 5 Z S2000", "2 M3"}, ds.take())

	ds.run("RAPID", "GOTO/0,0,50", "FEDRAT/250", "GOTO/10,0,50")
	ds.Equal([]string{
		"3 L X+0.000 Y+0.000 Z+50.000 R0 FMAX",
		"4 L X+10.000 F250",
	}, ds.take())

	ds.run("CIRCLE/20,0,50,5,0,0,CLW")
	ds.Equal([]string{"5 CC X+15.000 Y+0.000", "6 C X+20.000 Y+0.000 DR-"}, ds.take())

	ds.run("FINI")
	ds.Equal([]string{
		"7 L Z+100.000 FMAX",
		"8 M5",
		"9 M9",
		"10 M30",
		"11 END PGM BRACKET MM",
	}, ds.take())
}

func (ds *DialectSuite) TestHeidenhainCompensationIsModal() {
	ds.use("heidenhain")
	ds.run("CUTCOM/LEFT", "GOTO/1,0,0", "GOTO/2,0,0", "CUTCOM/OFF", "GOTO/3,0,0")
	ds.Equal([]string{
		"0 L X+1.000 RL",
		"1 L X+2.000",
		"2 L X+3.000 R0",
	}, ds.take())
}

func (ds *DialectSuite) TestHeidenhainRapidWaitsForMove() {
	ds.use("heidenhain")
	ds.run("RAPID", "GOTO/0,0,0", "GOTO/0,0,50", "GOTO/0,0,40")
	ds.Equal([]string{"0 L Z+50.000 R0 FMAX", "1 L Z+40.000"}, ds.take())
}

func (ds *DialectSuite) TestHeidenhainSpindleSpeed() {
	ds.use("heidenhain")
	ds.run("SPINDL/RPM,1000", "LOADTL/1", "SPINDL/RPM,1500,CCLW", "SPINDL/RPM,1500")
	ds.Equal([]string{
		"0 M3",
		"1 TOOL CALL 1 Z S1000",
		"2 TOOL CALL Z S1500",
		"3 M4",
		"4 M4",
	}, ds.take())
}

func (ds *DialectSuite) TestHeidenhainDwellAndHome() {
	ds.use("heidenhain")
	ds.run("DELAY/1.5", "GOHOME/Z")
	ds.Equal([]string{
		"0 CYCL DEF 9.0 DWELL TIME",
		"1 CYCL DEF 9.1 DWELL 1.5",
		"2 L Z+0.000 R0 FMAX M91",
	}, ds.take())
}

func (ds *DialectSuite) TestHeidenhainPlaneSelectsToolAxis() {
	ds.use("heidenhain")
	ds.run("PLANE/YZ", "LOADTL/2")
	ds.Equal([]string{"0 TOOL CALL 2 X"}, ds.take())
}
