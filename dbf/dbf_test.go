package dbf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestType_Tokens(t *testing.T) {
	for ft := STRING; ft < NTYPES; ft++ {
		got, ok := ParseType(ft.String())
		assert.True(t, ok)
		assert.Equal(t, ft, got)
	}
	_, ok := ParseType("DBF_BOGUS")
	assert.False(t, ok)
	assert.Equal(t, "DBF_99", Type(99).String())
	assert.Equal(t, "ULONG:", ULONG.RangeName())
	assert.Equal(t, "", NOACCESS.RangeName())
}

func TestType_Classes(t *testing.T) {
	assert.True(t, FWDLINK.IsLink())
	assert.False(t, DEVICE.IsLink())
	assert.True(t, ENUM.IsNumeric())
	assert.False(t, MENU.IsNumeric())
	assert.True(t, ENUM.IsUnsigned())
	assert.True(t, DEVICE.IsChoice())
	assert.Equal(t, DCT_INTEGER, ENUM.DCT())
	assert.Equal(t, DCT_MENUFORM, DEVICE.DCT())
	assert.Equal(t, DCT_REAL, FLOAT.DCT())
	assert.Equal(t, DCT_NOACCESS, NTYPES.DCT())
}

func TestAttributes(t *testing.T) {
	s, ok := ParseSpecial("SPC_CALC")
	assert.True(t, ok)
	assert.Equal(t, SPC_CALC, s)
	s, ok = ParseSpecial("104")
	assert.True(t, ok)
	assert.Equal(t, "104", s.String())
	_, ok = ParseSpecial("SPC_NONE")
	assert.False(t, ok)

	g, ok := ParseGuiGroup("GUI_SCAN")
	assert.True(t, ok)
	assert.Equal(t, "GUI_SCAN", g.String())
	_, ok = ParseGuiGroup("")
	assert.False(t, ok)

	b, ok := ParseBase("HEX")
	assert.True(t, ok)
	assert.Equal(t, HEX, b)

	var zero ASL
	assert.Equal(t, ASL1, zero)
	a, ok := ParseASL("ASL0")
	assert.True(t, ok)
	assert.Equal(t, "ASL0", a.String())
	_, ok = ParseASL("ASL2")
	assert.False(t, ok)
}
