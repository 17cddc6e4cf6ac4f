package link

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
)

func TestFormFor(t *testing.T) {
	pv := New(PV_LINK)
	for ft, want := range map[dbf.Type]Form{
		dbf.INLINK: FormInLink, dbf.OUTLINK: FormOutLink, dbf.FWDLINK: FormFwdLink,
	} {
		f, err := FormFor(pv, ft)
		assert.NoError(t, err)
		assert.Equal(t, want, f)
	}
	_, err := FormFor(pv, dbf.STRING)
	assert.ErrorIs(t, err, dbstatic_errors.ErrBadLink)

	f, _ := FormFor(New(CAMAC_IO), dbf.INLINK)
	assert.Equal(t, 6, f.Lines())
	f, _ = FormFor(New(VXI_IO), dbf.INLINK)
	assert.Equal(t, "     Dynamic?", f.Prompts()[0])
	assert.Nil(t, formCount.Prompts())
}

func TestForm_Hardware(t *testing.T) {
	l := New(CONSTANT)
	require.NoError(t, l.Put("#L1 N2 P3 S4 @p", dbf.INLINK))
	f, err := FormFor(l, dbf.INLINK)
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2", "3", "4", "@p"}, l.FormValues(f))

	check, err := l.PutForm(f, []string{"5", "6", "7", "8", "no parm"})
	require.NoError(t, err)
	assert.Equal(t, []string{"", "", "", "", ""}, check)
	assert.Equal(t, "#L5 N6 P7 S8 @", l.String())

	_, err = l.PutForm(f, []string{"1"})
	assert.ErrorIs(t, err, dbstatic_errors.ErrBadField)
}

func TestForm_VXI(t *testing.T) {
	l := New(VXI_IO)
	f, _ := FormFor(l, dbf.INLINK)
	assert.Equal(t, []string{"No", "0", "0", "0", "0", "@"}, l.FormValues(f))

	check, err := l.PutForm(f, []string{"Yes", "1", "2", "0", "3", "@p"})
	require.NoError(t, err)
	assert.Equal(t, make([]string, 6), check)
	assert.Equal(t, "#V1 C2 S3 @p", l.String())

	check, _ = l.VerifyForm(f, []string{"no", "1", "2", "x", "3", "@p"})
	assert.Equal(t, "Illegal. Must be number", check[3])
	assert.Equal(t, "#V1 C2 S3 @p", l.String())
}

func TestForm_ConstantAndPV(t *testing.T) {
	l := NewConstant("")
	check, err := l.PutForm(FormConstant, []string{""})
	require.NoError(t, err)
	assert.Equal(t, []string{""}, check)
	assert.Equal(t, "0", l.String())

	_, _ = l.PutForm(FormOutLink, []string{"x", "PP", "MS"})
	assert.Equal(t, PV_LINK, l.Type)
	assert.Equal(t, []string{"x", "PP", "MS"}, l.FormValues(FormOutLink))
	assert.Equal(t, []string{"x"}, l.FormValues(FormFwdLink))

	_, _ = l.PutForm(FormFwdLink, []string{"y"})
	assert.Equal(t, "y NPP NMS", l.String())
	_, err = l.PutForm(formCount, nil)
	assert.ErrorIs(t, err, dbstatic_errors.ErrBadLink)
}
