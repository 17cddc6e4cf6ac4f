package dbstatic

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/link"
	"github.com/drpcorg/dbstatic/utils"
)

// aiFields is a cut down analog input: every value kind the cursor
// handles appears once.
func aiFields() []*FieldDesc {
	return []*FieldDesc{
		{Name: "NAME", Type: dbf.STRING, Prompt: "Record Name", Special: dbf.SPC_NOMOD},
		{Name: "DESC", Type: dbf.STRING, Size: 29, Prompt: "Descriptor", PromptGroup: dbf.GUI_COMMON},
		{Name: "SCAN", Type: dbf.MENU, MenuName: "menuScan", PromptGroup: dbf.GUI_SCAN, Special: dbf.SPC_SCAN},
		{Name: "DTYP", Type: dbf.DEVICE, PromptGroup: dbf.GUI_LINKS},
		{Name: "PHAS", Type: dbf.SHORT, PromptGroup: dbf.GUI_SCAN},
		{Name: "VAL", Type: dbf.DOUBLE, PromptGroup: dbf.GUI_INPUTS, ProcessPassive: true, ASL: dbf.ASL0},
		{Name: "INP", Type: dbf.INLINK, PromptGroup: dbf.GUI_INPUTS},
		{Name: "FLNK", Type: dbf.FWDLINK, PromptGroup: dbf.GUI_LINKS},
		{Name: "LINR", Type: dbf.MENU, MenuName: "menuLinr", PromptGroup: dbf.GUI_CONVERT},
		{Name: "EGUL", Type: dbf.DOUBLE, PromptGroup: dbf.GUI_CONVERT},
		{Name: "EGUH", Type: dbf.DOUBLE, Initial: "100", PromptGroup: dbf.GUI_CONVERT},
		{Name: "CALC", Type: dbf.STRING, Size: 40, Special: dbf.SPC_CALC, PromptGroup: dbf.GUI_CALC},
		{Name: "MASK", Type: dbf.ULONG, Base: dbf.HEX, PromptGroup: dbf.GUI_COMMON},
		{Name: "HOPR", Type: dbf.FLOAT, PromptGroup: dbf.GUI_DISPLAY},
		{Name: "CVAL", Type: dbf.CHAR, PromptGroup: dbf.GUI_COMMON},
		{Name: "UVAL", Type: dbf.UCHAR, PromptGroup: dbf.GUI_COMMON},
		{Name: "SVAL", Type: dbf.USHORT, PromptGroup: dbf.GUI_COMMON},
		{Name: "RVAL", Type: dbf.LONG},
		{Name: "SPTR", Type: dbf.NOACCESS, Extra: "void *sptr"},
	}
}

func boFields() []*FieldDesc {
	return []*FieldDesc{
		{Name: "NAME", Type: dbf.STRING},
		{Name: "DESC", Type: dbf.STRING, Size: 29, PromptGroup: dbf.GUI_COMMON},
		{Name: "DTYP", Type: dbf.DEVICE, PromptGroup: dbf.GUI_LINKS},
		{Name: "VAL", Type: dbf.ENUM, PromptGroup: dbf.GUI_OUTPUT},
		{Name: "OUT", Type: dbf.OUTLINK, PromptGroup: dbf.GUI_OUTPUT},
	}
}

func newTestBase(t *testing.T) *Base {
	t.Helper()
	b := NewBase(Options{Logger: utils.NopLogger()})
	require.NoError(t, b.AddMenu(NewMenu("menuScan",
		Choice{"menuScanPassive", "Passive"},
		Choice{"menuScan1_second", "1 second"},
		Choice{"menuScanI_O_Intr", "I/O Intr"},
	)))
	require.NoError(t, b.AddMenu(NewMenu("menuLinr",
		Choice{"menuLinrNO_CONVERSION", "NO CONVERSION"},
		Choice{"menuLinrSLOPE", "SLOPE"},
		Choice{"menuLinrLINEAR", "LINEAR"},
	)))
	require.NoError(t, b.AddRecordType(NewRecordType("ai", aiFields()...)))
	require.NoError(t, b.AddRecordType(NewRecordType("bo", boFields()...)))
	require.NoError(t, b.AddDevice("ai", link.CONSTANT, "devAiSoft", "Soft Channel"))
	require.NoError(t, b.AddDevice("ai", link.VME_IO, "devAiXy566Se", "XY566SE"))
	require.NoError(t, b.AddDevice("ai", link.CAMAC_IO, "devAiCamac", "Camac"))
	require.NoError(t, b.AddDriver("drvXy566"))
	require.NoError(t, b.AddBreakTable(&BreakTable{Name: "typeKdegF", Points: []BreakPoint{
		{Raw: 0, Eng: 32}, {Raw: 4095, Eng: 1832},
	}}))
	return b
}

// createRecord makes a record of typeName and leaves the entry on it.
func createRecord(t *testing.T, e *Entry, typeName, name string) {
	t.Helper()
	require.NoError(t, e.FindRecordType(typeName))
	require.NoError(t, e.CreateRecord(name))
}

// put sets rec.FIELD through a scratch entry.
func put(t *testing.T, b *Base, name, value string) {
	t.Helper()
	e := NewEntry(b)
	defer e.Finish()
	require.NoError(t, e.FindRecord(name))
	require.NoError(t, e.PutString(value), e.Message())
}

func get(t *testing.T, b *Base, name string) string {
	t.Helper()
	e := NewEntry(b)
	defer e.Finish()
	require.NoError(t, e.FindRecord(name))
	v, err := e.GetString()
	require.NoError(t, err)
	return v
}
