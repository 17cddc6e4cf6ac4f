package repl

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/dbd"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/store"
	testutils "github.com/drpcorg/dbstatic/test_utils"
	"github.com/drpcorg/dbstatic/utils"
)

func newTestREPL(t *testing.T) (*REPL, *bytes.Buffer) {
	b := dbstatic.NewBase(dbstatic.Options{Logger: utils.NopLogger()})
	require.NoError(t, dbd.Load(b, strings.NewReader(testutils.Schema), "schema.dbd"))
	require.NoError(t, dbd.Load(b, strings.NewReader(testutils.Records), "records.db"))
	out := &bytes.Buffer{}
	repl := New(dbstatic.NewGuard(b), nil)
	repl.Out = out
	return repl, out
}

// run executes line and returns what it printed.
func run(t *testing.T, repl *REPL, out *bytes.Buffer, line string) string {
	out.Reset()
	require.NoError(t, repl.Execute(context.Background(), line), line)
	return out.String()
}

func TestFields(t *testing.T) {
	assert.Equal(t, []string{"dbpf", "r.DESC", "two words"}, Fields(`dbpf r.DESC "two words"`))
	assert.Equal(t, []string{"dbpf", "r.DESC", ""}, Fields(`dbpf  r.DESC ""`))
	assert.Equal(t, []string{"a", "b"}, Fields("\ta \t b\n"))
	assert.Nil(t, Fields("   "))
}

func TestREPL_Dispatch(t *testing.T) {
	repl, out := newTestREPL(t)
	ctx := context.Background()

	assert.NoError(t, repl.Execute(ctx, "  "))
	assert.ErrorIs(t, repl.Execute(ctx, "frobnicate"), ErrUnknownCommand)
	assert.Equal(t, io.EOF, repl.Execute(ctx, "exit"))
	assert.Equal(t, io.EOF, repl.Execute(ctx, "quit"))
	assert.Equal(t, HelpGet, repl.Execute(ctx, "dbgf"))
	assert.Equal(t, HelpCreate, repl.Execute(ctx, "create ai"))
	assert.Equal(t, HelpCopy, repl.Execute(ctx, "copy a b --force"))
	assert.Equal(t, HelpDump, repl.Execute(ctx, "dump nothing"))

	help := run(t, repl, out, "help")
	assert.Contains(t, help, HelpCreate.Error())
	assert.Contains(t, help, HelpDump.Error())
}

func TestREPL_List(t *testing.T) {
	repl, out := newTestREPL(t)
	assert.Equal(t, "tank:level\ntank:temp\n", run(t, repl, out, "dbl ai"))
	assert.Equal(t, "tank:level\ntank:temp\nvalve:open\n", run(t, repl, out, "dbl"))
	assert.ErrorIs(t, repl.Execute(context.Background(), "dbl calc"), dbstatic_errors.ErrRecordTypeNotFound)
}

func TestREPL_GetPut(t *testing.T) {
	repl, out := newTestREPL(t)
	ctx := context.Background()

	assert.Equal(t, "tank level\n", run(t, repl, out, "dbgf tank:level.DESC"))
	assert.Equal(t, "0xff\n", run(t, repl, out, "dbgf tank:temp.MASK"))
	assert.Equal(t, "level of the tank\n", run(t, repl, out, `dbpf tank:level.DESC "level of the tank"`))
	assert.Equal(t, "level of the tank\n", run(t, repl, out, "dbgf tank:level.DESC"))
	assert.Equal(t, "5\n", run(t, repl, out, "dbpf tank:level.EGUL 5"))
	assert.Equal(t, "1 second\n", run(t, repl, out, "dbgf tank:level.SCAN"))

	assert.ErrorIs(t, repl.Execute(ctx, "dbpf tank:level.EGUL five"), dbstatic_errors.ErrBadField)
	assert.Equal(t, "5\n", run(t, repl, out, "dbgf tank:level.EGUL"))
	assert.ErrorIs(t, repl.Execute(ctx, "dbgf nowhere.VAL"), dbstatic_errors.ErrRecNotFound)
	assert.ErrorIs(t, repl.Execute(ctx, "dbgf tank:level.NOPE"), dbstatic_errors.ErrFieldNotFound)

	assert.Equal(t, "ok\n", run(t, repl, out, "verify tank:level.EGUL 7"))
	assert.NotEqual(t, "ok\n", run(t, repl, out, "verify tank:level.EGUL seven"))
	assert.Equal(t, "5\n", run(t, repl, out, "dbgf tank:level.EGUL"))
}

func TestREPL_Print(t *testing.T) {
	repl, out := newTestREPL(t)

	full := run(t, repl, out, "dbpr tank:temp")
	assert.Contains(t, full, "CALC: A+B*2\n")
	assert.Contains(t, full, "MASK: 0xff\n")
	assert.Contains(t, full, "EGUH: 100\n")
	assert.NotContains(t, full, "RVAL")

	short := run(t, repl, out, "dbpr tank:temp 0")
	assert.Contains(t, short, "CALC: A+B*2\n")
	assert.NotContains(t, short, "EGUH")

	all := run(t, repl, out, "dbpr tank:temp 2")
	assert.Contains(t, all, "RVAL: 0\n")
	assert.Equal(t, HelpPrint, repl.Execute(context.Background(), "dbpr tank:temp x"))
}

func TestREPL_Mutations(t *testing.T) {
	repl, out := newTestREPL(t)
	ctx := context.Background()

	run(t, repl, out, "create ai scratch:1")
	assert.Contains(t, run(t, repl, out, "dbl ai"), "scratch:1\n")
	assert.ErrorIs(t, repl.Execute(ctx, "create bo scratch:1"), dbstatic_errors.ErrRecExists)
	assert.ErrorIs(t, repl.Execute(ctx, "create calc scratch:9"), dbstatic_errors.ErrRecordTypeNotFound)

	run(t, repl, out, "rename scratch:1 scratch:2")
	assert.Equal(t, "scratch:2\ntank:level\ntank:temp\n", run(t, repl, out, "dbl ai"))

	run(t, repl, out, "copy tank:level tank:copy")
	assert.Equal(t, "tank level\n", run(t, repl, out, "dbgf tank:copy.DESC"))
	assert.ErrorIs(t, repl.Execute(ctx, "copy tank:temp tank:copy"), dbstatic_errors.ErrRecExists)
	run(t, repl, out, "copy tank:temp tank:copy -f")
	assert.Equal(t, "A+B*2\n", run(t, repl, out, "dbgf tank:copy.CALC"))

	run(t, repl, out, "delete tank:copy")
	run(t, repl, out, "delete scratch:2")
	assert.Equal(t, "tank:level\ntank:temp\n", run(t, repl, out, "dbl ai"))
	assert.ErrorIs(t, repl.Execute(ctx, "delete scratch:2"), dbstatic_errors.ErrRecNotFound)
}

func TestREPL_Dump(t *testing.T) {
	repl, out := newTestREPL(t)

	assert.Equal(t, "no path defined\n", run(t, repl, out, "path"))
	run(t, repl, out, "path set /opt/dbd:.")
	run(t, repl, out, "path add extra")
	assert.Equal(t, "/opt/dbd:.:extra\n", run(t, repl, out, "dump path"))

	assert.Contains(t, run(t, repl, out, "dump type bo"), "name(bo) no_fields(6)")
	assert.Contains(t, run(t, repl, out, "dump fld ai CALC"), "special: 103 SPC_CALC")
	assert.Contains(t, run(t, repl, out, "dump menu menuLinr"), "choice(menuLinrSLOPE,\"SLOPE\")")
	assert.Contains(t, run(t, repl, out, "dump device ai"), "choice: XY566SE")
	assert.Equal(t, "driver(drvXy566)\ndriver(drvVxi)\n", run(t, repl, out, "dump driver"))
	assert.Contains(t, run(t, repl, out, "dump breaktable"), "breaktable(typeKdegF) {")
	assert.Contains(t, run(t, repl, out, "dump pvd"), "entries:3")
	assert.Contains(t, run(t, repl, out, "dump report"), "tank:level")
	assert.Equal(t, testutils.Records, run(t, repl, out, "dump records"))

	written := run(t, repl, out, "write")
	assert.Equal(t, testutils.Schema+testutils.Records, written)
}

func TestREPL_SaveRestore(t *testing.T) {
	repl, out := newTestREPL(t)
	ctx := context.Background()
	assert.ErrorIs(t, repl.Execute(ctx, "save"), ErrNoStore)
	assert.ErrorIs(t, repl.Execute(ctx, "restore"), ErrNoStore)

	s, err := store.Open(t.TempDir(), store.Options{Logger: utils.NopLogger()})
	require.NoError(t, err)
	defer s.Close()
	repl.Store = s

	assert.Contains(t, run(t, repl, out, "save"), "saved 3 records as ")
	run(t, repl, out, "delete tank:temp")
	run(t, repl, out, "dbpf tank:level.DESC changed")

	assert.Equal(t, "restored 3 records\n", run(t, repl, out, "restore"))
	assert.Equal(t, "A+B*2\n", run(t, repl, out, "dbgf tank:temp.CALC"))
	assert.Equal(t, "tank level\n", run(t, repl, out, "dbgf tank:level.DESC"))
}
