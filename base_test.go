package dbstatic

import (
	"strings"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drpcorg/dbstatic/dbf"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/utils"
)

func TestRecordType_Finalize(t *testing.T) {
	cases := []struct {
		name   string
		fields []*FieldDesc
		err    error
	}{
		{"empty", nil, dbstatic_errors.ErrNoNameField},
		{"noname", []*FieldDesc{{Name: "VAL", Type: dbf.DOUBLE}}, dbstatic_errors.ErrNoNameField},
		{"intname", []*FieldDesc{{Name: "NAME", Type: dbf.LONG}}, dbstatic_errors.ErrNoNameField},
		{"dup", []*FieldDesc{{Name: "NAME"}, {Name: "VAL", Type: dbf.LONG}, {Name: "VAL", Type: dbf.LONG}}, dbstatic_errors.ErrDuplicate},
		{"dotted", []*FieldDesc{{Name: "NAME"}, {Name: "A.B", Type: dbf.LONG}}, dbstatic_errors.ErrBadDefinition},
		{"badtype", []*FieldDesc{{Name: "NAME"}, {Name: "X", Type: dbf.NTYPES}}, dbstatic_errors.ErrBadDefinition},
		{"menu", []*FieldDesc{{Name: "NAME"}, {Name: "M", Type: dbf.MENU, MenuName: "menuNone"}}, dbstatic_errors.ErrMenuNotFound},
	}
	for _, c := range cases {
		rt := NewRecordType(c.name, c.fields...)
		assert.ErrorIs(t, rt.Finalize(func(string) *Menu { return nil }), c.err, c.name)
	}
	assert.ErrorIs(t, NewRecordType("", &FieldDesc{Name: "NAME"}).Finalize(nil), dbstatic_errors.ErrBadDefinition)
}

func TestRecordType_Layout(t *testing.T) {
	b := newTestBase(t)
	rt := b.FindRecordType("ai")
	require.NotNil(t, rt)

	offset := 0
	for i, fd := range rt.Fields {
		assert.Equal(t, i, fd.Index)
		assert.Equal(t, offset, fd.Offset, fd.Name)
		assert.Same(t, rt, fd.RecordType())
		offset += fd.Size
	}
	assert.Equal(t, offset, rt.Size)
	assert.Equal(t, 29, rt.Fields[0].Size)
	assert.Equal(t, 40, rt.FieldByName("CALC").Size)
	assert.Equal(t, 8, rt.FieldByName("VAL").Size)
	assert.Equal(t, "VAL", rt.Val.Name)
	assert.Equal(t, []int{6, 7}, rt.LinkInd)
	assert.Same(t, b.FindMenu("menuScan"), rt.FieldByName("SCAN").Menu)

	assert.ErrorIs(t, b.AddRecordType(NewRecordType("ai", aiFields()...)), dbstatic_errors.ErrDuplicate)
	assert.ErrorIs(t, b.AddMenu(NewMenu("menuScan")), dbstatic_errors.ErrDuplicate)
	assert.ErrorIs(t, b.AddMenu(NewMenu("")), dbstatic_errors.ErrBadDefinition)
	assert.ErrorIs(t, b.AddDriver("drvXy566"), dbstatic_errors.ErrDuplicate)
	assert.ErrorIs(t, b.AddBreakTable(&BreakTable{Name: "typeKdegF"}), dbstatic_errors.ErrDuplicate)

	var types []string
	for rt := range b.RecordTypes() {
		types = append(types, rt.Name)
	}
	assert.Equal(t, []string{"ai", "bo"}, types)
}

func TestBreakTable_Slope(t *testing.T) {
	bt := &BreakTable{Points: []BreakPoint{{0, 0}, {10, 20}, {20, 30}}}
	assert.Equal(t, 2.0, bt.Slope(0))
	assert.Equal(t, 1.0, bt.Slope(1))
	assert.Equal(t, 1.0, bt.Slope(2))
	assert.Equal(t, 0.0, bt.Slope(3))
	assert.Equal(t, 0.0, (&BreakTable{Points: []BreakPoint{{1, 1}}}).Slope(0))
}

func TestBase_Resolve(t *testing.T) {
	b := newTestBase(t)
	exists := func(p string) bool { return p == "b/x.dbd" }
	assert.Equal(t, "x.dbd", b.Resolve("x.dbd", exists))
	b.SetPath("a:b")
	assert.Equal(t, "b/x.dbd", b.Resolve("x.dbd", exists))
	assert.Equal(t, "y.dbd", b.Resolve("y.dbd", exists))
	assert.Equal(t, "/abs/x.dbd", b.Resolve("/abs/x.dbd", exists))
	assert.Equal(t, []string{"a", "b"}, b.Path())
}

func TestOptions_Defaults(t *testing.T) {
	o := Options{PvdBuckets: 100}
	o.SetDefaults()
	assert.Equal(t, 128, o.PvdBuckets)
	assert.Equal(t, PVNameSize, o.PVNameSize)
	assert.NotNil(t, o.Logger)
	assert.IsType(t, HeapAllocator{}, o.Allocator)
}

func TestNameToAddr(t *testing.T) {
	b := newTestBase(t)
	e := NewEntry(b)
	createRecord(t, e, "ai", "r1")

	a, err := b.NameToAddr("r1")
	require.NoError(t, err)
	assert.Equal(t, "VAL", a.Field.Name)
	assert.Equal(t, float64(0), a.Value())

	a, err = b.NameToAddr("r1.EGUH")
	require.NoError(t, err)
	assert.Equal(t, float64(100), a.Value())
	again, _ := b.NameToAddr("r1.EGUH")
	assert.Equal(t, a, again)

	_, err = b.NameToAddr("r1.NOPE")
	assert.ErrorIs(t, err, dbstatic_errors.ErrFieldNotFound)

	require.NoError(t, e.FindRecord("r1"))
	require.NoError(t, e.RenameRecord("r2"))
	_, err = b.NameToAddr("r1.EGUH")
	assert.ErrorIs(t, err, dbstatic_errors.ErrRecNotFound)
	_, err = b.NameToAddr("r2.EGUH")
	assert.NoError(t, err)
}

func TestGuard(t *testing.T) {
	b := newTestBase(t)
	g := NewGuard(b)
	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			_ = g.Update(func(e *Entry) error {
				if err := e.FindRecordType("bo"); err != nil {
					return err
				}
				return e.CreateRecord("rec" + strings.Repeat("x", i))
			})
		}(i)
		go func() {
			defer wg.Done()
			_ = g.View(func(e *Entry) error {
				if err := e.FindRecordType("bo"); err != nil {
					return err
				}
				for err := e.FirstRecord(); err == nil; err = e.NextRecord() {
					_ = e.RecordName()
				}
				return nil
			})
		}()
	}
	wg.Wait()
	err := g.View(func(e *Entry) error {
		assert.Equal(t, 4, e.Base().NRecords())
		return nil
	})
	assert.NoError(t, err)
	assert.Same(t, b, g.Base())
}

func TestMetrics_Counters(t *testing.T) {
	b := newTestBase(t)
	e := NewEntry(b)
	exists := Mutations.WithLabelValues("create", dbstatic_errors.ErrRecExists.Error())
	before := testutil.ToFloat64(exists)

	createRecord(t, e, "ai", "m1")
	require.NoError(t, e.FindRecordType("ai"))
	assert.Error(t, e.CreateRecord("m1"))
	assert.Equal(t, before+1, testutil.ToFloat64(exists))

	fails := PutFailures.WithLabelValues("DBF_SHORT")
	before = testutil.ToFloat64(fails)
	require.NoError(t, e.FindRecord("m1.PHAS"))
	assert.Error(t, e.PutString("nan?"))
	assert.Equal(t, before+1, testutil.ToFloat64(fails))

	assert.Len(t, Metrics(), 3)
}

func TestBaseCollector(t *testing.T) {
	b := newTestBase(t)
	e := NewEntry(b)
	createRecord(t, e, "ai", "c1")
	createRecord(t, e, "ai", "c2")
	createRecord(t, e, "bo", "c3")

	c := NewBaseCollector(NewGuard(b))
	expected := `
# HELP dbstatic_pvd_entries Number of names in the process variable directory
# TYPE dbstatic_pvd_entries gauge
dbstatic_pvd_entries 3
# HELP dbstatic_records Number of record instances per record type
# TYPE dbstatic_records gauge
dbstatic_records{recordtype="ai"} 2
dbstatic_records{recordtype="bo"} 1
`
	assert.NoError(t, testutil.CollectAndCompare(c, strings.NewReader(expected),
		"dbstatic_records", "dbstatic_pvd_entries"))
	assert.Equal(t, 5, testutil.CollectAndCount(c))
}

func TestNopLoggerBase(t *testing.T) {
	b := NewBase(Options{Logger: utils.NopLogger()})
	assert.NotNil(t, b.Logger())
	assert.Equal(t, 0, b.NRecords())
}
