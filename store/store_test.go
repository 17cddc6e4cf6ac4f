package store

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/dbd"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	testutils "github.com/drpcorg/dbstatic/test_utils"
	"github.com/drpcorg/dbstatic/utils"
)

func schemaBase(t *testing.T, records bool) *dbstatic.Base {
	b := dbstatic.NewBase(dbstatic.Options{Logger: utils.NopLogger()})
	require.NoError(t, dbd.Load(b, strings.NewReader(testutils.Schema), "schema.dbd"))
	if records {
		require.NoError(t, dbd.Load(b, strings.NewReader(testutils.Records), "records.db"))
	}
	return b
}

func openStore(t *testing.T) *Store {
	s, err := Open(t.TempDir(), Options{Logger: utils.NopLogger()})
	require.NoError(t, err)
	return s
}

func written(t *testing.T, b *dbstatic.Base) string {
	var buf bytes.Buffer
	require.NoError(t, b.WriteRecords(&buf, "", 0))
	return buf.String()
}

func TestStore_SaveLoad(t *testing.T) {
	ctx := context.Background()
	src := schemaBase(t, true)
	s := openStore(t)
	defer s.Close()

	_, err := s.Meta()
	assert.ErrorIs(t, err, dbstatic_errors.ErrNoSnapshot)

	meta, err := s.Save(ctx, src)
	require.NoError(t, err)
	assert.Equal(t, 3, meta.Records)

	stored, err := s.Meta()
	require.NoError(t, err)
	assert.Equal(t, meta.ID, stored.ID)
	assert.True(t, meta.Saved.Equal(stored.Saved))
	assert.Equal(t, 3, stored.Records)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"tank:level", "tank:temp", "valve:open"}, names)

	doc, err := s.Get("tank:level")
	require.NoError(t, err)
	assert.Equal(t, "ai", doc.Type)
	assert.False(t, doc.Visible)
	var order []string
	for _, f := range doc.Fields {
		order = append(order, f.Name)
	}
	assert.Equal(t, []string{"DESC", "SCAN", "DTYP", "INP", "LINR", "EGUL", "EGUH"}, order)

	doc, err = s.Get("valve:open")
	require.NoError(t, err)
	assert.True(t, doc.Visible)

	_, err = s.Get("nope")
	assert.ErrorIs(t, err, dbstatic_errors.ErrRecNotFound)

	dst := schemaBase(t, false)
	n, err := s.Load(ctx, dst)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, written(t, src), written(t, dst))
}

func TestStore_SaveReplaces(t *testing.T) {
	ctx := context.Background()
	b := schemaBase(t, true)
	s := openStore(t)
	defer s.Close()

	first, err := s.Save(ctx, b)
	require.NoError(t, err)

	e := dbstatic.NewEntry(b)
	require.NoError(t, e.FindRecord("tank:temp"))
	require.NoError(t, e.DeleteRecord())
	second, err := s.Save(ctx, b)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)

	names, err := s.Names()
	require.NoError(t, err)
	assert.Equal(t, []string{"tank:level", "valve:open"}, names)
}

func TestStore_LoadOverwritesAndSkips(t *testing.T) {
	ctx := context.Background()
	s := openStore(t)
	defer s.Close()
	_, err := s.Save(ctx, schemaBase(t, true))
	require.NoError(t, err)

	b := schemaBase(t, true)
	e := dbstatic.NewEntry(b)
	require.NoError(t, e.FindRecord("tank:level.DESC"))
	require.NoError(t, e.PutString("edited"))
	n, err := s.Load(ctx, b)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	require.NoError(t, e.FindRecord("tank:level.DESC"))
	v, _ := e.GetString()
	assert.Equal(t, "tank level", v)

	// a base that knows only ai
	partial := dbstatic.NewBase(dbstatic.Options{Logger: utils.NopLogger()})
	bo := strings.Index(testutils.Schema, "recordtype(bo)")
	devices := strings.Index(testutils.Schema, "device(")
	schema := testutils.Schema[:bo] + testutils.Schema[devices:]
	require.NoError(t, dbd.Load(partial, strings.NewReader(schema), "partial.dbd"))
	n, err = s.Load(ctx, partial)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, partial.NRecords())
}

func TestStore_Cancelled(t *testing.T) {
	s := openStore(t)
	defer s.Close()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := s.Save(ctx, schemaBase(t, true))
	assert.ErrorIs(t, err, context.Canceled)
	_, err = s.Meta()
	assert.ErrorIs(t, err, dbstatic_errors.ErrNoSnapshot)
}

func TestStore_Closed(t *testing.T) {
	s := openStore(t)
	c := NewCollector(s)
	assert.Equal(t, 8, testutil.CollectAndCount(c))

	require.NoError(t, s.Close())
	assert.ErrorIs(t, s.Close(), dbstatic_errors.ErrClosed)
	_, err := s.Save(context.Background(), schemaBase(t, false))
	assert.ErrorIs(t, err, dbstatic_errors.ErrClosed)
	_, err = s.Names()
	assert.ErrorIs(t, err, dbstatic_errors.ErrClosed)
	assert.Equal(t, 0, testutil.CollectAndCount(c))
}
