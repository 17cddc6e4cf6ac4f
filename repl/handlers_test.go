package repl

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/store"
	testutils "github.com/drpcorg/dbstatic/test_utils"
	"github.com/drpcorg/dbstatic/utils"
)

func serve(repl *REPL, method, target, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	repl.Mux().ServeHTTP(w, req)
	return w
}

func TestFieldHandler(t *testing.T) {
	repl, _ := newTestREPL(t)

	w := serve(repl, "GET", "/field?name=tank:level.DESC", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "tank level", w.Body.String())
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))

	w = serve(repl, "PUT", "/field?name=tank:level.EGUH", "20\n")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "20", w.Body.String())
	value, err := repl.Get("tank:level.EGUH")
	require.NoError(t, err)
	assert.Equal(t, "20", value)

	w = serve(repl, "PUT", "/field?name=tank:level.EGUH", "twenty")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(repl, "GET", "/field?name=nowhere.VAL", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = serve(repl, "GET", "/field", "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)

	w = serve(repl, "OPTIONS", "/field", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "GET, PUT", w.Header().Get("Access-Control-Allow-Methods"))

	w = serve(repl, "POST", "/field?name=tank:level.DESC", "x")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestRecordHandler(t *testing.T) {
	repl, _ := newTestREPL(t)

	w := serve(repl, "POST", "/record",
		`{"type":"ai","name":"new:one","fields":{"EGUL":"-5","DESC":"made","DTYP":"Soft Channel"}}`)
	assert.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "new:one", w.Body.String())
	value, err := repl.Get("new:one.DESC")
	require.NoError(t, err)
	assert.Equal(t, "made", value)
	value, err = repl.Get("new:one.EGUL")
	require.NoError(t, err)
	assert.Equal(t, "-5", value)

	w = serve(repl, "POST", "/record", `{"type":"bo","name":"new:one"}`)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = serve(repl, "POST", "/record", `{"type":"ai","name":"new:bad","fields":{"EGUL":"low"}}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	_, err = repl.Get("new:bad.DESC")
	assert.ErrorIs(t, err, dbstatic_errors.ErrRecNotFound)

	w = serve(repl, "POST", "/record", `{"type":"ai","name":"new:odd","fields":{"NOPE":"1"}}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
	_, err = repl.Get("new:odd.DESC")
	assert.ErrorIs(t, err, dbstatic_errors.ErrRecNotFound)

	w = serve(repl, "POST", "/record", `{"type":"ai"}`)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	w = serve(repl, "POST", "/record", `{"type":`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = serve(repl, "DELETE", "/record?name=new:one", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	w = serve(repl, "DELETE", "/record?name=new:one", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDatabaseHandler(t *testing.T) {
	repl, _ := newTestREPL(t)

	w := serve(repl, "GET", "/db", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, testutils.Schema+testutils.Records, w.Body.String())

	w = serve(repl, "PUT", "/db", "")
	assert.Equal(t, http.StatusMethodNotAllowed, w.Code)
}

func TestMetricsHandler(t *testing.T) {
	repl, _ := newTestREPL(t)
	_, _ = repl.Get("tank:level.DESC")

	w := serve(repl, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `dbstatic_records{recordtype="ai"} 2`)
	assert.Contains(t, w.Body.String(), "dbstatic_pvd_entries 3")
	assert.Contains(t, w.Body.String(), "# HELP dbstatic_entry_lookups_total Entry lookups by kind and result")
	assert.Contains(t, w.Body.String(), "# TYPE dbstatic_entry_lookups_total counter")
	assert.NotContains(t, w.Body.String(), "dbstatic_store_")

	s, err := store.Open(t.TempDir(), store.Options{Logger: utils.NopLogger()})
	require.NoError(t, err)
	defer s.Close()
	repl.Store = s
	w = serve(repl, "GET", "/metrics", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "# HELP dbstatic_store_saved_records_total Records written to the store by Save")
	assert.Contains(t, w.Body.String(), "# TYPE dbstatic_store_loaded_records_total counter")
	assert.Contains(t, w.Body.String(), "dbstatic_store_wal_bytes_in_total")
}
