package repl

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/drpcorg/dbstatic"
	"github.com/drpcorg/dbstatic/dbstatic_errors"
	"github.com/drpcorg/dbstatic/store"
)

func AddCorsHeaders(f func(w http.ResponseWriter, req *http.Request)) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Connection", "keep-alive")
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		w.Header().Set("Access-Control-Max-Age", "86400")
		f(w, req)
	}
}

// Registry gathers the engine counters, the base collector and, with a
// store attached, the store counters and pebble state.
func (repl *REPL) Registry() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	reg.MustRegister(dbstatic.Metrics()...)
	reg.MustRegister(dbstatic.NewBaseCollector(repl.Guard))
	if repl.Store != nil {
		reg.MustRegister(store.SavedRecords, store.LoadedRecords, store.NewCollector(repl.Store))
	}
	return reg
}

// Mux routes the field, record and database handlers plus /metrics.
func (repl *REPL) Mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/field", AddCorsHeaders(FieldHandler(repl)))
	mux.HandleFunc("/record", AddCorsHeaders(RecordHandler(repl)))
	mux.HandleFunc("/db", AddCorsHeaders(DatabaseHandler(repl)))
	mux.Handle("/metrics", promhttp.HandlerFor(repl.Registry(), promhttp.HandlerOpts{}))
	return mux
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, dbstatic_errors.ErrRecNotFound),
		errors.Is(err, dbstatic_errors.ErrRecordTypeNotFound),
		errors.Is(err, dbstatic_errors.ErrFieldNotFound),
		errors.Is(err, dbstatic_errors.ErrFlddesNotFound):
		return http.StatusNotFound
	case errors.Is(err, dbstatic_errors.ErrRecExists):
		return http.StatusConflict
	}
	return http.StatusBadRequest
}

// FieldHandler reads (GET) or writes (PUT, raw body) ?name=record.FIELD.
func FieldHandler(repl *REPL) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		name := req.URL.Query().Get("name")
		switch method := req.Method; method {
		case "OPTIONS":
			w.Header().Set("Access-Control-Allow-Methods", "GET, PUT")
			w.WriteHeader(http.StatusNoContent)
		case "GET":
			if name == "" {
				http.Error(w, "Argument name is required", http.StatusUnprocessableEntity)
				return
			}
			value, err := repl.Get(name)
			if err != nil {
				http.Error(w, err.Error(), statusOf(err))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(value))
		case "PUT":
			if name == "" {
				http.Error(w, "Argument name is required", http.StatusUnprocessableEntity)
				return
			}
			body, err := io.ReadAll(req.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			value, err := repl.Put(name, strings.TrimRight(string(body), "\r\n"))
			if err != nil {
				http.Error(w, err.Error(), statusOf(err))
				return
			}
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(value))
		default:
			http.Error(w, fmt.Sprintf("Unsupported method %s", req.Method), http.StatusMethodNotAllowed)
		}
	}
}

// RecordRequest is the POST /record body. Fields are applied in the
// record type's declaration order.
type RecordRequest struct {
	Type   string            `json:"type"`
	Name   string            `json:"name"`
	Fields map[string]string `json:"fields,omitempty"`
}

// RecordHandler creates (POST, JSON body) or deletes (DELETE ?name=) a record.
func RecordHandler(repl *REPL) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		switch method := req.Method; method {
		case "OPTIONS":
			w.Header().Set("Access-Control-Allow-Methods", "POST, DELETE")
			w.WriteHeader(http.StatusNoContent)
		case "POST":
			body, err := io.ReadAll(req.Body)
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			var arg RecordRequest
			if err = json.Unmarshal(body, &arg); err != nil {
				http.Error(w, err.Error(), http.StatusBadRequest)
				return
			}
			if arg.Type == "" || arg.Name == "" {
				http.Error(w, "Arguments type and name are required", http.StatusUnprocessableEntity)
				return
			}
			if err = repl.CreateWithFields(arg); err != nil {
				http.Error(w, err.Error(), statusOf(err))
				return
			}
			w.WriteHeader(http.StatusCreated)
			w.Write([]byte(arg.Name))
		case "DELETE":
			name := req.URL.Query().Get("name")
			if name == "" {
				http.Error(w, "Argument name is required", http.StatusUnprocessableEntity)
				return
			}
			if err := repl.Delete(name); err != nil {
				http.Error(w, err.Error(), statusOf(err))
				return
			}
			w.WriteHeader(http.StatusNoContent)
		default:
			http.Error(w, fmt.Sprintf("Unsupported method %s", req.Method), http.StatusMethodNotAllowed)
		}
	}
}

// CreateWithFields creates a record and sets its fields; on a bad field
// the new record is deleted again.
func (repl *REPL) CreateWithFields(arg RecordRequest) error {
	return repl.Guard.Update(func(e *dbstatic.Entry) error {
		if err := e.FindRecordType(arg.Type); err != nil {
			return errors.Wrap(err, arg.Type)
		}
		if err := e.CreateRecord(arg.Name); err != nil {
			return err
		}
		left := len(arg.Fields)
		for err := e.FirstField(false); err == nil && left > 0; err = e.NextField(false) {
			value, ok := arg.Fields[e.FieldName()]
			if !ok {
				continue
			}
			left--
			if perr := e.PutString(value); perr != nil {
				field := e.FieldName()
				_ = e.DeleteRecord()
				return errors.Wrap(perr, field)
			}
		}
		if left > 0 {
			_ = e.DeleteRecord()
			return errors.Wrapf(dbstatic_errors.ErrFieldNotFound, "%d unknown fields", left)
		}
		return nil
	})
}

// DatabaseHandler writes the whole base in definition format.
func DatabaseHandler(repl *REPL) func(w http.ResponseWriter, req *http.Request) {
	return func(w http.ResponseWriter, req *http.Request) {
		switch method := req.Method; method {
		case "OPTIONS":
			w.Header().Set("Access-Control-Allow-Methods", "GET")
			w.WriteHeader(http.StatusNoContent)
		case "GET":
			var buf strings.Builder
			err := repl.Guard.View(func(e *dbstatic.Entry) error {
				return e.Base().Write(&buf)
			})
			if err != nil {
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "text/plain; charset=utf-8")
			w.WriteHeader(http.StatusOK)
			w.Write([]byte(buf.String()))
		default:
			http.Error(w, fmt.Sprintf("Unsupported method %s", req.Method), http.StatusMethodNotAllowed)
		}
	}
}
