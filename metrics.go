package dbstatic

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

var EntryLookups = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dbstatic",
	Subsystem: "entry",
	Name:      "lookups_total",
	Help:      "Entry lookups by kind and result",
}, []string{"kind", "result"})

var Mutations = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dbstatic",
	Subsystem: "entry",
	Name:      "mutations_total",
	Help:      "Record mutations by operation and result",
}, []string{"op", "result"})

var PutFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
	Namespace: "dbstatic",
	Subsystem: "entry",
	Name:      "put_failures_total",
	Help:      "Rejected field puts by field type",
}, []string{"type"})

// Metrics lists the package level collectors for registration.
func Metrics() []prometheus.Collector {
	return []prometheus.Collector{EntryLookups, Mutations, PutFailures}
}

func result(err error) string {
	if err == nil {
		return "ok"
	}
	for cause := errors.Unwrap(err); cause != nil; cause = errors.Unwrap(err) {
		err = cause
	}
	return err.Error()
}

func observe(kind string, err error) error {
	EntryLookups.WithLabelValues(kind, result(err)).Inc()
	return err
}

func observeMutation(op string, err error) error {
	Mutations.WithLabelValues(op, result(err)).Inc()
	return err
}

// BaseCollector reports record counts per type and directory occupancy.
// Collect reads the base, so it must run under the same lock as writers.
type BaseCollector struct {
	base  *Base
	guard *Guard

	records    *prometheus.Desc
	pvdEntries *prometheus.Desc
	pvdUsed    *prometheus.Desc
	pvdLongest *prometheus.Desc
}

func NewBaseCollector(g *Guard) *BaseCollector {
	return &BaseCollector{
		base:  g.base,
		guard: g,
		records: prometheus.NewDesc(
			"dbstatic_records",
			"Number of record instances per record type",
			[]string{"recordtype"}, nil,
		),
		pvdEntries: prometheus.NewDesc(
			"dbstatic_pvd_entries",
			"Number of names in the process variable directory",
			nil, nil,
		),
		pvdUsed: prometheus.NewDesc(
			"dbstatic_pvd_used_buckets",
			"Number of non-empty directory buckets",
			nil, nil,
		),
		pvdLongest: prometheus.NewDesc(
			"dbstatic_pvd_longest_chain",
			"Length of the longest directory bucket",
			nil, nil,
		),
	}
}

func (bc *BaseCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- bc.records
	ch <- bc.pvdEntries
	ch <- bc.pvdUsed
	ch <- bc.pvdLongest
}

func (bc *BaseCollector) Collect(ch chan<- prometheus.Metric) {
	_ = bc.guard.View(func(*Entry) error {
		for _, rt := range bc.base.recordTypes {
			ch <- prometheus.MustNewConstMetric(
				bc.records,
				prometheus.GaugeValue,
				float64(len(rt.records)),
				rt.Name,
			)
		}
		used, longest := bc.base.pvd.Occupancy()
		ch <- prometheus.MustNewConstMetric(
			bc.pvdEntries,
			prometheus.GaugeValue,
			float64(bc.base.pvd.Len()),
		)
		ch <- prometheus.MustNewConstMetric(
			bc.pvdUsed,
			prometheus.GaugeValue,
			float64(used),
		)
		ch <- prometheus.MustNewConstMetric(
			bc.pvdLongest,
			prometheus.GaugeValue,
			float64(longest),
		)
		return nil
	})
}
