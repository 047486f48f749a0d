package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Skip reasons reported by importers.
const (
	ReasonInformational = "informational"
	ReasonDuplicate     = "duplicate"
)

// Metrics collects import pipeline counters on a private registry.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	Registry *prometheus.Registry

	RecordsParsed   *prometheus.CounterVec
	FindingsSkipped *prometheus.CounterVec
	RecordsStored   *prometheus.CounterVec
}

// NewMetrics creates and registers the pipeline counters.
func NewMetrics() *Metrics {
	m := &Metrics{Registry: prometheus.NewRegistry()}

	m.RecordsParsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulnimport_records_parsed_total",
			Help: "Canonical vulnerability records produced by importers",
		},
		[]string{"format"},
	)

	m.FindingsSkipped = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulnimport_findings_skipped_total",
			Help: "Source findings dropped before conversion",
		},
		[]string{"format", "reason"},
	)

	m.RecordsStored = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulnimport_records_stored_total",
			Help: "Records handed to the store, by outcome",
		},
		[]string{"result"},
	)

	m.Registry.MustRegister(m.RecordsParsed, m.FindingsSkipped, m.RecordsStored)
	return m
}

func (m *Metrics) Parsed(format string, n int) {
	if m == nil {
		return
	}
	m.RecordsParsed.WithLabelValues(format).Add(float64(n))
}

func (m *Metrics) Skipped(format, reason string) {
	if m == nil {
		return
	}
	m.FindingsSkipped.WithLabelValues(format, reason).Inc()
}

func (m *Metrics) Stored(created, duplicates int) {
	if m == nil {
		return
	}
	m.RecordsStored.WithLabelValues("created").Add(float64(created))
	m.RecordsStored.WithLabelValues("duplicate").Add(float64(duplicates))
}

// WriteTextfile writes the registry in the Prometheus text format, for the
// node exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.Registry)
}
