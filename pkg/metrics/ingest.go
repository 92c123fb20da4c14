package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// IngestMetrics records counters for the spreadsheet ingestion pipeline.
type IngestMetrics struct {
	duration        *prometheus.HistogramVec
	uploads         *prometheus.CounterVec
	rows            prometheus.Counter
	dateFallbacks   prometheus.Counter
	reconcileMerges prometheus.Counter
}

// NewIngestMetrics registers the ingestion metrics on the provided registerer.
func NewIngestMetrics(reg prometheus.Registerer) *IngestMetrics {
	if reg == nil {
		return &IngestMetrics{}
	}
	duration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "ingest_duration_seconds",
		Help:    "Duration of upload processing in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"outcome"})
	uploads := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "ingest_uploads_total",
		Help: "Processed spreadsheet uploads by outcome.",
	}, []string{"outcome"})
	rows := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_rows_total",
		Help: "Raw spreadsheet rows read across all uploads.",
	})
	dateFallbacks := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_date_fallbacks_total",
		Help: "Date cells that failed every parse attempt and fell back to now.",
	})
	reconcileMerges := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "ingest_reconcile_merges_total",
		Help: "Raw rows folded into an existing canonical record.",
	})
	reg.MustRegister(duration, uploads, rows, dateFallbacks, reconcileMerges)
	return &IngestMetrics{
		duration:        duration,
		uploads:         uploads,
		rows:            rows,
		dateFallbacks:   dateFallbacks,
		reconcileMerges: reconcileMerges,
	}
}

// ObserveDuration records how long an upload took for the given outcome.
func (m *IngestMetrics) ObserveDuration(outcome string, duration time.Duration) {
	if m == nil || m.duration == nil {
		return
	}
	m.duration.WithLabelValues(normalizeLabel(outcome)).Observe(duration.Seconds())
}

// IncUpload counts one processed upload with the given outcome.
func (m *IngestMetrics) IncUpload(outcome string) {
	if m == nil || m.uploads == nil {
		return
	}
	m.uploads.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// AddRows counts raw rows read from a spreadsheet.
func (m *IngestMetrics) AddRows(n int) {
	if m == nil || m.rows == nil || n <= 0 {
		return
	}
	m.rows.Add(float64(n))
}

// AddDateFallbacks counts unparseable date cells.
func (m *IngestMetrics) AddDateFallbacks(n int) {
	if m == nil || m.dateFallbacks == nil || n <= 0 {
		return
	}
	m.dateFallbacks.Add(float64(n))
}

// AddReconcileMerges counts rows merged into existing canonical records.
func (m *IngestMetrics) AddReconcileMerges(n int) {
	if m == nil || m.reconcileMerges == nil || n <= 0 {
		return
	}
	m.reconcileMerges.Add(float64(n))
}

func normalizeLabel(outcome string) string {
	if outcome == "" {
		return "unknown"
	}
	return outcome
}
