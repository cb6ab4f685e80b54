package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus collectors for the service. Every helper is
// safe to call on a nil *Metrics so components can run without metrics.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	ExtractionsTotal    *prometheus.CounterVec
	ExtractionDuration  *prometheus.HistogramVec
	DiagnosticsTotal    *prometheus.CounterVec
	CatalogRequests     *prometheus.CounterVec
	ImageProbesTotal    *prometheus.CounterVec
	StoreOpsTotal       *prometheus.CounterVec
}

// New registers the collectors on reg. Pass prometheus.DefaultRegisterer in
// binaries and a fresh registry in tests.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests.",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "Duration of HTTP requests.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path", "status"},
		),
		ExtractionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmeta_extractions_total",
				Help: "Total number of extraction runs.",
			},
			[]string{"source", "status"}, // status: ok, partial, empty, unsupported
		),
		ExtractionDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bookmeta_extraction_duration_seconds",
				Help:    "Duration of extraction runs.",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 20, 30},
			},
			[]string{"source"},
		),
		DiagnosticsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmeta_diagnostics_total",
				Help: "Non-fatal diagnostics recorded during extraction.",
			},
			[]string{"source", "kind"},
		),
		CatalogRequests: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmeta_catalog_requests_total",
				Help: "Remote catalog lookups by outcome.",
			},
			[]string{"status"},
		),
		ImageProbesTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmeta_image_probes_total",
				Help: "Cover image probes by outcome.",
			},
			[]string{"result"},
		),
		StoreOpsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bookmeta_record_store_ops_total",
				Help: "Record store operations by outcome.",
			},
			[]string{"op", "status"},
		),
	}
}

func (m *Metrics) ObserveHTTP(method, path, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(method, path, status).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

func (m *Metrics) ObserveExtraction(source, status string, seconds float64) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(source, status).Inc()
	m.ExtractionDuration.WithLabelValues(source).Observe(seconds)
}

func (m *Metrics) IncDiagnostic(source, kind string) {
	if m == nil {
		return
	}
	m.DiagnosticsTotal.WithLabelValues(source, kind).Inc()
}

func (m *Metrics) IncCatalogRequest(status string) {
	if m == nil {
		return
	}
	m.CatalogRequests.WithLabelValues(status).Inc()
}

func (m *Metrics) IncImageProbe(result string) {
	if m == nil {
		return
	}
	m.ImageProbesTotal.WithLabelValues(result).Inc()
}

func (m *Metrics) IncStoreOp(op, status string) {
	if m == nil {
		return
	}
	m.StoreOpsTotal.WithLabelValues(op, status).Inc()
}
