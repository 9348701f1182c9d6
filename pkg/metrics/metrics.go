package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the Prometheus collectors of the shelf service.
//
// All metrics are prefixed with "shelf_":
//   - shelf_http_request_duration_seconds{method,route,status}
//   - shelf_extractions_total{mode,outcome}
//   - shelf_extraction_discarded_total{mode}
//   - shelf_expiry_items{level}
//   - shelf_expiry_scans_total
type Metrics struct {
	HTTPRequestDuration *prometheus.HistogramVec
	ExtractionsTotal    *prometheus.CounterVec
	DiscardedTotal      *prometheus.CounterVec
	ExpiryItems         *prometheus.GaugeVec
	ExpiryScansTotal    prometheus.Counter

	gatherer prometheus.Gatherer
}

// New registers the collectors on reg. Pass a fresh prometheus.NewRegistry()
// in tests so registrations never collide.
func New(reg *prometheus.Registry) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		HTTPRequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "shelf_http_request_duration_seconds",
				Help:    "Duration of HTTP requests in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route", "status"},
		),
		ExtractionsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelf_extractions_total",
				Help: "Extraction requests by mode (text, speech, image) and outcome",
			},
			[]string{"mode", "outcome"},
		),
		DiscardedTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "shelf_extraction_discarded_total",
				Help: "Extraction candidates dropped during normalization",
			},
			[]string{"mode"},
		),
		ExpiryItems: f.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "shelf_expiry_items",
				Help: "Items per warn level seen by the last expiry scan",
			},
			[]string{"level"},
		),
		ExpiryScansTotal: f.NewCounter(
			prometheus.CounterOpts{
				Name: "shelf_expiry_scans_total",
				Help: "Completed expiry scans",
			},
		),
		gatherer: reg,
	}
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

// ObserveRequest records one HTTP request. Safe on a nil receiver.
func (m *Metrics) ObserveRequest(method, route string, status int, d time.Duration) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(method, route, strconv.Itoa(status)).Observe(d.Seconds())
}

// RecordExtraction counts an extraction call and the candidates it discarded.
func (m *Metrics) RecordExtraction(mode, outcome string, discarded int) {
	if m == nil {
		return
	}
	m.ExtractionsTotal.WithLabelValues(mode, outcome).Inc()
	if discarded > 0 {
		m.DiscardedTotal.WithLabelValues(mode).Add(float64(discarded))
	}
}

// RecordExpiryScan publishes the per-level totals of a finished scan.
func (m *Metrics) RecordExpiryScan(counts map[string]int) {
	if m == nil {
		return
	}
	m.ExpiryScansTotal.Inc()
	for level, n := range counts {
		m.ExpiryItems.WithLabelValues(level).Set(float64(n))
	}
}
