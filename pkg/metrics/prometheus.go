package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder implements domain.repository.Metrics using Prometheus.
type Recorder struct {
	eventsScored *prometheus.CounterVec
	errorsTotal  *prometheus.CounterVec
	lastSeverity *prometheus.GaugeVec
	latency      *prometheus.HistogramVec
}

// New creates a new Prometheus metrics recorder.
func New() *Recorder {
	return &Recorder{
		eventsScored: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_events_scored_total",
				Help: "Total number of scored events routed to a backend",
			},
			[]string{"backend", "country", "level"},
		),
		errorsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "atlas_errors_total",
				Help: "Total number of errors encountered",
			},
			[]string{"type"},
		),
		lastSeverity: promauto.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "atlas_last_severity_index",
				Help: "Last recorded severity index for a country",
			},
			[]string{"country"},
		),
		latency: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "atlas_operation_duration_seconds",
				Help:    "Duration of operations in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation"},
		),
	}
}

// RecordEventScored records one scored event routed to a backend.
func (r *Recorder) RecordEventScored(backend, country, level string) {
	r.eventsScored.WithLabelValues(backend, country, level).Inc()
}

// RecordError records an error occurrence.
func (r *Recorder) RecordError(kind string) {
	r.errorsTotal.WithLabelValues(kind).Inc()
}

// RecordSeverity records the last severity index for a country.
func (r *Recorder) RecordSeverity(country string, index float64) {
	r.lastSeverity.WithLabelValues(country).Set(index)
}

// RecordLatency records operation latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}
