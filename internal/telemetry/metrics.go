package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Rate lookup outcomes.
const (
	OutcomePriced   = "priced"
	OutcomeRejected = "rejected"
	OutcomeFailed   = "failed"
)

// Metrics holds the Prometheus metrics for rate lookups.
type Metrics struct {
	RateLookups        *prometheus.CounterVec
	RateLookupDuration *prometheus.HistogramVec
	CarrierErrors      *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg. Pass
// prometheus.DefaultRegisterer to expose them on the default /metrics
// handler.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RateLookups: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bringrate_rate_lookups_total",
				Help: "Total number of shipping rate lookups by outcome",
			},
			[]string{"outcome"},
		),
		RateLookupDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "bringrate_rate_lookup_duration_seconds",
				Help:    "Shipping rate lookup duration in seconds by outcome",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"outcome"},
		),
		CarrierErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "bringrate_carrier_errors_total",
				Help: "Total Bring API failures by error type",
			},
			[]string{"error_type"},
		),
	}
	reg.MustRegister(m.RateLookups, m.RateLookupDuration, m.CarrierErrors)
	return m
}

// RecordLookup records one rate lookup.
func (m *Metrics) RecordLookup(outcome string, duration float64) {
	m.RateLookups.WithLabelValues(outcome).Inc()
	m.RateLookupDuration.WithLabelValues(outcome).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(errorType string) {
	m.CarrierErrors.WithLabelValues(errorType).Inc()
}
