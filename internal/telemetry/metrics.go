package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the service.
type Metrics struct {
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	CarrierErrors   *prometheus.CounterVec
	LabelsGenerated *prometheus.CounterVec
}

// NewMetrics creates the metrics and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		RequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ups_requests_total",
				Help: "Total number of requests by operation, carrier, and status",
			},
			[]string{"operation", "carrier", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "ups_request_duration_seconds",
				Help:    "Request duration in seconds by operation and carrier",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"operation", "carrier"},
		),
		CarrierErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ups_carrier_errors_total",
				Help: "Total carrier API errors by carrier and error type",
			},
			[]string{"carrier", "error_type"},
		),
		LabelsGenerated: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "ups_labels_generated_total",
				Help: "Total number of shipping labels stored by carrier",
			},
			[]string{"carrier"},
		),
	}
}

// RecordRequest records a request metric.
func (m *Metrics) RecordRequest(operation, carrier, status string, duration float64) {
	m.RequestsTotal.WithLabelValues(operation, carrier, status).Inc()
	m.RequestDuration.WithLabelValues(operation, carrier).Observe(duration)
}

// RecordError records a carrier error metric.
func (m *Metrics) RecordError(carrier, errorType string) {
	m.CarrierErrors.WithLabelValues(carrier, errorType).Inc()
}

// RecordLabel counts a stored label.
func (m *Metrics) RecordLabel(carrier string) {
	m.LabelsGenerated.WithLabelValues(carrier).Inc()
}
