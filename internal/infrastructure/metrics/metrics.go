// Package metrics exposes engine metrics to Prometheus.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"stockwise/internal/core/location"
)

const namespace = "stockwise"

// Metrics holds all engine metrics on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Availability
	OversoldTotal     *prometheus.CounterVec
	OversoldShortfall *prometheus.CounterVec

	// Guards
	GuardDecisions  *prometheus.CounterVec
	PartialFailures *prometheus.CounterVec

	// Reconciliation
	DriftDetected *prometheus.GaugeVec
	ReconcileRuns *prometheus.CounterVec
}

// New creates and registers all metrics.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	m := &Metrics{registry: registry}

	m.HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	m.HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
		},
		[]string{"method", "path"},
	)

	m.OversoldTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oversold_total",
			Help:      "Availability computations that came out negative before clamping",
		},
		[]string{"location_type"},
	)

	m.OversoldShortfall = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "oversold_units_total",
			Help:      "Sum of negative availability (in units) hidden by clamping",
		},
		[]string{"location_type"},
	)

	m.GuardDecisions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "guard_decisions_total",
			Help:      "Write-path guard outcomes by operation",
		},
		[]string{"operation", "outcome", "code"},
	)

	m.PartialFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "partial_failures_total",
			Help:      "Writes whose commit outcome is unknown",
		},
		[]string{"operation"},
	)

	m.DriftDetected = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "reconcile_drift",
			Help:      "Drifts found by the last reconciliation run",
		},
		[]string{"kind"},
	)

	m.ReconcileRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_runs_total",
			Help:      "Reconciliation runs by result",
		},
		[]string{"result"},
	)

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.OversoldTotal,
		m.OversoldShortfall,
		m.GuardDecisions,
		m.PartialFailures,
		m.DriftDetected,
		m.ReconcileRuns,
	)

	return m
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler returns the /metrics HTTP handler.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// RecordHTTPRequest records a finished request.
func (m *Metrics) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// ObserveOversold implements availability.OversoldObserver.
func (m *Metrics) ObserveOversold(kind location.Kind, shortfall int64) {
	m.OversoldTotal.WithLabelValues(string(kind)).Inc()
	m.OversoldShortfall.WithLabelValues(string(kind)).Add(float64(shortfall))
}

// GuardAccepted implements guard.Metrics.
func (m *Metrics) GuardAccepted(operation string) {
	m.GuardDecisions.WithLabelValues(operation, "accepted", "").Inc()
}

// GuardRejected implements guard.Metrics.
func (m *Metrics) GuardRejected(operation, code string) {
	m.GuardDecisions.WithLabelValues(operation, "rejected", code).Inc()
}

// PartialFailure implements guard.Metrics.
func (m *Metrics) PartialFailure(operation string) {
	m.PartialFailures.WithLabelValues(operation).Inc()
}

// ObserveDrift implements reconcile.Metrics.
func (m *Metrics) ObserveDrift(kind string, n int) {
	m.DriftDetected.WithLabelValues(kind).Set(float64(n))
}

// RecordReconcileRun counts a reconciliation run.
func (m *Metrics) RecordReconcileRun(err error) {
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.ReconcileRuns.WithLabelValues(result).Inc()
}
