// Package metrics provides the Prometheus collectors for the service: HTTP
// traffic plus the business events reported by the application service.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// PrometheusMetrics implements services.MetricsReporter and records HTTP
// request counts and latencies. Each instance owns its registry.
type PrometheusMetrics struct {
	registry *prometheus.Registry

	applicationsStarted prometheus.Counter
	quotes              prometheus.Histogram
	validationFailures  *prometheus.CounterVec
	httpRequests        *prometheus.CounterVec
	httpDuration        *prometheus.HistogramVec
}

func NewPrometheusMetrics() *PrometheusMetrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &PrometheusMetrics{
		registry: reg,
		applicationsStarted: factory.NewCounter(prometheus.CounterOpts{
			Name: "applications_started_total",
			Help: "Total number of applications created",
		}),
		quotes: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "application_quotes",
			Help:    "Distribution of issued quotes",
			Buckets: prometheus.LinearBuckets(0, 100, 10),
		}),
		validationFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "application_validation_failures_total",
			Help: "Total number of rejected fields on submission",
		}, []string{"field"}),
		httpRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"route", "method", "status"}),
		httpDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"route", "method"}),
	}
}

// RecordApplicationStarted records a created application.
func (m *PrometheusMetrics) RecordApplicationStarted() {
	m.applicationsStarted.Inc()
}

// RecordQuote records an issued quote.
func (m *PrometheusMetrics) RecordQuote(quote int) {
	m.quotes.Observe(float64(quote))
}

// RecordValidationFailure records one rejected field.
func (m *PrometheusMetrics) RecordValidationFailure(field string) {
	m.validationFailures.WithLabelValues(field).Inc()
}

// RecordRequest records one served HTTP request.
func (m *PrometheusMetrics) RecordRequest(route, method string, status int, elapsed time.Duration) {
	m.httpRequests.WithLabelValues(route, method, strconv.Itoa(status)).Inc()
	m.httpDuration.WithLabelValues(route, method).Observe(elapsed.Seconds())
}

// Handler exposes the registry in the Prometheus text format.
func (m *PrometheusMetrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}
