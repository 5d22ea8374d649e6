// Package metrics exposes Prometheus collectors for worker calls and
// aggregations, plus lightweight runtime memory snapshots.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "fanout"

// Outcome label values.
const (
	OutcomeSuccess = "success"
	OutcomeFailure = "failure"
)

// Metrics holds the collectors of one process. Each Metrics owns a private
// registry, so several instances (one per test, say) never collide.
type Metrics struct {
	registry *prometheus.Registry
	handler  http.Handler

	callsTotal        *prometheus.CounterVec
	callDuration      *prometheus.HistogramVec
	callsInFlight     prometheus.Gauge
	aggregatesTotal   *prometheus.CounterVec
	aggregateDuration *prometheus.HistogramVec
	activeRequests    prometheus.Gauge
	requestsTotal     prometheus.Counter
}

// NewMetrics creates and registers every collector, including the Go runtime
// and process collectors.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		registry: reg,
		callsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "calls_total",
			Help:      "Worker calls that reached a terminal state.",
		}, []string{"policy", "outcome"}),
		callDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Latency of individual worker calls.",
			Buckets:   []float64{.001, .005, .01, .02, .03, .05, .1, .5, 1, 5},
		}, []string{"policy"}),
		callsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "calls_in_flight",
			Help:      "Worker calls dispatched but not yet settled.",
		}),
		aggregatesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "aggregates_total",
			Help:      "Aggregations completed, by policy and status.",
		}, []string{"policy", "status"}),
		aggregateDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "aggregate_duration_seconds",
			Help:      "Wall time of complete aggregations.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"policy"}),
		activeRequests: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_requests",
			Help:      "HTTP requests currently being served.",
		}),
		requestsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests served.",
		}),
	}
	reg.MustRegister(
		m.callsTotal,
		m.callDuration,
		m.callsInFlight,
		m.aggregatesTotal,
		m.aggregateDuration,
		m.activeRequests,
		m.requestsTotal,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	return m
}

// Registry returns the registry backing m.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler returns the Prometheus exposition handler.
func (m *Metrics) Handler() http.Handler { return m.handler }

// WritePrometheus serves the exposition format for r.
func (m *Metrics) WritePrometheus(w http.ResponseWriter, r *http.Request) {
	m.handler.ServeHTTP(w, r)
}

// CallStarted increments the in-flight gauge.
func (m *Metrics) CallStarted(string) {
	m.callsInFlight.Inc()
}

// CallSettled records one terminal call.
func (m *Metrics) CallSettled(policy, _ string, d time.Duration, err error) {
	m.callsInFlight.Dec()
	m.callsTotal.WithLabelValues(policy, outcomeLabel(err)).Inc()
	m.callDuration.WithLabelValues(policy).Observe(d.Seconds())
}

// AggregateDone records one completed aggregation.
func (m *Metrics) AggregateDone(policy string, d time.Duration, err error) {
	m.aggregatesTotal.WithLabelValues(policy, outcomeLabel(err)).Inc()
	m.aggregateDuration.WithLabelValues(policy).Observe(d.Seconds())
}

// IncrementActiveRequests marks the start of an HTTP request.
func (m *Metrics) IncrementActiveRequests() {
	m.activeRequests.Inc()
	m.requestsTotal.Inc()
}

// DecrementActiveRequests marks the end of an HTTP request.
func (m *Metrics) DecrementActiveRequests() {
	m.activeRequests.Dec()
}

func outcomeLabel(err error) string {
	if err != nil {
		return OutcomeFailure
	}
	return OutcomeSuccess
}
