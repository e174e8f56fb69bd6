// Package metrics exposes Prometheus metrics for chore rotation, scoring and
// HTTP traffic.
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

const namespace = "roomsync"

// scoreBuckets split the 0–100 compatibility range into deciles.
var scoreBuckets = prometheus.LinearBuckets(10, 10, 10)

// Metrics holds every collector of the service on its own registry.
type Metrics struct {
	registry *prometheus.Registry

	statesInitialized prometheus.Counter
	rotations         prometheus.Counter
	repairs           prometheus.Counter
	completions       prometheus.Counter
	writeConflicts    prometheus.Counter
	scores            prometheus.Histogram

	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// New registers all collectors, plus the Go runtime and process collectors,
// on a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	auto := promauto.With(reg)

	return &Metrics{
		registry: reg,
		statesInitialized: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chore",
			Name:      "states_initialized_total",
			Help:      "Rooms whose chore rotation was created.",
		}),
		rotations: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chore",
			Name:      "rotations_total",
			Help:      "Chore rotations performed.",
		}),
		repairs: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chore",
			Name:      "repaired_duties_total",
			Help:      "Duties reassigned because their assignee left the room.",
		}),
		completions: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chore",
			Name:      "completions_total",
			Help:      "Duties marked done.",
		}),
		writeConflicts: auto.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chore",
			Name:      "write_conflicts_total",
			Help:      "Rotation writes that lost a compare-and-swap to a concurrent writer.",
		}),
		scores: auto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "compatibility",
			Name:      "score",
			Help:      "Distribution of computed compatibility scores.",
			Buckets:   scoreBuckets,
		}),
		httpRequests: auto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP requests by route pattern, method and status code.",
		}, []string{"pattern", "method", "status_code"}),
		httpRequestDuration: auto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route pattern and method.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"pattern", "method"}),
	}
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) StateInitialized()  { m.statesInitialized.Inc() }
func (m *Metrics) RotationPerformed() { m.rotations.Inc() }
func (m *Metrics) DutiesRepaired(n int) {
	m.repairs.Add(float64(n))
}
func (m *Metrics) ChoreCompleted() { m.completions.Inc() }
func (m *Metrics) WriteConflict()  { m.writeConflicts.Inc() }

// ScoreComputed records a compatibility score.
func (m *Metrics) ScoreComputed(score int) {
	m.scores.Observe(float64(score))
}

// RecordHTTPRequest records one served request. pattern is the ServeMux
// pattern that matched, or "unmatched".
func (m *Metrics) RecordHTTPRequest(pattern, method string, status int, d time.Duration) {
	m.httpRequests.WithLabelValues(pattern, method, strconv.Itoa(status)).Inc()
	m.httpRequestDuration.WithLabelValues(pattern, method).Observe(d.Seconds())
}
