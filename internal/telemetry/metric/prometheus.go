// Package metric provides Prometheus metrics for sessgate.
package metric

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "sessgate"

// Request classes.
const (
	ClassAPI      = "api"
	ClassLogin    = "login"
	ClassShell    = "shell"
	ClassDownload = "download"
)

// Request and upgrade outcomes.
const (
	OutcomeForwarded = "forwarded"
	OutcomeRejected  = "rejected"
	OutcomeServed    = "served"
	OutcomeFailed    = "failed"
	OutcomeAccepted  = "accepted"
	OutcomeRefused   = "refused"
)

// Backend error kinds.
const (
	BackendRefused = "refused"
	BackendOther   = "other"
)

// Registry holds all application metrics.
//
// A nil *Registry is valid and records nothing, so components can be
// constructed without metrics in tests.
type Registry struct {
	SessionsCreated prometheus.Counter
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec
	UpgradesTotal   *prometheus.CounterVec
	BackendErrors   *prometheus.CounterVec

	reg *prometheus.Registry
}

// NewRegistry creates a registry with all sessgate metrics and the
// standard Go runtime and process collectors registered.
func NewRegistry() *Registry {
	r := &Registry{
		SessionsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "sessions_created_total",
			Help:      "Number of session tokens issued.",
		}),
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "HTTP requests by class and outcome.",
		}, []string{"class", "outcome"}),
		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "HTTP request handling latency by class.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"class"}),
		UpgradesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upgrades_total",
			Help:      "WebSocket upgrade attempts by outcome.",
		}, []string{"outcome"}),
		BackendErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "backend_errors_total",
			Help:      "Errors while forwarding to the backend, by kind.",
		}, []string{"kind"}),
		reg: prometheus.NewRegistry(),
	}

	r.reg.MustRegister(
		r.SessionsCreated,
		r.RequestsTotal,
		r.RequestDuration,
		r.UpgradesTotal,
		r.BackendErrors,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return r
}

// MustRegister registers additional collectors, such as a SessionCollector.
func (r *Registry) MustRegister(cs ...prometheus.Collector) {
	if r == nil {
		return
	}
	r.reg.MustRegister(cs...)
}

// SessionCreated records a newly issued session token.
func (r *Registry) SessionCreated() {
	if r == nil {
		return
	}
	r.SessionsCreated.Inc()
}

// Request records one handled request.
func (r *Registry) Request(class, outcome string, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.RequestsTotal.WithLabelValues(class, outcome).Inc()
	r.RequestDuration.WithLabelValues(class).Observe(elapsed.Seconds())
}

// Upgrade records one WebSocket upgrade attempt.
func (r *Registry) Upgrade(outcome string) {
	if r == nil {
		return
	}
	r.UpgradesTotal.WithLabelValues(outcome).Inc()
}

// BackendError records one forwarding failure.
func (r *Registry) BackendError(kind string) {
	if r == nil {
		return
	}
	r.BackendErrors.WithLabelValues(kind).Inc()
}

// Handler returns an HTTP handler for the /metrics endpoint.
func (r *Registry) Handler() http.Handler {
	if r == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(r.reg, promhttp.HandlerOpts{ErrorHandling: promhttp.ContinueOnError})
}
