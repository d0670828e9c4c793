// Package metrics exposes the counters a worker process increments
// as it claims, completes, retries and kills jobs, in Prometheus
// format.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds the counters a single worker process contributes.
type Metrics struct {
	Claimed   prometheus.Counter
	Completed prometheus.Counter
	Retried   prometheus.Counter
	Dead      prometheus.Counter

	handler http.Handler
}

// New creates and registers a fresh counter set against its own
// registry, so multiple worker processes never collide on the
// default global registry when they each expose /metrics locally.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	m := &Metrics{
		Claimed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_claimed_total",
			Help: "Total number of jobs claimed by this worker.",
		}),
		Completed: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_completed_total",
			Help: "Total number of jobs completed successfully by this worker.",
		}),
		Retried: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_retried_total",
			Help: "Total number of failed attempts re-queued as Pending by this worker.",
		}),
		Dead: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "queuectl_jobs_dead_total",
			Help: "Total number of jobs moved to the dead-letter queue by this worker.",
		}),
	}
	reg.MustRegister(m.Claimed, m.Completed, m.Retried, m.Dead)
	m.handler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{})
	return m
}

// Handler returns the http.Handler serving this Metrics set in
// Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return m.handler
}
