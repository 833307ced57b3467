// Package metrics holds the Prometheus collectors for the memes service.
package metrics

import (
	"net/http"
	"strconv"

	"memes/internal/catalog"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "memes"

// Metrics owns its registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	HTTPRequests      *prometheus.CounterVec
	FavoriteToggles   *prometheus.CounterVec
	ToggleRetries     prometheus.Counter
	ReconcileRetries  prometheus.Counter
	SeedRows          prometheus.Counter
	JobsProcessed     *prometheus.CounterVec
	CorrectedCounters prometheus.Counter
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		HTTPRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and status.",
		}, []string{"method", "status"}),
		FavoriteToggles: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggles_total",
			Help:      "Committed favorite toggles by result.",
		}, []string{"result"}),
		ToggleRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "favorite_toggle_retries_total",
			Help:      "Favorite toggle transactions retried after a serialization failure or deadlock.",
		}),
		ReconcileRetries: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reconcile_retries_total",
			Help:      "Counter reconcile transactions retried after a serialization failure or deadlock.",
		}),
		SeedRows: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "seed_inserted_total",
			Help:      "Memes inserted by seed runs.",
		}),
		JobsProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "jobs_processed_total",
			Help:      "Background jobs by type and final status.",
		}, []string{"type", "status"}),
		CorrectedCounters: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "counters_corrected_total",
			Help:      "favorites_count values rewritten by reconcile jobs.",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.HTTPRequests,
		m.FavoriteToggles,
		m.ToggleRetries,
		m.ReconcileRetries,
		m.SeedRows,
		m.JobsProcessed,
		m.CorrectedCounters,
	)
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) ObserveHTTP(method string, status int) {
	m.HTTPRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
}

func (m *Metrics) ToggleCommitted(outcome catalog.ToggleOutcome) {
	m.FavoriteToggles.WithLabelValues(string(outcome)).Inc()
}

func (m *Metrics) ToggleRetried() { m.ToggleRetries.Inc() }

func (m *Metrics) ReconcileRetried() { m.ReconcileRetries.Inc() }

func (m *Metrics) CountersCorrected(n int64) { m.CorrectedCounters.Add(float64(n)) }

func (m *Metrics) SeedInserted(n int) { m.SeedRows.Add(float64(n)) }

func (m *Metrics) JobProcessed(jobType, status string) {
	m.JobsProcessed.WithLabelValues(jobType, status).Inc()
}
