package dashboard

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles Prometheus collectors for the dashboard.
type Metrics struct {
	Registry      *prometheus.Registry
	QueriesTotal  *prometheus.CounterVec
	QueryDuration prometheus.Histogram
	QueryErrors   prometheus.Counter
}

// NewMetrics constructs and registers all metrics on a dedicated registry.
func NewMetrics() *Metrics {
	registry := prometheus.NewRegistry()

	queries := prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "bestsellers_dashboard_queries_total",
			Help: "Dashboard queries by applied sort field.",
		},
		[]string{"sort"},
	)
	duration := prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "bestsellers_dashboard_query_duration_seconds",
			Help:    "Latency of dashboard queries.",
			Buckets: prometheus.DefBuckets,
		},
	)
	queryErrors := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "bestsellers_dashboard_query_errors_total",
			Help: "Dashboard queries that failed.",
		},
	)

	registry.MustRegister(queries, duration, queryErrors)

	return &Metrics{
		Registry:      registry,
		QueriesTotal:  queries,
		QueryDuration: duration,
		QueryErrors:   queryErrors,
	}
}

// ObserveQuery records one query.
func (m *Metrics) ObserveQuery(sort string, d time.Duration, err error) {
	if m == nil {
		return
	}
	m.QueriesTotal.WithLabelValues(sort).Inc()
	m.QueryDuration.Observe(d.Seconds())
	if err != nil {
		m.QueryErrors.Inc()
	}
}
