package observability

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics groups the fare-engine counters. Registered on the default
// registry and served at /metrics.
type Metrics struct {
	FixesProcessed *prometheus.CounterVec
	StaleDropped   prometheus.Counter
	ActiveSessions prometheus.Gauge
	ReceiptsIssued prometheus.Counter
	SessionsReaped prometheus.Counter
	HTTPRequests   *prometheus.HistogramVec
}

func NewMetrics() *Metrics {
	return NewMetricsWith(prometheus.DefaultRegisterer)
}

// NewMetricsWith registers on a caller-supplied registry; tests pass a
// fresh prometheus.NewRegistry to avoid duplicate registration.
func NewMetricsWith(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FixesProcessed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "transpo",
			Subsystem: "meter",
			Name:      "fixes_processed_total",
			Help:      "GPS fixes applied to running sessions, by interval classification.",
		}, []string{"classification"}),
		StaleDropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "transpo",
			Subsystem: "meter",
			Name:      "stale_intervals_dropped_total",
			Help:      "Out-of-order or duplicate fixes silently discarded.",
		}),
		ActiveSessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "transpo",
			Subsystem: "meter",
			Name:      "active_sessions",
			Help:      "Currently running meter sessions.",
		}),
		ReceiptsIssued: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "transpo",
			Subsystem: "meter",
			Name:      "receipts_issued_total",
			Help:      "Finalized trips.",
		}),
		SessionsReaped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "transpo",
			Subsystem: "meter",
			Name:      "sessions_reaped_total",
			Help:      "Stale running sessions force-closed by the reaper.",
		}),
		HTTPRequests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "transpo",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by route and status.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "status"}),
	}

	reg.MustRegister(
		m.FixesProcessed,
		m.StaleDropped,
		m.ActiveSessions,
		m.ReceiptsIssued,
		m.SessionsReaped,
		m.HTTPRequests,
	)
	return m
}
