// Package metrics defines the Prometheus collectors exported by the server.
package metrics

import (
	"database/sql"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus collectors.
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Auth metrics
	AuthFailuresTotal *prometheus.CounterVec
	TokensIssuedTotal prometheus.Counter

	// Database pool metrics
	DBConnectionsOpen  prometheus.Gauge
	DBConnectionsInUse prometheus.Gauge
	DBConnectionsIdle  prometheus.Gauge
	DBWaitCount        prometheus.Gauge

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with registry.
func New(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todokeeper_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "todokeeper_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthFailuresTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "todokeeper_auth_failures_total",
				Help: "Rejected authentication attempts by reason",
			},
			[]string{"reason"},
		),
		TokensIssuedTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "todokeeper_tokens_issued_total",
				Help: "Access tokens issued at login",
			},
		),
		DBConnectionsOpen: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "todokeeper_db_connections_open",
			Help: "Established connections, both in use and idle",
		}),
		DBConnectionsInUse: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "todokeeper_db_connections_in_use",
			Help: "Connections currently in use",
		}),
		DBConnectionsIdle: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "todokeeper_db_connections_idle",
			Help: "Idle connections",
		}),
		DBWaitCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "todokeeper_db_wait_count",
			Help: "Total number of connections waited for",
		}),
		gatherer: registry,
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.AuthFailuresTotal,
		m.TokensIssuedTotal,
		m.DBConnectionsOpen,
		m.DBConnectionsInUse,
		m.DBConnectionsIdle,
		m.DBWaitCount,
	)

	return m
}

// ObserveDBStats copies a pool snapshot into the gauges.
func (m *Metrics) ObserveDBStats(s sql.DBStats) {
	m.DBConnectionsOpen.Set(float64(s.OpenConnections))
	m.DBConnectionsInUse.Set(float64(s.InUse))
	m.DBConnectionsIdle.Set(float64(s.Idle))
	m.DBWaitCount.Set(float64(s.WaitCount))
}

// AuthFailure counts a rejected authentication attempt.
func (m *Metrics) AuthFailure(reason string) {
	if m == nil {
		return
	}
	m.AuthFailuresTotal.WithLabelValues(reason).Inc()
}

// TokenIssued counts a successful login.
func (m *Metrics) TokenIssued() {
	if m == nil {
		return
	}
	m.TokensIssuedTotal.Inc()
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}
