package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// AuthAttempts records authentication attempts by result (success|failure).
	AuthAttempts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ufoundit_auth_attempts_total",
			Help: "Total number of authentication attempts",
		},
		[]string{"result"},
	)

	// ConnectedClients tracks currently connected realtime endpoints.
	ConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "ufoundit_realtime_connections",
			Help: "Number of connected realtime endpoints",
		},
	)

	// RealtimePushes counts live push attempts by event name and outcome
	// (delivered|skipped). A skipped push is not an error: the target endpoint
	// was absent or backpressured and the payload was dropped by design.
	RealtimePushes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ufoundit_realtime_pushes_total",
			Help: "Total number of realtime push attempts",
		},
		[]string{"event", "result"},
	)

	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ufoundit_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)
)
