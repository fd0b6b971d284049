// Package metrics holds the prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTPRequests counts requests by method, chi route pattern and status code.
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ieum_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "ieum_http_request_duration_seconds",
			Help:    "HTTP request latency",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"method", "route"},
	)

	WSSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "ieum_ws_sessions_active",
		Help: "Currently open streaming sessions",
	})

	// Broadcasts counts envelopes published per feature area ("chat" for the bare couple topic).
	Broadcasts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ieum_broadcasts_total",
			Help: "Synchronization envelopes published",
		},
		[]string{"area"},
	)

	// DroppedFrames counts outbound frames discarded because a client send buffer was full.
	DroppedFrames = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ieum_ws_dropped_frames_total",
		Help: "Outbound frames dropped for slow clients",
	})

	RecommendationsProcessed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ieum_recommendations_processed_total",
			Help: "Recommendation jobs by final status",
		},
		[]string{"status"},
	)
)
