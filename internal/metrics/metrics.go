// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// HTTP
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gadash_http_requests_total",
			Help: "HTTP requests by route and status code",
		},
		[]string{"route", "code"},
	)

	HTTPDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gadash_http_request_duration_seconds",
			Help:    "HTTP request latency by route",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"route"},
	)

	// OAuth
	AuthExchanges = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gadash_auth_exchanges_total",
			Help: "Authorization code exchanges by outcome",
		},
		[]string{"outcome"}, // "success", "failure"
	)

	// Analytics Data API
	ReportCalls = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "gadash_report_calls_total",
			Help: "runReport calls by report and outcome",
		},
		[]string{"report", "outcome"}, // "success", "failure", "rejected"
	)

	ReportDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "gadash_report_duration_seconds",
			Help:    "runReport latency by report",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"report"},
	)

	BreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "gadash_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	// Sessions
	SessionsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "gadash_sessions_created_total",
			Help: "Sessions created for browsers without a valid session cookie",
		},
	)
)
