// Package metrics defines Prometheus metrics for the copilot engine.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "copilot_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	RequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_http_requests_total",
			Help: "Total HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_errors_total",
			Help: "Total errors by type",
		},
		[]string{"type"},
	)

	PreviewOutcomes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_preview_outcomes_total",
			Help: "Preview outcomes by kind",
		},
		[]string{"kind"},
	)

	CommitsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "copilot_commits_total",
			Help: "Commit attempts by result",
		},
		[]string{"result"},
	)

	PendingPreviews = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "copilot_pending_previews",
			Help: "Previews awaiting commit",
		},
	)

	PendingClarifications = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "copilot_pending_clarifications",
			Help: "Clarifications awaiting an answer",
		},
	)

	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "copilot_websocket_connections",
			Help: "Active WebSocket connections",
		},
	)
)

func init() {
	prometheus.MustRegister(
		RequestDuration, RequestsTotal, ErrorsTotal,
		PreviewOutcomes, CommitsTotal,
		PendingPreviews, PendingClarifications,
		WSConnections,
	)
}
