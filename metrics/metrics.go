// Package metrics exposes prometheus instrumentation for the dashboard:
// interactions, per-stage timing and fallbacks, sessions and HTTP traffic.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Registry holds all metrics for the application
type Registry struct {
	// Dashboard
	InteractionsTotal *prometheus.CounterVec
	ActiveSessions    prometheus.Gauge
	NoticesTotal      *prometheus.CounterVec

	// Pipeline
	StageDuration       *prometheus.HistogramVec
	StageFallbacksTotal *prometheus.CounterVec
	VisibleNodes        prometheus.Histogram

	// HTTP / websocket
	HTTPRequestsTotal      *prometheus.CounterVec
	HTTPRequestDuration    *prometheus.HistogramVec
	WebsocketMessagesTotal *prometheus.CounterVec

	// Dataset
	DatasetNodes prometheus.Gauge
	DatasetEdges prometheus.Gauge

	registry *prometheus.Registry
}

var (
	// Global registry instance
	defaultRegistry *Registry
	once            sync.Once
)

// DefaultRegistry returns the global metrics registry
func DefaultRegistry() *Registry {
	once.Do(func() {
		defaultRegistry = NewRegistry()
	})
	return defaultRegistry
}

// NewRegistry creates a new metrics registry with all metrics initialized
func NewRegistry() *Registry {
	r := &Registry{registry: prometheus.NewRegistry()}

	r.initDashboardMetrics()
	r.initPipelineMetrics()
	r.initHTTPMetrics()
	r.initDatasetMetrics()

	return r
}

func (r *Registry) initDashboardMetrics() {
	r.InteractionsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_interactions_total",
			Help: "Total number of control interactions applied, by trigger",
		},
		[]string{"trigger"},
	)

	r.ActiveSessions = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphscope_active_sessions",
			Help: "Number of open dashboard sessions",
		},
	)

	r.NoticesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_notices_total",
			Help: "User-facing notices emitted, by category",
		},
		[]string{"category"},
	)
}

func (r *Registry) initPipelineMetrics() {
	r.StageDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphscope_stage_duration_seconds",
			Help:    "Pipeline stage duration in seconds",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5},
		},
		[]string{"stage"},
	)

	r.StageFallbacksTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_stage_fallbacks_total",
			Help: "Stages that failed and fell back to the full styled view",
		},
		[]string{"stage", "subcategory"},
	)

	r.VisibleNodes = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "graphscope_visible_nodes",
			Help:    "Visible node count per rendered payload",
			Buckets: []float64{10, 50, 100, 500, 1000, 5000},
		},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"path", "status"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "graphscope_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	r.WebsocketMessagesTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "graphscope_websocket_messages_total",
			Help: "Websocket messages by direction and type",
		},
		[]string{"direction", "type"},
	)
}

func (r *Registry) initDatasetMetrics() {
	r.DatasetNodes = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphscope_dataset_nodes",
			Help: "Nodes in the loaded base dataset",
		},
	)

	r.DatasetEdges = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "graphscope_dataset_edges",
			Help: "Edges in the loaded base dataset",
		},
	)
}

// RecordStage records one stage run. subcategory is empty for a successful stage.
func (r *Registry) RecordStage(stage, subcategory string, duration time.Duration) {
	r.StageDuration.WithLabelValues(stage).Observe(duration.Seconds())
	if subcategory != "" {
		r.StageFallbacksTotal.WithLabelValues(stage, subcategory).Inc()
	}
}

// RecordInteraction records one Apply call
func (r *Registry) RecordInteraction(trigger string, visibleNodes int) {
	if trigger == "" {
		trigger = "none"
	}
	r.InteractionsTotal.WithLabelValues(trigger).Inc()
	r.VisibleNodes.Observe(float64(visibleNodes))
}

// RecordNotice counts a user-facing notice
func (r *Registry) RecordNotice(category string) {
	r.NoticesTotal.WithLabelValues(category).Inc()
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(path, status string, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(path, status).Inc()
	r.HTTPRequestDuration.WithLabelValues(path).Observe(duration.Seconds())
}

// RecordMessage counts a websocket message. direction is "in" or "out".
func (r *Registry) RecordMessage(direction, msgType string) {
	r.WebsocketMessagesTotal.WithLabelValues(direction, msgType).Inc()
}

// SetDataset records the size of the loaded base dataset
func (r *Registry) SetDataset(nodes, edges int) {
	r.DatasetNodes.Set(float64(nodes))
	r.DatasetEdges.Set(float64(edges))
}

// GetPrometheusRegistry returns the underlying Prometheus registry
func (r *Registry) GetPrometheusRegistry() *prometheus.Registry {
	return r.registry
}

// Handler serves the registry in the prometheus exposition format
func (r *Registry) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{})
}

// SetActiveSessions records the number of connected dashboard sessions
func (r *Registry) SetActiveSessions(n int) {
	r.ActiveSessions.Set(float64(n))
}
