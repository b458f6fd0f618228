package mcpserver

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics is the process-global metrics registry (spec §5 "Metrics registry
// is a process-global singleton initialized once at startup", §6 "Metrics").
// Names and label sets match spec §6 verbatim.
type Metrics struct {
	registry *prometheus.Registry

	ToolCallsTotal     *prometheus.CounterVec
	ErrorsTotal        *prometheus.CounterVec
	HTTPRequestsTotal  *prometheus.CounterVec
	ServerStartsTotal  prometheus.Counter
	ToolExecSeconds    *prometheus.HistogramVec
	HTTPRequestSeconds *prometheus.HistogramVec
	ConnectionSeconds  prometheus.Histogram
	ActiveConnections  prometheus.Gauge
}

// NewMetrics builds and registers the full metric set against a fresh
// registry (so a disabled --enable-metrics run never touches the default
// global registry).
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		registry: reg,
		ToolCallsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_tool_calls_total",
			Help: "Total tool invocations by tool name and outcome.",
		}, []string{"tool", "status"}),
		ErrorsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_errors_total",
			Help: "Total errors by taxonomy kind and originating component.",
		}, []string{"type", "component"}),
		HTTPRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "mcp_http_requests_total",
			Help: "Total HTTP requests by method, path and status.",
		}, []string{"method", "path", "status"}),
		ServerStartsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "mcp_server_starts_total",
			Help: "Total number of times the tool server process has started.",
		}),
		ToolExecSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcp_tool_execution_duration_seconds",
			Help:    "Tool call execution latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"tool"}),
		HTTPRequestSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "mcp_http_request_duration_seconds",
			Help:    "HTTP handler latency.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "path"}),
		ConnectionSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "mcp_connection_duration_seconds",
			Help:    "Lifetime of a stdio or HTTP client connection.",
			Buckets: prometheus.ExponentialBuckets(1, 2, 12),
		}),
		ActiveConnections: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "mcp_active_connections",
			Help: "Number of currently connected clients.",
		}),
	}

	reg.MustRegister(
		m.ToolCallsTotal, m.ErrorsTotal, m.HTTPRequestsTotal, m.ServerStartsTotal,
		m.ToolExecSeconds, m.HTTPRequestSeconds, m.ConnectionSeconds, m.ActiveConnections,
	)
	return m
}

// Registry exposes the underlying registry for the /metrics HTTP handler.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }
