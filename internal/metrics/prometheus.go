package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"delphi/pkg/errors"
)

var (
	// Pipeline metrics
	PipelineRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delphi_pipeline_runs_total",
			Help: "Total number of analysis pipeline runs",
		},
		[]string{"status"}, // status: success|error|timeout
	)

	PipelineDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delphi_pipeline_duration_seconds",
			Help:    "Full pipeline run duration in seconds",
			Buckets: []float64{5, 10, 30, 60, 120, 180, 300},
		},
		[]string{"status"},
	)

	// Agent metrics
	AgentCalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delphi_agent_calls_total",
			Help: "Total number of agent step invocations",
		},
		[]string{"agent", "model", "status"}, // status: success|error
	)

	AgentLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delphi_agent_latency_seconds",
			Help:    "Agent step latency in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30, 60},
		},
		[]string{"agent", "model"},
	)

	AgentTokens = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delphi_agent_tokens_total",
			Help: "Total tokens used by agent steps",
		},
		[]string{"agent", "model", "type"}, // type: input|output
	)

	// Data API metrics
	DataAPICalls = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delphi_data_api_calls_total",
			Help: "Total number of market data API calls",
		},
		[]string{"source", "endpoint", "status"}, // source: fmp|alphavantage
	)

	DataAPILatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "delphi_data_api_latency_seconds",
			Help:    "Market data API latency in seconds",
			Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
		},
		[]string{"source", "endpoint"},
	)

	// Cache metrics
	CacheOperations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delphi_cache_operations_total",
			Help: "Total number of cache store operations",
		},
		[]string{"operation", "status"}, // operation: check|load|save|delete|clear
	)

	CacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delphi_cache_lookups_total",
			Help: "Cache lookups by outcome",
		},
		[]string{"outcome"}, // outcome: hit|miss
	)

	// WebSocket metrics
	WebSocketConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "delphi_websocket_connections",
			Help: "Current number of active dashboard WebSocket connections",
		},
	)

	WebSocketMessages = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "delphi_websocket_messages_total",
			Help: "Total WebSocket messages sent by type",
		},
		[]string{"type"}, // type: start|progress|complete|error
	)
)

// Init registers all metrics with Prometheus
func Init() {
	prometheus.MustRegister(PipelineRuns)
	prometheus.MustRegister(PipelineDuration)

	prometheus.MustRegister(AgentCalls)
	prometheus.MustRegister(AgentLatency)
	prometheus.MustRegister(AgentTokens)

	prometheus.MustRegister(DataAPICalls)
	prometheus.MustRegister(DataAPILatency)

	prometheus.MustRegister(CacheOperations)
	prometheus.MustRegister(CacheHits)

	prometheus.MustRegister(WebSocketConnections)
	prometheus.MustRegister(WebSocketMessages)
}

// Handler returns Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// RecordPipelineRun records a completed pipeline run
func RecordPipelineRun(duration time.Duration, status string) {
	PipelineRuns.WithLabelValues(status).Inc()
	PipelineDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordAgentCall records an agent step invocation
func RecordAgentCall(agent, model string, latency time.Duration, inputTokens, outputTokens int, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	AgentCalls.WithLabelValues(agent, model, status).Inc()
	AgentLatency.WithLabelValues(agent, model).Observe(latency.Seconds())

	if inputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		AgentTokens.WithLabelValues(agent, model, "output").Add(float64(outputTokens))
	}
}

// RecordDataAPICall records a market data API call
func RecordDataAPICall(source, endpoint string, latency time.Duration, err error) {
	status := "success"
	switch {
	case err == nil:
	case errors.Is(err, errors.ErrRateLimitExceeded):
		status = "rate_limited"
	default:
		status = "error"
	}

	DataAPICalls.WithLabelValues(source, endpoint, status).Inc()
	DataAPILatency.WithLabelValues(source, endpoint).Observe(latency.Seconds())
}

// RecordCacheOperation records a cache store operation
func RecordCacheOperation(operation string, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	CacheOperations.WithLabelValues(operation, status).Inc()
}

// RecordCacheLookup records a cache hit or miss
func RecordCacheLookup(hit bool) {
	outcome := "miss"
	if hit {
		outcome = "hit"
	}
	CacheHits.WithLabelValues(outcome).Inc()
}
