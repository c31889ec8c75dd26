package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	pipelineRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_pipeline_runs_total",
			Help: "Natural-language pipeline runs by intent and outcome.",
		},
		[]string{"intent", "outcome"},
	)
	pipelineStageLatencyMs = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_pipeline_stage_latency_ms",
			Help:    "Latency of each pipeline stage in milliseconds.",
			Buckets: []float64{5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000},
		},
		[]string{"stage", "outcome"},
	)
	forbiddenQueriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_forbidden_queries_total",
			Help: "Synthesized queries rejected by the forbidden-verb filter.",
		},
	)
	llmCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_llm_calls_total",
			Help: "Model provider calls by provider and outcome.",
		},
		[]string{"provider", "outcome"},
	)
	weatherCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_weather_cache_total",
			Help: "Forecast cache lookups by result.",
		},
		[]string{"result"},
	)
	rateLimitedTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "assistant_rate_limited_requests_total",
			Help: "Requests rejected by the per-caller rate limiter.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		pipelineRunsTotal,
		pipelineStageLatencyMs,
		forbiddenQueriesTotal,
		llmCallsTotal,
		weatherCacheTotal,
		rateLimitedTotal,
	)
}

func outcome(ok bool) string {
	if ok {
		return "ok"
	}
	return "error"
}

func ObservePipelineRun(intent string, ok bool) {
	if intent == "" {
		intent = "unclassified"
	}
	pipelineRunsTotal.WithLabelValues(intent, outcome(ok)).Inc()
}

func ObserveStage(stage string, elapsed time.Duration, ok bool) {
	pipelineStageLatencyMs.WithLabelValues(stage, outcome(ok)).Observe(float64(elapsed.Milliseconds()))
}

func IncrementForbiddenQuery() {
	forbiddenQueriesTotal.Inc()
}

func ObserveLLMCall(provider string, ok bool) {
	llmCallsTotal.WithLabelValues(provider, outcome(ok)).Inc()
}

func ObserveWeatherCache(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	weatherCacheTotal.WithLabelValues(result).Inc()
}

func IncrementRateLimited() {
	rateLimitedTotal.Inc()
}
