// Package metrics defines Prometheus instrumentation for the service.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Pipeline Prometheus metrics.
var (
	EmbeddingRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suttasearch",
			Name:      "embedding_requests_total",
			Help:      "Total number of query embedding requests",
		},
		[]string{"status"},
	)

	EmbeddingRequestDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "suttasearch",
			Name:      "embedding_request_duration_seconds",
			Help:      "Embedding request duration in seconds",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	EmbeddingDegradedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suttasearch",
			Name:      "embedding_degraded_total",
			Help:      "Queries that fell back to lexical-only retrieval, by reason",
		},
		[]string{"reason"}, // timeout / transport / status / decode / empty
	)

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suttasearch",
			Name:      "embedding_cache_total",
			Help:      "Query-vector cache hits and misses per layer",
		},
		[]string{"layer", "result"}, // layer: "lru" / "redis"; result: "hit" / "miss"
	)

	SearchFallbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suttasearch",
			Name:      "search_fallback_total",
			Help:      "Vector-only fallback retrievals, by trigger",
		},
		[]string{"trigger"}, // "zero_hits" / "low_score"
	)

	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suttasearch",
			Name:      "search_queries_total",
			Help:      "Search queries by detected language",
		},
		[]string{"lang"},
	)

	RerankRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "suttasearch",
			Name:      "rerank_requests_total",
			Help:      "Rerank invocations by outcome",
		},
		[]string{"status"}, // "success" / "error" / "skipped"
	)
)

var pipelineMetricsRegistered bool

// RegisterPipelineMetrics registers Prometheus pipeline metrics. Must be called once from main.
func RegisterPipelineMetrics() {
	if pipelineMetricsRegistered {
		return
	}
	prometheus.MustRegister(EmbeddingRequestsTotal)
	prometheus.MustRegister(EmbeddingRequestDuration)
	prometheus.MustRegister(EmbeddingDegradedTotal)
	prometheus.MustRegister(EmbeddingCacheTotal)
	prometheus.MustRegister(SearchFallbackTotal)
	prometheus.MustRegister(SearchQueriesTotal)
	prometheus.MustRegister(RerankRequestsTotal)
	pipelineMetricsRegistered = true
}
