// Package metrics holds the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Recommendation requests by outcome: "ok", "empty", "invalid", "error".
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "recipematch_recommendations_total",
			Help: "Total number of recommendation requests",
		},
		[]string{"outcome"},
	)

	RecommendationResults = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "recipematch_recommendation_results",
			Help:    "Number of recipes returned per recommendation",
			Buckets: []float64{0, 1, 2, 3, 4, 5, 10},
		},
	)

	ModelCacheHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipematch_model_cache_hits_total",
			Help: "Total number of fitted model cache hits",
		},
	)

	ModelCacheMisses = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "recipematch_model_cache_misses_total",
			Help: "Total number of fitted model cache misses",
		},
	)

	StoreQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "recipematch_store_query_duration_seconds",
			Help:    "Duration of recipe store queries in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)
)
