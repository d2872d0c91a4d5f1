package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ProviderCallsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayraweather_provider_calls_total",
			Help: "Total upstream provider calls",
		},
		[]string{"source", "endpoint", "status"},
	)

	ProviderLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "wayraweather_provider_latency_seconds",
			Help:    "Upstream provider call latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source", "endpoint"},
	)

	HistoricalYearsFailed = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "wayraweather_historical_years_failed_total",
			Help: "Historical sample years dropped after a failed fetch",
		},
	)

	HistoricalSamples = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "wayraweather_historical_samples",
			Help:    "Pooled historical samples per probability computation",
			Buckets: []float64{0, 50, 100, 200, 300, 400, 500, 600},
		},
	)

	AnalysesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wayraweather_analyses_total",
			Help: "Total analysis requests by outcome",
		},
		[]string{"outcome"},
	)
)
