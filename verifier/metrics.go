package verifier

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	mxCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "extant",
		Name:      "mx_cache_requests_total",
		Help:      "MX cache lookups by outcome (hit or miss).",
	}, []string{"outcome"})

	resultCacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "extant",
		Name:      "result_cache_requests_total",
		Help:      "Result cache lookups by outcome (hit or miss).",
	}, []string{"outcome"})

	verdictsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "extant",
		Name:      "pipeline_verdicts_total",
		Help:      "Verdicts produced by pipeline runs.",
	}, []string{"verdict"})

	probeDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "extant",
		Name:      "probe_duration_seconds",
		Help:      "Time spent in mailbox probes.",
		Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
	}, []string{"result"})

	retryAttempts = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "extant",
		Name:      "retry_attempts_total",
		Help:      "Verification attempts made by the retry coordinator.",
	})

	// CacheEntries reports cache sizes; updated by the cache reporter worker.
	CacheEntries = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "extant",
		Name:      "cache_entries",
		Help:      "Entries currently held per cache.",
	}, []string{"cache"})
)
