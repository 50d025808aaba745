package cache

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

//nolint:gochecknoglobals // Prometheus metrics
var (
	HitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_cache_hits_total",
		Help: "Total number of cache hits served without an upstream fetch",
	})

	MissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_cache_misses_total",
		Help: "Total number of cache misses (absent or stale) that triggered a fetch",
	})

	FetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_cache_fetch_failures_total",
		Help: "Total number of miss fetches that failed and left the store unchanged",
	})

	StoreSetsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_cache_store_sets_total",
		Help: "Total number of entries written to cache stores",
	})

	StoreEvictionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_cache_store_evictions_total",
		Help: "Total number of entries discarded by capacity guards",
	})
)
