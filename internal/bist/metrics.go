package bist

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// DatasetHitsTotal counts queries answered from the cached dataset.
	DatasetHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_bist_dataset_hits_total",
		Help: "Total index membership queries answered from the cached constituents dataset",
	})

	// DatasetRefreshesTotal counts successful dataset downloads.
	DatasetRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_bist_dataset_refreshes_total",
		Help: "Total successful constituents dataset downloads",
	})

	// DatasetRefreshFailuresTotal counts failed dataset downloads.
	DatasetRefreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_bist_dataset_refresh_failures_total",
		Help: "Total failed constituents dataset downloads",
	})
)
