package tefas

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts successful fund platform fetches.
	FetchesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_tefas_fetches_total",
		Help: "Total successful fund platform fetches",
	})

	// FetchFailuresTotal counts failed or unparseable fund platform fetches.
	FetchFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_tefas_fetch_failures_total",
		Help: "Total failed fund platform fetches",
	})
)
