package fxrates

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts successful upstream fetches per endpoint.
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borsafeed_fxrates_fetches_total",
		Help: "Total successful FX upstream fetches",
	}, []string{"endpoint"})

	// FetchFailuresTotal counts failed or unparseable upstream fetches.
	FetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borsafeed_fxrates_fetch_failures_total",
		Help: "Total failed FX upstream fetches",
	}, []string{"endpoint"})
)
