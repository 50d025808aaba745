package tcmb

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchesTotal counts successful rate page downloads per rate type.
	FetchesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borsafeed_tcmb_fetches_total",
		Help: "Total successful central bank rate page fetches",
	}, []string{"rate_type"})

	// FetchFailuresTotal counts failed downloads or unparseable pages.
	FetchFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borsafeed_tcmb_fetch_failures_total",
		Help: "Total failed central bank rate page fetches",
	}, []string{"rate_type"})
)
