package eurobond

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BoardHitsTotal counts queries answered from the cached board.
	BoardHitsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_eurobond_board_hits_total",
		Help: "Total Eurobond queries answered from the cached board",
	})

	// BoardRefreshesTotal counts successful board downloads.
	BoardRefreshesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_eurobond_board_refreshes_total",
		Help: "Total successful Eurobond board downloads",
	})

	// BoardRefreshFailuresTotal counts failed board downloads.
	BoardRefreshFailuresTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "borsafeed_eurobond_board_refresh_failures_total",
		Help: "Total failed Eurobond board downloads",
	})
)
