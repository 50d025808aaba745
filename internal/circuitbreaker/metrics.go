package circuitbreaker

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// BreakerState reports the breaker position per upstream
	// (0=closed, 1=open, 2=half_open).
	BreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "borsafeed_circuit_breaker_state",
		Help: "Circuit breaker state per upstream (0=closed, 1=open, 2=half_open)",
	}, []string{"upstream"})

	// BreakerFailuresTotal counts upstream call failures seen by the breaker.
	BreakerFailuresTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borsafeed_circuit_breaker_failures_total",
		Help: "Total upstream call failures recorded by the circuit breaker",
	}, []string{"upstream"})

	// BreakerRejectionsTotal counts calls rejected while the breaker was open.
	BreakerRejectionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borsafeed_circuit_breaker_rejections_total",
		Help: "Total calls rejected fast because the circuit breaker was open",
	}, []string{"upstream"})

	// BreakerTransitionsTotal counts open/close state transitions.
	BreakerTransitionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "borsafeed_circuit_breaker_transitions_total",
		Help: "Total circuit breaker state transitions",
	}, []string{"upstream"})
)
