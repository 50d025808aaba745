// Package circuitbreaker guards the upstream scraping targets. The public
// sites this service reads from fail in bursts, and hammering a failing
// upstream with retries only gets the scraper IP blocked. Each upstream gets
// its own breaker: after a run of consecutive failures the breaker opens and
// fails calls fast until a cooldown elapses, then lets a single probe through.
package circuitbreaker

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// ErrOpen is returned by Do when the breaker is open and the cooldown has
// not elapsed yet.
var ErrOpen = errors.New("circuit breaker open")

// State is the breaker state machine position.
type State int

const (
	// StateClosed lets all calls through.
	StateClosed State = iota
	// StateOpen fails all calls fast until the cooldown elapses.
	StateOpen
	// StateHalfOpen lets a single probe call through to test recovery.
	StateHalfOpen
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateOpen:
		return "open"
	case StateHalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker is a consecutive-failure circuit breaker for a single upstream.
type Breaker struct {
	upstream  string
	threshold int
	cooldown  time.Duration
	logger    *zap.Logger

	mu       sync.Mutex
	state    State
	failures int
	openedAt time.Time

	nowFn func() time.Time
}

// Config holds breaker configuration.
type Config struct {
	Upstream  string        // upstream name, used in logs and metrics
	Threshold int           // consecutive failures before the breaker opens
	Cooldown  time.Duration // how long the breaker stays open
	Logger    *zap.Logger
}

// New creates a breaker for one upstream.
func New(cfg *Config) (*Breaker, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}
	if cfg.Upstream == "" {
		return nil, fmt.Errorf("upstream name cannot be empty")
	}
	if cfg.Threshold <= 0 {
		return nil, fmt.Errorf("failure threshold must be positive")
	}
	if cfg.Cooldown <= 0 {
		return nil, fmt.Errorf("cooldown must be positive")
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	BreakerState.WithLabelValues(cfg.Upstream).Set(float64(StateClosed))

	return &Breaker{
		upstream:  cfg.Upstream,
		threshold: cfg.Threshold,
		cooldown:  cfg.Cooldown,
		logger:    logger,
		state:     StateClosed,
		nowFn:     time.Now,
	}, nil
}

// Do executes fn under the breaker. While open it returns ErrOpen without
// calling fn; after the cooldown it lets one probe through and closes again
// on success.
func (b *Breaker) Do(fn func() error) error {
	if !b.allow() {
		BreakerRejectionsTotal.WithLabelValues(b.upstream).Inc()
		return ErrOpen
	}

	err := fn()
	b.record(err)
	return err
}

// State returns the current breaker state.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked()
}

func (b *Breaker) allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.stateLocked() {
	case StateOpen:
		return false
	case StateHalfOpen:
		// One probe at a time. Transition to half-open happens in
		// stateLocked; the probe outcome is decided in record.
		b.state = StateHalfOpen
		return true
	default:
		return true
	}
}

// stateLocked resolves the effective state, promoting open to half-open once
// the cooldown has elapsed. Caller must hold mu.
func (b *Breaker) stateLocked() State {
	if b.state == StateOpen && b.nowFn().Sub(b.openedAt) >= b.cooldown {
		b.state = StateHalfOpen
		BreakerState.WithLabelValues(b.upstream).Set(float64(StateHalfOpen))
		b.logger.Info("circuit-breaker-half-open",
			zap.String("upstream", b.upstream))
	}
	return b.state
}

func (b *Breaker) record(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if err == nil {
		if b.state != StateClosed {
			b.logger.Info("circuit-breaker-closed",
				zap.String("upstream", b.upstream),
				zap.Int("failures", b.failures))
			BreakerTransitionsTotal.WithLabelValues(b.upstream).Inc()
		}
		b.state = StateClosed
		b.failures = 0
		BreakerState.WithLabelValues(b.upstream).Set(float64(StateClosed))
		return
	}

	b.failures++
	BreakerFailuresTotal.WithLabelValues(b.upstream).Inc()

	// A failed half-open probe reopens immediately; in closed state the
	// breaker opens only once the consecutive run reaches the threshold.
	if b.state == StateHalfOpen || b.failures >= b.threshold {
		b.state = StateOpen
		b.openedAt = b.nowFn()
		BreakerState.WithLabelValues(b.upstream).Set(float64(StateOpen))
		BreakerTransitionsTotal.WithLabelValues(b.upstream).Inc()

		b.logger.Warn("circuit-breaker-opened",
			zap.String("upstream", b.upstream),
			zap.Int("consecutive_failures", b.failures),
			zap.Duration("cooldown", b.cooldown))
	}
}
