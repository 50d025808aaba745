package cache

import (
	"context"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// FetchFunc pulls fresh data from an upstream source. It must return an error
// rather than panic across the cache boundary; transport timeouts are its own
// concern (bounded, ~30s).
type FetchFunc func(ctx context.Context) (interface{}, error)

// MissRecorder observes every successful miss fetch. The app wires snapshot
// persistence here; recording is best-effort and must not fail the request.
type MissRecorder interface {
	RecordMiss(ctx context.Context, key string, value interface{}, fetchedAt time.Time)
}

// Orchestrator is the single get-or-fetch coordinator between the cache store
// and provider fetch functions. It owns the entry lifecycle: nothing else
// writes to or removes entries from the store.
type Orchestrator struct {
	store    Store
	logger   *zap.Logger
	group    *singleflight.Group // nil when de-duplication is disabled
	recorder MissRecorder
	nowFn    func() time.Time
}

// OrchestratorConfig holds configuration for an Orchestrator.
type OrchestratorConfig struct {
	Store  Store
	Logger *zap.Logger

	// SingleFlight de-duplicates concurrent fetches for the same key. Off,
	// concurrent callers hitting a stale or absent key each fetch
	// independently; every caller still gets its own correct result and the
	// last write to the store wins, so only efficiency suffers. On, one
	// in-flight fetch per key is shared by all waiters.
	SingleFlight bool

	// Recorder, if non-nil, is invoked after every successful miss fetch.
	Recorder MissRecorder
}

// NewOrchestrator creates a get-or-fetch coordinator over the given store.
func NewOrchestrator(cfg *OrchestratorConfig) *Orchestrator {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	o := &Orchestrator{
		store:    cfg.Store,
		logger:   logger,
		recorder: cfg.Recorder,
		nowFn:    time.Now,
	}

	if cfg.SingleFlight {
		o.group = &singleflight.Group{}
	}

	return o
}

// Do returns the cached value for key if it is fresh under policy, otherwise
// invokes fetch exactly once, stores the result, and returns it.
//
// A fetch failure propagates to the caller unchanged and leaves the store
// untouched: no poisoned entries, and no stale entry is served as a fallback.
// Hits are silent apart from a debug log; every miss is observable.
func (o *Orchestrator) Do(ctx context.Context, key string, policy Policy, fetch FetchFunc) (interface{}, error) {
	now := o.nowFn()

	if entry, ok := o.store.Get(key); ok {
		if now.Sub(entry.FetchedAt) < policy.TTLFor(now) {
			HitsTotal.Inc()
			o.logger.Debug("cache-hit", zap.String("key", key))
			return entry.Value, nil
		}
	}

	MissesTotal.Inc()
	o.logger.Debug("cache-miss", zap.String("key", key))

	if o.group != nil {
		value, err, shared := o.group.Do(key, func() (interface{}, error) {
			return o.fetchAndStore(ctx, key, fetch)
		})
		if shared {
			o.logger.Debug("cache-fetch-shared", zap.String("key", key))
		}
		return value, err
	}

	return o.fetchAndStore(ctx, key, fetch)
}

func (o *Orchestrator) fetchAndStore(ctx context.Context, key string, fetch FetchFunc) (interface{}, error) {
	value, err := fetch(ctx)
	if err != nil {
		FetchFailuresTotal.Inc()
		o.logger.Warn("cache-fetch-failed",
			zap.String("key", key),
			zap.Error(err))
		return nil, err
	}

	o.store.Put(key, value)

	if o.recorder != nil {
		o.recorder.RecordMiss(ctx, key, value, o.nowFn())
	}

	return value, nil
}

// Invalidate removes the entry for key, forcing the next Do to fetch.
func (o *Orchestrator) Invalidate(key string) {
	o.store.Delete(key)
	o.logger.Debug("cache-invalidated", zap.String("key", key))
}

// Clear removes all entries.
func (o *Orchestrator) Clear() {
	o.store.Clear()
	o.logger.Info("cache-cleared")
}
