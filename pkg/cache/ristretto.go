package cache

import (
	"time"

	"github.com/dgraph-io/ristretto"
	"go.uber.org/zap"
)

// TTLStore is a bounded store backed by Ristretto that enforces one fixed TTL
// for every entry, chosen at construction. It suits high-volatility data
// (spot FX quotes) where every key shares the same freshness horizon; data
// classes with variable TTLs belong in a MemoryStore judged by a Policy.
type TTLStore struct {
	cache  *ristretto.Cache
	ttl    time.Duration
	logger *zap.Logger
	nowFn  func() time.Time
}

// TTLConfig holds configuration for a TTLStore.
type TTLConfig struct {
	MaxEntries int64         // maximum number of items admitted
	TTL        time.Duration // fixed per-entry lifetime
	Logger     *zap.Logger
}

// NewTTLStore creates a Ristretto-backed fixed-TTL store.
func NewTTLStore(cfg *TTLConfig) (*TTLStore, error) {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	rc, err := ristretto.NewCache(&ristretto.Config{
		NumCounters: cfg.MaxEntries * 10, // 10x max items, per Ristretto guidance
		MaxCost:     cfg.MaxEntries,
		BufferItems: 64,
		Metrics:     true,
	})
	if err != nil {
		return nil, err
	}

	return &TTLStore{
		cache:  rc,
		ttl:    cfg.TTL,
		logger: logger,
		nowFn:  time.Now,
	}, nil
}

// Get retrieves an entry. Entries past the store's fixed TTL are already gone.
func (s *TTLStore) Get(key string) (Entry, bool) {
	value, found := s.cache.Get(key)
	if !found {
		return Entry{}, false
	}

	entry, ok := value.(Entry)
	if !ok {
		return Entry{}, false
	}

	return entry, true
}

// Put stores value under key with the current timestamp; the store's fixed
// TTL applies. Cost is 1 per item: the bound counts entries, not bytes.
func (s *TTLStore) Put(key string, value interface{}) {
	entry := Entry{Value: value, FetchedAt: s.nowFn()}

	admitted := s.cache.SetWithTTL(key, entry, 1, s.ttl)
	if admitted {
		StoreSetsTotal.Inc()
	} else {
		s.logger.Debug("cache-store-set-rejected", zap.String("key", key))
	}
}

// Delete removes the entry for key.
func (s *TTLStore) Delete(key string) {
	s.cache.Del(key)
}

// Clear removes all entries.
func (s *TTLStore) Clear() {
	s.cache.Clear()
	s.logger.Info("cache-store-cleared")
}

// Size returns the approximate number of live entries, derived from
// Ristretto's admission/eviction counters. Observability only; Ristretto
// does not expose an exact count.
func (s *TTLStore) Size() int {
	m := s.cache.Metrics
	n := int64(m.KeysAdded()) - int64(m.KeysEvicted())
	if n < 0 {
		return 0
	}

	return int(n)
}

// Wait blocks until pending writes are applied. Ristretto buffers sets;
// tests call this before asserting on Get.
func (s *TTLStore) Wait() {
	s.cache.Wait()
}

// Close releases the underlying Ristretto resources.
func (s *TTLStore) Close() {
	s.cache.Close()
}
