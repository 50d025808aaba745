package cache

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

// EvictionMode selects what a MemoryStore does when a Put would exceed its
// capacity. The choice is observable behavior and must be documented per
// cache instance: a full clear discards every entry and causes a cache-miss
// storm on the next burst of requests.
type EvictionMode int

const (
	// EvictOldest removes the entries with the oldest FetchedAt until the new
	// entry fits. Preserves hot data; preferred for request-level caches.
	EvictOldest EvictionMode = iota

	// ClearAll wipes the whole store when the bound would be exceeded.
	// Cruder, acceptable for small low-traffic key sets such as fund codes.
	ClearAll
)

// MemoryStore is a mutex-guarded bounded map of cache entries. Entries carry
// their own fetch timestamps and never expire on their own; staleness is
// judged by the Orchestrator against a Policy. Safe for concurrent use.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[string]Entry

	maxEntries int
	mode       EvictionMode
	logger     *zap.Logger
	nowFn      func() time.Time
}

// MemoryConfig holds configuration for a MemoryStore.
type MemoryConfig struct {
	MaxEntries int          // capacity bound; defaults to 1000
	Mode       EvictionMode // capacity-guard strategy
	Logger     *zap.Logger
}

// NewMemoryStore creates a bounded in-memory store.
func NewMemoryStore(cfg *MemoryConfig) *MemoryStore {
	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 1000
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	return &MemoryStore{
		entries:    make(map[string]Entry),
		maxEntries: maxEntries,
		mode:       cfg.Mode,
		logger:     logger,
		nowFn:      time.Now,
	}
}

// Get retrieves an entry. O(1); no freshness judgment.
func (s *MemoryStore) Get(key string) (Entry, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// Put stores value under key with the current timestamp. If the store is at
// capacity and key is not already present, the capacity guard runs first.
// The guard is a maintenance operation: it always succeeds, never errors.
func (s *MemoryStore) Put(key string, value interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxEntries {
		s.enforceCapacity()
	}

	s.entries[key] = Entry{Value: value, FetchedAt: s.nowFn()}
	StoreSetsTotal.Inc()
}

// enforceCapacity makes room for one new entry. Caller holds the write lock.
func (s *MemoryStore) enforceCapacity() {
	if s.mode == ClearAll {
		n := len(s.entries)
		s.entries = make(map[string]Entry)
		StoreEvictionsTotal.Add(float64(n))
		s.logger.Info("cache-store-cleared-at-capacity", zap.Int("discarded", n))
		return
	}

	// EvictOldest: scan for the stalest entry. O(n), fine for the
	// configured bounds (hundreds to low thousands of keys).
	for len(s.entries) >= s.maxEntries {
		var (
			oldestKey string
			oldestAt  time.Time
			first     = true
		)
		for k, e := range s.entries {
			if first || e.FetchedAt.Before(oldestAt) {
				oldestKey, oldestAt, first = k, e.FetchedAt, false
			}
		}

		delete(s.entries, oldestKey)
		StoreEvictionsTotal.Inc()
		s.logger.Debug("cache-store-evicted-oldest",
			zap.String("key", oldestKey),
			zap.Time("fetched_at", oldestAt))
	}
}

// Delete removes the entry for key.
func (s *MemoryStore) Delete(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.entries, key)
}

// Clear removes all entries.
func (s *MemoryStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[string]Entry)
}

// Size returns the number of live entries.
func (s *MemoryStore) Size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return len(s.entries)
}
