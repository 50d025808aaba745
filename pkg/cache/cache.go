package cache

import "time"

// Entry is one cached value together with the time it was fetched from the
// upstream source. Entries are immutable once written: a refresh replaces the
// entry, it never mutates the value in place.
type Entry struct {
	Value     interface{}
	FetchedAt time.Time
}

// Store is the interface for keyed in-memory storage of fetch results.
//
// A Store does not judge freshness on Get. Freshness is decided by the
// Orchestrator from Entry.FetchedAt and a Policy-derived TTL, except for
// stores that enforce a fixed TTL chosen at construction time (TTLStore).
type Store interface {
	// Get retrieves an entry from the store.
	// Returns (entry, true) if present, (zero, false) if not.
	Get(key string) (Entry, bool)

	// Put stores a value under key with the current timestamp, overwriting
	// any existing entry for that key.
	Put(key string, value interface{})

	// Delete removes the entry for key, if any.
	Delete(key string)

	// Clear removes all entries.
	Clear()

	// Size returns the number of live entries.
	Size() int
}
