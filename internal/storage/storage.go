package storage

import (
	"context"

	"github.com/borsalabs/borsafeed/pkg/types"
)

// Storage is the interface for persisting fetch snapshots. Snapshots are an
// audit trail of what was fetched and when; the in-memory cache is never
// rebuilt from them.
type Storage interface {
	// StoreSnapshot persists one cache-miss fetch result.
	StoreSnapshot(ctx context.Context, snap *types.Snapshot) error

	// Close closes the storage connection.
	Close() error
}
