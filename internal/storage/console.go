package storage

import (
	"context"

	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/pkg/types"
)

// ConsoleStorage implements Storage by logging snapshots instead of
// persisting them. It is the default mode for local runs without a database.
type ConsoleStorage struct {
	logger *zap.Logger
}

// NewConsoleStorage creates a new console storage.
func NewConsoleStorage(logger *zap.Logger) *ConsoleStorage {
	logger.Info("console-storage-initialized")
	return &ConsoleStorage{
		logger: logger,
	}
}

// StoreSnapshot logs one fetch snapshot.
func (c *ConsoleStorage) StoreSnapshot(ctx context.Context, snap *types.Snapshot) error {
	c.logger.Info("snapshot",
		zap.String("snapshot-id", snap.ID),
		zap.String("cache-key", snap.Key),
		zap.String("source", snap.Source),
		zap.Time("fetched-at", snap.FetchedAt),
		zap.Int("payload-bytes", len(snap.Payload)))

	return nil
}

// Close is a no-op for console storage.
func (c *ConsoleStorage) Close() error {
	c.logger.Info("closing-console-storage")
	return nil
}
