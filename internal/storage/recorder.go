package storage

import (
	"context"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/pkg/types"
)

// SnapshotRecorder bridges the cache layer to Storage: every cache-miss
// fetch becomes one snapshot row. Persistence failures are logged and
// swallowed; the audit trail never breaks a live request.
type SnapshotRecorder struct {
	storage Storage
	logger  *zap.Logger
}

// NewSnapshotRecorder creates a recorder writing to the given storage.
func NewSnapshotRecorder(storage Storage, logger *zap.Logger) *SnapshotRecorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SnapshotRecorder{
		storage: storage,
		logger:  logger,
	}
}

// RecordMiss persists the freshly fetched value keyed by its cache key.
// The key's first segment names the source ("tcmb:policy:..." -> "tcmb").
func (r *SnapshotRecorder) RecordMiss(ctx context.Context, key string, value interface{}, fetchedAt time.Time) {
	payload, err := json.Marshal(value)
	if err != nil {
		r.logger.Warn("snapshot-marshal-failed",
			zap.String("cache-key", key),
			zap.Error(err))
		return
	}

	source := key
	if i := strings.IndexByte(key, ':'); i > 0 {
		source = key[:i]
	}

	snap := &types.Snapshot{
		ID:        uuid.New().String(),
		Key:       key,
		Source:    source,
		FetchedAt: fetchedAt,
		Payload:   payload,
	}

	if err := r.storage.StoreSnapshot(ctx, snap); err != nil {
		r.logger.Warn("snapshot-store-failed",
			zap.String("cache-key", key),
			zap.Error(err))
	}
}
