package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/pkg/types"
)

type captureStorage struct {
	snaps []*types.Snapshot
	err   error
}

func (c *captureStorage) StoreSnapshot(_ context.Context, snap *types.Snapshot) error {
	if c.err != nil {
		return c.err
	}
	c.snaps = append(c.snaps, snap)
	return nil
}

func (c *captureStorage) Close() error { return nil }

func TestRecordMiss_BuildsSnapshot(t *testing.T) {
	store := &captureStorage{}
	rec := NewSnapshotRecorder(store, zap.NewNop())

	fetchedAt := time.Date(2026, 3, 2, 10, 30, 0, 0, time.UTC)
	value := map[string]string{"rate": "42.5"}

	rec.RecordMiss(context.Background(), "tcmb:policy", value, fetchedAt)

	if len(store.snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(store.snaps))
	}

	snap := store.snaps[0]
	if snap.Key != "tcmb:policy" {
		t.Errorf("key = %q", snap.Key)
	}
	if snap.Source != "tcmb" {
		t.Errorf("source = %q, want first key segment", snap.Source)
	}
	if snap.ID == "" {
		t.Error("expected a generated snapshot id")
	}
	if !snap.FetchedAt.Equal(fetchedAt) {
		t.Errorf("fetched at = %v", snap.FetchedAt)
	}

	var decoded map[string]string
	if err := json.Unmarshal(snap.Payload, &decoded); err != nil {
		t.Fatalf("payload not valid json: %v", err)
	}
	if decoded["rate"] != "42.5" {
		t.Errorf("payload = %s", snap.Payload)
	}
}

func TestRecordMiss_StorageFailureIsSwallowed(t *testing.T) {
	store := &captureStorage{err: errors.New("db down")}
	rec := NewSnapshotRecorder(store, zap.NewNop())

	// Must not panic or propagate; the audit trail is best-effort.
	rec.RecordMiss(context.Background(), "fxrates:current:usd", 42.0, time.Now())
}

func TestRecordMiss_KeyWithoutSeparator(t *testing.T) {
	store := &captureStorage{}
	rec := NewSnapshotRecorder(store, zap.NewNop())

	rec.RecordMiss(context.Background(), "indices", []string{"XU030"}, time.Now())

	if len(store.snaps) != 1 {
		t.Fatalf("expected 1 snapshot, got %d", len(store.snaps))
	}
	if store.snaps[0].Source != "indices" {
		t.Errorf("source = %q", store.snaps[0].Source)
	}
}
