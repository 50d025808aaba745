package app

import (
	"testing"

	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/pkg/config"
)

func TestNew_ConsoleStorage(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	application, err := New(cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if application.httpServer == nil {
		t.Error("expected http server to be wired")
	}
	if application.cacheStore == nil {
		t.Error("expected cache store to be wired")
	}
	if application.snapStorage == nil {
		t.Error("expected snapshot storage to be wired")
	}

	if err := application.Shutdown(); err != nil {
		t.Errorf("Shutdown: %v", err)
	}
}

func TestNew_BadTimezone(t *testing.T) {
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	cfg.MarketTimezone = "Mars/Olympus"

	if _, err := New(cfg, zap.NewNop()); err == nil {
		t.Error("expected error for unknown timezone")
	}
}
