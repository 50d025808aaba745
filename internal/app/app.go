// Package app wires the service together. All state is constructed here and
// injected; no package holds module-level caches or connections.
package app

import (
	"context"
	"sync"

	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/internal/storage"
	"github.com/borsalabs/borsafeed/pkg/cache"
	"github.com/borsalabs/borsafeed/pkg/config"
	"github.com/borsalabs/borsafeed/pkg/healthprobe"
	"github.com/borsalabs/borsafeed/pkg/httpserver"
)

// App is the main application orchestrator.
type App struct {
	cfg           *config.Config
	logger        *zap.Logger
	healthChecker *healthprobe.HealthChecker
	httpServer    *httpserver.Server
	cacheStore    cache.Store
	snapStorage   storage.Storage
	ctx           context.Context
	cancel        context.CancelFunc
	wg            sync.WaitGroup
}
