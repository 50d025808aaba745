package app

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Shutdown gracefully shuts down the application: stop accepting requests,
// drain in-flight ones, then close storage.
func (a *App) Shutdown() error {
	a.logger.Info("application-shutting-down")

	a.healthChecker.SetReady(false)

	a.cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := a.httpServer.Shutdown(shutdownCtx); err != nil {
		a.logger.Error("http-server-shutdown-error", zap.Error(err))
	}

	if err := a.snapStorage.Close(); err != nil {
		a.logger.Error("storage-close-error", zap.Error(err))
	}

	a.cacheStore.Clear()

	a.wg.Wait()

	a.logger.Info("application-shutdown-complete")

	return nil
}
