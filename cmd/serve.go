package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/borsalabs/borsafeed/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the data service",
	Long: `Starts the borsafeed HTTP service:
1. Wires the in-memory cache, freshness policies and snapshot storage
2. Exposes the data API plus /health, /ready and /metrics
3. Blocks until SIGINT or SIGTERM, then shuts down gracefully`,
	RunE: runServe,
}

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	application, err := app.New(cfg, logger)
	if err != nil {
		return fmt.Errorf("create app: %w", err)
	}

	if err := application.Run(); err != nil {
		return fmt.Errorf("run app: %w", err)
	}

	return nil
}
