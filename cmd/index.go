package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/borsalabs/borsafeed/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var indexCmd = &cobra.Command{
	Use:   "index [symbol]",
	Short: "Print the constituents of a BIST index",
	Long: `Fetches the official constituents file and prints the members of an
index as JSON.

Examples:
  borsafeed index XU030
  borsafeed index --list`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

//nolint:gochecknoglobals // Cobra boilerplate
var indexList bool

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(indexCmd)

	indexCmd.Flags().BoolVar(&indexList, "list", false, "Print all known indices instead of one index's members")
}

func runIndex(cmd *cobra.Command, args []string) error {
	cfg, logger, err := bootstrap()
	if err != nil {
		return err
	}
	defer func() {
		_ = logger.Sync()
	}()

	providers, err := app.NewProviders(cfg, logger)
	if err != nil {
		return fmt.Errorf("create providers: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	if indexList {
		indices, err := providers.Indices.Indices(ctx)
		if err != nil {
			return fmt.Errorf("fetch indices: %w", err)
		}
		return printJSON(indices)
	}

	if len(args) != 1 {
		return fmt.Errorf("an index symbol is required unless --list is set")
	}

	components, err := providers.Indices.Components(ctx, args[0])
	if err != nil {
		return fmt.Errorf("fetch index components: %w", err)
	}
	return printJSON(components)
}
