package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/borsalabs/borsafeed/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var ratesCmd = &cobra.Command{
	Use:   "rates",
	Short: "Print the current central bank rates",
	Long: `Fetches the latest central bank rates (one-week repo, overnight
borrowing/lending and late liquidity window) and prints them as JSON.

Use --history with a rate type to print the full published series.`,
	RunE: runRates,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	ratesHistoryType string
	ratesPeriod      string
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(ratesCmd)

	ratesCmd.Flags().StringVar(&ratesHistoryType, "history", "", "Print history for a rate type (policy, overnight, late_liquidity)")
	ratesCmd.Flags().StringVar(&ratesPeriod, "period", "max", "History period (1w, 1m, 3m, 6m, 1y, 2y, 5y, 10y, max)")
}

func runRates(cmd *cobra.Command, args []string) error {
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

	if ratesHistoryType != "" {
		records, err := providers.Rates.History(ctx, ratesHistoryType, ratesPeriod)
		if err != nil {
			return fmt.Errorf("fetch rate history: %w", err)
		}
		return printJSON(records)
	}

	records, err := providers.Rates.AllRates(ctx)
	if err != nil {
		return fmt.Errorf("fetch rates: %w", err)
	}
	return printJSON(records)
}
