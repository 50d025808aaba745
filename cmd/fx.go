package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/borsalabs/borsafeed/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var fxCmd = &cobra.Command{
	Use:   "fx <asset>",
	Short: "Print the current price of a currency, metal or commodity",
	Long: `Fetches the latest TRY price for an asset and prints it as JSON.

Examples:
  borsafeed fx usd
  borsafeed fx gram-altin --institution akbank
  borsafeed fx eur --banks`,
	Args: cobra.ExactArgs(1),
	RunE: runFX,
}

//nolint:gochecknoglobals // Cobra boilerplate
var (
	fxInstitution string
	fxBanks       bool
)

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(fxCmd)

	fxCmd.Flags().StringVar(&fxInstitution, "institution", "", "Use one bank's published rate instead of the market rate")
	fxCmd.Flags().BoolVar(&fxBanks, "banks", false, "Print the per-bank rate comparison table")
}

func runFX(cmd *cobra.Command, args []string) error {
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

	asset := args[0]

	if fxBanks {
		rates, err := providers.FX.BankRates(ctx, asset)
		if err != nil {
			return fmt.Errorf("fetch bank rates: %w", err)
		}
		return printJSON(rates)
	}

	quote, err := providers.FX.Current(ctx, asset, fxInstitution)
	if err != nil {
		return fmt.Errorf("fetch quote: %w", err)
	}
	return printJSON(quote)
}
