package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/borsalabs/borsafeed/internal/app"
)

//nolint:gochecknoglobals // Cobra boilerplate
var eurobondsCmd = &cobra.Command{
	Use:   "eurobonds [isin]",
	Short: "List Turkish sovereign Eurobonds",
	Long: `Fetches the Eurobond board and prints it as JSON, sorted by
maturity. Pass an ISIN to print a single bond.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runEurobonds,
}

//nolint:gochecknoglobals // Cobra boilerplate
var eurobondCurrency string

//nolint:gochecknoinits // Cobra boilerplate
func init() {
	rootCmd.AddCommand(eurobondsCmd)

	eurobondsCmd.Flags().StringVar(&eurobondCurrency, "currency", "", "Filter by denomination (USD, EUR)")
}

func runEurobonds(cmd *cobra.Command, args []string) error {
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

	if len(args) == 1 {
		bond, err := providers.Bonds.ByISIN(ctx, args[0])
		if err != nil {
			return fmt.Errorf("fetch bond: %w", err)
		}
		return printJSON(bond)
	}

	bonds, err := providers.Bonds.List(ctx, eurobondCurrency)
	if err != nil {
		return fmt.Errorf("fetch eurobonds: %w", err)
	}
	return printJSON(bonds)
}
