package app

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/internal/bist"
	"github.com/borsalabs/borsafeed/internal/eurobond"
	"github.com/borsalabs/borsafeed/internal/fxrates"
	"github.com/borsalabs/borsafeed/internal/tcmb"
	"github.com/borsalabs/borsafeed/internal/tefas"
	"github.com/borsalabs/borsafeed/pkg/config"
)

// Providers bundles one configured instance of every data provider. The
// service wires them behind the cached API; the CLI subcommands use them
// directly for one-shot queries.
type Providers struct {
	Rates   *tcmb.Provider
	FX      *fxrates.Provider
	Indices *bist.Provider
	Bonds   *eurobond.Provider
	Funds   *tefas.Provider
}

// NewProviders constructs all providers with their rate-limited clients and
// circuit breakers.
func NewProviders(cfg *config.Config, logger *zap.Logger) (*Providers, error) {
	loc, err := time.LoadLocation(cfg.MarketTimezone)
	if err != nil {
		return nil, fmt.Errorf("load market timezone: %w", err)
	}

	tcmbClient, tcmbBreaker, err := setupUpstream(cfg, logger, "tcmb", tcmbBaseURL)
	if err != nil {
		return nil, err
	}
	bistClient, bistBreaker, err := setupUpstream(cfg, logger, "bist", bistBaseURL)
	if err != nil {
		return nil, err
	}
	fxClient, fxBreaker, err := setupUpstream(cfg, logger, "fxrates", fxratesBaseURL)
	if err != nil {
		return nil, err
	}
	bondClient, bondBreaker, err := setupUpstream(cfg, logger, "eurobond", eurobondBaseURL)
	if err != nil {
		return nil, err
	}
	fundClient, fundBreaker, err := setupUpstream(cfg, logger, "tefas", tefasBaseURL)
	if err != nil {
		return nil, err
	}

	return &Providers{
		Rates:   tcmb.New(tcmbClient, tcmbBreaker, loc, logger),
		FX:      fxrates.New(fxClient, fxBreaker, logger),
		Indices: bist.New(bistClient, bistBreaker, cfg.ListTTL, logger),
		Bonds:   eurobond.New(bondClient, bondBreaker, cfg.BondTTL, logger),
		Funds:   tefas.New(fundClient, fundBreaker, logger),
	}, nil
}
