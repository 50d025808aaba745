package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/internal/storage"
	"github.com/borsalabs/borsafeed/pkg/cache"
	"github.com/borsalabs/borsafeed/pkg/config"
	"github.com/borsalabs/borsafeed/pkg/healthprobe"
	"github.com/borsalabs/borsafeed/pkg/httpclient"
	"github.com/borsalabs/borsafeed/pkg/httpserver"
)

// Upstream base URLs. These are the public sites the providers scrape; they
// are constants of the providers, not deployment configuration.
const (
	tcmbBaseURL     = "https://www.tcmb.gov.tr"
	bistBaseURL     = "https://borsaistanbul.com"
	fxratesBaseURL  = "https://canlidoviz.com"
	eurobondBaseURL = "https://www.ziraatyatirim.com.tr"
	tefasBaseURL    = "https://www.tefas.gov.tr"
)

// New creates a new application instance.
func New(cfg *config.Config, logger *zap.Logger) (*App, error) {
	ctx, cancel := context.WithCancel(context.Background())

	healthChecker := healthprobe.New()

	snapStorage, err := setupStorage(cfg, logger)
	if err != nil {
		cancel()
		return nil, fmt.Errorf("setup storage: %w", err)
	}

	store := cache.NewMemoryStore(&cache.MemoryConfig{
		MaxEntries: cfg.CacheMaxEntries,
		Logger:     logger,
	})

	// Single-flight on: concurrent API callers missing the same key share
	// one upstream fetch instead of racing duplicate scrapes.
	orchestrator := cache.NewOrchestrator(&cache.OrchestratorConfig{
		Store:        store,
		Logger:       logger,
		SingleFlight: true,
		Recorder:     storage.NewSnapshotRecorder(snapStorage, logger),
	})

	api, err := setupAPI(cfg, logger, orchestrator)
	if err != nil {
		cancel()
		_ = snapStorage.Close()
		return nil, fmt.Errorf("setup api: %w", err)
	}

	httpServer := httpserver.New(&httpserver.Config{
		Port:          cfg.HTTPPort,
		Logger:        logger,
		HealthChecker: healthChecker,
		API:           api,
	})

	return &App{
		cfg:           cfg,
		logger:        logger,
		healthChecker: healthChecker,
		httpServer:    httpServer,
		cacheStore:    store,
		snapStorage:   snapStorage,
		ctx:           ctx,
		cancel:        cancel,
	}, nil
}

func setupAPI(cfg *config.Config, logger *zap.Logger, orchestrator *cache.Orchestrator) (*httpserver.API, error) {
	fundPolicy, err := cache.NewTimeWindowed(
		cfg.MarketTimezone,
		cfg.FundHotStartHour,
		cfg.FundHotEndHour,
		cfg.FundHotTTL,
		cfg.FundColdTTL,
	)
	if err != nil {
		return nil, fmt.Errorf("fund freshness policy: %w", err)
	}

	providers, err := NewProviders(cfg, logger)
	if err != nil {
		return nil, err
	}

	return httpserver.NewAPI(&httpserver.APIConfig{
		Orchestrator: orchestrator,
		Logger:       logger,
		QuotePolicy:  cache.Fixed(cfg.QuoteTTL),
		ListPolicy:   cache.Fixed(cfg.ListTTL),
		BondPolicy:   cache.Fixed(cfg.BondTTL),
		FundPolicy:   fundPolicy,
		Rates:        providers.Rates,
		FX:           providers.FX,
		Indices:      providers.Indices,
		Bonds:        providers.Bonds,
		Funds:        providers.Funds,
	}), nil
}

// setupUpstream builds the rate-limited client and circuit breaker pair for
// one scraping target.
func setupUpstream(cfg *config.Config, logger *zap.Logger, name, baseURL string) (*resty.Client, *circuitbreaker.Breaker, error) {
	client := httpclient.New(&httpclient.Config{
		BaseURL:    baseURL,
		Timeout:    cfg.UpstreamTimeout,
		Retries:    cfg.UpstreamRetries,
		RatePerSec: cfg.UpstreamRatePerSec,
		Burst:      cfg.UpstreamRateBurst,
		Logger:     logger,
	})

	breaker, err := circuitbreaker.New(&circuitbreaker.Config{
		Upstream:  name,
		Threshold: cfg.BreakerFailures,
		Cooldown:  cfg.BreakerCooldown,
		Logger:    logger,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("breaker for %s: %w", name, err)
	}

	return client, breaker, nil
}

func setupStorage(cfg *config.Config, logger *zap.Logger) (storage.Storage, error) {
	if cfg.StorageMode == "postgres" {
		pgStorage, err := storage.NewPostgresStorage(&storage.PostgresConfig{
			Host:     cfg.PostgresHost,
			Port:     cfg.PostgresPort,
			User:     cfg.PostgresUser,
			Password: cfg.PostgresPass,
			Database: cfg.PostgresDB,
			SSLMode:  cfg.PostgresSSL,
			Logger:   logger,
		})
		if err != nil {
			return nil, fmt.Errorf("create postgres storage: %w", err)
		}
		return pgStorage, nil
	}

	return storage.NewConsoleStorage(logger), nil
}
