// Package httpclient builds the HTTP client shared by all scraping
// providers. The upstream sources are fragile public sites, so every client
// carries a rate limiter and retry with backoff; a burst of API consumers
// must never translate into a burst of scrapes.
package httpclient

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"resty.dev/v3"
)

const (
	defaultRetryWaitTime    = 1 * time.Second
	defaultRetryMaxWaitTime = 10 * time.Second

	// The public sources serve browsers; a bare Go User-Agent gets blocked
	// by some of them.
	defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0 Safari/537.36"
)

// Config holds configuration for an upstream HTTP client.
type Config struct {
	BaseURL    string
	Timeout    time.Duration // bounded transport timeout, ~30s
	Retries    int
	RatePerSec float64 // sustained request rate toward this upstream
	Burst      int
	Logger     *zap.Logger
}

// New creates a rate-limited HTTP client with retry and exponential backoff.
func New(cfg *Config) *resty.Client {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(cfg.Timeout).
		SetHeader("User-Agent", defaultUserAgent).
		SetRetryCount(cfg.Retries).
		SetRetryWaitTime(defaultRetryWaitTime).
		SetRetryMaxWaitTime(defaultRetryMaxWaitTime).
		AddRetryConditions(retryCondition).
		AddRetryHooks(retryHook(logger))

	if cfg.RatePerSec > 0 {
		burst := cfg.Burst
		if burst < 1 {
			burst = 1
		}
		limiter := rate.NewLimiter(rate.Limit(cfg.RatePerSec), burst)

		client.AddRequestMiddleware(func(_ *resty.Client, req *resty.Request) error {
			return limiter.Wait(req.Context())
		})
	}

	return client
}

// retryCondition retries on network errors, 5xx, 429 and 408; other client
// errors are final.
func retryCondition(r *resty.Response, err error) bool {
	if err != nil {
		return true
	}

	switch {
	case r.StatusCode() >= 500:
		return true
	case r.StatusCode() == 429:
		return true
	case r.StatusCode() == 408:
		return true
	default:
		return false
	}
}

func retryHook(logger *zap.Logger) resty.RetryHookFunc {
	return func(r *resty.Response, err error) {
		if err != nil {
			logger.Debug("upstream-retry",
				zap.String("url", r.Request.URL),
				zap.Int("attempt", r.Request.Attempt),
				zap.Error(err))
			return
		}

		logger.Debug("upstream-retry",
			zap.String("url", r.Request.URL),
			zap.Int("attempt", r.Request.Attempt),
			zap.Int("status", r.StatusCode()))
	}
}
