package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/internal/eurobond"
	"github.com/borsalabs/borsafeed/pkg/cache"
	"github.com/borsalabs/borsafeed/pkg/types"
)

// Provider interfaces consumed by the API. The concrete providers live in
// internal/; handlers only need these slices of them, and tests stub them.

// RateSource serves central-bank rates.
type RateSource interface {
	AllRates(ctx context.Context) ([]types.RateRecord, error)
	History(ctx context.Context, rateType, period string) ([]types.RateRecord, error)
}

// FXSource serves currency, metal and commodity prices.
type FXSource interface {
	Current(ctx context.Context, asset, institution string) (types.FXQuote, error)
	History(ctx context.Context, asset, institution string, start, end time.Time) ([]types.Candle, error)
	BankRates(ctx context.Context, asset string) ([]types.BankRate, error)
}

// IndexSource serves index membership.
type IndexSource interface {
	Components(ctx context.Context, index string) ([]types.IndexComponent, error)
	Indices(ctx context.Context) ([]types.IndexInfo, error)
}

// BondSource serves the Eurobond board.
type BondSource interface {
	List(ctx context.Context, currency string) ([]types.EurobondRecord, error)
	ByISIN(ctx context.Context, isin string) (types.EurobondRecord, error)
}

// FundSource serves fund prices.
type FundSource interface {
	Fund(ctx context.Context, code string) (types.FundRecord, error)
	History(ctx context.Context, code string, start, end time.Time) ([]types.FundRecord, error)
}

// API routes data requests through the cache orchestrator to the providers.
// Each data class carries its own freshness policy: quotes go stale in
// seconds, reference lists in hours, and fund prices follow the publication
// window.
type API struct {
	orchestrator *cache.Orchestrator
	logger       *zap.Logger

	quotePolicy cache.Policy
	listPolicy  cache.Policy
	bondPolicy  cache.Policy
	fundPolicy  cache.Policy

	rates   RateSource
	fx      FXSource
	indices IndexSource
	bonds   BondSource
	funds   FundSource

	nowFn func() time.Time
}

// APIConfig holds the API dependencies.
type APIConfig struct {
	Orchestrator *cache.Orchestrator
	Logger       *zap.Logger

	QuotePolicy cache.Policy
	ListPolicy  cache.Policy
	BondPolicy  cache.Policy
	FundPolicy  cache.Policy

	Rates   RateSource
	FX      FXSource
	Indices IndexSource
	Bonds   BondSource
	Funds   FundSource
}

// NewAPI creates the data API.
func NewAPI(cfg *APIConfig) *API {
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &API{
		orchestrator: cfg.Orchestrator,
		logger:       logger,
		quotePolicy:  cfg.QuotePolicy,
		listPolicy:   cfg.ListPolicy,
		bondPolicy:   cfg.BondPolicy,
		fundPolicy:   cfg.FundPolicy,
		rates:        cfg.Rates,
		fx:           cfg.FX,
		indices:      cfg.Indices,
		bonds:        cfg.Bonds,
		funds:        cfg.Funds,
		nowFn:        time.Now,
	}
}

// Routes mounts the data endpoints on a router.
func (a *API) Routes(r chi.Router) {
	r.Get("/fx/{asset}", a.handleFXQuote)
	r.Get("/fx/{asset}/history", a.handleFXHistory)
	r.Get("/fx/{asset}/banks", a.handleFXBanks)
	r.Get("/tcmb/rates", a.handleRates)
	r.Get("/tcmb/history/{type}", a.handleRateHistory)
	r.Get("/indices", a.handleIndices)
	r.Get("/index/{symbol}", a.handleIndexComponents)
	r.Get("/eurobonds", a.handleEurobonds)
	r.Get("/eurobonds/{isin}", a.handleEurobondByISIN)
	r.Get("/bonds/{id}", a.handleBond)
	r.Get("/funds/{code}", a.handleFund)
	r.Get("/funds/{code}/history", a.handleFundHistory)
}

// historyWindows maps the FX history period tokens to a lookback.
var historyWindows = map[string]time.Duration{
	"1w":  7 * 24 * time.Hour,
	"1m":  30 * 24 * time.Hour,
	"3m":  91 * 24 * time.Hour,
	"6m":  182 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
	"5y":  5 * 365 * 24 * time.Hour,
	"max": 10 * 365 * 24 * time.Hour,
}

func (a *API) handleFXQuote(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")
	institution := r.URL.Query().Get("institution")

	a.serveCached(w, r,
		cache.Key("fxrates", "current", asset, institution),
		a.quotePolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.fx.Current(ctx, asset, institution)
		})
}

func (a *API) handleFXHistory(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")
	institution := r.URL.Query().Get("institution")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1m"
	}

	window, ok := historyWindows[period]
	if !ok {
		a.writeError(w, r, &types.UnavailableError{Source: "fxrates", ID: period})
		return
	}

	a.serveCached(w, r,
		cache.Key("fxrates", "history", asset, institution, period),
		a.listPolicy,
		func(ctx context.Context) (interface{}, error) {
			end := a.nowFn()
			return a.fx.History(ctx, asset, institution, end.Add(-window), end)
		})
}

func (a *API) handleFXBanks(w http.ResponseWriter, r *http.Request) {
	asset := chi.URLParam(r, "asset")

	a.serveCached(w, r,
		cache.Key("fxrates", "banks", asset),
		a.quotePolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.fx.BankRates(ctx, asset)
		})
}

func (a *API) handleRates(w http.ResponseWriter, r *http.Request) {
	a.serveCached(w, r,
		cache.Key("tcmb", "rates"),
		a.listPolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.rates.AllRates(ctx)
		})
}

func (a *API) handleRateHistory(w http.ResponseWriter, r *http.Request) {
	rateType := chi.URLParam(r, "type")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "max"
	}

	a.serveCached(w, r,
		cache.Key("tcmb", "history", rateType, period),
		a.listPolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.rates.History(ctx, rateType, period)
		})
}

func (a *API) handleIndices(w http.ResponseWriter, r *http.Request) {
	a.serveCached(w, r,
		cache.Key("bist", "indices"),
		a.listPolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.indices.Indices(ctx)
		})
}

func (a *API) handleIndexComponents(w http.ResponseWriter, r *http.Request) {
	symbol := chi.URLParam(r, "symbol")

	a.serveCached(w, r,
		cache.Key("bist", "components", symbol),
		a.listPolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.indices.Components(ctx, symbol)
		})
}

func (a *API) handleEurobonds(w http.ResponseWriter, r *http.Request) {
	currency := r.URL.Query().Get("currency")

	a.serveCached(w, r,
		cache.Key("eurobond", "list", currency),
		a.bondPolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.bonds.List(ctx, currency)
		})
}

func (a *API) handleEurobondByISIN(w http.ResponseWriter, r *http.Request) {
	isin := chi.URLParam(r, "isin")

	a.serveCached(w, r,
		cache.Key("eurobond", "isin", isin),
		a.bondPolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.bonds.ByISIN(ctx, isin)
		})
}

// bondResponse is the classified-identifier payload: kind always, the board
// record only when the identifier resolves to a listed Eurobond.
type bondResponse struct {
	ID     string                `json:"id"`
	Kind   string                `json:"kind"`
	Record *types.EurobondRecord `json:"record,omitempty"`
}

func (a *API) handleBond(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")

	kind := eurobond.Classify(id)
	if kind == eurobond.KindUnknown {
		a.writeError(w, r, &types.UnavailableError{Source: "bonds", ID: id})
		return
	}

	if kind == eurobond.KindDomestic {
		// Domestic government bonds are classified but not quoted here.
		writeJSON(w, http.StatusOK, bondResponse{ID: id, Kind: kind.String()})
		return
	}

	// Classified responses get their own key class: the bare board record
	// cached by /eurobonds/{isin} has a different shape and must never be
	// served here (or vice versa).
	a.serveCached(w, r,
		cache.Key("bonds", id),
		a.bondPolicy,
		func(ctx context.Context) (interface{}, error) {
			rec, err := a.bonds.ByISIN(ctx, id)
			if err != nil {
				return nil, err
			}
			return bondResponse{ID: rec.ISIN, Kind: kind.String(), Record: &rec}, nil
		})
}

func (a *API) handleFund(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")

	a.serveCached(w, r,
		cache.Key("tefas", "fund", code),
		a.fundPolicy,
		func(ctx context.Context) (interface{}, error) {
			return a.funds.Fund(ctx, code)
		})
}

func (a *API) handleFundHistory(w http.ResponseWriter, r *http.Request) {
	code := chi.URLParam(r, "code")
	period := r.URL.Query().Get("period")
	if period == "" {
		period = "1m"
	}

	window, ok := historyWindows[period]
	if !ok {
		a.writeError(w, r, &types.UnavailableError{Source: "tefas", ID: period})
		return
	}

	a.serveCached(w, r,
		cache.Key("tefas", "history", code, period),
		a.fundPolicy,
		func(ctx context.Context) (interface{}, error) {
			end := a.nowFn()
			return a.funds.History(ctx, code, end.Add(-window), end)
		})
}

// serveCached runs one get-or-fetch through the orchestrator and writes the
// result. Whether the value came from the store or a fresh fetch is invisible
// to the client.
func (a *API) serveCached(w http.ResponseWriter, r *http.Request, key string, policy cache.Policy, fetch cache.FetchFunc) {
	value, err := a.orchestrator.Do(r.Context(), key, policy, fetch)
	if err != nil {
		a.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, value)
}

type errorResponse struct {
	Error string `json:"error"`
}

// writeError maps domain errors to status codes: an identifier the upstream
// has no data for is 404, a broken upstream is 502, anything else 500.
func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case types.IsUnavailable(err):
		writeJSON(w, http.StatusNotFound, errorResponse{Error: err.Error()})
	case types.IsUpstream(err):
		a.logger.Warn("upstream-error",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusBadGateway, errorResponse{Error: err.Error()})
	default:
		a.logger.Error("handler-error",
			zap.String("path", r.URL.Path),
			zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: "internal error"})
	}
}

func writeJSON(w http.ResponseWriter, code int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
