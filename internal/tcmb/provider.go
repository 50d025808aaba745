// Package tcmb scrapes official interest rates from the Turkish central
// bank. The bank publishes no JSON API for historical policy rates; the data
// lives in HTML tables, newest row first, with Turkish decimal commas and
// "-" marking cells with no value.
package tcmb

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/types"
)

// Source identifies this provider in errors and stored snapshots.
const Source = "tcmb"

// Rate type identifiers accepted by History and resolved by AllRates.
const (
	RatePolicy        = "policy"
	RateOvernight     = "overnight"
	RateLateLiquidity = "late_liquidity"
)

var ratePaths = map[string]string{
	RatePolicy:        "/wps/wcm/connect/TR/TCMB+TR/Main+Menu/Temel+Faaliyetler/Para+Politikasi/Merkez+Bankasi+Faiz+Oranlari/1+Hafta+Repo",
	RateOvernight:     "/wps/wcm/connect/TR/TCMB+TR/Main+Menu/Temel+Faaliyetler/Para+Politikasi/Merkez+Bankasi+Faiz+Oranlari/Gecelik+Faiz+Oranlari",
	RateLateLiquidity: "/wps/wcm/connect/TR/TCMB+TR/Main+Menu/Temel+Faaliyetler/Para+Politikasi/Merkez+Bankasi+Faiz+Oranlari/Gec+Likidite+Penceresi",
}

// historyPeriods maps the public period tokens to a lookback window.
// "max" is absent on purpose: it means no filtering.
var historyPeriods = map[string]time.Duration{
	"1w":  7 * 24 * time.Hour,
	"1m":  30 * 24 * time.Hour,
	"3m":  91 * 24 * time.Hour,
	"6m":  182 * 24 * time.Hour,
	"1y":  365 * 24 * time.Hour,
	"2y":  2 * 365 * 24 * time.Hour,
	"5y":  5 * 365 * 24 * time.Hour,
	"10y": 10 * 365 * 24 * time.Hour,
}

// Provider fetches and parses the central bank rate tables.
type Provider struct {
	client  *resty.Client
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
	loc     *time.Location
	nowFn   func() time.Time
}

// New creates a central bank rate provider. loc is the market timezone used
// to interpret table dates.
func New(client *resty.Client, breaker *circuitbreaker.Breaker, loc *time.Location, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		client:  client,
		breaker: breaker,
		logger:  logger,
		loc:     loc,
		nowFn:   time.Now,
	}
}

// History returns the full published series for one rate type, newest first,
// optionally truncated to a lookback period ("1w".."10y", or "max"/"" for
// everything).
func (p *Provider) History(ctx context.Context, rateType, period string) ([]types.RateRecord, error) {
	records, err := p.fetchTable(ctx, rateType)
	if err != nil {
		return nil, err
	}

	if period == "" || period == "max" {
		return records, nil
	}

	window, ok := historyPeriods[period]
	if !ok {
		return nil, &types.UnavailableError{Source: Source, ID: period}
	}

	cutoff := p.nowFn().Add(-window)
	filtered := make([]types.RateRecord, 0, len(records))
	for _, r := range records {
		if r.Date != nil && r.Date.Before(cutoff) {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// PolicyRate returns the latest one-week repo rate.
func (p *Provider) PolicyRate(ctx context.Context) (types.RateRecord, error) {
	return p.latest(ctx, RatePolicy)
}

// OvernightRates returns the latest overnight borrowing and lending rates.
func (p *Provider) OvernightRates(ctx context.Context) (types.RateRecord, error) {
	return p.latest(ctx, RateOvernight)
}

// LateLiquidityRates returns the latest late liquidity window rates.
func (p *Provider) LateLiquidityRates(ctx context.Context) (types.RateRecord, error) {
	return p.latest(ctx, RateLateLiquidity)
}

// AllRates returns the latest record of every published rate type.
func (p *Provider) AllRates(ctx context.Context) ([]types.RateRecord, error) {
	out := make([]types.RateRecord, 0, 3)
	for _, rateType := range []string{RatePolicy, RateOvernight, RateLateLiquidity} {
		rec, err := p.latest(ctx, rateType)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

func (p *Provider) latest(ctx context.Context, rateType string) (types.RateRecord, error) {
	records, err := p.fetchTable(ctx, rateType)
	if err != nil {
		return types.RateRecord{}, err
	}
	if len(records) == 0 {
		return types.RateRecord{}, &types.UnavailableError{Source: Source, ID: rateType}
	}
	// Tables are published newest row first.
	return records[0], nil
}

// fetchTable downloads one rate page and parses its first table. Two-column
// rows carry a single rate (stored as Lending); three-column rows carry
// borrowing and lending.
func (p *Provider) fetchTable(ctx context.Context, rateType string) ([]types.RateRecord, error) {
	path, ok := ratePaths[rateType]
	if !ok {
		return nil, &types.UnavailableError{Source: Source, ID: rateType}
	}

	var body string
	err := p.breaker.Do(func() error {
		resp, err := p.client.R().SetContext(ctx).Get(path)
		if err != nil {
			return fmt.Errorf("get %s page: %w", rateType, err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("get %s page: status %d", rateType, resp.StatusCode())
		}
		body = resp.String()
		return nil
	})
	if err != nil {
		FetchFailuresTotal.WithLabelValues(rateType).Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}
	FetchesTotal.WithLabelValues(rateType).Inc()

	records, err := p.parseTable(body, rateType)
	if err != nil {
		FetchFailuresTotal.WithLabelValues(rateType).Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}

	p.logger.Debug("rate-table-parsed",
		zap.String("rate_type", rateType),
		zap.Int("rows", len(records)))

	return records, nil
}

func (p *Provider) parseTable(body, rateType string) ([]types.RateRecord, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse %s page: %w", rateType, err)
	}

	table := doc.Find("table").First()
	if table.Length() == 0 {
		return nil, fmt.Errorf("parse %s page: no table found", rateType)
	}

	records := []types.RateRecord{}
	var parseErr error

	table.Find("tr").EachWithBreak(func(_ int, row *goquery.Selection) bool {
		cells := row.Find("td")
		if cells.Length() < 2 {
			// Header rows use th, separator rows are empty; skip both.
			return true
		}

		date, err := parseDate(cells.Eq(0).Text(), p.loc)
		if err != nil {
			parseErr = err
			return false
		}

		rec := types.RateRecord{Type: rateType, Date: date}

		if cells.Length() == 2 {
			rec.Lending, err = parseDecimal(cells.Eq(1).Text())
		} else {
			if rec.Borrowing, err = parseDecimal(cells.Eq(1).Text()); err == nil {
				rec.Lending, err = parseDecimal(cells.Eq(2).Text())
			}
		}
		if err != nil {
			parseErr = err
			return false
		}

		records = append(records, rec)
		return true
	})

	if parseErr != nil {
		return nil, fmt.Errorf("parse %s table: %w", rateType, parseErr)
	}
	return records, nil
}
