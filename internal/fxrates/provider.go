// Package fxrates quotes currencies, precious metals and commodities in TRY.
// Historical series come from a JSON endpoint keyed by numeric item ids;
// per-bank quotes only exist inside an HTML comparison table and are scraped
// out of it.
package fxrates

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/types"
)

// Source identifies this provider in errors and stored snapshots.
const Source = "fxrates"

const (
	historyPath   = "/items/history"
	bankRatesPath = "/doviz-kurlari"
)

// currentLookback is how far Current looks back for the latest daily bar.
// Five days always spans a weekend plus a public holiday.
const currentLookback = 5 * 24 * time.Hour

// Provider fetches FX, metal and commodity prices.
type Provider struct {
	client  *resty.Client
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
	nowFn   func() time.Time
}

// New creates an FX rates provider.
func New(client *resty.Client, breaker *circuitbreaker.Breaker, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		client:  client,
		breaker: breaker,
		logger:  logger,
		nowFn:   time.Now,
	}
}

// History returns daily OHLC bars for an asset between start and end,
// oldest first. institution narrows the series to one bank's published rate;
// empty means the market rate.
func (p *Provider) History(ctx context.Context, asset, institution string, start, end time.Time) ([]types.Candle, error) {
	asset = strings.ToLower(strings.TrimSpace(asset))
	institution = strings.ToLower(strings.TrimSpace(institution))

	id, ok := itemID(asset, institution)
	if !ok {
		return nil, &types.UnavailableError{Source: Source, ID: assetID(asset, institution)}
	}

	var body []byte
	err := p.breaker.Do(func() error {
		resp, err := p.client.R().
			SetContext(ctx).
			SetQueryParams(map[string]string{
				"itemId":    strconv.Itoa(id),
				"startDate": strconv.FormatInt(start.UnixMilli(), 10),
				"endDate":   strconv.FormatInt(end.UnixMilli(), 10),
			}).
			Get(historyPath)
		if err != nil {
			return fmt.Errorf("get history for item %d: %w", id, err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("get history for item %d: status %d", id, resp.StatusCode())
		}
		body = resp.Bytes()
		return nil
	})
	if err != nil {
		FetchFailuresTotal.WithLabelValues("history").Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}
	FetchesTotal.WithLabelValues("history").Inc()

	candles, err := parseHistory(body)
	if err != nil {
		FetchFailuresTotal.WithLabelValues("history").Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}
	return candles, nil
}

// Current returns the latest quote for an asset as the most recent daily bar
// within the lookback window.
func (p *Provider) Current(ctx context.Context, asset, institution string) (types.FXQuote, error) {
	end := p.nowFn()
	candles, err := p.History(ctx, asset, institution, end.Add(-currentLookback), end)
	if err != nil {
		return types.FXQuote{}, err
	}
	if len(candles) == 0 {
		return types.FXQuote{}, &types.UnavailableError{Source: Source, ID: assetID(asset, institution)}
	}

	latest := candles[len(candles)-1]
	return types.FXQuote{
		Symbol:      strings.ToLower(strings.TrimSpace(asset)),
		Institution: strings.ToLower(strings.TrimSpace(institution)),
		Last:        latest.Close,
		Open:        latest.Open,
		High:        latest.High,
		Low:         latest.Low,
		UpdateTime:  latest.Date,
	}, nil
}

// BankRates scrapes the per-bank comparison table for one currency.
func (p *Provider) BankRates(ctx context.Context, asset string) ([]types.BankRate, error) {
	asset = strings.ToLower(strings.TrimSpace(asset))
	slug, ok := assetSlugs[asset]
	if !ok {
		return nil, &types.UnavailableError{Source: Source, ID: asset}
	}

	var body string
	err := p.breaker.Do(func() error {
		resp, err := p.client.R().SetContext(ctx).Get(bankRatesPath + "/" + slug)
		if err != nil {
			return fmt.Errorf("get bank rates page %s: %w", slug, err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("get bank rates page %s: status %d", slug, resp.StatusCode())
		}
		body = resp.String()
		return nil
	})
	if err != nil {
		FetchFailuresTotal.WithLabelValues("bank_rates").Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}
	FetchesTotal.WithLabelValues("bank_rates").Inc()

	rates, err := parseBankRates(body, asset, slug)
	if err != nil {
		FetchFailuresTotal.WithLabelValues("bank_rates").Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}

	p.logger.Debug("bank-rates-parsed",
		zap.String("asset", asset),
		zap.Int("banks", len(rates)))

	return rates, nil
}

// parseHistory decodes the history payload: a JSON object mapping unix
// seconds to an "open|high|low|close" string.
func parseHistory(body []byte) ([]types.Candle, error) {
	var raw map[string]string
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode history payload: %w", err)
	}

	candles := make([]types.Candle, 0, len(raw))
	for ts, bar := range raw {
		unix, err := strconv.ParseInt(ts, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("history timestamp %q: %w", ts, err)
		}

		parts := strings.Split(bar, "|")
		if len(parts) != 4 {
			return nil, fmt.Errorf("history bar %q: expected 4 fields", bar)
		}

		var ohlc [4]float64
		for i, part := range parts {
			v, err := strconv.ParseFloat(part, 64)
			if err != nil {
				return nil, fmt.Errorf("history bar %q: %w", bar, err)
			}
			ohlc[i] = v
		}

		candles = append(candles, types.Candle{
			Date:  time.Unix(unix, 0).UTC(),
			Open:  ohlc[0],
			High:  ohlc[1],
			Low:   ohlc[2],
			Close: ohlc[3],
		})
	}

	sort.Slice(candles, func(i, j int) bool { return candles[i].Date.Before(candles[j].Date) })
	return candles, nil
}

// sellPattern extracts the sell price from a cell where the page renders the
// price and the daily change percentage in the same td, e.g. "41,5230%0,25".
var sellPattern = regexp.MustCompile(`^\s*([0-9]+(?:\.[0-9]{3})*,[0-9]+)`)

// parseBankRates walks the comparison table through its bank links: every
// row carries an anchor of the form /doviz-kurlari/{bank}/{asset-slug}.
func parseBankRates(body, asset, slug string) ([]types.BankRate, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("parse bank rates page: %w", err)
	}

	linkPattern := regexp.MustCompile(`/doviz-kurlari/([a-z0-9-]+)/` + regexp.QuoteMeta(slug) + `$`)

	rates := []types.BankRate{}
	var parseErr error

	doc.Find("a[href]").EachWithBreak(func(_ int, link *goquery.Selection) bool {
		href, _ := link.Attr("href")
		m := linkPattern.FindStringSubmatch(href)
		if m == nil {
			return true
		}
		bankSlug := m[1]

		row := link.Closest("tr")
		cells := row.Find("td")
		if cells.Length() < 3 {
			return true
		}

		buy, err := parsePrice(cells.Eq(1).Text())
		if err != nil {
			parseErr = fmt.Errorf("bank %s buy: %w", bankSlug, err)
			return false
		}

		sellMatch := sellPattern.FindStringSubmatch(strings.TrimSpace(cells.Eq(2).Text()))
		if sellMatch == nil {
			parseErr = fmt.Errorf("bank %s: no sell price in %q", bankSlug, cells.Eq(2).Text())
			return false
		}
		sell, err := parsePrice(sellMatch[1])
		if err != nil {
			parseErr = fmt.Errorf("bank %s sell: %w", bankSlug, err)
			return false
		}

		name := bankNames[bankSlug]
		if name == "" {
			name = bankSlug
		}

		rates = append(rates, types.BankRate{
			Bank:     bankSlug,
			BankName: name,
			Currency: asset,
			Buy:      buy,
			Sell:     sell,
			Spread:   sell - buy,
		})
		return true
	})

	if parseErr != nil {
		return nil, parseErr
	}
	return rates, nil
}

// parsePrice converts a Turkish-formatted price like "1.234,5670" to float.
func parsePrice(cell string) (float64, error) {
	normalized := strings.TrimSpace(cell)
	normalized = strings.ReplaceAll(normalized, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return 0, fmt.Errorf("parse price %q: %w", cell, err)
	}
	return v, nil
}

func assetID(asset, institution string) string {
	if institution == "" {
		return asset
	}
	return asset + "@" + institution
}
