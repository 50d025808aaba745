// Package tefas fetches Turkish mutual fund prices from the public fund
// platform. Fund prices change once per trading day, announced in a window
// after the morning session; the caching layer above this provider applies
// a time-windowed freshness policy so the announcement is picked up quickly
// without hammering the platform overnight.
package tefas

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/types"
)

// Source identifies this provider in errors and stored snapshots.
const Source = "tefas"

const historyInfoPath = "/api/DB/BindHistoryInfo"

// historyRow is the platform's wire shape: screaming-caps field names and a
// millisecond epoch rendered as a string.
type historyRow struct {
	Code          string  `json:"FONKODU"`
	Title         string  `json:"FONUNVAN"`
	Price         float64 `json:"FIYAT"`
	Date          string  `json:"TARIH"`
	DailyReturn   float64 `json:"GUNLUKGETIRI"`
	InvestorCount int     `json:"KISISAYISI"`
}

type historyResponse struct {
	Data []historyRow `json:"data"`
}

// Provider fetches fund prices.
type Provider struct {
	client  *resty.Client
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
	nowFn   func() time.Time
}

// New creates a fund provider.
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

// Fund returns the latest published price for one fund code, e.g. "AFA".
func (p *Provider) Fund(ctx context.Context, code string) (types.FundRecord, error) {
	end := p.nowFn()
	records, err := p.History(ctx, code, end.AddDate(0, 0, -7), end)
	if err != nil {
		return types.FundRecord{}, err
	}
	if len(records) == 0 {
		return types.FundRecord{}, &types.UnavailableError{Source: Source, ID: strings.ToUpper(strings.TrimSpace(code))}
	}
	// History is sorted oldest first.
	return records[len(records)-1], nil
}

// History returns the fund's daily price records between start and end,
// oldest first. An unknown code yields an unavailable error because the
// platform answers it with an empty set over any window.
func (p *Provider) History(ctx context.Context, code string, start, end time.Time) ([]types.FundRecord, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	if code == "" {
		return nil, &types.UnavailableError{Source: Source, ID: code}
	}

	var body []byte
	err := p.breaker.Do(func() error {
		resp, err := p.client.R().
			SetContext(ctx).
			SetFormData(map[string]string{
				"fontip":   "YAT",
				"fonkod":   code,
				"bastarih": start.Format("02.01.2006"),
				"bittarih": end.Format("02.01.2006"),
			}).
			Post(historyInfoPath)
		if err != nil {
			return fmt.Errorf("fund history for %s: %w", code, err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("fund history for %s: status %d", code, resp.StatusCode())
		}
		body = resp.Bytes()
		return nil
	})
	if err != nil {
		FetchFailuresTotal.Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}
	FetchesTotal.Inc()

	records, err := parseHistory(body)
	if err != nil {
		FetchFailuresTotal.Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}

	p.logger.Debug("fund-history-fetched",
		zap.String("code", code),
		zap.Int("rows", len(records)))

	return records, nil
}

func parseHistory(body []byte) ([]types.FundRecord, error) {
	var resp historyResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("decode fund history: %w", err)
	}

	out := make([]types.FundRecord, 0, len(resp.Data))
	for _, row := range resp.Data {
		millis, err := strconv.ParseInt(strings.TrimSpace(row.Date), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("fund %s date %q: %w", row.Code, row.Date, err)
		}

		out = append(out, types.FundRecord{
			Code:      strings.ToUpper(row.Code),
			Name:      row.Title,
			Price:     row.Price,
			Date:      time.UnixMilli(millis).UTC(),
			DailyPct:  row.DailyReturn,
			Investors: row.InvestorCount,
		})
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
