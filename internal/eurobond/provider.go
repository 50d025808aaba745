// Package eurobond lists Turkish sovereign Eurobonds from a brokerage feed.
// The feed returns the whole bond board in one response, so the provider
// keeps the parsed board in memory under its own TTL and answers both the
// list and per-ISIN lookups from it.
package eurobond

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	json "github.com/goccy/go-json"
	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/types"
)

// Source identifies this provider in errors and stored snapshots.
const Source = "eurobond"

const boardPath = "/api/bonds/eurobond-board"

// boardRow is the upstream wire shape. Prices and yields arrive as
// Turkish-formatted strings; empty strings mean no quote on that side.
type boardRow struct {
	ISIN     string `json:"isin"`
	Maturity string `json:"maturity"`
	Currency string `json:"currency"`
	BidPrice string `json:"bidPrice"`
	BidYield string `json:"bidYield"`
	AskPrice string `json:"askPrice"`
	AskYield string `json:"askYield"`
}

// Provider serves the Eurobond board.
type Provider struct {
	client  *resty.Client
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
	ttl     time.Duration

	mu        sync.Mutex
	board     []types.EurobondRecord
	fetchedAt time.Time

	nowFn func() time.Time
}

// New creates a Eurobond provider. ttl bounds how long one downloaded board
// keeps answering queries.
func New(client *resty.Client, breaker *circuitbreaker.Breaker, ttl time.Duration, logger *zap.Logger) *Provider {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Provider{
		client:  client,
		breaker: breaker,
		logger:  logger,
		ttl:     ttl,
		nowFn:   time.Now,
	}
}

// List returns the board sorted by maturity, nearest first. currency narrows
// to one denomination ("USD", "EUR"); empty returns everything.
func (p *Provider) List(ctx context.Context, currency string) ([]types.EurobondRecord, error) {
	board, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return board, nil
	}

	out := []types.EurobondRecord{}
	for _, rec := range board {
		if rec.Currency == currency {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ByISIN returns one bond by its ISIN.
func (p *Provider) ByISIN(ctx context.Context, isin string) (types.EurobondRecord, error) {
	isin = strings.ToUpper(strings.TrimSpace(isin))
	if Classify(isin) != KindEurobond {
		return types.EurobondRecord{}, &types.UnavailableError{Source: Source, ID: isin}
	}

	board, err := p.load(ctx)
	if err != nil {
		return types.EurobondRecord{}, err
	}

	for _, rec := range board {
		if rec.ISIN == isin {
			return rec, nil
		}
	}
	return types.EurobondRecord{}, &types.UnavailableError{Source: Source, ID: isin}
}

// Invalidate drops the cached board so the next query re-downloads it.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.board = nil
	p.fetchedAt = time.Time{}
}

func (p *Provider) load(ctx context.Context) ([]types.EurobondRecord, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.board != nil && p.nowFn().Sub(p.fetchedAt) < p.ttl {
		BoardHitsTotal.Inc()
		return p.board, nil
	}

	var body []byte
	err := p.breaker.Do(func() error {
		resp, err := p.client.R().SetContext(ctx).Get(boardPath)
		if err != nil {
			return fmt.Errorf("get eurobond board: %w", err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("get eurobond board: status %d", resp.StatusCode())
		}
		body = resp.Bytes()
		return nil
	})
	if err != nil {
		BoardRefreshFailuresTotal.Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}

	board, err := p.parseBoard(body)
	if err != nil {
		BoardRefreshFailuresTotal.Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}

	p.board = board
	p.fetchedAt = p.nowFn()
	BoardRefreshesTotal.Inc()

	p.logger.Info("eurobond-board-refreshed",
		zap.Int("bonds", len(board)))

	return p.board, nil
}

func (p *Provider) parseBoard(body []byte) ([]types.EurobondRecord, error) {
	var rows []boardRow
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("decode eurobond board: %w", err)
	}

	now := p.nowFn()
	out := make([]types.EurobondRecord, 0, len(rows))
	for _, row := range rows {
		isin := strings.ToUpper(strings.TrimSpace(row.ISIN))
		if Classify(isin) != KindEurobond {
			// The board occasionally mixes in domestic codes; skip them.
			continue
		}

		rec := types.EurobondRecord{
			ISIN:     isin,
			Currency: strings.ToUpper(strings.TrimSpace(row.Currency)),
		}

		if row.Maturity != "" {
			maturity, err := time.Parse("02.01.2006", strings.TrimSpace(row.Maturity))
			if err != nil {
				return nil, fmt.Errorf("bond %s maturity %q: %w", isin, row.Maturity, err)
			}
			rec.Maturity = &maturity
			rec.DaysToMaturity = int(maturity.Sub(now).Hours() / 24)
		}

		var err error
		if rec.BidPrice, err = parseQuote(row.BidPrice); err != nil {
			return nil, fmt.Errorf("bond %s bid price: %w", isin, err)
		}
		if rec.BidYield, err = parseQuote(row.BidYield); err != nil {
			return nil, fmt.Errorf("bond %s bid yield: %w", isin, err)
		}
		if rec.AskPrice, err = parseQuote(row.AskPrice); err != nil {
			return nil, fmt.Errorf("bond %s ask price: %w", isin, err)
		}
		if rec.AskYield, err = parseQuote(row.AskYield); err != nil {
			return nil, fmt.Errorf("bond %s ask yield: %w", isin, err)
		}

		out = append(out, rec)
	}

	sort.Slice(out, func(i, j int) bool {
		switch {
		case out[i].Maturity == nil:
			return false
		case out[j].Maturity == nil:
			return true
		default:
			return out[i].Maturity.Before(*out[j].Maturity)
		}
	})
	return out, nil
}

// parseQuote converts a Turkish-formatted quote like "98,75" to a float
// pointer. Empty and "-" cells mean no quote on that side.
func parseQuote(cell string) (*float64, error) {
	cell = strings.TrimSpace(cell)
	if cell == "" || cell == "-" {
		return nil, nil
	}

	normalized := strings.ReplaceAll(cell, ".", "")
	normalized = strings.ReplaceAll(normalized, ",", ".")

	v, err := strconv.ParseFloat(normalized, 64)
	if err != nil {
		return nil, fmt.Errorf("parse quote %q: %w", cell, err)
	}
	return &v, nil
}
