// Package bist serves Borsa Istanbul index membership. The exchange
// publishes a single semicolon-separated CSV listing every index and its
// constituents; one download answers every membership question, so the
// provider keeps the parsed dataset in memory under its own TTL instead of
// re-downloading per query.
package bist

import (
	"context"
	"encoding/csv"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"resty.dev/v3"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/types"
)

// Source identifies this provider in errors and stored snapshots.
const Source = "bist"

const constituentsPath = "/data/endeksler/endeks_kodlari.csv"

// row is one parsed CSV line: which ticker sits in which index.
type row struct {
	index       string
	indexName   string
	ticker      string
	companyName string
}

// Provider answers index membership queries from a cached constituents
// dataset.
type Provider struct {
	client  *resty.Client
	breaker *circuitbreaker.Breaker
	logger  *zap.Logger
	ttl     time.Duration

	mu        sync.Mutex
	dataset   []row
	fetchedAt time.Time

	nowFn func() time.Time
}

// New creates a constituents provider. ttl bounds how long one downloaded
// dataset keeps answering queries.
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

// Components returns the constituents of one index code, e.g. "XU030".
// An index code absent from the dataset is unavailable, not empty.
func (p *Provider) Components(ctx context.Context, index string) ([]types.IndexComponent, error) {
	dataset, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	index = strings.ToUpper(strings.TrimSpace(index))

	var out []types.IndexComponent
	for _, r := range dataset {
		if r.index != index {
			continue
		}
		out = append(out, types.IndexComponent{
			Symbol: r.ticker,
			Name:   r.companyName,
		})
	}
	if out == nil {
		return nil, &types.UnavailableError{Source: Source, ID: index}
	}

	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// Indices returns every published index with its constituent count.
func (p *Provider) Indices(ctx context.Context) ([]types.IndexInfo, error) {
	dataset, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	names := make(map[string]string)
	counts := make(map[string]int)
	for _, r := range dataset {
		names[r.index] = r.indexName
		counts[r.index]++
	}

	out := make([]types.IndexInfo, 0, len(counts))
	for code, count := range counts {
		out = append(out, types.IndexInfo{
			Symbol: code,
			Name:   names[code],
			Count:  count,
		})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Symbol < out[j].Symbol })
	return out, nil
}

// IndicesForTicker returns the index codes a ticker belongs to, sorted.
// A ticker in no index gets an empty slice, not an error: the dataset was
// consulted and simply holds nothing for it.
func (p *Provider) IndicesForTicker(ctx context.Context, ticker string) ([]string, error) {
	dataset, err := p.load(ctx)
	if err != nil {
		return nil, err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))

	out := []string{}
	for _, r := range dataset {
		if r.ticker == ticker {
			out = append(out, r.index)
		}
	}
	sort.Strings(out)
	return out, nil
}

// IsInIndex reports whether a ticker is a constituent of an index.
func (p *Provider) IsInIndex(ctx context.Context, ticker, index string) (bool, error) {
	components, err := p.Components(ctx, index)
	if err != nil {
		return false, err
	}

	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	for _, c := range components {
		if c.Symbol == ticker {
			return true, nil
		}
	}
	return false, nil
}

// Invalidate drops the cached dataset so the next query re-downloads it.
// Clearing this layer has no effect on any response cache above it.
func (p *Provider) Invalidate() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.dataset = nil
	p.fetchedAt = time.Time{}
}

// load returns the cached dataset, downloading a fresh copy when the cached
// one is absent or past its TTL. A failed refresh leaves the previous state
// untouched and surfaces the error; expired data is never served stale.
func (p *Provider) load(ctx context.Context) ([]row, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.dataset != nil && p.nowFn().Sub(p.fetchedAt) < p.ttl {
		DatasetHitsTotal.Inc()
		return p.dataset, nil
	}

	var body []byte
	err := p.breaker.Do(func() error {
		resp, err := p.client.R().SetContext(ctx).Get(constituentsPath)
		if err != nil {
			return fmt.Errorf("get constituents csv: %w", err)
		}
		if !resp.IsSuccess() {
			return fmt.Errorf("get constituents csv: status %d", resp.StatusCode())
		}
		body = resp.Bytes()
		return nil
	})
	if err != nil {
		DatasetRefreshFailuresTotal.Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}

	dataset, err := parseConstituents(body)
	if err != nil {
		DatasetRefreshFailuresTotal.Inc()
		return nil, &types.UpstreamError{Source: Source, Err: err}
	}

	p.dataset = dataset
	p.fetchedAt = p.nowFn()
	DatasetRefreshesTotal.Inc()

	p.logger.Info("constituents-dataset-refreshed",
		zap.Int("rows", len(dataset)))

	return p.dataset, nil
}

// parseConstituents parses the semicolon-separated CSV. The file opens with
// a Turkish header row followed by an English one; both are skipped. Tickers
// carry the equity-market ".E" suffix, which is stripped.
func parseConstituents(body []byte) ([]row, error) {
	reader := csv.NewReader(strings.NewReader(string(body)))
	reader.Comma = ';'
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse constituents csv: %w", err)
	}
	if len(records) < 3 {
		return nil, fmt.Errorf("parse constituents csv: %d rows, expected headers plus data", len(records))
	}

	out := make([]row, 0, len(records)-2)
	for _, rec := range records[2:] {
		if len(rec) < 3 {
			continue
		}
		ticker := strings.TrimSuffix(strings.TrimSpace(rec[2]), ".E")
		if ticker == "" {
			continue
		}
		r := row{
			index:     strings.ToUpper(strings.TrimSpace(rec[0])),
			indexName: strings.TrimSpace(rec[1]),
			ticker:    ticker,
		}
		if len(rec) > 3 {
			r.companyName = strings.TrimSpace(rec[3])
		}
		out = append(out, r)
	}
	return out, nil
}
