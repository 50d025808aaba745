package fxrates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/httpclient"
	"github.com/borsalabs/borsafeed/pkg/types"
)

// Three daily bars, deliberately out of key order to prove sorting.
const historyJSON = `{
	"1741046400": "36.50|36.80|36.40|36.75",
	"1740873600": "36.10|36.45|36.05|36.40",
	"1740960000": "36.40|36.60|36.20|36.55"
}`

const bankRatesHTML = `<html><body>
<table>
<tr><th>Banka</th><th>Alış</th><th>Satış</th></tr>
<tr>
  <td><a href="/doviz-kurlari/akbank/amerikan-dolari">Akbank</a></td>
  <td>36,4210</td>
  <td>36,6890%0,12</td>
</tr>
<tr>
  <td><a href="/doviz-kurlari/ziraat/amerikan-dolari">Ziraat</a></td>
  <td>36,4050</td>
  <td>36,7120%-0,05</td>
</tr>
<tr>
  <td><a href="/haberler/piyasa-yorumu">ignore me</a></td>
  <td>x</td>
  <td>y</td>
</tr>
</table>
</body></html>`

func newTestProvider(t *testing.T, handler http.Handler) *Provider {
	t.Helper()

	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client := httpclient.New(&httpclient.Config{
		BaseURL: server.URL,
		Timeout: 5 * time.Second,
		Logger:  zap.NewNop(),
	})
	t.Cleanup(func() { _ = client.Close() })

	breaker, err := circuitbreaker.New(&circuitbreaker.Config{
		Upstream:  "fxrates-" + t.Name(),
		Threshold: 5,
		Cooldown:  time.Minute,
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("breaker: %v", err)
	}

	return New(client, breaker, zap.NewNop())
}

func TestHistory_ParsesAndSortsBars(t *testing.T) {
	var gotItemID string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != historyPath {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		gotItemID = r.URL.Query().Get("itemId")
		_, _ = w.Write([]byte(historyJSON))
	}))

	end := time.Date(2025, 3, 4, 0, 0, 0, 0, time.UTC)
	candles, err := p.History(context.Background(), "usd", "", end.AddDate(0, 0, -5), end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if gotItemID != "1" {
		t.Errorf("itemId = %q, want 1", gotItemID)
	}
	if len(candles) != 3 {
		t.Fatalf("expected 3 candles, got %d", len(candles))
	}
	for i := 1; i < len(candles); i++ {
		if !candles[i-1].Date.Before(candles[i].Date) {
			t.Fatalf("candles not sorted ascending: %v then %v", candles[i-1].Date, candles[i].Date)
		}
	}
	last := candles[2]
	if last.Open != 36.50 || last.High != 36.80 || last.Low != 36.40 || last.Close != 36.75 {
		t.Errorf("last bar = %+v", last)
	}
}

func TestHistory_BankItemID(t *testing.T) {
	var gotItemID string
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotItemID = r.URL.Query().Get("itemId")
		_, _ = w.Write([]byte(`{}`))
	}))

	end := time.Now()
	_, err := p.History(context.Background(), "usd", "akbank", end.AddDate(0, 0, -5), end)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if gotItemID != "101" {
		t.Errorf("itemId = %q, want 101", gotItemID)
	}
}

func TestHistory_UnknownAsset(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown asset must not reach the upstream")
	}))

	end := time.Now()
	_, err := p.History(context.Background(), "dogecoin", "", end.AddDate(0, 0, -5), end)
	if !types.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}

	_, err = p.History(context.Background(), "usd", "no-such-bank", end.AddDate(0, 0, -5), end)
	if !types.IsUnavailable(err) {
		t.Errorf("expected unavailable error for unknown institution, got %v", err)
	}
}

func TestCurrent_UsesLatestBar(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(historyJSON))
	}))

	quote, err := p.Current(context.Background(), "USD", "")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if quote.Symbol != "usd" {
		t.Errorf("symbol = %q", quote.Symbol)
	}
	if quote.Last != 36.75 {
		t.Errorf("last = %v, want 36.75 (close of newest bar)", quote.Last)
	}
	if quote.UpdateTime.Unix() != 1741046400 {
		t.Errorf("update time = %v", quote.UpdateTime)
	}
}

func TestCurrent_EmptyHistoryIsUnavailable(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{}`))
	}))

	_, err := p.Current(context.Background(), "usd", "")
	if !types.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestBankRates_ParsesTable(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != bankRatesPath+"/amerikan-dolari" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		_, _ = w.Write([]byte(bankRatesHTML))
	}))

	rates, err := p.BankRates(context.Background(), "usd")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(rates) != 2 {
		t.Fatalf("expected 2 banks, got %d", len(rates))
	}

	akbank := rates[0]
	if akbank.Bank != "akbank" || akbank.BankName != "Akbank" {
		t.Errorf("bank = %+v", akbank)
	}
	if akbank.Buy != 36.4210 {
		t.Errorf("buy = %v, want 36.4210", akbank.Buy)
	}
	// Sell cell concatenates price and daily change; only the price counts.
	if akbank.Sell != 36.6890 {
		t.Errorf("sell = %v, want 36.6890", akbank.Sell)
	}
	wantSpread := 36.6890 - 36.4210
	if diff := akbank.Spread - wantSpread; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("spread = %v, want %v", akbank.Spread, wantSpread)
	}
}

func TestBankRates_UnknownAsset(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		t.Error("unknown asset must not reach the upstream")
	}))

	_, err := p.BankRates(context.Background(), "jpy")
	if !types.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestBankRates_UpstreamFailure(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))

	_, err := p.BankRates(context.Background(), "usd")
	if !types.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}
