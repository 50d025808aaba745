package bist

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/httpclient"
	"github.com/borsalabs/borsafeed/pkg/types"
)

const constituentsCSV = "ENDEKS KODU;ENDEKS ADI;BILESEN KODU;BILESEN ADI\n" +
	"INDEX CODE;INDEX NAME;COMPONENT CODE;COMPONENT NAME\n" +
	"XU030;BIST 30;GARAN.E;GARANTI BANKASI\n" +
	"XU030;BIST 30;THYAO.E;TURK HAVA YOLLARI\n" +
	"XU100;BIST 100;GARAN.E;GARANTI BANKASI\n" +
	"XU100;BIST 100;THYAO.E;TURK HAVA YOLLARI\n" +
	"XU100;BIST 100;SASA.E;SASA POLYESTER\n" +
	"XBANK;BIST BANKA;GARAN.E;GARANTI BANKASI\n"

func newTestProvider(t *testing.T, handler http.Handler, ttl time.Duration) *Provider {
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
		Upstream:  "bist-" + t.Name(),
		Threshold: 5,
		Cooldown:  time.Minute,
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("breaker: %v", err)
	}

	return New(client, breaker, ttl, zap.NewNop())
}

func csvHandler(downloads *atomic.Int64) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if downloads != nil {
			downloads.Add(1)
		}
		_, _ = w.Write([]byte(constituentsCSV))
	})
}

func TestComponents_ParsesAndStripsSuffix(t *testing.T) {
	p := newTestProvider(t, csvHandler(nil), time.Hour)

	components, err := p.Components(context.Background(), "xu030")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(components) != 2 {
		t.Fatalf("expected 2 components, got %d", len(components))
	}
	if components[0].Symbol != "GARAN" || components[1].Symbol != "THYAO" {
		t.Errorf("unexpected symbols: %+v", components)
	}
	if components[0].Name != "GARANTI BANKASI" {
		t.Errorf("name = %q", components[0].Name)
	}
}

func TestComponents_UnknownIndex(t *testing.T) {
	p := newTestProvider(t, csvHandler(nil), time.Hour)

	_, err := p.Components(context.Background(), "XNOPE")
	if !types.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestIndices_CountsConstituents(t *testing.T) {
	p := newTestProvider(t, csvHandler(nil), time.Hour)

	indices, err := p.Indices(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(indices) != 3 {
		t.Fatalf("expected 3 indices, got %d", len(indices))
	}
	// Sorted by code: XBANK, XU030, XU100.
	if indices[0].Symbol != "XBANK" || indices[0].Count != 1 {
		t.Errorf("XBANK: %+v", indices[0])
	}
	if indices[2].Symbol != "XU100" || indices[2].Count != 3 {
		t.Errorf("XU100: %+v", indices[2])
	}
	if indices[1].Name != "BIST 30" {
		t.Errorf("XU030 name = %q", indices[1].Name)
	}
}

func TestIndicesForTicker(t *testing.T) {
	p := newTestProvider(t, csvHandler(nil), time.Hour)

	got, err := p.IndicesForTicker(context.Background(), "garan")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []string{"XBANK", "XU030", "XU100"}
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("got %v, want %v", got, want)
		}
	}

	// Unknown ticker: empty result, not an error.
	got, err = p.IndicesForTicker(context.Background(), "ZZZZZ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected empty slice, got %v", got)
	}
}

func TestIsInIndex(t *testing.T) {
	p := newTestProvider(t, csvHandler(nil), time.Hour)

	in, err := p.IsInIndex(context.Background(), "SASA", "XU100")
	if err != nil || !in {
		t.Errorf("SASA in XU100: got (%v, %v), want (true, nil)", in, err)
	}

	in, err = p.IsInIndex(context.Background(), "SASA", "XU030")
	if err != nil || in {
		t.Errorf("SASA in XU030: got (%v, %v), want (false, nil)", in, err)
	}
}

func TestLoad_DatasetCachedWithinTTL(t *testing.T) {
	var downloads atomic.Int64
	p := newTestProvider(t, csvHandler(&downloads), time.Hour)

	for i := 0; i < 4; i++ {
		if _, err := p.Indices(context.Background()); err != nil {
			t.Fatalf("query %d: %v", i, err)
		}
	}

	if downloads.Load() != 1 {
		t.Errorf("expected a single download for fresh dataset, got %d", downloads.Load())
	}
}

func TestLoad_ExpiredDatasetRefetches(t *testing.T) {
	var downloads atomic.Int64
	p := newTestProvider(t, csvHandler(&downloads), time.Hour)

	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	p.nowFn = func() time.Time { return now }

	if _, err := p.Indices(context.Background()); err != nil {
		t.Fatalf("first query: %v", err)
	}

	now = now.Add(2 * time.Hour)

	if _, err := p.Indices(context.Background()); err != nil {
		t.Fatalf("second query: %v", err)
	}
	if downloads.Load() != 2 {
		t.Errorf("expected refetch after TTL, got %d downloads", downloads.Load())
	}
}

func TestLoad_InvalidateForcesRefetch(t *testing.T) {
	var downloads atomic.Int64
	p := newTestProvider(t, csvHandler(&downloads), time.Hour)

	if _, err := p.Indices(context.Background()); err != nil {
		t.Fatalf("first query: %v", err)
	}

	p.Invalidate()

	if _, err := p.Indices(context.Background()); err != nil {
		t.Fatalf("second query: %v", err)
	}
	if downloads.Load() != 2 {
		t.Errorf("expected refetch after invalidate, got %d downloads", downloads.Load())
	}
}

func TestLoad_UpstreamFailure(t *testing.T) {
	p := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}), time.Hour)

	_, err := p.Indices(context.Background())
	if !types.IsUpstream(err) {
		t.Errorf("expected upstream error, got %v", err)
	}
}
