package tcmb

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/borsalabs/borsafeed/internal/circuitbreaker"
	"github.com/borsalabs/borsafeed/pkg/httpclient"
	"github.com/borsalabs/borsafeed/pkg/types"
)

const policyPage = `<html><body>
<table>
<tr><th>Tarih</th><th>1 Hafta Repo</th></tr>
<tr><td>21.03.25</td><td>42,50</td></tr>
<tr><td>23.01.25</td><td>45,00</td></tr>
<tr><td>26.12.24</td><td>47,50</td></tr>
</table>
</body></html>`

const overnightPage = `<html><body>
<table>
<tr><th>Tarih</th><th>Borç Alma</th><th>Borç Verme</th></tr>
<tr><td>21.03.25</td><td>41,00</td><td>44,00</td></tr>
<tr><td>23.01.25</td><td>-</td><td>46,50</td></tr>
</table>
</body></html>`

func newTestProvider(t *testing.T, handler http.Handler) (*Provider, *httptest.Server) {
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
		Upstream:  "tcmb-" + t.Name(),
		Threshold: 5,
		Cooldown:  time.Minute,
		Logger:    zap.NewNop(),
	})
	if err != nil {
		t.Fatalf("breaker: %v", err)
	}

	ist, err := time.LoadLocation("Europe/Istanbul")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}

	return New(client, breaker, ist, zap.NewNop()), server
}

func pageHandler(pages map[string]string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		for rateType, body := range pages {
			if r.URL.Path == ratePaths[rateType] {
				_, _ = w.Write([]byte(body))
				return
			}
		}
		w.WriteHeader(http.StatusNotFound)
	})
}

func TestPolicyRate_ParsesNewestRow(t *testing.T) {
	p, _ := newTestProvider(t, pageHandler(map[string]string{RatePolicy: policyPage}))

	rec, err := p.PolicyRate(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if rec.Type != RatePolicy {
		t.Errorf("type = %q, want %q", rec.Type, RatePolicy)
	}
	if rec.Lending == nil || *rec.Lending != 42.5 {
		t.Errorf("lending = %v, want 42.5", rec.Lending)
	}
	if rec.Borrowing != nil {
		t.Errorf("single-rate table should leave borrowing nil, got %v", *rec.Borrowing)
	}
	if rec.Date == nil || rec.Date.Day() != 21 || rec.Date.Month() != time.March {
		t.Errorf("date = %v, want 21 March 2025", rec.Date)
	}
}

func TestOvernightRates_DashCellIsNil(t *testing.T) {
	p, _ := newTestProvider(t, pageHandler(map[string]string{RateOvernight: overnightPage}))

	records, err := p.History(context.Background(), RateOvernight, "max")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	if records[0].Borrowing == nil || *records[0].Borrowing != 41.0 {
		t.Errorf("first borrowing = %v, want 41.0", records[0].Borrowing)
	}
	if records[1].Borrowing != nil {
		t.Errorf("dash cell should parse to nil, got %v", *records[1].Borrowing)
	}
	if records[1].Lending == nil || *records[1].Lending != 46.5 {
		t.Errorf("second lending = %v, want 46.5", records[1].Lending)
	}
}

func TestHistory_PeriodFilter(t *testing.T) {
	p, _ := newTestProvider(t, pageHandler(map[string]string{RatePolicy: policyPage}))

	// Anchored just after the newest row so only it falls inside 1m.
	p.nowFn = func() time.Time {
		return time.Date(2025, 3, 25, 12, 0, 0, 0, time.UTC)
	}

	records, err := p.History(context.Background(), RatePolicy, "1m")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record inside 1m window, got %d", len(records))
	}

	all, err := p.History(context.Background(), RatePolicy, "max")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected full series of 3, got %d", len(all))
	}
}

func TestHistory_UnknownRateType(t *testing.T) {
	p, _ := newTestProvider(t, pageHandler(nil))

	_, err := p.History(context.Background(), "discount_window", "max")
	if !types.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestHistory_UnknownPeriod(t *testing.T) {
	p, _ := newTestProvider(t, pageHandler(map[string]string{RatePolicy: policyPage}))

	_, err := p.History(context.Background(), RatePolicy, "3w")
	if !types.IsUnavailable(err) {
		t.Errorf("expected unavailable error, got %v", err)
	}
}

func TestFetchTable_UpstreamFailure(t *testing.T) {
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))

	_, err := p.PolicyRate(context.Background())
	if !types.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
}

func TestFetchTable_NoTableIsUpstreamError(t *testing.T) {
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("<html><body>maintenance</body></html>"))
	}))

	_, err := p.PolicyRate(context.Background())
	if !types.IsUpstream(err) {
		t.Fatalf("expected upstream error for missing table, got %v", err)
	}
}

func TestFetchTable_BreakerOpensAndFailsFast(t *testing.T) {
	var hits int
	p, _ := newTestProvider(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	// Threshold is 5; each failing call counts once toward it.
	for i := 0; i < 5; i++ {
		if _, err := p.PolicyRate(context.Background()); err == nil {
			t.Fatal("expected error")
		}
	}

	before := hits
	_, err := p.PolicyRate(context.Background())
	if !types.IsUpstream(err) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	if !errors.Is(err, circuitbreaker.ErrOpen) {
		t.Errorf("expected breaker rejection, got %v", err)
	}
	if hits != before {
		t.Errorf("open breaker must not hit the upstream, got %d extra hits", hits-before)
	}
}
