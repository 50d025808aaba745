package healthprobe

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestHealth_AlwaysOK(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.Health()(rec, httptest.NewRequest(http.MethodGet, "/health", nil))

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReady_ReflectsReadiness(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 before SetReady, got %d", rec.Code)
	}

	h.SetReady(true)

	rec = httptest.NewRecorder()
	h.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusOK {
		t.Errorf("expected 200 after SetReady, got %d", rec.Code)
	}

	h.SetReady(false)

	rec = httptest.NewRecorder()
	h.Ready()(rec, httptest.NewRequest(http.MethodGet, "/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503 after SetReady(false), got %d", rec.Code)
	}
}
