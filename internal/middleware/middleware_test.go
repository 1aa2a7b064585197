package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wareledger/wareledger/internal/logging"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2, logging.New("test", "error", "json"))
	handler := rl.Handler(okHandler())

	send := func(addr string) int {
		req := httptest.NewRequest(http.MethodPost, "/api/auth/login", nil)
		req.RemoteAddr = addr
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		return rec.Code
	}

	if send("10.0.0.1:1000") != http.StatusOK || send("10.0.0.1:1001") != http.StatusOK {
		t.Fatalf("burst should be allowed")
	}
	if code := send("10.0.0.1:1002"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}
	if code := send("10.0.0.2:1000"); code != http.StatusOK {
		t.Fatalf("other client throttled: %d", code)
	}
}

func TestRateLimiterCleanup(t *testing.T) {
	rl := NewRateLimiter(10, 5, nil)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	rl.now = func() time.Time { return now }

	rl.Allow("a")
	now = now.Add(time.Hour)
	rl.Allow("b")

	if removed := rl.Cleanup(30 * time.Minute); removed != 1 {
		t.Fatalf("expected one idle limiter removed, got %d", removed)
	}
	if _, ok := rl.limiters["b"]; !ok {
		t.Fatalf("active limiter removed")
	}
}

func TestCORSEchoesAllowedOriginWithCredentials(t *testing.T) {
	handler := NewCORSMiddleware([]string{"http://warehouse.local"}).Handler(okHandler())

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	req.Header.Set("Origin", "http://warehouse.local")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "http://warehouse.local" {
		t.Fatalf("origin not echoed")
	}
	if rec.Header().Get("Access-Control-Allow-Credentials") != "true" {
		t.Fatalf("credentials not allowed")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	req.Header.Set("Origin", "http://evil.example")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Header().Get("Access-Control-Allow-Origin") != "" {
		t.Fatalf("foreign origin allowed")
	}
}

func TestCORSPreflight(t *testing.T) {
	handler := NewCORSMiddleware([]string{"*"}).Handler(okHandler())
	req := httptest.NewRequest(http.MethodOptions, "/api/object", nil)
	req.Header.Set("Origin", "http://a.local")
	req.Header.Set("Access-Control-Request-Method", "PUT")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204 preflight, got %d", rec.Code)
	}
}

func TestTracingPropagatesTraceID(t *testing.T) {
	var seen string
	inner := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = logging.GetTraceID(r.Context())
		w.WriteHeader(http.StatusTeapot)
	})
	handler := NewTracingMiddleware(logging.New("test", "error", "json")).Handler(inner)

	req := httptest.NewRequest(http.MethodGet, "/api/objects", nil)
	req.Header.Set(TraceHeader, "trace-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if seen != "trace-123" || rec.Header().Get(TraceHeader) != "trace-123" {
		t.Fatalf("trace id not propagated: ctx=%q header=%q", seen, rec.Header().Get(TraceHeader))
	}
	if rec.Code != http.StatusTeapot {
		t.Fatalf("status not passed through: %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if rec.Header().Get(TraceHeader) == "" {
		t.Fatalf("expected generated trace id")
	}
}
