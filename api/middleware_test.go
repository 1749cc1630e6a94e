package api

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap/zaptest"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDMiddleware(t *testing.T) {
	var seen string
	handler := RequestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestID(r.Context())
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
	if seen == "" || w.Header().Get("X-Request-ID") != seen {
		t.Fatalf("generated id = %q, header = %q", seen, w.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/x", http.NoBody)
	req.Header.Set("X-Request-ID", "trace-1")
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	if seen != "trace-1" || w.Header().Get("X-Request-ID") != "trace-1" {
		t.Fatalf("propagated id = %q", seen)
	}
}

func TestLoggingMiddlewareKeepsStatus(t *testing.T) {
	inner := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})
	handler := LoggingMiddleware(zaptest.NewLogger(t), nil)(inner)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/presets/night", http.NoBody))
	if w.Code != http.StatusCreated {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := RecoveryMiddleware(zaptest.NewLogger(t))(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
	if w.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d", w.Code)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	handler := RateLimitMiddleware(1, 2, []string{"/api/health"})(okHandler())

	send := func(path, ip string) int {
		req := httptest.NewRequest(http.MethodGet, path, http.NoBody)
		req.RemoteAddr = ip + ":1234"
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		return w.Code
	}

	for i := 0; i < 2; i++ {
		if code := send("/api/options", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("request %d status = %d", i, code)
		}
	}
	if code := send("/api/options", "10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("over-limit status = %d", code)
	}
	if code := send("/api/options", "10.0.0.2"); code != http.StatusOK {
		t.Fatalf("other client status = %d", code)
	}
	for i := 0; i < 5; i++ {
		if code := send("/api/health", "10.0.0.1"); code != http.StatusOK {
			t.Fatalf("skipped path status = %d", code)
		}
	}
}

func TestRateLimitDisabled(t *testing.T) {
	t.Parallel()

	handler := RateLimitMiddleware(0, 0, nil)(okHandler())
	for i := 0; i < 50; i++ {
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", http.NoBody))
		if w.Code != http.StatusOK {
			t.Fatalf("status = %d", w.Code)
		}
	}
}

func TestClientIP(t *testing.T) {
	t.Parallel()

	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	req.RemoteAddr = "192.0.2.1:5555"
	if ip := clientIP(req); ip != "192.0.2.1" {
		t.Fatalf("clientIP = %q", ip)
	}
	req.Header.Set("X-Forwarded-For", "203.0.113.7, 10.0.0.1")
	if ip := clientIP(req); ip != "192.0.2.1" {
		t.Fatalf("clientIP with X-Forwarded-For = %q, want peer address", ip)
	}
}

func TestRateLimitIgnoresForwardedFor(t *testing.T) {
	t.Parallel()

	handler := RateLimitMiddleware(1, 1, nil)(okHandler())
	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/options", http.NoBody)
		req.RemoteAddr = "10.0.0.9:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("198.51.100.%d", i))
		w := httptest.NewRecorder()
		handler.ServeHTTP(w, req)
		codes = append(codes, w.Code)
	}
	if codes[0] != http.StatusOK || codes[1] != http.StatusTooManyRequests || codes[2] != http.StatusTooManyRequests {
		t.Fatalf("statuses = %v, want [200 429 429]", codes)
	}
}

func TestRouteLabel(t *testing.T) {
	t.Parallel()

	if got := routeLabel("/api/presets/night.css"); got != "/api/presets/{name}" {
		t.Fatalf("routeLabel = %q", got)
	}
	if got := routeLabel("/api/colors"); got != "/api/colors" {
		t.Fatalf("routeLabel = %q", got)
	}
}
