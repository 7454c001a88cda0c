package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowsWithinLimit(t *testing.T) {
	rl := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		if !rl.allow("10.0.0.1") {
			t.Fatalf("Request %d should be allowed", i+1)
		}
	}
	if rl.allow("10.0.0.1") {
		t.Error("Fourth request should be blocked")
	}
}

func TestRateLimiterTracksIPsSeparately(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	if !rl.allow("10.0.0.1") {
		t.Error("First IP should be allowed")
	}
	if !rl.allow("10.0.0.2") {
		t.Error("Second IP should be allowed independently")
	}
	if rl.allow("10.0.0.1") {
		t.Error("First IP should be blocked on second request")
	}
}

func TestRateLimiterMiddleware(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)

	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.Middleware(next)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "192.0.2.1:1234"

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("First request expected 200, got %d", rr.Code)
	}

	rr = httptest.NewRecorder()
	handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusTooManyRequests {
		t.Errorf("Second request expected 429, got %d", rr.Code)
	}
}
