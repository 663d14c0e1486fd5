package httpx

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestRateLimiterAllowWindow(t *testing.T) {
	rl := NewRateLimiter(2, time.Minute)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	if !rl.allow("1.2.3.4", now) {
		t.Fatal("first request should be allowed")
	}
	if !rl.allow("1.2.3.4", now.Add(time.Second)) {
		t.Fatal("second request should be allowed")
	}
	if rl.allow("1.2.3.4", now.Add(2*time.Second)) {
		t.Fatal("third request in window should be rejected")
	}
	if !rl.allow("5.6.7.8", now.Add(2*time.Second)) {
		t.Fatal("other clients must not share the window")
	}
	if !rl.allow("1.2.3.4", now.Add(2*time.Minute)) {
		t.Fatal("request after the window should be allowed again")
	}
}

func TestRateLimiterEvictsStaleVisitors(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	now := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 100; i++ {
		rl.allow(string(rune('a'+i%26))+"-client", now.Add(time.Duration(i)*time.Millisecond))
	}
	rl.allow("late-client", now.Add(10*time.Minute))

	rl.mu.Lock()
	n := len(rl.visitors)
	rl.mu.Unlock()
	if n > 2 {
		t.Fatalf("stale visitors not evicted, %d remain", n)
	}
}

func TestWithRequestIDMintsAndEchoes(t *testing.T) {
	var seen string
	h := WithRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = RequestIDFromContext(r.Context())
	}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen == "" {
		t.Fatal("request id not minted")
	}
	if got := rec.Header().Get(RequestIDHeader); got != seen {
		t.Fatalf("header %q does not match context %q", got, seen)
	}

	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "req-abc")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if seen != "req-abc" {
		t.Fatalf("inbound id not honored, got %q", seen)
	}
}
