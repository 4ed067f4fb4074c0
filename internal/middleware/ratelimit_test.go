package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestRateLimiterThrottlesPerClient(t *testing.T) {
	rl := NewRateLimiter(1, 2, nil)

	var handled int
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		handled++
		w.WriteHeader(http.StatusOK)
	})
	handler := rl.Handler()(next)

	do := func(remote string) int {
		req := httptest.NewRequest(http.MethodGet, "/flights", nil)
		req.RemoteAddr = remote
		resp := httptest.NewRecorder()
		handler.ServeHTTP(resp, req)
		return resp.Code
	}

	// Burst of 2 passes, the third is rejected.
	if code := do("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := do("10.0.0.1:1234"); code != http.StatusOK {
		t.Fatalf("expected 200, got %d", code)
	}
	if code := do("10.0.0.1:1234"); code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", code)
	}

	// A different client has its own budget.
	if code := do("10.0.0.2:1234"); code != http.StatusOK {
		t.Fatalf("expected 200 for second client, got %d", code)
	}

	if handled != 3 {
		t.Fatalf("expected 3 handled requests, got %d", handled)
	}
}
