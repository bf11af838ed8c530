package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func okHandler(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func doRequest(h http.HandlerFunc, remoteAddr, forwardedFor string) int {
	req := httptest.NewRequest(http.MethodGet, "/api/conversations/x/question", nil)
	req.RemoteAddr = remoteAddr
	if forwardedFor != "" {
		req.Header.Set("X-Forwarded-For", forwardedFor)
	}
	rec := httptest.NewRecorder()
	h(rec, req)
	return rec.Code
}

func TestRateLimiterRejectsOverBudget(t *testing.T) {
	rl := NewRateLimiter(20, time.Minute)
	h := rl.Limit(okHandler)

	for i := 0; i < 20; i++ {
		if code := doRequest(h, "203.0.113.7:4321", ""); code != http.StatusOK {
			t.Fatalf("request %d: status = %d, want %d", i+1, code, http.StatusOK)
		}
	}
	if code := doRequest(h, "203.0.113.7:4321", ""); code != http.StatusTooManyRequests {
		t.Fatalf("request 21: status = %d, want %d", code, http.StatusTooManyRequests)
	}
}

func TestRateLimiterTracksClientsIndependently(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Limit(okHandler)

	if code := doRequest(h, "203.0.113.7:4321", ""); code != http.StatusOK {
		t.Fatalf("first client: status = %d, want %d", code, http.StatusOK)
	}
	if code := doRequest(h, "203.0.113.7:4321", ""); code != http.StatusTooManyRequests {
		t.Fatalf("first client repeat: status = %d, want %d", code, http.StatusTooManyRequests)
	}
	if code := doRequest(h, "198.51.100.9:4321", ""); code != http.StatusOK {
		t.Fatalf("second client: status = %d, want %d", code, http.StatusOK)
	}
}

func TestRateLimiterUsesForwardedFor(t *testing.T) {
	rl := NewRateLimiter(1, time.Minute)
	h := rl.Limit(okHandler)

	if code := doRequest(h, "10.0.0.1:80", "203.0.113.7, 10.0.0.1"); code != http.StatusOK {
		t.Fatalf("forwarded client: status = %d, want %d", code, http.StatusOK)
	}
	if code := doRequest(h, "10.0.0.2:80", "203.0.113.7"); code != http.StatusTooManyRequests {
		t.Fatalf("same forwarded client, new hop: status = %d, want %d", code, http.StatusTooManyRequests)
	}
}

func TestClientIP(t *testing.T) {
	tests := []struct {
		name         string
		remoteAddr   string
		forwardedFor string
		want         string
	}{
		{name: "remote addr host", remoteAddr: "203.0.113.7:4321", want: "203.0.113.7"},
		{name: "remote addr without port", remoteAddr: "203.0.113.7", want: "203.0.113.7"},
		{name: "single forwarded hop", remoteAddr: "10.0.0.1:80", forwardedFor: "203.0.113.7", want: "203.0.113.7"},
		{name: "first of forwarded chain", remoteAddr: "10.0.0.1:80", forwardedFor: " 203.0.113.7 , 10.0.0.2", want: "203.0.113.7"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remoteAddr
			if tt.forwardedFor != "" {
				req.Header.Set("X-Forwarded-For", tt.forwardedFor)
			}
			if got := clientIP(req); got != tt.want {
				t.Errorf("clientIP() = %q, want %q", got, tt.want)
			}
		})
	}
}
