package middleware

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/evyataryagoni/clientinfo/internal/limiter"
)

// TestRateLimitMiddleware_Allowed tests request allowed
func TestRateLimitMiddleware_Allowed(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(true) // Allow all
	mockLimiter.AllowInfo = limiter.Info{Limit: 100, Remaining: 99, ResetAt: time.Now().Add(15 * time.Minute)}

	mw := RateLimitMiddleware(mockLimiter, nil)

	// Create a test handler that tracks if it was called
	nextCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("success"))
	})

	// Wrap with middleware
	handler := mw(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/client-info", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if !nextCalled {
		t.Error("expected next handler to be called")
	}
	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if rec.Body.String() != "success" {
		t.Errorf("expected body 'success', got '%s'", rec.Body.String())
	}
}

// TestRateLimitMiddleware_RateLimited tests request blocked
func TestRateLimitMiddleware_RateLimited(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(false) // Block all
	mockLimiter.AllowInfo = limiter.Info{
		Limit:      100,
		Remaining:  0,
		ResetAt:    time.Now().Add(10 * time.Minute),
		RetryAfter: 10 * time.Minute,
	}

	mw := RateLimitMiddleware(mockLimiter, nil)

	nextCalled := false
	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		nextCalled = true
	})

	handler := mw(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/client-info", nil)
	req.RemoteAddr = "192.168.1.1:12345"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if nextCalled {
		t.Error("expected next handler NOT to be called")
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("expected status 429, got %d", rec.Code)
	}

	var errResp map[string]string
	json.NewDecoder(rec.Body).Decode(&errResp)

	if errResp["error"] != "Too many requests from this IP, please try again later." {
		t.Errorf("unexpected error message: %s", errResp["error"])
	}

	if rec.Header().Get("Retry-After") != "600" {
		t.Errorf("expected Retry-After 600, got %q", rec.Header().Get("Retry-After"))
	}
}

// TestRateLimitMiddleware_StandardHeaders tests the RateLimit-* response headers
func TestRateLimitMiddleware_StandardHeaders(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(true)
	mockLimiter.AllowInfo = limiter.Info{
		Limit:     100,
		Remaining: 42,
		ResetAt:   time.Now().Add(5 * time.Minute),
	}

	mw := RateLimitMiddleware(mockLimiter, nil)
	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/api/client-info", nil)
	req.RemoteAddr = "203.0.113.7:1234"
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	if got := rec.Header().Get("RateLimit-Limit"); got != "100" {
		t.Errorf("expected RateLimit-Limit 100, got %q", got)
	}
	if got := rec.Header().Get("RateLimit-Remaining"); got != "42" {
		t.Errorf("expected RateLimit-Remaining 42, got %q", got)
	}

	reset := rec.Header().Get("RateLimit-Reset")
	if reset == "" {
		t.Fatal("expected RateLimit-Reset to be set")
	}
	// 5 minutes out, expressed in seconds-until-reset
	if reset != "300" && reset != "299" {
		t.Errorf("expected RateLimit-Reset near 300, got %q", reset)
	}
}

// TestRateLimitMiddleware_NoLegacyHeaders tests that the deprecated X-RateLimit-* variant is never emitted
func TestRateLimitMiddleware_NoLegacyHeaders(t *testing.T) {
	for _, allow := range []bool{true, false} {
		mockLimiter := limiter.NewMockLimiter(allow)
		mockLimiter.AllowInfo = limiter.Info{Limit: 100, Remaining: 0, ResetAt: time.Now().Add(time.Minute)}

		mw := RateLimitMiddleware(mockLimiter, nil)
		handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

		req := httptest.NewRequest(http.MethodGet, "/api/client-info", nil)
		rec := httptest.NewRecorder()

		handler.ServeHTTP(rec, req)

		for name := range rec.Header() {
			if strings.HasPrefix(name, "X-Ratelimit") || strings.HasPrefix(name, "X-RateLimit") {
				t.Errorf("allow=%v: legacy header %s must not be set", allow, name)
			}
		}
	}
}

// TestRateLimitMiddleware_KeyNormalization tests the limiter key derivation
func TestRateLimitMiddleware_KeyNormalization(t *testing.T) {
	tests := []struct {
		name        string
		remoteAddr  string
		expectedKey string
	}{
		{"public IPv4 with port", "203.0.113.7:12345", "203.0.113.7"},
		{"IPv6 with port", "[2001:db8::1]:8080", "2001:db8::1"},
		{"IPv4 loopback", "127.0.0.1:9999", "localhost"},
		{"IPv6 loopback", "[::1]:9999", "localhost"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockLimiter := limiter.NewMockLimiter(true)
			mw := RateLimitMiddleware(mockLimiter, nil)

			handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusOK)
			}))

			req := httptest.NewRequest(http.MethodGet, "/api/client-info", nil)
			req.RemoteAddr = tt.remoteAddr
			rec := httptest.NewRecorder()

			handler.ServeHTTP(rec, req)

			if len(mockLimiter.AllowCalls) != 1 {
				t.Fatalf("expected 1 limiter call, got %d", len(mockLimiter.AllowCalls))
			}
			if mockLimiter.AllowCalls[0] != tt.expectedKey {
				t.Errorf("expected key %s, limiter called with %s", tt.expectedKey, mockLimiter.AllowCalls[0])
			}
		})
	}
}

// TestRateLimitMiddleware_ContentType tests response headers on rejection
func TestRateLimitMiddleware_ContentType(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(false)
	mw := RateLimitMiddleware(mockLimiter, nil)

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	req := httptest.NewRequest(http.MethodGet, "/api/client-info", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	contentType := rec.Header().Get("Content-Type")
	if contentType != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", contentType)
	}
}

// TestRateLimitMiddleware_PreservesNextHandlerResponse tests that allowed requests preserve response
func TestRateLimitMiddleware_PreservesNextHandlerResponse(t *testing.T) {
	mockLimiter := limiter.NewMockLimiter(true)
	mw := RateLimitMiddleware(mockLimiter, nil)

	nextHandler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Custom-Header", "test-value")
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte("custom response"))
	})

	handler := mw(nextHandler)

	req := httptest.NewRequest(http.MethodGet, "/api/client-info", nil)
	rec := httptest.NewRecorder()

	handler.ServeHTTP(rec, req)

	// Verify next handler's response is preserved
	if rec.Code != http.StatusCreated {
		t.Errorf("expected status 201, got %d", rec.Code)
	}
	if rec.Header().Get("X-Custom-Header") != "test-value" {
		t.Errorf("expected custom header to be preserved")
	}
	if rec.Body.String() != "custom response" {
		t.Errorf("expected custom response body to be preserved")
	}
}

// TestCeilSeconds tests duration rounding for Retry-After values
func TestCeilSeconds(t *testing.T) {
	tests := []struct {
		d        time.Duration
		expected int
	}{
		{0, 0},
		{-5 * time.Second, 0},
		{time.Second, 1},
		{1500 * time.Millisecond, 2},
		{10 * time.Minute, 600},
	}

	for _, tt := range tests {
		if got := ceilSeconds(tt.d); got != tt.expected {
			t.Errorf("ceilSeconds(%v) = %d, want %d", tt.d, got, tt.expected)
		}
	}
}
