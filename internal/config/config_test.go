package config

import "testing"

// TestLoad_Defaults tests the documented default configuration
func TestLoad_Defaults(t *testing.T) {
	// Clear anything the environment might carry
	for _, key := range []string{
		"PORT", "STATIC_DIR", "RATE_LIMITER_TYPE", "RATE_LIMIT",
		"RATE_LIMIT_WINDOW", "GEO_PROVIDER_URL", "GEO_TIMEOUT_SECONDS",
	} {
		t.Setenv(key, "")
	}

	cfg := Load()

	if cfg.Port != "3000" {
		t.Errorf("expected default port 3000, got %s", cfg.Port)
	}
	if cfg.StaticDir != "./public" {
		t.Errorf("expected default static dir ./public, got %s", cfg.StaticDir)
	}
	if cfg.RateLimitType != "memory" {
		t.Errorf("expected default limiter type memory, got %s", cfg.RateLimitType)
	}
	if cfg.RateLimit != 100 {
		t.Errorf("expected default rate limit 100, got %d", cfg.RateLimit)
	}
	if cfg.RateLimitWindow != 900 {
		t.Errorf("expected default window 900s, got %d", cfg.RateLimitWindow)
	}
	if cfg.GeoProviderURL != "https://ipapi.co" {
		t.Errorf("expected default provider https://ipapi.co, got %s", cfg.GeoProviderURL)
	}
	if cfg.GeoTimeout != 0 {
		t.Errorf("expected no default geo timeout, got %d", cfg.GeoTimeout)
	}
}

// TestLoad_Overrides tests environment variable overrides
func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "8080")
	t.Setenv("RATE_LIMIT", "5")
	t.Setenv("RATE_LIMIT_WINDOW", "60")
	t.Setenv("GEO_PROVIDER_URL", "https://geo.example.com")

	cfg := Load()

	if cfg.Port != "8080" {
		t.Errorf("expected port 8080, got %s", cfg.Port)
	}
	if cfg.RateLimit != 5 {
		t.Errorf("expected rate limit 5, got %d", cfg.RateLimit)
	}
	if cfg.RateLimitWindow != 60 {
		t.Errorf("expected window 60s, got %d", cfg.RateLimitWindow)
	}
	if cfg.GeoProviderURL != "https://geo.example.com" {
		t.Errorf("expected overridden provider, got %s", cfg.GeoProviderURL)
	}
}

// TestLoad_InvalidIntFallsBack tests that unparsable integers use the default
func TestLoad_InvalidIntFallsBack(t *testing.T) {
	t.Setenv("RATE_LIMIT", "a-lot")

	cfg := Load()

	if cfg.RateLimit != 100 {
		t.Errorf("expected fallback rate limit 100, got %d", cfg.RateLimit)
	}
}
