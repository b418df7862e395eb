package limiter

import (
	"fmt"
	"strings"
	"time"
)

// LimiterConfig holds configuration for creating a rate limiter
type LimiterConfig struct {
	Type       string        // "memory" or "redis"
	Limit      int           // Requests allowed per window per IP
	WindowSize time.Duration // Fixed-window length

	// Redis-specific config
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// NewLimiter creates a rate limiter based on the configuration (factory pattern)
func NewLimiter(cfg LimiterConfig) (Limiter, error) {
	limiterType := strings.ToLower(strings.TrimSpace(cfg.Type))

	switch limiterType {
	case "memory", "":
		// In-memory rate limiter (good for single-server deployments)
		return NewMemoryLimiter(cfg.Limit, cfg.WindowSize), nil

	case "redis":
		// Redis-based rate limiter (required for multi-server deployments)
		lim, err := NewRedisLimiter(
			cfg.RedisAddr,
			cfg.RedisPassword,
			cfg.RedisDB,
			cfg.Limit,
			cfg.WindowSize,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create Redis limiter: %w", err)
		}
		return lim, nil

	default:
		return nil, fmt.Errorf("unknown rate limiter type: %s (supported: 'memory', 'redis')", cfg.Type)
	}
}
