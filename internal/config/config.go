package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Port      string
	StaticDir string // directory served at the root path

	// Rate limiting (informational endpoint only)
	RateLimitType   string // "memory" or "redis"
	RateLimit       int    // number of requests allowed per window per IP
	RateLimitWindow int    // fixed-window length in seconds

	// Geolocation provider
	GeoProviderURL string // provider origin; lookups go to {url}/{ip}/json/
	GeoTimeout     int    // outbound lookup timeout in seconds; 0 = transport default only

	// Security headers
	CDNOrigin string // CDN origin admitted by style-src/font-src/connect-src

	// Logging
	LogLevel  string
	LogPretty bool

	// Redis configuration (only used when RateLimitType is "redis")
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

// Load reads configuration from environment variables
// with sensible defaults
func Load() *Config {
	// Load .env file if it exists (for local development)
	// In production/Docker, environment variables are set directly
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found, using environment variables or defaults")
	}

	return &Config{
		// Server config with defaults
		Port:      getEnv("PORT", "3000"),
		StaticDir: getEnv("STATIC_DIR", "./public"),

		// Rate limiting (default: memory, 100 requests per 15 minutes)
		RateLimitType:   getEnv("RATE_LIMITER_TYPE", "memory"),
		RateLimit:       getEnvAsInt("RATE_LIMIT", 100),
		RateLimitWindow: getEnvAsInt("RATE_LIMIT_WINDOW", 900),

		// Geolocation provider. No client timeout by default; the
		// transport's own limits are the only bound unless configured.
		GeoProviderURL: getEnv("GEO_PROVIDER_URL", "https://ipapi.co"),
		GeoTimeout:     getEnvAsInt("GEO_TIMEOUT_SECONDS", 0),

		// Security headers
		CDNOrigin: getEnv("CDN_ORIGIN", "https://cdnjs.cloudflare.com"),

		// Logging
		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogPretty: getEnvAsBool("LOG_PRETTY", true),

		// Redis config
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvAsInt("REDIS_DB", 0),
	}
}

// getEnv reads an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

// getEnvAsInt reads an environment variable as an integer
// Returns default if not set or invalid
func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.Atoi(valueStr)
	if err != nil {
		// If conversion fails, return default
		return defaultValue
	}

	return value
}

// getEnvAsBool reads an environment variable as a boolean
// Returns default if not set or invalid
func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}

	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return defaultValue
	}

	return value
}
