package main

import (
	"time"

	"github.com/evyataryagoni/clientinfo/internal/config"
	"github.com/evyataryagoni/clientinfo/internal/geo"
	"github.com/evyataryagoni/clientinfo/internal/handler"
	"github.com/evyataryagoni/clientinfo/internal/limiter"
	"github.com/evyataryagoni/clientinfo/internal/logger"
	"github.com/evyataryagoni/clientinfo/internal/metrics"
	"github.com/evyataryagoni/clientinfo/internal/middleware"
	"github.com/evyataryagoni/clientinfo/internal/router"
	"github.com/evyataryagoni/clientinfo/internal/server"
	"github.com/evyataryagoni/clientinfo/internal/service"
)

// @title           Client Info API
// @version         1.0
// @description     A small web server that serves static assets and reports the caller's IP, user agent, and coarse geolocation, with per-IP rate limiting and graceful shutdown

// @contact.name   Evyatar Yagoni
// @contact.email  evyatar@example.com

// @license.name  MIT
// @license.url   http://opensource.org/licenses/MIT

// @host      localhost:3000
// @BasePath  /
func main() {
	// Load configuration
	appConfig := config.Load()

	// Initialize components
	appLogger := setupLogger(appConfig)

	rateLimiter := setupRateLimiter(appConfig, appLogger)
	defer rateLimiter.Close()

	metricsCollector := setupMetrics(appLogger)
	geoClient := setupGeoClient(appConfig, appLogger)

	// Build application layers
	infoService := service.NewClientInfoService(geoClient, metricsCollector, appLogger)
	infoHandler := handler.NewClientInfoHandler(infoService)

	appRouter := router.SetupRouter(infoHandler, rateLimiter, metricsCollector, appLogger, router.Options{
		StaticDir: appConfig.StaticDir,
		Security: middleware.SecurityPolicy{
			CDNOrigin: appConfig.CDNOrigin,
			GeoOrigin: appConfig.GeoProviderURL,
		},
	})

	// Start server; Run blocks until SIGTERM and drains before returning
	srv := server.New(":"+appConfig.Port, appRouter, appLogger)
	if err := srv.Run(); err != nil {
		appLogger.Fatal().Err(err).Msg("Server failed")
	}
}

// setupLogger initializes the structured logger
func setupLogger(appConfig *config.Config) *logger.Logger {
	appLogger := logger.New(logger.Config{
		Level:  appConfig.LogLevel,
		Pretty: appConfig.LogPretty,
	})

	appLogger.Info().Msg("Starting Client Info Server...")
	appLogger.Info().
		Str("port", appConfig.Port).
		Str("static_dir", appConfig.StaticDir).
		Str("rate_limiter_type", appConfig.RateLimitType).
		Int("rate_limit", appConfig.RateLimit).
		Int("rate_limit_window", appConfig.RateLimitWindow).
		Str("geo_provider", appConfig.GeoProviderURL).
		Msg("Configuration loaded")

	return appLogger
}

// setupRateLimiter initializes the rate limiter for the informational endpoint
// Supports in-memory (default) and Redis-based rate limiting
func setupRateLimiter(appConfig *config.Config, log *logger.Logger) limiter.Limiter {
	rateLimiter, err := limiter.NewLimiter(limiter.LimiterConfig{
		Type:          appConfig.RateLimitType,
		Limit:         appConfig.RateLimit,
		WindowSize:    time.Duration(appConfig.RateLimitWindow) * time.Second,
		RedisAddr:     appConfig.RedisAddr,
		RedisPassword: appConfig.RedisPassword,
		RedisDB:       appConfig.RedisDB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize rate limiter")
	}

	log.Info().
		Str("type", appConfig.RateLimitType).
		Int("limit", appConfig.RateLimit).
		Int("window_seconds", appConfig.RateLimitWindow).
		Msg("Rate limiter initialized")

	return rateLimiter
}

// setupMetrics initializes the Prometheus metrics collector
func setupMetrics(log *logger.Logger) *metrics.Metrics {
	metricsCollector := metrics.New()
	log.Info().Msg("Metrics initialized")
	return metricsCollector
}

// setupGeoClient initializes the outbound geolocation client
func setupGeoClient(appConfig *config.Config, log *logger.Logger) *geo.Client {
	return geo.New(geo.Config{
		BaseURL: appConfig.GeoProviderURL,
		Timeout: time.Duration(appConfig.GeoTimeout) * time.Second,
	}, log)
}
