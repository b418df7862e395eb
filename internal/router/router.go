package router

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger/v2"

	_ "github.com/evyataryagoni/clientinfo/docs" // Swagger docs
	"github.com/evyataryagoni/clientinfo/internal/handler"
	"github.com/evyataryagoni/clientinfo/internal/limiter"
	"github.com/evyataryagoni/clientinfo/internal/logger"
	"github.com/evyataryagoni/clientinfo/internal/metrics"
	custommiddleware "github.com/evyataryagoni/clientinfo/internal/middleware"
	"github.com/evyataryagoni/clientinfo/internal/router/api"
)

// Options carries the router's declarative configuration: where static
// assets live and which external origins the security policy admits.
type Options struct {
	StaticDir string
	Security  custommiddleware.SecurityPolicy
}

// SetupRouter creates and configures the Chi router with all middleware and routes
//
// The rate limiter gates only the /api group: static assets, the liveness
// endpoint, and the operational endpoints stay reachable when a client has
// exhausted its window.
func SetupRouter(infoHandler *handler.ClientInfoHandler, rateLimiter limiter.Limiter, m *metrics.Metrics, log *logger.Logger, opts Options) chi.Router {
	r := chi.NewRouter()

	// Apply global middleware - these run on every request
	// Order matters! RequestID first, RealIP before anything that reads
	// the client address, then logging
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP) // Get real client IP (handles proxies/load balancers)
	r.Use(custommiddleware.LoggingMiddleware(log))
	r.Use(middleware.Recoverer) // Recover from panics and return 500
	r.Use(custommiddleware.SecurityHeaders(opts.Security))
	if m != nil {
		r.Use(custommiddleware.MetricsMiddleware(m))
	}

	// Mount the informational API under /api with its rate limiter
	r.Mount("/api", api.SetupRoutes(infoHandler, custommiddleware.RateLimitMiddleware(rateLimiter, m)))

	// Health check endpoint - used by the platform's liveness probe.
	// Never rate limited.
	r.Get("/_health", infoHandler.HealthCheck)

	// Empty favicon to keep browsers from spamming the static handler
	r.Get("/favicon.ico", infoHandler.Favicon)

	// Prometheus metrics endpoint
	r.Handle("/metrics", promhttp.Handler())

	// Swagger UI endpoint - API documentation
	r.Get("/swagger/*", httpSwagger.Handler(
		httpSwagger.URL("/swagger/doc.json"),
	))

	// Everything else is static content from the configured directory;
	// misses fall through to the file server's 404
	fileServer(r, "/", http.Dir(opts.StaticDir))

	return r
}

// fileServer mounts an http.FileServer on the router at path.
func fileServer(r chi.Router, path string, root http.FileSystem) {
	if path != "/" && path[len(path)-1] != '/' {
		r.Get(path, http.RedirectHandler(path+"/", http.StatusMovedPermanently).ServeHTTP)
		path += "/"
	}
	path += "*"

	r.Get(path, func(w http.ResponseWriter, req *http.Request) {
		rctx := chi.RouteContext(req.Context())
		pathPrefix := strings.TrimSuffix(rctx.RoutePattern(), "/*")
		fs := http.StripPrefix(pathPrefix, http.FileServer(root))
		fs.ServeHTTP(w, req)
	})
}
