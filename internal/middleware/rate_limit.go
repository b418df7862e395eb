package middleware

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/evyataryagoni/clientinfo/internal/identity"
	"github.com/evyataryagoni/clientinfo/internal/limiter"
	"github.com/evyataryagoni/clientinfo/internal/metrics"
)

// rateLimitMessage is the fixed body text returned with every 429.
const rateLimitMessage = "Too many requests from this IP, please try again later."

// RateLimitMiddleware enforces per-IP rate limiting (returns 429 when exceeded).
//
// It emits the standard draft RateLimit-* headers on every gated response
// and deliberately not the legacy X-RateLimit-* variant. The key is the
// normalized client IP: chi's RealIP middleware has already folded proxy
// headers into RemoteAddr by the time this runs.
//
// The metrics collector is optional; pass nil to skip rejection counting.
func RateLimitMiddleware(lim limiter.Limiter, m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip := identity.NormalizeIP(r.RemoteAddr)

			allowed, info := lim.Allow(ip)

			// Standard rate-limit status headers, set for allowed and
			// denied requests alike
			w.Header().Set("RateLimit-Limit", strconv.Itoa(info.Limit))
			w.Header().Set("RateLimit-Remaining", strconv.Itoa(info.Remaining))
			w.Header().Set("RateLimit-Reset", strconv.Itoa(secondsUntil(info.ResetAt)))

			if !allowed {
				if m != nil {
					m.RateLimitRejectedTotal.Inc()
				}

				w.Header().Set("Retry-After", strconv.Itoa(ceilSeconds(info.RetryAfter)))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": rateLimitMessage,
				})
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// secondsUntil returns the whole seconds remaining until t, floored at zero.
func secondsUntil(t time.Time) int {
	return ceilSeconds(time.Until(t))
}

// ceilSeconds rounds a duration up to whole seconds, floored at zero.
func ceilSeconds(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	secs := int(d / time.Second)
	if d%time.Second != 0 {
		secs++
	}
	return secs
}
