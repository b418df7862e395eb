package middleware

import (
	"net/http"
	"strings"
)

// SecurityPolicy names the external origins the Content-Security-Policy
// admits beyond 'self'. Everything else about the policy is fixed.
type SecurityPolicy struct {
	CDNOrigin string // stylesheet/font CDN, e.g. "https://cdnjs.cloudflare.com"
	GeoOrigin string // geolocation provider, reachable from browser code via connect-src
}

// SecurityHeaders applies the fixed security-header policy to every response.
//
// The CSP restricts default-src to self; styles and fonts may additionally
// come from the named CDN; connect-src admits the CDN and the geolocation
// provider so the served frontend can call it directly; scripts are
// self-only; images allow self, data URIs, and any https origin.
func SecurityHeaders(policy SecurityPolicy) func(http.Handler) http.Handler {
	csp := strings.Join([]string{
		"default-src 'self'",
		"script-src 'self'",
		"style-src 'self' " + policy.CDNOrigin,
		"font-src 'self' " + policy.CDNOrigin,
		"connect-src 'self' " + policy.CDNOrigin + " " + policy.GeoOrigin,
		"img-src 'self' data: https:",
	}, "; ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Security-Policy", csp)

			// Prevent MIME type sniffing
			w.Header().Set("X-Content-Type-Options", "nosniff")

			// Prevent clickjacking
			w.Header().Set("X-Frame-Options", "DENY")

			// Don't send referrer to other sites
			w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

			next.ServeHTTP(w, r)
		})
	}
}
