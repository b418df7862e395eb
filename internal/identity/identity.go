package identity

import (
	"net"
	"net/http"
)

// localhostSentinel replaces loopback addresses in resolved identities so
// the rest of the pipeline (and API consumers) see a single stable value.
const localhostSentinel = "localhost"

// defaultUserAgent is reported when the client sends no User-Agent header.
const defaultUserAgent = "Unknown"

// ClientIdentity describes who is calling: their IP address and user agent.
// It is derived per request and never persisted.
type ClientIdentity struct {
	IP        string
	UserAgent string
}

// FromRequest resolves the caller's identity from an inbound request.
//
// The IP comes from r.RemoteAddr, which chi's middleware.RealIP has already
// rewritten from trusted forwarding headers (X-Real-IP, X-Forwarded-For)
// when the request went through a proxy. A trailing port is stripped when
// present. Loopback addresses map to "localhost" and a missing User-Agent
// maps to "Unknown", so FromRequest always produces a usable value and has
// no error path.
func FromRequest(r *http.Request) ClientIdentity {
	ua := r.UserAgent()
	if ua == "" {
		ua = defaultUserAgent
	}

	return ClientIdentity{
		IP:        NormalizeIP(r.RemoteAddr),
		UserAgent: ua,
	}
}

// NormalizeIP strips an optional port from addr and maps loopback
// addresses ("127.0.0.1", "::1") to the "localhost" sentinel.
// Anything unparsable is returned as-is; validation happens later.
func NormalizeIP(addr string) string {
	// RemoteAddr is usually "host:port" ("[::1]:53422" for IPv6), but a
	// proxy header can leave a bare host in place.
	host := addr
	if h, _, err := net.SplitHostPort(addr); err == nil {
		host = h
	}

	if ip := net.ParseIP(host); ip != nil && ip.IsLoopback() {
		return localhostSentinel
	}
	return host
}

// IsLocal reports whether a resolved IP is the loopback sentinel.
func IsLocal(ip string) bool {
	return ip == localhostSentinel
}
