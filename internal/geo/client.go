package geo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/evyataryagoni/clientinfo/internal/logger"
)

// Lookuper is the interface the service layer depends on.
// It allows tests to substitute a fake provider.
type Lookuper interface {
	Lookup(ctx context.Context, ip string) (*Result, error)
}

// Result is the raw geolocation payload returned by the provider.
// Fields the provider omits stay at their zero value; mapping them to
// the "N/A" defaults happens in the service layer.
//
// Latitude and longitude decode as json.Number so both numeric and
// string payloads are accepted.
type Result struct {
	City      string      `json:"city"`
	Region    string      `json:"region"`
	Country   string      `json:"country"`
	Latitude  json.Number `json:"latitude"`
	Longitude json.Number `json:"longitude"`
}

// Config holds geolocation client configuration
type Config struct {
	// BaseURL is the provider origin, e.g. "https://ipapi.co".
	// The lookup URL is "{BaseURL}/{ip}/json/".
	BaseURL string

	// Timeout bounds the whole lookup. Zero means no client timeout:
	// only the transport's own limits apply. That matches the behavior
	// this service has always had; set GEO_TIMEOUT_SECONDS to opt in
	// to a bound.
	Timeout time.Duration
}

// Client performs IP geolocation lookups against an external provider.
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *logger.Logger
}

// New creates a geolocation client for the configured provider.
func New(cfg Config, log *logger.Logger) *Client {
	if log == nil {
		log = logger.NewDefault()
	}
	return &Client{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    strings.TrimRight(cfg.BaseURL, "/"),
		logger:     log.WithComponent("GeoClient"),
	}
}

// Lookup fetches geolocation data for a single non-loopback IP.
//
// The outbound request runs under ctx; handlers pass the inbound request
// context, so a client that disconnects mid-request releases the pending
// lookup instead of leaking it. Every failure (network error, non-2xx
// status, malformed body) is returned as an error for the caller to
// swallow; a lookup failure must never fail the client-facing request.
func (c *Client) Lookup(ctx context.Context, ip string) (*Result, error) {
	url := fmt.Sprintf("%s/%s/json/", c.baseURL, ip)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("building geolocation request: %w", err)
	}

	c.logger.Debug().Str("ip", ip).Str("url", url).Msg("Geolocation lookup")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("geolocation request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("geolocation provider returned status %d", resp.StatusCode)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode geolocation response: %w", err)
	}

	return &result, nil
}
