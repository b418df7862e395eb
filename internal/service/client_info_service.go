package service

import (
	"context"
	"net/http"
	"time"

	"github.com/evyataryagoni/clientinfo/internal/geo"
	"github.com/evyataryagoni/clientinfo/internal/identity"
	"github.com/evyataryagoni/clientinfo/internal/logger"
	"github.com/evyataryagoni/clientinfo/internal/metrics"
	"github.com/evyataryagoni/clientinfo/internal/models"
	"github.com/go-playground/validator/v10"
)

// ClientInfoService handles business logic for client-info requests
// This is the service layer - it sits between handlers and the geo client
//
// Responsibilities:
//   - Resolve the caller's identity
//   - Decide whether a geolocation lookup applies (loopback never looks up)
//   - Swallow lookup failures: degraded geolocation collapses to "N/A"
//     fields, it never fails the request
type ClientInfoService struct {
	geo       geo.Lookuper        // Outbound geolocation client
	validator *validator.Validate // Validator for resolved IPs
	metrics   *metrics.Metrics    // Metrics collector
	logger    *logger.Logger      // Structured logger
}

// NewClientInfoService creates a new client-info service
//
// Parameters:
//   - geoClient: any implementation of geo.Lookuper
//   - m: metrics collector (optional, can be nil)
//   - log: logger (optional, can be nil)
func NewClientInfoService(geoClient geo.Lookuper, m *metrics.Metrics, log *logger.Logger) *ClientInfoService {
	if log == nil {
		log = logger.NewDefault()
	}
	return &ClientInfoService{
		geo:       geoClient,
		validator: validator.New(),
		metrics:   m,
		logger:    log.WithComponent("ClientInfoService"),
	}
}

// ClientInfo builds the full response for a single request.
// It always produces a value; there is no error path. Whatever happens to
// the geolocation lookup, the caller gets their IP and user agent back
// with a fully populated location block.
func (s *ClientInfoService) ClientInfo(r *http.Request) *models.ClientInfo {
	id := identity.FromRequest(r)

	return &models.ClientInfo{
		IP:        id.IP,
		UserAgent: id.UserAgent,
		Location:  s.resolveLocation(r.Context(), id.IP),
	}
}

// resolveLocation decides whether to perform a lookup and maps the outcome
// into the wire Location, defaulting every missing field to "N/A".
func (s *ClientInfoService) resolveLocation(ctx context.Context, ip string) models.Location {
	// Loopback callers are never looked up: no outbound call is made
	if identity.IsLocal(ip) {
		s.logger.Debug().Msg("Loopback caller, skipping geolocation lookup")
		s.countLookup("skipped")
		return models.NotAvailable()
	}

	// Guard the provider against garbage: a RemoteAddr that didn't parse
	// as an IP degrades to "N/A" without an outbound call
	if err := s.validator.Var(ip, "required,ip"); err != nil {
		s.logger.Warn().Str("ip", ip).Msg("Resolved client IP is not a valid address, skipping lookup")
		s.countLookup("invalid_ip")
		return models.NotAvailable()
	}

	start := time.Now()
	result, err := s.geo.Lookup(ctx, ip)
	if s.metrics != nil {
		s.metrics.GeoLookupDuration.Observe(time.Since(start).Seconds())
	}

	if err != nil {
		// Swallowed on purpose: upstream trouble is an operator concern,
		// never the caller's
		s.logger.Error().Err(err).Str("ip", ip).Msg("Geolocation lookup failed")
		s.countLookup("error")
		return models.NotAvailable()
	}

	s.logger.Info().
		Str("ip", ip).
		Str("city", result.City).
		Str("country", result.Country).
		Msg("Geolocation lookup successful")
	s.countLookup("success")

	return mapLocation(result)
}

// mapLocation converts a raw provider payload into the wire Location,
// applying the per-field "N/A" default. Fields default independently: a
// payload missing only latitude keeps its city.
func mapLocation(result *geo.Result) models.Location {
	return models.Location{
		City:      orNA(result.City),
		Region:    orNA(result.Region),
		Country:   orNA(result.Country),
		Latitude:  orNA(result.Latitude.String()),
		Longitude: orNA(result.Longitude.String()),
	}
}

// orNA substitutes "N/A" for empty values
func orNA(value string) string {
	if value == "" {
		return "N/A"
	}
	return value
}

// countLookup increments the lookup counter when metrics are enabled
func (s *ClientInfoService) countLookup(result string) {
	if s.metrics != nil {
		s.metrics.GeoLookupsTotal.WithLabelValues(result).Inc()
	}
}
