package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/evyataryagoni/clientinfo/internal/models"
	"github.com/evyataryagoni/clientinfo/internal/service"
)

// ClientInfoHandler handles HTTP requests for the informational API
// This is the handler layer - it deals with HTTP concerns only
//
// Responsibilities:
//   - Call service methods
//   - Format HTTP responses (JSON)
//   - Set appropriate status codes
//   - NO business logic (that's in the service layer)
type ClientInfoHandler struct {
	service *service.ClientInfoService
}

// NewClientInfoHandler creates a new handler with the given service
func NewClientInfoHandler(service *service.ClientInfoService) *ClientInfoHandler {
	return &ClientInfoHandler{
		service: service,
	}
}

// GetClientInfo handles GET /api/client-info
// @Summary      Client connection info
// @Description  Returns the caller's IP address, user agent, and coarse geolocation. Geolocation degrades to "N/A" fields when the upstream provider is unavailable.
// @Tags         Client Info
// @Produce      json
// @Success      200  {object}   models.ClientInfo
// @Failure      429  {object}   models.ErrorResponse  "Rate limit exceeded"
// @Router       /api/client-info [get]
func (h *ClientInfoHandler) GetClientInfo(w http.ResponseWriter, r *http.Request) {
	// The service never fails: degraded geolocation means "N/A" fields,
	// so this endpoint is always a 200 once past the rate limiter.
	info := h.service.ClientInfo(r)
	h.respondJSON(w, http.StatusOK, info)
}

// HealthCheck handles GET /_health
// @Summary      Liveness check
// @Description  Always returns ok with the current server time. Not rate limited.
// @Tags         Lifecycle
// @Produce      json
// @Success      200  {object}   models.Health
// @Router       /_health [get]
func (h *ClientInfoHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	h.respondJSON(w, http.StatusOK, models.Health{
		Status:    "ok",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	})
}

// Favicon handles GET /favicon.ico with an empty 204 to suppress browser
// noise in the request logs.
func (h *ClientInfoHandler) Favicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// respondJSON writes a JSON response with the given status code
func (h *ClientInfoHandler) respondJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// If encoding fails, we can't change the status code since headers are already sent
		http.Error(w, "Failed to encode response", http.StatusInternalServerError)
	}
}

// respondError writes an error response with consistent formatting
func (h *ClientInfoHandler) respondError(w http.ResponseWriter, statusCode int, message string) {
	h.respondJSON(w, statusCode, models.ErrorResponse{Error: message})
}
