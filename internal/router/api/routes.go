package api

import (
	"net/http"

	"github.com/evyataryagoni/clientinfo/internal/handler"
	"github.com/go-chi/chi/v5"
)

// SetupRoutes configures the /api subrouter. The caller supplies the rate
// limiting middleware so the limiter applies to this group only.
func SetupRoutes(infoHandler *handler.ClientInfoHandler, rateLimit func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Use(rateLimit)

	// GET /api/client-info
	r.Get("/client-info", infoHandler.GetClientInfo)

	return r
}
