package models

// Location is the geolocation block of a client-info response.
// Every field is always populated: values the upstream provider does not
// supply (or that we never ask for, e.g. for loopback callers) are the
// literal string "N/A", never empty and never null.
type Location struct {
	City      string `json:"city"`
	Region    string `json:"region"`
	Country   string `json:"country"`
	Latitude  string `json:"latitude"`
	Longitude string `json:"longitude"`
}

// NotAvailable returns a Location with every field set to "N/A".
// Used for loopback callers and for failed or skipped lookups.
func NotAvailable() Location {
	return Location{
		City:      "N/A",
		Region:    "N/A",
		Country:   "N/A",
		Latitude:  "N/A",
		Longitude: "N/A",
	}
}

// ClientInfo is the response body of GET /api/client-info.
type ClientInfo struct {
	IP        string   `json:"ip"`        // Resolved client IP, "localhost" for loopback callers
	UserAgent string   `json:"userAgent"` // User-Agent header, "Unknown" when absent
	Location  Location `json:"locationData"`
}

// Health is the response body of GET /_health.
type Health struct {
	Status    string `json:"status"`    // Always "ok" while the process is serving
	Timestamp string `json:"timestamp"` // RFC 3339 timestamp of the check
}

// ErrorResponse is the standard error response format
// This is what we return when something goes wrong
type ErrorResponse struct {
	Error string `json:"error"` // Error message
}
