package api

import (
	"net/http"

	"github.com/gomboskr/k2barber/internal/metrics"
	"github.com/gomboskr/k2barber/internal/models"
)

// AvailabilityResponse is the response for GET /api/availability.
type AvailabilityResponse struct {
	Date           string   `json:"date"`
	AvailableSlots int      `json:"available_slots"`
	Slots          []string `json:"slots"`
}

// handleAvailability returns the free slots for a date.
// GET /api/availability?date=YYYY-MM-DD
func (s *HTTPServer) handleAvailability(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("availability")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		writeError(w, http.StatusBadRequest, "date is required")
		return
	}

	free, err := s.svc.AvailableSlots(r.Context(), dateStr)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, AvailabilityResponse{
		Date:           dateStr,
		AvailableSlots: len(free),
		Slots:          free,
	})
}

// handleServices returns the bookable service catalog with prices.
// GET /api/services
func (s *HTTPServer) handleServices(w http.ResponseWriter, r *http.Request) {
	metrics.IncHTTP("services")
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"services": models.Services()})
}
