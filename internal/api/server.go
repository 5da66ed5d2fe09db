// Package api exposes the booking service over HTTP. It is the
// boundary handed to the presentation layer: all rendering and widget
// work lives on the client side of these endpoints.
package api

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gomboskr/k2barber/internal/service"
	"github.com/gomboskr/k2barber/internal/store"
)

// HTTPServer serves the booking API.
type HTTPServer struct {
	svc           *service.BookingService
	adminPassword string
	logger        *zerolog.Logger
	server        *http.Server
}

// New creates the API server on the given address. adminPassword gates
// the /api/admin endpoints; an empty password disables them.
func New(addr string, svc *service.BookingService, adminPassword string, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		svc:           svc,
		adminPassword: adminPassword,
		logger:        logger,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/availability", s.handleAvailability)
	mux.HandleFunc("/api/services", s.handleServices)
	mux.HandleFunc("/api/bookings", s.handleBookings)
	mux.HandleFunc("/api/bookings/", s.handleBookingByID)
	mux.HandleFunc("/api/bookings/search", s.handleSearch)
	mux.HandleFunc("/api/bookings/range", s.handleDateRange)
	mux.HandleFunc("/api/admin/stats", s.requireAdmin(s.handleStats))
	mux.HandleFunc("/api/admin/export", s.requireAdmin(s.handleExport))

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.withRequestID(mux),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Start serves until the context is cancelled, then shuts down
// gracefully.
func (s *HTTPServer) Start(ctx context.Context) error {
	go func() {
		<-ctx.Done()
		ctxShutdown, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		_ = s.server.Shutdown(ctxShutdown)
	}()

	s.logger.Info().Str("addr", s.server.Addr).Msg("API server started")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// withRequestID tags every request with an id for log correlation.
func (s *HTTPServer) withRequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.New().String()
		w.Header().Set("X-Request-ID", requestID)
		s.logger.Debug().
			Str("request_id", requestID).
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Msg("request")
		next.ServeHTTP(w, r)
	})
}

// requireAdmin gates admin endpoints behind the shared password. The
// password travels in the X-Admin-Password header, matching the
// password prompt of the admin dashboard.
func (s *HTTPServer) requireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if s.adminPassword == "" {
			writeError(w, http.StatusForbidden, "admin API disabled")
			return
		}
		supplied := r.Header.Get("X-Admin-Password")
		if subtle.ConstantTimeCompare([]byte(supplied), []byte(s.adminPassword)) != 1 {
			writeError(w, http.StatusUnauthorized, "invalid admin password")
			return
		}
		next(w, r)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// writeServiceError maps the service error taxonomy onto HTTP statuses.
func writeServiceError(w http.ResponseWriter, err error) {
	var verr *service.ValidationError
	switch {
	case errors.As(err, &verr):
		writeJSON(w, http.StatusBadRequest, map[string]any{
			"error":  "validation failed",
			"fields": verr.Fields,
		})
	case errors.Is(err, service.ErrSlotUnavailable):
		writeError(w, http.StatusConflict, "slot not available; refresh availability and retry")
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusConflict, "slot already booked")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, "booking not found")
	case errors.Is(err, service.ErrPastDate), errors.Is(err, service.ErrDateTooFar):
		writeError(w, http.StatusBadRequest, err.Error())
	default:
		writeError(w, http.StatusInternalServerError, fmt.Sprintf("internal error: %v", err))
	}
}
