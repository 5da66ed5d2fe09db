package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/gomboskr/k2barber/internal/availability"
	"github.com/gomboskr/k2barber/internal/events"
	"github.com/gomboskr/k2barber/internal/metrics"
	"github.com/gomboskr/k2barber/internal/models"
	"github.com/gomboskr/k2barber/internal/slots"
	"github.com/gomboskr/k2barber/internal/store"
)

// BookingStore is the persistence contract the service depends on.
type BookingStore interface {
	ListBookings(ctx context.Context) ([]models.Booking, error)
	GetBooking(ctx context.Context, id int64) (*models.Booking, error)
	ListByDateRange(ctx context.Context, start, end string) ([]models.Booking, error)
	BookedTimes(ctx context.Context, date string) ([]string, error)
	InsertBooking(ctx context.Context, b *models.Booking) error
	UpdateBooking(ctx context.Context, id int64, upd store.BookingUpdate) (*models.Booking, error)
	DeleteBooking(ctx context.Context, id int64) error
	SearchBookings(ctx context.Context, query string) ([]models.Booking, error)
}

// Config holds booking-rule knobs.
type Config struct {
	// MaxAdvanceDays limits how far ahead a booking may be placed.
	MaxAdvanceDays int
	// CacheTTL enables Redis availability caching when > 0.
	CacheTTL time.Duration
}

// BookingService orchestrates the availability policy, the slot
// generator and the booking store.
type BookingService struct {
	repo     BookingStore
	policies *availability.Provider
	bus      *events.Bus
	redis    *redis.Client
	cacheTTL time.Duration
	maxDays  int
	logger   *zerolog.Logger
	now      func() time.Time
}

// New constructs the booking service. bus and redis client may be nil.
func New(repo BookingStore, policies *availability.Provider, bus *events.Bus, cfg Config, logger *zerolog.Logger) *BookingService {
	if cfg.MaxAdvanceDays <= 0 {
		cfg.MaxAdvanceDays = 90
	}
	return &BookingService{
		repo:     repo,
		policies: policies,
		bus:      bus,
		cacheTTL: cfg.CacheTTL,
		maxDays:  cfg.MaxAdvanceDays,
		logger:   logger,
		now:      time.Now,
	}
}

// UseRedisCache configures optional caching of per-date availability.
func (s *BookingService) UseRedisCache(client *redis.Client) {
	s.redis = client
}

// AvailableSlots returns the free bookable slots for a date in
// chronological order. Closed or fully booked days yield an empty
// sequence. For today, slots at or before the current time are
// filtered out.
func (s *BookingService) AvailableSlots(ctx context.Context, dateStr string) ([]string, error) {
	date, err := models.ParseDate(dateStr)
	if err != nil {
		verr := &ValidationError{}
		verr.add("date", "expected YYYY-MM-DD")
		return nil, verr
	}

	free, err := s.freeSlots(ctx, dateStr, date)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if dateStr == now.Format(models.DateLayout) {
		cutoff := now.Format(models.TimeLayout)
		filtered := free[:0]
		for _, slot := range free {
			if slot > cutoff {
				filtered = append(filtered, slot)
			}
		}
		free = filtered
	}
	return free, nil
}

// freeSlots computes generated-minus-booked for the date, consulting
// the Redis cache when configured. The now cutoff is applied by the
// caller so cached entries stay valid all day.
func (s *BookingService) freeSlots(ctx context.Context, dateStr string, date time.Time) ([]string, error) {
	cacheKey := "availability:" + dateStr
	if cached, ok := s.readCache(ctx, cacheKey); ok {
		return cached, nil
	}

	generated := slots.ForPolicy(s.policies.Current(), date)
	if len(generated) == 0 {
		return []string{}, nil
	}

	booked, err := s.repo.BookedTimes(ctx, dateStr)
	if err != nil {
		return nil, fmt.Errorf("load booked times: %w", err)
	}

	taken := make(map[string]struct{}, len(booked))
	for _, t := range booked {
		taken[t] = struct{}{}
	}

	free := make([]string, 0, len(generated))
	for _, slot := range generated {
		if _, ok := taken[slot]; !ok {
			free = append(free, slot)
		}
	}

	s.writeCache(ctx, cacheKey, free)
	return free, nil
}

// CreateBookingInput carries a booking request from the client.
type CreateBookingInput struct {
	ServiceKind  string `json:"service_kind"`
	Date         string `json:"date"`
	Time         string `json:"time"`
	CustomerName string `json:"customer_name"`
	Phone        string `json:"phone"`
	Email        string `json:"email"`
	Notes        string `json:"notes"`
}

// CreateBooking validates the input, checks the requested slot against
// the current availability and commits the booking. On success the
// stored record is returned and a created event is published.
func (s *BookingService) CreateBooking(ctx context.Context, in CreateBookingInput) (*models.Booking, error) {
	verr := &ValidationError{}

	svc, ok := models.ServiceByKind(in.ServiceKind)
	if in.ServiceKind == "" {
		verr.add("service_kind", "required")
	} else if !ok {
		verr.add("service_kind", "unknown service")
	}
	if in.Date == "" {
		verr.add("date", "required")
	} else if _, err := models.ParseDate(in.Date); err != nil {
		verr.add("date", "expected YYYY-MM-DD")
	}
	if in.Time == "" {
		verr.add("time", "required")
	} else if !models.ValidSlotTime(in.Time) {
		verr.add("time", "expected HH:MM on the half-hour grid")
	}
	if in.CustomerName == "" {
		verr.add("customer_name", "required")
	}
	if in.Email == "" {
		verr.add("email", "required")
	} else if !models.ValidEmail(in.Email) {
		verr.add("email", "invalid email address")
	}
	phone := ""
	if in.Phone == "" {
		verr.add("phone", "required")
	} else if normalized, ok := models.NormalizePhone(in.Phone); !ok {
		verr.add("phone", "invalid Hungarian phone number")
	} else {
		phone = normalized
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	date, _ := models.ParseDate(in.Date)
	if err := s.validateBookingDate(date); err != nil {
		return nil, err
	}

	// Re-check against current availability so stale client slot
	// lists are rejected before hitting the store.
	free, err := s.AvailableSlots(ctx, in.Date)
	if err != nil {
		return nil, err
	}
	if !contains(free, in.Time) {
		return nil, ErrSlotUnavailable
	}

	booking := &models.Booking{
		Date:         in.Date,
		Time:         in.Time,
		Service:      svc.Label,
		ServiceKind:  svc.Kind,
		CustomerName: in.CustomerName,
		Phone:        phone,
		Email:        in.Email,
		Notes:        in.Notes,
		Status:       models.StatusConfirmed,
	}
	if err := s.repo.InsertBooking(ctx, booking); err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	s.invalidateDate(ctx, booking.Date)
	metrics.IncBookingCreated(booking.ServiceKind)
	s.logger.Info().
		Int64("booking_id", booking.ID).
		Str("date", booking.Date).
		Str("time", booking.Time).
		Str("service", booking.ServiceKind).
		Msg("booking created")

	if s.bus != nil {
		s.bus.Publish(events.BookingCreated, *booking)
	}
	return booking, nil
}

// UpdateBookingInput carries the changed fields of a booking. Nil
// fields stay untouched.
type UpdateBookingInput struct {
	ServiceKind  *string `json:"service_kind"`
	Date         *string `json:"date"`
	Time         *string `json:"time"`
	CustomerName *string `json:"customer_name"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	Notes        *string `json:"notes"`
	Status       *string `json:"status"`
}

// UpdateBooking applies a partial update. Date or time changes are
// re-validated against all other bookings by the store.
func (s *BookingService) UpdateBooking(ctx context.Context, id int64, in UpdateBookingInput) (*models.Booking, error) {
	verr := &ValidationError{}
	upd := store.BookingUpdate{
		CustomerName: in.CustomerName,
		Notes:        in.Notes,
	}

	if in.ServiceKind != nil {
		svc, ok := models.ServiceByKind(*in.ServiceKind)
		if !ok {
			verr.add("service_kind", "unknown service")
		} else {
			upd.ServiceKind = &svc.Kind
			upd.Service = &svc.Label
		}
	}
	if in.Date != nil {
		if _, err := models.ParseDate(*in.Date); err != nil {
			verr.add("date", "expected YYYY-MM-DD")
		} else {
			upd.Date = in.Date
		}
	}
	if in.Time != nil {
		if !models.ValidSlotTime(*in.Time) {
			verr.add("time", "expected HH:MM on the half-hour grid")
		} else {
			upd.Time = in.Time
		}
	}
	if in.Email != nil {
		if !models.ValidEmail(*in.Email) {
			verr.add("email", "invalid email address")
		} else {
			upd.Email = in.Email
		}
	}
	if in.Phone != nil {
		normalized, ok := models.NormalizePhone(*in.Phone)
		if !ok {
			verr.add("phone", "invalid Hungarian phone number")
		} else {
			upd.Phone = &normalized
		}
	}
	if in.Status != nil {
		switch *in.Status {
		case models.StatusPending, models.StatusConfirmed, models.StatusCancelled, models.StatusCompleted:
			upd.Status = in.Status
		default:
			verr.add("status", "unknown status")
		}
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}

	previous, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateBooking(ctx, id, upd)
	if err != nil {
		if errors.Is(err, store.ErrConflict) {
			metrics.IncSlotConflict()
		}
		return nil, err
	}

	s.invalidateDate(ctx, previous.Date)
	s.invalidateDate(ctx, updated.Date)
	s.logger.Info().Int64("booking_id", id).Msg("booking updated")

	if s.bus != nil {
		s.bus.Publish(events.BookingUpdated, *updated)
	}
	return updated, nil
}

// DeleteBooking removes a booking and frees its slot. A cancelled
// event is published for the notification collaborators.
func (s *BookingService) DeleteBooking(ctx context.Context, id int64) error {
	booking, err := s.repo.GetBooking(ctx, id)
	if err != nil {
		return err
	}
	if err := s.repo.DeleteBooking(ctx, id); err != nil {
		return err
	}

	s.invalidateDate(ctx, booking.Date)
	metrics.IncBookingCancelled()
	s.logger.Info().
		Int64("booking_id", id).
		Str("date", booking.Date).
		Str("time", booking.Time).
		Msg("booking deleted")

	if s.bus != nil {
		s.bus.Publish(events.BookingCancelled, *booking)
	}
	return nil
}

// GetBooking returns a single booking by id.
func (s *BookingService) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	return s.repo.GetBooking(ctx, id)
}

// ListBookings returns every booking.
func (s *BookingService) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.repo.ListBookings(ctx)
}

// ListByDateRange returns bookings with start <= date <= end.
func (s *BookingService) ListByDateRange(ctx context.Context, start, end string) ([]models.Booking, error) {
	verr := &ValidationError{}
	if _, err := models.ParseDate(start); err != nil {
		verr.add("start", "expected YYYY-MM-DD")
	}
	if _, err := models.ParseDate(end); err != nil {
		verr.add("end", "expected YYYY-MM-DD")
	}
	if err := verr.orNil(); err != nil {
		return nil, err
	}
	if start > end {
		verr.add("start", "must not be after end")
		return nil, verr
	}
	return s.repo.ListByDateRange(ctx, start, end)
}

// Search returns bookings matching the query on name, email, phone or
// service, case-insensitively.
func (s *BookingService) Search(ctx context.Context, query string) ([]models.Booking, error) {
	return s.repo.SearchBookings(ctx, query)
}

// Stats summarizes the booking collection for the admin dashboard.
type Stats struct {
	Total     int `json:"total"`
	Today     int `json:"today"`
	Upcoming  int `json:"upcoming"`
	RevenueFt int `json:"revenue_ft"`
}

// AdminStats computes dashboard statistics over all bookings.
func (s *BookingService) AdminStats(ctx context.Context) (Stats, error) {
	bookings, err := s.repo.ListBookings(ctx)
	if err != nil {
		return Stats{}, err
	}

	today := s.now().Format(models.DateLayout)
	stats := Stats{Total: len(bookings)}
	for _, b := range bookings {
		if b.Date == today {
			stats.Today++
		}
		if b.Date >= today {
			stats.Upcoming++
		}
		stats.RevenueFt += models.ServicePrice(b.ServiceKind)
	}
	return stats, nil
}

func (s *BookingService) validateBookingDate(date time.Time) error {
	now := s.now()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	if date.Before(today) {
		return ErrPastDate
	}
	if date.After(today.AddDate(0, 0, s.maxDays)) {
		return ErrDateTooFar
	}
	return nil
}

func (s *BookingService) readCache(ctx context.Context, key string) ([]string, bool) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return nil, false
	}
	val, err := s.redis.Get(ctx, key).Result()
	if err != nil {
		return nil, false
	}
	var out []string
	if err := json.Unmarshal([]byte(val), &out); err != nil {
		return nil, false
	}
	return out, true
}

func (s *BookingService) writeCache(ctx context.Context, key string, value []string) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, data, s.cacheTTL).Err(); err != nil {
		s.logger.Debug().Err(err).Str("key", key).Msg("availability cache write failed")
	}
}

func (s *BookingService) invalidateDate(ctx context.Context, date string) {
	if s.redis == nil || s.cacheTTL <= 0 {
		return
	}
	if err := s.redis.Del(ctx, "availability:"+date).Err(); err != nil {
		s.logger.Debug().Err(err).Str("date", date).Msg("availability cache invalidation failed")
	}
}

func contains(list []string, v string) bool {
	for _, item := range list {
		if item == v {
			return true
		}
	}
	return false
}
