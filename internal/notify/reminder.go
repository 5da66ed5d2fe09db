package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gomboskr/k2barber/internal/events"
	"github.com/gomboskr/k2barber/internal/models"
)

// ReminderStore is the slice of the booking store the scheduler needs.
type ReminderStore interface {
	ListReminderDue(ctx context.Context, date string) ([]models.Booking, error)
	MarkReminderSent(ctx context.Context, id int64) error
}

// ReminderScheduler periodically publishes reminder events for
// next-day confirmed bookings. Each booking is reminded once; the flag
// is persisted so restarts don't re-send.
type ReminderScheduler struct {
	repo     ReminderStore
	bus      *events.Bus
	interval time.Duration
	logger   *zerolog.Logger
	now      func() time.Time
}

// NewReminderScheduler creates the scheduler. interval defaults to 15
// minutes.
func NewReminderScheduler(repo ReminderStore, bus *events.Bus, interval time.Duration, logger *zerolog.Logger) *ReminderScheduler {
	if interval <= 0 {
		interval = 15 * time.Minute
	}
	return &ReminderScheduler{
		repo:     repo,
		bus:      bus,
		interval: interval,
		logger:   logger,
		now:      time.Now,
	}
}

// Start runs the check loop until the context is cancelled.
func (s *ReminderScheduler) Start(ctx context.Context) {
	s.logger.Info().Dur("interval", s.interval).Msg("reminder scheduler started")

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	s.RunOnce(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.RunOnce(ctx)
		}
	}
}

// RunOnce publishes reminders for tomorrow's unreminded confirmed
// bookings.
func (s *ReminderScheduler) RunOnce(ctx context.Context) {
	tomorrow := s.now().AddDate(0, 0, 1).Format(models.DateLayout)

	due, err := s.repo.ListReminderDue(ctx, tomorrow)
	if err != nil {
		s.logger.Error().Err(err).Msg("reminder query failed")
		return
	}

	for _, booking := range due {
		// Mark first so a crashy notifier can't spam the customer.
		if err := s.repo.MarkReminderSent(ctx, booking.ID); err != nil {
			s.logger.Error().Err(err).Int64("booking_id", booking.ID).Msg("mark reminder failed")
			continue
		}
		s.bus.Publish(events.BookingReminder, booking)
		s.logger.Info().
			Int64("booking_id", booking.ID).
			Str("date", booking.Date).
			Str("time", booking.Time).
			Msg("reminder published")
	}
}
