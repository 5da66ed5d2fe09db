// Package notify delivers booking notifications out of band. Delivery
// failures are logged and retried, never surfaced to the booking
// operation that triggered them.
package notify

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gomboskr/k2barber/internal/events"
)

// Notifier delivers one event to one channel.
type Notifier interface {
	Notify(ctx context.Context, event events.Event) error
}

// RetryConfig holds the retry schedule for failed deliveries.
type RetryConfig struct {
	MaxRetries  int
	RetryDelays []time.Duration
}

// DefaultRetryConfig returns the default retry configuration.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxRetries: 3,
		RetryDelays: []time.Duration{
			1 * time.Second,
			5 * time.Second,
			30 * time.Second,
		},
	}
}

// Dispatcher fans booking events out to the configured notifiers with
// rate limiting and retries.
type Dispatcher struct {
	notifiers []Notifier
	limiter   *RateLimiter
	retry     RetryConfig
	timeout   time.Duration
	logger    *zerolog.Logger
}

// NewDispatcher creates a dispatcher over the given notifiers.
func NewDispatcher(notifiers []Notifier, limiter *RateLimiter, retry RetryConfig, logger *zerolog.Logger) *Dispatcher {
	if limiter == nil {
		limiter = NewRateLimiter(DefaultRateLimiterConfig())
	}
	return &Dispatcher{
		notifiers: notifiers,
		limiter:   limiter,
		retry:     retry,
		timeout:   2 * time.Minute,
		logger:    logger,
	}
}

// Attach subscribes the dispatcher to the booking lifecycle events.
func (d *Dispatcher) Attach(bus *events.Bus) {
	for _, eventType := range []string{
		events.BookingCreated,
		events.BookingUpdated,
		events.BookingCancelled,
		events.BookingReminder,
	} {
		bus.Subscribe(eventType, d.handle)
	}
}

// handle hands the event to a background goroutine so bus publishing
// stays non-blocking for the booking operation.
func (d *Dispatcher) handle(event events.Event) error {
	go d.dispatch(event)
	return nil
}

func (d *Dispatcher) dispatch(event events.Event) {
	ctx, cancel := context.WithTimeout(context.Background(), d.timeout)
	defer cancel()

	for _, n := range d.notifiers {
		if err := d.sendWithRetry(ctx, n, event); err != nil {
			d.logger.Error().Err(err).
				Str("event_id", event.ID).
				Str("event_type", event.Type).
				Int64("booking_id", event.Booking.ID).
				Msg("notification delivery failed")
		}
	}
}

func (d *Dispatcher) sendWithRetry(ctx context.Context, n Notifier, event events.Event) error {
	if err := d.limiter.Wait(ctx); err != nil {
		return err
	}

	var lastErr error
	for attempt := 0; attempt <= d.retry.MaxRetries; attempt++ {
		if err := n.Notify(ctx, event); err == nil {
			return nil
		} else {
			lastErr = err
		}

		if attempt >= d.retry.MaxRetries {
			break
		}
		delay := 5 * time.Second
		if attempt < len(d.retry.RetryDelays) {
			delay = d.retry.RetryDelays[attempt]
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return lastErr
}

// LogNotifier writes notifications to the log. It stands in for real
// delivery channels in development and keeps a trace alongside them in
// production.
type LogNotifier struct {
	logger *zerolog.Logger
}

// NewLogNotifier constructs a log-backed notifier.
func NewLogNotifier(logger *zerolog.Logger) *LogNotifier {
	return &LogNotifier{logger: logger}
}

func (n *LogNotifier) Notify(_ context.Context, event events.Event) error {
	n.logger.Info().
		Str("event_type", event.Type).
		Int64("booking_id", event.Booking.ID).
		Str("date", event.Booking.Date).
		Str("time", event.Booking.Time).
		Str("customer", event.Booking.CustomerName).
		Msg("booking notification")
	return nil
}
