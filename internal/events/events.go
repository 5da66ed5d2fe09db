// Package events provides in-process pub/sub for booking lifecycle
// events. Notification delivery hangs off this bus; handler failures
// never propagate back into booking operations.
package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gomboskr/k2barber/internal/models"
)

// Booking lifecycle event kinds.
const (
	BookingCreated   = "booking.created"
	BookingUpdated   = "booking.updated"
	BookingCancelled = "booking.cancelled"
	BookingReminder  = "booking.reminder"
)

// Event is a booking lifecycle notification.
type Event struct {
	ID        string         `json:"id"`
	Type      string         `json:"type"`
	Booking   models.Booking `json:"booking"`
	CreatedAt time.Time      `json:"created_at"`
}

// MarshalPayload renders the event as JSON for external sinks.
func (e Event) MarshalPayload() ([]byte, error) {
	return json.Marshal(e)
}

// Handler reacts to an event.
type Handler func(event Event) error

// Bus is an in-process pub/sub bus keyed by event type.
type Bus struct {
	subscribers map[string][]Handler
	mu          sync.RWMutex
}

// NewBus constructs an empty bus.
func NewBus() *Bus {
	return &Bus{subscribers: make(map[string][]Handler)}
}

// Subscribe registers a handler for a given event type.
func (b *Bus) Subscribe(eventType string, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subscribers[eventType] = append(b.subscribers[eventType], handler)
}

// Publish builds an event for the booking and notifies subscribers.
// Handlers run synchronously; the caller decides the concurrency model.
// Handler errors are swallowed here by contract.
func (b *Bus) Publish(eventType string, booking models.Booking) {
	event := Event{
		ID:        uuid.New().String(),
		Type:      eventType,
		Booking:   booking,
		CreatedAt: time.Now(),
	}

	b.mu.RLock()
	handlers := append([]Handler(nil), b.subscribers[eventType]...)
	b.mu.RUnlock()

	for _, handler := range handlers {
		_ = handler(event)
	}
}
