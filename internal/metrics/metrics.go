package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	bookingCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "k2barber",
			Name:      "booking_created_total",
			Help:      "Count of bookings created by service kind.",
		},
		[]string{"service"},
	)

	bookingCancelled = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "k2barber",
			Name:      "booking_cancelled_total",
			Help:      "Count of bookings cancelled.",
		},
	)

	slotConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "k2barber",
			Name:      "slot_conflict_total",
			Help:      "Count of create/update attempts rejected on slot collision.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "k2barber",
			Name:      "http_requests_total",
			Help:      "Count of API requests by handler.",
		},
		[]string{"handler"},
	)
)

// Register registers metrics (idempotent).
func Register() {
	once.Do(func() {
		prometheus.MustRegister(bookingCreated, bookingCancelled, slotConflicts, httpRequests)
	})
}

func IncBookingCreated(service string) {
	bookingCreated.WithLabelValues(service).Inc()
}

func IncBookingCancelled() {
	bookingCancelled.Inc()
}

func IncSlotConflict() {
	slotConflicts.Inc()
}

func IncHTTP(handler string) {
	httpRequests.WithLabelValues(handler).Inc()
}
