// Package slots expands an operating-hours window into the discrete
// bookable half-hour grid. It is the single source of slot computation:
// the booking form, the calendar and the admin views all consume it
// through the booking service.
package slots

import (
	"fmt"
	"time"

	"github.com/gomboskr/k2barber/internal/availability"
)

// Granularity of the booking grid in minutes.
const SlotMinutes = 30

// Generate expands hours into an ascending sequence of "HH:MM" slots.
// For every whole hour h in [hours.Start, hours.End) it emits h:00 and
// h:30, skipping hours that fall inside the lunch break. A half-hour
// slot is excluded only when its hour is strictly inside the lunch
// interval; slots adjacent to the break's edges stay bookable.
func Generate(hours availability.Hours, lunch *availability.Hours) []string {
	if hours.Start >= hours.End {
		return nil
	}

	slots := make([]string, 0, (hours.End-hours.Start)*2)
	for h := hours.Start; h < hours.End; h++ {
		if lunch != nil && h >= lunch.Start && h < lunch.End {
			continue
		}
		slots = append(slots, fmt.Sprintf("%02d:00", h))
		slots = append(slots, fmt.Sprintf("%02d:30", h))
	}
	return slots
}

// ForPolicy resolves a date against the policy and generates its slots.
// Returns an empty sequence on closed days.
func ForPolicy(p *availability.Policy, date time.Time) []string {
	hours, open := p.ResolveHours(date)
	if !open {
		return nil
	}
	return Generate(hours, p.LunchBreak)
}
