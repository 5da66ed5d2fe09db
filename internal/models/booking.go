package models

import (
	"regexp"
	"strings"
	"time"
)

// Booking statuses. The reference flow only sets confirmed on create;
// the other states stay representable for admin workflows.
const (
	StatusPending   = "pending"
	StatusConfirmed = "confirmed"
	StatusCancelled = "cancelled"
	StatusCompleted = "completed"
)

// DateLayout is the canonical wire format for calendar dates.
const DateLayout = "2006-01-02"

// TimeLayout is the canonical wire format for slot times.
const TimeLayout = "15:04"

// Booking represents a single appointment at the shop.
type Booking struct {
	ID           int64     `json:"id"`
	Date         string    `json:"date"` // YYYY-MM-DD
	Time         string    `json:"time"` // HH:MM
	Service      string    `json:"service"`
	ServiceKind  string    `json:"service_kind"`
	CustomerName string    `json:"customer_name"`
	Phone        string    `json:"phone"`
	Email        string    `json:"email"`
	Notes        string    `json:"notes,omitempty"`
	Status       string    `json:"status"`
	ReminderSent bool      `json:"reminder_sent"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsActive reports whether the booking occupies its (date, time) slot.
// Cancelled bookings free their slot.
func (b *Booking) IsActive() bool {
	return b.Status != StatusCancelled
}

// ParseDate parses a YYYY-MM-DD string as a calendar day in the shop's
// local zone. Parsing in UTC would shift the weekday for zones west of
// Greenwich, which breaks closed-weekday checks.
func ParseDate(s string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, s, time.Local)
}

// ValidSlotTime reports whether s is a zero-padded HH:MM value on the
// half-hour grid.
func ValidSlotTime(s string) bool {
	t, err := time.Parse(TimeLayout, s)
	if err != nil {
		return false
	}
	return t.Minute() == 0 || t.Minute() == 30
}

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool {
	return emailPattern.MatchString(s)
}

var nonDigits = regexp.MustCompile(`\D`)

// NormalizePhone validates a Hungarian phone number and returns it in
// the "+36 XX XXX XXXX" display format. Accepted inputs: international
// 36XXXXXXXXX, domestic 06XXXXXXXXX, or a bare 9-digit subscriber
// number. Returns false when the number does not match any of these.
func NormalizePhone(raw string) (string, bool) {
	digits := nonDigits.ReplaceAllString(raw, "")

	var base string
	switch {
	case len(digits) == 11 && strings.HasPrefix(digits, "36"):
		base = digits[2:]
	case len(digits) == 11 && strings.HasPrefix(digits, "06"):
		base = digits[2:]
	case len(digits) == 9:
		base = digits
	default:
		return "", false
	}

	return "+36 " + base[:2] + " " + base[2:5] + " " + base[5:], true
}
