package service

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrSlotUnavailable is returned when the requested slot is not in
	// the current availability for the date (closed day, lunch break,
	// off-grid time, or already booked).
	ErrSlotUnavailable = errors.New("slot not available")
	// ErrPastDate is returned for booking dates before today.
	ErrPastDate = errors.New("cannot book in the past")
	// ErrDateTooFar is returned for dates beyond the booking window.
	ErrDateTooFar = errors.New("date is too far in the future")
)

// FieldError describes one invalid or missing input field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every invalid field of a booking request.
type ValidationError struct {
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		names[i] = f.Field
	}
	return fmt.Sprintf("invalid booking input: %s", strings.Join(names, ", "))
}

func (e *ValidationError) add(field, message string) {
	e.Fields = append(e.Fields, FieldError{Field: field, Message: message})
}

func (e *ValidationError) orNil() error {
	if len(e.Fields) == 0 {
		return nil
	}
	return e
}
