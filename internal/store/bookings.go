package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gomboskr/k2barber/internal/models"
)

const bookingColumns = `id, date, time, service, service_kind, customer_name,
	phone, email, notes, status, reminder_sent, created_at, updated_at`

func scanBooking(row interface{ Scan(...any) error }) (*models.Booking, error) {
	var b models.Booking
	err := row.Scan(
		&b.ID, &b.Date, &b.Time, &b.Service, &b.ServiceKind, &b.CustomerName,
		&b.Phone, &b.Email, &b.Notes, &b.Status, &b.ReminderSent, &b.CreatedAt, &b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func (s *Store) queryBookings(ctx context.Context, query string, args ...any) ([]models.Booking, error) {
	rows, err := s.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bookings []models.Booking
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, err
		}
		bookings = append(bookings, *b)
	}
	return bookings, rows.Err()
}

// ListBookings returns every booking ordered by date and time.
func (s *Store) ListBookings(ctx context.Context) ([]models.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings ORDER BY date, time`)
}

// GetBooking returns the booking with the given id.
func (s *Store) GetBooking(ctx context.Context, id int64) (*models.Booking, error) {
	b, err := scanBooking(s.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

// ListByDateRange returns bookings with start <= date <= end, ordered
// by date and time. Dates are YYYY-MM-DD strings, which sort
// chronologically.
func (s *Store) ListByDateRange(ctx context.Context, start, end string) ([]models.Booking, error) {
	return s.queryBookings(ctx,
		`SELECT `+bookingColumns+` FROM bookings
		 WHERE date >= ? AND date <= ?
		 ORDER BY date, time`,
		start, end)
}

// BookedTimes returns the slot times occupied by active bookings on a
// date, ascending.
func (s *Store) BookedTimes(ctx context.Context, date string) ([]string, error) {
	rows, err := s.QueryContext(ctx, `
		SELECT time FROM bookings
		WHERE date = ? AND status != ?
		ORDER BY time`,
		date, models.StatusCancelled)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var times []string
	for rows.Next() {
		var t string
		if err := rows.Scan(&t); err != nil {
			return nil, err
		}
		times = append(times, t)
	}
	return times, rows.Err()
}

func slotTaken(ctx context.Context, tx *sql.Tx, date, slot string, excludeID int64) (bool, error) {
	var count int
	err := tx.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM bookings
		WHERE date = ? AND time = ? AND status != ? AND id != ?`,
		date, slot, models.StatusCancelled, excludeID,
	).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// InsertBooking stores a new booking, assigning id and timestamps on
// the passed record. Fails with ErrConflict when another active booking
// already occupies the slot.
func (s *Store) InsertBooking(ctx context.Context, b *models.Booking) error {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	taken, err := slotTaken(ctx, tx, b.Date, b.Time, 0)
	if err != nil {
		return fmt.Errorf("check slot: %w", err)
	}
	if taken {
		return ErrConflict
	}

	if b.Status == "" {
		b.Status = models.StatusConfirmed
	}
	now := time.Now()
	b.CreatedAt = now
	b.UpdatedAt = now

	result, err := tx.ExecContext(ctx, `
		INSERT INTO bookings (
			date, time, service, service_kind, customer_name,
			phone, email, notes, status, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		b.Date, b.Time, b.Service, b.ServiceKind, b.CustomerName,
		b.Phone, b.Email, b.Notes, b.Status, b.CreatedAt, b.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrConflict
		}
		return fmt.Errorf("insert booking: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("get last id: %w", err)
	}
	b.ID = id

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// BookingUpdate carries the fields of a partial update. Nil fields are
// left unchanged.
type BookingUpdate struct {
	Date         *string
	Time         *string
	Service      *string
	ServiceKind  *string
	CustomerName *string
	Phone        *string
	Email        *string
	Notes        *string
	Status       *string
}

// UpdateBooking applies a partial update. When date or time change, the
// new slot is re-validated against all other active bookings inside the
// same transaction. Returns the updated record.
func (s *Store) UpdateBooking(ctx context.Context, id int64, upd BookingUpdate) (*models.Booking, error) {
	tx, err := s.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	b, err := scanBooking(tx.QueryRowContext(ctx,
		`SELECT `+bookingColumns+` FROM bookings WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load booking: %w", err)
	}

	slotChanged := false
	if upd.Date != nil && *upd.Date != b.Date {
		b.Date = *upd.Date
		slotChanged = true
	}
	if upd.Time != nil && *upd.Time != b.Time {
		b.Time = *upd.Time
		slotChanged = true
	}
	if upd.Service != nil {
		b.Service = *upd.Service
	}
	if upd.ServiceKind != nil {
		b.ServiceKind = *upd.ServiceKind
	}
	if upd.CustomerName != nil {
		b.CustomerName = *upd.CustomerName
	}
	if upd.Phone != nil {
		b.Phone = *upd.Phone
	}
	if upd.Email != nil {
		b.Email = *upd.Email
	}
	if upd.Notes != nil {
		b.Notes = *upd.Notes
	}
	if upd.Status != nil {
		b.Status = *upd.Status
	}

	if slotChanged && b.IsActive() {
		taken, err := slotTaken(ctx, tx, b.Date, b.Time, id)
		if err != nil {
			return nil, fmt.Errorf("check slot: %w", err)
		}
		if taken {
			return nil, ErrConflict
		}
		// Moved bookings get a fresh reminder.
		b.ReminderSent = false
	}

	b.UpdatedAt = time.Now()
	_, err = tx.ExecContext(ctx, `
		UPDATE bookings SET
			date = ?, time = ?, service = ?, service_kind = ?,
			customer_name = ?, phone = ?, email = ?, notes = ?,
			status = ?, reminder_sent = ?, updated_at = ?
		WHERE id = ?`,
		b.Date, b.Time, b.Service, b.ServiceKind,
		b.CustomerName, b.Phone, b.Email, b.Notes,
		b.Status, b.ReminderSent, b.UpdatedAt, id,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrConflict
		}
		return nil, fmt.Errorf("update booking: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return b, nil
}

// DeleteBooking removes a booking. Fails with ErrNotFound for unknown
// ids.
func (s *Store) DeleteBooking(ctx context.Context, id int64) error {
	result, err := s.ExecContext(ctx, `DELETE FROM bookings WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SearchBookings returns bookings whose name, email, phone or service
// contains the query, case-insensitively.
func (s *Store) SearchBookings(ctx context.Context, query string) ([]models.Booking, error) {
	pattern := "%" + strings.ToLower(query) + "%"
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE lower(customer_name) LIKE ?
		   OR lower(email) LIKE ?
		   OR lower(phone) LIKE ?
		   OR lower(service) LIKE ?
		ORDER BY date, time`,
		pattern, pattern, pattern, pattern)
}

// ListReminderDue returns confirmed bookings on a date that have not
// been reminded yet.
func (s *Store) ListReminderDue(ctx context.Context, date string) ([]models.Booking, error) {
	return s.queryBookings(ctx, `
		SELECT `+bookingColumns+` FROM bookings
		WHERE date = ? AND status = ? AND reminder_sent = 0
		ORDER BY time`,
		date, models.StatusConfirmed)
}

// MarkReminderSent flags a booking so its reminder is only sent once.
func (s *Store) MarkReminderSent(ctx context.Context, id int64) error {
	result, err := s.ExecContext(ctx,
		`UPDATE bookings SET reminder_sent = 1, updated_at = ? WHERE id = ?`,
		time.Now(), id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	return err != nil && strings.Contains(strings.ToLower(err.Error()), "unique constraint failed")
}
