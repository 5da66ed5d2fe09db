package store

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomboskr/k2barber/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := zerolog.New(io.Discard)
	s, err := New(filepath.Join(t.TempDir(), "bookings.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func testBooking(date, slot string) *models.Booking {
	return &models.Booking{
		Date:         date,
		Time:         slot,
		Service:      "Hajvágás",
		ServiceKind:  "hajvagas",
		CustomerName: "Kiss Béla",
		Phone:        "+36 30 123 4567",
		Email:        "kiss.bela@example.com",
	}
}

func TestInsertAndGetBooking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("2026-03-10", "10:00")
	require.NoError(t, s.InsertBooking(ctx, b))

	assert.NotZero(t, b.ID)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.False(t, b.CreatedAt.IsZero())

	got, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, b.Date, got.Date)
	assert.Equal(t, b.Time, got.Time)
	assert.Equal(t, b.CustomerName, got.CustomerName)
	assert.Equal(t, models.StatusConfirmed, got.Status)
}

func TestGetBookingNotFound(t *testing.T) {
	s := newTestStore(t)

	_, err := s.GetBooking(context.Background(), 999)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInsertConflict(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-10", "10:00")))

	err := s.InsertBooking(ctx, testBooking("2026-03-10", "10:00"))
	assert.ErrorIs(t, err, ErrConflict)

	// Same time on another date is fine.
	assert.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-11", "10:00")))
	// Another slot on the same date is fine.
	assert.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-10", "10:30")))
}

func TestCancelledBookingFreesSlot(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("2026-03-10", "10:00")
	require.NoError(t, s.InsertBooking(ctx, b))

	cancelled := models.StatusCancelled
	_, err := s.UpdateBooking(ctx, b.ID, BookingUpdate{Status: &cancelled})
	require.NoError(t, err)

	times, err := s.BookedTimes(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Empty(t, times)

	assert.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-10", "10:00")))
}

func TestUpdateBooking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("2026-03-10", "10:00")
	require.NoError(t, s.InsertBooking(ctx, b))

	newTime := "11:00"
	newName := "Nagy Anna"
	updated, err := s.UpdateBooking(ctx, b.ID, BookingUpdate{Time: &newTime, CustomerName: &newName})
	require.NoError(t, err)

	assert.Equal(t, "11:00", updated.Time)
	assert.Equal(t, "Nagy Anna", updated.CustomerName)
	assert.Equal(t, "2026-03-10", updated.Date)
	assert.False(t, updated.UpdatedAt.Before(updated.CreatedAt))
}

func TestUpdateBookingCollision(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testBooking("2026-03-10", "10:00")
	b := testBooking("2026-03-10", "10:30")
	require.NoError(t, s.InsertBooking(ctx, a))
	require.NoError(t, s.InsertBooking(ctx, b))

	taken := "10:00"
	_, err := s.UpdateBooking(ctx, b.ID, BookingUpdate{Time: &taken})
	assert.ErrorIs(t, err, ErrConflict)

	// A is unchanged, B kept its slot.
	gotA, err := s.GetBooking(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:00", gotA.Time)

	gotB, err := s.GetBooking(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "10:30", gotB.Time)
}

func TestUpdateBookingNotFound(t *testing.T) {
	s := newTestStore(t)

	slot := "10:00"
	_, err := s.UpdateBooking(context.Background(), 42, BookingUpdate{Time: &slot})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateMoveResetsReminder(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("2026-03-10", "10:00")
	require.NoError(t, s.InsertBooking(ctx, b))
	require.NoError(t, s.MarkReminderSent(ctx, b.ID))

	newDate := "2026-03-12"
	updated, err := s.UpdateBooking(ctx, b.ID, BookingUpdate{Date: &newDate})
	require.NoError(t, err)
	assert.False(t, updated.ReminderSent)
}

func TestDeleteBooking(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("2026-03-10", "10:00")
	require.NoError(t, s.InsertBooking(ctx, b))

	require.NoError(t, s.DeleteBooking(ctx, b.ID))

	_, err := s.GetBooking(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	times, err := s.BookedTimes(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Empty(t, times)

	assert.ErrorIs(t, s.DeleteBooking(ctx, b.ID), ErrNotFound)
}

func TestListByDateRange(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-09", "10:00")))
	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-10", "10:00")))
	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-10", "09:00")))
	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-15", "10:00")))

	got, err := s.ListByDateRange(ctx, "2026-03-10", "2026-03-14")
	require.NoError(t, err)
	require.Len(t, got, 2)
	// Ordered by date then time.
	assert.Equal(t, "09:00", got[0].Time)
	assert.Equal(t, "10:00", got[1].Time)
}

func TestBookedTimesOrdered(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-10", "14:30")))
	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-10", "10:00")))
	require.NoError(t, s.InsertBooking(ctx, testBooking("2026-03-11", "09:00")))

	times, err := s.BookedTimes(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Equal(t, []string{"10:00", "14:30"}, times)
}

func TestSearchBookings(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a := testBooking("2026-03-10", "10:00")
	require.NoError(t, s.InsertBooking(ctx, a))

	b := testBooking("2026-03-10", "11:00")
	b.CustomerName = "Nagy Anna"
	b.Email = "anna@example.hu"
	b.Phone = "+36 20 999 8877"
	require.NoError(t, s.InsertBooking(ctx, b))

	tests := []struct {
		name  string
		query string
		want  int
	}{
		{"by name case-insensitive", "KISS", 1},
		{"by partial name", "nna", 1},
		{"by email", "anna@example.hu", 1},
		{"by phone fragment", "999 88", 1},
		{"by service", "hajvágás", 2},
		{"no match", "zebra", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := s.SearchBookings(ctx, tt.query)
			require.NoError(t, err)
			assert.Len(t, got, tt.want)
		})
	}
}

func TestReminderDueFlow(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	b := testBooking("2026-03-10", "10:00")
	require.NoError(t, s.InsertBooking(ctx, b))

	due, err := s.ListReminderDue(ctx, "2026-03-10")
	require.NoError(t, err)
	require.Len(t, due, 1)
	assert.Equal(t, b.ID, due[0].ID)

	require.NoError(t, s.MarkReminderSent(ctx, b.ID))

	due, err = s.ListReminderDue(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Empty(t, due)

	assert.ErrorIs(t, s.MarkReminderSent(ctx, 999), ErrNotFound)
}
