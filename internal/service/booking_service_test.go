package service

import (
	"context"
	"io"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomboskr/k2barber/internal/availability"
	"github.com/gomboskr/k2barber/internal/events"
	"github.com/gomboskr/k2barber/internal/store"
)

func testPolicy() *availability.Policy {
	return &availability.Policy{
		ClosedDays:     []string{"2026-12-25"},
		ClosedWeekdays: []int{0},
		SpecialHours: map[string]availability.Hours{
			"2026-12-23": {Start: 10, End: 15},
		},
		WeekendHours: map[int]availability.Hours{
			6: {Start: 9, End: 16},
		},
		DefaultHours: availability.Hours{Start: 10, End: 19},
	}
}

// newTestService builds the service on a real sqlite store with a
// frozen clock, Monday 2026-03-02 at noon.
func newTestService(t *testing.T, policy *availability.Policy) (*BookingService, *events.Bus) {
	t.Helper()
	logger := zerolog.New(io.Discard)

	repo, err := store.New(filepath.Join(t.TempDir(), "bookings.db"), &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	bus := events.NewBus()
	svc := New(repo, availability.NewProvider(policy), bus, Config{MaxAdvanceDays: 90}, &logger)
	svc.now = func() time.Time {
		return time.Date(2026, time.March, 2, 12, 0, 0, 0, time.Local)
	}
	return svc, bus
}

func validInput(date, slot string) CreateBookingInput {
	return CreateBookingInput{
		ServiceKind:  "hajvagas",
		Date:         date,
		Time:         slot,
		CustomerName: "Kiss Béla",
		Phone:        "06301234567",
		Email:        "kiss.bela@example.com",
	}
}

func TestAvailableSlotsFullDay(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())

	// 2026-03-10 is a regular Tuesday.
	got, err := svc.AvailableSlots(context.Background(), "2026-03-10")
	require.NoError(t, err)

	want := []string{
		"10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
		"13:00", "13:30", "14:00", "14:30", "15:00", "15:30",
		"16:00", "16:30", "17:00", "17:30", "18:00", "18:30",
	}
	assert.Equal(t, want, got)
}

func TestAvailableSlotsLunchBreak(t *testing.T) {
	policy := testPolicy()
	policy.LunchBreak = &availability.Hours{Start: 13, End: 14}
	svc, _ := newTestService(t, policy)

	got, err := svc.AvailableSlots(context.Background(), "2026-03-10")
	require.NoError(t, err)

	assert.Len(t, got, 16)
	assert.NotContains(t, got, "13:00")
	assert.NotContains(t, got, "13:30")
	assert.Contains(t, got, "12:30")
	assert.Contains(t, got, "14:00")
}

func TestAvailableSlotsClosedDays(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	for _, date := range []string{"2026-12-25", "2026-03-08"} { // holiday, Sunday
		got, err := svc.AvailableSlots(ctx, date)
		require.NoError(t, err)
		assert.Empty(t, got, date)
	}
}

func TestAvailableSlotsSpecialAndWeekendHours(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	special, err := svc.AvailableSlots(ctx, "2026-12-23")
	require.NoError(t, err)
	assert.Len(t, special, 10)
	assert.Equal(t, "10:00", special[0])
	assert.Equal(t, "14:30", special[len(special)-1])

	// 2026-03-07 is a Saturday.
	weekend, err := svc.AvailableSlots(ctx, "2026-03-07")
	require.NoError(t, err)
	assert.Equal(t, "09:00", weekend[0])
	assert.Equal(t, "15:30", weekend[len(weekend)-1])
}

func TestAvailableSlotsTodayCutoff(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())

	// The clock is frozen at 12:00; 12:00 itself is already gone.
	got, err := svc.AvailableSlots(context.Background(), "2026-03-02")
	require.NoError(t, err)

	require.NotEmpty(t, got)
	assert.Equal(t, "12:30", got[0])
	assert.Len(t, got, 13)
}

func TestAvailableSlotsBadDate(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())

	_, err := svc.AvailableSlots(context.Background(), "10-03-2026")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "date", verr.Fields[0].Field)
}

func TestCreateBooking(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("2026-03-10", "10:00"))
	require.NoError(t, err)

	assert.NotZero(t, b.ID)
	assert.Equal(t, "Hajvágás", b.Service)
	assert.Equal(t, "+36 30 123 4567", b.Phone)

	free, err := svc.AvailableSlots(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.NotContains(t, free, "10:00")
	assert.Len(t, free, 17)
}

func TestCreateBookingSlotTaken(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, validInput("2026-03-10", "10:00"))
	require.NoError(t, err)

	in := validInput("2026-03-10", "10:00")
	in.CustomerName = "Nagy Anna"
	_, err = svc.CreateBooking(ctx, in)
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateBookingClosedDayRejected(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())

	_, err := svc.CreateBooking(context.Background(), validInput("2026-12-25", "10:00"))
	assert.ErrorIs(t, err, ErrSlotUnavailable)
}

func TestCreateBookingOffGridSlotRejected(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())

	in := validInput("2026-03-10", "10:15")
	_, err := svc.CreateBooking(context.Background(), in)

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "time", verr.Fields[0].Field)
}

func TestCreateBookingValidation(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())

	_, err := svc.CreateBooking(context.Background(), CreateBookingInput{
		ServiceKind: "manikur",
		Date:        "2026-03-10",
		Time:        "10:00",
		Phone:       "12345",
		Email:       "not-an-email",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	fields := make(map[string]string, len(verr.Fields))
	for _, f := range verr.Fields {
		fields[f.Field] = f.Message
	}
	assert.Contains(t, fields, "service_kind")
	assert.Contains(t, fields, "customer_name")
	assert.Contains(t, fields, "phone")
	assert.Contains(t, fields, "email")
}

func TestCreateBookingWindow(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, validInput("2026-02-27", "10:00"))
	assert.ErrorIs(t, err, ErrPastDate)

	_, err = svc.CreateBooking(ctx, validInput("2026-06-15", "10:00"))
	assert.ErrorIs(t, err, ErrDateTooFar)

	// Today itself is allowed.
	_, err = svc.CreateBooking(ctx, validInput("2026-03-02", "15:00"))
	assert.NoError(t, err)
}

func TestUpdateBookingMoveSlot(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("2026-03-10", "10:00"))
	require.NoError(t, err)

	newTime := "11:00"
	updated, err := svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Time: &newTime})
	require.NoError(t, err)
	assert.Equal(t, "11:00", updated.Time)

	free, err := svc.AvailableSlots(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, free, "10:00")
	assert.NotContains(t, free, "11:00")
}

func TestUpdateBookingCollision(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	_, err := svc.CreateBooking(ctx, validInput("2026-03-10", "10:00"))
	require.NoError(t, err)

	in := validInput("2026-03-10", "10:30")
	in.CustomerName = "Nagy Anna"
	b, err := svc.CreateBooking(ctx, in)
	require.NoError(t, err)

	taken := "10:00"
	_, err = svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Time: &taken})
	assert.ErrorIs(t, err, store.ErrConflict)
}

func TestUpdateBookingValidation(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("2026-03-10", "10:00"))
	require.NoError(t, err)

	badStatus := "vanished"
	_, err = svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{Status: &badStatus})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, "status", verr.Fields[0].Field)
}

func TestDeleteBookingFreesSlot(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	b, err := svc.CreateBooking(ctx, validInput("2026-03-10", "10:00"))
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBooking(ctx, b.ID))

	free, err := svc.AvailableSlots(ctx, "2026-03-10")
	require.NoError(t, err)
	assert.Contains(t, free, "10:00")

	assert.ErrorIs(t, svc.DeleteBooking(ctx, b.ID), store.ErrNotFound)
}

func TestEventsPublished(t *testing.T) {
	svc, bus := newTestService(t, testPolicy())
	ctx := context.Background()

	var seen []string
	handler := func(ev events.Event) error {
		seen = append(seen, ev.Type)
		return nil
	}
	bus.Subscribe(events.BookingCreated, handler)
	bus.Subscribe(events.BookingUpdated, handler)
	bus.Subscribe(events.BookingCancelled, handler)

	b, err := svc.CreateBooking(ctx, validInput("2026-03-10", "10:00"))
	require.NoError(t, err)

	name := "Nagy Anna"
	_, err = svc.UpdateBooking(ctx, b.ID, UpdateBookingInput{CustomerName: &name})
	require.NoError(t, err)

	require.NoError(t, svc.DeleteBooking(ctx, b.ID))

	assert.Equal(t, []string{events.BookingCreated, events.BookingUpdated, events.BookingCancelled}, seen)
}

func TestListByDateRangeValidation(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	_, err := svc.ListByDateRange(ctx, "2026-03-20", "2026-03-10")
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)

	_, err = svc.ListByDateRange(ctx, "bad", "2026-03-10")
	require.ErrorAs(t, err, &verr)
}

func TestAdminStats(t *testing.T) {
	svc, _ := newTestService(t, testPolicy())
	ctx := context.Background()

	// One booking today, one upcoming. Hajvágás 5500 + Kombinált 8000.
	_, err := svc.CreateBooking(ctx, validInput("2026-03-02", "15:00"))
	require.NoError(t, err)

	in := validInput("2026-03-10", "10:00")
	in.ServiceKind = "kombinalt"
	_, err = svc.CreateBooking(ctx, in)
	require.NoError(t, err)

	stats, err := svc.AdminStats(ctx)
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 2, Today: 1, Upcoming: 2, RevenueFt: 13500}, stats)
}
