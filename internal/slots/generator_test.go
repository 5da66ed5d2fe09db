package slots

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gomboskr/k2barber/internal/availability"
)

func TestGenerateFullDay(t *testing.T) {
	got := Generate(availability.Hours{Start: 10, End: 19}, nil)

	want := []string{
		"10:00", "10:30", "11:00", "11:30", "12:00", "12:30",
		"13:00", "13:30", "14:00", "14:30", "15:00", "15:30",
		"16:00", "16:30", "17:00", "17:30", "18:00", "18:30",
	}
	assert.Equal(t, want, got)
	assert.Len(t, got, 18)
}

func TestGenerateWithLunchBreak(t *testing.T) {
	lunch := &availability.Hours{Start: 13, End: 14}
	got := Generate(availability.Hours{Start: 10, End: 19}, lunch)

	assert.Len(t, got, 16)
	assert.NotContains(t, got, "13:00")
	assert.NotContains(t, got, "13:30")

	// Slots adjacent to the break's edges stay bookable.
	assert.Contains(t, got, "12:30")
	assert.Contains(t, got, "14:00")
	assert.Contains(t, got, "12:00")
	assert.Contains(t, got, "14:30")
}

func TestGenerateMultiHourLunch(t *testing.T) {
	lunch := &availability.Hours{Start: 12, End: 14}
	got := Generate(availability.Hours{Start: 10, End: 16}, lunch)

	want := []string{"10:00", "10:30", "11:00", "11:30", "14:00", "14:30", "15:00", "15:30"}
	assert.Equal(t, want, got)
}

func TestGenerateEdgeCases(t *testing.T) {
	t.Run("empty window", func(t *testing.T) {
		assert.Empty(t, Generate(availability.Hours{Start: 10, End: 10}, nil))
	})

	t.Run("inverted window", func(t *testing.T) {
		assert.Empty(t, Generate(availability.Hours{Start: 19, End: 10}, nil))
	})

	t.Run("lunch covering whole window", func(t *testing.T) {
		lunch := &availability.Hours{Start: 9, End: 20}
		assert.Empty(t, Generate(availability.Hours{Start: 10, End: 19}, lunch))
	})

	t.Run("sorted ascending", func(t *testing.T) {
		got := Generate(availability.Hours{Start: 9, End: 16}, &availability.Hours{Start: 13, End: 14})
		for i := 1; i < len(got); i++ {
			assert.Less(t, got[i-1], got[i])
		}
	})
}

func TestForPolicy(t *testing.T) {
	p := &availability.Policy{
		ClosedDays:     []string{"2026-12-25"},
		ClosedWeekdays: []int{0},
		DefaultHours:   availability.Hours{Start: 10, End: 19},
		LunchBreak:     &availability.Hours{Start: 13, End: 14},
	}

	day := func(s string) time.Time {
		d, err := time.ParseInLocation("2006-01-02", s, time.Local)
		require.NoError(t, err)
		return d
	}

	t.Run("open day honors lunch", func(t *testing.T) {
		got := ForPolicy(p, day("2026-03-10"))
		assert.Len(t, got, 16)
		assert.NotContains(t, got, "13:00")
	})

	t.Run("closed holiday", func(t *testing.T) {
		assert.Empty(t, ForPolicy(p, day("2026-12-25")))
	})

	t.Run("closed weekday", func(t *testing.T) {
		// 2026-03-08 is a Sunday.
		assert.Empty(t, ForPolicy(p, day("2026-03-08")))
	})
}
