package activity

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseHourlyMode(t *testing.T) {
	m, err := ParseHourlyMode("")
	require.NoError(t, err)
	require.Equal(t, Last24Hours, m)
	m, err = ParseHourlyMode("today")
	require.NoError(t, err)
	require.Equal(t, Today, m)
	_, err = ParseHourlyMode("week")
	require.Error(t, err)
}

func TestHourlyModeRange(t *testing.T) {
	c := quarterClock(t)
	now := at(c, 2024, 1, 2, 15, 40)

	last := Last24Hours.Range(now, c.Location)
	require.True(t, last.From.Equal(at(c, 2024, 1, 1, 16, 0)))
	require.True(t, last.To.Equal(at(c, 2024, 1, 2, 16, 0)))

	today := Today.Range(now, c.Location)
	require.True(t, today.From.Equal(at(c, 2024, 1, 2, 0, 0)))
	require.True(t, today.To.Equal(at(c, 2024, 1, 3, 0, 0)))
}

func TestHourlyFoldCountsDistinctWithoutThreshold(t *testing.T) {
	c := quarterClock(t)
	samples := []Sample{
		NewSample("Alice", at(c, 2024, 1, 1, 10, 0), c),
		NewSample("Alice", at(c, 2024, 1, 1, 10, 15), c),
		NewSample("Bob", at(c, 2024, 1, 1, 10, 45), c),
		NewSample("Bob", at(c, 2024, 1, 1, 23, 0), c),
	}
	got := HourlyFold(samples, AllTime())
	require.Equal(t, 2, got[10])
	require.Equal(t, 1, got[23])
	require.Equal(t, 0, got[11])
}

func TestDenseDaysAlwaysFull(t *testing.T) {
	c := quarterClock(t)
	now := at(c, 2024, 1, 31, 9, 0)
	first, scope := DayRange(now, c.Location, 30)
	require.Equal(t, time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), first)
	require.True(t, scope.To.Equal(at(c, 2024, 2, 1, 0, 0)))

	samples := []Sample{
		NewSample("Alice", at(c, 2024, 1, 5, 10, 0), c),
		NewSample("Alice", at(c, 2024, 1, 5, 11, 0), c),
		NewSample("Bob", at(c, 2024, 1, 5, 12, 0), c),
		NewSample("Bob", at(c, 2024, 1, 1, 12, 0), c),
	}
	days := DenseDays(first, 30, DailyFold(samples, scope))
	require.Len(t, days, 30)
	require.Equal(t, 2, days[3].Count)
	require.Equal(t, time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC), days[29].Date)
	total := 0
	for _, d := range days {
		total += d.Count
	}
	require.Equal(t, 2, total)

	require.Len(t, DenseDays(first, 30, nil), 30)
}

func TestHourOrderEndsAtCurrentHour(t *testing.T) {
	c := quarterClock(t)
	order := HourOrder(at(c, 2024, 1, 1, 5, 30), c.Location)
	require.Equal(t, 6, order[0])
	require.Equal(t, 5, order[23])
}
