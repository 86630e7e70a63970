package stats

import (
	"context"
	"testing"

	"farmwatch/internal/activity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDailyCountsDense(t *testing.T) {
	repo := newMemRepo()
	rec := NewRecorder(repo, testClock())
	playHour(t, rec, at(2026, 10, 14, 9, 0), 1, "Alice", "Bob")
	playHour(t, rec, at(2026, 10, 14, 21, 0), 1, "Alice")
	playHour(t, rec, at(2026, 10, 1, 9, 0), 1, "Carol")
	playHour(t, rec, at(2026, 9, 1, 9, 0), 1, "TooOld")

	g := NewGraphs(repo, msk)
	g.now = fixed(at(2026, 10, 14, 23, 0))
	days, err := g.DailyCounts(context.Background(), 30)
	require.NoError(t, err)
	require.Len(t, days, 30)

	assert.Equal(t, activity.DateOf(at(2026, 9, 15, 0, 0), msk), days[0].Date)
	assert.Equal(t, activity.DateOf(at(2026, 10, 14, 0, 0), msk), days[29].Date)
	assert.Equal(t, 2, days[29].Count)
	assert.Equal(t, 1, days[16].Count)
	total := 0
	for _, d := range days {
		total += d.Count
	}
	assert.Equal(t, 3, total)
}

func TestHourlyCountsLast24h(t *testing.T) {
	repo := newMemRepo()
	rec := NewRecorder(repo, testClock())
	playHour(t, rec, at(2026, 10, 13, 15, 0), 2, "Yesterday")
	playHour(t, rec, at(2026, 10, 13, 14, 0), 1, "OutOfRange")
	playHour(t, rec, at(2026, 10, 14, 14, 0), 4, "Alice", "Bob")

	g := NewGraphs(repo, msk)
	g.now = fixed(at(2026, 10, 14, 14, 30))
	points, err := g.HourlyCounts(context.Background(), activity.Last24Hours)
	require.NoError(t, err)
	require.Len(t, points, 24)

	assert.Equal(t, HourlyPoint{Hour: 14, Count: 2}, points[23])
	assert.Equal(t, HourlyPoint{Hour: 15, Count: 1}, points[0])
}

func TestHourlyCountsToday(t *testing.T) {
	repo := newMemRepo()
	rec := NewRecorder(repo, testClock())
	playHour(t, rec, at(2026, 10, 13, 23, 0), 1, "Yesterday")
	playHour(t, rec, at(2026, 10, 14, 0, 15), 1, "Alice")

	g := NewGraphs(repo, msk)
	g.now = fixed(at(2026, 10, 14, 8, 0))
	points, err := g.HourlyCounts(context.Background(), activity.Today)
	require.NoError(t, err)
	assert.Equal(t, HourlyPoint{Hour: 0, Count: 1}, points[0])
	assert.Equal(t, HourlyPoint{Hour: 23, Count: 0}, points[23])
}
