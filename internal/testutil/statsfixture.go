package testutil

import (
	"context"
	"time"

	"farmwatch/internal/activity"
	apppublic "farmwatch/internal/app/public"
	"farmwatch/internal/stats"
	"farmwatch/internal/store"
)

// StatsFixture serves canned leaderboards and graphs through the public
// service without a database. Err is returned by every source.
type StatsFixture struct {
	Totals     []activity.PlayerHours
	TotalCount int
	Week       stats.WeekTop
	Archive    *store.WeeklyArchive
	Hourly     []stats.HourlyPoint
	DayStart   time.Time
	Days       map[time.Time]int
	Err        error
}

func NewStatsFixture() *StatsFixture {
	weekStart := time.Date(2026, 10, 12, 9, 0, 0, 0, time.UTC)
	hourly := make([]stats.HourlyPoint, 24)
	for h := range hourly {
		hourly[h] = stats.HourlyPoint{Hour: h}
	}
	hourly[20].Count = 3
	dayStart := time.Date(2026, 9, 15, 0, 0, 0, 0, time.UTC)
	return &StatsFixture{
		Totals:     []activity.PlayerHours{{Player: "Alice", Hours: 12}, {Player: "Bob", Hours: 5}},
		TotalCount: 2,
		Week: stats.WeekTop{
			Items: []activity.PlayerHours{{Player: "Alice", Hours: 3}},
			AsOf:  weekStart.Add(26 * time.Hour),
			Start: weekStart,
			End:   weekStart.AddDate(0, 0, 7),
		},
		Hourly:   hourly,
		DayStart: dayStart,
		Days:     map[time.Time]int{dayStart: 2},
	}
}

func (f *StatsFixture) Service() *apppublic.Service {
	return apppublic.NewService(fixtureTotals{f}, fixtureWeek{f}, fixtureArchive{f}, fixtureGraphs{f}, apppublic.DefaultLimits())
}

type fixtureTotals struct{ f *StatsFixture }

func (s fixtureTotals) Top(_ context.Context, limit int) ([]activity.PlayerHours, int, error) {
	return activity.Head(s.f.Totals, limit), s.f.TotalCount, s.f.Err
}

func (s fixtureTotals) For(_ context.Context, player string) (*int, error) {
	if s.f.Err != nil {
		return nil, s.f.Err
	}
	for _, it := range s.f.Totals {
		if it.Player == player {
			hours := it.Hours
			return &hours, nil
		}
	}
	return nil, nil
}

type fixtureWeek struct{ f *StatsFixture }

func (s fixtureWeek) Top(_ context.Context, limit int) (stats.WeekTop, error) {
	top := s.f.Week
	top.Items = activity.Head(top.Items, limit)
	return top, s.f.Err
}

type fixtureArchive struct{ f *StatsFixture }

func (s fixtureArchive) Top(context.Context, int) (*store.WeeklyArchive, error) {
	return s.f.Archive, s.f.Err
}

type fixtureGraphs struct{ f *StatsFixture }

func (s fixtureGraphs) HourlyCounts(context.Context, activity.HourlyMode) ([]stats.HourlyPoint, error) {
	return s.f.Hourly, s.f.Err
}

func (s fixtureGraphs) DailyCounts(_ context.Context, days int) ([]activity.DayCount, error) {
	return activity.DenseDays(s.f.DayStart, days, s.f.Days), s.f.Err
}
