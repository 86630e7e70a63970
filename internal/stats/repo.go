// Package stats runs the presence pipeline: recording samples, sweeping
// old ones, and maintaining the all-time, current-week, archived-week and
// graph read models on top of the store.
package stats

import (
	"context"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/store"
)

type PresenceWriter interface {
	RecordSamples(ctx context.Context, samples []activity.Sample) (int64, error)
}

type PresencePurger interface {
	PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}

type CreditReader interface {
	CreditedHours(ctx context.Context, scope activity.Scope, threshold int) (map[string]int, error)
}

type TotalsRepo interface {
	RefreshTotals(ctx context.Context, threshold int, now time.Time) (store.TotalsRefresh, error)
	TopTotals(ctx context.Context, limit int) ([]activity.PlayerHours, int, error)
	TotalFor(ctx context.Context, player string) (*int, error)
}

type WeekRepo interface {
	RefreshCurrentWeek(ctx context.Context, start, end time.Time, threshold int, now time.Time) (store.WeekRefresh, error)
	TopCurrentWeek(ctx context.Context, limit int) ([]activity.PlayerHours, *time.Time, error)
}

type ArchiveRepo interface {
	CreditReader
	ReplaceWeeklyArchive(ctx context.Context, weekStart, weekEnd time.Time, rows []activity.PlayerHours, now time.Time) (string, error)
	TopLastWeek(ctx context.Context, limit int) (*store.WeeklyArchive, error)
}

type GraphRepo interface {
	HourlyOnline(ctx context.Context, scope activity.Scope) ([24]int, error)
	DailyOnline(ctx context.Context, scope activity.Scope) (map[time.Time]int, error)
}

// Repo is everything the pipeline needs; *store.Store implements it.
type Repo interface {
	PresenceWriter
	PresencePurger
	TotalsRepo
	WeekRepo
	ArchiveRepo
	GraphRepo
}

var _ Repo = (*store.Store)(nil)
