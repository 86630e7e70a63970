package store

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"
)

// HourlyOnline counts distinct players per local hour of day in scope.
// No credit threshold applies.
func (s *Store) HourlyOnline(ctx context.Context, scope activity.Scope) ([24]int, error) {
	var out [24]int
	from, to := scopeParams(scope)
	rows, err := s.Pool.Query(ctx, `
SELECT local_hour, COUNT(DISTINCT player_name)::int
FROM presence_samples
WHERE btrim(player_name) <> '' AND player_name <> '-'
  AND ($1::timestamptz IS NULL OR observed_at >= $1)
  AND ($2::timestamptz IS NULL OR observed_at < $2)
GROUP BY local_hour`, from, to)
	if err != nil {
		return out, fmt.Errorf("hourly online: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			hour  int16
			count int
		)
		if err := rows.Scan(&hour, &count); err != nil {
			return out, err
		}
		if hour >= 0 && hour < 24 {
			out[hour] = count
		}
	}
	return out, rows.Err()
}

// DailyOnline counts distinct players per local date in scope. Dates
// without samples are absent.
func (s *Store) DailyOnline(ctx context.Context, scope activity.Scope) (map[time.Time]int, error) {
	from, to := scopeParams(scope)
	rows, err := s.Pool.Query(ctx, `
SELECT local_date, COUNT(DISTINCT player_name)::int
FROM presence_samples
WHERE btrim(player_name) <> '' AND player_name <> '-'
  AND ($1::timestamptz IS NULL OR observed_at >= $1)
  AND ($2::timestamptz IS NULL OR observed_at < $2)
GROUP BY local_date`, from, to)
	if err != nil {
		return nil, fmt.Errorf("daily online: %w", err)
	}
	defer rows.Close()
	out := make(map[time.Time]int)
	for rows.Next() {
		var (
			date  time.Time
			count int
		)
		if err := rows.Scan(&date, &count); err != nil {
			return nil, err
		}
		out[date] = count
	}
	return out, rows.Err()
}
