package store

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"
)

// Readers used by tests to look at raw rows.

func (s *Store) listSamples(ctx context.Context, scope activity.Scope) ([]activity.Sample, error) {
	from, to := scopeParams(scope)
	rows, err := s.Pool.Query(ctx, `
SELECT player_name, observed_at, local_date, local_hour, local_dow
FROM presence_samples
WHERE ($1::timestamptz IS NULL OR observed_at >= $1)
  AND ($2::timestamptz IS NULL OR observed_at < $2)
ORDER BY observed_at, player_name`, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]activity.Sample, 0)
	for rows.Next() {
		var (
			smp       activity.Sample
			hour, dow int16
		)
		if err := rows.Scan(&smp.Player, &smp.SlotStart, &smp.Date, &hour, &dow); err != nil {
			return nil, err
		}
		smp.Hour = int(hour)
		smp.Weekday = time.Weekday(dow)
		out = append(out, smp)
	}
	return out, rows.Err()
}

func (s *Store) countRows(ctx context.Context, table string) (int64, error) {
	var n int64
	err := s.Pool.QueryRow(ctx, fmt.Sprintf(`SELECT COUNT(*) FROM %s`, table)).Scan(&n)
	return n, err
}

func (s *Store) creditedHourKeys(ctx context.Context, scope activity.Scope, threshold int) ([]activity.HourKey, error) {
	from, to := scopeParams(scope)
	rows, err := s.Pool.Query(ctx, creditedBucketsSQL, from, to, threshold)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]activity.HourKey, 0)
	for rows.Next() {
		var (
			k    activity.HourKey
			hour int16
		)
		if err := rows.Scan(&k.Player, &k.Date, &hour); err != nil {
			return nil, err
		}
		k.Hour = int(hour)
		out = append(out, k)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	activity.SortHourKeys(out)
	return out, nil
}
