package store

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"
)

// RecordSamples inserts samples in one statement, skipping any
// (player, slot) pair already stored. It returns the rows inserted.
func (s *Store) RecordSamples(ctx context.Context, samples []activity.Sample) (int64, error) {
	if len(samples) == 0 {
		return 0, nil
	}
	ids := make([]string, 0, len(samples))
	names := make([]string, 0, len(samples))
	slots := make([]time.Time, 0, len(samples))
	dates := make([]time.Time, 0, len(samples))
	hours := make([]int16, 0, len(samples))
	dows := make([]int16, 0, len(samples))
	for _, smp := range samples {
		if !activity.IsValidName(smp.Player) {
			continue
		}
		ids = append(ids, NewID(smp.SlotStart))
		names = append(names, smp.Player)
		slots = append(slots, smp.SlotStart)
		dates = append(dates, smp.Date)
		hours = append(hours, int16(smp.Hour))
		dows = append(dows, int16(smp.Weekday))
	}
	if len(ids) == 0 {
		return 0, nil
	}
	tag, err := s.Pool.Exec(ctx, `
INSERT INTO presence_samples (id, player_name, observed_at, local_date, local_hour, local_dow)
SELECT * FROM unnest($1::text[], $2::text[], $3::timestamptz[], $4::date[], $5::smallint[], $6::smallint[])
ON CONFLICT (player_name, observed_at) DO NOTHING`,
		ids, names, slots, dates, hours, dows)
	if err != nil {
		return 0, fmt.Errorf("insert presence samples: %w", err)
	}
	return tag.RowsAffected(), nil
}

// PurgeOlderThan deletes samples whose slot started before cutoff.
func (s *Store) PurgeOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.Pool.Exec(ctx, `DELETE FROM presence_samples WHERE observed_at < $1`, timestamptzParam(cutoff))
	if err != nil {
		return 0, fmt.Errorf("purge presence samples: %w", err)
	}
	return tag.RowsAffected(), nil
}
