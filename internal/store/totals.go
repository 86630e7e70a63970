package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmwatch/internal/activity"

	"github.com/jackc/pgx/v5"
)

type TotalsRefresh struct {
	NewHours int64
	Players  int64
	Removed  int64
}

// RefreshTotals records newly credited buckets in credited_hours and
// rewrites player_total_time from that ledger, all in one transaction.
// A bucket is counted once no matter how often it is seen, and buckets
// survive retention of the underlying samples.
func (s *Store) RefreshTotals(ctx context.Context, threshold int, now time.Time) (TotalsRefresh, error) {
	var out TotalsRefresh
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, `
INSERT INTO credited_hours (player_name, local_date, local_hour, credited_at)
SELECT player_name, local_date, local_hour, $4
FROM (`+creditedBucketsSQL+`) credited
ON CONFLICT (player_name, local_date, local_hour) DO NOTHING`,
			nil, nil, threshold, timestamptzParam(now))
		if err != nil {
			return fmt.Errorf("ledger credited hours: %w", err)
		}
		out.NewHours = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `
INSERT INTO player_total_time (player_name, total_hours, updated_at)
SELECT player_name, COUNT(*)::int, $1
FROM credited_hours
GROUP BY player_name
ON CONFLICT (player_name) DO UPDATE
SET total_hours = EXCLUDED.total_hours, updated_at = EXCLUDED.updated_at
WHERE player_total_time.total_hours IS DISTINCT FROM EXCLUDED.total_hours`,
			timestamptzParam(now))
		if err != nil {
			return fmt.Errorf("upsert total time: %w", err)
		}
		out.Players = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `
DELETE FROM player_total_time
WHERE btrim(player_name) = '' OR player_name = '-' OR total_hours <= 0`)
		if err != nil {
			return fmt.Errorf("clean total time: %w", err)
		}
		out.Removed = tag.RowsAffected()
		return nil
	})
	return out, err
}

// TopTotals lists all-time totals and the number of tracked players.
// Both come from the same statement.
func (s *Store) TopTotals(ctx context.Context, limit int) ([]activity.PlayerHours, int, error) {
	rows, err := s.Pool.Query(ctx, `
SELECT player_name, total_hours, COUNT(*) OVER ()::int
FROM player_total_time
ORDER BY total_hours DESC, player_name ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("top total time: %w", err)
	}
	defer rows.Close()
	items := make([]activity.PlayerHours, 0)
	total := 0
	for rows.Next() {
		var it activity.PlayerHours
		if err := rows.Scan(&it.Player, &it.Hours, &total); err != nil {
			return nil, 0, fmt.Errorf("scan total time: %w", err)
		}
		items = append(items, it)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("top total time: %w", err)
	}
	return items, total, nil
}

// TotalFor returns the stored total of one player, nil if unknown.
func (s *Store) TotalFor(ctx context.Context, player string) (*int, error) {
	var hours int
	err := s.Pool.QueryRow(ctx, `SELECT total_hours FROM player_total_time WHERE player_name = $1`, player).Scan(&hours)
	if err != nil {
		if errors.Is(mapNotFound(err), ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("total for %q: %w", player, err)
	}
	return &hours, nil
}
