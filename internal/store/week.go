package store

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

type WeekRefresh struct {
	RolledOver bool
	Players    int64
	Pruned     int64
}

// RefreshCurrentWeek rebuilds player_top_week for the window
// [start, end) in one transaction. Rows older than start are cleared
// first, and rows not touched by this refresh are removed, so every row
// shares one updated_at and belongs to one window.
func (s *Store) RefreshCurrentWeek(ctx context.Context, start, end time.Time, threshold int, now time.Time) (WeekRefresh, error) {
	var out WeekRefresh
	now = dbTime(now)
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if err := tx.QueryRow(ctx,
			`SELECT EXISTS (SELECT 1 FROM player_top_week WHERE updated_at < $1)`,
			timestamptzParam(start)).Scan(&out.RolledOver); err != nil {
			return fmt.Errorf("check week rollover: %w", err)
		}
		if out.RolledOver {
			if _, err := tx.Exec(ctx, `DELETE FROM player_top_week`); err != nil {
				return fmt.Errorf("clear stale week: %w", err)
			}
		}

		tag, err := tx.Exec(ctx, `
INSERT INTO player_top_week (player_name, activity_hours, updated_at)
SELECT player_name, COUNT(*)::int, $4
FROM (`+creditedBucketsSQL+`) credited
GROUP BY player_name
ON CONFLICT (player_name) DO UPDATE
SET activity_hours = EXCLUDED.activity_hours, updated_at = EXCLUDED.updated_at`,
			timestamptzParam(start), timestamptzParam(end), threshold, timestamptzParam(now))
		if err != nil {
			return fmt.Errorf("upsert current week: %w", err)
		}
		out.Players = tag.RowsAffected()

		tag, err = tx.Exec(ctx, `
DELETE FROM player_top_week
WHERE updated_at <> $1 OR btrim(player_name) = '' OR player_name = '-' OR activity_hours <= 0`,
			timestamptzParam(now))
		if err != nil {
			return fmt.Errorf("prune current week: %w", err)
		}
		out.Pruned = tag.RowsAffected()
		return nil
	})
	return out, err
}

// TopCurrentWeek lists the current week ordered by hours then name. The
// returned as-of time is nil when the table is empty.
func (s *Store) TopCurrentWeek(ctx context.Context, limit int) ([]activity.PlayerHours, *time.Time, error) {
	var asOf pgtype.Timestamptz
	if err := s.Pool.QueryRow(ctx, `SELECT MAX(updated_at) FROM player_top_week`).Scan(&asOf); err != nil {
		return nil, nil, fmt.Errorf("current week as of: %w", err)
	}
	rows, err := s.Pool.Query(ctx, `
SELECT player_name, activity_hours
FROM player_top_week
ORDER BY activity_hours DESC, player_name ASC
LIMIT $1`, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("top current week: %w", err)
	}
	items, err := scanPlayerHours(rows)
	if err != nil {
		return nil, nil, err
	}
	return items, timePtrVal(asOf), nil
}
