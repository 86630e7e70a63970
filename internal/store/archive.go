package store

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"

	"github.com/jackc/pgx/v5"
)

// WeeklyArchive is the snapshot of the most recently completed week.
type WeeklyArchive struct {
	ID         string
	WeekStart  time.Time
	WeekEnd    time.Time
	ArchivedAt time.Time
	RowCount   int
	Rows       []activity.PlayerHours
}

// ReplaceWeeklyArchive truncates the archive and writes rows in one
// transaction. An empty rows slice leaves an empty archive for the week.
func (s *Store) ReplaceWeeklyArchive(ctx context.Context, weekStart, weekEnd time.Time, rows []activity.PlayerHours, now time.Time) (string, error) {
	id := NewID(now)
	names := make([]string, 0, len(rows))
	hours := make([]int32, 0, len(rows))
	for _, r := range rows {
		names = append(names, r.Player)
		hours = append(hours, int32(r.Hours))
	}
	err := s.inTx(ctx, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `TRUNCATE weekly_top_last`); err != nil {
			return fmt.Errorf("truncate weekly archive: %w", err)
		}
		if len(names) > 0 {
			if _, err := tx.Exec(ctx, `
INSERT INTO weekly_top_last (player_name, hours, archive_id)
SELECT name, hrs, $3 FROM unnest($1::text[], $2::int[]) AS t(name, hrs)`,
				names, hours, id); err != nil {
				return fmt.Errorf("insert weekly archive: %w", err)
			}
		}
		if _, err := tx.Exec(ctx, `
INSERT INTO weekly_top_last_meta (singleton, archive_id, week_start, week_end, row_count, archived_at)
VALUES (true, $1, $2, $3, $4, $5)
ON CONFLICT (singleton) DO UPDATE
SET archive_id = EXCLUDED.archive_id, week_start = EXCLUDED.week_start, week_end = EXCLUDED.week_end,
    row_count = EXCLUDED.row_count, archived_at = EXCLUDED.archived_at`,
			id, timestamptzParam(weekStart), timestamptzParam(weekEnd), len(names), timestamptzParam(now)); err != nil {
			return fmt.Errorf("write weekly archive meta: %w", err)
		}
		return nil
	})
	if err != nil {
		return "", err
	}
	return id, nil
}

// TopLastWeek reads the archived week. It returns ErrNotFound when no
// week has been archived yet. Bounds and rows come from one snapshot.
func (s *Store) TopLastWeek(ctx context.Context, limit int) (*WeeklyArchive, error) {
	var out WeeklyArchive
	err := s.inSnapshot(ctx, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx, `
SELECT archive_id, week_start, week_end, archived_at, row_count
FROM weekly_top_last_meta`).Scan(&out.ID, &out.WeekStart, &out.WeekEnd, &out.ArchivedAt, &out.RowCount)
		if err != nil {
			return mapNotFound(err)
		}
		rows, err := tx.Query(ctx, `
SELECT player_name, hours
FROM weekly_top_last
WHERE archive_id = $1
ORDER BY hours DESC, player_name ASC
LIMIT $2`, out.ID, limit)
		if err != nil {
			return fmt.Errorf("top last week: %w", err)
		}
		out.Rows, err = scanPlayerHours(rows)
		return err
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
