package store

import (
	"errors"
	"time"

	"farmwatch/internal/activity"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

func mapNotFound(err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	return err
}

func timestamptzParam(v time.Time) pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: v, Valid: true}
}

func timeParam(v *time.Time) pgtype.Timestamptz {
	if v == nil {
		return pgtype.Timestamptz{}
	}
	return pgtype.Timestamptz{Time: *v, Valid: true}
}

func timePtrVal(v pgtype.Timestamptz) *time.Time {
	if !v.Valid {
		return nil
	}
	out := v.Time
	return &out
}

func scopeParams(scope activity.Scope) (pgtype.Timestamptz, pgtype.Timestamptz) {
	return timeParam(scope.From), timeParam(scope.To)
}

// dbTime drops sub-microsecond precision so values compare equal after a
// round trip through timestamptz.
func dbTime(t time.Time) time.Time {
	return t.Truncate(time.Microsecond)
}

func scanPlayerHours(rows pgx.Rows) ([]activity.PlayerHours, error) {
	defer rows.Close()
	out := make([]activity.PlayerHours, 0)
	for rows.Next() {
		var it activity.PlayerHours
		if err := rows.Scan(&it.Player, &it.Hours); err != nil {
			return nil, err
		}
		out = append(out, it)
	}
	return out, rows.Err()
}
