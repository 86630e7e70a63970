package store

import (
	"context"
	"fmt"

	"farmwatch/internal/activity"
)

// creditedBucketsSQL selects credited (player, date, hour) buckets in an
// optional slot range. $1 and $2 bound observed_at, $3 is the threshold.
const creditedBucketsSQL = `
SELECT player_name, local_date, local_hour
FROM presence_samples
WHERE btrim(player_name) <> '' AND player_name <> '-'
  AND ($1::timestamptz IS NULL OR observed_at >= $1)
  AND ($2::timestamptz IS NULL OR observed_at < $2)
GROUP BY player_name, local_date, local_hour
HAVING COUNT(*) >= $3`

// CreditedHours returns credited hour counts per player in scope.
// Players with no credited hour are absent.
func (s *Store) CreditedHours(ctx context.Context, scope activity.Scope, threshold int) (map[string]int, error) {
	return creditedHours(ctx, s.Pool, scope, threshold)
}

func creditedHours(ctx context.Context, q querier, scope activity.Scope, threshold int) (map[string]int, error) {
	from, to := scopeParams(scope)
	rows, err := q.Query(ctx, `
SELECT player_name, COUNT(*)::int
FROM (`+creditedBucketsSQL+`) credited
GROUP BY player_name`, from, to, threshold)
	if err != nil {
		return nil, fmt.Errorf("credited hours: %w", err)
	}
	list, err := scanPlayerHours(rows)
	if err != nil {
		return nil, fmt.Errorf("credited hours: %w", err)
	}
	out := make(map[string]int, len(list))
	for _, it := range list {
		out[it.Player] = it.Hours
	}
	return out, nil
}
