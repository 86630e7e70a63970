package stats

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/metrics"
	"farmwatch/internal/store"

	"github.com/rs/zerolog/log"
)

// TotalTime maintains all-time credited hours per player.
type TotalTime struct {
	repo      TotalsRepo
	threshold int
	now       func() time.Time
}

func NewTotalTime(repo TotalsRepo, threshold int) *TotalTime {
	return &TotalTime{repo: repo, threshold: threshold, now: time.Now}
}

func (t *TotalTime) Refresh(ctx context.Context) (store.TotalsRefresh, error) {
	res, err := t.repo.RefreshTotals(ctx, t.threshold, t.now())
	if err != nil {
		return res, fmt.Errorf("refresh totals: %w", err)
	}
	metrics.AddHoursCredited(res.NewHours)
	log.Info().
		Str("task", "total_time").
		Int64("new_hours", res.NewHours).
		Int64("players", res.Players).
		Int64("removed", res.Removed).
		Msg("totals_refreshed")
	return res, nil
}

func (t *TotalTime) Run(ctx context.Context) error {
	_, err := t.Refresh(ctx)
	return err
}

// Top returns the leaders and the number of tracked players.
func (t *TotalTime) Top(ctx context.Context, limit int) ([]activity.PlayerHours, int, error) {
	items, total, err := t.repo.TopTotals(ctx, limit)
	if err != nil {
		return nil, 0, fmt.Errorf("top totals: %w", err)
	}
	return items, total, nil
}

// For returns the all-time hours of one player, nil when the player has
// no credited hour yet.
func (t *TotalTime) For(ctx context.Context, player string) (*int, error) {
	return t.repo.TotalFor(ctx, player)
}
