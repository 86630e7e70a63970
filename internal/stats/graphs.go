package stats

import (
	"context"
	"fmt"
	"time"

	"farmwatch/internal/activity"
)

// HourlyPoint is the distinct player count for one local hour of day.
type HourlyPoint struct {
	Hour  int `json:"hour"`
	Count int `json:"count"`
}

// Graphs reads distinct-player activity for the online charts. No
// credit threshold applies.
type Graphs struct {
	repo GraphRepo
	loc  *time.Location
	now  func() time.Time
}

func NewGraphs(repo GraphRepo, loc *time.Location) *Graphs {
	return &Graphs{repo: repo, loc: loc, now: time.Now}
}

// HourlyCounts returns 24 points ordered so the current hour comes last
// for last24h and midnight first for today.
func (g *Graphs) HourlyCounts(ctx context.Context, mode activity.HourlyMode) ([]HourlyPoint, error) {
	now := g.now()
	counts, err := g.repo.HourlyOnline(ctx, mode.Range(now, g.loc))
	if err != nil {
		return nil, fmt.Errorf("hourly online: %w", err)
	}
	var order [24]int
	if mode == activity.Today {
		for h := range order {
			order[h] = h
		}
	} else {
		order = activity.HourOrder(now, g.loc)
	}
	out := make([]HourlyPoint, 0, 24)
	for _, h := range order {
		out = append(out, HourlyPoint{Hour: h, Count: counts[h]})
	}
	return out, nil
}

// DailyCounts returns exactly days entries, oldest first, ending today.
func (g *Graphs) DailyCounts(ctx context.Context, days int) ([]activity.DayCount, error) {
	if days <= 0 {
		return []activity.DayCount{}, nil
	}
	first, scope := activity.DayRange(g.now(), g.loc, days)
	counts, err := g.repo.DailyOnline(ctx, scope)
	if err != nil {
		return nil, fmt.Errorf("daily online: %w", err)
	}
	return activity.DenseDays(first, days, counts), nil
}
