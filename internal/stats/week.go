package stats

import (
	"context"
	"errors"
	"fmt"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/store"

	"github.com/rs/zerolog/log"
)

// WeekTop is the current-week leaderboard with its window.
type WeekTop struct {
	Items []activity.PlayerHours
	AsOf  time.Time
	Start time.Time
	End   time.Time
}

// CurrentWeek keeps credited hours for the running anchored week.
type CurrentWeek struct {
	repo      WeekRepo
	window    activity.WeekWindow
	threshold int
	now       func() time.Time
}

func NewCurrentWeek(repo WeekRepo, window activity.WeekWindow, threshold int) *CurrentWeek {
	return &CurrentWeek{repo: repo, window: window, threshold: threshold, now: time.Now}
}

func (w *CurrentWeek) Refresh(ctx context.Context) (store.WeekRefresh, error) {
	now := w.now()
	start, end, err := w.window.Bounds(now)
	if err != nil {
		return store.WeekRefresh{}, err
	}
	res, err := w.repo.RefreshCurrentWeek(ctx, start, end, w.threshold, now)
	if err != nil {
		return res, fmt.Errorf("refresh current week: %w", err)
	}
	log.Info().
		Str("task", "current_week").
		Bool("rolled_over", res.RolledOver).
		Time("window_start", start).
		Time("window_end", end).
		Int64("players", res.Players).
		Int64("pruned", res.Pruned).
		Msg("week_refreshed")
	return res, nil
}

func (w *CurrentWeek) Run(ctx context.Context) error {
	_, err := w.Refresh(ctx)
	return err
}

// Top lists the current week. AsOf falls back to now before the first
// refresh of a window has written anything.
func (w *CurrentWeek) Top(ctx context.Context, limit int) (WeekTop, error) {
	now := w.now()
	start, end, err := w.window.Bounds(now)
	if err != nil {
		return WeekTop{}, err
	}
	items, asOf, err := w.repo.TopCurrentWeek(ctx, limit)
	if err != nil {
		return WeekTop{}, fmt.Errorf("top current week: %w", err)
	}
	out := WeekTop{Items: items, AsOf: now, Start: start, End: end}
	if asOf != nil {
		out.AsOf = *asOf
	}
	return out, nil
}

// WeeklyArchiver snapshots the top of each completed week.
type WeeklyArchiver struct {
	repo      ArchiveRepo
	window    activity.WeekWindow
	threshold int
	max       int
	limit     int
	now       func() time.Time
}

func NewWeeklyArchiver(repo ArchiveRepo, window activity.WeekWindow, threshold, max, limit int) *WeeklyArchiver {
	return &WeeklyArchiver{repo: repo, window: window, threshold: threshold, max: max, limit: limit, now: time.Now}
}

// Window is the scheduling window used for boundaries.
func (a *WeeklyArchiver) Window() activity.WeekWindow { return a.window }

// Archive recomputes the week before the current one from presence and
// replaces the archive with its top rows.
func (a *WeeklyArchiver) Archive(ctx context.Context) (*store.WeeklyArchive, error) {
	now := a.now()
	start, end, err := a.window.Previous(now)
	if err != nil {
		return nil, err
	}
	counts, err := a.repo.CreditedHours(ctx, activity.Between(start, end), a.threshold)
	if err != nil {
		return nil, fmt.Errorf("credited hours for archive: %w", err)
	}
	rows := activity.Head(activity.Head(activity.Rank(counts), a.max), a.limit)
	id, err := a.repo.ReplaceWeeklyArchive(ctx, start, end, rows, now)
	if err != nil {
		return nil, fmt.Errorf("replace weekly archive: %w", err)
	}
	log.Info().
		Str("task", "weekly_archive").
		Str("archive_id", id).
		Time("window_start", start).
		Time("window_end", end).
		Int("players", len(counts)).
		Int("rows", len(rows)).
		Msg("week_archived")
	return &store.WeeklyArchive{ID: id, WeekStart: start, WeekEnd: end, ArchivedAt: now, RowCount: len(rows), Rows: rows}, nil
}

func (a *WeeklyArchiver) Run(ctx context.Context) error {
	_, err := a.Archive(ctx)
	return err
}

// Top returns the archived week, or nil when nothing was archived yet.
func (a *WeeklyArchiver) Top(ctx context.Context, limit int) (*store.WeeklyArchive, error) {
	arch, err := a.repo.TopLastWeek(ctx, limit)
	if errors.Is(err, store.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("top last week: %w", err)
	}
	return arch, nil
}
