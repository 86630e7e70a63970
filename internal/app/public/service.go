package public

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"farmwatch/internal/activity"
	"farmwatch/internal/chart"
	"farmwatch/internal/config"
	"farmwatch/internal/stats"
	"farmwatch/internal/store"
)

type TotalsSource interface {
	Top(ctx context.Context, limit int) ([]activity.PlayerHours, int, error)
	For(ctx context.Context, player string) (*int, error)
}

type WeekSource interface {
	Top(ctx context.Context, limit int) (stats.WeekTop, error)
}

type ArchiveSource interface {
	Top(ctx context.Context, limit int) (*store.WeeklyArchive, error)
}

type GraphSource interface {
	HourlyCounts(ctx context.Context, mode activity.HourlyMode) ([]stats.HourlyPoint, error)
	DailyCounts(ctx context.Context, days int) ([]activity.DayCount, error)
}

// Limits holds the defaults applied when a caller passes zero, and the
// upper bounds past which a request is rejected.
type Limits struct {
	Total     int
	Week      int
	LastWeek  int
	MaxRows   int
	MonthDays int
	MaxDays   int
}

func DefaultLimits() Limits {
	return Limits{Total: 30, Week: 10, LastWeek: 10, MaxRows: config.MaxTopRows, MonthDays: 30, MaxDays: config.MaxOnlineDays}
}

type Service struct {
	totals  TotalsSource
	week    WeekSource
	archive ArchiveSource
	graphs  GraphSource
	limits  Limits
}

func NewService(totals TotalsSource, week WeekSource, archive ArchiveSource, graphs GraphSource, limits Limits) *Service {
	return &Service{totals: totals, week: week, archive: archive, graphs: graphs, limits: limits}
}

func (s *Service) Limits() Limits {
	return s.limits
}

func (s *Service) TopTotal(ctx context.Context, limit int) (*TopTotalResponse, error) {
	limit, ok := s.clampRows(limit, s.limits.Total)
	if !ok {
		return nil, ErrInvalidRequest
	}
	items, total, err := s.totals.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &TopTotalResponse{Items: rankItems(items), Total: total, Limit: limit}, nil
}

// maxPlayerName bounds lookups; the game caps nicknames well below it.
const maxPlayerName = 64

// PlayerTotal looks up the all-time hours of one player by exact name.
func (s *Service) PlayerTotal(ctx context.Context, name string) (*PlayerTotalResponse, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == "-" || utf8.RuneCountInString(name) > maxPlayerName {
		return nil, ErrInvalidRequest
	}
	hours, err := s.totals.For(ctx, name)
	if err != nil {
		return nil, err
	}
	if hours == nil {
		return nil, ErrPlayerNotFound
	}
	return &PlayerTotalResponse{PlayerName: name, Hours: *hours}, nil
}

func (s *Service) TopWeek(ctx context.Context, limit int) (*TopWeekResponse, error) {
	limit, ok := s.clampRows(limit, s.limits.Week)
	if !ok {
		return nil, ErrInvalidRequest
	}
	top, err := s.week.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	return &TopWeekResponse{
		Items:     rankItems(top.Items),
		Limit:     limit,
		AsOf:      top.AsOf,
		WeekStart: top.Start,
		WeekEnd:   top.End,
	}, nil
}

func (s *Service) TopLastWeek(ctx context.Context, limit int) (*TopLastWeekResponse, error) {
	limit, ok := s.clampRows(limit, s.limits.LastWeek)
	if !ok {
		return nil, ErrInvalidRequest
	}
	arch, err := s.archive.Top(ctx, limit)
	if err != nil {
		return nil, err
	}
	out := &TopLastWeekResponse{Items: []RankItem{}, Limit: limit}
	if arch == nil {
		return out, nil
	}
	out.Items = rankItems(activity.Head(arch.Rows, limit))
	out.WeekStart, out.WeekEnd, out.ArchivedAt = &arch.WeekStart, &arch.WeekEnd, &arch.ArchivedAt
	return out, nil
}

func (s *Service) OnlineDaily(ctx context.Context, rawMode string) (*HourlyResponse, error) {
	mode, err := activity.ParseHourlyMode(rawMode)
	if err != nil {
		return nil, ErrInvalidRequest
	}
	points, err := s.graphs.HourlyCounts(ctx, mode)
	if err != nil {
		return nil, err
	}
	items := make([]HourlyItem, 0, len(points))
	for _, p := range points {
		items = append(items, HourlyItem{Hour: p.Hour, Count: p.Count})
	}
	return &HourlyResponse{Mode: string(mode), Items: items}, nil
}

func (s *Service) OnlineMonthly(ctx context.Context, days int) (*DailyResponse, error) {
	if days == 0 {
		days = s.limits.MonthDays
	}
	if days < 1 || days > s.limits.MaxDays {
		return nil, ErrInvalidRequest
	}
	counts, err := s.graphs.DailyCounts(ctx, days)
	if err != nil {
		return nil, err
	}
	items := make([]DailyItem, 0, len(counts))
	for _, c := range counts {
		items = append(items, DailyItem{Date: c.Date.Format("2006-01-02"), Count: c.Count})
	}
	return &DailyResponse{Days: days, Items: items}, nil
}

// DailyChart renders OnlineDaily as a PNG.
func (s *Service) DailyChart(ctx context.Context, rawMode string) ([]byte, error) {
	resp, err := s.OnlineDaily(ctx, rawMode)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(resp.Items))
	values := make([]int, 0, len(resp.Items))
	for _, it := range resp.Items {
		labels = append(labels, fmt.Sprintf("%02d", it.Hour))
		values = append(values, it.Count)
	}
	title := "Players online by hour, last 24h"
	if resp.Mode == string(activity.Today) {
		title = "Players online by hour, today"
	}
	return chart.Bars(title, labels, values)
}

// MonthlyChart renders OnlineMonthly as a PNG.
func (s *Service) MonthlyChart(ctx context.Context, days int) ([]byte, error) {
	resp, err := s.OnlineMonthly(ctx, days)
	if err != nil {
		return nil, err
	}
	labels := make([]string, 0, len(resp.Items))
	values := make([]int, 0, len(resp.Items))
	for _, it := range resp.Items {
		// YYYY-MM-DD -> DD.MM
		labels = append(labels, it.Date[8:10]+"."+it.Date[5:7])
		values = append(values, it.Count)
	}
	return chart.Bars(fmt.Sprintf("Players online per day, last %d days", resp.Days), labels, values)
}

// clampRows applies def for a zero limit and rejects anything outside
// [1, MaxRows].
func (s *Service) clampRows(limit, def int) (int, bool) {
	if limit == 0 {
		limit = def
	}
	if limit < 1 || limit > s.limits.MaxRows {
		return 0, false
	}
	return limit, true
}

func rankItems(items []activity.PlayerHours) []RankItem {
	out := make([]RankItem, 0, len(items))
	for i, it := range items {
		out = append(out, RankItem{Rank: i + 1, PlayerName: it.Player, Hours: it.Hours})
	}
	return out
}
