package stats

import (
	"context"
	"sort"
	"sync"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/store"
)

type weekRow struct {
	hours   int
	updated time.Time
}

// memRepo mirrors the store on top of the in-process folds.
type memRepo struct {
	mu      sync.Mutex
	samples []activity.Sample
	ledger  map[activity.HourKey]struct{}
	totals  map[string]int
	week    map[string]weekRow
	archive *store.WeeklyArchive
	err     error
}

func newMemRepo() *memRepo {
	return &memRepo{
		ledger: map[activity.HourKey]struct{}{},
		totals: map[string]int{},
		week:   map[string]weekRow{},
	}
}

func (m *memRepo) RecordSamples(_ context.Context, samples []activity.Sample) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return 0, m.err
	}
	var n int64
	for _, s := range samples {
		dup := false
		for _, have := range m.samples {
			if have.Player == s.Player && have.SlotStart.Equal(s.SlotStart) {
				dup = true
				break
			}
		}
		if !dup {
			m.samples = append(m.samples, s)
			n++
		}
	}
	return n, nil
}

func (m *memRepo) PurgeOlderThan(_ context.Context, cutoff time.Time) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	kept := m.samples[:0]
	var n int64
	for _, s := range m.samples {
		if s.SlotStart.Before(cutoff) {
			n++
			continue
		}
		kept = append(kept, s)
	}
	m.samples = kept
	return n, nil
}

func (m *memRepo) CreditedHours(_ context.Context, scope activity.Scope, threshold int) (map[string]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	return activity.CreditFold(m.samples, scope, threshold), nil
}

func (m *memRepo) RefreshTotals(_ context.Context, threshold int, _ time.Time) (store.TotalsRefresh, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out store.TotalsRefresh
	if m.err != nil {
		return out, m.err
	}
	for _, k := range activity.CreditedKeys(m.samples, activity.AllTime(), threshold) {
		if _, ok := m.ledger[k]; !ok {
			m.ledger[k] = struct{}{}
			out.NewHours++
		}
	}
	counts := make(map[string]int)
	for k := range m.ledger {
		counts[k.Player]++
	}
	for name, n := range counts {
		if m.totals[name] != n {
			m.totals[name] = n
			out.Players++
		}
	}
	for name, n := range m.totals {
		if !activity.IsValidName(name) || n <= 0 {
			delete(m.totals, name)
			out.Removed++
		}
	}
	return out, nil
}

func (m *memRepo) TopTotals(_ context.Context, limit int) ([]activity.PlayerHours, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return activity.Head(activity.Rank(m.totals), limit), len(m.totals), nil
}

func (m *memRepo) TotalFor(_ context.Context, player string) (*int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	hours, ok := m.totals[player]
	if !ok {
		return nil, nil
	}
	return &hours, nil
}

func (m *memRepo) RefreshCurrentWeek(_ context.Context, start, end time.Time, threshold int, now time.Time) (store.WeekRefresh, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out store.WeekRefresh
	if m.err != nil {
		return out, m.err
	}
	for _, r := range m.week {
		if r.updated.Before(start) {
			out.RolledOver = true
			break
		}
	}
	if out.RolledOver {
		m.week = map[string]weekRow{}
	}
	for name, n := range activity.CreditFold(m.samples, activity.Between(start, end), threshold) {
		m.week[name] = weekRow{hours: n, updated: now}
		out.Players++
	}
	for name, r := range m.week {
		if !r.updated.Equal(now) || r.hours <= 0 || !activity.IsValidName(name) {
			delete(m.week, name)
			out.Pruned++
		}
	}
	return out, nil
}

func (m *memRepo) TopCurrentWeek(_ context.Context, limit int) ([]activity.PlayerHours, *time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	counts := make(map[string]int, len(m.week))
	var asOf *time.Time
	for name, r := range m.week {
		counts[name] = r.hours
		if asOf == nil || r.updated.After(*asOf) {
			u := r.updated
			asOf = &u
		}
	}
	return activity.Head(activity.Rank(counts), limit), asOf, nil
}

func (m *memRepo) ReplaceWeeklyArchive(_ context.Context, weekStart, weekEnd time.Time, rows []activity.PlayerHours, now time.Time) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	id := store.NewID(now)
	m.archive = &store.WeeklyArchive{
		ID:         id,
		WeekStart:  weekStart,
		WeekEnd:    weekEnd,
		ArchivedAt: now,
		RowCount:   len(rows),
		Rows:       append([]activity.PlayerHours(nil), rows...),
	}
	return id, nil
}

func (m *memRepo) TopLastWeek(_ context.Context, limit int) (*store.WeeklyArchive, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.archive == nil {
		return nil, store.ErrNotFound
	}
	out := *m.archive
	out.Rows = activity.Head(append([]activity.PlayerHours(nil), m.archive.Rows...), limit)
	return &out, nil
}

func (m *memRepo) HourlyOnline(_ context.Context, scope activity.Scope) ([24]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return activity.HourlyFold(m.samples, scope), nil
}

func (m *memRepo) DailyOnline(_ context.Context, scope activity.Scope) (map[time.Time]int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return activity.DailyFold(m.samples, scope), nil
}

func (m *memRepo) players() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	seen := map[string]struct{}{}
	for _, s := range m.samples {
		seen[s.Player] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for n := range seen {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}

var _ Repo = (*memRepo)(nil)
