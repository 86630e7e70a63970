package activity

import (
	"fmt"
	"time"
)

// HourlyMode selects the range used for the per hour online graph.
type HourlyMode string

const (
	Last24Hours HourlyMode = "last24h"
	Today       HourlyMode = "today"
)

func ParseHourlyMode(v string) (HourlyMode, error) {
	switch HourlyMode(v) {
	case "", Last24Hours:
		return Last24Hours, nil
	case Today:
		return Today, nil
	default:
		return "", fmt.Errorf("unknown hourly mode %q", v)
	}
}

// Range returns the sample scope for mode. Last24Hours starts at the top
// of the hour 23 hours back, so every hour of day appears once.
func (m HourlyMode) Range(now time.Time, loc *time.Location) Scope {
	lt := now.In(loc)
	switch m {
	case Today:
		start := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
		return Between(start, start.AddDate(0, 0, 1))
	default:
		hourStart := time.Date(lt.Year(), lt.Month(), lt.Day(), lt.Hour(), 0, 0, 0, loc)
		return Between(hourStart.Add(-23*time.Hour), hourStart.Add(time.Hour))
	}
}

// DayCount is the number of distinct players seen on one local date.
type DayCount struct {
	Date  time.Time `json:"date"`
	Count int       `json:"count"`
}

// DayRange returns the first local date, and the scope covering days
// local dates ending with the date of now.
func DayRange(now time.Time, loc *time.Location, days int) (time.Time, Scope) {
	lt := now.In(loc)
	todayStart := time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, loc)
	first := todayStart.AddDate(0, 0, -(days - 1))
	return DateOf(first, loc), Between(first, todayStart.AddDate(0, 0, 1))
}

// DenseDays expands sparse per date counts into exactly days entries
// starting at first, filling gaps with zero.
func DenseDays(first time.Time, days int, counts map[time.Time]int) []DayCount {
	if days <= 0 {
		return []DayCount{}
	}
	out := make([]DayCount, 0, days)
	for i := 0; i < days; i++ {
		d := first.AddDate(0, 0, i)
		out = append(out, DayCount{Date: d, Count: counts[d]})
	}
	return out
}

// HourlyFold counts distinct players per local hour of day.
func HourlyFold(samples []Sample, scope Scope) [24]int {
	var out [24]int
	seen := make(map[HourKey]struct{})
	for _, s := range samples {
		if !IsValidName(s.Player) || !scope.Contains(s.SlotStart) {
			continue
		}
		k := HourKey{Player: s.Player, Hour: s.Hour}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		if s.Hour >= 0 && s.Hour < 24 {
			out[s.Hour]++
		}
	}
	return out
}

// DailyFold counts distinct players per local date.
func DailyFold(samples []Sample, scope Scope) map[time.Time]int {
	out := make(map[time.Time]int)
	seen := make(map[HourKey]struct{})
	for _, s := range samples {
		if !IsValidName(s.Player) || !scope.Contains(s.SlotStart) {
			continue
		}
		k := HourKey{Player: s.Player, Date: s.Date}
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out[s.Date]++
	}
	return out
}

// HourOrder lists hours of day ending with the hour of now, oldest first.
func HourOrder(now time.Time, loc *time.Location) [24]int {
	var out [24]int
	h := now.In(loc).Hour()
	for i := 0; i < 24; i++ {
		out[i] = (h + 1 + i) % 24
	}
	return out
}
