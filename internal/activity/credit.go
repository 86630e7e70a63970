package activity

import (
	"sort"
	"time"
)

// PlayerHours is a player with a number of hours, credited or archived.
type PlayerHours struct {
	Player string `json:"player_name"`
	Hours  int    `json:"hours"`
}

// CreditedKeys folds samples into the hour buckets that reached
// threshold distinct slots. Samples outside scope or with invalid names
// are ignored. The result is sorted by player, date and hour.
func CreditedKeys(samples []Sample, scope Scope, threshold int) []HourKey {
	type slotKey struct {
		player string
		slot   time.Time
	}
	seen := make(map[slotKey]struct{}, len(samples))
	counts := make(map[HourKey]int)
	for _, s := range samples {
		if !IsValidName(s.Player) || !scope.Contains(s.SlotStart) {
			continue
		}
		sk := slotKey{player: s.Player, slot: s.SlotStart.UTC()}
		if _, dup := seen[sk]; dup {
			continue
		}
		seen[sk] = struct{}{}
		counts[s.Key()]++
	}

	out := make([]HourKey, 0, len(counts))
	for k, n := range counts {
		if n >= threshold {
			out = append(out, k)
		}
	}
	SortHourKeys(out)
	return out
}

// CreditFold is the in-process form of the credited hours query: a map
// of player to credited hour count. Players without credit are absent.
func CreditFold(samples []Sample, scope Scope, threshold int) map[string]int {
	return CountByPlayer(CreditedKeys(samples, scope, threshold))
}

func CountByPlayer(keys []HourKey) map[string]int {
	out := make(map[string]int)
	for _, k := range keys {
		out[k.Player]++
	}
	return out
}

func SortHourKeys(keys []HourKey) {
	sort.Slice(keys, func(i, j int) bool {
		a, b := keys[i], keys[j]
		if a.Player != b.Player {
			return a.Player < b.Player
		}
		if !a.Date.Equal(b.Date) {
			return a.Date.Before(b.Date)
		}
		return a.Hour < b.Hour
	})
}

// Rank turns a count map into a list ordered by hours descending then
// name ascending. Blank names and non-positive counts are dropped.
func Rank(counts map[string]int) []PlayerHours {
	out := make([]PlayerHours, 0, len(counts))
	for name, n := range counts {
		if !IsValidName(name) || n <= 0 {
			continue
		}
		out = append(out, PlayerHours{Player: name, Hours: n})
	}
	SortPlayerHours(out)
	return out
}

func SortPlayerHours(list []PlayerHours) {
	sort.Slice(list, func(i, j int) bool {
		if list[i].Hours != list[j].Hours {
			return list[i].Hours > list[j].Hours
		}
		return list[i].Player < list[j].Player
	})
}

// Head returns at most n leading entries. n <= 0 returns everything.
func Head(list []PlayerHours, n int) []PlayerHours {
	if n <= 0 || n >= len(list) {
		return list
	}
	return list[:n]
}
