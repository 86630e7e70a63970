// Package activity holds the player presence model: samples, hour
// buckets, credited hours and the calendar windows they are grouped by.
package activity

import (
	"strings"
	"time"
)

// Sentinel is the placeholder the game server reports for an empty slot.
const Sentinel = "-"

// Sample is one observation of a player online during a sampling slot.
type Sample struct {
	Player    string
	SlotStart time.Time
	// Date is the local calendar date at UTC midnight.
	Date    time.Time
	Hour    int
	Weekday time.Weekday
}

// HourKey identifies one (player, local date, local hour) bucket.
type HourKey struct {
	Player string
	Date   time.Time
	Hour   int
}

// Clock localises timestamps into sampling slots.
type Clock struct {
	Slice    time.Duration
	Location *time.Location
}

func NewSample(player string, at time.Time, c Clock) Sample {
	slot := c.SlotStart(at)
	return Sample{
		Player:    player,
		SlotStart: slot,
		Date:      DateOf(slot, c.Location),
		Hour:      slot.Hour(),
		Weekday:   slot.Weekday(),
	}
}

func (s Sample) Key() HourKey {
	return HourKey{Player: s.Player, Date: s.Date, Hour: s.Hour}
}

// SlotStart rounds at down to the start of its slice, measured on the
// local wall clock so slots line up with local quarter hours.
func (c Clock) SlotStart(at time.Time) time.Time {
	lt := at.In(c.Location)
	_, off := lt.Zone()
	shift := time.Duration(off) * time.Second
	return lt.Add(shift).Truncate(c.Slice).Add(-shift).In(c.Location)
}

// NextSlot returns the first slot boundary strictly after now.
func (c Clock) NextSlot(now time.Time) time.Time {
	return c.SlotStart(now).Add(c.Slice)
}

// DateOf returns the local calendar date of t as midnight UTC, the form
// PostgreSQL date columns scan into.
func DateOf(t time.Time, loc *time.Location) time.Time {
	lt := t.In(loc)
	return time.Date(lt.Year(), lt.Month(), lt.Day(), 0, 0, 0, 0, time.UTC)
}

// IsValidName reports whether name denotes a real player.
func IsValidName(name string) bool {
	name = strings.TrimSpace(name)
	return name != "" && name != Sentinel
}

// CleanNames trims names, drops blanks and sentinels, and removes
// duplicates while keeping first-seen order.
func CleanNames(names []string) []string {
	out := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, n := range names {
		n = strings.TrimSpace(n)
		if !IsValidName(n) {
			continue
		}
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	return out
}
