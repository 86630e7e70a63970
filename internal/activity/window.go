package activity

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidWindow = errors.New("invalid week window")

// WeekWindow is a seven day period anchored at a local weekday and hour.
type WeekWindow struct {
	Weekday  time.Weekday
	Hour     int
	Location *time.Location
}

// Bounds returns the window containing now: start is the latest anchor
// at or before now and end is seven calendar days later.
func (w WeekWindow) Bounds(now time.Time) (time.Time, time.Time, error) {
	if w.Location == nil || w.Hour < 0 || w.Hour > 23 || w.Weekday < time.Sunday || w.Weekday > time.Saturday {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: weekday=%d hour=%d", ErrInvalidWindow, w.Weekday, w.Hour)
	}
	lt := now.In(w.Location)
	back := (int(lt.Weekday()) - int(w.Weekday) + 7) % 7
	start := time.Date(lt.Year(), lt.Month(), lt.Day()-back, w.Hour, 0, 0, 0, w.Location)
	if start.After(now) {
		start = start.AddDate(0, 0, -7)
	}
	end := start.AddDate(0, 0, 7)
	if !end.After(start) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: end %s not after start %s", ErrInvalidWindow, end, start)
	}
	return start, end, nil
}

// Previous returns the completed week ending at the current window start.
func (w WeekWindow) Previous(now time.Time) (time.Time, time.Time, error) {
	start, _, err := w.Bounds(now)
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start.AddDate(0, 0, -7), start, nil
}

// NextBoundary is the first anchor strictly after now.
func (w WeekWindow) NextBoundary(now time.Time) (time.Time, error) {
	_, end, err := w.Bounds(now)
	return end, err
}
