package config

import (
	"errors"
	"fmt"
	"time"

	"farmwatch/internal/activity"

	"github.com/caarlos0/env/v11"
)

var ErrInvalidStats = errors.New("invalid stats config")

// MaxTopRows caps every leaderboard page served over the API.
const MaxTopRows = 100

// MaxOnlineDays caps the daily online graph.
const MaxOnlineDays = 366

type StatsConfig struct {
	Timezone string `env:"TIMEZONE" envDefault:"Europe/Moscow"`

	CreditThreshold int           `env:"CREDIT_THRESHOLD" envDefault:"3"`
	SampleSlice     time.Duration `env:"SAMPLE_SLICE" envDefault:"15m"`
	RetentionDays   int           `env:"RETENTION_DAYS" envDefault:"30"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"24h"`

	// WeeklyTopWeekday counts from Monday = 0.
	WeeklyTopWeekday    int           `env:"WEEKLY_TOP_WEEKDAY" envDefault:"0"`
	WeeklyTopHour       int           `env:"WEEKLY_TOP_HOUR" envDefault:"12"`
	WeeklyTopLimit      int           `env:"WEEKLY_TOP_LIMIT" envDefault:"10"`
	WeeklyTopMax        int           `env:"WEEKLY_TOP_MAX" envDefault:"30"`
	WeekRefreshInterval time.Duration `env:"WEEK_REFRESH_INTERVAL" envDefault:"15m"`

	TotalTimeInterval time.Duration `env:"TOTAL_TIME_INTERVAL" envDefault:"1h"`
	TotalTopLimit     int           `env:"TOTAL_TOP_LIMIT" envDefault:"30"`

	MonthDays  int           `env:"ONLINE_MONTH_DAYS" envDefault:"30"`
	RetryDelay time.Duration `env:"TASK_RETRY_DELAY" envDefault:"5s"`
}

func LoadStats() (StatsConfig, error) {
	var cfg StatsConfig
	if err := env.Parse(&cfg); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// SlotsPerHour is the number of sampling slices in one hour.
func (c StatsConfig) SlotsPerHour() int {
	if c.SampleSlice <= 0 {
		return 0
	}
	return int(time.Hour / c.SampleSlice)
}

func (c StatsConfig) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: timezone %q: %v", ErrInvalidStats, c.Timezone, err)
	}
	return loc, nil
}

func (c StatsConfig) Validate() error {
	if c.SampleSlice <= 0 || time.Hour%c.SampleSlice != 0 {
		return fmt.Errorf("%w: SAMPLE_SLICE %s must divide one hour", ErrInvalidStats, c.SampleSlice)
	}
	if c.CreditThreshold < 1 || c.CreditThreshold > c.SlotsPerHour() {
		return fmt.Errorf("%w: CREDIT_THRESHOLD %d must be within [1, %d]", ErrInvalidStats, c.CreditThreshold, c.SlotsPerHour())
	}
	if c.RetentionDays <= 0 {
		return fmt.Errorf("%w: RETENTION_DAYS must be positive", ErrInvalidStats)
	}
	if c.WeeklyTopWeekday < 0 || c.WeeklyTopWeekday > 6 {
		return fmt.Errorf("%w: WEEKLY_TOP_WEEKDAY %d must be within [0, 6]", ErrInvalidStats, c.WeeklyTopWeekday)
	}
	if c.WeeklyTopHour < 0 || c.WeeklyTopHour > 23 {
		return fmt.Errorf("%w: WEEKLY_TOP_HOUR %d must be within [0, 23]", ErrInvalidStats, c.WeeklyTopHour)
	}
	if c.WeeklyTopLimit <= 0 || c.WeeklyTopMax < c.WeeklyTopLimit {
		return fmt.Errorf("%w: WEEKLY_TOP_LIMIT %d must be positive and at most WEEKLY_TOP_MAX %d", ErrInvalidStats, c.WeeklyTopLimit, c.WeeklyTopMax)
	}
	if c.WeeklyTopLimit > MaxTopRows {
		return fmt.Errorf("%w: WEEKLY_TOP_LIMIT %d exceeds %d", ErrInvalidStats, c.WeeklyTopLimit, MaxTopRows)
	}
	if c.TotalTopLimit <= 0 || c.TotalTopLimit > MaxTopRows {
		return fmt.Errorf("%w: TOTAL_TOP_LIMIT %d must be within [1, %d]", ErrInvalidStats, c.TotalTopLimit, MaxTopRows)
	}
	if c.MonthDays <= 0 || c.MonthDays > MaxOnlineDays {
		return fmt.Errorf("%w: ONLINE_MONTH_DAYS %d must be within [1, %d]", ErrInvalidStats, c.MonthDays, MaxOnlineDays)
	}
	for name, d := range map[string]time.Duration{
		"CLEANUP_INTERVAL":      c.CleanupInterval,
		"WEEK_REFRESH_INTERVAL": c.WeekRefreshInterval,
		"TOTAL_TIME_INTERVAL":   c.TotalTimeInterval,
	} {
		if d <= 0 {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidStats, name)
		}
	}
	loc, err := c.Location()
	if err != nil {
		return err
	}
	if _, _, err := c.Window(loc).Bounds(time.Now()); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidStats, err)
	}
	return nil
}

// Window is the weekly leaderboard period in loc.
func (c StatsConfig) Window(loc *time.Location) activity.WeekWindow {
	return activity.WeekWindow{Weekday: c.AnchorWeekday(), Hour: c.WeeklyTopHour, Location: loc}
}

// AnchorWeekday converts the Monday-based setting to time.Weekday.
func (c StatsConfig) AnchorWeekday() time.Weekday {
	return time.Weekday((c.WeeklyTopWeekday + 1) % 7)
}
