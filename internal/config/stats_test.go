package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadStatsDefaults(t *testing.T) {
	cfg, err := LoadStats()
	require.NoError(t, err)
	assert.Equal(t, 3, cfg.CreditThreshold)
	assert.Equal(t, 15*time.Minute, cfg.SampleSlice)
	assert.Equal(t, 30, cfg.RetentionDays)
	assert.Equal(t, 10, cfg.WeeklyTopLimit)
	assert.Equal(t, 30, cfg.WeeklyTopMax)
	assert.Equal(t, 12, cfg.WeeklyTopHour)
	assert.Equal(t, 30, cfg.TotalTopLimit)
	assert.Equal(t, time.Monday, cfg.AnchorWeekday())
	assert.Equal(t, 4, cfg.SlotsPerHour())
}

func TestStatsValidate(t *testing.T) {
	base, err := LoadStats()
	require.NoError(t, err)
	tests := []struct {
		name   string
		mutate func(*StatsConfig)
	}{
		{name: "slice does not divide hour", mutate: func(c *StatsConfig) { c.SampleSlice = 7 * time.Minute }},
		{name: "threshold above slots", mutate: func(c *StatsConfig) { c.CreditThreshold = 5 }},
		{name: "threshold zero", mutate: func(c *StatsConfig) { c.CreditThreshold = 0 }},
		{name: "weekday out of range", mutate: func(c *StatsConfig) { c.WeeklyTopWeekday = 7 }},
		{name: "hour out of range", mutate: func(c *StatsConfig) { c.WeeklyTopHour = 24 }},
		{name: "limit above max", mutate: func(c *StatsConfig) { c.WeeklyTopLimit = 40 }},
		{name: "week limit above api rows", mutate: func(c *StatsConfig) { c.WeeklyTopMax, c.WeeklyTopLimit = 200, 150 }},
		{name: "total limit above api rows", mutate: func(c *StatsConfig) { c.TotalTopLimit = MaxTopRows + 1 }},
		{name: "total limit zero", mutate: func(c *StatsConfig) { c.TotalTopLimit = 0 }},
		{name: "month days above graph cap", mutate: func(c *StatsConfig) { c.MonthDays = MaxOnlineDays + 1 }},
		{name: "unknown timezone", mutate: func(c *StatsConfig) { c.Timezone = "Mars/Olympus" }},
		{name: "zero refresh interval", mutate: func(c *StatsConfig) { c.WeekRefreshInterval = 0 }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mutate(&cfg)
			assert.ErrorIs(t, cfg.Validate(), ErrInvalidStats)
		})
	}
}

func TestStatsValidateAcceptsEdges(t *testing.T) {
	base, err := LoadStats()
	require.NoError(t, err)
	for _, mutate := range []func(*StatsConfig){
		func(c *StatsConfig) { c.TotalTopLimit = MaxTopRows },
		func(c *StatsConfig) { c.WeeklyTopWeekday, c.WeeklyTopHour = 6, 23 },
		func(c *StatsConfig) { c.WeeklyTopHour = 0 },
		func(c *StatsConfig) { c.Timezone = "UTC" },
	} {
		cfg := base
		mutate(&cfg)
		assert.NoError(t, cfg.Validate())
	}
}

func TestStatsWindowBounds(t *testing.T) {
	cfg, err := LoadStats()
	require.NoError(t, err)
	loc, err := cfg.Location()
	require.NoError(t, err)

	now := time.Date(2026, 10, 14, 9, 0, 0, 0, loc)
	start, end, err := cfg.Window(loc).Bounds(now)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 10, 12, 12, 0, 0, 0, loc), start)
	assert.True(t, end.After(start))
	assert.Equal(t, start.AddDate(0, 0, 7), end)

	_, _, err = cfg.Window(nil).Bounds(now)
	require.Error(t, err)
}

func TestAnchorWeekdaySunday(t *testing.T) {
	assert.Equal(t, time.Sunday, StatsConfig{WeeklyTopWeekday: 6}.AnchorWeekday())
}
