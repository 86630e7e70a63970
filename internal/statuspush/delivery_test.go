package statuspush

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"farmwatch/internal/statuspush/platforms"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failAdapter struct {
	mu    sync.Mutex
	calls int
	fail  bool
}

func (a *failAdapter) Name() string { return "fail" }

func (a *failAdapter) Send(_ context.Context, _ string, _ string, _ platforms.Message) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.calls++
	if a.fail {
		return errors.New("failed")
	}
	return nil
}

func (a *failAdapter) Calls() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.calls
}

func startTestManager(t *testing.T, cfg Config, adapter platforms.Adapter) *Manager {
	t.Helper()
	m := NewManager(cfg, nil)
	m.adapters = map[string]platforms.Adapter{adapter.Name(): adapter}
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	require.NoError(t, m.Start(ctx))
	return m
}

func TestRetryStopsAtMaxAttempts(t *testing.T) {
	cfg := Config{
		Enabled:   true,
		Targets:   []PushTarget{{Platform: "fail", Endpoint: "https://example.com", Enabled: true}},
		Workers:   1,
		RetryMax:  1,
		RetryBase: 5 * time.Millisecond,
	}
	adapter := &failAdapter{fail: true}
	m := startTestManager(t, cfg, adapter)

	require.True(t, m.enqueue(pushJob{Target: cfg.Targets[0], Formatted: FormattedMessage{Panel: PanelTopWeek, Title: "x"}}))
	time.Sleep(120 * time.Millisecond)
	assert.Equal(t, 2, adapter.Calls(), "initial send plus one retry")
}

func TestCircuitOpenSkipsSubsequentSends(t *testing.T) {
	cfg := Config{
		Enabled:             true,
		Targets:             []PushTarget{{Platform: "fail", Endpoint: "https://example.com", Enabled: true}},
		Workers:             1,
		RetryMax:            0,
		RetryBase:           5 * time.Millisecond,
		FailureThreshold:    1,
		CircuitOpenDuration: 500 * time.Millisecond,
	}
	adapter := &failAdapter{fail: true}
	m := startTestManager(t, cfg, adapter)

	job := pushJob{Target: cfg.Targets[0], Formatted: FormattedMessage{Panel: PanelTopTotal, Title: "x"}}
	require.True(t, m.enqueue(job))
	time.Sleep(40 * time.Millisecond)
	require.True(t, m.enqueue(job))
	time.Sleep(80 * time.Millisecond)

	assert.Equal(t, 1, adapter.Calls())
}

func TestUnknownPlatformIsDropped(t *testing.T) {
	cfg := Config{
		Enabled: true,
		Targets: []PushTarget{{Platform: "matrix", Endpoint: "https://example.com", Enabled: true}},
		Workers: 1,
	}
	adapter := &failAdapter{}
	m := startTestManager(t, cfg, adapter)

	require.Equal(t, 1, m.Publish(FormattedMessage{Panel: PanelServerStatus}))
	time.Sleep(40 * time.Millisecond)
	assert.Zero(t, adapter.Calls())

	m.mu.Lock()
	panel := m.panelByKey[panelStateKey(cfg.Targets[0], PanelServerStatus)]
	inflight, dirty := panel.inflight, panel.dirty
	m.mu.Unlock()
	assert.False(t, inflight)
	assert.True(t, dirty, "dropped panel is pending again")
}

func TestBreakerOpensAfterThreshold(t *testing.T) {
	b := newBreaker(2, time.Minute)
	now := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	assert.True(t, b.allow("k", now))
	assert.False(t, b.failure("k", now))
	assert.True(t, b.allow("k", now))
	assert.True(t, b.failure("k", now))
	assert.False(t, b.allow("k", now.Add(59*time.Second)))
	assert.True(t, b.allow("other", now))
	assert.True(t, b.allow("k", now.Add(time.Minute)))

	assert.False(t, b.failure("k", now.Add(time.Minute)), "failures restart from zero after opening")
	b.success("k")
	assert.False(t, b.failure("k", now.Add(time.Minute)))
}

func TestBackoffDoubles(t *testing.T) {
	base := 100 * time.Millisecond
	assert.Equal(t, base, backoff(base, 0))
	assert.Equal(t, base, backoff(base, 1))
	assert.Equal(t, 200*time.Millisecond, backoff(base, 2))
	assert.Equal(t, 800*time.Millisecond, backoff(base, 4))
}

func TestSubscribers(t *testing.T) {
	targets := []PushTarget{
		{Endpoint: "all", Enabled: true},
		{Endpoint: "week", Panels: []string{"top_week", "top_last_week"}, Enabled: true},
		{Endpoint: "off", Enabled: false},
	}
	got := subscribers(targets, PanelServerStatus)
	require.Len(t, got, 1)
	assert.Equal(t, "all", got[0].Endpoint)
	assert.Len(t, subscribers(targets, PanelTopLastWeek), 2)
	assert.Nil(t, subscribers(nil, PanelTopTotal))
	assert.False(t, targets[2].Wants(PanelTopWeek))
}

func TestToPlatformMessageCarriesPanelKey(t *testing.T) {
	msg := toPlatformMessage(FormattedMessage{
		Panel:  PanelTopLastWeek,
		Title:  "t",
		Fields: []MessageField{{Name: "n", Value: "v", Inline: true}},
	})
	assert.Equal(t, "top_last_week", msg.PanelKey)
	assert.Equal(t, []platforms.Field{{Name: "n", Value: "v", Inline: true}}, msg.Fields)
}
