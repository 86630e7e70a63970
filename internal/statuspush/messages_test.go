package statuspush

import (
	"context"
	"errors"
	"testing"
	"time"

	"farmwatch/internal/statuspush/platforms"
	"farmwatch/internal/store"
	"farmwatch/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakePanelRepo struct {
	rows  []store.PanelMessage
	saved []store.PanelMessage
	err   error
}

func (f *fakePanelRepo) PanelMessages(context.Context) ([]store.PanelMessage, error) {
	return f.rows, f.err
}

func (f *fakePanelRepo) SavePanelMessage(_ context.Context, m store.PanelMessage) error {
	f.saved = append(f.saved, m)
	return f.err
}

func TestStoredMessagesLoadSkipsUnknownPanels(t *testing.T) {
	repo := &fakePanelRepo{rows: []store.PanelMessage{
		{TargetKey: "t1", Panel: "top_week", MessageID: "m1"},
		{TargetKey: "t1", Panel: "retired_panel", MessageID: "m2"},
		{TargetKey: "t2", Panel: "vehicle_maintenance", MessageID: "m3"},
	}}
	got, err := NewStoredMessages(repo).Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[platforms.PanelRef]string{
		{Target: "t1", Panel: "top_week"}:            "m1",
		{Target: "t2", Panel: "vehicle_maintenance"}: "m3",
	}, got)

	repo.err = errors.New("db down")
	_, err = NewStoredMessages(repo).Load(context.Background())
	require.Error(t, err)
}

func TestStoredMessagesSaveStampsTime(t *testing.T) {
	repo := &fakePanelRepo{}
	now := time.Date(2026, 10, 14, 9, 0, 0, 0, time.UTC)
	s := NewStoredMessages(repo)
	s.now = func() time.Time { return now }
	require.NoError(t, s.Save(context.Background(), platforms.PanelRef{Target: "t1", Panel: "top_total"}, "m9"))
	assert.Equal(t, []store.PanelMessage{{TargetKey: "t1", Panel: "top_total", MessageID: "m9", UpdatedAt: now}}, repo.saved)
}

func TestStoredMessagesPostgresRoundTrip(t *testing.T) {
	st, _ := testutil.OpenTestStore(t)
	ctx := context.Background()
	messages := NewStoredMessages(st)
	ref := platforms.PanelRef{Target: platforms.TargetDigest("https://discord.example/api/webhooks/a/b"), Panel: string(PanelServerStatus)}

	require.NoError(t, messages.Save(ctx, ref, "m1"))
	require.NoError(t, messages.Save(ctx, ref, "m2"))
	got, err := messages.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[platforms.PanelRef]string{ref: "m2"}, got)
}
