package store

import (
	"testing"
	"time"

	"farmwatch/internal/activity"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaceWeeklyArchiveReplacesRows(t *testing.T) {
	st, ctx, c := openStore(t)
	_, err := st.TopLastWeek(ctx, 10)
	require.ErrorIs(t, err, ErrNotFound)

	start := localTime(c, 2024, 1, 1, 12, 0)
	end := start.AddDate(0, 0, 7)
	rows := []activity.PlayerHours{{Player: "Alice", Hours: 4}, {Player: "Bob", Hours: 4}, {Player: "Carol", Hours: 1}}
	for i := 0; i < 2; i++ {
		_, err := st.ReplaceWeeklyArchive(ctx, start, end, rows, end.Add(time.Minute))
		require.NoError(t, err, "archive run %d", i)
		arch, err := st.TopLastWeek(ctx, 10)
		require.NoError(t, err)
		assert.Equal(t, rows, arch.Rows, "run %d", i)
		assert.Equal(t, 3, arch.RowCount)
		assert.True(t, arch.WeekStart.Equal(start))
		assert.True(t, arch.WeekEnd.Equal(end))
	}

	_, err = st.ReplaceWeeklyArchive(ctx, end, end.AddDate(0, 0, 7), nil, end.AddDate(0, 0, 7))
	require.NoError(t, err)
	arch, err := st.TopLastWeek(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, arch.Rows)
	assert.True(t, arch.WeekStart.Equal(end))
}

func TestTopLastWeekRowsMatchMeta(t *testing.T) {
	st, ctx, c := openStore(t)
	start := localTime(c, 2024, 1, 1, 12, 0)
	end := start.AddDate(0, 0, 7)
	rows := []activity.PlayerHours{{Player: "Alice", Hours: 5}, {Player: "Bob", Hours: 3}, {Player: "Carol", Hours: 2}}
	id, err := st.ReplaceWeeklyArchive(ctx, start, end, rows, end)
	require.NoError(t, err)

	arch, err := st.TopLastWeek(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, id, arch.ID)
	assert.Equal(t, 3, arch.RowCount, "row count covers the whole archive")
	assert.Equal(t, rows[:2], arch.Rows)

	// rows of an older archive id are never mixed in
	_, err = st.Pool.Exec(ctx, `INSERT INTO weekly_top_last (player_name, hours, archive_id) VALUES ('Zed', 99, 'stale')`)
	require.NoError(t, err)
	arch, err = st.TopLastWeek(ctx, 10)
	require.NoError(t, err)
	assert.Equal(t, rows, arch.Rows)
}
