package store

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"testing"
	"time"

	"farmwatch/internal/activity"
	"farmwatch/internal/config"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

var testSchemaNamePattern = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

func openStore(t *testing.T) (*Store, context.Context, activity.Clock) {
	t.Helper()
	cfg, err := config.LoadTest()
	if err != nil {
		t.Skipf("skip test db: %v", err)
	}
	loc, err := time.LoadLocation(cfg.TestTimezone)
	require.NoError(t, err)
	dsn := cfg.TestPostgresDSN
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())
	base, err := pgxpool.New(context.Background(), dsn)
	require.NoError(t, err)
	createSchemaSQL, err := schemaDDL("CREATE SCHEMA %s", schema)
	if err == nil {
		_, err = base.Exec(context.Background(), createSchemaSQL)
	}
	base.Close()
	require.NoError(t, err, "create schema")

	st, err := New(withSearchPath(dsn, schema))
	require.NoError(t, err)
	if err := applySchema(st); err != nil {
		st.Close()
		require.NoError(t, err, "apply schema")
	}
	t.Cleanup(func() {
		st.Close()
		base, err := pgxpool.New(context.Background(), dsn)
		if err == nil {
			if dropSchemaSQL, ddlErr := schemaDDL("DROP SCHEMA %s CASCADE", schema); ddlErr == nil {
				_, _ = base.Exec(context.Background(), dropSchemaSQL)
			}
			base.Close()
		}
	})
	return st, context.Background(), activity.Clock{Slice: 15 * time.Minute, Location: loc}
}

func applySchema(st *Store) error {
	sql, err := SchemaSQL()
	if err != nil {
		return err
	}
	_, err = st.Pool.Exec(context.Background(), sql)
	return err
}

func withSearchPath(dsn, schema string) string {
	sep := "?"
	if strings.Contains(dsn, "?") {
		sep = "&"
	}
	return dsn + sep + "search_path=" + url.QueryEscape(schema)
}

func schemaDDL(format, schema string) (string, error) {
	if !testSchemaNamePattern.MatchString(schema) {
		return "", fmt.Errorf("schema %q does not match required pattern", schema)
	}
	return fmt.Sprintf(format, pgx.Identifier{schema}.Sanitize()), nil
}

func mustRecord(t *testing.T, st *Store, ctx context.Context, c activity.Clock, at time.Time, names ...string) int64 {
	t.Helper()
	samples := make([]activity.Sample, 0, len(names))
	for _, n := range activity.CleanNames(names) {
		samples = append(samples, activity.NewSample(n, at, c))
	}
	n, err := st.RecordSamples(ctx, samples)
	require.NoError(t, err)
	return n
}

func localTime(c activity.Clock, y int, m time.Month, d, hh, mm int) time.Time {
	return time.Date(y, m, d, hh, mm, 0, 0, c.Location)
}
