package storage_test

import (
	"context"
	"path/filepath"
	"sort"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rollcall/internal/adapters/storage"
	"rollcall/internal/adapters/storage/storagetest"
	"rollcall/internal/observability/metrics"
)

func TestParseDialect(t *testing.T) {
	d, err := storage.ParseDialect(" Postgres ")
	require.NoError(t, err)
	assert.Equal(t, storage.DialectPostgres, d)

	d, err = storage.ParseDialect("sqlite")
	require.NoError(t, err)
	assert.Equal(t, storage.DialectSQLite, d)

	_, err = storage.ParseDialect("mysql")
	assert.Error(t, err)
}

func TestRebind(t *testing.T) {
	q := "SELECT id FROM member WHERE name = ? AND note = 'what?' AND code = ?"

	assert.Equal(t, q, storage.DialectSQLite.Rebind(q))
	assert.Equal(t,
		"SELECT id FROM member WHERE name = $1 AND note = 'what?' AND code = $2",
		storage.DialectPostgres.Rebind(q))
	assert.Equal(t, "SELECT 1", storage.DialectPostgres.Rebind("SELECT 1"))
}

// tableNames returns sorted table names, excluding sqlite internals.
func tableNames(t *testing.T, db storage.SQLDB) []string {
	t.Helper()
	rows, err := db.QueryContext(context.Background(),
		"SELECT name FROM sqlite_master WHERE type='table' AND name NOT LIKE 'sqlite_%'")
	require.NoError(t, err)
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		require.NoError(t, rows.Scan(&name))
		names = append(names, name)
	}
	require.NoError(t, rows.Err())
	sort.Strings(names)
	return names
}

func TestMigrateCreatesSchemaAndIsRepeatable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "m.db")
	raw, err := storage.Open(storage.DialectSQLite, path)
	require.NoError(t, err)
	defer raw.Close()

	require.NoError(t, storage.Migrate(raw, storage.DialectSQLite))
	require.NoError(t, storage.Migrate(raw, storage.DialectSQLite), "second run must be a no-op")

	db := storage.NewTimedDB(raw, storage.DialectSQLite, storage.TimedDBConfig{Logger: storagetest.QuietLogger()})
	assert.Equal(t, []string{"attendance", "member", "schema_migrations"}, tableNames(t, db))
}

func TestOpenSQLiteAppliesPragmasAlongsideDSNParams(t *testing.T) {
	raw, err := storage.Open(storage.DialectSQLite, filepath.Join(t.TempDir(), "p.db")+"?cache=shared")
	require.NoError(t, err)
	defer raw.Close()

	var timeout int
	require.NoError(t, raw.QueryRow("PRAGMA busy_timeout").Scan(&timeout))
	assert.Equal(t, 5000, timeout)

	var mode string
	require.NoError(t, raw.QueryRow("PRAGMA journal_mode").Scan(&mode))
	assert.Equal(t, "wal", mode)

	var fk int
	require.NoError(t, raw.QueryRow("PRAGMA foreign_keys").Scan(&fk))
	assert.Equal(t, 1, fk)
}

func TestUniqueViolationSQLite(t *testing.T) {
	db := storagetest.NewDB(t)
	ctx := context.Background()
	now := storage.FormatTime(time.Now())

	insert := "INSERT INTO member (id, member_code, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)"
	_, err := db.ExecContext(ctx, insert, "a", "EMP001", "Ada", now, now)
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, insert, "b", "EMP001", "Bob", now, now)
	cols, ok := storage.UniqueViolation(err)
	require.True(t, ok, "err = %v", err)
	assert.Equal(t, []string{"member_code"}, cols)

	_, err = db.ExecContext(ctx, insert, "c", "EMP002", "Ada", now, now)
	cols, ok = storage.UniqueViolation(err)
	require.True(t, ok)
	assert.True(t, storage.HasColumn(cols, "name"))

	insertAtt := "INSERT INTO attendance (id, member_id, day, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)"
	_, err = db.ExecContext(ctx, insertAtt, "x", "a", "2024-01-01", "Present", now, now)
	require.NoError(t, err)
	_, err = db.ExecContext(ctx, insertAtt, "y", "a", "2024-01-01", "Absent", now, now)
	cols, ok = storage.UniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, []string{"member_id", "day"}, cols)

	_, err = db.ExecContext(ctx, insertAtt, "z", "a", "2024-01-02", "Late", now, now)
	require.Error(t, err, "status check constraint")
	_, ok = storage.UniqueViolation(err)
	assert.False(t, ok)
}

func TestTimeRoundTripAndOrdering(t *testing.T) {
	a := time.Date(2024, 1, 1, 10, 0, 5, 0, time.UTC)
	b := a.Add(500 * time.Millisecond)

	sa, sb := storage.FormatTime(a), storage.FormatTime(b)
	assert.Less(t, sa, sb, "text order must follow time order")

	got, err := storage.ParseTime(sb)
	require.NoError(t, err)
	assert.True(t, got.Equal(b))

	got, err = storage.ParseTime("2024-01-01T10:00:05Z")
	require.NoError(t, err)
	assert.True(t, got.Equal(a))

	_, err = storage.ParseTime("yesterday")
	assert.Error(t, err)
}

func TestTimedDBLogsSlowQueries(t *testing.T) {
	raw, err := storage.Open(storage.DialectSQLite, filepath.Join(t.TempDir(), "slow.db"))
	require.NoError(t, err)
	defer raw.Close()

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)
	m := metrics.New()
	db := storage.NewTimedDB(raw, storage.DialectSQLite, storage.TimedDBConfig{
		Logger:    logger,
		Metrics:   m,
		SlowQuery: time.Nanosecond,
	})

	var one int
	require.NoError(t, db.QueryRowContext(context.Background(), "SELECT 1").Scan(&one))
	assert.Equal(t, 1, one)

	require.NotEmpty(t, hook.AllEntries())
	last := hook.LastEntry()
	assert.Equal(t, logrus.WarnLevel, last.Level)
	assert.Equal(t, "slow_query", last.Message)
	assert.Equal(t, "QueryRowContext", last.Data["op"])
}

func TestTxRollsBack(t *testing.T) {
	db := storagetest.NewDB(t)
	ctx := context.Background()
	now := storage.FormatTime(time.Now())

	tx, err := db.BeginTx(ctx, nil)
	require.NoError(t, err)
	_, err = tx.ExecContext(ctx, "INSERT INTO member (id, member_code, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)", "a", "EMP001", "Ada", now, now)
	require.NoError(t, err)
	require.NoError(t, tx.Rollback())

	var n int
	require.NoError(t, db.QueryRowContext(ctx, "SELECT COUNT(*) FROM member").Scan(&n))
	assert.Zero(t, n)
}
