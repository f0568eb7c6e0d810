// Package storagetest opens throwaway migrated SQLite databases for tests.
package storagetest

import (
	"io"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"

	"rollcall/internal/adapters/storage"
)

// NewDB returns a migrated SQLite database in t's temp dir.
// PRE: t is a live test
// POST: database is closed on cleanup
func NewDB(t testing.TB) *storage.TimedDB {
	t.Helper()
	raw, err := storage.Open(storage.DialectSQLite, filepath.Join(t.TempDir(), "rollcall_test.db"))
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	t.Cleanup(func() { raw.Close() })

	if err := storage.Migrate(raw, storage.DialectSQLite); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	return storage.NewTimedDB(raw, storage.DialectSQLite, storage.TimedDBConfig{Logger: QuietLogger()})
}

// QuietLogger discards output.
func QuietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}
