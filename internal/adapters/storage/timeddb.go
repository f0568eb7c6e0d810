package storage

import (
	"context"
	"database/sql"
	"time"

	"github.com/sirupsen/logrus"

	"rollcall/internal/observability/metrics"
)

// SQLDB is the database interface used by all stores.
// Queries use ? placeholders; implementations rebind them for the dialect.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error)
}

// DefaultSlowQuery is the default threshold for slow query warnings.
const DefaultSlowQuery = 50 * time.Millisecond

// TimedDBConfig configures instrumentation for a TimedDB.
type TimedDBConfig struct {
	Logger    logrus.FieldLogger // nil uses the logrus standard logger
	Metrics   *metrics.Metrics   // nil disables query metrics
	SlowQuery time.Duration      // zero uses DefaultSlowQuery
}

// TimedDB wraps a *sql.DB to rebind placeholders, log slow queries and
// record query latency.
type TimedDB struct {
	db        *sql.DB
	dialect   Dialect
	logger    logrus.FieldLogger
	metrics   *metrics.Metrics
	threshold time.Duration
}

// Compile-time check that *TimedDB satisfies SQLDB.
var _ SQLDB = (*TimedDB)(nil)

// NewTimedDB wraps a *sql.DB with timing instrumentation.
// PRE: db is a valid database connection for dialect
// POST: Returns a TimedDB that logs slow queries and records to metrics
func NewTimedDB(db *sql.DB, dialect Dialect, cfg TimedDBConfig) *TimedDB {
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.SlowQuery <= 0 {
		cfg.SlowQuery = DefaultSlowQuery
	}
	return &TimedDB{
		db:        db,
		dialect:   dialect,
		logger:    cfg.Logger,
		metrics:   cfg.Metrics,
		threshold: cfg.SlowQuery,
	}
}

// RawDB returns the underlying *sql.DB (needed for migrations and pool config).
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// Dialect reports the backend in use.
func (t *TimedDB) Dialect() Dialect {
	return t.dialect
}

// logQuery logs and records a query timing.
func (t *TimedDB) logQuery(op string, start time.Time, err error) {
	elapsed := time.Since(start)
	entry := t.logger.WithFields(logrus.Fields{
		"op":          op,
		"duration_ms": float64(elapsed.Microseconds()) / 1000.0,
	})
	if err != nil && err != sql.ErrNoRows {
		entry = entry.WithError(err)
	}
	if elapsed >= t.threshold {
		entry.Warn("slow_query")
	} else {
		entry.Debug("query")
	}
	t.metrics.ObserveQuery(op, elapsed)
}

// ExecContext wraps sql.DB.ExecContext with timing.
func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("ExecContext", start, err)
	return result, err
}

// QueryContext wraps sql.DB.QueryContext with timing.
func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("QueryContext", start, err)
	return rows, err
}

// QueryRowContext wraps sql.DB.QueryRowContext with timing.
func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, t.dialect.Rebind(query), args...)
	t.logQuery("QueryRowContext", start, row.Err())
	return row
}

// BeginTx starts a transaction whose statements are rebound and timed too.
func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.logQuery("BeginTx", start, err)
	if err != nil {
		return nil, err
	}
	return &Tx{tx: tx, parent: t}, nil
}

// PingContext verifies the database connection.
func (t *TimedDB) PingContext(ctx context.Context) error {
	return t.db.PingContext(ctx)
}

// Close closes the underlying database connection.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Tx is a transaction bound to a TimedDB.
type Tx struct {
	tx     *sql.Tx
	parent *TimedDB
}

// ExecContext runs a statement inside the transaction.
func (x *Tx) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := x.tx.ExecContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("Tx.ExecContext", start, err)
	return result, err
}

// QueryRowContext runs a single-row query inside the transaction.
func (x *Tx) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := x.tx.QueryRowContext(ctx, x.parent.dialect.Rebind(query), args...)
	x.parent.logQuery("Tx.QueryRowContext", start, row.Err())
	return row
}

// Commit commits the transaction.
func (x *Tx) Commit() error {
	start := time.Now()
	err := x.tx.Commit()
	x.parent.logQuery("Tx.Commit", start, err)
	return err
}

// Rollback aborts the transaction. Calling it after Commit is harmless.
func (x *Tx) Rollback() error {
	return x.tx.Rollback()
}
