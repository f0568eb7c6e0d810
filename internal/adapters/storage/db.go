package storage

import (
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database"
	migratepostgres "github.com/golang-migrate/migrate/v4/database/postgres"
	migratesqlite "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// Dialect names a supported SQL backend.
type Dialect string

const (
	DialectSQLite   Dialect = "sqlite"
	DialectPostgres Dialect = "postgres"
)

// ParseDialect validates a driver name from configuration.
func ParseDialect(s string) (Dialect, error) {
	switch d := Dialect(strings.ToLower(strings.TrimSpace(s))); d {
	case DialectSQLite, DialectPostgres:
		return d, nil
	}
	return "", fmt.Errorf("unsupported database driver %q (want sqlite or postgres)", s)
}

// sqlitePragmas are added to the DSN unless it already sets the same pragma.
// Immediate transactions take the write lock at BEGIN, so a read-then-write
// transaction waits on busy_timeout instead of failing on lock upgrade.
var sqlitePragmas = []string{
	"journal_mode(WAL)",
	"busy_timeout(5000)",
	"foreign_keys(ON)",
	"synchronous(NORMAL)",
}

const sqliteTxLock = "immediate"

// sqliteDSN appends every default pragma and the transaction lock mode the
// DSN does not already set. Caller-supplied values win.
func sqliteDSN(dsn string) string {
	_, query, _ := strings.Cut(dsn, "?")
	params, _ := url.ParseQuery(query)

	set := make(map[string]bool)
	for _, p := range params["_pragma"] {
		set[pragmaName(p)] = true
	}

	var extra []string
	for _, p := range sqlitePragmas {
		if !set[pragmaName(p)] {
			extra = append(extra, "_pragma="+p)
		}
	}
	if params.Get("_txlock") == "" {
		extra = append(extra, "_txlock="+sqliteTxLock)
	}
	if len(extra) == 0 {
		return dsn
	}

	sep := "?"
	switch {
	case strings.HasSuffix(dsn, "?"), strings.HasSuffix(dsn, "&"):
		sep = ""
	case strings.Contains(dsn, "?"):
		sep = "&"
	}
	return dsn + sep + strings.Join(extra, "&")
}

// pragmaName returns the lower-cased pragma name of "name(value)" or "name=value".
func pragmaName(p string) string {
	if i := strings.IndexAny(p, "(="); i >= 0 {
		p = p[:i]
	}
	return strings.ToLower(strings.TrimSpace(p))
}

// Open opens and pings a connection pool for the dialect.
// PRE: dsn is a SQLite path or a Postgres URL matching dialect
// POST: Returns a live pool with limits applied
func Open(dialect Dialect, dsn string) (*sql.DB, error) {
	driverName := string(dialect)
	switch dialect {
	case DialectSQLite:
		dsn = sqliteDSN(dsn)
	case DialectPostgres:
	default:
		return nil, fmt.Errorf("unsupported dialect %q", dialect)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(5 * time.Minute)
	if dialect == DialectSQLite {
		db.SetMaxIdleConns(25)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded migrations.
// PRE: db is a live connection for dialect
// POST: Schema is at the latest version; ErrNoChange is not an error
func Migrate(db *sql.DB, dialect Dialect) error {
	source, err := iofs.New(migrationFS, "migrations")
	if err != nil {
		return fmt.Errorf("create migration source: %w", err)
	}

	var driver database.Driver
	switch dialect {
	case DialectSQLite:
		driver, err = migratesqlite.WithInstance(db, &migratesqlite.Config{})
	case DialectPostgres:
		driver, err = migratepostgres.WithInstance(db, &migratepostgres.Config{})
	default:
		return fmt.Errorf("unsupported dialect %q", dialect)
	}
	if err != nil {
		return fmt.Errorf("create migration driver: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", source, string(dialect), driver)
	if err != nil {
		return fmt.Errorf("create migrator: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("apply migrations: %w", err)
	}
	// m.Close would close the shared *sql.DB.
	return nil
}

// Rebind rewrites ? placeholders into the dialect's form.
// Placeholders inside single-quoted literals are left alone.
func (d Dialect) Rebind(query string) string {
	if d != DialectPostgres || !strings.Contains(query, "?") {
		return query
	}
	var b strings.Builder
	b.Grow(len(query) + 8)
	n := 0
	inLiteral := false
	for i := 0; i < len(query); i++ {
		c := query[i]
		switch {
		case c == '\'':
			inLiteral = !inLiteral
			b.WriteByte(c)
		case c == '?' && !inLiteral:
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}
