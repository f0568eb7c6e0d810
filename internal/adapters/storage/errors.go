package storage

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// NotFound replaces sql.ErrNoRows with the caller's domain sentinel and
// passes other errors through.
func NotFound(err error, sentinel error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return sentinel
	}
	return err
}

// UniqueViolation reports whether err is a unique-constraint violation and,
// when the driver says so, which columns were involved.
func UniqueViolation(err error) ([]string, bool) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) {
		if pqErr.Code != "23505" {
			return nil, false
		}
		// Detail: Key (member_code)=(EMP001) already exists.
		return columnsBetween(pqErr.Detail, "Key (", ")="), true
	}

	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) {
		code := liteErr.Code()
		if code != sqlite3.SQLITE_CONSTRAINT_UNIQUE && code != sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY {
			return nil, false
		}
		// Message: UNIQUE constraint failed: member.member_code (2067)
		return columnsBetween(liteErr.Error(), "constraint failed: ", " ("), true
	}
	return nil, false
}

// HasColumn reports whether a unique violation names column.
func HasColumn(cols []string, column string) bool {
	for _, c := range cols {
		if c == column {
			return true
		}
	}
	return false
}

// columnsBetween extracts "a.x, a.y" style lists and strips table prefixes.
func columnsBetween(msg, open, close string) []string {
	start := strings.LastIndex(msg, open)
	if start < 0 {
		return nil
	}
	rest := msg[start+len(open):]
	if end := strings.Index(rest, close); end >= 0 {
		rest = rest[:end]
	}
	var cols []string
	for _, part := range strings.Split(rest, ",") {
		part = strings.TrimSpace(part)
		if i := strings.LastIndex(part, "."); i >= 0 {
			part = part[i+1:]
		}
		if part != "" {
			cols = append(cols, part)
		}
	}
	return cols
}

// TimeLayout is the fixed-width UTC form timestamps are stored in, so that
// text ordering matches time ordering.
const TimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// FormatTime renders t for storage.
func FormatTime(t time.Time) string {
	return t.UTC().Format(TimeLayout)
}

// ParseTime reads a stored timestamp.
func ParseTime(value string) (time.Time, error) {
	layouts := []string{
		TimeLayout,
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02 15:04:05",
	}
	for _, layout := range layouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unsupported time format: %q", value)
}
