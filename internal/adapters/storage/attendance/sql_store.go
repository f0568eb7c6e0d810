package attendance

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
)

// errLostRace marks an insert that collided with a concurrent writer.
var errLostRace = errors.New("attendance insert lost race")

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new attendance store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Compile-time check that *SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

// Upsert writes the record for (MemberID, Date). An existing row keeps its
// id and created_at and takes the new status and updated_at; otherwise the
// record is inserted as given.
// PRE: value has been validated and carries an ID and UpdatedAt
// POST: Exactly one row exists for the key; returns the stored record and
// whether it was created
func (s *SQLStore) Upsert(ctx context.Context, value domain.Record) (domain.Record, bool, error) {
	stored, created, err := s.upsertOnce(ctx, value)
	if errors.Is(err, errLostRace) {
		// The competing insert has committed, so the retry takes the update branch.
		stored, created, err = s.upsertOnce(ctx, value)
	}
	if err != nil {
		return domain.Record{}, false, fmt.Errorf("upsert attendance for member %s on %s: %w", value.MemberID, value.DayKey(), err)
	}
	return stored, created, nil
}

func (s *SQLStore) upsertOnce(ctx context.Context, value domain.Record) (domain.Record, bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return domain.Record{}, false, err
	}
	defer tx.Rollback()

	day := value.DayKey()
	updatedAt := storage.FormatTime(value.UpdatedAt)

	var existingID, createdAt string
	err = tx.QueryRowContext(ctx,
		"SELECT id, created_at FROM attendance WHERE member_id = ? AND day = ?",
		value.MemberID, day,
	).Scan(&existingID, &createdAt)

	created := false
	switch {
	case errors.Is(err, sql.ErrNoRows):
		if value.CreatedAt.IsZero() {
			value.CreatedAt = value.UpdatedAt
		}
		_, err = tx.ExecContext(ctx,
			"INSERT INTO attendance (id, member_id, day, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)",
			value.ID, value.MemberID, day, string(value.Status), storage.FormatTime(value.CreatedAt), updatedAt,
		)
		if _, unique := storage.UniqueViolation(err); unique {
			return domain.Record{}, false, errLostRace
		}
		if err != nil {
			return domain.Record{}, false, err
		}
		created = true
	case err != nil:
		return domain.Record{}, false, err
	default:
		_, err = tx.ExecContext(ctx,
			"UPDATE attendance SET status = ?, updated_at = ? WHERE id = ?",
			string(value.Status), updatedAt, existingID,
		)
		if err != nil {
			return domain.Record{}, false, err
		}
		value.ID = existingID
		if value.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return domain.Record{}, false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return domain.Record{}, false, err
	}
	return value, created, nil
}

const joinedColumns = `SELECT a.id, a.member_id, a.day, a.status, a.created_at, a.updated_at,
	m.id, m.member_code, m.name
	FROM attendance a LEFT JOIN member m ON m.id = a.member_id`

// ListByDate retrieves every record for one day joined with its member.
// Orphaned records come back with a nil Member.
// PRE: day is any instant on the wanted calendar day
// POST: Records ordered by member name, orphans last
func (s *SQLStore) ListByDate(ctx context.Context, day time.Time) ([]domain.Record, error) {
	query := joinedColumns + ` WHERE a.day = ?
	ORDER BY CASE WHEN m.name IS NULL THEN 1 ELSE 0 END, m.name, a.member_id`
	return s.queryJoined(ctx, query, calday.Format(day))
}

// ListByDateRange retrieves every record whose day lies in r.
// PRE: r was built by calday
// POST: Records ordered by day then member id; Member is populated when it still exists
func (s *SQLStore) ListByDateRange(ctx context.Context, r calday.Range) ([]domain.Record, error) {
	query := joinedColumns + ` WHERE a.day >= ? AND a.day <= ?
	ORDER BY a.day, a.member_id`
	return s.queryJoined(ctx, query, r.StartKey(), r.EndKey())
}

// ListByMemberAndDateRange retrieves one member's records in r.
// PRE: memberID is non-empty
// POST: Records ordered by day, newest first
func (s *SQLStore) ListByMemberAndDateRange(ctx context.Context, memberID string, r calday.Range) ([]domain.Record, error) {
	query := joinedColumns + ` WHERE a.member_id = ? AND a.day >= ? AND a.day <= ?
	ORDER BY a.day DESC`
	return s.queryJoined(ctx, query, memberID, r.StartKey(), r.EndKey())
}

func (s *SQLStore) queryJoined(ctx context.Context, query string, args ...any) ([]domain.Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list attendance: %w", err)
	}
	defer rows.Close()

	results := []domain.Record{}
	for rows.Next() {
		var rec domain.Record
		var day, status, createdAt, updatedAt string
		var memberID, memberCode, memberName sql.NullString
		if err := rows.Scan(
			&rec.ID,
			&rec.MemberID,
			&day,
			&status,
			&createdAt,
			&updatedAt,
			&memberID,
			&memberCode,
			&memberName,
		); err != nil {
			return nil, fmt.Errorf("scan attendance: %w", err)
		}

		if rec.Date, err = calday.ParseStrict(day); err != nil {
			return nil, fmt.Errorf("attendance %s day: %w", rec.ID, err)
		}
		rec.Status = domain.Status(status)
		if rec.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
			return nil, fmt.Errorf("attendance %s created_at: %w", rec.ID, err)
		}
		if rec.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
			return nil, fmt.Errorf("attendance %s updated_at: %w", rec.ID, err)
		}
		if memberID.Valid {
			rec.Member = &domain.MemberRef{
				ID:         memberID.String,
				MemberCode: memberCode.String,
				Name:       memberName.String,
			}
		}
		results = append(results, rec)
	}
	return results, rows.Err()
}
