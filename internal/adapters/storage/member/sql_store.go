package member

import (
	"context"
	"database/sql"
	"fmt"

	"rollcall/internal/adapters/storage"
	domain "rollcall/internal/domain/member"
)

const selectColumns = "SELECT id, member_code, name, created_at, updated_at FROM member"

// SQLStore implements Store over SQLite or Postgres.
type SQLStore struct {
	db storage.SQLDB
}

// NewSQLStore creates a new member store.
func NewSQLStore(db storage.SQLDB) *SQLStore {
	return &SQLStore{db: db}
}

// Compile-time check that *SQLStore satisfies Store.
var _ Store = (*SQLStore)(nil)

type scanner interface {
	Scan(dest ...any) error
}

func scanMember(row scanner) (domain.Member, error) {
	var entity domain.Member
	var createdAt, updatedAt string
	if err := row.Scan(&entity.ID, &entity.MemberCode, &entity.Name, &createdAt, &updatedAt); err != nil {
		return domain.Member{}, err
	}
	var err error
	if entity.CreatedAt, err = storage.ParseTime(createdAt); err != nil {
		return domain.Member{}, fmt.Errorf("member %s created_at: %w", entity.ID, err)
	}
	if entity.UpdatedAt, err = storage.ParseTime(updatedAt); err != nil {
		return domain.Member{}, fmt.Errorf("member %s updated_at: %w", entity.ID, err)
	}
	return entity, nil
}

// GetByID retrieves a Member by its ID.
// PRE: id is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLStore) GetByID(ctx context.Context, id string) (domain.Member, error) {
	entity, err := scanMember(s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id))
	if err != nil {
		return domain.Member{}, storage.NotFound(err, domain.ErrNotFound)
	}
	return entity, nil
}

// GetByCode retrieves a Member by its member code.
// PRE: code is non-empty
// POST: Returns the entity or domain.ErrNotFound
func (s *SQLStore) GetByCode(ctx context.Context, code string) (domain.Member, error) {
	entity, err := scanMember(s.db.QueryRowContext(ctx, selectColumns+" WHERE member_code = ?", code))
	if err != nil {
		return domain.Member{}, storage.NotFound(err, domain.ErrNotFound)
	}
	return entity, nil
}

// Create inserts a new Member.
// PRE: entity has been validated and carries an ID and timestamps
// POST: Entity is persisted, or ErrDuplicateCode/ErrDuplicateName is returned
func (s *SQLStore) Create(ctx context.Context, entity domain.Member) error {
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO member (id, member_code, name, created_at, updated_at) VALUES (?, ?, ?, ?, ?)",
		entity.ID,
		entity.MemberCode,
		entity.Name,
		storage.FormatTime(entity.CreatedAt),
		storage.FormatTime(entity.UpdatedAt),
	)
	if err != nil {
		return duplicate(err, "create member")
	}
	return nil
}

// Update overwrites the code, name and updated_at of an existing Member.
// created_at is never touched.
// PRE: entity has been validated
// POST: Row updated, or domain.ErrNotFound when no row has entity.ID
func (s *SQLStore) Update(ctx context.Context, entity domain.Member) error {
	result, err := s.db.ExecContext(ctx,
		"UPDATE member SET member_code = ?, name = ?, updated_at = ? WHERE id = ?",
		entity.MemberCode,
		entity.Name,
		storage.FormatTime(entity.UpdatedAt),
		entity.ID,
	)
	if err != nil {
		return duplicate(err, "update member")
	}
	return requireRow(result, "update member")
}

// Delete removes a Member. Attendance rows referencing it are left alone.
// PRE: id is non-empty
// POST: Row removed, or domain.ErrNotFound
func (s *SQLStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM member WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete member: %w", err)
	}
	return requireRow(result, "delete member")
}

// List retrieves Members per the filter.
// PRE: filter.Limit and filter.Offset are non-negative
// POST: Returns members in the requested order (possibly empty)
func (s *SQLStore) List(ctx context.Context, filter ListFilter) ([]domain.Member, error) {
	query := selectColumns
	switch filter.Sort {
	case SortName:
		query += " ORDER BY name ASC, id ASC"
	default:
		query += " ORDER BY created_at DESC, id ASC"
	}

	var args []any
	if filter.Limit > 0 {
		query += " LIMIT ? OFFSET ?"
		args = append(args, filter.Limit, filter.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	results := []domain.Member{}
	for rows.Next() {
		entity, err := scanMember(rows)
		if err != nil {
			return nil, err
		}
		results = append(results, entity)
	}
	return results, rows.Err()
}

// duplicate maps unique violations onto the domain's duplicate errors.
func duplicate(err error, op string) error {
	cols, ok := storage.UniqueViolation(err)
	if !ok {
		return fmt.Errorf("%s: %w", op, err)
	}
	if storage.HasColumn(cols, "name") {
		return domain.ErrDuplicateName
	}
	return domain.ErrDuplicateCode
}

func requireRow(result sql.Result, op string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if n == 0 {
		return domain.ErrNotFound
	}
	return nil
}
