package member

import (
	"context"

	domain "rollcall/internal/domain/member"
)

// Store persists Member state.
type Store interface {
	GetByID(ctx context.Context, id string) (domain.Member, error)
	GetByCode(ctx context.Context, code string) (domain.Member, error)
	Create(ctx context.Context, value domain.Member) error
	Update(ctx context.Context, value domain.Member) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, filter ListFilter) ([]domain.Member, error)
}

// Sort orders for List.
const (
	SortNewest = "newest" // created_at DESC
	SortName   = "name"   // name ASC
)

// ListFilter carries filtering parameters for List operations.
type ListFilter struct {
	Limit  int    // zero means no limit
	Offset int
	Sort   string // SortNewest (default) or SortName
}
