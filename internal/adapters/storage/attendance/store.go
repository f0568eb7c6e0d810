package attendance

import (
	"context"
	"time"

	domain "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
)

// Store persists Attendance state.
type Store interface {
	Upsert(ctx context.Context, value domain.Record) (domain.Record, bool, error)
	ListByDate(ctx context.Context, day time.Time) ([]domain.Record, error)
	ListByDateRange(ctx context.Context, r calday.Range) ([]domain.Record, error)
	ListByMemberAndDateRange(ctx context.Context, memberID string, r calday.Range) ([]domain.Record, error)
}
