package projections

import (
	"context"
	"time"

	"rollcall/internal/adapters/storage/member"
	domainAttendance "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
	domainMember "rollcall/internal/domain/member"
)

// MemberStore interface for member queries.
type MemberStore interface {
	GetByID(ctx context.Context, id string) (domainMember.Member, error)
	List(ctx context.Context, filter member.ListFilter) ([]domainMember.Member, error)
}

// AttendanceStore interface for attendance queries.
type AttendanceStore interface {
	ListByDate(ctx context.Context, day time.Time) ([]domainAttendance.Record, error)
	ListByDateRange(ctx context.Context, r calday.Range) ([]domainAttendance.Record, error)
	ListByMemberAndDateRange(ctx context.Context, memberID string, r calday.Range) ([]domainAttendance.Record, error)
}

// roundPercent returns part/total as a whole percentage, rounding halves up.
// Zero total yields zero.
func roundPercent(part, total int) int {
	if total <= 0 {
		return 0
	}
	return (200*part + total) / (2 * total)
}
