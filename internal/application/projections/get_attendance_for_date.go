package projections

import (
	"context"

	"rollcall/internal/application/apperr"
	domainAttendance "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
)

// GetAttendanceForDateQuery carries query parameters.
type GetAttendanceForDateQuery struct {
	Date string // YYYY-MM-DD
}

// GetAttendanceForDateResult carries the query result.
type GetAttendanceForDateResult struct {
	Records []domainAttendance.Record
}

// GetAttendanceForDateDeps holds dependencies for GetAttendanceForDate.
type GetAttendanceForDateDeps struct {
	AttendanceStore AttendanceStore
}

// QueryGetAttendanceForDate lists the records of one day.
// PRE: Date is strictly YYYY-MM-DD and a real calendar date
// POST: Records ordered by member name; orphaned records carry no member
func QueryGetAttendanceForDate(ctx context.Context, query GetAttendanceForDateQuery, deps GetAttendanceForDateDeps) (GetAttendanceForDateResult, error) {
	day, err := calday.ParseStrict(query.Date)
	if err != nil {
		return GetAttendanceForDateResult{}, dateError("date", err)
	}
	records, err := deps.AttendanceStore.ListByDate(ctx, day)
	if err != nil {
		return GetAttendanceForDateResult{}, apperr.Store("Failed to fetch attendance records", err)
	}
	if records == nil {
		records = []domainAttendance.Record{}
	}
	return GetAttendanceForDateResult{Records: records}, nil
}
