package projections

import (
	"context"
	"time"

	"rollcall/internal/application/apperr"
	domainAttendance "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
	domainMember "rollcall/internal/domain/member"
)

// DefaultHistoryDays is the window used when no range is given.
const DefaultHistoryDays = 30

// GetMemberAttendanceQuery carries query parameters.
// Empty dates select the DefaultHistoryDays days ending Today.
type GetMemberAttendanceQuery struct {
	MemberID  string
	StartDate string
	EndDate   string
	Today     time.Time // zero means now
}

// GetMemberAttendanceResult carries the query result.
type GetMemberAttendanceResult struct {
	Member            domainMember.Member       `json:"member"`
	StartDate         string                    `json:"startDate"`
	EndDate           string                    `json:"endDate"`
	Records           []domainAttendance.Record `json:"records"`
	PresentDays       int                       `json:"presentDays"`
	AbsentDays        int                       `json:"absentDays"`
	TotalTrackedDays  int                       `json:"totalTrackedDays"`
	PercentagePresent int                       `json:"percentagePresent"`
}

// GetMemberAttendanceDeps holds dependencies for GetMemberAttendance.
type GetMemberAttendanceDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
}

// QueryGetMemberAttendance lists one member's attendance history.
// PRE: MemberID names an existing member; dates are strict YYYY-MM-DD or empty
// POST: Records newest day first, with counts and a rounded present rate
func QueryGetMemberAttendance(ctx context.Context, query GetMemberAttendanceQuery, deps GetMemberAttendanceDeps) (GetMemberAttendanceResult, error) {
	span, err := historyRange(query)
	if err != nil {
		return GetMemberAttendanceResult{}, err
	}

	m, err := lookupMember(ctx, deps.MemberStore, query.MemberID, "Failed to fetch member attendance")
	if err != nil {
		return GetMemberAttendanceResult{}, err
	}

	records, err := deps.AttendanceStore.ListByMemberAndDateRange(ctx, m.ID, span)
	if err != nil {
		return GetMemberAttendanceResult{}, apperr.Store("Failed to fetch member attendance", err)
	}
	if records == nil {
		records = []domainAttendance.Record{}
	}

	result := GetMemberAttendanceResult{
		Member:    m,
		StartDate: span.StartKey(),
		EndDate:   span.EndKey(),
		Records:   records,
	}
	for _, rec := range records {
		if rec.Status.IsPresent() {
			result.PresentDays++
		} else {
			result.AbsentDays++
		}
	}
	result.TotalTrackedDays = result.PresentDays + result.AbsentDays
	result.PercentagePresent = roundPercent(result.PresentDays, result.TotalTrackedDays)
	return result, nil
}

func historyRange(query GetMemberAttendanceQuery) (calday.Range, error) {
	today := query.Today
	if today.IsZero() {
		today = time.Now().UTC()
	}

	end := calday.Normalize(today)
	if query.EndDate != "" {
		d, err := calday.ParseStrict(query.EndDate)
		if err != nil {
			return calday.Range{}, dateError("endDate", err)
		}
		end = d
	}
	start := end.AddDate(0, 0, -(DefaultHistoryDays - 1))
	if query.StartDate != "" {
		d, err := calday.ParseStrict(query.StartDate)
		if err != nil {
			return calday.Range{}, dateError("startDate", err)
		}
		start = d
	}

	span, err := calday.NewRange(start, end)
	if err != nil {
		return calday.Range{}, dateError("startDate", err)
	}
	return span, nil
}
