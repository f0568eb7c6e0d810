package projections

import (
	"context"
	"maps"
	"slices"
	"strings"

	"github.com/sirupsen/logrus"

	"rollcall/internal/adapters/storage/member"
	"rollcall/internal/application/apperr"
	domainAttendance "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
	"rollcall/internal/observability/metrics"
)

// GetAttendanceReportQuery carries query parameters.
type GetAttendanceReportQuery struct {
	StartDate string // YYYY-MM-DD
	EndDate   string // YYYY-MM-DD, inclusive
}

// DailyAttendance is one tracked day of the breakdown.
type DailyAttendance struct {
	Date              string `json:"date"`
	PresentCount      int    `json:"presentCount"`
	AbsentCount       int    `json:"absentCount"`
	TotalMembers      int    `json:"totalMembers"`
	PercentagePresent int    `json:"percentagePresent"`
}

// OverallAttendanceRate aggregates the whole range.
type OverallAttendanceRate struct {
	TotalDaysTracked  int               `json:"totalDaysTracked"`
	TotalPresentDays  int               `json:"totalPresentDays"`
	TotalAbsentDays   int               `json:"totalAbsentDays"`
	PercentagePresent int               `json:"percentagePresent"`
	DailyBreakdown    []DailyAttendance `json:"dailyBreakdown"`
}

// MemberAttendanceSummary counts one member's tracked days in the range.
type MemberAttendanceSummary struct {
	ID               string `json:"id"`
	MemberCode       string `json:"memberCode"`
	Name             string `json:"name"`
	PresentDays      int    `json:"presentDays"`
	AbsentDays       int    `json:"absentDays"`
	TotalTrackedDays int    `json:"totalTrackedDays"`
}

// GetAttendanceReportResult carries the query result.
type GetAttendanceReportResult struct {
	OverallAttendanceRate   OverallAttendanceRate     `json:"overallAttendanceRate"`
	MemberAttendanceSummary []MemberAttendanceSummary `json:"memberAttendanceSummary"`
}

// GetAttendanceReportDeps holds dependencies for GetAttendanceReport.
type GetAttendanceReportDeps struct {
	MemberStore     MemberStore
	AttendanceStore AttendanceStore
	Logger          logrus.FieldLogger
	Metrics         *metrics.Metrics
}

// QueryGetAttendanceReport computes the attendance report for an inclusive
// day range.
// PRE: StartDate and EndDate are strict YYYY-MM-DD with StartDate <= EndDate
// POST: Breakdown lists only days with at least one record, in day order;
// member summaries follow roster (name) order and omit untracked members
// INVARIANT: Records of deleted members never count
func QueryGetAttendanceReport(ctx context.Context, query GetAttendanceReportQuery, deps GetAttendanceReportDeps) (GetAttendanceReportResult, error) {
	if strings.TrimSpace(query.StartDate) == "" || strings.TrimSpace(query.EndDate) == "" {
		return GetAttendanceReportResult{}, apperr.Validation("Both startDate and endDate are required")
	}
	start, err := calday.ParseStrict(query.StartDate)
	if err != nil {
		return GetAttendanceReportResult{}, dateError("startDate", err)
	}
	end, err := calday.ParseStrict(query.EndDate)
	if err != nil {
		return GetAttendanceReportResult{}, dateError("endDate", err)
	}
	span, err := calday.NewRange(start, end)
	if err != nil {
		return GetAttendanceReportResult{}, dateError("startDate", err)
	}

	// Members and records are read separately; no snapshot spans both.
	members, err := deps.MemberStore.List(ctx, member.ListFilter{Sort: member.SortName})
	if err != nil {
		return GetAttendanceReportResult{}, apperr.Store("Failed to generate attendance report", err)
	}
	records, err := deps.AttendanceStore.ListByDateRange(ctx, span)
	if err != nil {
		return GetAttendanceReportResult{}, apperr.Store("Failed to generate attendance report", err)
	}

	summaries := make([]MemberAttendanceSummary, len(members))
	summaryIndex := make(map[string]int, len(members))
	for i, m := range members {
		summaries[i] = MemberAttendanceSummary{ID: m.ID, MemberCode: m.MemberCode, Name: m.Name}
		summaryIndex[m.ID] = i
	}

	byDay := make(map[string][]domainAttendance.Record)
	for _, rec := range records {
		if !span.Contains(rec.Date) {
			continue
		}
		key := rec.DayKey()
		byDay[key] = append(byDay[key], rec)
	}

	overall := OverallAttendanceRate{DailyBreakdown: []DailyAttendance{}}
	orphans := 0
	// Days without records never appear, so only days that have some are walked.
	// YYYY-MM-DD keys sort chronologically.
	for _, key := range slices.Sorted(maps.Keys(byDay)) {
		dayRecords := byDay[key]

		daily := DailyAttendance{Date: key}
		for _, rec := range dayRecords {
			idx, ok := summaryIndex[rec.MemberID]
			if !ok {
				orphans++
				continue
			}
			summary := &summaries[idx]
			summary.TotalTrackedDays++
			if rec.Status.IsPresent() {
				daily.PresentCount++
				summary.PresentDays++
			} else {
				daily.AbsentCount++
				summary.AbsentDays++
			}
		}
		daily.TotalMembers = daily.PresentCount + daily.AbsentCount
		daily.PercentagePresent = roundPercent(daily.PresentCount, daily.TotalMembers)
		overall.DailyBreakdown = append(overall.DailyBreakdown, daily)

		overall.TotalPresentDays += daily.PresentCount
		overall.TotalAbsentDays += daily.AbsentCount
	}
	overall.TotalDaysTracked = overall.TotalPresentDays + overall.TotalAbsentDays
	overall.PercentagePresent = roundPercent(overall.TotalPresentDays, overall.TotalDaysTracked)

	tracked := []MemberAttendanceSummary{}
	for _, s := range summaries {
		if s.TotalTrackedDays > 0 {
			tracked = append(tracked, s)
		}
	}

	deps.Metrics.RecordReport()
	logger := deps.Logger
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	logger.WithFields(logrus.Fields{
		"start_date":   span.StartKey(),
		"end_date":     span.EndKey(),
		"days_tracked": len(overall.DailyBreakdown),
		"members":      len(tracked),
		"orphans":      orphans,
	}).Debug("attendance_report_generated")

	return GetAttendanceReportResult{
		OverallAttendanceRate:   overall,
		MemberAttendanceSummary: tracked,
	}, nil
}
