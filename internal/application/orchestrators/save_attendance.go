package orchestrators

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rollcall/internal/application/apperr"
	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
	"rollcall/internal/domain/member"
	"rollcall/internal/observability/metrics"
)

// AttendanceStoreForSave defines the store interface needed by SaveAttendance.
type AttendanceStoreForSave interface {
	Upsert(ctx context.Context, rec attendance.Record) (attendance.Record, bool, error)
}

// MemberLookup resolves member references.
type MemberLookup interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
}

// AttendanceMark is one submitted (member, status) pair.
type AttendanceMark struct {
	MemberID string `json:"memberId"`
	Status   string `json:"status"`
}

// SaveAttendanceInput carries input for the orchestrator.
type SaveAttendanceInput struct {
	Date    string
	Records []AttendanceMark
}

// SaveAttendanceResult reports what a batch did.
type SaveAttendanceResult struct {
	CreatedCount   int      `json:"createdCount"`
	UpdatedCount   int      `json:"updatedCount"`
	SkippedCount   int      `json:"skippedCount"`
	TotalProcessed int      `json:"totalProcessed"`
	Warnings       []string `json:"warnings,omitempty"`
}

// SaveAttendanceDeps holds dependencies for SaveAttendance.
type SaveAttendanceDeps struct {
	AttendanceStore AttendanceStoreForSave
	MemberStore     MemberLookup
	Logger          logrus.FieldLogger
	Metrics         *metrics.Metrics
	Now             func() time.Time
}

// ExecuteSaveAttendance records a batch of marks for one day.
// PRE: none; date and records are validated here before any store access
// POST: One record per valid mark is created or updated; invalid marks are
// skipped with a warning each
// INVARIANT: At most one record per (member, day); createdAt survives updates
func ExecuteSaveAttendance(ctx context.Context, input SaveAttendanceInput, deps SaveAttendanceDeps) (SaveAttendanceResult, error) {
	var result SaveAttendanceResult

	rawDate := strings.TrimSpace(input.Date)
	if rawDate == "" {
		return result, &apperr.Error{Kind: apperr.KindValidation, Field: "date", Message: "Date is required"}
	}
	day, err := calday.Parse(rawDate)
	if err != nil {
		return result, &apperr.Error{Kind: apperr.KindValidation, Field: "date", Message: "Invalid date format", Err: err}
	}
	if len(input.Records) == 0 {
		return result, &apperr.Error{Kind: apperr.KindValidation, Field: "records", Message: "Attendance records must be a non-empty array"}
	}

	logger := loggerOr(deps.Logger).WithField("date", calday.Format(day))
	now := nowUTC(deps.Now)
	known := make(map[string]bool)
	storeFailures := 0
	var firstStoreErr error

	skip := func(warning string) {
		result.SkippedCount++
		result.Warnings = append(result.Warnings, warning)
	}
	storeFailed := func(warning string, err error) {
		storeFailures++
		if firstStoreErr == nil {
			firstStoreErr = err
		}
		skip(warning)
	}

	for i, mark := range input.Records {
		memberID := strings.TrimSpace(mark.MemberID)
		if memberID == "" || strings.TrimSpace(mark.Status) == "" {
			skip(fmt.Sprintf("Missing memberId or status for record %d", i+1))
			continue
		}
		status, err := attendance.ParseStatus(mark.Status)
		if err != nil {
			skip(fmt.Sprintf("Invalid status %q for member %s", mark.Status, memberID))
			continue
		}

		if !known[memberID] {
			if _, err := deps.MemberStore.GetByID(ctx, memberID); err != nil {
				if errors.Is(err, member.ErrNotFound) {
					skip(fmt.Sprintf("Member with ID %s not found", memberID))
				} else {
					logger.WithError(err).WithField("member_id", memberID).Error("attendance_member_lookup_failed")
					storeFailed(fmt.Sprintf("Failed to look up member %s", memberID), err)
				}
				continue
			}
			known[memberID] = true
		}

		rec := attendance.Record{
			ID:        uuid.New().String(),
			MemberID:  memberID,
			Date:      day,
			Status:    status,
			CreatedAt: now,
			UpdatedAt: now,
		}
		if err := rec.Validate(); err != nil {
			skip(fmt.Sprintf("Invalid attendance for member %s: %v", memberID, err))
			continue
		}

		_, created, err := deps.AttendanceStore.Upsert(ctx, rec)
		if err != nil {
			logger.WithError(err).WithField("member_id", memberID).Error("attendance_upsert_failed")
			storeFailed(fmt.Sprintf("Failed to process attendance for member %s", memberID), err)
			continue
		}
		if created {
			result.CreatedCount++
		} else {
			result.UpdatedCount++
		}
	}

	result.TotalProcessed = result.CreatedCount + result.UpdatedCount
	deps.Metrics.RecordAttendance(metrics.ResultCreated, result.CreatedCount)
	deps.Metrics.RecordAttendance(metrics.ResultUpdated, result.UpdatedCount)
	deps.Metrics.RecordAttendance(metrics.ResultSkipped, result.SkippedCount)

	fields := logrus.Fields{
		"created": result.CreatedCount,
		"updated": result.UpdatedCount,
		"skipped": result.SkippedCount,
	}
	if result.TotalProcessed == 0 {
		logger.WithFields(fields).Warn("attendance_batch_rejected")
		if storeFailures == result.SkippedCount {
			return result, apperr.Store("Failed to process attendance records", firstStoreErr)
		}
		return result, apperr.Validation("Failed to process attendance records")
	}

	logger.WithFields(fields).Info("attendance_saved")
	return result, nil
}
