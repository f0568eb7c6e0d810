package web

import (
	"bytes"
	"encoding/json"
	"net/http"

	"rollcall/internal/application/apperr"
	"rollcall/internal/application/orchestrators"
	"rollcall/internal/application/projections"
)

// saveAttendanceRequest is the batch body. attendanceRecords is accepted as
// an alias of records.
type saveAttendanceRequest struct {
	Date              string          `json:"date"`
	Records           json.RawMessage `json:"records"`
	AttendanceRecords json.RawMessage `json:"attendanceRecords"`
}

type saveAttendanceResponse struct {
	Message string `json:"message"`
	orchestrators.SaveAttendanceResult
}

// decodeMarks requires raw to be a JSON array. Elements are decoded one by
// one so a malformed mark is skipped with a warning downstream instead of
// failing the batch.
func decodeMarks(raw json.RawMessage) ([]orchestrators.AttendanceMark, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Field: "records", Message: "Attendance records must be an array"}
	}
	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, &apperr.Error{Kind: apperr.KindValidation, Field: "records", Message: "Invalid attendance records", Err: err}
	}
	marks := make([]orchestrators.AttendanceMark, len(elems))
	for i, elem := range elems {
		marks[i] = decodeMark(elem)
	}
	return marks, nil
}

// decodeMark reads memberId and status from one element. Scalars are taken
// as text; anything else, including a non-object element, leaves the field
// empty.
func decodeMark(raw json.RawMessage) orchestrators.AttendanceMark {
	var fields struct {
		MemberID json.RawMessage `json:"memberId"`
		Status   json.RawMessage `json:"status"`
	}
	if err := json.Unmarshal(raw, &fields); err != nil {
		return orchestrators.AttendanceMark{}
	}
	return orchestrators.AttendanceMark{
		MemberID: scalarText(fields.MemberID),
		Status:   scalarText(fields.Status),
	}
}

func scalarText(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return ""
	}
	switch raw[0] {
	case '"':
		var s string
		if err := json.Unmarshal(raw, &s); err != nil {
			return ""
		}
		return s
	case '{', '[', 'n':
		return ""
	}
	return string(raw)
}

func (s *Server) handleSaveAttendance(w http.ResponseWriter, r *http.Request) {
	var req saveAttendanceRequest
	if err := strictDecode(w, r, &req); err != nil {
		s.badRequest(w, r, "Invalid request body", err)
		return
	}
	if req.Date == "" {
		s.writeError(w, r, &apperr.Error{Kind: apperr.KindValidation, Field: "date", Message: "Date is required"})
		return
	}

	raw := req.Records
	if len(raw) == 0 {
		raw = req.AttendanceRecords
	}
	marks, err := decodeMarks(raw)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := orchestrators.ExecuteSaveAttendance(r.Context(), orchestrators.SaveAttendanceInput{
		Date:    req.Date,
		Records: marks,
	}, orchestrators.SaveAttendanceDeps{
		AttendanceStore: s.stores.AttendanceStore,
		MemberStore:     s.stores.MemberStore,
		Logger:          s.logger,
		Metrics:         s.metrics,
		Now:             s.now,
	})
	if err != nil {
		s.writeError(w, r, err, result.Warnings...)
		return
	}
	s.writeJSON(w, http.StatusOK, saveAttendanceResponse{
		Message:              "Attendance processed successfully",
		SaveAttendanceResult: result,
	})
}

func (s *Server) handleGetAttendanceForDate(w http.ResponseWriter, r *http.Request) {
	result, err := projections.QueryGetAttendanceForDate(r.Context(),
		projections.GetAttendanceForDateQuery{Date: r.PathValue("date")},
		projections.GetAttendanceForDateDeps{AttendanceStore: s.stores.AttendanceStore},
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Records)
}

func (s *Server) handleGetAttendanceReport(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := projections.QueryGetAttendanceReport(r.Context(), projections.GetAttendanceReportQuery{
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
	}, projections.GetAttendanceReportDeps{
		MemberStore:     s.stores.MemberStore,
		AttendanceStore: s.stores.AttendanceStore,
		Logger:          s.logger,
		Metrics:         s.metrics,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
