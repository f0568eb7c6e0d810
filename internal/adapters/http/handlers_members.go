package web

import (
	"net/http"
	"strings"

	"rollcall/internal/adapters/storage/member"
	"rollcall/internal/application/listutil"
	"rollcall/internal/application/orchestrators"
	"rollcall/internal/application/projections"
)

var memberSorts = []string{member.SortNewest, member.SortName}

// memberRequest is the create/update body. memberId is accepted as an alias
// of memberCode for older clients.
type memberRequest struct {
	Name       string  `json:"name"`
	MemberCode *string `json:"memberCode"`
	MemberID   *string `json:"memberId"`
}

func (m memberRequest) code() *string {
	if m.MemberCode != nil {
		return m.MemberCode
	}
	return m.MemberID
}

func isForm(r *http.Request) bool {
	return strings.HasPrefix(r.Header.Get("Content-Type"), "application/x-www-form-urlencoded")
}

// decodeMember reads a member body from JSON or a form post.
func decodeMember(w http.ResponseWriter, r *http.Request) (memberRequest, error) {
	var req memberRequest
	if isForm(r) {
		r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
		if err := r.ParseForm(); err != nil {
			return req, err
		}
		req.Name = r.PostFormValue("name")
		for _, key := range []string{"memberCode", "memberId"} {
			if _, ok := r.PostForm[key]; ok {
				v := r.PostFormValue(key)
				req.MemberCode = &v
				break
			}
		}
		return req, nil
	}
	err := strictDecode(w, r, &req)
	return req, err
}

func (s *Server) handleListMembers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := projections.GetMemberListQuery{
		SortByName: listutil.ParseSort(q, memberSorts, member.SortNewest) == member.SortName,
	}
	if page, ok := listutil.ParsePageParams(q); ok {
		query.Limit = page.PerPage
		query.Offset = page.Offset()
	}
	result, err := projections.QueryGetMemberList(r.Context(), query,
		projections.GetMemberListDeps{MemberStore: s.stores.MemberStore},
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result.Members)
}

func (s *Server) handleCreateMember(w http.ResponseWriter, r *http.Request) {
	req, err := decodeMember(w, r)
	if err != nil {
		s.badRequest(w, r, "Invalid request body", err)
		return
	}

	input := orchestrators.CreateMemberInput{Name: req.Name}
	if code := req.code(); code != nil {
		input.MemberCode = *code
	}
	m, err := orchestrators.ExecuteCreateMember(r.Context(), input, orchestrators.CreateMemberDeps{
		MemberStore: s.stores.MemberStore,
		Logger:      s.logger,
		Now:         s.now,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, m)
}

func (s *Server) handleGetMember(w http.ResponseWriter, r *http.Request) {
	m, err := projections.QueryGetMember(r.Context(),
		projections.GetMemberQuery{ID: r.PathValue("id")},
		projections.GetMemberDeps{MemberStore: s.stores.MemberStore},
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleUpdateMember(w http.ResponseWriter, r *http.Request) {
	var req memberRequest
	if err := strictDecode(w, r, &req); err != nil {
		s.badRequest(w, r, "Invalid request body", err)
		return
	}

	m, err := orchestrators.ExecuteUpdateMember(r.Context(), orchestrators.UpdateMemberInput{
		ID:         r.PathValue("id"),
		Name:       req.Name,
		MemberCode: req.code(),
	}, orchestrators.UpdateMemberDeps{
		MemberStore: s.stores.MemberStore,
		Logger:      s.logger,
		Now:         s.now,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, m)
}

func (s *Server) handleDeleteMember(w http.ResponseWriter, r *http.Request) {
	err := orchestrators.ExecuteDeleteMember(r.Context(),
		orchestrators.DeleteMemberInput{ID: r.PathValue("id")},
		orchestrators.DeleteMemberDeps{MemberStore: s.stores.MemberStore, Logger: s.logger},
	)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleGetMemberAttendance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	result, err := projections.QueryGetMemberAttendance(r.Context(), projections.GetMemberAttendanceQuery{
		MemberID:  r.PathValue("id"),
		StartDate: q.Get("startDate"),
		EndDate:   q.Get("endDate"),
		Today:     s.now().UTC(),
	}, projections.GetMemberAttendanceDeps{
		MemberStore:     s.stores.MemberStore,
		AttendanceStore: s.stores.AttendanceStore,
	})
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, result)
}
