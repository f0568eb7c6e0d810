package projections

import (
	"context"
	"errors"
	"sort"
	"time"

	"rollcall/internal/adapters/storage/member"
	domainAttendance "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
	domainMember "rollcall/internal/domain/member"
)

var errStoreDown = errors.New("connection refused")

type mockMemberStore struct {
	members []domainMember.Member
	err     error
	filters []member.ListFilter
}

// GetByID returns a seeded member.
// PRE: id is non-empty
// POST: Returns the member or domainMember.ErrNotFound
func (s *mockMemberStore) GetByID(_ context.Context, id string) (domainMember.Member, error) {
	if s.err != nil {
		return domainMember.Member{}, s.err
	}
	for _, m := range s.members {
		if m.ID == id {
			return m, nil
		}
	}
	return domainMember.Member{}, domainMember.ErrNotFound
}

// List returns seeded members sorted by name when asked.
// PRE: filter is valid
// POST: Returns a copy of the seeded members
func (s *mockMemberStore) List(_ context.Context, filter member.ListFilter) ([]domainMember.Member, error) {
	s.filters = append(s.filters, filter)
	if s.err != nil {
		return nil, s.err
	}
	out := append([]domainMember.Member(nil), s.members...)
	if filter.Sort == member.SortName {
		sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	}
	return out, nil
}

type mockAttendanceStore struct {
	records []domainAttendance.Record
	err     error
	ranges  []calday.Range
}

// ListByDate returns seeded records on day.
// PRE: day is any instant
// POST: Returns matching records
func (s *mockAttendanceStore) ListByDate(_ context.Context, day time.Time) ([]domainAttendance.Record, error) {
	if s.err != nil {
		return nil, s.err
	}
	var out []domainAttendance.Record
	for _, r := range s.records {
		if r.DayKey() == calday.Format(day) {
			out = append(out, r)
		}
	}
	return out, nil
}

// ListByDateRange returns seeded records inside r.
// PRE: r is valid
// POST: Returns matching records
func (s *mockAttendanceStore) ListByDateRange(_ context.Context, r calday.Range) ([]domainAttendance.Record, error) {
	s.ranges = append(s.ranges, r)
	if s.err != nil {
		return nil, s.err
	}
	var out []domainAttendance.Record
	for _, rec := range s.records {
		if r.Contains(rec.Date) {
			out = append(out, rec)
		}
	}
	return out, nil
}

// ListByMemberAndDateRange returns one member's seeded records inside r, newest first.
// PRE: memberID is non-empty
// POST: Returns matching records
func (s *mockAttendanceStore) ListByMemberAndDateRange(ctx context.Context, memberID string, r calday.Range) ([]domainAttendance.Record, error) {
	all, err := s.ListByDateRange(ctx, r)
	if err != nil {
		return nil, err
	}
	var out []domainAttendance.Record
	for _, rec := range all {
		if rec.MemberID == memberID {
			out = append(out, rec)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date.After(out[j].Date) })
	return out, nil
}

func mark(memberID, day string, status domainAttendance.Status) domainAttendance.Record {
	d, err := calday.ParseStrict(day)
	if err != nil {
		panic(err)
	}
	return domainAttendance.Record{ID: memberID + "-" + day, MemberID: memberID, Date: d, Status: status}
}
