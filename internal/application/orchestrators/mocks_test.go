package orchestrators

import (
	"context"
	"errors"
	"time"

	"rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
	"rollcall/internal/domain/member"
)

// mockMemberStore is an in-memory member store with unique code and name.
type mockMemberStore struct {
	members map[string]member.Member
	err     error // returned by every call when set
	lookups int
}

func newMockMemberStore(seed ...member.Member) *mockMemberStore {
	s := &mockMemberStore{members: make(map[string]member.Member)}
	for _, m := range seed {
		s.members[m.ID] = m
	}
	return s
}

// GetByID returns a seeded member.
// PRE: id is non-empty
// POST: Returns the member or member.ErrNotFound
func (s *mockMemberStore) GetByID(_ context.Context, id string) (member.Member, error) {
	s.lookups++
	if s.err != nil {
		return member.Member{}, s.err
	}
	m, ok := s.members[id]
	if !ok {
		return member.Member{}, member.ErrNotFound
	}
	return m, nil
}

func (s *mockMemberStore) checkUnique(m member.Member) error {
	for _, other := range s.members {
		if other.ID == m.ID {
			continue
		}
		if other.MemberCode == m.MemberCode {
			return member.ErrDuplicateCode
		}
		if other.Name == m.Name {
			return member.ErrDuplicateName
		}
	}
	return nil
}

// Create stores a new member.
// PRE: m is validated
// POST: m stored unless a unique field collides
func (s *mockMemberStore) Create(_ context.Context, m member.Member) error {
	if s.err != nil {
		return s.err
	}
	if err := s.checkUnique(m); err != nil {
		return err
	}
	s.members[m.ID] = m
	return nil
}

// Update replaces an existing member, keeping CreatedAt.
// PRE: m is validated
// POST: stored member replaced or member.ErrNotFound
func (s *mockMemberStore) Update(_ context.Context, m member.Member) error {
	if s.err != nil {
		return s.err
	}
	old, ok := s.members[m.ID]
	if !ok {
		return member.ErrNotFound
	}
	if err := s.checkUnique(m); err != nil {
		return err
	}
	m.CreatedAt = old.CreatedAt
	s.members[m.ID] = m
	return nil
}

// Delete removes a member.
// PRE: id is non-empty
// POST: member removed or member.ErrNotFound
func (s *mockMemberStore) Delete(_ context.Context, id string) error {
	if s.err != nil {
		return s.err
	}
	if _, ok := s.members[id]; !ok {
		return member.ErrNotFound
	}
	delete(s.members, id)
	return nil
}

type attendanceKey struct {
	memberID string
	day      string
}

// mockAttendanceStore upserts into a map keyed by (member, day).
type mockAttendanceStore struct {
	records map[attendanceKey]attendance.Record
	failFor map[string]bool // member ids whose upsert fails
}

func newMockAttendanceStore() *mockAttendanceStore {
	return &mockAttendanceStore{
		records: make(map[attendanceKey]attendance.Record),
		failFor: make(map[string]bool),
	}
}

var errUpsertFailed = errors.New("disk I/O error")

// Upsert creates or updates the record for its key.
// PRE: rec is validated
// POST: one record per key; CreatedAt kept on update
func (s *mockAttendanceStore) Upsert(_ context.Context, rec attendance.Record) (attendance.Record, bool, error) {
	if s.failFor[rec.MemberID] {
		return attendance.Record{}, false, errUpsertFailed
	}
	key := attendanceKey{rec.MemberID, calday.Format(rec.Date)}
	if old, ok := s.records[key]; ok {
		old.Status = rec.Status
		old.UpdatedAt = rec.UpdatedAt
		s.records[key] = old
		return old, false, nil
	}
	s.records[key] = rec
	return rec, true, nil
}

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}
