package attendance_test

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	attendancestore "rollcall/internal/adapters/storage/attendance"
	memberstore "rollcall/internal/adapters/storage/member"
	"rollcall/internal/adapters/storage/storagetest"
	domain "rollcall/internal/domain/attendance"
	"rollcall/internal/domain/calday"
	"rollcall/internal/domain/member"
)

type fixture struct {
	attendance *attendancestore.SQLStore
	members    *memberstore.SQLStore
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	db := storagetest.NewDB(t)
	return fixture{
		attendance: attendancestore.NewSQLStore(db),
		members:    memberstore.NewSQLStore(db),
	}
}

func (f fixture) addMember(t *testing.T, id, code, name string) {
	t.Helper()
	now := time.Now()
	require.NoError(t, f.members.Create(context.Background(), member.Member{
		ID: id, MemberCode: code, Name: name, CreatedAt: now, UpdatedAt: now,
	}))
}

func day(s string) time.Time {
	d, err := calday.ParseStrict(s)
	if err != nil {
		panic(err)
	}
	return d
}

func record(memberID, date string, status domain.Status, at time.Time) domain.Record {
	return domain.Record{
		ID:        uuid.NewString(),
		MemberID:  memberID,
		Date:      day(date),
		Status:    status,
		UpdatedAt: at,
	}
}

func TestUpsert_CreateThenUpdateKeepsCreatedAt(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "m1", "EMP001", "Ada")

	first := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	stored, created, err := f.attendance.Upsert(ctx, record("m1", "2024-01-01", domain.StatusPresent, first))
	require.NoError(t, err)
	assert.True(t, created)
	assert.True(t, stored.CreatedAt.Equal(first))

	second := first.Add(2 * time.Hour)
	again, created, err := f.attendance.Upsert(ctx, record("m1", "2024-01-01", domain.StatusAbsent, second))
	require.NoError(t, err)
	assert.False(t, created)
	assert.Equal(t, stored.ID, again.ID, "update keeps the original id")
	assert.True(t, again.CreatedAt.Equal(first))

	got, err := f.attendance.ListByDate(ctx, day("2024-01-01"))
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, domain.StatusAbsent, got[0].Status)
	assert.True(t, got[0].CreatedAt.Equal(first))
	assert.True(t, got[0].UpdatedAt.Equal(second))
	require.NotNil(t, got[0].Member)
	assert.Equal(t, "EMP001", got[0].Member.MemberCode)
}

func TestListByDate_OrdersByNameAndKeepsOrphans(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.addMember(t, "m1", "EMP001", "Charlie")
	f.addMember(t, "m2", "EMP002", "Alice")
	f.addMember(t, "m3", "EMP003", "Bob")

	for _, id := range []string{"m1", "m2", "m3"} {
		_, _, err := f.attendance.Upsert(ctx, record(id, "2024-03-05", domain.StatusPresent, now))
		require.NoError(t, err)
	}
	_, _, err := f.attendance.Upsert(ctx, record("m2", "2024-03-06", domain.StatusPresent, now))
	require.NoError(t, err)
	require.NoError(t, f.members.Delete(ctx, "m3"))

	got, err := f.attendance.ListByDate(ctx, day("2024-03-05"))
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "Alice", got[0].Member.Name)
	assert.Equal(t, "Charlie", got[1].Member.Name)
	assert.True(t, got[2].IsOrphaned())
	assert.Equal(t, "m3", got[2].MemberID)
	assert.Equal(t, "2024-03-05", got[2].DayKey())
}

func TestListByDateRange_InclusiveBounds(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.addMember(t, "m1", "EMP001", "Ada")

	for _, d := range []string{"2023-12-31", "2024-01-01", "2024-01-15", "2024-01-31", "2024-02-01"} {
		_, _, err := f.attendance.Upsert(ctx, record("m1", d, domain.StatusPresent, now))
		require.NoError(t, err)
	}

	r, err := calday.ParseRange("2024-01-01", "2024-01-31")
	require.NoError(t, err)
	got, err := f.attendance.ListByDateRange(ctx, r)
	require.NoError(t, err)

	var days []string
	for _, rec := range got {
		days = append(days, rec.DayKey())
	}
	assert.Equal(t, []string{"2024-01-01", "2024-01-15", "2024-01-31"}, days)
}

func TestListByMemberAndDateRange_NewestFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	now := time.Now()
	f.addMember(t, "m1", "EMP001", "Ada")
	f.addMember(t, "m2", "EMP002", "Bob")

	for _, d := range []string{"2024-01-01", "2024-01-02", "2024-01-03"} {
		_, _, err := f.attendance.Upsert(ctx, record("m1", d, domain.StatusPresent, now))
		require.NoError(t, err)
		_, _, err = f.attendance.Upsert(ctx, record("m2", d, domain.StatusAbsent, now))
		require.NoError(t, err)
	}

	r, err := calday.ParseRange("2024-01-02", "2024-01-03")
	require.NoError(t, err)
	got, err := f.attendance.ListByMemberAndDateRange(ctx, "m1", r)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-01-03", got[0].DayKey())
	assert.Equal(t, "2024-01-02", got[1].DayKey())
	for _, rec := range got {
		assert.Equal(t, "m1", rec.MemberID)
	}
}

func TestUpsert_ConcurrentWritersLeaveOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.addMember(t, "m1", "EMP001", "Ada")

	const writers = 8
	var wg sync.WaitGroup
	var mu sync.Mutex
	createdCount := 0
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			status := domain.StatusPresent
			if i%2 == 1 {
				status = domain.StatusAbsent
			}
			_, created, err := f.attendance.Upsert(ctx, record("m1", "2024-05-01", status, time.Now()))
			errs[i] = err
			if created {
				mu.Lock()
				createdCount++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, fmt.Sprintf("writer %d", i))
	}
	assert.Equal(t, 1, createdCount)

	got, err := f.attendance.ListByDate(ctx, day("2024-05-01"))
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
