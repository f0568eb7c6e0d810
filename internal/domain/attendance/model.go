package attendance

import (
	"errors"
	"fmt"
	"time"

	"rollcall/internal/domain/calday"
)

// Status is the observed attendance for one member on one day.
type Status string

// Business rule constants
const (
	StatusPresent Status = "Present"
	StatusAbsent  Status = "Absent"
)

// ErrInvalidStatus is returned for anything other than Present or Absent.
var ErrInvalidStatus = errors.New("status must be 'Present' or 'Absent'")

// ParseStatus converts raw input into a Status.
// PRE: none
// POST: Returns ErrInvalidStatus unless s is exactly Present or Absent
func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPresent, StatusAbsent:
		return Status(s), nil
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

// IsPresent returns true for StatusPresent.
func (s Status) IsPresent() bool { return s == StatusPresent }

// MemberRef is the slice of a member a record view carries.
type MemberRef struct {
	ID         string `json:"id"`
	MemberCode string `json:"memberCode"`
	Name       string `json:"name"`
}

// Record is one Present/Absent observation for a member on a calendar day.
// (MemberID, Date) is the natural key.
type Record struct {
	ID        string     `json:"id"`
	MemberID  string     `json:"memberId"`
	Date      time.Time  `json:"date"` // UTC midnight
	Status    Status     `json:"status"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	Member    *MemberRef `json:"member"` // nil when orphaned or not joined
}

// Validate checks if the Record has valid data.
// PRE: Record struct is initialized
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Date carries no time of day
func (r *Record) Validate() error {
	if r.MemberID == "" {
		return errors.New("attendance must be associated with a member")
	}
	if r.Date.IsZero() {
		return errors.New("date is required")
	}
	if !r.Date.Equal(calday.Normalize(r.Date)) || r.Date.Location() != time.UTC {
		return errors.New("date must be normalized to UTC midnight")
	}
	if _, err := ParseStatus(string(r.Status)); err != nil {
		return err
	}
	return nil
}

// DayKey returns the YYYY-MM-DD key of the record's day.
func (r *Record) DayKey() string {
	return calday.Format(r.Date)
}

// IsOrphaned reports whether a joined record lost its member.
func (r *Record) IsOrphaned() bool {
	return r.Member == nil
}
