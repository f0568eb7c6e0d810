package member

import (
	"errors"
	"strings"
	"time"
	"unicode/utf8"
)

// Max length constants for user-editable fields.
const (
	MaxNameLength = 100
)

// Validation errors
var (
	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name must be less than 100 characters")
	ErrCodeRequired = errors.New("member ID is required")
)

// Store outcomes shared by every backend.
var (
	ErrNotFound      = errors.New("member not found")
	ErrDuplicateCode = errors.New("a member with this member ID already exists")
	ErrDuplicateName = errors.New("a member with this name already exists")
)

// Member holds state for a tracked individual.
type Member struct {
	ID         string    `json:"id"`
	MemberCode string    `json:"memberCode"`
	Name       string    `json:"name"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// Normalize trims the user-editable fields in place.
func (m *Member) Normalize() {
	m.Name = strings.TrimSpace(m.Name)
	m.MemberCode = strings.TrimSpace(m.MemberCode)
}

// Validate checks if the Member has valid data.
// PRE: Normalize has been called
// POST: Returns error if validation fails, nil otherwise
// INVARIANT: Name is 1-100 characters, MemberCode is non-empty
func (m *Member) Validate() error {
	if err := ValidateName(m.Name); err != nil {
		return err
	}
	if m.MemberCode == "" {
		return ErrCodeRequired
	}
	return nil
}

// ValidateName applies the name rules to an already trimmed name.
func ValidateName(name string) error {
	if name == "" {
		return ErrNameRequired
	}
	if utf8.RuneCountInString(name) > MaxNameLength {
		return ErrNameTooLong
	}
	return nil
}
