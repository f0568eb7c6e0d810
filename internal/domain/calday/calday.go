// Package calday normalizes calendar days.
//
// Every attendance date, on both the write and the read path, goes through
// this package so that a day is always the same UTC-midnight instant and the
// same YYYY-MM-DD key.
package calday

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Layout is the canonical textual form of a day.
const Layout = "2006-01-02"

var (
	// ErrInvalidFormat is returned when a day string is not YYYY-MM-DD.
	ErrInvalidFormat = errors.New("invalid date format, use YYYY-MM-DD")
	// ErrInvalidDate is returned when a string has the right shape but is not a real date.
	ErrInvalidDate = errors.New("invalid date")
	// ErrRangeOrder is returned when a range starts after it ends.
	ErrRangeOrder = errors.New("start date must be before or equal to end date")
)

var strictPattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// flexibleLayouts are the accepted forms for date inputs that may carry a time.
var flexibleLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
}

// Normalize strips the time of day and pins the result to UTC midnight.
// The calendar date is taken as written in t's own location.
func Normalize(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last representable instant of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	return Normalize(t).AddDate(0, 0, 1).Add(-time.Nanosecond)
}

// Format returns the YYYY-MM-DD key for t's day.
func Format(t time.Time) string {
	return Normalize(t).Format(Layout)
}

// ParseStrict parses a YYYY-MM-DD string into a normalized day.
// PRE: none
// POST: returns ErrInvalidFormat for the wrong shape, ErrInvalidDate for
// impossible dates such as 2024-02-30
func ParseStrict(s string) (time.Time, error) {
	if !strictPattern.MatchString(s) {
		return time.Time{}, ErrInvalidFormat
	}
	t, err := time.Parse(Layout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
	}
	return t, nil
}

// Parse accepts YYYY-MM-DD or a date-time and returns the normalized day.
func Parse(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrInvalidDate
	}
	if strictPattern.MatchString(s) {
		return ParseStrict(s)
	}
	for _, layout := range flexibleLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return Normalize(t), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %s", ErrInvalidDate, s)
}

// Range is an inclusive span of whole days.
// Start is UTC midnight of the first day, End the last instant of the last day.
type Range struct {
	Start time.Time
	End   time.Time
}

// NewRange builds a Range from two days.
// PRE: start and end are any instants
// POST: returns ErrRangeOrder when start's day is after end's day
func NewRange(start, end time.Time) (Range, error) {
	r := Range{Start: Normalize(start), End: EndOfDay(end)}
	if r.Start.After(r.End) {
		return Range{}, ErrRangeOrder
	}
	return r, nil
}

// ParseRange parses two strict YYYY-MM-DD strings into a Range.
func ParseRange(startDate, endDate string) (Range, error) {
	start, err := ParseStrict(startDate)
	if err != nil {
		return Range{}, fmt.Errorf("start date: %w", err)
	}
	end, err := ParseStrict(endDate)
	if err != nil {
		return Range{}, fmt.Errorf("end date: %w", err)
	}
	return NewRange(start, end)
}

// Contains reports whether t falls inside the range.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}

// StartKey is the YYYY-MM-DD key of the first day.
func (r Range) StartKey() string { return r.Start.Format(Layout) }

// EndKey is the YYYY-MM-DD key of the last day.
func (r Range) EndKey() string { return r.End.Format(Layout) }
