package projections

import (
	"errors"

	"rollcall/internal/application/apperr"
	"rollcall/internal/domain/calday"
)

// dateError turns a calday failure into a field-level validation error with
// the user-facing wording for each failure class.
func dateError(field string, err error) error {
	msg := "Invalid date values"
	switch {
	case errors.Is(err, calday.ErrInvalidFormat):
		msg = "Invalid date format. Use YYYY-MM-DD"
	case errors.Is(err, calday.ErrRangeOrder):
		msg = "Start date must be before or equal to end date"
	}
	return &apperr.Error{Kind: apperr.KindValidation, Field: field, Message: msg, Err: err}
}
