package orchestrators

import (
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"rollcall/internal/application/apperr"
	"rollcall/internal/domain/member"
)

// nowUTC reads the injected clock, falling back to the wall clock.
func nowUTC(now func() time.Time) time.Time {
	if now == nil {
		return time.Now().UTC()
	}
	return now().UTC()
}

func loggerOr(l logrus.FieldLogger) logrus.FieldLogger {
	if l == nil {
		return logrus.StandardLogger()
	}
	return l
}

// memberRuleError classifies a member.Validate failure by field.
func memberRuleError(err error) error {
	switch {
	case errors.Is(err, member.ErrNameRequired), errors.Is(err, member.ErrNameTooLong):
		return apperr.InvalidField("name", err)
	case errors.Is(err, member.ErrCodeRequired):
		return apperr.InvalidField("memberCode", err)
	}
	return apperr.Validation("%s", err.Error())
}

// memberStoreError classifies a member store failure.
func memberStoreError(err error, failure string) error {
	switch {
	case errors.Is(err, member.ErrNotFound):
		return apperr.NotFound("Member not found")
	case errors.Is(err, member.ErrDuplicateCode):
		return apperr.Conflict("memberCode", "A member with this Member ID already exists")
	case errors.Is(err, member.ErrDuplicateName):
		return apperr.Conflict("name", "A member with this name already exists")
	}
	return apperr.Store(failure, err)
}
