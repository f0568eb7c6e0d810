package orchestrators

import (
	"context"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"rollcall/internal/application/apperr"
	"rollcall/internal/domain/member"
)

// MemberStoreForUpdate defines the store interface needed by UpdateMember.
type MemberStoreForUpdate interface {
	GetByID(ctx context.Context, id string) (member.Member, error)
	Update(ctx context.Context, m member.Member) error
}

// UpdateMemberInput carries input for the orchestrator.
// A nil MemberCode leaves the code unchanged.
type UpdateMemberInput struct {
	ID         string
	Name       string
	MemberCode *string
}

// UpdateMemberDeps holds dependencies for UpdateMember.
type UpdateMemberDeps struct {
	MemberStore MemberStoreForUpdate
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

// ExecuteUpdateMember renames a member and optionally changes its code.
// PRE: ID is non-empty
// POST: Name (and MemberCode when given) replaced, UpdatedAt refreshed, CreatedAt kept
func ExecuteUpdateMember(ctx context.Context, input UpdateMemberInput, deps UpdateMemberDeps) (member.Member, error) {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return member.Member{}, apperr.Validation("member id is required")
	}

	name := strings.TrimSpace(input.Name)
	if err := member.ValidateName(name); err != nil {
		return member.Member{}, memberRuleError(err)
	}
	var code string
	if input.MemberCode != nil {
		code = strings.TrimSpace(*input.MemberCode)
		if code == "" {
			return member.Member{}, memberRuleError(member.ErrCodeRequired)
		}
	}

	m, err := deps.MemberStore.GetByID(ctx, id)
	if err != nil {
		return member.Member{}, memberStoreError(err, "Failed to update member")
	}

	m.Name = name
	if input.MemberCode != nil {
		m.MemberCode = code
	}
	m.UpdatedAt = nowUTC(deps.Now)

	if err := deps.MemberStore.Update(ctx, m); err != nil {
		return member.Member{}, memberStoreError(err, "Failed to update member")
	}

	loggerOr(deps.Logger).WithField("member_id", m.ID).Info("member_updated")
	return m, nil
}
