package orchestrators

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"rollcall/internal/domain/member"
)

// MemberStoreForCreate defines the store interface needed by CreateMember.
type MemberStoreForCreate interface {
	Create(ctx context.Context, m member.Member) error
}

// CreateMemberInput carries input for the orchestrator.
type CreateMemberInput struct {
	Name       string
	MemberCode string
}

// CreateMemberDeps holds dependencies for CreateMember.
type CreateMemberDeps struct {
	MemberStore MemberStoreForCreate
	Logger      logrus.FieldLogger
	Now         func() time.Time
}

// ExecuteCreateMember adds a member to the roster.
// PRE: none; input is trimmed and validated here
// POST: Member persisted with a fresh ID and CreatedAt = UpdatedAt
// INVARIANT: MemberCode and Name stay unique (enforced by store, reported as Conflict)
func ExecuteCreateMember(ctx context.Context, input CreateMemberInput, deps CreateMemberDeps) (member.Member, error) {
	m := member.Member{
		ID:         uuid.New().String(),
		Name:       input.Name,
		MemberCode: input.MemberCode,
	}
	m.Normalize()
	if err := m.Validate(); err != nil {
		return member.Member{}, memberRuleError(err)
	}

	now := nowUTC(deps.Now)
	m.CreatedAt = now
	m.UpdatedAt = now

	if err := deps.MemberStore.Create(ctx, m); err != nil {
		return member.Member{}, memberStoreError(err, "Failed to create member")
	}

	loggerOr(deps.Logger).WithFields(logrus.Fields{
		"member_id":   m.ID,
		"member_code": m.MemberCode,
	}).Info("member_created")
	return m, nil
}
