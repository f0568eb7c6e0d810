package orchestrators

import (
	"context"
	"strings"

	"github.com/sirupsen/logrus"

	"rollcall/internal/application/apperr"
)

// MemberStoreForDelete defines the store interface needed by DeleteMember.
type MemberStoreForDelete interface {
	Delete(ctx context.Context, id string) error
}

// DeleteMemberInput carries input for the orchestrator.
type DeleteMemberInput struct {
	ID string
}

// DeleteMemberDeps holds dependencies for DeleteMember.
type DeleteMemberDeps struct {
	MemberStore MemberStoreForDelete
	Logger      logrus.FieldLogger
}

// ExecuteDeleteMember removes a member from the roster.
// PRE: ID is non-empty
// POST: Member removed; its attendance records remain and become orphaned
func ExecuteDeleteMember(ctx context.Context, input DeleteMemberInput, deps DeleteMemberDeps) error {
	id := strings.TrimSpace(input.ID)
	if id == "" {
		return apperr.Validation("member id is required")
	}
	if err := deps.MemberStore.Delete(ctx, id); err != nil {
		return memberStoreError(err, "Failed to delete member")
	}
	loggerOr(deps.Logger).WithField("member_id", id).Info("member_deleted")
	return nil
}
