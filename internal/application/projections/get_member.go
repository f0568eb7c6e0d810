package projections

import (
	"context"
	"errors"
	"strings"

	"rollcall/internal/application/apperr"
	domainMember "rollcall/internal/domain/member"
)

// GetMemberQuery carries query parameters.
type GetMemberQuery struct {
	ID string
}

// GetMemberDeps holds dependencies for GetMember.
type GetMemberDeps struct {
	MemberStore MemberStore
}

// QueryGetMember retrieves one member.
// PRE: none
// POST: Returns the member, or a NotFound error
func QueryGetMember(ctx context.Context, query GetMemberQuery, deps GetMemberDeps) (domainMember.Member, error) {
	return lookupMember(ctx, deps.MemberStore, query.ID, "Failed to fetch member")
}

func lookupMember(ctx context.Context, store MemberStore, id, failure string) (domainMember.Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domainMember.Member{}, apperr.NotFound("Member not found")
	}
	m, err := store.GetByID(ctx, id)
	if errors.Is(err, domainMember.ErrNotFound) {
		return domainMember.Member{}, apperr.NotFound("Member not found")
	}
	if err != nil {
		return domainMember.Member{}, apperr.Store(failure, err)
	}
	return m, nil
}
