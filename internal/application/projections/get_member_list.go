package projections

import (
	"context"

	"rollcall/internal/adapters/storage/member"
	"rollcall/internal/application/apperr"
	domainMember "rollcall/internal/domain/member"
)

// GetMemberListQuery carries query parameters.
type GetMemberListQuery struct {
	SortByName bool // roster order instead of newest first
	Limit      int  // zero returns every member
	Offset     int
}

// GetMemberListResult carries the query result.
type GetMemberListResult struct {
	Members []domainMember.Member
}

// GetMemberListDeps holds dependencies for GetMemberList.
type GetMemberListDeps struct {
	MemberStore MemberStore
}

// QueryGetMemberList retrieves members, optionally one page at a time.
// PRE: none
// POST: Members newest first (or by name when asked); never nil
func QueryGetMemberList(ctx context.Context, query GetMemberListQuery, deps GetMemberListDeps) (GetMemberListResult, error) {
	filter := member.ListFilter{Sort: member.SortNewest, Limit: query.Limit, Offset: query.Offset}
	if query.SortByName {
		filter.Sort = member.SortName
	}
	members, err := deps.MemberStore.List(ctx, filter)
	if err != nil {
		return GetMemberListResult{}, apperr.Store("Failed to fetch members", err)
	}
	if members == nil {
		members = []domainMember.Member{}
	}
	return GetMemberListResult{Members: members}, nil
}
