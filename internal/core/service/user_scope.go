package service

import (
	"context"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

// RoleSelfOnly is the role that may only see its own user record.
const RoleSelfOnly = 3

// SelfScope restricts user pages for RoleSelfOnly actors to the actor's own
// record. When the record is not on the fetched page it is fetched by id.
func SelfScope(gw ports.ResourceGateway[domain.User]) ScopeFunc[domain.User] {
	return func(ctx context.Context, p domain.Page[domain.User]) domain.Page[domain.User] {
		actor, ok := domain.ActorFrom(ctx)
		if !ok || actor.RoleID != RoleSelfOnly {
			return p
		}

		own := make([]domain.User, 0, 1)
		for _, u := range p.Items {
			if u.ID == actor.UserID {
				own = append(own, u)
			}
		}
		if len(own) == 0 && p.PageIndex == 0 {
			if u, ok := gw.Get(ctx, actor.UserID); ok {
				own = append(own, u)
			}
		}

		p.Items = own
		p.TotalCount = len(own)
		return p
	}
}
