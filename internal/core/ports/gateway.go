package ports

import (
	"context"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// ResourceGateway is the typed client for one backend resource. Failures are
// logged by the implementation and reported through ok=false; callers treat
// an absent result as a failed operation.
type ResourceGateway[T any] interface {
	List(ctx context.Context, q domain.PageQuery) (domain.Page[T], bool)
	Get(ctx context.Context, id int) (T, bool)
	Create(ctx context.Context, rec T) (T, bool)
	Update(ctx context.Context, id int, rec T) (T, bool)
	Delete(ctx context.Context, id int) (T, bool)
}

// AuthGateway covers the unauthenticated account endpoints.
type AuthGateway interface {
	// Login exchanges credentials for a bearer token.
	Login(ctx context.Context, email, password string) (string, error)
	Register(ctx context.Context, reg domain.Registration) error
}
