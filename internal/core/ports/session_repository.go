package ports

import (
	"context"
	"time"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

// SessionRepository persists sessions between requests.
type SessionRepository interface {
	// Load returns domain.ErrSessionNotFound for unknown or expired ids.
	Load(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
