// Package memory holds in-process repositories used when no Redis is
// configured.
package memory

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
)

type entry struct {
	raw     []byte
	expires time.Time
}

// SessionRepository keeps sessions in a map. Values are stored encoded so a
// loaded session never aliases one held by another request.
type SessionRepository struct {
	mu    sync.Mutex
	items map[string]entry
	now   func() time.Time
}

func NewSessionRepository() *SessionRepository {
	return &SessionRepository{items: make(map[string]entry), now: time.Now}
}

func (r *SessionRepository) Load(_ context.Context, id string) (*domain.Session, error) {
	r.mu.Lock()
	e, ok := r.items[id]
	if ok && !e.expires.IsZero() && r.now().After(e.expires) {
		delete(r.items, id)
		ok = false
	}
	r.mu.Unlock()
	if !ok {
		return nil, domain.ErrSessionNotFound
	}

	var s domain.Session
	if err := json.Unmarshal(e.raw, &s); err != nil {
		return nil, fmt.Errorf("decode session: %w", err)
	}
	s.ID = id
	return &s, nil
}

func (r *SessionRepository) Save(_ context.Context, s *domain.Session, ttl time.Duration) error {
	raw, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	e := entry{raw: raw}
	if ttl > 0 {
		e.expires = r.now().Add(ttl)
	}

	r.mu.Lock()
	r.items[s.ID] = e
	r.mu.Unlock()
	return nil
}

func (r *SessionRepository) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	delete(r.items, id)
	r.mu.Unlock()
	return nil
}
