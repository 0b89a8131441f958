package gateway

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/ppfmanagement/admin-dashboard/internal/core/domain"
	"github.com/ppfmanagement/admin-dashboard/internal/core/ports"
)

// PageStore is the storage behind Cached. Generation counters let a single
// Bump invalidate every cached page of a resource.
type PageStore interface {
	Generation(ctx context.Context, resource string) (int64, error)
	Bump(ctx context.Context, resource string) error
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, val []byte, ttl time.Duration) error
}

// Cached decorates a resource gateway with a list-page cache. Any successful
// mutation invalidates every cached page of the resource. Store errors fall
// through to the backend.
type Cached[T any] struct {
	next    ports.ResourceGateway[T]
	store   PageStore
	name    string
	ttl     time.Duration
	metrics Metrics
	log     zerolog.Logger
}

func NewCached[T any](name string, next ports.ResourceGateway[T], store PageStore, ttl time.Duration, m Metrics, log zerolog.Logger) *Cached[T] {
	if m == nil {
		m = nopMetrics{}
	}
	return &Cached[T]{
		next:    next,
		store:   store,
		name:    name,
		ttl:     ttl,
		metrics: m,
		log:     log.With().Str("component", "page_cache").Str("resource", name).Logger(),
	}
}

func (c *Cached[T]) List(ctx context.Context, q domain.PageQuery) (domain.Page[T], bool) {
	token, ok := domain.TokenFrom(ctx)
	if !ok {
		return c.next.List(ctx, q)
	}

	gen, err := c.store.Generation(ctx, c.name)
	if err != nil {
		c.log.Warn().Err(err).Msg("generation lookup failed")
		return c.next.List(ctx, q)
	}
	key := c.key(gen, token, q)

	if raw, hit, err := c.store.Get(ctx, key); err != nil {
		c.log.Warn().Err(err).Msg("cache read failed")
	} else if hit {
		var p domain.Page[T]
		if err := json.Unmarshal(raw, &p); err == nil {
			c.metrics.ObserveCache(c.name, true)
			return p, true
		}
	}
	c.metrics.ObserveCache(c.name, false)

	p, ok := c.next.List(ctx, q)
	if !ok {
		return p, false
	}
	if raw, err := json.Marshal(p); err == nil {
		if err := c.store.Set(ctx, key, raw, c.ttl); err != nil {
			c.log.Warn().Err(err).Msg("cache write failed")
		}
	}
	return p, true
}

func (c *Cached[T]) Get(ctx context.Context, id int) (T, bool) {
	return c.next.Get(ctx, id)
}

func (c *Cached[T]) Create(ctx context.Context, rec T) (T, bool) {
	out, ok := c.next.Create(ctx, rec)
	if ok {
		c.invalidate(ctx)
	}
	return out, ok
}

func (c *Cached[T]) Update(ctx context.Context, id int, rec T) (T, bool) {
	out, ok := c.next.Update(ctx, id, rec)
	if ok {
		c.invalidate(ctx)
	}
	return out, ok
}

func (c *Cached[T]) Delete(ctx context.Context, id int) (T, bool) {
	out, ok := c.next.Delete(ctx, id)
	if ok {
		c.invalidate(ctx)
	}
	return out, ok
}

func (c *Cached[T]) invalidate(ctx context.Context) {
	if err := c.store.Bump(ctx, c.name); err != nil {
		c.log.Error().Err(err).Msg("cache invalidation failed")
	}
}

// key scopes entries by token so one user's page is never served to another.
func (c *Cached[T]) key(gen int64, token string, q domain.PageQuery) string {
	sum := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%s:%d:%s:%d:%d:%s",
		c.name, gen, hex.EncodeToString(sum[:8]), q.PageIndex, q.PageSize, url.QueryEscape(q.SearchTerm))
}
