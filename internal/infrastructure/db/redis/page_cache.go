package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	pagePrefix       = "ppf:page:"
	generationPrefix = "ppf:pagegen:"
)

// PageCache backs the gateway list cache.
// Key format: ppf:page:<resource>:<generation>:<token hash>:<page>:<size>:<term>
// and ppf:pagegen:<resource> for the generation counter.
type PageCache struct {
	client *redis.Client
}

func NewPageCache(client *redis.Client) *PageCache {
	return &PageCache{client: client}
}

// Generation returns the current generation of resource, 0 if never bumped.
func (p *PageCache) Generation(ctx context.Context, resource string) (int64, error) {
	n, err := p.client.Get(ctx, generationPrefix+resource).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("page generation: %w", err)
	}
	return n, nil
}

// Bump moves resource to a new generation, orphaning every cached page.
// Orphans expire through their own TTL.
func (p *PageCache) Bump(ctx context.Context, resource string) error {
	return p.client.Incr(ctx, generationPrefix+resource).Err()
}

func (p *PageCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	raw, err := p.client.Get(ctx, pagePrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("page cache get: %w", err)
	}
	return raw, true, nil
}

func (p *PageCache) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	return p.client.Set(ctx, pagePrefix+key, val, ttl).Err()
}
