package users

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/cuxvas/peliculas/internal/common"
	"github.com/cuxvas/peliculas/internal/logging"
	"github.com/cuxvas/peliculas/internal/server/auth"
)

// Cache is the byte store behind CachedFinder. Get reports a miss as
// common.ErrorNotFound.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

// PrincipalFinder is the read side of the credential store.
type PrincipalFinder interface {
	FindPrincipal(ctx context.Context, id string) (*auth.Principal, error)
}

// CachedFinder is a read-through cache in front of a PrincipalFinder.
// Cache errors are logged and the database is queried instead.
type CachedFinder struct {
	next   PrincipalFinder
	cache  Cache
	ttl    time.Duration
	logger logging.Logger
}

func NewCachedFinder(next PrincipalFinder, cache Cache, ttl time.Duration, logger logging.Logger) *CachedFinder {
	return &CachedFinder{next: next, cache: cache, ttl: ttl, logger: logger}
}

func principalKey(id string) string { return "principal:" + id }

func (c *CachedFinder) FindPrincipal(ctx context.Context, id string) (*auth.Principal, error) {
	key := principalKey(id)

	b, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		p := &auth.Principal{}
		jerr := json.Unmarshal(b, p)
		if jerr == nil {
			return p, nil
		}
		c.logger.Warn(ctx, "discarding undecodable cached principal", "key", key, "error", jerr)
	case !errors.Is(err, common.ErrorNotFound):
		c.logger.Warn(ctx, "principal cache unavailable", "error", err)
	}

	p, err := c.next.FindPrincipal(ctx, id)
	if err != nil {
		return nil, err
	}

	if b, err := json.Marshal(p); err == nil {
		if err := c.cache.Set(ctx, key, b, c.ttl); err != nil {
			c.logger.Warn(ctx, "could not cache principal", "error", err)
		}
	}
	return p, nil
}

// Invalidate drops the cached principal so the next lookup hits the store.
func (c *CachedFinder) Invalidate(ctx context.Context, id string) error {
	return c.cache.Del(ctx, principalKey(id))
}
