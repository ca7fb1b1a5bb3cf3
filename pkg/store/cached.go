package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/lexweave/lexweave/pkg/clause"
)

// CachedStore is a read-through TTL cache in front of another clause
// store. Misses fall through to the wrapped store and populate the
// cache; negative results are cached with a short TTL so a hot missing
// slug does not hammer the backing store.
type CachedStore struct {
	next   ClauseStore
	client *redis.Client
	ttl    time.Duration
	logger *slog.Logger
}

const negativeTTL = 30 * time.Second

// negative is the cached payload for a confirmed-missing slug.
const negative = "__missing__"

// NewCachedStore wraps next with a Redis cache using the given TTL.
func NewCachedStore(next ClauseStore, client *redis.Client, ttl time.Duration) *CachedStore {
	return &CachedStore{
		next:   next,
		client: client,
		ttl:    ttl,
		logger: slog.Default().With("component", "store.cache"),
	}
}

// GetClauseBySlug consults the cache first; cache failures degrade to
// a direct store read rather than failing the lookup.
func (s *CachedStore) GetClauseBySlug(ctx context.Context, scope, slug string) (*clause.Clause, error) {
	key := cacheKey(scope, slug)

	payload, err := s.client.Get(ctx, key).Result()
	switch {
	case err == nil:
		if payload == negative {
			return nil, clause.ErrNotFound
		}
		var c clause.Clause
		if err := json.Unmarshal([]byte(payload), &c); err == nil {
			return &c, nil
		}
		// Corrupt entry: fall through and rewrite below.
		s.logger.Warn("dropping corrupt cache entry", "key", key)
	case !errors.Is(err, redis.Nil):
		s.logger.Warn("cache read failed, falling through", "key", key, "error", err)
	}

	c, err := s.next.GetClauseBySlug(ctx, scope, slug)
	if err != nil {
		if errors.Is(err, clause.ErrNotFound) {
			s.set(ctx, key, negative, negativeTTL)
		}
		return nil, err
	}

	encoded, jerr := json.Marshal(c)
	if jerr == nil {
		s.set(ctx, key, string(encoded), s.ttl)
	}
	return c, nil
}

func (s *CachedStore) set(ctx context.Context, key, payload string, ttl time.Duration) {
	if err := s.client.Set(ctx, key, payload, ttl).Err(); err != nil {
		s.logger.Warn("cache write failed", "key", key, "error", err)
	}
}

// Invalidate removes a cached slug, for use after clause edits.
func (s *CachedStore) Invalidate(ctx context.Context, scope, slug string) error {
	if err := s.client.Del(ctx, cacheKey(scope, slug)).Err(); err != nil {
		return fmt.Errorf("invalidate %s/%s: %w", scope, slug, err)
	}
	return nil
}

func cacheKey(scope, slug string) string {
	return fmt.Sprintf("clause:%s:%s", scope, slug)
}
