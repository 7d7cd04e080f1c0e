// Package permcache memoizes permission decisions under composite keys
// built from per-entity version counters, so invalidating everything
// cached for a user or an object is a single counter bump instead of a
// key scan.
package permcache

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// DefaultTTL bounds how long a stale decision can survive a lost
// invalidation race.
const DefaultTTL = 5 * time.Minute

// Store is the minimal key-value surface the permission cache needs.
// Implementations must support concurrent use.
type Store interface {
	// Get returns the cached value and whether the key was present.
	Get(ctx context.Context, key string) (bool, bool, error)
	// Set stores a value under key for at most ttl.
	Set(ctx context.Context, key string, value bool, ttl time.Duration) error
	// IncrVersion atomically increments and returns the version counter
	// for an entity. Incrementing a counter that was never set starts
	// from zero.
	IncrVersion(ctx context.Context, entity string) (int64, error)
	// GetVersion returns the current version counter for an entity,
	// zero if it was never bumped.
	GetVersion(ctx context.Context, entity string) (int64, error)
}

// Outcome reports how a decision was obtained.
type Outcome int

const (
	// OutcomeHit means the decision came from the cache.
	OutcomeHit Outcome = iota
	// OutcomeMiss means the predicate ran and the result was stored.
	OutcomeMiss
	// OutcomeBypass means the store failed and the predicate ran
	// without caching.
	OutcomeBypass
)

func (o Outcome) String() string {
	switch o {
	case OutcomeHit:
		return "hit"
	case OutcomeMiss:
		return "miss"
	default:
		return "bypass"
	}
}

// Key identifies one permission decision. ObjectID is uuid.Nil for
// user-level checks; Qualifier carries extra decision input such as a
// requested target status.
type Key struct {
	Permission string
	UserID     uuid.UUID
	ObjectID   uuid.UUID
	Qualifier  string
}

// Cache wraps a Store with the version-keyed memoization scheme. The
// store is a performance optimization only: any store error falls back
// to direct evaluation and is logged, never propagated.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *zerolog.Logger
}

// New creates a permission cache. A non-positive ttl selects
// DefaultTTL.
func New(store Store, ttl time.Duration, logger *zerolog.Logger) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Cache{
		store:  store,
		ttl:    ttl,
		logger: logger,
	}
}

// Do returns the memoized decision for key, computing it with compute
// on a miss. Caching never changes the answer: on any store failure the
// predicate result is returned directly.
func (c *Cache) Do(ctx context.Context, key Key, compute func() bool) (bool, Outcome) {
	cacheKey, err := c.buildKey(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("permission", key.Permission).
			Msg("permission cache unavailable, evaluating directly")
		return compute(), OutcomeBypass
	}

	if value, found, err := c.store.Get(ctx, cacheKey); err != nil {
		c.logger.Warn().Err(err).Str("permission", key.Permission).
			Msg("permission cache read failed, evaluating directly")
		return compute(), OutcomeBypass
	} else if found {
		return value, OutcomeHit
	}

	value := compute()
	if err := c.store.Set(ctx, cacheKey, value, c.ttl); err != nil {
		c.logger.Warn().Err(err).Str("permission", key.Permission).
			Msg("permission cache write failed")
	}
	return value, OutcomeMiss
}

// InvalidateUser orphans every cached decision involving the user by
// bumping its version counter. Invalidating an unknown user is a no-op.
func (c *Cache) InvalidateUser(ctx context.Context, userID uuid.UUID) {
	c.invalidate(ctx, userEntity(userID))
}

// InvalidateObject orphans every cached decision involving the target
// object.
func (c *Cache) InvalidateObject(ctx context.Context, objectID uuid.UUID) {
	c.invalidate(ctx, objectEntity(objectID))
}

func (c *Cache) invalidate(ctx context.Context, entity string) {
	if _, err := c.store.IncrVersion(ctx, entity); err != nil {
		c.logger.Warn().Err(err).Str("entity", entity).
			Msg("permission cache invalidation failed")
	}
}

// buildKey embeds the current user and object versions in the cache
// key. Old versions leave previously written keys unreachable; they
// expire through the TTL.
func (c *Cache) buildKey(ctx context.Context, key Key) (string, error) {
	userVersion, err := c.store.GetVersion(ctx, userEntity(key.UserID))
	if err != nil {
		return "", fmt.Errorf("failed to read user version: %w", err)
	}

	if key.ObjectID == uuid.Nil {
		return fmt.Sprintf("authz:%s:u:%s:v%d:q:%s",
			key.Permission, key.UserID, userVersion, key.Qualifier), nil
	}

	objectVersion, err := c.store.GetVersion(ctx, objectEntity(key.ObjectID))
	if err != nil {
		return "", fmt.Errorf("failed to read object version: %w", err)
	}

	return fmt.Sprintf("authz:%s:u:%s:v%d:o:%s:v%d:q:%s",
		key.Permission, key.UserID, userVersion,
		key.ObjectID, objectVersion, key.Qualifier), nil
}

func userEntity(id uuid.UUID) string {
	return "user:" + id.String()
}

func objectEntity(id uuid.UUID) string {
	return "object:" + id.String()
}
