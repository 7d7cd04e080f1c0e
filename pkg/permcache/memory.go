package permcache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// MemoryStore is a process-local Store for single-instance deployments
// and tests. Decisions live in a go-cache instance with per-entry TTL;
// version counters live in a plain map guarded by a mutex.
type MemoryStore struct {
	entries *gocache.Cache

	mu       sync.Mutex
	versions map[string]int64
}

// NewMemoryStore creates an in-memory store. cleanupInterval controls
// how often expired decisions are swept.
func NewMemoryStore(cleanupInterval time.Duration) *MemoryStore {
	if cleanupInterval <= 0 {
		cleanupInterval = 10 * time.Minute
	}
	return &MemoryStore{
		entries:  gocache.New(gocache.NoExpiration, cleanupInterval),
		versions: make(map[string]int64),
	}
}

func (s *MemoryStore) Get(_ context.Context, key string) (bool, bool, error) {
	value, found := s.entries.Get(key)
	if !found {
		return false, false, nil
	}
	return value.(bool), true, nil
}

func (s *MemoryStore) Set(_ context.Context, key string, value bool, ttl time.Duration) error {
	s.entries.Set(key, value, ttl)
	return nil
}

func (s *MemoryStore) IncrVersion(_ context.Context, entity string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.versions[entity]++
	return s.versions[entity], nil
}

func (s *MemoryStore) GetVersion(_ context.Context, entity string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.versions[entity], nil
}
