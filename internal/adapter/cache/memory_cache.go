package cache

import (
	"context"
	"sync"
	"time"

	"github.com/example/courses-service/internal/domain"
)

type entry struct {
	ids       []string
	expiresAt time.Time
}

// MemoryListCache is a process-local ListCache with per-key expiry.
type MemoryListCache struct {
	mu    sync.RWMutex
	store map[string]entry
	now   func() time.Time
}

func NewMemoryListCache() *MemoryListCache {
	return &MemoryListCache{store: make(map[string]entry), now: time.Now}
}

// WithClock replaces the time source; used to step over expiry in tests.
func (c *MemoryListCache) WithClock(now func() time.Time) *MemoryListCache {
	c.mu.Lock()
	c.now = now
	c.mu.Unlock()
	return c
}

func (c *MemoryListCache) Exists(_ context.Context, key string) (bool, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	_, ok := c.live(key)
	return ok, nil
}

func (c *MemoryListCache) Get(_ context.Context, key string) ([]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.live(key)
	if !ok {
		return nil, domain.ErrNotFound
	}
	out := make([]string, len(e.ids))
	copy(out, e.ids)
	return out, nil
}

func (c *MemoryListCache) Set(_ context.Context, key string, ids []string, ttl time.Duration) error {
	stored := make([]string, len(ids))
	copy(stored, ids)
	c.mu.Lock()
	c.store[key] = entry{ids: stored, expiresAt: c.now().Add(ttl)}
	c.mu.Unlock()
	return nil
}

// TTL returns the remaining lifetime of key.
func (c *MemoryListCache) TTL(key string) (time.Duration, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.live(key)
	if !ok {
		return 0, false
	}
	return e.expiresAt.Sub(c.now()), true
}

// live must be called with mu held.
func (c *MemoryListCache) live(key string) (entry, bool) {
	e, ok := c.store[key]
	if !ok || !c.now().Before(e.expiresAt) {
		return entry{}, false
	}
	return e, true
}

var _ domain.ListCache = (*MemoryListCache)(nil)
