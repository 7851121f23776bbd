package readmodel

import (
	"context"
	"strings"
	"sync"
	"time"
)

// Cache stores serialized read models under a scope. Invalidate drops every entry of
// a scope at once.
type Cache interface {
	Get(ctx context.Context, scope, key string) ([]byte, bool, error)
	Set(ctx context.Context, scope, key string, data []byte, ttl time.Duration) error
	Invalidate(ctx context.Context, scope string) error
}

// memorySweepSize is the entry count past which Set drops expired entries.
const memorySweepSize = 256

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

type MemoryCache struct {
	mu      sync.Mutex
	now     func() time.Time
	entries map[string]memoryEntry
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		now:     time.Now,
		entries: make(map[string]memoryEntry),
	}
}

func (c *MemoryCache) Get(ctx context.Context, scope, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	name := scope + ":" + key
	entry, ok := c.entries[name]
	if !ok {
		return nil, false, nil
	}
	if !c.now().Before(entry.expiresAt) {
		delete(c.entries, name)
		return nil, false, nil
	}
	return entry.data, true, nil
}

func (c *MemoryCache) Set(ctx context.Context, scope, key string, data []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	if len(c.entries) >= memorySweepSize {
		for name, entry := range c.entries {
			if !now.Before(entry.expiresAt) {
				delete(c.entries, name)
			}
		}
	}
	c.entries[scope+":"+key] = memoryEntry{data: data, expiresAt: now.Add(ttl)}
	return nil
}

func (c *MemoryCache) Invalidate(ctx context.Context, scope string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	prefix := scope + ":"
	for name := range c.entries {
		if strings.HasPrefix(name, prefix) {
			delete(c.entries, name)
		}
	}
	return nil
}
