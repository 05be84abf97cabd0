package quota

import (
	"sync"
	"time"

	"github.com/vnavash/banksync/pkg/models"
)

// statusCache is a read-through cache for quota lookups. Entries expire
// after a fixed TTL and are invalidated as soon as quota is consumed, so
// a stale "allowed" answer can live at most one TTL.
type statusCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]cacheEntry
}

type cacheEntry struct {
	status    models.QuotaStatus
	expiresAt time.Time
}

func newStatusCache(ttl time.Duration, now func() time.Time) *statusCache {
	return &statusCache{
		ttl:     ttl,
		now:     now,
		entries: make(map[string]cacheEntry),
	}
}

func (c *statusCache) get(key string) (models.QuotaStatus, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return models.QuotaStatus{}, false
	}
	if c.now().After(entry.expiresAt) {
		delete(c.entries, key)
		return models.QuotaStatus{}, false
	}
	return entry.status, true
}

func (c *statusCache) set(key string, status models.QuotaStatus) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.entries[key] = cacheEntry{
		status:    status,
		expiresAt: c.now().Add(c.ttl),
	}
}

func (c *statusCache) invalidate(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	delete(c.entries, key)
}
