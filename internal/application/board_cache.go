package application

import (
	"sync"
	"time"

	"github.com/example/spacehub/internal/availability"
)

// boardCache stores recently computed slot boards to avoid repeated occupancy
// scans for identical queries while reservations remain unchanged.
type boardCache struct {
	mu         sync.RWMutex
	now        func() time.Time
	ttl        time.Duration
	maxEntries int
	entries    map[string]boardCacheEntry
}

type boardCacheEntry struct {
	slots     []SlotStatus
	expiresAt time.Time
}

func newBoardCache(ttl time.Duration, maxEntries int, now func() time.Time) *boardCache {
	if ttl <= 0 {
		ttl = 30 * time.Second
	}
	if maxEntries <= 0 {
		maxEntries = 128
	}
	if now == nil {
		now = time.Now
	}
	return &boardCache{
		now:        now,
		ttl:        ttl,
		maxEntries: maxEntries,
		entries:    make(map[string]boardCacheEntry),
	}
}

func (c *boardCache) Get(key string) ([]SlotStatus, bool) {
	if c == nil {
		return nil, false
	}
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return nil, false
	}
	return cloneSlots(entry.slots), true
}

func (c *boardCache) Store(key string, slots []SlotStatus) {
	if c == nil {
		return
	}
	cloned := cloneSlots(slots)
	expiry := c.now().Add(c.ttl)

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cleanupLocked()
	if len(c.entries) >= c.maxEntries {
		c.evictOneLocked()
	}
	c.entries[key] = boardCacheEntry{slots: cloned, expiresAt: expiry}
}

func (c *boardCache) Invalidate() {
	if c == nil {
		return
	}
	c.mu.Lock()
	c.entries = make(map[string]boardCacheEntry)
	c.mu.Unlock()
}

func (c *boardCache) cleanupLocked() {
	now := c.now()
	for key, entry := range c.entries {
		if now.After(entry.expiresAt) {
			delete(c.entries, key)
		}
	}
}

func (c *boardCache) evictOneLocked() {
	for key := range c.entries {
		delete(c.entries, key)
		return
	}
}

func cloneSlots(slots []SlotStatus) []SlotStatus {
	if len(slots) == 0 {
		return nil
	}
	out := make([]SlotStatus, len(slots))
	copy(out, slots)
	return out
}

func buildBoardCacheKey(roomID string, date availability.Date) string {
	return roomID + "|" + date.String()
}
