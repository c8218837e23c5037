package presence

import (
	"context"
	"sync"
	"time"
)

type memoryEntry struct {
	memberID  string
	expiresAt time.Time
}

// MemoryTracker keeps occupancy in a process-local map. It is the default
// for single-instance deployments and for tests.
type MemoryTracker struct {
	mu      sync.RWMutex
	entries map[string]memoryEntry
	ttl     time.Duration
	now     func() time.Time
}

// NewMemoryTracker creates an in-process tracker. A non-positive ttl falls
// back to DefaultTTL.
func NewMemoryTracker(ttl time.Duration) *MemoryTracker {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemoryTracker{
		entries: make(map[string]memoryEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Occupy marks a space as taken by the given member.
func (t *MemoryTracker) Occupy(ctx context.Context, space, memberID string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.entries[space] = memoryEntry{
		memberID:  memberID,
		expiresAt: t.now().Add(t.ttl),
	}
	return nil
}

// Release clears the occupancy mark for a space.
func (t *MemoryTracker) Release(ctx context.Context, space string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	delete(t.entries, space)
	return nil
}

// IsOccupied reports whether a space currently has an occupant.
func (t *MemoryTracker) IsOccupied(ctx context.Context, space string) (bool, error) {
	t.mu.RLock()
	entry, ok := t.entries[space]
	t.mu.RUnlock()
	if !ok {
		return false, nil
	}
	if t.now().After(entry.expiresAt) {
		t.mu.Lock()
		delete(t.entries, space)
		t.mu.Unlock()
		return false, nil
	}
	return true, nil
}

// Occupants returns the current space to member mapping.
func (t *MemoryTracker) Occupants(ctx context.Context) (map[string]string, error) {
	now := t.now()

	t.mu.Lock()
	defer t.mu.Unlock()

	out := make(map[string]string, len(t.entries))
	for space, entry := range t.entries {
		if now.After(entry.expiresAt) {
			delete(t.entries, space)
			continue
		}
		out[space] = entry.memberID
	}
	return out, nil
}

// Close is a no-op for the in-process tracker.
func (t *MemoryTracker) Close() error { return nil }
