// Package presence tracks which spaces currently have someone checked in.
// It backs the check-in dashboard's live occupancy view and the guard
// against double-booking a walk-in space. Two implementations exist: an
// in-process map for single-instance deployments and a Redis one for setups
// where the dashboard runs next to other tooling sharing the same state.
package presence

import (
	"context"
	"time"
)

// Tracker records and queries space occupancy. Occupancy is advisory state,
// not a booking: entries expire on their own so a crashed process cannot
// leave a space marked busy forever.
type Tracker interface {
	// Occupy marks a space as taken by the given member.
	Occupy(ctx context.Context, space, memberID string) error
	// Release clears the occupancy mark for a space. Releasing a free
	// space is a no-op.
	Release(ctx context.Context, space string) error
	// IsOccupied reports whether a space currently has an occupant.
	IsOccupied(ctx context.Context, space string) (bool, error)
	// Occupants returns the current space to member mapping.
	Occupants(ctx context.Context) (map[string]string, error)
	// Close releases any resources held by the tracker.
	Close() error
}

// Config selects and parameterizes the tracker implementation.
type Config struct {
	// RedisEnabled switches from the in-process tracker to Redis.
	RedisEnabled bool
	// RedisURI takes priority over the individual connection fields.
	RedisURI      string
	RedisHost     string
	RedisPort     string
	RedisUsername string
	RedisPassword string
	RedisDB       int
	// KeyPrefix namespaces every key this tracker writes.
	KeyPrefix string
	// TTL bounds how long an occupancy mark survives without renewal.
	TTL time.Duration
}

// DefaultTTL is applied when the config leaves TTL unset.
const DefaultTTL = 12 * time.Hour

// New builds the tracker selected by the config: Redis when enabled,
// otherwise the in-process implementation.
func New(cfg Config) (Tracker, error) {
	if cfg.RedisEnabled {
		return NewRedisTracker(cfg)
	}
	return NewMemoryTracker(cfg.TTL), nil
}
