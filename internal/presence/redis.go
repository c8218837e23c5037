package presence

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisTracker stores occupancy in Redis so multiple processes can share
// the same presence view. Each mark lives under a prefixed key with the TTL
// from the config.
type RedisTracker struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// NewRedisTracker connects to Redis using the config. The URI takes
// priority over individual connection fields; the connection is verified
// with a ping before the tracker is returned.
func NewRedisTracker(cfg Config) (*RedisTracker, error) {
	var client *redis.Client

	if cfg.RedisURI != "" {
		opt, err := redis.ParseURL(cfg.RedisURI)
		if err != nil {
			return nil, fmt.Errorf("parsing redis URI: %w", err)
		}
		if opt.DB == 0 {
			opt.DB = cfg.RedisDB
		}
		if opt.Password == "" && cfg.RedisPassword != "" {
			opt.Password = cfg.RedisPassword
		}
		client = redis.NewClient(opt)
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%s", cfg.RedisHost, cfg.RedisPort),
			Username: cfg.RedisUsername,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisTracker{
		client:    client,
		keyPrefix: cfg.KeyPrefix,
		ttl:       ttl,
	}, nil
}

func (t *RedisTracker) spaceKey(space string) string {
	return fmt.Sprintf("%spresence:%s", t.keyPrefix, space)
}

// Occupy marks a space as taken by the given member.
func (t *RedisTracker) Occupy(ctx context.Context, space, memberID string) error {
	if err := t.client.Set(ctx, t.spaceKey(space), memberID, t.ttl).Err(); err != nil {
		return fmt.Errorf("marking space occupied: %w", err)
	}
	return nil
}

// Release clears the occupancy mark for a space.
func (t *RedisTracker) Release(ctx context.Context, space string) error {
	if err := t.client.Del(ctx, t.spaceKey(space)).Err(); err != nil {
		return fmt.Errorf("releasing space: %w", err)
	}
	return nil
}

// IsOccupied reports whether a space currently has an occupant.
func (t *RedisTracker) IsOccupied(ctx context.Context, space string) (bool, error) {
	exists, err := t.client.Exists(ctx, t.spaceKey(space)).Result()
	if err != nil {
		return false, fmt.Errorf("checking space occupancy: %w", err)
	}
	return exists > 0, nil
}

// Occupants returns the current space to member mapping.
func (t *RedisTracker) Occupants(ctx context.Context) (map[string]string, error) {
	pattern := t.spaceKey("*")
	keys, err := t.client.Keys(ctx, pattern).Result()
	if err != nil {
		return nil, fmt.Errorf("listing occupied spaces: %w", err)
	}
	if len(keys) == 0 {
		return map[string]string{}, nil
	}

	values, err := t.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, fmt.Errorf("reading occupants: %w", err)
	}

	prefix := t.spaceKey("")
	out := make(map[string]string, len(keys))
	for i, value := range values {
		if value == nil {
			continue
		}
		memberID, ok := value.(string)
		if !ok {
			continue
		}
		out[strings.TrimPrefix(keys[i], prefix)] = memberID
	}
	return out, nil
}

// Close closes the Redis connection.
func (t *RedisTracker) Close() error {
	return t.client.Close()
}
