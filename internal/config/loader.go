package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config captures environment driven configuration values for the spacehub service.
type Config struct {
	HTTPPort  int
	SQLiteDSN string
	// SeedDemoData loads the demo room, member, and event fixtures on an
	// empty database.
	SeedDemoData bool
	LogLevel     string

	RedisEnabled   bool
	RedisURI       string
	RedisHost      string
	RedisPort      string
	RedisUsername  string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
	PresenceTTL    time.Duration
}

// Load parses configuration values from the current process environment.
//
// The loader applies sensible defaults for optional fields and reports every
// invalid entry in one pass instead of stopping at the first.
func Load() (Config, error) {
	cfg := Config{
		HTTPPort:       8080,
		SQLiteDSN:      "file:spacehub.db?_foreign_keys=on",
		SeedDemoData:   false,
		LogLevel:       "info",
		RedisHost:      "localhost",
		RedisPort:      "6379",
		RedisKeyPrefix: "spacehub:",
		PresenceTTL:    12 * time.Hour,
	}

	invalid := make([]string, 0, 2)

	if portValue := strings.TrimSpace(os.Getenv("SPACEHUB_HTTP_PORT")); portValue != "" {
		port, err := strconv.Atoi(portValue)
		if err != nil || port <= 0 {
			invalid = append(invalid, "SPACEHUB_HTTP_PORT")
		} else {
			cfg.HTTPPort = port
		}
	}

	if dsn := strings.TrimSpace(os.Getenv("SPACEHUB_SQLITE_DSN")); dsn != "" {
		cfg.SQLiteDSN = dsn
	}

	if seedValue := strings.TrimSpace(os.Getenv("SPACEHUB_SEED_DEMO_DATA")); seedValue != "" {
		seed, err := strconv.ParseBool(seedValue)
		if err != nil {
			invalid = append(invalid, "SPACEHUB_SEED_DEMO_DATA")
		} else {
			cfg.SeedDemoData = seed
		}
	}

	if level := strings.ToLower(strings.TrimSpace(os.Getenv("SPACEHUB_LOG_LEVEL"))); level != "" {
		switch level {
		case "debug", "info", "warn", "error":
			cfg.LogLevel = level
		default:
			invalid = append(invalid, "SPACEHUB_LOG_LEVEL")
		}
	}

	if enabledValue := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_ENABLED")); enabledValue != "" {
		enabled, err := strconv.ParseBool(enabledValue)
		if err != nil {
			invalid = append(invalid, "SPACEHUB_REDIS_ENABLED")
		} else {
			cfg.RedisEnabled = enabled
		}
	}

	if uri := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_URI")); uri != "" {
		cfg.RedisURI = uri
	}
	if host := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_HOST")); host != "" {
		cfg.RedisHost = host
	}
	if port := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_PORT")); port != "" {
		cfg.RedisPort = port
	}
	if username := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_USERNAME")); username != "" {
		cfg.RedisUsername = username
	}
	if password := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_PASSWORD")); password != "" {
		cfg.RedisPassword = password
	}
	if dbValue := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_DB")); dbValue != "" {
		db, err := strconv.Atoi(dbValue)
		if err != nil || db < 0 {
			invalid = append(invalid, "SPACEHUB_REDIS_DB")
		} else {
			cfg.RedisDB = db
		}
	}
	if prefix := strings.TrimSpace(os.Getenv("SPACEHUB_REDIS_KEY_PREFIX")); prefix != "" {
		cfg.RedisKeyPrefix = prefix
	}

	if ttlValue := strings.TrimSpace(os.Getenv("SPACEHUB_PRESENCE_TTL")); ttlValue != "" {
		ttl, err := time.ParseDuration(ttlValue)
		if err != nil || ttl <= 0 {
			invalid = append(invalid, "SPACEHUB_PRESENCE_TTL")
		} else {
			cfg.PresenceTTL = ttl
		}
	}

	if len(invalid) > 0 {
		return Config{}, fmt.Errorf("invalid environment variable values: %s", strings.Join(invalid, ", "))
	}

	return cfg, nil
}
