package sqlite

import (
	"context"
	"database/sql"
	"fmt"
)

// migration is one versioned schema step. Steps run in order inside a single
// transaction per step and are recorded in schema_migrations so reruns are
// no-ops.
type migration struct {
	version int
	name    string
	stmts   []string
}

var migrations = []migration{
	{
		version: 1,
		name:    "create core tables",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS members (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL,
				email TEXT NOT NULL UNIQUE COLLATE NOCASE,
				company TEXT NOT NULL DEFAULT '',
				role TEXT NOT NULL DEFAULT '',
				avatar TEXT,
				skills TEXT NOT NULL DEFAULT '[]',
				interests TEXT NOT NULL DEFAULT '[]',
				active INTEGER NOT NULL DEFAULT 1,
				day_pass INTEGER NOT NULL DEFAULT 0,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS rooms (
				id TEXT PRIMARY KEY,
				name TEXT NOT NULL UNIQUE,
				capacity INTEGER NOT NULL CHECK (capacity > 0),
				location TEXT NOT NULL DEFAULT '',
				equipment TEXT NOT NULL DEFAULT '[]',
				image TEXT,
				available INTEGER NOT NULL DEFAULT 1,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS reservations (
				id TEXT PRIMARY KEY,
				room_id TEXT NOT NULL REFERENCES rooms(id),
				member_id TEXT NOT NULL REFERENCES members(id),
				date TEXT NOT NULL,
				start_slot TEXT NOT NULL,
				end_slot TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'confirmed',
				purpose TEXT NOT NULL DEFAULT '',
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL,
				CHECK (start_slot < end_slot)
			)`,
			`CREATE INDEX IF NOT EXISTS idx_reservations_room_date
				ON reservations (room_id, date)`,
			`CREATE TABLE IF NOT EXISTS reservation_attendees (
				reservation_id TEXT NOT NULL REFERENCES reservations(id) ON DELETE CASCADE,
				member_id TEXT NOT NULL REFERENCES members(id),
				PRIMARY KEY (reservation_id, member_id)
			)`,
		},
	},
	{
		version: 2,
		name:    "create checkins table",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS checkins (
				id TEXT PRIMARY KEY,
				member_id TEXT NOT NULL REFERENCES members(id),
				reservation_id TEXT REFERENCES reservations(id) ON DELETE SET NULL,
				space TEXT NOT NULL,
				date TEXT NOT NULL,
				start_slot TEXT NOT NULL,
				end_slot TEXT NOT NULL,
				status TEXT NOT NULL DEFAULT 'waiting',
				checked_in_at TEXT,
				checked_out_at TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE INDEX IF NOT EXISTS idx_checkins_date ON checkins (date)`,
		},
	},
	{
		version: 3,
		name:    "create events tables",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS events (
				id TEXT PRIMARY KEY,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				date TEXT NOT NULL,
				start_slot TEXT NOT NULL,
				end_slot TEXT NOT NULL,
				location TEXT NOT NULL DEFAULT '',
				organizer TEXT NOT NULL DEFAULT '',
				type TEXT NOT NULL DEFAULT 'workshop',
				max_attendees INTEGER NOT NULL CHECK (max_attendees > 0),
				image TEXT,
				created_at TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
			`CREATE TABLE IF NOT EXISTS event_attendees (
				event_id TEXT NOT NULL REFERENCES events(id) ON DELETE CASCADE,
				member_id TEXT NOT NULL REFERENCES members(id),
				PRIMARY KEY (event_id, member_id)
			)`,
		},
	},
	{
		version: 4,
		name:    "create settings table",
		stmts: []string{
			`CREATE TABLE IF NOT EXISTS settings (
				section TEXT PRIMARY KEY,
				value TEXT NOT NULL,
				updated_at TEXT NOT NULL
			)`,
		},
	},
}

// Migrate brings the schema up to the current version.
func Migrate(ctx context.Context, pool *ConnectionPool) error {
	if _, err := pool.DB().ExecContext(ctx, `CREATE TABLE IF NOT EXISTS schema_migrations (
		version INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		applied_at TEXT NOT NULL DEFAULT (datetime('now'))
	)`); err != nil {
		return fmt.Errorf("sqlite: failed to create schema_migrations: %w", err)
	}

	applied := make(map[int]bool)
	rows, err := pool.DB().QueryContext(ctx, `SELECT version FROM schema_migrations`)
	if err != nil {
		return fmt.Errorf("sqlite: failed to read schema_migrations: %w", err)
	}
	for rows.Next() {
		var version int
		if err := rows.Scan(&version); err != nil {
			rows.Close()
			return fmt.Errorf("sqlite: failed to scan schema_migrations: %w", err)
		}
		applied[version] = true
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return fmt.Errorf("sqlite: failed to read schema_migrations: %w", err)
	}
	rows.Close()

	for _, m := range migrations {
		if applied[m.version] {
			continue
		}
		err := pool.WithTransaction(ctx, func(tx *sql.Tx) error {
			for _, stmt := range m.stmts {
				if _, err := tx.Exec(stmt); err != nil {
					return fmt.Errorf("sqlite: migration %d (%s) failed: %w", m.version, m.name, err)
				}
			}
			_, err := tx.Exec(`INSERT INTO schema_migrations (version, name, applied_at) VALUES (?, ?, datetime('now'))`, m.version, m.name)
			return err
		})
		if err != nil {
			return err
		}
	}

	return nil
}
