package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/spacehub/internal/persistence"
)

// Interface compliance checks.
var (
	_ persistence.RoomRepository        = (*RoomRepository)(nil)
	_ persistence.MemberRepository      = (*MemberRepository)(nil)
	_ persistence.ReservationRepository = (*ReservationRepository)(nil)
	_ persistence.CheckinRepository     = (*CheckinRepository)(nil)
	_ persistence.EventRepository       = (*EventRepository)(nil)
	_ persistence.SettingsRepository    = (*SettingsRepository)(nil)
)

// setupTestPool opens a fresh migrated database in a per-test temp directory.
func setupTestPool(t *testing.T) *ConnectionPool {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "test.db")
	pool, err := NewConnectionPool(DefaultConfig(dbPath))
	if err != nil {
		t.Fatalf("Failed to create connection pool: %v", err)
	}
	t.Cleanup(func() {
		pool.Close()
	})

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Failed to migrate test database: %v", err)
	}

	return pool
}

func TestMigrateIsIdempotent(t *testing.T) {
	pool := setupTestPool(t)

	if err := Migrate(context.Background(), pool); err != nil {
		t.Fatalf("Second migrate failed: %v", err)
	}
}

func TestSeed(t *testing.T) {
	pool := setupTestPool(t)
	ctx := context.Background()

	if err := Seed(ctx, pool); err != nil {
		t.Fatalf("Seed failed: %v", err)
	}

	rooms, err := NewRoomRepository(pool).ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 4 {
		t.Fatalf("Expected 4 seeded rooms, got %d", len(rooms))
	}

	members, err := NewMemberRepository(pool).ListMembers(ctx)
	if err != nil {
		t.Fatalf("ListMembers failed: %v", err)
	}
	if len(members) != 5 {
		t.Fatalf("Expected 5 seeded members, got %d", len(members))
	}

	reservations, err := NewReservationRepository(pool).ListReservations(ctx, persistence.ReservationFilter{})
	if err != nil {
		t.Fatalf("ListReservations failed: %v", err)
	}
	if len(reservations) != 2 {
		t.Fatalf("Expected 2 seeded reservations, got %d", len(reservations))
	}

	events, err := NewEventRepository(pool).ListEvents(ctx, persistence.EventFilter{})
	if err != nil {
		t.Fatalf("ListEvents failed: %v", err)
	}
	if len(events) != 3 {
		t.Fatalf("Expected 3 seeded events, got %d", len(events))
	}

	settings, err := NewSettingsRepository(pool).ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings failed: %v", err)
	}
	if len(settings) != 4 {
		t.Fatalf("Expected 4 settings sections, got %d", len(settings))
	}

	// Seeding twice must not duplicate the catalog.
	if err := Seed(ctx, pool); err != nil {
		t.Fatalf("Second seed failed: %v", err)
	}
	rooms, err = NewRoomRepository(pool).ListRooms(ctx)
	if err != nil {
		t.Fatalf("ListRooms failed: %v", err)
	}
	if len(rooms) != 4 {
		t.Fatalf("Expected seed to be idempotent, got %d rooms", len(rooms))
	}
}
