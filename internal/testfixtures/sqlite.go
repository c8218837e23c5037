package testfixtures

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/example/spacehub/internal/persistence"
	"github.com/example/spacehub/internal/persistence/sqlite"
)

// SQLiteHarness provides repository access backed by a temporary SQLite
// database for integration-style persistence tests.
type SQLiteHarness struct {
	Pool *sqlite.ConnectionPool

	Members      persistence.MemberRepository
	Rooms        persistence.RoomRepository
	Reservations persistence.ReservationRepository
	Checkins     persistence.CheckinRepository
	Events       persistence.EventRepository
	Settings     persistence.SettingsRepository

	cleanup func()
}

// Close releases resources associated with the harness.
func (h *SQLiteHarness) Close() {
	if h != nil && h.cleanup != nil {
		h.cleanup()
		h.cleanup = nil
	}
}

// NewSQLiteHarness constructs a SQLiteHarness using a temporary file that is
// migrated automatically. Callers may optionally invoke Close, but the helper
// will also register a cleanup callback with the provided testing.TB.
func NewSQLiteHarness(tb testing.TB) *SQLiteHarness {
	tb.Helper()

	dir := tb.TempDir()
	dsn := "file:" + filepath.Join(dir, "spacehub.db")

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(dsn))
	if err != nil {
		tb.Fatalf("failed to open storage: %v", err)
	}

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		_ = pool.Close()
		tb.Fatalf("failed to migrate storage: %v", err)
	}

	harness := &SQLiteHarness{
		Pool:         pool,
		Members:      sqlite.NewMemberRepository(pool),
		Rooms:        sqlite.NewRoomRepository(pool),
		Reservations: sqlite.NewReservationRepository(pool),
		Checkins:     sqlite.NewCheckinRepository(pool),
		Events:       sqlite.NewEventRepository(pool),
		Settings:     sqlite.NewSettingsRepository(pool),
		cleanup: func() {
			_ = pool.Close()
		},
	}

	tb.Cleanup(harness.Close)
	return harness
}
