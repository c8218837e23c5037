package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/spacehub/internal/availability"
	"github.com/example/spacehub/internal/persistence"
)

func setupCheckinFixtures(t *testing.T) *CheckinRepository {
	t.Helper()

	pool := setupTestPool(t)
	ctx := context.Background()

	members := NewMemberRepository(pool)
	for _, member := range []persistence.Member{
		{ID: "member-1", Name: "Ana Silva", Email: "ana@example.com"},
		{ID: "member-2", Name: "Sofia Oliveira", Email: "sofia@example.com", DayPass: true},
	} {
		if err := members.CreateMember(ctx, member); err != nil {
			t.Fatalf("CreateMember failed: %v", err)
		}
	}

	return NewCheckinRepository(pool)
}

func TestCheckinRepository_CreateAndGet(t *testing.T) {
	repo := setupCheckinFixtures(t)
	ctx := context.Background()

	entry := persistence.CheckinEntry{
		ID:       "checkin-1",
		MemberID: "member-1",
		Space:    "Innovation Hub",
		Date:     availability.MustDate("2025-01-27"),
		Start:    availability.MustSlot("10:00"),
		End:      availability.MustSlot("11:30"),
		Status:   "waiting",
	}

	if err := repo.CreateCheckin(ctx, entry); err != nil {
		t.Fatalf("CreateCheckin failed: %v", err)
	}

	retrieved, err := repo.GetCheckin(ctx, "checkin-1")
	if err != nil {
		t.Fatalf("GetCheckin failed: %v", err)
	}
	if retrieved.Space != "Innovation Hub" || retrieved.Status != "waiting" {
		t.Errorf("Expected entry round-trip, got %+v", retrieved)
	}
	if retrieved.CheckedInAt != nil {
		t.Error("Expected no check-in timestamp yet")
	}
}

func TestCheckinRepository_UpdateTimestamps(t *testing.T) {
	repo := setupCheckinFixtures(t)
	ctx := context.Background()

	entry := persistence.CheckinEntry{
		ID:       "checkin-1",
		MemberID: "member-1",
		Space:    "Innovation Hub",
		Date:     availability.MustDate("2025-01-27"),
		Start:    availability.MustSlot("10:00"),
		End:      availability.MustSlot("11:30"),
		Status:   "waiting",
	}
	if err := repo.CreateCheckin(ctx, entry); err != nil {
		t.Fatalf("CreateCheckin failed: %v", err)
	}

	checkedIn := time.Date(2025, time.January, 27, 10, 5, 0, 0, time.UTC)
	entry.Status = "checked-in"
	entry.CheckedInAt = &checkedIn
	if err := repo.UpdateCheckin(ctx, entry); err != nil {
		t.Fatalf("UpdateCheckin failed: %v", err)
	}

	retrieved, err := repo.GetCheckin(ctx, "checkin-1")
	if err != nil {
		t.Fatalf("GetCheckin failed: %v", err)
	}
	if retrieved.Status != "checked-in" {
		t.Errorf("Expected checked-in status, got %s", retrieved.Status)
	}
	if retrieved.CheckedInAt == nil || !retrieved.CheckedInAt.Equal(checkedIn) {
		t.Errorf("Expected check-in timestamp %v, got %v", checkedIn, retrieved.CheckedInAt)
	}
}

func TestCheckinRepository_ListCheckins(t *testing.T) {
	repo := setupCheckinFixtures(t)
	ctx := context.Background()

	date := availability.MustDate("2025-01-27")
	entries := []persistence.CheckinEntry{
		{
			ID: "checkin-1", MemberID: "member-1", Space: "Innovation Hub",
			Date: date, Start: availability.MustSlot("10:00"), End: availability.MustSlot("11:30"),
			Status: "checked-in",
		},
		{
			ID: "checkin-2", MemberID: "member-2", Space: "Day Pass",
			Date: date, Start: availability.MustSlot("08:00"), End: availability.MustSlot("18:00"),
			Status: "waiting",
		},
		{
			ID: "checkin-3", MemberID: "member-1", Space: "Focus Room",
			Date: availability.MustDate("2025-01-28"), Start: availability.MustSlot("09:00"), End: availability.MustSlot("10:00"),
			Status: "waiting",
		},
	}
	for _, entry := range entries {
		if err := repo.CreateCheckin(ctx, entry); err != nil {
			t.Fatalf("CreateCheckin failed for %s: %v", entry.ID, err)
		}
	}

	byDate, err := repo.ListCheckins(ctx, persistence.CheckinFilter{Date: &date})
	if err != nil {
		t.Fatalf("ListCheckins failed: %v", err)
	}
	if len(byDate) != 2 {
		t.Fatalf("Expected 2 entries for 2025-01-27, got %d", len(byDate))
	}
	if byDate[0].ID != "checkin-2" {
		t.Errorf("Expected ordering by start slot, got %s first", byDate[0].ID)
	}

	waiting, err := repo.ListCheckins(ctx, persistence.CheckinFilter{Date: &date, Statuses: []string{"waiting"}})
	if err != nil {
		t.Fatalf("ListCheckins failed: %v", err)
	}
	if len(waiting) != 1 || waiting[0].ID != "checkin-2" {
		t.Fatalf("Expected only the waiting entry, got %+v", waiting)
	}

	from := availability.MustDate("2025-01-28")
	later, err := repo.ListCheckins(ctx, persistence.CheckinFilter{From: &from})
	if err != nil {
		t.Fatalf("ListCheckins failed: %v", err)
	}
	if len(later) != 1 || later[0].ID != "checkin-3" {
		t.Fatalf("Expected only the 2025-01-28 entry, got %+v", later)
	}

	to := availability.MustDate("2025-01-27")
	earlier, err := repo.ListCheckins(ctx, persistence.CheckinFilter{From: &date, To: &to})
	if err != nil {
		t.Fatalf("ListCheckins failed: %v", err)
	}
	if len(earlier) != 2 {
		t.Fatalf("Expected 2 entries within the range, got %d", len(earlier))
	}
}

func TestCheckinRepository_DeleteCheckinsForDate(t *testing.T) {
	repo := setupCheckinFixtures(t)
	ctx := context.Background()

	date := availability.MustDate("2025-01-27")
	entry := persistence.CheckinEntry{
		ID: "checkin-1", MemberID: "member-1", Space: "Innovation Hub",
		Date: date, Start: availability.MustSlot("10:00"), End: availability.MustSlot("11:30"),
		Status: "waiting",
	}
	if err := repo.CreateCheckin(ctx, entry); err != nil {
		t.Fatalf("CreateCheckin failed: %v", err)
	}

	if err := repo.DeleteCheckinsForDate(ctx, date); err != nil {
		t.Fatalf("DeleteCheckinsForDate failed: %v", err)
	}
	if _, err := repo.GetCheckin(ctx, "checkin-1"); !errors.Is(err, persistence.ErrNotFound) {
		t.Fatalf("Expected ErrNotFound after delete, got %v", err)
	}
}
