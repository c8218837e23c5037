package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/spacehub/internal/availability"
	"github.com/example/spacehub/internal/persistence"
)

type checkinRepoStub struct {
	entries map[string]CheckinEntry

	deletedDate *availability.Date
	createErr   error
	updateErr   error
	listErr     error
}

func newCheckinRepoStub() *checkinRepoStub {
	return &checkinRepoStub{entries: make(map[string]CheckinEntry)}
}

func (c *checkinRepoStub) CreateCheckin(ctx context.Context, entry CheckinEntry) (CheckinEntry, error) {
	if c.createErr != nil {
		return CheckinEntry{}, c.createErr
	}
	c.entries[entry.ID] = entry
	return entry, nil
}

func (c *checkinRepoStub) UpdateCheckin(ctx context.Context, entry CheckinEntry) (CheckinEntry, error) {
	if c.updateErr != nil {
		return CheckinEntry{}, c.updateErr
	}
	if _, ok := c.entries[entry.ID]; !ok {
		return CheckinEntry{}, persistence.ErrNotFound
	}
	c.entries[entry.ID] = entry
	return entry, nil
}

func (c *checkinRepoStub) GetCheckin(ctx context.Context, id string) (CheckinEntry, error) {
	entry, ok := c.entries[id]
	if !ok {
		return CheckinEntry{}, persistence.ErrNotFound
	}
	return entry, nil
}

func (c *checkinRepoStub) ListCheckins(ctx context.Context, query CheckinQuery) ([]CheckinEntry, error) {
	if c.listErr != nil {
		return nil, c.listErr
	}
	out := make([]CheckinEntry, 0, len(c.entries))
	for _, entry := range c.entries {
		if query.Date != nil && !entry.Date.Equal(*query.Date) {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

func (c *checkinRepoStub) DeleteCheckinsForDate(ctx context.Context, date availability.Date) error {
	c.deletedDate = &date
	for id, entry := range c.entries {
		if entry.Date.Equal(date) {
			delete(c.entries, id)
		}
	}
	return nil
}

type memberBrowserStub struct {
	members map[string]Member
}

func (m *memberBrowserStub) ListMembers(ctx context.Context) ([]Member, error) {
	out := make([]Member, 0, len(m.members))
	for _, member := range m.members {
		out = append(out, member)
	}
	return out, nil
}

func (m *memberBrowserStub) GetMember(ctx context.Context, id string) (Member, error) {
	member, ok := m.members[id]
	if !ok {
		return Member{}, persistence.ErrNotFound
	}
	return member, nil
}

type presenceStub struct {
	occupied map[string]string
}

func newPresenceStub() *presenceStub {
	return &presenceStub{occupied: make(map[string]string)}
}

func (p *presenceStub) Occupy(ctx context.Context, space, memberID string) error {
	p.occupied[space] = memberID
	return nil
}

func (p *presenceStub) Release(ctx context.Context, space string) error {
	delete(p.occupied, space)
	return nil
}

func (p *presenceStub) IsOccupied(ctx context.Context, space string) (bool, error) {
	_, ok := p.occupied[space]
	return ok, nil
}

func (p *presenceStub) Occupants(ctx context.Context) (map[string]string, error) {
	occupants := make(map[string]string, len(p.occupied))
	for space, memberID := range p.occupied {
		occupants[space] = memberID
	}
	return occupants, nil
}

type publisherStub struct {
	published []CheckinEntry
}

func (p *publisherStub) PublishCheckin(entry CheckinEntry) {
	p.published = append(p.published, entry)
}

func TestCheckinService_BuildDailyCheckins(t *testing.T) {
	date := availability.MustDate("2025-01-27")
	members := &memberBrowserStub{members: map[string]Member{
		"member-1": {ID: "member-1", Name: "Ana Silva", Active: true},
		"member-5": {ID: "member-5", Name: "Sofia Oliveira", Active: true, DayPass: true},
		"member-3": {ID: "member-3", Name: "Marina Costa", Active: false, DayPass: true},
	}}
	reservations := &reservationRepoStub{list: []Reservation{
		{
			ID:       "res-1",
			RoomID:   "room-1",
			RoomName: "Innovation Hub",
			MemberID: "member-1",
			Date:     date,
			Start:    availability.MustSlot("10:00"),
			End:      availability.MustSlot("11:30"),
			Status:   ReservationStatusConfirmed,
		},
	}}

	repo := newCheckinRepoStub()
	svc := NewCheckinService(repo, members, reservations, nil, nil, sequentialIDGen("chk"), nil)

	entries, err := svc.BuildDailyCheckins(context.Background(), date)
	if err != nil {
		t.Fatalf("expected success, got %v", err)
	}

	if len(entries) != 2 {
		t.Fatalf("expected one reservation entry plus one day pass, got %d", len(entries))
	}

	var fromReservation, dayPass *CheckinEntry
	for i := range entries {
		if entries[i].ReservationID != nil {
			fromReservation = &entries[i]
		} else {
			dayPass = &entries[i]
		}
	}
	if fromReservation == nil || fromReservation.Space != "Innovation Hub" {
		t.Fatalf("expected an entry for the reservation, got %+v", entries)
	}
	if fromReservation.MemberName != "Ana Silva" {
		t.Fatalf("expected member name to be resolved, got %q", fromReservation.MemberName)
	}
	if fromReservation.Status != CheckinStatusWaiting {
		t.Fatalf("expected waiting status, got %q", fromReservation.Status)
	}
	if dayPass == nil || dayPass.Space != DayPassSpace {
		t.Fatalf("expected a day pass entry for the active day-pass member, got %+v", entries)
	}
	if dayPass.MemberID != "member-5" {
		t.Fatalf("expected only active day-pass members, got %q", dayPass.MemberID)
	}

	if repo.deletedDate == nil || !repo.deletedDate.Equal(date) {
		t.Fatalf("expected the previous board for the date to be cleared")
	}
}

func TestCheckinService_ManualCheckin(t *testing.T) {
	date := availability.MustDate("2025-01-27")
	members := &memberBrowserStub{members: map[string]Member{
		"member-2": {ID: "member-2", Name: "Carlos Mendes", Active: true},
	}}

	t.Run("records a walk-in and occupies the space", func(t *testing.T) {
		repo := newCheckinRepoStub()
		presence := newPresenceStub()
		publisher := &publisherStub{}
		now := time.Date(2025, time.January, 27, 9, 15, 0, 0, time.UTC)
		svc := NewCheckinService(repo, members, nil, presence, publisher, sequentialIDGen("chk"), func() time.Time { return now })

		entry, err := svc.ManualCheckin(context.Background(), ManualCheckinInput{
			MemberID: "member-2",
			Space:    "Focus Room",
			Date:     date,
			Start:    availability.MustSlot("09:00"),
			End:      availability.MustSlot("12:00"),
		})
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if entry.Status != CheckinStatusCheckedIn {
			t.Fatalf("expected checked-in status, got %q", entry.Status)
		}
		if entry.CheckedInAt == nil || !entry.CheckedInAt.Equal(now) {
			t.Fatalf("expected check-in timestamp from injected clock, got %v", entry.CheckedInAt)
		}
		if entry.MemberName != "Carlos Mendes" {
			t.Fatalf("expected member name to be resolved, got %q", entry.MemberName)
		}
		if occupied, _ := presence.IsOccupied(context.Background(), "Focus Room"); !occupied {
			t.Fatalf("expected the space to be marked occupied")
		}
		if len(publisher.published) != 1 {
			t.Fatalf("expected one published update, got %d", len(publisher.published))
		}
	})

	t.Run("rejects an occupied space", func(t *testing.T) {
		repo := newCheckinRepoStub()
		presence := newPresenceStub()
		presence.occupied["Focus Room"] = "member-9"
		svc := NewCheckinService(repo, members, nil, presence, nil, sequentialIDGen("chk"), nil)

		_, err := svc.ManualCheckin(context.Background(), ManualCheckinInput{
			MemberID: "member-2",
			Space:    "Focus Room",
			Date:     date,
			Start:    availability.MustSlot("09:00"),
			End:      availability.MustSlot("12:00"),
		})
		if !errors.Is(err, ErrSpaceOccupied) {
			t.Fatalf("expected ErrSpaceOccupied, got %v", err)
		}
	})

	t.Run("rejects unknown members", func(t *testing.T) {
		svc := NewCheckinService(newCheckinRepoStub(), members, nil, nil, nil, sequentialIDGen("chk"), nil)

		_, err := svc.ManualCheckin(context.Background(), ManualCheckinInput{
			MemberID: "member-404",
			Space:    "Focus Room",
			Date:     date,
			Start:    availability.MustSlot("09:00"),
			End:      availability.MustSlot("12:00"),
		})
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestCheckinService_CheckInAndOut(t *testing.T) {
	date := availability.MustDate("2025-01-27")

	seedEntry := func(repo *checkinRepoStub, status string) CheckinEntry {
		entry := CheckinEntry{
			ID:       "chk-1",
			MemberID: "member-1",
			Space:    "Innovation Hub",
			Date:     date,
			Start:    availability.MustSlot("10:00"),
			End:      availability.MustSlot("11:30"),
			Status:   status,
		}
		repo.entries[entry.ID] = entry
		return entry
	}

	t.Run("checks in a waiting entry", func(t *testing.T) {
		repo := newCheckinRepoStub()
		seedEntry(repo, CheckinStatusWaiting)
		presence := newPresenceStub()
		now := time.Date(2025, time.January, 27, 10, 2, 0, 0, time.UTC)
		svc := NewCheckinService(repo, nil, nil, presence, nil, nil, func() time.Time { return now })

		entry, err := svc.CheckIn(context.Background(), "chk-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if entry.Status != CheckinStatusCheckedIn {
			t.Fatalf("expected checked-in status, got %q", entry.Status)
		}
		if entry.CheckedInAt == nil || !entry.CheckedInAt.Equal(now) {
			t.Fatalf("expected arrival timestamp, got %v", entry.CheckedInAt)
		}
		if occupied, _ := presence.IsOccupied(context.Background(), "Innovation Hub"); !occupied {
			t.Fatalf("expected the space to be marked occupied")
		}
	})

	t.Run("rejects checking in an entry twice", func(t *testing.T) {
		repo := newCheckinRepoStub()
		seedEntry(repo, CheckinStatusCheckedIn)
		svc := NewCheckinService(repo, nil, nil, nil, nil, nil, nil)

		_, err := svc.CheckIn(context.Background(), "chk-1")

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
	})

	t.Run("checks out a checked-in entry and releases the space", func(t *testing.T) {
		repo := newCheckinRepoStub()
		seedEntry(repo, CheckinStatusCheckedIn)
		presence := newPresenceStub()
		presence.occupied["Innovation Hub"] = "member-1"
		now := time.Date(2025, time.January, 27, 11, 45, 0, 0, time.UTC)
		svc := NewCheckinService(repo, nil, nil, presence, nil, nil, func() time.Time { return now })

		entry, err := svc.CheckOut(context.Background(), "chk-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if entry.Status != CheckinStatusCheckedOut {
			t.Fatalf("expected checked-out status, got %q", entry.Status)
		}
		if entry.CheckedOutAt == nil || !entry.CheckedOutAt.Equal(now) {
			t.Fatalf("expected departure timestamp, got %v", entry.CheckedOutAt)
		}
		if occupied, _ := presence.IsOccupied(context.Background(), "Innovation Hub"); occupied {
			t.Fatalf("expected the space to be released")
		}
	})

	t.Run("rejects checking out an entry that never arrived", func(t *testing.T) {
		repo := newCheckinRepoStub()
		seedEntry(repo, CheckinStatusWaiting)
		svc := NewCheckinService(repo, nil, nil, nil, nil, nil, nil)

		_, err := svc.CheckOut(context.Background(), "chk-1")
		if !errors.Is(err, ErrNotCheckedIn) {
			t.Fatalf("expected ErrNotCheckedIn, got %v", err)
		}
	})
}

func TestCheckinService_ListCheckins(t *testing.T) {
	date := availability.MustDate("2025-01-27")
	repo := newCheckinRepoStub()
	repo.entries["chk-1"] = CheckinEntry{ID: "chk-1", MemberName: "Ana Silva", Space: "Innovation Hub", Date: date, Status: CheckinStatusWaiting}
	repo.entries["chk-2"] = CheckinEntry{ID: "chk-2", MemberName: "Carlos Mendes", Space: "Focus Room", Date: date, Status: CheckinStatusWaiting}
	svc := NewCheckinService(repo, nil, nil, nil, nil, nil, nil)

	got, err := svc.ListCheckins(context.Background(), CheckinQuery{Date: &date, Search: "ana"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "chk-1" {
		t.Fatalf("expected the search to match by member name, got %+v", got)
	}

	got, err = svc.ListCheckins(context.Background(), CheckinQuery{Date: &date, Search: "focus"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(got) != 1 || got[0].ID != "chk-2" {
		t.Fatalf("expected the search to match by space, got %+v", got)
	}
}

func TestCheckinService_ListOccupants(t *testing.T) {
	members := &memberBrowserStub{members: map[string]Member{
		"member-1": {ID: "member-1", Name: "Ana Silva", Active: true},
		"member-2": {ID: "member-2", Name: "Carlos Mendes", Active: true},
	}}

	t.Run("lists occupied spaces sorted with member names", func(t *testing.T) {
		presence := newPresenceStub()
		if err := presence.Occupy(context.Background(), "Hot Desk 4", "member-2"); err != nil {
			t.Fatalf("Occupy failed: %v", err)
		}
		if err := presence.Occupy(context.Background(), "Focus Room", "member-1"); err != nil {
			t.Fatalf("Occupy failed: %v", err)
		}

		svc := NewCheckinService(newCheckinRepoStub(), members, nil, presence, nil, nil, nil)
		occupants, err := svc.ListOccupants(context.Background())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(occupants) != 2 {
			t.Fatalf("expected two occupants, got %+v", occupants)
		}
		if occupants[0].Space != "Focus Room" || occupants[0].MemberName != "Ana Silva" {
			t.Errorf("unexpected first occupant: %+v", occupants[0])
		}
		if occupants[1].Space != "Hot Desk 4" || occupants[1].MemberID != "member-2" {
			t.Errorf("unexpected second occupant: %+v", occupants[1])
		}
	})

	t.Run("reports an empty floor without a tracker", func(t *testing.T) {
		svc := NewCheckinService(newCheckinRepoStub(), members, nil, nil, nil, nil, nil)
		occupants, err := svc.ListOccupants(context.Background())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if occupants != nil {
			t.Fatalf("expected no occupants, got %+v", occupants)
		}
	})
}
