package availability

import "testing"

func TestParseSlot(t *testing.T) {
	t.Run("accepts HH:MM", func(t *testing.T) {
		slot, err := ParseSlot("09:30")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if slot != Slot(9*60+30) {
			t.Fatalf("expected 570 minutes, got %d", slot)
		}
		if got := slot.String(); got != "09:30" {
			t.Fatalf("expected 09:30, got %s", got)
		}
	})

	t.Run("rejects malformed values", func(t *testing.T) {
		for _, value := range []string{"", "9:30:00", "25:00", "09:61", "noon"} {
			if _, err := ParseSlot(value); err == nil {
				t.Fatalf("expected error for %q", value)
			}
		}
	})
}

func TestDefaultGrid(t *testing.T) {
	grid := DefaultGrid()
	slots := grid.Slots()

	if len(slots) != 21 {
		t.Fatalf("expected 21 slots, got %d", len(slots))
	}
	if slots[0] != MustSlot("08:00") {
		t.Fatalf("expected first slot 08:00, got %s", slots[0])
	}
	if slots[len(slots)-1] != MustSlot("18:30") {
		t.Fatalf("expected last slot 18:30, got %s", slots[len(slots)-1])
	}
	for i := 1; i < len(slots); i++ {
		if slots[i]-slots[i-1] != 30 {
			t.Fatalf("expected 30 minute spacing, got %d at index %d", slots[i]-slots[i-1], i)
		}
	}
	if grid.Contains(MustSlot("07:30")) {
		t.Fatal("07:30 should be outside the grid")
	}
	if grid.Contains(MustSlot("09:15")) {
		t.Fatal("09:15 is not aligned to the grid step")
	}
	if !grid.Contains(MustSlot("18:30")) {
		t.Fatal("18:30 should be inside the grid")
	}
}

func TestNewGrid(t *testing.T) {
	t.Run("rejects non-positive step", func(t *testing.T) {
		if _, err := NewGrid(MustSlot("08:00"), MustSlot("18:30"), 0); err == nil {
			t.Fatal("expected error for zero step")
		}
	})

	t.Run("rejects inverted bounds", func(t *testing.T) {
		if _, err := NewGrid(MustSlot("18:30"), MustSlot("08:00"), 30); err == nil {
			t.Fatal("expected error for inverted bounds")
		}
	})
}

func TestIsSlotOccupied(t *testing.T) {
	date := MustDate("2025-01-27")
	existing := []Booking{
		{
			ID:     "res-1",
			RoomID: "room-2",
			Date:   date,
			Start:  MustSlot("10:00"),
			End:    MustSlot("11:30"),
			Status: StatusConfirmed,
		},
	}

	t.Run("interval is half-open", func(t *testing.T) {
		for _, slot := range []string{"10:00", "10:30", "11:00"} {
			if !IsSlotOccupied("room-2", date, MustSlot(slot), existing) {
				t.Fatalf("expected %s to be occupied", slot)
			}
		}
		for _, slot := range []string{"09:30", "11:30"} {
			if IsSlotOccupied("room-2", date, MustSlot(slot), existing) {
				t.Fatalf("expected %s to be free", slot)
			}
		}
	})

	t.Run("scoped to room and date", func(t *testing.T) {
		if IsSlotOccupied("room-1", date, MustSlot("10:00"), existing) {
			t.Fatal("other rooms should be free")
		}
		if IsSlotOccupied("room-2", MustDate("2025-01-28"), MustSlot("10:00"), existing) {
			t.Fatal("other dates should be free")
		}
	})

	t.Run("cancelled reservations do not block", func(t *testing.T) {
		cancelled := []Booking{{
			RoomID: "room-2",
			Date:   date,
			Start:  MustSlot("10:00"),
			End:    MustSlot("11:30"),
			Status: StatusCancelled,
		}}
		if IsSlotOccupied("room-2", date, MustSlot("10:00"), cancelled) {
			t.Fatal("cancelled reservation should not occupy slots")
		}
	})

	t.Run("repeated calls agree", func(t *testing.T) {
		first := IsSlotOccupied("room-2", date, MustSlot("10:30"), existing)
		second := IsSlotOccupied("room-2", date, MustSlot("10:30"), existing)
		if first != second {
			t.Fatal("occupancy check must be idempotent")
		}
	})
}

func TestOccupiedChecker(t *testing.T) {
	date := MustDate("2025-01-27")
	existing := []Booking{{
		RoomID: "room-2",
		Date:   date,
		Start:  MustSlot("10:00"),
		End:    MustSlot("11:30"),
		Status: StatusConfirmed,
	}}

	occupied := OccupiedChecker("room-2", date, existing)
	if !occupied(MustSlot("11:00")) {
		t.Fatal("expected 11:00 occupied")
	}
	if occupied(MustSlot("11:30")) {
		t.Fatal("expected 11:30 free")
	}
}

func TestMustSlotPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic for invalid slot")
		}
	}()
	MustSlot("not a slot")
}
