package availability

import (
	"errors"
	"testing"
)

func TestGridSelect(t *testing.T) {
	grid := DefaultGrid()
	free := func(Slot) bool { return false }

	t.Run("first click starts a partial selection", func(t *testing.T) {
		sel, err := grid.Select(Selection{}, MustSlot("09:00"), free)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.State != SelectionPartial || sel.Start != MustSlot("09:00") {
			t.Fatalf("expected partial at 09:00, got %+v", sel)
		}
	})

	t.Run("clicking an occupied slot is a no-op", func(t *testing.T) {
		occupied := func(s Slot) bool { return s == MustSlot("09:00") }

		sel, err := grid.Select(Selection{}, MustSlot("09:00"), occupied)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.State != SelectionEmpty {
			t.Fatalf("expected selection to stay empty, got %+v", sel)
		}
	})

	t.Run("clicking the anchor again clears the selection", func(t *testing.T) {
		partial := Selection{State: SelectionPartial, Start: MustSlot("09:00")}

		sel, err := grid.Select(partial, MustSlot("09:00"), free)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.State != SelectionEmpty {
			t.Fatalf("expected empty selection, got %+v", sel)
		}
	})

	t.Run("earlier click re-anchors the partial selection", func(t *testing.T) {
		partial := Selection{State: SelectionPartial, Start: MustSlot("11:00")}

		sel, err := grid.Select(partial, MustSlot("09:30"), free)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.State != SelectionPartial || sel.Start != MustSlot("09:30") {
			t.Fatalf("expected partial at 09:30, got %+v", sel)
		}
	})

	t.Run("later click completes a free range", func(t *testing.T) {
		partial := Selection{State: SelectionPartial, Start: MustSlot("09:00")}

		sel, err := grid.Select(partial, MustSlot("11:00"), free)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.State != SelectionComplete {
			t.Fatalf("expected complete selection, got %+v", sel)
		}
		start, end, ok := sel.Range()
		if !ok || start != MustSlot("09:00") || end != MustSlot("11:00") {
			t.Fatalf("expected range 09:00-11:00, got %s-%s ok=%v", start, end, ok)
		}
	})

	t.Run("range crossing an occupied slot fails and clears", func(t *testing.T) {
		partial := Selection{State: SelectionPartial, Start: MustSlot("09:00")}
		occupied := func(s Slot) bool { return s == MustSlot("10:00") }

		sel, err := grid.Select(partial, MustSlot("11:00"), occupied)
		if !errors.Is(err, ErrOccupiedRange) {
			t.Fatalf("expected ErrOccupiedRange, got %v", err)
		}
		if sel.State != SelectionEmpty {
			t.Fatalf("expected selection cleared, got %+v", sel)
		}
	})

	t.Run("range check includes the clicked end slot", func(t *testing.T) {
		partial := Selection{State: SelectionPartial, Start: MustSlot("09:00")}
		occupied := func(s Slot) bool { return s == MustSlot("11:00") }

		_, err := grid.Select(partial, MustSlot("11:00"), occupied)
		if !errors.Is(err, ErrOccupiedRange) {
			t.Fatalf("expected ErrOccupiedRange for occupied end slot, got %v", err)
		}
	})

	t.Run("click on a complete selection starts over", func(t *testing.T) {
		complete := Selection{State: SelectionComplete, Start: MustSlot("09:00"), End: MustSlot("11:00")}

		sel, err := grid.Select(complete, MustSlot("14:00"), free)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.State != SelectionPartial || sel.Start != MustSlot("14:00") {
			t.Fatalf("expected partial at 14:00, got %+v", sel)
		}
	})

	t.Run("same slot twice returns to empty", func(t *testing.T) {
		sel, err := grid.Select(Selection{}, MustSlot("10:00"), free)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		sel, err = grid.Select(sel, MustSlot("10:00"), free)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if sel.State != SelectionEmpty {
			t.Fatalf("expected empty selection, got %+v", sel)
		}
	})
}

func TestSelectionRange(t *testing.T) {
	if _, _, ok := (Selection{}).Range(); ok {
		t.Fatal("empty selection should not expose a range")
	}
	if _, _, ok := (Selection{State: SelectionPartial, Start: MustSlot("09:00")}).Range(); ok {
		t.Fatal("partial selection should not expose a range")
	}
}
