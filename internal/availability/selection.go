package availability

import "errors"

// ErrOccupiedRange indicates a completed range selection would span at least
// one occupied slot. The selection is discarded and the caller restarts.
var ErrOccupiedRange = errors.New("availability: selected range contains occupied slots")

// SelectionState tags the progress of a two-click range selection.
type SelectionState int

const (
	// SelectionEmpty means no boundary has been chosen yet.
	SelectionEmpty SelectionState = iota
	// SelectionPartial means the start boundary is chosen and the end is pending.
	SelectionPartial
	// SelectionComplete means both boundaries are chosen.
	SelectionComplete
)

// Selection models the in-progress two-click range gesture. Start is
// meaningful in the Partial and Complete states, End only in Complete; the
// explicit state tag keeps half-initialised pairs unrepresentable.
type Selection struct {
	State SelectionState
	Start Slot
	End   Slot
}

// Range returns the selected boundaries, valid only in the Complete state.
func (s Selection) Range() (start, end Slot, ok bool) {
	if s.State != SelectionComplete {
		return 0, 0, false
	}
	return s.Start, s.End, true
}

// Select advances the selection protocol for a click on the given slot.
// occupied answers whether a single slot is taken.
//
// From the empty state a click on an occupied slot is ignored. A click at or
// before the current start moves the start boundary. Interval occupancy is
// checked only when the second boundary lands: a range sweeping over an
// occupied tick fails with ErrOccupiedRange and resets the selection to
// empty.
func (g Grid) Select(sel Selection, clicked Slot, occupied func(Slot) bool) (Selection, error) {
	if occupied == nil {
		occupied = func(Slot) bool { return false }
	}
	if occupied(clicked) {
		return sel, nil
	}

	switch sel.State {
	case SelectionPartial:
		if clicked == sel.Start {
			return Selection{State: SelectionEmpty}, nil
		}
		if clicked.Before(sel.Start) {
			return Selection{State: SelectionPartial, Start: clicked}, nil
		}
		for s := sel.Start; !s.After(clicked); s += Slot(g.step) {
			if occupied(s) {
				return Selection{State: SelectionEmpty}, ErrOccupiedRange
			}
		}
		return Selection{State: SelectionComplete, Start: sel.Start, End: clicked}, nil

	case SelectionComplete:
		// A full range is already picked; any further click starts over.
		return Selection{State: SelectionPartial, Start: clicked}, nil

	default:
		return Selection{State: SelectionPartial, Start: clicked}, nil
	}
}
