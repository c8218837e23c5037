// Package availability implements the reservation availability engine: the
// half-hour slot grid, occupancy checks against existing bookings, the
// two-click range selection protocol, and expansion of recurrence rules and
// date ranges into concrete calendar days. Every function is pure; the
// engine holds no state between calls and reads only the snapshots it is
// handed.
package availability

import (
	"fmt"
	"strconv"
	"strings"
)

// Slot identifies a wall-clock instant within the bookable day, stored as
// minutes since midnight. Slots carry no date and no timezone.
type Slot int

// ParseSlot parses an "HH:MM" wall-clock value.
func ParseSlot(value string) (Slot, error) {
	parts := strings.SplitN(strings.TrimSpace(value), ":", 2)
	if len(parts) != 2 {
		return 0, fmt.Errorf("availability: invalid slot %q", value)
	}
	hour, err := strconv.Atoi(parts[0])
	if err != nil || hour < 0 || hour > 23 {
		return 0, fmt.Errorf("availability: invalid slot %q", value)
	}
	minute, err := strconv.Atoi(parts[1])
	if err != nil || minute < 0 || minute > 59 {
		return 0, fmt.Errorf("availability: invalid slot %q", value)
	}
	return Slot(hour*60 + minute), nil
}

// MustSlot parses an "HH:MM" value and panics on failure. Intended for
// constants and test fixtures.
func MustSlot(value string) Slot {
	slot, err := ParseSlot(value)
	if err != nil {
		panic(err)
	}
	return slot
}

// String renders the slot as "HH:MM".
func (s Slot) String() string {
	return fmt.Sprintf("%02d:%02d", int(s)/60, int(s)%60)
}

// Before reports whether s is earlier in the day than other.
func (s Slot) Before(other Slot) bool { return s < other }

// After reports whether s is later in the day than other.
func (s Slot) After(other Slot) bool { return s > other }

// Grid describes the discrete ticks a day is divided into for booking.
type Grid struct {
	first Slot
	last  Slot
	step  int
}

// DefaultGrid returns the standard bookable day: half-hour ticks from 08:00
// through 18:30 inclusive (21 ticks).
func DefaultGrid() Grid {
	return Grid{first: 8 * 60, last: 18*60 + 30, step: 30}
}

// NewGrid builds a grid from explicit bounds and a tick interval in minutes.
func NewGrid(first, last Slot, stepMinutes int) (Grid, error) {
	if stepMinutes <= 0 {
		return Grid{}, fmt.Errorf("availability: grid step must be positive, got %d", stepMinutes)
	}
	if last.Before(first) {
		return Grid{}, fmt.Errorf("availability: grid end %s precedes start %s", last, first)
	}
	if (int(last)-int(first))%stepMinutes != 0 {
		return Grid{}, fmt.Errorf("availability: grid bounds %s-%s are not aligned to a %d minute step", first, last, stepMinutes)
	}
	return Grid{first: first, last: last, step: stepMinutes}, nil
}

// Slots enumerates every tick of the grid in ascending order.
func (g Grid) Slots() []Slot {
	if g.step <= 0 {
		return nil
	}
	slots := make([]Slot, 0, (int(g.last)-int(g.first))/g.step+1)
	for s := g.first; !s.After(g.last); s += Slot(g.step) {
		slots = append(slots, s)
	}
	return slots
}

// Contains reports whether slot is one of the grid's ticks.
func (g Grid) Contains(slot Slot) bool {
	if g.step <= 0 || slot.Before(g.first) || slot.After(g.last) {
		return false
	}
	return (int(slot)-int(g.first))%g.step == 0
}

// Step returns the tick interval in minutes.
func (g Grid) Step() int { return g.step }

// BookingStatus mirrors the lifecycle states a reservation can be in.
type BookingStatus string

const (
	StatusConfirmed BookingStatus = "confirmed"
	StatusPending   BookingStatus = "pending"
	StatusCancelled BookingStatus = "cancelled"
)

// Booking is the engine's view of a reservation: just enough to decide
// occupancy and to hand newly built records back to the caller.
type Booking struct {
	ID        string
	RoomID    string
	Date      Date
	Start     Slot
	End       Slot
	Purpose   string
	Attendees []string
	Status    BookingStatus
}

// IsSlotOccupied reports whether any booking for the given room and date has
// a [Start, End) interval containing the slot. The interval is half-open: a
// booking ending at 10:00 leaves the 10:00 tick free. Cancelled bookings
// never occupy slots; the caller may pass the full unfiltered collection.
func IsSlotOccupied(roomID string, date Date, slot Slot, existing []Booking) bool {
	for _, b := range existing {
		if b.RoomID != roomID || !b.Date.Equal(date) || b.Status == StatusCancelled {
			continue
		}
		if !slot.Before(b.Start) && slot.Before(b.End) {
			return true
		}
	}
	return false
}

// OccupiedChecker binds a room, date, and booking snapshot into the
// single-slot predicate consumed by the selection protocol.
func OccupiedChecker(roomID string, date Date, existing []Booking) func(Slot) bool {
	return func(slot Slot) bool {
		return IsSlotOccupied(roomID, date, slot, existing)
	}
}
