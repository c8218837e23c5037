package persistence

import (
	"time"

	"github.com/example/spacehub/internal/availability"
)

// Member represents a coworking space member account.
type Member struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Role      string
	Avatar    *string
	Skills    []string
	Interests []string
	Active    bool
	DayPass   bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Room represents a bookable space catalog entry.
type Room struct {
	ID        string
	Name      string
	Capacity  int
	Location  string
	Equipment []string
	Image     *string
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Reservation represents a booked slot range on a room for one calendar day.
type Reservation struct {
	ID        string
	RoomID    string
	MemberID  string
	Date      availability.Date
	Start     availability.Slot
	End       availability.Slot
	Status    string
	Purpose   string
	Attendees []string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CheckinEntry represents one expected or completed visit for a day. Entries
// either derive from a reservation or stand alone as a day pass.
type CheckinEntry struct {
	ID            string
	MemberID      string
	ReservationID *string
	Space         string
	Date          availability.Date
	Start         availability.Slot
	End           availability.Slot
	Status        string
	CheckedInAt   *time.Time
	CheckedOutAt  *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Event represents a community event with a capped attendee list.
type Event struct {
	ID           string
	Title        string
	Description  string
	Date         availability.Date
	Start        availability.Slot
	End          availability.Slot
	Location     string
	Organizer    string
	Type         string
	MaxAttendees int
	Attendees    []string
	Image        *string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Setting holds one configuration section as an opaque JSON document.
type Setting struct {
	Section   string
	Value     []byte
	UpdatedAt time.Time
}
