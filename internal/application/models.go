package application

import (
	"time"

	"github.com/example/spacehub/internal/availability"
)

// RoomInput captures caller provided room fields.
type RoomInput struct {
	Name      string
	Location  string
	Capacity  int
	Equipment []string
	Image     *string
	Available bool
}

// Room represents a catalog entry for a bookable space.
type Room struct {
	ID        string
	Name      string
	Location  string
	Capacity  int
	Equipment []string
	Image     *string
	Available bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// MemberInput captures caller provided member attributes.
type MemberInput struct {
	Name      string
	Email     string
	Company   string
	Role      string
	Avatar    *string
	Skills    []string
	Interests []string
	Active    bool
	DayPass   bool
}

// Member represents a coworking member exposed by the application services.
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

// ReservationInput captures a booking request. Dates come either from a
// recurrence rule anchored at Date or from an explicit EndDate range; the two
// are mutually exclusive.
type ReservationInput struct {
	RoomID     string
	MemberID   string
	Date       availability.Date
	EndDate    *availability.Date
	Recurrence availability.Frequency
	Until      *availability.Date
	Range      availability.TimeRange
	Purpose    string
	Attendees  []string
}

// Reservation represents a persisted booking for one room and date.
type Reservation struct {
	ID        string
	RoomID    string
	RoomName  string
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

// ReservationQuery narrows reservation listings.
type ReservationQuery struct {
	RoomID   *string
	MemberID *string
	Date     *availability.Date
	From     *availability.Date
	To       *availability.Date
	Statuses []string
}

// SlotStatus describes one grid slot on a room's daily board.
type SlotStatus struct {
	Slot     availability.Slot
	Occupied bool
}

// SlotBoard is the daily availability board for one room.
type SlotBoard struct {
	RoomID string
	Date   availability.Date
	Slots  []SlotStatus
}

// CheckinEntry represents one expected or completed visit for a day.
type CheckinEntry struct {
	ID            string
	MemberID      string
	MemberName    string
	ReservationID *string
	Space         string
	Date          availability.Date
	Start         availability.Slot
	End           availability.Slot
	Status        string
	CheckedInAt   *time.Time
	CheckedOutAt  *time.Time
}

// Check-in entry lifecycle states.
const (
	CheckinStatusWaiting    = "waiting"
	CheckinStatusCheckedIn  = "checked-in"
	CheckinStatusCheckedOut = "checked-out"
)

// CheckinQuery narrows check-in listings. Search matches member name or
// space, case insensitively.
type CheckinQuery struct {
	Date     *availability.Date
	From     *availability.Date
	To       *availability.Date
	MemberID *string
	Statuses []string
	Search   string
}

// ManualCheckinInput captures a walk-in check-in without a reservation.
type ManualCheckinInput struct {
	MemberID string
	Space    string
	Date     availability.Date
	Start    availability.Slot
	End      availability.Slot
}

// EventInput captures caller provided event fields.
type EventInput struct {
	Title        string
	Description  string
	Date         availability.Date
	Start        availability.Slot
	End          availability.Slot
	Location     string
	Organizer    string
	Type         string
	MaxAttendees int
	Image        *string
}

// Event represents a community event with its RSVP roster.
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

// EventQuery narrows event listings.
type EventQuery struct {
	From  *availability.Date
	To    *availability.Date
	Types []string
}

// ReportPeriod identifies the aggregation window for usage reports.
type ReportPeriod string

const (
	// ReportPeriodWeek aggregates the Monday-start week containing the
	// reference date.
	ReportPeriodWeek ReportPeriod = "week"
	// ReportPeriodMonth aggregates the calendar month containing the
	// reference date.
	ReportPeriodMonth ReportPeriod = "month"
)

// RoomUsage summarizes reservations for one room within a report window.
type RoomUsage struct {
	RoomID       string
	RoomName     string
	Reservations int
	BookedHours  float64
}

// PeakBucket counts reservations whose start falls in a time-of-day band.
type PeakBucket struct {
	Label string
	Count int
}

// PeriodBucket carries activity counts for one breakdown row: a weekday in
// the week report, the calendar month in the month report.
type PeriodBucket struct {
	Label        string
	Checkins     int
	Reservations int
	Events       int
}

// UsageReport aggregates check-in, reservation, and event activity for a
// period.
type UsageReport struct {
	Period       ReportPeriod
	From         availability.Date
	To           availability.Date
	Checkins     int
	Reservations int
	Cancelled    int
	Events       int
	BookedHours  float64
	Rooms        []RoomUsage
	PeakBuckets  []PeakBucket
	Breakdown    []PeriodBucket
	// MostPopular is the label of the breakdown row with the most
	// check-ins; earlier rows win ties.
	MostPopular string
}

// Occupant pairs a currently occupied space with the member holding it.
type Occupant struct {
	Space      string
	MemberID   string
	MemberName string
}

// GeneralSettings mirrors the general configuration section.
type GeneralSettings struct {
	SpaceName    string `json:"spaceName"`
	Address      string `json:"address"`
	ContactEmail string `json:"contactEmail"`
	ContactPhone string `json:"contactPhone"`
	Description  string `json:"description"`
	OpenTime     string `json:"openTime"`
	CloseTime    string `json:"closeTime"`
}

// ReservationSettings mirrors the reservation policy section.
type ReservationSettings struct {
	DefaultDurationMinutes  int `json:"defaultDurationMinutes"`
	TimeSlotIntervalMinutes int `json:"timeSlotIntervalMinutes"`
	CancellationNoticeHours int `json:"cancellationNoticeHours"`
}
