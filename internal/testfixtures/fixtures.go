package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/spacehub/internal/application"
	"github.com/example/spacehub/internal/availability"
	"github.com/example/spacehub/internal/persistence"
)

var (
	memberCounter      uint64
	roomCounter        uint64
	reservationCounter uint64
	checkinCounter     uint64
	eventCounter       uint64
)

var referenceTime = time.Date(2026, time.March, 2, 15, 4, 5, 0, time.UTC)

var referenceDate = availability.Date{Year: 2026, Month: time.March, Day: 2}

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// ReferenceDate returns the canonical calendar date used by fixtures.
func ReferenceDate() availability.Date {
	return referenceDate
}

// ---------------------------- Member fixtures ----------------------------

// MemberFixture represents a deterministic member record that can be
// materialised for application or persistence tests.
type MemberFixture struct {
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

// MemberOption configures the generated member fixture.
type MemberOption func(*MemberFixture)

// NewMemberFixture returns a deterministic member fixture with optional
// overrides.
func NewMemberFixture(opts ...MemberOption) MemberFixture {
	idx := atomic.AddUint64(&memberCounter, 1)
	id := fmt.Sprintf("member-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Minute)
	fixture := MemberFixture{
		ID:        id,
		Name:      fmt.Sprintf("Member %03d", idx),
		Email:     fmt.Sprintf("%s@example.com", id),
		Company:   "Acme Cowork",
		Role:      "Engineer",
		Active:    true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithMemberID overrides the generated member ID.
func WithMemberID(id string) MemberOption {
	return func(f *MemberFixture) {
		f.ID = id
	}
}

// WithMemberName overrides the generated member name.
func WithMemberName(name string) MemberOption {
	return func(f *MemberFixture) {
		f.Name = name
	}
}

// WithMemberEmail overrides the generated email address.
func WithMemberEmail(email string) MemberOption {
	return func(f *MemberFixture) {
		f.Email = email
	}
}

// WithMemberCompany overrides the generated company.
func WithMemberCompany(company string) MemberOption {
	return func(f *MemberFixture) {
		f.Company = company
	}
}

// WithMemberSkills sets the skill tags on the fixture.
func WithMemberSkills(skills ...string) MemberOption {
	return func(f *MemberFixture) {
		f.Skills = append([]string(nil), skills...)
	}
}

// WithMemberActive sets the active flag on the generated fixture.
func WithMemberActive(active bool) MemberOption {
	return func(f *MemberFixture) {
		f.Active = active
	}
}

// WithMemberDayPass marks the member as a day pass visitor.
func WithMemberDayPass(dayPass bool) MemberOption {
	return func(f *MemberFixture) {
		f.DayPass = dayPass
	}
}

// WithMemberTimestamps sets both created and updated timestamps on the
// fixture.
func WithMemberTimestamps(created, updated time.Time) MemberOption {
	return func(f *MemberFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Member value.
func (f MemberFixture) Application() application.Member {
	return application.Member{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Company:   f.Company,
		Role:      f.Role,
		Avatar:    copyStringPtr(f.Avatar),
		Skills:    append([]string(nil), f.Skills...),
		Interests: append([]string(nil), f.Interests...),
		Active:    f.Active,
		DayPass:   f.DayPass,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Member value.
func (f MemberFixture) Persistence() persistence.Member {
	return persistence.Member{
		ID:        f.ID,
		Name:      f.Name,
		Email:     f.Email,
		Company:   f.Company,
		Role:      f.Role,
		Avatar:    copyStringPtr(f.Avatar),
		Skills:    append([]string(nil), f.Skills...),
		Interests: append([]string(nil), f.Interests...),
		Active:    f.Active,
		DayPass:   f.DayPass,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.MemberInput.
func (f MemberFixture) Input() application.MemberInput {
	return application.MemberInput{
		Name:      f.Name,
		Email:     f.Email,
		Company:   f.Company,
		Role:      f.Role,
		Avatar:    copyStringPtr(f.Avatar),
		Skills:    append([]string(nil), f.Skills...),
		Interests: append([]string(nil), f.Interests...),
		Active:    f.Active,
		DayPass:   f.DayPass,
	}
}

// ----------------------------- Room fixtures -----------------------------

// RoomFixture represents a deterministic bookable room record.
type RoomFixture struct {
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

// RoomOption configures the generated room fixture.
type RoomOption func(*RoomFixture)

// NewRoomFixture returns a deterministic room fixture with optional overrides.
func NewRoomFixture(opts ...RoomOption) RoomFixture {
	idx := atomic.AddUint64(&roomCounter, 1)
	id := fmt.Sprintf("room-%03d", idx)
	created := referenceTime.Add(time.Duration(idx) * time.Hour)
	fixture := RoomFixture{
		ID:        id,
		Name:      fmt.Sprintf("Room %03d", idx),
		Location:  "2F",
		Capacity:  int(4 + idx%4),
		Available: true,
		CreatedAt: created,
		UpdatedAt: created,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithRoomID overrides the generated room ID.
func WithRoomID(id string) RoomOption {
	return func(f *RoomFixture) {
		f.ID = id
	}
}

// WithRoomName overrides the generated room name.
func WithRoomName(name string) RoomOption {
	return func(f *RoomFixture) {
		f.Name = name
	}
}

// WithRoomLocation overrides the generated location.
func WithRoomLocation(location string) RoomOption {
	return func(f *RoomFixture) {
		f.Location = location
	}
}

// WithRoomCapacity overrides the generated capacity.
func WithRoomCapacity(capacity int) RoomOption {
	return func(f *RoomFixture) {
		f.Capacity = capacity
	}
}

// WithRoomEquipment sets the equipment list on the fixture.
func WithRoomEquipment(equipment ...string) RoomOption {
	return func(f *RoomFixture) {
		f.Equipment = append([]string(nil), equipment...)
	}
}

// WithRoomAvailable sets the availability flag on the fixture.
func WithRoomAvailable(available bool) RoomOption {
	return func(f *RoomFixture) {
		f.Available = available
	}
}

// WithRoomTimestamps sets both created and updated timestamps.
func WithRoomTimestamps(created, updated time.Time) RoomOption {
	return func(f *RoomFixture) {
		f.CreatedAt = created
		f.UpdatedAt = updated
	}
}

// Application returns the fixture as an application.Room value.
func (f RoomFixture) Application() application.Room {
	return application.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Equipment: append([]string(nil), f.Equipment...),
		Image:     copyStringPtr(f.Image),
		Available: f.Available,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Room value.
func (f RoomFixture) Persistence() persistence.Room {
	return persistence.Room{
		ID:        f.ID,
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Equipment: append([]string(nil), f.Equipment...),
		Image:     copyStringPtr(f.Image),
		Available: f.Available,
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as an application.RoomInput.
func (f RoomFixture) Input() application.RoomInput {
	return application.RoomInput{
		Name:      f.Name,
		Location:  f.Location,
		Capacity:  f.Capacity,
		Equipment: append([]string(nil), f.Equipment...),
		Image:     copyStringPtr(f.Image),
		Available: f.Available,
	}
}

// -------------------------- Reservation fixtures -------------------------

// ReservationFixture represents a deterministic reservation record.
type ReservationFixture struct {
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

// ReservationOption configures the generated reservation fixture.
type ReservationOption func(*ReservationFixture)

// NewReservationFixture returns a deterministic reservation fixture with
// optional overrides.
func NewReservationFixture(opts ...ReservationOption) ReservationFixture {
	idx := atomic.AddUint64(&reservationCounter, 1)
	id := fmt.Sprintf("reservation-%03d", idx)
	fixture := ReservationFixture{
		ID:        id,
		RoomID:    fmt.Sprintf("room-%03d", idx),
		MemberID:  fmt.Sprintf("member-%03d", idx),
		Date:      referenceDate.AddDays(int(idx % 7)),
		Start:     availability.MustSlot("10:00"),
		End:       availability.MustSlot("11:30"),
		Status:    application.ReservationStatusConfirmed,
		Purpose:   fmt.Sprintf("Meeting %03d", idx),
		CreatedAt: referenceTime,
		UpdatedAt: referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithReservationID overrides the reservation ID.
func WithReservationID(id string) ReservationOption {
	return func(f *ReservationFixture) {
		f.ID = id
	}
}

// WithReservationRoom sets the room ID.
func WithReservationRoom(roomID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.RoomID = roomID
	}
}

// WithReservationMember sets the member ID.
func WithReservationMember(memberID string) ReservationOption {
	return func(f *ReservationFixture) {
		f.MemberID = memberID
	}
}

// WithReservationDate sets the calendar date.
func WithReservationDate(date availability.Date) ReservationOption {
	return func(f *ReservationFixture) {
		f.Date = date
	}
}

// WithReservationSlots sets the start and end slots.
func WithReservationSlots(start, end availability.Slot) ReservationOption {
	return func(f *ReservationFixture) {
		f.Start = start
		f.End = end
	}
}

// WithReservationStatus sets the lifecycle status.
func WithReservationStatus(status string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Status = status
	}
}

// WithReservationPurpose sets the booking purpose.
func WithReservationPurpose(purpose string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Purpose = purpose
	}
}

// WithReservationAttendees sets the attendee member IDs.
func WithReservationAttendees(attendees ...string) ReservationOption {
	return func(f *ReservationFixture) {
		f.Attendees = append([]string(nil), attendees...)
	}
}

// Application returns the fixture as an application.Reservation value.
func (f ReservationFixture) Application() application.Reservation {
	return application.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		RoomName:  f.RoomName,
		MemberID:  f.MemberID,
		Date:      f.Date,
		Start:     f.Start,
		End:       f.End,
		Status:    f.Status,
		Purpose:   f.Purpose,
		Attendees: append([]string(nil), f.Attendees...),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Reservation value.
func (f ReservationFixture) Persistence() persistence.Reservation {
	return persistence.Reservation{
		ID:        f.ID,
		RoomID:    f.RoomID,
		MemberID:  f.MemberID,
		Date:      f.Date,
		Start:     f.Start,
		End:       f.End,
		Status:    f.Status,
		Purpose:   f.Purpose,
		Attendees: append([]string(nil), f.Attendees...),
		CreatedAt: f.CreatedAt,
		UpdatedAt: f.UpdatedAt,
	}
}

// Input returns the fixture as a single-day application.ReservationInput.
func (f ReservationFixture) Input() application.ReservationInput {
	return application.ReservationInput{
		RoomID:    f.RoomID,
		MemberID:  f.MemberID,
		Date:      f.Date,
		Range:     availability.RangeOf(f.Start, f.End),
		Purpose:   f.Purpose,
		Attendees: append([]string(nil), f.Attendees...),
	}
}

// ---------------------------- Check-in fixtures --------------------------

// CheckinFixture represents a deterministic check-in entry.
type CheckinFixture struct {
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

// CheckinOption configures the generated check-in fixture.
type CheckinOption func(*CheckinFixture)

// NewCheckinFixture returns a deterministic check-in fixture with optional
// overrides.
func NewCheckinFixture(opts ...CheckinOption) CheckinFixture {
	idx := atomic.AddUint64(&checkinCounter, 1)
	id := fmt.Sprintf("checkin-%03d", idx)
	fixture := CheckinFixture{
		ID:       id,
		MemberID: fmt.Sprintf("member-%03d", idx),
		Space:    fmt.Sprintf("Hot Desk %d", idx),
		Date:     referenceDate,
		Start:    availability.MustSlot("09:00"),
		End:      availability.MustSlot("17:00"),
		Status:   application.CheckinStatusWaiting,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCheckinID overrides the check-in ID.
func WithCheckinID(id string) CheckinOption {
	return func(f *CheckinFixture) {
		f.ID = id
	}
}

// WithCheckinMember sets the member ID.
func WithCheckinMember(memberID string) CheckinOption {
	return func(f *CheckinFixture) {
		f.MemberID = memberID
	}
}

// WithCheckinReservation links the entry to a reservation.
func WithCheckinReservation(reservationID string) CheckinOption {
	return func(f *CheckinFixture) {
		id := reservationID
		f.ReservationID = &id
	}
}

// WithCheckinSpace sets the space label.
func WithCheckinSpace(space string) CheckinOption {
	return func(f *CheckinFixture) {
		f.Space = space
	}
}

// WithCheckinDate sets the calendar date.
func WithCheckinDate(date availability.Date) CheckinOption {
	return func(f *CheckinFixture) {
		f.Date = date
	}
}

// WithCheckinStatus sets the lifecycle status.
func WithCheckinStatus(status string) CheckinOption {
	return func(f *CheckinFixture) {
		f.Status = status
	}
}

// WithCheckinCheckedInAt marks the entry checked in at the given time.
func WithCheckinCheckedInAt(t time.Time) CheckinOption {
	return func(f *CheckinFixture) {
		checkedIn := t
		f.CheckedInAt = &checkedIn
		f.Status = application.CheckinStatusCheckedIn
	}
}

// Application returns the fixture as an application.CheckinEntry value.
func (f CheckinFixture) Application() application.CheckinEntry {
	return application.CheckinEntry{
		ID:            f.ID,
		MemberID:      f.MemberID,
		MemberName:    f.MemberName,
		ReservationID: copyStringPtr(f.ReservationID),
		Space:         f.Space,
		Date:          f.Date,
		Start:         f.Start,
		End:           f.End,
		Status:        f.Status,
		CheckedInAt:   copyTimePtr(f.CheckedInAt),
		CheckedOutAt:  copyTimePtr(f.CheckedOutAt),
	}
}

// Persistence returns the fixture as a persistence.CheckinEntry value.
func (f CheckinFixture) Persistence() persistence.CheckinEntry {
	return persistence.CheckinEntry{
		ID:            f.ID,
		MemberID:      f.MemberID,
		ReservationID: copyStringPtr(f.ReservationID),
		Space:         f.Space,
		Date:          f.Date,
		Start:         f.Start,
		End:           f.End,
		Status:        f.Status,
		CheckedInAt:   copyTimePtr(f.CheckedInAt),
		CheckedOutAt:  copyTimePtr(f.CheckedOutAt),
	}
}

// ----------------------------- Event fixtures ----------------------------

// EventFixture represents a deterministic community event record.
type EventFixture struct {
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

// EventOption configures the generated event fixture.
type EventOption func(*EventFixture)

// NewEventFixture returns a deterministic event fixture with optional
// overrides.
func NewEventFixture(opts ...EventOption) EventFixture {
	idx := atomic.AddUint64(&eventCounter, 1)
	id := fmt.Sprintf("event-%03d", idx)
	fixture := EventFixture{
		ID:           id,
		Title:        fmt.Sprintf("Event %03d", idx),
		Date:         referenceDate.AddDays(int(idx % 14)),
		Start:        availability.MustSlot("18:00"),
		End:          availability.MustSlot("18:30"),
		Location:     "Lounge",
		Organizer:    "Community Team",
		Type:         "workshop",
		MaxAttendees: 20,
		CreatedAt:    referenceTime,
		UpdatedAt:    referenceTime,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithEventID overrides the event ID.
func WithEventID(id string) EventOption {
	return func(f *EventFixture) {
		f.ID = id
	}
}

// WithEventTitle overrides the event title.
func WithEventTitle(title string) EventOption {
	return func(f *EventFixture) {
		f.Title = title
	}
}

// WithEventDate sets the calendar date.
func WithEventDate(date availability.Date) EventOption {
	return func(f *EventFixture) {
		f.Date = date
	}
}

// WithEventType sets the event type.
func WithEventType(eventType string) EventOption {
	return func(f *EventFixture) {
		f.Type = eventType
	}
}

// WithEventMaxAttendees sets the attendee cap.
func WithEventMaxAttendees(max int) EventOption {
	return func(f *EventFixture) {
		f.MaxAttendees = max
	}
}

// WithEventAttendees sets the RSVP roster.
func WithEventAttendees(attendees ...string) EventOption {
	return func(f *EventFixture) {
		f.Attendees = append([]string(nil), attendees...)
	}
}

// Application returns the fixture as an application.Event value.
func (f EventFixture) Application() application.Event {
	return application.Event{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		Date:         f.Date,
		Start:        f.Start,
		End:          f.End,
		Location:     f.Location,
		Organizer:    f.Organizer,
		Type:         f.Type,
		MaxAttendees: f.MaxAttendees,
		Attendees:    append([]string(nil), f.Attendees...),
		Image:        copyStringPtr(f.Image),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Persistence returns the fixture as a persistence.Event value.
func (f EventFixture) Persistence() persistence.Event {
	return persistence.Event{
		ID:           f.ID,
		Title:        f.Title,
		Description:  f.Description,
		Date:         f.Date,
		Start:        f.Start,
		End:          f.End,
		Location:     f.Location,
		Organizer:    f.Organizer,
		Type:         f.Type,
		MaxAttendees: f.MaxAttendees,
		Attendees:    append([]string(nil), f.Attendees...),
		Image:        copyStringPtr(f.Image),
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

// Input returns the fixture as an application.EventInput.
func (f EventFixture) Input() application.EventInput {
	return application.EventInput{
		Title:        f.Title,
		Description:  f.Description,
		Date:         f.Date,
		Start:        f.Start,
		End:          f.End,
		Location:     f.Location,
		Organizer:    f.Organizer,
		Type:         f.Type,
		MaxAttendees: f.MaxAttendees,
		Image:        copyStringPtr(f.Image),
	}
}

// helper to deep copy optional strings.
func copyStringPtr(src *string) *string {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}

func copyTimePtr(src *time.Time) *time.Time {
	if src == nil {
		return nil
	}
	value := *src
	return &value
}
