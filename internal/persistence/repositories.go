package persistence

import (
	"context"

	"github.com/example/spacehub/internal/availability"
)

// MemberRepository exposes CRUD operations for members.
type MemberRepository interface {
	CreateMember(ctx context.Context, member Member) error
	UpdateMember(ctx context.Context, member Member) error
	GetMember(ctx context.Context, id string) (Member, error)
	GetMemberByEmail(ctx context.Context, email string) (Member, error)
	ListMembers(ctx context.Context) ([]Member, error)
	DeleteMember(ctx context.Context, id string) error
}

// RoomRepository exposes CRUD operations for rooms.
type RoomRepository interface {
	CreateRoom(ctx context.Context, room Room) error
	UpdateRoom(ctx context.Context, room Room) error
	GetRoom(ctx context.Context, id string) (Room, error)
	ListRooms(ctx context.Context) ([]Room, error)
	DeleteRoom(ctx context.Context, id string) error
}

// ReservationFilter narrows reservation queries.
type ReservationFilter struct {
	RoomID   *string
	MemberID *string
	Date     *availability.Date
	From     *availability.Date
	To       *availability.Date
	Statuses []string
}

// ReservationRepository stores reservations and their attendee lists.
type ReservationRepository interface {
	// CreateReservations inserts a batch atomically: a recurring booking
	// either lands in full or not at all.
	CreateReservations(ctx context.Context, reservations []Reservation) error
	UpdateReservation(ctx context.Context, reservation Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	ListReservations(ctx context.Context, filter ReservationFilter) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// CheckinFilter narrows check-in queries.
type CheckinFilter struct {
	Date     *availability.Date
	From     *availability.Date
	To       *availability.Date
	MemberID *string
	Statuses []string
}

// CheckinRepository stores daily check-in entries.
type CheckinRepository interface {
	CreateCheckin(ctx context.Context, entry CheckinEntry) error
	UpdateCheckin(ctx context.Context, entry CheckinEntry) error
	GetCheckin(ctx context.Context, id string) (CheckinEntry, error)
	ListCheckins(ctx context.Context, filter CheckinFilter) ([]CheckinEntry, error)
	DeleteCheckinsForDate(ctx context.Context, date availability.Date) error
}

// EventFilter narrows event queries.
type EventFilter struct {
	From  *availability.Date
	To    *availability.Date
	Types []string
}

// EventRepository stores community events and their attendee rosters.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) error
	UpdateEvent(ctx context.Context, event Event) error
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, filter EventFilter) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// SettingsRepository stores configuration sections as JSON documents.
type SettingsRepository interface {
	UpsertSetting(ctx context.Context, setting Setting) error
	GetSetting(ctx context.Context, section string) (Setting, error)
	ListSettings(ctx context.Context) ([]Setting, error)
}
