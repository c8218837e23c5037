package sqlite

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/example/spacehub/internal/availability"
	"github.com/example/spacehub/internal/persistence"
)

// Seed populates an empty database with a small demo catalog: four rooms,
// five members, two reservations, three events, and the default settings
// sections. Databases that already contain rooms are left untouched.
func Seed(ctx context.Context, pool *ConnectionPool) error {
	var count int
	if err := pool.DB().QueryRowContext(ctx, `SELECT COUNT(*) FROM rooms`).Scan(&count); err != nil {
		return fmt.Errorf("sqlite: failed to inspect rooms: %w", err)
	}
	if count > 0 {
		return nil
	}

	rooms := NewRoomRepository(pool)
	members := NewMemberRepository(pool)
	reservations := NewReservationRepository(pool)
	events := NewEventRepository(pool)
	settings := NewSettingsRepository(pool)

	for _, room := range seedRooms() {
		if err := rooms.CreateRoom(ctx, room); err != nil {
			return fmt.Errorf("sqlite: failed to seed room %s: %w", room.ID, err)
		}
	}
	for _, member := range seedMembers() {
		if err := members.CreateMember(ctx, member); err != nil {
			return fmt.Errorf("sqlite: failed to seed member %s: %w", member.ID, err)
		}
	}
	if err := reservations.CreateReservations(ctx, seedReservations()); err != nil {
		return fmt.Errorf("sqlite: failed to seed reservations: %w", err)
	}
	for _, event := range seedEvents() {
		if err := events.CreateEvent(ctx, event); err != nil {
			return fmt.Errorf("sqlite: failed to seed event %s: %w", event.ID, err)
		}
	}
	for section, value := range DefaultSettings() {
		raw, err := json.Marshal(value)
		if err != nil {
			return fmt.Errorf("sqlite: failed to encode %s settings: %w", section, err)
		}
		if err := settings.UpsertSetting(ctx, persistence.Setting{Section: section, Value: raw}); err != nil {
			return fmt.Errorf("sqlite: failed to seed %s settings: %w", section, err)
		}
	}

	return nil
}

func seedRooms() []persistence.Room {
	return []persistence.Room{
		{
			ID:        "room-1",
			Name:      "Innovation Hub",
			Capacity:  8,
			Location:  "1st Floor - North",
			Equipment: []string{`TV 55"`, "Whiteboard", "Video Conference"},
			Available: true,
		},
		{
			ID:        "room-2",
			Name:      "Creative Space",
			Capacity:  12,
			Location:  "2nd Floor - South",
			Equipment: []string{"4K Projector", "Surround Sound", "Interactive Table"},
			Available: false,
		},
		{
			ID:        "room-3",
			Name:      "Focus Room",
			Capacity:  4,
			Location:  "1st Floor - South",
			Equipment: []string{`Monitor 32"`, "HD Webcam", "IP Phone"},
			Available: true,
		},
		{
			ID:        "room-4",
			Name:      "Brainstorm Lab",
			Capacity:  6,
			Location:  "2nd Floor - North",
			Equipment: []string{"Digital Whiteboard", "Flip Chart", "Tablets"},
			Available: true,
		},
	}
}

func seedMembers() []persistence.Member {
	return []persistence.Member{
		{
			ID:        "member-1",
			Name:      "Ana Silva",
			Email:     "ana@example.com",
			Company:   "Tech Solutions Inc.",
			Role:      "Frontend Developer",
			Skills:    []string{"React", "TypeScript", "UX Design"},
			Interests: []string{"Technology", "Sustainability", "Entrepreneurship"},
			Active:    true,
		},
		{
			ID:        "member-2",
			Name:      "Carlos Mendes",
			Email:     "carlos@example.com",
			Company:   "Global Innovations Ltd.",
			Role:      "Data Scientist",
			Skills:    []string{"Python", "Machine Learning", "Data Science"},
			Interests: []string{"AI", "Blockchain", "Investing"},
			Active:    true,
		},
		{
			ID:        "member-3",
			Name:      "Marina Costa",
			Email:     "marina@example.com",
			Company:   "Creative Minds Agency",
			Role:      "Marketing Manager",
			Skills:    []string{"Digital Marketing", "SEO", "Content Strategy"},
			Interests: []string{"Marketing", "Social Media", "Photography"},
			Active:    false,
		},
		{
			ID:        "member-4",
			Name:      "Pedro Almeida",
			Email:     "pedro@example.com",
			Company:   "Tech Solutions Inc.",
			Role:      "Backend Developer",
			Skills:    []string{"Java", "Spring Boot", "Cloud Computing"},
			Interests: []string{"Backend Development", "DevOps", "Security"},
			Active:    true,
		},
		{
			ID:        "member-5",
			Name:      "Sofia Oliveira",
			Email:     "sofia@example.com",
			Company:   "Global Innovations Ltd.",
			Role:      "Product Manager",
			Skills:    []string{"Product Management", "Agile", "Scrum"},
			Interests: []string{"Project Management", "Innovation", "Leadership"},
			Active:    true,
			DayPass:   true,
		},
	}
}

func seedReservations() []persistence.Reservation {
	return []persistence.Reservation{
		{
			ID:        "reservation-1",
			RoomID:    "room-1",
			MemberID:  "member-1",
			Date:      availability.MustDate("2025-01-27"),
			Start:     availability.MustSlot("10:00"),
			End:       availability.MustSlot("11:30"),
			Status:    "confirmed",
			Purpose:   "Team meeting",
			Attendees: []string{"member-1", "member-2"},
		},
		{
			ID:        "reservation-2",
			RoomID:    "room-2",
			MemberID:  "member-2",
			Date:      availability.MustDate("2025-01-27"),
			Start:     availability.MustSlot("14:00"),
			End:       availability.MustSlot("16:00"),
			Status:    "confirmed",
			Purpose:   "Client presentation",
			Attendees: []string{"member-2", "member-3"},
		},
	}
}

func seedEvents() []persistence.Event {
	return []persistence.Event{
		{
			ID:           "event-1",
			Title:        "Workshop: Advanced React",
			Description:  "Advanced React techniques including custom hooks, context API, and performance optimization.",
			Date:         availability.MustDate("2025-02-15"),
			Start:        availability.MustSlot("14:00"),
			End:          availability.MustSlot("17:00"),
			Location:     "Innovation Hub",
			Organizer:    "Ana Silva",
			Type:         "workshop",
			MaxAttendees: 20,
		},
		{
			ID:           "event-2",
			Title:        "Networking Friday",
			Description:  "Casual meetup connecting professionals across fields to share experiences.",
			Date:         availability.MustDate("2025-01-31"),
			Start:        availability.MustSlot("18:00"),
			End:          availability.MustSlot("20:00"),
			Location:     "Common Area",
			Organizer:    "Space Hub",
			Type:         "networking",
			MaxAttendees: 40,
		},
		{
			ID:           "event-3",
			Title:        "Pitch Day: Startup Showcase",
			Description:  "Startup presentations seeking investment and community feedback.",
			Date:         availability.MustDate("2025-02-08"),
			Start:        availability.MustSlot("15:00"),
			End:          availability.MustSlot("18:00"),
			Location:     "Creative Space",
			Organizer:    "Carlos Mendes",
			Type:         "presentation",
			MaxAttendees: 15,
		},
	}
}

// DefaultSettings returns the factory values for each configuration section.
func DefaultSettings() map[string]any {
	return map[string]any{
		"general": map[string]any{
			"spaceName":    "Space-Hub Coworking",
			"address":      "",
			"contactEmail": "",
			"contactPhone": "",
			"description":  "",
			"openTime":     "08:00",
			"closeTime":    "18:00",
		},
		"reservations": map[string]any{
			"defaultDurationMinutes":  60,
			"timeSlotIntervalMinutes": 30,
			"cancellationNoticeHours": 2,
		},
		"users": map[string]any{
			"roles": []map[string]any{
				{"id": "member", "name": "Member", "permissions": []string{"reserve", "checkin"}},
				{"id": "admin", "name": "Administrator", "permissions": []string{"manage_members", "manage_reservations", "reports"}},
				{"id": "visitor", "name": "Visitor", "permissions": []string{}},
			},
			"customFields": []map[string]any{},
		},
		"communications": map[string]any{
			"templates": map[string]string{
				"welcome":                 "Welcome to Space-Hub! We are glad to have you with us.",
				"reservationConfirmation": "Your reservation is confirmed. See you soon!",
				"eventReminder":           "Reminder: your event starts in one hour.",
			},
			"notifications": map[string]bool{
				"checkinAlerts":     true,
				"checkoutAlerts":    false,
				"reservationEmails": true,
			},
		},
	}
}
