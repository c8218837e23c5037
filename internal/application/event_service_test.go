package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/spacehub/internal/availability"
	"github.com/example/spacehub/internal/persistence"
)

type eventRepoStub struct {
	events map[string]Event

	createErr error
	updateErr error
	listErr   error
}

func newEventRepoStub() *eventRepoStub {
	return &eventRepoStub{events: make(map[string]Event)}
}

func (e *eventRepoStub) CreateEvent(ctx context.Context, event Event) (Event, error) {
	if e.createErr != nil {
		return Event{}, e.createErr
	}
	e.events[event.ID] = event
	return event, nil
}

func (e *eventRepoStub) UpdateEvent(ctx context.Context, event Event) (Event, error) {
	if e.updateErr != nil {
		return Event{}, e.updateErr
	}
	if _, ok := e.events[event.ID]; !ok {
		return Event{}, persistence.ErrNotFound
	}
	e.events[event.ID] = event
	return event, nil
}

func (e *eventRepoStub) GetEvent(ctx context.Context, id string) (Event, error) {
	event, ok := e.events[id]
	if !ok {
		return Event{}, persistence.ErrNotFound
	}
	return event, nil
}

func (e *eventRepoStub) ListEvents(ctx context.Context, query EventQuery) ([]Event, error) {
	if e.listErr != nil {
		return nil, e.listErr
	}
	out := make([]Event, 0, len(e.events))
	for _, event := range e.events {
		if query.From != nil && event.Date.Before(*query.From) {
			continue
		}
		if query.To != nil && event.Date.After(*query.To) {
			continue
		}
		out = append(out, event)
	}
	return out, nil
}

func (e *eventRepoStub) DeleteEvent(ctx context.Context, id string) error {
	if _, ok := e.events[id]; !ok {
		return persistence.ErrNotFound
	}
	delete(e.events, id)
	return nil
}

func validEventInput() EventInput {
	return EventInput{
		Title:        "Design Thinking Workshop",
		Description:  "Hands-on introduction to design thinking",
		Date:         availability.MustDate("2025-02-05"),
		Start:        availability.MustSlot("14:00"),
		End:          availability.MustSlot("17:00"),
		Location:     "Innovation Hub",
		Organizer:    "Ana Silva",
		Type:         "workshop",
		MaxAttendees: 20,
	}
}

func TestEventService_CreateEvent(t *testing.T) {
	t.Run("validates required attributes", func(t *testing.T) {
		svc := NewEventService(nil, nil, nil, nil)

		input := validEventInput()
		input.Title = "  "
		input.Type = "party"
		input.MaxAttendees = 0
		input.End = input.Start

		_, err := svc.CreateEvent(context.Background(), input)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		for _, field := range []string{"title", "type", "maxAttendees", "end"} {
			if _, ok := vErr.FieldErrors[field]; !ok {
				t.Errorf("expected %s validation error, got %v", field, vErr.FieldErrors)
			}
		}
	})

	t.Run("persists events with generated IDs", func(t *testing.T) {
		repo := newEventRepoStub()
		now := time.Date(2025, time.January, 20, 9, 0, 0, 0, time.UTC)
		svc := NewEventService(repo, nil, func() string { return "event-1" }, func() time.Time { return now })

		event, err := svc.CreateEvent(context.Background(), validEventInput())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}

		if event.ID != "event-1" {
			t.Fatalf("expected generated ID, got %q", event.ID)
		}
		if len(event.Attendees) != 0 {
			t.Fatalf("expected an empty roster, got %v", event.Attendees)
		}
		if !event.CreatedAt.Equal(now) {
			t.Fatalf("expected created timestamp from injected clock, got %v", event.CreatedAt)
		}
	})
}

func TestEventService_RSVP(t *testing.T) {
	members := &memberBrowserStub{members: map[string]Member{
		"member-1": {ID: "member-1", Name: "Ana Silva"},
		"member-2": {ID: "member-2", Name: "Carlos Mendes"},
		"member-4": {ID: "member-4", Name: "Pedro Almeida"},
	}}

	seedEvent := func(repo *eventRepoStub, max int, attendees ...string) {
		repo.events["event-1"] = Event{
			ID:           "event-1",
			Title:        "Networking Night",
			Date:         availability.MustDate("2025-02-12"),
			Start:        availability.MustSlot("18:00"),
			End:          availability.MustSlot("19:30"),
			Location:     "Lounge",
			Type:         "networking",
			MaxAttendees: max,
			Attendees:    attendees,
		}
	}

	t.Run("adds a member to the roster", func(t *testing.T) {
		repo := newEventRepoStub()
		seedEvent(repo, 40)
		svc := NewEventService(repo, members, nil, nil)

		event, err := svc.RSVP(context.Background(), "event-1", "member-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(event.Attendees) != 1 || event.Attendees[0] != "member-1" {
			t.Fatalf("expected roster to contain the member, got %v", event.Attendees)
		}
	})

	t.Run("is a no-op for repeated RSVPs", func(t *testing.T) {
		repo := newEventRepoStub()
		seedEvent(repo, 40, "member-1")
		svc := NewEventService(repo, members, nil, nil)

		event, err := svc.RSVP(context.Background(), "event-1", "member-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(event.Attendees) != 1 {
			t.Fatalf("expected roster to stay unchanged, got %v", event.Attendees)
		}
	})

	t.Run("rejects RSVPs at capacity", func(t *testing.T) {
		repo := newEventRepoStub()
		seedEvent(repo, 2, "member-1", "member-2")
		svc := NewEventService(repo, members, nil, nil)

		_, err := svc.RSVP(context.Background(), "event-1", "member-4")
		if !errors.Is(err, ErrEventFull) {
			t.Fatalf("expected ErrEventFull, got %v", err)
		}
	})

	t.Run("rejects unknown members", func(t *testing.T) {
		repo := newEventRepoStub()
		seedEvent(repo, 40)
		svc := NewEventService(repo, members, nil, nil)

		_, err := svc.RSVP(context.Background(), "event-1", "member-404")
		if !errors.Is(err, ErrNotFound) {
			t.Fatalf("expected ErrNotFound, got %v", err)
		}
	})

	t.Run("removes a member on cancel", func(t *testing.T) {
		repo := newEventRepoStub()
		seedEvent(repo, 40, "member-1", "member-2")
		svc := NewEventService(repo, members, nil, nil)

		event, err := svc.CancelRSVP(context.Background(), "event-1", "member-1")
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(event.Attendees) != 1 || event.Attendees[0] != "member-2" {
			t.Fatalf("expected the member to be removed, got %v", event.Attendees)
		}
	})
}

func TestEventService_UpdateEvent(t *testing.T) {
	t.Run("rejects capacity below the current roster", func(t *testing.T) {
		repo := newEventRepoStub()
		repo.events["event-1"] = Event{
			ID:        "event-1",
			Title:     "Pitch Night",
			Attendees: []string{"member-1", "member-2", "member-4"},
		}
		svc := NewEventService(repo, nil, nil, nil)

		input := validEventInput()
		input.MaxAttendees = 2

		_, err := svc.UpdateEvent(context.Background(), "event-1", input)

		var vErr *ValidationError
		if !errors.As(err, &vErr) {
			t.Fatalf("expected ValidationError, got %v", err)
		}
		if _, ok := vErr.FieldErrors["maxAttendees"]; !ok {
			t.Fatalf("expected maxAttendees field error, got %v", vErr.FieldErrors)
		}
	})

	t.Run("keeps the roster across updates", func(t *testing.T) {
		repo := newEventRepoStub()
		repo.events["event-1"] = Event{
			ID:        "event-1",
			Title:     "Pitch Night",
			Attendees: []string{"member-1"},
		}
		now := time.Date(2025, time.February, 1, 9, 0, 0, 0, time.UTC)
		svc := NewEventService(repo, nil, nil, func() time.Time { return now })

		event, err := svc.UpdateEvent(context.Background(), "event-1", validEventInput())
		if err != nil {
			t.Fatalf("expected success, got %v", err)
		}
		if len(event.Attendees) != 1 || event.Attendees[0] != "member-1" {
			t.Fatalf("expected roster to be preserved, got %v", event.Attendees)
		}
		if !event.UpdatedAt.Equal(now) {
			t.Fatalf("expected updated timestamp from injected clock, got %v", event.UpdatedAt)
		}
	})
}

func TestEventService_UpcomingAndPast(t *testing.T) {
	repo := newEventRepoStub()
	repo.events["event-past"] = Event{ID: "event-past", Title: "Retro", Date: availability.MustDate("2025-01-10")}
	repo.events["event-today"] = Event{ID: "event-today", Title: "Standup", Date: availability.MustDate("2025-01-27")}
	repo.events["event-future"] = Event{ID: "event-future", Title: "Workshop", Date: availability.MustDate("2025-02-05")}
	now := time.Date(2025, time.January, 27, 9, 0, 0, 0, time.UTC)
	svc := NewEventService(repo, nil, nil, func() time.Time { return now })

	upcoming, err := svc.ListUpcoming(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(upcoming) != 2 {
		t.Fatalf("expected today and future events, got %+v", upcoming)
	}

	past, err := svc.ListPast(context.Background())
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(past) != 1 || past[0].ID != "event-past" {
		t.Fatalf("expected only the past event, got %+v", past)
	}
}
