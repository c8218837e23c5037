package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/spacehub/internal/availability"
)

// EventRepository captures the persistence interactions for community
// events.
type EventRepository interface {
	CreateEvent(ctx context.Context, event Event) (Event, error)
	UpdateEvent(ctx context.Context, event Event) (Event, error)
	GetEvent(ctx context.Context, id string) (Event, error)
	ListEvents(ctx context.Context, query EventQuery) ([]Event, error)
	DeleteEvent(ctx context.Context, id string) error
}

// Recognized event types.
var eventTypes = map[string]struct{}{
	"workshop":     {},
	"networking":   {},
	"presentation": {},
	"social":       {},
}

// EventService manages community events and their RSVP rosters.
type EventService struct {
	events      EventRepository
	members     MemberBrowser
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewEventService wires dependencies for event operations.
func NewEventService(events EventRepository, members MemberBrowser, idGenerator func() string, now func() time.Time) *EventService {
	return NewEventServiceWithLogger(events, members, idGenerator, now, nil)
}

// NewEventServiceWithLogger wires dependencies with a specified logger.
func NewEventServiceWithLogger(events EventRepository, members MemberBrowser, idGenerator func() string, now func() time.Time, logger *slog.Logger) *EventService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &EventService{
		events:      events,
		members:     members,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *EventService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "EventService", operation, attrs...)
}

// CreateEvent validates and persists a new event with an empty roster.
func (s *EventService) CreateEvent(ctx context.Context, input EventInput) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateEvent", "title", input.Title)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("event_id", event.ID).InfoContext(ctx, "event created")
	}()

	input = normalizeEventInput(input)
	vErr := validateEventInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	createdAt := s.now()
	event = Event{
		ID:           s.idGenerator(),
		Title:        input.Title,
		Description:  input.Description,
		Date:         input.Date,
		Start:        input.Start,
		End:          input.End,
		Location:     input.Location,
		Organizer:    input.Organizer,
		Type:         input.Type,
		MaxAttendees: input.MaxAttendees,
		Image:        normalizeOptionalString(input.Image),
		CreatedAt:    createdAt,
		UpdatedAt:    createdAt,
	}

	if s.events == nil {
		return
	}

	event, err = s.events.CreateEvent(ctx, event)
	if err != nil {
		err = mapRepoError(err)
		event = Event{}
		return
	}
	return
}

// UpdateEvent validates and applies new attributes to an existing event.
// The RSVP roster is untouched.
func (s *EventService) UpdateEvent(ctx context.Context, eventID string, input EventInput) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = ErrNotFound
		return
	}

	logger := s.loggerWith(ctx, "UpdateEvent", "event_id", eventID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event updated")
	}()

	input = normalizeEventInput(input)
	vErr := validateEventInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var existing Event
	existing, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if input.MaxAttendees < len(existing.Attendees) {
		vErr = &ValidationError{}
		vErr.add("maxAttendees", fmt.Sprintf("capacity %d is below the current roster of %d", input.MaxAttendees, len(existing.Attendees)))
		err = vErr
		return
	}

	existing.Title = input.Title
	existing.Description = input.Description
	existing.Date = input.Date
	existing.Start = input.Start
	existing.End = input.End
	existing.Location = input.Location
	existing.Organizer = input.Organizer
	existing.Type = input.Type
	existing.MaxAttendees = input.MaxAttendees
	existing.Image = normalizeOptionalString(input.Image)
	existing.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// GetEvent returns a single event by ID.
func (s *EventService) GetEvent(ctx context.Context, id string) (Event, error) {
	if s == nil {
		return Event{}, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return Event{}, ErrNotFound
	}

	event, err := s.events.GetEvent(ctx, id)
	if err != nil {
		return Event{}, mapRepoError(err)
	}
	return event, nil
}

// ListEvents returns events matching the query, ordered by date.
func (s *EventService) ListEvents(ctx context.Context, query EventQuery) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return nil, nil
	}

	events, err := s.events.ListEvents(ctx, query)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return events, nil
}

func (s *EventService) splitDate() availability.Date {
	return availability.DateOf(s.now())
}

// ListUpcoming returns events on or after today.
func (s *EventService) ListUpcoming(ctx context.Context) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	from := s.splitDate()
	return s.ListEvents(ctx, EventQuery{From: &from})
}

// ListPast returns events strictly before today.
func (s *EventService) ListPast(ctx context.Context) ([]Event, error) {
	if s == nil {
		return nil, fmt.Errorf("EventService is nil")
	}
	to := s.splitDate().AddDays(-1)
	return s.ListEvents(ctx, EventQuery{To: &to})
}

// DeleteEvent removes an event and its roster.
func (s *EventService) DeleteEvent(ctx context.Context, id string) (err error) {
	if s == nil {
		return fmt.Errorf("EventService is nil")
	}
	if s.events == nil {
		return ErrNotFound
	}

	logger := s.loggerWith(ctx, "DeleteEvent", "event_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to delete event", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "event deleted")
	}()

	if err = s.events.DeleteEvent(ctx, id); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// RSVP adds a member to the event roster. A full event fails with
// ErrEventFull; an RSVP by a member already on the roster is a no-op.
func (s *EventService) RSVP(ctx context.Context, eventID, memberID string) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = ErrNotFound
		return
	}

	logger := s.loggerWith(ctx, "RSVP", "event_id", eventID, "member_id", memberID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to record rsvp", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "rsvp recorded")
	}()

	if s.members != nil {
		if _, err = s.members.GetMember(ctx, memberID); err != nil {
			err = mapRepoError(err)
			return
		}
	}

	event, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	for _, attendee := range event.Attendees {
		if attendee == memberID {
			return
		}
	}
	if event.MaxAttendees > 0 && len(event.Attendees) >= event.MaxAttendees {
		err = fmt.Errorf("%w: %s", ErrEventFull, event.Title)
		event = Event{}
		return
	}

	event.Attendees = append(event.Attendees, memberID)
	event.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, event)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// CancelRSVP removes a member from the event roster. Removing a member who
// never responded is a no-op.
func (s *EventService) CancelRSVP(ctx context.Context, eventID, memberID string) (event Event, err error) {
	if s == nil {
		err = fmt.Errorf("EventService is nil")
		return
	}
	if s.events == nil {
		err = ErrNotFound
		return
	}

	logger := s.loggerWith(ctx, "CancelRSVP", "event_id", eventID, "member_id", memberID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel rsvp", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "rsvp cancelled")
	}()

	event, err = s.events.GetEvent(ctx, eventID)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	remaining := event.Attendees[:0]
	removed := false
	for _, attendee := range event.Attendees {
		if attendee == memberID {
			removed = true
			continue
		}
		remaining = append(remaining, attendee)
	}
	if !removed {
		return
	}

	event.Attendees = remaining
	event.UpdatedAt = s.now()

	event, err = s.events.UpdateEvent(ctx, event)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

func normalizeEventInput(input EventInput) EventInput {
	input.Title = strings.TrimSpace(input.Title)
	input.Description = strings.TrimSpace(input.Description)
	input.Location = strings.TrimSpace(input.Location)
	input.Organizer = strings.TrimSpace(input.Organizer)
	input.Type = strings.ToLower(strings.TrimSpace(input.Type))
	return input
}

func validateEventInput(input EventInput) *ValidationError {
	vErr := &ValidationError{}
	if input.Title == "" {
		vErr.add("title", "title is required")
	}
	if input.Location == "" {
		vErr.add("location", "location is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if !input.Start.Before(input.End) {
		vErr.add("end", "end must be after start")
	}
	if input.MaxAttendees <= 0 {
		vErr.add("maxAttendees", "capacity must be positive")
	}
	if _, ok := eventTypes[input.Type]; !ok {
		vErr.add("type", fmt.Sprintf("unknown event type %q", input.Type))
	}
	return vErr
}
