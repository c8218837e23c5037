package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/spacehub/internal/application"
	"github.com/example/spacehub/internal/availability"
)

type eventService interface {
	CreateEvent(ctx context.Context, input application.EventInput) (application.Event, error)
	UpdateEvent(ctx context.Context, eventID string, input application.EventInput) (application.Event, error)
	GetEvent(ctx context.Context, id string) (application.Event, error)
	ListEvents(ctx context.Context, query application.EventQuery) ([]application.Event, error)
	ListUpcoming(ctx context.Context) ([]application.Event, error)
	ListPast(ctx context.Context) ([]application.Event, error)
	DeleteEvent(ctx context.Context, id string) error
	RSVP(ctx context.Context, eventID, memberID string) (application.Event, error)
	CancelRSVP(ctx context.Context, eventID, memberID string) (application.Event, error)
}

type EventHandler struct {
	service   eventService
	responder responder
	logger    *slog.Logger
}

func NewEventHandler(service eventService, logger *slog.Logger) *EventHandler {
	base := defaultLogger(logger)
	return &EventHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *EventHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "EventHandler", operation, attrs...)
}

func (h *EventHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "event request rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	input, err := req.toInput()
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse event request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	event, err := h.service.CreateEvent(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "event creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("event_id", event.ID).InfoContext(r.Context(), "event created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id for update")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req eventRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Update", "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode event update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "event_id", eventID)

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "event update rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	input, err := req.toInput()
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse event update", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	event, err := h.service.UpdateEvent(r.Context(), eventID, input)
	if err != nil {
		logger.ErrorContext(r.Context(), "event update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Get", "event_id", eventID)
	event, err := h.service.GetEvent(r.Context(), eventID)
	if err != nil {
		logger.ErrorContext(r.Context(), "event lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func (h *EventHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	logger := h.log(r.Context(), "Delete", "event_id", eventID)
	if err := h.service.DeleteEvent(r.Context(), eventID); err != nil {
		logger.ErrorContext(r.Context(), "event delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "event deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List serves /events. The scope parameter selects the upcoming or past view;
// without it the from/to/type filters apply.
func (h *EventHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	values := r.URL.Query()

	var (
		events []application.Event
		err    error
	)
	switch scope := strings.TrimSpace(values.Get("scope")); scope {
	case "upcoming":
		events, err = h.service.ListUpcoming(r.Context())
	case "past":
		events, err = h.service.ListPast(r.Context())
	case "":
		var query application.EventQuery
		query, err = eventQueryFromValues(values)
		if err != nil {
			logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid event filters", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
			return
		}
		events, err = h.service.ListEvents(r.Context(), query)
	default:
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid event scope", "scope", scope)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("scope must be upcoming or past"))
		return
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "event list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(events)).InfoContext(r.Context(), "events listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listEventsResponse{Events: toEventDTOs(events)})
}

func (h *EventHandler) RSVP(w http.ResponseWriter, r *http.Request) {
	h.handleRSVP(w, r, "RSVP", func(ctx context.Context, eventID, memberID string) (application.Event, error) {
		return h.service.RSVP(ctx, eventID, memberID)
	})
}

func (h *EventHandler) CancelRSVP(w http.ResponseWriter, r *http.Request) {
	h.handleRSVP(w, r, "CancelRSVP", func(ctx context.Context, eventID, memberID string) (application.Event, error) {
		return h.service.CancelRSVP(ctx, eventID, memberID)
	})
}

func (h *EventHandler) handleRSVP(w http.ResponseWriter, r *http.Request, operation string, apply func(context.Context, string, string) (application.Event, error)) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	eventID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(eventID) == "" {
		h.log(r.Context(), operation, "error_kind", "bad_request").ErrorContext(r.Context(), "missing event id for rsvp")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidEventID)
		return
	}

	var req rsvpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), operation, "event_id", eventID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode rsvp request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), operation, "event_id", eventID, "member_id", req.MemberID)

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "rsvp request rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	event, err := apply(r.Context(), eventID, strings.TrimSpace(req.MemberID))
	if err != nil {
		logger.ErrorContext(r.Context(), "rsvp update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "rsvp updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, eventResponse{Event: toEventDTO(event)})
}

func eventQueryFromValues(values map[string][]string) (application.EventQuery, error) {
	get := func(key string) string {
		if list := values[key]; len(list) > 0 {
			return strings.TrimSpace(list[0])
		}
		return ""
	}

	var query application.EventQuery
	if raw := get("from"); raw != "" {
		date, err := availability.ParseDate(raw)
		if err != nil {
			return application.EventQuery{}, fmt.Errorf("from must be a YYYY-MM-DD date")
		}
		query.From = &date
	}
	if raw := get("to"); raw != "" {
		date, err := availability.ParseDate(raw)
		if err != nil {
			return application.EventQuery{}, fmt.Errorf("to must be a YYYY-MM-DD date")
		}
		query.To = &date
	}
	if raw := get("type"); raw != "" {
		for _, t := range strings.Split(raw, ",") {
			if t = strings.TrimSpace(t); t != "" {
				query.Types = append(query.Types, t)
			}
		}
	}
	return query, nil
}

type eventRequest struct {
	Title        string  `json:"title" validate:"required"`
	Description  string  `json:"description"`
	Date         string  `json:"date" validate:"required,dateiso"`
	Start        string  `json:"start" validate:"required,hhmm"`
	End          string  `json:"end" validate:"required,hhmm"`
	Location     string  `json:"location" validate:"required"`
	Organizer    string  `json:"organizer"`
	Type         string  `json:"type" validate:"required"`
	MaxAttendees int     `json:"max_attendees" validate:"required,gt=0"`
	Image        *string `json:"image"`
}

func (r eventRequest) toInput() (application.EventInput, error) {
	date, err := availability.ParseDate(r.Date)
	if err != nil {
		return application.EventInput{}, err
	}
	start, err := availability.ParseSlot(r.Start)
	if err != nil {
		return application.EventInput{}, err
	}
	end, err := availability.ParseSlot(r.End)
	if err != nil {
		return application.EventInput{}, err
	}
	return application.EventInput{
		Title:        strings.TrimSpace(r.Title),
		Description:  strings.TrimSpace(r.Description),
		Date:         date,
		Start:        start,
		End:          end,
		Location:     strings.TrimSpace(r.Location),
		Organizer:    strings.TrimSpace(r.Organizer),
		Type:         strings.TrimSpace(r.Type),
		MaxAttendees: r.MaxAttendees,
		Image:        r.Image,
	}, nil
}

type rsvpRequest struct {
	MemberID string `json:"member_id" validate:"required"`
}

type eventResponse struct {
	Event eventDTO `json:"event"`
}

type listEventsResponse struct {
	Events []eventDTO `json:"events"`
}

type eventDTO struct {
	ID           string   `json:"id"`
	Title        string   `json:"title"`
	Description  string   `json:"description,omitempty"`
	Date         string   `json:"date"`
	Start        string   `json:"start"`
	End          string   `json:"end"`
	Location     string   `json:"location"`
	Organizer    string   `json:"organizer,omitempty"`
	Type         string   `json:"type"`
	MaxAttendees int      `json:"max_attendees"`
	Attendees    []string `json:"attendees"`
	Image        *string  `json:"image,omitempty"`
	CreatedAt    string   `json:"created_at"`
	UpdatedAt    string   `json:"updated_at"`
}

func toEventDTO(event application.Event) eventDTO {
	attendees := event.Attendees
	if attendees == nil {
		attendees = []string{}
	}
	return eventDTO{
		ID:           event.ID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date.String(),
		Start:        event.Start.String(),
		End:          event.End.String(),
		Location:     event.Location,
		Organizer:    event.Organizer,
		Type:         event.Type,
		MaxAttendees: event.MaxAttendees,
		Attendees:    attendees,
		Image:        event.Image,
		CreatedAt:    event.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt:    event.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toEventDTOs(events []application.Event) []eventDTO {
	if len(events) == 0 {
		return nil
	}
	out := make([]eventDTO, 0, len(events))
	for _, event := range events {
		out = append(out, toEventDTO(event))
	}
	return out
}
