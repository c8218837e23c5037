package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/spacehub/internal/application"
	"github.com/example/spacehub/internal/availability"
)

type roomServiceStub struct {
	room    application.Room
	rooms   []application.Room
	err     error
	deleted []string
}

func (s *roomServiceStub) CreateRoom(ctx context.Context, input application.RoomInput) (application.Room, error) {
	return s.room, s.err
}

func (s *roomServiceStub) UpdateRoom(ctx context.Context, roomID string, input application.RoomInput) (application.Room, error) {
	return s.room, s.err
}

func (s *roomServiceStub) GetRoom(ctx context.Context, roomID string) (application.Room, error) {
	return s.room, s.err
}

func (s *roomServiceStub) DeleteRoom(ctx context.Context, roomID string) error {
	s.deleted = append(s.deleted, roomID)
	return s.err
}

func (s *roomServiceStub) ListRooms(ctx context.Context) ([]application.Room, error) {
	return s.rooms, s.err
}

type memberServiceStub struct {
	member  application.Member
	members []application.Member
	err     error
}

func (s *memberServiceStub) CreateMember(ctx context.Context, input application.MemberInput) (application.Member, error) {
	return s.member, s.err
}

func (s *memberServiceStub) UpdateMember(ctx context.Context, memberID string, input application.MemberInput) (application.Member, error) {
	return s.member, s.err
}

func (s *memberServiceStub) GetMember(ctx context.Context, memberID string) (application.Member, error) {
	return s.member, s.err
}

func (s *memberServiceStub) DeleteMember(ctx context.Context, memberID string) error {
	return s.err
}

func (s *memberServiceStub) ListMembers(ctx context.Context) ([]application.Member, error) {
	return s.members, s.err
}

type reservationServiceStub struct {
	created      []application.Reservation
	reservation  application.Reservation
	reservations []application.Reservation
	board        application.SlotBoard
	selection    availability.Selection
	err          error

	lastInput application.ReservationInput
	lastQuery application.ReservationQuery
	lastSel   availability.Selection
	lastClick availability.Slot
}

func (s *reservationServiceStub) CreateReservation(ctx context.Context, input application.ReservationInput) ([]application.Reservation, error) {
	s.lastInput = input
	return s.created, s.err
}

func (s *reservationServiceStub) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	return s.reservation, s.err
}

func (s *reservationServiceStub) ListReservations(ctx context.Context, query application.ReservationQuery) ([]application.Reservation, error) {
	s.lastQuery = query
	return s.reservations, s.err
}

func (s *reservationServiceStub) CancelReservation(ctx context.Context, id string) (application.Reservation, error) {
	return s.reservation, s.err
}

func (s *reservationServiceStub) GetSlotBoard(ctx context.Context, roomID string, date availability.Date) (application.SlotBoard, error) {
	return s.board, s.err
}

func (s *reservationServiceStub) SelectSlot(ctx context.Context, roomID string, date availability.Date, sel availability.Selection, clicked availability.Slot) (availability.Selection, error) {
	s.lastSel = sel
	s.lastClick = clicked
	return s.selection, s.err
}

type checkinServiceStub struct {
	entry     application.CheckinEntry
	entries   []application.CheckinEntry
	occupants []application.Occupant
	err       error
}

func (s *checkinServiceStub) BuildDailyCheckins(ctx context.Context, date availability.Date) ([]application.CheckinEntry, error) {
	return s.entries, s.err
}

func (s *checkinServiceStub) ListCheckins(ctx context.Context, query application.CheckinQuery) ([]application.CheckinEntry, error) {
	return s.entries, s.err
}

func (s *checkinServiceStub) ManualCheckin(ctx context.Context, input application.ManualCheckinInput) (application.CheckinEntry, error) {
	return s.entry, s.err
}

func (s *checkinServiceStub) CheckIn(ctx context.Context, id string) (application.CheckinEntry, error) {
	return s.entry, s.err
}

func (s *checkinServiceStub) CheckOut(ctx context.Context, id string) (application.CheckinEntry, error) {
	return s.entry, s.err
}

func (s *checkinServiceStub) ListOccupants(ctx context.Context) ([]application.Occupant, error) {
	return s.occupants, s.err
}

type eventServiceStub struct {
	event  application.Event
	events []application.Event
	err    error
}

func (s *eventServiceStub) CreateEvent(ctx context.Context, input application.EventInput) (application.Event, error) {
	return s.event, s.err
}

func (s *eventServiceStub) UpdateEvent(ctx context.Context, eventID string, input application.EventInput) (application.Event, error) {
	return s.event, s.err
}

func (s *eventServiceStub) GetEvent(ctx context.Context, id string) (application.Event, error) {
	return s.event, s.err
}

func (s *eventServiceStub) ListEvents(ctx context.Context, query application.EventQuery) ([]application.Event, error) {
	return s.events, s.err
}

func (s *eventServiceStub) ListUpcoming(ctx context.Context) ([]application.Event, error) {
	return s.events, s.err
}

func (s *eventServiceStub) ListPast(ctx context.Context) ([]application.Event, error) {
	return s.events, s.err
}

func (s *eventServiceStub) DeleteEvent(ctx context.Context, id string) error {
	return s.err
}

func (s *eventServiceStub) RSVP(ctx context.Context, eventID, memberID string) (application.Event, error) {
	return s.event, s.err
}

func (s *eventServiceStub) CancelRSVP(ctx context.Context, eventID, memberID string) (application.Event, error) {
	return s.event, s.err
}

type reportServiceStub struct {
	report application.UsageReport
	err    error

	lastPeriod    application.ReportPeriod
	lastReference availability.Date
}

func (s *reportServiceStub) UsageReport(ctx context.Context, period application.ReportPeriod, reference availability.Date) (application.UsageReport, error) {
	s.lastPeriod = period
	s.lastReference = reference
	return s.report, s.err
}

type settingsServiceStub struct {
	value       json.RawMessage
	sections    map[string]json.RawMessage
	general     application.GeneralSettings
	reservation application.ReservationSettings
	err         error

	lastSection string
	lastValue   json.RawMessage
}

func (s *settingsServiceStub) GetSection(ctx context.Context, section string) (json.RawMessage, error) {
	s.lastSection = section
	return s.value, s.err
}

func (s *settingsServiceStub) UpdateSection(ctx context.Context, section string, value json.RawMessage) error {
	s.lastSection = section
	s.lastValue = value
	return s.err
}

func (s *settingsServiceStub) ListSections(ctx context.Context) (map[string]json.RawMessage, error) {
	return s.sections, s.err
}

func (s *settingsServiceStub) GeneralSettings(ctx context.Context) (application.GeneralSettings, error) {
	s.lastSection = application.SettingsSectionGeneral
	return s.general, s.err
}

func (s *settingsServiceStub) ReservationSettings(ctx context.Context) (application.ReservationSettings, error) {
	s.lastSection = application.SettingsSectionReservations
	return s.reservation, s.err
}

func sampleRoom() application.Room {
	now := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	return application.Room{
		ID:        "room-1",
		Name:      "Innovation Hub",
		Location:  "2F",
		Capacity:  8,
		Available: true,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sampleReservation() application.Reservation {
	now := time.Date(2025, 1, 20, 9, 0, 0, 0, time.UTC)
	return application.Reservation{
		ID:        "res-1",
		RoomID:    "room-1",
		RoomName:  "Innovation Hub",
		MemberID:  "member-1",
		Date:      availability.MustDate("2025-01-27"),
		Start:     availability.MustSlot("10:00"),
		End:       availability.MustSlot("11:30"),
		Status:    application.ReservationStatusConfirmed,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func decodeBody(t *testing.T, recorder *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var payload map[string]any
	require.NoError(t, json.Unmarshal(recorder.Body.Bytes(), &payload))
	return payload
}

func TestHealthz(t *testing.T) {
	t.Parallel()

	router := NewRouter(RouterConfig{})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.JSONEq(t, `{"status":"ok"}`, recorder.Body.String())
}

func TestRoomEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("create returns the new room", func(t *testing.T) {
		t.Parallel()

		stub := &roomServiceStub{room: sampleRoom()}
		router := NewRouter(RouterConfig{Rooms: NewRoomHandler(stub, nil)})

		body := bytes.NewBufferString(`{"name":"Innovation Hub","location":"2F","capacity":8}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/rooms", body))

		require.Equal(t, http.StatusCreated, recorder.Code)
		payload := decodeBody(t, recorder)
		room, ok := payload["room"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "room-1", room["id"])
	})

	t.Run("malformed body yields 400", func(t *testing.T) {
		t.Parallel()

		stub := &roomServiceStub{}
		router := NewRouter(RouterConfig{Rooms: NewRoomHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/rooms", bytes.NewBufferString("{")))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("missing room yields 404", func(t *testing.T) {
		t.Parallel()

		stub := &roomServiceStub{err: application.ErrNotFound}
		router := NewRouter(RouterConfig{Rooms: NewRoomHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/nope", nil))

		assert.Equal(t, http.StatusNotFound, recorder.Code)
	})

	t.Run("unsupported method yields 405 with Allow header", func(t *testing.T) {
		t.Parallel()

		stub := &roomServiceStub{}
		router := NewRouter(RouterConfig{Rooms: NewRoomHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPatch, "/rooms", nil))

		require.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
		assert.Equal(t, "GET, POST", recorder.Header().Get("Allow"))
	})
}

func TestMemberValidation(t *testing.T) {
	t.Parallel()

	stub := &memberServiceStub{}
	router := NewRouter(RouterConfig{Members: NewMemberHandler(stub, nil)})

	body := bytes.NewBufferString(`{"name":"Ana","email":"not-an-email"}`)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/members", body))

	require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
	payload := decodeBody(t, recorder)
	errs, ok := payload["errors"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, errs, "email")
}

func TestReservationEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("create expands into a batch", func(t *testing.T) {
		t.Parallel()

		stub := &reservationServiceStub{created: []application.Reservation{sampleReservation()}}
		router := NewRouter(RouterConfig{Reservations: NewReservationHandler(stub, nil)})

		body := bytes.NewBufferString(`{
			"room_id": "room-1",
			"member_id": "member-1",
			"date": "2025-01-27",
			"recurrence": "weekly",
			"until": "2025-02-10",
			"start": "10:00",
			"end": "11:30"
		}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/reservations", body))

		require.Equal(t, http.StatusCreated, recorder.Code)
		assert.Equal(t, availability.FrequencyWeekly, stub.lastInput.Recurrence)
		require.NotNil(t, stub.lastInput.Until)
		assert.Equal(t, availability.MustDate("2025-02-10"), *stub.lastInput.Until)
	})

	t.Run("invalid time format yields 422", func(t *testing.T) {
		t.Parallel()

		stub := &reservationServiceStub{}
		router := NewRouter(RouterConfig{Reservations: NewReservationHandler(stub, nil)})

		body := bytes.NewBufferString(`{
			"room_id": "room-1",
			"member_id": "member-1",
			"date": "2025-01-27",
			"start": "quarter past ten",
			"end": "11:30"
		}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/reservations", body))

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		payload := decodeBody(t, recorder)
		errs, ok := payload["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "start")
	})

	t.Run("slot conflict yields 409 with error code", func(t *testing.T) {
		t.Parallel()

		stub := &reservationServiceStub{err: application.ErrSlotConflict}
		router := NewRouter(RouterConfig{Reservations: NewReservationHandler(stub, nil)})

		body := bytes.NewBufferString(`{
			"room_id": "room-1",
			"member_id": "member-1",
			"date": "2025-01-27",
			"start": "10:00",
			"end": "11:30"
		}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/reservations", body))

		require.Equal(t, http.StatusConflict, recorder.Code)
		payload := decodeBody(t, recorder)
		assert.Equal(t, "SLOT_CONFLICT", payload["error_code"])
	})

	t.Run("list forwards query filters", func(t *testing.T) {
		t.Parallel()

		stub := &reservationServiceStub{}
		router := NewRouter(RouterConfig{Reservations: NewReservationHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/reservations?room_id=room-1&from=2025-01-27&to=2025-01-31&status=confirmed,pending", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		require.NotNil(t, stub.lastQuery.RoomID)
		assert.Equal(t, "room-1", *stub.lastQuery.RoomID)
		require.NotNil(t, stub.lastQuery.From)
		assert.Equal(t, availability.MustDate("2025-01-27"), *stub.lastQuery.From)
		assert.Equal(t, []string{"confirmed", "pending"}, stub.lastQuery.Statuses)
	})

	t.Run("delete cancels and returns the row", func(t *testing.T) {
		t.Parallel()

		cancelled := sampleReservation()
		cancelled.Status = application.ReservationStatusCancelled
		stub := &reservationServiceStub{reservation: cancelled}
		router := NewRouter(RouterConfig{Reservations: NewReservationHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodDelete, "/reservations/res-1", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		payload := decodeBody(t, recorder)
		reservation, ok := payload["reservation"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "cancelled", reservation["status"])
	})
}

func TestSlotBoardEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("serves the daily board", func(t *testing.T) {
		t.Parallel()

		board := application.SlotBoard{
			RoomID: "room-1",
			Date:   availability.MustDate("2025-01-27"),
			Slots: []application.SlotStatus{
				{Slot: availability.MustSlot("08:00"), Occupied: false},
				{Slot: availability.MustSlot("08:30"), Occupied: true},
			},
		}
		stub := &reservationServiceStub{board: board}
		router := NewRouter(RouterConfig{
			Rooms:        NewRoomHandler(&roomServiceStub{}, nil),
			Reservations: NewReservationHandler(stub, nil),
		})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/room-1/slots?date=2025-01-27", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		payload := decodeBody(t, recorder)
		slots, ok := payload["slots"].([]any)
		require.True(t, ok)
		require.Len(t, slots, 2)
		first, ok := slots[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "08:00", first["time"])
		assert.Equal(t, false, first["occupied"])
	})

	t.Run("missing date yields 400", func(t *testing.T) {
		t.Parallel()

		router := NewRouter(RouterConfig{
			Rooms:        NewRoomHandler(&roomServiceStub{}, nil),
			Reservations: NewReservationHandler(&reservationServiceStub{}, nil),
		})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/rooms/room-1/slots", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})
}

func TestSelectionEndpoint(t *testing.T) {
	t.Parallel()

	t.Run("first click opens a partial selection", func(t *testing.T) {
		t.Parallel()

		stub := &reservationServiceStub{
			selection: availability.Selection{State: availability.SelectionPartial, Start: availability.MustSlot("10:00")},
		}
		router := NewRouter(RouterConfig{
			Rooms:        NewRoomHandler(&roomServiceStub{}, nil),
			Reservations: NewReservationHandler(stub, nil),
		})

		body := bytes.NewBufferString(`{"date":"2025-01-27","clicked":"10:00"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/rooms/room-1/selection", body))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, availability.SelectionEmpty, stub.lastSel.State)
		assert.Equal(t, availability.MustSlot("10:00"), stub.lastClick)

		payload := decodeBody(t, recorder)
		assert.Equal(t, "partial", payload["state"])
		assert.Equal(t, "10:00", payload["start"])
	})

	t.Run("second click carries the prior start", func(t *testing.T) {
		t.Parallel()

		stub := &reservationServiceStub{
			selection: availability.Selection{
				State: availability.SelectionComplete,
				Start: availability.MustSlot("10:00"),
				End:   availability.MustSlot("11:30"),
			},
		}
		router := NewRouter(RouterConfig{
			Rooms:        NewRoomHandler(&roomServiceStub{}, nil),
			Reservations: NewReservationHandler(stub, nil),
		})

		body := bytes.NewBufferString(`{"date":"2025-01-27","clicked":"11:30","start":"10:00"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/rooms/room-1/selection", body))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, availability.SelectionPartial, stub.lastSel.State)
		assert.Equal(t, availability.MustSlot("10:00"), stub.lastSel.Start)

		payload := decodeBody(t, recorder)
		assert.Equal(t, "complete", payload["state"])
		assert.Equal(t, "11:30", payload["end"])
	})

	t.Run("occupied range yields 409", func(t *testing.T) {
		t.Parallel()

		stub := &reservationServiceStub{err: availability.ErrOccupiedRange}
		router := NewRouter(RouterConfig{
			Rooms:        NewRoomHandler(&roomServiceStub{}, nil),
			Reservations: NewReservationHandler(stub, nil),
		})

		body := bytes.NewBufferString(`{"date":"2025-01-27","clicked":"11:30","start":"10:00"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/rooms/room-1/selection", body))

		require.Equal(t, http.StatusConflict, recorder.Code)
		payload := decodeBody(t, recorder)
		assert.Equal(t, "OCCUPIED_RANGE", payload["error_code"])
	})
}

func TestCheckinEndpoints(t *testing.T) {
	t.Parallel()

	entry := application.CheckinEntry{
		ID:         "checkin-1",
		MemberID:   "member-1",
		MemberName: "Ana",
		Space:      "Innovation Hub",
		Date:       availability.MustDate("2025-01-27"),
		Start:      availability.MustSlot("10:00"),
		End:        availability.MustSlot("11:30"),
		Status:     application.CheckinStatusCheckedIn,
	}

	t.Run("check-in transitions the entry", func(t *testing.T) {
		t.Parallel()

		stub := &checkinServiceStub{entry: entry}
		router := NewRouter(RouterConfig{Checkins: NewCheckinHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/checkins/checkin-1/checkin", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		payload := decodeBody(t, recorder)
		checkin, ok := payload["checkin"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "checked-in", checkin["status"])
	})

	t.Run("check-out before check-in yields 409", func(t *testing.T) {
		t.Parallel()

		stub := &checkinServiceStub{err: application.ErrNotCheckedIn}
		router := NewRouter(RouterConfig{Checkins: NewCheckinHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/checkins/checkin-1/checkout", nil))

		require.Equal(t, http.StatusConflict, recorder.Code)
		payload := decodeBody(t, recorder)
		assert.Equal(t, "NOT_CHECKED_IN", payload["error_code"])
	})

	t.Run("generate requires a parseable date", func(t *testing.T) {
		t.Parallel()

		stub := &checkinServiceStub{}
		router := NewRouter(RouterConfig{Checkins: NewCheckinHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/checkins/generate?date=tomorrow", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("generate rebuilds the daily list", func(t *testing.T) {
		t.Parallel()

		stub := &checkinServiceStub{entries: []application.CheckinEntry{entry}}
		router := NewRouter(RouterConfig{Checkins: NewCheckinHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/checkins/generate?date=2025-01-27", nil))

		require.Equal(t, http.StatusCreated, recorder.Code)
		payload := decodeBody(t, recorder)
		checkins, ok := payload["checkins"].([]any)
		require.True(t, ok)
		assert.Len(t, checkins, 1)
	})

	t.Run("occupants lists the current floor", func(t *testing.T) {
		t.Parallel()

		stub := &checkinServiceStub{occupants: []application.Occupant{
			{Space: "Focus Room", MemberID: "member-1", MemberName: "Ana Silva"},
			{Space: "Hot Desk 4", MemberID: "member-2", MemberName: "Ben Tanaka"},
		}}
		router := NewRouter(RouterConfig{Checkins: NewCheckinHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/checkins/occupants", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		payload := decodeBody(t, recorder)
		occupants, ok := payload["occupants"].([]any)
		require.True(t, ok)
		require.Len(t, occupants, 2)
		first, ok := occupants[0].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, "Focus Room", first["space"])
		assert.Equal(t, "Ana Silva", first["member_name"])
	})

	t.Run("occupants rejects non-GET methods", func(t *testing.T) {
		t.Parallel()

		stub := &checkinServiceStub{}
		router := NewRouter(RouterConfig{Checkins: NewCheckinHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/checkins/occupants", nil))

		assert.Equal(t, http.StatusMethodNotAllowed, recorder.Code)
		assert.Equal(t, http.MethodGet, recorder.Header().Get("Allow"))
	})

	t.Run("occupied space yields 409", func(t *testing.T) {
		t.Parallel()

		stub := &checkinServiceStub{err: application.ErrSpaceOccupied}
		router := NewRouter(RouterConfig{Checkins: NewCheckinHandler(stub, nil)})

		body := bytes.NewBufferString(`{"member_id":"member-1","space":"Focus Booth","date":"2025-01-27","start":"10:00","end":"12:00"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/checkins", body))

		require.Equal(t, http.StatusConflict, recorder.Code)
		payload := decodeBody(t, recorder)
		assert.Equal(t, "SPACE_OCCUPIED", payload["error_code"])
	})
}

func TestEventEndpoints(t *testing.T) {
	t.Parallel()

	event := application.Event{
		ID:           "event-1",
		Title:        "Intro to Go",
		Date:         availability.MustDate("2025-02-05"),
		Start:        availability.MustSlot("14:00"),
		End:          availability.MustSlot("17:00"),
		Location:     "Main Hall",
		Type:         "workshop",
		MaxAttendees: 20,
	}

	t.Run("rsvp returns the updated roster", func(t *testing.T) {
		t.Parallel()

		withRoster := event
		withRoster.Attendees = []string{"member-1"}
		stub := &eventServiceStub{event: withRoster}
		router := NewRouter(RouterConfig{Events: NewEventHandler(stub, nil)})

		body := bytes.NewBufferString(`{"member_id":"member-1"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/events/event-1/rsvp", body))

		require.Equal(t, http.StatusOK, recorder.Code)
		payload := decodeBody(t, recorder)
		eventPayload, ok := payload["event"].(map[string]any)
		require.True(t, ok)
		assert.Equal(t, []any{"member-1"}, eventPayload["attendees"])
	})

	t.Run("full event yields 409", func(t *testing.T) {
		t.Parallel()

		stub := &eventServiceStub{err: application.ErrEventFull}
		router := NewRouter(RouterConfig{Events: NewEventHandler(stub, nil)})

		body := bytes.NewBufferString(`{"member_id":"member-1"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/events/event-1/rsvp", body))

		require.Equal(t, http.StatusConflict, recorder.Code)
		payload := decodeBody(t, recorder)
		assert.Equal(t, "EVENT_FULL", payload["error_code"])
	})

	t.Run("invalid scope yields 400", func(t *testing.T) {
		t.Parallel()

		stub := &eventServiceStub{}
		router := NewRouter(RouterConfig{Events: NewEventHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/events?scope=yesterday", nil))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("create rejects a zero capacity", func(t *testing.T) {
		t.Parallel()

		stub := &eventServiceStub{}
		router := NewRouter(RouterConfig{Events: NewEventHandler(stub, nil)})

		body := bytes.NewBufferString(`{"title":"Intro to Go","date":"2025-02-05","start":"14:00","end":"17:00","location":"Main Hall","type":"workshop","max_attendees":0}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPost, "/events", body))

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		payload := decodeBody(t, recorder)
		errs, ok := payload["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "maxAttendees")
	})
}

func TestReportEndpoint(t *testing.T) {
	t.Parallel()

	stub := &reportServiceStub{report: application.UsageReport{
		Period:   application.ReportPeriodWeek,
		From:     availability.MustDate("2025-01-27"),
		To:       availability.MustDate("2025-02-02"),
		Checkins: 3,
		Events:   2,
		Breakdown: []application.PeriodBucket{
			{Label: "Monday", Checkins: 2, Reservations: 1},
			{Label: "Tuesday", Checkins: 1, Events: 2},
		},
		MostPopular: "Monday",
	}}
	router := NewRouter(RouterConfig{Reports: NewReportHandler(stub, nil)})

	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/reports/usage?period=week&date=2025-01-29", nil))

	require.Equal(t, http.StatusOK, recorder.Code)
	assert.Equal(t, application.ReportPeriodWeek, stub.lastPeriod)
	assert.Equal(t, availability.MustDate("2025-01-29"), stub.lastReference)

	payload := decodeBody(t, recorder)
	assert.Equal(t, "2025-01-27", payload["from"])
	assert.Equal(t, "2025-02-02", payload["to"])
	assert.Equal(t, float64(3), payload["checkins"])
	assert.Equal(t, float64(2), payload["events"])
	assert.Equal(t, "Monday", payload["most_popular"])

	breakdown, ok := payload["breakdown"].([]any)
	require.True(t, ok)
	require.Len(t, breakdown, 2)
	monday, ok := breakdown[0].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "Monday", monday["label"])
	assert.Equal(t, float64(2), monday["checkins"])
	assert.Equal(t, float64(1), monday["reservations"])
}

func TestSettingsEndpoints(t *testing.T) {
	t.Parallel()

	t.Run("update echoes the stored document", func(t *testing.T) {
		t.Parallel()

		stub := &settingsServiceStub{}
		router := NewRouter(RouterConfig{Settings: NewSettingsHandler(stub, nil)})

		body := bytes.NewBufferString(`{"spaceName":"SpaceHub","openTime":"08:00","closeTime":"19:00"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/settings/general", body))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "general", stub.lastSection)
		assert.JSONEq(t, `{"spaceName":"SpaceHub","openTime":"08:00","closeTime":"19:00"}`, string(stub.lastValue))
	})

	t.Run("schema violation yields 422", func(t *testing.T) {
		t.Parallel()

		stub := &settingsServiceStub{err: &application.ValidationError{FieldErrors: map[string]string{"openTime": "must be an HH:MM time"}}}
		router := NewRouter(RouterConfig{Settings: NewSettingsHandler(stub, nil)})

		body := bytes.NewBufferString(`{"openTime":"25:99"}`)
		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/settings/general", body))

		require.Equal(t, http.StatusUnprocessableEntity, recorder.Code)
		payload := decodeBody(t, recorder)
		errs, ok := payload["errors"].(map[string]any)
		require.True(t, ok)
		assert.Contains(t, errs, "openTime")
	})

	t.Run("invalid JSON body yields 400", func(t *testing.T) {
		t.Parallel()

		stub := &settingsServiceStub{}
		router := NewRouter(RouterConfig{Settings: NewSettingsHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodPut, "/settings/general", bytes.NewBufferString("{not json")))

		assert.Equal(t, http.StatusBadRequest, recorder.Code)
	})

	t.Run("general section is served through the typed accessor", func(t *testing.T) {
		t.Parallel()

		stub := &settingsServiceStub{general: application.GeneralSettings{
			SpaceName: "SpaceHub",
			OpenTime:  "08:00",
			CloseTime: "19:00",
		}}
		router := NewRouter(RouterConfig{Settings: NewSettingsHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/settings/general", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "general", stub.lastSection)
		payload := decodeBody(t, recorder)
		assert.Equal(t, "SpaceHub", payload["spaceName"])
		assert.Equal(t, "08:00", payload["openTime"])
		assert.Contains(t, payload, "contactEmail")
	})

	t.Run("reservations section is served through the typed accessor", func(t *testing.T) {
		t.Parallel()

		stub := &settingsServiceStub{reservation: application.ReservationSettings{
			DefaultDurationMinutes:  60,
			TimeSlotIntervalMinutes: 30,
			CancellationNoticeHours: 24,
		}}
		router := NewRouter(RouterConfig{Settings: NewSettingsHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/settings/reservations", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "reservations", stub.lastSection)
		payload := decodeBody(t, recorder)
		assert.Equal(t, float64(30), payload["timeSlotIntervalMinutes"])
	})

	t.Run("other sections fall back to the raw document", func(t *testing.T) {
		t.Parallel()

		stub := &settingsServiceStub{value: json.RawMessage(`{"emailEnabled":true}`)}
		router := NewRouter(RouterConfig{Settings: NewSettingsHandler(stub, nil)})

		recorder := httptest.NewRecorder()
		router.ServeHTTP(recorder, httptest.NewRequest(http.MethodGet, "/settings/communications", nil))

		require.Equal(t, http.StatusOK, recorder.Code)
		assert.Equal(t, "communications", stub.lastSection)
		payload := decodeBody(t, recorder)
		assert.Equal(t, true, payload["emailEnabled"])
	})
}
