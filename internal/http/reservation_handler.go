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

type reservationService interface {
	CreateReservation(ctx context.Context, input application.ReservationInput) ([]application.Reservation, error)
	GetReservation(ctx context.Context, id string) (application.Reservation, error)
	ListReservations(ctx context.Context, query application.ReservationQuery) ([]application.Reservation, error)
	CancelReservation(ctx context.Context, id string) (application.Reservation, error)
	GetSlotBoard(ctx context.Context, roomID string, date availability.Date) (application.SlotBoard, error)
	SelectSlot(ctx context.Context, roomID string, date availability.Date, sel availability.Selection, clicked availability.Slot) (availability.Selection, error)
}

type ReservationHandler struct {
	service   reservationService
	responder responder
	logger    *slog.Logger
}

func NewReservationHandler(service reservationService, logger *slog.Logger) *ReservationHandler {
	base := defaultLogger(logger)
	return &ReservationHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReservationHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReservationHandler", operation, attrs...)
}

func (h *ReservationHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req reservationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "room_id", req.RoomID)

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "reservation request rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	input, err := req.toInput()
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse reservation request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	reservations, err := h.service.CreateReservation(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "reservations created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

func (h *ReservationHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing reservation id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	logger := h.log(r.Context(), "Get", "reservation_id", id)
	reservation, err := h.service.GetReservation(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

func (h *ReservationHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	query, err := reservationQueryFromRequest(r)
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid reservation filters", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	reservations, err := h.service.ListReservations(r.Context(), query)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(reservations)).InfoContext(r.Context(), "reservations listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listReservationsResponse{Reservations: toReservationDTOs(reservations)})
}

// Cancel flips the reservation to cancelled and returns the updated row. The
// record is kept for reporting, so this is not a destructive delete.
func (h *ReservationHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "Cancel", "error_kind", "bad_request").ErrorContext(r.Context(), "missing reservation id for cancel")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidReservationID)
		return
	}

	logger := h.log(r.Context(), "Cancel", "reservation_id", id)
	reservation, err := h.service.CancelReservation(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "reservation cancel failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "reservation cancelled")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, reservationResponse{Reservation: toReservationDTO(reservation)})
}

// Slots serves the daily availability board for a room.
func (h *ReservationHandler) Slots(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "Slots", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for slot board")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	logger := h.log(r.Context(), "Slots", "room_id", roomID)

	date, err := availability.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid slot board date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("date must be a YYYY-MM-DD date"))
		return
	}

	board, err := h.service.GetSlotBoard(r.Context(), roomID, date)
	if err != nil {
		logger.ErrorContext(r.Context(), "slot board lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSlotBoardDTO(board))
}

// Select advances the two-click range selection for a room and date. The
// client carries the selection state between calls; a request without a start
// is the first click, one with a start is the second.
func (h *ReservationHandler) Select(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	roomID, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(roomID) == "" {
		h.log(r.Context(), "Select", "error_kind", "bad_request").ErrorContext(r.Context(), "missing room id for selection")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidRoomID)
		return
	}

	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Select", "room_id", roomID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode selection request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Select", "room_id", roomID)

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "selection request rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	date, sel, clicked, err := req.parse()
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse selection request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	next, err := h.service.SelectSlot(r.Context(), roomID, date, sel, clicked)
	if err != nil {
		logger.ErrorContext(r.Context(), "slot selection failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, toSelectionDTO(next))
}

func reservationQueryFromRequest(r *http.Request) (application.ReservationQuery, error) {
	values := r.URL.Query()

	var query application.ReservationQuery
	if roomID := strings.TrimSpace(values.Get("room_id")); roomID != "" {
		query.RoomID = &roomID
	}
	if memberID := strings.TrimSpace(values.Get("member_id")); memberID != "" {
		query.MemberID = &memberID
	}
	for _, key := range []string{"date", "from", "to"} {
		raw := strings.TrimSpace(values.Get(key))
		if raw == "" {
			continue
		}
		date, err := availability.ParseDate(raw)
		if err != nil {
			return application.ReservationQuery{}, fmt.Errorf("%s must be a YYYY-MM-DD date", key)
		}
		switch key {
		case "date":
			query.Date = &date
		case "from":
			query.From = &date
		case "to":
			query.To = &date
		}
	}
	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				query.Statuses = append(query.Statuses, status)
			}
		}
	}
	return query, nil
}

type reservationRequest struct {
	RoomID     string   `json:"room_id" validate:"required"`
	MemberID   string   `json:"member_id" validate:"required"`
	Date       string   `json:"date" validate:"required,dateiso"`
	EndDate    string   `json:"end_date" validate:"omitempty,dateiso"`
	Recurrence string   `json:"recurrence" validate:"omitempty,oneof=none daily weekly monthly"`
	Until      string   `json:"until" validate:"omitempty,dateiso"`
	Start      string   `json:"start" validate:"required,hhmm"`
	End        string   `json:"end" validate:"required,hhmm"`
	Purpose    string   `json:"purpose"`
	Attendees  []string `json:"attendees"`
}

func (r reservationRequest) toInput() (application.ReservationInput, error) {
	date, err := availability.ParseDate(r.Date)
	if err != nil {
		return application.ReservationInput{}, err
	}
	frequency, err := availability.ParseFrequency(r.Recurrence)
	if err != nil {
		return application.ReservationInput{}, err
	}
	start, err := availability.ParseSlot(r.Start)
	if err != nil {
		return application.ReservationInput{}, err
	}
	end, err := availability.ParseSlot(r.End)
	if err != nil {
		return application.ReservationInput{}, err
	}

	input := application.ReservationInput{
		RoomID:     strings.TrimSpace(r.RoomID),
		MemberID:   strings.TrimSpace(r.MemberID),
		Date:       date,
		Recurrence: frequency,
		Range:      availability.RangeOf(start, end),
		Purpose:    strings.TrimSpace(r.Purpose),
		Attendees:  r.Attendees,
	}
	if r.EndDate != "" {
		endDate, err := availability.ParseDate(r.EndDate)
		if err != nil {
			return application.ReservationInput{}, err
		}
		input.EndDate = &endDate
	}
	if r.Until != "" {
		until, err := availability.ParseDate(r.Until)
		if err != nil {
			return application.ReservationInput{}, err
		}
		input.Until = &until
	}
	return input, nil
}

type selectionRequest struct {
	Date    string  `json:"date" validate:"required,dateiso"`
	Clicked string  `json:"clicked" validate:"required,hhmm"`
	Start   *string `json:"start" validate:"omitempty,hhmm"`
	End     *string `json:"end" validate:"omitempty,hhmm"`
}

func (r selectionRequest) parse() (availability.Date, availability.Selection, availability.Slot, error) {
	date, err := availability.ParseDate(r.Date)
	if err != nil {
		return availability.Date{}, availability.Selection{}, 0, err
	}
	clicked, err := availability.ParseSlot(r.Clicked)
	if err != nil {
		return availability.Date{}, availability.Selection{}, 0, err
	}

	var sel availability.Selection
	if r.Start != nil {
		start, err := availability.ParseSlot(*r.Start)
		if err != nil {
			return availability.Date{}, availability.Selection{}, 0, err
		}
		sel = availability.Selection{State: availability.SelectionPartial, Start: start}
	}
	if r.Start != nil && r.End != nil {
		end, err := availability.ParseSlot(*r.End)
		if err != nil {
			return availability.Date{}, availability.Selection{}, 0, err
		}
		sel.State = availability.SelectionComplete
		sel.End = end
	}
	return date, sel, clicked, nil
}

type reservationResponse struct {
	Reservation reservationDTO `json:"reservation"`
}

type listReservationsResponse struct {
	Reservations []reservationDTO `json:"reservations"`
}

type reservationDTO struct {
	ID        string   `json:"id"`
	RoomID    string   `json:"room_id"`
	RoomName  string   `json:"room_name"`
	MemberID  string   `json:"member_id"`
	Date      string   `json:"date"`
	Start     string   `json:"start"`
	End       string   `json:"end"`
	Status    string   `json:"status"`
	Purpose   string   `json:"purpose,omitempty"`
	Attendees []string `json:"attendees,omitempty"`
	CreatedAt string   `json:"created_at"`
	UpdatedAt string   `json:"updated_at"`
}

func toReservationDTO(reservation application.Reservation) reservationDTO {
	return reservationDTO{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		RoomName:  reservation.RoomName,
		MemberID:  reservation.MemberID,
		Date:      reservation.Date.String(),
		Start:     reservation.Start.String(),
		End:       reservation.End.String(),
		Status:    reservation.Status,
		Purpose:   reservation.Purpose,
		Attendees: reservation.Attendees,
		CreatedAt: reservation.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: reservation.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

func toReservationDTOs(reservations []application.Reservation) []reservationDTO {
	if len(reservations) == 0 {
		return nil
	}
	out := make([]reservationDTO, 0, len(reservations))
	for _, reservation := range reservations {
		out = append(out, toReservationDTO(reservation))
	}
	return out
}

type slotStatusDTO struct {
	Time     string `json:"time"`
	Occupied bool   `json:"occupied"`
}

type slotBoardDTO struct {
	RoomID string          `json:"room_id"`
	Date   string          `json:"date"`
	Slots  []slotStatusDTO `json:"slots"`
}

func toSlotBoardDTO(board application.SlotBoard) slotBoardDTO {
	slots := make([]slotStatusDTO, 0, len(board.Slots))
	for _, slot := range board.Slots {
		slots = append(slots, slotStatusDTO{Time: slot.Slot.String(), Occupied: slot.Occupied})
	}
	return slotBoardDTO{RoomID: board.RoomID, Date: board.Date.String(), Slots: slots}
}

type selectionDTO struct {
	State string  `json:"state"`
	Start *string `json:"start,omitempty"`
	End   *string `json:"end,omitempty"`
}

func toSelectionDTO(sel availability.Selection) selectionDTO {
	switch sel.State {
	case availability.SelectionPartial:
		start := sel.Start.String()
		return selectionDTO{State: "partial", Start: &start}
	case availability.SelectionComplete:
		start := sel.Start.String()
		end := sel.End.String()
		return selectionDTO{State: "complete", Start: &start, End: &end}
	default:
		return selectionDTO{State: "empty"}
	}
}
