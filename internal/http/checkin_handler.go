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

type checkinService interface {
	BuildDailyCheckins(ctx context.Context, date availability.Date) ([]application.CheckinEntry, error)
	ListCheckins(ctx context.Context, query application.CheckinQuery) ([]application.CheckinEntry, error)
	ListOccupants(ctx context.Context) ([]application.Occupant, error)
	ManualCheckin(ctx context.Context, input application.ManualCheckinInput) (application.CheckinEntry, error)
	CheckIn(ctx context.Context, id string) (application.CheckinEntry, error)
	CheckOut(ctx context.Context, id string) (application.CheckinEntry, error)
}

type CheckinHandler struct {
	service   checkinService
	responder responder
	logger    *slog.Logger
}

func NewCheckinHandler(service checkinService, logger *slog.Logger) *CheckinHandler {
	base := defaultLogger(logger)
	return &CheckinHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CheckinHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CheckinHandler", operation, attrs...)
}

func (h *CheckinHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	query, err := checkinQueryFromRequest(r)
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid check-in filters", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	entries, err := h.service.ListCheckins(r.Context(), query)
	if err != nil {
		logger.ErrorContext(r.Context(), "check-in list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries)).InfoContext(r.Context(), "check-ins listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCheckinsResponse{Checkins: toCheckinDTOs(entries)})
}

// Occupants serves the current floor occupancy from the presence tracker.
func (h *CheckinHandler) Occupants(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Occupants")

	occupants, err := h.service.ListOccupants(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "occupant list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(occupants)).InfoContext(r.Context(), "occupants listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listOccupantsResponse{Occupants: toOccupantDTOs(occupants)})
}

// Generate rebuilds the expected check-in list for a date from confirmed
// reservations and active day-pass members.
func (h *CheckinHandler) Generate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Generate")

	date, err := availability.ParseDate(r.URL.Query().Get("date"))
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid generation date", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("date must be a YYYY-MM-DD date"))
		return
	}

	entries, err := h.service.BuildDailyCheckins(r.Context(), date)
	if err != nil {
		logger.ErrorContext(r.Context(), "check-in generation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(entries), "date", date.String()).InfoContext(r.Context(), "daily check-ins generated")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, listCheckinsResponse{Checkins: toCheckinDTOs(entries)})
}

func (h *CheckinHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req manualCheckinRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode check-in request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create", "member_id", req.MemberID)

	if fields := validateRequest(req); fields != nil {
		logger.With("error_kind", "validation").ErrorContext(r.Context(), "check-in request rejected")
		h.responder.writeJSON(r.Context(), w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the request contains invalid values",
			Errors:  fields,
		})
		return
	}

	input, err := req.toInput()
	if err != nil {
		logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "failed to parse check-in request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, err)
		return
	}

	entry, err := h.service.ManualCheckin(r.Context(), input)
	if err != nil {
		logger.ErrorContext(r.Context(), "manual check-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("checkin_id", entry.ID).InfoContext(r.Context(), "manual check-in recorded")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, checkinResponse{Checkin: toCheckinDTO(entry)})
}

func (h *CheckinHandler) CheckIn(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "CheckIn", "error_kind", "bad_request").ErrorContext(r.Context(), "missing check-in id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCheckinID)
		return
	}

	logger := h.log(r.Context(), "CheckIn", "checkin_id", id)
	entry, err := h.service.CheckIn(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "check-in failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member checked in")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkinResponse{Checkin: toCheckinDTO(entry)})
}

func (h *CheckinHandler) CheckOut(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	id, ok := ResourceIDFromContext(r.Context())
	if !ok || strings.TrimSpace(id) == "" {
		h.log(r.Context(), "CheckOut", "error_kind", "bad_request").ErrorContext(r.Context(), "missing check-in id")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCheckinID)
		return
	}

	logger := h.log(r.Context(), "CheckOut", "checkin_id", id)
	entry, err := h.service.CheckOut(r.Context(), id)
	if err != nil {
		logger.ErrorContext(r.Context(), "check-out failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "member checked out")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, checkinResponse{Checkin: toCheckinDTO(entry)})
}

func checkinQueryFromRequest(r *http.Request) (application.CheckinQuery, error) {
	values := r.URL.Query()

	var query application.CheckinQuery
	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		date, err := availability.ParseDate(raw)
		if err != nil {
			return application.CheckinQuery{}, fmt.Errorf("date must be a YYYY-MM-DD date")
		}
		query.Date = &date
	}
	if memberID := strings.TrimSpace(values.Get("member_id")); memberID != "" {
		query.MemberID = &memberID
	}
	if raw := strings.TrimSpace(values.Get("status")); raw != "" {
		for _, status := range strings.Split(raw, ",") {
			if status = strings.TrimSpace(status); status != "" {
				query.Statuses = append(query.Statuses, status)
			}
		}
	}
	query.Search = strings.TrimSpace(values.Get("search"))
	return query, nil
}

type manualCheckinRequest struct {
	MemberID string `json:"member_id" validate:"required"`
	Space    string `json:"space" validate:"required"`
	Date     string `json:"date" validate:"required,dateiso"`
	Start    string `json:"start" validate:"required,hhmm"`
	End      string `json:"end" validate:"required,hhmm"`
}

func (r manualCheckinRequest) toInput() (application.ManualCheckinInput, error) {
	date, err := availability.ParseDate(r.Date)
	if err != nil {
		return application.ManualCheckinInput{}, err
	}
	start, err := availability.ParseSlot(r.Start)
	if err != nil {
		return application.ManualCheckinInput{}, err
	}
	end, err := availability.ParseSlot(r.End)
	if err != nil {
		return application.ManualCheckinInput{}, err
	}
	return application.ManualCheckinInput{
		MemberID: strings.TrimSpace(r.MemberID),
		Space:    strings.TrimSpace(r.Space),
		Date:     date,
		Start:    start,
		End:      end,
	}, nil
}

type checkinResponse struct {
	Checkin checkinDTO `json:"checkin"`
}

type listCheckinsResponse struct {
	Checkins []checkinDTO `json:"checkins"`
}

type checkinDTO struct {
	ID            string  `json:"id"`
	MemberID      string  `json:"member_id"`
	MemberName    string  `json:"member_name"`
	ReservationID *string `json:"reservation_id,omitempty"`
	Space         string  `json:"space"`
	Date          string  `json:"date"`
	Start         string  `json:"start"`
	End           string  `json:"end"`
	Status        string  `json:"status"`
	CheckedInAt   *string `json:"checked_in_at,omitempty"`
	CheckedOutAt  *string `json:"checked_out_at,omitempty"`
}

func toCheckinDTO(entry application.CheckinEntry) checkinDTO {
	dto := checkinDTO{
		ID:            entry.ID,
		MemberID:      entry.MemberID,
		MemberName:    entry.MemberName,
		ReservationID: entry.ReservationID,
		Space:         entry.Space,
		Date:          entry.Date.String(),
		Start:         entry.Start.String(),
		End:           entry.End.String(),
		Status:        entry.Status,
	}
	if entry.CheckedInAt != nil {
		stamp := entry.CheckedInAt.UTC().Format(time.RFC3339Nano)
		dto.CheckedInAt = &stamp
	}
	if entry.CheckedOutAt != nil {
		stamp := entry.CheckedOutAt.UTC().Format(time.RFC3339Nano)
		dto.CheckedOutAt = &stamp
	}
	return dto
}

func toCheckinDTOs(entries []application.CheckinEntry) []checkinDTO {
	if len(entries) == 0 {
		return nil
	}
	out := make([]checkinDTO, 0, len(entries))
	for _, entry := range entries {
		out = append(out, toCheckinDTO(entry))
	}
	return out
}

type listOccupantsResponse struct {
	Occupants []occupantDTO `json:"occupants"`
}

type occupantDTO struct {
	Space      string `json:"space"`
	MemberID   string `json:"member_id"`
	MemberName string `json:"member_name"`
}

func toOccupantDTOs(occupants []application.Occupant) []occupantDTO {
	if len(occupants) == 0 {
		return nil
	}
	out := make([]occupantDTO, 0, len(occupants))
	for _, occupant := range occupants {
		out = append(out, occupantDTO{
			Space:      occupant.Space,
			MemberID:   occupant.MemberID,
			MemberName: occupant.MemberName,
		})
	}
	return out
}
