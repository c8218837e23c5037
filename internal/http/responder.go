package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/spacehub/internal/application"
	"github.com/example/spacehub/internal/availability"
)

var (
	errBadRequestBody        = errors.New("request body is not valid JSON")
	errInvalidReservationID  = errors.New("reservation id is missing or invalid")
	errInvalidRoomID         = errors.New("room id is missing or invalid")
	errInvalidMemberID       = errors.New("member id is missing or invalid")
	errInvalidCheckinID      = errors.New("check-in id is missing or invalid")
	errInvalidEventID        = errors.New("event id is missing or invalid")
	errInvalidSettingSection = errors.New("settings section is missing or invalid")
)

type responder struct {
	logger *slog.Logger
}

func newResponder(logger *slog.Logger) responder {
	if logger == nil {
		logger = slog.Default()
	}
	return responder{logger: logger}
}

func (r responder) writeJSON(ctx context.Context, w http.ResponseWriter, status int, payload any) {
	if w == nil {
		return
	}

	if status == http.StatusNoContent || payload == nil {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		r.loggerFor(ctx).ErrorContext(ctx, "failed to encode response", "error", err)
	}
}

func (r responder) writeError(ctx context.Context, w http.ResponseWriter, status int, err error) {
	message := statusMessage(status)
	if err != nil {
		if msg := strings.TrimSpace(err.Error()); msg != "" {
			message = msg
		}
		r.loggerFor(ctx).ErrorContext(ctx, "request failed", "status", status, "error", err)
	}

	r.writeJSON(ctx, w, status, errorResponse{Message: message})
}

// handleServiceError translates application errors into HTTP responses. Domain
// conflicts map to 409 with a machine readable error code, validation failures
// to 422 with the per-field details.
func (r responder) handleServiceError(ctx context.Context, w http.ResponseWriter, err error) {
	if err == nil {
		r.writeError(ctx, w, http.StatusInternalServerError, errors.New("unknown error"))
		return
	}

	switch {
	case errors.Is(err, application.ErrNotFound):
		r.writeJSON(ctx, w, http.StatusNotFound, errorResponse{Message: "the requested resource was not found"})
	case errors.Is(err, application.ErrAlreadyExists):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ALREADY_EXISTS",
			Message:   "a resource with the same unique attribute already exists",
		})
	case errors.Is(err, application.ErrSlotConflict):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SLOT_CONFLICT",
			Message:   err.Error(),
		})
	case errors.Is(err, application.ErrRoomUnavailable):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "ROOM_UNAVAILABLE",
			Message:   "the room is not open for booking",
		})
	case errors.Is(err, application.ErrSpaceOccupied):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "SPACE_OCCUPIED",
			Message:   err.Error(),
		})
	case errors.Is(err, application.ErrEventFull):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "EVENT_FULL",
			Message:   err.Error(),
		})
	case errors.Is(err, application.ErrNotCheckedIn):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "NOT_CHECKED_IN",
			Message:   "the entry has not checked in yet",
		})
	case errors.Is(err, availability.ErrOccupiedRange):
		r.writeJSON(ctx, w, http.StatusConflict, errorResponse{
			ErrorCode: "OCCUPIED_RANGE",
			Message:   "the selected range contains occupied slots",
		})
	case errors.Is(err, availability.ErrInvalidTimeRange):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "the time range is incomplete or zero-length",
		})
	case errors.Is(err, availability.ErrMissingUntil):
		r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
			Message: "a recurring reservation requires an until date",
		})
	default:
		var vErr *application.ValidationError
		if errors.As(err, &vErr) {
			r.writeJSON(ctx, w, http.StatusUnprocessableEntity, errorResponse{
				Message: "the request contains invalid values",
				Errors:  vErr.FieldErrors,
			})
			return
		}

		r.writeJSON(ctx, w, http.StatusInternalServerError, errorResponse{Message: "an internal server error occurred"})
	}
}

func (r responder) loggerFor(ctx context.Context) *slog.Logger {
	if logger := LoggerFromContext(ctx); logger != nil {
		return logger
	}
	return r.logger
}

func statusMessage(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "the request is malformed"
	case http.StatusNotFound:
		return "the requested resource was not found"
	case http.StatusConflict:
		return "the request conflicts with the current state of the resource"
	case http.StatusUnprocessableEntity:
		return "the request contains invalid values"
	default:
		return "an internal server error occurred"
	}
}

type errorResponse struct {
	ErrorCode string            `json:"error_code,omitempty"`
	Message   string            `json:"message"`
	Errors    map[string]string `json:"errors,omitempty"`
}
