package http

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/spacehub/internal/application"
)

type settingsService interface {
	GetSection(ctx context.Context, section string) (json.RawMessage, error)
	UpdateSection(ctx context.Context, section string, value json.RawMessage) error
	ListSections(ctx context.Context) (map[string]json.RawMessage, error)
	GeneralSettings(ctx context.Context) (application.GeneralSettings, error)
	ReservationSettings(ctx context.Context) (application.ReservationSettings, error)
}

type SettingsHandler struct {
	service   settingsService
	responder responder
	logger    *slog.Logger
}

func NewSettingsHandler(service settingsService, logger *slog.Logger) *SettingsHandler {
	base := defaultLogger(logger)
	return &SettingsHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *SettingsHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SettingsHandler", operation, attrs...)
}

func (h *SettingsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")
	sections, err := h.service.ListSections(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "settings list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(sections)).InfoContext(r.Context(), "settings listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sections)
}

func (h *SettingsHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	section, ok := SettingsSectionFromContext(r.Context())
	if !ok || strings.TrimSpace(section) == "" {
		h.log(r.Context(), "Get", "error_kind", "bad_request").ErrorContext(r.Context(), "missing settings section")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSettingSection)
		return
	}

	logger := h.log(r.Context(), "Get", "section", section)

	// The general and reservations sections go through the typed accessors so
	// clients always receive every field, including zero values the stored
	// document may omit.
	var payload any
	var err error
	switch section {
	case application.SettingsSectionGeneral:
		payload, err = h.service.GeneralSettings(r.Context())
	case application.SettingsSectionReservations:
		payload, err = h.service.ReservationSettings(r.Context())
	default:
		payload, err = h.service.GetSection(r.Context(), section)
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "settings lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	h.responder.writeJSON(r.Context(), w, http.StatusOK, payload)
}

func (h *SettingsHandler) Update(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	section, ok := SettingsSectionFromContext(r.Context())
	if !ok || strings.TrimSpace(section) == "" {
		h.log(r.Context(), "Update", "error_kind", "bad_request").ErrorContext(r.Context(), "missing settings section")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSettingSection)
		return
	}

	body, err := io.ReadAll(r.Body)
	if err != nil || !json.Valid(body) {
		h.log(r.Context(), "Update", "section", section, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to read settings body", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Update", "section", section)
	if err := h.service.UpdateSection(r.Context(), section, json.RawMessage(body)); err != nil {
		logger.ErrorContext(r.Context(), "settings update failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "settings updated")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, json.RawMessage(body))
}
