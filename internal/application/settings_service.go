package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/example/spacehub/internal/availability"
)

// Settings section names.
const (
	SettingsSectionGeneral        = "general"
	SettingsSectionReservations   = "reservations"
	SettingsSectionUsers          = "users"
	SettingsSectionCommunications = "communications"
)

var settingsSections = map[string]struct{}{
	SettingsSectionGeneral:        {},
	SettingsSectionReservations:   {},
	SettingsSectionUsers:          {},
	SettingsSectionCommunications: {},
}

// SettingsStore captures the persistence interactions for configuration
// sections. Values are opaque JSON documents.
type SettingsStore interface {
	UpsertSetting(ctx context.Context, section string, value []byte, updatedAt time.Time) error
	GetSetting(ctx context.Context, section string) ([]byte, error)
	ListSettings(ctx context.Context) (map[string][]byte, error)
}

// SettingsService reads and writes the dashboard configuration sections.
type SettingsService struct {
	store  SettingsStore
	now    func() time.Time
	logger *slog.Logger
}

// NewSettingsService wires dependencies for settings operations.
func NewSettingsService(store SettingsStore, now func() time.Time) *SettingsService {
	return NewSettingsServiceWithLogger(store, now, nil)
}

// NewSettingsServiceWithLogger wires dependencies with a specified logger.
func NewSettingsServiceWithLogger(store SettingsStore, now func() time.Time, logger *slog.Logger) *SettingsService {
	if now == nil {
		now = time.Now
	}
	return &SettingsService{
		store:  store,
		now:    now,
		logger: defaultLogger(logger),
	}
}

func (s *SettingsService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SettingsService", operation, attrs...)
}

// GetSection returns the raw JSON document for a configuration section.
func (s *SettingsService) GetSection(ctx context.Context, section string) (json.RawMessage, error) {
	if s == nil {
		return nil, fmt.Errorf("SettingsService is nil")
	}
	if err := validateSection(section); err != nil {
		return nil, err
	}
	if s.store == nil {
		return nil, ErrNotFound
	}

	value, err := s.store.GetSetting(ctx, section)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return json.RawMessage(value), nil
}

// UpdateSection replaces the JSON document for a configuration section. The
// value must be a JSON object; the general and reservations sections are
// additionally checked against their schemas.
func (s *SettingsService) UpdateSection(ctx context.Context, section string, value json.RawMessage) (err error) {
	if s == nil {
		return fmt.Errorf("SettingsService is nil")
	}

	logger := s.loggerWith(ctx, "UpdateSection", "section", section)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to update settings", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "settings updated")
	}()

	if err = validateSection(section); err != nil {
		return
	}
	if err = validateSectionValue(section, value); err != nil {
		return
	}
	if s.store == nil {
		return
	}

	if err = s.store.UpsertSetting(ctx, section, value, s.now()); err != nil {
		err = mapRepoError(err)
		return
	}
	return
}

// ListSections returns every stored configuration section keyed by name.
func (s *SettingsService) ListSections(ctx context.Context) (map[string]json.RawMessage, error) {
	if s == nil {
		return nil, fmt.Errorf("SettingsService is nil")
	}
	if s.store == nil {
		return nil, nil
	}

	values, err := s.store.ListSettings(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	sections := make(map[string]json.RawMessage, len(values))
	for section, value := range values {
		sections[section] = json.RawMessage(value)
	}
	return sections, nil
}

// GeneralSettings returns the decoded general section.
func (s *SettingsService) GeneralSettings(ctx context.Context) (GeneralSettings, error) {
	var settings GeneralSettings
	raw, err := s.GetSection(ctx, SettingsSectionGeneral)
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return GeneralSettings{}, fmt.Errorf("decoding general settings: %w", err)
	}
	return settings, nil
}

// ReservationSettings returns the decoded reservation policy section.
func (s *SettingsService) ReservationSettings(ctx context.Context) (ReservationSettings, error) {
	var settings ReservationSettings
	raw, err := s.GetSection(ctx, SettingsSectionReservations)
	if err != nil {
		return settings, err
	}
	if err := json.Unmarshal(raw, &settings); err != nil {
		return ReservationSettings{}, fmt.Errorf("decoding reservation settings: %w", err)
	}
	return settings, nil
}

func validateSection(section string) error {
	if _, ok := settingsSections[section]; !ok {
		vErr := &ValidationError{}
		vErr.add("section", fmt.Sprintf("unknown settings section %q", section))
		return vErr
	}
	return nil
}

func validateSectionValue(section string, value json.RawMessage) error {
	vErr := &ValidationError{}

	var object map[string]json.RawMessage
	if err := json.Unmarshal(value, &object); err != nil {
		vErr.add("value", "value must be a JSON object")
		return vErr
	}

	switch section {
	case SettingsSectionGeneral:
		var settings GeneralSettings
		if err := json.Unmarshal(value, &settings); err != nil {
			vErr.add("value", "value does not match the general schema")
			return vErr
		}
		if settings.SpaceName == "" {
			vErr.add("spaceName", "space name is required")
		}
		for field, raw := range map[string]string{"openTime": settings.OpenTime, "closeTime": settings.CloseTime} {
			if raw == "" {
				continue
			}
			if _, err := availability.ParseSlot(raw); err != nil {
				vErr.add(field, "must be an HH:MM time")
			}
		}
	case SettingsSectionReservations:
		var settings ReservationSettings
		if err := json.Unmarshal(value, &settings); err != nil {
			vErr.add("value", "value does not match the reservations schema")
			return vErr
		}
		if settings.DefaultDurationMinutes <= 0 {
			vErr.add("defaultDurationMinutes", "must be positive")
		}
		if settings.TimeSlotIntervalMinutes <= 0 {
			vErr.add("timeSlotIntervalMinutes", "must be positive")
		}
		if settings.CancellationNoticeHours < 0 {
			vErr.add("cancellationNoticeHours", "must not be negative")
		}
	}

	if vErr.HasErrors() {
		return vErr
	}
	return nil
}
