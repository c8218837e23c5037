package http

import (
	"context"
	"log/slog"
)

type contextKey string

const (
	loggerContextKey      contextKey = "logger"
	resourceIDContextKey  contextKey = "resource_id"
	settingsSectionCtxKey contextKey = "settings_section"
)

// ContextWithLogger returns a derived context carrying a request scoped logger.
func ContextWithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	if logger == nil {
		return ctx
	}
	return context.WithValue(ctx, loggerContextKey, logger)
}

// LoggerFromContext extracts a logger previously attached to the context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	logger, _ := ctx.Value(loggerContextKey).(*slog.Logger)
	return logger
}

// ContextWithResourceID injects the identifier resolved from the request path.
func ContextWithResourceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, resourceIDContextKey, id)
}

// ResourceIDFromContext extracts a path identifier previously associated with the context.
func ResourceIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(resourceIDContextKey).(string)
	return id, ok
}

// ContextWithSettingsSection injects the settings section name from the request path.
func ContextWithSettingsSection(ctx context.Context, section string) context.Context {
	return context.WithValue(ctx, settingsSectionCtxKey, section)
}

// SettingsSectionFromContext extracts a settings section name from the context.
func SettingsSectionFromContext(ctx context.Context) (string, bool) {
	section, ok := ctx.Value(settingsSectionCtxKey).(string)
	return section, ok
}
