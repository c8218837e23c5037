package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/example/spacehub/internal/persistence"
)

// SettingsRepository implements persistence.SettingsRepository using SQLite.
type SettingsRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSettingsRepository creates a new SQLite settings repository.
func NewSettingsRepository(pool *ConnectionPool) *SettingsRepository {
	return &SettingsRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// UpsertSetting creates or replaces a configuration section.
func (r *SettingsRepository) UpsertSetting(ctx context.Context, setting persistence.Setting) error {
	if setting.Section == "" || len(setting.Value) == 0 {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO settings (section, value, updated_at)
		VALUES (?, ?, ?)
		ON CONFLICT (section) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`

	_, err := r.helper.Exec(ctx, query,
		setting.Section,
		string(setting.Value),
		encodeTime(time.Now().UTC()),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// GetSetting retrieves a configuration section by name.
func (r *SettingsRepository) GetSetting(ctx context.Context, section string) (persistence.Setting, error) {
	if section == "" {
		return persistence.Setting{}, persistence.ErrNotFound
	}

	query := `SELECT section, value, updated_at FROM settings WHERE section = ?`

	setting, err := scanSetting(r.helper.QueryRow(ctx, query, section))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Setting{}, persistence.ErrNotFound
		}
		return persistence.Setting{}, r.mapper.MapError(err)
	}

	return setting, nil
}

// ListSettings returns all configuration sections ordered by name.
func (r *SettingsRepository) ListSettings(ctx context.Context) ([]persistence.Setting, error) {
	query := `SELECT section, value, updated_at FROM settings ORDER BY section ASC`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var settings []persistence.Setting
	for rows.Next() {
		setting, err := scanSetting(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		settings = append(settings, setting)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return settings, nil
}

func scanSetting(row rowScanner) (persistence.Setting, error) {
	var (
		setting      persistence.Setting
		value        string
		updatedAtStr string
	)

	if err := row.Scan(&setting.Section, &value, &updatedAtStr); err != nil {
		return persistence.Setting{}, err
	}

	setting.Value = []byte(value)
	var err error
	if setting.UpdatedAt, err = decodeTime(updatedAtStr); err != nil {
		return persistence.Setting{}, err
	}

	return setting, nil
}
