package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/spacehub/internal/availability"
	"github.com/example/spacehub/internal/persistence"
)

// CheckinRepository implements persistence.CheckinRepository using SQLite.
type CheckinRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCheckinRepository creates a new SQLite check-in repository.
func NewCheckinRepository(pool *ConnectionPool) *CheckinRepository {
	return &CheckinRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateCheckin inserts a new check-in entry into the database.
func (r *CheckinRepository) CreateCheckin(ctx context.Context, entry persistence.CheckinEntry) error {
	if entry.ID == "" || entry.MemberID == "" {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = now
	}
	entry.UpdatedAt = now

	query := `
		INSERT INTO checkins (id, member_id, reservation_id, space, date, start_slot, end_slot, status, checked_in_at, checked_out_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		entry.ID,
		entry.MemberID,
		nullableString(entry.ReservationID),
		entry.Space,
		entry.Date.String(),
		entry.Start.String(),
		entry.End.String(),
		entry.Status,
		encodeTimePtr(entry.CheckedInAt),
		encodeTimePtr(entry.CheckedOutAt),
		encodeTime(entry.CreatedAt),
		encodeTime(entry.UpdatedAt),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateCheckin updates an existing check-in entry in the database.
func (r *CheckinRepository) UpdateCheckin(ctx context.Context, entry persistence.CheckinEntry) error {
	if entry.ID == "" {
		return persistence.ErrConstraintViolation
	}

	entry.UpdatedAt = time.Now().UTC()

	query := `
		UPDATE checkins
		SET member_id = ?, reservation_id = ?, space = ?, date = ?, start_slot = ?, end_slot = ?, status = ?, checked_in_at = ?, checked_out_at = ?, updated_at = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		entry.MemberID,
		nullableString(entry.ReservationID),
		entry.Space,
		entry.Date.String(),
		entry.Start.String(),
		entry.End.String(),
		entry.Status,
		encodeTimePtr(entry.CheckedInAt),
		encodeTimePtr(entry.CheckedOutAt),
		encodeTime(entry.UpdatedAt),
		entry.ID,
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// GetCheckin retrieves a check-in entry by ID from the database.
func (r *CheckinRepository) GetCheckin(ctx context.Context, id string) (persistence.CheckinEntry, error) {
	if id == "" {
		return persistence.CheckinEntry{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, member_id, reservation_id, space, date, start_slot, end_slot, status, checked_in_at, checked_out_at, created_at, updated_at
		FROM checkins
		WHERE id = ?
	`

	entry, err := scanCheckin(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.CheckinEntry{}, persistence.ErrNotFound
		}
		return persistence.CheckinEntry{}, r.mapper.MapError(err)
	}

	return entry, nil
}

// ListCheckins returns check-in entries matching the filter ordered by start
// slot then ID.
func (r *CheckinRepository) ListCheckins(ctx context.Context, filter persistence.CheckinFilter) ([]persistence.CheckinEntry, error) {
	query := `
		SELECT id, member_id, reservation_id, space, date, start_slot, end_slot, status, checked_in_at, checked_out_at, created_at, updated_at
		FROM checkins
	`

	var (
		clauses []string
		args    []any
	)
	if filter.Date != nil {
		clauses = append(clauses, "date = ?")
		args = append(args, filter.Date.String())
	}
	if filter.From != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.To.String())
	}
	if filter.MemberID != nil {
		clauses = append(clauses, "member_id = ?")
		args = append(args, *filter.MemberID)
	}
	if len(filter.Statuses) > 0 {
		placeholders := make([]string, len(filter.Statuses))
		for i, status := range filter.Statuses {
			placeholders[i] = "?"
			args = append(args, status)
		}
		clauses = append(clauses, "status IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY start_slot ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var entries []persistence.CheckinEntry
	for rows.Next() {
		entry, err := scanCheckin(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return entries, nil
}

// DeleteCheckinsForDate removes every check-in entry recorded for a date.
func (r *CheckinRepository) DeleteCheckinsForDate(ctx context.Context, date availability.Date) error {
	_, err := r.helper.Exec(ctx, "DELETE FROM checkins WHERE date = ?", date.String())
	if err != nil {
		return r.mapper.MapError(err)
	}
	return nil
}

func scanCheckin(row rowScanner) (persistence.CheckinEntry, error) {
	var (
		entry                      persistence.CheckinEntry
		reservationID              sql.NullString
		dateStr, startStr, endStr  string
		checkedInAt, checkedOutAt  sql.NullString
		createdAtStr, updatedAtStr string
	)

	err := row.Scan(
		&entry.ID,
		&entry.MemberID,
		&reservationID,
		&entry.Space,
		&dateStr,
		&startStr,
		&endStr,
		&entry.Status,
		&checkedInAt,
		&checkedOutAt,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.CheckinEntry{}, err
	}

	entry.ReservationID = stringPtr(reservationID)
	if entry.Date, err = decodeDate(dateStr); err != nil {
		return persistence.CheckinEntry{}, err
	}
	if entry.Start, err = decodeSlot(startStr); err != nil {
		return persistence.CheckinEntry{}, err
	}
	if entry.End, err = decodeSlot(endStr); err != nil {
		return persistence.CheckinEntry{}, err
	}
	if entry.CheckedInAt, err = decodeTimePtr(checkedInAt); err != nil {
		return persistence.CheckinEntry{}, err
	}
	if entry.CheckedOutAt, err = decodeTimePtr(checkedOutAt); err != nil {
		return persistence.CheckinEntry{}, err
	}
	if entry.CreatedAt, err = decodeTime(createdAtStr); err != nil {
		return persistence.CheckinEntry{}, err
	}
	if entry.UpdatedAt, err = decodeTime(updatedAtStr); err != nil {
		return persistence.CheckinEntry{}, err
	}

	return entry, nil
}
