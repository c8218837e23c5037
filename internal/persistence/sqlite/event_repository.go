package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/example/spacehub/internal/persistence"
)

// EventRepository implements persistence.EventRepository using SQLite.
type EventRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewEventRepository creates a new SQLite event repository.
func NewEventRepository(pool *ConnectionPool) *EventRepository {
	return &EventRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateEvent inserts a new event and its attendee roster.
func (r *EventRepository) CreateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.MaxAttendees <= 0 {
		return persistence.ErrConstraintViolation
	}

	now := time.Now().UTC()
	if event.CreatedAt.IsZero() {
		event.CreatedAt = now
	}
	event.UpdatedAt = now

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO events (id, title, description, date, start_slot, end_slot, location, organizer, type, max_attendees, image, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.helper.ExecTx(tx, insert,
			event.ID,
			event.Title,
			event.Description,
			event.Date.String(),
			event.Start.String(),
			event.End.String(),
			event.Location,
			event.Organizer,
			event.Type,
			event.MaxAttendees,
			nullableString(event.Image),
			encodeTime(event.CreatedAt),
			encodeTime(event.UpdatedAt),
		)
		if err != nil {
			return err
		}

		return r.insertAttendeesTx(tx, event.ID, event.Attendees)
	})
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateEvent updates an event and replaces its attendee roster.
func (r *EventRepository) UpdateEvent(ctx context.Context, event persistence.Event) error {
	if event.ID == "" || event.MaxAttendees <= 0 {
		return persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		update := `
			UPDATE events
			SET title = ?, description = ?, date = ?, start_slot = ?, end_slot = ?, location = ?, organizer = ?, type = ?, max_attendees = ?, image = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := r.helper.ExecTx(tx, update,
			event.Title,
			event.Description,
			event.Date.String(),
			event.Start.String(),
			event.End.String(),
			event.Location,
			event.Organizer,
			event.Type,
			event.MaxAttendees,
			nullableString(event.Image),
			encodeTime(time.Now().UTC()),
			event.ID,
		)
		if err != nil {
			return err
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}

		if _, err := r.helper.ExecTx(tx, "DELETE FROM event_attendees WHERE event_id = ?", event.ID); err != nil {
			return err
		}
		return r.insertAttendeesTx(tx, event.ID, event.Attendees)
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.ErrNotFound
		}
		return r.mapper.MapError(err)
	}

	return nil
}

// GetEvent retrieves an event and its attendee roster by ID.
func (r *EventRepository) GetEvent(ctx context.Context, id string) (persistence.Event, error) {
	if id == "" {
		return persistence.Event{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, title, description, date, start_slot, end_slot, location, organizer, type, max_attendees, image, created_at, updated_at
		FROM events
		WHERE id = ?
	`

	event, err := scanEvent(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Event{}, persistence.ErrNotFound
		}
		return persistence.Event{}, r.mapper.MapError(err)
	}

	attendees, err := r.loadAttendees(ctx, []string{id})
	if err != nil {
		return persistence.Event{}, err
	}
	event.Attendees = attendees[id]

	return event, nil
}

// ListEvents returns events matching the filter ordered by date, start slot,
// then ID.
func (r *EventRepository) ListEvents(ctx context.Context, filter persistence.EventFilter) ([]persistence.Event, error) {
	query := `
		SELECT id, title, description, date, start_slot, end_slot, location, organizer, type, max_attendees, image, created_at, updated_at
		FROM events
	`

	var (
		clauses []string
		args    []any
	)
	if filter.From != nil {
		clauses = append(clauses, "date >= ?")
		args = append(args, filter.From.String())
	}
	if filter.To != nil {
		clauses = append(clauses, "date <= ?")
		args = append(args, filter.To.String())
	}
	if len(filter.Types) > 0 {
		placeholders := make([]string, len(filter.Types))
		for i, eventType := range filter.Types {
			placeholders[i] = "?"
			args = append(args, eventType)
		}
		clauses = append(clauses, "type IN ("+strings.Join(placeholders, ", ")+")")
	}
	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY date ASC, start_slot ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var (
		events []persistence.Event
		ids    []string
	)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		events = append(events, event)
		ids = append(ids, event.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	if len(ids) > 0 {
		attendees, err := r.loadAttendees(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range events {
			events[i].Attendees = attendees[events[i].ID]
		}
	}

	return events, nil
}

// DeleteEvent removes an event by ID. Attendee rows cascade.
func (r *EventRepository) DeleteEvent(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM events WHERE id = ?", id)
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

func (r *EventRepository) insertAttendeesTx(tx *sql.Tx, eventID string, attendees []string) error {
	for _, attendee := range uniqueIDs(attendees) {
		if _, err := r.helper.ExecTx(tx, "INSERT INTO event_attendees (event_id, member_id) VALUES (?, ?)", eventID, attendee); err != nil {
			return err
		}
	}
	return nil
}

func (r *EventRepository) loadAttendees(ctx context.Context, eventIDs []string) (map[string][]string, error) {
	placeholders := make([]string, len(eventIDs))
	args := make([]any, len(eventIDs))
	for i, id := range eventIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `
		SELECT event_id, member_id
		FROM event_attendees
		WHERE event_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY member_id ASC
	`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	attendees := make(map[string][]string, len(eventIDs))
	for rows.Next() {
		var eventID, memberID string
		if err := rows.Scan(&eventID, &memberID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		attendees[eventID] = append(attendees[eventID], memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return attendees, nil
}

func scanEvent(row rowScanner) (persistence.Event, error) {
	var (
		event                      persistence.Event
		dateStr, startStr, endStr  string
		image                      sql.NullString
		createdAtStr, updatedAtStr string
	)

	err := row.Scan(
		&event.ID,
		&event.Title,
		&event.Description,
		&dateStr,
		&startStr,
		&endStr,
		&event.Location,
		&event.Organizer,
		&event.Type,
		&event.MaxAttendees,
		&image,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Event{}, err
	}

	if event.Date, err = decodeDate(dateStr); err != nil {
		return persistence.Event{}, err
	}
	if event.Start, err = decodeSlot(startStr); err != nil {
		return persistence.Event{}, err
	}
	if event.End, err = decodeSlot(endStr); err != nil {
		return persistence.Event{}, err
	}
	event.Image = stringPtr(image)
	if event.CreatedAt, err = decodeTime(createdAtStr); err != nil {
		return persistence.Event{}, err
	}
	if event.UpdatedAt, err = decodeTime(updatedAtStr); err != nil {
		return persistence.Event{}, err
	}

	return event, nil
}
