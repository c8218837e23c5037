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

// ReservationRepository implements persistence.ReservationRepository using
// SQLite.
type ReservationRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewReservationRepository creates a new SQLite reservation repository.
func NewReservationRepository(pool *ConnectionPool) *ReservationRepository {
	return &ReservationRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateReservations inserts a batch of reservations and their attendee rows
// in a single transaction. A recurring booking either lands in full or not at
// all.
func (r *ReservationRepository) CreateReservations(ctx context.Context, reservations []persistence.Reservation) error {
	if len(reservations) == 0 {
		return nil
	}
	for _, res := range reservations {
		if res.ID == "" || res.RoomID == "" || res.MemberID == "" {
			return persistence.ErrConstraintViolation
		}
		if !res.Start.Before(res.End) {
			return persistence.ErrConstraintViolation
		}
	}

	now := time.Now().UTC()

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		insert := `
			INSERT INTO reservations (id, room_id, member_id, date, start_slot, end_slot, status, purpose, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`
		attendeeInsert := `
			INSERT INTO reservation_attendees (reservation_id, member_id)
			VALUES (?, ?)
		`

		for _, res := range reservations {
			createdAt := res.CreatedAt
			if createdAt.IsZero() {
				createdAt = now
			}
			_, err := r.helper.ExecTx(tx, insert,
				res.ID,
				res.RoomID,
				res.MemberID,
				res.Date.String(),
				res.Start.String(),
				res.End.String(),
				res.Status,
				res.Purpose,
				encodeTime(createdAt),
				encodeTime(now),
			)
			if err != nil {
				return err
			}

			for _, attendee := range uniqueIDs(res.Attendees) {
				if _, err := r.helper.ExecTx(tx, attendeeInsert, res.ID, attendee); err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateReservation updates a reservation and replaces its attendee list.
func (r *ReservationRepository) UpdateReservation(ctx context.Context, reservation persistence.Reservation) error {
	if reservation.ID == "" {
		return persistence.ErrConstraintViolation
	}
	if !reservation.Start.Before(reservation.End) {
		return persistence.ErrConstraintViolation
	}

	err := r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		update := `
			UPDATE reservations
			SET room_id = ?, member_id = ?, date = ?, start_slot = ?, end_slot = ?, status = ?, purpose = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := r.helper.ExecTx(tx, update,
			reservation.RoomID,
			reservation.MemberID,
			reservation.Date.String(),
			reservation.Start.String(),
			reservation.End.String(),
			reservation.Status,
			reservation.Purpose,
			encodeTime(time.Now().UTC()),
			reservation.ID,
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

		if _, err := r.helper.ExecTx(tx, "DELETE FROM reservation_attendees WHERE reservation_id = ?", reservation.ID); err != nil {
			return err
		}
		for _, attendee := range uniqueIDs(reservation.Attendees) {
			if _, err := r.helper.ExecTx(tx, "INSERT INTO reservation_attendees (reservation_id, member_id) VALUES (?, ?)", reservation.ID, attendee); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return persistence.ErrNotFound
		}
		return r.mapper.MapError(err)
	}

	return nil
}

// GetReservation retrieves a reservation and its attendees by ID.
func (r *ReservationRepository) GetReservation(ctx context.Context, id string) (persistence.Reservation, error) {
	if id == "" {
		return persistence.Reservation{}, persistence.ErrNotFound
	}

	query := `
		SELECT id, room_id, member_id, date, start_slot, end_slot, status, purpose, created_at, updated_at
		FROM reservations
		WHERE id = ?
	`

	reservation, err := scanReservation(r.helper.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return persistence.Reservation{}, persistence.ErrNotFound
		}
		return persistence.Reservation{}, r.mapper.MapError(err)
	}

	attendees, err := r.loadAttendees(ctx, []string{id})
	if err != nil {
		return persistence.Reservation{}, err
	}
	reservation.Attendees = attendees[id]

	return reservation, nil
}

// ListReservations returns reservations matching the filter ordered by date,
// start slot, then ID.
func (r *ReservationRepository) ListReservations(ctx context.Context, filter persistence.ReservationFilter) ([]persistence.Reservation, error) {
	query := `
		SELECT id, room_id, member_id, date, start_slot, end_slot, status, purpose, created_at, updated_at
		FROM reservations
	`

	var (
		clauses []string
		args    []any
	)
	if filter.RoomID != nil {
		clauses = append(clauses, "room_id = ?")
		args = append(args, *filter.RoomID)
	}
	if filter.MemberID != nil {
		clauses = append(clauses, "member_id = ?")
		args = append(args, *filter.MemberID)
	}
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
	query += " ORDER BY date ASC, start_slot ASC, id ASC"

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var (
		reservations []persistence.Reservation
		ids          []string
	)
	for rows.Next() {
		reservation, err := scanReservation(rows)
		if err != nil {
			return nil, r.mapper.MapError(err)
		}
		reservations = append(reservations, reservation)
		ids = append(ids, reservation.ID)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	if len(ids) > 0 {
		attendees, err := r.loadAttendees(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range reservations {
			reservations[i].Attendees = attendees[reservations[i].ID]
		}
	}

	return reservations, nil
}

// DeleteReservation removes a reservation by ID. Attendee rows cascade.
func (r *ReservationRepository) DeleteReservation(ctx context.Context, id string) error {
	if id == "" {
		return persistence.ErrNotFound
	}

	result, err := r.helper.Exec(ctx, "DELETE FROM reservations WHERE id = ?", id)
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

func (r *ReservationRepository) loadAttendees(ctx context.Context, reservationIDs []string) (map[string][]string, error) {
	placeholders := make([]string, len(reservationIDs))
	args := make([]any, len(reservationIDs))
	for i, id := range reservationIDs {
		placeholders[i] = "?"
		args[i] = id
	}

	query := `
		SELECT reservation_id, member_id
		FROM reservation_attendees
		WHERE reservation_id IN (` + strings.Join(placeholders, ", ") + `)
		ORDER BY member_id ASC
	`

	rows, err := r.helper.Query(ctx, query, args...)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	attendees := make(map[string][]string, len(reservationIDs))
	for rows.Next() {
		var reservationID, memberID string
		if err := rows.Scan(&reservationID, &memberID); err != nil {
			return nil, r.mapper.MapError(err)
		}
		attendees[reservationID] = append(attendees[reservationID], memberID)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return attendees, nil
}

func scanReservation(row rowScanner) (persistence.Reservation, error) {
	var (
		reservation                persistence.Reservation
		dateStr, startStr, endStr  string
		createdAtStr, updatedAtStr string
	)

	err := row.Scan(
		&reservation.ID,
		&reservation.RoomID,
		&reservation.MemberID,
		&dateStr,
		&startStr,
		&endStr,
		&reservation.Status,
		&reservation.Purpose,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		return persistence.Reservation{}, err
	}

	if reservation.Date, err = decodeDate(dateStr); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.Start, err = decodeSlot(startStr); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.End, err = decodeSlot(endStr); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.CreatedAt, err = decodeTime(createdAtStr); err != nil {
		return persistence.Reservation{}, err
	}
	if reservation.UpdatedAt, err = decodeTime(updatedAtStr); err != nil {
		return persistence.Reservation{}, err
	}

	return reservation, nil
}

func uniqueIDs(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, value := range values {
		if value == "" {
			continue
		}
		if _, ok := seen[value]; ok {
			continue
		}
		seen[value] = struct{}{}
		result = append(result, value)
	}
	return result
}
