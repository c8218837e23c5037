package application

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/spacehub/internal/availability"
)

// ReservationRepository captures the persistence interactions needed by the service.
type ReservationRepository interface {
	CreateReservations(ctx context.Context, reservations []Reservation) error
	GetReservation(ctx context.Context, id string) (Reservation, error)
	UpdateReservation(ctx context.Context, reservation Reservation) (Reservation, error)
	ListReservations(ctx context.Context, query ReservationQuery) ([]Reservation, error)
	DeleteReservation(ctx context.Context, id string) error
}

// MemberDirectory exposes member lookup operations.
type MemberDirectory interface {
	MissingMemberIDs(ctx context.Context, ids []string) ([]string, error)
}

// RoomCatalog exposes room lookup operations.
type RoomCatalog interface {
	GetRoom(ctx context.Context, id string) (Room, error)
}

// Reservation lifecycle states.
const (
	ReservationStatusConfirmed = "confirmed"
	ReservationStatusPending   = "pending"
	ReservationStatusCancelled = "cancelled"
)

// ReservationService orchestrates the availability engine, validation, and
// persistence for bookings.
type ReservationService struct {
	reservations ReservationRepository
	members      MemberDirectory
	rooms        RoomCatalog
	grid         availability.Grid
	boards       *boardCache
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewReservationService wires dependencies for reservation operations.
func NewReservationService(reservations ReservationRepository, members MemberDirectory, rooms RoomCatalog, idGenerator func() string, now func() time.Time) *ReservationService {
	return NewReservationServiceWithLogger(reservations, members, rooms, idGenerator, now, nil)
}

// NewReservationServiceWithLogger wires dependencies with a specified logger.
func NewReservationServiceWithLogger(reservations ReservationRepository, members MemberDirectory, rooms RoomCatalog, idGenerator func() string, now func() time.Time, logger *slog.Logger) *ReservationService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &ReservationService{
		reservations: reservations,
		members:      members,
		rooms:        rooms,
		grid:         availability.DefaultGrid(),
		boards:       newBoardCache(0, 0, now),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReservationService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReservationService", operation, attrs...)
}

// Grid returns the slot grid the service books against.
func (s *ReservationService) Grid() availability.Grid {
	return s.grid
}

// CreateReservation expands the booking request into concrete dates, rejects
// any overlap with existing confirmed reservations, and persists the whole
// batch atomically.
func (s *ReservationService) CreateReservation(ctx context.Context, input ReservationInput) (created []Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}

	logger := s.loggerWith(ctx, "CreateReservation",
		"room_id", input.RoomID,
		"member_id", input.MemberID,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_count", len(created)).InfoContext(ctx, "reservation created")
	}()

	vErr := validateReservationInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}
	if err = input.Range.Validate(); err != nil {
		return
	}
	if err = s.validateSlots(*input.Range.Start, *input.Range.End); err != nil {
		return
	}

	var room Room
	room, err = s.rooms.GetRoom(ctx, input.RoomID)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if !room.Available {
		err = ErrRoomUnavailable
		return
	}

	if err = s.ensureMembersExist(ctx, append(uniqueStrings(input.Attendees), input.MemberID)); err != nil {
		return
	}

	var dates []availability.Date
	dates, err = expandInputDates(input)
	if err != nil {
		return
	}
	if len(dates) == 0 {
		vErr = &ValidationError{}
		vErr.add("until", "recurrence produces no dates")
		err = vErr
		return
	}

	for _, date := range dates {
		if err = s.ensureRangeFree(ctx, input.RoomID, date, *input.Range.Start, *input.Range.End); err != nil {
			return
		}
	}

	bookings, err := availability.BuildReservations(availability.BookingRequest{
		RoomID:    input.RoomID,
		Dates:     dates,
		Range:     input.Range,
		Purpose:   strings.TrimSpace(input.Purpose),
		Attendees: uniqueStrings(input.Attendees),
	}, s.idGenerator)
	if err != nil {
		return
	}

	createdAt := s.now()
	created = make([]Reservation, 0, len(bookings))
	for _, booking := range bookings {
		created = append(created, Reservation{
			ID:        booking.ID,
			RoomID:    booking.RoomID,
			RoomName:  room.Name,
			MemberID:  input.MemberID,
			Date:      booking.Date,
			Start:     booking.Start,
			End:       booking.End,
			Status:    ReservationStatusConfirmed,
			Purpose:   booking.Purpose,
			Attendees: booking.Attendees,
			CreatedAt: createdAt,
			UpdatedAt: createdAt,
		})
	}

	if s.reservations == nil {
		return
	}

	if err = s.reservations.CreateReservations(ctx, created); err != nil {
		err = mapRepoError(err)
		created = nil
		return
	}

	s.boards.Invalidate()
	return
}

// GetReservation returns a single reservation by ID.
func (s *ReservationService) GetReservation(ctx context.Context, id string) (Reservation, error) {
	if s == nil {
		return Reservation{}, fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return Reservation{}, ErrNotFound
	}

	reservation, err := s.reservations.GetReservation(ctx, id)
	if err != nil {
		return Reservation{}, mapRepoError(err)
	}
	return reservation, nil
}

// ListReservations returns reservations matching the query.
func (s *ReservationService) ListReservations(ctx context.Context, query ReservationQuery) ([]Reservation, error) {
	if s == nil {
		return nil, fmt.Errorf("ReservationService is nil")
	}
	if s.reservations == nil {
		return nil, nil
	}

	reservations, err := s.reservations.ListReservations(ctx, query)
	if err != nil {
		return nil, mapRepoError(err)
	}
	return reservations, nil
}

// CancelReservation marks a reservation cancelled. The row is kept so past
// activity stays on record; cancelled reservations no longer block slots.
func (s *ReservationService) CancelReservation(ctx context.Context, id string) (reservation Reservation, err error) {
	if s == nil {
		err = fmt.Errorf("ReservationService is nil")
		return
	}
	if s.reservations == nil {
		err = ErrNotFound
		return
	}

	logger := s.loggerWith(ctx, "CancelReservation", "reservation_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to cancel reservation", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "reservation cancelled")
	}()

	var existing Reservation
	existing, err = s.reservations.GetReservation(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if existing.Status == ReservationStatusCancelled {
		reservation = existing
		return
	}

	existing.Status = ReservationStatusCancelled
	existing.UpdatedAt = s.now()

	reservation, err = s.reservations.UpdateReservation(ctx, existing)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	s.boards.Invalidate()
	return
}

// GetSlotBoard returns the daily availability board for a room.
func (s *ReservationService) GetSlotBoard(ctx context.Context, roomID string, date availability.Date) (SlotBoard, error) {
	if s == nil {
		return SlotBoard{}, fmt.Errorf("ReservationService is nil")
	}

	if _, err := s.rooms.GetRoom(ctx, roomID); err != nil {
		return SlotBoard{}, mapRepoError(err)
	}

	key := buildBoardCacheKey(roomID, date)
	if slots, ok := s.boards.Get(key); ok {
		return SlotBoard{RoomID: roomID, Date: date, Slots: slots}, nil
	}

	occupied, err := s.occupiedChecker(ctx, roomID, date)
	if err != nil {
		return SlotBoard{}, err
	}

	gridSlots := s.grid.Slots()
	slots := make([]SlotStatus, 0, len(gridSlots))
	for _, slot := range gridSlots {
		slots = append(slots, SlotStatus{Slot: slot, Occupied: occupied(slot)})
	}

	s.boards.Store(key, slots)
	return SlotBoard{RoomID: roomID, Date: date, Slots: slots}, nil
}

// SelectSlot advances a two-click range selection against the room's current
// occupancy. A range crossing an occupied slot fails with
// availability.ErrOccupiedRange and resets the selection.
func (s *ReservationService) SelectSlot(ctx context.Context, roomID string, date availability.Date, sel availability.Selection, clicked availability.Slot) (availability.Selection, error) {
	if s == nil {
		return availability.Selection{}, fmt.Errorf("ReservationService is nil")
	}
	if !s.grid.Contains(clicked) {
		vErr := &ValidationError{}
		vErr.add("slot", "slot is outside the booking grid")
		return sel, vErr
	}

	occupied, err := s.occupiedChecker(ctx, roomID, date)
	if err != nil {
		return sel, err
	}

	return s.grid.Select(sel, clicked, occupied)
}

func (s *ReservationService) occupiedChecker(ctx context.Context, roomID string, date availability.Date) (func(availability.Slot) bool, error) {
	if s.reservations == nil {
		return func(availability.Slot) bool { return false }, nil
	}

	existing, err := s.reservations.ListReservations(ctx, ReservationQuery{
		RoomID:   &roomID,
		Date:     &date,
		Statuses: []string{ReservationStatusConfirmed, ReservationStatusPending},
	})
	if err != nil {
		return nil, mapRepoError(err)
	}

	bookings := make([]availability.Booking, 0, len(existing))
	for _, reservation := range existing {
		bookings = append(bookings, availability.Booking{
			ID:     reservation.ID,
			RoomID: reservation.RoomID,
			Date:   reservation.Date,
			Start:  reservation.Start,
			End:    reservation.End,
			Status: availability.BookingStatus(reservation.Status),
		})
	}

	return availability.OccupiedChecker(roomID, date, bookings), nil
}

func (s *ReservationService) ensureRangeFree(ctx context.Context, roomID string, date availability.Date, start, end availability.Slot) error {
	occupied, err := s.occupiedChecker(ctx, roomID, date)
	if err != nil {
		return err
	}
	for slot := start; slot.Before(end); slot += availability.Slot(s.grid.Step()) {
		if occupied(slot) {
			return fmt.Errorf("%w: %s at %s", ErrSlotConflict, date, slot)
		}
	}
	return nil
}

func (s *ReservationService) ensureMembersExist(ctx context.Context, ids []string) error {
	if s.members == nil || len(ids) == 0 {
		return nil
	}

	missing, err := s.members.MissingMemberIDs(ctx, ids)
	if err != nil {
		return mapRepoError(err)
	}
	if len(missing) > 0 {
		vErr := &ValidationError{}
		vErr.add("attendees", fmt.Sprintf("unknown members: %s", strings.Join(missing, ", ")))
		return vErr
	}
	return nil
}

func (s *ReservationService) validateSlots(start, end availability.Slot) error {
	vErr := &ValidationError{}
	if !s.grid.Contains(start) {
		vErr.add("start", "start slot is outside the booking grid")
	}
	// The end boundary is exclusive, so it may sit one step past the last
	// bookable tick.
	if !s.grid.Contains(end - availability.Slot(s.grid.Step())) {
		vErr.add("end", "end slot is outside the booking grid")
	}
	if vErr.HasErrors() {
		return vErr
	}
	return nil
}

func validateReservationInput(input ReservationInput) *ValidationError {
	vErr := &ValidationError{}

	if strings.TrimSpace(input.RoomID) == "" {
		vErr.add("roomId", "room is required")
	}
	if strings.TrimSpace(input.MemberID) == "" {
		vErr.add("memberId", "member is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if input.EndDate != nil && input.Recurrence != availability.FrequencyNone {
		vErr.add("endDate", "date range and recurrence are mutually exclusive")
	}
	if input.EndDate != nil && input.EndDate.Before(input.Date) {
		vErr.add("endDate", "end date must not precede the start date")
	}

	return vErr
}

func expandInputDates(input ReservationInput) ([]availability.Date, error) {
	if input.EndDate != nil {
		return availability.ExpandDateRange(input.Date, *input.EndDate), nil
	}

	until := availability.Date{}
	if input.Until != nil {
		until = *input.Until
	}
	return availability.ExpandRecurrence(input.Date, until, input.Recurrence)
}

func uniqueStrings(values []string) []string {
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
