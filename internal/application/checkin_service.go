package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/example/spacehub/internal/availability"
)

// CheckinRepository captures the persistence interactions for check-in
// entries.
type CheckinRepository interface {
	CreateCheckin(ctx context.Context, entry CheckinEntry) (CheckinEntry, error)
	UpdateCheckin(ctx context.Context, entry CheckinEntry) (CheckinEntry, error)
	GetCheckin(ctx context.Context, id string) (CheckinEntry, error)
	ListCheckins(ctx context.Context, query CheckinQuery) ([]CheckinEntry, error)
	DeleteCheckinsForDate(ctx context.Context, date availability.Date) error
}

// MemberBrowser exposes the member listings the check-in dashboard needs.
type MemberBrowser interface {
	ListMembers(ctx context.Context) ([]Member, error)
	GetMember(ctx context.Context, id string) (Member, error)
}

// ReservationBrowser exposes reservation listings for deriving daily
// check-in entries.
type ReservationBrowser interface {
	ListReservations(ctx context.Context, query ReservationQuery) ([]Reservation, error)
}

// PresenceTracker records which spaces are currently occupied.
type PresenceTracker interface {
	Occupy(ctx context.Context, space, memberID string) error
	Release(ctx context.Context, space string) error
	IsOccupied(ctx context.Context, space string) (bool, error)
	Occupants(ctx context.Context) (map[string]string, error)
}

// CheckinPublisher receives entry updates for live delivery to clients.
type CheckinPublisher interface {
	PublishCheckin(entry CheckinEntry)
}

// DayPassSpace labels check-in entries for members without a room booking.
const DayPassSpace = "Day Pass"

// CheckinService maintains the daily check-in board: expected visits derived
// from reservations and day passes, plus walk-ins, with presence tracking.
type CheckinService struct {
	checkins     CheckinRepository
	members      MemberBrowser
	reservations ReservationBrowser
	presence     PresenceTracker
	publisher    CheckinPublisher
	grid         availability.Grid
	idGenerator  func() string
	now          func() time.Time
	logger       *slog.Logger
}

// NewCheckinService wires dependencies for check-in operations. The presence
// tracker and publisher are optional.
func NewCheckinService(checkins CheckinRepository, members MemberBrowser, reservations ReservationBrowser, presence PresenceTracker, publisher CheckinPublisher, idGenerator func() string, now func() time.Time) *CheckinService {
	return NewCheckinServiceWithLogger(checkins, members, reservations, presence, publisher, idGenerator, now, nil)
}

// NewCheckinServiceWithLogger wires dependencies with a specified logger.
func NewCheckinServiceWithLogger(checkins CheckinRepository, members MemberBrowser, reservations ReservationBrowser, presence PresenceTracker, publisher CheckinPublisher, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CheckinService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CheckinService{
		checkins:     checkins,
		members:      members,
		reservations: reservations,
		presence:     presence,
		publisher:    publisher,
		grid:         availability.DefaultGrid(),
		idGenerator:  idGenerator,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *CheckinService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CheckinService", operation, attrs...)
}

// BuildDailyCheckins replaces the check-in board for the given date with
// entries derived from that day's confirmed reservations and from active
// day-pass members. Already recorded manual entries for the date are
// discarded along with the rest of the board.
func (s *CheckinService) BuildDailyCheckins(ctx context.Context, date availability.Date) (entries []CheckinEntry, err error) {
	if s == nil {
		err = fmt.Errorf("CheckinService is nil")
		return
	}

	logger := s.loggerWith(ctx, "BuildDailyCheckins", "date", date.String())
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build daily check-ins", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("entry_count", len(entries)).InfoContext(ctx, "daily check-ins built")
	}()

	var reservations []Reservation
	if s.reservations != nil {
		reservations, err = s.reservations.ListReservations(ctx, ReservationQuery{
			Date:     &date,
			Statuses: []string{ReservationStatusConfirmed},
		})
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	var members []Member
	if s.members != nil {
		members, err = s.members.ListMembers(ctx)
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}
	membersByID := make(map[string]Member, len(members))
	for _, member := range members {
		membersByID[member.ID] = member
	}

	entries = make([]CheckinEntry, 0, len(reservations)+len(members))
	for _, reservation := range reservations {
		memberName := membersByID[reservation.MemberID].Name
		reservationID := reservation.ID
		entries = append(entries, CheckinEntry{
			ID:            s.idGenerator(),
			MemberID:      reservation.MemberID,
			MemberName:    memberName,
			ReservationID: &reservationID,
			Space:         reservation.RoomName,
			Date:          date,
			Start:         reservation.Start,
			End:           reservation.End,
			Status:        CheckinStatusWaiting,
		})
	}

	slots := s.grid.Slots()
	for _, member := range members {
		if !member.Active || !member.DayPass {
			continue
		}
		entries = append(entries, CheckinEntry{
			ID:         s.idGenerator(),
			MemberID:   member.ID,
			MemberName: member.Name,
			Space:      DayPassSpace,
			Date:       date,
			Start:      slots[0],
			End:        slots[len(slots)-1] + availability.Slot(s.grid.Step()),
			Status:     CheckinStatusWaiting,
		})
	}

	if s.checkins == nil {
		return
	}

	if err = s.checkins.DeleteCheckinsForDate(ctx, date); err != nil {
		err = mapRepoError(err)
		return
	}
	for i, entry := range entries {
		entries[i], err = s.checkins.CreateCheckin(ctx, entry)
		if err != nil {
			err = mapRepoError(err)
			entries = nil
			return
		}
	}
	return
}

// ListCheckins returns check-in entries matching the query.
func (s *CheckinService) ListCheckins(ctx context.Context, query CheckinQuery) ([]CheckinEntry, error) {
	if s == nil {
		return nil, fmt.Errorf("CheckinService is nil")
	}
	if s.checkins == nil {
		return nil, nil
	}

	entries, err := s.checkins.ListCheckins(ctx, query)
	if err != nil {
		return nil, mapRepoError(err)
	}

	if search := strings.TrimSpace(query.Search); search != "" {
		needle := strings.ToLower(search)
		filtered := entries[:0]
		for _, entry := range entries {
			if strings.Contains(strings.ToLower(entry.MemberName), needle) ||
				strings.Contains(strings.ToLower(entry.Space), needle) {
				filtered = append(filtered, entry)
			}
		}
		entries = filtered
	}
	return entries, nil
}

// ListOccupants returns the currently occupied spaces with the members
// holding them, sorted by space. Without a presence tracker the floor is
// reported empty.
func (s *CheckinService) ListOccupants(ctx context.Context) ([]Occupant, error) {
	if s == nil {
		return nil, fmt.Errorf("CheckinService is nil")
	}
	if s.presence == nil {
		return nil, nil
	}

	spaces, err := s.presence.Occupants(ctx)
	if err != nil {
		return nil, mapRepoError(err)
	}
	if len(spaces) == 0 {
		return nil, nil
	}

	names := make(map[string]string)
	if s.members != nil {
		members, err := s.members.ListMembers(ctx)
		if err != nil {
			return nil, mapRepoError(err)
		}
		for _, member := range members {
			names[member.ID] = member.Name
		}
	}

	occupants := make([]Occupant, 0, len(spaces))
	for space, memberID := range spaces {
		occupants = append(occupants, Occupant{
			Space:      space,
			MemberID:   memberID,
			MemberName: names[memberID],
		})
	}
	sort.Slice(occupants, func(i, j int) bool {
		return occupants[i].Space < occupants[j].Space
	})
	return occupants, nil
}

// ManualCheckin records a walk-in visit. The member is checked in
// immediately; a space that is already occupied is rejected with
// ErrSpaceOccupied.
func (s *CheckinService) ManualCheckin(ctx context.Context, input ManualCheckinInput) (entry CheckinEntry, err error) {
	if s == nil {
		err = fmt.Errorf("CheckinService is nil")
		return
	}

	logger := s.loggerWith(ctx, "ManualCheckin",
		"member_id", input.MemberID,
		"space", input.Space,
	)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to record manual check-in", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("checkin_id", entry.ID).InfoContext(ctx, "manual check-in recorded")
	}()

	vErr := validateManualCheckinInput(input)
	if vErr.HasErrors() {
		err = vErr
		return
	}

	var member Member
	if s.members != nil {
		member, err = s.members.GetMember(ctx, input.MemberID)
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	if err = s.ensureSpaceFree(ctx, input.Space); err != nil {
		return
	}

	checkedInAt := s.now()
	entry = CheckinEntry{
		ID:          s.idGenerator(),
		MemberID:    input.MemberID,
		MemberName:  member.Name,
		Space:       input.Space,
		Date:        input.Date,
		Start:       input.Start,
		End:         input.End,
		Status:      CheckinStatusCheckedIn,
		CheckedInAt: &checkedInAt,
	}

	if s.checkins != nil {
		entry, err = s.checkins.CreateCheckin(ctx, entry)
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	s.occupySpace(ctx, entry.Space, entry.MemberID)
	s.publish(entry)
	return
}

// CheckIn transitions a waiting entry to checked-in and stamps the arrival
// time.
func (s *CheckinService) CheckIn(ctx context.Context, id string) (entry CheckinEntry, err error) {
	if s == nil {
		err = fmt.Errorf("CheckinService is nil")
		return
	}
	if s.checkins == nil {
		err = ErrNotFound
		return
	}

	logger := s.loggerWith(ctx, "CheckIn", "checkin_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check in", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "member checked in")
	}()

	entry, err = s.checkins.GetCheckin(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if entry.Status != CheckinStatusWaiting {
		vErr := &ValidationError{}
		vErr.add("status", fmt.Sprintf("entry is %s, expected %s", entry.Status, CheckinStatusWaiting))
		err = vErr
		return
	}

	if entry.Space != DayPassSpace {
		if err = s.ensureSpaceFree(ctx, entry.Space); err != nil {
			return
		}
	}

	checkedInAt := s.now()
	entry.Status = CheckinStatusCheckedIn
	entry.CheckedInAt = &checkedInAt

	entry, err = s.checkins.UpdateCheckin(ctx, entry)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if entry.Space != DayPassSpace {
		s.occupySpace(ctx, entry.Space, entry.MemberID)
	}
	s.publish(entry)
	return
}

// CheckOut transitions a checked-in entry to checked-out and stamps the
// departure time. Entries that never checked in fail with ErrNotCheckedIn.
func (s *CheckinService) CheckOut(ctx context.Context, id string) (entry CheckinEntry, err error) {
	if s == nil {
		err = fmt.Errorf("CheckinService is nil")
		return
	}
	if s.checkins == nil {
		err = ErrNotFound
		return
	}

	logger := s.loggerWith(ctx, "CheckOut", "checkin_id", id)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to check out", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "member checked out")
	}()

	entry, err = s.checkins.GetCheckin(ctx, id)
	if err != nil {
		err = mapRepoError(err)
		return
	}
	if entry.Status != CheckinStatusCheckedIn {
		err = ErrNotCheckedIn
		return
	}

	checkedOutAt := s.now()
	entry.Status = CheckinStatusCheckedOut
	entry.CheckedOutAt = &checkedOutAt

	entry, err = s.checkins.UpdateCheckin(ctx, entry)
	if err != nil {
		err = mapRepoError(err)
		return
	}

	if entry.Space != DayPassSpace {
		s.releaseSpace(ctx, entry.Space)
	}
	s.publish(entry)
	return
}

func (s *CheckinService) ensureSpaceFree(ctx context.Context, space string) error {
	if s.presence == nil {
		return nil
	}
	occupied, err := s.presence.IsOccupied(ctx, space)
	if err != nil {
		return fmt.Errorf("checking presence for %q: %w", space, err)
	}
	if occupied {
		return fmt.Errorf("%w: %s", ErrSpaceOccupied, space)
	}
	return nil
}

func (s *CheckinService) occupySpace(ctx context.Context, space, memberID string) {
	if s.presence == nil {
		return
	}
	if err := s.presence.Occupy(ctx, space, memberID); err != nil {
		s.logger.WarnContext(ctx, "failed to record presence", "space", space, "error", err)
	}
}

func (s *CheckinService) releaseSpace(ctx context.Context, space string) {
	if s.presence == nil {
		return
	}
	if err := s.presence.Release(ctx, space); err != nil {
		s.logger.WarnContext(ctx, "failed to release presence", "space", space, "error", err)
	}
}

func (s *CheckinService) publish(entry CheckinEntry) {
	if s.publisher == nil {
		return
	}
	s.publisher.PublishCheckin(entry)
}

func validateManualCheckinInput(input ManualCheckinInput) *ValidationError {
	vErr := &ValidationError{}
	if strings.TrimSpace(input.MemberID) == "" {
		vErr.add("memberId", "member is required")
	}
	if strings.TrimSpace(input.Space) == "" {
		vErr.add("space", "space is required")
	}
	if input.Date.IsZero() {
		vErr.add("date", "date is required")
	}
	if !input.Start.Before(input.End) {
		vErr.add("end", "end must be after start")
	}
	return vErr
}
