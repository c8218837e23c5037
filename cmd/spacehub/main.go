package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	"github.com/example/spacehub/internal/application"
	"github.com/example/spacehub/internal/availability"
	"github.com/example/spacehub/internal/config"
	httptransport "github.com/example/spacehub/internal/http"
	"github.com/example/spacehub/internal/persistence"
	"github.com/example/spacehub/internal/persistence/sqlite"
	"github.com/example/spacehub/internal/presence"
)

func main() {
	// A missing .env file is fine; the environment always wins.
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel(cfg.LogLevel)}))
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := sqlite.NewConnectionPool(sqlite.DefaultConfig(cfg.SQLiteDSN))
	if err != nil {
		logger.Error("failed to open storage", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := pool.Close(); cerr != nil {
			logger.Error("failed to close storage", "error", cerr)
		}
	}()

	if err := sqlite.Migrate(context.Background(), pool); err != nil {
		logger.Error("failed to apply migrations", "error", err)
		os.Exit(1)
	}
	if cfg.SeedDemoData {
		if err := sqlite.Seed(context.Background(), pool); err != nil {
			logger.Error("failed to seed demo data", "error", err)
			os.Exit(1)
		}
	}

	tracker, err := presence.New(presence.Config{
		RedisEnabled:  cfg.RedisEnabled,
		RedisURI:      cfg.RedisURI,
		RedisHost:     cfg.RedisHost,
		RedisPort:     cfg.RedisPort,
		RedisUsername: cfg.RedisUsername,
		RedisPassword: cfg.RedisPassword,
		RedisDB:       cfg.RedisDB,
		KeyPrefix:     cfg.RedisKeyPrefix,
		TTL:           cfg.PresenceTTL,
	})
	if err != nil {
		logger.Error("failed to connect presence tracker", "error", err)
		os.Exit(1)
	}
	defer func() {
		if cerr := tracker.Close(); cerr != nil {
			logger.Error("failed to close presence tracker", "error", cerr)
		}
	}()

	idGenerator := uuid.NewString
	now := time.Now

	memberAdapter := newMemberRepositoryAdapter(sqlite.NewMemberRepository(pool))
	roomAdapter := newRoomRepositoryAdapter(sqlite.NewRoomRepository(pool))
	reservationAdapter := newReservationRepositoryAdapter(sqlite.NewReservationRepository(pool), sqlite.NewRoomRepository(pool))
	checkinAdapter := newCheckinRepositoryAdapter(sqlite.NewCheckinRepository(pool), sqlite.NewMemberRepository(pool))
	eventAdapter := newEventRepositoryAdapter(sqlite.NewEventRepository(pool))
	settingsAdapter := newSettingsStoreAdapter(sqlite.NewSettingsRepository(pool))

	stream := httptransport.NewEventStream(logger)
	defer stream.Close()

	roomService := application.NewRoomServiceWithLogger(roomAdapter, idGenerator, now, logger)
	memberService := application.NewMemberService(memberAdapter, idGenerator, now)
	reservationService := application.NewReservationServiceWithLogger(reservationAdapter, memberAdapter, roomAdapter, idGenerator, now, logger)
	checkinService := application.NewCheckinServiceWithLogger(checkinAdapter, memberAdapter, reservationAdapter, tracker, stream, idGenerator, now, logger)
	eventService := application.NewEventServiceWithLogger(eventAdapter, memberAdapter, idGenerator, now, logger)
	reportService := application.NewReportServiceWithLogger(reservationAdapter, roomAdapter, checkinAdapter, eventAdapter, now, logger)
	settingsService := application.NewSettingsServiceWithLogger(settingsAdapter, now, logger)

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Rooms:        httptransport.NewRoomHandler(roomService, logger),
		Members:      httptransport.NewMemberHandler(memberService, logger),
		Reservations: httptransport.NewReservationHandler(reservationService, logger),
		Checkins:     httptransport.NewCheckinHandler(checkinService, logger),
		Events:       httptransport.NewEventHandler(eventService, logger),
		Reports:      httptransport.NewReportHandler(reportService, logger),
		Settings:     httptransport.NewSettingsHandler(settingsService, logger),
		Stream:       stream,
		Middleware: []func(http.Handler) http.Handler{
			httptransport.RequestLogger(logger),
			httptransport.Recoverer(logger),
		},
	})

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		// No WriteTimeout: /events/stream holds its response open.
		IdleTimeout: 60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("failed to shutdown server", "error", err)
		}
	}()

	logger.Info("spacehub API listening", "addr", server.Addr)
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("server encountered error", "error", err)
		os.Exit(1)
	}
}

func logLevel(name string) slog.Level {
	switch name {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

type memberRepositoryAdapter struct {
	repo persistence.MemberRepository
}

func newMemberRepositoryAdapter(repo persistence.MemberRepository) *memberRepositoryAdapter {
	return &memberRepositoryAdapter{repo: repo}
}

func (a *memberRepositoryAdapter) CreateMember(ctx context.Context, member application.Member) (application.Member, error) {
	if err := a.repo.CreateMember(ctx, toPersistenceMember(member)); err != nil {
		return application.Member{}, err
	}
	stored, err := a.repo.GetMember(ctx, member.ID)
	if err != nil {
		return application.Member{}, err
	}
	return toApplicationMember(stored), nil
}

func (a *memberRepositoryAdapter) UpdateMember(ctx context.Context, member application.Member) (application.Member, error) {
	if err := a.repo.UpdateMember(ctx, toPersistenceMember(member)); err != nil {
		return application.Member{}, err
	}
	stored, err := a.repo.GetMember(ctx, member.ID)
	if err != nil {
		return application.Member{}, err
	}
	return toApplicationMember(stored), nil
}

func (a *memberRepositoryAdapter) GetMember(ctx context.Context, id string) (application.Member, error) {
	stored, err := a.repo.GetMember(ctx, id)
	if err != nil {
		return application.Member{}, err
	}
	return toApplicationMember(stored), nil
}

func (a *memberRepositoryAdapter) DeleteMember(ctx context.Context, id string) error {
	return a.repo.DeleteMember(ctx, id)
}

func (a *memberRepositoryAdapter) ListMembers(ctx context.Context) ([]application.Member, error) {
	models, err := a.repo.ListMembers(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	members := make([]application.Member, 0, len(models))
	for _, model := range models {
		members = append(members, toApplicationMember(model))
	}
	return members, nil
}

func (a *memberRepositoryAdapter) MissingMemberIDs(ctx context.Context, ids []string) ([]string, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	missing := make([]string, 0)
	for _, id := range ids {
		if _, err := a.repo.GetMember(ctx, id); err != nil {
			if errors.Is(err, persistence.ErrNotFound) {
				missing = append(missing, id)
				continue
			}
			return nil, err
		}
	}
	if len(missing) == 0 {
		return nil, nil
	}
	return missing, nil
}

type roomRepositoryAdapter struct {
	repo persistence.RoomRepository
}

func newRoomRepositoryAdapter(repo persistence.RoomRepository) *roomRepositoryAdapter {
	return &roomRepositoryAdapter{repo: repo}
}

func (a *roomRepositoryAdapter) CreateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.CreateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) UpdateRoom(ctx context.Context, room application.Room) (application.Room, error) {
	if err := a.repo.UpdateRoom(ctx, toPersistenceRoom(room)); err != nil {
		return application.Room{}, err
	}
	stored, err := a.repo.GetRoom(ctx, room.ID)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) GetRoom(ctx context.Context, id string) (application.Room, error) {
	stored, err := a.repo.GetRoom(ctx, id)
	if err != nil {
		return application.Room{}, err
	}
	return toApplicationRoom(stored), nil
}

func (a *roomRepositoryAdapter) DeleteRoom(ctx context.Context, id string) error {
	return a.repo.DeleteRoom(ctx, id)
}

func (a *roomRepositoryAdapter) ListRooms(ctx context.Context) ([]application.Room, error) {
	models, err := a.repo.ListRooms(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	rooms := make([]application.Room, 0, len(models))
	for _, model := range models {
		rooms = append(rooms, toApplicationRoom(model))
	}
	return rooms, nil
}

type reservationRepositoryAdapter struct {
	repo  persistence.ReservationRepository
	rooms persistence.RoomRepository
}

func newReservationRepositoryAdapter(repo persistence.ReservationRepository, rooms persistence.RoomRepository) *reservationRepositoryAdapter {
	return &reservationRepositoryAdapter{repo: repo, rooms: rooms}
}

func (a *reservationRepositoryAdapter) CreateReservations(ctx context.Context, reservations []application.Reservation) error {
	models := make([]persistence.Reservation, 0, len(reservations))
	for _, reservation := range reservations {
		models = append(models, toPersistenceReservation(reservation))
	}
	return a.repo.CreateReservations(ctx, models)
}

func (a *reservationRepositoryAdapter) GetReservation(ctx context.Context, id string) (application.Reservation, error) {
	stored, err := a.repo.GetReservation(ctx, id)
	if err != nil {
		return application.Reservation{}, err
	}
	reservation := toApplicationReservation(stored)
	if room, err := a.rooms.GetRoom(ctx, stored.RoomID); err == nil {
		reservation.RoomName = room.Name
	}
	return reservation, nil
}

func (a *reservationRepositoryAdapter) UpdateReservation(ctx context.Context, reservation application.Reservation) (application.Reservation, error) {
	if err := a.repo.UpdateReservation(ctx, toPersistenceReservation(reservation)); err != nil {
		return application.Reservation{}, err
	}
	return a.GetReservation(ctx, reservation.ID)
}

func (a *reservationRepositoryAdapter) ListReservations(ctx context.Context, query application.ReservationQuery) ([]application.Reservation, error) {
	models, err := a.repo.ListReservations(ctx, persistence.ReservationFilter{
		RoomID:   query.RoomID,
		MemberID: query.MemberID,
		Date:     query.Date,
		From:     query.From,
		To:       query.To,
		Statuses: append([]string(nil), query.Statuses...),
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}

	names := make(map[string]string)
	if rooms, err := a.rooms.ListRooms(ctx); err == nil {
		for _, room := range rooms {
			names[room.ID] = room.Name
		}
	}

	reservations := make([]application.Reservation, 0, len(models))
	for _, model := range models {
		reservation := toApplicationReservation(model)
		reservation.RoomName = names[model.RoomID]
		reservations = append(reservations, reservation)
	}
	return reservations, nil
}

func (a *reservationRepositoryAdapter) DeleteReservation(ctx context.Context, id string) error {
	return a.repo.DeleteReservation(ctx, id)
}

type checkinRepositoryAdapter struct {
	repo    persistence.CheckinRepository
	members persistence.MemberRepository
}

func newCheckinRepositoryAdapter(repo persistence.CheckinRepository, members persistence.MemberRepository) *checkinRepositoryAdapter {
	return &checkinRepositoryAdapter{repo: repo, members: members}
}

func (a *checkinRepositoryAdapter) CreateCheckin(ctx context.Context, entry application.CheckinEntry) (application.CheckinEntry, error) {
	if err := a.repo.CreateCheckin(ctx, toPersistenceCheckin(entry)); err != nil {
		return application.CheckinEntry{}, err
	}
	return a.GetCheckin(ctx, entry.ID)
}

func (a *checkinRepositoryAdapter) UpdateCheckin(ctx context.Context, entry application.CheckinEntry) (application.CheckinEntry, error) {
	if err := a.repo.UpdateCheckin(ctx, toPersistenceCheckin(entry)); err != nil {
		return application.CheckinEntry{}, err
	}
	return a.GetCheckin(ctx, entry.ID)
}

func (a *checkinRepositoryAdapter) GetCheckin(ctx context.Context, id string) (application.CheckinEntry, error) {
	stored, err := a.repo.GetCheckin(ctx, id)
	if err != nil {
		return application.CheckinEntry{}, err
	}
	entry := toApplicationCheckin(stored)
	if member, err := a.members.GetMember(ctx, stored.MemberID); err == nil {
		entry.MemberName = member.Name
	}
	return entry, nil
}

func (a *checkinRepositoryAdapter) ListCheckins(ctx context.Context, query application.CheckinQuery) ([]application.CheckinEntry, error) {
	models, err := a.repo.ListCheckins(ctx, persistence.CheckinFilter{
		Date:     query.Date,
		From:     query.From,
		To:       query.To,
		MemberID: query.MemberID,
		Statuses: append([]string(nil), query.Statuses...),
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}

	names := make(map[string]string)
	if members, err := a.members.ListMembers(ctx); err == nil {
		for _, member := range members {
			names[member.ID] = member.Name
		}
	}

	entries := make([]application.CheckinEntry, 0, len(models))
	for _, model := range models {
		entry := toApplicationCheckin(model)
		entry.MemberName = names[model.MemberID]
		entries = append(entries, entry)
	}
	return entries, nil
}

func (a *checkinRepositoryAdapter) DeleteCheckinsForDate(ctx context.Context, date availability.Date) error {
	return a.repo.DeleteCheckinsForDate(ctx, date)
}

type eventRepositoryAdapter struct {
	repo persistence.EventRepository
}

func newEventRepositoryAdapter(repo persistence.EventRepository) *eventRepositoryAdapter {
	return &eventRepositoryAdapter{repo: repo}
}

func (a *eventRepositoryAdapter) CreateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.CreateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) UpdateEvent(ctx context.Context, event application.Event) (application.Event, error) {
	if err := a.repo.UpdateEvent(ctx, toPersistenceEvent(event)); err != nil {
		return application.Event{}, err
	}
	stored, err := a.repo.GetEvent(ctx, event.ID)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) GetEvent(ctx context.Context, id string) (application.Event, error) {
	stored, err := a.repo.GetEvent(ctx, id)
	if err != nil {
		return application.Event{}, err
	}
	return toApplicationEvent(stored), nil
}

func (a *eventRepositoryAdapter) ListEvents(ctx context.Context, query application.EventQuery) ([]application.Event, error) {
	models, err := a.repo.ListEvents(ctx, persistence.EventFilter{
		From:  query.From,
		To:    query.To,
		Types: append([]string(nil), query.Types...),
	})
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	events := make([]application.Event, 0, len(models))
	for _, model := range models {
		events = append(events, toApplicationEvent(model))
	}
	return events, nil
}

func (a *eventRepositoryAdapter) DeleteEvent(ctx context.Context, id string) error {
	return a.repo.DeleteEvent(ctx, id)
}

type settingsStoreAdapter struct {
	repo persistence.SettingsRepository
}

func newSettingsStoreAdapter(repo persistence.SettingsRepository) *settingsStoreAdapter {
	return &settingsStoreAdapter{repo: repo}
}

func (a *settingsStoreAdapter) UpsertSetting(ctx context.Context, section string, value []byte, updatedAt time.Time) error {
	return a.repo.UpsertSetting(ctx, persistence.Setting{
		Section:   section,
		Value:     append([]byte(nil), value...),
		UpdatedAt: updatedAt,
	})
}

func (a *settingsStoreAdapter) GetSetting(ctx context.Context, section string) ([]byte, error) {
	stored, err := a.repo.GetSetting(ctx, section)
	if err != nil {
		return nil, err
	}
	return append([]byte(nil), stored.Value...), nil
}

func (a *settingsStoreAdapter) ListSettings(ctx context.Context) (map[string][]byte, error) {
	models, err := a.repo.ListSettings(ctx)
	if err != nil {
		return nil, err
	}
	sections := make(map[string][]byte, len(models))
	for _, model := range models {
		sections[model.Section] = append([]byte(nil), model.Value...)
	}
	return sections, nil
}

func toApplicationMember(model persistence.Member) application.Member {
	return application.Member{
		ID:        model.ID,
		Name:      model.Name,
		Email:     model.Email,
		Company:   model.Company,
		Role:      model.Role,
		Avatar:    cloneString(model.Avatar),
		Skills:    append([]string(nil), model.Skills...),
		Interests: append([]string(nil), model.Interests...),
		Active:    model.Active,
		DayPass:   model.DayPass,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceMember(member application.Member) persistence.Member {
	return persistence.Member{
		ID:        member.ID,
		Name:      member.Name,
		Email:     member.Email,
		Company:   member.Company,
		Role:      member.Role,
		Avatar:    cloneString(member.Avatar),
		Skills:    append([]string(nil), member.Skills...),
		Interests: append([]string(nil), member.Interests...),
		Active:    member.Active,
		DayPass:   member.DayPass,
		CreatedAt: member.CreatedAt,
		UpdatedAt: member.UpdatedAt,
	}
}

func toApplicationRoom(model persistence.Room) application.Room {
	return application.Room{
		ID:        model.ID,
		Name:      model.Name,
		Location:  model.Location,
		Capacity:  model.Capacity,
		Equipment: append([]string(nil), model.Equipment...),
		Image:     cloneString(model.Image),
		Available: model.Available,
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceRoom(room application.Room) persistence.Room {
	return persistence.Room{
		ID:        room.ID,
		Name:      room.Name,
		Location:  room.Location,
		Capacity:  room.Capacity,
		Equipment: append([]string(nil), room.Equipment...),
		Image:     cloneString(room.Image),
		Available: room.Available,
		CreatedAt: room.CreatedAt,
		UpdatedAt: room.UpdatedAt,
	}
}

func toApplicationReservation(model persistence.Reservation) application.Reservation {
	return application.Reservation{
		ID:        model.ID,
		RoomID:    model.RoomID,
		MemberID:  model.MemberID,
		Date:      model.Date,
		Start:     model.Start,
		End:       model.End,
		Status:    model.Status,
		Purpose:   model.Purpose,
		Attendees: append([]string(nil), model.Attendees...),
		CreatedAt: model.CreatedAt,
		UpdatedAt: model.UpdatedAt,
	}
}

func toPersistenceReservation(reservation application.Reservation) persistence.Reservation {
	return persistence.Reservation{
		ID:        reservation.ID,
		RoomID:    reservation.RoomID,
		MemberID:  reservation.MemberID,
		Date:      reservation.Date,
		Start:     reservation.Start,
		End:       reservation.End,
		Status:    reservation.Status,
		Purpose:   reservation.Purpose,
		Attendees: append([]string(nil), reservation.Attendees...),
		CreatedAt: reservation.CreatedAt,
		UpdatedAt: reservation.UpdatedAt,
	}
}

func toApplicationCheckin(model persistence.CheckinEntry) application.CheckinEntry {
	return application.CheckinEntry{
		ID:            model.ID,
		MemberID:      model.MemberID,
		ReservationID: cloneString(model.ReservationID),
		Space:         model.Space,
		Date:          model.Date,
		Start:         model.Start,
		End:           model.End,
		Status:        model.Status,
		CheckedInAt:   cloneTime(model.CheckedInAt),
		CheckedOutAt:  cloneTime(model.CheckedOutAt),
	}
}

func toPersistenceCheckin(entry application.CheckinEntry) persistence.CheckinEntry {
	return persistence.CheckinEntry{
		ID:            entry.ID,
		MemberID:      entry.MemberID,
		ReservationID: cloneString(entry.ReservationID),
		Space:         entry.Space,
		Date:          entry.Date,
		Start:         entry.Start,
		End:           entry.End,
		Status:        entry.Status,
		CheckedInAt:   cloneTime(entry.CheckedInAt),
		CheckedOutAt:  cloneTime(entry.CheckedOutAt),
	}
}

func toApplicationEvent(model persistence.Event) application.Event {
	return application.Event{
		ID:           model.ID,
		Title:        model.Title,
		Description:  model.Description,
		Date:         model.Date,
		Start:        model.Start,
		End:          model.End,
		Location:     model.Location,
		Organizer:    model.Organizer,
		Type:         model.Type,
		MaxAttendees: model.MaxAttendees,
		Attendees:    append([]string(nil), model.Attendees...),
		Image:        cloneString(model.Image),
		CreatedAt:    model.CreatedAt,
		UpdatedAt:    model.UpdatedAt,
	}
}

func toPersistenceEvent(event application.Event) persistence.Event {
	return persistence.Event{
		ID:           event.ID,
		Title:        event.Title,
		Description:  event.Description,
		Date:         event.Date,
		Start:        event.Start,
		End:          event.End,
		Location:     event.Location,
		Organizer:    event.Organizer,
		Type:         event.Type,
		MaxAttendees: event.MaxAttendees,
		Attendees:    append([]string(nil), event.Attendees...),
		Image:        cloneString(event.Image),
		CreatedAt:    event.CreatedAt,
		UpdatedAt:    event.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
