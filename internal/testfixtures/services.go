package testfixtures

import (
	"log/slog"
	"time"

	"github.com/example/spacehub/internal/application"
)

// ServiceFactory assists tests with constructing application services using
// deterministic identifiers and clocks.
type ServiceFactory struct {
	Clock       *Clock
	IDGenerator *IDGenerator
}

// ServiceFactoryOption configures a ServiceFactory instance.
type ServiceFactoryOption func(*ServiceFactory)

// NewServiceFactory constructs a ServiceFactory with defaults.
func NewServiceFactory(opts ...ServiceFactoryOption) *ServiceFactory {
	factory := &ServiceFactory{
		Clock:       NewClock(time.Time{}),
		IDGenerator: NewIDGenerator("id"),
	}
	for _, opt := range opts {
		opt(factory)
	}
	if factory.Clock == nil {
		factory.Clock = NewClock(time.Time{})
	}
	if factory.IDGenerator == nil {
		factory.IDGenerator = NewIDGenerator("id")
	}
	return factory
}

// WithClock overrides the clock used by the factory.
func WithClock(clock *Clock) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.Clock = clock
	}
}

// WithIDGenerator overrides the identifier generator used by the factory.
func WithIDGenerator(generator *IDGenerator) ServiceFactoryOption {
	return func(factory *ServiceFactory) {
		factory.IDGenerator = generator
	}
}

func (f *ServiceFactory) idGenerator(override func() string) func() string {
	if override != nil {
		return override
	}
	return f.IDGenerator.NextFunc()
}

func (f *ServiceFactory) now(override func() time.Time) func() time.Time {
	if override != nil {
		return override
	}
	return f.Clock.NowFunc()
}

// ReservationServiceDeps captures dependencies for constructing a reservation
// service.
type ReservationServiceDeps struct {
	Reservations application.ReservationRepository
	Members      application.MemberDirectory
	Rooms        application.RoomCatalog
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewReservationService builds a reservation service using the supplied
// dependencies combined with the factory defaults.
func (f *ServiceFactory) NewReservationService(deps ReservationServiceDeps) *application.ReservationService {
	return application.NewReservationServiceWithLogger(
		deps.Reservations,
		deps.Members,
		deps.Rooms,
		f.idGenerator(deps.IDGenerator),
		f.now(deps.Now),
		deps.Logger,
	)
}

// RoomServiceDeps captures dependencies for constructing a room service.
type RoomServiceDeps struct {
	Rooms       application.RoomRepository
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewRoomService builds a room service using the supplied dependencies.
func (f *ServiceFactory) NewRoomService(deps RoomServiceDeps) *application.RoomService {
	return application.NewRoomServiceWithLogger(
		deps.Rooms,
		f.idGenerator(deps.IDGenerator),
		f.now(deps.Now),
		deps.Logger,
	)
}

// MemberServiceDeps captures dependencies for constructing a member service.
type MemberServiceDeps struct {
	Members     application.MemberRepository
	IDGenerator func() string
	Now         func() time.Time
}

// NewMemberService builds a member service using the supplied dependencies.
func (f *ServiceFactory) NewMemberService(deps MemberServiceDeps) *application.MemberService {
	return application.NewMemberService(
		deps.Members,
		f.idGenerator(deps.IDGenerator),
		f.now(deps.Now),
	)
}

// CheckinServiceDeps captures dependencies for constructing a check-in
// service.
type CheckinServiceDeps struct {
	Checkins     application.CheckinRepository
	Members      application.MemberBrowser
	Reservations application.ReservationBrowser
	Presence     application.PresenceTracker
	Publisher    application.CheckinPublisher
	IDGenerator  func() string
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewCheckinService builds a check-in service using the supplied dependencies.
func (f *ServiceFactory) NewCheckinService(deps CheckinServiceDeps) *application.CheckinService {
	return application.NewCheckinServiceWithLogger(
		deps.Checkins,
		deps.Members,
		deps.Reservations,
		deps.Presence,
		deps.Publisher,
		f.idGenerator(deps.IDGenerator),
		f.now(deps.Now),
		deps.Logger,
	)
}

// EventServiceDeps captures dependencies for constructing an event service.
type EventServiceDeps struct {
	Events      application.EventRepository
	Members     application.MemberDirectory
	IDGenerator func() string
	Now         func() time.Time
	Logger      *slog.Logger
}

// NewEventService builds an event service using the supplied dependencies.
func (f *ServiceFactory) NewEventService(deps EventServiceDeps) *application.EventService {
	return application.NewEventServiceWithLogger(
		deps.Events,
		deps.Members,
		f.idGenerator(deps.IDGenerator),
		f.now(deps.Now),
		deps.Logger,
	)
}

// ReportServiceDeps captures dependencies for constructing a report service.
type ReportServiceDeps struct {
	Reservations application.ReservationBrowser
	Rooms        application.RoomBrowser
	Checkins     application.CheckinBrowser
	Events       application.EventBrowser
	Now          func() time.Time
	Logger       *slog.Logger
}

// NewReportService builds a report service using the supplied dependencies.
func (f *ServiceFactory) NewReportService(deps ReportServiceDeps) *application.ReportService {
	return application.NewReportServiceWithLogger(
		deps.Reservations,
		deps.Rooms,
		deps.Checkins,
		deps.Events,
		f.now(deps.Now),
		deps.Logger,
	)
}

// SettingsServiceDeps captures dependencies for constructing a settings
// service.
type SettingsServiceDeps struct {
	Store  application.SettingsStore
	Now    func() time.Time
	Logger *slog.Logger
}

// NewSettingsService builds a settings service using the supplied dependencies.
func (f *ServiceFactory) NewSettingsService(deps SettingsServiceDeps) *application.SettingsService {
	return application.NewSettingsServiceWithLogger(
		deps.Store,
		f.now(deps.Now),
		deps.Logger,
	)
}
