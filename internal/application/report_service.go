package application

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/example/spacehub/internal/availability"
)

// RoomBrowser exposes the room listings the report aggregation needs.
type RoomBrowser interface {
	ListRooms(ctx context.Context) ([]Room, error)
}

// CheckinBrowser exposes the check-in listings the report aggregation needs.
type CheckinBrowser interface {
	ListCheckins(ctx context.Context, query CheckinQuery) ([]CheckinEntry, error)
}

// EventBrowser exposes the event listings the report aggregation needs.
type EventBrowser interface {
	ListEvents(ctx context.Context, query EventQuery) ([]Event, error)
}

// ReportService aggregates check-in, reservation, and event activity into
// usage reports.
type ReportService struct {
	reservations ReservationBrowser
	rooms        RoomBrowser
	checkins     CheckinBrowser
	events       EventBrowser
	now          func() time.Time
	logger       *slog.Logger
}

// NewReportService wires dependencies for usage reporting.
func NewReportService(reservations ReservationBrowser, rooms RoomBrowser, checkins CheckinBrowser, events EventBrowser, now func() time.Time) *ReportService {
	return NewReportServiceWithLogger(reservations, rooms, checkins, events, now, nil)
}

// NewReportServiceWithLogger wires dependencies with a specified logger.
func NewReportServiceWithLogger(reservations ReservationBrowser, rooms RoomBrowser, checkins CheckinBrowser, events EventBrowser, now func() time.Time, logger *slog.Logger) *ReportService {
	if now == nil {
		now = time.Now
	}
	return &ReportService{
		reservations: reservations,
		rooms:        rooms,
		checkins:     checkins,
		events:       events,
		now:          now,
		logger:       defaultLogger(logger),
	}
}

func (s *ReportService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "ReportService", operation, attrs...)
}

// UsageReport aggregates reservation, check-in, and event activity for the
// period containing the reference date. Weeks start on Monday; months are
// calendar months. Only entries that actually checked in count toward the
// check-in totals.
func (s *ReportService) UsageReport(ctx context.Context, period ReportPeriod, reference availability.Date) (report UsageReport, err error) {
	if s == nil {
		err = fmt.Errorf("ReportService is nil")
		return
	}

	logger := s.loggerWith(ctx, "UsageReport", "period", string(period))
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to build usage report", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("reservation_count", report.Reservations).InfoContext(ctx, "usage report built")
	}()

	if reference.IsZero() {
		reference = availability.DateOf(s.now())
	}

	var from, to availability.Date
	switch period {
	case ReportPeriodWeek:
		from, to = weekWindow(reference)
	case ReportPeriodMonth:
		from, to = monthWindow(reference)
	default:
		vErr := &ValidationError{}
		vErr.add("period", fmt.Sprintf("unknown report period %q", period))
		err = vErr
		return
	}

	var reservations []Reservation
	if s.reservations != nil {
		reservations, err = s.reservations.ListReservations(ctx, ReservationQuery{From: &from, To: &to})
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	var checkins []CheckinEntry
	if s.checkins != nil {
		checkins, err = s.checkins.ListCheckins(ctx, CheckinQuery{From: &from, To: &to})
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	var events []Event
	if s.events != nil {
		events, err = s.events.ListEvents(ctx, EventQuery{From: &from, To: &to})
		if err != nil {
			err = mapRepoError(err)
			return
		}
	}

	roomNames := make(map[string]string)
	if s.rooms != nil {
		var rooms []Room
		rooms, err = s.rooms.ListRooms(ctx)
		if err != nil {
			err = mapRepoError(err)
			return
		}
		for _, room := range rooms {
			roomNames[room.ID] = room.Name
		}
	}

	report = UsageReport{
		Period: period,
		From:   from,
		To:     to,
		PeakBuckets: []PeakBucket{
			{Label: "morning"},
			{Label: "afternoon"},
			{Label: "evening"},
		},
	}
	var bucketByDate map[availability.Date]int
	report.Breakdown, bucketByDate = periodBuckets(period, from, to)

	usageByRoom := make(map[string]*RoomUsage)
	for _, reservation := range reservations {
		if reservation.Status == ReservationStatusCancelled {
			report.Cancelled++
			continue
		}
		hours := float64(reservation.End-reservation.Start) / 60

		report.Reservations++
		report.BookedHours += hours

		usage, ok := usageByRoom[reservation.RoomID]
		if !ok {
			name := reservation.RoomName
			if name == "" {
				name = roomNames[reservation.RoomID]
			}
			usage = &RoomUsage{RoomID: reservation.RoomID, RoomName: name}
			usageByRoom[reservation.RoomID] = usage
		}
		usage.Reservations++
		usage.BookedHours += hours

		if bucket := peakBucketIndex(reservation.Start); bucket >= 0 {
			report.PeakBuckets[bucket].Count++
		}
		if i, ok := bucketByDate[reservation.Date]; ok {
			report.Breakdown[i].Reservations++
		}
	}

	for _, entry := range checkins {
		if entry.Status != CheckinStatusCheckedIn && entry.Status != CheckinStatusCheckedOut {
			continue
		}
		report.Checkins++
		if i, ok := bucketByDate[entry.Date]; ok {
			report.Breakdown[i].Checkins++
		}
	}

	for _, event := range events {
		report.Events++
		if i, ok := bucketByDate[event.Date]; ok {
			report.Breakdown[i].Events++
		}
	}

	best := 0
	for i, bucket := range report.Breakdown {
		if bucket.Checkins > report.Breakdown[best].Checkins {
			best = i
		}
	}
	if len(report.Breakdown) > 0 {
		report.MostPopular = report.Breakdown[best].Label
	}

	report.Rooms = make([]RoomUsage, 0, len(usageByRoom))
	for _, usage := range usageByRoom {
		report.Rooms = append(report.Rooms, *usage)
	}
	sort.Slice(report.Rooms, func(i, j int) bool {
		if report.Rooms[i].Reservations != report.Rooms[j].Reservations {
			return report.Rooms[i].Reservations > report.Rooms[j].Reservations
		}
		return report.Rooms[i].RoomName < report.Rooms[j].RoomName
	})
	return
}

// periodBuckets builds the breakdown rows for a window and maps each date in
// the window to its row: one row per weekday for the week period, a single
// row labelled with the calendar month for the month period.
func periodBuckets(period ReportPeriod, from, to availability.Date) ([]PeriodBucket, map[availability.Date]int) {
	index := make(map[availability.Date]int)
	if period == ReportPeriodWeek {
		buckets := make([]PeriodBucket, 7)
		for i := range buckets {
			day := from.AddDays(i)
			buckets[i].Label = day.Weekday().String()
			index[day] = i
		}
		return buckets, index
	}
	buckets := []PeriodBucket{{Label: from.Month.String()}}
	for day := from; !day.After(to); day = day.AddDays(1) {
		index[day] = 0
	}
	return buckets, index
}

// peakBucketIndex maps a start slot to the morning (08-12), afternoon
// (12-18), or evening (18-22) band. Slots outside the bands return -1.
func peakBucketIndex(start availability.Slot) int {
	switch {
	case start >= 8*60 && start < 12*60:
		return 0
	case start >= 12*60 && start < 18*60:
		return 1
	case start >= 18*60 && start < 22*60:
		return 2
	default:
		return -1
	}
}

func weekWindow(reference availability.Date) (availability.Date, availability.Date) {
	offset := (int(reference.Weekday()) + 6) % 7
	from := reference.AddDays(-offset)
	return from, from.AddDays(6)
}

func monthWindow(reference availability.Date) (availability.Date, availability.Date) {
	from := availability.Date{Year: reference.Year, Month: reference.Month, Day: 1}
	last := time.Date(reference.Year, reference.Month+1, 0, 0, 0, 0, 0, time.UTC)
	return from, availability.Date{Year: last.Year(), Month: last.Month(), Day: last.Day()}
}
