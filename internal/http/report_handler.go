package http

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/example/spacehub/internal/application"
	"github.com/example/spacehub/internal/availability"
)

type reportService interface {
	UsageReport(ctx context.Context, period application.ReportPeriod, reference availability.Date) (application.UsageReport, error)
}

type ReportHandler struct {
	service   reportService
	responder responder
	logger    *slog.Logger
}

func NewReportHandler(service reportService, logger *slog.Logger) *ReportHandler {
	base := defaultLogger(logger)
	return &ReportHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *ReportHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "ReportHandler", operation, attrs...)
}

// Usage serves /reports/usage. The period defaults to week; the date anchors
// the window and defaults to today.
func (h *ReportHandler) Usage(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Usage")
	values := r.URL.Query()

	period := application.ReportPeriod(strings.TrimSpace(values.Get("period")))
	if period == "" {
		period = application.ReportPeriodWeek
	}

	var reference availability.Date
	if raw := strings.TrimSpace(values.Get("date")); raw != "" {
		parsed, err := availability.ParseDate(raw)
		if err != nil {
			logger.With("error_kind", "bad_request").ErrorContext(r.Context(), "invalid report date", "error", err)
			h.responder.writeError(r.Context(), w, http.StatusBadRequest, fmt.Errorf("date must be a YYYY-MM-DD date"))
			return
		}
		reference = parsed
	}

	report, err := h.service.UsageReport(r.Context(), period, reference)
	if err != nil {
		logger.ErrorContext(r.Context(), "usage report failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("period", string(report.Period)).InfoContext(r.Context(), "usage report built")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, toUsageReportDTO(report))
}

type roomUsageDTO struct {
	RoomID       string  `json:"room_id"`
	RoomName     string  `json:"room_name"`
	Reservations int     `json:"reservations"`
	BookedHours  float64 `json:"booked_hours"`
}

type peakBucketDTO struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

type periodBucketDTO struct {
	Label        string `json:"label"`
	Checkins     int    `json:"checkins"`
	Reservations int    `json:"reservations"`
	Events       int    `json:"events"`
}

type usageReportDTO struct {
	Period       string            `json:"period"`
	From         string            `json:"from"`
	To           string            `json:"to"`
	Checkins     int               `json:"checkins"`
	Reservations int               `json:"reservations"`
	Cancelled    int               `json:"cancelled"`
	Events       int               `json:"events"`
	BookedHours  float64           `json:"booked_hours"`
	Rooms        []roomUsageDTO    `json:"rooms"`
	PeakBuckets  []peakBucketDTO   `json:"peak_buckets"`
	Breakdown    []periodBucketDTO `json:"breakdown"`
	MostPopular  string            `json:"most_popular"`
}

func toUsageReportDTO(report application.UsageReport) usageReportDTO {
	rooms := make([]roomUsageDTO, 0, len(report.Rooms))
	for _, room := range report.Rooms {
		rooms = append(rooms, roomUsageDTO{
			RoomID:       room.RoomID,
			RoomName:     room.RoomName,
			Reservations: room.Reservations,
			BookedHours:  room.BookedHours,
		})
	}
	buckets := make([]peakBucketDTO, 0, len(report.PeakBuckets))
	for _, bucket := range report.PeakBuckets {
		buckets = append(buckets, peakBucketDTO{Label: bucket.Label, Count: bucket.Count})
	}
	breakdown := make([]periodBucketDTO, 0, len(report.Breakdown))
	for _, row := range report.Breakdown {
		breakdown = append(breakdown, periodBucketDTO{
			Label:        row.Label,
			Checkins:     row.Checkins,
			Reservations: row.Reservations,
			Events:       row.Events,
		})
	}
	return usageReportDTO{
		Period:       string(report.Period),
		From:         report.From.String(),
		To:           report.To.String(),
		Checkins:     report.Checkins,
		Reservations: report.Reservations,
		Cancelled:    report.Cancelled,
		Events:       report.Events,
		BookedHours:  report.BookedHours,
		Rooms:        rooms,
		PeakBuckets:  buckets,
		Breakdown:    breakdown,
		MostPopular:  report.MostPopular,
	}
}
