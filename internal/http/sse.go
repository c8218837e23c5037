package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/r3labs/sse/v2"

	"github.com/example/spacehub/internal/application"
)

// CheckinStream is the SSE stream carrying live check-in updates.
const CheckinStream = "checkins"

// EventStream pushes check-in lifecycle updates to connected dashboards over
// server-sent events. It implements application.CheckinPublisher.
type EventStream struct {
	server *sse.Server
	logger *slog.Logger
}

// NewEventStream builds an SSE server with the check-in stream registered.
// Replaying is disabled; clients reload current state over the REST API and
// follow deltas from there.
func NewEventStream(logger *slog.Logger) *EventStream {
	server := sse.New()
	server.AutoReplay = false
	server.CreateStream(CheckinStream)
	return &EventStream{server: server, logger: defaultLogger(logger)}
}

// PublishCheckin broadcasts an updated entry to all stream subscribers.
func (s *EventStream) PublishCheckin(entry application.CheckinEntry) {
	if s == nil || s.server == nil {
		return
	}

	payload, err := json.Marshal(toCheckinDTO(entry))
	if err != nil {
		s.logger.Error("failed to encode check-in update", "error", err, "checkin_id", entry.ID)
		return
	}

	s.server.Publish(CheckinStream, &sse.Event{
		Event: []byte("checkin"),
		Data:  payload,
	})
}

// ServeHTTP subscribes the client to the check-in stream. The stream query
// parameter is filled in so plain EventSource clients need no extra setup.
func (s *EventStream) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if s == nil || s.server == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	query := r.URL.Query()
	if query.Get("stream") == "" {
		query.Set("stream", CheckinStream)
		r.URL.RawQuery = query.Encode()
	}
	s.server.ServeHTTP(w, r)
}

// Close disconnects all subscribers and releases stream resources.
func (s *EventStream) Close() {
	if s == nil || s.server == nil {
		return
	}
	s.server.Close()
}
