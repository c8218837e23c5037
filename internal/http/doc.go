// Package http provides HTTP handlers and middleware for the spacehub API.
//
// The router exposes the following endpoints:
//   - GET /healthz: liveness probe returning {"status":"ok"}.
//   - GET /rooms, POST /rooms, GET /rooms/{id}, PUT /rooms/{id}, DELETE /rooms/{id}:
//     room catalog endpoints exchanging the `roomDTO` payload defined in room_handler.go.
//   - GET /rooms/{id}/slots?date=YYYY-MM-DD: the daily availability board for a room,
//     one entry per half-hour slot of the operating day.
//   - POST /rooms/{id}/selection: advances the two-click range selection for a room
//     and date. The client echoes the previous selection state in the request body.
//   - GET /members, POST /members, GET /members/{id}, PUT /members/{id},
//     DELETE /members/{id}: member directory endpoints exchanging the `memberDTO`
//     payload defined in member_handler.go.
//   - GET /reservations, POST /reservations, GET /reservations/{id}: booking
//     endpoints. Creation expands recurrence rules or date ranges into one
//     reservation per date and returns the whole batch.
//   - DELETE /reservations/{id}: cancels a reservation. The row is kept with the
//     cancelled status for reporting.
//   - GET /checkins, POST /checkins, POST /checkins/generate?date=YYYY-MM-DD,
//     POST /checkins/{id}/checkin, POST /checkins/{id}/checkout: daily attendance
//     endpoints exchanging the `checkinDTO` payload defined in checkin_handler.go.
//   - GET /events, POST /events, GET /events/{id}, PUT /events/{id},
//     DELETE /events/{id}, POST /events/{id}/rsvp, DELETE /events/{id}/rsvp:
//     community event and RSVP endpoints.
//   - GET /events/stream: server-sent events stream pushing live check-in updates.
//   - GET /reports/usage?period=week|month&date=YYYY-MM-DD: reservation usage
//     aggregates for the window containing the reference date.
//   - GET /settings, GET /settings/{section}, PUT /settings/{section}: workspace
//     configuration sections stored as JSON documents.
//
// Request/response DTOs live alongside their respective handlers so tests and
// documentation share the same ground truth.
package http
