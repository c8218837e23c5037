package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a unique attribute is already taken.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrSlotConflict is returned when a booking overlaps an existing
	// reservation on any of its dates.
	ErrSlotConflict = errors.New("application: slot conflict")
	// ErrRoomUnavailable is returned when the target room is closed for
	// booking.
	ErrRoomUnavailable = errors.New("application: room unavailable")
	// ErrSpaceOccupied is returned when a manual check-in targets a space that
	// already has someone checked in.
	ErrSpaceOccupied = errors.New("application: space occupied")
	// ErrEventFull is returned when an RSVP would exceed the event capacity.
	ErrEventFull = errors.New("application: event full")
	// ErrNotCheckedIn is returned when a check-out targets an entry that never
	// checked in.
	ErrNotCheckedIn = errors.New("application: not checked in")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
