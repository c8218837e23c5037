package availability

import "errors"

// ErrInvalidTimeRange indicates a booking request with an incomplete or
// zero-length time selection.
var ErrInvalidTimeRange = errors.New("availability: time range is incomplete or zero-length")

// TimeRange carries the boundaries of a booking request. Either boundary may
// be absent when the selection was never completed.
type TimeRange struct {
	Start *Slot
	End   *Slot
}

// RangeOf builds a TimeRange from two concrete slots.
func RangeOf(start, end Slot) TimeRange {
	return TimeRange{Start: &start, End: &end}
}

// FromSelection converts a completed selection into a TimeRange. Anything
// short of Complete yields open boundaries, which BuildReservations rejects.
func FromSelection(sel Selection) TimeRange {
	if start, end, ok := sel.Range(); ok {
		return RangeOf(start, end)
	}
	return TimeRange{}
}

// Validate reports ErrInvalidTimeRange when either boundary is missing or
// the range has zero length.
func (r TimeRange) Validate() error {
	if r.Start == nil || r.End == nil || *r.Start == *r.End {
		return ErrInvalidTimeRange
	}
	return nil
}

// BookingRequest describes one multi-date booking to be expanded into
// concrete reservations.
type BookingRequest struct {
	RoomID    string
	Dates     []Date
	Range     TimeRange
	Purpose   string
	Attendees []string
	Status    BookingStatus
}

// BuildReservations maps a booking request onto one confirmed Booking per
// date. It is a pure expansion: identifiers come from the caller-supplied
// generator, which must not repeat within the batch, and no occupancy check
// happens here. It fails with ErrInvalidTimeRange before producing anything
// when the time range is incomplete or zero-length.
func BuildReservations(req BookingRequest, nextID func() string) ([]Booking, error) {
	if err := req.Range.Validate(); err != nil {
		return nil, err
	}
	status := req.Status
	if status == "" {
		status = StatusConfirmed
	}
	bookings := make([]Booking, 0, len(req.Dates))
	for _, date := range req.Dates {
		bookings = append(bookings, Booking{
			ID:        nextID(),
			RoomID:    req.RoomID,
			Date:      date,
			Start:     *req.Range.Start,
			End:       *req.Range.End,
			Purpose:   req.Purpose,
			Attendees: req.Attendees,
			Status:    status,
		})
	}
	return bookings, nil
}
