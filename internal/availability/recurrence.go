package availability

import (
	"errors"
	"fmt"
	"time"
)

var (
	// ErrInvalidFrequency indicates the recurrence frequency is not supported.
	ErrInvalidFrequency = errors.New("availability: invalid recurrence frequency")
	// ErrMissingUntil indicates a repeating rule was supplied without an end date.
	ErrMissingUntil = errors.New("availability: recurrence rule requires an until date")
)

// Date is a naive calendar day: no time of day, no timezone. Reservations
// are keyed by the wall calendar of the space, so the engine never converts
// between locations.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// ParseDate parses a "YYYY-MM-DD" value.
func ParseDate(value string) (Date, error) {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		return Date{}, fmt.Errorf("availability: invalid date %q: %w", value, err)
	}
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}, nil
}

// MustDate parses a "YYYY-MM-DD" value and panics on failure.
func MustDate(value string) Date {
	d, err := ParseDate(value)
	if err != nil {
		panic(err)
	}
	return d
}

// DateOf truncates a time.Time to the calendar day in its own location.
func DateOf(t time.Time) Date {
	return Date{Year: t.Year(), Month: t.Month(), Day: t.Day()}
}

// String renders the date as "YYYY-MM-DD".
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// IsZero reports whether the date is the zero value.
func (d Date) IsZero() bool { return d == Date{} }

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool { return d == other }

// Before reports whether d precedes other on the calendar.
func (d Date) Before(other Date) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

// After reports whether d follows other on the calendar.
func (d Date) After(other Date) bool { return other.Before(d) }

// AddDays returns the date n days later, rolling across month and year
// boundaries.
func (d Date) AddDays(n int) Date {
	t := time.Date(d.Year, d.Month, d.Day+n, 0, 0, 0, 0, time.UTC)
	return DateOf(t)
}

// Weekday returns the day of week.
func (d Date) Weekday() time.Weekday {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC).Weekday()
}

// At combines the date with a slot into a timestamp in the given location.
func (d Date) At(slot Slot, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	return time.Date(d.Year, d.Month, d.Day, int(slot)/60, int(slot)%60, 0, 0, loc)
}

func daysInMonth(year int, month time.Month) int {
	// Day zero of the next month is the last day of this one.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// nextMonthClamped advances one calendar month, clamping to the target
// month's last day when the current day-of-month does not exist there. The
// clamp is derived from the receiver, not from any original base date, so a
// clamped step keeps compounding: Jan 31 -> Feb 28 -> Mar 28 -> Apr 28.
func (d Date) nextMonthClamped() Date {
	year, month := d.Year, d.Month+1
	if month > time.December {
		year, month = year+1, time.January
	}
	day := d.Day
	if last := daysInMonth(year, month); day > last {
		day = last
	}
	return Date{Year: year, Month: month, Day: day}
}

// Frequency enumerates the supported recurrence intervals.
type Frequency int

const (
	// FrequencyNone books a single occurrence.
	FrequencyNone Frequency = iota
	// FrequencyDaily repeats every day.
	FrequencyDaily
	// FrequencyWeekly repeats every seven days.
	FrequencyWeekly
	// FrequencyMonthly repeats on the same day of each month, clamped to
	// shorter months.
	FrequencyMonthly
)

// ParseFrequency maps the wire values "none", "daily", "weekly", and
// "monthly" onto a Frequency. The empty string means none.
func ParseFrequency(value string) (Frequency, error) {
	switch value {
	case "", "none":
		return FrequencyNone, nil
	case "daily":
		return FrequencyDaily, nil
	case "weekly":
		return FrequencyWeekly, nil
	case "monthly":
		return FrequencyMonthly, nil
	default:
		return FrequencyNone, fmt.Errorf("%w: %q", ErrInvalidFrequency, value)
	}
}

// String returns the wire form of the frequency.
func (f Frequency) String() string {
	switch f {
	case FrequencyNone:
		return "none"
	case FrequencyDaily:
		return "daily"
	case FrequencyWeekly:
		return "weekly"
	case FrequencyMonthly:
		return "monthly"
	default:
		return fmt.Sprintf("frequency(%d)", int(f))
	}
}

// ExpandRecurrence produces the concrete dates a repeating booking request
// covers: base first, then steps per the frequency, including until itself
// when a step lands on it. FrequencyNone yields just the base date and
// ignores until. A repeating frequency with a zero until fails with
// ErrMissingUntil; an until before base yields an empty expansion.
func ExpandRecurrence(base Date, until Date, freq Frequency) ([]Date, error) {
	switch freq {
	case FrequencyNone:
		return []Date{base}, nil
	case FrequencyDaily, FrequencyWeekly, FrequencyMonthly:
	default:
		return nil, fmt.Errorf("%w: %s", ErrInvalidFrequency, freq)
	}

	if until.IsZero() {
		return nil, ErrMissingUntil
	}
	if until.Before(base) {
		return nil, nil
	}

	dates := make([]Date, 0, 4)
	for current := base; !current.After(until); {
		dates = append(dates, current)
		switch freq {
		case FrequencyDaily:
			current = current.AddDays(1)
		case FrequencyWeekly:
			current = current.AddDays(7)
		case FrequencyMonthly:
			current = current.nextMonthClamped()
		}
	}
	return dates, nil
}

// ExpandDateRange lists every calendar day from start through end inclusive.
// An end before start yields an empty expansion; the surrounding range
// picker guarantees ordered pairs, so that case is tolerated rather than
// reported.
func ExpandDateRange(start, end Date) []Date {
	if end.Before(start) {
		return nil
	}
	dates := make([]Date, 0, 4)
	for current := start; !current.After(end); current = current.AddDays(1) {
		dates = append(dates, current)
	}
	return dates
}
