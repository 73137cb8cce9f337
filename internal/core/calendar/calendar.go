// Package calendar computes civil week, month and year boundaries used as
// half-open [start, end) filters on summary queries.
//
// All arithmetic happens on civil dates in the caller's location via time.Date,
// so a day that is 23 or 25 hours long across a DST switch still starts at
// local midnight. Results are converted to UTC only at the very end.
package calendar

import (
	"time"

	perr "stridekit/internal/platform/errors"
)

// DefaultFirstDay is used when a user never picked a first day of week (ISO-8601)
const DefaultFirstDay = time.Monday

// ValidFirstDay reports an invalid argument error unless d is Sunday..Saturday
func ValidFirstDay(d time.Weekday) error {
	if d < time.Sunday || d > time.Saturday {
		return perr.WithField(perr.InvalidArgf("first day of week %d out of range 0..6", int(d)), "first_day")
	}
	return nil
}

// validRef rejects the zero time, which callers get from unset fields
func validRef(t time.Time) error {
	if t.IsZero() {
		return perr.WithField(perr.InvalidArgf("reference time is required"), "date")
	}
	return nil
}

// civil returns midnight of t's calendar day shifted by days, in t's location
func civil(t time.Time, days int) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d+days, 0, 0, 0, 0, t.Location())
}

// WeekStart returns local midnight of the first day of the week containing t.
// If t already falls on firstDay the result is t's own midnight.
func WeekStart(t time.Time, firstDay time.Weekday) (time.Time, error) {
	if err := ValidFirstDay(firstDay); err != nil {
		return time.Time{}, err
	}
	if err := validRef(t); err != nil {
		return time.Time{}, err
	}
	offset := (int(t.Weekday()) - int(firstDay) + 7) % 7
	return civil(t, -offset), nil
}

// WeekEnd returns the start of the following week, an exclusive upper bound
func WeekEnd(t time.Time, firstDay time.Weekday) (time.Time, error) {
	return NavigateWeek(t, 1, firstDay)
}

// NavigateWeek returns the start of the week direction weeks away from the one containing t
func NavigateWeek(t time.Time, direction int, firstDay time.Weekday) (time.Time, error) {
	start, err := WeekStart(t, firstDay)
	if err != nil {
		return time.Time{}, err
	}
	return civil(start, 7*direction), nil
}

// MonthStart returns local midnight of the first day of t's month
func MonthStart(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m, 1, 0, 0, 0, 0, t.Location())
}

// MonthEnd returns local midnight of the first day of the following month
func MonthEnd(t time.Time) time.Time {
	y, m, _ := t.Date()
	return time.Date(y, m+1, 1, 0, 0, 0, 0, t.Location())
}

// YearStart returns local midnight of January 1st of t's year
func YearStart(t time.Time) time.Time {
	return time.Date(t.Year(), time.January, 1, 0, 0, 0, 0, t.Location())
}

// YearEnd returns local midnight of January 1st of the following year
func YearEnd(t time.Time) time.Time {
	return time.Date(t.Year()+1, time.January, 1, 0, 0, 0, 0, t.Location())
}

// ParseDay parses a YYYY-MM-DD civil date as midnight in loc
func ParseDay(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		return time.Time{}, perr.WithField(perr.InvalidArgf("location is required"), "timezone")
	}
	t, err := time.ParseInLocation(time.DateOnly, s, loc)
	if err != nil {
		return time.Time{}, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "invalid date %q", s), "date")
	}
	return t, nil
}

// LoadLocation resolves an IANA zone name, treating empty as UTC
func LoadLocation(name string) (*time.Location, error) {
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, perr.WithField(perr.Wrapf(err, perr.ErrorCodeInvalidArgument, "unknown timezone %q", name), "timezone")
	}
	return loc, nil
}
